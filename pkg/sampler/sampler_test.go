package sampler

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeSineWav renders a mono 16-bit sine fixture.
func writeSineWav(t *testing.T, path string, freq float64, rate int, seconds float64) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	n := int(float64(rate) * seconds)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		SourceBitDepth: 16,
		Data:           make([]int, n),
	}
	for i := 0; i < n; i++ {
		v := 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
		buf.Data[i] = int(v * math.MaxInt16)
	}
	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestLoadWav(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a4.wav")
	writeSineWav(t, path, 440, 44100, 1)

	samples, mono, rate, err := loadWav(path)
	if err != nil {
		t.Fatal(err)
	}
	if rate != 44100 {
		t.Errorf("rate %d, want 44100", rate)
	}
	if len(samples) != len(mono) || len(mono) == 0 {
		t.Fatalf("decoded %d frames, %d mono values", len(samples), len(mono))
	}
	// mono input lands on both channels
	for i, s := range samples[:100] {
		if s[0] != s[1] {
			t.Fatalf("frame %d is not duplicated onto both channels", i)
		}
	}
	var peak float64
	for _, v := range mono {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak < 0.4 || peak > 0.6 {
		t.Errorf("peak %v, want ~0.5", peak)
	}
}

func TestLoadWavMissingFile(t *testing.T) {
	if _, _, _, err := loadWav(filepath.Join(t.TempDir(), "nope.wav")); err == nil {
		t.Fatal("loading a missing file succeeded")
	}
}

func TestDetectFrequency(t *testing.T) {
	const rate = 44100
	for _, want := range []float64{261.63, 440, 659.25} {
		mono := make([]float64, rate)
		for i := range mono {
			mono[i] = math.Sin(2 * math.Pi * want * float64(i) / rate)
		}
		got := detectFrequency(mono, rate)
		// one FFT bin is rate/analysisWindow wide
		if binWidth := float64(rate) / analysisWindow; math.Abs(got-want) > binWidth {
			t.Errorf("detected %v Hz for a %v Hz sine", got, want)
		}
	}
}

func TestDetectFrequencyDegenerate(t *testing.T) {
	if got := detectFrequency(nil, 44100); got != 0 {
		t.Errorf("detected %v on empty input", got)
	}
	if got := detectFrequency(make([]float64, 1024), 44100); got != 0 {
		t.Errorf("detected %v on silence", got)
	}
}

func TestDBToBase2(t *testing.T) {
	if got := dbToBase2(0); got != 0 {
		t.Errorf("0 dB maps to exponent %v, want 0", got)
	}
	// 2^x == 10^(6.0206/20) at x == 1
	if got := dbToBase2(20 * math.Log10(2)); math.Abs(got-1) > 1e-12 {
		t.Errorf("one doubling maps to exponent %v, want 1", got)
	}
	if dbToBase2(-12) >= 0 {
		t.Error("attenuation must map below zero")
	}
}

func TestVoiceReleaseRamp(t *testing.T) {
	ones := make([][2]float64, 2048)
	for i := range ones {
		ones[i] = [2]float64{1, 1}
	}
	v := &voice{s: &bufferStreamer{data: ones}, gain: 0.8, ramp: 1}

	buf := make([][2]float64, 64)
	n, ok := v.Stream(buf)
	if !ok || n != 64 {
		t.Fatalf("Stream = %d, %v", n, ok)
	}
	if buf[0][0] != 0.8 {
		t.Errorf("gain not applied, sample %v", buf[0][0])
	}

	v.release(128)
	total := 0
	for {
		n, ok := v.Stream(buf)
		total += n
		if !ok {
			break
		}
		if total > len(ones) {
			t.Fatal("voice never drained")
		}
	}
	if !v.done {
		t.Error("voice not done after release ramp")
	}
	if n, ok := v.Stream(buf); n != 0 || ok {
		t.Errorf("drained voice streamed %d, %v", n, ok)
	}
}

func TestVoiceImmediateCut(t *testing.T) {
	data := make([][2]float64, 256)
	v := &voice{s: &bufferStreamer{data: data}, gain: 1, ramp: 1}
	v.release(0)
	if n, ok := v.Stream(make([][2]float64, 32)); n != 0 || ok {
		t.Errorf("cut voice streamed %d, %v", n, ok)
	}
}

func TestVoiceRampMonotone(t *testing.T) {
	ones := make([][2]float64, 4096)
	for i := range ones {
		ones[i] = [2]float64{1, 1}
	}
	v := &voice{s: &bufferStreamer{data: ones}, gain: 1, ramp: 1}
	v.release(256)

	buf := make([][2]float64, 512)
	n, _ := v.Stream(buf)
	prev := math.Inf(1)
	for i := 0; i < n && buf[i][0] > 0; i++ {
		if buf[i][0] > prev {
			t.Fatalf("ramp not monotone at sample %d", i)
		}
		prev = buf[i][0]
	}
	if buf[300][0] != 0 {
		t.Errorf("sample past the ramp is %v, want 0", buf[300][0])
	}
}

func TestSummarize(t *testing.T) {
	mono := make([]float64, 10000)
	for i := range mono {
		mono[i] = 0.25
	}
	pts := summarize(mono, 64)
	if len(pts) != 64 {
		t.Fatalf("summary has %d points, want 64", len(pts))
	}
	scale := float64(math.MaxInt16)
	want := int16(0.25 * scale)
	for _, p := range pts {
		if p != want {
			t.Fatalf("summary point %d, want %d", p, want)
		}
	}
	if summarize(nil, 64) != nil {
		t.Error("summary of empty input should be nil")
	}
	// over-unity input clamps instead of overflowing
	loud := []float64{2, 2, 2, 2}
	if got := summarize(loud, 1); len(got) != 1 || got[0] != math.MaxInt16 {
		t.Errorf("clamped summary = %v", got)
	}
}

func TestFingerprintStable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c4.wav")
	writeSineWav(t, path, 261.63, 44100, 1)

	load := func() *Sampler {
		s := New(Config{SamplePath: path, BaseFrequencyHz: 261.63})
		s.load()
		if err := s.Err(); err != nil {
			t.Fatal(err)
		}
		return s
	}
	a, b := load(), load()
	if a.Fingerprint() == "" {
		t.Fatal("empty fingerprint")
	}
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("same recording produced different fingerprints")
	}

	other := filepath.Join(dir, "a4.wav")
	writeSineWav(t, other, 440, 44100, 1)
	c := New(Config{SamplePath: other, BaseFrequencyHz: 440})
	c.load()
	if c.Fingerprint() == a.Fingerprint() {
		t.Error("different recordings share a fingerprint")
	}
}

func TestLoadDetectsAnchor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "g4.wav")
	writeSineWav(t, path, 392, 44100, 1)

	s := New(Config{SamplePath: path})
	s.load()
	if err := s.Err(); err != nil {
		t.Fatal(err)
	}
	if got := s.DetectedFrequency(); math.Abs(got-392) > 6 {
		t.Errorf("detected anchor %v Hz, want ~392", got)
	}
	if s.base != s.detected {
		t.Error("zero BaseFrequencyHz should anchor on the detected pitch")
	}

	pts := s.WaveformPoints(32)
	if len(pts) != 32 {
		t.Fatalf("waveform has %d points, want 32", len(pts))
	}
	for _, p := range pts {
		if p < 0 || p > 1 {
			t.Fatalf("waveform point %v out of [0, 1]", p)
		}
	}
}

func TestLoadFailureSurfacesInErr(t *testing.T) {
	s := New(Config{SamplePath: filepath.Join(t.TempDir(), "missing.wav")})
	s.load()
	if s.Err() == nil {
		t.Fatal("missing sample did not surface in Err")
	}
	select {
	case <-s.Loaded():
	default:
		t.Fatal("Loaded not closed after a failed load")
	}
}

package sampler

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/fft"
)

const (
	analysisWindow = 8192
	summaryPoints  = 256
)

// detectFrequency estimates the dominant pitch of the recording by FFT
// peak search over a window taken from the middle, where the tone has
// settled past the attack transient.
func detectFrequency(mono []float64, rate int) float64 {
	if rate <= 0 {
		return 0
	}
	n := analysisWindow
	if n > len(mono) {
		n = 1
		for n*2 <= len(mono) {
			n *= 2
		}
	}
	if n < 16 {
		return 0
	}
	start := (len(mono) - n) / 2
	window := make([]float64, n)
	for i := range window {
		// Hann window keeps leakage off neighbouring bins
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		window[i] = mono[start+i] * w
	}
	coeffs := fft.FFTReal(window)
	best, bestMag := 0, 0.0
	for i := 1; i < n/2; i++ {
		mag := math.Hypot(real(coeffs[i]), imag(coeffs[i]))
		if mag > bestMag {
			best, bestMag = i, mag
		}
	}
	if best == 0 {
		return 0
	}
	return float64(best) * float64(rate) / float64(n)
}

// summarize decimates the mono signal to at most points peak values. The
// fingerprint and the waveform sketch both run on this summary.
func summarize(mono []float64, points int) []int16 {
	if len(mono) == 0 || points <= 0 {
		return nil
	}
	if points > len(mono) {
		points = len(mono)
	}
	step := len(mono) / points
	out := make([]int16, 0, points)
	for i := 0; i+step <= len(mono) && len(out) < points; i += step {
		var peak float64
		for _, v := range mono[i : i+step] {
			if a := math.Abs(v); a > peak {
				peak = a
			}
		}
		if peak > 1 {
			peak = 1
		}
		out = append(out, int16(peak*math.MaxInt16))
	}
	return out
}

// DetectedFrequency reports the FFT pitch estimate of the loaded
// recording, zero before the load finished.
func (s *Sampler) DetectedFrequency() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detected
}

// Fingerprint hashes the decimated sample summary, enough to tell
// whether two players were fed the same recording.
func (s *Sampler) Fingerprint() string {
	s.mu.Lock()
	summary := s.summary
	s.mu.Unlock()
	h := sha256.New()
	for _, v := range summary {
		binary.Write(h, binary.LittleEndian, v)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// WaveformPoints returns up to n peak values in [0, 1] for display.
func (s *Sampler) WaveformPoints(n int) []float64 {
	s.mu.Lock()
	mono := s.mono
	s.mu.Unlock()
	pts := summarize(mono, n)
	out := make([]float64, len(pts))
	for i, v := range pts {
		out[i] = float64(v) / math.MaxInt16
	}
	return out
}

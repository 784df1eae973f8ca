// Package sampler plays one recorded note at shifted pitches. It is a
// thin layer over beep: per-note voices resample the source recording to
// the requested frequency, run through a release envelope and feed a
// shared master volume stage on the speaker.
package sampler

import (
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
	"github.com/pkg/errors"
)

const (
	defaultSampleRate = 44100
	defaultQuality    = 4
)

// Config describes the single source recording and the output chain.
type Config struct {
	// SamplePath locates the WAV recording.
	SamplePath string
	// BaseFrequencyHz is the pitch the recording is anchored at. Zero
	// means detect it from the recording itself.
	BaseFrequencyHz float64
	// ReleaseSeconds is the linear decay applied after a release signal.
	// Zero cuts the voice immediately.
	ReleaseSeconds float64
	// VolumeDB is the initial master level.
	VolumeDB float64
	// SampleRate of the output context. Defaults to 44100.
	SampleRate int
	// Quality of the pitch-shift resampler, see beep.Resample.
	Quality int
}

// Sampler owns the decoded sample and the active voices. The speaker and
// output device are process-wide singletons; the sampler only holds its
// streamers on them.
type Sampler struct {
	cfg    Config
	loaded chan struct{}

	mu          sync.Mutex
	started     bool
	loadStarted bool
	loadErr     error
	samples  [][2]float64
	mono     []float64
	summary  []int16
	fileRate int
	base     float64
	detected float64

	mixer  *beep.Mixer
	master *effects.Volume
	voices map[string]*voice
}

func New(cfg Config) *Sampler {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = defaultSampleRate
	}
	if cfg.Quality <= 0 {
		cfg.Quality = defaultQuality
	}
	if cfg.ReleaseSeconds < 0 {
		cfg.ReleaseSeconds = 0
	}
	return &Sampler{
		cfg:    cfg,
		loaded: make(chan struct{}),
		voices: make(map[string]*voice),
	}
}

// Start brings the audio context up and kicks the sample load in the
// background. Loaded reports completion, Err a failed load. Starting an
// already started sampler is a no-op.
func (s *Sampler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	sr := beep.SampleRate(s.cfg.SampleRate)
	if err := speaker.Init(sr, sr.N(100*time.Millisecond)); err != nil {
		return errors.Wrap(err, "sampler: speaker init")
	}
	s.mixer = &beep.Mixer{}
	s.master = &effects.Volume{
		Streamer: s.mixer,
		Base:     2,
		Volume:   dbToBase2(s.cfg.VolumeDB),
	}
	speaker.Play(s.master)
	s.started = true

	if !s.loadStarted {
		s.loadStarted = true
		go s.load()
	}
	return nil
}

func (s *Sampler) load() {
	defer close(s.loaded)
	samples, mono, rate, err := loadWav(s.cfg.SamplePath)
	if err != nil {
		s.mu.Lock()
		s.loadErr = err
		s.mu.Unlock()
		return
	}
	detected := detectFrequency(mono, rate)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = samples
	s.mono = mono
	s.fileRate = rate
	s.summary = summarize(mono, summaryPoints)
	s.detected = detected
	s.base = s.cfg.BaseFrequencyHz
	if s.base == 0 {
		s.base = detected
	}
	if s.base == 0 {
		s.loadErr = errors.Errorf("sampler: could not determine anchor pitch of %s", s.cfg.SamplePath)
		s.samples = nil
	}
}

// Loaded closes once the background sample load has finished.
func (s *Sampler) Loaded() <-chan struct{} { return s.loaded }

// Err reports a failed sample load.
func (s *Sampler) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// TriggerAttack starts the sample pitched to freqHz. One voice per note
// name; retriggering a note that is still sounding cuts the old voice.
func (s *Sampler) TriggerAttack(note string, freqHz, velocity float64) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return errors.New("sampler: not started")
	}
	if s.samples == nil {
		err := s.loadErr
		s.mu.Unlock()
		if err == nil {
			err = errors.New("sampler: sample not loaded")
		}
		return err
	}
	if freqHz <= 0 {
		s.mu.Unlock()
		return errors.Errorf("sampler: invalid frequency %v", freqHz)
	}
	// ratio folds the pitch shift and the file/output rate mismatch into
	// one resampling pass
	ratio := freqHz / s.base * float64(s.fileRate) / float64(s.cfg.SampleRate)
	src := beep.ResampleRatio(s.cfg.Quality, ratio, &bufferStreamer{data: s.samples})
	v := &voice{s: src, gain: velocity, ramp: 1}
	old := s.voices[note]
	s.voices[note] = v
	s.mu.Unlock()

	speaker.Lock()
	if old != nil {
		old.release(0)
	}
	s.mixer.Add(v)
	speaker.Unlock()
	return nil
}

// TriggerRelease starts the release ramp for the named voice. Unknown or
// already released notes are no-ops.
func (s *Sampler) TriggerRelease(note string) {
	s.mu.Lock()
	v, ok := s.voices[note]
	if ok {
		delete(s.voices, note)
	}
	ramp := s.rampSamples()
	s.mu.Unlock()
	if !ok {
		return
	}
	speaker.Lock()
	v.release(ramp)
	speaker.Unlock()
}

// ReleaseAll starts the release ramp on every sounding voice.
func (s *Sampler) ReleaseAll() {
	s.mu.Lock()
	vs := make([]*voice, 0, len(s.voices))
	for note, v := range s.voices {
		vs = append(vs, v)
		delete(s.voices, note)
	}
	ramp := s.rampSamples()
	s.mu.Unlock()

	speaker.Lock()
	for _, v := range vs {
		v.release(ramp)
	}
	speaker.Unlock()
}

// SetVolume sets the master level in dB, unclamped.
func (s *Sampler) SetVolume(db float64) {
	s.mu.Lock()
	master := s.master
	s.mu.Unlock()
	if master == nil {
		return
	}
	speaker.Lock()
	master.Volume = dbToBase2(db)
	speaker.Unlock()
}

// Close silences the speaker and drops the sample. The audio context
// itself is process-wide and stays initialized. Safe to call repeatedly
// or on a sampler that never started. A closed sampler does not reload;
// construct a new one instead.
func (s *Sampler) Close() error {
	s.mu.Lock()
	started := s.started
	s.started = false
	s.samples = nil
	s.mono = nil
	for note := range s.voices {
		delete(s.voices, note)
	}
	s.mu.Unlock()
	if started {
		speaker.Clear()
	}
	return nil
}

// rampSamples is the release length in output samples. Callers hold s.mu.
func (s *Sampler) rampSamples() int {
	return int(s.cfg.ReleaseSeconds * float64(s.cfg.SampleRate))
}

// dbToBase2 converts decibels to the Base-2 exponent effects.Volume
// expects: gain 10^(db/20) equals 2^(db / (20*log10 2)).
func dbToBase2(db float64) float64 {
	return db / (20 * math.Log10(2))
}

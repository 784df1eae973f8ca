package player

import (
	"pitchref/pkg/sampler"
	"pitchref/pkg/tone"
)

// Engine is the sampling capability the player sequences. Start brings
// the audio context up and kicks the sample load; Loaded closes once the
// load finished, with Err reporting a load failure. The trigger methods
// drive playback of the single source recording at shifted pitches.
type Engine interface {
	Start() error
	Loaded() <-chan struct{}
	Err() error
	SetVolume(db float64)
	TriggerAttack(note string, freqHz, velocity float64) error
	TriggerRelease(note string)
	ReleaseAll()
	Close() error
}

func defaultEngine(cfg Config) (Engine, error) {
	base, ok := tone.ByName(cfg.BaseNote)
	if !ok {
		return nil, &InvalidNoteError{Name: cfg.BaseNote}
	}
	return sampler.New(sampler.Config{
		SamplePath:      cfg.SamplePath,
		BaseFrequencyHz: base.Frequency,
		ReleaseSeconds:  cfg.ReleaseSeconds,
		VolumeDB:        cfg.VolumeDB,
	}), nil
}

// Package player implements the reference-pitch player behind the
// pitch-training exercises. It owns one sampling engine, sounds a single
// voice at a time and schedules the release after a fixed duration.
package player

import (
	"math/rand"
	"sync"
	"time"

	"pitchref/internal/log"
	"pitchref/pkg/tone"
)

const (
	DefaultDuration = 2 * time.Second
	DefaultVelocity = 0.8
	DefaultRelease  = 1.0
	DefaultBaseNote = "C4"
)

// Config is fixed at construction.
type Config struct {
	// SamplePath locates the WAV recording used as the pitch-shift source.
	SamplePath string
	// BaseNote names the pitch the recording is anchored at.
	BaseNote string
	// ReleaseSeconds is the decay applied after a release signal.
	ReleaseSeconds float64
	// VolumeDB is the initial output level. 0 plays the sample unchanged.
	VolumeDB float64
	// AllowedNotes restricts which notes the exercises should request.
	// Defaults to every table entry. Advisory only: PlayNote validates
	// against the full table, not this list.
	AllowedNotes []string
	// NewEngine overrides engine construction. Defaults to the
	// beep-backed sampler.
	NewEngine func(Config) (Engine, error)
}

type state int

const (
	stateUninitialized state = iota
	stateInitializing
	stateReady
	statePlaying
	stateDisposed
)

// Player sequences one engine through initialize, attack, delayed
// release and disposal. All methods are safe for concurrent use; the
// single-voice guarantee is held by the mutex around the state.
type Player struct {
	cfg Config

	mu     sync.Mutex
	state  state
	engine Engine
}

func New(cfg Config) *Player {
	if cfg.BaseNote == "" {
		cfg.BaseNote = DefaultBaseNote
	}
	if cfg.ReleaseSeconds <= 0 {
		cfg.ReleaseSeconds = DefaultRelease
	}
	if cfg.AllowedNotes == nil {
		cfg.AllowedNotes = tone.Names()
	}
	if cfg.NewEngine == nil {
		cfg.NewEngine = defaultEngine
	}
	return &Player{cfg: cfg}
}

// Initialize starts the engine and waits for the sample load to finish.
// Calling it again after success logs a warning and returns nil. On
// failure the player stays uninitialized and Initialize may be retried.
func (p *Player) Initialize() error {
	p.mu.Lock()
	switch p.state {
	case stateReady, statePlaying:
		p.mu.Unlock()
		log.Warnf("player: already initialized")
		return nil
	case stateInitializing:
		p.mu.Unlock()
		log.Warnf("player: initialization already in progress")
		return nil
	}
	p.state = stateInitializing
	p.mu.Unlock()

	eng, err := p.cfg.NewEngine(p.cfg)
	if err == nil {
		if err = eng.Start(); err == nil {
			<-eng.Loaded()
			err = eng.Err()
		}
		if err != nil {
			eng.Close()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.state = stateUninitialized
		return &InitializationError{Cause: err}
	}
	p.engine = eng
	p.state = stateReady
	log.Debugf("player: initialized, sample %s", p.cfg.SamplePath)
	return nil
}

// PlayNote sounds one note for the given duration. Zero duration and
// velocity fall back to the 2s / 0.8 defaults. While a note is already
// sounding the call is skipped: one voice per player. The release is
// scheduled and never cancelled; if the player is stopped or closed in
// the meantime it fires as a redundant signal, or not at all once the
// engine handle is gone.
func (p *Player) PlayNote(name string, duration time.Duration, velocity float64) error {
	if duration <= 0 {
		duration = DefaultDuration
	}
	if velocity <= 0 {
		velocity = DefaultVelocity
	}

	p.mu.Lock()
	switch p.state {
	case statePlaying:
		p.mu.Unlock()
		log.Warnf("player: already playing, skipping %s", name)
		return nil
	case stateReady:
	default:
		p.mu.Unlock()
		return &NotInitializedError{Op: "PlayNote"}
	}
	entry, ok := tone.ByName(name)
	if !ok {
		p.mu.Unlock()
		return &InvalidNoteError{Name: name}
	}
	eng := p.engine
	p.state = statePlaying
	p.mu.Unlock()

	log.Debugf("player: attack %s (%.2f Hz, velocity %.2f)", entry.Name, entry.Frequency, velocity)
	if err := eng.TriggerAttack(entry.Name, entry.Frequency, velocity); err != nil {
		p.mu.Lock()
		if p.state == statePlaying {
			p.state = stateReady
		}
		p.mu.Unlock()
		return err
	}

	time.AfterFunc(duration, func() {
		p.mu.Lock()
		eng := p.engine
		if p.state == statePlaying {
			p.state = stateReady
		}
		p.mu.Unlock()
		if eng != nil {
			log.Debugf("player: release %s", entry.Name)
			eng.TriggerRelease(entry.Name)
		}
	})
	return nil
}

// PlayRandomNote picks one table entry uniformly at random and plays it
// with the default velocity. The returned entry is the note that was
// requested; the single-voice guard may still have skipped the attack.
func (p *Player) PlayRandomNote(duration time.Duration) (tone.Note, error) {
	entry := tone.Table[rand.Intn(len(tone.Table))]
	return entry, p.PlayNote(entry.Name, duration, 0)
}

// StopNote releases the given note immediately and clears the playing
// state, whether or not that note is the one sounding.
func (p *Player) StopNote(name string) {
	p.mu.Lock()
	eng := p.engine
	if eng == nil {
		p.mu.Unlock()
		log.Warnf("player: StopNote before Initialize")
		return
	}
	if p.state == statePlaying {
		p.state = stateReady
	}
	p.mu.Unlock()
	eng.TriggerRelease(name)
}

// StopAll releases every sounding voice and clears the playing state.
func (p *Player) StopAll() {
	p.mu.Lock()
	eng := p.engine
	if eng == nil {
		p.mu.Unlock()
		log.Warnf("player: StopAll before Initialize")
		return
	}
	if p.state == statePlaying {
		p.state = stateReady
	}
	p.mu.Unlock()
	eng.ReleaseAll()
}

// SetVolume sets the output level in dB. Values are passed through to
// the engine unclamped.
func (p *Player) SetVolume(db float64) {
	p.mu.Lock()
	eng := p.engine
	p.mu.Unlock()
	if eng == nil {
		log.Warnf("player: SetVolume before Initialize")
		return
	}
	eng.SetVolume(db)
}

// IsPlaying reports whether a note is currently sounding.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == statePlaying
}

// Engine returns the engine handle, nil before Initialize and after
// Close.
func (p *Player) Engine() Engine {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.engine
}

// Close releases the engine. Safe to call repeatedly or before
// Initialize; a fresh Initialize brings the player back.
func (p *Player) Close() error {
	p.mu.Lock()
	eng := p.engine
	p.engine = nil
	p.state = stateDisposed
	p.mu.Unlock()
	if eng == nil {
		return nil
	}
	return eng.Close()
}

// Notes returns the full reference table.
func Notes() []tone.Note { return tone.Table }

// NoteByName looks a note up by its exact name.
func NoteByName(name string) (tone.Note, bool) { return tone.ByName(name) }

// NoteNear returns the table entry closest to freq.
func NoteNear(freq float64) tone.Note { return tone.Nearest(freq) }

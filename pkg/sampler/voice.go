package sampler

import "github.com/faiface/beep"

// bufferStreamer streams the decoded sample once, front to back.
type bufferStreamer struct {
	data [][2]float64
	pos  int
}

func (b *bufferStreamer) Stream(samples [][2]float64) (int, bool) {
	if b.pos >= len(b.data) {
		return 0, false
	}
	n := copy(samples, b.data[b.pos:])
	b.pos += n
	return n, true
}

func (b *bufferStreamer) Err() error { return nil }

// voice plays one pitched copy of the source sample with a velocity gain
// and a linear release ramp. All mutation happens under speaker.Lock,
// the same lock Stream is driven under.
type voice struct {
	s    beep.Streamer
	gain float64

	releasing bool
	ramp      float64 // release multiplier, runs 1 → 0
	rampStep  float64
	done      bool
}

// release starts the ramp. rampSamples is its length in output samples;
// zero or less cuts the voice immediately. Releasing twice keeps the
// first ramp.
func (v *voice) release(rampSamples int) {
	if v.releasing {
		return
	}
	v.releasing = true
	if rampSamples <= 0 {
		v.ramp = 0
		v.done = true
		return
	}
	v.rampStep = 1 / float64(rampSamples)
}

func (v *voice) Stream(samples [][2]float64) (int, bool) {
	if v.done {
		return 0, false
	}
	n, ok := v.s.Stream(samples)
	if !ok {
		v.done = true
	}
	for i := 0; i < n; i++ {
		g := v.gain
		if v.releasing {
			g *= v.ramp
			v.ramp -= v.rampStep
			if v.ramp < 0 {
				v.ramp = 0
			}
		}
		samples[i][0] *= g
		samples[i][1] *= g
	}
	if v.releasing && v.ramp <= 0 {
		v.done = true
	}
	if n == 0 {
		return 0, false
	}
	return n, true
}

func (v *voice) Err() error { return nil }

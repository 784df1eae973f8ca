package sampler

import (
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"
)

// loadWav decodes a PCM WAV file into stereo frames plus a mono copy
// used for analysis. Mono files are duplicated onto both channels; of
// wider layouts only the first two channels are kept.
func loadWav(path string) ([][2]float64, []float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, 0, errors.Wrap(err, "sampler: open sample")
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	ibuf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, nil, 0, errors.Wrap(err, "sampler: decode sample")
	}
	if ibuf == nil || ibuf.Format == nil || len(ibuf.Data) == 0 {
		return nil, nil, 0, errors.Errorf("sampler: %s holds no audio", path)
	}
	samples, mono := toStereo(ibuf, int(dec.BitDepth))
	return samples, mono, ibuf.Format.SampleRate, nil
}

func toStereo(ibuf *audio.IntBuffer, bitDepth int) ([][2]float64, []float64) {
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := float64(uint64(1) << uint(bitDepth-1))
	ch := ibuf.Format.NumChannels
	if ch < 1 {
		ch = 1
	}
	frames := len(ibuf.Data) / ch
	samples := make([][2]float64, frames)
	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		l := float64(ibuf.Data[i*ch]) / scale
		r := l
		if ch > 1 {
			r = float64(ibuf.Data[i*ch+1]) / scale
		}
		samples[i] = [2]float64{l, r}
		mono[i] = (l + r) / 2
	}
	return samples, mono
}

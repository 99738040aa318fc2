// Package music synthesizes the procedural background bed laid under a reel's
// voiceover.
package music

import (
	"errors"
	"math"
	"math/rand/v2"

	"reelsmaker/internal/audio"
	"reelsmaker/internal/domain"
)

const (
	channels   = 2
	phaseDrift = 0.00005
)

// Generate renders a stereo bed of exactly ceil(durationSec*sampleRate)
// samples per channel. Each channel starts at its own random phase drawn
// from rng, so a seeded rng yields identical output.
func Generate(style domain.MusicStyle, durationSec float64, sampleRate int, rng *rand.Rand) (*audio.Buffer, error) {
	params, err := style.Params()
	if err != nil {
		return nil, err
	}
	if durationSec <= 0 || math.IsNaN(durationSec) || math.IsInf(durationSec, 0) {
		return nil, errors.New("music: duration must be positive")
	}
	if sampleRate <= 0 {
		return nil, errors.New("music: sample rate must be positive")
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	total := int(math.Ceil(durationSec * float64(sampleRate)))
	buf := audio.NewBuffer(channels, total, sampleRate)
	for ch := range buf.Channels {
		fillChannel(buf.Channels[ch], params, durationSec, float64(sampleRate), rng)
	}
	return buf, nil
}

func fillChannel(out []float32, p domain.MusicParams, duration, sampleRate float64, rng *rand.Rand) {
	phase := rng.Float64() * 2 * math.Pi
	for i := range out {
		t := float64(i) / sampleRate
		envelope := 0.8*math.Sin(math.Pi*t/duration) + 0.2*math.Sin(3*math.Pi*t/duration)
		beat := math.Sin(2*math.Pi*p.BaseFrequency*t/60+phase) * (0.6 + 0.4*envelope)
		airy := math.Sin(2*math.Pi*(p.BaseFrequency/2)*t/60+phase*0.5) * (0.4 + 0.3*envelope)
		noise := (rng.Float64()*2 - 1) * p.NoiseLevel
		out[i] = float32((beat+airy)*0.25 + noise*0.5)
		phase += phaseDrift
	}
}

// BedSeconds is how long the bed must last under a voice track.
func BedSeconds(voiceSec float64) float64 {
	return math.Max(voiceSec+1.5, 18)
}

package domain

import "fmt"

// MusicStyle is one of the fixed procedural music presets.
type MusicStyle string

const (
	MusicCyberGroove  MusicStyle = "cyber-groove"
	MusicAmbientRise  MusicStyle = "ambient-rise"
	MusicHyperwave    MusicStyle = "hyperwave"
	MusicFutureChill  MusicStyle = "future-chill"
	MusicUpliftPop    MusicStyle = "uplift-pop"
	MusicMinimalDrift MusicStyle = "minimal-drift"
)

// MusicParams are the synthesis parameters bound to a MusicStyle.
type MusicParams struct {
	BaseFrequency float64
	NoiseLevel    float64
}

// Adding a style means adding a row here.
var musicStyleTable = map[MusicStyle]MusicParams{
	MusicCyberGroove:  {BaseFrequency: 90, NoiseLevel: 0.25},
	MusicAmbientRise:  {BaseFrequency: 48, NoiseLevel: 0.05},
	MusicHyperwave:    {BaseFrequency: 140, NoiseLevel: 0.35},
	MusicFutureChill:  {BaseFrequency: 70, NoiseLevel: 0.12},
	MusicUpliftPop:    {BaseFrequency: 110, NoiseLevel: 0.18},
	MusicMinimalDrift: {BaseFrequency: 55, NoiseLevel: 0.08},
}

// MusicStyles lists the supported styles in display order.
var MusicStyles = []MusicStyle{
	MusicCyberGroove,
	MusicAmbientRise,
	MusicHyperwave,
	MusicFutureChill,
	MusicUpliftPop,
	MusicMinimalDrift,
}

// Params returns the synthesis parameters of the style.
func (s MusicStyle) Params() (MusicParams, error) {
	p, ok := musicStyleTable[s]
	if !ok {
		return MusicParams{}, fmt.Errorf("%w: music style %q", ErrInvalidStyle, string(s))
	}
	return p, nil
}

// Valid reports whether s is a known style.
func (s MusicStyle) Valid() bool {
	_, ok := musicStyleTable[s]
	return ok
}

// VoiceStyle selects the narrator preset.
type VoiceStyle string

const (
	VoiceLumen VoiceStyle = "lumen"
	VoiceAstra VoiceStyle = "astra"
	VoiceOrion VoiceStyle = "orion"
	VoiceVega  VoiceStyle = "vega"
)

// VoiceStyles lists the supported voices; lumen is the default.
var VoiceStyles = []VoiceStyle{VoiceLumen, VoiceAstra, VoiceOrion, VoiceVega}

var slowVoices = map[VoiceStyle]bool{VoiceAstra: true}

// Valid reports whether v is a known voice style.
func (v VoiceStyle) Valid() bool {
	for _, known := range VoiceStyles {
		if known == v {
			return true
		}
	}
	return false
}

// Slow reports whether the voice is narrated at the slow pace.
func (v VoiceStyle) Slow() bool {
	return slowVoices[v]
}

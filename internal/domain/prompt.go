package domain

import (
	"fmt"
	"strings"
)

// PlanRequest is the contract accepted by the generate-plan endpoint and sent
// by composers.
type PlanRequest struct {
	Script     string     `json:"script"`
	Platform   Platform   `json:"platform"`
	TemplateID string     `json:"templateId"`
	MusicStyle MusicStyle `json:"musicStyle"`
	VoiceStyle VoiceStyle `json:"voiceStyle"`
	Tone       string     `json:"tone"`
	Tier       Tier       `json:"tier"`

	// Locale selects the narration language. It is filled from the request
	// context, never from the body.
	Locale string `json:"-"`
}

// Normalize fills defaults for omitted optional fields.
func (r *PlanRequest) Normalize() {
	if r == nil {
		return
	}
	r.Platform = Platform(strings.ToLower(strings.TrimSpace(string(r.Platform))))
	r.TemplateID = strings.TrimSpace(r.TemplateID)
	if r.MusicStyle == "" {
		r.MusicStyle = MusicCyberGroove
	}
	if r.VoiceStyle == "" {
		r.VoiceStyle = VoiceLumen
	}
	r.Tier = ParseTier(string(r.Tier))
}

// Validate checks the enumerated fields. The script itself is checked by the
// planner so that an empty script maps to ErrEmptyScript.
func (r PlanRequest) Validate() error {
	if !r.MusicStyle.Valid() {
		return fmt.Errorf("%w: music style %q", ErrInvalidStyle, string(r.MusicStyle))
	}
	if !r.VoiceStyle.Valid() {
		return fmt.Errorf("%w: voice style %q", ErrInvalidStyle, string(r.VoiceStyle))
	}
	return nil
}

package domain

import (
	"time"

	"reelsmaker/internal/domain/jsoncfg"
)

// GenerationRecord is the history entry persisted after a reel is produced
// for an identified user.
type GenerationRecord struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	Script       string     `json:"script"`
	Platform     Platform   `json:"platform"`
	TemplateID   string     `json:"templateId"`
	MusicStyle   MusicStyle `json:"musicStyle"`
	VoiceStyle   VoiceStyle `json:"voiceStyle"`
	Tier         Tier       `json:"tier"`
	VideoKey     string     `json:"videoKey"`
	ThumbnailKey string     `json:"thumbnailKey,omitempty"`
	DurationMs   float64    `json:"durationMs"`
	CreatedAt    time.Time  `json:"createdAt"`

	Properties jsoncfg.GenerationProperties `json:"properties"`
}

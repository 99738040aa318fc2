package composer

import (
	"context"

	"reelsmaker/internal/audio"
	"reelsmaker/internal/compositor"
	"reelsmaker/internal/domain"
)

// Video bitrates in bits per second.
const (
	PremiumVideoBitrate = 6_000_000
	FreeVideoBitrate    = 2_500_000
)

// Music bed gains relative to the voice at 1.0.
const (
	PremiumMusicGain = 0.32
	FreeMusicGain    = 0.22
)

// RecordOptions configures one encode.
type RecordOptions struct {
	Dir          string
	Width        int
	Height       int
	FPS          int
	VideoBitrate int
}

// Recorder produces WebM reels from presented frames and a soundtrack.
type Recorder interface {
	// Check fails with domain.ErrCaptureUnsupported when recording is impossible.
	Check() error
	Start(ctx context.Context, opts RecordOptions) (Recording, error)
}

// Recording is an encode in progress.
type Recording interface {
	compositor.FrameSink
	// Finish ends the video stream, muxes mix in and returns the output path.
	Finish(ctx context.Context, mix *audio.Buffer) (string, error)
	Abort()
}

// AudioDecoder turns an encoded narration into PCM.
type AudioDecoder interface {
	Decode(ctx context.Context, encoded []byte) (*audio.Buffer, error)
}

func videoBitrate(tier domain.Tier) int {
	if tier.IsFree() {
		return FreeVideoBitrate
	}
	return PremiumVideoBitrate
}

func musicGain(tier domain.Tier) float32 {
	if tier.IsFree() {
		return FreeMusicGain
	}
	return PremiumMusicGain
}

var (
	_ Recorder     = (*FFmpeg)(nil)
	_ AudioDecoder = (*FFmpeg)(nil)
)

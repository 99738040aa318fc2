package compositor

import (
	"context"
	"time"
)

// DefaultFPS is the capture frame rate.
const DefaultFPS = 30

// FrameClock paces rendering. Tick blocks until the next frame slot and
// returns the clock time of that slot.
type FrameClock interface {
	Now() time.Duration
	Tick(ctx context.Context) (time.Duration, error)
}

// VirtualClock advances one frame interval per Tick without sleeping, so an
// offline encode runs as fast as the encoder accepts frames.
type VirtualClock struct {
	fps    int
	frames int64
}

// NewVirtualClock returns a clock at t=0 ticking at fps frames per second.
func NewVirtualClock(fps int) *VirtualClock {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &VirtualClock{fps: fps}
}

// FPS is the configured frame rate.
func (c *VirtualClock) FPS() int { return c.fps }

// Frames is the number of ticks issued so far.
func (c *VirtualClock) Frames() int64 { return c.frames }

func (c *VirtualClock) Now() time.Duration {
	return time.Duration(c.frames) * time.Second / time.Duration(c.fps)
}

func (c *VirtualClock) Tick(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.frames++
	return c.Now(), nil
}

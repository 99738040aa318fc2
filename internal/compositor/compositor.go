// Package compositor draws reel frames onto the fixed portrait canvas and
// pushes them to a frame sink on a FrameClock.
package compositor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"reelsmaker/internal/domain"
)

// FrameSink consumes presented frames, typically an encoder.
type FrameSink interface {
	WriteFrame(frame *image.RGBA) error
}

// Job is everything needed to draw a reel.
type Job struct {
	Scenes    []domain.Scene
	Template  domain.Template
	Watermark domain.Watermark
	Tier      domain.Tier
	// Visuals maps a scene visual reference to its decoded image. Missing
	// entries render on a black backdrop.
	Visuals map[string]image.Image
}

// Result describes a finished render.
type Result struct {
	LastFrame *image.RGBA
	Elapsed   time.Duration
	Frames    int
}

// Compositor renders scenes. A Compositor serializes its renders.
type Compositor struct {
	mu sync.Mutex
	tf *typeface
}

// New loads the embedded typefaces.
func New() (*Compositor, error) {
	tf, err := newTypeface()
	if err != nil {
		return nil, err
	}
	return &Compositor{tf: tf}, nil
}

// Render presents every scene for its duration. onProgress receives
// (index + min(1, elapsed/duration)) / count after each frame and 1.0 when
// the last scene completes.
func (c *Compositor) Render(ctx context.Context, job Job, clock FrameClock, sink FrameSink, onProgress func(float64)) (*Result, error) {
	if len(job.Scenes) == 0 {
		return nil, errors.New("compositor: no scenes to render")
	}
	if onProgress == nil {
		onProgress = func(float64) {}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	res := &Result{}
	total := float64(len(job.Scenes))
	for i, scene := range job.Scenes {
		if scene.DurationMs <= 0 {
			return nil, fmt.Errorf("compositor: scene %d has no duration", i)
		}
		frame := c.drawScene(scene, job)
		res.LastFrame = frame

		duration := time.Duration(scene.DurationMs * float64(time.Millisecond))
		start := clock.Now()
		for {
			now, err := clock.Tick(ctx)
			if err != nil {
				return nil, err
			}
			if err := sink.WriteFrame(frame); err != nil {
				return nil, fmt.Errorf("compositor: write frame: %w", err)
			}
			res.Frames++
			p := min(1, float64(now-start)/float64(duration))
			onProgress((float64(i) + p) / total)
			if p >= 1 {
				break
			}
		}
	}
	res.Elapsed = clock.Now()
	onProgress(1)
	return res, nil
}

// Hold keeps presenting frame until the clock reaches until.
func Hold(ctx context.Context, frame *image.RGBA, clock FrameClock, sink FrameSink, until time.Duration) (int, error) {
	frames := 0
	for clock.Now() < until {
		if _, err := clock.Tick(ctx); err != nil {
			return frames, err
		}
		if err := sink.WriteFrame(frame); err != nil {
			return frames, fmt.Errorf("compositor: write frame: %w", err)
		}
		frames++
	}
	return frames, nil
}

// DrawScene renders a single scene frame.
func (c *Compositor) DrawScene(scene domain.Scene, job Job) *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drawScene(scene, job)
}

func (c *Compositor) drawScene(scene domain.Scene, job Job) *image.RGBA {
	frame := newCanvas()
	drawBackdrop(frame, job.Visuals[scene.Visual])
	drawGradient(frame)

	accent := ParseAccent(job.Template.Accent)
	drawPanel(frame, accent)

	panel := Panel()
	lines := WrapLines(Upper(scene.Caption), CaptionWidth(), faceMeasurer(c.tf.caption))
	for i, line := range lines {
		drawText(frame, c.tf.caption, captionColor, panel.Min.X+panelPadding, panel.Min.Y+panelPadding+i*captionLeading, line)
	}
	drawText(frame, c.tf.highlight, accent, panel.Min.X+panelPadding, panel.Max.Y-highlightOffset, scene.Highlight)

	if job.Tier.IsFree() && job.Watermark.Text != "" {
		text := Upper(job.Watermark.Text)
		width := faceMeasurer(c.tf.watermark)(text)
		at := WatermarkAnchor(job.Template.WatermarkPosition, width)
		drawText(frame, c.tf.watermark, watermarkTint, at.X, at.Y, text)
	}
	return frame
}

// WatermarkAnchor returns the top-left point of a watermark of the given
// width for a corner position. Unknown positions fall back to bottom-right.
func WatermarkAnchor(pos domain.WatermarkPosition, textWidth int) image.Point {
	right := Width - textWidth - watermarkInset
	bottom := Height - watermarkBottom
	switch pos {
	case domain.WatermarkTopLeft:
		return image.Pt(watermarkInset, watermarkInset)
	case domain.WatermarkTopRight:
		return image.Pt(right, watermarkInset)
	case domain.WatermarkBottomLeft:
		return image.Pt(watermarkInset, bottom)
	default:
		return image.Pt(right, bottom)
	}
}

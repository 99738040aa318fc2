// Package composer runs reel composition jobs: plan, render, mix, record and
// persist, reporting every state change as an immutable JobState.
package composer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"reelsmaker/internal/audio"
	"reelsmaker/internal/compositor"
	"reelsmaker/internal/domain"
	"reelsmaker/internal/infra"
	"reelsmaker/internal/music"
	"reelsmaker/internal/providers/voice"
)

// Options wires a Composer. Uploader is optional; without it jobs never
// enter the uploading state.
type Options struct {
	Planner    Planner
	Decoder    AudioDecoder
	Recorder   Recorder
	Compositor *compositor.Compositor
	Assets     compositor.AssetLoader
	Uploader   Uploader
	WorkDir    string
	FPS        int
	SampleRate int
	NewRand    func() *rand.Rand
	Logger     infra.Logger
}

// Request starts one job. UserID is the caller identity, empty when anonymous.
type Request struct {
	Plan   domain.PlanRequest
	UserID string
}

// Composer executes jobs. It holds no per-job state; see Session for the
// single-job owner.
type Composer struct {
	opts Options
}

// New validates opts and applies defaults.
func New(opts Options) (*Composer, error) {
	switch {
	case opts.Planner == nil:
		return nil, errors.New("composer: planner is required")
	case opts.Decoder == nil:
		return nil, errors.New("composer: audio decoder is required")
	case opts.Recorder == nil:
		return nil, errors.New("composer: recorder is required")
	case opts.Compositor == nil:
		return nil, errors.New("composer: compositor is required")
	case opts.Assets == nil:
		return nil, errors.New("composer: asset loader is required")
	}
	if opts.FPS <= 0 {
		opts.FPS = compositor.DefaultFPS
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = audio.DefaultSampleRate
	}
	if opts.NewRand == nil {
		opts.NewRand = func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
	}
	return &Composer{opts: opts}, nil
}

// Preflight rejects requests that cannot succeed before any network call.
func (c *Composer) Preflight(req Request) error {
	if strings.TrimSpace(req.Plan.Script) == "" {
		return domain.ErrEmptyScript
	}
	return c.opts.Recorder.Check()
}

// Generate runs a job to a terminal state and returns it. The error is the
// cause when the job ends in error or preflight fails; the state then holds
// only the generic FailureMessage.
func (c *Composer) Generate(ctx context.Context, id string, req Request, observe Observer) (JobState, error) {
	if observe == nil {
		observe = func(JobState) {}
	}
	logger := c.opts.Logger.With().Str("job_id", id).Logger()
	st := JobState{ID: id, Status: domain.StatusIdle}
	if err := c.Preflight(req); err != nil {
		return st, err
	}
	req.Plan.Normalize()

	move := func(status domain.CompositionStatus, progress float64) {
		next, ok := st.with(status, progress)
		if !ok {
			logger.Error().Str("from", string(st.Status)).Str("to", string(status)).Msg("composer: illegal transition")
			return
		}
		st = next
		observe(st)
	}
	fail := func(err error) (JobState, error) {
		logger.Error().Err(err).Str("status", string(st.Status)).Msg("composer: job failed")
		next, _ := st.with(domain.StatusError, st.Progress)
		next.Result = nil
		next.Error = FailureMessage
		st = next
		observe(st)
		return st, err
	}

	move(domain.StatusPlanning, ProgressPlanning)
	plan, err := c.opts.Planner.Plan(ctx, req.Plan)
	if err != nil {
		return fail(fmt.Errorf("composer: plan: %w", err))
	}
	if plan == nil || len(plan.Timeline.Scenes) == 0 {
		return fail(domain.ErrNoScenes)
	}
	st.Plan = plan
	move(domain.StatusRendering, ProgressPlanned)

	lastEmitted := st.Progress
	onProgress := func(v float64) {
		p := ProgressPlanned + v*renderSpan
		if p <= st.Progress {
			return
		}
		st.Progress = p
		if p-lastEmitted >= 0.01 || v >= 1 {
			lastEmitted = p
			observe(st)
		}
	}
	result, err := c.render(ctx, id, req.Plan.Tier, plan, onProgress)
	if err != nil {
		return fail(err)
	}
	move(domain.StatusRendering, ProgressRecorded)
	logger.Info().Float64("duration_ms", result.DurationMs).Int64("bytes", result.Video.Bytes).Msg("composer: recorded")

	if req.UserID != "" && c.opts.Uploader != nil {
		move(domain.StatusUploading, ProgressRecorded)
		url, err := c.opts.Uploader.Upload(ctx, Upload{UserID: req.UserID, Request: req.Plan, Plan: plan, Result: result})
		if err != nil {
			if !errors.Is(err, domain.ErrPersistence) {
				err = fmt.Errorf("%w: %v", domain.ErrPersistence, err)
			}
			logger.Warn().Err(err).Str("user_id", req.UserID).Msg("composer: history not saved")
		} else {
			result.VideoURL = url
		}
	}

	st.Result = result
	move(domain.StatusReady, 1)
	logger.Info().Msg("composer: ready")
	return st, nil
}

func (c *Composer) render(ctx context.Context, id string, tier domain.Tier, plan *domain.GenerationPlan, onProgress func(float64)) (_ *Result, err error) {
	if c.opts.WorkDir != "" {
		if err := os.MkdirAll(c.opts.WorkDir, 0o755); err != nil {
			return nil, fmt.Errorf("composer: ensure work dir: %w", err)
		}
	}
	dir, err := os.MkdirTemp(c.opts.WorkDir, "reel-"+id+"-")
	if err != nil {
		return nil, fmt.Errorf("composer: create work dir: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(dir)
		}
	}()

	encoded, err := voice.DecodeDataURL(plan.Voiceover.Audio)
	if err != nil {
		return nil, err
	}

	var (
		narration *audio.Buffer
		visuals   map[string]image.Image
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		buf, err := c.opts.Decoder.Decode(gctx, encoded)
		if err != nil {
			return fmt.Errorf("composer: decode voice: %w", err)
		}
		narration = buf
		return nil
	})
	g.Go(func() error {
		loaded, err := compositor.LoadVisuals(gctx, c.opts.Assets, plan.Timeline.Scenes)
		if err != nil {
			return err
		}
		visuals = loaded
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	bed, err := music.Generate(plan.Music.Style, music.BedSeconds(narration.Seconds()), c.opts.SampleRate, c.opts.NewRand())
	if err != nil {
		return nil, fmt.Errorf("composer: music: %w", err)
	}

	rec, err := c.opts.Recorder.Start(ctx, RecordOptions{
		Dir:          dir,
		Width:        compositor.Width,
		Height:       compositor.Height,
		FPS:          c.opts.FPS,
		VideoBitrate: videoBitrate(tier),
	})
	if err != nil {
		return nil, fmt.Errorf("composer: start recorder: %w", err)
	}
	finished := false
	defer func() {
		if !finished {
			rec.Abort()
		}
	}()

	clock := compositor.NewVirtualClock(c.opts.FPS)
	rendered, err := c.opts.Compositor.Render(ctx, compositor.Job{
		Scenes:    plan.Timeline.Scenes,
		Template:  plan.Template,
		Watermark: plan.Watermark,
		Tier:      tier,
		Visuals:   visuals,
	}, clock, rec, onProgress)
	if err != nil {
		return nil, err
	}
	// Recording stops only once the narration has also ended.
	if _, err := compositor.Hold(ctx, rendered.LastFrame, clock, rec, narration.Duration()); err != nil {
		return nil, err
	}

	recorded := clock.Now()
	frames := int(math.Round(recorded.Seconds() * float64(c.opts.SampleRate)))
	mix, err := audio.Mix(frames, c.opts.SampleRate,
		audio.Source{Buffer: narration, Gain: 1},
		audio.Source{Buffer: bed, Gain: musicGain(tier)},
	)
	if err != nil {
		return nil, fmt.Errorf("composer: mix: %w", err)
	}
	videoPath, err := rec.Finish(ctx, mix)
	finished = true
	if err != nil {
		return nil, fmt.Errorf("composer: finish recording: %w", err)
	}

	thumbPath := filepath.Join(dir, "thumbnail.png")
	if err := compositor.WriteThumbnail(thumbPath, rendered.LastFrame); err != nil {
		return nil, err
	}

	video, err := assetAt(domain.AssetKindVideo, videoPath, "video/webm")
	if err != nil {
		return nil, err
	}
	thumb, err := assetAt(domain.AssetKindThumbnail, thumbPath, "image/png")
	if err != nil {
		return nil, err
	}
	return &Result{
		Video:      video,
		Thumbnail:  thumb,
		DurationMs: float64(recorded) / float64(time.Millisecond),
		dir:        dir,
	}, nil
}

func assetAt(kind domain.AssetKind, path, mime string) (domain.Asset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.Asset{}, fmt.Errorf("composer: stat %s: %w", kind, err)
	}
	return domain.Asset{
		Kind:   kind,
		Path:   path,
		MIME:   mime,
		Bytes:  info.Size(),
		Width:  compositor.Width,
		Height: compositor.Height,
	}, nil
}

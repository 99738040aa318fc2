package composer

import (
	"context"
	"errors"
	"image"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"reelsmaker/internal/audio"
	"reelsmaker/internal/compositor"
	"reelsmaker/internal/domain"
	"reelsmaker/internal/providers/voice"
)

type stubPlanner struct {
	mu      sync.Mutex
	calls   int
	plan    *domain.GenerationPlan
	err     error
	release chan struct{}
	entered chan struct{}
}

func (p *stubPlanner) Plan(ctx context.Context, _ domain.PlanRequest) (*domain.GenerationPlan, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.entered != nil {
		p.entered <- struct{}{}
	}
	if p.release != nil {
		select {
		case <-p.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return p.plan, p.err
}

func (p *stubPlanner) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type stubDecoder struct {
	seconds float64
	err     error
}

func (d stubDecoder) Decode(context.Context, []byte) (*audio.Buffer, error) {
	if d.err != nil {
		return nil, d.err
	}
	buf := audio.NewBuffer(2, int(d.seconds*audio.DefaultSampleRate), audio.DefaultSampleRate)
	for _, ch := range buf.Channels {
		for i := range ch {
			ch[i] = 0.5
		}
	}
	return buf, nil
}

type fakeRecorder struct {
	checkErr  error
	finishErr error

	mu       sync.Mutex
	opts     RecordOptions
	frames   int
	mix      *audio.Buffer
	aborted  bool
	finished bool
}

func (r *fakeRecorder) Check() error { return r.checkErr }

func (r *fakeRecorder) Start(_ context.Context, opts RecordOptions) (Recording, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opts = opts
	return &fakeRecording{rec: r}, nil
}

type fakeRecording struct {
	rec *fakeRecorder
}

func (f *fakeRecording) WriteFrame(*image.RGBA) error {
	f.rec.mu.Lock()
	f.rec.frames++
	f.rec.mu.Unlock()
	return nil
}

func (f *fakeRecording) Finish(_ context.Context, mix *audio.Buffer) (string, error) {
	f.rec.mu.Lock()
	defer f.rec.mu.Unlock()
	f.rec.finished = true
	f.rec.mix = mix
	if f.rec.finishErr != nil {
		return "", f.rec.finishErr
	}
	path := filepath.Join(f.rec.opts.Dir, "reel.webm")
	if err := os.WriteFile(path, []byte("webm"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (f *fakeRecording) Abort() {
	f.rec.mu.Lock()
	f.rec.aborted = true
	f.rec.mu.Unlock()
}

type stubAssets struct{}

func (stubAssets) Load(_ context.Context, ref string) (image.Image, error) {
	if ref == "/assets/missing.jpg" {
		return nil, errors.New("not found")
	}
	return image.NewRGBA(image.Rect(0, 0, 9, 16)), nil
}

type stubUploader struct {
	calls int
	last  Upload
	url   string
	err   error
}

func (u *stubUploader) Upload(_ context.Context, up Upload) (string, error) {
	u.calls++
	u.last = up
	return u.url, u.err
}

func testPlan(sceneMs ...float64) *domain.GenerationPlan {
	scenes := make([]domain.Scene, len(sceneMs))
	for i, ms := range sceneMs {
		scenes[i] = domain.Scene{
			ID:         string(rune('a' + i)),
			Caption:    "Scene caption",
			Highlight:  "Scene",
			Visual:     "/assets/neon-city.jpg",
			DurationMs: ms,
		}
	}
	return &domain.GenerationPlan{
		Template:  domain.Template{ID: "cyberwave", Accent: "#38bdf8", WatermarkPosition: domain.WatermarkBottomRight},
		Timeline:  domain.Timeline{Scenes: scenes, Hashtags: []string{"#fyp"}, CallToAction: "Follow", Hook: "Scene caption"},
		Voiceover: domain.VoiceAsset{Audio: voice.EncodeDataURL(voice.FormatMPEG, []byte("mp3")), Format: voice.FormatMPEG},
		Music:     domain.MusicCue{Style: domain.MusicCyberGroove, Energy: 0.6},
		Watermark: domain.Watermark{Required: true, Text: "AI Reels Maker"},
	}
}

var (
	sharedCompositor     *compositor.Compositor
	sharedCompositorOnce sync.Once
	sharedCompositorErr  error
)

func testCompositor(t *testing.T) *compositor.Compositor {
	t.Helper()
	sharedCompositorOnce.Do(func() {
		sharedCompositor, sharedCompositorErr = compositor.New()
	})
	if sharedCompositorErr != nil {
		t.Fatalf("compositor.New: %v", sharedCompositorErr)
	}
	return sharedCompositor
}

type harness struct {
	planner  *stubPlanner
	recorder *fakeRecorder
	uploader *stubUploader
	workDir  string
	composer *Composer
}

func newHarness(t *testing.T, plan *domain.GenerationPlan, voiceSeconds float64) *harness {
	t.Helper()
	h := &harness{
		planner:  &stubPlanner{plan: plan},
		recorder: &fakeRecorder{},
		uploader: &stubUploader{url: "http://localhost/static/reels/u/1.webm"},
		workDir:  t.TempDir(),
	}
	c, err := New(Options{
		Planner:    h.planner,
		Decoder:    stubDecoder{seconds: voiceSeconds},
		Recorder:   h.recorder,
		Compositor: testCompositor(t),
		Assets:     stubAssets{},
		Uploader:   h.uploader,
		WorkDir:    h.workDir,
		NewRand:    func() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) },
		Logger:     zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	h.composer = c
	return h
}

func workDirEntries(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read work dir: %v", err)
	}
	return len(entries)
}

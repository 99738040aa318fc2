package compositor

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"reelsmaker/internal/domain"
)

type countingSink struct {
	frames []*image.RGBA
	failAt int
}

func (s *countingSink) WriteFrame(frame *image.RGBA) error {
	if s.failAt > 0 && len(s.frames)+1 == s.failAt {
		return errors.New("encoder closed")
	}
	s.frames = append(s.frames, frame)
	return nil
}

func runeMeasurer(px int) Measurer {
	return func(s string) int { return len([]rune(s)) * px }
}

func TestWrapLinesGreedy(t *testing.T) {
	lines := WrapLines("UNLOCK A WORKFLOW THAT SHIPS", 100, runeMeasurer(10))
	want := []string{"UNLOCK A", "WORKFLOW", "THAT SHIPS"}
	if len(lines) != len(want) {
		t.Fatalf("WrapLines = %#v, want %#v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestWrapLinesSplitsOverlongWord(t *testing.T) {
	measure := runeMeasurer(10)
	lines := WrapLines("GO SUPERCALIFRAGILISTIC NOW", 60, measure)
	for _, line := range lines {
		if measure(line) > 60 {
			t.Fatalf("line %q exceeds width", line)
		}
	}
	if len(lines) != 5 || lines[0] != "GO" || lines[4] != "IC NOW" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
}

func TestWrapLinesWithCaptionFace(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	measure := faceMeasurer(c.tf.caption)
	caption := Upper("Creators who batch their scripts on Monday ship three times more reels by Friday without burning out.")
	lines := WrapLines(caption, CaptionWidth(), measure)
	if len(lines) < 2 {
		t.Fatalf("expected the caption to wrap, got %#v", lines)
	}
	for _, line := range lines {
		if w := measure(line); w > CaptionWidth() {
			t.Fatalf("line %q is %dpx, wider than %d", line, w, CaptionWidth())
		}
	}
}

func TestPanelGeometry(t *testing.T) {
	p := Panel()
	if p != image.Rect(58, 742, 663, 1100) {
		t.Fatalf("Panel = %v", p)
	}
	if CaptionWidth() != 557 {
		t.Fatalf("CaptionWidth = %d", CaptionWidth())
	}
}

func TestCoverFit(t *testing.T) {
	// A landscape image is scaled to full height and cropped left and right.
	r := coverFit(image.Rect(0, 0, 1920, 1080))
	if r.Min.Y > 0 || r.Min.Y < -1 || r.Max.Y < Height {
		t.Fatalf("landscape cover rect = %v", r)
	}
	if sum := r.Min.X + r.Max.X; r.Min.X >= 0 || r.Max.X <= Width || sum < Width-1 || sum > Width+1 {
		t.Fatalf("landscape cover rect not centered: %v", r)
	}
	if got := coverFit(image.Rect(0, 0, 360, 640)); got != image.Rect(0, 0, Width, Height) {
		t.Fatalf("same aspect cover rect = %v", got)
	}
}

func TestWatermarkAnchor(t *testing.T) {
	cases := []struct {
		pos  domain.WatermarkPosition
		want image.Point
	}{
		{domain.WatermarkTopLeft, image.Pt(32, 32)},
		{domain.WatermarkTopRight, image.Pt(720-200-32, 32)},
		{domain.WatermarkBottomLeft, image.Pt(32, 1280-54)},
		{domain.WatermarkBottomRight, image.Pt(720-200-32, 1280-54)},
		{"", image.Pt(720-200-32, 1280-54)},
	}
	for _, tc := range cases {
		if got := WatermarkAnchor(tc.pos, 200); got != tc.want {
			t.Fatalf("WatermarkAnchor(%q) = %v, want %v", tc.pos, got, tc.want)
		}
	}
}

func TestParseAccent(t *testing.T) {
	if got := ParseAccent("#f472b6"); got != (color.NRGBA{R: 0xf4, G: 0x72, B: 0xb6, A: 255}) {
		t.Fatalf("ParseAccent = %v", got)
	}
	if got := ParseAccent("#fff"); got != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("ParseAccent short = %v", got)
	}
	if got := ParseAccent("teal"); got != defaultAccent {
		t.Fatalf("ParseAccent invalid = %v", got)
	}
}

func testJob(tier domain.Tier) Job {
	return Job{
		Scenes: []domain.Scene{
			{ID: "a", Caption: "Unlock a workflow.", Highlight: "Unlock a workflow.", DurationMs: 100},
			{ID: "b", Caption: "Hook viewers fast.", Highlight: "Hook viewers fast.", DurationMs: 50},
		},
		Template:  domain.Template{Accent: "#38bdf8", WatermarkPosition: domain.WatermarkTopLeft},
		Watermark: domain.Watermark{Required: tier.IsFree(), Text: "AI Reels Maker"},
		Tier:      tier,
	}
}

func TestRenderProgressIsMonotonicAndCompletes(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	clock := NewVirtualClock(30)
	sink := &countingSink{}
	var progress []float64

	res, err := c.Render(context.Background(), testJob(domain.TierPremium), clock, sink, func(v float64) {
		progress = append(progress, v)
	})
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	// 100ms is 3 frames at 30fps; 50ms needs 2 frames.
	if res.Frames != 5 || len(sink.frames) != 5 {
		t.Fatalf("frames = %d (sink %d), want 5", res.Frames, len(sink.frames))
	}
	if res.Elapsed != clock.Now() || res.Elapsed < 150*time.Millisecond {
		t.Fatalf("elapsed = %v", res.Elapsed)
	}
	if res.LastFrame != sink.frames[len(sink.frames)-1] {
		t.Fatalf("last frame should be the final presented frame")
	}
	for i := 1; i < len(progress); i++ {
		if progress[i] < progress[i-1] {
			t.Fatalf("progress decreased at %d: %v", i, progress)
		}
	}
	if progress[len(progress)-1] != 1 {
		t.Fatalf("final progress = %v", progress[len(progress)-1])
	}
	if progress[2] != 0.5 {
		t.Fatalf("first scene should complete at 0.5, got %v", progress[2])
	}
}

func TestRenderStopsOnSinkError(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	sink := &countingSink{failAt: 2}
	if _, err := c.Render(context.Background(), testJob(domain.TierFree), NewVirtualClock(30), sink, nil); err == nil {
		t.Fatalf("expected sink error")
	}
	if _, err := c.Render(context.Background(), Job{}, NewVirtualClock(30), sink, nil); err == nil {
		t.Fatalf("expected error for empty job")
	}
}

func TestWatermarkOnlyOnFreeTier(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	scene := testJob(domain.TierFree).Scenes[0]
	free := c.DrawScene(scene, testJob(domain.TierFree))
	premium := c.DrawScene(scene, testJob(domain.TierPremium))

	region := image.Rect(32, 32, 200, 70)
	differs := false
	for y := region.Min.Y; y < region.Max.Y && !differs; y++ {
		for x := region.Min.X; x < region.Max.X; x++ {
			if free.RGBAAt(x, y) != premium.RGBAAt(x, y) {
				differs = true
				break
			}
		}
	}
	if !differs {
		t.Fatalf("free frame should carry a watermark in the top-left corner")
	}

	outside := image.Pt(5, 640)
	if free.RGBAAt(outside.X, outside.Y) != premium.RGBAAt(outside.X, outside.Y) {
		t.Fatalf("frames should match away from the watermark")
	}
	if premium.RGBAAt(0, 0).A != 255 {
		t.Fatalf("frames should be opaque")
	}
}

func TestHoldPresentsUntilDeadline(t *testing.T) {
	clock := NewVirtualClock(30)
	sink := &countingSink{}
	frame := newCanvas()
	n, err := Hold(context.Background(), frame, clock, sink, time.Second)
	if err != nil {
		t.Fatalf("Hold returned error: %v", err)
	}
	if n != 30 || clock.Now() != time.Second {
		t.Fatalf("held %d frames to %v", n, clock.Now())
	}
	if n, _ := Hold(context.Background(), frame, clock, sink, time.Second/2); n != 0 {
		t.Fatalf("hold in the past should present nothing, got %d", n)
	}
}

func TestVirtualClockHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewVirtualClock(30).Tick(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Tick error = %v", err)
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write png: %v", err)
	}
}

func TestLoadVisuals(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "assets"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writePNG(t, filepath.Join(dir, "assets", "neon-city.png"), 16, 9)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/remote.png" {
			http.NotFound(w, r)
			return
		}
		img := image.NewRGBA(image.Rect(0, 0, 4, 4))
		_ = png.Encode(w, img)
	}))
	defer srv.Close()

	loader := NewLoader(dir, srv.Client())
	scenes := []domain.Scene{
		{Visual: "/assets/neon-city.png"},
		{Visual: srv.URL + "/remote.png"},
		{Visual: "/assets/neon-city.png"},
	}
	visuals, err := LoadVisuals(context.Background(), loader, scenes)
	if err != nil {
		t.Fatalf("LoadVisuals returned error: %v", err)
	}
	if len(visuals) != 2 {
		t.Fatalf("expected 2 distinct visuals, got %d", len(visuals))
	}
	if b := visuals["/assets/neon-city.png"].Bounds(); b.Dx() != 16 || b.Dy() != 9 {
		t.Fatalf("local visual bounds = %v", b)
	}

	_, err = LoadVisuals(context.Background(), loader, []domain.Scene{{Visual: srv.URL + "/missing.png"}})
	if err == nil {
		t.Fatalf("expected error for missing remote visual")
	}
	if _, err := loader.Load(context.Background(), "/../secret.png"); err == nil {
		t.Fatalf("expected error for traversal")
	}
}

func TestThumbnailIsCanvasSizedPNG(t *testing.T) {
	data, err := EncodeThumbnail(newCanvas())
	if err != nil {
		t.Fatalf("EncodeThumbnail returned error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, Width, Height) {
		t.Fatalf("thumbnail bounds = %v", img.Bounds())
	}
}

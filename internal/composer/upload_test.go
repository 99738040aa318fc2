package composer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"reelsmaker/internal/domain"
	"reelsmaker/internal/storage"
)

type memoryHistory struct {
	saved []domain.GenerationRecord
	err   error
}

func (m *memoryHistory) SaveGeneration(_ context.Context, rec *domain.GenerationRecord) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, *rec)
	return nil
}

func (m *memoryHistory) ListByUser(context.Context, string, int) ([]domain.GenerationRecord, error) {
	return m.saved, nil
}

func uploadFixture(t *testing.T) Upload {
	t.Helper()
	dir := t.TempDir()
	video := filepath.Join(dir, "reel.webm")
	thumb := filepath.Join(dir, "thumbnail.png")
	for _, p := range []string{video, thumb} {
		if err := os.WriteFile(p, []byte(filepath.Base(p)), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}
	return Upload{
		UserID:  "user-1",
		Request: domain.PlanRequest{Script: "One.", Platform: "tiktok", MusicStyle: domain.MusicHyperwave, VoiceStyle: domain.VoiceAstra, Tier: domain.TierFree, Tone: "launch"},
		Plan:    testPlan(2600),
		Result: &Result{
			Video:      domain.Asset{Kind: domain.AssetKindVideo, Path: video},
			Thumbnail:  domain.Asset{Kind: domain.AssetKindThumbnail, Path: thumb},
			DurationMs: 2600,
		},
	}
}

func TestStoreUploaderSavesRecord(t *testing.T) {
	files, err := storage.NewFileStore(t.TempDir(), "http://cdn.test/static")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	history := &memoryHistory{}
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	u := &StoreUploader{Files: files, History: history, Now: func() time.Time { return fixed }}

	url, err := u.Upload(context.Background(), uploadFixture(t))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if len(history.saved) != 1 {
		t.Fatalf("saved %d records", len(history.saved))
	}
	rec := history.saved[0]
	if url != "http://cdn.test/static/"+rec.VideoKey {
		t.Fatalf("url = %q, key = %q", url, rec.VideoKey)
	}
	if rec.UserID != "user-1" || rec.TemplateID != "cyberwave" || rec.VoiceStyle != domain.VoiceAstra || !rec.CreatedAt.Equal(fixed) {
		t.Fatalf("record = %#v", rec)
	}
	if rec.Properties.SceneCount != 1 || !rec.Properties.Watermarked || rec.Properties.VideoURL != url || rec.Properties.Version == "" {
		t.Fatalf("properties = %#v", rec.Properties)
	}
	f, err := files.Open(rec.ThumbnailKey)
	if err != nil {
		t.Fatalf("thumbnail not stored: %v", err)
	}
	f.Close()
}

func TestStoreUploaderWrapsFailures(t *testing.T) {
	files, err := storage.NewFileStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	u := &StoreUploader{Files: files, History: &memoryHistory{err: errors.New("db down")}}
	if _, err := u.Upload(context.Background(), uploadFixture(t)); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("error = %v, want ErrPersistence", err)
	}

	var nilUploader *StoreUploader
	if _, err := nilUploader.Upload(context.Background(), uploadFixture(t)); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("error = %v, want ErrPersistence", err)
	}
}

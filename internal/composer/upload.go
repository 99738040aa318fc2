package composer

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"

	"reelsmaker/internal/domain"
	"reelsmaker/internal/domain/jsoncfg"
	"reelsmaker/internal/storage"
)

// Upload is what gets persisted for an identified user.
type Upload struct {
	UserID  string
	Request domain.PlanRequest
	Plan    *domain.GenerationPlan
	Result  *Result
}

// Uploader persists a finished reel. The returned string is the public URL
// of the stored video.
type Uploader interface {
	Upload(ctx context.Context, up Upload) (string, error)
}

// StoreUploader copies reels into a FileStore and records them in the
// generation history.
type StoreUploader struct {
	Files   *storage.FileStore
	History domain.GenerationRepository
	Now     func() time.Time
}

func (u *StoreUploader) Upload(ctx context.Context, up Upload) (string, error) {
	if u == nil || u.Files == nil || u.History == nil {
		return "", fmt.Errorf("%w: no store configured", domain.ErrPersistence)
	}
	now := time.Now
	if u.Now != nil {
		now = u.Now
	}
	id := uuid.NewString()
	prefix := path.Join("reels", up.UserID, id)

	videoKey, err := u.Files.CopyFile(ctx, prefix+".webm", up.Result.Video.Path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	thumbKey, err := u.Files.CopyFile(ctx, prefix+".png", up.Result.Thumbnail.Path)
	if err != nil {
		_ = u.Files.Delete(videoKey)
		return "", fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	videoURL := u.Files.URL(videoKey)
	props := jsoncfg.GenerationProperties{
		Tone:         up.Request.Tone,
		Hashtags:     up.Plan.Timeline.Hashtags,
		CallToAction: up.Plan.Timeline.CallToAction,
		SceneCount:   len(up.Plan.Timeline.Scenes),
		Watermarked:  up.Plan.Watermark.Required,
		VideoURL:     videoURL,
	}
	props.Normalize()

	record := &domain.GenerationRecord{
		ID:           id,
		UserID:       up.UserID,
		Script:       up.Request.Script,
		Platform:     up.Request.Platform,
		TemplateID:   up.Plan.Template.ID,
		MusicStyle:   up.Request.MusicStyle,
		VoiceStyle:   up.Request.VoiceStyle,
		Tier:         up.Request.Tier,
		VideoKey:     videoKey,
		ThumbnailKey: thumbKey,
		DurationMs:   up.Result.DurationMs,
		CreatedAt:    now().UTC(),
		Properties:   props,
	}
	if err := u.History.SaveGeneration(ctx, record); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return videoURL, nil
}

package history

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"reelsmaker/internal/domain"
	"reelsmaker/internal/domain/jsoncfg"
	"reelsmaker/internal/infra"
	"reelsmaker/internal/sqlinline"
)

// PostgresStore keeps generation history in Postgres through the marker-checked SQL runner.
type PostgresStore struct {
	db     infra.SQLExecutor
	logger infra.Logger
}

func NewPostgresStore(db infra.SQLExecutor, logger infra.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, sqlinline.QEnsureGenerationsSchema); err != nil {
		return fmt.Errorf("ensure generations schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) SaveGeneration(ctx context.Context, record *domain.GenerationRecord) error {
	if err := validateRecord(record); err != nil {
		return err
	}
	record.Properties.Normalize()
	props, err := json.Marshal(record.Properties)
	if err != nil {
		return fmt.Errorf("encode properties: %w", err)
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	_, err = s.db.Exec(ctx, sqlinline.QInsertGeneration,
		record.ID,
		record.UserID,
		record.Script,
		string(record.Platform),
		record.TemplateID,
		string(record.MusicStyle),
		string(record.VoiceStyle),
		string(record.Tier),
		record.VideoKey,
		record.ThumbnailKey,
		record.DurationMs,
		string(props),
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert generation: %w", err)
	}
	s.logger.Info().Str("generation_id", record.ID).Str("user_id", record.UserID).Msg("generation saved")
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string, limit int) ([]domain.GenerationRecord, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errMissingUser
	}
	rows, err := s.db.Query(ctx, sqlinline.QListGenerationsByUser, userID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	defer rows.Close()

	var out []domain.GenerationRecord
	for rows.Next() {
		var (
			rec                          domain.GenerationRecord
			platform, music, voice, tier string
			props                        []byte
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.Script,
			&platform,
			&rec.TemplateID,
			&music,
			&voice,
			&tier,
			&rec.VideoKey,
			&rec.ThumbnailKey,
			&rec.DurationMs,
			&props,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		rec.Platform = domain.Platform(platform)
		rec.MusicStyle = domain.MusicStyle(music)
		rec.VoiceStyle = domain.VoiceStyle(voice)
		rec.Tier = domain.ParseTier(tier)
		if rec.Properties, err = jsoncfg.Decode(props); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generations: %w", err)
	}
	return out, nil
}

// Close is a no-op; the pool is owned by the caller.
func (s *PostgresStore) Close() error { return nil }

var _ Store = (*PostgresStore)(nil)

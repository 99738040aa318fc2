package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"reelsmaker/internal/domain"
	"reelsmaker/internal/domain/jsoncfg"
	"reelsmaker/internal/infra"
	"reelsmaker/internal/sqlinline"
)

// Fixed-width timestamps keep lexical order equal to chronological order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// SQLiteStore keeps generation history in a local SQLite file. It is used
// when no Postgres URL is configured.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger infra.Logger
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string, logger infra.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &SQLiteStore{db: db, path: path, logger: logger}
	if err := store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	if err := s.exec(ctx, sqlinline.SQLiteEnsureGenerationsSchema); err != nil {
		return fmt.Errorf("ensure generations schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SaveGeneration(ctx context.Context, record *domain.GenerationRecord) error {
	if err := validateRecord(record); err != nil {
		return err
	}
	record.Properties.Normalize()
	props, err := json.Marshal(record.Properties)
	if err != nil {
		return fmt.Errorf("encode properties: %w", err)
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	record.CreatedAt = record.CreatedAt.UTC()

	err = s.exec(ctx, sqlinline.SQLiteInsertGeneration,
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
		record.CreatedAt.Format(sqliteTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert generation: %w", err)
	}
	s.logger.Info().Str("generation_id", record.ID).Str("user_id", record.UserID).Msg("generation saved")
	return nil
}

func (s *SQLiteStore) ListByUser(ctx context.Context, userID string, limit int) ([]domain.GenerationRecord, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errMissingUser
	}
	rows, err := s.db.QueryContext(ctx, sqlinline.SQLiteListGenerationsByUser, userID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	defer rows.Close()

	var out []domain.GenerationRecord
	for rows.Next() {
		var (
			rec                          domain.GenerationRecord
			platform, music, voice, tier string
			props, created               string
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
			&created,
		); err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		rec.Platform = domain.Platform(platform)
		rec.MusicStyle = domain.MusicStyle(music)
		rec.VoiceStyle = domain.VoiceStyle(voice)
		rec.Tier = domain.ParseTier(tier)
		if rec.CreatedAt, err = time.Parse(sqliteTimeLayout, created); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		if rec.Properties, err = jsoncfg.Decode([]byte(props)); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generations: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) exec(ctx context.Context, query string, args ...any) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		_, lastErr = s.db.ExecContext(ctx, query, args...)
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

var _ Store = (*SQLiteStore)(nil)

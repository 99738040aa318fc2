// Package history persists generation records for identified users.
package history

import (
	"context"
	"errors"
	"strings"

	"reelsmaker/internal/domain"
)

// DefaultListLimit caps ListByUser when callers pass a non-positive limit.
const DefaultListLimit = 50

const maxListLimit = 200

// Store is a generation repository backed by a database.
type Store interface {
	domain.GenerationRepository
	EnsureSchema(ctx context.Context) error
	Close() error
}

var errMissingUser = errors.New("history: user id is required")

func validateRecord(record *domain.GenerationRecord) error {
	if record == nil {
		return errors.New("history: record is nil")
	}
	if strings.TrimSpace(record.UserID) == "" {
		return errMissingUser
	}
	if strings.TrimSpace(record.ID) == "" {
		return errors.New("history: record id is required")
	}
	if strings.TrimSpace(record.VideoKey) == "" {
		return errors.New("history: video key is required")
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

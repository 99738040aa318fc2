package domain

import "context"

// GenerationRepository persists generation history keyed by user identity.
type GenerationRepository interface {
	SaveGeneration(ctx context.Context, record *GenerationRecord) error
	ListByUser(ctx context.Context, userID string, limit int) ([]GenerationRecord, error)
}

// TemplateRepository exposes the template catalog.
type TemplateRepository interface {
	Get(id string) (Template, bool)
	List() []Template
	Trending(limit int) []Template
}

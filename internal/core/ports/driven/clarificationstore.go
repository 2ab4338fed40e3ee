package driven

import (
	"context"
	"time"

	"github.com/urbaniq-dev-2025/Orbit-Backend/internal/core/domain"
)

// ClarificationStore persists clarification rounds.
type ClarificationStore interface {
	// SaveClarifications stores or updates clarification entries.
	SaveClarifications(ctx context.Context, items []domain.Clarification) error

	// GetClarification retrieves one entry by ID.
	// Returns domain.ErrNotFound when no such entry exists.
	GetClarification(ctx context.Context, id string) (*domain.Clarification, error)

	// ListByDocument returns all clarifications for a document in ask order.
	ListByDocument(ctx context.Context, docID string) ([]domain.Clarification, error)

	// ListExpired returns pending clarifications whose ExpiresAt is at or
	// before the given time.
	ListExpired(ctx context.Context, now time.Time) ([]domain.Clarification, error)

	// DeleteByDocument removes all clarifications for a document. Used
	// only when the document itself is deleted.
	DeleteByDocument(ctx context.Context, docID string) error
}

package store

import (
	"context"
	"time"

	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/google/uuid"
)

// IntentStore defines the interface for notification intent persistence.
type IntentStore interface {
	// Save inserts a new intent.
	Save(ctx context.Context, intent *domain.NotificationIntent) error

	// GetByID retrieves an intent by its ID.
	// Returns ErrIntentNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.NotificationIntent, error)

	// UpdateStatus records a delivery attempt outcome.
	// Returns ErrIntentNotFound if it does not exist.
	UpdateStatus(
		ctx context.Context,
		id uuid.UUID,
		status domain.IntentStatus,
		attempts int,
		lastError string,
	) error

	// ListPending returns pending intents last updated before olderThan,
	// oldest first, at most limit rows.
	ListPending(ctx context.Context, olderThan time.Time, limit int) ([]*domain.NotificationIntent, error)
}

package repository

import (
	"context"
	"errors"
	"github.com/google/uuid"
	"github.com/ilindan-dev/safeguard/internal/domain/model"
	"time"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateRecord is returned when a unique constraint would be violated.
	ErrDuplicateRecord = errors.New("record already exists")
)

// ContactRepository defines the contract for emergency contact persistence.
type ContactRepository interface {
	// Create persists a new contact.
	Create(ctx context.Context, c *model.Contact) (*model.Contact, error)

	// ListByUser returns the user's contacts in creation order.
	ListByUser(ctx context.Context, userID string) ([]*model.Contact, error)

	// Delete removes one of the user's contacts.
	Delete(ctx context.Context, userID string, id uuid.UUID) error
}

// ContactCache defines the contract for caching a user's contact list.
type ContactCache interface {
	// Get returns the cached list, or ErrNotFound on a miss.
	Get(ctx context.Context, userID string) ([]*model.Contact, error)

	// Set stores the list for the given duration.
	Set(ctx context.Context, userID string, contacts []*model.Contact, expiration time.Duration) error

	// Delete invalidates the cached list.
	Delete(ctx context.Context, userID string) error
}

// ProfileRepository defines the contract for user profile persistence.
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*model.Profile, error)
	Upsert(ctx context.Context, p *model.Profile) (*model.Profile, error)
}

// AlertRepository defines the contract for alert record persistence.
type AlertRepository interface {
	// Save persists a newly triggered alert.
	Save(ctx context.Context, a *model.Alert) (*model.Alert, error)

	// Update writes the status and dispatch results of an alert.
	Update(ctx context.Context, a *model.Alert) error

	// GetByID retrieves one of the user's alerts.
	GetByID(ctx context.Context, userID string, id uuid.UUID) (*model.Alert, error)

	// ListByUser returns the user's most recent alerts, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]*model.Alert, error)
}

// AlertQueue defines the contract for publishing alert events to the worker.
type AlertQueue interface {
	// Publish hands an event to the worker for immediate processing.
	Publish(ctx context.Context, e *model.AlertEvent) error

	// PublishRetry re-schedules an event after retryDelay.
	PublishRetry(ctx context.Context, e *model.AlertEvent, retryDelay time.Duration) error
}

package offering

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for offerings.
type Repository interface {
	// FindByID retrieves a live offering.
	FindByID(ctx context.Context, id uuid.UUID) (*Offering, error)

	// FindByIDForUpdate retrieves a live offering and holds a row lock on it until the
	// surrounding unit of work ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Offering, error)

	// FindByProviderID retrieves every live offering of a provider in one query.
	FindByProviderID(ctx context.Context, providerID uuid.UUID) ([]*Offering, error)

	// Save persists a new offering.
	Save(ctx context.Context, o *Offering) error

	// Update persists changes with optimistic locking on version.
	Update(ctx context.Context, o *Offering) error

	// Upsert inserts an offering mirrored from the listing catalog or refreshes its
	// descriptive fields. An existing availability flag is kept.
	Upsert(ctx context.Context, o *Offering) error

	// Delete soft-deletes an offering.
	Delete(ctx context.Context, id uuid.UUID) error
}

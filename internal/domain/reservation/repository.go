package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/LankaTrails/service-booking/internal/domain/offering"
)

// Stats summarises reservations for a dashboard.
type Stats struct {
	Pending      int64 `json:"pending"`
	Confirmed    int64 `json:"confirmed"`
	Cancelled    int64 `json:"cancelled"`
	Total        int64 `json:"total"`
	RevenueCents int64 `json:"revenue_cents"`
}

// Repository defines the persistence contract for reservation aggregates.
type Repository interface {
	// FindByID retrieves a reservation by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Reservation, error)

	// SumActiveOverlapping returns the total quantity of pending and confirmed
	// reservations of offeringID whose period overlaps period.
	SumActiveOverlapping(ctx context.Context, offeringID uuid.UUID, period DateRange) (int, error)

	// ListActiveEndingAfter returns active reservations of offeringID whose period ends
	// after from.
	ListActiveEndingAfter(ctx context.Context, offeringID uuid.UUID, from time.Time) ([]*Reservation, error)

	// CountActiveByOffering counts pending and confirmed reservations of offeringID.
	CountActiveByOffering(ctx context.Context, offeringID uuid.UUID) (int64, error)

	// ListByOffering lists reservations of one offering, pending first, newest first.
	ListByOffering(ctx context.Context, offeringID uuid.UUID, page, limit int) ([]*Reservation, int64, error)

	// ListByProvider lists reservations across a provider's offerings, pending first,
	// newest first. An empty serviceType matches every domain.
	ListByProvider(ctx context.Context, providerID uuid.UUID, serviceType offering.ServiceType, page, limit int) ([]*Reservation, int64, error)

	// ListByRequester lists every reservation made by requesterID across all domains,
	// newest first. An empty serviceType matches every domain.
	ListByRequester(ctx context.Context, requesterID uuid.UUID, serviceType offering.ServiceType) ([]*Reservation, error)

	// StatsByOffering summarises reservations of one offering.
	StatsByOffering(ctx context.Context, offeringID uuid.UUID) (Stats, error)

	// StatsByProvider summarises reservations across a provider's offerings.
	StatsByProvider(ctx context.Context, providerID uuid.UUID) (Stats, error)

	// ListAll retrieves all reservations with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Reservation, int64, error)

	// CountByStatus returns reservation counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new reservation.
	Save(ctx context.Context, r *Reservation) error

	// Update persists changes to an existing reservation with optimistic locking.
	Update(ctx context.Context, r *Reservation) error
}

// Tx exposes the repositories bound to one unit of work.
type Tx interface {
	Offerings() offering.Repository
	Reservations() Repository
}

// UnitOfWork runs fn atomically. All writes made through tx commit together when fn
// returns nil and are rolled back otherwise. Implementations may re-run fn when the
// storage layer reports a transient serialization conflict.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

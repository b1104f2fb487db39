package reservation

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/LankaTrails/service-booking/internal/domain/offering"
	"github.com/LankaTrails/service-booking/internal/platform/domain"
)

const referenceChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Reservation is the aggregate root for one booking against an offering.
type Reservation struct {
	id           uuid.UUID
	reference    string
	offeringID   uuid.UUID
	providerID   uuid.UUID
	requesterID  uuid.UUID
	serviceType  offering.ServiceType
	period       DateRange
	quantity     int
	totalCents   int64
	currency     string
	status       Status
	details      Details
	destinations []string

	confirmedAt *time.Time
	cancelledAt *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateReference creates a reference in the format "BK-XXXXXX".
func generateReference() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referenceChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate reservation reference: %w", err)
		}
		result[i] = referenceChars[n.Int64()]
	}
	return "BK-" + string(result), nil
}

// NewReservation creates a pending reservation of o for requesterID. Flag offerings
// always reserve a single unit.
func NewReservation(
	o *offering.Offering,
	requesterID uuid.UUID,
	period DateRange,
	quantity int,
	totalCents int64,
	details Details,
	destinations []string,
) (*Reservation, error) {
	if requesterID == uuid.Nil {
		return nil, domain.NewValidationError("requester ID is required")
	}
	if !period.End.After(period.Start) {
		return nil, domain.NewInvalidRangeError("end date must be after start date")
	}
	if o.LedgerKind() == offering.LedgerFlag {
		quantity = 1
	}
	if quantity < 1 {
		return nil, domain.NewValidationError("quantity must be at least 1")
	}
	if totalCents < 0 {
		return nil, domain.NewValidationError("total cannot be negative")
	}

	reference, err := generateReference()
	if err != nil {
		return nil, err
	}
	if destinations == nil {
		destinations = []string{}
	}

	now := time.Now().UTC()
	return &Reservation{
		id:           uuid.New(),
		reference:    reference,
		offeringID:   o.ID(),
		providerID:   o.ProviderID(),
		requesterID:  requesterID,
		serviceType:  o.ServiceType(),
		period:       period,
		quantity:     quantity,
		totalCents:   totalCents,
		currency:     o.Currency(),
		status:       StatusPending,
		details:      details,
		destinations: destinations,
		version:      1,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// Reconstruct rebuilds a Reservation from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	reference string,
	offeringID, providerID, requesterID uuid.UUID,
	serviceType offering.ServiceType,
	period DateRange,
	quantity int,
	totalCents int64,
	currency string,
	status Status,
	details Details,
	destinations []string,
	confirmedAt, cancelledAt *time.Time,
	version int64,
	createdAt, updatedAt time.Time,
) *Reservation {
	if destinations == nil {
		destinations = []string{}
	}
	return &Reservation{
		id:           id,
		reference:    reference,
		offeringID:   offeringID,
		providerID:   providerID,
		requesterID:  requesterID,
		serviceType:  serviceType,
		period:       period,
		quantity:     quantity,
		totalCents:   totalCents,
		currency:     currency,
		status:       status,
		details:      details,
		destinations: destinations,
		confirmedAt:  confirmedAt,
		cancelledAt:  cancelledAt,
		version:      version,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// --- Getters ---

func (r *Reservation) ID() uuid.UUID                     { return r.id }
func (r *Reservation) Reference() string                 { return r.reference }
func (r *Reservation) OfferingID() uuid.UUID             { return r.offeringID }
func (r *Reservation) ProviderID() uuid.UUID             { return r.providerID }
func (r *Reservation) RequesterID() uuid.UUID            { return r.requesterID }
func (r *Reservation) ServiceType() offering.ServiceType { return r.serviceType }
func (r *Reservation) Period() DateRange                 { return r.period }
func (r *Reservation) Quantity() int                     { return r.quantity }
func (r *Reservation) TotalCents() int64                 { return r.totalCents }
func (r *Reservation) Currency() string                  { return r.currency }
func (r *Reservation) Status() Status                    { return r.status }
func (r *Reservation) Details() Details                  { return r.details }
func (r *Reservation) ConfirmedAt() *time.Time           { return r.confirmedAt }
func (r *Reservation) CancelledAt() *time.Time           { return r.cancelledAt }
func (r *Reservation) Version() int64                    { return r.version }
func (r *Reservation) CreatedAt() time.Time              { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time              { return r.updatedAt }

// Destinations returns a copy of the transport stops.
func (r *Reservation) Destinations() []string {
	out := make([]string, len(r.destinations))
	copy(out, r.destinations)
	return out
}

// --- State Transitions ---

// TransitionTo moves the reservation to target. It reports changed=false without error
// when the reservation is already in target.
func (r *Reservation) TransitionTo(target Status) (changed bool, err error) {
	if !target.IsValid() {
		return false, domain.NewInvalidStateError(string(r.status), string(target))
	}
	if r.status == target {
		return false, nil
	}
	if !r.status.CanTransitionTo(target) {
		return false, domain.NewInvalidStateError(string(r.status), string(target))
	}

	now := time.Now().UTC()
	switch target {
	case StatusConfirmed:
		r.confirmedAt = &now
	case StatusCancelled:
		r.cancelledAt = &now
	}
	r.status = target
	r.updatedAt = now
	return true, nil
}

// IncrementVersion bumps the version for optimistic locking.
func (r *Reservation) IncrementVersion() {
	r.version++
	r.updatedAt = time.Now().UTC()
}

// IsAccessibleBy reports whether userID may read the reservation.
func (r *Reservation) IsAccessibleBy(userID uuid.UUID) bool {
	return r.requesterID == userID || r.providerID == userID
}

// Phase categorises the reservation relative to today for the requester's history.
func (r *Reservation) Phase(today time.Time) Phase {
	day := truncateDay(today)
	switch {
	case r.period.Contains(day):
		return PhaseOngoing
	case r.period.Start.After(day):
		return PhaseUpcoming
	default:
		return PhaseCompleted
	}
}

// Phase is the time-relative category used by booking history.
type Phase string

const (
	PhaseOngoing   Phase = "ongoing"
	PhaseUpcoming  Phase = "upcoming"
	PhaseCompleted Phase = "completed"
)

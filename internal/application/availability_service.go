package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LankaTrails/service-booking/internal/cache"
	offeringDomain "github.com/LankaTrails/service-booking/internal/domain/offering"
	reservationDomain "github.com/LankaTrails/service-booking/internal/domain/reservation"
	"github.com/LankaTrails/service-booking/internal/platform/domain"
)

// AvailabilityQuery is the request DTO for an availability check. OfferingID is
// parsed from the query string by the caller.
type AvailabilityQuery struct {
	OfferingID uuid.UUID `form:"-"`
	StartDate  string    `form:"start_date" binding:"omitempty,isodate"`
	EndDate    string    `form:"end_date" binding:"omitempty,isodate"`
	Date       string    `form:"date" binding:"omitempty,isodate"`
	Days       int       `form:"days" binding:"omitempty,min=1,max=365"`
	Quantity   int       `form:"quantity" binding:"omitempty,min=1"`
}

// AvailabilityService answers unlocked availability reads. Results may be served
// from cache and can lag a concurrent booking by at most one cache TTL.
type AvailabilityService struct {
	offerings    offeringDomain.Repository
	reservations reservationDomain.Repository
	cache        cache.AvailabilityCache
	logger       *zap.Logger
}

// NewAvailabilityService creates a new AvailabilityService.
func NewAvailabilityService(
	offerings offeringDomain.Repository,
	reservations reservationDomain.Repository,
	availabilityCache cache.AvailabilityCache,
	logger *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		offerings:    offerings,
		reservations: reservations,
		cache:        availabilityCache,
		logger:       logger,
	}
}

// CheckAvailability reports how many units of an offering are free for the period.
func (s *AvailabilityService) CheckAvailability(ctx context.Context, serviceType offeringDomain.ServiceType, q AvailabilityQuery) (*reservationDomain.Availability, error) {
	o, err := s.offerings.FindByID(ctx, q.OfferingID)
	if err != nil {
		return nil, err
	}
	if o.ServiceType() != serviceType {
		return nil, domain.NewNotFoundError("Offering", q.OfferingID.String())
	}

	period, err := resolvePeriod(serviceType, PeriodInput{
		StartDate: q.StartDate, EndDate: q.EndDate, Date: q.Date, Days: q.Days,
	}, false)
	if err != nil {
		return nil, err
	}

	if o.LedgerKind() == offeringDomain.LedgerFlag || period == nil {
		a := reservationDomain.Evaluate(o, 0, q.Quantity)
		return &a, nil
	}

	key := period.String()
	cached, generation, ok := s.cache.Get(ctx, o.ID(), key)
	if ok && cached.Total == o.Capacity() {
		a := reservationDomain.Evaluate(o, cached.Total-cached.Available, q.Quantity)
		return &a, nil
	}

	reserved, err := s.reservations.SumActiveOverlapping(ctx, o.ID(), *period)
	if err != nil {
		return nil, fmt.Errorf("failed to compute availability: %w", err)
	}

	a := reservationDomain.Evaluate(o, reserved, q.Quantity)
	s.cache.Set(ctx, o.ID(), generation, key, a)
	return &a, nil
}

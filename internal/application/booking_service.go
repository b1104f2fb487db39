package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LankaTrails/service-booking/internal/cache"
	offeringDomain "github.com/LankaTrails/service-booking/internal/domain/offering"
	reservationDomain "github.com/LankaTrails/service-booking/internal/domain/reservation"
	"github.com/LankaTrails/service-booking/internal/platform/domain"
	"github.com/LankaTrails/service-booking/internal/platform/metrics"
	"github.com/LankaTrails/service-booking/internal/proto/events"
)

// CreateReservationRequest holds the data needed to create a reservation.
type CreateReservationRequest struct {
	OfferingID     uuid.UUID `json:"offering_id" binding:"required"`
	StartDate      string    `json:"start_date" binding:"omitempty,isodate"`
	EndDate        string    `json:"end_date" binding:"omitempty,isodate"`
	Date           string    `json:"date" binding:"omitempty,isodate"`
	Days           int       `json:"days" binding:"omitempty,min=1,max=365"`
	Quantity       int       `json:"quantity" binding:"omitempty,min=1,max=100"`
	GuestName      string    `json:"guest_name" binding:"omitempty,max=200"`
	GuestEmail     string    `json:"guest_email" binding:"omitempty,email"`
	GuestContact   string    `json:"guest_contact" binding:"omitempty,max=50"`
	PickupLocation string    `json:"pickup_location" binding:"omitempty,max=300"`
	Destinations   []string  `json:"destinations" binding:"omitempty,max=20,dive,max=300"`
	EstimatedKm    float64   `json:"estimated_km" binding:"omitempty,min=0"`
	Notes          string    `json:"notes" binding:"omitempty,max=1000"`
}

// UpdateStatusRequest is the body of a status change.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Requester identifies the tourist making a reservation.
type Requester struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// StatusChangeResult reports the reservation after a status change and whether the
// call changed anything.
type StatusChangeResult struct {
	Reservation ReservationDTO
	Changed     bool
}

// OfferingReservationsDTO is the provider dashboard for a single offering.
type OfferingReservationsDTO struct {
	Offering     OfferingDTO                            `json:"offering"`
	Stats        reservationDomain.Stats                `json:"stats"`
	Reservations domain.PaginatedResult[ReservationDTO] `json:"reservations"`
}

// ProviderReservationsDTO is the provider dashboard across all offerings.
type ProviderReservationsDTO struct {
	Stats        reservationDomain.Stats                `json:"stats"`
	Reservations domain.PaginatedResult[ReservationDTO] `json:"reservations"`
}

// HistoryDTO groups a tourist's reservations relative to today.
type HistoryDTO struct {
	Ongoing   []ReservationDTO `json:"ongoing"`
	Upcoming  []ReservationDTO `json:"upcoming"`
	Completed []ReservationDTO `json:"completed"`
}

// BookingService is the application service orchestrating the reservation lifecycle.
type BookingService struct {
	uow          reservationDomain.UnitOfWork
	offerings    offeringDomain.Repository
	reservations reservationDomain.Repository
	pricing      reservationDomain.PricingStrategy
	cache        cache.AvailabilityCache
	publisher    EventPublisher
	now          func() time.Time
	logger       *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	uow reservationDomain.UnitOfWork,
	offerings offeringDomain.Repository,
	reservations reservationDomain.Repository,
	pricing reservationDomain.PricingStrategy,
	availabilityCache cache.AvailabilityCache,
	publisher EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		uow:          uow,
		offerings:    offerings,
		reservations: reservations,
		pricing:      pricing,
		cache:        availabilityCache,
		publisher:    publisher,
		now:          time.Now,
		logger:       logger,
	}
}

// CreateReservation books an offering for requester. Availability is re-checked with
// the offering row locked, so concurrent requests cannot over-commit capacity.
func (s *BookingService) CreateReservation(
	ctx context.Context,
	serviceType offeringDomain.ServiceType,
	requester Requester,
	req CreateReservationRequest,
) (*ReservationDTO, error) {
	period, err := resolvePeriod(serviceType, PeriodInput{
		StartDate: req.StartDate, EndDate: req.EndDate, Date: req.Date, Days: req.Days,
	}, true)
	if err != nil {
		return nil, err
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	details := reservationDomain.Details{
		GuestName:      strings.TrimSpace(req.GuestName),
		GuestEmail:     strings.TrimSpace(req.GuestEmail),
		GuestContact:   strings.TrimSpace(req.GuestContact),
		PickupLocation: strings.TrimSpace(req.PickupLocation),
		EstimatedKm:    req.EstimatedKm,
		Notes:          req.Notes,
	}
	switch serviceType {
	case offeringDomain.ServiceHotel:
		details = details.WithGuestDefaults(requester.Name, requester.Email)
	case offeringDomain.ServiceTransport:
		if details.PickupLocation == "" {
			return nil, domain.NewValidationError("pickup_location is required")
		}
	}

	var created *reservationDomain.Reservation
	err = s.uow.Do(ctx, func(ctx context.Context, tx reservationDomain.Tx) error {
		o, err := tx.Offerings().FindByIDForUpdate(ctx, req.OfferingID)
		if err != nil {
			return err
		}
		if o.ServiceType() != serviceType {
			return domain.NewNotFoundError("Offering", req.OfferingID.String())
		}

		if o.LedgerKind() == offeringDomain.LedgerQuantity {
			reserved, err := tx.Reservations().SumActiveOverlapping(ctx, o.ID(), *period)
			if err != nil {
				return fmt.Errorf("failed to compute availability: %w", err)
			}
			if a := reservationDomain.Evaluate(o, reserved, quantity); !a.Sufficient {
				return domain.NewInsufficientInventoryError(a.Available, quantity)
			}
		}

		total, err := s.pricing.Calculate(reservationDomain.PricingParams{
			ServiceType:    o.ServiceType(),
			UnitPriceCents: o.PriceCents(),
			Period:         *period,
			Quantity:       quantity,
			EstimatedKm:    details.EstimatedKm,
		})
		if err != nil {
			return domain.NewValidationError(fmt.Sprintf("pricing error: %v", err))
		}

		res, err := reservationDomain.NewReservation(o, requester.ID, *period, quantity, total, details, req.Destinations)
		if err != nil {
			return err
		}
		if err := tx.Reservations().Save(ctx, res); err != nil {
			return fmt.Errorf("failed to save reservation: %w", err)
		}
		created = res
		return nil
	})
	if err != nil {
		if domain.HasCode(err, domain.CodeInsufficientInventory) {
			metrics.ReservationRejections.WithLabelValues(string(serviceType), "insufficient_inventory").Inc()
		}
		return nil, err
	}

	s.cache.Invalidate(ctx, created.OfferingID())
	metrics.ReservationsCreated.WithLabelValues(string(serviceType)).Inc()
	s.logger.Info("reservation created",
		zap.String("reservation_id", created.ID().String()),
		zap.String("reference", created.Reference()),
		zap.String("offering_id", created.OfferingID().String()),
		zap.String("period", created.Period().String()),
		zap.Int("quantity", created.Quantity()),
	)
	s.publishReservationRequested(ctx, created)

	result := toReservationDTO(created)
	return &result, nil
}

// SetStatus moves a reservation to target on behalf of the provider owning its
// offering. Flag offerings are marked unavailable on confirmation and available again
// when a confirmed reservation is cancelled, in the same unit of work as the status.
func (s *BookingService) SetStatus(
	ctx context.Context,
	serviceType offeringDomain.ServiceType,
	reservationID uuid.UUID,
	target string,
	actorID uuid.UUID,
) (*StatusChangeResult, error) {
	targetStatus := reservationDomain.Status(strings.ToLower(strings.TrimSpace(target)))

	var (
		updated  *reservationDomain.Reservation
		previous reservationDomain.Status
		changed  bool
	)
	err := s.uow.Do(ctx, func(ctx context.Context, tx reservationDomain.Tx) error {
		res, err := tx.Reservations().FindByID(ctx, reservationID)
		if err != nil {
			return err
		}
		if res.ServiceType() != serviceType {
			return domain.NewNotFoundError("Reservation", reservationID.String())
		}

		o, err := tx.Offerings().FindByIDForUpdate(ctx, res.OfferingID())
		if err != nil {
			return err
		}
		if !o.IsOwnedBy(actorID) {
			return domain.NewForbiddenError("reservation does not belong to one of your offerings")
		}

		// Re-read under the offering lock; every status write takes the same lock.
		res, err = tx.Reservations().FindByID(ctx, reservationID)
		if err != nil {
			return err
		}

		previous = res.Status()
		changed, err = res.TransitionTo(targetStatus)
		if err != nil || !changed {
			updated = res
			return err
		}

		if o.LedgerKind() == offeringDomain.LedgerFlag {
			if err := s.compensateFlag(ctx, tx, o, previous, targetStatus); err != nil {
				return err
			}
		}

		res.IncrementVersion()
		if err := tx.Reservations().Update(ctx, res); err != nil {
			return err
		}
		updated = res
		return nil
	})
	if err != nil {
		switch {
		case domain.HasCode(err, domain.CodeInsufficientInventory):
			metrics.ReservationRejections.WithLabelValues(string(serviceType), "flag_unavailable").Inc()
		case domain.HasCode(err, domain.CodeInvalidTransition):
			metrics.ReservationRejections.WithLabelValues(string(serviceType), "invalid_transition").Inc()
		}
		return nil, err
	}

	if changed {
		s.cache.Invalidate(ctx, updated.OfferingID())
		metrics.ReservationTransitions.WithLabelValues(string(serviceType), string(updated.Status())).Inc()
		s.logger.Info("reservation status changed",
			zap.String("reservation_id", updated.ID().String()),
			zap.String("from", string(previous)),
			zap.String("to", string(updated.Status())),
		)
		s.publishStatusChanged(ctx, updated, previous)
	}

	return &StatusChangeResult{Reservation: toReservationDTO(updated), Changed: changed}, nil
}

func (s *BookingService) compensateFlag(
	ctx context.Context,
	tx reservationDomain.Tx,
	o *offeringDomain.Offering,
	previous, target reservationDomain.Status,
) error {
	switch {
	case target == reservationDomain.StatusConfirmed:
		if !o.Available() {
			return domain.NewInsufficientInventoryError(0, 1)
		}
		if err := o.AdjustFlag(false); err != nil {
			return err
		}
	case target == reservationDomain.StatusCancelled && previous == reservationDomain.StatusConfirmed:
		if err := o.AdjustFlag(true); err != nil {
			return err
		}
	default:
		return nil
	}
	if err := tx.Offerings().Update(ctx, o); err != nil {
		return fmt.Errorf("failed to update availability flag: %w", err)
	}
	return nil
}

// GetReservation returns a reservation visible to userID.
func (s *BookingService) GetReservation(ctx context.Context, reservationID, userID uuid.UUID, isAdmin bool) (*ReservationDTO, error) {
	res, err := s.reservations.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !res.IsAccessibleBy(userID) {
		return nil, domain.NewForbiddenError("you do not have access to this reservation")
	}
	result := toReservationDTO(res)
	return &result, nil
}

// ListOfferingReservations returns the owner's dashboard for one offering, pending
// reservations first.
func (s *BookingService) ListOfferingReservations(
	ctx context.Context,
	serviceType offeringDomain.ServiceType,
	offeringID, providerID uuid.UUID,
	page, limit int,
) (*OfferingReservationsDTO, error) {
	o, err := s.offerings.FindByID(ctx, offeringID)
	if err != nil {
		return nil, err
	}
	if o.ServiceType() != serviceType {
		return nil, domain.NewNotFoundError("Offering", offeringID.String())
	}
	if !o.IsOwnedBy(providerID) {
		return nil, domain.NewForbiddenError("offering does not belong to this provider")
	}

	list, total, err := s.reservations.ListByOffering(ctx, o.ID(), page, limit)
	if err != nil {
		return nil, err
	}
	stats, err := s.reservations.StatsByOffering(ctx, o.ID())
	if err != nil {
		return nil, err
	}

	return &OfferingReservationsDTO{
		Offering:     toOfferingDTO(o),
		Stats:        stats,
		Reservations: domain.NewPaginatedResult(toReservationDTOs(list), total, page, limit),
	}, nil
}

// ListProviderReservations returns reservations across all of a provider's offerings.
func (s *BookingService) ListProviderReservations(
	ctx context.Context,
	providerID uuid.UUID,
	serviceType offeringDomain.ServiceType,
	page, limit int,
) (*ProviderReservationsDTO, error) {
	list, total, err := s.reservations.ListByProvider(ctx, providerID, serviceType, page, limit)
	if err != nil {
		return nil, err
	}
	stats, err := s.reservations.StatsByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	return &ProviderReservationsDTO{
		Stats:        stats,
		Reservations: domain.NewPaginatedResult(toReservationDTOs(list), total, page, limit),
	}, nil
}

// GetHistory returns a tourist's reservations across every domain grouped into
// ongoing, upcoming and completed.
func (s *BookingService) GetHistory(ctx context.Context, requesterID uuid.UUID, serviceType offeringDomain.ServiceType) (*HistoryDTO, error) {
	list, err := s.reservations.ListByRequester(ctx, requesterID, serviceType)
	if err != nil {
		return nil, err
	}

	history := &HistoryDTO{
		Ongoing:   []ReservationDTO{},
		Upcoming:  []ReservationDTO{},
		Completed: []ReservationDTO{},
	}
	today := s.now()
	for _, res := range list {
		dto := toReservationDTO(res)
		switch res.Phase(today) {
		case reservationDomain.PhaseOngoing:
			history.Ongoing = append(history.Ongoing, dto)
		case reservationDomain.PhaseUpcoming:
			history.Upcoming = append(history.Upcoming, dto)
		default:
			history.Completed = append(history.Completed, dto)
		}
	}
	return history, nil
}

// --- Admin methods ---

// ReservationStatsDTO holds reservation statistics for the admin dashboard.
type ReservationStatsDTO struct {
	TotalReservations int64            `json:"total_reservations"`
	ByStatus          map[string]int64 `json:"by_status"`
}

// ListAllReservations returns a paginated list of all reservations (admin).
func (s *BookingService) ListAllReservations(ctx context.Context, page, limit int) ([]ReservationDTO, int64, error) {
	list, total, err := s.reservations.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reservations: %w", err)
	}
	return toReservationDTOs(list), total, nil
}

// GetReservationStats returns aggregate reservation statistics (admin).
func (s *BookingService) GetReservationStats(ctx context.Context) (*ReservationStatsDTO, error) {
	counts, err := s.reservations.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &ReservationStatsDTO{TotalReservations: total, ByStatus: counts}, nil
}

// --- Events ---

func (s *BookingService) publishReservationRequested(ctx context.Context, res *reservationDomain.Reservation) {
	evt := events.ReservationRequestedEvent{
		ReservationID: res.ID(),
		Reference:     res.Reference(),
		OfferingID:    res.OfferingID(),
		ProviderID:    res.ProviderID(),
		RequesterID:   res.RequesterID(),
		ServiceType:   string(res.ServiceType()),
		StartDate:     res.Period().Start.Format(reservationDomain.DateLayout),
		EndDate:       res.Period().End.Format(reservationDomain.DateLayout),
		Quantity:      res.Quantity(),
		TotalCents:    res.TotalCents(),
		Currency:      res.Currency(),
		OccurredAt:    time.Now().UTC(),
	}
	publishEvent(ctx, s.publisher, s.logger, events.TopicBookingEvents, events.ReservationRequested, res.OfferingID().String(), evt)
}

func (s *BookingService) publishStatusChanged(ctx context.Context, res *reservationDomain.Reservation, previous reservationDomain.Status) {
	eventType := events.ReservationConfirmed
	if res.Status() == reservationDomain.StatusCancelled {
		eventType = events.ReservationCancelled
	}
	evt := events.ReservationStatusChangedEvent{
		ReservationID:  res.ID(),
		Reference:      res.Reference(),
		OfferingID:     res.OfferingID(),
		ProviderID:     res.ProviderID(),
		RequesterID:    res.RequesterID(),
		ServiceType:    string(res.ServiceType()),
		PreviousStatus: string(previous),
		Status:         string(res.Status()),
		OccurredAt:     time.Now().UTC(),
	}
	publishEvent(ctx, s.publisher, s.logger, events.TopicBookingEvents, eventType, res.OfferingID().String(), evt)
}

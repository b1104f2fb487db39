package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LankaTrails/service-booking/internal/cache"
	offeringDomain "github.com/LankaTrails/service-booking/internal/domain/offering"
	reservationDomain "github.com/LankaTrails/service-booking/internal/domain/reservation"
	"github.com/LankaTrails/service-booking/internal/platform/domain"
	"github.com/LankaTrails/service-booking/internal/proto/events"
)

// CreateOfferingRequest is the request DTO for listing a bookable unit.
type CreateOfferingRequest struct {
	Name        string   `json:"name" binding:"required,max=200"`
	ListingName string   `json:"listing_name" binding:"omitempty,max=200"`
	Description string   `json:"description"`
	Location    string   `json:"location" binding:"omitempty,max=200"`
	PriceCents  int64    `json:"price_cents" binding:"min=0"`
	Currency    string   `json:"currency" binding:"omitempty,len=3"`
	Capacity    int      `json:"capacity" binding:"min=0"`
	MaxGuests   int      `json:"max_guests" binding:"min=0"`
	Photos      []string `json:"photos" binding:"omitempty,dive,max=500"`
	Languages   []string `json:"languages" binding:"omitempty,dive,max=50"`
}

// UpdateOfferingRequest is the request DTO for editing an offering. Omitted fields keep
// their value.
type UpdateOfferingRequest struct {
	Name        string   `json:"name" binding:"omitempty,max=200"`
	ListingName string   `json:"listing_name" binding:"omitempty,max=200"`
	Description string   `json:"description"`
	Location    string   `json:"location" binding:"omitempty,max=200"`
	PriceCents  int64    `json:"price_cents" binding:"min=0"`
	Currency    string   `json:"currency" binding:"omitempty,len=3"`
	Capacity    *int     `json:"capacity" binding:"omitempty,min=0"`
	MaxGuests   int      `json:"max_guests" binding:"min=0"`
	Photos      []string `json:"photos" binding:"omitempty,dive,max=500"`
	Languages   []string `json:"languages" binding:"omitempty,dive,max=50"`
}

// OfferingService implements provider use cases for the Inventory Ledger.
type OfferingService struct {
	uow       reservationDomain.UnitOfWork
	offerings offeringDomain.Repository
	cache     cache.AvailabilityCache
	currency  string
	now       func() time.Time
	logger    *zap.Logger
}

// NewOfferingService creates a new OfferingService.
func NewOfferingService(
	uow reservationDomain.UnitOfWork,
	offerings offeringDomain.Repository,
	availabilityCache cache.AvailabilityCache,
	currency string,
	logger *zap.Logger,
) *OfferingService {
	return &OfferingService{
		uow:       uow,
		offerings: offerings,
		cache:     availabilityCache,
		currency:  currency,
		now:       time.Now,
		logger:    logger,
	}
}

// CreateOffering lists a new offering for providerID.
func (s *OfferingService) CreateOffering(ctx context.Context, providerID uuid.UUID, serviceType offeringDomain.ServiceType, req CreateOfferingRequest) (*OfferingDTO, error) {
	currency := req.Currency
	if currency == "" {
		currency = s.currency
	}

	o, err := offeringDomain.NewOffering(providerID, serviceType, offeringDomain.Attributes{
		Name:        req.Name,
		ListingName: req.ListingName,
		Description: req.Description,
		Location:    req.Location,
		PriceCents:  req.PriceCents,
		Currency:    currency,
		Capacity:    req.Capacity,
		MaxGuests:   req.MaxGuests,
		Photos:      req.Photos,
		Languages:   req.Languages,
	})
	if err != nil {
		return nil, err
	}

	if err := s.offerings.Save(ctx, o); err != nil {
		s.logger.Error("failed to create offering", zap.Error(err))
		return nil, fmt.Errorf("failed to create offering: %w", err)
	}

	s.logger.Info("offering created",
		zap.String("offering_id", o.ID().String()),
		zap.String("provider_id", providerID.String()),
		zap.String("service_type", string(serviceType)),
	)
	result := toOfferingDTO(o)
	return &result, nil
}

// GetOffering returns a single offering of the given domain.
func (s *OfferingService) GetOffering(ctx context.Context, serviceType offeringDomain.ServiceType, id uuid.UUID) (*OfferingDTO, error) {
	o, err := s.offerings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.ServiceType() != serviceType {
		return nil, domain.NewNotFoundError("Offering", id.String())
	}
	result := toOfferingDTO(o)
	return &result, nil
}

// ListProviderOfferings returns every offering of a provider in one query.
func (s *OfferingService) ListProviderOfferings(ctx context.Context, providerID uuid.UUID) ([]OfferingDTO, error) {
	list, err := s.offerings.FindByProviderID(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get offerings: %w", err)
	}
	dtos := make([]OfferingDTO, len(list))
	for i, o := range list {
		dtos[i] = toOfferingDTO(o)
	}
	return dtos, nil
}

// UpdateOffering edits an offering owned by providerID. Lowering capacity below what
// current and future reservations already hold is rejected.
func (s *OfferingService) UpdateOffering(
	ctx context.Context,
	serviceType offeringDomain.ServiceType,
	id, providerID uuid.UUID,
	req UpdateOfferingRequest,
) (*OfferingDTO, error) {
	var updated *offeringDomain.Offering
	err := s.uow.Do(ctx, func(ctx context.Context, tx reservationDomain.Tx) error {
		o, err := s.lockOwned(ctx, tx, serviceType, id, providerID)
		if err != nil {
			return err
		}

		if req.Capacity != nil {
			if err := s.guardCapacity(ctx, tx, o, *req.Capacity); err != nil {
				return err
			}
		}

		if err := o.Update(offeringDomain.Attributes{
			Name:        req.Name,
			ListingName: req.ListingName,
			Description: req.Description,
			Location:    req.Location,
			PriceCents:  req.PriceCents,
			Currency:    req.Currency,
			MaxGuests:   req.MaxGuests,
			Photos:      req.Photos,
			Languages:   req.Languages,
		}, req.Capacity); err != nil {
			return err
		}
		if err := tx.Offerings().Update(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, id)
	s.logger.Info("offering updated", zap.String("offering_id", id.String()))
	result := toOfferingDTO(updated)
	return &result, nil
}

// DeleteOffering removes an offering owned by providerID that no active reservation
// references.
func (s *OfferingService) DeleteOffering(ctx context.Context, serviceType offeringDomain.ServiceType, id, providerID uuid.UUID) error {
	err := s.uow.Do(ctx, func(ctx context.Context, tx reservationDomain.Tx) error {
		if _, err := s.lockOwned(ctx, tx, serviceType, id, providerID); err != nil {
			return err
		}
		return deleteUnreferenced(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, id)
	s.logger.Info("offering deleted", zap.String("offering_id", id.String()))
	return nil
}

// SyncFromCatalog mirrors a listing published by the catalog service. An existing
// offering keeps its type and provider, and its capacity is guarded like a provider edit.
func (s *OfferingService) SyncFromCatalog(ctx context.Context, evt events.OfferingUpsertedEvent) error {
	serviceType, err := offeringDomain.ParseServiceType(evt.ServiceType)
	if err != nil {
		return domain.NewValidationError(err.Error())
	}

	capacity := evt.Capacity
	if serviceType.LedgerKind() == offeringDomain.LedgerFlag {
		capacity = 1
	}
	currency := evt.Currency
	if currency == "" {
		currency = s.currency
	}

	now := s.now().UTC()
	o := offeringDomain.Reconstruct(evt.OfferingID, evt.ProviderID, serviceType, offeringDomain.Attributes{
		Name:        evt.Name,
		ListingName: evt.ListingName,
		Description: evt.Description,
		Location:    evt.Location,
		PriceCents:  evt.PriceCents,
		Currency:    currency,
		Capacity:    capacity,
		MaxGuests:   evt.MaxGuests,
		Photos:      evt.Photos,
		Languages:   evt.Languages,
	}, true, 1, now, now)

	err = s.uow.Do(ctx, func(ctx context.Context, tx reservationDomain.Tx) error {
		current, err := tx.Offerings().FindByIDForUpdate(ctx, o.ID())
		switch {
		case domain.IsNotFound(err):
			return tx.Offerings().Upsert(ctx, o)
		case err != nil:
			return err
		}

		if current.ServiceType() != serviceType {
			return domain.NewConflictError(fmt.Sprintf(
				"offering %s is a %s offering and cannot become %s", o.ID(), current.ServiceType(), serviceType))
		}
		if current.ProviderID() != evt.ProviderID {
			return domain.NewConflictError(fmt.Sprintf("offering %s belongs to another provider", o.ID()))
		}
		if err := s.guardCapacity(ctx, tx, current, capacity); err != nil {
			return err
		}
		return tx.Offerings().Upsert(ctx, o)
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx, o.ID())
	return nil
}

// guardCapacity refuses to shrink a quantity offering below the peak number of units
// held by active reservations that have not ended yet.
func (s *OfferingService) guardCapacity(ctx context.Context, tx reservationDomain.Tx, o *offeringDomain.Offering, capacity int) error {
	if o.LedgerKind() != offeringDomain.LedgerQuantity || capacity >= o.Capacity() {
		return nil
	}
	active, err := tx.Reservations().ListActiveEndingAfter(ctx, o.ID(), s.now().UTC())
	if err != nil {
		return err
	}
	if peak := reservationDomain.PeakOccupancy(active); peak > capacity {
		return domain.NewConflictError(fmt.Sprintf(
			"capacity %d is below the %d unit(s) already reserved", capacity, peak))
	}
	return nil
}

// RemoveFromCatalog deletes a mirrored offering unless reservations still hold it.
func (s *OfferingService) RemoveFromCatalog(ctx context.Context, id uuid.UUID) error {
	err := s.uow.Do(ctx, func(ctx context.Context, tx reservationDomain.Tx) error {
		if _, err := tx.Offerings().FindByIDForUpdate(ctx, id); err != nil {
			return err
		}
		return deleteUnreferenced(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx, id)
	return nil
}

func (s *OfferingService) lockOwned(
	ctx context.Context,
	tx reservationDomain.Tx,
	serviceType offeringDomain.ServiceType,
	id, providerID uuid.UUID,
) (*offeringDomain.Offering, error) {
	o, err := tx.Offerings().FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.ServiceType() != serviceType {
		return nil, domain.NewNotFoundError("Offering", id.String())
	}
	if !o.IsOwnedBy(providerID) {
		return nil, domain.NewForbiddenError("you do not own this offering")
	}
	return o, nil
}

func deleteUnreferenced(ctx context.Context, tx reservationDomain.Tx, id uuid.UUID) error {
	active, err := tx.Reservations().CountActiveByOffering(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return domain.NewConflictError(fmt.Sprintf("offering has %d active reservation(s)", active))
	}
	return tx.Offerings().Delete(ctx, id)
}

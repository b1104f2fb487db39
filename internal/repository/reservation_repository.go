package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	offeringDomain "github.com/LankaTrails/service-booking/internal/domain/offering"
	reservationDomain "github.com/LankaTrails/service-booking/internal/domain/reservation"
	"github.com/LankaTrails/service-booking/internal/platform/domain"
)

const pendingFirst = "CASE WHEN status = 'pending' THEN 0 ELSE 1 END, created_at DESC"

// ReservationModel is the GORM model for the reservations table.
type ReservationModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Reference    string          `gorm:"uniqueIndex;not null;size:20"`
	OfferingID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_reservations_offering_range,priority:1"`
	ProviderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	RequesterID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ServiceType  string          `gorm:"type:varchar(20);not null"`
	StartDate    time.Time       `gorm:"type:date;not null;index:idx_reservations_offering_range,priority:2"`
	EndDate      time.Time       `gorm:"type:date;not null;index:idx_reservations_offering_range,priority:3"`
	Quantity     int             `gorm:"not null;default:1"`
	TotalCents   int64           `gorm:"not null;default:0"`
	Currency     string          `gorm:"type:varchar(3);not null;default:'LKR'"`
	Status       string          `gorm:"type:varchar(20);not null;index"`
	Details      json.RawMessage `gorm:"type:jsonb;not null;default:'{}'"`
	Destinations pq.StringArray  `gorm:"type:text[];not null;default:'{}'"`
	ConfirmedAt  *time.Time      `gorm:"type:timestamptz"`
	CancelledAt  *time.Time      `gorm:"type:timestamptz"`
	Version      int64           `gorm:"not null;default:1"`
	CreatedAt    time.Time       `gorm:"type:timestamptz;not null"`
	UpdatedAt    time.Time       `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for the GORM model.
func (ReservationModel) TableName() string {
	return "reservations"
}

// GormReservationRepository is the GORM-based implementation of reservation.Repository.
type GormReservationRepository struct {
	db *gorm.DB
}

// NewGormReservationRepository creates a new GormReservationRepository.
func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// FindByID retrieves a reservation by its unique identifier.
func (r *GormReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*reservationDomain.Reservation, error) {
	var model ReservationModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Reservation", id.String())
		}
		return nil, fmt.Errorf("failed to find reservation by ID: %w", err)
	}
	return toReservationDomain(&model)
}

// SumActiveOverlapping sums quantities of active reservations overlapping period.
// Half-open overlap: start_date < period.End AND end_date > period.Start.
func (r *GormReservationRepository) SumActiveOverlapping(ctx context.Context, offeringID uuid.UUID, period reservationDomain.DateRange) (int, error) {
	var sum int64
	if err := r.db.WithContext(ctx).
		Model(&ReservationModel{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("offering_id = ? AND status IN ?", offeringID, activeStatuses()).
		Where("start_date < ? AND end_date > ?", period.End, period.Start).
		Scan(&sum).Error; err != nil {
		return 0, fmt.Errorf("failed to sum overlapping reservations: %w", err)
	}
	return int(sum), nil
}

// ListActiveEndingAfter returns active reservations of an offering that end after from.
func (r *GormReservationRepository) ListActiveEndingAfter(ctx context.Context, offeringID uuid.UUID, from time.Time) ([]*reservationDomain.Reservation, error) {
	var models []ReservationModel
	if err := r.db.WithContext(ctx).
		Where("offering_id = ? AND status IN ? AND end_date > ?", offeringID, activeStatuses(), from).
		Order("start_date").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list active reservations: %w", err)
	}
	return toReservationDomains(models)
}

// CountActiveByOffering counts pending and confirmed reservations of an offering.
func (r *GormReservationRepository) CountActiveByOffering(ctx context.Context, offeringID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&ReservationModel{}).
		Where("offering_id = ? AND status IN ?", offeringID, activeStatuses()).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count active reservations: %w", err)
	}
	return count, nil
}

// ListByOffering lists reservations of an offering, pending first.
func (r *GormReservationRepository) ListByOffering(ctx context.Context, offeringID uuid.UUID, page, limit int) ([]*reservationDomain.Reservation, int64, error) {
	q := r.db.WithContext(ctx).Model(&ReservationModel{}).Where("offering_id = ?", offeringID)
	return r.paginate(q, pendingFirst, page, limit)
}

// ListByProvider lists reservations across all of a provider's offerings, pending first.
func (r *GormReservationRepository) ListByProvider(ctx context.Context, providerID uuid.UUID, serviceType offeringDomain.ServiceType, page, limit int) ([]*reservationDomain.Reservation, int64, error) {
	q := r.db.WithContext(ctx).Model(&ReservationModel{}).Where("provider_id = ?", providerID)
	if serviceType != "" {
		q = q.Where("service_type = ?", string(serviceType))
	}
	return r.paginate(q, pendingFirst, page, limit)
}

// ListByRequester lists a tourist's reservations across all domains in one query.
func (r *GormReservationRepository) ListByRequester(ctx context.Context, requesterID uuid.UUID, serviceType offeringDomain.ServiceType) ([]*reservationDomain.Reservation, error) {
	q := r.db.WithContext(ctx).Where("requester_id = ?", requesterID)
	if serviceType != "" {
		q = q.Where("service_type = ?", string(serviceType))
	}

	var models []ReservationModel
	if err := q.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list requester reservations: %w", err)
	}
	return toReservationDomains(models)
}

// StatsByOffering summarises reservations of one offering.
func (r *GormReservationRepository) StatsByOffering(ctx context.Context, offeringID uuid.UUID) (reservationDomain.Stats, error) {
	return r.stats(r.db.WithContext(ctx).Model(&ReservationModel{}).Where("offering_id = ?", offeringID))
}

// StatsByProvider summarises reservations across a provider's offerings.
func (r *GormReservationRepository) StatsByProvider(ctx context.Context, providerID uuid.UUID) (reservationDomain.Stats, error) {
	return r.stats(r.db.WithContext(ctx).Model(&ReservationModel{}).Where("provider_id = ?", providerID))
}

func (r *GormReservationRepository) stats(q *gorm.DB) (reservationDomain.Stats, error) {
	var stats reservationDomain.Stats
	if err := q.Select(`
		COUNT(*) FILTER (WHERE status = 'pending') AS pending,
		COUNT(*) FILTER (WHERE status = 'confirmed') AS confirmed,
		COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled,
		COUNT(*) AS total,
		COALESCE(SUM(total_cents) FILTER (WHERE status = 'confirmed'), 0) AS revenue_cents`).
		Scan(&stats).Error; err != nil {
		return reservationDomain.Stats{}, fmt.Errorf("failed to compute reservation stats: %w", err)
	}
	return stats, nil
}

// ListAll retrieves all reservations with pagination (admin).
func (r *GormReservationRepository) ListAll(ctx context.Context, page, limit int) ([]*reservationDomain.Reservation, int64, error) {
	return r.paginate(r.db.WithContext(ctx).Model(&ReservationModel{}), "created_at DESC", page, limit)
}

// CountByStatus returns reservation counts grouped by status (admin).
func (r *GormReservationRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&ReservationModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new reservation.
func (r *GormReservationRepository) Save(ctx context.Context, res *reservationDomain.Reservation) error {
	model, err := toReservationModel(res)
	if err != nil {
		return fmt.Errorf("failed to convert reservation to model: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save reservation: %w", err)
	}
	return nil
}

// Update persists a status change with optimistic locking.
func (r *GormReservationRepository) Update(ctx context.Context, res *reservationDomain.Reservation) error {
	model, err := toReservationModel(res)
	if err != nil {
		return fmt.Errorf("failed to convert reservation to model: %w", err)
	}

	// IncrementVersion has been called, so the stored row carries version - 1.
	result := r.db.WithContext(ctx).
		Model(&ReservationModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Updates(map[string]interface{}{
			"status":       model.Status,
			"total_cents":  model.TotalCents,
			"details":      model.Details,
			"confirmed_at": model.ConfirmedAt,
			"cancelled_at": model.CancelledAt,
			"version":      model.Version,
			"updated_at":   model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update reservation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("reservation was modified by another transaction")
	}
	return nil
}

func (r *GormReservationRepository) paginate(q *gorm.DB, order string, page, limit int) ([]*reservationDomain.Reservation, int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reservations: %w", err)
	}

	var models []ReservationModel
	if err := q.Order(order).Offset((page - 1) * limit).Limit(limit).Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list reservations: %w", err)
	}

	reservations, err := toReservationDomains(models)
	if err != nil {
		return nil, 0, err
	}
	return reservations, total, nil
}

func activeStatuses() []string {
	statuses := make([]string, len(reservationDomain.ActiveStatuses))
	for i, s := range reservationDomain.ActiveStatuses {
		statuses[i] = string(s)
	}
	return statuses
}

// --- Conversion Helpers ---

func toReservationModel(res *reservationDomain.Reservation) (*ReservationModel, error) {
	details, err := json.Marshal(res.Details())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reservation details: %w", err)
	}

	return &ReservationModel{
		ID:           res.ID(),
		Reference:    res.Reference(),
		OfferingID:   res.OfferingID(),
		ProviderID:   res.ProviderID(),
		RequesterID:  res.RequesterID(),
		ServiceType:  string(res.ServiceType()),
		StartDate:    res.Period().Start,
		EndDate:      res.Period().End,
		Quantity:     res.Quantity(),
		TotalCents:   res.TotalCents(),
		Currency:     res.Currency(),
		Status:       string(res.Status()),
		Details:      details,
		Destinations: pq.StringArray(res.Destinations()),
		ConfirmedAt:  res.ConfirmedAt(),
		CancelledAt:  res.CancelledAt(),
		Version:      res.Version(),
		CreatedAt:    res.CreatedAt(),
		UpdatedAt:    res.UpdatedAt(),
	}, nil
}

func toReservationDomain(m *ReservationModel) (*reservationDomain.Reservation, error) {
	var details reservationDomain.Details
	if len(m.Details) > 0 {
		if err := json.Unmarshal(m.Details, &details); err != nil {
			return nil, fmt.Errorf("failed to unmarshal reservation details: %w", err)
		}
	}

	status, err := reservationDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return reservationDomain.Reconstruct(
		m.ID,
		m.Reference,
		m.OfferingID,
		m.ProviderID,
		m.RequesterID,
		offeringDomain.ServiceType(m.ServiceType),
		reservationDomain.DateRange{Start: m.StartDate.UTC(), End: m.EndDate.UTC()},
		m.Quantity,
		m.TotalCents,
		m.Currency,
		status,
		details,
		m.Destinations,
		m.ConfirmedAt,
		m.CancelledAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toReservationDomains(models []ReservationModel) ([]*reservationDomain.Reservation, error) {
	reservations := make([]*reservationDomain.Reservation, len(models))
	for i := range models {
		res, err := toReservationDomain(&models[i])
		if err != nil {
			return nil, err
		}
		reservations[i] = res
	}
	return reservations, nil
}

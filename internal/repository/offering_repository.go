package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	offeringDomain "github.com/LankaTrails/service-booking/internal/domain/offering"
	"github.com/LankaTrails/service-booking/internal/platform/domain"
)

// OfferingModel is the GORM model for the offerings table.
type OfferingModel struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	ProviderID  uuid.UUID      `gorm:"type:uuid;not null;index"`
	ServiceType string         `gorm:"type:varchar(20);not null;index"`
	Name        string         `gorm:"type:varchar(200);not null"`
	ListingName string         `gorm:"type:varchar(200)"`
	Description string         `gorm:"type:text"`
	Location    string         `gorm:"type:varchar(200)"`
	PriceCents  int64          `gorm:"not null;default:0"`
	Currency    string         `gorm:"type:varchar(3);not null;default:'LKR'"`
	Capacity    int            `gorm:"not null;default:1"`
	Available   bool           `gorm:"not null;default:true"`
	MaxGuests   int            `gorm:"not null;default:0"`
	Photos      pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	Languages   pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	Version     int64          `gorm:"not null;default:1"`
	CreatedAt   time.Time      `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt   time.Time      `gorm:"type:timestamptz;not null;default:now()"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (OfferingModel) TableName() string { return "offerings" }

// GormOfferingRepository implements offering.Repository using GORM.
type GormOfferingRepository struct {
	db *gorm.DB
}

func NewGormOfferingRepository(db *gorm.DB) *GormOfferingRepository {
	return &GormOfferingRepository{db: db}
}

func (r *GormOfferingRepository) FindByID(ctx context.Context, id uuid.UUID) (*offeringDomain.Offering, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate locks the offering row with SELECT ... FOR UPDATE. It only
// serialises anything when r was built on a transaction handle.
func (r *GormOfferingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*offeringDomain.Offering, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormOfferingRepository) find(q *gorm.DB, id uuid.UUID) (*offeringDomain.Offering, error) {
	var model OfferingModel
	if err := q.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Offering", id.String())
		}
		return nil, fmt.Errorf("failed to find offering: %w", err)
	}
	return toOfferingDomain(&model), nil
}

func (r *GormOfferingRepository) FindByProviderID(ctx context.Context, providerID uuid.UUID) ([]*offeringDomain.Offering, error) {
	var models []OfferingModel
	if err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("service_type, created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find provider offerings: %w", err)
	}

	offerings := make([]*offeringDomain.Offering, len(models))
	for i := range models {
		offerings[i] = toOfferingDomain(&models[i])
	}
	return offerings, nil
}

func (r *GormOfferingRepository) Save(ctx context.Context, o *offeringDomain.Offering) error {
	if err := r.db.WithContext(ctx).Create(toOfferingModel(o)).Error; err != nil {
		return fmt.Errorf("failed to save offering: %w", err)
	}
	return nil
}

// Update persists changes with optimistic locking (expects version already incremented).
func (r *GormOfferingRepository) Update(ctx context.Context, o *offeringDomain.Offering) error {
	model := toOfferingModel(o)
	result := r.db.WithContext(ctx).
		Model(&OfferingModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Updates(map[string]interface{}{
			"name":         model.Name,
			"listing_name": model.ListingName,
			"description":  model.Description,
			"location":     model.Location,
			"price_cents":  model.PriceCents,
			"currency":     model.Currency,
			"capacity":     model.Capacity,
			"available":    model.Available,
			"max_guests":   model.MaxGuests,
			"photos":       model.Photos,
			"languages":    model.Languages,
			"version":      model.Version,
			"updated_at":   model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update offering: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("offering was modified by another transaction")
	}
	return nil
}

func (r *GormOfferingRepository) Upsert(ctx context.Context, o *offeringDomain.Offering) error {
	model := toOfferingModel(o)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"name":         model.Name,
			"listing_name": model.ListingName,
			"description":  model.Description,
			"location":     model.Location,
			"price_cents":  model.PriceCents,
			"currency":     model.Currency,
			"capacity":     model.Capacity,
			"max_guests":   model.MaxGuests,
			"photos":       model.Photos,
			"languages":    model.Languages,
			"deleted_at":   nil,
			"version":      gorm.Expr("offerings.version + 1"),
			"updated_at":   model.UpdatedAt,
		}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert offering: %w", err)
	}
	return nil
}

func (r *GormOfferingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&OfferingModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete offering: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Offering", id.String())
	}
	return nil
}

func toOfferingModel(o *offeringDomain.Offering) *OfferingModel {
	return &OfferingModel{
		ID:          o.ID(),
		ProviderID:  o.ProviderID(),
		ServiceType: string(o.ServiceType()),
		Name:        o.Name(),
		ListingName: o.ListingName(),
		Description: o.Description(),
		Location:    o.Location(),
		PriceCents:  o.PriceCents(),
		Currency:    o.Currency(),
		Capacity:    o.Capacity(),
		Available:   o.Available(),
		MaxGuests:   o.MaxGuests(),
		Photos:      pq.StringArray(o.Photos()),
		Languages:   pq.StringArray(o.Languages()),
		Version:     o.Version(),
		CreatedAt:   o.CreatedAt(),
		UpdatedAt:   o.UpdatedAt(),
	}
}

func toOfferingDomain(m *OfferingModel) *offeringDomain.Offering {
	return offeringDomain.Reconstruct(
		m.ID,
		m.ProviderID,
		offeringDomain.ServiceType(m.ServiceType),
		offeringDomain.Attributes{
			Name:        m.Name,
			ListingName: m.ListingName,
			Description: m.Description,
			Location:    m.Location,
			PriceCents:  m.PriceCents,
			Currency:    m.Currency,
			Capacity:    m.Capacity,
			MaxGuests:   m.MaxGuests,
			Photos:      m.Photos,
			Languages:   m.Languages,
		},
		m.Available,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

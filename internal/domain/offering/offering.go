package offering

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/LankaTrails/service-booking/internal/platform/domain"
)

// Offering is a bookable unit: a hotel room type, a tour guide, or a vehicle.
type Offering struct {
	id          uuid.UUID
	providerID  uuid.UUID
	serviceType ServiceType
	name        string
	listingName string
	description string
	location    string
	priceCents  int64
	currency    string
	capacity    int
	available   bool
	maxGuests   int
	photos      []string
	languages   []string
	version     int64
	createdAt   time.Time
	updatedAt   time.Time
}

// Attributes carries the provider-editable fields of an offering.
type Attributes struct {
	Name        string
	ListingName string
	Description string
	Location    string
	PriceCents  int64
	Currency    string
	Capacity    int
	MaxGuests   int
	Photos      []string
	Languages   []string
}

// NewOffering creates an offering owned by providerID. Flag offerings always have a
// capacity of one and start available.
func NewOffering(providerID uuid.UUID, serviceType ServiceType, attrs Attributes) (*Offering, error) {
	if providerID == uuid.Nil {
		return nil, domain.NewValidationError("provider ID is required")
	}
	if !serviceType.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid service type: %s", serviceType))
	}
	if attrs.Name == "" {
		return nil, domain.NewValidationError("offering name is required")
	}
	if attrs.PriceCents < 0 {
		return nil, domain.NewValidationError("price cannot be negative")
	}

	capacity := 1
	if serviceType.LedgerKind() == LedgerQuantity {
		if attrs.Capacity < 0 {
			return nil, domain.NewValidationError("capacity cannot be negative")
		}
		capacity = attrs.Capacity
	}

	currency := attrs.Currency
	if currency == "" {
		currency = domain.CurrencyLKR
	}

	now := time.Now().UTC()
	return &Offering{
		id:          uuid.New(),
		providerID:  providerID,
		serviceType: serviceType,
		name:        attrs.Name,
		listingName: attrs.ListingName,
		description: attrs.Description,
		location:    attrs.Location,
		priceCents:  attrs.PriceCents,
		currency:    currency,
		capacity:    capacity,
		available:   true,
		maxGuests:   attrs.MaxGuests,
		photos:      nonNil(attrs.Photos),
		languages:   nonNil(attrs.Languages),
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstruct rebuilds an Offering from persistence data (no validation).
func Reconstruct(
	id, providerID uuid.UUID,
	serviceType ServiceType,
	attrs Attributes,
	available bool,
	version int64,
	createdAt, updatedAt time.Time,
) *Offering {
	return &Offering{
		id:          id,
		providerID:  providerID,
		serviceType: serviceType,
		name:        attrs.Name,
		listingName: attrs.ListingName,
		description: attrs.Description,
		location:    attrs.Location,
		priceCents:  attrs.PriceCents,
		currency:    attrs.Currency,
		capacity:    attrs.Capacity,
		available:   available,
		maxGuests:   attrs.MaxGuests,
		photos:      nonNil(attrs.Photos),
		languages:   nonNil(attrs.Languages),
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

func (o *Offering) ID() uuid.UUID            { return o.id }
func (o *Offering) ProviderID() uuid.UUID    { return o.providerID }
func (o *Offering) ServiceType() ServiceType { return o.serviceType }
func (o *Offering) LedgerKind() LedgerKind   { return o.serviceType.LedgerKind() }
func (o *Offering) Name() string             { return o.name }
func (o *Offering) ListingName() string      { return o.listingName }
func (o *Offering) Description() string      { return o.description }
func (o *Offering) Location() string         { return o.location }
func (o *Offering) PriceCents() int64        { return o.priceCents }
func (o *Offering) Currency() string         { return o.currency }
func (o *Offering) Capacity() int            { return o.capacity }
func (o *Offering) Available() bool          { return o.available }
func (o *Offering) MaxGuests() int           { return o.maxGuests }
func (o *Offering) Photos() []string         { return nonNil(o.photos) }
func (o *Offering) Languages() []string      { return nonNil(o.languages) }
func (o *Offering) Version() int64           { return o.version }
func (o *Offering) CreatedAt() time.Time     { return o.createdAt }
func (o *Offering) UpdatedAt() time.Time     { return o.updatedAt }

// Attributes returns the provider-editable fields.
func (o *Offering) Attributes() Attributes {
	return Attributes{
		Name:        o.name,
		ListingName: o.listingName,
		Description: o.description,
		Location:    o.location,
		PriceCents:  o.priceCents,
		Currency:    o.currency,
		Capacity:    o.capacity,
		MaxGuests:   o.maxGuests,
		Photos:      o.Photos(),
		Languages:   o.Languages(),
	}
}

// --- Behavior ---

// IsOwnedBy checks if the offering belongs to the given provider.
func (o *Offering) IsOwnedBy(providerID uuid.UUID) bool {
	return o.providerID == providerID
}

// Update applies a partial update. Zero values leave fields unchanged, except that a
// non-nil capacity may set a quantity offering to zero rooms.
func (o *Offering) Update(attrs Attributes, capacity *int) error {
	if attrs.PriceCents < 0 {
		return domain.NewValidationError("price cannot be negative")
	}
	if attrs.Name != "" {
		o.name = attrs.Name
	}
	if attrs.ListingName != "" {
		o.listingName = attrs.ListingName
	}
	if attrs.Description != "" {
		o.description = attrs.Description
	}
	if attrs.Location != "" {
		o.location = attrs.Location
	}
	if attrs.PriceCents > 0 {
		o.priceCents = attrs.PriceCents
	}
	if attrs.Currency != "" {
		o.currency = attrs.Currency
	}
	if attrs.MaxGuests > 0 {
		o.maxGuests = attrs.MaxGuests
	}
	if attrs.Photos != nil {
		o.photos = nonNil(attrs.Photos)
	}
	if attrs.Languages != nil {
		o.languages = nonNil(attrs.Languages)
	}
	if capacity != nil {
		if o.LedgerKind() != LedgerQuantity {
			return domain.NewValidationError("capacity is fixed for guide and transport offerings")
		}
		if *capacity < 0 {
			return domain.NewValidationError("capacity cannot be negative")
		}
		o.capacity = *capacity
	}
	o.version++
	o.updatedAt = time.Now().UTC()
	return nil
}

// AdjustFlag sets the availability flag of a flag offering. Quantity offerings reject it:
// their availability is always derived from reservations.
func (o *Offering) AdjustFlag(available bool) error {
	if o.LedgerKind() != LedgerFlag {
		return fmt.Errorf("offering %s is quantity-based and has no availability flag", o.id)
	}
	o.available = available
	o.version++
	o.updatedAt = time.Now().UTC()
	return nil
}

func nonNil(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

package application

import (
	"time"

	"github.com/google/uuid"

	offeringDomain "github.com/LankaTrails/service-booking/internal/domain/offering"
	reservationDomain "github.com/LankaTrails/service-booking/internal/domain/reservation"
)

// ReservationDTO is the API response representation of a reservation.
type ReservationDTO struct {
	ID           uuid.UUID                 `json:"id"`
	Reference    string                    `json:"reference"`
	OfferingID   uuid.UUID                 `json:"offering_id"`
	ProviderID   uuid.UUID                 `json:"provider_id"`
	RequesterID  uuid.UUID                 `json:"requester_id"`
	ServiceType  string                    `json:"service_type"`
	StartDate    string                    `json:"start_date"`
	EndDate      string                    `json:"end_date"`
	Days         int                       `json:"days"`
	Quantity     int                       `json:"quantity"`
	TotalCents   int64                     `json:"total_cents"`
	Currency     string                    `json:"currency"`
	Status       string                    `json:"status"`
	Details      reservationDomain.Details `json:"details"`
	Destinations []string                  `json:"destinations"`
	ConfirmedAt  *time.Time                `json:"confirmed_at,omitempty"`
	CancelledAt  *time.Time                `json:"cancelled_at,omitempty"`
	Version      int64                     `json:"version"`
	CreatedAt    time.Time                 `json:"created_at"`
	UpdatedAt    time.Time                 `json:"updated_at"`
}

// OfferingDTO is the API response representation of an offering.
type OfferingDTO struct {
	ID          uuid.UUID `json:"id"`
	ProviderID  uuid.UUID `json:"provider_id"`
	ServiceType string    `json:"service_type"`
	LedgerKind  string    `json:"ledger_kind"`
	Name        string    `json:"name"`
	ListingName string    `json:"listing_name,omitempty"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	PriceCents  int64     `json:"price_cents"`
	Currency    string    `json:"currency"`
	Capacity    int       `json:"capacity"`
	Available   bool      `json:"available"`
	MaxGuests   int       `json:"max_guests,omitempty"`
	Photos      []string  `json:"photos"`
	Languages   []string  `json:"languages"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toReservationDTO(r *reservationDomain.Reservation) ReservationDTO {
	return ReservationDTO{
		ID:           r.ID(),
		Reference:    r.Reference(),
		OfferingID:   r.OfferingID(),
		ProviderID:   r.ProviderID(),
		RequesterID:  r.RequesterID(),
		ServiceType:  string(r.ServiceType()),
		StartDate:    r.Period().Start.Format(reservationDomain.DateLayout),
		EndDate:      r.Period().End.Format(reservationDomain.DateLayout),
		Days:         r.Period().Days(),
		Quantity:     r.Quantity(),
		TotalCents:   r.TotalCents(),
		Currency:     r.Currency(),
		Status:       string(r.Status()),
		Details:      r.Details(),
		Destinations: r.Destinations(),
		ConfirmedAt:  r.ConfirmedAt(),
		CancelledAt:  r.CancelledAt(),
		Version:      r.Version(),
		CreatedAt:    r.CreatedAt(),
		UpdatedAt:    r.UpdatedAt(),
	}
}

func toReservationDTOs(list []*reservationDomain.Reservation) []ReservationDTO {
	dtos := make([]ReservationDTO, len(list))
	for i, r := range list {
		dtos[i] = toReservationDTO(r)
	}
	return dtos
}

func toOfferingDTO(o *offeringDomain.Offering) OfferingDTO {
	return OfferingDTO{
		ID:          o.ID(),
		ProviderID:  o.ProviderID(),
		ServiceType: string(o.ServiceType()),
		LedgerKind:  string(o.LedgerKind()),
		Name:        o.Name(),
		ListingName: o.ListingName(),
		Description: o.Description(),
		Location:    o.Location(),
		PriceCents:  o.PriceCents(),
		Currency:    o.Currency(),
		Capacity:    o.Capacity(),
		Available:   o.Available(),
		MaxGuests:   o.MaxGuests(),
		Photos:      o.Photos(),
		Languages:   o.Languages(),
		Version:     o.Version(),
		CreatedAt:   o.CreatedAt(),
		UpdatedAt:   o.UpdatedAt(),
	}
}

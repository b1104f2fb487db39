package events

import (
	"time"

	"github.com/google/uuid"
)

// ReservationRequestedEvent is published when a tourist creates a reservation.
type ReservationRequestedEvent struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	Reference     string    `json:"reference"`
	OfferingID    uuid.UUID `json:"offering_id"`
	ProviderID    uuid.UUID `json:"provider_id"`
	RequesterID   uuid.UUID `json:"requester_id"`
	ServiceType   string    `json:"service_type"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	Quantity      int       `json:"quantity"`
	TotalCents    int64     `json:"total_cents"`
	Currency      string    `json:"currency"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// ReservationStatusChangedEvent is published on confirmation and cancellation.
type ReservationStatusChangedEvent struct {
	ReservationID  uuid.UUID `json:"reservation_id"`
	Reference      string    `json:"reference"`
	OfferingID     uuid.UUID `json:"offering_id"`
	ProviderID     uuid.UUID `json:"provider_id"`
	RequesterID    uuid.UUID `json:"requester_id"`
	ServiceType    string    `json:"service_type"`
	PreviousStatus string    `json:"previous_status"`
	Status         string    `json:"status"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// OfferingUpsertedEvent mirrors a listing created or edited in the catalog service.
type OfferingUpsertedEvent struct {
	OfferingID  uuid.UUID `json:"offering_id"`
	ProviderID  uuid.UUID `json:"provider_id"`
	ServiceType string    `json:"service_type"`
	Name        string    `json:"name"`
	ListingName string    `json:"listing_name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	PriceCents  int64     `json:"price_cents"`
	Currency    string    `json:"currency"`
	Capacity    int       `json:"capacity"`
	MaxGuests   int       `json:"max_guests"`
	Photos      []string  `json:"photos"`
	Languages   []string  `json:"languages"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// OfferingRemovedEvent reports a listing deleted in the catalog service.
type OfferingRemovedEvent struct {
	OfferingID uuid.UUID `json:"offering_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

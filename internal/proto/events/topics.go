// Package events defines the topics and payloads exchanged with other marketplace
// services over Kafka.
package events

// Topics.
const (
	TopicBookingEvents = "booking.events"
	TopicListingEvents = "listing.events"
)

// Booking event types published by this service.
const (
	ReservationRequested = "booking.reservation.requested"
	ReservationConfirmed = "booking.reservation.confirmed"
	ReservationCancelled = "booking.reservation.cancelled"
)

// Listing event types consumed by this service.
const (
	OfferingUpserted = "listing.offering.upserted"
	OfferingRemoved  = "listing.offering.removed"
)

// Source identifies this service in CloudEvent envelopes.
const Source = "service-booking"

//go:build integration

package main_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LankaTrails/service-booking/internal/application"
	offeringDomain "github.com/LankaTrails/service-booking/internal/domain/offering"
	reservationDomain "github.com/LankaTrails/service-booking/internal/domain/reservation"
	"github.com/LankaTrails/service-booking/internal/platform/domain"
	"github.com/LankaTrails/service-booking/internal/proto/events"
	"github.com/LankaTrails/service-booking/internal/repository"
)

// TestListingUpserted_SyncsOfferingAndPublishesReservation verifies that a listing
// published on listing.events becomes bookable, and that booking it emits
// booking.reservation.requested on booking.events.
func TestListingUpserted_SyncsOfferingAndPublishesReservation(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	evt := events.OfferingUpsertedEvent{
		OfferingID:  uuid.New(),
		ProviderID:  uuid.New(),
		ServiceType: "hotel",
		Name:        "Ocean View Double",
		ListingName: "Mirissa Bay Hotel",
		PriceCents:  1800000,
		Currency:    "LKR",
		Capacity:    2,
		Photos:      []string{"https://cdn.example.lk/rooms/ocean.jpg"},
		OccurredAt:  time.Now().UTC(),
	}
	publishTestEvent(t, infra.KafkaBrokers, events.TopicListingEvents, "service-listing", events.OfferingUpserted, evt)

	model := waitForOffering(t, infra.DB, evt.OfferingID, 15*time.Second)
	assert.Equal(t, 2, model.Capacity)
	assert.Equal(t, []string{"https://cdn.example.lk/rooms/ocean.jpg"}, []string(model.Photos))

	res, err := stack.Bookings.CreateReservation(ctx, offeringDomain.ServiceHotel,
		application.Requester{ID: uuid.New(), Name: "Tharindu", Email: "tharindu@example.lk"},
		application.CreateReservationRequest{OfferingID: evt.OfferingID, StartDate: "2031-02-01", EndDate: "2031-02-03"})
	require.NoError(t, err)

	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicBookingEvents, events.ReservationRequested, 15*time.Second)
	var requested events.ReservationRequestedEvent
	require.NoError(t, ce.ParseData(&requested))
	assert.Equal(t, res.ID, requested.ReservationID)
	assert.Equal(t, int64(1800000*2), requested.TotalCents)
}

// TestConcurrentReservations_NeverOverbook races many single-room requests against
// a small hotel offering and checks the row lock keeps the sum within capacity.
func TestConcurrentReservations_NeverOverbook(t *testing.T) {
	db, cleanup := setupPostgres(t)
	defer cleanup()

	bookings, offerings := newServices(db, application.NopPublisher{})
	ctx := context.Background()

	room, err := offerings.CreateOffering(ctx, uuid.New(), offeringDomain.ServiceHotel,
		application.CreateOfferingRequest{Name: "Family Room", PriceCents: 1000000, Capacity: 3})
	require.NoError(t, err)

	const attempts = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := bookings.CreateReservation(ctx, offeringDomain.ServiceHotel,
				application.Requester{ID: uuid.New()},
				application.CreateReservationRequest{OfferingID: room.ID, StartDate: "2031-04-10", EndDate: "2031-04-12"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case domain.HasCode(err, domain.CodeInsufficientInventory), domain.HasCode(err, domain.CodeConflict):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, attempts-3, rejected)

	period, err := reservationDomain.ParseDateRange("2031-04-10", "2031-04-12")
	require.NoError(t, err)
	reserved, err := repository.NewGormReservationRepository(db).SumActiveOverlapping(ctx, room.ID, period)
	require.NoError(t, err)
	assert.Equal(t, 3, reserved)
}

// TestGuideConfirmation_TogglesAvailability checks the flag ledger end to end on
// Postgres: confirm clears the flag, a second confirm is refused, cancel restores it.
func TestGuideConfirmation_TogglesAvailability(t *testing.T) {
	db, cleanup := setupPostgres(t)
	defer cleanup()

	bookings, offerings := newServices(db, application.NopPublisher{})
	ctx := context.Background()
	guideID := uuid.New()

	guide, err := offerings.CreateOffering(ctx, guideID, offeringDomain.ServiceGuide,
		application.CreateOfferingRequest{Name: "Ruwan", PriceCents: 750000, Languages: []string{"en", "ja"}})
	require.NoError(t, err)

	book := func(date string) *application.ReservationDTO {
		res, err := bookings.CreateReservation(ctx, offeringDomain.ServiceGuide, application.Requester{ID: uuid.New()},
			application.CreateReservationRequest{OfferingID: guide.ID, Date: date, Days: 2})
		require.NoError(t, err)
		return res
	}
	first, second := book("2031-06-01"), book("2031-06-10")

	_, err = bookings.SetStatus(ctx, offeringDomain.ServiceGuide, first.ID, "confirmed", guideID)
	require.NoError(t, err)

	var model repository.OfferingModel
	require.NoError(t, db.Where("id = ?", guide.ID).First(&model).Error)
	assert.False(t, model.Available)

	_, err = bookings.SetStatus(ctx, offeringDomain.ServiceGuide, second.ID, "confirmed", guideID)
	assert.True(t, domain.HasCode(err, domain.CodeInsufficientInventory))

	_, err = bookings.SetStatus(ctx, offeringDomain.ServiceGuide, first.ID, "cancelled", guideID)
	require.NoError(t, err)

	require.NoError(t, db.Where("id = ?", guide.ID).First(&model).Error)
	assert.True(t, model.Available)
}

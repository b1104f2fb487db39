// Package memory provides an in-process Reservation Store for local runs and tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/LankaTrails/service-booking/internal/domain/offering"
	"github.com/LankaTrails/service-booking/internal/domain/reservation"
)

// Store keeps offerings and reservations in maps guarded by one mutex. Units of work
// hold the mutex for their whole duration, so they are fully serialised.
type Store struct {
	mu           sync.Mutex
	offerings    map[uuid.UUID]*offering.Offering
	reservations map[uuid.UUID]*reservation.Reservation
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		offerings:    make(map[uuid.UUID]*offering.Offering),
		reservations: make(map[uuid.UUID]*reservation.Reservation),
	}
}

// Offerings returns a repository that locks the store per call.
func (s *Store) Offerings() *OfferingRepository {
	return &OfferingRepository{store: s, locking: true}
}

// Reservations returns a repository that locks the store per call.
func (s *Store) Reservations() *ReservationRepository {
	return &ReservationRepository{store: s, locking: true}
}

// UnitOfWork returns a reservation.UnitOfWork backed by s.
func (s *Store) UnitOfWork() *UnitOfWork {
	return &UnitOfWork{store: s}
}

func (s *Store) run(locking bool, fn func()) {
	if locking {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	fn()
}

// UnitOfWork serialises work on the store and restores the previous state when the
// work fails.
type UnitOfWork struct {
	store *Store
}

type memoryTx struct {
	offerings    *OfferingRepository
	reservations *ReservationRepository
}

func (t *memoryTx) Offerings() offering.Repository       { return t.offerings }
func (t *memoryTx) Reservations() reservation.Repository { return t.reservations }

// Do runs fn with exclusive access to the store.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, tx reservation.Tx) error) (err error) {
	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	// Stored values are never mutated in place, so a shallow copy is a full snapshot.
	offerings := make(map[uuid.UUID]*offering.Offering, len(s.offerings))
	for k, v := range s.offerings {
		offerings[k] = v
	}
	reservations := make(map[uuid.UUID]*reservation.Reservation, len(s.reservations))
	for k, v := range s.reservations {
		reservations[k] = v
	}

	defer func() {
		if r := recover(); r != nil {
			s.offerings, s.reservations = offerings, reservations
			panic(r)
		}
		if err != nil {
			s.offerings, s.reservations = offerings, reservations
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, &memoryTx{
		offerings:    &OfferingRepository{store: s},
		reservations: &ReservationRepository{store: s},
	})
}

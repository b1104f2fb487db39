package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/LankaTrails/service-booking/internal/domain/offering"
	"github.com/LankaTrails/service-booking/internal/domain/reservation"
	"github.com/LankaTrails/service-booking/internal/platform/domain"
)

// ReservationRepository implements reservation.Repository over a Store.
type ReservationRepository struct {
	store   *Store
	locking bool
}

func (r *ReservationRepository) FindByID(_ context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	var (
		res *reservation.Reservation
		ok  bool
	)
	r.store.run(r.locking, func() { res, ok = r.store.reservations[id] })
	if !ok {
		return nil, domain.NewNotFoundError("Reservation", id.String())
	}
	return cloneReservation(res), nil
}

func (r *ReservationRepository) SumActiveOverlapping(_ context.Context, offeringID uuid.UUID, period reservation.DateRange) (int, error) {
	sum := 0
	r.store.run(r.locking, func() {
		for _, res := range r.store.reservations {
			if res.OfferingID() == offeringID && res.Status().IsActive() && res.Period().Overlaps(period) {
				sum += res.Quantity()
			}
		}
	})
	return sum, nil
}

func (r *ReservationRepository) ListActiveEndingAfter(_ context.Context, offeringID uuid.UUID, from time.Time) ([]*reservation.Reservation, error) {
	result := r.filter(func(res *reservation.Reservation) bool {
		return res.OfferingID() == offeringID && res.Status().IsActive() && res.Period().End.After(from)
	})
	sort.Slice(result, func(i, j int) bool { return result[i].Period().Start.Before(result[j].Period().Start) })
	return result, nil
}

func (r *ReservationRepository) CountActiveByOffering(_ context.Context, offeringID uuid.UUID) (int64, error) {
	result := r.filter(func(res *reservation.Reservation) bool {
		return res.OfferingID() == offeringID && res.Status().IsActive()
	})
	return int64(len(result)), nil
}

func (r *ReservationRepository) ListByOffering(_ context.Context, offeringID uuid.UUID, page, limit int) ([]*reservation.Reservation, int64, error) {
	result := r.filter(func(res *reservation.Reservation) bool { return res.OfferingID() == offeringID })
	sortPendingFirst(result)
	items, total := paginate(result, page, limit)
	return items, total, nil
}

func (r *ReservationRepository) ListByProvider(_ context.Context, providerID uuid.UUID, serviceType offering.ServiceType, page, limit int) ([]*reservation.Reservation, int64, error) {
	result := r.filter(func(res *reservation.Reservation) bool {
		return res.ProviderID() == providerID && (serviceType == "" || res.ServiceType() == serviceType)
	})
	sortPendingFirst(result)
	items, total := paginate(result, page, limit)
	return items, total, nil
}

func (r *ReservationRepository) ListByRequester(_ context.Context, requesterID uuid.UUID, serviceType offering.ServiceType) ([]*reservation.Reservation, error) {
	result := r.filter(func(res *reservation.Reservation) bool {
		return res.RequesterID() == requesterID && (serviceType == "" || res.ServiceType() == serviceType)
	})
	sortNewestFirst(result)
	return result, nil
}

func (r *ReservationRepository) StatsByOffering(_ context.Context, offeringID uuid.UUID) (reservation.Stats, error) {
	return statsOf(r.filter(func(res *reservation.Reservation) bool { return res.OfferingID() == offeringID })), nil
}

func (r *ReservationRepository) StatsByProvider(_ context.Context, providerID uuid.UUID) (reservation.Stats, error) {
	return statsOf(r.filter(func(res *reservation.Reservation) bool { return res.ProviderID() == providerID })), nil
}

func (r *ReservationRepository) ListAll(_ context.Context, page, limit int) ([]*reservation.Reservation, int64, error) {
	result := r.filter(func(*reservation.Reservation) bool { return true })
	sortNewestFirst(result)
	items, total := paginate(result, page, limit)
	return items, total, nil
}

func (r *ReservationRepository) CountByStatus(_ context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	r.store.run(r.locking, func() {
		for _, res := range r.store.reservations {
			counts[string(res.Status())]++
		}
	})
	return counts, nil
}

func (r *ReservationRepository) Save(_ context.Context, res *reservation.Reservation) error {
	var err error
	r.store.run(r.locking, func() {
		if _, exists := r.store.reservations[res.ID()]; exists {
			err = domain.NewConflictError("reservation already exists")
			return
		}
		r.store.reservations[res.ID()] = cloneReservation(res)
	})
	return err
}

func (r *ReservationRepository) Update(_ context.Context, res *reservation.Reservation) error {
	var err error
	r.store.run(r.locking, func() {
		current, ok := r.store.reservations[res.ID()]
		if !ok {
			err = domain.NewNotFoundError("Reservation", res.ID().String())
			return
		}
		if current.Version() != res.Version()-1 {
			err = domain.NewConflictError("reservation was modified by another transaction")
			return
		}
		r.store.reservations[res.ID()] = cloneReservation(res)
	})
	return err
}

func (r *ReservationRepository) filter(keep func(*reservation.Reservation) bool) []*reservation.Reservation {
	var result []*reservation.Reservation
	r.store.run(r.locking, func() {
		for _, res := range r.store.reservations {
			if keep(res) {
				result = append(result, cloneReservation(res))
			}
		}
	})
	return result
}

func sortNewestFirst(list []*reservation.Reservation) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt().After(list[j].CreatedAt()) })
}

func sortPendingFirst(list []*reservation.Reservation) {
	sort.SliceStable(list, func(i, j int) bool {
		pi, pj := list[i].Status() == reservation.StatusPending, list[j].Status() == reservation.StatusPending
		if pi != pj {
			return pi
		}
		return list[i].CreatedAt().After(list[j].CreatedAt())
	})
}

func paginate(list []*reservation.Reservation, page, limit int) ([]*reservation.Reservation, int64) {
	total := int64(len(list))
	start := (page - 1) * limit
	if start < 0 || limit <= 0 || start >= len(list) {
		return []*reservation.Reservation{}, total
	}
	end := start + limit
	if end > len(list) {
		end = len(list)
	}
	return list[start:end], total
}

func statsOf(list []*reservation.Reservation) reservation.Stats {
	var s reservation.Stats
	for _, res := range list {
		switch res.Status() {
		case reservation.StatusPending:
			s.Pending++
		case reservation.StatusConfirmed:
			s.Confirmed++
			s.RevenueCents += res.TotalCents()
		case reservation.StatusCancelled:
			s.Cancelled++
		}
		s.Total++
	}
	return s
}

func cloneReservation(res *reservation.Reservation) *reservation.Reservation {
	return reservation.Reconstruct(
		res.ID(), res.Reference(),
		res.OfferingID(), res.ProviderID(), res.RequesterID(),
		res.ServiceType(), res.Period(), res.Quantity(), res.TotalCents(), res.Currency(),
		res.Status(), res.Details(), res.Destinations(),
		res.ConfirmedAt(), res.CancelledAt(),
		res.Version(), res.CreatedAt(), res.UpdatedAt(),
	)
}

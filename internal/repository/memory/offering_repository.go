package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/LankaTrails/service-booking/internal/domain/offering"
	"github.com/LankaTrails/service-booking/internal/platform/domain"
)

// OfferingRepository implements offering.Repository over a Store.
type OfferingRepository struct {
	store   *Store
	locking bool
}

func (r *OfferingRepository) FindByID(_ context.Context, id uuid.UUID) (*offering.Offering, error) {
	var (
		o  *offering.Offering
		ok bool
	)
	r.store.run(r.locking, func() { o, ok = r.store.offerings[id] })
	if !ok {
		return nil, domain.NewNotFoundError("Offering", id.String())
	}
	return cloneOffering(o), nil
}

// FindByIDForUpdate is FindByID: the enclosing unit of work already holds the store.
func (r *OfferingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*offering.Offering, error) {
	return r.FindByID(ctx, id)
}

func (r *OfferingRepository) FindByProviderID(_ context.Context, providerID uuid.UUID) ([]*offering.Offering, error) {
	var result []*offering.Offering
	r.store.run(r.locking, func() {
		for _, o := range r.store.offerings {
			if o.IsOwnedBy(providerID) {
				result = append(result, cloneOffering(o))
			}
		}
	})
	sort.Slice(result, func(i, j int) bool {
		if result[i].ServiceType() != result[j].ServiceType() {
			return result[i].ServiceType() < result[j].ServiceType()
		}
		return result[i].CreatedAt().After(result[j].CreatedAt())
	})
	return result, nil
}

func (r *OfferingRepository) Save(_ context.Context, o *offering.Offering) error {
	var err error
	r.store.run(r.locking, func() {
		if _, exists := r.store.offerings[o.ID()]; exists {
			err = domain.NewConflictError("offering already exists")
			return
		}
		r.store.offerings[o.ID()] = cloneOffering(o)
	})
	return err
}

func (r *OfferingRepository) Update(_ context.Context, o *offering.Offering) error {
	var err error
	r.store.run(r.locking, func() {
		current, ok := r.store.offerings[o.ID()]
		if !ok {
			err = domain.NewNotFoundError("Offering", o.ID().String())
			return
		}
		if current.Version() != o.Version()-1 {
			err = domain.NewConflictError("offering was modified by another transaction")
			return
		}
		r.store.offerings[o.ID()] = cloneOffering(o)
	})
	return err
}

func (r *OfferingRepository) Upsert(_ context.Context, o *offering.Offering) error {
	r.store.run(r.locking, func() {
		current, ok := r.store.offerings[o.ID()]
		if !ok {
			r.store.offerings[o.ID()] = cloneOffering(o)
			return
		}
		r.store.offerings[o.ID()] = offering.Reconstruct(
			o.ID(), current.ProviderID(), current.ServiceType(), o.Attributes(),
			current.Available(), current.Version()+1, current.CreatedAt(), o.UpdatedAt(),
		)
	})
	return nil
}

func (r *OfferingRepository) Delete(_ context.Context, id uuid.UUID) error {
	var err error
	r.store.run(r.locking, func() {
		if _, ok := r.store.offerings[id]; !ok {
			err = domain.NewNotFoundError("Offering", id.String())
			return
		}
		delete(r.store.offerings, id)
	})
	return err
}

func cloneOffering(o *offering.Offering) *offering.Offering {
	return offering.Reconstruct(
		o.ID(), o.ProviderID(), o.ServiceType(), o.Attributes(),
		o.Available(), o.Version(), o.CreatedAt(), o.UpdatedAt(),
	)
}

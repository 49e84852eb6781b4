// Package memory implements the domain repository ports in process memory.
// Stored entities are copied on the way in and out so callers never share
// state with the store.
package memory

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/viagens-moz/intercity/internal/domain/driver"
	"github.com/viagens-moz/intercity/internal/domain/parcel"
	"github.com/viagens-moz/intercity/internal/domain/trip"
)

// DriverRepository is an in-memory driver.Repository
type DriverRepository struct {
	mu      sync.RWMutex
	drivers map[uuid.UUID]*driver.Driver
	order   []uuid.UUID
}

// NewDriverRepository creates an empty driver store
func NewDriverRepository() *DriverRepository {
	return &DriverRepository{drivers: make(map[uuid.UUID]*driver.Driver)}
}

func (r *DriverRepository) Create(_ context.Context, d *driver.Driver) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.drivers[d.ID]; !ok {
		r.order = append(r.order, d.ID)
	}
	r.drivers[d.ID] = cloneDriver(d)
	return nil
}

func (r *DriverRepository) GetByID(_ context.Context, id uuid.UUID) (*driver.Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.drivers[id]
	if !ok {
		return nil, driver.ErrDriverNotFound
	}
	return cloneDriver(d), nil
}

func (r *DriverRepository) Update(_ context.Context, d *driver.Driver) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.drivers[d.ID]; !ok {
		return driver.ErrDriverNotFound
	}
	r.drivers[d.ID] = cloneDriver(d)
	return nil
}

func (r *DriverRepository) List(_ context.Context) ([]*driver.Driver, error) {
	return r.collect(func(*driver.Driver) bool { return true }), nil
}

func (r *DriverRepository) ListApproved(_ context.Context) ([]*driver.Driver, error) {
	return r.collect(func(d *driver.Driver) bool { return d.IsApproved }), nil
}

func (r *DriverRepository) collect(keep func(*driver.Driver) bool) []*driver.Driver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*driver.Driver, 0, len(r.order))
	for _, id := range r.order {
		if d := r.drivers[id]; keep(d) {
			out = append(out, cloneDriver(d))
		}
	}
	return out
}

func cloneDriver(d *driver.Driver) *driver.Driver {
	c := *d
	c.AvailableDates = slices.Clone(d.AvailableDates)
	c.DayRoutes = maps.Clone(d.DayRoutes)
	return &c
}

// TripRepository is an in-memory trip.Repository
type TripRepository struct {
	mu    sync.RWMutex
	trips map[uuid.UUID]*trip.Trip
	order []uuid.UUID
}

// NewTripRepository creates an empty trip store
func NewTripRepository() *TripRepository {
	return &TripRepository{trips: make(map[uuid.UUID]*trip.Trip)}
}

func (r *TripRepository) Create(_ context.Context, t *trip.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trips[t.ID]; !ok {
		r.order = append(r.order, t.ID)
	}
	r.trips[t.ID] = cloneTrip(t)
	return nil
}

func (r *TripRepository) GetByID(_ context.Context, id uuid.UUID) (*trip.Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.trips[id]
	if !ok {
		return nil, trip.ErrTripNotFound
	}
	return cloneTrip(t), nil
}

func (r *TripRepository) Update(_ context.Context, t *trip.Trip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trips[t.ID]; !ok {
		return trip.ErrTripNotFound
	}
	r.trips[t.ID] = cloneTrip(t)
	return nil
}

// ListByMonth matches on the travel date prefix
func (r *TripRepository) ListByMonth(_ context.Context, month string) ([]*trip.Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*trip.Trip, 0)
	for _, id := range r.order {
		if t := r.trips[id]; strings.HasPrefix(t.Date, month+"-") {
			out = append(out, cloneTrip(t))
		}
	}
	return out, nil
}

func cloneTrip(t *trip.Trip) *trip.Trip {
	c := *t
	if t.DriverID != nil {
		id := *t.DriverID
		c.DriverID = &id
	}
	return &c
}

// ParcelRepository is an in-memory parcel.Repository
type ParcelRepository struct {
	mu      sync.RWMutex
	parcels map[uuid.UUID]*parcel.Parcel
	order   []uuid.UUID
}

// NewParcelRepository creates an empty parcel store
func NewParcelRepository() *ParcelRepository {
	return &ParcelRepository{parcels: make(map[uuid.UUID]*parcel.Parcel)}
}

func (r *ParcelRepository) Create(_ context.Context, p *parcel.Parcel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.parcels[p.ID]; !ok {
		r.order = append(r.order, p.ID)
	}
	r.parcels[p.ID] = cloneParcel(p)
	return nil
}

func (r *ParcelRepository) GetByID(_ context.Context, id uuid.UUID) (*parcel.Parcel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.parcels[id]
	if !ok {
		return nil, parcel.ErrParcelNotFound
	}
	return cloneParcel(p), nil
}

func (r *ParcelRepository) Update(_ context.Context, p *parcel.Parcel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.parcels[p.ID]; !ok {
		return parcel.ErrParcelNotFound
	}
	r.parcels[p.ID] = cloneParcel(p)
	return nil
}

// ListByMonth matches on the UTC creation month
func (r *ParcelRepository) ListByMonth(_ context.Context, month string) ([]*parcel.Parcel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*parcel.Parcel, 0)
	for _, id := range r.order {
		if p := r.parcels[id]; p.CreatedAt.UTC().Format("2006-01") == month {
			out = append(out, cloneParcel(p))
		}
	}
	return out, nil
}

func cloneParcel(p *parcel.Parcel) *parcel.Parcel {
	c := *p
	if p.DriverID != nil {
		id := *p.DriverID
		c.DriverID = &id
	}
	return &c
}

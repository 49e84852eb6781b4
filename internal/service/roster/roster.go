// Package roster manages driver profiles and schedules, and serves the
// approved driver snapshot matching runs on.
package roster

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/viagens-moz/intercity/internal/domain/driver"
	"github.com/viagens-moz/intercity/internal/domain/route"
	"github.com/viagens-moz/intercity/pkg/cache"
	"github.com/viagens-moz/intercity/pkg/logger"
	"github.com/viagens-moz/intercity/pkg/websocket"
)

// Cache stores the approved roster snapshot. Get reports the generation it
// looked at, also on cache.ErrCacheMiss; Invalidate starts a new one.
type Cache interface {
	Get(ctx context.Context) ([]*driver.Driver, int64, error)
	Set(ctx context.Context, generation int64, drivers []*driver.Driver) error
	Invalidate(ctx context.Context) error
}

// Notifier pushes events to connected dashboards
type Notifier interface {
	Publish(eventType, entityID string, data interface{})
}

// RegisterInput holds the profile of a new driver
type RegisterInput struct {
	Name           string
	Email          string
	Phone          string
	VehicleNumber  string
	VehicleModel   string
	VehicleColor   string
	AvailableSeats int
}

// Service handles driver registration, schedules and the roster snapshot
type Service struct {
	repo     driver.Repository
	cache    Cache
	line     route.Line
	notifier Notifier
	logger   *logger.Logger
}

// NewService creates a new roster service. cache may be nil.
func NewService(repo driver.Repository, cache Cache, line route.Line, notifier Notifier, logger *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		line:     line,
		notifier: notifier,
		logger:   logger,
	}
}

// Register creates an unapproved driver
func (s *Service) Register(ctx context.Context, in RegisterInput) (*driver.Driver, error) {
	d := driver.New(in.Name, in.Email, in.Phone)
	d.VehicleNumber = in.VehicleNumber
	d.VehicleModel = in.VehicleModel
	d.VehicleColor = in.VehicleColor
	d.AvailableSeats = in.AvailableSeats
	if err := d.IsValid(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create driver: %w", err)
	}

	s.logger.Info("Driver registered",
		logger.String("driver_id", d.ID.String()),
		logger.String("name", d.Name),
	)
	return d, nil
}

// Get returns a driver by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*driver.Driver, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns every registered driver, approved or not
func (s *Service) List(ctx context.Context) ([]*driver.Driver, error) {
	return s.repo.List(ctx)
}

// SetDefaultRoute sets the route the driver runs on dates without a day route
func (s *Service) SetDefaultRoute(ctx context.Context, id uuid.UUID, seg route.Segment) (*driver.Driver, error) {
	if err := seg.Validate(s.line); err != nil {
		return nil, err
	}
	return s.update(ctx, id, "default_route", func(d *driver.Driver) error {
		d.SetDefaultRoute(seg.Start, seg.End)
		return nil
	})
}

// AddDate puts a date in the driver's agenda, optionally with the segment
// driven that day
func (s *Service) AddDate(ctx context.Context, id uuid.UUID, date string, seg *route.Segment) (*driver.Driver, error) {
	if seg != nil {
		if err := seg.Validate(s.line); err != nil {
			return nil, err
		}
	}
	return s.update(ctx, id, "add_date", func(d *driver.Driver) error {
		return d.AddDate(date, seg)
	})
}

// RemoveDate drops a date from the driver's agenda
func (s *Service) RemoveDate(ctx context.Context, id uuid.UUID, date string) (*driver.Driver, error) {
	if err := driver.ValidateDate(date); err != nil {
		return nil, err
	}
	return s.update(ctx, id, "remove_date", func(d *driver.Driver) error {
		d.RemoveDate(date)
		return nil
	})
}

// SetApproval lets the admin approve or suspend a driver
func (s *Service) SetApproval(ctx context.Context, id uuid.UUID, approved bool) (*driver.Driver, error) {
	return s.update(ctx, id, "approval", func(d *driver.Driver) error {
		d.SetApproval(approved)
		return nil
	})
}

// SetPriority lets the admin flag a driver to be listed first
func (s *Service) SetPriority(ctx context.Context, id uuid.UUID, priority bool) (*driver.Driver, error) {
	return s.update(ctx, id, "priority", func(d *driver.Driver) error {
		d.SetPriority(priority)
		return nil
	})
}

// Snapshot returns every approved driver with their schedule. The result is
// served from the cache when possible. A reload is cached under the
// generation seen before it started, so a change committed during the load
// leaves the stale copy unreachable.
func (s *Service) Snapshot(ctx context.Context) ([]*driver.Driver, error) {
	var (
		generation int64
		cacheable  bool
	)
	if s.cache != nil {
		drivers, gen, err := s.cache.Get(ctx)
		switch {
		case err == nil:
			return drivers, nil
		case errors.Is(err, cache.ErrCacheMiss):
			generation, cacheable = gen, true
		default:
			s.logger.Debug("Roster cache unavailable, loading from database", logger.Err(err))
		}
	}

	drivers, err := s.repo.ListApproved(ctx)
	if err != nil {
		return nil, fmt.Errorf("list approved drivers: %w", err)
	}

	if cacheable {
		if err := s.cache.Set(ctx, generation, drivers); err != nil {
			s.logger.Warn("Failed to cache roster", logger.Err(err))
		}
	}
	return drivers, nil
}

func (s *Service) update(ctx context.Context, id uuid.UUID, change string, apply func(d *driver.Driver) error) (*driver.Driver, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(d); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, d); err != nil {
		if errors.Is(err, driver.ErrDriverNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update driver: %w", err)
	}

	// Redis is a cache only, a missed bump leaves the roster stale until the TTL
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("Failed to invalidate roster cache", logger.Err(err))
		}
	}

	s.logger.Info("Driver updated",
		logger.String("driver_id", d.ID.String()),
		logger.String("change", change),
	)
	s.notifier.Publish(websocket.EventRosterUpdated, "", map[string]interface{}{
		"driver_id": d.ID.String(),
		"change":    change,
	})
	return d, nil
}

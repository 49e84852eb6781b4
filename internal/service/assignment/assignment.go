// Package assignment backs the admin dashboard: it lists the ranked drivers
// able to serve a trip or parcel, binds the chosen driver and confirms
// payments.
package assignment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/viagens-moz/intercity/internal/domain/driver"
	"github.com/viagens-moz/intercity/internal/domain/parcel"
	"github.com/viagens-moz/intercity/internal/domain/trip"
	"github.com/viagens-moz/intercity/internal/service/matching"
	"github.com/viagens-moz/intercity/pkg/logger"
	"github.com/viagens-moz/intercity/pkg/monitoring"
	"github.com/viagens-moz/intercity/pkg/websocket"
)

// Roster provides the approved driver snapshot
type Roster interface {
	Snapshot(ctx context.Context) ([]*driver.Driver, error)
}

// Notifier pushes events to dashboards and to individual users
type Notifier interface {
	Publish(eventType, entityID string, data interface{})
	SendToUser(userID string, message interface{})
}

// Service handles admin assignment actions
type Service struct {
	trips    trip.Repository
	parcels  parcel.Repository
	roster   Roster
	matcher  *matching.Matcher
	notifier Notifier
	monitor  *monitoring.NewRelicApp
	logger   *logger.Logger
}

// NewService creates a new assignment service
func NewService(
	trips trip.Repository,
	parcels parcel.Repository,
	roster Roster,
	matcher *matching.Matcher,
	notifier Notifier,
	monitor *monitoring.NewRelicApp,
	logger *logger.Logger,
) *Service {
	return &Service{
		trips:    trips,
		parcels:  parcels,
		roster:   roster,
		matcher:  matcher,
		notifier: notifier,
		monitor:  monitor,
		logger:   logger,
	}
}

// TripCandidates returns the drivers able to serve the trip, priority first
func (s *Service) TripCandidates(ctx context.Context, tripID uuid.UUID) ([]*driver.Driver, error) {
	t, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return s.tripCandidates(ctx, t)
}

// PackageCandidates returns the drivers able to carry the parcel, priority
// first
func (s *Service) PackageCandidates(ctx context.Context, parcelID uuid.UUID) ([]*driver.Driver, error) {
	p, err := s.parcels.GetByID(ctx, parcelID)
	if err != nil {
		return nil, err
	}
	return s.packageCandidates(ctx, p)
}

// AssignTrip binds a candidate driver to a paid, unassigned trip
func (s *Service) AssignTrip(ctx context.Context, tripID, driverID uuid.UUID) (*trip.Trip, error) {
	t, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !t.CanAssignDriver() {
		return nil, trip.ErrTripNotAssignable
	}

	candidates, err := s.tripCandidates(ctx, t)
	if err != nil {
		return nil, err
	}
	if !contains(candidates, driverID) {
		return nil, driver.ErrDriverNotEligible
	}

	if err := t.AssignDriver(driverID); err != nil {
		return nil, err
	}
	if err := s.trips.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update trip: %w", err)
	}

	s.logger.Info("Driver assigned to trip",
		logger.String("trip_id", t.ID.String()),
		logger.String("driver_id", driverID.String()),
		logger.String("date", t.Date),
	)
	s.monitor.RecordAssignment("trip", t.ID.String(), driverID.String())
	s.notifier.Publish(websocket.EventTripAssigned, t.ID.String(), t)
	s.notifier.SendToUser(driverID.String(), websocket.Message{Type: websocket.EventTripAssigned, Data: t})
	return t, nil
}

// MarkNegotiating flags that the parcel price is being agreed with drivers
func (s *Service) MarkNegotiating(ctx context.Context, parcelID uuid.UUID) (*parcel.Parcel, error) {
	p, err := s.parcels.GetByID(ctx, parcelID)
	if err != nil {
		return nil, err
	}
	if err := p.StartNegotiation(); err != nil {
		return nil, err
	}
	if err := s.parcels.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update parcel: %w", err)
	}
	s.notifier.Publish(websocket.EventParcelStatus, p.ID.String(), p)
	return p, nil
}

// QuotePackage binds a candidate driver and the negotiated price
func (s *Service) QuotePackage(ctx context.Context, parcelID uuid.UUID, price int, driverID uuid.UUID) (*parcel.Parcel, error) {
	p, err := s.parcels.GetByID(ctx, parcelID)
	if err != nil {
		return nil, err
	}
	if !p.IsQuotable() {
		return nil, parcel.ErrInvalidStatus
	}
	if price <= 0 {
		return nil, parcel.ErrInvalidPrice
	}

	candidates, err := s.packageCandidates(ctx, p)
	if err != nil {
		return nil, err
	}
	if !contains(candidates, driverID) {
		return nil, driver.ErrDriverNotEligible
	}

	if err := p.Quote(price, driverID); err != nil {
		return nil, err
	}
	if err := s.parcels.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update parcel: %w", err)
	}

	s.logger.Info("Parcel quoted",
		logger.String("parcel_id", p.ID.String()),
		logger.String("driver_id", driverID.String()),
		logger.Int("price", price),
	)
	s.monitor.RecordAssignment("parcel", p.ID.String(), driverID.String())
	s.notifier.Publish(websocket.EventParcelQuoted, p.ID.String(), p)
	s.notifier.SendToUser(driverID.String(), websocket.Message{Type: websocket.EventParcelQuoted, Data: p})
	return p, nil
}

// ConfirmTripPayment records that the passenger's mobile money transfer
// arrived
func (s *Service) ConfirmTripPayment(ctx context.Context, tripID uuid.UUID) (*trip.Trip, error) {
	t, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if err := t.ConfirmPayment(); err != nil {
		return nil, err
	}
	if err := s.trips.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update trip: %w", err)
	}

	s.logger.Info("Trip payment confirmed",
		logger.String("trip_id", t.ID.String()),
		logger.String("method", string(t.PaymentMethod)),
		logger.Int("amount", t.Price),
	)
	s.monitor.RecordPaymentConfirmed("trip", t.Price)
	s.notifier.Publish(websocket.EventPaymentConfirmed, t.ID.String(), t)
	return t, nil
}

// ConfirmPackagePayment records payment of a quoted parcel
func (s *Service) ConfirmPackagePayment(ctx context.Context, parcelID uuid.UUID) (*parcel.Parcel, error) {
	p, err := s.parcels.GetByID(ctx, parcelID)
	if err != nil {
		return nil, err
	}
	if err := p.ConfirmPayment(); err != nil {
		return nil, err
	}
	if err := s.parcels.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update parcel: %w", err)
	}

	s.logger.Info("Parcel payment confirmed",
		logger.String("parcel_id", p.ID.String()),
		logger.Int("amount", p.Price),
	)
	s.monitor.RecordPaymentConfirmed("parcel", p.Price)
	s.notifier.Publish(websocket.EventPaymentConfirmed, p.ID.String(), p)
	return p, nil
}

func (s *Service) tripCandidates(ctx context.Context, t *trip.Trip) ([]*driver.Driver, error) {
	drivers, err := s.roster.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}

	txn := s.monitor.StartTransaction("matching/trip")
	defer txn.End()

	start := time.Now()
	matched := s.matcher.MatchForTrip(drivers, matching.TripRequest{
		Origin:      t.Origin,
		Destination: t.Destination,
		Date:        t.Date,
	})
	ranked := matching.Rank(matched)
	s.record(txn, "trip", start, len(drivers), len(ranked))
	return ranked, nil
}

func (s *Service) packageCandidates(ctx context.Context, p *parcel.Parcel) ([]*driver.Driver, error) {
	drivers, err := s.roster.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}

	txn := s.monitor.StartTransaction("matching/parcel")
	defer txn.End()

	start := time.Now()
	matched := s.matcher.MatchForPackage(drivers, matching.PackageRequest{
		Origin:      p.Origin,
		Destination: p.Destination,
	})
	ranked := matching.Rank(matched)
	s.record(txn, "parcel", start, len(drivers), len(ranked))
	return ranked, nil
}

func (s *Service) record(txn *newrelic.Transaction, kind string, start time.Time, roster, candidates int) {
	elapsed := time.Since(start)
	txn.AddAttribute("roster", roster)
	txn.AddAttribute("candidates", candidates)
	s.monitor.RecordMatchingLatency(kind, float64(elapsed.Microseconds())/1000)
	s.monitor.RecordCandidates(kind, candidates)
	s.logger.Debug("Matching completed",
		logger.String("kind", kind),
		logger.Int("roster", roster),
		logger.Int("candidates", candidates),
		logger.Duration("elapsed", elapsed),
	)
}

func contains(drivers []*driver.Driver, id uuid.UUID) bool {
	for _, d := range drivers {
		if d.ID == id {
			return true
		}
	}
	return false
}

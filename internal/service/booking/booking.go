// Package booking takes passenger trip bookings and parcel requests and
// drives them through the passenger and driver side of their lifecycle.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/viagens-moz/intercity/internal/domain/driver"
	"github.com/viagens-moz/intercity/internal/domain/parcel"
	"github.com/viagens-moz/intercity/internal/domain/route"
	"github.com/viagens-moz/intercity/internal/domain/trip"
	"github.com/viagens-moz/intercity/internal/repository/rediscache"
	"github.com/viagens-moz/intercity/internal/service/pricing"
	"github.com/viagens-moz/intercity/pkg/logger"
	"github.com/viagens-moz/intercity/pkg/monitoring"
	"github.com/viagens-moz/intercity/pkg/websocket"
)

var (
	ErrInvalidRoute     = errors.New("origin and destination must be distinct stops on the line")
	ErrFareUnavailable  = errors.New("no fare for the requested route")
	ErrMissingContact   = errors.New("name and phone are required")
	ErrDuplicateRequest = errors.New("a request with this idempotency key is still being processed")
)

// Idempotency remembers the entity created for a client supplied key
type Idempotency interface {
	Begin(ctx context.Context, key string) (result string, claimed bool, err error)
	Complete(ctx context.Context, key, result string) error
	Abort(ctx context.Context, key string) error
}

// Notifier pushes events to connected dashboards
type Notifier interface {
	Publish(eventType, entityID string, data interface{})
}

// TripInput is a passenger's booking form
type TripInput struct {
	PassengerID    string
	PassengerName  string
	PassengerPhone string
	Origin         route.Location
	Destination    route.Location
	Date           string
	Seats          int
	PaymentMethod  trip.PaymentMethod
	IdempotencyKey string
}

// ParcelInput is a sender's delivery request
type ParcelInput struct {
	SenderID       string
	SenderName     string
	SenderPhone    string
	Origin         route.Location
	Destination    route.Location
	Size           parcel.Size
	Type           string
	Description    string
	IdempotencyKey string
}

// Service handles bookings
type Service struct {
	trips    trip.Repository
	parcels  parcel.Repository
	pricing  *pricing.Service
	idem     Idempotency
	notifier Notifier
	monitor  *monitoring.NewRelicApp
	logger   *logger.Logger
}

// NewService creates a new booking service. idem may be nil to disable
// deduplication.
func NewService(
	trips trip.Repository,
	parcels parcel.Repository,
	pricing *pricing.Service,
	idem Idempotency,
	notifier Notifier,
	monitor *monitoring.NewRelicApp,
	logger *logger.Logger,
) *Service {
	return &Service{
		trips:    trips,
		parcels:  parcels,
		pricing:  pricing,
		idem:     idem,
		notifier: notifier,
		monitor:  monitor,
		logger:   logger,
	}
}

// BookTrip prices and stores a seat booking. When the idempotency key was
// already used the original trip is returned with replayed set.
func (s *Service) BookTrip(ctx context.Context, in TripInput) (t *trip.Trip, replayed bool, err error) {
	if strings.TrimSpace(in.PassengerName) == "" || strings.TrimSpace(in.PassengerPhone) == "" {
		return nil, false, ErrMissingContact
	}
	if err := driver.ValidateDate(in.Date); err != nil {
		return nil, false, err
	}
	if !in.PaymentMethod.IsValid() {
		return nil, false, trip.ErrInvalidPayment
	}
	_, price, err := s.QuoteTrip(in.Origin, in.Destination, in.Seats)
	if err != nil {
		return nil, false, err
	}

	existing, claimed, err := s.claim(ctx, in.IdempotencyKey)
	if err != nil {
		return nil, false, err
	}
	if existing != uuid.Nil {
		t, err := s.trips.GetByID(ctx, existing)
		if err != nil {
			return nil, false, fmt.Errorf("load replayed trip: %w", err)
		}
		return t, true, nil
	}

	now := time.Now().UTC()
	t = &trip.Trip{
		ID:             uuid.New(),
		PassengerID:    in.PassengerID,
		PassengerName:  in.PassengerName,
		PassengerPhone: in.PassengerPhone,
		Origin:         in.Origin,
		Destination:    in.Destination,
		Date:           in.Date,
		Seats:          in.Seats,
		Price:          price,
		Status:         trip.StatusPending,
		PaymentMethod:  in.PaymentMethod,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.trips.Create(ctx, t); err != nil {
		s.release(ctx, in.IdempotencyKey, claimed)
		return nil, false, fmt.Errorf("create trip: %w", err)
	}
	s.remember(ctx, in.IdempotencyKey, claimed, t.ID)

	s.logger.Info("Trip booked",
		logger.String("trip_id", t.ID.String()),
		logger.String("origin", string(t.Origin)),
		logger.String("destination", string(t.Destination)),
		logger.String("date", t.Date),
		logger.Int("seats", t.Seats),
		logger.Int("price", t.Price),
	)
	s.monitor.RecordTripBooked(string(t.Origin), string(t.Destination), t.Seats, t.Price)
	s.notifier.Publish(websocket.EventTripBooked, t.ID.String(), t)
	return t, false, nil
}

// RequestParcel stores a parcel awaiting a quote
func (s *Service) RequestParcel(ctx context.Context, in ParcelInput) (p *parcel.Parcel, replayed bool, err error) {
	if strings.TrimSpace(in.SenderName) == "" || strings.TrimSpace(in.SenderPhone) == "" {
		return nil, false, ErrMissingContact
	}
	if err := s.checkRoute(in.Origin, in.Destination); err != nil {
		return nil, false, err
	}
	if !in.Size.IsValid() {
		return nil, false, parcel.ErrInvalidSize
	}

	existing, claimed, err := s.claim(ctx, in.IdempotencyKey)
	if err != nil {
		return nil, false, err
	}
	if existing != uuid.Nil {
		p, err := s.parcels.GetByID(ctx, existing)
		if err != nil {
			return nil, false, fmt.Errorf("load replayed parcel: %w", err)
		}
		return p, true, nil
	}

	now := time.Now().UTC()
	p = &parcel.Parcel{
		ID:          uuid.New(),
		SenderID:    in.SenderID,
		SenderName:  in.SenderName,
		SenderPhone: in.SenderPhone,
		Origin:      in.Origin,
		Destination: in.Destination,
		Size:        in.Size,
		Type:        in.Type,
		Description: in.Description,
		Status:      parcel.StatusRequested,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.parcels.Create(ctx, p); err != nil {
		s.release(ctx, in.IdempotencyKey, claimed)
		return nil, false, fmt.Errorf("create parcel: %w", err)
	}
	s.remember(ctx, in.IdempotencyKey, claimed, p.ID)

	s.logger.Info("Parcel requested",
		logger.String("parcel_id", p.ID.String()),
		logger.String("origin", string(p.Origin)),
		logger.String("destination", string(p.Destination)),
		logger.String("size", string(p.Size)),
	)
	s.monitor.RecordParcelRequested(string(p.Origin), string(p.Destination), string(p.Size))
	s.notifier.Publish(websocket.EventParcelRequested, p.ID.String(), p)
	return p, false, nil
}

// GetTrip returns a trip by ID
func (s *Service) GetTrip(ctx context.Context, id uuid.UUID) (*trip.Trip, error) {
	return s.trips.GetByID(ctx, id)
}

// GetParcel returns a parcel by ID
func (s *Service) GetParcel(ctx context.Context, id uuid.UUID) (*parcel.Parcel, error) {
	return s.parcels.GetByID(ctx, id)
}

// CompleteTrip is called by the driver at the destination
func (s *Service) CompleteTrip(ctx context.Context, id uuid.UUID) (*trip.Trip, error) {
	return s.updateTrip(ctx, id, websocket.EventTripCompleted, (*trip.Trip).Complete)
}

// CancelTrip cancels a trip that has no driver yet
func (s *Service) CancelTrip(ctx context.Context, id uuid.UUID) (*trip.Trip, error) {
	return s.updateTrip(ctx, id, websocket.EventTripCancelled, (*trip.Trip).Cancel)
}

// DispatchParcel is called by the driver on pickup
func (s *Service) DispatchParcel(ctx context.Context, id uuid.UUID) (*parcel.Parcel, error) {
	return s.updateParcel(ctx, id, (*parcel.Parcel).Dispatch)
}

// DeliverParcel is called by the driver on delivery
func (s *Service) DeliverParcel(ctx context.Context, id uuid.UUID) (*parcel.Parcel, error) {
	return s.updateParcel(ctx, id, (*parcel.Parcel).Deliver)
}

func (s *Service) updateTrip(ctx context.Context, id uuid.UUID, event string, transition func(*trip.Trip) error) (*trip.Trip, error) {
	t, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := transition(t); err != nil {
		return nil, err
	}
	if err := s.trips.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("update trip: %w", err)
	}
	s.logger.Info("Trip status changed",
		logger.String("trip_id", t.ID.String()),
		logger.String("status", string(t.Status)),
	)
	s.notifier.Publish(event, t.ID.String(), t)
	return t, nil
}

func (s *Service) updateParcel(ctx context.Context, id uuid.UUID, transition func(*parcel.Parcel) error) (*parcel.Parcel, error) {
	p, err := s.parcels.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := transition(p); err != nil {
		return nil, err
	}
	if err := s.parcels.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update parcel: %w", err)
	}
	s.logger.Info("Parcel status changed",
		logger.String("parcel_id", p.ID.String()),
		logger.String("status", string(p.Status)),
	)
	s.notifier.Publish(websocket.EventParcelStatus, p.ID.String(), p)
	return p, nil
}

// QuoteTrip returns the per-seat fare and the total for a seat booking
func (s *Service) QuoteTrip(origin, destination route.Location, seats int) (perSeat, total int, err error) {
	if err := s.checkRoute(origin, destination); err != nil {
		return 0, 0, err
	}
	if seats < 1 || seats > trip.MaxSeats {
		return 0, 0, trip.ErrInvalidSeats
	}
	perSeat, ok := s.pricing.Price(origin, destination)
	if !ok {
		return 0, 0, ErrFareUnavailable
	}
	total, ok = s.pricing.Quote(origin, destination, seats)
	if !ok {
		return 0, 0, ErrFareUnavailable
	}
	return perSeat, total, nil
}

// checkRoute rejects unknown stops and zero-length requests, which no
// driver can ever cover
func (s *Service) checkRoute(origin, destination route.Location) error {
	line := s.pricing.Line()
	if !line.Contains(origin) || !line.Contains(destination) || origin == destination {
		return ErrInvalidRoute
	}
	return nil
}

// claim reserves the idempotency key. It returns the ID stored by an
// earlier completed request, or claimed when this request owns the key.
// Redis failures disable deduplication instead of failing the booking.
func (s *Service) claim(ctx context.Context, key string) (existing uuid.UUID, claimed bool, err error) {
	if key == "" || s.idem == nil {
		return uuid.Nil, false, nil
	}
	result, claimed, err := s.idem.Begin(ctx, key)
	if errors.Is(err, rediscache.ErrInFlight) {
		return uuid.Nil, false, ErrDuplicateRequest
	}
	if err != nil {
		s.logger.Warn("Idempotency store unavailable", logger.Err(err))
		return uuid.Nil, false, nil
	}
	if claimed {
		return uuid.Nil, true, nil
	}
	id, err := uuid.Parse(result)
	if err != nil {
		s.logger.Warn("Corrupt idempotency record", logger.String("key", key), logger.Err(err))
		return uuid.Nil, false, nil
	}
	return id, false, nil
}

func (s *Service) remember(ctx context.Context, key string, claimed bool, id uuid.UUID) {
	if !claimed {
		return
	}
	if err := s.idem.Complete(ctx, key, id.String()); err != nil {
		s.logger.Warn("Failed to store idempotency result", logger.Err(err))
	}
}

func (s *Service) release(ctx context.Context, key string, claimed bool) {
	if !claimed {
		return
	}
	if err := s.idem.Abort(ctx, key); err != nil {
		s.logger.Warn("Failed to release idempotency key", logger.Err(err))
	}
}

package booking

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viagens-moz/intercity/internal/domain/driver"
	"github.com/viagens-moz/intercity/internal/domain/parcel"
	"github.com/viagens-moz/intercity/internal/domain/route"
	"github.com/viagens-moz/intercity/internal/domain/trip"
	"github.com/viagens-moz/intercity/internal/repository/memory"
	"github.com/viagens-moz/intercity/internal/repository/rediscache"
	"github.com/viagens-moz/intercity/internal/service/pricing"
	"github.com/viagens-moz/intercity/pkg/logger"
	"github.com/viagens-moz/intercity/pkg/monitoring"
	"github.com/viagens-moz/intercity/pkg/websocket"
)

type fakeIdempotency struct {
	mu      sync.Mutex
	results map[string]string
	down    bool
}

func newFakeIdempotency() *fakeIdempotency {
	return &fakeIdempotency{results: make(map[string]string)}
}

func (f *fakeIdempotency) Begin(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return "", false, errors.New("redis down")
	}
	result, ok := f.results[key]
	if !ok {
		f.results[key] = ""
		return "", true, nil
	}
	if result == "" {
		return "", false, rediscache.ErrInFlight
	}
	return result, false, nil
}

func (f *fakeIdempotency) Complete(_ context.Context, key, result string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[key] = result
	return nil
}

func (f *fakeIdempotency) Abort(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.results, key)
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Publish(eventType, _ string, _ interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, eventType)
}

type fixture struct {
	svc      *Service
	trips    *memory.TripRepository
	parcels  *memory.ParcelRepository
	idem     *fakeIdempotency
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		trips:    memory.NewTripRepository(),
		parcels:  memory.NewParcelRepository(),
		idem:     newFakeIdempotency(),
		notifier: &recordingNotifier{},
	}
	prices := pricing.NewService(route.DefaultLine(), pricing.DefaultFareTable(), pricing.DefaultConfig())
	f.svc = NewService(f.trips, f.parcels, prices, f.idem, f.notifier, monitoring.Disabled(), logger.NewNop())
	return f
}

func validTrip() TripInput {
	return TripInput{
		PassengerName:  "Ana",
		PassengerPhone: "841234567",
		Origin:         "MAPUTO",
		Destination:    "XAI-XAI",
		Date:           "2024-06-01",
		Seats:          2,
		PaymentMethod:  trip.PaymentMPesa,
	}
}

func TestBookTrip_PricesPerSeat(t *testing.T) {
	f := newFixture(t)

	booked, replayed, err := f.svc.BookTrip(context.Background(), validTrip())
	require.NoError(t, err)

	assert.False(t, replayed)
	assert.Equal(t, 1000, booked.Price)
	assert.Equal(t, trip.StatusPending, booked.Status)
	assert.False(t, booked.PaymentConfirmed)
	assert.Equal(t, []string{websocket.EventTripBooked}, f.notifier.events)

	stored, err := f.trips.GetByID(context.Background(), booked.ID)
	require.NoError(t, err)
	assert.Equal(t, booked.Price, stored.Price)
}

func TestBookTrip_InterpolatedFare(t *testing.T) {
	f := newFixture(t)
	in := validTrip()
	in.Origin, in.Destination, in.Seats = "XAI-XAI", "MAXIXE", 1

	booked, _, err := f.svc.BookTrip(context.Background(), in)
	require.NoError(t, err)
	// six stops apart, no explicit fare
	assert.Equal(t, 300+75*6, booked.Price)
}

func TestBookTrip_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(in *TripInput)
		expected error
	}{
		{name: "Missing name", mutate: func(in *TripInput) { in.PassengerName = " " }, expected: ErrMissingContact},
		{name: "Same stop", mutate: func(in *TripInput) { in.Destination = "MAPUTO" }, expected: ErrInvalidRoute},
		{name: "Unknown stop", mutate: func(in *TripInput) { in.Destination = "BEIRA" }, expected: ErrInvalidRoute},
		{name: "Bad date", mutate: func(in *TripInput) { in.Date = "01-06-2024" }, expected: driver.ErrInvalidDate},
		{name: "No seats", mutate: func(in *TripInput) { in.Seats = 0 }, expected: trip.ErrInvalidSeats},
		{name: "More seats than a vehicle holds", mutate: func(in *TripInput) { in.Seats = trip.MaxSeats + 1 }, expected: trip.ErrInvalidSeats},
		{name: "Overflowing seat count", mutate: func(in *TripInput) { in.Seats = math.MaxInt/1200 + 1 }, expected: trip.ErrInvalidSeats},
		{name: "Unknown wallet", mutate: func(in *TripInput) { in.PaymentMethod = "CASH" }, expected: trip.ErrInvalidPayment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			in := validTrip()
			tt.mutate(&in)

			_, _, err := f.svc.BookTrip(context.Background(), in)
			assert.ErrorIs(t, err, tt.expected)
			assert.Empty(t, f.notifier.events)
		})
	}
}

func TestQuoteTrip(t *testing.T) {
	f := newFixture(t)

	perSeat, total, err := f.svc.QuoteTrip("MAPUTO", "XAI-XAI", 3)
	require.NoError(t, err)
	assert.Equal(t, 500, perSeat)
	assert.Equal(t, 1500, total)

	_, _, err = f.svc.QuoteTrip("MAPUTO", "VILANCULOS", math.MaxInt/1200+1)
	assert.ErrorIs(t, err, trip.ErrInvalidSeats)

	_, _, err = f.svc.QuoteTrip("MACIA", "MACIA", 1)
	assert.ErrorIs(t, err, ErrInvalidRoute)
}

func TestBookTrip_IdempotencyKeyReplaysOriginal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := validTrip()
	in.IdempotencyKey = "key-1"

	first, replayed, err := f.svc.BookTrip(ctx, in)
	require.NoError(t, err)
	assert.False(t, replayed)

	second, replayed, err := f.svc.BookTrip(ctx, in)
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.notifier.events, 1)
}

func TestBookTrip_InFlightKeyIsRejected(t *testing.T) {
	f := newFixture(t)
	_, claimed, err := f.idem.Begin(context.Background(), "key-1")
	require.NoError(t, err)
	require.True(t, claimed)

	in := validTrip()
	in.IdempotencyKey = "key-1"
	_, _, err = f.svc.BookTrip(context.Background(), in)
	assert.ErrorIs(t, err, ErrDuplicateRequest)
}

func TestBookTrip_IdempotencyStoreDownStillBooks(t *testing.T) {
	f := newFixture(t)
	f.idem.down = true
	in := validTrip()
	in.IdempotencyKey = "key-1"

	_, _, err := f.svc.BookTrip(context.Background(), in)
	assert.NoError(t, err)
}

func TestTripLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booked, _, err := f.svc.BookTrip(ctx, validTrip())
	require.NoError(t, err)

	_, err = f.svc.CompleteTrip(ctx, booked.ID)
	assert.ErrorIs(t, err, trip.ErrInvalidStatus)

	cancelled, err := f.svc.CancelTrip(ctx, booked.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.StatusCancelled, cancelled.Status)

	stored, err := f.svc.GetTrip(ctx, booked.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.StatusCancelled, stored.Status)

	_, err = f.svc.CancelTrip(ctx, uuid.New())
	assert.ErrorIs(t, err, trip.ErrTripNotFound)
}

func TestRequestParcel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, _, err := f.svc.RequestParcel(ctx, ParcelInput{
		SenderName:  "Rui",
		SenderPhone: "84",
		Origin:      "MAPUTO",
		Destination: "XAI-XAI",
		Size:        parcel.SizeSmall,
		Type:        "Documentos",
	})
	require.NoError(t, err)
	assert.Equal(t, parcel.StatusRequested, p.Status)
	assert.Zero(t, p.Price)
	assert.Nil(t, p.DriverID)
	assert.Equal(t, []string{websocket.EventParcelRequested}, f.notifier.events)

	_, _, err = f.svc.RequestParcel(ctx, ParcelInput{SenderName: "Rui", SenderPhone: "84", Origin: "MAPUTO", Destination: "XAI-XAI", Size: "HUGE"})
	assert.ErrorIs(t, err, parcel.ErrInvalidSize)

	_, _, err = f.svc.RequestParcel(ctx, ParcelInput{SenderName: "Rui", SenderPhone: "84", Origin: "MACIA", Destination: "MACIA", Size: parcel.SizeLarge})
	assert.ErrorIs(t, err, ErrInvalidRoute)
}

func TestParcelDelivery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := &parcel.Parcel{ID: uuid.New(), Status: parcel.StatusPaid}
	require.NoError(t, f.parcels.Create(ctx, p))

	_, err := f.svc.DeliverParcel(ctx, p.ID)
	assert.ErrorIs(t, err, parcel.ErrInvalidStatus)

	dispatched, err := f.svc.DispatchParcel(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, parcel.StatusInTransit, dispatched.Status)

	delivered, err := f.svc.DeliverParcel(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, parcel.StatusDelivered, delivered.Status)

	got, err := f.svc.GetParcel(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, parcel.StatusDelivered, got.Status)
}

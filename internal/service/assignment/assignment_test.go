package assignment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viagens-moz/intercity/internal/domain/driver"
	"github.com/viagens-moz/intercity/internal/domain/parcel"
	"github.com/viagens-moz/intercity/internal/domain/route"
	"github.com/viagens-moz/intercity/internal/domain/trip"
	"github.com/viagens-moz/intercity/internal/repository/memory"
	"github.com/viagens-moz/intercity/internal/service/matching"
	"github.com/viagens-moz/intercity/pkg/logger"
	"github.com/viagens-moz/intercity/pkg/monitoring"
	"github.com/viagens-moz/intercity/pkg/websocket"
)

type staticRoster struct {
	drivers []*driver.Driver
	err     error
}

func (r *staticRoster) Snapshot(context.Context) ([]*driver.Driver, error) {
	return r.drivers, r.err
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
	direct map[string]int
}

func (n *recordingNotifier) Publish(eventType, _ string, _ interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, eventType)
}

func (n *recordingNotifier) SendToUser(userID string, _ interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.direct == nil {
		n.direct = make(map[string]int)
	}
	n.direct[userID]++
}

type fixture struct {
	svc      *Service
	trips    *memory.TripRepository
	parcels  *memory.ParcelRepository
	roster   *staticRoster
	notifier *recordingNotifier
}

func newFixture(t *testing.T, drivers ...*driver.Driver) *fixture {
	t.Helper()
	f := &fixture{
		trips:    memory.NewTripRepository(),
		parcels:  memory.NewParcelRepository(),
		roster:   &staticRoster{drivers: drivers},
		notifier: &recordingNotifier{},
	}
	f.svc = NewService(f.trips, f.parcels, f.roster, matching.NewMatcher(route.DefaultLine()),
		f.notifier, monitoring.Disabled(), logger.NewNop())
	return f
}

func newDriver(t *testing.T, name string, priority bool, date string, start, end route.Location) *driver.Driver {
	t.Helper()
	d := driver.New(name, "", "84")
	d.SetApproval(true)
	d.SetPriority(priority)
	require.NoError(t, d.AddDate(date, &route.Segment{Start: start, End: end}))
	return d
}

func (f *fixture) paidTrip(t *testing.T, origin, destination route.Location, date string) *trip.Trip {
	t.Helper()
	now := time.Now().UTC()
	tr := &trip.Trip{
		ID: uuid.New(), Origin: origin, Destination: destination, Date: date, Seats: 1, Price: 500,
		Status: trip.StatusPaid, PaymentConfirmed: true, PaymentMethod: trip.PaymentEMola,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, f.trips.Create(context.Background(), tr))
	return tr
}

func (f *fixture) requestedParcel(t *testing.T, origin, destination route.Location) *parcel.Parcel {
	t.Helper()
	p := &parcel.Parcel{ID: uuid.New(), Origin: origin, Destination: destination, Size: parcel.SizeSmall, Status: parcel.StatusRequested}
	require.NoError(t, f.parcels.Create(context.Background(), p))
	return p
}

func names(drivers []*driver.Driver) []string {
	out := make([]string, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, d.Name)
	}
	return out
}

func TestTripCandidates_RankedPriorityFirst(t *testing.T) {
	a := newDriver(t, "A", false, "2024-06-01", "MAPUTO", "VILANCULOS")
	b := newDriver(t, "B", true, "2024-06-01", "MAPUTO", "MAXIXE")
	c := newDriver(t, "C", true, "2024-06-01", "VILANCULOS", "MAPUTO") // wrong direction
	d := newDriver(t, "D", true, "2024-06-02", "MAPUTO", "VILANCULOS") // wrong date
	f := newFixture(t, a, b, c, d)
	tr := f.paidTrip(t, "MACIA", "INHARRIME", "2024-06-01")

	candidates, err := f.svc.TripCandidates(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, names(candidates))
}

func TestPackageCandidates_IgnoreDate(t *testing.T) {
	a := newDriver(t, "A", false, "2024-06-01", "MAXIXE", "MAPUTO")
	b := newDriver(t, "B", false, "2024-07-01", "MAPUTO", "MAXIXE")
	require.NoError(t, b.AddDate("2024-07-09", &route.Segment{Start: "VILANCULOS", End: "XAI-XAI"}))
	f := newFixture(t, a, b)
	p := f.requestedParcel(t, "MAXIXE", "XAI-XAI")

	candidates, err := f.svc.PackageCandidates(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, names(candidates))
}

func TestCandidates_Errors(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.TripCandidates(context.Background(), uuid.New())
	assert.ErrorIs(t, err, trip.ErrTripNotFound)

	_, err = f.svc.PackageCandidates(context.Background(), uuid.New())
	assert.ErrorIs(t, err, parcel.ErrParcelNotFound)

	boom := errors.New("boom")
	f.roster.err = boom
	tr := f.paidTrip(t, "MAPUTO", "MACIA", "2024-06-01")
	_, err = f.svc.TripCandidates(context.Background(), tr.ID)
	assert.ErrorIs(t, err, boom)
}

func TestAssignTrip(t *testing.T) {
	a := newDriver(t, "A", false, "2024-06-01", "MAPUTO", "VILANCULOS")
	far := newDriver(t, "Far", false, "2024-06-01", "MAXIXE", "VILANCULOS")
	f := newFixture(t, a, far)
	ctx := context.Background()
	tr := f.paidTrip(t, "MAPUTO", "XAI-XAI", "2024-06-01")

	_, err := f.svc.AssignTrip(ctx, tr.ID, far.ID)
	assert.ErrorIs(t, err, driver.ErrDriverNotEligible)

	assigned, err := f.svc.AssignTrip(ctx, tr.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.StatusAssigned, assigned.Status)
	require.NotNil(t, assigned.DriverID)
	assert.Equal(t, a.ID, *assigned.DriverID)

	stored, err := f.trips.GetByID(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.StatusAssigned, stored.Status)
	assert.Equal(t, []string{websocket.EventTripAssigned}, f.notifier.events)
	assert.Equal(t, 1, f.notifier.direct[a.ID.String()])

	// a second assignment is refused
	_, err = f.svc.AssignTrip(ctx, tr.ID, a.ID)
	assert.ErrorIs(t, err, trip.ErrTripNotAssignable)
}

func TestAssignTrip_RequiresPayment(t *testing.T) {
	a := newDriver(t, "A", false, "2024-06-01", "MAPUTO", "VILANCULOS")
	f := newFixture(t, a)
	ctx := context.Background()

	tr := &trip.Trip{ID: uuid.New(), Origin: "MAPUTO", Destination: "MACIA", Date: "2024-06-01", Seats: 1, Status: trip.StatusPending}
	require.NoError(t, f.trips.Create(ctx, tr))

	_, err := f.svc.AssignTrip(ctx, tr.ID, a.ID)
	assert.ErrorIs(t, err, trip.ErrTripNotAssignable)

	paid, err := f.svc.ConfirmTripPayment(ctx, tr.ID)
	require.NoError(t, err)
	assert.True(t, paid.PaymentConfirmed)

	_, err = f.svc.AssignTrip(ctx, tr.ID, a.ID)
	assert.NoError(t, err)

	_, err = f.svc.ConfirmTripPayment(ctx, tr.ID)
	assert.ErrorIs(t, err, trip.ErrInvalidStatus)
}

func TestQuotePackage(t *testing.T) {
	a := newDriver(t, "A", false, "2024-06-01", "MAPUTO", "VILANCULOS")
	south := newDriver(t, "South", false, "2024-06-01", "VILANCULOS", "MAPUTO")
	f := newFixture(t, a, south)
	ctx := context.Background()
	p := f.requestedParcel(t, "MACIA", "MAXIXE")

	_, err := f.svc.QuotePackage(ctx, p.ID, 0, a.ID)
	assert.ErrorIs(t, err, parcel.ErrInvalidPrice)

	_, err = f.svc.QuotePackage(ctx, p.ID, 350, south.ID)
	assert.ErrorIs(t, err, driver.ErrDriverNotEligible)

	negotiating, err := f.svc.MarkNegotiating(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, parcel.StatusNegotiating, negotiating.Status)

	quoted, err := f.svc.QuotePackage(ctx, p.ID, 350, a.ID)
	require.NoError(t, err)
	assert.Equal(t, parcel.StatusQuoted, quoted.Status)
	assert.Equal(t, 350, quoted.Price)

	_, err = f.svc.QuotePackage(ctx, p.ID, 400, a.ID)
	assert.ErrorIs(t, err, parcel.ErrInvalidStatus)

	paid, err := f.svc.ConfirmPackagePayment(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, parcel.StatusPaid, paid.Status)

	assert.Equal(t, []string{
		websocket.EventParcelStatus,
		websocket.EventParcelQuoted,
		websocket.EventPaymentConfirmed,
	}, f.notifier.events)
}

package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viagens-moz/intercity/internal/domain/driver"
	"github.com/viagens-moz/intercity/internal/domain/parcel"
	"github.com/viagens-moz/intercity/internal/domain/route"
	"github.com/viagens-moz/intercity/internal/domain/trip"
	"github.com/viagens-moz/intercity/pkg/database"
)

func TestCheckMonth(t *testing.T) {
	tests := []struct {
		month string
		valid bool
	}{
		{month: "2024-06", valid: true},
		{month: "2024-12", valid: true},
		{month: "2024-13", valid: false},
		{month: "2024-6", valid: false},
		{month: "2024-06-01", valid: false},
		{month: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.month, func(t *testing.T) {
			if tt.valid {
				assert.NoError(t, checkMonth(tt.month))
			} else {
				assert.ErrorIs(t, checkMonth(tt.month), ErrInvalidMonth)
			}
		})
	}
}

func TestNullUUIDRoundTrip(t *testing.T) {
	assert.Nil(t, fromNullUUID(toNullUUID(nil)))

	id := uuid.New()
	got := fromNullUUID(toNullUUID(&id))
	require.NotNil(t, got)
	assert.Equal(t, id, *got)
}

func TestAgendaDates_UnionWithoutDuplicates(t *testing.T) {
	d := driver.New("A", "", "84")
	require.NoError(t, d.AddDate("2024-06-01", &route.Segment{Start: "MAPUTO", End: "MACIA"}))
	require.NoError(t, d.AddDate("2024-06-02", nil))
	d.DayRoutes["2024-06-05"] = route.Segment{Start: "MACIA", End: "MAPUTO"}

	assert.ElementsMatch(t, []string{"2024-06-01", "2024-06-02", "2024-06-05"}, agendaDates(d))
}

// The tests below need a live database, e.g.
// TEST_DATABASE_HOST=localhost go test ./internal/repository/postgres
func openTestDB(t *testing.T) *DriverRepository {
	t.Helper()
	if os.Getenv("TEST_DATABASE_HOST") == "" {
		t.Skip("TEST_DATABASE_HOST not set")
	}
	db, err := database.NewPostgresDB(database.Config{
		Host:     os.Getenv("TEST_DATABASE_HOST"),
		Port:     5432,
		User:     "postgres",
		Password: os.Getenv("TEST_DATABASE_PASSWORD"),
		DBName:   "intercity_test",
		SSLMode:  "disable",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(context.Background(), db))
	return NewDriverRepository(db)
}

func TestDriverRepository_RoundTrip(t *testing.T) {
	drivers := openTestDB(t)
	ctx := context.Background()

	d := driver.New("Estevão", "e@example.com", "841234567")
	d.SetDefaultRoute("MAPUTO", "VILANCULOS")
	d.SetApproval(true)
	require.NoError(t, d.AddDate("2031-06-01", &route.Segment{Start: "MAXIXE", End: "MAPUTO", Time: "06:00"}))
	require.NoError(t, d.AddDate("2031-06-02", nil))
	require.NoError(t, drivers.Create(ctx, d))

	got, err := drivers.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"2031-06-01", "2031-06-02"}, got.AvailableDates)
	assert.Equal(t, d.DayRoutes, got.DayRoutes)
	assert.Equal(t, route.Location("VILANCULOS"), got.RouteEnd)

	got.RemoveDate("2031-06-01")
	require.NoError(t, drivers.Update(ctx, got))

	approved, err := drivers.ListApproved(ctx)
	require.NoError(t, err)
	var found *driver.Driver
	for _, a := range approved {
		if a.ID == d.ID {
			found = a
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, []string{"2031-06-02"}, found.AvailableDates)
	assert.Empty(t, found.DayRoutes)

	_, err = drivers.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, driver.ErrDriverNotFound)
}

func TestTripAndParcelRepository_RoundTrip(t *testing.T) {
	drivers := openTestDB(t)
	ctx := context.Background()
	trips := NewTripRepository(drivers.db)
	parcels := NewParcelRepository(drivers.db)

	d := driver.New("A", "", "84")
	require.NoError(t, drivers.Create(ctx, d))

	now := time.Now().UTC().Truncate(time.Second)
	tr := &trip.Trip{
		ID: uuid.New(), PassengerName: "P", PassengerPhone: "84", Origin: "MAPUTO",
		Destination: "MACIA", Date: "2031-07-15", Seats: 2, Price: 600, Status: trip.StatusPending,
		PaymentMethod: trip.PaymentMPesa, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, trips.Create(ctx, tr))
	require.NoError(t, tr.ConfirmPayment())
	require.NoError(t, tr.AssignDriver(d.ID))
	require.NoError(t, trips.Update(ctx, tr))

	got, err := trips.GetByID(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.StatusAssigned, got.Status)
	require.NotNil(t, got.DriverID)
	assert.Equal(t, d.ID, *got.DriverID)

	july, err := trips.ListByMonth(ctx, "2031-07")
	require.NoError(t, err)
	assert.NotEmpty(t, july)

	p := &parcel.Parcel{
		ID: uuid.New(), SenderName: "S", SenderPhone: "84", Origin: "MAPUTO", Destination: "XAI-XAI",
		Size: parcel.SizeSmall, Status: parcel.StatusRequested, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, parcels.Create(ctx, p))
	require.NoError(t, p.Quote(250, d.ID))
	require.NoError(t, parcels.Update(ctx, p))

	gotParcel, err := parcels.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, parcel.StatusQuoted, gotParcel.Status)
	assert.Equal(t, 250, gotParcel.Price)

	_, err = parcels.ListByMonth(ctx, "bad")
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

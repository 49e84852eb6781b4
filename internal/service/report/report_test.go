package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viagens-moz/intercity/internal/domain/parcel"
	"github.com/viagens-moz/intercity/internal/domain/trip"
	"github.com/viagens-moz/intercity/internal/repository/memory"
	"github.com/viagens-moz/intercity/pkg/logger"
)

func seed(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()
	trips := memory.NewTripRepository()
	parcels := memory.NewParcelRepository()

	tripsIn := []*trip.Trip{
		{Date: "2024-06-01", Price: 1000, PaymentConfirmed: true, Status: trip.StatusPaid},
		{Date: "2024-06-20", Price: 500, PaymentConfirmed: true, Status: trip.StatusCompleted},
		{Date: "2024-06-21", Price: 700, PaymentConfirmed: false, Status: trip.StatusPending},
		{Date: "2024-06-22", Price: 900, PaymentConfirmed: true, Status: trip.StatusCancelled},
		{Date: "2024-07-01", Price: 1200, PaymentConfirmed: true, Status: trip.StatusPaid},
	}
	for _, tr := range tripsIn {
		tr.ID = uuid.New()
		require.NoError(t, trips.Create(ctx, tr))
	}

	june := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	parcelsIn := []*parcel.Parcel{
		{Price: 300, Status: parcel.StatusPaid, CreatedAt: june},
		{Price: 200, Status: parcel.StatusDelivered, CreatedAt: june},
		{Price: 400, Status: parcel.StatusQuoted, CreatedAt: june},
		{Price: 250, Status: parcel.StatusPaid, CreatedAt: june.AddDate(0, 1, 0)},
	}
	for _, p := range parcelsIn {
		p.ID = uuid.New()
		require.NoError(t, parcels.Create(ctx, p))
	}

	return NewService(trips, parcels, logger.NewNop())
}

func TestMonthly(t *testing.T) {
	svc := seed(t)

	r, err := svc.Monthly(context.Background(), "2024-06", 15)
	require.NoError(t, err)

	assert.Equal(t, 1500, r.TripRevenue)
	assert.Equal(t, 500, r.ParcelRevenue)
	assert.Equal(t, 2000, r.Gross)
	assert.InDelta(t, 300.0, r.PlatformProfit, 1e-9)
	assert.InDelta(t, 1700.0, r.DriverPayout, 1e-9)
	require.Len(t, r.Lines, 4)
	assert.Equal(t, KindTrip, r.Lines[0].Kind)
	assert.InDelta(t, 150.0, r.Lines[0].Profit, 1e-9)
	assert.Equal(t, KindParcel, r.Lines[3].Kind)
}

func TestMonthly_EmptyMonth(t *testing.T) {
	svc := seed(t)

	r, err := svc.Monthly(context.Background(), "2023-01", 15)
	require.NoError(t, err)
	assert.Zero(t, r.Gross)
	assert.NotNil(t, r.Lines)
}

func TestMonthly_RejectsBadInput(t *testing.T) {
	svc := seed(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		month    string
		share    float64
		expected error
	}{
		{name: "Day included", month: "2024-06-01", share: 15, expected: ErrInvalidMonth},
		{name: "Month out of range", month: "2024-13", share: 15, expected: ErrInvalidMonth},
		{name: "Single digit month", month: "2024-6", share: 15, expected: ErrInvalidMonth},
		{name: "Negative share", month: "2024-06", share: -1, expected: ErrInvalidShare},
		{name: "Share above 100", month: "2024-06", share: 101, expected: ErrInvalidShare},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Monthly(ctx, tt.month, tt.share)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

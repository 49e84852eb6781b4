// Package report computes the monthly revenue statement
package report

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/viagens-moz/intercity/internal/domain/parcel"
	"github.com/viagens-moz/intercity/internal/domain/trip"
	"github.com/viagens-moz/intercity/pkg/logger"
)

var (
	ErrInvalidMonth = errors.New("month must be YYYY-MM")
	ErrInvalidShare = errors.New("share must be between 0 and 100")
)

// Kind tells trip lines from parcel lines
type Kind string

const (
	KindTrip   Kind = "trip"
	KindParcel Kind = "parcel"
)

// Line is one revenue item of the statement
type Line struct {
	Kind        Kind    `json:"kind"`
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Price       int     `json:"price"`
	Profit      float64 `json:"profit"`
}

// Report is the revenue statement of a month
type Report struct {
	Month          string  `json:"month"`
	SharePercent   float64 `json:"share_percent"`
	TripRevenue    int     `json:"trip_revenue"`
	ParcelRevenue  int     `json:"parcel_revenue"`
	Gross          int     `json:"gross"`
	PlatformProfit float64 `json:"platform_profit"`
	DriverPayout   float64 `json:"driver_payout"`
	Lines          []Line  `json:"lines"`
}

// Service builds monthly reports
type Service struct {
	trips   trip.Repository
	parcels parcel.Repository
	logger  *logger.Logger
}

// NewService creates a new report service
func NewService(trips trip.Repository, parcels parcel.Repository, logger *logger.Logger) *Service {
	return &Service{
		trips:   trips,
		parcels: parcels,
		logger:  logger,
	}
}

// Monthly sums payment-confirmed trips travelling in month and paid parcels
// created in month, and splits the gross by sharePercent
func (s *Service) Monthly(ctx context.Context, month string, sharePercent float64) (*Report, error) {
	if _, err := time.Parse("2006-01", month); err != nil || len(month) != len("2006-01") {
		return nil, ErrInvalidMonth
	}
	if math.IsNaN(sharePercent) || sharePercent < 0 || sharePercent > 100 {
		return nil, ErrInvalidShare
	}

	trips, err := s.trips.ListByMonth(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	parcels, err := s.parcels.ListByMonth(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("list parcels: %w", err)
	}

	r := &Report{Month: month, SharePercent: sharePercent, Lines: make([]Line, 0)}
	for _, t := range trips {
		if !t.PaymentConfirmed || t.Status == trip.StatusCancelled {
			continue
		}
		r.TripRevenue += t.Price
		r.Lines = append(r.Lines, Line{
			Kind:        KindTrip,
			ID:          t.ID.String(),
			Date:        t.Date,
			Origin:      string(t.Origin),
			Destination: string(t.Destination),
			Price:       t.Price,
			Profit:      share(t.Price, sharePercent),
		})
	}
	for _, p := range parcels {
		if !p.IsPaid() {
			continue
		}
		r.ParcelRevenue += p.Price
		r.Lines = append(r.Lines, Line{
			Kind:        KindParcel,
			ID:          p.ID.String(),
			Date:        p.CreatedAt.UTC().Format("2006-01-02"),
			Origin:      string(p.Origin),
			Destination: string(p.Destination),
			Price:       p.Price,
			Profit:      share(p.Price, sharePercent),
		})
	}

	r.Gross = r.TripRevenue + r.ParcelRevenue
	r.PlatformProfit = share(r.Gross, sharePercent)
	r.DriverPayout = float64(r.Gross) - r.PlatformProfit

	s.logger.Info("Monthly report generated",
		logger.String("month", month),
		logger.Int("gross", r.Gross),
		logger.Float64("platform_profit", r.PlatformProfit),
		logger.Int("lines", len(r.Lines)),
	)
	return r, nil
}

func share(amount int, percent float64) float64 {
	return float64(amount) * percent / 100
}

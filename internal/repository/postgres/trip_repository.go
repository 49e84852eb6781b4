package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/viagens-moz/intercity/internal/domain/route"
	"github.com/viagens-moz/intercity/internal/domain/trip"
)

// TripRepository stores passenger bookings
type TripRepository struct {
	db *sql.DB
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{db: db}
}

const tripColumns = `id, passenger_id, passenger_name, passenger_phone, origin, destination,
	to_char(date, 'YYYY-MM-DD'), seats, price, status, driver_id, payment_method,
	payment_confirmed, created_at, updated_at`

// Create inserts a new trip
func (r *TripRepository) Create(ctx context.Context, t *trip.Trip) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO trips (
			id, passenger_id, passenger_name, passenger_phone, origin, destination,
			date, seats, price, status, driver_id, payment_method, payment_confirmed,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, t.ID, t.PassengerID, t.PassengerName, t.PassengerPhone, string(t.Origin), string(t.Destination),
		t.Date, t.Seats, t.Price, string(t.Status), toNullUUID(t.DriverID), string(t.PaymentMethod),
		t.PaymentConfirmed, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert trip: %w", err)
	}
	return nil
}

// GetByID loads a trip
func (r *TripRepository) GetByID(ctx context.Context, id uuid.UUID) (*trip.Trip, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = $1`, id)
	t, err := scanTrip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, trip.ErrTripNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get trip: %w", err)
	}
	return t, nil
}

// Update persists status, driver and payment changes
func (r *TripRepository) Update(ctx context.Context, t *trip.Trip) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE trips
		SET status = $2, driver_id = $3, payment_confirmed = $4, price = $5, updated_at = $6
		WHERE id = $1
	`, t.ID, string(t.Status), toNullUUID(t.DriverID), t.PaymentConfirmed, t.Price, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update trip: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return trip.ErrTripNotFound
	}
	return nil
}

// ListByMonth returns trips whose travel date falls in month (YYYY-MM)
func (r *TripRepository) ListByMonth(ctx context.Context, month string) ([]*trip.Trip, error) {
	if err := checkMonth(month); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+tripColumns+`
		FROM trips
		WHERE to_char(date, 'YYYY-MM') = $1
		ORDER BY date, created_at
	`, month)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	trips := make([]*trip.Trip, 0, 64)
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("list trips: scan row: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trips: row iteration: %w", err)
	}
	return trips, nil
}

func scanTrip(s scanner) (*trip.Trip, error) {
	var (
		t                   trip.Trip
		origin, destination string
		status, method      string
		driverID            uuid.NullUUID
	)
	err := s.Scan(&t.ID, &t.PassengerID, &t.PassengerName, &t.PassengerPhone, &origin, &destination,
		&t.Date, &t.Seats, &t.Price, &status, &driverID, &method, &t.PaymentConfirmed,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Origin = route.Location(origin)
	t.Destination = route.Location(destination)
	t.Status = trip.Status(status)
	t.PaymentMethod = trip.PaymentMethod(method)
	t.DriverID = fromNullUUID(driverID)
	return &t, nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/viagens-moz/intercity/internal/domain/driver"
	"github.com/viagens-moz/intercity/internal/domain/route"
	"github.com/viagens-moz/intercity/pkg/database"
)

// DriverRepository stores drivers and their agenda
type DriverRepository struct {
	db *sql.DB
}

// NewDriverRepository creates a new driver repository
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{db: db}
}

const driverColumns = `id, name, email, phone, vehicle_number, vehicle_model, vehicle_color,
	available_seats, is_approved, is_priority, route_start, route_end, created_at, updated_at`

// Create inserts the driver and its agenda
func (r *DriverRepository) Create(ctx context.Context, d *driver.Driver) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO drivers (`+driverColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`, d.ID, d.Name, d.Email, d.Phone, d.VehicleNumber, d.VehicleModel, d.VehicleColor,
			d.AvailableSeats, d.IsApproved, d.IsPriority, string(d.RouteStart), string(d.RouteEnd),
			d.CreatedAt, d.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert driver: %w", err)
		}
		return writeDates(ctx, tx, d)
	})
}

// Update rewrites the driver row and replaces its agenda
func (r *DriverRepository) Update(ctx context.Context, d *driver.Driver) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE drivers
			SET name = $2, email = $3, phone = $4, vehicle_number = $5, vehicle_model = $6,
			    vehicle_color = $7, available_seats = $8, is_approved = $9, is_priority = $10,
			    route_start = $11, route_end = $12, updated_at = $13
			WHERE id = $1
		`, d.ID, d.Name, d.Email, d.Phone, d.VehicleNumber, d.VehicleModel, d.VehicleColor,
			d.AvailableSeats, d.IsApproved, d.IsPriority, string(d.RouteStart), string(d.RouteEnd),
			d.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update driver: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return driver.ErrDriverNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM driver_dates WHERE driver_id = $1`, d.ID); err != nil {
			return fmt.Errorf("clear driver dates: %w", err)
		}
		return writeDates(ctx, tx, d)
	})
}

// GetByID loads a single driver with its agenda
func (r *DriverRepository) GetByID(ctx context.Context, id uuid.UUID) (*driver.Driver, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id = $1`, id)
	d, err := scanDriver(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, driver.ErrDriverNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get driver: %w", err)
	}

	if err := r.loadDates(ctx, map[uuid.UUID]*driver.Driver{d.ID: d}); err != nil {
		return nil, err
	}
	return d, nil
}

// List returns every driver ordered by registration
func (r *DriverRepository) List(ctx context.Context) ([]*driver.Driver, error) {
	return r.list(ctx, `SELECT `+driverColumns+` FROM drivers ORDER BY created_at, id`)
}

// ListApproved returns the roster snapshot the matcher runs on
func (r *DriverRepository) ListApproved(ctx context.Context) ([]*driver.Driver, error) {
	return r.list(ctx, `SELECT `+driverColumns+` FROM drivers WHERE is_approved ORDER BY created_at, id`)
}

func (r *DriverRepository) list(ctx context.Context, query string) ([]*driver.Driver, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	defer rows.Close()

	drivers := make([]*driver.Driver, 0, 32)
	byID := make(map[uuid.UUID]*driver.Driver)
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("list drivers: scan row: %w", err)
		}
		drivers = append(drivers, d)
		byID[d.ID] = d
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list drivers: row iteration: %w", err)
	}

	if err := r.loadDates(ctx, byID); err != nil {
		return nil, err
	}
	return drivers, nil
}

// loadDates fills the agenda of every driver in byID with a single query
func (r *DriverRepository) loadDates(ctx context.Context, byID map[uuid.UUID]*driver.Driver) error {
	if len(byID) == 0 {
		return nil
	}
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id.String())
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT driver_id, to_char(date, 'YYYY-MM-DD'), available, route_start, route_end, departure_time
		FROM driver_dates
		WHERE driver_id = ANY($1::uuid[])
		ORDER BY date
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load driver dates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			driverID            uuid.UUID
			date                string
			available           bool
			start, end, depTime string
		)
		if err := rows.Scan(&driverID, &date, &available, &start, &end, &depTime); err != nil {
			return fmt.Errorf("load driver dates: scan row: %w", err)
		}
		d, ok := byID[driverID]
		if !ok {
			continue
		}
		if available {
			d.AvailableDates = append(d.AvailableDates, date)
		}
		if start != "" && end != "" {
			d.DayRoutes[date] = route.Segment{Start: route.Location(start), End: route.Location(end), Time: depTime}
		}
	}
	return rows.Err()
}

func writeDates(ctx context.Context, tx *sql.Tx, d *driver.Driver) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO driver_dates (driver_id, date, available, route_start, route_end, departure_time)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)
	if err != nil {
		return fmt.Errorf("prepare driver dates: %w", err)
	}
	defer stmt.Close()

	for _, date := range agendaDates(d) {
		seg := d.DayRoutes[date]
		_, err := stmt.ExecContext(ctx, d.ID, date, d.IsAvailableOn(date),
			string(seg.Start), string(seg.End), seg.Time)
		if err != nil {
			return fmt.Errorf("insert driver date %s: %w", date, err)
		}
	}
	return nil
}

// agendaDates is the union of available dates and day route dates
func agendaDates(d *driver.Driver) []string {
	dates := make([]string, 0, len(d.AvailableDates)+len(d.DayRoutes))
	seen := make(map[string]bool, cap(dates))
	for _, date := range d.AvailableDates {
		if !seen[date] {
			seen[date] = true
			dates = append(dates, date)
		}
	}
	for date := range d.DayRoutes {
		if !seen[date] {
			seen[date] = true
			dates = append(dates, date)
		}
	}
	return dates
}

func scanDriver(s scanner) (*driver.Driver, error) {
	var (
		d          driver.Driver
		start, end string
	)
	err := s.Scan(&d.ID, &d.Name, &d.Email, &d.Phone, &d.VehicleNumber, &d.VehicleModel,
		&d.VehicleColor, &d.AvailableSeats, &d.IsApproved, &d.IsPriority, &start, &end,
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d.RouteStart = route.Location(start)
	d.RouteEnd = route.Location(end)
	d.AvailableDates = []string{}
	d.DayRoutes = make(map[string]route.Segment)
	return &d, nil
}

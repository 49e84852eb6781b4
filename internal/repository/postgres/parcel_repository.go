package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/viagens-moz/intercity/internal/domain/parcel"
	"github.com/viagens-moz/intercity/internal/domain/route"
)

// ParcelRepository stores parcel delivery requests
type ParcelRepository struct {
	db *sql.DB
}

// NewParcelRepository creates a new parcel repository
func NewParcelRepository(db *sql.DB) *ParcelRepository {
	return &ParcelRepository{db: db}
}

const parcelColumns = `id, sender_id, sender_name, sender_phone, origin, destination, size, type,
	description, price, status, driver_id, created_at, updated_at`

// Create inserts a new parcel
func (r *ParcelRepository) Create(ctx context.Context, p *parcel.Parcel) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO parcels (`+parcelColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, p.ID, p.SenderID, p.SenderName, p.SenderPhone, string(p.Origin), string(p.Destination),
		string(p.Size), p.Type, p.Description, p.Price, string(p.Status), toNullUUID(p.DriverID),
		p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert parcel: %w", err)
	}
	return nil
}

// GetByID loads a parcel
func (r *ParcelRepository) GetByID(ctx context.Context, id uuid.UUID) (*parcel.Parcel, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+parcelColumns+` FROM parcels WHERE id = $1`, id)
	p, err := scanParcel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, parcel.ErrParcelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get parcel: %w", err)
	}
	return p, nil
}

// Update persists price, status and driver changes
func (r *ParcelRepository) Update(ctx context.Context, p *parcel.Parcel) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE parcels
		SET price = $2, status = $3, driver_id = $4, updated_at = $5
		WHERE id = $1
	`, p.ID, p.Price, string(p.Status), toNullUUID(p.DriverID), p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update parcel: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return parcel.ErrParcelNotFound
	}
	return nil
}

// ListByMonth returns parcels created in month (YYYY-MM, UTC)
func (r *ParcelRepository) ListByMonth(ctx context.Context, month string) ([]*parcel.Parcel, error) {
	if err := checkMonth(month); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+parcelColumns+`
		FROM parcels
		WHERE to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM') = $1
		ORDER BY created_at
	`, month)
	if err != nil {
		return nil, fmt.Errorf("list parcels: %w", err)
	}
	defer rows.Close()

	parcels := make([]*parcel.Parcel, 0, 64)
	for rows.Next() {
		p, err := scanParcel(rows)
		if err != nil {
			return nil, fmt.Errorf("list parcels: scan row: %w", err)
		}
		parcels = append(parcels, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list parcels: row iteration: %w", err)
	}
	return parcels, nil
}

func scanParcel(s scanner) (*parcel.Parcel, error) {
	var (
		p                   parcel.Parcel
		origin, destination string
		size, status        string
		driverID            uuid.NullUUID
	)
	err := s.Scan(&p.ID, &p.SenderID, &p.SenderName, &p.SenderPhone, &origin, &destination,
		&size, &p.Type, &p.Description, &p.Price, &status, &driverID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Origin = route.Location(origin)
	p.Destination = route.Location(destination)
	p.Size = parcel.Size(size)
	p.Status = parcel.Status(status)
	p.DriverID = fromNullUUID(driverID)
	return &p, nil
}

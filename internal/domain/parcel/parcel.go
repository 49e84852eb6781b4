package parcel

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/viagens-moz/intercity/internal/domain/route"
)

type Status string

const (
	StatusRequested   Status = "REQUESTED"
	StatusNegotiating Status = "NEGOTIATING"
	StatusQuoted      Status = "QUOTED"
	StatusPaid        Status = "PAID"
	StatusInTransit   Status = "IN_TRANSIT"
	StatusDelivered   Status = "DELIVERED"
)

// Size is the declared parcel size class
type Size string

const (
	SizeSmall  Size = "SMALL"
	SizeMedium Size = "MEDIUM"
	SizeLarge  Size = "LARGE"
)

// IsValid validates the size
func (s Size) IsValid() bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge:
		return true
	}
	return false
}

// Parcel is a small-package delivery request. It has no travel date:
// any driver whose schedule covers the stretch can carry it.
type Parcel struct {
	ID          uuid.UUID      `json:"id"`
	SenderID    string         `json:"sender_id"`
	SenderName  string         `json:"sender_name"`
	SenderPhone string         `json:"sender_phone"`
	Origin      route.Location `json:"origin"`
	Destination route.Location `json:"destination"`
	Size        Size           `json:"size"`
	Type        string         `json:"type"`
	Description string         `json:"description"`
	Price       int            `json:"price"`
	Status      Status         `json:"status"`
	DriverID    *uuid.UUID     `json:"driver_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type Repository interface {
	Create(ctx context.Context, parcel *Parcel) error
	GetByID(ctx context.Context, id uuid.UUID) (*Parcel, error)
	Update(ctx context.Context, parcel *Parcel) error
	ListByMonth(ctx context.Context, month string) ([]*Parcel, error)
}

var (
	ErrParcelNotFound = errors.New("parcel not found")
	ErrInvalidStatus  = errors.New("invalid parcel status transition")
	ErrInvalidSize    = errors.New("invalid parcel size")
	ErrInvalidPrice   = errors.New("quoted price must be positive")
)

// IsQuotable reports whether the admin may still set a price and driver
func (p *Parcel) IsQuotable() bool {
	return p.Status == StatusRequested || p.Status == StatusNegotiating
}

// StartNegotiation flags that price is being discussed with a driver
func (p *Parcel) StartNegotiation() error {
	if p.Status != StatusRequested {
		return ErrInvalidStatus
	}
	p.Status = StatusNegotiating
	p.touch()
	return nil
}

// Quote binds the negotiated price and the carrying driver
func (p *Parcel) Quote(price int, driverID uuid.UUID) error {
	if !p.IsQuotable() {
		return ErrInvalidStatus
	}
	if price <= 0 {
		return ErrInvalidPrice
	}
	p.Price = price
	p.DriverID = &driverID
	p.Status = StatusQuoted
	p.touch()
	return nil
}

// ConfirmPayment marks a quoted parcel as paid
func (p *Parcel) ConfirmPayment() error {
	if p.Status != StatusQuoted {
		return ErrInvalidStatus
	}
	p.Status = StatusPaid
	p.touch()
	return nil
}

// Dispatch is called when the driver picks the parcel up
func (p *Parcel) Dispatch() error {
	if p.Status != StatusPaid {
		return ErrInvalidStatus
	}
	p.Status = StatusInTransit
	p.touch()
	return nil
}

// Deliver closes the parcel
func (p *Parcel) Deliver() error {
	if p.Status != StatusInTransit {
		return ErrInvalidStatus
	}
	p.Status = StatusDelivered
	p.touch()
	return nil
}

// IsPaid reports whether the parcel price counts as revenue
func (p *Parcel) IsPaid() bool {
	switch p.Status {
	case StatusPaid, StatusInTransit, StatusDelivered:
		return true
	}
	return false
}

func (p *Parcel) touch() {
	p.UpdatedAt = time.Now().UTC()
}

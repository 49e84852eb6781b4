package trip

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/viagens-moz/intercity/internal/domain/route"
)

// MaxSeats is the capacity of the largest vehicle on the line
const MaxSeats = 15

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusAssigned  Status = "ASSIGNED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// PaymentMethod is the mobile money wallet the passenger pays with
type PaymentMethod string

const (
	PaymentMPesa PaymentMethod = "MPESA"
	PaymentEMola PaymentMethod = "EMOLA"
)

// IsValid validates the payment method
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMPesa || m == PaymentEMola
}

// Trip is a passenger's seat booking on a given date
type Trip struct {
	ID               uuid.UUID      `json:"id"`
	PassengerID      string         `json:"passenger_id"`
	PassengerName    string         `json:"passenger_name"`
	PassengerPhone   string         `json:"passenger_phone"`
	Origin           route.Location `json:"origin"`
	Destination      route.Location `json:"destination"`
	Date             string         `json:"date"`
	Seats            int            `json:"seats"`
	Price            int            `json:"price"`
	Status           Status         `json:"status"`
	DriverID         *uuid.UUID     `json:"driver_id,omitempty"`
	PaymentMethod    PaymentMethod  `json:"payment_method"`
	PaymentConfirmed bool           `json:"payment_confirmed"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

type Repository interface {
	Create(ctx context.Context, trip *Trip) error
	GetByID(ctx context.Context, id uuid.UUID) (*Trip, error)
	Update(ctx context.Context, trip *Trip) error
	ListByMonth(ctx context.Context, month string) ([]*Trip, error)
}

var (
	ErrTripNotFound      = errors.New("trip not found")
	ErrInvalidStatus     = errors.New("invalid trip status transition")
	ErrTripNotAssignable = errors.New("trip must be paid and unassigned to receive a driver")
	ErrInvalidSeats      = errors.New("seats must be between 1 and 15")
	ErrInvalidPayment    = errors.New("invalid payment method")
)

// ConfirmPayment marks a pending trip as paid
func (t *Trip) ConfirmPayment() error {
	if t.Status != StatusPending {
		return ErrInvalidStatus
	}
	t.PaymentConfirmed = true
	t.Status = StatusPaid
	t.touch()
	return nil
}

// CanAssignDriver checks the trip is paid, unassigned and still open
func (t *Trip) CanAssignDriver() bool {
	return t.PaymentConfirmed && t.DriverID == nil && t.Status == StatusPaid
}

// AssignDriver binds a driver to the trip
func (t *Trip) AssignDriver(driverID uuid.UUID) error {
	if !t.CanAssignDriver() {
		return ErrTripNotAssignable
	}
	t.DriverID = &driverID
	t.Status = StatusAssigned
	t.touch()
	return nil
}

// Complete is called by the driver once the passenger was delivered
func (t *Trip) Complete() error {
	if t.Status != StatusAssigned {
		return ErrInvalidStatus
	}
	t.Status = StatusCompleted
	t.touch()
	return nil
}

// Cancel cancels a trip that has no driver yet
func (t *Trip) Cancel() error {
	if t.Status != StatusPending && t.Status != StatusPaid {
		return ErrInvalidStatus
	}
	t.Status = StatusCancelled
	t.touch()
	return nil
}

func (t *Trip) touch() {
	t.UpdatedAt = time.Now().UTC()
}

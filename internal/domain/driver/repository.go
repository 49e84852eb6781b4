package driver

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for driver data access
type Repository interface {
	// Create creates a new driver
	Create(ctx context.Context, driver *Driver) error

	// GetByID retrieves a driver with its agenda
	GetByID(ctx context.Context, id uuid.UUID) (*Driver, error)

	// Update replaces profile flags, default route and agenda
	Update(ctx context.Context, driver *Driver) error

	// List retrieves all drivers ordered by registration
	List(ctx context.Context) ([]*Driver, error)

	// ListApproved retrieves the approved roster ordered by registration
	ListApproved(ctx context.Context) ([]*Driver, error)
}

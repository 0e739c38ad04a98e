package property

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for property aggregates.
type Repository interface {
	// FindByID retrieves a property by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Property, error)

	// FindByOwner retrieves all properties belonging to an owner.
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Property, error)

	// CountByOwner counts an owner's properties (plan gating).
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// Save persists a new property.
	Save(ctx context.Context, property *Property) error

	// Update persists changes to an existing property with optimistic locking.
	Update(ctx context.Context, property *Property) error

	// Delete removes a property. The active-bookings guard is enforced by
	// the application service before calling this.
	Delete(ctx context.Context, id uuid.UUID) error
}

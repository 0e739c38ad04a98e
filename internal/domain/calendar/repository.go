package calendar

import (
	"context"

	"github.com/google/uuid"
)

// SyncRepository defines the persistence contract for calendar sync records
// and their imported external bookings.
type SyncRepository interface {
	// FindSyncByID retrieves a sync record by its identifier.
	FindSyncByID(ctx context.Context, id uuid.UUID) (*Sync, error)

	// FindSyncsByOwner retrieves all sync records belonging to an owner.
	FindSyncsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Sync, error)

	// CountSyncsByOwner counts an owner's sync records (plan gating).
	CountSyncsByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// SaveSync persists a new sync record.
	SaveSync(ctx context.Context, sync *Sync) error

	// UpdateSync persists changes to an existing sync record.
	UpdateSync(ctx context.Context, sync *Sync) error

	// DeleteSync removes a sync record and its imported bookings.
	DeleteSync(ctx context.Context, id uuid.UUID) error

	// FindExternalByProperty retrieves the imported busy ranges for a
	// property.
	FindExternalByProperty(ctx context.Context, propertyID uuid.UUID) ([]ExternalBooking, error)

	// ReplaceExternal atomically replaces the imported bookings of one sync
	// record with the given set.
	ReplaceExternal(ctx context.Context, syncID uuid.UUID, bookings []ExternalBooking) error
}

package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows owner-scoped booking listings.
type ListFilter struct {
	// Historical filters to historical (true) or forward (false) bookings
	// when set.
	Historical *bool
	// PropertyID restricts to one property when set.
	PropertyID *uuid.UUID
}

// Repository defines the persistence contract for booking aggregates.
type Repository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByOwner retrieves bookings belonging to an owner with pagination.
	FindByOwner(ctx context.Context, ownerID uuid.UUID, filter ListFilter, page, limit int) ([]*Booking, int64, error)

	// FindAllByOwner retrieves an owner's full booking collection, used by
	// the client projection and the statistics roll-up.
	FindAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Booking, error)

	// FindByProperty retrieves all bookings attached to a property.
	FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]*Booking, error)

	// FindOverlapping retrieves non-cancelled bookings of a property whose
	// inclusive date range touches [checkIn, checkOut], excluding excludeID.
	FindOverlapping(ctx context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time, excludeID uuid.UUID) ([]*Booking, error)

	// CountActiveByProperty counts bookings in an active status for a
	// property (the property-deletion guard).
	CountActiveByProperty(ctx context.Context, propertyID uuid.UUID) (int64, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error

	// Delete removes a booking.
	Delete(ctx context.Context, id uuid.UUID) error
}

package property

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pousadapro/service-booking/internal/domain/shared"
)

// Property is the aggregate root for a rentable unit (chalet, pousada room,
// cabin). Bookings reference it optionally.
type Property struct {
	id             uuid.UUID
	ownerID        uuid.UUID
	name           string
	location       string
	capacity       int
	dailyRateCents *int64
	fixedNotes     string
	isActive       bool
	version        int64
	createdAt      time.Time
	updatedAt      time.Time
}

// NewProperty creates a new active property with validated fields.
func NewProperty(
	ownerID uuid.UUID,
	name, location string,
	capacity int,
	dailyRateCents *int64,
	fixedNotes string,
) (*Property, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewValidationError("owner ID is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("property name is required")
	}
	if capacity < 1 {
		return nil, shared.NewValidationError("capacity must be at least 1")
	}
	if dailyRateCents != nil && *dailyRateCents < 0 {
		return nil, shared.NewValidationError("daily rate cannot be negative")
	}

	now := time.Now().UTC()
	return &Property{
		id:             uuid.New(),
		ownerID:        ownerID,
		name:           name,
		location:       location,
		capacity:       capacity,
		dailyRateCents: dailyRateCents,
		fixedNotes:     fixedNotes,
		isActive:       true,
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// Reconstruct rebuilds a Property from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	ownerID uuid.UUID,
	name, location string,
	capacity int,
	dailyRateCents *int64,
	fixedNotes string,
	isActive bool,
	version int64,
	createdAt, updatedAt time.Time,
) *Property {
	return &Property{
		id:             id,
		ownerID:        ownerID,
		name:           name,
		location:       location,
		capacity:       capacity,
		dailyRateCents: dailyRateCents,
		fixedNotes:     fixedNotes,
		isActive:       isActive,
		version:        version,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// ID returns the property's unique identifier.
func (p *Property) ID() uuid.UUID { return p.id }

// OwnerID returns the owning host's user ID.
func (p *Property) OwnerID() uuid.UUID { return p.ownerID }

// Name returns the display name.
func (p *Property) Name() string { return p.name }

// Location returns the free-form location description.
func (p *Property) Location() string { return p.location }

// Capacity returns the maximum guest count.
func (p *Property) Capacity() int { return p.capacity }

// DailyRateCents returns the default daily rate, or nil if unset.
func (p *Property) DailyRateCents() *int64 { return p.dailyRateCents }

// FixedNotes returns the notes shown on every booking of this property.
func (p *Property) FixedNotes() string { return p.fixedNotes }

// IsActive reports whether the property accepts new bookings.
func (p *Property) IsActive() bool { return p.isActive }

// Version returns the entity version for optimistic locking.
func (p *Property) Version() int64 { return p.version }

// CreatedAt returns the creation timestamp.
func (p *Property) CreatedAt() time.Time { return p.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (p *Property) UpdatedAt() time.Time { return p.updatedAt }

// UpdateDetails replaces the editable fields after validation.
func (p *Property) UpdateDetails(name, location string, capacity int, dailyRateCents *int64, fixedNotes string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewValidationError("property name is required")
	}
	if capacity < 1 {
		return shared.NewValidationError("capacity must be at least 1")
	}
	if dailyRateCents != nil && *dailyRateCents < 0 {
		return shared.NewValidationError("daily rate cannot be negative")
	}
	p.name = name
	p.location = location
	p.capacity = capacity
	p.dailyRateCents = dailyRateCents
	p.fixedNotes = fixedNotes
	p.updatedAt = time.Now().UTC()
	return nil
}

// Activate marks the property as accepting bookings.
func (p *Property) Activate() {
	p.isActive = true
	p.updatedAt = time.Now().UTC()
}

// Deactivate hides the property from new-booking flows without deleting its
// history.
func (p *Property) Deactivate() {
	p.isActive = false
	p.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (p *Property) IncrementVersion() {
	p.version++
	p.updatedAt = time.Now().UTC()
}

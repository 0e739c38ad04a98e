package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	propertyDomain "github.com/pousadapro/service-booking/internal/domain/property"
	"github.com/pousadapro/service-booking/internal/domain/shared"
)

// PropertyModel is the GORM model for the properties table.
type PropertyModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Name           string    `gorm:"type:varchar(120);not null"`
	Location       string    `gorm:"type:varchar(255)"`
	Capacity       int       `gorm:"not null;default:1"`
	DailyRateCents *int64    `gorm:""`
	FixedNotes     string    `gorm:"type:text"`
	IsActive       bool      `gorm:"not null;default:true"`
	Version        int64     `gorm:"not null;default:1"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName sets the table name.
func (PropertyModel) TableName() string { return "properties" }

// GormPropertyRepository implements the property repository using GORM.
type GormPropertyRepository struct {
	db *gorm.DB
}

// NewGormPropertyRepository creates a new GormPropertyRepository.
func NewGormPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

// FindByID retrieves a property by its unique identifier.
func (r *GormPropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*propertyDomain.Property, error) {
	var model PropertyModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("property", id.String())
		}
		return nil, fmt.Errorf("failed to find property by ID: %w", err)
	}
	return toPropertyDomain(&model), nil
}

// FindByOwner retrieves all properties belonging to an owner.
func (r *GormPropertyRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*propertyDomain.Property, error) {
	var models []PropertyModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find owner properties: %w", err)
	}

	properties := make([]*propertyDomain.Property, len(models))
	for i, m := range models {
		properties[i] = toPropertyDomain(&m)
	}
	return properties, nil
}

// CountByOwner counts an owner's properties.
func (r *GormPropertyRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&PropertyModel{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count owner properties: %w", err)
	}
	return count, nil
}

// Save persists a new property.
func (r *GormPropertyRepository) Save(ctx context.Context, p *propertyDomain.Property) error {
	model := toPropertyModel(p)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save property: %w", err)
	}
	return nil
}

// Update persists changes to an existing property with optimistic locking.
func (r *GormPropertyRepository) Update(ctx context.Context, p *propertyDomain.Property) error {
	model := toPropertyModel(p)
	expectedVersion := p.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&PropertyModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"name":             model.Name,
			"location":         model.Location,
			"capacity":         model.Capacity,
			"daily_rate_cents": model.DailyRateCents,
			"fixed_notes":      model.FixedNotes,
			"is_active":        model.IsActive,
			"version":          model.Version,
			"updated_at":       model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update property: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewConflictError("property was modified by another transaction")
	}
	return nil
}

// Delete removes a property. The caller enforces the active-bookings guard.
func (r *GormPropertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&PropertyModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete property: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("property", id.String())
	}
	return nil
}

// --- Conversions ---

func toPropertyModel(p *propertyDomain.Property) *PropertyModel {
	return &PropertyModel{
		ID:             p.ID(),
		OwnerID:        p.OwnerID(),
		Name:           p.Name(),
		Location:       p.Location(),
		Capacity:       p.Capacity(),
		DailyRateCents: p.DailyRateCents(),
		FixedNotes:     p.FixedNotes(),
		IsActive:       p.IsActive(),
		Version:        p.Version(),
		CreatedAt:      p.CreatedAt(),
		UpdatedAt:      p.UpdatedAt(),
	}
}

func toPropertyDomain(m *PropertyModel) *propertyDomain.Property {
	return propertyDomain.Reconstruct(
		m.ID, m.OwnerID,
		m.Name, m.Location,
		m.Capacity,
		m.DailyRateCents,
		m.FixedNotes,
		m.IsActive,
		m.Version,
		m.CreatedAt, m.UpdatedAt,
	)
}

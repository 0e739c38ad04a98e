package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/pousadapro/service-booking/internal/domain/booking"
	"github.com/pousadapro/service-booking/internal/domain/plan"
	propertyDomain "github.com/pousadapro/service-booking/internal/domain/property"
	"github.com/pousadapro/service-booking/internal/domain/shared"
)

// CreatePropertyRequest holds the data needed to register a property.
type CreatePropertyRequest struct {
	Name           string `json:"name" binding:"required"`
	Location       string `json:"location"`
	Capacity       int    `json:"capacity" binding:"required"`
	DailyRateCents *int64 `json:"daily_rate_cents"`
	FixedNotes     string `json:"fixed_notes"`
}

// UpdatePropertyRequest carries a partial property update.
type UpdatePropertyRequest struct {
	Name           *string `json:"name"`
	Location       *string `json:"location"`
	Capacity       *int    `json:"capacity"`
	DailyRateCents *int64  `json:"daily_rate_cents"`
	FixedNotes     *string `json:"fixed_notes"`
	IsActive       *bool   `json:"is_active"`
}

// PropertyDTO is the response representation of a property.
type PropertyDTO struct {
	ID             uuid.UUID `json:"id"`
	OwnerID        uuid.UUID `json:"owner_id"`
	Name           string    `json:"name"`
	Location       string    `json:"location,omitempty"`
	Capacity       int       `json:"capacity"`
	DailyRateCents *int64    `json:"daily_rate_cents,omitempty"`
	FixedNotes     string    `json:"fixed_notes,omitempty"`
	IsActive       bool      `json:"is_active"`
	Version        int64     `json:"version"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PropertyService is the application service for property management.
type PropertyService struct {
	repo        propertyDomain.Repository
	bookingRepo bookingDomain.Repository
	logger      *zap.Logger
}

// NewPropertyService creates a new PropertyService.
func NewPropertyService(repo propertyDomain.Repository, bookingRepo bookingDomain.Repository, logger *zap.Logger) *PropertyService {
	return &PropertyService{repo: repo, bookingRepo: bookingRepo, logger: logger}
}

// CreateProperty registers a property for the owner, enforcing the plan's
// property limit.
func (s *PropertyService) CreateProperty(ctx context.Context, ownerID uuid.UUID, ownerPlan plan.Plan, req CreatePropertyRequest) (*PropertyDTO, error) {
	count, err := s.repo.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count properties: %w", err)
	}
	if !plan.CanAddProperty(ownerPlan, count) {
		return nil, shared.NewForbiddenError("property limit reached for current plan")
	}

	prop, err := propertyDomain.NewProperty(ownerID, req.Name, req.Location, req.Capacity, req.DailyRateCents, req.FixedNotes)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, prop); err != nil {
		return nil, fmt.Errorf("failed to save property: %w", err)
	}

	result := toPropertyDTO(prop)
	return &result, nil
}

// UpdateProperty applies a partial update to an owned property.
func (s *PropertyService) UpdateProperty(ctx context.Context, ownerID, propertyID uuid.UUID, req UpdatePropertyRequest) (*PropertyDTO, error) {
	prop, err := s.owned(ctx, ownerID, propertyID)
	if err != nil {
		return nil, err
	}

	name := prop.Name()
	location := prop.Location()
	capacity := prop.Capacity()
	dailyRate := prop.DailyRateCents()
	fixedNotes := prop.FixedNotes()

	if req.Name != nil {
		name = *req.Name
	}
	if req.Location != nil {
		location = *req.Location
	}
	if req.Capacity != nil {
		capacity = *req.Capacity
	}
	if req.DailyRateCents != nil {
		dailyRate = req.DailyRateCents
	}
	if req.FixedNotes != nil {
		fixedNotes = *req.FixedNotes
	}

	if err := prop.UpdateDetails(name, location, capacity, dailyRate, fixedNotes); err != nil {
		return nil, err
	}

	if req.IsActive != nil {
		if *req.IsActive {
			prop.Activate()
		} else {
			prop.Deactivate()
		}
	}

	prop.IncrementVersion()
	if err := s.repo.Update(ctx, prop); err != nil {
		return nil, err
	}

	result := toPropertyDTO(prop)
	return &result, nil
}

// DeleteProperty removes an owned property. Properties with bookings still in
// an active status are protected from deletion.
func (s *PropertyService) DeleteProperty(ctx context.Context, ownerID, propertyID uuid.UUID) error {
	if _, err := s.owned(ctx, ownerID, propertyID); err != nil {
		return err
	}

	active, err := s.bookingRepo.CountActiveByProperty(ctx, propertyID)
	if err != nil {
		return fmt.Errorf("failed to count active bookings: %w", err)
	}
	if active > 0 {
		return shared.NewHasActiveBookingsError(propertyID.String())
	}

	return s.repo.Delete(ctx, propertyID)
}

// GetProperty retrieves a single owned property.
func (s *PropertyService) GetProperty(ctx context.Context, ownerID, propertyID uuid.UUID) (*PropertyDTO, error) {
	prop, err := s.owned(ctx, ownerID, propertyID)
	if err != nil {
		return nil, err
	}
	result := toPropertyDTO(prop)
	return &result, nil
}

// ListProperties retrieves all of the owner's properties.
func (s *PropertyService) ListProperties(ctx context.Context, ownerID uuid.UUID) ([]PropertyDTO, error) {
	props, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	dtos := make([]PropertyDTO, len(props))
	for i, p := range props {
		dtos[i] = toPropertyDTO(p)
	}
	return dtos, nil
}

func (s *PropertyService) owned(ctx context.Context, ownerID, propertyID uuid.UUID) (*propertyDomain.Property, error) {
	prop, err := s.repo.FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if prop.OwnerID() != ownerID {
		return nil, shared.NewNotFoundError("property", propertyID.String())
	}
	return prop, nil
}

func toPropertyDTO(p *propertyDomain.Property) PropertyDTO {
	return PropertyDTO{
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

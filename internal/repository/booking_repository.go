package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/pousadapro/service-booking/internal/domain/booking"
	"github.com/pousadapro/service-booking/internal/domain/shared"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerID       uuid.UUID       `gorm:"type:uuid;index;not null"`
	PropertyID    *uuid.UUID      `gorm:"type:uuid;index"`
	Guest         json.RawMessage `gorm:"type:jsonb;not null"`
	BookingDate   time.Time       `gorm:"type:date;not null"`
	CheckIn       time.Time       `gorm:"type:date;not null;index"`
	CheckOut      time.Time       `gorm:"type:date;not null"`
	TotalCents    int64           `gorm:"not null;default:0"`
	PaymentMethod string          `gorm:"size:50"`
	Status        string          `gorm:"not null;size:30;index"`
	IsHistorical  bool            `gorm:"not null;default:false"`
	Notes         string          `gorm:"size:2000"`
	CheckedInAt   *time.Time      `gorm:""`
	CheckedOutAt  *time.Time      `gorm:""`
	CancelledAt   *time.Time      `gorm:""`
	Version       int64           `gorm:"not null;default:1"`
	CreatedAt     time.Time       `gorm:"not null"`
	UpdatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of the booking
// repository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByOwner retrieves an owner's bookings with pagination, optionally
// filtered by the historical flag or a property.
func (r *GormBookingRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, filter bookingDomain.ListFilter, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	query := r.db.WithContext(ctx).Model(&BookingModel{}).Where("owner_id = ?", ownerID)
	if filter.Historical != nil {
		query = query.Where("is_historical = ?", *filter.Historical)
	}
	if filter.PropertyID != nil {
		query = query.Where("property_id = ?", *filter.PropertyID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count owner bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := query.
		Order("check_in DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find owner bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// FindAllByOwner retrieves an owner's full booking collection.
func (r *GormBookingRepository) FindAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("check_in ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find owner bookings: %w", err)
	}
	return toDomainBookings(models)
}

// FindByProperty retrieves all bookings attached to a property, oldest
// check-in first.
func (r *GormBookingRepository) FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("check_in ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find property bookings: %w", err)
	}
	return toDomainBookings(models)
}

// FindOverlapping retrieves the non-cancelled bookings of a property whose
// inclusive [check_in, check_out] range intersects [checkIn, checkOut].
// The inclusive bound means a stay ending the day another begins matches.
func (r *GormBookingRepository) FindOverlapping(ctx context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time, excludeID uuid.UUID) ([]*bookingDomain.Booking, error) {
	query := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Where("status <> ?", string(bookingDomain.StatusCancelled)).
		Where("check_in <= ? AND check_out >= ?", checkOut, checkIn)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}

	var models []BookingModel
	if err := query.Order("check_in ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find overlapping bookings: %w", err)
	}
	return toDomainBookings(models)
}

// CountActiveByProperty counts a property's bookings in an active status.
func (r *GormBookingRepository) CountActiveByProperty(ctx context.Context, propertyID uuid.UUID) (int64, error) {
	statuses := make([]string, len(bookingDomain.ActiveStatuses))
	for i, s := range bookingDomain.ActiveStatuses {
		statuses[i] = string(s)
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("property_id = ? AND status IN ?", propertyID, statuses).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count active bookings: %w", err)
	}
	return count, nil
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	// IncrementVersion was called before Update, so the stored row must
	// still be at version-1.
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"property_id":    model.PropertyID,
			"guest":          model.Guest,
			"booking_date":   model.BookingDate,
			"check_in":       model.CheckIn,
			"check_out":      model.CheckOut,
			"total_cents":    model.TotalCents,
			"payment_method": model.PaymentMethod,
			"status":         model.Status,
			"is_historical":  model.IsHistorical,
			"notes":          model.Notes,
			"checked_in_at":  model.CheckedInAt,
			"checked_out_at": model.CheckedOutAt,
			"cancelled_at":   model.CancelledAt,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// Delete removes a booking.
func (r *GormBookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&BookingModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("booking", id.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) (*BookingModel, error) {
	guestJSON, err := json.Marshal(bk.Guest())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal guest: %w", err)
	}

	return &BookingModel{
		ID:            bk.ID(),
		OwnerID:       bk.OwnerID(),
		PropertyID:    bk.PropertyID(),
		Guest:         guestJSON,
		BookingDate:   bk.BookingDate(),
		CheckIn:       bk.CheckIn(),
		CheckOut:      bk.CheckOut(),
		TotalCents:    bk.TotalCents(),
		PaymentMethod: bk.PaymentMethod(),
		Status:        string(bk.Status()),
		IsHistorical:  bk.IsHistorical(),
		Notes:         bk.Notes(),
		CheckedInAt:   bk.CheckedInAt(),
		CheckedOutAt:  bk.CheckedOutAt(),
		CancelledAt:   bk.CancelledAt(),
		Version:       bk.Version(),
		CreatedAt:     bk.CreatedAt(),
		UpdatedAt:     bk.UpdatedAt(),
	}, nil
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	var guest bookingDomain.Guest
	if err := json.Unmarshal(m.Guest, &guest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal guest: %w", err)
	}

	// The stored status is passed through unparsed: an unrecognized value
	// must still render, with zero available actions.
	return bookingDomain.ReconstructBooking(
		m.ID,
		m.OwnerID,
		m.PropertyID,
		guest,
		m.BookingDate,
		m.CheckIn,
		m.CheckOut,
		m.TotalCents,
		m.PaymentMethod,
		bookingDomain.Status(m.Status),
		m.IsHistorical,
		m.Notes,
		m.CheckedInAt,
		m.CheckedOutAt,
		m.CancelledAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}

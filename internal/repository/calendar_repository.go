package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	calendarDomain "github.com/pousadapro/service-booking/internal/domain/calendar"
	"github.com/pousadapro/service-booking/internal/domain/shared"
)

// CalendarSyncModel is the GORM model for the calendar_syncs table.
type CalendarSyncModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OwnerID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	PropertyID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Platform        string     `gorm:"type:varchar(50);not null"`
	FeedURL         string     `gorm:"type:text;not null"`
	SyncIntervalMin int        `gorm:"not null;default:60"`
	LastSyncAt      *time.Time `gorm:""`
	SyncStatus      string     `gorm:"type:varchar(20);not null;default:'pending'"`
	SyncError       string     `gorm:"type:text"`
	Enabled         bool       `gorm:"not null;default:true"`
	CreatedAt       time.Time  `gorm:"not null"`
	UpdatedAt       time.Time  `gorm:"not null"`
}

// TableName sets the table name.
func (CalendarSyncModel) TableName() string { return "calendar_syncs" }

// ExternalBookingModel is the GORM model for the external_bookings table.
type ExternalBookingModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	SyncID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sync_external_uid"`
	PropertyID  uuid.UUID `gorm:"type:uuid;not null;index"`
	ExternalUID string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_sync_external_uid"`
	Summary     string    `gorm:"type:varchar(255)"`
	Start       time.Time `gorm:"column:start_date;type:date;not null"`
	End         time.Time `gorm:"column:end_date;type:date;not null"`
	ImportedAt  time.Time `gorm:"not null"`
}

// TableName sets the table name.
func (ExternalBookingModel) TableName() string { return "external_bookings" }

// GormCalendarRepository implements the calendar sync repository using GORM.
type GormCalendarRepository struct {
	db *gorm.DB
}

// NewGormCalendarRepository creates a new GormCalendarRepository.
func NewGormCalendarRepository(db *gorm.DB) *GormCalendarRepository {
	return &GormCalendarRepository{db: db}
}

// FindSyncByID retrieves a sync record by its identifier.
func (r *GormCalendarRepository) FindSyncByID(ctx context.Context, id uuid.UUID) (*calendarDomain.Sync, error) {
	var model CalendarSyncModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("calendar sync", id.String())
		}
		return nil, fmt.Errorf("failed to find calendar sync by ID: %w", err)
	}
	return toSyncDomain(&model), nil
}

// FindSyncsByOwner retrieves all sync records belonging to an owner.
func (r *GormCalendarRepository) FindSyncsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*calendarDomain.Sync, error) {
	var models []CalendarSyncModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find owner calendar syncs: %w", err)
	}

	syncs := make([]*calendarDomain.Sync, len(models))
	for i, m := range models {
		syncs[i] = toSyncDomain(&m)
	}
	return syncs, nil
}

// CountSyncsByOwner counts an owner's sync records.
func (r *GormCalendarRepository) CountSyncsByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&CalendarSyncModel{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count owner calendar syncs: %w", err)
	}
	return count, nil
}

// SaveSync persists a new sync record.
func (r *GormCalendarRepository) SaveSync(ctx context.Context, s *calendarDomain.Sync) error {
	model := toSyncModel(s)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save calendar sync: %w", err)
	}
	return nil
}

// UpdateSync persists changes to an existing sync record.
func (r *GormCalendarRepository) UpdateSync(ctx context.Context, s *calendarDomain.Sync) error {
	model := toSyncModel(s)
	result := r.db.WithContext(ctx).
		Model(&CalendarSyncModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"platform":          model.Platform,
			"feed_url":          model.FeedURL,
			"sync_interval_min": model.SyncIntervalMin,
			"last_sync_at":      model.LastSyncAt,
			"sync_status":       model.SyncStatus,
			"sync_error":        model.SyncError,
			"enabled":           model.Enabled,
			"updated_at":        model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update calendar sync: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("calendar sync", model.ID.String())
	}
	return nil
}

// DeleteSync removes a sync record together with its imported bookings.
func (r *GormCalendarRepository) DeleteSync(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sync_id = ?", id).Delete(&ExternalBookingModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete external bookings: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&CalendarSyncModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete calendar sync: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.NewNotFoundError("calendar sync", id.String())
		}
		return nil
	})
}

// FindExternalByProperty retrieves the imported busy ranges for a property.
func (r *GormCalendarRepository) FindExternalByProperty(ctx context.Context, propertyID uuid.UUID) ([]calendarDomain.ExternalBooking, error) {
	var models []ExternalBookingModel
	if err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("start_date ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find external bookings: %w", err)
	}

	bookings := make([]calendarDomain.ExternalBooking, len(models))
	for i, m := range models {
		bookings[i] = toExternalDomain(&m)
	}
	return bookings, nil
}

// ReplaceExternal atomically replaces the imported bookings of one sync
// record with the given set. Events removed upstream disappear here too.
func (r *GormCalendarRepository) ReplaceExternal(ctx context.Context, syncID uuid.UUID, bookings []calendarDomain.ExternalBooking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sync_id = ?", syncID).Delete(&ExternalBookingModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear external bookings: %w", err)
		}
		if len(bookings) == 0 {
			return nil
		}
		models := make([]ExternalBookingModel, len(bookings))
		for i, b := range bookings {
			models[i] = toExternalModel(b)
		}
		if err := tx.Create(&models).Error; err != nil {
			return fmt.Errorf("failed to insert external bookings: %w", err)
		}
		return nil
	})
}

// --- Conversions ---

func toSyncModel(s *calendarDomain.Sync) *CalendarSyncModel {
	return &CalendarSyncModel{
		ID:              s.ID(),
		OwnerID:         s.OwnerID(),
		PropertyID:      s.PropertyID(),
		Platform:        s.Platform(),
		FeedURL:         s.FeedURL(),
		SyncIntervalMin: s.SyncIntervalMin(),
		LastSyncAt:      s.LastSyncAt(),
		SyncStatus:      string(s.SyncStatus()),
		SyncError:       s.SyncError(),
		Enabled:         s.Enabled(),
		CreatedAt:       s.CreatedAt(),
		UpdatedAt:       s.UpdatedAt(),
	}
}

func toSyncDomain(m *CalendarSyncModel) *calendarDomain.Sync {
	return calendarDomain.ReconstructSync(
		m.ID, m.OwnerID, m.PropertyID,
		m.Platform, m.FeedURL,
		m.SyncIntervalMin,
		m.LastSyncAt,
		calendarDomain.SyncStatus(m.SyncStatus),
		m.SyncError,
		m.Enabled,
		m.CreatedAt, m.UpdatedAt,
	)
}

func toExternalModel(b calendarDomain.ExternalBooking) ExternalBookingModel {
	return ExternalBookingModel{
		ID:          b.ID,
		SyncID:      b.SyncID,
		PropertyID:  b.PropertyID,
		ExternalUID: b.ExternalUID,
		Summary:     b.Summary,
		Start:       b.Start,
		End:         b.End,
		ImportedAt:  b.ImportedAt,
	}
}

func toExternalDomain(m *ExternalBookingModel) calendarDomain.ExternalBooking {
	return calendarDomain.ExternalBooking{
		ID:          m.ID,
		SyncID:      m.SyncID,
		PropertyID:  m.PropertyID,
		ExternalUID: m.ExternalUID,
		Summary:     m.Summary,
		Start:       m.Start,
		End:         m.End,
		ImportedAt:  m.ImportedAt,
	}
}

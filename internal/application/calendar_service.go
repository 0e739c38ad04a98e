package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/pousadapro/service-booking/internal/domain/booking"
	calendarDomain "github.com/pousadapro/service-booking/internal/domain/calendar"
	"github.com/pousadapro/service-booking/internal/domain/plan"
	propertyDomain "github.com/pousadapro/service-booking/internal/domain/property"
	"github.com/pousadapro/service-booking/internal/domain/shared"
	"github.com/pousadapro/service-booking/internal/events"
)

// CreateSyncRequest registers an external feed subscription for a property.
type CreateSyncRequest struct {
	PropertyID      uuid.UUID `json:"property_id" binding:"required"`
	Platform        string    `json:"platform" binding:"required"`
	FeedURL         string    `json:"feed_url" binding:"required"`
	SyncIntervalMin int       `json:"sync_interval_min"`
}

// UpdateSyncRequest toggles an existing subscription.
type UpdateSyncRequest struct {
	Enabled *bool `json:"enabled"`
}

// SyncDTO is the response representation of a calendar sync record.
type SyncDTO struct {
	ID              uuid.UUID  `json:"id"`
	OwnerID         uuid.UUID  `json:"owner_id"`
	PropertyID      uuid.UUID  `json:"property_id"`
	Platform        string     `json:"platform"`
	FeedURL         string     `json:"feed_url"`
	SyncIntervalMin int        `json:"sync_interval_min"`
	LastSyncAt      *time.Time `json:"last_sync_at,omitempty"`
	SyncStatus      string     `json:"sync_status"`
	SyncError       string     `json:"sync_error,omitempty"`
	Enabled         bool       `json:"enabled"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

const defaultSyncIntervalMin = 60

// CalendarService handles iCal export, availability views and external feed
// subscriptions.
type CalendarService struct {
	syncRepo     calendarDomain.SyncRepository
	bookingRepo  bookingDomain.Repository
	propertyRepo propertyDomain.Repository
	logger       *zap.Logger
}

// NewCalendarService creates a new CalendarService.
func NewCalendarService(
	syncRepo calendarDomain.SyncRepository,
	bookingRepo bookingDomain.Repository,
	propertyRepo propertyDomain.Repository,
	logger *zap.Logger,
) *CalendarService {
	return &CalendarService{
		syncRepo:     syncRepo,
		bookingRepo:  bookingRepo,
		propertyRepo: propertyRepo,
		logger:       logger,
	}
}

// ExportICS renders the iCal feed for one of the owner's properties.
func (s *CalendarService) ExportICS(ctx context.Context, ownerID, propertyID uuid.UUID) (string, error) {
	prop, err := s.ownedProperty(ctx, ownerID, propertyID)
	if err != nil {
		return "", err
	}

	bookings, err := s.bookingRepo.FindByProperty(ctx, propertyID)
	if err != nil {
		return "", err
	}

	return calendarDomain.Feed(prop, bookings), nil
}

// Availability merges the property's own active bookings with its imported
// external busy ranges for calendar rendering.
func (s *CalendarService) Availability(ctx context.Context, ownerID, propertyID uuid.UUID) ([]calendarDomain.BusyRange, error) {
	if _, err := s.ownedProperty(ctx, ownerID, propertyID); err != nil {
		return nil, err
	}

	bookings, err := s.bookingRepo.FindByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	external, err := s.syncRepo.FindExternalByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	return calendarDomain.Availability(bookings, external), nil
}

// CreateSync registers an external feed subscription, enforcing the plan's
// calendar-sync limit.
func (s *CalendarService) CreateSync(ctx context.Context, ownerID uuid.UUID, ownerPlan plan.Plan, req CreateSyncRequest) (*SyncDTO, error) {
	count, err := s.syncRepo.CountSyncsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count syncs: %w", err)
	}
	if !plan.CanAddSync(ownerPlan, count) {
		return nil, shared.NewForbiddenError("calendar sync not available on current plan")
	}

	if _, err := s.ownedProperty(ctx, ownerID, req.PropertyID); err != nil {
		return nil, err
	}

	interval := req.SyncIntervalMin
	if interval == 0 {
		interval = defaultSyncIntervalMin
	}

	sync, err := calendarDomain.NewSync(ownerID, req.PropertyID, req.Platform, req.FeedURL, interval)
	if err != nil {
		return nil, err
	}

	if err := s.syncRepo.SaveSync(ctx, sync); err != nil {
		return nil, fmt.Errorf("failed to save sync: %w", err)
	}

	result := toSyncDTO(sync)
	return &result, nil
}

// UpdateSync toggles an owned subscription.
func (s *CalendarService) UpdateSync(ctx context.Context, ownerID, syncID uuid.UUID, req UpdateSyncRequest) (*SyncDTO, error) {
	sync, err := s.ownedSync(ctx, ownerID, syncID)
	if err != nil {
		return nil, err
	}

	if req.Enabled != nil {
		sync.SetEnabled(*req.Enabled)
	}

	if err := s.syncRepo.UpdateSync(ctx, sync); err != nil {
		return nil, err
	}

	result := toSyncDTO(sync)
	return &result, nil
}

// DeleteSync removes an owned subscription and its imported bookings.
func (s *CalendarService) DeleteSync(ctx context.Context, ownerID, syncID uuid.UUID) error {
	if _, err := s.ownedSync(ctx, ownerID, syncID); err != nil {
		return err
	}
	return s.syncRepo.DeleteSync(ctx, syncID)
}

// ListSyncs retrieves all of the owner's subscriptions.
func (s *CalendarService) ListSyncs(ctx context.Context, ownerID uuid.UUID) ([]SyncDTO, error) {
	syncs, err := s.syncRepo.FindSyncsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	dtos := make([]SyncDTO, len(syncs))
	for i, sync := range syncs {
		dtos[i] = toSyncDTO(sync)
	}
	return dtos, nil
}

// ApplyFeedResult materializes one parsed-feed event from the sync worker.
// On success the imported set is replaced wholesale; on failure only the
// record's status is updated and the previous import stays visible.
func (s *CalendarService) ApplyFeedResult(ctx context.Context, event events.CalendarFeedParsedEvent) error {
	sync, err := s.syncRepo.FindSyncByID(ctx, event.SyncID)
	if err != nil {
		return err
	}

	if event.Error != "" {
		sync.MarkFailed(event.FetchedAt, event.Error)
		return s.syncRepo.UpdateSync(ctx, sync)
	}

	imported := make([]calendarDomain.ExternalBooking, len(event.Events))
	now := time.Now().UTC()
	for i, e := range event.Events {
		imported[i] = calendarDomain.ExternalBooking{
			ID:          uuid.New(),
			SyncID:      sync.ID(),
			PropertyID:  sync.PropertyID(),
			ExternalUID: e.UID,
			Summary:     e.Summary,
			Start:       e.Start,
			End:         e.End,
			ImportedAt:  now,
		}
	}

	if err := s.syncRepo.ReplaceExternal(ctx, sync.ID(), imported); err != nil {
		return err
	}

	sync.MarkSynced(event.FetchedAt)
	return s.syncRepo.UpdateSync(ctx, sync)
}

func (s *CalendarService) ownedProperty(ctx context.Context, ownerID, propertyID uuid.UUID) (*propertyDomain.Property, error) {
	prop, err := s.propertyRepo.FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if prop.OwnerID() != ownerID {
		return nil, shared.NewNotFoundError("property", propertyID.String())
	}
	return prop, nil
}

func (s *CalendarService) ownedSync(ctx context.Context, ownerID, syncID uuid.UUID) (*calendarDomain.Sync, error) {
	sync, err := s.syncRepo.FindSyncByID(ctx, syncID)
	if err != nil {
		return nil, err
	}
	if sync.OwnerID() != ownerID {
		return nil, shared.NewNotFoundError("calendar sync", syncID.String())
	}
	return sync, nil
}

func toSyncDTO(sync *calendarDomain.Sync) SyncDTO {
	return SyncDTO{
		ID:              sync.ID(),
		OwnerID:         sync.OwnerID(),
		PropertyID:      sync.PropertyID(),
		Platform:        sync.Platform(),
		FeedURL:         sync.FeedURL(),
		SyncIntervalMin: sync.SyncIntervalMin(),
		LastSyncAt:      sync.LastSyncAt(),
		SyncStatus:      string(sync.SyncStatus()),
		SyncError:       sync.SyncError(),
		Enabled:         sync.Enabled(),
		CreatedAt:       sync.CreatedAt(),
		UpdatedAt:       sync.UpdatedAt(),
	}
}

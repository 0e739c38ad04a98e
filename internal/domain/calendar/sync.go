package calendar

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pousadapro/service-booking/internal/domain/shared"
)

// SyncStatus tracks the last outcome of a feed synchronization.
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSyncing SyncStatus = "syncing"
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusError   SyncStatus = "error"
)

// Sync is a configured subscription to an external platform's iCal feed for
// one property. The fetching/parsing worker is a separate service; this
// record only carries its configuration and last outcome.
type Sync struct {
	id              uuid.UUID
	ownerID         uuid.UUID
	propertyID      uuid.UUID
	platform        string
	feedURL         string
	syncIntervalMin int
	lastSyncAt      *time.Time
	syncStatus      SyncStatus
	syncError       string
	enabled         bool
	createdAt       time.Time
	updatedAt       time.Time
}

// NewSync creates an enabled sync record in pending state.
func NewSync(ownerID, propertyID uuid.UUID, platform, feedURL string, syncIntervalMin int) (*Sync, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewValidationError("owner ID is required")
	}
	if propertyID == uuid.Nil {
		return nil, shared.NewValidationError("property ID is required")
	}
	if strings.TrimSpace(platform) == "" {
		return nil, shared.NewValidationError("platform is required")
	}
	if !strings.HasPrefix(feedURL, "http://") && !strings.HasPrefix(feedURL, "https://") {
		return nil, shared.NewValidationError("feed URL must be an http(s) URL")
	}
	if syncIntervalMin < 15 {
		return nil, shared.NewValidationError("sync interval must be at least 15 minutes")
	}

	now := time.Now().UTC()
	return &Sync{
		id:              uuid.New(),
		ownerID:         ownerID,
		propertyID:      propertyID,
		platform:        platform,
		feedURL:         feedURL,
		syncIntervalMin: syncIntervalMin,
		syncStatus:      SyncStatusPending,
		enabled:         true,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// ReconstructSync rebuilds a Sync from persistence data.
func ReconstructSync(
	id, ownerID, propertyID uuid.UUID,
	platform, feedURL string,
	syncIntervalMin int,
	lastSyncAt *time.Time,
	syncStatus SyncStatus,
	syncError string,
	enabled bool,
	createdAt, updatedAt time.Time,
) *Sync {
	return &Sync{
		id:              id,
		ownerID:         ownerID,
		propertyID:      propertyID,
		platform:        platform,
		feedURL:         feedURL,
		syncIntervalMin: syncIntervalMin,
		lastSyncAt:      lastSyncAt,
		syncStatus:      syncStatus,
		syncError:       syncError,
		enabled:         enabled,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// ID returns the sync record's identifier.
func (s *Sync) ID() uuid.UUID { return s.id }

// OwnerID returns the owning host's user ID.
func (s *Sync) OwnerID() uuid.UUID { return s.ownerID }

// PropertyID returns the synced property's ID.
func (s *Sync) PropertyID() uuid.UUID { return s.propertyID }

// Platform returns the external platform tag (e.g. "airbnb").
func (s *Sync) Platform() string { return s.platform }

// FeedURL returns the subscribed iCal feed URL.
func (s *Sync) FeedURL() string { return s.feedURL }

// SyncIntervalMin returns the refresh interval in minutes.
func (s *Sync) SyncIntervalMin() int { return s.syncIntervalMin }

// LastSyncAt returns when the feed was last fetched, or nil.
func (s *Sync) LastSyncAt() *time.Time { return s.lastSyncAt }

// SyncStatus returns the last synchronization outcome.
func (s *Sync) SyncStatus() SyncStatus { return s.syncStatus }

// SyncError returns the last synchronization error message, if any.
func (s *Sync) SyncError() string { return s.syncError }

// Enabled reports whether the subscription is active.
func (s *Sync) Enabled() bool { return s.enabled }

// CreatedAt returns the creation timestamp.
func (s *Sync) CreatedAt() time.Time { return s.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (s *Sync) UpdatedAt() time.Time { return s.updatedAt }

// MarkSynced records a successful fetch.
func (s *Sync) MarkSynced(at time.Time) {
	s.lastSyncAt = &at
	s.syncStatus = SyncStatusSuccess
	s.syncError = ""
	s.updatedAt = time.Now().UTC()
}

// MarkFailed records a failed fetch with its error message.
func (s *Sync) MarkFailed(at time.Time, message string) {
	s.lastSyncAt = &at
	s.syncStatus = SyncStatusError
	s.syncError = message
	s.updatedAt = time.Now().UTC()
}

// SetEnabled toggles the subscription.
func (s *Sync) SetEnabled(enabled bool) {
	s.enabled = enabled
	s.updatedAt = time.Now().UTC()
}

// ExternalBooking is an opaque busy range imported from an external
// platform's feed. It overlays the availability calendar read-only; it does
// not join the overlap validator's conflict set.
type ExternalBooking struct {
	ID          uuid.UUID `json:"id"`
	SyncID      uuid.UUID `json:"sync_id"`
	PropertyID  uuid.UUID `json:"property_id"`
	ExternalUID string    `json:"external_uid"`
	Summary     string    `json:"summary"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	ImportedAt  time.Time `json:"imported_at"`
}

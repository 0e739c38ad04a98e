package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicBookingEvents  = "booking.events"
	TopicCalendarEvents = "calendar.events"
)

// Event types.
const (
	BookingCreated       = "booking.created"
	BookingStatusChanged = "booking.status_changed"
	BookingCancelled     = "booking.cancelled"
	CalendarFeedParsed   = "calendar.feed_parsed"
)

// BookingCreatedEvent is published when a host records a new booking.
// The notification service fans it out to the host's devices.
type BookingCreatedEvent struct {
	BookingID  uuid.UUID  `json:"booking_id"`
	OwnerID    uuid.UUID  `json:"owner_id"`
	PropertyID *uuid.UUID `json:"property_id,omitempty"`
	GuestName  string     `json:"guest_name"`
	CheckIn    time.Time  `json:"check_in"`
	CheckOut   time.Time  `json:"check_out"`
	TotalCents int64      `json:"total_cents"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// BookingStatusChangedEvent is published on every workflow transition.
type BookingStatusChangedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Automatic  bool      `json:"automatic"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingCancelledEvent is published when a booking is cancelled, in
// addition to the status-changed event, so downstream consumers that only
// care about freed dates need not track the full workflow.
type BookingCancelledEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ExternalCalendarEvent is one parsed entry of a third-party feed.
type ExternalCalendarEvent struct {
	UID     string    `json:"uid"`
	Summary string    `json:"summary"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// CalendarFeedParsedEvent is published by the external sync worker after it
// fetched and parsed a subscribed feed. An empty Error means success; the
// Events slice is the complete current state of the feed.
type CalendarFeedParsedEvent struct {
	SyncID     uuid.UUID               `json:"sync_id"`
	PropertyID uuid.UUID               `json:"property_id"`
	FetchedAt  time.Time               `json:"fetched_at"`
	Events     []ExternalCalendarEvent `json:"events"`
	Error      string                  `json:"error,omitempty"`
}

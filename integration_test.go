//go:build integration

package main_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pousadapro/service-booking/internal/application"
	bookingDomain "github.com/pousadapro/service-booking/internal/domain/booking"
	bookingEvents "github.com/pousadapro/service-booking/internal/events"
	"github.com/pousadapro/service-booking/internal/repository"
)

// TestCalendarFeedParsed_MaterializesExternalBookings verifies that when the
// sync worker publishes a parsed feed to calendar.events, the service imports
// the busy ranges and marks the sync successful.
func TestCalendarFeedParsed_MaterializesExternalBookings(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupCalendarStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	ownerID := uuid.New()
	propertyID := uuid.New()
	syncID := uuid.New()
	seedPropertyWithSync(t, infra.DB, ownerID, propertyID, syncID)

	// Start the consumer.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	// Publish a parsed feed with two busy ranges.
	fetchedAt := time.Now().UTC().Truncate(time.Second)
	evt := bookingEvents.CalendarFeedParsedEvent{
		SyncID:     syncID,
		PropertyID: propertyID,
		FetchedAt:  fetchedAt,
		Events: []bookingEvents.ExternalCalendarEvent{
			{
				UID:     "abc123@airbnb.com",
				Summary: "Reserved",
				Start:   time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
				End:     time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
			},
			{
				UID:     "def456@airbnb.com",
				Summary: "Airbnb (Not available)",
				Start:   time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
				End:     time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC),
			},
		},
	}
	publishTestEvent(t, infra.KafkaBrokers, bookingEvents.TopicCalendarEvents,
		"service-calendar-sync", bookingEvents.CalendarFeedParsed, evt)

	// Assert: sync record reaches "success".
	model := waitForSyncStatus(t, infra.DB, syncID, "success", 15*time.Second)
	require.NotNil(t, model.LastSyncAt)
	assert.Empty(t, model.SyncError)

	// Assert: both busy ranges were materialized.
	var imported []repository.ExternalBookingModel
	require.NoError(t, infra.DB.
		Where("sync_id = ?", syncID).
		Order("start_date ASC").
		Find(&imported).Error)
	require.Len(t, imported, 2)
	assert.Equal(t, "abc123@airbnb.com", imported[0].ExternalUID)
	assert.Equal(t, propertyID, imported[0].PropertyID)
	assert.Equal(t, "def456@airbnb.com", imported[1].ExternalUID)

	// Assert: external ranges overlay availability but do not block bookings.
	busy, err := stack.CalendarService.Availability(ctx, ownerID, propertyID)
	require.NoError(t, err)
	require.Len(t, busy, 2)

	_, err = stack.BookingService.CreateBooking(ctx, ownerID, bookingCreateRequest(propertyID,
		time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC)))
	assert.NoError(t, err, "external busy ranges must not join the overlap conflict set")
}

// TestFeedParsedReplacement_ReplacesPreviousImport verifies that a second feed
// result replaces the prior imported set instead of accumulating.
func TestFeedParsedReplacement_ReplacesPreviousImport(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupCalendarStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	ownerID := uuid.New()
	propertyID := uuid.New()
	syncID := uuid.New()
	seedPropertyWithSync(t, infra.DB, ownerID, propertyID, syncID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second)

	first := bookingEvents.CalendarFeedParsedEvent{
		SyncID:     syncID,
		PropertyID: propertyID,
		FetchedAt:  time.Now().UTC(),
		Events: []bookingEvents.ExternalCalendarEvent{
			{UID: "stale@airbnb.com", Summary: "Reserved",
				Start: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
				End:   time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC)},
		},
	}
	publishTestEvent(t, infra.KafkaBrokers, bookingEvents.TopicCalendarEvents,
		"service-calendar-sync", bookingEvents.CalendarFeedParsed, first)
	waitForSyncStatus(t, infra.DB, syncID, "success", 15*time.Second)

	second := first
	second.FetchedAt = time.Now().UTC()
	second.Events = []bookingEvents.ExternalCalendarEvent{
		{UID: "fresh@airbnb.com", Summary: "Reserved",
			Start: time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 11, 4, 0, 0, 0, 0, time.UTC)},
	}
	publishTestEvent(t, infra.KafkaBrokers, bookingEvents.TopicCalendarEvents,
		"service-calendar-sync", bookingEvents.CalendarFeedParsed, second)

	require.Eventually(t, func() bool {
		var imported []repository.ExternalBookingModel
		if err := infra.DB.Where("sync_id = ?", syncID).Find(&imported).Error; err != nil {
			return false
		}
		return len(imported) == 1 && imported[0].ExternalUID == "fresh@airbnb.com"
	}, 15*time.Second, 200*time.Millisecond, "stale import was not replaced")
}

// TestCreateBooking_PublishesCreatedEvent verifies the happy-path write flow
// end to end: persisted row, overlap guard and booking.created event.
func TestCreateBooking_PublishesCreatedEvent(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupCalendarStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	ownerID := uuid.New()
	propertyID := uuid.New()
	syncID := uuid.New()
	seedPropertyWithSync(t, infra.DB, ownerID, propertyID, syncID)

	ctx := context.Background()
	checkIn := time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 12, 27, 0, 0, 0, 0, time.UTC)

	created, err := stack.BookingService.CreateBooking(ctx, ownerID, bookingCreateRequest(propertyID, checkIn, checkOut))
	require.NoError(t, err)
	assert.Equal(t, "requested", created.Status)

	// A second booking over the same dates must be rejected.
	_, err = stack.BookingService.CreateBooking(ctx, ownerID, bookingCreateRequest(propertyID,
		checkIn.AddDate(0, 0, 2), checkOut.AddDate(0, 0, 2)))
	require.Error(t, err)

	ce := consumeOneEvent(t, infra.KafkaBrokers, bookingEvents.TopicBookingEvents,
		bookingEvents.BookingCreated, 15*time.Second)

	var evt bookingEvents.BookingCreatedEvent
	require.NoError(t, ce.ParseData(&evt))
	assert.Equal(t, created.ID, evt.BookingID)
	assert.Equal(t, ownerID, evt.OwnerID)
}

// TestOverlapExclusionConstraint verifies the storage-level backstop: with the
// btree_gist exclusion constraint in place, a direct insert that overlaps an
// existing non-cancelled stay is rejected even though it bypasses the service.
func TestOverlapExclusionConstraint(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	// AutoMigrate does not create constraints, so apply the DDL the SQL
	// migration would.
	require.NoError(t, infra.DB.Exec("CREATE EXTENSION IF NOT EXISTS btree_gist").Error)
	require.NoError(t, infra.DB.Exec(`ALTER TABLE bookings ADD CONSTRAINT excl_bookings_no_overlap
		EXCLUDE USING gist (property_id WITH =, daterange(check_in, check_out, '[]') WITH &&)
		WHERE (property_id IS NOT NULL AND status <> 'cancelled')`).Error)

	ownerID := uuid.New()
	propertyID := uuid.New()
	syncID := uuid.New()
	seedPropertyWithSync(t, infra.DB, ownerID, propertyID, syncID)

	require.NoError(t, infra.DB.Create(seedBookingModel(ownerID, propertyID, "confirmed",
		time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC))).Error)

	// Boundary touch: check-in on the existing check-out day still conflicts.
	err := infra.DB.Create(seedBookingModel(ownerID, propertyID, "requested",
		time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 18, 0, 0, 0, 0, time.UTC))).Error
	require.Error(t, err)
	assert.Contains(t, err.Error(), "excl_bookings_no_overlap")

	// A cancelled stay over the same dates is exempt from the constraint.
	require.NoError(t, infra.DB.Create(seedBookingModel(ownerID, propertyID, "cancelled",
		time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC))).Error)

	// Free dates insert cleanly.
	require.NoError(t, infra.DB.Create(seedBookingModel(ownerID, propertyID, "requested",
		time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 18, 0, 0, 0, 0, time.UTC))).Error)
}

func seedBookingModel(ownerID, propertyID uuid.UUID, status string, checkIn, checkOut time.Time) *repository.BookingModel {
	now := time.Now().UTC()
	return &repository.BookingModel{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		PropertyID:    &propertyID,
		Guest:         json.RawMessage(`{"name":"Pedro Nunes","phone":"+55 11 97777-1234"}`),
		BookingDate:   now,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		TotalCents:    100000,
		PaymentMethod: "pix",
		Status:        status,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func bookingCreateRequest(propertyID uuid.UUID, checkIn, checkOut time.Time) application.CreateBookingRequest {
	return application.CreateBookingRequest{
		PropertyID: &propertyID,
		Guest: bookingDomain.Guest{
			Name:  "Maria Souza",
			Phone: "+55 12 99999-0000",
		},
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		TotalCents:    180000,
		PaymentMethod: "pix",
	}
}

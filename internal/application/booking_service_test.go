package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingDomain "github.com/pousadapro/service-booking/internal/domain/booking"
	propertyDomain "github.com/pousadapro/service-booking/internal/domain/property"
	"github.com/pousadapro/service-booking/internal/domain/shared"
	"github.com/pousadapro/service-booking/internal/events"
)

type bookingFixture struct {
	svc          *BookingService
	repo         *fakeBookingRepo
	propertyRepo *fakePropertyRepo
	publisher    *fakePublisher
	ownerID      uuid.UUID
	propertyID   uuid.UUID
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	repo := newFakeBookingRepo()
	propertyRepo := newFakePropertyRepo()
	publisher := &fakePublisher{}
	svc := NewBookingService(repo, propertyRepo, publisher, zap.NewNop())

	ownerID := uuid.New()
	rate := int64(30000)
	prop, err := propertyDomain.NewProperty(ownerID, "Chalé da Serra", "Campos do Jordão", 4, &rate, "")
	require.NoError(t, err)
	require.NoError(t, propertyRepo.Save(context.Background(), prop))

	return &bookingFixture{
		svc:          svc,
		repo:         repo,
		propertyRepo: propertyRepo,
		publisher:    publisher,
		ownerID:      ownerID,
		propertyID:   prop.ID(),
	}
}

func futureDate(days int) time.Time {
	return bookingDomain.DateOnly(time.Now()).AddDate(0, 0, days)
}

func createReq(f *bookingFixture, checkInDays, checkOutDays int) CreateBookingRequest {
	return CreateBookingRequest{
		PropertyID:    &f.propertyID,
		Guest:         bookingDomain.Guest{Name: "Luiza Prado", Phone: "+55 12 97777-0000"},
		CheckIn:       futureDate(checkInDays),
		CheckOut:      futureDate(checkOutDays),
		TotalCents:    150000,
		PaymentMethod: "pix",
	}
}

func TestCreateBooking(t *testing.T) {
	f := newBookingFixture(t)

	dto, err := f.svc.CreateBooking(context.Background(), f.ownerID, createReq(f, 10, 13))
	require.NoError(t, err)

	assert.Equal(t, string(bookingDomain.StatusRequested), dto.Status)
	assert.Equal(t, 3, dto.Nights)
	assert.Equal(t, int64(150000), dto.TotalCents)

	created := f.publisher.byType(events.BookingCreated)
	require.Len(t, created, 1)
	var evt events.BookingCreatedEvent
	require.NoError(t, created[0].ParseData(&evt))
	assert.Equal(t, dto.ID, evt.BookingID)
}

func TestCreateBooking_SuggestsTotalFromDailyRate(t *testing.T) {
	f := newBookingFixture(t)

	req := createReq(f, 10, 13)
	req.TotalCents = 0

	dto, err := f.svc.CreateBooking(context.Background(), f.ownerID, req)
	require.NoError(t, err)
	assert.Equal(t, int64(90000), dto.TotalCents, "3 nights at the property's 30000 rate")
}

func TestCreateBooking_RejectsOverlap(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateBooking(ctx, f.ownerID, createReq(f, 10, 15))
	require.NoError(t, err)

	_, err = f.svc.CreateBooking(ctx, f.ownerID, createReq(f, 12, 18))
	require.Error(t, err)
	assert.Equal(t, shared.KindConflict, shared.KindOf(err))

	// The day the first stay ends is still blocked.
	_, err = f.svc.CreateBooking(ctx, f.ownerID, createReq(f, 15, 20))
	require.Error(t, err)
	assert.Equal(t, shared.KindConflict, shared.KindOf(err))

	_, err = f.svc.CreateBooking(ctx, f.ownerID, createReq(f, 16, 20))
	assert.NoError(t, err)
}

func TestCreateBooking_CancelledDatesAreFree(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	first, err := f.svc.CreateBooking(ctx, f.ownerID, createReq(f, 10, 15))
	require.NoError(t, err)

	_, err = f.svc.ExecuteAction(ctx, f.ownerID, first.ID, "cancel", true)
	require.NoError(t, err)

	_, err = f.svc.CreateBooking(ctx, f.ownerID, createReq(f, 10, 15))
	assert.NoError(t, err)
}

func TestCreateBooking_InvalidRangeIsValidationError(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.svc.CreateBooking(context.Background(), f.ownerID, createReq(f, 15, 10))
	require.Error(t, err)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestCreateBooking_ForeignPropertyNotFound(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.svc.CreateBooking(context.Background(), uuid.New(), createReq(f, 10, 13))
	require.Error(t, err)
	assert.Equal(t, shared.KindNotFound, shared.KindOf(err))
}

func TestUpdateBooking_RescheduleRevalidatesExcludingSelf(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	dto, err := f.svc.CreateBooking(ctx, f.ownerID, createReq(f, 10, 15))
	require.NoError(t, err)

	// Shifting the same booking over its own dates must not self-conflict.
	newIn := futureDate(12)
	newOut := futureDate(17)
	updated, err := f.svc.UpdateBooking(ctx, f.ownerID, dto.ID, UpdateBookingRequest{CheckIn: &newIn, CheckOut: &newOut})
	require.NoError(t, err)
	assert.Equal(t, newIn, updated.CheckIn)
	assert.Equal(t, dto.Version+1, updated.Version)

	// But it still conflicts with a sibling.
	_, err = f.svc.CreateBooking(ctx, f.ownerID, createReq(f, 20, 25))
	require.NoError(t, err)

	clashIn := futureDate(21)
	clashOut := futureDate(23)
	_, err = f.svc.UpdateBooking(ctx, f.ownerID, dto.ID, UpdateBookingRequest{CheckIn: &clashIn, CheckOut: &clashOut})
	require.Error(t, err)
	assert.Equal(t, shared.KindConflict, shared.KindOf(err))
}

func TestUpdateBooking_PartialFields(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	dto, err := f.svc.CreateBooking(ctx, f.ownerID, createReq(f, 10, 15))
	require.NoError(t, err)

	notes := "early check-in requested"
	total := int64(200000)
	updated, err := f.svc.UpdateBooking(ctx, f.ownerID, dto.ID, UpdateBookingRequest{Notes: &notes, TotalCents: &total})
	require.NoError(t, err)

	assert.Equal(t, notes, updated.Notes)
	assert.Equal(t, total, updated.TotalCents)
	assert.Equal(t, dto.CheckIn, updated.CheckIn, "untouched fields stay put")
}

func TestGetBooking_ForeignOwnerReportsNotFound(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	dto, err := f.svc.CreateBooking(ctx, f.ownerID, createReq(f, 10, 13))
	require.NoError(t, err)

	_, err = f.svc.GetBooking(ctx, uuid.New(), dto.ID)
	require.Error(t, err)
	assert.Equal(t, shared.KindNotFound, shared.KindOf(err), "ownership failures must not reveal existence")
}

func TestValidateStay(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateBooking(ctx, f.ownerID, createReq(f, 10, 15))
	require.NoError(t, err)

	result, err := f.svc.ValidateStay(ctx, f.ownerID, ValidateStayRequest{
		PropertyID: &f.propertyID,
		CheckIn:    futureDate(12),
		CheckOut:   futureDate(14),
	})
	require.NoError(t, err)
	assert.True(t, result.Conflict)
	assert.Equal(t, bookingDomain.ReasonDateOverlap, result.Reason)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, created.ID, result.Conflicts[0].BookingID)

	// Excluding the conflicting booking itself clears the result.
	result, err = f.svc.ValidateStay(ctx, f.ownerID, ValidateStayRequest{
		PropertyID:       &f.propertyID,
		CheckIn:          futureDate(12),
		CheckOut:         futureDate(14),
		ExcludeBookingID: &created.ID,
	})
	require.NoError(t, err)
	assert.False(t, result.Conflict)
}

func TestExecuteAction_WalksTheWorkflow(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	dto, err := f.svc.CreateBooking(ctx, f.ownerID, createReq(f, 10, 15))
	require.NoError(t, err)

	confirmed, err := f.svc.ExecuteAction(ctx, f.ownerID, dto.ID, "confirm", false)
	require.NoError(t, err)
	assert.Equal(t, string(bookingDomain.StatusConfirmed), confirmed.Status)

	checkedIn, err := f.svc.ExecuteAction(ctx, f.ownerID, dto.ID, "check_in", false)
	require.NoError(t, err)
	assert.Equal(t, string(bookingDomain.StatusCheckedIn), checkedIn.Status)
	assert.NotNil(t, checkedIn.CheckedInAt)

	changed := f.publisher.byType(events.BookingStatusChanged)
	require.Len(t, changed, 2)
	var evt events.BookingStatusChangedEvent
	require.NoError(t, changed[1].ParseData(&evt))
	assert.Equal(t, "confirmed", evt.From)
	assert.Equal(t, "checked_in", evt.To)
	assert.False(t, evt.Automatic)
}

func TestExecuteAction_UnavailableActionRejected(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	dto, err := f.svc.CreateBooking(ctx, f.ownerID, createReq(f, 10, 15))
	require.NoError(t, err)

	_, err = f.svc.ExecuteAction(ctx, f.ownerID, dto.ID, "check_out", false)
	require.Error(t, err)
	assert.Equal(t, shared.KindInvalidState, shared.KindOf(err))
}

func TestExecuteAction_CancelNeedsConfirmation(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	dto, err := f.svc.CreateBooking(ctx, f.ownerID, createReq(f, 10, 15))
	require.NoError(t, err)

	_, err = f.svc.ExecuteAction(ctx, f.ownerID, dto.ID, "cancel", false)
	require.Error(t, err)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))

	cancelled, err := f.svc.ExecuteAction(ctx, f.ownerID, dto.ID, "cancel", true)
	require.NoError(t, err)
	assert.Equal(t, string(bookingDomain.StatusCancelled), cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)

	// Cancellation emits the dedicated event alongside the status change.
	assert.Len(t, f.publisher.byType(events.BookingCancelled), 1)
}

func TestExecuteAction_StorageFailureKeepsStatus(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	dto, err := f.svc.CreateBooking(ctx, f.ownerID, createReq(f, 10, 15))
	require.NoError(t, err)

	f.repo.updateErr = shared.NewConflictError("booking was modified by another transaction")
	_, err = f.svc.ExecuteAction(ctx, f.ownerID, dto.ID, "confirm", false)
	require.Error(t, err)
	assert.Empty(t, f.publisher.byType(events.BookingStatusChanged), "no event when the write failed")
}

func TestAvailableActions(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	dto, err := f.svc.CreateBooking(ctx, f.ownerID, createReq(f, 10, 15))
	require.NoError(t, err)

	actions, err := f.svc.AvailableActions(ctx, f.ownerID, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "requested", actions.Status)
	assert.Len(t, actions.Actions, 3)
	assert.Empty(t, actions.AutoTransitions, "check-in is still in the future")
}

func TestRunAutoTransitions_ChecksInWhenDue(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	// Historical flag lets us backfill a stay whose check-in already passed.
	req := createReq(f, -1, 2)
	req.IsHistorical = true
	dto, err := f.svc.CreateBooking(ctx, f.ownerID, req)
	require.NoError(t, err)

	_, err = f.svc.ExecuteAction(ctx, f.ownerID, dto.ID, "confirm", false)
	require.NoError(t, err)

	result, err := f.svc.RunAutoTransitions(ctx, f.ownerID, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, string(bookingDomain.StatusCheckedIn), result.Status)

	changed := f.publisher.byType(events.BookingStatusChanged)
	var last events.BookingStatusChangedEvent
	require.NoError(t, changed[len(changed)-1].ParseData(&last))
	assert.True(t, last.Automatic)
}

func TestRunAutoTransitions_CatchesUpThroughCheckOut(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	req := createReq(f, -5, -2)
	req.IsHistorical = true
	dto, err := f.svc.CreateBooking(ctx, f.ownerID, req)
	require.NoError(t, err)

	_, err = f.svc.ExecuteAction(ctx, f.ownerID, dto.ID, "confirm", false)
	require.NoError(t, err)

	// Check-in and check-out are both in the past: one call lands on
	// checked_out, persisting each step.
	result, err := f.svc.RunAutoTransitions(ctx, f.ownerID, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, string(bookingDomain.StatusCheckedOut), result.Status)
	assert.Equal(t, int64(4), result.Version)
}

func TestMonthlyStats_Service(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	req := createReq(f, 10, 13)
	_, err := f.svc.CreateBooking(ctx, f.ownerID, req)
	require.NoError(t, err)

	stats, err := f.svc.MonthlyStats(ctx, f.ownerID, nil)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 1, stats[0].Bookings)
	assert.Equal(t, 3, stats[0].Nights)

	none, err := f.svc.MonthlyStats(ctx, f.ownerID, intPtr(1999))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetBookingStats(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateBooking(ctx, f.ownerID, createReq(f, 10, 13))
	require.NoError(t, err)
	_, err = f.svc.CreateBooking(ctx, f.ownerID, createReq(f, 20, 23))
	require.NoError(t, err)

	stats, err := f.svc.GetBookingStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalBookings)
	assert.Equal(t, int64(2), stats.ByStatus["requested"])
}

func intPtr(v int) *int { return &v }

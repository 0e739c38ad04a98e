package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/pousadapro/service-booking/internal/domain/booking"
	propertyDomain "github.com/pousadapro/service-booking/internal/domain/property"
	"github.com/pousadapro/service-booking/internal/domain/shared"
	"github.com/pousadapro/service-booking/internal/events"
	"github.com/pousadapro/service-booking/internal/platform/kafka"
)

// CreateBookingRequest holds the data needed to record a new booking.
type CreateBookingRequest struct {
	PropertyID    *uuid.UUID          `json:"property_id"`
	Guest         bookingDomain.Guest `json:"guest" binding:"required"`
	CheckIn       time.Time           `json:"check_in" binding:"required"`
	CheckOut      time.Time           `json:"check_out" binding:"required"`
	TotalCents    int64               `json:"total_cents"`
	PaymentMethod string              `json:"payment_method"`
	IsHistorical  bool                `json:"is_historical"`
	Notes         string              `json:"notes"`
}

// UpdateBookingRequest carries a partial booking update; nil fields are left
// unchanged.
type UpdateBookingRequest struct {
	PropertyID    *uuid.UUID           `json:"property_id"`
	Guest         *bookingDomain.Guest `json:"guest"`
	CheckIn       *time.Time           `json:"check_in"`
	CheckOut      *time.Time           `json:"check_out"`
	TotalCents    *int64               `json:"total_cents"`
	PaymentMethod *string              `json:"payment_method"`
	Notes         *string              `json:"notes"`
}

// ValidateStayRequest asks whether a candidate date range could be saved.
// Forms call this on every date-field change.
type ValidateStayRequest struct {
	PropertyID       *uuid.UUID `json:"property_id"`
	CheckIn          time.Time  `json:"check_in" binding:"required"`
	CheckOut         time.Time  `json:"check_out" binding:"required"`
	ExcludeBookingID *uuid.UUID `json:"exclude_booking_id"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID            uuid.UUID                `json:"id"`
	OwnerID       uuid.UUID                `json:"owner_id"`
	PropertyID    *uuid.UUID               `json:"property_id,omitempty"`
	Guest         bookingDomain.Guest      `json:"guest"`
	BookingDate   time.Time                `json:"booking_date"`
	CheckIn       time.Time                `json:"check_in"`
	CheckOut      time.Time                `json:"check_out"`
	Nights        int                      `json:"nights"`
	TotalCents    int64                    `json:"total_cents"`
	PaymentMethod string                   `json:"payment_method,omitempty"`
	Status        string                   `json:"status"`
	StatusInfo    bookingDomain.Descriptor `json:"status_info"`
	IsHistorical  bool                     `json:"is_historical"`
	Notes         string                   `json:"notes,omitempty"`
	CheckedInAt   *time.Time               `json:"checked_in_at,omitempty"`
	CheckedOutAt  *time.Time               `json:"checked_out_at,omitempty"`
	CancelledAt   *time.Time               `json:"cancelled_at,omitempty"`
	Version       int64                    `json:"version"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
}

// BookingActionsDTO lists what a booking can do next: the manual actions the
// workflow allows and any time-driven transitions that are due.
type BookingActionsDTO struct {
	Status          string                   `json:"status"`
	StatusInfo      bookingDomain.Descriptor `json:"status_info"`
	Actions         []bookingDomain.Action   `json:"actions"`
	AutoTransitions []bookingDomain.Action   `json:"auto_transitions"`
}

// BookingStatsDTO holds aggregate booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// EventPublisher is the outbound event port, satisfied by kafka.Producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event *kafka.CloudEvent) error
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo         bookingDomain.Repository
	propertyRepo propertyDomain.Repository
	producer     EventPublisher
	logger       *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.Repository,
	propertyRepo propertyDomain.Repository,
	producer EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:         repo,
		propertyRepo: propertyRepo,
		producer:     producer,
		logger:       logger,
	}
}

// CreateBooking records a new booking for the given owner. The overlap
// invariant is enforced here, before persisting, against the property's
// current non-cancelled bookings.
func (s *BookingService) CreateBooking(ctx context.Context, ownerID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	totalCents := req.TotalCents

	if req.PropertyID != nil {
		prop, err := s.ownedProperty(ctx, ownerID, *req.PropertyID)
		if err != nil {
			return nil, err
		}
		if !prop.IsActive() && !req.IsHistorical {
			return nil, shared.NewValidationError("property is inactive")
		}
		// Prefill the value from the property's default rate when the host
		// left it empty.
		if totalCents == 0 && prop.DailyRateCents() != nil {
			totalCents = bookingDomain.SuggestTotalCents(req.CheckIn, req.CheckOut, *prop.DailyRateCents())
		}
	}

	if err := s.guardOverlap(ctx, req.PropertyID, req.CheckIn, req.CheckOut, uuid.Nil); err != nil {
		return nil, err
	}

	bk, err := bookingDomain.NewBooking(
		ownerID,
		req.PropertyID,
		req.Guest,
		req.CheckIn,
		req.CheckOut,
		totalCents,
		req.PaymentMethod,
		req.IsHistorical,
		req.Notes,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCreated, events.BookingCreatedEvent{
		BookingID:  bk.ID(),
		OwnerID:    bk.OwnerID(),
		PropertyID: bk.PropertyID(),
		GuestName:  bk.Guest().Name,
		CheckIn:    bk.CheckIn(),
		CheckOut:   bk.CheckOut(),
		TotalCents: bk.TotalCents(),
		OccurredAt: time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// UpdateBooking applies a partial update. Date or property changes re-run
// the overlap guard with the booking itself excluded from the candidate set.
func (s *BookingService) UpdateBooking(ctx context.Context, ownerID, bookingID uuid.UUID, req UpdateBookingRequest) (*BookingDTO, error) {
	bk, err := s.ownedBooking(ctx, ownerID, bookingID)
	if err != nil {
		return nil, err
	}

	checkIn := bk.CheckIn()
	checkOut := bk.CheckOut()
	if req.CheckIn != nil {
		checkIn = bookingDomain.DateOnly(*req.CheckIn)
	}
	if req.CheckOut != nil {
		checkOut = bookingDomain.DateOnly(*req.CheckOut)
	}

	propertyID := bk.PropertyID()
	if req.PropertyID != nil {
		if _, err := s.ownedProperty(ctx, ownerID, *req.PropertyID); err != nil {
			return nil, err
		}
		propertyID = req.PropertyID
	}

	datesChanged := !checkIn.Equal(bk.CheckIn()) || !checkOut.Equal(bk.CheckOut())
	propertyChanged := req.PropertyID != nil && (bk.PropertyID() == nil || *bk.PropertyID() != *req.PropertyID)
	if datesChanged || propertyChanged {
		if err := s.guardOverlap(ctx, propertyID, checkIn, checkOut, bk.ID()); err != nil {
			return nil, err
		}
		if err := bk.Reschedule(checkIn, checkOut); err != nil {
			return nil, err
		}
	}
	if propertyChanged {
		bk.SetProperty(propertyID)
	}

	if req.Guest != nil {
		if err := bk.UpdateGuest(*req.Guest); err != nil {
			return nil, err
		}
	}
	if req.TotalCents != nil {
		if err := bk.SetTotal(*req.TotalCents); err != nil {
			return nil, err
		}
	}
	if req.PaymentMethod != nil {
		bk.SetPaymentMethod(*req.PaymentMethod)
	}
	if req.Notes != nil {
		bk.SetNotes(*req.Notes)
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// DeleteBooking removes a booking owned by the caller.
func (s *BookingService) DeleteBooking(ctx context.Context, ownerID, bookingID uuid.UUID) error {
	if _, err := s.ownedBooking(ctx, ownerID, bookingID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, bookingID)
}

// GetBooking retrieves a single booking owned by the caller.
func (s *BookingService) GetBooking(ctx context.Context, ownerID, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.ownedBooking(ctx, ownerID, bookingID)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// ListBookings retrieves the caller's bookings with pagination.
func (s *BookingService) ListBookings(ctx context.Context, ownerID uuid.UUID, filter bookingDomain.ListFilter, page, limit int) (*shared.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByOwner(ctx, ownerID, filter, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}

	result := shared.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// ValidateStay checks a candidate date range against the property's
// non-cancelled bookings without persisting anything.
func (s *BookingService) ValidateStay(ctx context.Context, ownerID uuid.UUID, req ValidateStayRequest) (*bookingDomain.StayValidation, error) {
	excludeID := uuid.Nil
	if req.ExcludeBookingID != nil {
		excludeID = *req.ExcludeBookingID
	}

	var existing []*bookingDomain.Booking
	if req.PropertyID != nil {
		if _, err := s.ownedProperty(ctx, ownerID, *req.PropertyID); err != nil {
			return nil, err
		}
		var err error
		existing, err = s.repo.FindByProperty(ctx, *req.PropertyID)
		if err != nil {
			return nil, err
		}
	}

	result := bookingDomain.ValidateStay(req.CheckIn, req.CheckOut, excludeID, existing)
	return &result, nil
}

// AvailableActions returns the manual actions and due auto-transitions for a
// booking. Unknown statuses yield empty lists, never an error.
func (s *BookingService) AvailableActions(ctx context.Context, ownerID, bookingID uuid.UUID) (*BookingActionsDTO, error) {
	bk, err := s.ownedBooking(ctx, ownerID, bookingID)
	if err != nil {
		return nil, err
	}

	today := bookingDomain.DateOnly(time.Now())
	return &BookingActionsDTO{
		Status:          string(bk.Status()),
		StatusInfo:      bk.Status().Describe(),
		Actions:         bookingDomain.AvailableActions(bk.Status()),
		AutoTransitions: bookingDomain.AutoTransitions(bk.Status(), bk.CheckIn(), bk.CheckOut(), today),
	}, nil
}

// ExecuteAction performs a manual workflow action. Actions flagged as
// requiring confirmation are rejected unless confirmed is true. The new
// status is persisted before the caller sees the updated booking; a storage
// failure leaves the stored record untouched.
func (s *BookingService) ExecuteAction(ctx context.Context, ownerID, bookingID uuid.UUID, actionID string, confirmed bool) (*BookingDTO, error) {
	bk, err := s.ownedBooking(ctx, ownerID, bookingID)
	if err != nil {
		return nil, err
	}

	action, ok := bookingDomain.ActionByID(bk.Status(), actionID)
	if !ok {
		return nil, shared.NewInvalidStateError(string(bk.Status()), actionID)
	}
	if action.RequiresConfirmation && !confirmed {
		return nil, shared.NewValidationError(fmt.Sprintf("action %q requires confirmation", action.ID))
	}

	from := bk.Status()
	if err := bk.TransitionTo(action.To); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishStatusChanged(ctx, bk, from, false)

	result := toBookingDTO(bk)
	return &result, nil
}

// RunAutoTransitions applies every due time-driven transition for a booking,
// one persisted step at a time, and returns the final state.
func (s *BookingService) RunAutoTransitions(ctx context.Context, ownerID, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.ownedBooking(ctx, ownerID, bookingID)
	if err != nil {
		return nil, err
	}

	today := bookingDomain.DateOnly(time.Now())
	// A booking can be at most two steps behind (check-in then check-out).
	for i := 0; i < 3; i++ {
		due := bookingDomain.AutoTransitions(bk.Status(), bk.CheckIn(), bk.CheckOut(), today)
		if len(due) == 0 {
			break
		}

		from := bk.Status()
		if err := bk.TransitionTo(due[0].To); err != nil {
			return nil, err
		}
		bk.IncrementVersion()
		if err := s.repo.Update(ctx, bk); err != nil {
			return nil, err
		}
		s.publishStatusChanged(ctx, bk, from, true)
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// MonthlyStats rolls up the caller's bookings per calendar month. A nil year
// covers the full history.
func (s *BookingService) MonthlyStats(ctx context.Context, ownerID uuid.UUID, year *int) ([]bookingDomain.MonthlyStat, error) {
	bookings, err := s.repo.FindAllByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if year != nil {
		return bookingDomain.StatsForYear(bookings, *year), nil
	}
	return bookingDomain.MonthlyStats(bookings), nil
}

// --- Admin methods ---

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos, total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &BookingStatsDTO{TotalBookings: total, ByStatus: counts}, nil
}

// --- Helpers ---

// ownedBooking loads a booking and verifies ownership. Foreign bookings are
// reported as not found so ids cannot be probed.
func (s *BookingService) ownedBooking(ctx context.Context, ownerID, bookingID uuid.UUID) (*bookingDomain.Booking, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.OwnerID() != ownerID {
		return nil, shared.NewNotFoundError("booking", bookingID.String())
	}
	return bk, nil
}

func (s *BookingService) ownedProperty(ctx context.Context, ownerID, propertyID uuid.UUID) (*propertyDomain.Property, error) {
	prop, err := s.propertyRepo.FindByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if prop.OwnerID() != ownerID {
		return nil, shared.NewNotFoundError("property", propertyID.String())
	}
	return prop, nil
}

// guardOverlap enforces the overlap invariant server-side before any write.
// Bookings without a property only get the range-ordering check.
func (s *BookingService) guardOverlap(ctx context.Context, propertyID *uuid.UUID, checkIn, checkOut time.Time, excludeID uuid.UUID) error {
	var existing []*bookingDomain.Booking
	if propertyID != nil {
		var err error
		existing, err = s.repo.FindOverlapping(ctx, *propertyID, bookingDomain.DateOnly(checkIn), bookingDomain.DateOnly(checkOut), excludeID)
		if err != nil {
			return err
		}
	}

	result := bookingDomain.ValidateStay(checkIn, checkOut, excludeID, existing)
	if !result.Conflict {
		return nil
	}

	switch result.Reason {
	case bookingDomain.ReasonInvalidRange:
		return shared.NewValidationError("check-out must be after check-in")
	default:
		names := make([]string, len(result.Conflicts))
		for i, c := range result.Conflicts {
			names[i] = fmt.Sprintf("%s (%s to %s)", c.GuestName,
				c.CheckIn.Format("2006-01-02"), c.CheckOut.Format("2006-01-02"))
		}
		return shared.NewConflictError("dates overlap existing bookings: " + strings.Join(names, ", "))
	}
}

func (s *BookingService) publishStatusChanged(ctx context.Context, bk *bookingDomain.Booking, from bookingDomain.Status, automatic bool) {
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingStatusChanged, events.BookingStatusChangedEvent{
		BookingID:  bk.ID(),
		OwnerID:    bk.OwnerID(),
		From:       string(from),
		To:         string(bk.Status()),
		Automatic:  automatic,
		OccurredAt: time.Now().UTC(),
	})

	if bk.Status() == bookingDomain.StatusCancelled {
		s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCancelled, events.BookingCancelledEvent{
			BookingID:  bk.ID(),
			OwnerID:    bk.OwnerID(),
			CheckIn:    bk.CheckIn(),
			CheckOut:   bk.CheckOut(),
			OccurredAt: time.Now().UTC(),
		})
	}
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent("service-booking", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:            bk.ID(),
		OwnerID:       bk.OwnerID(),
		PropertyID:    bk.PropertyID(),
		Guest:         bk.Guest(),
		BookingDate:   bk.BookingDate(),
		CheckIn:       bk.CheckIn(),
		CheckOut:      bk.CheckOut(),
		Nights:        bk.Nights(),
		TotalCents:    bk.TotalCents(),
		PaymentMethod: bk.PaymentMethod(),
		Status:        string(bk.Status()),
		StatusInfo:    bk.Status().Describe(),
		IsHistorical:  bk.IsHistorical(),
		Notes:         bk.Notes(),
		CheckedInAt:   bk.CheckedInAt(),
		CheckedOutAt:  bk.CheckedOutAt(),
		CancelledAt:   bk.CancelledAt(),
		Version:       bk.Version(),
		CreatedAt:     bk.CreatedAt(),
		UpdatedAt:     bk.UpdatedAt(),
	}
}

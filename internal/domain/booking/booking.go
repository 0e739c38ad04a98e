package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pousadapro/service-booking/internal/domain/shared"
)

// Booking is the aggregate root for the booking domain. Check-in and
// check-out are calendar dates (UTC midnight); a booking optionally belongs
// to one property.
type Booking struct {
	id          uuid.UUID
	ownerID     uuid.UUID
	propertyID  *uuid.UUID
	guest       Guest
	bookingDate time.Time
	checkIn     time.Time
	checkOut    time.Time

	totalCents    int64
	paymentMethod string

	status       Status
	isHistorical bool
	notes        string

	checkedInAt  *time.Time
	checkedOutAt *time.Time
	cancelledAt  *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// DateOnly truncates a timestamp to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NewBooking creates a new Booking aggregate with status=requested.
// Historical bookings are exempt from the forward-looking check-in minimum
// so hosts can backfill stays that already happened.
func NewBooking(
	ownerID uuid.UUID,
	propertyID *uuid.UUID,
	guest Guest,
	checkIn time.Time,
	checkOut time.Time,
	totalCents int64,
	paymentMethod string,
	isHistorical bool,
	notes string,
) (*Booking, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewValidationError("owner ID is required")
	}
	if err := guest.Validate(); err != nil {
		return nil, err
	}

	checkIn = DateOnly(checkIn)
	checkOut = DateOnly(checkOut)
	if !checkOut.After(checkIn) {
		return nil, shared.NewValidationError("check-out must be after check-in")
	}
	if totalCents < 0 {
		return nil, shared.NewValidationError("total value cannot be negative")
	}

	today := DateOnly(time.Now())
	if !isHistorical && checkIn.Before(today) {
		return nil, shared.NewValidationError(
			fmt.Sprintf("check-in %s is in the past; flag the booking as historical to backfill it",
				checkIn.Format("2006-01-02")),
		)
	}

	now := time.Now().UTC()
	return &Booking{
		id:            uuid.New(),
		ownerID:       ownerID,
		propertyID:    propertyID,
		guest:         guest,
		bookingDate:   DateOnly(now),
		checkIn:       checkIn,
		checkOut:      checkOut,
		totalCents:    totalCents,
		paymentMethod: paymentMethod,
		status:        StatusRequested,
		isHistorical:  isHistorical,
		notes:         notes,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no
// validation). The status is kept as stored even when unrecognized so a
// corrupted record still renders, with zero available actions.
func ReconstructBooking(
	id uuid.UUID,
	ownerID uuid.UUID,
	propertyID *uuid.UUID,
	guest Guest,
	bookingDate time.Time,
	checkIn time.Time,
	checkOut time.Time,
	totalCents int64,
	paymentMethod string,
	status Status,
	isHistorical bool,
	notes string,
	checkedInAt *time.Time,
	checkedOutAt *time.Time,
	cancelledAt *time.Time,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:            id,
		ownerID:       ownerID,
		propertyID:    propertyID,
		guest:         guest,
		bookingDate:   bookingDate,
		checkIn:       checkIn,
		checkOut:      checkOut,
		totalCents:    totalCents,
		paymentMethod: paymentMethod,
		status:        status,
		isHistorical:  isHistorical,
		notes:         notes,
		checkedInAt:   checkedInAt,
		checkedOutAt:  checkedOutAt,
		cancelledAt:   cancelledAt,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// OwnerID returns the owning host's user ID.
func (b *Booking) OwnerID() uuid.UUID { return b.ownerID }

// PropertyID returns the associated property's ID, or nil for ungrouped
// bookings.
func (b *Booking) PropertyID() *uuid.UUID { return b.propertyID }

// Guest returns the guest contact details.
func (b *Booking) Guest() Guest { return b.guest }

// BookingDate returns the calendar date the booking was recorded.
func (b *Booking) BookingDate() time.Time { return b.bookingDate }

// CheckIn returns the check-in date.
func (b *Booking) CheckIn() time.Time { return b.checkIn }

// CheckOut returns the check-out date.
func (b *Booking) CheckOut() time.Time { return b.checkOut }

// Nights returns the stay length in nights.
func (b *Booking) Nights() int {
	return int(b.checkOut.Sub(b.checkIn).Hours() / 24)
}

// TotalCents returns the booking value in cents.
func (b *Booking) TotalCents() int64 { return b.totalCents }

// PaymentMethod returns the free-form payment method tag.
func (b *Booking) PaymentMethod() string { return b.paymentMethod }

// Status returns the current booking status.
func (b *Booking) Status() Status { return b.status }

// IsHistorical reports whether the booking was recorded retroactively.
func (b *Booking) IsHistorical() bool { return b.isHistorical }

// Notes returns the free-text notes.
func (b *Booking) Notes() string { return b.notes }

// CheckedInAt returns when the guest checked in, or nil.
func (b *Booking) CheckedInAt() *time.Time { return b.checkedInAt }

// CheckedOutAt returns when the guest checked out, or nil.
func (b *Booking) CheckedOutAt() *time.Time { return b.checkedOutAt }

// CancelledAt returns when the booking was cancelled, or nil.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// TransitionTo moves the booking to the target status if the workflow
// allows it, stamping the lifecycle timestamps on the way.
func (b *Booking) TransitionTo(target Status) error {
	if !b.status.CanTransitionTo(target) {
		return shared.NewInvalidStateError(string(b.status), string(target))
	}

	now := time.Now().UTC()
	switch target {
	case StatusCheckedIn:
		b.checkedInAt = &now
	case StatusCheckedOut:
		b.checkedOutAt = &now
	case StatusCancelled:
		b.cancelledAt = &now
	}
	b.status = target
	b.updatedAt = now
	return nil
}

// Reschedule changes the stay dates. Overlap against sibling bookings is the
// caller's responsibility; only date ordering is enforced here.
func (b *Booking) Reschedule(checkIn, checkOut time.Time) error {
	checkIn = DateOnly(checkIn)
	checkOut = DateOnly(checkOut)
	if !checkOut.After(checkIn) {
		return shared.NewValidationError("check-out must be after check-in")
	}
	b.checkIn = checkIn
	b.checkOut = checkOut
	b.updatedAt = time.Now().UTC()
	return nil
}

// UpdateGuest replaces the guest details after validating required fields.
func (b *Booking) UpdateGuest(guest Guest) error {
	if err := guest.Validate(); err != nil {
		return err
	}
	b.guest = guest
	b.updatedAt = time.Now().UTC()
	return nil
}

// SetTotal updates the booking value.
func (b *Booking) SetTotal(totalCents int64) error {
	if totalCents < 0 {
		return shared.NewValidationError("total value cannot be negative")
	}
	b.totalCents = totalCents
	b.updatedAt = time.Now().UTC()
	return nil
}

// SetPaymentMethod updates the payment method tag.
func (b *Booking) SetPaymentMethod(method string) {
	b.paymentMethod = method
	b.updatedAt = time.Now().UTC()
}

// SetNotes updates the free-text notes.
func (b *Booking) SetNotes(notes string) {
	b.notes = notes
	b.updatedAt = time.Now().UTC()
}

// SetProperty re-associates the booking with a property (or nil to ungroup).
func (b *Booking) SetProperty(propertyID *uuid.UUID) {
	b.propertyID = propertyID
	b.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}

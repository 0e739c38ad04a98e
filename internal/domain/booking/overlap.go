package booking

import (
	"time"

	"github.com/google/uuid"
)

// ConflictReason explains why a candidate stay was rejected.
type ConflictReason string

const (
	ReasonInvalidRange ConflictReason = "invalid_range"
	ReasonDateOverlap  ConflictReason = "date_overlap"
)

// ConflictingStay describes an existing booking that blocks a candidate
// range, carrying what a form needs to render the conflict inline.
type ConflictingStay struct {
	BookingID uuid.UUID `json:"booking_id"`
	GuestName string    `json:"guest_name"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
}

// StayValidation is the result of checking a candidate date range.
type StayValidation struct {
	Conflict  bool              `json:"conflict"`
	Reason    ConflictReason    `json:"reason,omitempty"`
	Conflicts []ConflictingStay `json:"conflicts,omitempty"`
}

// ValidateStay decides whether a candidate [checkIn, checkOut) range may be
// saved against the given set of existing bookings for the same property.
// excludeID skips a booking so an edit does not conflict with itself; pass
// uuid.Nil for new bookings. Cancelled bookings never block.
//
// The boundary test is inclusive at both ends: a stay ending the day another
// begins counts as a conflict. Back-to-back turnovers need the conservative
// rule because same-day cleaning is not guaranteed.
func ValidateStay(checkIn, checkOut time.Time, excludeID uuid.UUID, existing []*Booking) StayValidation {
	checkIn = DateOnly(checkIn)
	checkOut = DateOnly(checkOut)

	if !checkOut.After(checkIn) {
		return StayValidation{Conflict: true, Reason: ReasonInvalidRange}
	}

	var conflicts []ConflictingStay
	for _, b := range existing {
		if b.ID() == excludeID || b.Status() == StatusCancelled {
			continue
		}
		if rangesOverlap(checkIn, checkOut, b.CheckIn(), b.CheckOut()) {
			conflicts = append(conflicts, ConflictingStay{
				BookingID: b.ID(),
				GuestName: b.Guest().Name,
				CheckIn:   b.CheckIn(),
				CheckOut:  b.CheckOut(),
			})
		}
	}

	if len(conflicts) > 0 {
		return StayValidation{Conflict: true, Reason: ReasonDateOverlap, Conflicts: conflicts}
	}
	return StayValidation{}
}

// rangesOverlap reports whether the candidate range touches the existing
// one: either candidate endpoint inside the inclusive existing range, or the
// candidate strictly containing it.
func rangesOverlap(newIn, newOut, existingIn, existingOut time.Time) bool {
	if withinInclusive(newIn, existingIn, existingOut) {
		return true
	}
	if withinInclusive(newOut, existingIn, existingOut) {
		return true
	}
	return newIn.Before(existingIn) && newOut.After(existingOut)
}

func withinInclusive(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

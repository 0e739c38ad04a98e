package booking

import "time"

// Status represents the current state of a booking in its lifecycle.
type Status string

const (
	StatusRequested  Status = "requested"
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusCheckedIn  Status = "checked_in"
	StatusActive     Status = "active"
	StatusCheckedOut Status = "checked_out"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// validTransitions defines the state machine for booking status transitions.
// Cancellation is reachable from every non-terminal state.
var validTransitions = map[Status][]Status{
	StatusRequested:  {StatusPending, StatusConfirmed, StatusCancelled},
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusCheckedIn, StatusCancelled},
	StatusCheckedIn:  {StatusActive, StatusCheckedOut, StatusCancelled},
	StatusActive:     {StatusCheckedOut, StatusCancelled},
	StatusCheckedOut: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// ActiveStatuses is the set of statuses considered to occupy a property.
// Bookings in these statuses block property deletion and count toward
// overlap checks and statistics.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed, StatusCheckedIn, StatusActive}

// IsValid returns true if the status is a recognized booking status.
func (s Status) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the
// target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible. Unknown
// statuses are treated as terminal so corrupted records offer no actions.
func (s Status) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// IsActive returns true if the status occupies the property.
func (s Status) IsActive() bool {
	for _, a := range ActiveStatuses {
		if s == a {
			return true
		}
	}
	return false
}

// IsOccupying returns true if the guest is on-site in this status.
func (s Status) IsOccupying() bool {
	return s == StatusCheckedIn || s == StatusActive
}

// CountsTowardRevenue returns true if the booking's value is included in
// revenue roll-ups and client aggregation.
func (s Status) CountsTowardRevenue() bool {
	return s.IsActive() || s == StatusCheckedOut || s == StatusCompleted
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Descriptor holds the presentational metadata for a status.
type Descriptor struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

var descriptors = map[Status]Descriptor{
	StatusRequested:  {Label: "Requested", Description: "Guest asked for these dates; awaiting triage", Category: "neutral"},
	StatusPending:    {Label: "Pending", Description: "Held for the guest, awaiting confirmation", Category: "warning"},
	StatusConfirmed:  {Label: "Confirmed", Description: "Dates are reserved for the guest", Category: "success"},
	StatusCheckedIn:  {Label: "Checked in", Description: "Guest has arrived at the property", Category: "info"},
	StatusActive:     {Label: "Staying", Description: "Stay in progress", Category: "info"},
	StatusCheckedOut: {Label: "Checked out", Description: "Guest has left; pending wrap-up", Category: "neutral"},
	StatusCompleted:  {Label: "Completed", Description: "Stay finished and settled", Category: "success"},
	StatusCancelled:  {Label: "Cancelled", Description: "Booking was cancelled", Category: "danger"},
}

// unknownDescriptor is rendered for stale or corrupted status strings so the
// viewing session never crashes on bad data.
var unknownDescriptor = Descriptor{
	Label:       "Unknown",
	Description: "Unrecognized booking status",
	Category:    "neutral",
}

// Describe returns the display metadata for the status, falling back to a
// neutral descriptor for unrecognized values.
func (s Status) Describe() Descriptor {
	if d, ok := descriptors[s]; ok {
		return d
	}
	return unknownDescriptor
}

// Action is a user-facing operation that moves a booking to a specific next
// status. Destructive actions require an explicit confirmation step.
type Action struct {
	ID                   string `json:"id"`
	Label                string `json:"label"`
	Description          string `json:"description"`
	To                   Status `json:"to"`
	RequiresConfirmation bool   `json:"requires_confirmation"`
}

// actionCatalog maps each destination status to its manual action.
var actionCatalog = map[Status]Action{
	StatusPending:    {ID: "hold", Label: "Place on hold", Description: "Hold the dates while the guest decides", To: StatusPending},
	StatusConfirmed:  {ID: "confirm", Label: "Confirm", Description: "Reserve the dates for the guest", To: StatusConfirmed},
	StatusCheckedIn:  {ID: "check_in", Label: "Check in", Description: "Register the guest's arrival", To: StatusCheckedIn},
	StatusActive:     {ID: "begin_stay", Label: "Begin stay", Description: "Mark the stay as in progress", To: StatusActive},
	StatusCheckedOut: {ID: "check_out", Label: "Check out", Description: "Register the guest's departure", To: StatusCheckedOut},
	StatusCompleted:  {ID: "complete", Label: "Complete", Description: "Close out the stay", To: StatusCompleted},
	StatusCancelled:  {ID: "cancel", Label: "Cancel", Description: "Cancel the booking and free the dates", To: StatusCancelled, RequiresConfirmation: true},
}

// AvailableActions returns the manual actions allowed from the given status.
// Terminal and unknown statuses yield an empty list, never an error.
func AvailableActions(s Status) []Action {
	allowed := validTransitions[s]
	actions := make([]Action, 0, len(allowed))
	for _, target := range allowed {
		if a, ok := actionCatalog[target]; ok {
			actions = append(actions, a)
		}
	}
	return actions
}

// ActionByID resolves an action id against the actions available from the
// given status.
func ActionByID(s Status, id string) (Action, bool) {
	for _, a := range AvailableActions(s) {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}

// AutoTransitions returns the time-driven transitions due for a booking,
// comparing today against its check-in/check-out dates. The result is a
// proposal: callers execute it explicitly, nothing fires unattended.
func AutoTransitions(s Status, checkIn, checkOut, today time.Time) []Action {
	var due []Action
	switch {
	case s == StatusConfirmed && !today.Before(checkIn):
		due = append(due, actionCatalog[StatusCheckedIn])
	case s.IsOccupying() && !today.Before(checkOut):
		due = append(due, actionCatalog[StatusCheckedOut])
	}
	return due
}

// ParseStatus converts a string to a Status, reporting whether it is a
// recognized state. Callers rendering stored data should treat unknown
// statuses as action-less rather than failing.
func ParseStatus(s string) (Status, bool) {
	status := Status(s)
	return status, status.IsValid()
}

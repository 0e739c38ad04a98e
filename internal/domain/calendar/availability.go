package calendar

import (
	"sort"
	"time"

	"github.com/pousadapro/service-booking/internal/domain/booking"
)

// BusySource tells a calendar view where a busy range came from.
type BusySource string

const (
	SourceBooking  BusySource = "booking"
	SourceExternal BusySource = "external"
)

// BusyRange is one occupied span on a property's availability calendar.
type BusyRange struct {
	Source    BusySource `json:"source"`
	Reference string     `json:"reference"`
	Summary   string     `json:"summary"`
	Start     time.Time  `json:"start"`
	End       time.Time  `json:"end"`
}

// Availability merges a property's own active bookings with its imported
// external bookings into one sorted busy-range list for calendar rendering.
// External ranges are display-only and are not consulted by the overlap
// validator.
func Availability(bookings []*booking.Booking, external []ExternalBooking) []BusyRange {
	busy := make([]BusyRange, 0, len(bookings)+len(external))

	for _, b := range bookings {
		if !b.Status().IsActive() {
			continue
		}
		busy = append(busy, BusyRange{
			Source:    SourceBooking,
			Reference: b.ID().String(),
			Summary:   b.Guest().Name,
			Start:     b.CheckIn(),
			End:       b.CheckOut(),
		})
	}

	for _, e := range external {
		busy = append(busy, BusyRange{
			Source:    SourceExternal,
			Reference: e.ExternalUID,
			Summary:   e.Summary,
			Start:     e.Start,
			End:       e.End,
		})
	}

	sort.Slice(busy, func(i, j int) bool {
		if !busy[i].Start.Equal(busy[j].Start) {
			return busy[i].Start.Before(busy[j].Start)
		}
		return busy[i].Reference < busy[j].Reference
	})
	return busy
}

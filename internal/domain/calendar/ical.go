package calendar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pousadapro/service-booking/internal/domain/booking"
	"github.com/pousadapro/service-booking/internal/domain/property"
)

const (
	icalProdID = "-//PousadaPro//Booking Service//EN"
	icalDomain = "pousadapro.com"
)

// exportable reports whether a booking is published to external calendars:
// reserved or on-site, not yet checked out.
func exportable(s booking.Status) bool {
	return s == booking.StatusConfirmed || s == booking.StatusCheckedIn || s == booking.StatusActive
}

// Feed renders the iCal feed for one property. One whole-day VEVENT per
// exportable booking, sorted by check-in ascending, CRLF line endings
// throughout. DTEND uses the RFC 5545 exclusive whole-day convention, so it
// equals the check-out date as stored.
func Feed(prop *property.Property, bookings []*booking.Booking) string {
	stays := make([]*booking.Booking, 0, len(bookings))
	for _, b := range bookings {
		if exportable(b.Status()) {
			stays = append(stays, b)
		}
	}
	sort.Slice(stays, func(i, j int) bool {
		if !stays[i].CheckIn().Equal(stays[j].CheckIn()) {
			return stays[i].CheckIn().Before(stays[j].CheckIn())
		}
		return stays[i].ID().String() < stays[j].ID().String()
	})

	var sb strings.Builder
	writeLine := func(line string) {
		sb.WriteString(line)
		sb.WriteString("\r\n")
	}

	writeLine("BEGIN:VCALENDAR")
	writeLine("VERSION:2.0")
	writeLine("PRODID:" + icalProdID)
	writeLine("CALSCALE:GREGORIAN")
	writeLine("X-WR-CALNAME:" + escapeText(prop.Name()))

	for _, b := range stays {
		writeLine("BEGIN:VEVENT")
		writeLine(fmt.Sprintf("UID:%s@%s", b.ID(), icalDomain))
		writeLine("DTSTAMP:" + b.UpdatedAt().UTC().Format("20060102T150405Z"))
		writeLine("DTSTART;VALUE=DATE:" + b.CheckIn().Format("20060102"))
		writeLine("DTEND;VALUE=DATE:" + b.CheckOut().Format("20060102"))
		writeLine("SUMMARY:" + escapeText(fmt.Sprintf("Reserved - %s", b.Guest().Name)))
		if b.Notes() != "" {
			writeLine("DESCRIPTION:" + escapeText(b.Notes()))
		}
		writeLine("END:VEVENT")
	}

	writeLine("END:VCALENDAR")
	return sb.String()
}

// escapeText applies RFC 5545 text escaping: backslash, semicolon, comma and
// newlines.
func escapeText(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
	)
	return r.Replace(s)
}

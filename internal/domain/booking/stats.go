package booking

import (
	"sort"
	"time"
)

// MonthlyStat is the per-calendar-month roll-up shown on the dashboard.
type MonthlyStat struct {
	Month        string `json:"month"`
	Bookings     int    `json:"bookings"`
	Nights       int    `json:"nights"`
	RevenueCents int64  `json:"revenue_cents"`
}

// MonthlyStats aggregates bookings by check-in month. Cancelled bookings are
// skipped entirely; revenue counts only confirmed-equivalent statuses.
// Results are sorted by month ascending.
func MonthlyStats(bookings []*Booking) []MonthlyStat {
	byMonth := make(map[string]*MonthlyStat)
	for _, b := range bookings {
		if b.Status() == StatusCancelled {
			continue
		}
		key := b.CheckIn().Format("2006-01")
		stat, ok := byMonth[key]
		if !ok {
			stat = &MonthlyStat{Month: key}
			byMonth[key] = stat
		}
		stat.Bookings++
		stat.Nights += b.Nights()
		if b.Status().CountsTowardRevenue() {
			stat.RevenueCents += b.TotalCents()
		}
	}

	result := make([]MonthlyStat, 0, len(byMonth))
	for _, stat := range byMonth {
		result = append(result, *stat)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Month < result[j].Month })
	return result
}

// StatsForYear filters the roll-up to a single year.
func StatsForYear(bookings []*Booking, year int) []MonthlyStat {
	var filtered []*Booking
	for _, b := range bookings {
		if b.CheckIn().Year() == year {
			filtered = append(filtered, b)
		}
	}
	return MonthlyStats(filtered)
}

// SuggestTotalCents estimates a stay's value from the property's default
// daily rate. Used to prefill the booking form; hosts can override it.
func SuggestTotalCents(checkIn, checkOut time.Time, dailyRateCents int64) int64 {
	nights := int64(DateOnly(checkOut).Sub(DateOnly(checkIn)).Hours() / 24)
	if nights <= 0 || dailyRateCents <= 0 {
		return 0
	}
	return nights * dailyRateCents
}

// Package client derives guest profiles from booking history. Clients are a
// pure projection: recomputed from the booking collection on every read,
// never persisted, so they cannot drift from the booking records.
package client

import (
	"sort"
	"strings"
	"time"

	"github.com/pousadapro/service-booking/internal/domain/booking"
)

const recurringThreshold = 3

// Tag labels a derived client segment.
type Tag string

const (
	TagRecurring Tag = "recurring"
	TagVIP       Tag = "vip"
)

// Client is an aggregated view of one guest across a host's bookings.
type Client struct {
	Key          string    `json:"key"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	Email        string    `json:"email,omitempty"`
	City         string    `json:"city,omitempty"`
	State        string    `json:"state,omitempty"`
	Bookings     int       `json:"bookings"`
	RevenueCents int64     `json:"revenue_cents"`
	FirstStay    time.Time `json:"first_stay"`
	LastStay     time.Time `json:"last_stay"`
	Tags         []Tag     `json:"tags,omitempty"`
}

// groupKey builds the client identity: phone, else email, else lowercased
// name. Guests without any of the three are skipped upstream by booking
// validation (name is required).
func groupKey(g booking.Guest) string {
	if p := strings.TrimSpace(g.Phone); p != "" {
		return "phone:" + p
	}
	if e := strings.TrimSpace(strings.ToLower(g.Email)); e != "" {
		return "email:" + e
	}
	return "name:" + strings.TrimSpace(strings.ToLower(g.Name))
}

// Project groups a host's bookings into derived clients. Revenue counts
// confirmed-equivalent bookings only; cancelled bookings still count toward
// the visit history but contribute no revenue. vipRevenueCents sets the VIP
// tag threshold. Results are sorted by revenue descending.
func Project(bookings []*booking.Booking, vipRevenueCents int64) []Client {
	byKey := make(map[string]*Client)

	for _, b := range bookings {
		key := groupKey(b.Guest())
		c, ok := byKey[key]
		if !ok {
			g := b.Guest()
			c = &Client{
				Key:       key,
				Name:      g.Name,
				Phone:     g.Phone,
				Email:     g.Email,
				City:      g.City,
				State:     g.State,
				FirstStay: b.CheckIn(),
				LastStay:  b.CheckIn(),
			}
			byKey[key] = c
		}

		c.Bookings++
		if b.Status().CountsTowardRevenue() {
			c.RevenueCents += b.TotalCents()
		}
		if b.CheckIn().Before(c.FirstStay) {
			c.FirstStay = b.CheckIn()
		}
		if b.CheckIn().After(c.LastStay) {
			c.LastStay = b.CheckIn()
			// Latest booking wins for contact details.
			g := b.Guest()
			c.Name = g.Name
			if g.Phone != "" {
				c.Phone = g.Phone
			}
			if g.Email != "" {
				c.Email = g.Email
			}
		}
	}

	clients := make([]Client, 0, len(byKey))
	for _, c := range byKey {
		if c.Bookings >= recurringThreshold {
			c.Tags = append(c.Tags, TagRecurring)
		}
		if vipRevenueCents > 0 && c.RevenueCents >= vipRevenueCents {
			c.Tags = append(c.Tags, TagVIP)
		}
		clients = append(clients, *c)
	}

	sort.Slice(clients, func(i, j int) bool {
		if clients[i].RevenueCents != clients[j].RevenueCents {
			return clients[i].RevenueCents > clients[j].RevenueCents
		}
		return clients[i].Key < clients[j].Key
	})
	return clients
}

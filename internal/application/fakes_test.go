package application

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/pousadapro/service-booking/internal/domain/booking"
	calendarDomain "github.com/pousadapro/service-booking/internal/domain/calendar"
	propertyDomain "github.com/pousadapro/service-booking/internal/domain/property"
	"github.com/pousadapro/service-booking/internal/domain/shared"
	"github.com/pousadapro/service-booking/internal/platform/kafka"
)

// fakePublisher captures published events instead of touching Kafka.
type fakePublisher struct {
	events []publishedEvent
}

type publishedEvent struct {
	Topic string
	Event *kafka.CloudEvent
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic string, event *kafka.CloudEvent) error {
	p.events = append(p.events, publishedEvent{Topic: topic, Event: event})
	return nil
}

func (p *fakePublisher) byType(eventType string) []*kafka.CloudEvent {
	var out []*kafka.CloudEvent
	for _, e := range p.events {
		if e.Event.Type == eventType {
			out = append(out, e.Event)
		}
	}
	return out
}

// fakeBookingRepo is an in-memory booking.Repository.
type fakeBookingRepo struct {
	bookings map[uuid.UUID]*bookingDomain.Booking
	// updateErr, when set, is returned by Update to simulate storage failure.
	updateErr error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*bookingDomain.Booking)}
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, shared.NewNotFoundError("booking", id.String())
	}
	return b, nil
}

func (r *fakeBookingRepo) FindByOwner(_ context.Context, ownerID uuid.UUID, filter bookingDomain.ListFilter, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var all []*bookingDomain.Booking
	for _, b := range r.bookings {
		if b.OwnerID() != ownerID {
			continue
		}
		if filter.Historical != nil && b.IsHistorical() != *filter.Historical {
			continue
		}
		if filter.PropertyID != nil && (b.PropertyID() == nil || *b.PropertyID() != *filter.PropertyID) {
			continue
		}
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CheckIn().After(all[j].CheckIn()) })

	total := int64(len(all))
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *fakeBookingRepo) FindAllByOwner(_ context.Context, ownerID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var all []*bookingDomain.Booking
	for _, b := range r.bookings {
		if b.OwnerID() == ownerID {
			all = append(all, b)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CheckIn().Before(all[j].CheckIn()) })
	return all, nil
}

func (r *fakeBookingRepo) FindByProperty(_ context.Context, propertyID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var all []*bookingDomain.Booking
	for _, b := range r.bookings {
		if b.PropertyID() != nil && *b.PropertyID() == propertyID {
			all = append(all, b)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CheckIn().Before(all[j].CheckIn()) })
	return all, nil
}

func (r *fakeBookingRepo) FindOverlapping(_ context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time, excludeID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var all []*bookingDomain.Booking
	for _, b := range r.bookings {
		if b.PropertyID() == nil || *b.PropertyID() != propertyID {
			continue
		}
		if b.ID() == excludeID || b.Status() == bookingDomain.StatusCancelled {
			continue
		}
		if !b.CheckIn().After(checkOut) && !b.CheckOut().Before(checkIn) {
			all = append(all, b)
		}
	}
	return all, nil
}

func (r *fakeBookingRepo) CountActiveByProperty(_ context.Context, propertyID uuid.UUID) (int64, error) {
	var count int64
	for _, b := range r.bookings {
		if b.PropertyID() != nil && *b.PropertyID() == propertyID && b.Status().IsActive() {
			count++
		}
	}
	return count, nil
}

func (r *fakeBookingRepo) ListAll(_ context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var all []*bookingDomain.Booking
	for _, b := range r.bookings {
		all = append(all, b)
	}
	return all, int64(len(all)), nil
}

func (r *fakeBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, b := range r.bookings {
		counts[string(b.Status())]++
	}
	return counts, nil
}

func (r *fakeBookingRepo) Save(_ context.Context, b *bookingDomain.Booking) error {
	r.bookings[b.ID()] = b
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, b *bookingDomain.Booking) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.bookings[b.ID()]; !ok {
		return shared.NewNotFoundError("booking", b.ID().String())
	}
	r.bookings[b.ID()] = b
	return nil
}

func (r *fakeBookingRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.bookings[id]; !ok {
		return shared.NewNotFoundError("booking", id.String())
	}
	delete(r.bookings, id)
	return nil
}

// fakePropertyRepo is an in-memory property.Repository.
type fakePropertyRepo struct {
	properties map[uuid.UUID]*propertyDomain.Property
}

func newFakePropertyRepo() *fakePropertyRepo {
	return &fakePropertyRepo{properties: make(map[uuid.UUID]*propertyDomain.Property)}
}

func (r *fakePropertyRepo) FindByID(_ context.Context, id uuid.UUID) (*propertyDomain.Property, error) {
	p, ok := r.properties[id]
	if !ok {
		return nil, shared.NewNotFoundError("property", id.String())
	}
	return p, nil
}

func (r *fakePropertyRepo) FindByOwner(_ context.Context, ownerID uuid.UUID) ([]*propertyDomain.Property, error) {
	var all []*propertyDomain.Property
	for _, p := range r.properties {
		if p.OwnerID() == ownerID {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name() < all[j].Name() })
	return all, nil
}

func (r *fakePropertyRepo) CountByOwner(_ context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	for _, p := range r.properties {
		if p.OwnerID() == ownerID {
			count++
		}
	}
	return count, nil
}

func (r *fakePropertyRepo) Save(_ context.Context, p *propertyDomain.Property) error {
	r.properties[p.ID()] = p
	return nil
}

func (r *fakePropertyRepo) Update(_ context.Context, p *propertyDomain.Property) error {
	if _, ok := r.properties[p.ID()]; !ok {
		return shared.NewNotFoundError("property", p.ID().String())
	}
	r.properties[p.ID()] = p
	return nil
}

func (r *fakePropertyRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.properties[id]; !ok {
		return shared.NewNotFoundError("property", id.String())
	}
	delete(r.properties, id)
	return nil
}

// fakeSyncRepo is an in-memory calendar.SyncRepository.
type fakeSyncRepo struct {
	syncs    map[uuid.UUID]*calendarDomain.Sync
	external map[uuid.UUID][]calendarDomain.ExternalBooking
}

func newFakeSyncRepo() *fakeSyncRepo {
	return &fakeSyncRepo{
		syncs:    make(map[uuid.UUID]*calendarDomain.Sync),
		external: make(map[uuid.UUID][]calendarDomain.ExternalBooking),
	}
}

func (r *fakeSyncRepo) FindSyncByID(_ context.Context, id uuid.UUID) (*calendarDomain.Sync, error) {
	s, ok := r.syncs[id]
	if !ok {
		return nil, shared.NewNotFoundError("calendar sync", id.String())
	}
	return s, nil
}

func (r *fakeSyncRepo) FindSyncsByOwner(_ context.Context, ownerID uuid.UUID) ([]*calendarDomain.Sync, error) {
	var all []*calendarDomain.Sync
	for _, s := range r.syncs {
		if s.OwnerID() == ownerID {
			all = append(all, s)
		}
	}
	return all, nil
}

func (r *fakeSyncRepo) CountSyncsByOwner(_ context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	for _, s := range r.syncs {
		if s.OwnerID() == ownerID {
			count++
		}
	}
	return count, nil
}

func (r *fakeSyncRepo) SaveSync(_ context.Context, s *calendarDomain.Sync) error {
	r.syncs[s.ID()] = s
	return nil
}

func (r *fakeSyncRepo) UpdateSync(_ context.Context, s *calendarDomain.Sync) error {
	if _, ok := r.syncs[s.ID()]; !ok {
		return shared.NewNotFoundError("calendar sync", s.ID().String())
	}
	r.syncs[s.ID()] = s
	return nil
}

func (r *fakeSyncRepo) DeleteSync(_ context.Context, id uuid.UUID) error {
	if _, ok := r.syncs[id]; !ok {
		return shared.NewNotFoundError("calendar sync", id.String())
	}
	delete(r.syncs, id)
	delete(r.external, id)
	return nil
}

func (r *fakeSyncRepo) FindExternalByProperty(_ context.Context, propertyID uuid.UUID) ([]calendarDomain.ExternalBooking, error) {
	var all []calendarDomain.ExternalBooking
	for _, batch := range r.external {
		for _, e := range batch {
			if e.PropertyID == propertyID {
				all = append(all, e)
			}
		}
	}
	return all, nil
}

func (r *fakeSyncRepo) ReplaceExternal(_ context.Context, syncID uuid.UUID, bookings []calendarDomain.ExternalBooking) error {
	r.external[syncID] = bookings
	return nil
}

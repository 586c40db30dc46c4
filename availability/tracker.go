package availability

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"

	"pousada/entity"
	"pousada/log"
)

// BookingsSource provides the date ranges of bookings that still block a
// room, i.e. those with status pending or confirmed.
type BookingsSource interface {
	FindActiveForRoom(ctx context.Context, roomID string) ([]entity.BookingInterval, error)
}

// Tracker answers per-room availability questions from a cached snapshot of
// the active bookings. The snapshot is loaded lazily on first read and
// refreshed whenever a booking change event arrives, so open calendars stay
// current without polling.
//
// All checks are fail-safe: when the source cannot be read the answer is
// "blocked", never "available".
type Tracker struct {
	source BookingsSource

	mu    sync.RWMutex
	rooms map[string][]entity.BookingInterval
}

func NewTracker(source BookingsSource) *Tracker {
	if source == nil {
		panic("missing bookings source")
	}

	return &Tracker{
		source: source,
		rooms:  map[string][]entity.BookingInterval{},
	}
}

// CheckAvailability reports whether [checkIn, checkOut) is free for the room.
// On a source failure it returns false together with the error.
func (t *Tracker) CheckAvailability(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error) {
	bookings, err := t.snapshot(ctx, roomID)
	if err != nil {
		return false, fmt.Errorf("could not load bookings for room %s: %w", roomID, err)
	}

	in, out := entity.Day(checkIn), entity.Day(checkOut)
	for _, b := range bookings {
		if entity.Overlaps(in, out, entity.Day(b.CheckIn), entity.Day(b.CheckOut)) {
			return false, nil
		}
	}

	return true, nil
}

// IsDateBlocked reports whether date falls inside the stay of any active
// booking for the room, check-in inclusive, check-out exclusive.
func (t *Tracker) IsDateBlocked(ctx context.Context, roomID string, date time.Time) (bool, error) {
	bookings, err := t.snapshot(ctx, roomID)
	if err != nil {
		return true, fmt.Errorf("could not load bookings for room %s: %w", roomID, err)
	}

	for _, b := range bookings {
		if b.Covers(date) {
			return true, nil
		}
	}

	return false, nil
}

// BlockedDates enumerates every blocked date for the room, sorted and
// de-duplicated, for disabling days in a date picker.
func (t *Tracker) BlockedDates(ctx context.Context, roomID string) ([]time.Time, error) {
	bookings, err := t.snapshot(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("could not load bookings for room %s: %w", roomID, err)
	}

	blocked := map[time.Time]struct{}{}
	for _, b := range bookings {
		for d := entity.Day(b.CheckIn); d.Before(entity.Day(b.CheckOut)); d = d.AddDate(0, 0, 1) {
			blocked[d] = struct{}{}
		}
	}

	dates := lo.Keys(blocked)
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	return dates, nil
}

// Refresh recomputes the room's snapshot from the source.
func (t *Tracker) Refresh(ctx context.Context, roomID string) error {
	bookings, err := t.source.FindActiveForRoom(ctx, roomID)
	if err != nil {
		return fmt.Errorf("could not refresh room %s: %w", roomID, err)
	}

	log.FromContext(ctx).
		WithField("room_id", roomID).
		WithField("active_bookings", len(bookings)).
		Debug("Refreshed availability snapshot")

	t.mu.Lock()
	t.rooms[roomID] = bookings
	t.mu.Unlock()

	return nil
}

func (t *Tracker) snapshot(ctx context.Context, roomID string) ([]entity.BookingInterval, error) {
	t.mu.RLock()
	bookings, ok := t.rooms[roomID]
	t.mu.RUnlock()
	if ok {
		return bookings, nil
	}

	if err := t.Refresh(ctx, roomID); err != nil {
		return nil, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rooms[roomID], nil
}

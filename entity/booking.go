package entity

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// CanTransitionTo tells whether the booking lifecycle allows moving to next.
// Cancelled is terminal; records are never deleted, only cancelled.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingStatusPending:
		return next == BookingStatusConfirmed || next == BookingStatusCancelled
	case BookingStatusConfirmed:
		return next == BookingStatusCancelled
	default:
		return false
	}
}

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled:
		return true
	}
	return false
}

type Booking struct {
	BookingID  string        `json:"booking_id" db:"booking_id"`
	RoomID     string        `json:"room_id" db:"room_id"`
	GuestName  string        `json:"guest_name" db:"guest_name"`
	GuestEmail string        `json:"guest_email" db:"guest_email"`
	GuestPhone string        `json:"guest_phone" db:"guest_phone"`
	CheckIn    time.Time     `json:"check_in" db:"check_in"`
	CheckOut   time.Time     `json:"check_out" db:"check_out"`
	Guests     int           `json:"guests" db:"guests"`
	TotalPrice int           `json:"total_price" db:"total_price"`
	Status     BookingStatus `json:"status" db:"status"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
	UserID     string        `json:"user_id" db:"user_id"`
}

// BookingInterval is the slice of a booking the availability tracker needs.
type BookingInterval struct {
	BookingID string        `db:"booking_id"`
	CheckIn   time.Time     `db:"check_in"`
	CheckOut  time.Time     `db:"check_out"`
	Status    BookingStatus `db:"status"`
}

// Blocks tells whether the booking still counts against availability.
func (s BookingStatus) Blocks() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

// Day truncates t to a calendar date (UTC midnight). All check-in/check-out
// values are stored and compared at this granularity.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Overlaps reports whether the half-open date ranges [aStart, aEnd) and
// [bStart, bEnd) intersect. The checkout day itself is free for a new
// check-in, matching standard hotel semantics.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Covers reports whether date falls within the booking's stay,
// check-in inclusive, check-out exclusive.
func (b BookingInterval) Covers(date time.Time) bool {
	d := Day(date)
	return !d.Before(Day(b.CheckIn)) && d.Before(Day(b.CheckOut))
}

// Nights returns the length of stay for a [checkIn, checkOut) range.
func Nights(checkIn, checkOut time.Time) int {
	return int(Day(checkOut).Sub(Day(checkIn)).Hours() / 24)
}

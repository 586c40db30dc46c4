package entity

import (
	"time"

	"github.com/google/uuid"
)

type EventHeader struct {
	ID             string    `json:"id"`
	PublishedAt    time.Time `json:"published_at"`
	IdempotencyKey string    `json:"idempotency_key"`
}

func NewEventHeader() EventHeader {
	return EventHeader{
		ID:          uuid.NewString(),
		PublishedAt: time.Now().UTC(),
	}
}

func NewEventHeaderWithIdempotencyKey(idempotencyKey string) EventHeader {
	return EventHeader{
		ID:             uuid.NewString(),
		PublishedAt:    time.Now().UTC(),
		IdempotencyKey: idempotencyKey,
	}
}

// BookingMade is published when a guest's submission is accepted and the
// booking is stored with status pending.
type BookingMade struct {
	Header     EventHeader `json:"header"`
	BookingID  string      `json:"booking_id"`
	RoomID     string      `json:"room_id"`
	GuestEmail string      `json:"guest_email"`
	CheckIn    time.Time   `json:"check_in"`
	CheckOut   time.Time   `json:"check_out"`
	Guests     int         `json:"guests"`
	TotalPrice int         `json:"total_price"`
}

// BookingConfirmed is published when an administrator approves a pending booking.
type BookingConfirmed struct {
	Header     EventHeader `json:"header"`
	BookingID  string      `json:"booking_id"`
	RoomID     string      `json:"room_id"`
	GuestEmail string      `json:"guest_email"`
}

// BookingCancelled is published on administrator rejection or guest
// self-cancellation. The record stays for history; it just stops blocking dates.
type BookingCancelled struct {
	Header     EventHeader `json:"header"`
	BookingID  string      `json:"booking_id"`
	RoomID     string      `json:"room_id"`
	GuestEmail string      `json:"guest_email"`
}

type ReviewSubmitted struct {
	Header    EventHeader `json:"header"`
	ReviewID  string      `json:"review_id"`
	BookingID string      `json:"booking_id"`
	RoomID    string      `json:"room_id"`
	Rating    int         `json:"rating"`
}

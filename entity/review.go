package entity

import "time"

type Review struct {
	ReviewID  string    `json:"review_id" db:"review_id"`
	BookingID string    `json:"booking_id" db:"booking_id"`
	RoomID    string    `json:"room_id" db:"room_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

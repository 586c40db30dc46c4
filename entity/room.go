package entity

type Room struct {
	RoomID       string `json:"room_id" db:"room_id"`
	Title        string `json:"title" db:"title"`
	NightlyPrice int    `json:"nightly_price" db:"nightly_price"`
	Capacity     int    `json:"capacity" db:"capacity"`
}

// TotalPrice computes the price of a stay: nightly rate times nights.
func (r Room) TotalPrice(nights int) int {
	return r.NightlyPrice * nights
}

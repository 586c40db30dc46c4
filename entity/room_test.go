package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pousada/entity"
)

func TestRoom_TotalPrice(t *testing.T) {
	room := entity.Room{RoomID: "standard", NightlyPrice: 280, Capacity: 2}

	assert.Equal(t, 840, room.TotalPrice(3))
	assert.Equal(t, 0, room.TotalPrice(0))
}

package availability_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pousada/availability"
	"pousada/entity"
)

func TestTracker_EventHandlersRefreshSnapshot(t *testing.T) {
	source := &stubSource{intervals: map[string][]entity.BookingInterval{}}
	tracker := availability.NewTracker(source)
	ctx := context.Background()

	available, err := tracker.CheckAvailability(ctx, "standard", date("2025-03-10"), date("2025-03-13"))
	require.NoError(t, err)
	require.True(t, available)

	source.set("standard", []entity.BookingInterval{interval("2025-03-10", "2025-03-13")})

	handlers := tracker.EventHandlers()
	require.Len(t, handlers, 3)

	var onBookingMade func(context.Context) error
	for _, h := range handlers {
		if h.HandlerName() == "availability_tracker.OnBookingMade" {
			event := &entity.BookingMade{
				Header:    entity.NewEventHeader(),
				BookingID: "b-1",
				RoomID:    "standard",
				CheckIn:   date("2025-03-10"),
				CheckOut:  date("2025-03-13"),
			}
			handler := h
			onBookingMade = func(ctx context.Context) error {
				return handler.Handle(ctx, event)
			}
		}
	}
	require.NotNil(t, onBookingMade)

	require.NoError(t, onBookingMade(ctx))

	available, err = tracker.CheckAvailability(ctx, "standard", date("2025-03-10"), date("2025-03-13"))
	require.NoError(t, err)
	assert.False(t, available)
}

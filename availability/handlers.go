package availability

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"

	"pousada/entity"
	"pousada/log"
)

// EventHandlers returns the change-feed subscriptions that keep the tracker's
// snapshots current. Handler errors are retried by the router middleware, so
// a failed refresh does not leave a silently stale snapshot behind.
func (t *Tracker) EventHandlers() []cqrs.EventHandler {
	return []cqrs.EventHandler{
		cqrs.NewEventHandler(
			"availability_tracker.OnBookingMade",
			func(ctx context.Context, event *entity.BookingMade) error {
				log.FromContext(ctx).WithField("room_id", event.RoomID).Info("Booking made, refreshing availability")
				return t.Refresh(ctx, event.RoomID)
			},
		),
		cqrs.NewEventHandler(
			"availability_tracker.OnBookingConfirmed",
			func(ctx context.Context, event *entity.BookingConfirmed) error {
				return t.Refresh(ctx, event.RoomID)
			},
		),
		cqrs.NewEventHandler(
			"availability_tracker.OnBookingCancelled",
			func(ctx context.Context, event *entity.BookingCancelled) error {
				log.FromContext(ctx).WithField("room_id", event.RoomID).Info("Booking cancelled, refreshing availability")
				return t.Refresh(ctx, event.RoomID)
			},
		),
	}
}

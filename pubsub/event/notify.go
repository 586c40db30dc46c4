package event

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"

	"pousada/entity"
	"pousada/log"
)

func (h Handler) NotifyInnkeeperHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"NotifyInnkeeperHandler",
		func(ctx context.Context, event *entity.BookingMade) error {
			log.FromContext(ctx).WithField("booking_id", event.BookingID).Info("Notifying innkeeper about new booking")

			return h.mailerService.Send(ctx, entity.Mail{
				To:      h.innkeeperEmail,
				Subject: "New booking awaiting approval",
				Body: fmt.Sprintf(
					"Booking %s: room %s, %s to %s, %d guest(s), total %d. Approve or reject it in the admin panel.",
					event.BookingID,
					event.RoomID,
					event.CheckIn.Format("2006-01-02"),
					event.CheckOut.Format("2006-01-02"),
					event.Guests,
					event.TotalPrice,
				),
			})
		},
	)
}

func (h Handler) BookingConfirmedMailHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"BookingConfirmedMailHandler",
		func(ctx context.Context, event *entity.BookingConfirmed) error {
			log.FromContext(ctx).WithField("booking_id", event.BookingID).Info("Mailing guest about confirmed booking")

			return h.mailerService.Send(ctx, entity.Mail{
				To:      event.GuestEmail,
				Subject: "Your reservation is confirmed",
				Body:    fmt.Sprintf("Your reservation %s for room %s has been confirmed. We are waiting for you!", event.BookingID, event.RoomID),
			})
		},
	)
}

func (h Handler) BookingCancelledMailHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"BookingCancelledMailHandler",
		func(ctx context.Context, event *entity.BookingCancelled) error {
			log.FromContext(ctx).WithField("booking_id", event.BookingID).Info("Mailing guest about cancelled booking")

			return h.mailerService.Send(ctx, entity.Mail{
				To:      event.GuestEmail,
				Subject: "Your reservation was cancelled",
				Body:    fmt.Sprintf("Reservation %s for room %s has been cancelled. The dates are available again.", event.BookingID, event.RoomID),
			})
		},
	)
}

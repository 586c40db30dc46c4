package pubsub

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"

	"pousada/availability"
	"pousada/pubsub/event"
	"pousada/pubsub/outbox"
)

func NewWatermillRouter(
	postgresSubscriber message.Subscriber,
	redisPublisher message.Publisher,
	eventProcessorConfig cqrs.EventProcessorConfig,
	eventsHandler event.Handler,
	tracker *availability.Tracker,
	watermillLogger watermill.LoggerAdapter,
) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, watermillLogger)
	if err != nil {
		return nil, fmt.Errorf("could not create router: %w", err)
	}

	useMiddlewares(router, watermillLogger)

	outbox.AddForwarderHandler(postgresSubscriber, redisPublisher, router, watermillLogger)

	eventProcessor, err := cqrs.NewEventProcessorWithConfig(router, eventProcessorConfig)
	if err != nil {
		return nil, fmt.Errorf("could not create event processor: %w", err)
	}

	handlers := []cqrs.EventHandler{
		eventsHandler.NotifyInnkeeperHandler(),
		eventsHandler.BookingConfirmedMailHandler(),
		eventsHandler.BookingCancelledMailHandler(),
	}
	handlers = append(handlers, tracker.EventHandlers()...)

	err = eventProcessor.AddHandlers(handlers...)
	if err != nil {
		return nil, fmt.Errorf("could not add handlers to event processor: %w", err)
	}

	return router, nil
}

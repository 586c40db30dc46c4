package outbox

import (
	"context"
	stdSQL "database/sql"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-sql/v2/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
)

const topic = "events_to_forward"

// NewPostgresSubscriber reads messages stored in the outbox table so the
// forwarder can move them to Redis after the storing transaction commits.
func NewPostgresSubscriber(db *stdSQL.DB, logger watermill.LoggerAdapter) message.Subscriber {
	sub, err := sql.NewSubscriber(db, sql.SubscriberConfig{
		SchemaAdapter:    sql.DefaultPostgreSQLSchema{},
		OffsetsAdapter:   sql.DefaultPostgreSQLOffsetsAdapter{},
		InitializeSchema: true,
	}, logger)
	if err != nil {
		panic(fmt.Errorf("could not create postgres subscriber: %w", err))
	}
	return sub
}

// NewPublisherForDb returns a publisher that writes to the outbox table
// within tx. Events published through it become visible on the change feed
// if and only if the surrounding transaction commits.
func NewPublisherForDb(ctx context.Context, tx *stdSQL.Tx) (message.Publisher, error) {
	sqlPublisher, err := sql.NewPublisher(tx, sql.PublisherConfig{
		SchemaAdapter:        sql.DefaultPostgreSQLSchema{},
		AutoInitializeSchema: true,
	}, watermill.NopLogger{})
	if err != nil {
		return nil, fmt.Errorf("could not create outbox publisher: %w", err)
	}

	return forwarder.NewPublisher(sqlPublisher, forwarder.PublisherConfig{
		ForwarderTopic: topic,
	}), nil
}

func AddForwarderHandler(
	postgresSubscriber message.Subscriber,
	publisher message.Publisher,
	router *message.Router,
	logger watermill.LoggerAdapter,
) {
	_, err := forwarder.NewForwarder(postgresSubscriber, publisher, logger, forwarder.Config{
		ForwarderTopic: topic,
		Router:         router,
	})
	if err != nil {
		panic(fmt.Errorf("could not create forwarder: %w", err))
	}
}

package service

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"pousada/availability"
	"pousada/db"
	"pousada/db/bookings"
	"pousada/db/reviews"
	"pousada/db/rooms"
	"pousada/db/users"
	"pousada/http"
	"pousada/log"
	"pousada/pubsub"
	"pousada/pubsub/event"
	"pousada/pubsub/outbox"
)

func init() {
	log.Init(logrus.InfoLevel)
}

type Service struct {
	db              *sqlx.DB
	watermillRouter *message.Router
	httpServer      *http.Server
}

func New(
	addr string,
	dbConn *sqlx.DB,
	redisClient *redis.Client,
	mailerService event.MailerService,
	innkeeperEmail string,
	jwtSecret []byte,
) Service {
	roomsRepo := rooms.NewPostgresRepository(dbConn)
	bookingsRepo := bookings.NewPostgresRepository(dbConn)
	reviewsRepo := reviews.NewPostgresRepository(dbConn)
	usersRepo := users.NewPostgresRepository(dbConn)

	tracker := availability.NewTracker(bookingsRepo)

	watermillLogger := log.NewWatermill(logrus.StandardLogger())

	redisPublisher := pubsub.NewRedisPublisher(redisClient, watermillLogger)

	eventsHandler := event.NewHandler(mailerService, innkeeperEmail)

	postgresSubscriber := outbox.NewPostgresSubscriber(dbConn.DB, watermillLogger)
	eventProcessorConfig := pubsub.NewEventProcessorConfig(redisClient, watermillLogger)

	watermillRouter, err := pubsub.NewWatermillRouter(
		postgresSubscriber,
		redisPublisher,
		eventProcessorConfig,
		eventsHandler,
		tracker,
		watermillLogger,
	)
	if err != nil {
		panic(fmt.Errorf("failed to create watermill router: %w", err))
	}

	httpServer := http.NewServer(
		addr,
		tracker,
		roomsRepo,
		bookingsRepo,
		reviewsRepo,
		usersRepo,
		jwtSecret,
	)

	return Service{
		dbConn,
		watermillRouter,
		httpServer,
	}
}

func (s Service) Run(ctx context.Context) error {
	if err := db.InitializeDatabaseSchema(s.db); err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.watermillRouter.Run(ctx)
	})

	g.Go(func() error {
		// the HTTP server starts only after the router, so the service is not
		// reported healthy before the change feed is being consumed
		<-s.watermillRouter.Running()

		return s.httpServer.Run(ctx)
	})

	return g.Wait()
}

package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"pousada/db"
	"pousada/db/users"
	"pousada/entity"
	"pousada/gateway"
	"pousada/log"
	"pousada/pubsub"
	"pousada/service"
	"pousada/tracing"
)

func main() {
	_ = godotenv.Load()

	log.Init(logrus.InfoLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	dbConn, err := sqlx.Open("postgres", os.Getenv("POSTGRES_URL"))
	if err != nil {
		logrus.WithError(err).Fatal("could not connect to postgres")
	}
	defer dbConn.Close()

	redisClient := pubsub.NewRedisClient(os.Getenv("REDIS_ADDR"))
	defer redisClient.Close()

	if endpoint := os.Getenv("JAEGER_ENDPOINT"); endpoint != "" {
		tp := tracing.ConfigureTraceProvider(endpoint)
		defer func() {
			_ = tp.Shutdown(context.Background())
		}()
	}

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	innkeeperEmail := os.Getenv("INNKEEPER_EMAIL")
	if innkeeperEmail == "" {
		innkeeperEmail = "recepcao@pousada.example"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logrus.Fatal("JWT_SECRET is required")
	}

	mailerService := gateway.NewMailerClient(os.Getenv("MAILER_ADDR"))

	svc := service.New(
		addr,
		dbConn,
		redisClient,
		mailerService,
		innkeeperEmail,
		[]byte(jwtSecret),
	)

	if err := db.InitializeDatabaseSchema(dbConn); err != nil {
		logrus.WithError(err).Fatal("could not initialize database schema")
	}
	if err := seedAdminUser(ctx, dbConn); err != nil {
		logrus.WithError(err).Fatal("could not seed admin user")
	}

	if err := svc.Run(ctx); err != nil {
		logrus.WithError(err).Fatal("service stopped")
	}
}

// seedAdminUser creates the innkeeper account on first start when
// ADMIN_EMAIL and ADMIN_PASSWORD are set. Existing accounts are kept.
func seedAdminUser(ctx context.Context, dbConn *sqlx.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	repo := users.NewPostgresRepository(dbConn)
	return repo.Store(ctx, entity.User{
		UserID:       uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         entity.RoleAdmin,
	})
}

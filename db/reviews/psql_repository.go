package reviews

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"pousada/entity"
	"pousada/pubsub/bus"
	"pousada/pubsub/outbox"
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Store persists a review and publishes ReviewSubmitted via the outbox.
// The UNIQUE constraint on booking_id enforces one review per booking.
func (r *PostgresRepository) Store(ctx context.Context, review entity.Review) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			rollbackErr := tx.Rollback()
			if rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				err = errors.Join(err, rollbackErr)
			}
			return
		}
		err = tx.Commit()
	}()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO reviews (review_id, booking_id, room_id, user_id, rating, comment)
		VALUES (:review_id, :booking_id, :room_id, :user_id, :rating, :comment)
	`, review)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return entity.ErrReviewNotAllowed
		}
		return fmt.Errorf("could not add review: %w", err)
	}

	outboxPublisher, err := outbox.NewPublisherForDb(ctx, tx.Tx)
	if err != nil {
		return fmt.Errorf("could not create outbox publisher: %w", err)
	}

	eventBus, err := bus.NewEventBus(outboxPublisher)
	if err != nil {
		return err
	}

	err = eventBus.Publish(ctx, entity.ReviewSubmitted{
		Header:    entity.NewEventHeader(),
		ReviewID:  review.ReviewID,
		BookingID: review.BookingID,
		RoomID:    review.RoomID,
		Rating:    review.Rating,
	})
	if err != nil {
		return fmt.Errorf("could not publish event: %w", err)
	}

	return nil
}

func (r *PostgresRepository) FindForRoom(ctx context.Context, roomID string) ([]entity.Review, error) {
	var reviews []entity.Review
	err := r.db.SelectContext(ctx, &reviews, `
		SELECT review_id, booking_id, room_id, user_id, rating, comment, created_at
		FROM reviews
		WHERE room_id = $1
		ORDER BY created_at DESC
	`, roomID)
	return reviews, err
}

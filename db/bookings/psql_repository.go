package bookings

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

// FindActiveForRoom returns the date ranges of bookings that still block the
// room's calendar, i.e. pending or confirmed ones. Cancelled bookings are
// kept for history but never block.
func (r *PostgresRepository) FindActiveForRoom(ctx context.Context, roomID string) ([]entity.BookingInterval, error) {
	var bookings []entity.BookingInterval
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT booking_id, check_in, check_out, status
		FROM bookings
		WHERE room_id = $1 AND status IN ('pending', 'confirmed')
	`, roomID)
	return bookings, err
}

func (r *PostgresRepository) FindByUser(ctx context.Context, userID string) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT booking_id, room_id, guest_name, guest_email, guest_phone,
			check_in, check_out, guests, total_price, status, created_at, user_id
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	return bookings, err
}

func (r *PostgresRepository) FindByStatus(ctx context.Context, status entity.BookingStatus) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT booking_id, room_id, guest_name, guest_email, guest_phone,
			check_in, check_out, guests, total_price, status, created_at, user_id
		FROM bookings
		WHERE status = $1
		ORDER BY created_at DESC
	`, status)
	return bookings, err
}

func (r *PostgresRepository) FindAll(ctx context.Context) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT booking_id, room_id, guest_name, guest_email, guest_phone,
			check_in, check_out, guests, total_price, status, created_at, user_id
		FROM bookings
		ORDER BY created_at DESC
	`)
	return bookings, err
}

func (r *PostgresRepository) Get(ctx context.Context, bookingID string) (entity.Booking, error) {
	var booking entity.Booking
	err := r.db.GetContext(ctx, &booking, `
		SELECT booking_id, room_id, guest_name, guest_email, guest_phone,
			check_in, check_out, guests, total_price, status, created_at, user_id
		FROM bookings
		WHERE booking_id = $1
	`, bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Booking{}, entity.ErrNotFound
	}
	return booking, err
}

// Store persists a new pending booking and publishes BookingMade through the
// outbox. The overlap re-check and the insert run in one serializable
// transaction, so two racing submissions for overlapping dates cannot both
// commit; the HTTP-level tracker check is only a fast advisory pass.
func (r *PostgresRepository) Store(ctx context.Context, booking entity.Booking) (err error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{
		Isolation: sql.LevelSerializable,
	})
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			rollbackErr := tx.Rollback()
			if rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				err = errors.Join(err, rollbackErr)
			}
		} else {
			err = tx.Commit()
		}

		// Postgres aborts one of two racing overlapping submissions with a
		// serialization failure; for the loser the dates are simply taken.
		if isSerializationFailure(err) {
			err = entity.ErrDatesUnavailable
		}
	}()

	var conflicting int
	err = tx.GetContext(ctx, &conflicting, `
		SELECT COUNT(*)
		FROM bookings
		WHERE room_id = $1
			AND status IN ('pending', 'confirmed')
			AND check_in < $3 AND check_out > $2
	`, booking.RoomID, booking.CheckIn, booking.CheckOut)
	if err != nil {
		return fmt.Errorf("could not check for conflicting bookings: %w", err)
	}

	if conflicting > 0 {
		return entity.ErrDatesUnavailable
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO bookings
			(booking_id, room_id, guest_name, guest_email, guest_phone,
			check_in, check_out, guests, total_price, status, user_id)
		VALUES
			(:booking_id, :room_id, :guest_name, :guest_email, :guest_phone,
			:check_in, :check_out, :guests, :total_price, :status, :user_id)
	`, booking)
	if err != nil {
		return fmt.Errorf("could not add booking: %w", err)
	}

	outboxPublisher, err := outbox.NewPublisherForDb(ctx, tx.Tx)
	if err != nil {
		return fmt.Errorf("could not create outbox publisher: %w", err)
	}

	eventBus, err := bus.NewEventBus(outboxPublisher)
	if err != nil {
		return err
	}

	err = eventBus.Publish(ctx, entity.BookingMade{
		Header:     entity.NewEventHeader(),
		BookingID:  booking.BookingID,
		RoomID:     booking.RoomID,
		GuestEmail: booking.GuestEmail,
		CheckIn:    booking.CheckIn,
		CheckOut:   booking.CheckOut,
		Guests:     booking.Guests,
		TotalPrice: booking.TotalPrice,
	})
	if err != nil {
		return fmt.Errorf("could not publish event: %w", err)
	}

	return nil
}

func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code.Name() == "serialization_failure"
}

// UpdateStatus transitions a booking from one lifecycle status to another and
// publishes the matching change event in the same transaction. The guard in
// the UPDATE's WHERE clause keeps concurrent transitions from racing.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, bookingID string, from, to entity.BookingStatus) (booking entity.Booking, err error) {
	if !from.CanTransitionTo(to) {
		return entity.Booking{}, entity.ErrInvalidTransition
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return entity.Booking{}, fmt.Errorf("could not begin transaction: %w", err)
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

	err = tx.GetContext(ctx, &booking, `
		UPDATE bookings
		SET status = $1
		WHERE booking_id = $2 AND status = $3
		RETURNING booking_id, room_id, guest_name, guest_email, guest_phone,
			check_in, check_out, guests, total_price, status, created_at, user_id
	`, to, bookingID, from)
	if errors.Is(err, sql.ErrNoRows) {
		// the row exists but is in another state, or does not exist at all
		var current entity.BookingStatus
		getErr := tx.GetContext(ctx, &current, `SELECT status FROM bookings WHERE booking_id = $1`, bookingID)
		if errors.Is(getErr, sql.ErrNoRows) {
			return entity.Booking{}, entity.ErrNotFound
		}
		if getErr != nil {
			return entity.Booking{}, getErr
		}
		return entity.Booking{}, entity.ErrInvalidTransition
	}
	if err != nil {
		return entity.Booking{}, fmt.Errorf("could not update booking status: %w", err)
	}

	outboxPublisher, err := outbox.NewPublisherForDb(ctx, tx.Tx)
	if err != nil {
		return entity.Booking{}, fmt.Errorf("could not create outbox publisher: %w", err)
	}

	eventBus, err := bus.NewEventBus(outboxPublisher)
	if err != nil {
		return entity.Booking{}, err
	}

	switch to {
	case entity.BookingStatusConfirmed:
		err = eventBus.Publish(ctx, entity.BookingConfirmed{
			Header:     entity.NewEventHeader(),
			BookingID:  booking.BookingID,
			RoomID:     booking.RoomID,
			GuestEmail: booking.GuestEmail,
		})
	case entity.BookingStatusCancelled:
		err = eventBus.Publish(ctx, entity.BookingCancelled{
			Header:     entity.NewEventHeader(),
			BookingID:  booking.BookingID,
			RoomID:     booking.RoomID,
			GuestEmail: booking.GuestEmail,
		})
	}
	if err != nil {
		return entity.Booking{}, fmt.Errorf("could not publish event: %w", err)
	}

	return booking, nil
}

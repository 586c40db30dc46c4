package rooms

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"pousada/entity"
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindAll(ctx context.Context) ([]entity.Room, error) {
	var rooms []entity.Room
	err := r.db.SelectContext(ctx, &rooms, `
		SELECT room_id, title, nightly_price, capacity
		FROM rooms
		ORDER BY nightly_price
	`)
	return rooms, err
}

func (r *PostgresRepository) Get(ctx context.Context, roomID string) (entity.Room, error) {
	var room entity.Room
	err := r.db.GetContext(ctx, &room, `
		SELECT room_id, title, nightly_price, capacity
		FROM rooms
		WHERE room_id = $1
	`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Room{}, entity.ErrUnknownRoom
	}
	return room, err
}

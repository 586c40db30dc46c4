package users

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

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (entity.User, error) {
	var user entity.User
	err := r.db.GetContext(ctx, &user, `
		SELECT user_id, email, password_hash, role
		FROM users
		WHERE email = $1
	`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.User{}, entity.ErrNotFound
	}
	return user, err
}

func (r *PostgresRepository) Store(ctx context.Context, user entity.User) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO users (user_id, email, password_hash, role)
		VALUES (:user_id, :email, :password_hash, :role)
		ON CONFLICT (email) DO NOTHING -- ignore if already exists
	`, user)
	return err
}

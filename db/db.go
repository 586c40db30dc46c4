package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = `
CREATE TABLE IF NOT EXISTS rooms (
	room_id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	nightly_price INT NOT NULL,
	capacity INT NOT NULL
);

CREATE TABLE IF NOT EXISTS bookings (
	booking_id UUID PRIMARY KEY,
	room_id TEXT NOT NULL REFERENCES rooms (room_id),
	guest_name TEXT NOT NULL,
	guest_email TEXT NOT NULL,
	guest_phone TEXT NOT NULL,
	check_in DATE NOT NULL,
	check_out DATE NOT NULL,
	guests INT NOT NULL,
	total_price INT NOT NULL,
	status TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	user_id TEXT NOT NULL DEFAULT '',
	CHECK (check_out > check_in)
);

CREATE INDEX IF NOT EXISTS bookings_room_status_idx ON bookings (room_id, status);

CREATE TABLE IF NOT EXISTS reviews (
	review_id UUID PRIMARY KEY,
	booking_id UUID NOT NULL UNIQUE REFERENCES bookings (booking_id),
	room_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	rating INT NOT NULL CHECK (rating BETWEEN 1 AND 5),
	comment TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS users (
	user_id UUID PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'guest'
);
`

// roomCatalog is the fixed set of bookable rooms. It is reference data, not
// user-editable, so it is seeded together with the schema.
var roomCatalog = `
INSERT INTO rooms (room_id, title, nightly_price, capacity) VALUES
	('standard', 'Quarto Standard', 280, 2),
	('premium', 'Suíte Premium', 420, 2),
	('chale', 'Chalé Familiar', 550, 4)
ON CONFLICT (room_id) DO NOTHING;
`

func InitializeDatabaseSchema(db *sqlx.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("could not initialize database schema: %w", err)
	}

	if _, err := db.Exec(roomCatalog); err != nil {
		return fmt.Errorf("could not seed room catalog: %w", err)
	}

	return nil
}

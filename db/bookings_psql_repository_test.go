package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"pousada/db/bookings"
	"pousada/entity"
)

func TestBookingsPostgresRepository_Store(t *testing.T) {
	ctx := context.Background()
	container, url := StartPostgresContainer()
	defer container.Terminate(ctx)

	t.Setenv("POSTGRES_URL", url)
	repo := bookings.NewPostgresRepository(GetDb(t))

	checkIn := entity.Day(time.Now().AddDate(0, 1, 0))
	checkOut := checkIn.AddDate(0, 0, 3)

	booking := entity.Booking{
		BookingID:  uuid.NewString(),
		RoomID:     "standard",
		GuestName:  "Maria Silva",
		GuestEmail: "maria@test.io",
		GuestPhone: "+55 11 99999-0000",
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     2,
		TotalPrice: 840,
		Status:     entity.BookingStatusPending,
		UserID:     uuid.NewString(),
	}

	err := repo.Store(ctx, booking)
	require.NoError(t, err)

	overlapping := booking
	overlapping.BookingID = uuid.NewString()
	overlapping.CheckIn = checkIn.AddDate(0, 0, 2)
	overlapping.CheckOut = checkOut.AddDate(0, 0, 2)

	err = repo.Store(ctx, overlapping)
	require.ErrorIs(t, err, entity.ErrDatesUnavailable)

	// back to back with the first stay, the checkout day is free
	adjacent := booking
	adjacent.BookingID = uuid.NewString()
	adjacent.CheckIn = checkOut
	adjacent.CheckOut = checkOut.AddDate(0, 0, 2)

	err = repo.Store(ctx, adjacent)
	require.NoError(t, err)

	// cancelling the first stay frees its dates
	_, err = repo.UpdateStatus(ctx, booking.BookingID, entity.BookingStatusPending, entity.BookingStatusCancelled)
	require.NoError(t, err)

	freed := booking
	freed.BookingID = uuid.NewString()

	err = repo.Store(ctx, freed)
	require.NoError(t, err)
}

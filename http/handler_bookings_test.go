package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pousada/entity"
)

type stubTracker struct {
	available bool
	err       error
}

func (s stubTracker) CheckAvailability(context.Context, string, time.Time, time.Time) (bool, error) {
	return s.available, s.err
}

func (s stubTracker) IsDateBlocked(context.Context, string, time.Time) (bool, error) {
	return !s.available, s.err
}

func (s stubTracker) BlockedDates(context.Context, string) ([]time.Time, error) {
	return nil, s.err
}

type stubRoomsRepo struct {
	room entity.Room
	err  error
}

func (s stubRoomsRepo) FindAll(context.Context) ([]entity.Room, error) {
	return []entity.Room{s.room}, s.err
}

func (s stubRoomsRepo) Get(context.Context, string) (entity.Room, error) {
	return s.room, s.err
}

type stubBookingsRepo struct {
	booking  entity.Booking
	getErr   error
	storeErr error
	stored   *entity.Booking
}

func (s *stubBookingsRepo) Store(_ context.Context, booking entity.Booking) error {
	if s.storeErr != nil {
		return s.storeErr
	}
	s.stored = &booking
	return nil
}

func (s *stubBookingsRepo) Get(context.Context, string) (entity.Booking, error) {
	return s.booking, s.getErr
}

func (s *stubBookingsRepo) FindByUser(context.Context, string) ([]entity.Booking, error) {
	return nil, nil
}

func (s *stubBookingsRepo) FindByStatus(context.Context, entity.BookingStatus) ([]entity.Booking, error) {
	return nil, nil
}

func (s *stubBookingsRepo) FindAll(context.Context) ([]entity.Booking, error) {
	return nil, nil
}

func (s *stubBookingsRepo) UpdateStatus(_ context.Context, _ string, _, to entity.BookingStatus) (entity.Booking, error) {
	booking := s.booking
	booking.Status = to
	return booking, nil
}

type stubReviewsRepo struct {
	storeErr error
	stored   *entity.Review
}

func (s *stubReviewsRepo) Store(_ context.Context, review entity.Review) error {
	if s.storeErr != nil {
		return s.storeErr
	}
	s.stored = &review
	return nil
}

func (s *stubReviewsRepo) FindForRoom(context.Context, string) ([]entity.Review, error) {
	return nil, nil
}

func newTestContext(t *testing.T, body any) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	e.Validator = &requestValidator{validator: validator.New()}

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(string(raw)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)
	c.Set(ctxUserID, "u-1")

	return c, rec
}

func httpErrorCode(t *testing.T, err error) int {
	t.Helper()

	var httpErr *echo.HTTPError
	require.True(t, errors.As(err, &httpErr), "expected an HTTP error, got %v", err)
	return httpErr.Code
}

func TestPostBooking_RejectsInvalidDates(t *testing.T) {
	bookingsRepo := &stubBookingsRepo{}
	server := &Server{
		tracker:      stubTracker{available: true},
		roomsRepo:    stubRoomsRepo{room: entity.Room{RoomID: "standard", NightlyPrice: 280, Capacity: 2}},
		bookingsRepo: bookingsRepo,
	}

	request := func(checkIn, checkOut string) map[string]any {
		return map[string]any{
			"room_id":     "standard",
			"check_in":    checkIn,
			"check_out":   checkOut,
			"guests":      2,
			"guest_name":  "Maria Silva",
			"guest_email": "maria@test.io",
			"guest_phone": "+55 11 99999-0000",
		}
	}

	testCases := []struct {
		name     string
		checkIn  string
		checkOut string
	}{
		{"zero nights", "2030-03-10", "2030-03-10"},
		{"checkout before checkin", "2030-03-13", "2030-03-10"},
		{"checkin in the past", "2020-03-10", "2020-03-13"},
		{"malformed date", "10/03/2030", "2030-03-13"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestContext(t, request(tc.checkIn, tc.checkOut))

			err := server.PostBooking(c)
			assert.Equal(t, http.StatusBadRequest, httpErrorCode(t, err))
			assert.Nil(t, bookingsRepo.stored, "nothing may be written on a validation error")
		})
	}
}

func TestPostBooking_RejectsTooManyGuests(t *testing.T) {
	bookingsRepo := &stubBookingsRepo{}
	server := &Server{
		tracker:      stubTracker{available: true},
		roomsRepo:    stubRoomsRepo{room: entity.Room{RoomID: "standard", NightlyPrice: 280, Capacity: 2}},
		bookingsRepo: bookingsRepo,
	}

	c, _ := newTestContext(t, map[string]any{
		"room_id":     "standard",
		"check_in":    "2030-03-10",
		"check_out":   "2030-03-13",
		"guests":      5,
		"guest_name":  "Maria Silva",
		"guest_email": "maria@test.io",
		"guest_phone": "+55 11 99999-0000",
	})

	err := server.PostBooking(c)
	assert.Equal(t, http.StatusBadRequest, httpErrorCode(t, err))
	assert.Nil(t, bookingsRepo.stored)
}

func TestPostBooking_ConflictWhenTrackerBlocks(t *testing.T) {
	bookingsRepo := &stubBookingsRepo{}
	server := &Server{
		tracker:      stubTracker{available: false},
		roomsRepo:    stubRoomsRepo{room: entity.Room{RoomID: "standard", NightlyPrice: 280, Capacity: 2}},
		bookingsRepo: bookingsRepo,
	}

	c, _ := newTestContext(t, map[string]any{
		"room_id":     "standard",
		"check_in":    "2030-03-10",
		"check_out":   "2030-03-13",
		"guests":      2,
		"guest_name":  "Maria Silva",
		"guest_email": "maria@test.io",
		"guest_phone": "+55 11 99999-0000",
	})

	err := server.PostBooking(c)
	assert.Equal(t, http.StatusConflict, httpErrorCode(t, err))
	assert.Nil(t, bookingsRepo.stored)
}

func TestPostBooking_ConflictWhenStoreLosesRace(t *testing.T) {
	bookingsRepo := &stubBookingsRepo{storeErr: entity.ErrDatesUnavailable}
	server := &Server{
		tracker:      stubTracker{available: true},
		roomsRepo:    stubRoomsRepo{room: entity.Room{RoomID: "standard", NightlyPrice: 280, Capacity: 2}},
		bookingsRepo: bookingsRepo,
	}

	c, _ := newTestContext(t, map[string]any{
		"room_id":     "standard",
		"check_in":    "2030-03-10",
		"check_out":   "2030-03-13",
		"guests":      2,
		"guest_name":  "Maria Silva",
		"guest_email": "maria@test.io",
		"guest_phone": "+55 11 99999-0000",
	})

	err := server.PostBooking(c)
	assert.Equal(t, http.StatusConflict, httpErrorCode(t, err))
}

func TestPostBooking_UnavailableWhenTrackerFails(t *testing.T) {
	bookingsRepo := &stubBookingsRepo{}
	server := &Server{
		tracker:      stubTracker{err: errors.New("connection refused")},
		roomsRepo:    stubRoomsRepo{room: entity.Room{RoomID: "standard", NightlyPrice: 280, Capacity: 2}},
		bookingsRepo: bookingsRepo,
	}

	c, _ := newTestContext(t, map[string]any{
		"room_id":     "standard",
		"check_in":    "2030-03-10",
		"check_out":   "2030-03-13",
		"guests":      2,
		"guest_name":  "Maria Silva",
		"guest_email": "maria@test.io",
		"guest_phone": "+55 11 99999-0000",
	})

	err := server.PostBooking(c)
	assert.Equal(t, http.StatusServiceUnavailable, httpErrorCode(t, err))
	assert.Nil(t, bookingsRepo.stored)
}

package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"pousada/entity"
	"pousada/metrics"
)

type postBookingRequest struct {
	RoomID     string `json:"room_id" validate:"required"`
	CheckIn    string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut   string `json:"check_out" validate:"required,datetime=2006-01-02"`
	Guests     int    `json:"guests" validate:"required,min=1"`
	GuestName  string `json:"guest_name" validate:"required"`
	GuestEmail string `json:"guest_email" validate:"required,email"`
	GuestPhone string `json:"guest_phone" validate:"required"`
}

type postBookingResponse struct {
	BookingID  string `json:"booking_id"`
	TotalPrice int    `json:"total_price"`
	Nights     int    `json:"nights"`
}

type bookingResponse struct {
	BookingID  string `json:"booking_id"`
	RoomID     string `json:"room_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Guests     int    `json:"guests"`
	TotalPrice int    `json:"total_price"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

// PostBooking is the booking submission workflow: validate the input, run a
// fast advisory availability check, then let the repository do the
// authoritative transactional check-and-insert.
func (s *Server) PostBooking(c echo.Context) error {
	var request postBookingRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if err := c.Validate(&request); err != nil {
		return err
	}

	checkIn, _ := time.Parse(dateLayout, request.CheckIn)
	checkOut, _ := time.Parse(dateLayout, request.CheckOut)

	if !checkOut.After(checkIn) {
		return echo.NewHTTPError(http.StatusBadRequest, "check_out must be after check_in")
	}
	if checkIn.Before(entity.Day(time.Now())) {
		return echo.NewHTTPError(http.StatusBadRequest, "check_in must not be in the past")
	}

	ctx := c.Request().Context()

	room, err := s.roomsRepo.Get(ctx, request.RoomID)
	if err != nil {
		if errors.Is(err, entity.ErrUnknownRoom) {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown room")
		}
		return fmt.Errorf("could not get room: %w", err)
	}

	// advisory upper bound; the innkeeper decides edge cases at approval time
	if request.Guests > room.Capacity*2 {
		return echo.NewHTTPError(http.StatusBadRequest, "too many guests for this room")
	}

	// Re-check right before writing, to close the window between the guest
	// viewing the calendar and submitting. Fail-safe: an unknown
	// availability state rejects the submission.
	available, err := s.tracker.CheckAvailability(ctx, request.RoomID, checkIn, checkOut)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "availability is temporarily unknown, try again")
	}
	if !available {
		metrics.BookingConflicts.Inc()
		return echo.NewHTTPError(http.StatusConflict, "the selected dates are not available")
	}

	nights := entity.Nights(checkIn, checkOut)
	booking := entity.Booking{
		BookingID:  uuid.NewString(),
		RoomID:     room.RoomID,
		GuestName:  request.GuestName,
		GuestEmail: request.GuestEmail,
		GuestPhone: request.GuestPhone,
		CheckIn:    entity.Day(checkIn),
		CheckOut:   entity.Day(checkOut),
		Guests:     request.Guests,
		TotalPrice: room.TotalPrice(nights),
		Status:     entity.BookingStatusPending,
		UserID:     c.Get(ctxUserID).(string),
	}

	err = s.bookingsRepo.Store(ctx, booking)
	if err != nil {
		if errors.Is(err, entity.ErrDatesUnavailable) {
			metrics.BookingConflicts.Inc()
			return echo.NewHTTPError(http.StatusConflict, "the selected dates are not available")
		}
		return fmt.Errorf("could not store booking: %w", err)
	}

	metrics.BookingsCreated.Inc()

	return c.JSON(http.StatusCreated, postBookingResponse{
		BookingID:  booking.BookingID,
		TotalPrice: booking.TotalPrice,
		Nights:     nights,
	})
}

func (s *Server) GetMyBookings(c echo.Context) error {
	userID := c.Get(ctxUserID).(string)

	bookings, err := s.bookingsRepo.FindByUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	response := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		response = append(response, toBookingResponse(b))
	}

	return c.JSON(http.StatusOK, response)
}

// CancelBooking lets a guest withdraw their own booking while it is still
// awaiting approval.
func (s *Server) CancelBooking(c echo.Context) error {
	bookingID := c.Param("booking_id")
	userID := c.Get(ctxUserID).(string)

	ctx := c.Request().Context()

	booking, err := s.bookingsRepo.Get(ctx, bookingID)
	if errors.Is(err, entity.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "booking not found")
	}
	if err != nil {
		return err
	}
	if booking.UserID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "not your booking")
	}

	_, err = s.bookingsRepo.UpdateStatus(ctx, bookingID, entity.BookingStatusPending, entity.BookingStatusCancelled)
	if errors.Is(err, entity.ErrInvalidTransition) {
		return echo.NewHTTPError(http.StatusConflict, "only pending bookings can be cancelled")
	}
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func toBookingResponse(b entity.Booking) bookingResponse {
	return bookingResponse{
		BookingID:  b.BookingID,
		RoomID:     b.RoomID,
		CheckIn:    b.CheckIn.Format(dateLayout),
		CheckOut:   b.CheckOut.Format(dateLayout),
		Guests:     b.Guests,
		TotalPrice: b.TotalPrice,
		Status:     string(b.Status),
		CreatedAt:  b.CreatedAt.Format(time.RFC3339),
	}
}

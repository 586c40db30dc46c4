package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"

	"pousada/entity"
)

type adminBookingResponse struct {
	bookingResponse
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
	GuestPhone string `json:"guest_phone"`
}

// GetAdminBookings lists bookings for the approval queue. Defaults to the
// pending ones, newest first.
func (s *Server) GetAdminBookings(c echo.Context) error {
	status := entity.BookingStatus(c.QueryParam("status"))
	if status == "" {
		status = entity.BookingStatusPending
	}
	if !status.IsValid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown status")
	}

	bookings, err := s.bookingsRepo.FindByStatus(c.Request().Context(), status)
	if err != nil {
		return err
	}

	response := make([]adminBookingResponse, 0, len(bookings))
	for _, b := range bookings {
		response = append(response, adminBookingResponse{
			bookingResponse: toBookingResponse(b),
			GuestName:       b.GuestName,
			GuestEmail:      b.GuestEmail,
			GuestPhone:      b.GuestPhone,
		})
	}

	return c.JSON(http.StatusOK, response)
}

func (s *Server) ConfirmBooking(c echo.Context) error {
	return s.transition(c, entity.BookingStatusPending, entity.BookingStatusConfirmed)
}

func (s *Server) RejectBooking(c echo.Context) error {
	return s.transition(c, entity.BookingStatusPending, entity.BookingStatusCancelled)
}

// AdminCancelBooking cancels an already confirmed booking.
func (s *Server) AdminCancelBooking(c echo.Context) error {
	return s.transition(c, entity.BookingStatusConfirmed, entity.BookingStatusCancelled)
}

func (s *Server) transition(c echo.Context, from, to entity.BookingStatus) error {
	bookingID := c.Param("booking_id")

	booking, err := s.bookingsRepo.UpdateStatus(c.Request().Context(), bookingID, from, to)
	if errors.Is(err, entity.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "booking not found")
	}
	if errors.Is(err, entity.ErrInvalidTransition) {
		return echo.NewHTTPError(http.StatusConflict, fmt.Sprintf("booking is not %s", from))
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toBookingResponse(booking))
}

// ExportBookings streams the whole booking history as a spreadsheet.
func (s *Server) ExportBookings(c echo.Context) error {
	bookings, err := s.bookingsRepo.FindAll(c.Request().Context())
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := []interface{}{
		"Booking ID", "Room", "Guest", "Email", "Phone",
		"Check-in", "Check-out", "Guests", "Total", "Status", "Created at",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, b := range bookings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			b.BookingID, b.RoomID, b.GuestName, b.GuestEmail, b.GuestPhone,
			b.CheckIn.Format(dateLayout), b.CheckOut.Format(dateLayout),
			b.Guests, b.TotalPrice, string(b.Status), b.CreatedAt.Format(dateLayout),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="bookings.xlsx"`)
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)

	_, err = f.WriteTo(c.Response())
	return err
}

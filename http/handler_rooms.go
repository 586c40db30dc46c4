package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"pousada/entity"
)

const dateLayout = "2006-01-02"

type roomResponse struct {
	RoomID       string `json:"room_id"`
	Title        string `json:"title"`
	NightlyPrice int    `json:"nightly_price"`
	Capacity     int    `json:"capacity"`
}

type availabilityResponse struct {
	RoomID       string   `json:"room_id"`
	BlockedDates []string `json:"blocked_dates"`
}

type availabilityCheckResponse struct {
	RoomID    string `json:"room_id"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	Available bool   `json:"available"`
}

func (s *Server) GetRooms(c echo.Context) error {
	rooms, err := s.roomsRepo.FindAll(c.Request().Context())
	if err != nil {
		return err
	}

	response := lo.Map(rooms, func(room entity.Room, _ int) roomResponse {
		return roomResponse{
			RoomID:       room.RoomID,
			Title:        room.Title,
			NightlyPrice: room.NightlyPrice,
			Capacity:     room.Capacity,
		}
	})

	return c.JSON(http.StatusOK, response)
}

// GetRoomAvailability returns every blocked date for the room, for the
// booking calendar to disable. Checkout days are not blocked: a stay that
// ends on a date leaves that date free for the next check-in.
func (s *Server) GetRoomAvailability(c echo.Context) error {
	roomID := c.Param("room_id")

	if _, err := s.roomsRepo.Get(c.Request().Context(), roomID); err != nil {
		if errors.Is(err, entity.ErrUnknownRoom) {
			return echo.NewHTTPError(http.StatusNotFound, "unknown room")
		}
		return err
	}

	blocked, err := s.tracker.BlockedDates(c.Request().Context(), roomID)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "availability is temporarily unknown")
	}

	return c.JSON(http.StatusOK, availabilityResponse{
		RoomID: roomID,
		BlockedDates: lo.Map(blocked, func(d time.Time, _ int) string {
			return d.Format(dateLayout)
		}),
	})
}

func (s *Server) CheckRoomAvailability(c echo.Context) error {
	roomID := c.Param("room_id")

	checkIn, err := time.Parse(dateLayout, c.QueryParam("check_in"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "check_in must be a date formatted as 2006-01-02")
	}
	checkOut, err := time.Parse(dateLayout, c.QueryParam("check_out"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "check_out must be a date formatted as 2006-01-02")
	}
	if !checkOut.After(checkIn) {
		return echo.NewHTTPError(http.StatusBadRequest, "check_out must be after check_in")
	}

	if _, err := s.roomsRepo.Get(c.Request().Context(), roomID); err != nil {
		if errors.Is(err, entity.ErrUnknownRoom) {
			return echo.NewHTTPError(http.StatusNotFound, "unknown room")
		}
		return err
	}

	available, err := s.tracker.CheckAvailability(c.Request().Context(), roomID, checkIn, checkOut)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "availability is temporarily unknown")
	}

	return c.JSON(http.StatusOK, availabilityCheckResponse{
		RoomID:    roomID,
		CheckIn:   checkIn.Format(dateLayout),
		CheckOut:  checkOut.Format(dateLayout),
		Available: available,
	})
}

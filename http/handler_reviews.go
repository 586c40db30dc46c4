package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"pousada/entity"
)

type postReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required"`
}

type reviewResponse struct {
	ReviewID  string `json:"review_id"`
	RoomID    string `json:"room_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"created_at"`
}

// PostReview accepts a guest's review of a stay: the booking must be theirs,
// confirmed, already checked out, and not reviewed yet.
func (s *Server) PostReview(c echo.Context) error {
	var request postReviewRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if err := c.Validate(&request); err != nil {
		return err
	}

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
	if booking.Status != entity.BookingStatusConfirmed {
		return echo.NewHTTPError(http.StatusConflict, "only confirmed stays can be reviewed")
	}
	// the checkout date must already be in the past
	if !entity.Day(time.Now()).After(entity.Day(booking.CheckOut)) {
		return echo.NewHTTPError(http.StatusConflict, "the stay has not ended yet")
	}

	review := entity.Review{
		ReviewID:  uuid.NewString(),
		BookingID: booking.BookingID,
		RoomID:    booking.RoomID,
		UserID:    userID,
		Rating:    request.Rating,
		Comment:   request.Comment,
	}

	err = s.reviewsRepo.Store(ctx, review)
	if errors.Is(err, entity.ErrReviewNotAllowed) {
		return echo.NewHTTPError(http.StatusConflict, "this stay has already been reviewed")
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, reviewResponse{
		ReviewID: review.ReviewID,
		RoomID:   review.RoomID,
		Rating:   review.Rating,
		Comment:  review.Comment,
	})
}

func (s *Server) GetRoomReviews(c echo.Context) error {
	roomID := c.Param("room_id")

	if _, err := s.roomsRepo.Get(c.Request().Context(), roomID); err != nil {
		if errors.Is(err, entity.ErrUnknownRoom) {
			return echo.NewHTTPError(http.StatusNotFound, "unknown room")
		}
		return err
	}

	reviews, err := s.reviewsRepo.FindForRoom(c.Request().Context(), roomID)
	if err != nil {
		return err
	}

	response := make([]reviewResponse, 0, len(reviews))
	for _, r := range reviews {
		response = append(response, reviewResponse{
			ReviewID:  r.ReviewID,
			RoomID:    r.RoomID,
			Rating:    r.Rating,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt.Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, response)
}

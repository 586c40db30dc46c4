package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pousada/entity"
	"pousada/log"
)

type AvailabilityTracker interface {
	CheckAvailability(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error)
	IsDateBlocked(ctx context.Context, roomID string, date time.Time) (bool, error)
	BlockedDates(ctx context.Context, roomID string) ([]time.Time, error)
}

type RoomsRepository interface {
	FindAll(ctx context.Context) ([]entity.Room, error)
	Get(ctx context.Context, roomID string) (entity.Room, error)
}

type BookingsRepository interface {
	Store(ctx context.Context, booking entity.Booking) error
	Get(ctx context.Context, bookingID string) (entity.Booking, error)
	FindByUser(ctx context.Context, userID string) ([]entity.Booking, error)
	FindByStatus(ctx context.Context, status entity.BookingStatus) ([]entity.Booking, error)
	FindAll(ctx context.Context) ([]entity.Booking, error)
	UpdateStatus(ctx context.Context, bookingID string, from, to entity.BookingStatus) (entity.Booking, error)
}

type ReviewsRepository interface {
	Store(ctx context.Context, review entity.Review) error
	FindForRoom(ctx context.Context, roomID string) ([]entity.Review, error)
}

type UsersRepository interface {
	GetByEmail(ctx context.Context, email string) (entity.User, error)
}

type Server struct {
	addr         string
	e            *echo.Echo
	tracker      AvailabilityTracker
	roomsRepo    RoomsRepository
	bookingsRepo BookingsRepository
	reviewsRepo  ReviewsRepository
	usersRepo    UsersRepository
	jwtSecret    []byte
}

type requestValidator struct {
	validator *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	if err := v.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func NewServer(
	addr string,
	tracker AvailabilityTracker,
	roomsRepo RoomsRepository,
	bookingsRepo BookingsRepository,
	reviewsRepo ReviewsRepository,
	usersRepo UsersRepository,
	jwtSecret []byte,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Validator = &requestValidator{validator: validator.New()}

	server := &Server{
		addr:         addr,
		e:            e,
		tracker:      tracker,
		roomsRepo:    roomsRepo,
		bookingsRepo: bookingsRepo,
		reviewsRepo:  reviewsRepo,
		usersRepo:    usersRepo,
		jwtSecret:    jwtSecret,
	}

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/auth/login", server.PostLogin)

	e.GET("/rooms", server.GetRooms)
	e.GET("/rooms/:room_id/availability", server.GetRoomAvailability)
	e.GET("/rooms/:room_id/availability/check", server.CheckRoomAvailability)
	e.GET("/rooms/:room_id/reviews", server.GetRoomReviews)

	authed := e.Group("", server.requireAuth)
	authed.POST("/bookings", server.PostBooking)
	authed.GET("/bookings", server.GetMyBookings)
	authed.POST("/bookings/:booking_id/cancel", server.CancelBooking)
	authed.POST("/bookings/:booking_id/review", server.PostReview)

	admin := e.Group("/admin", server.requireAuth, server.requireAdmin)
	admin.GET("/bookings", server.GetAdminBookings)
	admin.GET("/bookings/export", server.ExportBookings)
	admin.POST("/bookings/:booking_id/confirm", server.ConfirmBooking)
	admin.POST("/bookings/:booking_id/reject", server.RejectBooking)
	admin.POST("/bookings/:booking_id/cancel", server.AdminCancelBooking)

	return server
}

func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		err := s.e.Shutdown(context.Background())
		if err != nil {
			log.FromContext(ctx).WithError(err).Error("failed to shutdown HTTP server")
		}
	}()

	log.FromContext(ctx).WithField("addr", s.addr).Info("[HTTP] server listening")
	if err := s.e.Start(s.addr); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

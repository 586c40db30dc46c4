package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/crypto/bcrypt"

	"pousada/db/users"
	"pousada/entity"
	"pousada/gateway"
	"pousada/pubsub"
	"pousada/service"
)

var (
	httpAddress = ":8080"
	baseURL     = "http://localhost:8080"

	jwtSecret      = []byte("component-test-secret")
	innkeeperEmail = "recepcao@pousada.example"
)

func TestComponent(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("github.com/testcontainers/testcontainers-go.(*Reaper).Connect.func1"))
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dbconn, err := sqlx.Open("postgres", postgresURL)
	require.NoError(t, err)
	defer dbconn.Close()

	redisClient := pubsub.NewRedisClient(redisURL)
	defer redisClient.Close()

	seedUser(t, dbconn, "guest@test.io", "guest-password", entity.RoleGuest)
	seedUser(t, dbconn, "admin@test.io", "admin-password", entity.RoleAdmin)

	mailer := &gateway.MailerMock{}

	done := make(chan struct{})
	go func() {
		<-done
		e := syscall.Kill(syscall.Getpid(), syscall.SIGTERM)
		require.NoError(t, e)
	}()

	finished := make(chan struct{})
	go func() {
		svc := service.New(
			httpAddress,
			dbconn,
			redisClient,
			mailer,
			innkeeperEmail,
			jwtSecret,
		)
		assert.NoError(t, svc.Run(ctx))
		close(finished)
	}()

	defer func() {
		close(done)
		<-finished
	}()

	waitForHttpServer(t)

	guestToken := login(t, "guest@test.io", "guest-password")
	adminToken := login(t, "admin@test.io", "admin-password")

	// the room catalog is seeded with the schema
	status, body := doRequest(t, http.MethodGet, "/rooms", "", nil)
	require.Equal(t, http.StatusOK, status)
	var rooms []map[string]any
	require.NoError(t, json.Unmarshal(body, &rooms))
	require.Len(t, rooms, 3)

	// a guest books the standard room
	status, body = doRequest(t, http.MethodPost, "/bookings", guestToken, map[string]any{
		"room_id":     "standard",
		"check_in":    "2030-03-10",
		"check_out":   "2030-03-13",
		"guests":      2,
		"guest_name":  "Maria Silva",
		"guest_email": "maria@test.io",
		"guest_phone": "+55 11 99999-0000",
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	var created struct {
		BookingID  string `json:"booking_id"`
		TotalPrice int    `json:"total_price"`
		Nights     int    `json:"nights"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, 3, created.Nights)
	assert.Equal(t, 840, created.TotalPrice)

	// an overlapping submission is rejected
	status, body = doRequest(t, http.MethodPost, "/bookings", guestToken, map[string]any{
		"room_id":     "standard",
		"check_in":    "2030-03-12",
		"check_out":   "2030-03-14",
		"guests":      2,
		"guest_name":  "João Souza",
		"guest_email": "joao@test.io",
		"guest_phone": "+55 11 99999-0001",
	})
	require.Equal(t, http.StatusConflict, status, string(body))

	// the change feed refreshes the calendar
	assertAvailability(t, "standard", "2030-03-12", "2030-03-14", false)
	assertAvailability(t, "standard", "2030-03-13", "2030-03-15", true)
	assertAvailability(t, "premium", "2030-03-10", "2030-03-13", true)

	// the innkeeper is notified about the new booking
	assertMailSentTo(t, mailer, innkeeperEmail)

	// the booking shows up in the approval queue
	status, body = doRequest(t, http.MethodGet, "/admin/bookings", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), created.BookingID)

	// a guest may not reach admin endpoints
	status, _ = doRequest(t, http.MethodGet, "/admin/bookings", guestToken, nil)
	require.Equal(t, http.StatusForbidden, status)

	// the innkeeper approves
	status, body = doRequest(t, http.MethodPost, "/admin/bookings/"+created.BookingID+"/confirm", adminToken, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Contains(t, string(body), `"status":"confirmed"`)

	// approving twice conflicts
	status, _ = doRequest(t, http.MethodPost, "/admin/bookings/"+created.BookingID+"/confirm", adminToken, nil)
	require.Equal(t, http.StatusConflict, status)

	// the guest gets a confirmation mail
	assertMailSentTo(t, mailer, "maria@test.io")

	// a confirmed booking can no longer be self-cancelled
	status, _ = doRequest(t, http.MethodPost, "/bookings/"+created.BookingID+"/cancel", guestToken, nil)
	require.Equal(t, http.StatusConflict, status)

	// the innkeeper cancels, which frees the dates
	status, body = doRequest(t, http.MethodPost, "/admin/bookings/"+created.BookingID+"/cancel", adminToken, nil)
	require.Equal(t, http.StatusOK, status, string(body))

	assertAvailability(t, "standard", "2030-03-10", "2030-03-13", true)

	// the guest still sees the cancelled booking in their history
	status, body = doRequest(t, http.MethodGet, "/bookings", guestToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"status":"cancelled"`)
}

func seedUser(t *testing.T, dbconn *sqlx.DB, email, password, role string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := entity.User{
		UserID:       uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	require.NoError(t, users.NewPostgresRepository(dbconn).Store(context.Background(), user))
}

func login(t *testing.T, email, password string) string {
	t.Helper()

	status, body := doRequest(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status, string(body))

	var response struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &response))
	require.NotEmpty(t, response.Token)

	return response.Token
}

func doRequest(t *testing.T, method, path, token string, payload any) (int, []byte) {
	t.Helper()

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, baseURL+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, body
}

func assertAvailability(t *testing.T, roomID, checkIn, checkOut string, expected bool) {
	t.Helper()

	url := baseURL + "/rooms/" + roomID + "/availability/check?check_in=" + checkIn + "&check_out=" + checkOut

	assert.EventuallyWithT(
		t,
		func(collectT *assert.CollectT) {
			resp, err := http.Get(url)
			if !assert.NoError(collectT, err) {
				return
			}
			defer resp.Body.Close()

			if !assert.Equal(collectT, http.StatusOK, resp.StatusCode) {
				return
			}

			var response struct {
				Available bool `json:"available"`
			}
			if !assert.NoError(collectT, json.NewDecoder(resp.Body).Decode(&response)) {
				return
			}
			assert.Equal(collectT, expected, response.Available)
		},
		10*time.Second,
		100*time.Millisecond,
	)
}

func assertMailSentTo(t *testing.T, mailer *gateway.MailerMock, recipient string) {
	t.Helper()

	assert.EventuallyWithT(
		t,
		func(t *assert.CollectT) {
			recipients := []string{}
			for _, m := range mailer.Sent() {
				recipients = append(recipients, m.To)
			}
			assert.Contains(t, recipients, recipient)
		},
		10*time.Second,
		100*time.Millisecond,
	)
}

func waitForHttpServer(t *testing.T) {
	t.Helper()

	require.EventuallyWithT(
		t,
		func(t *assert.CollectT) {
			resp, err := http.Get(baseURL + "/health")
			if !assert.NoError(t, err) {
				return
			}
			defer resp.Body.Close()

			if assert.Less(t, resp.StatusCode, 300, "API not ready, http status: %d", resp.StatusCode) {
				body, err := io.ReadAll(resp.Body)
				assert.NoError(t, err)
				assert.Equal(t, "ok", strings.TrimSpace(string(body)))
			}
		},
		10*time.Second,
		50*time.Millisecond,
	)
}

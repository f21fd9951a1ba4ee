package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/bowling-lane-reservation/internal/booking"
	"github.com/iliyamo/bowling-lane-reservation/internal/config"
	"github.com/iliyamo/bowling-lane-reservation/internal/handler"
	"github.com/iliyamo/bowling-lane-reservation/internal/model"
	"github.com/iliyamo/bowling-lane-reservation/internal/repository"
	"github.com/iliyamo/bowling-lane-reservation/internal/utils"
)

type memUsers struct {
	mu    sync.Mutex
	next  uint64
	users map[string]model.User
}

func (m *memUsers) Create(_ context.Context, name, email, password, role string, cost int) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[email]; ok {
		return 0, repository.ErrEmailExists
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	m.next++
	m.users[email] = model.User{ID: m.next, Name: name, Email: email, PasswordHash: hash, Role: role}
	return m.next, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (m *memUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

type refreshRow struct {
	userID  uint64
	revoked bool
}

type memTokens struct {
	mu   sync.Mutex
	rows map[string]*refreshRow
}

func (m *memTokens) StoreRefresh(_ context.Context, userID uint64, hash string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[hash] = &refreshRow{userID: userID}
	return nil
}

func (m *memTokens) ValidateRefresh(_ context.Context, hash string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[hash]
	if !ok || r.revoked {
		return 0, repository.ErrTokenInvalid
	}
	return r.userID, nil
}

func (m *memTokens) RevokeByHash(_ context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[hash]
	if !ok || r.revoked {
		return repository.ErrTokenInvalid
	}
	r.revoked = true
	return nil
}

func (m *memTokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.userID == userID {
			r.revoked = true
		}
	}
	return nil
}

const secret = "router-secret"

func newApp(t *testing.T) (*echo.Echo, *memUsers) {
	t.Helper()
	users := &memUsers{users: map[string]model.User{}}
	tokens := &memTokens{rows: map[string]*refreshRow{}}
	cfg := config.Config{JWTSecret: secret, AccessTTLMin: 10, RefreshTTLDays: 1, BcryptCost: bcrypt.MinCost}

	svc := booking.NewService(repository.NewMemoryStore(), booking.DefaultCatalog(), nil)
	rh := handler.NewReservationHandler(svc)
	passThrough := func(next echo.HandlerFunc) echo.HandlerFunc { return next }

	e := echo.New()
	RegisterRoutes(e, handler.Health(nil), rh, passThrough)
	RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), secret)
	RegisterReservations(e, rh, secret, passThrough)
	return e, users
}

func call(e *echo.Echo, method, target, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type authBody struct {
	Status string `json:"status"`
	Token  string `json:"token"`
	User   struct {
		ID    uint64 `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
	Refresh struct {
		Token string `json:"token"`
	} `json:"refresh"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) authBody {
	t.Helper()
	var b authBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b), rec.Body.String())
	return b
}

func TestPublicRoutes(t *testing.T) {
	e, _ := newApp(t)
	assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/healthz", "", "").Code)
	assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/api/meta", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(e, http.MethodGet, "/api/reservations", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(e, http.MethodGet, "/api/me", "", "").Code)
}

func TestAuthFlow(t *testing.T) {
	e, _ := newApp(t)

	rec := call(e, http.MethodPost, "/api/register", "", `{"name":"Ann","email":"Ann@Example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reg := decode(t, rec)
	assert.Equal(t, "success", reg.Status)
	assert.Equal(t, "ann@example.com", reg.User.Email)
	assert.Equal(t, model.RoleCustomer, reg.User.Role)
	assert.NotEmpty(t, reg.Token)

	rec = call(e, http.MethodPost, "/api/register", "", `{"name":"Ann","email":"ann@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = call(e, http.MethodPost, "/api/register", "", `{"name":"Ann","email":"nope","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusUnauthorized,
		call(e, http.MethodPost, "/api/login", "", `{"email":"ann@example.com","password":"wrong"}`).Code)
	rec = call(e, http.MethodPost, "/api/login", "", `{"email":"ANN@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode(t, rec)

	rec = call(e, http.MethodGet, "/api/me", login.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"ann@example.com"`)

	rec = call(e, http.MethodPost, "/api/refresh", "", `{"refresh_token":"`+login.Refresh.Token+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rotated := decode(t, rec)
	assert.NotEqual(t, login.Refresh.Token, rotated.Refresh.Token)

	// the old refresh token was revoked by the rotation
	rec = call(e, http.MethodPost, "/api/refresh", "", `{"refresh_token":"`+login.Refresh.Token+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(e, http.MethodPost, "/api/logout", "", `{"refresh_token":"`+rotated.Refresh.Token+`"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = call(e, http.MethodPost, "/api/refresh", "", `{"refresh_token":"`+rotated.Refresh.Token+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Equal(t, http.StatusNoContent, call(e, http.MethodPost, "/api/logout", login.Token, "").Code)
	assert.Equal(t, http.StatusBadRequest, call(e, http.MethodPost, "/api/logout", "", "").Code)
}

func TestBookingAsRegisteredCustomer(t *testing.T) {
	e, _ := newApp(t)
	rec := call(e, http.MethodPost, "/api/register", "", `{"name":"Ann","email":"ann@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	token := decode(t, rec).Token

	body := `{"name":"Someone Else","phone":"081234567890","date":"2024-03-10","time":"19:00",
		"duration_hours":1,"lane":"Lane 8","players":2,"customer_email":"other@example.com"}`
	rec = call(e, http.MethodPost, "/api/reservations", token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out struct {
		Reservation model.Reservation `json:"reservation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "Ann", out.Reservation.Name)
	assert.Equal(t, "ann@example.com", out.Reservation.CustomerEmail)
	assert.Equal(t, "19:00", out.Reservation.StartTime)
	assert.Equal(t, int64(50000), out.Reservation.TotalCost)
}

func TestConcurrentRefreshHasOneWinner(t *testing.T) {
	e, _ := newApp(t)
	rec := call(e, http.MethodPost, "/api/register", "", `{"name":"Ann","email":"ann@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := `{"refresh_token":"` + decode(t, rec).Refresh.Token + `"}`

	const n = 16
	codes := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes <- call(e, http.MethodPost, "/api/refresh", "", body).Code
		}()
	}
	wg.Wait()
	close(codes)

	ok := 0
	for code := range codes {
		switch code {
		case http.StatusOK:
			ok++
		case http.StatusUnauthorized:
		default:
			t.Errorf("unexpected status %d", code)
		}
	}
	assert.Equal(t, 1, ok)
}

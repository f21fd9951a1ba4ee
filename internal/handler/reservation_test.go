package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bowling-lane-reservation/internal/booking"
	"github.com/iliyamo/bowling-lane-reservation/internal/middleware"
	"github.com/iliyamo/bowling-lane-reservation/internal/model"
	"github.com/iliyamo/bowling-lane-reservation/internal/repository"
	"github.com/iliyamo/bowling-lane-reservation/internal/utils"
)

const secret = "handler-secret"

func newTestEcho(svc ReservationService) *echo.Echo {
	h := NewReservationHandler(svc)
	e := echo.New()
	e.GET("/api/meta", h.Meta)
	e.GET("/api/availability", h.Availability)
	g := e.Group("/api/reservations", middleware.JWTAuth(secret))
	g.GET("", h.List)
	g.POST("", h.Create)
	g.DELETE("/:id", h.Delete)
	return e
}

func bearer(t *testing.T, name, email, role string) string {
	t.Helper()
	at, err := utils.NewAccessToken(secret, utils.Identity{UserID: 1, Name: name, Email: email, Role: role}, 5)
	require.NoError(t, err)
	return at.Token
}

func do(e *echo.Echo, method, target, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const laneOneBody = `{"name":"Ann","phone":"081234567890","date":"2024-03-10","start_time":"10:00",
	"duration_hours":2,"lane":"Lane 1","players":3,"notes":"league"}`

func TestReservationEndpoints(t *testing.T) {
	svc := booking.NewService(repository.NewMemoryStore(), booking.DefaultCatalog(), nil)
	e := newTestEcho(svc)
	ann := bearer(t, "Ann", "ann@example.com", model.RoleCustomer)
	bob := bearer(t, "Bob", "bob@example.com", model.RoleCustomer)
	staff := bearer(t, "Desk", "desk@bowling.local", model.RoleStaff)

	rec := do(e, http.MethodPost, "/api/reservations", ann, laneOneBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Status      string            `json:"status"`
		Reservation model.Reservation `json:"reservation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "success", created.Status)
	assert.Equal(t, "12:00", created.Reservation.EndTime)
	assert.Equal(t, int64(125000), created.Reservation.TotalCost)
	id := created.Reservation.ID

	rec = do(e, http.MethodPost, "/api/reservations", bob, strings.Replace(laneOneBody, `"10:00"`, `"11:00"`, 1))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"error"`)

	rec = do(e, http.MethodGet, "/api/reservations", bob, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(e, http.MethodGet, "/api/reservations?scope=all", bob, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(e, http.MethodGet, "/api/reservations?date=2024-03-10", staff, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []model.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "ann@example.com", list[0].CustomerEmail)

	rec = do(e, http.MethodGet, "/api/availability?date=2024-03-10&lane=Lane%201&time=11:00", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"available":false`)
	rec = do(e, http.MethodGet, "/api/availability?date=2024-03-10&lane=Lane%201&start_time=12:00&duration_hours=3", "", "")
	assert.Contains(t, rec.Body.String(), `"available":true`)

	target := "/api/reservations/" + strconv.FormatUint(id, 10)
	assert.Equal(t, http.StatusForbidden, do(e, http.MethodDelete, target, bob, "").Code)
	rec = do(e, http.MethodDelete, target, ann, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success"}`, rec.Body.String())
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodDelete, target, staff, "").Code)
}

func TestReservationEndpointsBadInput(t *testing.T) {
	svc := booking.NewService(repository.NewMemoryStore(), booking.DefaultCatalog(), nil)
	e := newTestEcho(svc)
	ann := bearer(t, "Ann", "ann@example.com", model.RoleCustomer)

	tests := []struct {
		name, method, target, token, body string
		want                              int
	}{
		{"no token", http.MethodPost, "/api/reservations", "", laneOneBody, http.StatusUnauthorized},
		{"malformed json", http.MethodPost, "/api/reservations", ann, `{"name":`, http.StatusBadRequest},
		{"unknown lane", http.MethodPost, "/api/reservations", ann, strings.Replace(laneOneBody, "Lane 1", "Lane 99", 1), http.StatusBadRequest},
		{"bad duration", http.MethodPost, "/api/reservations", ann, strings.Replace(laneOneBody, `"duration_hours":2`, `"duration_hours":5`, 1), http.StatusBadRequest},
		{"bad id", http.MethodDelete, "/api/reservations/abc", ann, "", http.StatusBadRequest},
		{"zero id", http.MethodDelete, "/api/reservations/0", ann, "", http.StatusBadRequest},
		{"bad list date", http.MethodGet, "/api/reservations?date=10-03-2024", ann, "", http.StatusBadRequest},
		{"availability bad duration", http.MethodGet, "/api/availability?date=2024-03-10&lane=Lane%201&start_time=10:00&duration_hours=x", "", "", http.StatusBadRequest},
		{"availability missing date", http.MethodGet, "/api/availability?lane=Lane%201&start_time=10:00", "", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, tt.method, tt.target, tt.token, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestMeta(t *testing.T) {
	svc := booking.NewService(repository.NewMemoryStore(), booking.DefaultCatalog(), nil)
	rec := do(newTestEcho(svc), http.MethodGet, "/api/meta", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var m booking.Meta
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Len(t, m.Lanes, 8)
	assert.Equal(t, "10:00", m.Slots[0])
	assert.Equal(t, 2, m.IncludedPlayers)
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&booking.ValidationError{Field: "lane", Reason: "unknown lane"}, http.StatusBadRequest},
		{&booking.ConflictError{}, http.StatusConflict},
		{booking.ErrUnauthorized, http.StatusUnauthorized},
		{booking.ErrForbidden, http.StatusForbidden},
		{booking.ErrNotFound, http.StatusNotFound},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	e := echo.New()
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		require.NoError(t, writeError(c, tt.err))
		assert.Equal(t, tt.want, rec.Code, tt.err.Error())
		assert.NotContains(t, rec.Body.String(), "disk on fire")
	}
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	e := echo.New()
	e.GET("/up", Health(pinger{}))
	e.GET("/down", Health(pinger{err: errors.New("gone")}))
	e.GET("/nodb", Health(nil))

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/up", "", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(e, http.MethodGet, "/down", "", "").Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/nodb", "", "").Code)
}

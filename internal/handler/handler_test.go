package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/LankaTrails/service-booking/internal/application"
	"github.com/LankaTrails/service-booking/internal/cache"
	reservationDomain "github.com/LankaTrails/service-booking/internal/domain/reservation"
	"github.com/LankaTrails/service-booking/internal/platform/auth"
	"github.com/LankaTrails/service-booking/internal/platform/domain"
	"github.com/LankaTrails/service-booking/internal/repository/memory"
)

type testServer struct {
	router *gin.Engine
	jwt    *auth.JWTManager
}

type envelope struct {
	Success       bool            `json:"success"`
	Message       string          `json:"message"`
	ReservationID string          `json:"reservation_id"`
	Data          json.RawMessage `json:"data"`
	Error         struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, RegisterValidators())

	store := memory.NewStore()
	logger := zap.NewNop()
	nop := cache.NopAvailabilityCache{}
	bookings := application.NewBookingService(store.UnitOfWork(), store.Offerings(), store.Reservations(),
		reservationDomain.NewStandardPricingStrategy(), nop, application.NopPublisher{}, logger)
	offerings := application.NewOfferingService(store.UnitOfWork(), store.Offerings(), nop, domain.CurrencyLKR, logger)
	availability := application.NewAvailabilityService(store.Offerings(), store.Reservations(), nop, logger)

	jwtManager := auth.NewJWTManager("handler-test-secret", time.Hour, 24*time.Hour)
	router := gin.New()
	api := router.Group("")
	NewBookingHandler(bookings).RegisterRoutes(api, jwtManager)
	NewOfferingHandler(offerings).RegisterRoutes(api, jwtManager)
	NewAvailabilityHandler(availability).RegisterRoutes(api)
	NewAdminBookingHandler(bookings).RegisterRoutes(api, jwtManager)

	return &testServer{router: router, jwt: jwtManager}
}

func (s *testServer) token(t *testing.T, userID uuid.UUID, role auth.Role) string {
	t.Helper()
	token, err := s.jwt.GenerateAccessToken(userID, role, "Nimali Perera", "nimali@example.lk")
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (s *testServer) createHotel(t *testing.T, token string, capacity int) application.OfferingDTO {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/v1/offerings/hotel", token, map[string]any{
		"name": "Deluxe Double", "listing_name": "Galle Fort Inn", "price_cents": 1500000, "capacity": capacity,
	})
	require.Equal(t, http.StatusCreated, code, env.Error.Message)
	var o application.OfferingDTO
	require.NoError(t, json.Unmarshal(env.Data, &o))
	return o
}

func TestHotelBookingFlow(t *testing.T) {
	s := newTestServer(t)
	hotelierID, touristID := uuid.New(), uuid.New()
	hotelier := s.token(t, hotelierID, auth.RoleHotelier)
	tourist := s.token(t, touristID, auth.RoleTourist)

	room := s.createHotel(t, hotelier, 2)

	code, env := s.do(t, http.MethodPost, "/api/v1/bookings/hotel", tourist, map[string]any{
		"offering_id": room.ID, "start_date": "2030-03-01", "end_date": "2030-03-04", "quantity": 2,
	})
	require.Equal(t, http.StatusCreated, code, env.Error.Message)
	assert.Equal(t, "Booking created successfully", env.Message)
	require.NotEmpty(t, env.ReservationID)

	var created application.ReservationDTO
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, int64(1500000*3*2), created.TotalCents)
	assert.Equal(t, "Nimali Perera", created.Details.GuestName)

	code, env = s.do(t, http.MethodGet,
		"/api/v1/availability/hotel?offering_id="+room.ID.String()+"&start_date=2030-03-02&end_date=2030-03-03", "", nil)
	require.Equal(t, http.StatusOK, code)
	var a reservationDomain.Availability
	require.NoError(t, json.Unmarshal(env.Data, &a))
	assert.Equal(t, 0, a.Available)
	assert.Equal(t, 2, a.Total)
	assert.False(t, a.Sufficient)

	code, env = s.do(t, http.MethodPost, "/api/v1/bookings/hotel", tourist, map[string]any{
		"offering_id": room.ID, "start_date": "2030-03-03", "end_date": "2030-03-05",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, string(domain.CodeInsufficientInventory), env.Error.Code)

	// Back-to-back stays do not overlap.
	code, _ = s.do(t, http.MethodPost, "/api/v1/bookings/hotel", tourist, map[string]any{
		"offering_id": room.ID, "start_date": "2030-03-04", "end_date": "2030-03-05",
	})
	assert.Equal(t, http.StatusCreated, code)

	statusPath := "/api/v1/bookings/hotel/" + created.ID.String() + "/status"
	code, env = s.do(t, http.MethodPut, statusPath, hotelier, map[string]any{"status": "confirmed"})
	require.Equal(t, http.StatusOK, code, env.Error.Message)
	assert.Equal(t, "Booking has been confirmed successfully", env.Message)

	code, env = s.do(t, http.MethodGet, "/api/v1/reservations/"+created.ID.String(), tourist, nil)
	require.Equal(t, http.StatusOK, code)
	var fetched application.ReservationDTO
	require.NoError(t, json.Unmarshal(env.Data, &fetched))
	assert.Equal(t, "confirmed", fetched.Status)

	code, _ = s.do(t, http.MethodGet, "/api/v1/reservations/"+created.ID.String(), s.token(t, uuid.New(), auth.RoleTourist), nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(t, http.MethodGet, "/api/v1/bookings/hotel/by-offering/"+room.ID.String(), hotelier, nil)
	require.Equal(t, http.StatusOK, code)
	var dashboard application.OfferingReservationsDTO
	require.NoError(t, json.Unmarshal(env.Data, &dashboard))
	assert.Equal(t, int64(2), dashboard.Reservations.Total)
	assert.Equal(t, int64(1), dashboard.Stats.Confirmed)

	code, env = s.do(t, http.MethodGet, "/api/v1/provider/bookings?domain=hotel", hotelier, nil)
	require.Equal(t, http.StatusOK, code)
	var listing application.ProviderReservationsDTO
	require.NoError(t, json.Unmarshal(env.Data, &listing))
	assert.Equal(t, int64(2), listing.Reservations.Total)

	code, env = s.do(t, http.MethodGet, "/api/v1/provider/bookings?domain=guide", hotelier, nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &listing))
	assert.Zero(t, listing.Reservations.Total)

	code, env = s.do(t, http.MethodGet, "/api/v1/provider/bookings?domain=spa", hotelier, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error.Message, "booking_domain")
}

func TestUpdateStatus_Rules(t *testing.T) {
	s := newTestServer(t)
	hotelier := s.token(t, uuid.New(), auth.RoleHotelier)
	tourist := s.token(t, uuid.New(), auth.RoleTourist)
	room := s.createHotel(t, hotelier, 1)

	_, env := s.do(t, http.MethodPost, "/api/v1/bookings/hotel", tourist, map[string]any{
		"offering_id": room.ID, "start_date": "2030-05-01", "end_date": "2030-05-02",
	})
	path := "/api/v1/bookings/hotel/" + env.ReservationID + "/status"

	code, env := s.do(t, http.MethodPut, path, s.token(t, uuid.New(), auth.RoleHotelier), map[string]any{"status": "confirmed"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, string(domain.CodeForbidden), env.Error.Code)

	code, _ = s.do(t, http.MethodPut, path, tourist, map[string]any{"status": "confirmed"})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(t, http.MethodPut, path, hotelier, map[string]any{"status": "archived"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, string(domain.CodeInvalidTransition), env.Error.Code)

	code, _ = s.do(t, http.MethodPut, path, hotelier, map[string]any{"status": "cancelled"})
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(t, http.MethodPut, path, hotelier, map[string]any{"status": "confirmed"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, string(domain.CodeInvalidTransition), env.Error.Code)

	code, _ = s.do(t, http.MethodPut, "/api/v1/bookings/guide/"+uuid.NewString()+"/status", hotelier, map[string]any{"status": "confirmed"})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCreateReservation_Validation(t *testing.T) {
	s := newTestServer(t)
	tourist := s.token(t, uuid.New(), auth.RoleTourist)
	room := s.createHotel(t, s.token(t, uuid.New(), auth.RoleHotelier), 3)

	tests := []struct {
		name     string
		path     string
		body     map[string]any
		wantCode string
	}{
		{"unknown domain", "/api/v1/bookings/spa", map[string]any{"offering_id": room.ID}, string(domain.CodeValidation)},
		{"bad date format", "/api/v1/bookings/hotel", map[string]any{"offering_id": room.ID, "start_date": "01/03/2030", "end_date": "2030-03-02"}, string(domain.CodeValidation)},
		{"empty range", "/api/v1/bookings/hotel", map[string]any{"offering_id": room.ID, "start_date": "2030-03-02", "end_date": "2030-03-02"}, string(domain.CodeInvalidRange)},
		{"missing dates", "/api/v1/bookings/hotel", map[string]any{"offering_id": room.ID}, string(domain.CodeValidation)},
		{"transport without pickup", "/api/v1/bookings/transport", map[string]any{"offering_id": room.ID, "date": "2030-03-02"}, string(domain.CodeValidation)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := s.do(t, http.MethodPost, tt.path, tourist, tt.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}

	code, env := s.do(t, http.MethodPost, "/api/v1/bookings/guide", tourist, map[string]any{
		"offering_id": room.ID, "date": "2030-03-02", "days": 2,
	})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, string(domain.CodeNotFound), env.Error.Code)
}

func TestAuthAndRoles(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodPost, "/api/v1/bookings/hotel", "", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)

	code, _ = s.do(t, http.MethodPost, "/api/v1/offerings/hotel", s.token(t, uuid.New(), auth.RoleTourist), map[string]any{"name": "x"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodPost, "/api/v1/offerings/guide", s.token(t, uuid.New(), auth.RoleHotelier), map[string]any{"name": "x"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodGet, "/api/v1/admin/bookings", s.token(t, uuid.New(), auth.RoleTourist), nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestGuideLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	guideToken := s.token(t, uuid.New(), auth.RoleTourGuide)
	tourist := s.token(t, uuid.New(), auth.RoleTourist)

	code, env := s.do(t, http.MethodPost, "/api/v1/offerings/tour_guide", guideToken, map[string]any{
		"name": "Kasun", "price_cents": 800000, "languages": []string{"en", "si"},
	})
	require.Equal(t, http.StatusCreated, code, env.Error.Message)
	var guide application.OfferingDTO
	require.NoError(t, json.Unmarshal(env.Data, &guide))

	_, first := s.do(t, http.MethodPost, "/api/v1/bookings/guide", tourist, map[string]any{
		"offering_id": guide.ID, "date": "2030-08-10", "days": 3,
	})
	_, second := s.do(t, http.MethodPost, "/api/v1/bookings/guide", tourist, map[string]any{
		"offering_id": guide.ID, "date": "2030-08-11", "days": 1,
	})
	require.NotEmpty(t, first.ReservationID)
	require.NotEmpty(t, second.ReservationID)

	code, _ = s.do(t, http.MethodPut, "/api/v1/bookings/guide/"+first.ReservationID+"/status", guideToken, map[string]any{"status": "confirmed"})
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(t, http.MethodGet, "/api/v1/availability/guide?offering_id="+guide.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, code)
	var a reservationDomain.Availability
	require.NoError(t, json.Unmarshal(env.Data, &a))
	assert.False(t, a.Sufficient)

	code, env = s.do(t, http.MethodPut, "/api/v1/bookings/guide/"+second.ReservationID+"/status", guideToken, map[string]any{"status": "confirmed"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, string(domain.CodeInsufficientInventory), env.Error.Code)

	code, _ = s.do(t, http.MethodPut, "/api/v1/bookings/guide/"+first.ReservationID+"/status", guideToken, map[string]any{"status": "cancelled"})
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodPut, "/api/v1/bookings/guide/"+second.ReservationID+"/status", guideToken, map[string]any{"status": "confirmed"})
	assert.Equal(t, http.StatusOK, code)
}

func TestHistoryAndAdmin(t *testing.T) {
	s := newTestServer(t)
	touristID := uuid.New()
	tourist := s.token(t, touristID, auth.RoleTourist)
	room := s.createHotel(t, s.token(t, uuid.New(), auth.RoleHotelier), 5)

	for _, dates := range [][2]string{{"2030-01-01", "2030-01-03"}, {"2020-01-01", "2020-01-02"}} {
		code, _ := s.do(t, http.MethodPost, "/api/v1/bookings/hotel", tourist, map[string]any{
			"offering_id": room.ID, "start_date": dates[0], "end_date": dates[1],
		})
		require.Equal(t, http.StatusCreated, code)
	}

	code, env := s.do(t, http.MethodGet, "/api/v1/me/bookings", tourist, nil)
	require.Equal(t, http.StatusOK, code)
	var history application.HistoryDTO
	require.NoError(t, json.Unmarshal(env.Data, &history))
	assert.Len(t, history.Upcoming, 1)
	assert.Len(t, history.Completed, 1)
	assert.Empty(t, history.Ongoing)

	code, env = s.do(t, http.MethodGet, "/api/v1/me/bookings?type=guide", tourist, nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &history))
	assert.Empty(t, history.Upcoming)

	code, _ = s.do(t, http.MethodGet, "/api/v1/me/bookings?type=spa", tourist, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	admin := s.token(t, uuid.New(), auth.RoleAdmin)
	code, env = s.do(t, http.MethodGet, "/api/v1/admin/stats/bookings", admin, nil)
	require.Equal(t, http.StatusOK, code)
	var stats application.ReservationStatsDTO
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(2), stats.TotalReservations)
	assert.Equal(t, int64(2), stats.ByStatus["pending"])

	code, _ = s.do(t, http.MethodGet, "/api/v1/admin/bookings?limit=500", admin, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestParsePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		query     string
		wantPage  int
		wantLimit int
	}{
		{"", 1, 20},
		{"?page=3&limit=50", 3, 50},
		{"?page=-1&limit=0", 1, 20},
		{"?limit=1000", 1, 100},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
		page, limit := parsePagination(c)
		assert.Equal(t, tt.wantPage, page, tt.query)
		assert.Equal(t, tt.wantLimit, limit, tt.query)
	}
}

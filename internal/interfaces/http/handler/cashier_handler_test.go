package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appcashier "github.com/hotelops/backend/internal/application/cashier"
	"github.com/hotelops/backend/internal/infrastructure/config"
	"github.com/hotelops/backend/internal/infrastructure/logger"
	"github.com/hotelops/backend/internal/infrastructure/persistence"
	"github.com/hotelops/backend/internal/interfaces/http/dto"
	"github.com/hotelops/backend/internal/interfaces/http/middleware"
	"github.com/hotelops/backend/internal/interfaces/http/router"
)

const testDate = "2025-03-14"

type testServer struct {
	engine *gin.Engine
	userID uuid.UUID
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.SetupValidator())

	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver:      persistence.DriverSQLite,
		Path:        ":memory:",
		LogLevel:    "silent",
		AutoMigrate: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	scope := persistence.NewGormTransactionScope(db.DB)
	opts := appcashier.DefaultOptions()
	handlers := CashierHandlers{
		Days:     NewDayHandler(appcashier.NewDayService(scope, opts)),
		Shifts:   NewShiftHandler(appcashier.NewShiftService(scope, opts)),
		Vouchers: NewVoucherHandler(appcashier.NewVoucherService(scope, opts)),
		History:  NewHistoryHandler(appcashier.NewHistoryService(scope)),
		Reports:  NewReportHandler(appcashier.NewReportService(scope, opts)),
	}

	engine := gin.New()
	engine.Use(logger.GinMiddleware(zap.NewNop()))
	system := NewSystemHandler("cashier-test", "test", db, nil)
	engine.GET("/health", system.Health)

	r := router.NewRouter(engine)
	r.Register(CashierRoutes(handlers))
	r.Setup()

	return &testServer{engine: engine, userID: uuid.New()}
}

func (s *testServer) request(t *testing.T, method, path string, body any, withUser bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if withUser {
		req.Header.Set(middleware.UserIDHeader, s.userID.String())
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	env := decodeEnvelope(t, w)
	require.True(t, env.Success, w.Body.String())
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func (s *testServer) initializeDay(t *testing.T) appcashier.DayResponse {
	t.Helper()
	w := s.request(t, http.MethodPost, "/api/v1/cashier/days", map[string]any{
		"date":            testDate,
		"primary_user_id": s.userID,
	}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeData[appcashier.DayResponse](t, w)
}

func TestDayHandler_Initialize(t *testing.T) {
	s := newTestServer(t)

	t.Run("requires the acting user", func(t *testing.T) {
		w := s.request(t, http.MethodPost, "/api/v1/cashier/days", map[string]any{
			"date":            testDate,
			"primary_user_id": s.userID,
		}, false)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		env := decodeEnvelope(t, w)
		assert.Equal(t, dto.ErrCodeUnauthorized, env.Error.Code)
	})

	t.Run("creates the day with its shifts", func(t *testing.T) {
		day := s.initializeDay(t)
		assert.Equal(t, testDate, day.Date)
		assert.Equal(t, "open", day.Status)
		assert.Len(t, day.Shifts, 4)
		assert.Equal(t, s.userID, day.CreatedBy)
	})

	t.Run("rejects a second initialization", func(t *testing.T) {
		w := s.request(t, http.MethodPost, "/api/v1/cashier/days", map[string]any{
			"date":            testDate,
			"primary_user_id": s.userID,
		}, true)
		assert.Equal(t, http.StatusConflict, w.Code)
		env := decodeEnvelope(t, w)
		assert.Equal(t, dto.ErrCodeDuplicateDay, env.Error.Code)
	})
}

func TestDayHandler_Get(t *testing.T) {
	s := newTestServer(t)

	t.Run("malformed date", func(t *testing.T) {
		w := s.request(t, http.MethodGet, "/api/v1/cashier/days/14-03-2025", nil, false)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w)
		assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)
	})

	t.Run("unknown date", func(t *testing.T) {
		w := s.request(t, http.MethodGet, "/api/v1/cashier/days/"+testDate, nil, false)
		assert.Equal(t, http.StatusNotFound, w.Code)
		env := decodeEnvelope(t, w)
		assert.Equal(t, dto.ErrCodeNotFound, env.Error.Code)
	})

	t.Run("existing date", func(t *testing.T) {
		s.initializeDay(t)
		w := s.request(t, http.MethodGet, "/api/v1/cashier/days/"+testDate, nil, false)
		require.Equal(t, http.StatusOK, w.Code)
		day := decodeData[appcashier.DayResponse](t, w)
		assert.Equal(t, testDate, day.Date)

		w = s.request(t, http.MethodGet, "/api/v1/cashier/days/"+testDate+"/shifts", nil, false)
		require.Equal(t, http.StatusOK, w.Code)
		shifts := decodeData[[]appcashier.ShiftResponse](t, w)
		assert.Len(t, shifts, 4)
	})
}

func TestDayHandler_CloseNotReady(t *testing.T) {
	s := newTestServer(t)
	s.initializeDay(t)

	w := s.request(t, http.MethodGet, "/api/v1/cashier/days/"+testDate+"/can-close", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	check := decodeData[appcashier.CanCloseResponse](t, w)
	assert.False(t, check.CanClose)
	assert.Len(t, check.ValidationErrors, 4)

	w = s.request(t, http.MethodPost, "/api/v1/cashier/days/"+testDate+"/close", nil, true)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, dto.ErrCodeDailyNotReady, env.Error.Code)
	assert.Len(t, env.Error.Details, 4)
	assert.False(t, env.Error.Retryable)
}

func TestShiftHandler_Lifecycle(t *testing.T) {
	s := newTestServer(t)
	day := s.initializeDay(t)
	shiftPath := "/api/v1/cashier/shifts/" + day.Shifts[0].ID.String()

	t.Run("invalid payment method", func(t *testing.T) {
		w := s.request(t, http.MethodPut, shiftPath+"/payments", map[string]any{
			"lines": []map[string]any{{"method": "cheque", "amount": "10.00"}},
		}, true)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w)
		assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)
		require.NotEmpty(t, env.Error.Fields)
		assert.Equal(t, "lines[0].method", env.Error.Fields[0].Field)
	})

	t.Run("malformed shift id", func(t *testing.T) {
		w := s.request(t, http.MethodGet, "/api/v1/cashier/shifts/not-a-uuid", nil, false)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("records payments", func(t *testing.T) {
		w := s.request(t, http.MethodPut, shiftPath+"/payments", map[string]any{
			"lines": []map[string]any{
				{"method": "card", "amount": "120.50"},
				{"method": "transfer", "amount": "30.00", "reference": "TR-1"},
			},
		}, true)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		shift := decodeData[appcashier.ShiftResponse](t, w)
		assert.Equal(t, "150.50", shift.PaymentsTotal.String())
		assert.Equal(t, "in_progress", shift.Status)
	})

	t.Run("closes and then rejects edits", func(t *testing.T) {
		w := s.request(t, http.MethodPost, shiftPath+"/close", nil, true)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		shift := decodeData[appcashier.ShiftResponse](t, w)
		assert.Equal(t, "closed", shift.Status)

		w = s.request(t, http.MethodPut, shiftPath+"/income", map[string]any{"income": "10.00"}, true)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		env := decodeEnvelope(t, w)
		assert.Equal(t, dto.ErrCodeInvalidStateTransition, env.Error.Code)
	})

	t.Run("reopen requires a reason", func(t *testing.T) {
		w := s.request(t, http.MethodPost, shiftPath+"/reopen", map[string]any{}, true)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = s.request(t, http.MethodPost, shiftPath+"/reopen", map[string]any{"reason": "miscounted"}, true)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})
}

func TestVoucherHandler(t *testing.T) {
	s := newTestServer(t)

	w := s.request(t, http.MethodPost, "/api/v1/cashier/vouchers", map[string]any{
		"amount": "40.00",
		"reason": "supplier delivery",
	}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	voucher := decodeData[appcashier.VoucherResponse](t, w)
	assert.Equal(t, "pending", voucher.Status)

	w = s.request(t, http.MethodGet, "/api/v1/cashier/vouchers/active", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	active := decodeData[appcashier.ActiveVouchersResponse](t, w)
	assert.Equal(t, 1, active.Count)
	assert.Equal(t, "40.00", active.TotalAmount.String())

	w = s.request(t, http.MethodPost, "/api/v1/cashier/vouchers/"+voucher.ID.String()+"/cancel",
		map[string]any{"reason": "duplicate"}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cancelled := decodeData[appcashier.VoucherResponse](t, w)
	assert.Equal(t, "cancelled", cancelled.Status)

	w = s.request(t, http.MethodPost, "/api/v1/cashier/vouchers/"+voucher.ID.String()+"/cancel", nil, true)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.request(t, http.MethodGet, "/api/v1/cashier/vouchers?status=cancelled&page_size=5", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(1), env.Meta.Total)
	assert.Equal(t, 5, env.Meta.PageSize)
}

func TestAmountsAreBounded(t *testing.T) {
	s := newTestServer(t)
	day := s.initializeDay(t)
	shiftPath := "/api/v1/cashier/shifts/" + day.Shifts[0].ID.String()

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"exponent voucher amount", http.MethodPost, "/api/v1/cashier/vouchers",
			map[string]any{"amount": "1e2000000", "reason": "float"}},
		{"oversized voucher amount", http.MethodPost, "/api/v1/cashier/vouchers",
			map[string]any{"amount": "1000000000000.00", "reason": "float"}},
		{"oversized income", http.MethodPut, shiftPath + "/income",
			map[string]any{"income": "99999999999999"}},
		{"denomination subtotal overflows", http.MethodPut, shiftPath + "/denominations",
			map[string]any{"lines": []map[string]any{{"denomination": "500.00", "quantity": int64(math.MaxInt64)}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.request(t, tt.method, tt.path, tt.body, true)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			env := decodeEnvelope(t, w)
			assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)
		})
	}

	w := s.request(t, http.MethodGet, "/api/v1/cashier/vouchers/active", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	active := decodeData[appcashier.ActiveVouchersResponse](t, w)
	assert.Zero(t, active.Count)
}

func TestStreamedBodyOverLimit(t *testing.T) {
	s := newTestServer(t)
	day := s.initializeDay(t)

	lines := make([]map[string]any, 0, 40)
	for i := 1; i <= 40; i++ {
		lines = append(lines, map[string]any{"denomination": "0.05", "quantity": i})
	}
	raw, err := json.Marshal(map[string]any{"lines": lines})
	require.NoError(t, err)

	// No Content-Length, so the limit is only hit while decoding
	req := httptest.NewRequest(http.MethodPut,
		"/api/v1/cashier/shifts/"+day.Shifts[0].ID.String()+"/denominations", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.UserIDHeader, s.userID.String())
	req.ContentLength = -1
	w := httptest.NewRecorder()
	req.Body = http.MaxBytesReader(w, req.Body, 128)
	s.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())
	env := decodeEnvelope(t, w)
	assert.Equal(t, middleware.ErrCodeRequestTooLarge, env.Error.Code)

	w = s.request(t, http.MethodGet, "/api/v1/cashier/shifts/"+day.Shifts[0].ID.String(), nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	shift := decodeData[appcashier.ShiftResponse](t, w)
	assert.Equal(t, "0.00", shift.CashCounted.String())
	assert.Empty(t, shift.Denominations)
}

func TestHistoryHandler_List(t *testing.T) {
	s := newTestServer(t)
	day := s.initializeDay(t)

	w := s.request(t, http.MethodGet, "/api/v1/cashier/history?record_id="+day.ID.String(), nil, false)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	entries := decodeData[[]appcashier.HistoryEntryResponse](t, w)
	require.NotEmpty(t, entries)
	assert.Equal(t, "created", entries[0].Action)
	assert.Equal(t, s.userID, entries[0].ChangedBy)
}

func TestReportHandler(t *testing.T) {
	s := newTestServer(t)
	s.initializeDay(t)

	t.Run("monthly json", func(t *testing.T) {
		w := s.request(t, http.MethodGet, "/api/v1/cashier/reports/monthly/2025/3", nil, false)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		report := decodeData[appcashier.MonthlyReport](t, w)
		assert.Equal(t, 2025, report.Year)
		assert.Equal(t, 3, report.Month)
		assert.Equal(t, 1, report.OpenDays)
	})

	t.Run("invalid month", func(t *testing.T) {
		w := s.request(t, http.MethodGet, "/api/v1/cashier/reports/monthly/2025/13", nil, false)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("xlsx export", func(t *testing.T) {
		w := s.request(t, http.MethodGet, "/api/v1/cashier/reports/monthly/2025/3/export", nil, false)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
		assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
	})
}

func TestSystemHandler_Health(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		db         Pinger
		cache      Pinger
		wantStatus int
		wantBody   HealthResponse
	}{
		{
			name:       "healthy without cache",
			db:         stubPinger{},
			wantStatus: http.StatusOK,
			wantBody:   HealthResponse{Status: "ok", Database: "up", Cache: "disabled"},
		},
		{
			name:       "cache down degrades",
			db:         stubPinger{},
			cache:      stubPinger{err: errors.New("connection refused")},
			wantStatus: http.StatusOK,
			wantBody:   HealthResponse{Status: "degraded", Database: "up", Cache: "down"},
		},
		{
			name:       "database down",
			db:         stubPinger{err: errors.New("connection refused")},
			cache:      stubPinger{},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   HealthResponse{Status: "unavailable", Database: "down", Cache: "up"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := gin.New()
			engine.GET("/health", NewSystemHandler("cashier", "test", tt.db, tt.cache).Health)

			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			var body HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestBaseHandler_HandleError_Internal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(logger.GinMiddleware(zap.NewNop()))
	engine.GET("/boom", func(c *gin.Context) {
		var h BaseHandler
		h.HandleError(c, errors.New("pq: relation does not exist"))
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, dto.ErrCodeInternal, env.Error.Code)
	assert.NotContains(t, w.Body.String(), "relation does not exist")
	assert.NotEmpty(t, env.Error.RequestID)
}

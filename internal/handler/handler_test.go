package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/psholiveira/barber-system/internal/apperror"
	"github.com/psholiveira/barber-system/internal/dto"
	"github.com/psholiveira/barber-system/internal/handler"
	"github.com/psholiveira/barber-system/internal/middleware"
	"github.com/psholiveira/barber-system/internal/model"
	"github.com/psholiveira/barber-system/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-unit-tests-only"

func init() { gin.SetMode(gin.TestMode) }

// ── Fakes ────────────────────────────────────────────────────────────────────
// Embedding the interface keeps the fakes small; unexpected calls panic.

type fakeRecords struct {
	service.RecordService
	gotActor service.Actor
	gotReq   dto.CreateServiceRecordRequest
	err      error
}

func (f *fakeRecords) Create(_ context.Context, actor service.Actor, req dto.CreateServiceRecordRequest) (*dto.ServiceRecordResponse, error) {
	f.gotActor, f.gotReq = actor, req
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ServiceRecordResponse{ID: uuid.NewString(), BarberID: actor.UserID.String(), PriceCharged: req.PriceCharged}, nil
}

type fakeCash struct {
	service.CashService
	err error
}

func (f *fakeCash) Open(_ context.Context, openedBy uuid.UUID, req dto.OpenCashRequest) (*dto.CashSessionResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.CashSessionResponse{ID: uuid.NewString(), Open: true, OpenedBy: openedBy.String(), InitialAmount: req.InitialAmount}, nil
}

func (f *fakeCash) Close(_ context.Context, _, _ uuid.UUID, _ dto.CloseCashRequest) (*dto.CashSessionResponse, error) {
	return nil, f.err
}

// ── Helpers ──────────────────────────────────────────────────────────────────

type tokenUser struct {
	id   uuid.UUID
	role model.Role
}

func signToken(t *testing.T, u tokenUser) string {
	t.Helper()
	claims := &middleware.JWTClaims{
		UserID:    u.id.String(),
		Username:  "tester",
		Role:      string(u.role),
		TokenType: service.TokenAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func doJSON(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func recordsRouter(svc service.RecordService) *gin.Engine {
	r := gin.New()
	h := handler.NewRecordsHandler(svc)
	r.POST("/v1/service-records", middleware.JWTAuth(testSecret), middleware.RequireCapability(model.CapRegisterSale), h.Create)
	return r
}

func cashRouter(svc service.CashService) *gin.Engine {
	r := gin.New()
	h := handler.NewCashHandler(svc)
	g := r.Group("/v1/cash", middleware.JWTAuth(testSecret), middleware.RequireCapability(model.CapManageCash))
	g.POST("/sessions", h.Open)
	g.POST("/sessions/:id/close", h.Close)
	return r
}

func validRecordBody(serviceID uuid.UUID) map[string]any {
	return map[string]any{
		"service":        serviceID.String(),
		"price_charged":  "35.00",
		"payment_method": "CASH",
	}
}

// ── Service records ──────────────────────────────────────────────────────────

func TestCreateRecord_Created(t *testing.T) {
	fake := &fakeRecords{}
	barber := tokenUser{uuid.New(), model.RoleBarber}

	w := doJSON(recordsRouter(fake), http.MethodPost, "/v1/service-records", signToken(t, barber), validRecordBody(uuid.New()))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, barber.id, fake.gotActor.UserID)
	assert.False(t, fake.gotActor.Privileged)
	assert.True(t, decimal.RequireFromString("35").Equal(fake.gotReq.PriceCharged))
}

func TestCreateRecord_ManagerIsPrivileged(t *testing.T) {
	fake := &fakeRecords{}
	w := doJSON(recordsRouter(fake), http.MethodPost, "/v1/service-records",
		signToken(t, tokenUser{uuid.New(), model.RoleManager}), validRecordBody(uuid.New()))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, fake.gotActor.Privileged)
}

func TestCreateRecord_NoOpenCashSession(t *testing.T) {
	fake := &fakeRecords{err: apperror.ErrNoOpenCashSession}

	w := doJSON(recordsRouter(fake), http.MethodPost, "/v1/service-records",
		signToken(t, tokenUser{uuid.New(), model.RoleBarber}), validRecordBody(uuid.New()))
	require.Equal(t, http.StatusConflict, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "no_open_cash_session", body["code"])
	assert.Equal(t, apperror.ErrNoOpenCashSession.Message, body["detail"])
}

func TestCreateRecord_BodyValidation(t *testing.T) {
	fake := &fakeRecords{}
	r := recordsRouter(fake)
	token := signToken(t, tokenUser{uuid.New(), model.RoleBarber})

	bad := validRecordBody(uuid.New())
	bad["price_charged"] = "0"
	bad["payment_method"] = "CHEQUE"
	w := doJSON(r, http.MethodPost, "/v1/service-records", token, bad)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	fields := decodeBody(t, w)["fields"].(map[string]any)
	assert.Contains(t, fields, "PriceCharged")
	assert.Contains(t, fields, "PaymentMethod")

	req := httptest.NewRequest(http.MethodPost, "/v1/service-records", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateRecord_IntegrityFaultIsOpaque(t *testing.T) {
	fake := &fakeRecords{err: apperror.Integrity(errors.New(`duplicate key value violates unique constraint "payments_service_record_id_key"`))}

	w := doJSON(recordsRouter(fake), http.MethodPost, "/v1/service-records",
		signToken(t, tokenUser{uuid.New(), model.RoleBarber}), validRecordBody(uuid.New()))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "payments_service_record_id_key")
}

func TestCreateRecord_RequiresToken(t *testing.T) {
	w := doJSON(recordsRouter(&fakeRecords{}), http.MethodPost, "/v1/service-records", "", validRecordBody(uuid.New()))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// ── Cash ─────────────────────────────────────────────────────────────────────

func TestOpenCash_BarberForbidden(t *testing.T) {
	w := doJSON(cashRouter(&fakeCash{}), http.MethodPost, "/v1/cash/sessions",
		signToken(t, tokenUser{uuid.New(), model.RoleBarber}), map[string]any{"initial_amount": "100"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOpenCash_Created(t *testing.T) {
	manager := tokenUser{uuid.New(), model.RoleManager}
	w := doJSON(cashRouter(&fakeCash{}), http.MethodPost, "/v1/cash/sessions", signToken(t, manager), map[string]any{"initial_amount": "100"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, manager.id.String(), decodeBody(t, w)["opened_by"])
}

func TestOpenCash_AlreadyOpenIsConflict(t *testing.T) {
	fake := &fakeCash{err: apperror.InvalidState("Já existe um caixa aberto.")}
	w := doJSON(cashRouter(fake), http.MethodPost, "/v1/cash/sessions",
		signToken(t, tokenUser{uuid.New(), model.RoleAdmin}), map[string]any{"initial_amount": "0"})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Já existe um caixa aberto.", decodeBody(t, w)["detail"])
}

func TestCloseCash(t *testing.T) {
	token := signToken(t, tokenUser{uuid.New(), model.RoleManager})

	w := doJSON(cashRouter(&fakeCash{}), http.MethodPost, "/v1/cash/sessions/not-a-uuid/close", token, map[string]any{"closing_amount": "10"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(cashRouter(&fakeCash{}), http.MethodPost, "/v1/cash/sessions/"+uuid.NewString()+"/close", token, map[string]any{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "closing_amount required")

	fake := &fakeCash{err: apperror.NotFound("Caixa", nil)}
	w = doJSON(cashRouter(fake), http.MethodPost, "/v1/cash/sessions/"+uuid.NewString()+"/close", token, map[string]any{"closing_amount": "10"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ── Commission recalculation queue ───────────────────────────────────────────

type fakeQueue struct {
	got []dto.CommissionRecalcRequest
	err error
}

func (q *fakeQueue) EnqueueRecalculation(_ context.Context, req dto.CommissionRecalcRequest) error {
	q.got = append(q.got, req)
	return q.err
}

func recalcRouter(queue handler.RecalcQueue) *gin.Engine {
	r := gin.New()
	h := handler.NewCommissionsHandler(nil, queue)
	r.POST("/v1/commissions/recalculate", middleware.JWTAuth(testSecret), middleware.RequireCapability(model.CapViewAllFinance), h.RecalculateRange)
	return r
}

func TestRecalculateRange(t *testing.T) {
	token := signToken(t, tokenUser{uuid.New(), model.RoleManager})
	queue := &fakeQueue{}
	r := recalcRouter(queue)

	w := doJSON(r, http.MethodPost, "/v1/commissions/recalculate", token, map[string]any{"from": "2026-10-01", "to": "2026-10-31"})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	require.Len(t, queue.got, 1)
	assert.Equal(t, "2026-10-01", queue.got[0].From)

	w = doJSON(r, http.MethodPost, "/v1/commissions/recalculate", token, map[string]any{"from": "01/10/2026", "to": "2026-10-31"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(r, http.MethodPost, "/v1/commissions/recalculate", token, map[string]any{"from": "2026-10-31", "to": "2026-10-01"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Len(t, queue.got, 1)

	queue.err = errors.New("job queue unavailable")
	w = doJSON(r, http.MethodPost, "/v1/commissions/recalculate", token, map[string]any{"from": "2026-10-01", "to": "2026-10-31"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRecalculateRange_BarberForbidden(t *testing.T) {
	w := doJSON(recalcRouter(&fakeQueue{}), http.MethodPost, "/v1/commissions/recalculate",
		signToken(t, tokenUser{uuid.New(), model.RoleBarber}), map[string]any{"from": "2026-10-01", "to": "2026-10-31"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// ── Dashboard ────────────────────────────────────────────────────────────────

type fakeDashboard struct {
	service.DashboardService
	gotActor  service.Actor
	gotMonths int
}

func (f *fakeDashboard) RevenueByMonth(_ context.Context, actor service.Actor, months int) (*dto.RevenueByMonthResponse, error) {
	f.gotActor, f.gotMonths = actor, months
	if months > 36 {
		return nil, apperror.Validation("months deve estar entre 1 e 36")
	}
	return &dto.RevenueByMonthResponse{Timezone: "UTC", Series: []dto.PeriodTotal{{Period: "2026-10", Total: decimal.RequireFromString("105")}}}, nil
}

func TestRevenueByMonth(t *testing.T) {
	fake := &fakeDashboard{}
	r := gin.New()
	r.GET("/v1/dashboard/revenue/by-month", middleware.JWTAuth(testSecret), handler.NewDashboardHandler(fake).RevenueByMonth)
	barber := tokenUser{uuid.New(), model.RoleBarber}
	token := signToken(t, barber)

	w := doJSON(r, http.MethodGet, "/v1/dashboard/revenue/by-month?months=6", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 6, fake.gotMonths)
	assert.Equal(t, barber.id, fake.gotActor.UserID)
	series := decodeBody(t, w)["series"].([]any)
	require.Len(t, series, 1)
	assert.Equal(t, "2026-10", series[0].(map[string]any)["period"])

	w = doJSON(r, http.MethodGet, "/v1/dashboard/revenue/by-month?months=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/v1/dashboard/revenue/by-month?months=48", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

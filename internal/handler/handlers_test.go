package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/EdinMesanovic/postinfo/internal/dto"
	"github.com/EdinMesanovic/postinfo/internal/middleware"
	"github.com/EdinMesanovic/postinfo/internal/model"
	"github.com/EdinMesanovic/postinfo/internal/service"
	"github.com/EdinMesanovic/postinfo/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Service stubs ─────────────────────────────────────────────────────────────

type stubAuthService struct {
	loginResp *dto.LoginResponse
	loginErr  error
}

func (s *stubAuthService) Login(context.Context, dto.LoginRequest) (*dto.LoginResponse, error) {
	return s.loginResp, s.loginErr
}
func (s *stubAuthService) Refresh(context.Context, string) (*dto.RefreshResponse, error) {
	return nil, service.ErrInvalidRefresh
}
func (s *stubAuthService) Logout(context.Context, uuid.UUID) error { return nil }
func (s *stubAuthService) CreateUser(context.Context, dto.CreateUserRequest) (*dto.UserResponse, error) {
	return nil, nil
}
func (s *stubAuthService) ListUsers(context.Context, bool) ([]dto.UserResponse, error) {
	return nil, nil
}
func (s *stubAuthService) DisableUser(context.Context, uuid.UUID) error    { return nil }
func (s *stubAuthService) ReactivateUser(context.Context, uuid.UUID) error { return nil }

type stubShipmentService struct {
	scanResult *service.ScanResult
	scanErr    error
}

func (s *stubShipmentService) Create(context.Context, dto.CreateShipmentRequest) (*dto.ShipmentResponse, error) {
	return nil, nil
}
func (s *stubShipmentService) List(context.Context, dto.ListShipmentsQuery) ([]dto.ShipmentResponse, error) {
	return nil, nil
}
func (s *stubShipmentService) Get(context.Context, uuid.UUID) (*dto.ShipmentResponse, error) {
	return nil, service.ErrNotFound
}
func (s *stubShipmentService) ScanPickup(context.Context, string, uuid.UUID) (*service.ScanResult, error) {
	return s.scanResult, s.scanErr
}
func (s *stubShipmentService) LabelPath(context.Context, uuid.UUID) (string, error) {
	return "", service.ErrNotFound
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func testTokens() *token.Issuer {
	return token.NewIssuer(
		"access_secret_32_chars_minimum!!",
		"refresh_secret_32_chars_minimum!",
		time.Hour,
		24*time.Hour,
	)
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	r.ServeHTTP(w, req)
	return w
}

// ── Tests: Login wire format ──────────────────────────────────────────────────

func TestLoginHandler_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &stubAuthService{loginResp: &dto.LoginResponse{
		OK:           true,
		AccessToken:  "access",
		RefreshToken: "refresh",
		User:         dto.UserResponse{ID: uuid.NewString(), Username: "alice", Role: "ADMIN", Status: "ACTIVE"},
	}}
	r := gin.New()
	r.POST("/login", NewAuthHandler(svc).Login)

	w := postJSON(t, r, "/login", dto.LoginRequest{Username: "alice", Password: "correct-pw"}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, "access", resp["accessToken"])
	assert.Equal(t, "refresh", resp["refreshToken"])
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &stubAuthService{loginErr: service.ErrInvalidCredentials}
	r := gin.New()
	r.POST("/login", NewAuthHandler(svc).Login)

	w := postJSON(t, r, "/login", dto.LoginRequest{Username: "alice", Password: "wrong-pw"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")
}

func TestLoginHandler_ValidationFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", NewAuthHandler(&stubAuthService{}).Login)

	// Username below the 3-char minimum
	w := postJSON(t, r, "/login", dto.LoginRequest{Username: "a", Password: "pw"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION")
}

// ── Tests: Scan wire format ───────────────────────────────────────────────────

func scanRouter(svc service.ShipmentService, tokens *token.Issuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/scan", middleware.JWTAuth(tokens), middleware.RequireRole("DRIVER", "ADMIN"),
		NewShipmentsHandler(svc).ScanPickup)
	return r
}

func TestScanHandler_Picked(t *testing.T) {
	tokens := testTokens()
	driver := uuid.New()
	now := time.Now()
	shipment := &model.Shipment{
		ID:       uuid.New(),
		QRSlug:   "a19c3f9b7d2e",
		Status:   model.StatusPickedByDriver,
		PickedBy: &driver,
		PickedAt: &now,
	}
	r := scanRouter(&stubShipmentService{scanResult: &service.ScanResult{Picked: true, Shipment: shipment}}, tokens)

	tok, err := tokens.IssueAccess(driver.String(), "DRIVER", "bob")
	require.NoError(t, err)

	w := postJSON(t, r, "/scan", dto.ScanPickupRequest{QRSlug: "a19c3f9b7d2e"}, tok)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.ScanPickupResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.True(t, resp.Picked)
	assert.False(t, resp.AlreadyPicked)
	assert.Equal(t, shipment.ID.String(), resp.ShipmentID)
	assert.Equal(t, model.StatusPickedByDriver, resp.Status)
	require.NotNil(t, resp.PickedBy)
	assert.Equal(t, driver.String(), *resp.PickedBy)
}

func TestScanHandler_AlreadyPicked(t *testing.T) {
	tokens := testTokens()
	driver := uuid.New()
	now := time.Now()
	shipment := &model.Shipment{
		ID:       uuid.New(),
		QRSlug:   "a19c3f9b7d2e",
		Status:   model.StatusPickedByDriver,
		PickedBy: &driver,
		PickedAt: &now,
	}
	r := scanRouter(&stubShipmentService{scanResult: &service.ScanResult{AlreadyPicked: true, Shipment: shipment}}, tokens)

	tok, err := tokens.IssueAccess(uuid.NewString(), "DRIVER", "carl")
	require.NoError(t, err)

	w := postJSON(t, r, "/scan", dto.ScanPickupRequest{QRSlug: "a19c3f9b7d2e"}, tok)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.ScanPickupResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.False(t, resp.Picked)
	assert.True(t, resp.AlreadyPicked)
}

func TestScanHandler_UnknownSlug(t *testing.T) {
	tokens := testTokens()
	r := scanRouter(&stubShipmentService{scanErr: service.ErrNotFound}, tokens)

	tok, err := tokens.IssueAccess(uuid.NewString(), "DRIVER", "bob")
	require.NoError(t, err)

	w := postJSON(t, r, "/scan", dto.ScanPickupRequest{QRSlug: "ffffffffffff"}, tok)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "qr_not_found")
}

func TestScanHandler_Conflict(t *testing.T) {
	tokens := testTokens()
	r := scanRouter(&stubShipmentService{scanErr: service.ErrConflict}, tokens)

	tok, err := tokens.IssueAccess(uuid.NewString(), "DRIVER", "bob")
	require.NoError(t, err)

	w := postJSON(t, r, "/scan", dto.ScanPickupRequest{QRSlug: "a19c3f9b7d2e"}, tok)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "pickup_conflict")
}

func TestScanHandler_RequiresAuth(t *testing.T) {
	tokens := testTokens()
	r := scanRouter(&stubShipmentService{}, tokens)

	w := postJSON(t, r, "/scan", dto.ScanPickupRequest{QRSlug: "a19c3f9b7d2e"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

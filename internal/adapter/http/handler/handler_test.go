package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reimbursement-hub/internal/adapter/http/dto"
	"reimbursement-hub/internal/adapter/http/middleware"
	"reimbursement-hub/internal/core/domain"
	"reimbursement-hub/internal/core/ports"
	"reimbursement-hub/internal/core/ports/mocks"
	"reimbursement-hub/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func dataField(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "missing data field in %s", w.Body.String())
	return data
}

func authedContext(w *httptest.ResponseRecorder, userID uuid.UUID, role domain.Role) (*gin.Context, *gin.Engine) {
	c, e := gin.CreateTestContext(w)
	c.Set(middleware.CtxUserID, userID)
	c.Set(middleware.CtxUsername, "tester")
	c.Set(middleware.CtxUserRole, role)
	return c, e
}

// --- Auth Handler Tests ---

func TestRegister_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	userID := uuid.New()
	mockAuth.EXPECT().Register(gomock.Any(), "alice", "password123").
		Return(&domain.User{ID: userID, Username: "alice", Role: domain.RoleUser}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/register",
		jsonBody(t, dto.RegisterRequest{Username: "alice", Password: "password123"}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := dataField(t, w)
	assert.Equal(t, userID.String(), data["id"])
	assert.Equal(t, "alice", data["username"])
	assert.Equal(t, "USER", data["role"])
}

func TestRegister_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewAuthHandler(mocks.NewMockAuthService(ctrl))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader([]byte("{}")))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	user := &domain.User{ID: uuid.New(), Username: "alice", Role: domain.RoleUser}
	expiry := time.Now().Add(time.Hour)
	mockAuth.EXPECT().Login(gomock.Any(), "alice", "password123").
		Return("token-abc", user, expiry, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		jsonBody(t, dto.LoginRequest{Username: "alice", Password: "password123"}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataField(t, w)
	assert.Equal(t, "token-abc", data["token"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Login(gomock.Any(), "alice", "wrong").
		Return("", nil, time.Time{}, apperror.ErrInvalidCredentials())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		jsonBody(t, dto.LoginRequest{Username: "alice", Password: "wrong"}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// --- Request Handler Tests ---

func TestCreateRequest_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLifecycle := mocks.NewMockLifecycleService(ctrl)
	mockQuery := mocks.NewMockQueryService(ctrl)
	h := NewRequestHandler(mockLifecycle, mockQuery)

	userID := uuid.New()
	created := &domain.Request{
		ID:          uuid.New(),
		OwnerID:     userID,
		Amount:      decimal.RequireFromString("100.50"),
		Purpose:     "Taxi to airport",
		Attachments: []string{"receipts/taxi.pdf"},
		Status:      domain.RequestStatusPending,
		CreatedAt:   time.Now().UTC(),
	}

	mockLifecycle.EXPECT().Create(gomock.Any(), ports.CreateRequestInput{
		OwnerID:     userID,
		Amount:      "100.50",
		Purpose:     "Taxi to airport",
		Attachments: []string{"receipts/taxi.pdf"},
	}).Return(created, nil)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, userID, domain.RoleUser)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/requests",
		jsonBody(t, dto.CreateReimbursementRequest{
			Amount:      "100.50",
			Purpose:     "Taxi to airport",
			Attachments: []string{"receipts/taxi.pdf"},
		}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := dataField(t, w)
	assert.Equal(t, "100.50", data["amount"])
	assert.Equal(t, "PENDING", data["status"])
}

func TestCreateRequest_InvalidAmountPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLifecycle := mocks.NewMockLifecycleService(ctrl)
	h := NewRequestHandler(mockLifecycle, mocks.NewMockQueryService(ctrl))

	mockLifecycle.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrInvalidAmount())

	w := httptest.NewRecorder()
	c, _ := authedContext(w, uuid.New(), domain.RoleUser)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/requests",
		jsonBody(t, dto.CreateReimbursementRequest{
			Amount:      "12.345",
			Purpose:     "Snacks",
			Attachments: []string{"receipts/snacks.pdf"},
		}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "REQ_001", resp["error_code"])
}

func TestWithdraw_BadID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewRequestHandler(mocks.NewMockLifecycleService(ctrl), mocks.NewMockQueryService(ctrl))

	w := httptest.NewRecorder()
	c, _ := authedContext(w, uuid.New(), domain.RoleUser)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/requests/not-a-uuid/withdraw", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	h.Withdraw(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWithdraw_ForbiddenPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLifecycle := mocks.NewMockLifecycleService(ctrl)
	h := NewRequestHandler(mockLifecycle, mocks.NewMockQueryService(ctrl))

	requestID := uuid.New()
	callerID := uuid.New()
	mockLifecycle.EXPECT().Withdraw(gomock.Any(), requestID, callerID).
		Return(nil, apperror.ErrForbidden())

	w := httptest.NewRecorder()
	c, _ := authedContext(w, callerID, domain.RoleUser)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/requests/"+requestID.String()+"/withdraw", nil)
	c.Params = gin.Params{{Key: "id", Value: requestID.String()}}

	h.Withdraw(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRemainingFunds(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockQuery := mocks.NewMockQueryService(ctrl)
	h := NewRequestHandler(mocks.NewMockLifecycleService(ctrl), mockQuery)

	mockQuery.EXPECT().RemainingFunds(gomock.Any()).Return(decimal.RequireFromString("-42.10"), nil)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, uuid.New(), domain.RoleUser)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/funds", nil)

	h.RemainingFunds(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataField(t, w)
	assert.Equal(t, "-42.10", data["balance"])
}

// --- Admin Handler Tests ---

func adminHandlerWithMocks(ctrl *gomock.Controller) (*AdminHandler, *mocks.MockLifecycleService, *mocks.MockQueryService, *mocks.MockFundService, *mocks.MockAuditService) {
	lifecycle := mocks.NewMockLifecycleService(ctrl)
	query := mocks.NewMockQueryService(ctrl)
	fund := mocks.NewMockFundService(ctrl)
	audit := mocks.NewMockAuditService(ctrl)
	return NewAdminHandler(lifecycle, query, fund, audit), lifecycle, query, fund, audit
}

func TestAdminReview_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, lifecycle, _, _, _ := adminHandlerWithMocks(ctrl)

	requestID := uuid.New()
	reviewerID := uuid.New()
	processed := time.Now().UTC()
	approved := &domain.Request{
		ID:          requestID,
		OwnerID:     uuid.New(),
		Amount:      decimal.RequireFromString("300.00"),
		Purpose:     "Hotel",
		Attachments: []string{"receipts/hotel.pdf"},
		Status:      domain.RequestStatusApproved,
		ReviewerID:  &reviewerID,
		ProcessedAt: &processed,
	}

	lifecycle.EXPECT().Review(gomock.Any(), ports.ReviewInput{
		RequestID:    requestID,
		ReviewerID:   reviewerID,
		ReviewerRole: domain.RoleAdmin,
		Decision:     domain.RequestStatusApproved,
	}).Return(approved, nil)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, reviewerID, domain.RoleAdmin)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/admin/requests/"+requestID.String()+"/review",
		jsonBody(t, dto.ReviewRequest{Decision: "approved"})) // case-insensitive
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: requestID.String()}}

	h.Review(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataField(t, w)
	assert.Equal(t, "APPROVED", data["status"])
}

func TestAdminReview_ConflictPropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, lifecycle, _, _, _ := adminHandlerWithMocks(ctrl)

	requestID := uuid.New()
	lifecycle.EXPECT().Review(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrInvalidState("APPROVED"))

	w := httptest.NewRecorder()
	c, _ := authedContext(w, uuid.New(), domain.RoleAdmin)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/admin/requests/"+requestID.String()+"/review",
		jsonBody(t, dto.ReviewRequest{Decision: "REJECTED"}))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: requestID.String()}}

	h.Review(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAdminSetFunds_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, _, fund, _ := adminHandlerWithMocks(ctrl)

	fund.EXPECT().SetBalance(gomock.Any(), "5000.00").Return(nil)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, uuid.New(), domain.RoleAdmin)
	c.Request = httptest.NewRequest(http.MethodPut, "/api/v1/admin/funds",
		jsonBody(t, dto.SetFundsRequest{Amount: "5000.00"}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.SetFunds(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5000.00", dataField(t, w)["balance"])
}

func TestAdminSetFunds_NormalizesEchoedBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, _, fund, _ := adminHandlerWithMocks(ctrl)

	fund.EXPECT().SetBalance(gomock.Any(), "5").Return(nil)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, uuid.New(), domain.RoleAdmin)
	c.Request = httptest.NewRequest(http.MethodPut, "/api/v1/admin/funds",
		jsonBody(t, dto.SetFundsRequest{Amount: "5"}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.SetFunds(c)

	assert.Equal(t, http.StatusOK, w.Code)
	// The echoed balance uses the same two-decimal rendering as GetFunds.
	assert.Equal(t, "5.00", dataField(t, w)["balance"])
}

func TestAdminListPending(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, query, _, _ := adminHandlerWithMocks(ctrl)

	query.EXPECT().PendingQueue(gomock.Any()).Return([]domain.Request{
		{ID: uuid.New(), Status: domain.RequestStatusPending, Amount: decimal.New(10, 0)},
	}, nil)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, uuid.New(), domain.RoleAdmin)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/admin/requests/pending", nil)

	h.ListPending(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

// --- Router Tests ---

func TestRouter_AdminRoutesRequireAdminRole(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("user-token").Return(&ports.TokenClaims{
		UserID:   uuid.New(),
		Username: "alice",
		Role:     domain.RoleUser,
	}, nil)

	router := SetupRouter(RouterDeps{
		AuthSvc:      mocks.NewMockAuthService(ctrl),
		LifecycleSvc: mocks.NewMockLifecycleService(ctrl),
		QuerySvc:     mocks.NewMockQueryService(ctrl),
		FundSvc:      mocks.NewMockFundService(ctrl),
		AuditSvc:     mocks.NewMockAuditService(ctrl),
		TokenSvc:     tokenSvc,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/requests/pending", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_UnauthenticatedRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := SetupRouter(RouterDeps{
		AuthSvc:      mocks.NewMockAuthService(ctrl),
		LifecycleSvc: mocks.NewMockLifecycleService(ctrl),
		QuerySvc:     mocks.NewMockQueryService(ctrl),
		FundSvc:      mocks.NewMockFundService(ctrl),
		AuditSvc:     mocks.NewMockAuditService(ctrl),
		TokenSvc:     mocks.NewMockTokenService(ctrl),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/requests/mine", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

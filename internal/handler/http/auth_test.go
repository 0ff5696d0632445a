package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/AnaLR27/cs11-backend/internal/auth"
	"github.com/AnaLR27/cs11-backend/internal/domain"
	"github.com/AnaLR27/cs11-backend/internal/password"
	"github.com/AnaLR27/cs11-backend/internal/ratelimit"
	"github.com/AnaLR27/cs11-backend/internal/service"
	apperrors "github.com/AnaLR27/cs11-backend/pkg/errors"
	"github.com/AnaLR27/cs11-backend/pkg/health"
	pkglogger "github.com/AnaLR27/cs11-backend/pkg/logger"
)

// ============================================================================
// Mocks
// ============================================================================

type mockCredRepo struct {
	mock.Mock
}

func (m *mockCredRepo) Create(ctx context.Context, cred *domain.Credential) error {
	args := m.Called(ctx, cred)
	return args.Error(0)
}

func (m *mockCredRepo) GetByID(ctx context.Context, id string) (*domain.Credential, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Credential), args.Error(1)
}

func (m *mockCredRepo) GetByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Credential), args.Error(1)
}

func (m *mockCredRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *mockCredRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type mockProfileRepo struct {
	mock.Mock
}

func (m *mockProfileRepo) CreateCandidate(ctx context.Context, p *domain.CandidateProfile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProfileRepo) CreateEmployer(ctx context.Context, p *domain.EmployerProfile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProfileRepo) GetCandidate(ctx context.Context, credentialID string) (*domain.CandidateProfile, error) {
	args := m.Called(ctx, credentialID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CandidateProfile), args.Error(1)
}

func (m *mockProfileRepo) GetEmployer(ctx context.Context, credentialID string) (*domain.EmployerProfile, error) {
	args := m.Called(ctx, credentialID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmployerProfile), args.Error(1)
}

type mockWatchRepo struct {
	mock.Mock
}

func (m *mockWatchRepo) Add(ctx context.Context, employerID, candidateID string) error {
	args := m.Called(ctx, employerID, candidateID)
	return args.Error(0)
}

func (m *mockWatchRepo) Remove(ctx context.Context, employerID, candidateID string) error {
	args := m.Called(ctx, employerID, candidateID)
	return args.Error(0)
}

func (m *mockWatchRepo) List(ctx context.Context, employerID string, limit, offset int) ([]domain.WatchlistItem, int, error) {
	args := m.Called(ctx, employerID, limit, offset)
	return args.Get(0).([]domain.WatchlistItem), args.Int(1), args.Error(2)
}

func (m *mockWatchRepo) Exists(ctx context.Context, employerID, candidateID string) (bool, error) {
	args := m.Called(ctx, employerID, candidateID)
	return args.Bool(0), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishAccountRegistered(ctx context.Context, cred *domain.Credential) error {
	args := m.Called(ctx, cred)
	return args.Error(0)
}

func (m *mockPublisher) PublishAccountPasswordChanged(ctx context.Context, accountID, email, via string) error {
	args := m.Called(ctx, accountID, email, via)
	return args.Error(0)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

// ============================================================================
// Fixture
// ============================================================================

type routerFixture struct {
	handler   http.Handler
	credRepo  *mockCredRepo
	profiles  *mockProfileRepo
	watchRepo *mockWatchRepo
	publisher *mockPublisher
	mail      *mockSender
	tokens    *auth.TokenManager
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	logger := pkglogger.NewWithWriter("account-service-test", "error", io.Discard)
	credRepo := new(mockCredRepo)
	profiles := new(mockProfileRepo)
	watchRepo := new(mockWatchRepo)
	publisher := new(mockPublisher)
	mail := new(mockSender)
	tokens := auth.NewTokenManager(
		"access-secret", "refresh-secret", "reset-secret",
		15*time.Minute, 7*24*time.Hour, time.Hour,
	)
	limiter := ratelimit.NewLoginLimiter(5, time.Minute)

	authSvc := service.NewAuthService(credRepo, profiles, tokens, limiter, publisher, logger)
	resetSvc := service.NewResetService(credRepo, tokens, mail, publisher, "https://jobs.example.com", logger)
	watchSvc := service.NewWatchlistService(watchRepo, profiles, logger)

	handler := NewRouter(RouterConfig{
		AuthService:        authSvc,
		ResetService:       resetSvc,
		WatchlistService:   watchSvc,
		TokenManager:       tokens,
		HealthHandler:      health.NewHandler(),
		Logger:             logger,
		CORS:               CORSConfig{Environment: "development", RefreshTokenHeader: "X-Refresh-Token"},
		RefreshTokenHeader: "X-Refresh-Token",
	})

	return &routerFixture{
		handler:   handler,
		credRepo:  credRepo,
		profiles:  profiles,
		watchRepo: watchRepo,
		publisher: publisher,
		mail:      mail,
		tokens:    tokens,
	}
}

func (f *routerFixture) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	out := decodeResponse(t, rec)
	errObj, ok := out["error"].(map[string]any)
	require.True(t, ok, "expected error object in response: %s", rec.Body.String())
	code, _ := errObj["code"].(string)
	return code
}

func storedCredential(t *testing.T, plaintext string, role domain.Role) *domain.Credential {
	t.Helper()
	hash, err := password.Hash(plaintext)
	require.NoError(t, err)
	now := time.Now().UTC()
	return &domain.Credential{
		ID:           "c-1",
		Email:        "amy@example.com",
		PasswordHash: hash,
		UserName:     "amy",
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		LastLoginAt:  &now,
	}
}

// ============================================================================
// Signup
// ============================================================================

func TestSignup_Created(t *testing.T) {
	f := newRouterFixture(t)

	f.credRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.profiles.On("CreateCandidate", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("PublishAccountRegistered", mock.Anything, mock.Anything).Return(nil)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"email":    "amy@example.com",
		"password": "s3cret-pass",
		"role":     "candidate",
		"userName": "amy",
	}, nil)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), "hash")

	out := decodeResponse(t, rec)
	data := out["data"].(map[string]any)
	identity := data["identity"].(map[string]any)
	tokens := data["tokens"].(map[string]any)
	assert.Equal(t, "amy@example.com", identity["email"])
	assert.Equal(t, "candidate", identity["role"])
	assert.NotEmpty(t, tokens["access_token"])
	assert.NotEmpty(t, tokens["refresh_token"])
}

func TestSignup_ValidationFailure(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"email":    "not-an-email",
		"password": "s3cret-pass",
		"role":     "candidate",
		"userName": "amy",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
	f.credRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	f := newRouterFixture(t)

	f.credRepo.On("Create", mock.Anything, mock.Anything).
		Return(apperrors.AlreadyExists("account", "email", "amy@example.com"))

	rec := f.do(t, http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"email":    "amy@example.com",
		"password": "s3cret-pass",
		"role":     "candidate",
		"userName": "amy",
	}, nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ALREADY_EXISTS", errorCode(t, rec))
}

func TestSignup_RejectsNonJSONContentType(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", bytes.NewBufferString("email=a"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

// ============================================================================
// Login
// ============================================================================

func TestLogin_Success(t *testing.T) {
	f := newRouterFixture(t)
	cred := storedCredential(t, "s3cret-pass", domain.RoleCandidate)

	f.credRepo.On("GetByEmail", mock.Anything, "amy@example.com").Return(cred, nil)
	f.credRepo.On("UpdateLastLogin", mock.Anything, cred.ID, mock.Anything).Return(nil)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "amy@example.com",
		"password": "s3cret-pass",
	}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	out := decodeResponse(t, rec)
	data := out["data"].(map[string]any)
	identity := data["identity"].(map[string]any)
	assert.Equal(t, "c-1", identity["id"])
	assert.Equal(t, "candidate", identity["role"])
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newRouterFixture(t)
	cred := storedCredential(t, "s3cret-pass", domain.RoleCandidate)

	f.credRepo.On("GetByEmail", mock.Anything, "amy@example.com").Return(cred, nil)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "amy@example.com",
		"password": "wrong-pass",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Wrong email or password")
}

func TestLogin_UnknownEmailSameShape(t *testing.T) {
	f := newRouterFixture(t)

	f.credRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, apperrors.ErrNotFound)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "ghost@example.com",
		"password": "whatever-pass",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Wrong email or password")
}

func TestLogin_RateLimited(t *testing.T) {
	f := newRouterFixture(t)
	cred := storedCredential(t, "s3cret-pass", domain.RoleCandidate)

	f.credRepo.On("GetByEmail", mock.Anything, "amy@example.com").Return(cred, nil)

	body := map[string]string{"email": "amy@example.com", "password": "wrong-pass"}
	for i := 0; i < 5; i++ {
		rec := f.do(t, http.MethodPost, "/api/v1/auth/login", body, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := f.do(t, http.MethodPost, "/api/v1/auth/login", body, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", errorCode(t, rec))
}

// ============================================================================
// Refresh
// ============================================================================

func TestRefresh_Success(t *testing.T) {
	f := newRouterFixture(t)
	cred := storedCredential(t, "s3cret-pass", domain.RoleCandidate)

	refreshToken, err := f.tokens.GenerateRefreshToken(cred.Email)
	require.NoError(t, err)

	f.credRepo.On("GetByEmail", mock.Anything, cred.Email).Return(cred, nil)

	rec := f.do(t, http.MethodGet, "/api/v1/auth/refresh", nil, map[string]string{
		"X-Refresh-Token": refreshToken,
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	out := decodeResponse(t, rec)
	data := out["data"].(map[string]any)
	accessToken := data["access_token"].(string)

	claims, err := f.tokens.VerifyAccessToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, cred.ID, claims.UserID)
}

func TestRefresh_MissingHeader(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/auth/refresh", nil, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefresh_InvalidToken(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/auth/refresh", nil, map[string]string{
		"X-Refresh-Token": "garbage",
	})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, rec))
}

// ============================================================================
// ChangePassword
// ============================================================================

func TestChangePassword_Success(t *testing.T) {
	f := newRouterFixture(t)
	cred := storedCredential(t, "old-pass", domain.RoleCandidate)

	accessToken, err := f.tokens.GenerateAccessToken(cred.ID, cred.Email, cred.Role.String())
	require.NoError(t, err)

	f.credRepo.On("GetByID", mock.Anything, cred.ID).Return(cred, nil)
	f.credRepo.On("UpdatePassword", mock.Anything, cred.ID, mock.Anything).Return(nil)
	f.publisher.On("PublishAccountPasswordChanged", mock.Anything, cred.ID, cred.Email, "change").Return(nil)

	rec := f.do(t, http.MethodPatch, "/api/v1/auth/change-password/c-1", map[string]string{
		"oldPassword": "old-pass",
		"newPassword": "brand-new-pass",
	}, map[string]string{"Authorization": "Bearer " + accessToken})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hash")

	out := decodeResponse(t, rec)
	data := out["data"].(map[string]any)
	assert.Equal(t, cred.ID, data["id"])
	assert.Equal(t, cred.Email, data["email"])
}

func TestChangePassword_NoToken(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPatch, "/api/v1/auth/change-password/c-1", map[string]string{
		"oldPassword": "old-pass",
		"newPassword": "brand-new-pass",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChangePassword_BadToken(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPatch, "/api/v1/auth/change-password/c-1", map[string]string{
		"oldPassword": "old-pass",
		"newPassword": "brand-new-pass",
	}, map[string]string{"Authorization": "Bearer garbage"})

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestChangePassword_OtherAccountRejected(t *testing.T) {
	f := newRouterFixture(t)
	cred := storedCredential(t, "old-pass", domain.RoleCandidate)

	accessToken, err := f.tokens.GenerateAccessToken(cred.ID, cred.Email, cred.Role.String())
	require.NoError(t, err)

	rec := f.do(t, http.MethodPatch, "/api/v1/auth/change-password/c-other", map[string]string{
		"oldPassword": "old-pass",
		"newPassword": "brand-new-pass",
	}, map[string]string{"Authorization": "Bearer " + accessToken})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	f.credRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestChangePassword_WrongOldPassword(t *testing.T) {
	f := newRouterFixture(t)
	cred := storedCredential(t, "old-pass", domain.RoleCandidate)

	accessToken, err := f.tokens.GenerateAccessToken(cred.ID, cred.Email, cred.Role.String())
	require.NoError(t, err)

	f.credRepo.On("GetByID", mock.Anything, cred.ID).Return(cred, nil)

	rec := f.do(t, http.MethodPatch, "/api/v1/auth/change-password/c-1", map[string]string{
		"oldPassword": "not-old-pass",
		"newPassword": "brand-new-pass",
	}, map[string]string{"Authorization": "Bearer " + accessToken})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Old password is incorrect")
}

// ============================================================================
// Password reset
// ============================================================================

func TestForgottenPassword_SendMail(t *testing.T) {
	f := newRouterFixture(t)

	f.mail.On("Send", mock.Anything, "amy@example.com", mock.Anything, mock.Anything).Return(nil)

	rec := f.do(t, http.MethodPost, "/api/v1/forgotten-password/send-mail", map[string]string{
		"email": "amy@example.com",
	}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	f.mail.AssertExpectations(t)
}

func TestForgottenPassword_SendMailDeliveryFailure(t *testing.T) {
	f := newRouterFixture(t)

	f.mail.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	rec := f.do(t, http.MethodPost, "/api/v1/forgotten-password/send-mail", map[string]string{
		"email": "amy@example.com",
	}, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// The SMTP error itself never reaches the client.
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
}

func TestForgottenPassword_Reset(t *testing.T) {
	f := newRouterFixture(t)
	cred := storedCredential(t, "old-pass", domain.RoleCandidate)

	token, err := f.tokens.GenerateResetToken(cred.Email)
	require.NoError(t, err)

	f.credRepo.On("GetByEmail", mock.Anything, cred.Email).Return(cred, nil)
	f.credRepo.On("UpdatePassword", mock.Anything, cred.ID, mock.Anything).Return(nil)
	f.publisher.On("PublishAccountPasswordChanged", mock.Anything, cred.ID, cred.Email, "reset").Return(nil)

	rec := f.do(t, http.MethodPatch, "/api/v1/forgotten-password/reset-password/"+token, map[string]string{
		"newPassword": "brand-new-pass",
	}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	// No tokens come back: the caller must log in again.
	assert.NotContains(t, rec.Body.String(), "access_token")
}

func TestForgottenPassword_ResetBadToken(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPatch, "/api/v1/forgotten-password/reset-password/garbage", map[string]string{
		"newPassword": "brand-new-pass",
	}, nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestForgottenPassword_ResetUnknownEmail(t *testing.T) {
	f := newRouterFixture(t)

	token, err := f.tokens.GenerateResetToken("ghost@example.com")
	require.NoError(t, err)

	f.credRepo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, apperrors.ErrNotFound)

	rec := f.do(t, http.MethodPatch, "/api/v1/forgotten-password/reset-password/"+token, map[string]string{
		"newPassword": "brand-new-pass",
	}, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestForgottenPassword_ResetMissingPassword(t *testing.T) {
	f := newRouterFixture(t)

	token, err := f.tokens.GenerateResetToken("amy@example.com")
	require.NoError(t, err)

	rec := f.do(t, http.MethodPatch, "/api/v1/forgotten-password/reset-password/"+token, map[string]string{}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ============================================================================
// Watchlist (role gate)
// ============================================================================

func TestWatchlist_EmployerCanAdd(t *testing.T) {
	f := newRouterFixture(t)

	accessToken, err := f.tokens.GenerateAccessToken("emp-1", "boss@corp.com", "employer")
	require.NoError(t, err)

	f.profiles.On("GetCandidate", mock.Anything, "cand-1").
		Return(&domain.CandidateProfile{CredentialID: "cand-1"}, nil)
	f.watchRepo.On("Add", mock.Anything, "emp-1", "cand-1").Return(nil)

	rec := f.do(t, http.MethodPost, "/api/v1/watchlist/cand-1", nil, map[string]string{
		"Authorization": "Bearer " + accessToken,
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	f.watchRepo.AssertExpectations(t)
}

func TestWatchlist_CandidateRoleRejected(t *testing.T) {
	f := newRouterFixture(t)

	accessToken, err := f.tokens.GenerateAccessToken("c-1", "amy@example.com", "candidate")
	require.NoError(t, err)

	rec := f.do(t, http.MethodPost, "/api/v1/watchlist/cand-1", nil, map[string]string{
		"Authorization": "Bearer " + accessToken,
	})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "INSUFFICIENT_ROLE", errorCode(t, rec))
	f.watchRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestWatchlist_NoToken(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/watchlist/", nil, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWatchlist_List(t *testing.T) {
	f := newRouterFixture(t)

	accessToken, err := f.tokens.GenerateAccessToken("emp-1", "boss@corp.com", "employer")
	require.NoError(t, err)

	now := time.Now().UTC()
	items := []domain.WatchlistItem{{EmployerID: "emp-1", CandidateID: "cand-1", CreatedAt: now}}
	f.watchRepo.On("List", mock.Anything, "emp-1", 20, 0).Return(items, 1, nil)

	rec := f.do(t, http.MethodGet, "/api/v1/watchlist/", nil, map[string]string{
		"Authorization": "Bearer " + accessToken,
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	out := decodeResponse(t, rec)
	data := out["data"].(map[string]any)
	assert.Equal(t, float64(1), data["total"])
}

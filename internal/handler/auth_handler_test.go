package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cletusgizo/ZapPay-Global/internal/config"
	"github.com/cletusgizo/ZapPay-Global/internal/events"
	"github.com/cletusgizo/ZapPay-Global/internal/hashing"
	"github.com/cletusgizo/ZapPay-Global/internal/repository/memory"
	"github.com/cletusgizo/ZapPay-Global/internal/service"
	"github.com/cletusgizo/ZapPay-Global/internal/token"
)

type stubMailer struct {
	mu       sync.Mutex
	otpCodes map[string]string
}

func newStubMailer() *stubMailer {
	return &stubMailer{otpCodes: make(map[string]string)}
}

func (m *stubMailer) SendOTP(_ context.Context, email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.otpCodes[email] = code
	return nil
}

func (m *stubMailer) SendWelcome(context.Context, string) error { return nil }

func (m *stubMailer) SendPasswordReset(context.Context, string, string) error { return nil }

func (m *stubMailer) otpFor(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.otpCodes[email]
}

type testServer struct {
	router chi.Router
	mailer *stubMailer
	repo   *memory.UserRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	signer, err := token.NewSigner(config.JWTConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		ResetSecret:   "test-reset-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		ResetTTL:      time.Hour,
		Issuer:        "test",
	})
	require.NoError(t, err)

	repo := memory.NewUserRepository()
	mailer := newStubMailer()
	hasher := hashing.NewHasher(4)
	logger := zap.NewNop()

	authService := service.NewAuthService(
		repo, hasher, signer, mailer, events.NopPublisher{},
		config.OTPConfig{Length: 6, TTL: 10 * time.Minute}, logger,
	)
	userService := service.NewUserService(repo, hasher, logger)

	router := NewRouter(
		NewAuthHandler(authService, logger),
		NewUserHandler(userService, logger),
		signer,
		logger,
	)

	return &testServer{router: router, mailer: mailer, repo: repo}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}, bearer string) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	var resp Response
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	}
	return rec, resp
}

// register walks an account through registration and OTP verification and
// returns its id plus a valid token pair.
func (ts *testServer) registerVerified(t *testing.T, email, password string) (userID, access, refresh string) {
	t.Helper()

	rec, resp := ts.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	data := resp.Data.(map[string]interface{})
	userID = data["userId"].(string)

	rec, resp = ts.do(t, http.MethodPost, "/api/v1/auth/verify-otp", map[string]string{
		"userId": userID,
		"otp":    ts.mailer.otpFor(email),
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	data = resp.Data.(map[string]interface{})
	return userID, data["accessToken"].(string), data["refreshToken"].(string)
}

func TestRegisterEndpoint(t *testing.T) {
	t.Run("creates an account", func(t *testing.T) {
		ts := newTestServer(t)

		rec, resp := ts.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
			"email":    "alice@example.com",
			"password": "s3cretpass",
		}, "")

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.True(t, resp.Success)
		data := resp.Data.(map[string]interface{})
		assert.NotEmpty(t, data["userId"])
		assert.NotEmpty(t, ts.mailer.otpFor("alice@example.com"))
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		ts := newTestServer(t)

		rec, resp := ts.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
			"email":    "not-an-email",
			"password": "s3cretpass",
		}, "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, resp.Success)
	})

	t.Run("rejects short password", func(t *testing.T) {
		ts := newTestServer(t)

		rec, _ := ts.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
			"email":    "alice@example.com",
			"password": "short",
		}, "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		ts := newTestServer(t)
		ts.registerVerified(t, "alice@example.com", "s3cretpass")

		rec, _ := ts.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
			"email":    "alice@example.com",
			"password": "otherpass1",
		}, "")

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestLoginEndpoint(t *testing.T) {
	t.Run("returns token pair", func(t *testing.T) {
		ts := newTestServer(t)
		ts.registerVerified(t, "alice@example.com", "s3cretpass")

		rec, resp := ts.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email":    "alice@example.com",
			"password": "s3cretpass",
		}, "")

		assert.Equal(t, http.StatusOK, rec.Code)
		data := resp.Data.(map[string]interface{})
		assert.NotEmpty(t, data["accessToken"])
		assert.NotEmpty(t, data["refreshToken"])
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		ts := newTestServer(t)
		ts.registerVerified(t, "alice@example.com", "s3cretpass")

		rec, _ := ts.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email":    "alice@example.com",
			"password": "wrongpass1",
		}, "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unverified account is unauthorized with fresh OTP", func(t *testing.T) {
		ts := newTestServer(t)

		rec, _ := ts.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
			"email":    "bob@example.com",
			"password": "s3cretpass",
		}, "")
		require.Equal(t, http.StatusCreated, rec.Code)

		rec, _ = ts.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email":    "bob@example.com",
			"password": "s3cretpass",
		}, "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.NotEmpty(t, ts.mailer.otpFor("bob@example.com"))
	})

	t.Run("missing identity is a validation error", func(t *testing.T) {
		ts := newTestServer(t)

		rec, _ := ts.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
			"password": "s3cretpass",
		}, "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestVerifyOTPEndpoint(t *testing.T) {
	t.Run("wrong code is a bad request", func(t *testing.T) {
		ts := newTestServer(t)

		rec, resp := ts.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
			"email":    "alice@example.com",
			"password": "s3cretpass",
		}, "")
		require.Equal(t, http.StatusCreated, rec.Code)
		userID := resp.Data.(map[string]interface{})["userId"].(string)

		rec, _ = ts.do(t, http.MethodPost, "/api/v1/auth/verify-otp", map[string]string{
			"userId": userID,
			"otp":    "000000",
		}, "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		ts := newTestServer(t)

		rec, _ := ts.do(t, http.MethodPost, "/api/v1/auth/verify-otp", map[string]string{
			"userId": "no-such-user",
			"otp":    "123456",
		}, "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestResendOTPEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec, resp := ts.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email":    "alice@example.com",
		"password": "s3cretpass",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	userID := resp.Data.(map[string]interface{})["userId"].(string)

	rec, _ = ts.do(t, http.MethodPost, fmt.Sprintf("/api/v1/auth/resend-otp/%s", userID), nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, ts.mailer.otpFor("alice@example.com"))
}

func TestRefreshTokenEndpoint(t *testing.T) {
	t.Run("exchanges refresh for a new access token", func(t *testing.T) {
		ts := newTestServer(t)
		_, _, refresh := ts.registerVerified(t, "alice@example.com", "s3cretpass")

		rec, resp := ts.do(t, http.MethodPost, "/api/v1/auth/refresh-token", map[string]string{
			"refreshToken": refresh,
		}, "")

		assert.Equal(t, http.StatusOK, rec.Code)
		data := resp.Data.(map[string]interface{})
		assert.NotEmpty(t, data["accessToken"])
	})

	t.Run("access token is rejected", func(t *testing.T) {
		ts := newTestServer(t)
		_, access, _ := ts.registerVerified(t, "alice@example.com", "s3cretpass")

		rec, _ := ts.do(t, http.MethodPost, "/api/v1/auth/refresh-token", map[string]string{
			"refreshToken": access,
		}, "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestForgotPasswordEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.registerVerified(t, "alice@example.com", "s3cretpass")

	rec, known := ts.do(t, http.MethodPost, "/api/v1/auth/forgot-password", map[string]string{
		"email": "alice@example.com",
	}, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, unknown := ts.do(t, http.MethodPost, "/api/v1/auth/forgot-password", map[string]string{
		"email": "nobody@example.com",
	}, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// The response never reveals whether the email is on file.
	assert.Equal(t, known.Message, unknown.Message)
}

func TestProfileEndpoint(t *testing.T) {
	t.Run("requires a bearer token", func(t *testing.T) {
		ts := newTestServer(t)

		rec, _ := ts.do(t, http.MethodGet, "/api/v1/auth/profile", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects a refresh token", func(t *testing.T) {
		ts := newTestServer(t)
		_, _, refresh := ts.registerVerified(t, "alice@example.com", "s3cretpass")

		rec, _ := ts.do(t, http.MethodGet, "/api/v1/auth/profile", nil, refresh)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("returns the redacted account", func(t *testing.T) {
		ts := newTestServer(t)
		userID, access, _ := ts.registerVerified(t, "alice@example.com", "s3cretpass")

		rec, resp := ts.do(t, http.MethodGet, "/api/v1/auth/profile", nil, access)
		assert.Equal(t, http.StatusOK, rec.Code)

		data := resp.Data.(map[string]interface{})
		assert.Equal(t, userID, data["id"])
		assert.Equal(t, "alice@example.com", data["email"])
		assert.NotContains(t, data, "passwordHash")
		assert.NotContains(t, data, "otp")
	})
}

func TestLogoutEndpoint(t *testing.T) {
	ts := newTestServer(t)
	_, access, _ := ts.registerVerified(t, "alice@example.com", "s3cretpass")

	rec, resp := ts.do(t, http.MethodPost, "/api/v1/auth/logout", nil, access)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)

	// Stateless tokens: the same access token still works afterwards.
	rec, _ = ts.do(t, http.MethodGet, "/api/v1/auth/profile", nil, access)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cletusgizo/ZapPay-Global/internal/repository"
	"github.com/cletusgizo/ZapPay-Global/internal/service"
	"github.com/cletusgizo/ZapPay-Global/internal/util"
)

// AuthHandler handles HTTP requests for the authentication flow
type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func successResponse(data interface{}, message string) Response {
	return Response{
		Success: true,
		Data:    data,
		Message: message,
	}
}

func errorResponse(err error, message string) Response {
	return Response{
		Success: false,
		Error:   err.Error(),
		Message: message,
	}
}

// RegisterRoutes registers all authentication routes
func (h *AuthHandler) RegisterRoutes(router chi.Router, authMiddleware func(http.Handler) http.Handler) {
	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/verify-otp", h.VerifyOTP)
		r.Post("/resend-otp/{userID}", h.ResendOTP)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/reset-password", h.ResetPassword)
		r.Post("/refresh-token", h.RefreshToken)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/profile", h.Profile)
			r.Post("/logout", h.Logout)
		})
	})
}

// Register handles account creation and the initial OTP challenge
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		respondWithError(w, http.StatusBadRequest, errors.New("a valid email is required"), "Validation failed")
		return
	}
	if req.Password != "" && len(req.Password) < 8 {
		respondWithError(w, http.StatusBadRequest, errors.New("password must be at least 8 characters"), "Validation failed")
		return
	}

	result, err := h.authService.Register(r.Context(), req)
	if err != nil {
		respondWithError(w, statusCodeFor(err), err, "Registration failed")
		return
	}

	respondWithJSON(w, http.StatusCreated, successResponse(result, result.Message))
}

// Login handles credential checks and token issuance
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	if req.Email == "" && req.Phone == "" {
		respondWithError(w, http.StatusBadRequest, errors.New("email or phone is required"), "Validation failed")
		return
	}

	pair, err := h.authService.Login(r.Context(), req)
	if err != nil {
		respondWithError(w, statusCodeFor(err), err, "Login failed")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(pair, pair.Message))
}

// VerifyOTP consumes an outstanding challenge and returns tokens
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
		OTP    string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	if req.UserID == "" || req.OTP == "" {
		respondWithError(w, http.StatusBadRequest, errors.New("userId and otp are required"), "Validation failed")
		return
	}

	pair, err := h.authService.VerifyOTP(r.Context(), req.UserID, req.OTP)
	if err != nil {
		respondWithError(w, statusCodeFor(err), err, "OTP verification failed")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(pair, pair.Message))
}

// ResendOTP regenerates and redelivers the challenge
func (h *AuthHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, errors.New("user ID is required"), "Validation failed")
		return
	}

	message, err := h.authService.ResendOTP(r.Context(), userID)
	if err != nil {
		respondWithError(w, statusCodeFor(err), err, "Failed to resend OTP")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(nil, message))
}

// ForgotPassword always answers with the same generic message
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	if req.Email == "" {
		respondWithError(w, http.StatusBadRequest, errors.New("email is required"), "Validation failed")
		return
	}

	message, err := h.authService.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		respondWithError(w, statusCodeFor(err), err, "Failed to process password reset request")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(nil, message))
}

// ResetPassword verifies the reset token and stores the new password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	if req.Token == "" {
		respondWithError(w, http.StatusBadRequest, errors.New("token is required"), "Validation failed")
		return
	}
	if len(req.NewPassword) < 8 {
		respondWithError(w, http.StatusBadRequest, errors.New("newPassword must be at least 8 characters"), "Validation failed")
		return
	}

	message, err := h.authService.ResetPassword(r.Context(), req.Token, req.NewPassword)
	if err != nil {
		respondWithError(w, statusCodeFor(err), err, "Failed to reset password")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(nil, message))
}

// RefreshToken exchanges a refresh token for a new access token
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	if req.RefreshToken == "" {
		respondWithError(w, http.StatusBadRequest, errors.New("refreshToken is required"), "Validation failed")
		return
	}

	accessToken, err := h.authService.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		respondWithError(w, statusCodeFor(err), err, "Failed to refresh token")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(map[string]string{
		"accessToken": accessToken,
	}, "Token refreshed"))
}

// Profile returns the redacted account view of the bearer subject
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, errors.New("missing subject"), "Unauthorized")
		return
	}

	user, err := h.authService.Profile(r.Context(), userID)
	if err != nil {
		respondWithError(w, statusCodeFor(err), err, "Failed to load profile")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(user, "Profile retrieved"))
}

// Logout is advisory only, tokens stay valid until natural expiry
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, errors.New("missing subject"), "Unauthorized")
		return
	}

	message := h.authService.Logout(r.Context(), userID)
	respondWithJSON(w, http.StatusOK, successResponse(nil, message))
}

// statusCodeFor maps service errors to HTTP status codes.
func statusCodeFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, repository.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrVerificationRequired),
		errors.Is(err, service.ErrResetTokenInvalid),
		errors.Is(err, service.ErrRefreshTokenInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrEmailRequired),
		errors.Is(err, service.ErrAlreadyVerified),
		errors.Is(err, service.ErrNoEmailOnFile),
		errors.Is(err, service.ErrOTPNotFound),
		errors.Is(err, service.ErrOTPExpired),
		errors.Is(err, service.ErrOTPInvalid),
		errors.Is(err, service.ErrOTPDeliveryFailed),
		errors.Is(err, service.ErrResetDeliveryFailed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		util.Error("Failed to encode response", util.ErrorField(err))
	}
}

func respondWithError(w http.ResponseWriter, statusCode int, err error, message string) {
	respondWithJSON(w, statusCode, errorResponse(err, message))
}

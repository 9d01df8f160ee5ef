package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cletusgizo/ZapPay-Global/internal/service"
)

// UserHandler handles HTTP requests for account CRUD
type UserHandler struct {
	userService *service.UserService
	logger      *zap.Logger
}

func NewUserHandler(userService *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// RegisterRoutes registers all user routes; every route requires a valid
// access token.
func (h *UserHandler) RegisterRoutes(router chi.Router, authMiddleware func(http.Handler) http.Handler) {
	router.Route("/users", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.ListUsers)
		r.Get("/{userID}", h.GetUser)
		r.Patch("/{userID}", h.UpdateUser)
		r.Delete("/{userID}", h.DeleteUser)
	})
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		respondWithError(w, statusCodeFor(err), err, "Failed to list users")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(users, "Users retrieved successfully"))
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondWithError(w, http.StatusBadRequest, errors.New("user ID is required"), "Validation failed")
		return
	}

	user, err := h.userService.Get(r.Context(), userID)
	if err != nil {
		respondWithError(w, statusCodeFor(err), err, "Failed to get user")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(user, "User retrieved successfully"))
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req service.UserUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	if req.Password != nil && len(*req.Password) < 8 {
		respondWithError(w, http.StatusBadRequest, errors.New("password must be at least 8 characters"), "Validation failed")
		return
	}

	user, err := h.userService.Update(r.Context(), userID, req)
	if err != nil {
		respondWithError(w, statusCodeFor(err), err, "Failed to update user")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(user, "User updated successfully"))
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if err := h.userService.Delete(r.Context(), userID); err != nil {
		respondWithError(w, statusCodeFor(err), err, "Failed to delete user")
		return
	}

	respondWithJSON(w, http.StatusOK, successResponse(nil, "User deleted successfully"))
}

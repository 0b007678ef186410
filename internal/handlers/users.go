package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"gatehouse/internal/auth"
	"gatehouse/internal/services"
	pkghttp "gatehouse/pkg/http"
)

// UserServiceInterface defines the account management operations.
type UserServiceInterface interface {
	GetProfile(ctx context.Context, userID string) (*services.UserProfile, error)
	UpdateProfile(ctx context.Context, userID string, req services.UpdateProfileRequest) (*services.UserProfile, error)
	DeleteAccount(ctx context.Context, userID, ipAddress string) error
	ListUsers(ctx context.Context, limit, offset int) (*services.UserList, error)
}

// UserHandler handles account management requests.
type UserHandler struct {
	service  UserServiceInterface
	ipConfig *pkghttp.IPConfig
}

func NewUserHandler(service UserServiceInterface, ipConfig *pkghttp.IPConfig) *UserHandler {
	return &UserHandler{
		service:  service,
		ipConfig: ipConfig,
	}
}

// GetMe handles GET /users/me.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, profile)
}

// UpdateMe handles PUT /users/me.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req services.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), claims.UserID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, profile)
}

// DeleteMe handles DELETE /users/me.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	ip := pkghttp.ExtractClientIP(r, h.ipConfig)
	if err := h.service.DeleteAccount(r.Context(), claims.UserID, ip); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListUsers handles GET /admin/users.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	list, err := h.service.ListUsers(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, list)
}

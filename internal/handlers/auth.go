package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"gatehouse/internal/models"
	"gatehouse/internal/services"
	pkghttp "gatehouse/pkg/http"
)

// AuthServiceInterface defines the auth business logic used by the handler.
type AuthServiceInterface interface {
	Login(ctx context.Context, email, password string, client services.ClientInfo) (*services.AuthResponse, error)
	Register(ctx context.Context, req services.RegisterRequest, client services.ClientInfo) (*models.Identity, error)
}

// VerificationServiceInterface defines the email verification operations.
type VerificationServiceInterface interface {
	VerifyEmail(ctx context.Context, email, code string) error
	RequestCode(ctx context.Context, email, codeType string) error
}

// AuthHandler handles registration, login and email verification requests.
type AuthHandler struct {
	service      AuthServiceInterface
	verification VerificationServiceInterface
	ipConfig     *pkghttp.IPConfig
}

func NewAuthHandler(service AuthServiceInterface, verification VerificationServiceInterface, ipConfig *pkghttp.IPConfig) *AuthHandler {
	return &AuthHandler{
		service:      service,
		verification: verification,
		ipConfig:     ipConfig,
	}
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerifyEmailRequest is the request body for redeeming a verification code.
type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// ResendVerificationRequest is the request body for re-requesting a code.
type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *AuthHandler) clientInfo(r *http.Request) services.ClientInfo {
	return services.ClientInfo{
		IPAddress: pkghttp.ExtractClientIP(r, h.ipConfig),
		UserAgent: r.UserAgent(),
	}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	resp, err := h.service.Login(r.Context(), req.Email, req.Password, h.clientInfo(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	identity, err := h.service.Register(r.Context(), req, h.clientInfo(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, identity)
}

// VerifyEmail handles POST /auth/verify-email.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.verification.VerifyEmail(r.Context(), req.Email, req.Code); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}

// ResendVerification handles POST /auth/resend-verification. The response is
// identical whether or not the email exists.
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req ResendVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.verification.RequestCode(r.Context(), req.Email, models.CodeTypeEmailVerification); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "if the address exists, a verification code has been sent",
	})
}

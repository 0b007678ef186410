package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	internalauth "gatehouse/internal/auth"
	pkghttp "gatehouse/pkg/http"
)

// TwoFactorServiceInterface defines the 2FA enrollment operations.
type TwoFactorServiceInterface interface {
	Setup(ctx context.Context, userID string) (*internalauth.TOTPEnrollment, error)
	Enable(ctx context.Context, userID, code, ipAddress string) error
	Disable(ctx context.Context, userID, code, ipAddress string) error
}

// TwoFactorHandler handles TOTP enrollment requests.
type TwoFactorHandler struct {
	service  TwoFactorServiceInterface
	ipConfig *pkghttp.IPConfig
}

func NewTwoFactorHandler(service TwoFactorServiceInterface, ipConfig *pkghttp.IPConfig) *TwoFactorHandler {
	return &TwoFactorHandler{
		service:  service,
		ipConfig: ipConfig,
	}
}

// TwoFactorCodeRequest carries the 6-digit confirmation code.
type TwoFactorCodeRequest struct {
	Code string `json:"code" validate:"required,min=6,max=10"`
}

// SetupResponse is returned by a successful setup call.
type SetupResponse struct {
	Secret      string   `json:"secret"`
	OTPAuthURL  string   `json:"otpauth_url"`
	QRCode      string   `json:"qr_code"`
	BackupCodes []string `json:"backup_codes"`
}

// Setup handles POST /users/me/2fa/setup.
func (h *TwoFactorHandler) Setup(w http.ResponseWriter, r *http.Request) {
	claims := internalauth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	enrollment, err := h.service.Setup(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, SetupResponse{
		Secret:      enrollment.Secret,
		OTPAuthURL:  enrollment.OTPAuthURL,
		QRCode:      enrollment.QRCode,
		BackupCodes: enrollment.BackupCodes,
	})
}

// Enable handles POST /users/me/2fa/enable.
func (h *TwoFactorHandler) Enable(w http.ResponseWriter, r *http.Request) {
	h.confirm(w, r, h.service.Enable, "enabled")
}

// Disable handles POST /users/me/2fa/disable.
func (h *TwoFactorHandler) Disable(w http.ResponseWriter, r *http.Request) {
	h.confirm(w, r, h.service.Disable, "disabled")
}

func (h *TwoFactorHandler) confirm(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, userID, code, ipAddress string) error, status string) {
	claims := internalauth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req TwoFactorCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	ip := pkghttp.ExtractClientIP(r, h.ipConfig)
	if err := action(r.Context(), claims.UserID, req.Code, ip); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"status": status})
}

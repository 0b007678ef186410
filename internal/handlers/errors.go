package handlers

import (
	"errors"
	"net/http"

	"gatehouse/internal/models"
	pkghttp "gatehouse/pkg/http"
)

// writeServiceError maps service-layer errors onto HTTP responses. Anything
// unrecognized becomes a generic 500 so internals never leak to the client.
func writeServiceError(w http.ResponseWriter, err error) {
	var limited *models.RateLimitedError
	if errors.As(err, &limited) {
		pkghttp.WriteTooManyRequests(w, limited.Message, limited.RetryAt)
		return
	}

	switch {
	case errors.Is(err, models.ErrRateLimitExceeded):
		pkghttp.WriteTooManyRequests(w, "Too many attempts. Please try again later.", nil)
	case errors.Is(err, models.ErrUnauthorized):
		pkghttp.WriteUnauthorized(w, "Invalid email or password")
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, "You do not have access to this resource")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Resource not found")
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, err.Error())
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, err.Error())
	default:
		pkghttp.WriteInternalError(w, "An internal error occurred")
	}
}

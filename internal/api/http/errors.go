package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
	"github.com/aussiebroadwan/dds2/internal/api/service"
	"github.com/aussiebroadwan/dds2/pkg/apisdk"
	"github.com/aussiebroadwan/dds2/pkg/httpx"
	"github.com/aussiebroadwan/dds2/pkg/slogx"
)

// writeError maps a service error onto the error envelope. Every handler
// reports failures through it.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	var ve *service.ValidationError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &ve):
		httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorBody{
			Error:            apisdk.ErrorCodeValidation,
			ErrorDescription: ve.Message,
			Details:          ve.Fields,
		})
	case errors.As(err, &tooLarge):
		httpx.WriteError(w, http.StatusRequestEntityTooLarge, apisdk.ErrorCodeInvalidRequest, "Request body is too large")
	case errors.Is(err, service.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, apisdk.ErrorCodeNotFound, "Not found.")
	case errors.Is(err, service.ErrPermissionDenied):
		httpx.WriteError(w, http.StatusForbidden, apisdk.ErrorCodePermissionDenied, "You do not have permission to perform this action.")
	case errors.Is(err, service.ErrMethodNotAllowed):
		httpx.WriteError(w, http.StatusMethodNotAllowed, apisdk.ErrorCodeMethodNotAllowed, "Method "+r.Method+" not allowed.")
	case errors.Is(err, service.ErrUnauthenticated):
		httpx.WriteBearerError(w, "unknown or inactive user")
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, apisdk.ErrorCodeInvalidCredentials, "No active account found with the given credentials")
	case errors.Is(err, service.ErrOTPRequired):
		httpx.WriteError(w, http.StatusUnauthorized, apisdk.ErrorCodeOTPRequired, "A one-time code is required")
	case errors.Is(err, service.ErrInvalidOTP):
		httpx.WriteError(w, http.StatusUnauthorized, apisdk.ErrorCodeInvalidOTP, "The one-time code is invalid")
	case errors.Is(err, service.ErrInvalidRefresh):
		httpx.WriteError(w, http.StatusUnauthorized, apisdk.ErrorCodeInvalidRefreshToken, "Token is invalid or expired")
	case errors.Is(err, service.ErrBootstrapAlready):
		httpx.WriteError(w, http.StatusConflict, apisdk.ErrorCodeAlreadyBootstrapped, "System has already been bootstrapped")
	case errors.Is(err, service.ErrBootstrapUnauthorized):
		httpx.WriteError(w, http.StatusUnauthorized, apisdk.ErrorCodeUnauthorized, "Invalid bootstrap token")
	case errors.Is(err, service.ErrDataIntegrity), errors.Is(err, domain.ErrCorruptFilename):
		log.Error("stored data failed integrity check", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, apisdk.ErrorCodeDataIntegrity, "Stored data is corrupt")
	default:
		log.Error("request failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, apisdk.ErrorCodeServerError, "An internal error occurred")
	}
}

// writeBadRequest reports a body that could not be decoded.
func writeBadRequest(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		httpx.WriteError(w, http.StatusRequestEntityTooLarge, apisdk.ErrorCodeInvalidRequest, "Request body is too large")
		return
	}
	httpx.WriteError(w, http.StatusBadRequest, apisdk.ErrorCodeInvalidRequest, err.Error())
}

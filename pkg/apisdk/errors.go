package apisdk

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Error codes returned in the "error" field of the envelope.
const (
	ErrorCodeInvalidRequest      = "invalid_request"
	ErrorCodeValidation          = "validation_error"
	ErrorCodeInvalidToken        = "invalid_token"
	ErrorCodeInsufficientScope   = "insufficient_scope"
	ErrorCodePermissionDenied    = "permission_denied"
	ErrorCodeNotFound            = "not_found"
	ErrorCodeMethodNotAllowed    = "method_not_allowed"
	ErrorCodeDataIntegrity       = "data_integrity_error"
	ErrorCodeServerError         = "server_error"
	ErrorCodeRateLimited         = "rate_limit_exceeded"
	ErrorCodeInvalidCredentials  = "invalid_credentials"
	ErrorCodeOTPRequired         = "otp_required"
	ErrorCodeInvalidOTP          = "invalid_otp"
	ErrorCodeInvalidRefreshToken = "invalid_refresh_token"
	ErrorCodeAlreadyBootstrapped = "already_bootstrapped"
	ErrorCodeUnauthorized        = "unauthorized"
)

// ErrorBody is the JSON error envelope written by the server.
type ErrorBody struct {
	Error            string            `json:"error"`
	ErrorDescription string            `json:"error_description"`
	Details          map[string]string `json:"details,omitempty"`
}

// Error is a non-2xx API response.
type Error struct {
	StatusCode  int
	Code        string
	Description string

	// Details maps field names to validation messages.
	Details map[string]string
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %s: %s", e.StatusCode, e.Code, e.Description)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "; %s: %s", k, e.Details[k])
		}
	}
	return b.String()
}

// Field returns the validation message for field, if any.
func (e *Error) Field(field string) string {
	return e.Details[field]
}

// parseErrorResponse turns a non-2xx body into an *Error. Bodies that are
// not an envelope still yield an error carrying the status code.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var eb ErrorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error != "" {
		return &Error{
			StatusCode:  resp.StatusCode,
			Code:        eb.Error,
			Description: eb.ErrorDescription,
			Details:     eb.Details,
		}
	}

	return &Error{
		StatusCode:  resp.StatusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}

// IsStatus reports whether err is an API *Error with the given status.
func IsStatus(err error, status int) bool {
	var e *Error
	if !asError(err, &e) {
		return false
	}
	return e.StatusCode == status
}

// IsCode reports whether err is an API *Error with the given error code.
func IsCode(err error, code string) bool {
	var e *Error
	if !asError(err, &e) {
		return false
	}
	return e.Code == code
}

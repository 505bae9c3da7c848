package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/popeskul/wa-inbox/internal/api"
)

// Error codes shared by middleware and handlers.
const (
	ErrorCodeInternal            = "INTERNAL_ERROR"
	ErrorCodeRateLimitExceeded   = "RATE_LIMIT_EXCEEDED"
	ErrorCodeRequestTimeout      = "REQUEST_TIMEOUT"
	ErrorCodeValidation          = "VALIDATION_ERROR"
	ErrorCodeNotFound            = "NOT_FOUND"
	ErrorCodeTemplateRequired    = "TEMPLATE_REQUIRED"
	ErrorCodeProviderError       = "PROVIDER_ERROR"
	ErrorCodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
)

const (
	ErrorMessageInternal          = "An internal error occurred"
	ErrorMessageRateLimitExceeded = "Too many requests"
	ErrorMessageRequestTimeout    = "Request timeout"
)

// WriteError renders the common error body.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	now := time.Now().UTC()
	render.Status(r, status)
	render.JSON(w, r, api.ErrorResponse{
		Error:     code,
		Message:   message,
		Timestamp: &now,
	})
}

package provider

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound          = errors.New("provider resource not found")
	ErrParticipantExists = errors.New("participant already exists")
	ErrUnauthorized      = errors.New("provider rejected credentials")
	ErrRateLimited       = errors.New("provider rate limit exceeded")
)

// codeParticipantExists is the provider error code for a duplicate participant.
const codeParticipantExists = 50433

// APIError is a non-2xx response from the provider.
type APIError struct {
	StatusCode int    `json:"status"`
	Code       int    `json:"code"`
	Message    string `json:"message"`
	MoreInfo   string `json:"more_info"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("provider error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("provider error: status %d code %d: %s", e.StatusCode, e.Code, e.Message)
}

// Is maps API errors onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrParticipantExists:
		return e.Code == codeParticipantExists
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	}
	return false
}

package remote

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/moodkeeper/internal/common"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("api error: %d %s", e.StatusCode, e.Message)
}

// Unwrap maps the status onto the shared error sentinels.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return common.ErrValidation
	case http.StatusUnauthorized:
		return common.ErrUnauthorized
	case http.StatusNotFound:
		return common.ErrNotFound
	case http.StatusConflict:
		return common.ErrConflict
	case http.StatusTooManyRequests:
		return common.ErrRateLimited
	}
	return common.ErrInternal
}

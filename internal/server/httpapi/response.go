package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/dmitrijs2005/moodkeeper/internal/api"
	"github.com/dmitrijs2005/moodkeeper/internal/common"
	"github.com/dmitrijs2005/moodkeeper/internal/logging"
)

const internalErrorMessage = "Internal server error"

func writeJSON[T any](w http.ResponseWriter, status int, body api.Envelope[T]) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(body)
}

func writeData[T any](w http.ResponseWriter, status int, message string, data T) {
	writeJSON(w, status, api.Envelope[T]{Success: true, Message: message, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, api.Envelope[any]{Success: true, Message: message})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, api.Envelope[any]{Success: false, Message: message})
}

// statusFor maps an error onto its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, common.ErrRateLimited):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// messageFor returns the client-facing text for err. Internal details never
// leave the server.
func messageFor(err error, status int) string {
	if status == http.StatusInternalServerError {
		return internalErrorMessage
	}

	var ve *common.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	var pe *common.PublicError
	if errors.As(err, &pe) {
		return pe.Message
	}

	switch status {
	case http.StatusUnauthorized:
		return "Unauthorized"
	case http.StatusNotFound:
		return "Not found"
	case http.StatusConflict:
		return "Conflict"
	case http.StatusTooManyRequests:
		return "Too many requests, please try again later."
	}
	return "Bad request"
}

// writeError logs server-side failures and writes the error envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.FromContext(r.Context(), logging.Nop()).Error(r.Context(), "request failed", "error", err)
	}
	writeFailure(w, status, messageFor(err, status))
}

// decodeJSON reads the request body into dst. Oversized bodies yield 413,
// malformed JSON a validation error.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeFailure(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return false
	}

	if err := sonic.Unmarshal(body, dst); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

package http

import (
	"encoding/json"
	"net/http"
	"time"
)

// ErrorResponse is the standard API error body. The message for
// authentication failures is always generic; remainingAttempts and
// lockedUntil are the only extra signal a caller gets.
type ErrorResponse struct {
	Error             string     `json:"error"`
	Message           string     `json:"message"`
	RemainingAttempts *int       `json:"remainingAttempts,omitempty"`
	LockedUntil       *time.Time `json:"lockedUntil,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	// Encoding errors are not recoverable at this point
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a JSON error response with the given status code
func WriteError(w http.ResponseWriter, statusCode int, errorCode, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: errorCode, Message: message})
}

func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message)
}

// WriteInvalidCredentials writes the uniform 401 for a failed login,
// carrying only the remaining-attempt count.
func WriteInvalidCredentials(w http.ResponseWriter, remainingAttempts int) {
	WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
		Error:             "invalid_credentials",
		Message:           "invalid credentials",
		RemainingAttempts: &remainingAttempts,
	})
}

// WriteRateLimited writes the 429 for a locked-out address.
func WriteRateLimited(w http.ResponseWriter, lockedUntil *time.Time) {
	WriteJSON(w, http.StatusTooManyRequests, ErrorResponse{
		Error:       "rate_limit_exceeded",
		Message:     "too many login attempts",
		LockedUntil: lockedUntil,
	})
}

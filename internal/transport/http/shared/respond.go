// Package shared holds the response helpers every handler uses, so the JSON
// envelope and status mapping stay consistent across areas.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "dropforge/pkg/domain-errors"
)

// ErrorResponse is the uniform error envelope. Kind carries the engine's
// rejection taxonomy verbatim; clients branch on it, not on the message.
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// WriteError maps a domain error onto an HTTP status and the error envelope.
// Non-domain errors collapse to internal so nothing leaks.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	message := "internal error"
	var de *dErrors.Error
	if errors.As(err, &de) {
		message = de.Message
	}
	WriteJSON(w, statusFor(code), ErrorResponse{
		Error:   string(code),
		Kind:    string(dErrors.KindOf(err)),
		Message: message,
	})
}

func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeFailedPrecondition, dErrors.CodeLimitExceeded:
		return http.StatusUnprocessableEntity
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

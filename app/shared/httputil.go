package shared

import (
	"encoding/json"
	"net/http"
)

// RespondJSON writes v as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// ErrorResponse is the common error body for all API endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
	// Retryable hints whether re-invoking with force is safe.
	Retryable bool `json:"retryable,omitempty"`
}

// RespondError writes a JSON error body.
func RespondError(w http.ResponseWriter, status int, msg string, retryable bool) {
	RespondJSON(w, status, ErrorResponse{Error: msg, Retryable: retryable})
}

package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"brightpath/internal/apperrors"
)

type errorBody struct {
	Code    apperrors.Code     `json:"code"`
	Message string             `json:"message"`
	Details []apperrors.Detail `json:"details,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// respondJSON writes v as a JSON response
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// respondError writes a typed error as the standard error envelope.
// Wrapped internal causes are logged, never sent to the client.
func respondError(w http.ResponseWriter, err error) {
	apiErr := apperrors.From(err)
	if apiErr.Err != nil {
		log.Printf("%s: %s: %v", apiErr.Code, apiErr.Message, apiErr.Err)
	}

	respondJSON(w, apiErr.Status, errorEnvelope{Error: errorBody{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}})
}

// decodeJSON parses a request body into dst, rejecting malformed JSON
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.BadRequest("Request body must be valid JSON")
	}
	return nil
}

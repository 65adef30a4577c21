// Package httpx implements the JSON response envelope shared by every endpoint.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the wire shape of all API responses.
type Envelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Code    int    `json:"code"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// JSON writes an arbitrary payload with the given status code.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Success writes a 200 envelope with an optional data payload.
func Success(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusOK, Envelope{
		Status:  true,
		Message: message,
		Code:    http.StatusOK,
		Data:    data,
	})
}

// Fail writes a failure envelope with the given status code and optional
// field errors.
func Fail(w http.ResponseWriter, code int, message string, errs any) {
	JSON(w, code, Envelope{
		Status:  false,
		Message: message,
		Code:    code,
		Errors:  errs,
	})
}

// DecodeJSON decodes the request body into target.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}

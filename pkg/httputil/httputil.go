package httputil

import (
	"encoding/json"
	"net/http"
	"time"

	dErrors "garita/pkg/domainerrors"
)

// ErrorBody is the JSON error envelope shared by every endpoint.
type ErrorBody struct {
	Message   string `json:"message"`
	ErrorCode string `json:"errorCode"`
	Timestamp string `json:"timestamp"`
}

// WriteJSON encodes v with the given status. Encoding failures are dropped;
// by then the status line is already on the wire.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the JSON error envelope.
// Internal errors keep their message out of the response body.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	message := err.Error()
	if code == dErrors.CodeInternal {
		message = "error interno del servidor"
	}
	WriteJSON(w, dErrors.HTTPStatus(code), ErrorBody{
		Message:   message,
		ErrorCode: string(code),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

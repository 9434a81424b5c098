// internal/app/system/httpjson/httpjson.go
// Package httpjson writes the API's single JSON response envelope:
// {"success": true, "data": ...} on success and
// {"success": false, "message": "..."} on failure. Callers always get a
// JSON body, never a bare stack trace.
package httpjson

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/loomhub/loomhub/internal/app/system/apperr"
	"go.uber.org/zap"
)

// exposeInternal controls whether unexpected (non-apperr) error text is
// included in 500 responses. Bootstrap enables it outside prod.
var exposeInternal = false

// ExposeInternalErrors toggles raw error messages on 500 responses.
// Call once at startup; not safe to flip while serving.
func ExposeInternalErrors(on bool) { exposeInternal = on }

type successBody struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// OK writes a success envelope with the given status and data payload.
func OK(w http.ResponseWriter, status int, data any) {
	write(w, status, successBody{Success: true, Data: data})
}

// Message writes a success envelope carrying only a human message
// (used for outcomes like "no unread notifications").
func Message(w http.ResponseWriter, status int, msg string) {
	write(w, status, successBody{Success: true, Message: msg})
}

// Error writes a failure envelope with an explicit status and message.
func Error(w http.ResponseWriter, status int, msg string) {
	write(w, status, errorBody{Success: false, Message: msg})
}

// Fail maps err through the apperr taxonomy and writes the failure
// envelope. Unexpected errors become a generic 500; the raw message is
// only exposed when ExposeInternalErrors was enabled.
func Fail(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("unhandled error", zap.Error(err))
		msg := "internal server error"
		if exposeInternal {
			msg = err.Error()
		}
		Error(w, status, msg)
		return
	}
	Error(w, status, err.Error())
}

// Decode reads a JSON request body into dst, translating decoding
// failures to BadRequest with the underlying message preserved.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.BadRequest("invalid request body: %s", decodeMessage(err))
	}
	return nil
}

func decodeMessage(err error) string {
	var syn *json.SyntaxError
	var typ *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syn):
		return "malformed JSON"
	case errors.As(err, &typ):
		return "wrong type for field " + typ.Field
	default:
		return err.Error()
	}
}

func write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Two error shapes leave this API:
//
//   - Request problems found before any use case runs (bad id, malformed
//     JSON, failed validation) use the Response envelope:
//     { "status": "error", "error": "field Name is required" }
//   - Use-case failures are a result.Error written as-is:
//     { "code": 203, "description": "Student must be at least 18 years old" }
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/aanand-mishra/registration-api/internal/result"
	"github.com/go-playground/validator/v10"
)

// Response is the envelope for request-level errors.
type Response struct {
	Status string `json:"status"` // "ok" or "error"
	Error  string `json:"error"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ─────────────────────────────────────────────────────────────────────────────
// WriteJSON writes data as JSON with the given status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called, headers are locked.
// ─────────────────────────────────────────────────────────────────────────────
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// NoContent answers 204 with an empty body.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Failure writes a use-case failure. Lookups pass notFoundIs404 so a missing
// resource answers 404; everything else answers 400.
func Failure(w http.ResponseWriter, e result.Error, notFoundIs404 bool) error {
	status := http.StatusBadRequest
	if notFoundIs404 && result.IsNotFound(e) {
		status = http.StatusNotFound
	}
	return WriteJSON(w, status, e)
}

// ServerError answers 500 with the generic server failure body. Used when
// the request could not be dispatched at all.
func ServerError(w http.ResponseWriter) error {
	return WriteJSON(w, http.StatusInternalServerError, result.ServerError)
}

func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// ValidationError turns validator field errors into one readable message,
// one sentence per failing field joined with ", ":
//
//	{ "status": "error", "error": "field name is required, field email must be a valid email address" }
//
// Field names are the json names (see the validator in package handlers).
// ─────────────────────────────────────────────────────────────────────────────
func ValidationError(errs validator.ValidationErrors) Response {
	var errMessages []string

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", e.Field()))
		case "email":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be a valid email address", e.Field()))
		case "min":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be at least %s", e.Field(), limitUnit(e)))
		case "max":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be at most %s", e.Field(), limitUnit(e)))
		case "uuid":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be a valid UUID", e.Field()))
		case "datetime":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be a date in the format YYYY-MM-DD", e.Field()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Response{
		Status: StatusError,
		Error:  strings.Join(errMessages, ", "),
	}
}

// limitUnit renders a min/max parameter: a character count for strings,
// a plain number otherwise.
func limitUnit(e validator.FieldError) string {
	if e.Kind() == reflect.String {
		return e.Param() + " characters long"
	}
	return e.Param()
}

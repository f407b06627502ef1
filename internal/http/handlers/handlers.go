// Package handlers holds the request plumbing shared by the resource
// handlers (student, course, enrollment): body decoding and validation,
// path and paging parameters, and dispatch through the mediator.
//
// Each helper writes the error response itself and reports ok=false, so a
// handler reads as a straight line:
//
//	id, ok := handlers.PathID(w, r, "id")
//	if !ok {
//		return
//	}
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/aanand-mishra/registration-api/internal/mediator"
	"github.com/aanand-mishra/registration-api/internal/result"
	"github.com/aanand-mishra/registration-api/internal/types"
	"github.com/aanand-mishra/registration-api/internal/utils/response"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// validate is shared: validator caches struct metadata and is safe for
// concurrent use. Field errors are reported with their json names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the validate:"..." tags on v.
func Validate(v any) error {
	return validate.Struct(v)
}

// badRequest writes the {"status":"error"} envelope with a 400.
func badRequest(w http.ResponseWriter, err error) {
	response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
}

// ─────────────────────────────────────────────────────────────────────────────
// DecodeJSON reads the request body into dst and validates it.
//
//	empty body        → 400 "request body is empty"
//	malformed JSON    → 400 with the decoder's message
//	failed validation → 400 listing every failing field
// ─────────────────────────────────────────────────────────────────────────────
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		badRequest(w, errors.New("request body is empty"))
		return false
	}
	if err != nil {
		badRequest(w, err)
		return false
	}

	if err := Validate(dst); err != nil {
		var validateErrs validator.ValidationErrors
		if errors.As(err, &validateErrs) {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(validateErrs))
			return false
		}
		badRequest(w, err)
		return false
	}
	return true
}

// PathID parses the named path segment as a UUID.
func PathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		badRequest(w, errors.New("invalid id: must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// ParseUUID parses a body field already validated with the uuid tag.
func ParseUUID(w http.ResponseWriter, field, value string) (uuid.UUID, bool) {
	id, err := uuid.Parse(value)
	if err != nil {
		badRequest(w, fmt.Errorf("field %s must be a valid UUID", field))
		return uuid.Nil, false
	}
	return id, true
}

// Page reads ?pageNumber=&pageSize=, falling back to the defaults for
// missing values and rejecting anything out of range.
func Page(w http.ResponseWriter, r *http.Request) (types.PageQuery, bool) {
	page := types.DefaultPageQuery()
	q := r.URL.Query()

	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"pageNumber", &page.PageNumber},
		{"pageSize", &page.PageSize},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(w, fmt.Errorf("invalid %s: must be an integer", p.name))
			return types.PageQuery{}, false
		}
		*p.dst = n
	}

	if err := Validate(page); err != nil {
		var validateErrs validator.ValidationErrors
		if errors.As(err, &validateErrs) {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(validateErrs))
		} else {
			badRequest(w, err)
		}
		return types.PageQuery{}, false
	}
	return page, true
}

// ─────────────────────────────────────────────────────────────────────────────
// Send dispatches req through the mediator and unwraps the Result.
//
// On failure the error response is already written and ok is false:
//
//	dispatch error (no handler, panic) → 500 ServerError
//	result failure, lookup=true        → 404 for not-found errors, else 400
//	result failure, lookup=false       → 400
// ─────────────────────────────────────────────────────────────────────────────
func Send[T, Req any](w http.ResponseWriter, r *http.Request, m *mediator.Mediator, req Req, lookup bool) (T, bool) {
	var zero T

	res, err := mediator.Send[result.Result[T]](r.Context(), m, req)
	if err != nil {
		slog.Error("dispatch failed",
			slog.String("request", fmt.Sprintf("%T", req)),
			slog.String("error", err.Error()))
		response.ServerError(w)
		return zero, false
	}

	if res.IsFailure() {
		response.Failure(w, res.Err(), lookup)
		return zero, false
	}
	return res.Value(), true
}

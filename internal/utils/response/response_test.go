package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aanand-mishra/registration-api/internal/result"
	"github.com/go-playground/validator/v10"
)

func TestFailure_Status(t *testing.T) {
	tests := []struct {
		name   string
		err    result.Error
		lookup bool
		want   int
	}{
		{"lookup not found", result.StudentNotFound, true, http.StatusNotFound},
		{"lookup other failure", result.ServerError, true, http.StatusBadRequest},
		{"command not found", result.CourseNotFound, false, http.StatusBadRequest},
		{"rule violation", result.StudentUnderage, false, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			if err := Failure(w, tt.err, tt.lookup); err != nil {
				t.Fatalf("write: %v", err)
			}
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Fatalf("expected json content type, got %q", ct)
			}
		})
	}
}

func TestFailure_Body(t *testing.T) {
	w := httptest.NewRecorder()
	Failure(w, result.StudentUnderage, false)

	want := `{"code":203,"description":"Student must be at least 18 years old"}`
	if got := strings.TrimSpace(w.Body.String()); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestValidationError_Messages(t *testing.T) {
	type request struct {
		Name  string `validate:"required"`
		Email string `validate:"email"`
		Title string `validate:"min=3"`
		Size  int    `validate:"max=100"`
		Ref   string `validate:"uuid"`
	}

	err := validator.New().Struct(request{Email: "nope", Title: "ab", Size: 101, Ref: "x"})
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		t.Fatalf("expected validation errors, got %v", err)
	}

	got := ValidationError(errs)
	if got.Status != StatusError {
		t.Fatalf("expected error status, got %q", got.Status)
	}
	for _, want := range []string{
		"field Name is required",
		"field Email must be a valid email address",
		"field Title must be at least 3 characters long",
		"field Size must be at most 100",
		"field Ref must be a valid UUID",
	} {
		if !strings.Contains(got.Error, want) {
			t.Fatalf("expected %q in %q", want, got.Error)
		}
	}
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	NoContent(w)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Fatalf("expected empty 204, got %d %q", w.Code, w.Body.String())
	}
}

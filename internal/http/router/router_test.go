package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aanand-mishra/registration-api/internal/app/registry"
	"github.com/aanand-mishra/registration-api/internal/http/router"
	"github.com/aanand-mishra/registration-api/internal/mediator"
	"github.com/aanand-mishra/registration-api/internal/result"
	"github.com/aanand-mishra/registration-api/internal/storage/sqlite"
	"github.com/aanand-mishra/registration-api/internal/types"
	"github.com/aanand-mishra/registration-api/internal/utils/response"
)

func newServer(t *testing.T) http.Handler {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := func() time.Time { return time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC) }
	return router.New(registry.New(store, log, clock), store)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, path, reader)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func expectFailure(t *testing.T, w *httptest.ResponseRecorder, status int, want result.Error) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected %d, got %d: %s", status, w.Code, w.Body.String())
	}
	if got := decode[result.Error](t, w); got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestEnrollmentScenario(t *testing.T) {
	h := newServer(t)

	w := do(t, h, http.MethodPost, "/api/students", `{"name":"Ana","email":"ana@x.com","birthDate":"2000-05-01"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create student: %d %s", w.Code, w.Body.String())
	}
	ana := decode[types.StudentResponse](t, w)
	if loc := w.Header().Get("Location"); loc != "/api/students/"+ana.ID.String() {
		t.Fatalf("unexpected Location %q", loc)
	}

	w = do(t, h, http.MethodPost, "/api/courses", `{"name":"Algebra","description":"Linear algebra basics"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create course: %d %s", w.Code, w.Body.String())
	}
	algebra := decode[types.CourseResponse](t, w)

	pair := `{"studentId":"` + ana.ID.String() + `","courseId":"` + algebra.ID.String() + `"}`

	w = do(t, h, http.MethodPost, "/api/enrollments", pair)
	if w.Code != http.StatusCreated {
		t.Fatalf("enroll: %d %s", w.Code, w.Body.String())
	}
	enrolled := decode[types.EnrollmentResponse](t, w)
	if enrolled.StudentName != "Ana" || enrolled.CourseName != "Algebra" || !enrolled.Active {
		t.Fatalf("unexpected enrollment %+v", enrolled)
	}
	location := w.Header().Get("Location")
	if location != "/api/enrollments/"+enrolled.ID.String() {
		t.Fatalf("unexpected Location %q", location)
	}

	w = do(t, h, http.MethodGet, location, "")
	if got := decode[types.EnrollmentResponse](t, w); w.Code != http.StatusOK || got.ID != enrolled.ID || got.CourseName != "Algebra" {
		t.Fatalf("get enrollment at Location: %d %s", w.Code, w.Body.String())
	}

	expectFailure(t, do(t, h, http.MethodPost, "/api/enrollments", pair),
		http.StatusBadRequest, result.EnrollmentAlreadyEnrolled)

	w = do(t, h, http.MethodGet, "/api/courses/"+algebra.ID.String()+"/students", "")
	page := decode[types.Page[types.StudentResponse]](t, w)
	if w.Code != http.StatusOK || page.TotalRecords != 1 || page.Data[0].ID != ana.ID {
		t.Fatalf("course students: %d %+v", w.Code, page)
	}

	w = do(t, h, http.MethodGet, "/api/students/enrolled", "")
	page = decode[types.Page[types.StudentResponse]](t, w)
	if page.TotalRecords != 1 || page.Data[0].Name != "Ana" {
		t.Fatalf("enrolled students: %+v", page)
	}

	// enrollment rows keep the student from being deleted
	expectFailure(t, do(t, h, http.MethodDelete, "/api/students/"+ana.ID.String(), ""),
		http.StatusBadRequest, result.DatabaseError)

	if w := do(t, h, http.MethodDelete, "/api/enrollments", pair); w.Code != http.StatusNoContent {
		t.Fatalf("remove: %d %s", w.Code, w.Body.String())
	}
	expectFailure(t, do(t, h, http.MethodDelete, "/api/enrollments", pair),
		http.StatusBadRequest, result.EnrollmentNotFound)

	w = do(t, h, http.MethodGet, location, "")
	if got := decode[types.EnrollmentResponse](t, w); w.Code != http.StatusOK || got.Active {
		t.Fatalf("expected the removed enrollment to read back inactive: %d %s", w.Code, w.Body.String())
	}
	expectFailure(t, do(t, h, http.MethodGet, "/api/enrollments/5f0c1d8e-2a4b-4c7e-9d3f-1a2b3c4d5e6f", ""),
		http.StatusNotFound, result.EnrollmentNotFound)

	w = do(t, h, http.MethodGet, "/api/students/enrolled", "")
	if page := decode[types.Page[types.StudentResponse]](t, w); page.TotalRecords != 0 || page.Data == nil {
		t.Fatalf("expected an empty, non-null list, got %s", w.Body.String())
	}

	if w := do(t, h, http.MethodPost, "/api/enrollments", pair); w.Code != http.StatusCreated {
		t.Fatalf("re-enroll: %d %s", w.Code, w.Body.String())
	}
}

func TestStudentEndpoints(t *testing.T) {
	h := newServer(t)

	expectFailure(t, do(t, h, http.MethodPost, "/api/students", `{"name":"Kid","email":"kid@x.com","birthDate":"2010-01-01"}`),
		http.StatusBadRequest, result.StudentUnderage)

	w := do(t, h, http.MethodPost, "/api/students", `{"name":"Bob","email":"bob@x.com","birthDate":"2000-01-01"}`)
	bob := decode[types.StudentResponse](t, w)

	expectFailure(t, do(t, h, http.MethodPost, "/api/students", `{"name":"Bobby","email":"bob@x.com","birthDate":"2000-01-01"}`),
		http.StatusBadRequest, result.StudentAlreadyExists)

	w = do(t, h, http.MethodGet, "/api/students/"+bob.ID.String(), "")
	if got := decode[types.StudentResponse](t, w); w.Code != http.StatusOK || got.Email != "bob@x.com" {
		t.Fatalf("get: %d %s", w.Code, w.Body.String())
	}

	w = do(t, h, http.MethodPut, "/api/students/"+bob.ID.String(), `{"name":"Robert","email":"bob@x.com","birthDate":"2000-01-01"}`)
	if got := decode[types.StudentResponse](t, w); w.Code != http.StatusOK || got.Name != "Robert" {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}

	missing := "/api/students/5f0c1d8e-2a4b-4c7e-9d3f-1a2b3c4d5e6f"
	expectFailure(t, do(t, h, http.MethodGet, missing, ""), http.StatusNotFound, result.StudentNotFound)
	expectFailure(t, do(t, h, http.MethodPut, missing, `{"name":"Ghost","email":"g@x.com","birthDate":"2000-01-01"}`),
		http.StatusBadRequest, result.StudentNotFound)

	if w := do(t, h, http.MethodDelete, "/api/students/"+bob.ID.String(), ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete: %d %s", w.Code, w.Body.String())
	}
	expectFailure(t, do(t, h, http.MethodDelete, "/api/students/"+bob.ID.String(), ""),
		http.StatusBadRequest, result.StudentNotFound)
}

func TestCourseNotFoundIs404(t *testing.T) {
	h := newServer(t)
	id := "5f0c1d8e-2a4b-4c7e-9d3f-1a2b3c4d5e6f"

	expectFailure(t, do(t, h, http.MethodGet, "/api/courses/"+id, ""), http.StatusNotFound, result.CourseNotFound)
	expectFailure(t, do(t, h, http.MethodGet, "/api/courses/"+id+"/students", ""), http.StatusNotFound, result.CourseNotFound)
	expectFailure(t, do(t, h, http.MethodDelete, "/api/courses/"+id, ""), http.StatusBadRequest, result.CourseNotFound)
}

func TestRequestErrors(t *testing.T) {
	h := newServer(t)

	tests := []struct {
		name, method, path, body string
		wantErr                  string
	}{
		{"bad id", http.MethodGet, "/api/students/42", "", "invalid id: must be a UUID"},
		{"empty body", http.MethodPost, "/api/students", "", "request body is empty"},
		{"malformed json", http.MethodPost, "/api/courses", "{", "unexpected EOF"},
		{"missing fields", http.MethodPost, "/api/students", `{}`, "field name is required"},
		{"bad email", http.MethodPost, "/api/students", `{"name":"Ana","email":"nope","birthDate":"2000-01-01"}`, "field email must be a valid email address"},
		{"bad date", http.MethodPost, "/api/students", `{"name":"Ana","email":"a@x.com","birthDate":"01/05/2000"}`, "field birthDate must be a date in the format YYYY-MM-DD"},
		{"short description", http.MethodPost, "/api/courses", `{"name":"Algebra","description":"short"}`, "field description must be at least 10 characters long"},
		{"bad uuid", http.MethodPost, "/api/enrollments", `{"studentId":"x","courseId":"y"}`, "field studentId must be a valid UUID"},
		{"page size zero", http.MethodGet, "/api/students?pageSize=0", "", "field pageSize must be at least 1"},
		{"page size too big", http.MethodGet, "/api/courses?pageSize=101", "", "field pageSize must be at most 100"},
		{"page number too big", http.MethodGet, "/api/students?pageNumber=922337203685477581", "", "field pageNumber must be at most 1000000"},
		{"page not a number", http.MethodGet, "/api/students?pageNumber=abc", "", "invalid pageNumber: must be an integer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			got := decode[response.Response](t, w)
			if got.Status != response.StatusError || !strings.Contains(got.Error, tt.wantErr) {
				t.Fatalf("expected error containing %q, got %+v", tt.wantErr, got)
			}
		})
	}
}

func TestListDefaults(t *testing.T) {
	h := newServer(t)

	w := do(t, h, http.MethodGet, "/api/courses", "")
	page := decode[types.Page[types.CourseResponse]](t, w)
	if w.Code != http.StatusOK || page.PageNumber != 1 || page.PageSize != 10 || page.Data == nil {
		t.Fatalf("unexpected default page: %d %s", w.Code, w.Body.String())
	}
}

func TestDispatchFailureIs500(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := router.New(mediator.New(log), pingFunc(func(context.Context) error { return nil }))

	expectFailure(t, do(t, h, http.MethodGet, "/api/students", ""), http.StatusInternalServerError, result.ServerError)
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthz(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	up := router.New(mediator.New(log), pingFunc(func(context.Context) error { return nil }))
	if w := do(t, up, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	down := router.New(mediator.New(log), pingFunc(func(context.Context) error { return errors.New("connection refused") }))
	w := do(t, down, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusServiceUnavailable || !bytes.Contains(w.Body.Bytes(), []byte("connection refused")) {
		t.Fatalf("expected 503, got %d %s", w.Code, w.Body.String())
	}
}

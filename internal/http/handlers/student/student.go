// Package student contains the HTTP handlers for the Student resource.
//
// Handlers use the closure / factory pattern: the factory runs once at
// start-up, captures the mediator, and returns the func the router calls on
// every request.
//
//	router.HandleFunc("POST /api/students", student.New(m))
//
// No handler touches storage. Each one turns the request into a command or
// query, sends it through the mediator, and maps the Result to a status code.
package student

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/registration-api/internal/app/students"
	"github.com/aanand-mishra/registration-api/internal/http/handlers"
	"github.com/aanand-mishra/registration-api/internal/mediator"
	"github.com/aanand-mishra/registration-api/internal/types"
	"github.com/aanand-mishra/registration-api/internal/utils/response"
)

// decodeStudent reads and validates a StudentRequest and parses its birth
// date.
func decodeStudent(w http.ResponseWriter, r *http.Request) (types.StudentRequest, time.Time, bool) {
	var req types.StudentRequest
	if !handlers.DecodeJSON(w, r, &req) {
		return req, time.Time{}, false
	}

	birthDate, err := types.ParseDate(req.BirthDate)
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return req, time.Time{}, false
	}
	return req, birthDate, true
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
//
// Request body:
//
//	{ "name": "Ana", "email": "ana@x.com", "birthDate": "2000-05-01" }
//
// 201 Created with the student and a Location header.
// 400 for a bad body, an underage student, or an email already in use.
// ─────────────────────────────────────────────────────────────────────────────
func New(m *mediator.Mediator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		req, birthDate, ok := decodeStudent(w, r)
		if !ok {
			return
		}

		created, ok := handlers.Send[types.StudentResponse](w, r, m, students.CreateCommand{
			Name:      req.Name,
			Email:     req.Email,
			BirthDate: birthDate,
		}, false)
		if !ok {
			return
		}

		slog.Info("student created", slog.String("id", created.ID.String()))
		w.Header().Set("Location", "/api/students/"+created.ID.String())
		response.WriteJSON(w, http.StatusCreated, created)
	}
}

// GetByID handles GET /api/students/{id}. A missing student is a 404.
func GetByID(m *mediator.Mediator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := handlers.PathID(w, r, "id")
		if !ok {
			return
		}
		slog.Info("getting a student", slog.String("id", id.String()))

		student, ok := handlers.Send[types.StudentResponse](w, r, m, students.GetByIDQuery{ID: id}, true)
		if !ok {
			return
		}
		response.WriteJSON(w, http.StatusOK, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/students?pageNumber=1&pageSize=10
//
//	{ "data": [...], "pageNumber": 1, "pageSize": 10, "totalRecords": 2, "totalPages": 1 }
//
// data is [] (not null) when there are no students.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(m *mediator.Mediator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, ok := handlers.Page(w, r)
		if !ok {
			return
		}
		slog.Info("getting students",
			slog.Int("pageNumber", page.PageNumber), slog.Int("pageSize", page.PageSize))

		list, ok := handlers.Send[types.Page[types.StudentResponse]](w, r, m, students.ListQuery{Page: page}, false)
		if !ok {
			return
		}
		response.WriteJSON(w, http.StatusOK, list)
	}
}

// GetEnrolled handles GET /api/students/enrolled: students with at least one
// active enrollment, each listed once.
func GetEnrolled(m *mediator.Mediator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, ok := handlers.Page(w, r)
		if !ok {
			return
		}
		slog.Info("getting enrolled students")

		list, ok := handlers.Send[types.Page[types.StudentResponse]](w, r, m, students.ListEnrolledQuery{Page: page}, false)
		if !ok {
			return
		}
		response.WriteJSON(w, http.StatusOK, list)
	}
}

// Update handles PUT /api/students/{id}. All fields are replaced.
func Update(m *mediator.Mediator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := handlers.PathID(w, r, "id")
		if !ok {
			return
		}
		slog.Info("updating a student", slog.String("id", id.String()))

		req, birthDate, ok := decodeStudent(w, r)
		if !ok {
			return
		}

		updated, ok := handlers.Send[types.StudentResponse](w, r, m, students.UpdateCommand{
			ID:        id,
			Name:      req.Name,
			Email:     req.Email,
			BirthDate: birthDate,
		}, false)
		if !ok {
			return
		}

		slog.Info("student updated", slog.String("id", id.String()))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// Delete handles DELETE /api/students/{id} and answers 204 No Content.
func Delete(m *mediator.Mediator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := handlers.PathID(w, r, "id")
		if !ok {
			return
		}
		slog.Info("deleting a student", slog.String("id", id.String()))

		if _, ok := handlers.Send[bool](w, r, m, students.DeleteCommand{ID: id}, false); !ok {
			return
		}

		slog.Info("student deleted", slog.String("id", id.String()))
		response.NoContent(w)
	}
}

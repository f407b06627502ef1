// Package course contains the HTTP handlers for the Course resource,
// including the list of students enrolled in one course.
package course

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/registration-api/internal/app/courses"
	"github.com/aanand-mishra/registration-api/internal/app/enrollments"
	"github.com/aanand-mishra/registration-api/internal/http/handlers"
	"github.com/aanand-mishra/registration-api/internal/mediator"
	"github.com/aanand-mishra/registration-api/internal/types"
	"github.com/aanand-mishra/registration-api/internal/utils/response"
)

// New handles POST /api/courses.
//
//	{ "name": "Algebra", "description": "Linear algebra basics" }
func New(m *mediator.Mediator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a course")

		var req types.CourseRequest
		if !handlers.DecodeJSON(w, r, &req) {
			return
		}

		created, ok := handlers.Send[types.CourseResponse](w, r, m, courses.CreateCommand{
			Name:        req.Name,
			Description: req.Description,
		}, false)
		if !ok {
			return
		}

		slog.Info("course created", slog.String("id", created.ID.String()))
		w.Header().Set("Location", "/api/courses/"+created.ID.String())
		response.WriteJSON(w, http.StatusCreated, created)
	}
}

func GetByID(m *mediator.Mediator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := handlers.PathID(w, r, "id")
		if !ok {
			return
		}
		slog.Info("getting a course", slog.String("id", id.String()))

		course, ok := handlers.Send[types.CourseResponse](w, r, m, courses.GetByIDQuery{ID: id}, true)
		if !ok {
			return
		}
		response.WriteJSON(w, http.StatusOK, course)
	}
}

func GetList(m *mediator.Mediator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, ok := handlers.Page(w, r)
		if !ok {
			return
		}
		slog.Info("getting courses",
			slog.Int("pageNumber", page.PageNumber), slog.Int("pageSize", page.PageSize))

		list, ok := handlers.Send[types.Page[types.CourseResponse]](w, r, m, courses.ListQuery{Page: page}, false)
		if !ok {
			return
		}
		response.WriteJSON(w, http.StatusOK, list)
	}
}

// ListStudents handles GET /api/courses/{courseId}/students. An unknown
// course is a 404.
func ListStudents(m *mediator.Mediator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID, ok := handlers.PathID(w, r, "courseId")
		if !ok {
			return
		}
		page, ok := handlers.Page(w, r)
		if !ok {
			return
		}
		slog.Info("getting course students", slog.String("courseId", courseID.String()))

		list, ok := handlers.Send[types.Page[types.StudentResponse]](w, r, m, enrollments.ListStudentsByCourseQuery{
			CourseID: courseID,
			Page:     page,
		}, true)
		if !ok {
			return
		}
		response.WriteJSON(w, http.StatusOK, list)
	}
}

func Update(m *mediator.Mediator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := handlers.PathID(w, r, "id")
		if !ok {
			return
		}
		slog.Info("updating a course", slog.String("id", id.String()))

		var req types.CourseRequest
		if !handlers.DecodeJSON(w, r, &req) {
			return
		}

		updated, ok := handlers.Send[types.CourseResponse](w, r, m, courses.UpdateCommand{
			ID:          id,
			Name:        req.Name,
			Description: req.Description,
		}, false)
		if !ok {
			return
		}

		slog.Info("course updated", slog.String("id", id.String()))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

func Delete(m *mediator.Mediator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := handlers.PathID(w, r, "id")
		if !ok {
			return
		}
		slog.Info("deleting a course", slog.String("id", id.String()))

		if _, ok := handlers.Send[bool](w, r, m, courses.DeleteCommand{ID: id}, false); !ok {
			return
		}

		slog.Info("course deleted", slog.String("id", id.String()))
		response.NoContent(w)
	}
}

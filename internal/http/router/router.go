// Package router maps every route of the API to its handler.
package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/registration-api/internal/http/handlers/course"
	"github.com/aanand-mishra/registration-api/internal/http/handlers/enrollment"
	"github.com/aanand-mishra/registration-api/internal/http/handlers/student"
	"github.com/aanand-mishra/registration-api/internal/mediator"
	"github.com/aanand-mishra/registration-api/internal/utils/response"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New returns the route table:
//
//	GET    /api/students                      list (paged)
//	GET    /api/students/enrolled             students with an active enrollment
//	GET    /api/students/{id}                 one student
//	POST   /api/students                      create
//	PUT    /api/students/{id}                 update
//	DELETE /api/students/{id}                 delete
//	GET    /api/courses ... (same five)       courses
//	GET    /api/courses/{courseId}/students   students enrolled in a course
//	POST   /api/enrollments                   enroll
//	GET    /api/enrollments/{id}              one enrollment
//	DELETE /api/enrollments                   remove an enrollment
//	GET    /healthz                           database ping
func New(m *mediator.Mediator, db Pinger) *http.ServeMux {
	router := http.NewServeMux()

	router.HandleFunc("GET /api/students", student.GetList(m))
	router.HandleFunc("GET /api/students/enrolled", student.GetEnrolled(m))
	router.HandleFunc("GET /api/students/{id}", student.GetByID(m))
	router.HandleFunc("POST /api/students", student.New(m))
	router.HandleFunc("PUT /api/students/{id}", student.Update(m))
	router.HandleFunc("DELETE /api/students/{id}", student.Delete(m))

	router.HandleFunc("GET /api/courses", course.GetList(m))
	router.HandleFunc("GET /api/courses/{id}", course.GetByID(m))
	router.HandleFunc("GET /api/courses/{courseId}/students", course.ListStudents(m))
	router.HandleFunc("POST /api/courses", course.New(m))
	router.HandleFunc("PUT /api/courses/{id}", course.Update(m))
	router.HandleFunc("DELETE /api/courses/{id}", course.Delete(m))

	router.HandleFunc("POST /api/enrollments", enrollment.New(m))
	router.HandleFunc("GET /api/enrollments/{id}", enrollment.GetByID(m))
	router.HandleFunc("DELETE /api/enrollments", enrollment.Remove(m))

	router.HandleFunc("GET /healthz", health(db))

	return router
}

func health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusServiceUnavailable, response.GeneralError(err))
			return
		}
		response.WriteJSON(w, http.StatusOK, response.Response{Status: response.StatusOK})
	}
}

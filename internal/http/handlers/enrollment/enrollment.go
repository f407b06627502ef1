// Package enrollment contains the HTTP handlers for the Enrollment resource.
package enrollment

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/registration-api/internal/app/enrollments"
	"github.com/aanand-mishra/registration-api/internal/http/handlers"
	"github.com/aanand-mishra/registration-api/internal/mediator"
	"github.com/aanand-mishra/registration-api/internal/types"
	"github.com/aanand-mishra/registration-api/internal/utils/response"
	"github.com/google/uuid"
)

// decodePair reads {studentId, courseId}, the body of both POST and DELETE.
func decodePair(w http.ResponseWriter, r *http.Request) (studentID, courseID uuid.UUID, ok bool) {
	var req types.EnrollmentRequest
	if !handlers.DecodeJSON(w, r, &req) {
		return uuid.Nil, uuid.Nil, false
	}

	if studentID, ok = handlers.ParseUUID(w, "studentId", req.StudentID); !ok {
		return uuid.Nil, uuid.Nil, false
	}
	if courseID, ok = handlers.ParseUUID(w, "courseId", req.CourseID); !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return studentID, courseID, true
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/enrollments
//
//	{ "studentId": "...", "courseId": "..." }
//
// 201 Created with the enrollment (including student and course names).
// 400 when the student or course is unknown or the pair is already active.
// ─────────────────────────────────────────────────────────────────────────────
func New(m *mediator.Mediator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID, courseID, ok := decodePair(w, r)
		if !ok {
			return
		}
		slog.Info("enrolling a student",
			slog.String("studentId", studentID.String()),
			slog.String("courseId", courseID.String()))

		created, ok := handlers.Send[types.EnrollmentResponse](w, r, m, enrollments.CreateCommand{
			StudentID: studentID,
			CourseID:  courseID,
		}, false)
		if !ok {
			return
		}

		w.Header().Set("Location", "/api/enrollments/"+created.ID.String())
		response.WriteJSON(w, http.StatusCreated, created)
	}
}

// GetByID handles GET /api/enrollments/{id}, the Location of a new
// enrollment. Removed enrollments are still returned, with active=false.
func GetByID(m *mediator.Mediator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := handlers.PathID(w, r, "id")
		if !ok {
			return
		}
		slog.Info("getting an enrollment", slog.String("id", id.String()))

		enrollment, ok := handlers.Send[types.EnrollmentResponse](w, r, m, enrollments.GetByIDQuery{ID: id}, true)
		if !ok {
			return
		}
		response.WriteJSON(w, http.StatusOK, enrollment)
	}
}

// Remove handles DELETE /api/enrollments. The enrollment is deactivated,
// not deleted; 204 on success.
func Remove(m *mediator.Mediator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID, courseID, ok := decodePair(w, r)
		if !ok {
			return
		}
		slog.Info("removing an enrollment",
			slog.String("studentId", studentID.String()),
			slog.String("courseId", courseID.String()))

		if _, ok := handlers.Send[bool](w, r, m, enrollments.RemoveCommand{
			StudentID: studentID,
			CourseID:  courseID,
		}, false); !ok {
			return
		}

		response.NoContent(w)
	}
}

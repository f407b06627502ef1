// Package enrollments implements enrolling a student in a course, removing
// (deactivating) that enrollment, and listing a course's active students.
package enrollments

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aanand-mishra/registration-api/internal/app"
	"github.com/aanand-mishra/registration-api/internal/mediator"
	"github.com/aanand-mishra/registration-api/internal/result"
	"github.com/aanand-mishra/registration-api/internal/storage"
	"github.com/aanand-mishra/registration-api/internal/types"
	"github.com/google/uuid"
)

type CreateCommand struct {
	StudentID uuid.UUID
	CourseID  uuid.UUID
}

type RemoveCommand struct {
	StudentID uuid.UUID
	CourseID  uuid.UUID
}

type GetByIDQuery struct {
	ID uuid.UUID
}

type ListStudentsByCourseQuery struct {
	CourseID uuid.UUID
	Page     types.PageQuery
}

type Handlers struct {
	students    storage.Students
	courses     storage.Courses
	enrollments storage.Enrollments
	log         *slog.Logger
	now         app.Clock
}

func NewHandlers(store storage.Storage, log *slog.Logger, now app.Clock) *Handlers {
	if now == nil {
		now = app.SystemClock
	}
	return &Handlers{
		students:    store.Students(),
		courses:     store.Courses(),
		enrollments: store.Enrollments(),
		log:         log,
		now:         now,
	}
}

func (h *Handlers) Register(m *mediator.Mediator) {
	mediator.MustRegister(m, h.Create)
	mediator.MustRegister(m, h.Remove)
	mediator.MustRegister(m, h.GetByID)
	mediator.MustRegister(m, h.ListStudentsByCourse)
}

func pair(studentID, courseID uuid.UUID) []any {
	return []any{
		slog.String("studentId", studentID.String()),
		slog.String("courseId", courseID.String()),
	}
}

// Create checks the student, then the course, then that no active
// enrollment exists for the pair. The stored enrollment is read back so the
// response carries the student and course names.
func (h *Handlers) Create(ctx context.Context, cmd CreateCommand) result.Result[types.EnrollmentResponse] {
	attrs := pair(cmd.StudentID, cmd.CourseID)

	studentExists, err := h.students.Exists(ctx, cmd.StudentID)
	if err != nil {
		return app.Fail[types.EnrollmentResponse](h.log, "enrolling student", err, attrs...)
	}
	if !studentExists {
		h.log.Warn("enrollment student not found", attrs...)
		return result.Failure[types.EnrollmentResponse](result.StudentNotFound)
	}

	courseExists, err := h.courses.Exists(ctx, cmd.CourseID)
	if err != nil {
		return app.Fail[types.EnrollmentResponse](h.log, "enrolling student", err, attrs...)
	}
	if !courseExists {
		h.log.Warn("enrollment course not found", attrs...)
		return result.Failure[types.EnrollmentResponse](result.CourseNotFound)
	}

	enrolled, err := h.enrollments.IsEnrolled(ctx, cmd.StudentID, cmd.CourseID)
	if err != nil {
		return app.Fail[types.EnrollmentResponse](h.log, "enrolling student", err, attrs...)
	}
	if enrolled {
		h.log.Warn("student already enrolled", attrs...)
		return result.Failure[types.EnrollmentResponse](result.EnrollmentAlreadyEnrolled)
	}

	enrollment := types.NewEnrollment(cmd.StudentID, cmd.CourseID, h.now())
	if err := h.enrollments.Add(ctx, enrollment); err != nil {
		// a concurrent enroll for the same pair trips the active-pair index here
		return app.Fail[types.EnrollmentResponse](h.log, "enrolling student", err, attrs...)
	}

	stored, err := h.enrollments.GetByID(ctx, enrollment.ID)
	if errors.Is(err, storage.ErrNotFound) {
		h.log.Error("enrollment missing after insert", slog.String("id", enrollment.ID.String()))
		return result.Failure[types.EnrollmentResponse](result.EnrollmentNotFound)
	}
	if err != nil {
		return app.Fail[types.EnrollmentResponse](h.log, "reloading enrollment", err,
			slog.String("id", enrollment.ID.String()))
	}

	h.log.Info("student enrolled", append(attrs, slog.String("id", stored.ID.String()))...)
	return result.Success(stored.ToResponse())
}

// Remove deactivates the active enrollment for the pair. The row is kept.
func (h *Handlers) Remove(ctx context.Context, cmd RemoveCommand) result.Result[bool] {
	attrs := pair(cmd.StudentID, cmd.CourseID)

	enrollment, err := h.enrollments.GetActive(ctx, cmd.StudentID, cmd.CourseID)
	if errors.Is(err, storage.ErrNotFound) {
		h.log.Warn("active enrollment not found", attrs...)
		return result.Failure[bool](result.EnrollmentNotFound)
	}
	if err != nil {
		return app.Fail[bool](h.log, "removing enrollment", err, attrs...)
	}

	enrollment.Deactivate(h.now())

	err = h.enrollments.Update(ctx, enrollment)
	if errors.Is(err, storage.ErrNotFound) {
		return result.Failure[bool](result.EnrollmentNotFound)
	}
	if err != nil {
		return app.Fail[bool](h.log, "removing enrollment", err, attrs...)
	}

	h.log.Info("enrollment removed", attrs...)
	return result.Success(true)
}

// GetByID returns the enrollment whether active or not.
func (h *Handlers) GetByID(ctx context.Context, q GetByIDQuery) result.Result[types.EnrollmentResponse] {
	enrollment, err := h.enrollments.GetByID(ctx, q.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return result.Failure[types.EnrollmentResponse](result.EnrollmentNotFound)
	}
	if err != nil {
		return app.Fail[types.EnrollmentResponse](h.log, "getting enrollment", err,
			slog.String("id", q.ID.String()))
	}

	return result.Success(enrollment.ToResponse())
}

func (h *Handlers) ListStudentsByCourse(ctx context.Context, q ListStudentsByCourseQuery) result.Result[types.Page[types.StudentResponse]] {
	courseID := slog.String("courseId", q.CourseID.String())

	exists, err := h.courses.Exists(ctx, q.CourseID)
	if err != nil {
		return app.Fail[types.Page[types.StudentResponse]](h.log, "listing course students", err, courseID)
	}
	if !exists {
		return result.Failure[types.Page[types.StudentResponse]](result.CourseNotFound)
	}

	page, err := h.courses.ListStudents(ctx, q.CourseID, q.Page)
	if err != nil {
		return app.Fail[types.Page[types.StudentResponse]](h.log, "listing course students", err, courseID)
	}

	return result.Success(types.MapPage(page, types.Student.ToResponse))
}

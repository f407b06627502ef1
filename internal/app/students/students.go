// Package students implements the student use cases: create, update,
// delete, get by id, list, and list of students with an active enrollment.
//
// Every handler returns a result.Result. Business-rule violations are
// logged as warnings and returned as typed failures; unexpected errors are
// logged with the identifiers involved and returned as DatabaseError or
// ServerError (see app.Fail).
package students

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aanand-mishra/registration-api/internal/app"
	"github.com/aanand-mishra/registration-api/internal/mediator"
	"github.com/aanand-mishra/registration-api/internal/result"
	"github.com/aanand-mishra/registration-api/internal/storage"
	"github.com/aanand-mishra/registration-api/internal/types"
	"github.com/google/uuid"
)

type CreateCommand struct {
	Name      string
	Email     string
	BirthDate time.Time
}

type UpdateCommand struct {
	ID        uuid.UUID
	Name      string
	Email     string
	BirthDate time.Time
}

type DeleteCommand struct {
	ID uuid.UUID
}

type GetByIDQuery struct {
	ID uuid.UUID
}

type ListQuery struct {
	Page types.PageQuery
}

// ListEnrolledQuery lists students with at least one active enrollment.
type ListEnrolledQuery struct {
	Page types.PageQuery
}

// Handlers groups the student use cases around one repository.
type Handlers struct {
	students storage.Students
	log      *slog.Logger
	now      app.Clock
}

func NewHandlers(students storage.Students, log *slog.Logger, now app.Clock) *Handlers {
	if now == nil {
		now = app.SystemClock
	}
	return &Handlers{students: students, log: log, now: now}
}

// Register binds every student request type to its handler.
func (h *Handlers) Register(m *mediator.Mediator) {
	mediator.MustRegister(m, h.Create)
	mediator.MustRegister(m, h.Update)
	mediator.MustRegister(m, h.Delete)
	mediator.MustRegister(m, h.GetByID)
	mediator.MustRegister(m, h.List)
	mediator.MustRegister(m, h.ListEnrolled)
}

// Create rejects a taken email first, then an underage birth date.
func (h *Handlers) Create(ctx context.Context, cmd CreateCommand) result.Result[types.StudentResponse] {
	emailTaken, err := h.students.EmailExists(ctx, cmd.Email, nil)
	if err != nil {
		return app.Fail[types.StudentResponse](h.log, "creating student", err,
			slog.String("email", cmd.Email))
	}
	if emailTaken {
		h.log.Warn("student email already registered", slog.String("email", cmd.Email))
		return result.Failure[types.StudentResponse](result.StudentAlreadyExists)
	}

	now := h.now()
	student := types.NewStudent(cmd.Name, cmd.Email, cmd.BirthDate, now)

	if !student.IsAdult(now) {
		h.log.Warn("refusing underage student", slog.String("email", cmd.Email))
		return result.Failure[types.StudentResponse](result.StudentUnderage)
	}

	if err := h.students.Add(ctx, student); err != nil {
		return app.Fail[types.StudentResponse](h.log, "creating student", err,
			slog.String("email", cmd.Email))
	}

	h.log.Info("student created", slog.String("id", student.ID.String()))
	return result.Success(student.ToResponse())
}

// Update checks, in order: the student exists, the email is not used by a
// different student, and the new birth date still makes them an adult.
func (h *Handlers) Update(ctx context.Context, cmd UpdateCommand) result.Result[types.StudentResponse] {
	id := slog.String("id", cmd.ID.String())

	student, err := h.students.GetByID(ctx, cmd.ID)
	if errors.Is(err, storage.ErrNotFound) {
		h.log.Warn("student to update not found", id)
		return result.Failure[types.StudentResponse](result.StudentNotFound)
	}
	if err != nil {
		return app.Fail[types.StudentResponse](h.log, "updating student", err, id)
	}

	emailTaken, err := h.students.EmailExists(ctx, cmd.Email, &cmd.ID)
	if err != nil {
		return app.Fail[types.StudentResponse](h.log, "updating student", err, id)
	}
	if emailTaken {
		h.log.Warn("student email already registered", id, slog.String("email", cmd.Email))
		return result.Failure[types.StudentResponse](result.StudentAlreadyExists)
	}

	now := h.now()
	student.Update(cmd.Name, cmd.Email, cmd.BirthDate, now)

	if !student.IsAdult(now) {
		h.log.Warn("refusing underage student", id)
		return result.Failure[types.StudentResponse](result.StudentUnderage)
	}

	err = h.students.Update(ctx, student)
	if errors.Is(err, storage.ErrNotFound) {
		return result.Failure[types.StudentResponse](result.StudentNotFound)
	}
	if err != nil {
		return app.Fail[types.StudentResponse](h.log, "updating student", err, id)
	}

	return result.Success(student.ToResponse())
}

// Delete removes the student. A student that still has enrollment rows is
// protected by the database and comes back as DatabaseError.
func (h *Handlers) Delete(ctx context.Context, cmd DeleteCommand) result.Result[bool] {
	id := slog.String("id", cmd.ID.String())

	exists, err := h.students.Exists(ctx, cmd.ID)
	if err != nil {
		return app.Fail[bool](h.log, "deleting student", err, id)
	}
	if !exists {
		h.log.Warn("student to delete not found", id)
		return result.Failure[bool](result.StudentNotFound)
	}

	err = h.students.Delete(ctx, cmd.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return result.Failure[bool](result.StudentNotFound)
	}
	if err != nil {
		return app.Fail[bool](h.log, "deleting student", err, id)
	}

	h.log.Info("student deleted", id)
	return result.Success(true)
}

func (h *Handlers) GetByID(ctx context.Context, q GetByIDQuery) result.Result[types.StudentResponse] {
	student, err := h.students.GetByID(ctx, q.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return result.Failure[types.StudentResponse](result.StudentNotFound)
	}
	if err != nil {
		return app.Fail[types.StudentResponse](h.log, "getting student", err,
			slog.String("id", q.ID.String()))
	}

	return result.Success(student.ToResponse())
}

func (h *Handlers) List(ctx context.Context, q ListQuery) result.Result[types.Page[types.StudentResponse]] {
	page, err := h.students.List(ctx, q.Page)
	if err != nil {
		return app.Fail[types.Page[types.StudentResponse]](h.log, "listing students", err,
			slog.Int("pageNumber", q.Page.PageNumber), slog.Int("pageSize", q.Page.PageSize))
	}

	return result.Success(types.MapPage(page, types.Student.ToResponse))
}

func (h *Handlers) ListEnrolled(ctx context.Context, q ListEnrolledQuery) result.Result[types.Page[types.StudentResponse]] {
	page, err := h.students.ListEnrolled(ctx, q.Page)
	if err != nil {
		return app.Fail[types.Page[types.StudentResponse]](h.log, "listing enrolled students", err,
			slog.Int("pageNumber", q.Page.PageNumber), slog.Int("pageSize", q.Page.PageSize))
	}

	return result.Success(types.MapPage(page, types.Student.ToResponse))
}

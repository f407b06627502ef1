// Package courses implements the course use cases.
package courses

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
	Name        string
	Description string
}

type UpdateCommand struct {
	ID          uuid.UUID
	Name        string
	Description string
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

type Handlers struct {
	courses storage.Courses
	log     *slog.Logger
	now     app.Clock
}

func NewHandlers(courses storage.Courses, log *slog.Logger, now app.Clock) *Handlers {
	if now == nil {
		now = app.SystemClock
	}
	return &Handlers{courses: courses, log: log, now: now}
}

func (h *Handlers) Register(m *mediator.Mediator) {
	mediator.MustRegister(m, h.Create)
	mediator.MustRegister(m, h.Update)
	mediator.MustRegister(m, h.Delete)
	mediator.MustRegister(m, h.GetByID)
	mediator.MustRegister(m, h.List)
}

func (h *Handlers) Create(ctx context.Context, cmd CreateCommand) result.Result[types.CourseResponse] {
	course := types.NewCourse(cmd.Name, cmd.Description, h.now())

	if err := h.courses.Add(ctx, course); err != nil {
		return app.Fail[types.CourseResponse](h.log, "creating course", err,
			slog.String("name", cmd.Name))
	}

	h.log.Info("course created", slog.String("id", course.ID.String()))
	return result.Success(course.ToResponse())
}

func (h *Handlers) Update(ctx context.Context, cmd UpdateCommand) result.Result[types.CourseResponse] {
	id := slog.String("id", cmd.ID.String())

	course, err := h.courses.GetByID(ctx, cmd.ID)
	if errors.Is(err, storage.ErrNotFound) {
		h.log.Warn("course to update not found", id)
		return result.Failure[types.CourseResponse](result.CourseNotFound)
	}
	if err != nil {
		return app.Fail[types.CourseResponse](h.log, "updating course", err, id)
	}

	course.Update(cmd.Name, cmd.Description, h.now())

	err = h.courses.Update(ctx, course)
	if errors.Is(err, storage.ErrNotFound) {
		return result.Failure[types.CourseResponse](result.CourseNotFound)
	}
	if err != nil {
		return app.Fail[types.CourseResponse](h.log, "updating course", err, id)
	}

	return result.Success(course.ToResponse())
}

// Delete fails with DatabaseError while enrollments still reference the course.
func (h *Handlers) Delete(ctx context.Context, cmd DeleteCommand) result.Result[bool] {
	id := slog.String("id", cmd.ID.String())

	exists, err := h.courses.Exists(ctx, cmd.ID)
	if err != nil {
		return app.Fail[bool](h.log, "deleting course", err, id)
	}
	if !exists {
		h.log.Warn("course to delete not found", id)
		return result.Failure[bool](result.CourseNotFound)
	}

	err = h.courses.Delete(ctx, cmd.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return result.Failure[bool](result.CourseNotFound)
	}
	if err != nil {
		return app.Fail[bool](h.log, "deleting course", err, id)
	}

	h.log.Info("course deleted", id)
	return result.Success(true)
}

func (h *Handlers) GetByID(ctx context.Context, q GetByIDQuery) result.Result[types.CourseResponse] {
	course, err := h.courses.GetByID(ctx, q.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return result.Failure[types.CourseResponse](result.CourseNotFound)
	}
	if err != nil {
		return app.Fail[types.CourseResponse](h.log, "getting course", err,
			slog.String("id", q.ID.String()))
	}

	return result.Success(course.ToResponse())
}

func (h *Handlers) List(ctx context.Context, q ListQuery) result.Result[types.Page[types.CourseResponse]] {
	page, err := h.courses.List(ctx, q.Page)
	if err != nil {
		return app.Fail[types.Page[types.CourseResponse]](h.log, "listing courses", err,
			slog.Int("pageNumber", q.Page.PageNumber), slog.Int("pageSize", q.Page.PageSize))
	}

	return result.Success(types.MapPage(page, types.Course.ToResponse))
}

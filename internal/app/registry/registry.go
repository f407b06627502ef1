// Package registry builds a mediator with every use case registered.
package registry

import (
	"log/slog"

	"github.com/aanand-mishra/registration-api/internal/app"
	"github.com/aanand-mishra/registration-api/internal/app/courses"
	"github.com/aanand-mishra/registration-api/internal/app/enrollments"
	"github.com/aanand-mishra/registration-api/internal/app/students"
	"github.com/aanand-mishra/registration-api/internal/mediator"
	"github.com/aanand-mishra/registration-api/internal/storage"
)

// New wires the student, course and enrollment handlers over store.
// A nil clock means the system clock.
func New(store storage.Storage, log *slog.Logger, now app.Clock) *mediator.Mediator {
	m := mediator.New(log)

	students.NewHandlers(store.Students(), log, now).Register(m)
	courses.NewHandlers(store.Courses(), log, now).Register(m)
	enrollments.NewHandlers(store, log, now).Register(m)

	return m
}

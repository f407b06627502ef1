// Package app holds what the use-case packages (students, courses,
// enrollments) share: the clock abstraction and the mapping from Go errors
// to client-facing result errors.
package app

import (
	"errors"
	"log/slog"
	"time"

	"github.com/aanand-mishra/registration-api/internal/result"
	"github.com/aanand-mishra/registration-api/internal/storage"
)

// Clock returns the current time. Handlers take one so tests can pin "today".
type Clock func() time.Time

// SystemClock is the real wall clock.
func SystemClock() time.Time { return time.Now() }

// Fail converts an unexpected error into a failed Result, logging it first.
//
// Write failures (storage.ErrDatabase) become result.DatabaseError; anything
// else becomes result.ServerError. Nothing is retried.
func Fail[T any](log *slog.Logger, msg string, err error, attrs ...any) result.Result[T] {
	attrs = append(attrs, slog.String("error", err.Error()))

	if errors.Is(err, storage.ErrDatabase) {
		log.Error("database error: "+msg, attrs...)
		return result.Failure[T](result.DatabaseError)
	}

	log.Error("unexpected error: "+msg, attrs...)
	return result.Failure[T](result.ServerError)
}

// Package storage defines the repository contracts that any database
// backend must satisfy to work with this application.
//
// Use-case handlers depend only on these interfaces, never on a concrete
// database. That keeps them testable with fakes and lets main.go pick the
// backend (SQLite or PostgreSQL) from configuration.
//
// Error conventions shared by every implementation:
//
//   - ErrNotFound is returned when a lookup by key matches nothing.
//   - ErrDatabase wraps any failure while writing (insert, update, delete),
//     including constraint violations such as a duplicate email. Handlers
//     turn it into result.DatabaseError.
//   - Any other error (a failed read, a cancelled context) is returned as-is
//     and handlers turn it into result.ServerError.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/registration-api/internal/types"
	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("storage: record not found")
	ErrDatabase = errors.New("storage: database write failed")
)

// Students is the data-access contract for Student records.
type Students interface {
	GetByID(ctx context.Context, id uuid.UUID) (types.Student, error)

	// List returns students ordered by name.
	List(ctx context.Context, page types.PageQuery) (types.Page[types.Student], error)

	// ListEnrolled returns the distinct students holding at least one
	// active enrollment, ordered by name.
	ListEnrolled(ctx context.Context, page types.PageQuery) (types.Page[types.Student], error)

	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// EmailExists reports whether another student already uses email.
	// When excludeID is non-nil that student is ignored, so an update
	// that keeps its own email is not a collision.
	EmailExists(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error)

	Add(ctx context.Context, student types.Student) error
	Update(ctx context.Context, student types.Student) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Courses is the data-access contract for Course records.
type Courses interface {
	GetByID(ctx context.Context, id uuid.UUID) (types.Course, error)
	List(ctx context.Context, page types.PageQuery) (types.Page[types.Course], error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// ListStudents returns the distinct students actively enrolled in the
	// course, ordered by name.
	ListStudents(ctx context.Context, courseID uuid.UUID, page types.PageQuery) (types.Page[types.Student], error)

	Add(ctx context.Context, course types.Course) error
	Update(ctx context.Context, course types.Course) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Enrollments is the data-access contract for Enrollment records.
// Enrollments are never deleted; removal is Update with Active=false.
type Enrollments interface {
	// GetByID loads the enrollment together with the student and course names.
	GetByID(ctx context.Context, id uuid.UUID) (types.Enrollment, error)

	// IsEnrolled reports whether an active enrollment exists for the pair.
	IsEnrolled(ctx context.Context, studentID, courseID uuid.UUID) (bool, error)

	// GetActive returns the active enrollment for the pair, or ErrNotFound.
	GetActive(ctx context.Context, studentID, courseID uuid.UUID) (types.Enrollment, error)

	Add(ctx context.Context, enrollment types.Enrollment) error
	Update(ctx context.Context, enrollment types.Enrollment) error
}

// Storage bundles the three repositories behind one connection pool.
type Storage interface {
	Students() Students
	Courses() Courses
	Enrollments() Enrollments

	// Ping checks the database is reachable (used by /healthz).
	Ping(ctx context.Context) error
	Close() error
}

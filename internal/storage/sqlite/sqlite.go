// Package sqlite provides the SQLite backend for the storage interfaces.
//
// SQLite stores everything in a single file on disk. There is no network,
// no separate server process, and no installation beyond the driver, which
// makes it the default backend for local runs and for tests.
//
// The queries themselves live in storage/sqlstore; this package opens the
// file, turns foreign keys on and supplies the SQLite flavour of the schema.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aanand-mishra/registration-api/internal/config"
	"github.com/aanand-mishra/registration-api/internal/storage/sqlstore"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// New opens the SQLite database at cfg.Storage.Path, creates the schema if
// it does not already exist, and returns a ready-to-use store.
func New(cfg *config.Config) (*sqlstore.Store, error) {
	return Open(cfg.Storage.Path)
}

// Open is New without the config wrapper, handy for tests:
//
//	store, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
func Open(path string) (*sqlstore.Store, error) {
	// Foreign keys are off by default in SQLite; without them the
	// ON DELETE RESTRICT rules below would be ignored.
	dsn := path + "?_foreign_keys=on&_busy_timeout=5000"

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite.Open: create dir: %w", err)
	}

	// sql.Open does NOT open a real connection yet; it just validates
	// the driver name and data source name (DSN).
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite.Open: open db: %w", err)
	}

	// SQLite allows a single writer at a time. One connection keeps
	// writes serialised instead of failing with "database is locked".
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store := sqlstore.New(db, Dialect{})
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite.Open: %w", err)
	}

	return store, nil
}

// Dialect is the SQLite flavour of sqlstore.Dialect.
type Dialect struct{}

func (Dialect) Name() string { return config.DriverSQLite }

func (Dialect) Placeholder(int) string { return "?" }

// Schema is idempotent (IF NOT EXISTS everywhere) so it runs on every start.
//
// Column types matter for the driver: go-sqlite3 only converts values back
// into time.Time / bool when the declared type is DATE, TIMESTAMP or BOOLEAN.
func (Dialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS students (
			id         TEXT      PRIMARY KEY,
			name       TEXT      NOT NULL,
			email      TEXT      NOT NULL UNIQUE,
			birth_date DATE      NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS ix_students_name ON students (name)`,

		`CREATE TABLE IF NOT EXISTS courses (
			id          TEXT      PRIMARY KEY,
			name        TEXT      NOT NULL,
			description TEXT      NOT NULL,
			created_at  TIMESTAMP NOT NULL,
			updated_at  TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS ix_courses_name ON courses (name)`,

		`CREATE TABLE IF NOT EXISTS enrollments (
			id          TEXT      PRIMARY KEY,
			student_id  TEXT      NOT NULL REFERENCES students (id) ON DELETE RESTRICT,
			course_id   TEXT      NOT NULL REFERENCES courses (id) ON DELETE RESTRICT,
			enrolled_at TIMESTAMP NOT NULL,
			active      BOOLEAN   NOT NULL DEFAULT 1,
			created_at  TIMESTAMP NOT NULL,
			updated_at  TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS ix_enrollments_student_course ON enrollments (student_id, course_id)`,
		`CREATE INDEX IF NOT EXISTS ix_enrollments_active ON enrollments (active)`,

		// At most one active enrollment per (student, course).
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_enrollments_active_pair
			ON enrollments (student_id, course_id) WHERE active = 1`,
	}
}

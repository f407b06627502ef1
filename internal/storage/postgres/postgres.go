// Package postgres provides the PostgreSQL backend for the storage
// interfaces, using the lib/pq driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/aanand-mishra/registration-api/internal/config"
	"github.com/aanand-mishra/registration-api/internal/storage/sqlstore"

	_ "github.com/lib/pq"
)

// New connects to cfg.Storage.DSN, tunes the pool, checks the server is
// reachable and applies the schema.
func New(cfg *config.Config) (*sqlstore.Store, error) {
	db, err := sql.Open("postgres", cfg.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: open db: %w", err)
	}

	db.SetMaxOpenConns(cfg.Storage.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Storage.MaxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	store := sqlstore.New(db, Dialect{})
	if err := store.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres.New: %w", err)
	}

	return store, nil
}

// Dialect is the PostgreSQL flavour of sqlstore.Dialect.
type Dialect struct{}

func (Dialect) Name() string { return config.DriverPostgres }

func (Dialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (Dialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS students (
			id         UUID         PRIMARY KEY,
			name       VARCHAR(200) NOT NULL,
			email      VARCHAR(100) NOT NULL UNIQUE,
			birth_date DATE         NOT NULL,
			created_at TIMESTAMPTZ  NOT NULL,
			updated_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS ix_students_name ON students (name)`,

		`CREATE TABLE IF NOT EXISTS courses (
			id          UUID          PRIMARY KEY,
			name        VARCHAR(200)  NOT NULL,
			description VARCHAR(1000) NOT NULL,
			created_at  TIMESTAMPTZ   NOT NULL,
			updated_at  TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS ix_courses_name ON courses (name)`,

		`CREATE TABLE IF NOT EXISTS enrollments (
			id          UUID        PRIMARY KEY,
			student_id  UUID        NOT NULL REFERENCES students (id) ON DELETE RESTRICT,
			course_id   UUID        NOT NULL REFERENCES courses (id) ON DELETE RESTRICT,
			enrolled_at TIMESTAMPTZ NOT NULL,
			active      BOOLEAN     NOT NULL DEFAULT TRUE,
			created_at  TIMESTAMPTZ NOT NULL,
			updated_at  TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS ix_enrollments_student_course ON enrollments (student_id, course_id)`,
		`CREATE INDEX IF NOT EXISTS ix_enrollments_active ON enrollments (active)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_enrollments_active_pair
			ON enrollments (student_id, course_id) WHERE active`,
	}
}

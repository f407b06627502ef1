// Package sqlstore implements the storage interfaces on top of Go's
// standard database/sql package.
//
// The SQL is written once, with "?" placeholders, and a Dialect adapts it to
// the concrete database: SQLite keeps "?", PostgreSQL needs "$1, $2, ...".
// The driver packages (storage/sqlite, storage/postgres) only open the
// connection pool, provide their Dialect and hand both to New.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aanand-mishra/registration-api/internal/storage"
)

// Dialect captures what differs between database engines.
type Dialect interface {
	// Name is used in logs and error messages ("sqlite", "postgres").
	Name() string

	// Placeholder returns the bind marker for the n-th argument (1-based).
	Placeholder(n int) string

	// Schema returns the idempotent DDL statements run by Migrate.
	Schema() []string
}

// Store is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type Store struct {
	db      *sql.DB
	dialect Dialect

	students    *studentRepo
	courses     *courseRepo
	enrollments *enrollmentRepo
}

var _ storage.Storage = (*Store)(nil)

// New wraps an already opened pool. Call Migrate before serving requests.
func New(db *sql.DB, dialect Dialect) *Store {
	s := &Store{db: db, dialect: dialect}
	s.students = &studentRepo{store: s}
	s.courses = &courseRepo{store: s}
	s.enrollments = &enrollmentRepo{store: s}
	return s
}

// Migrate creates tables and indexes if they do not already exist.
// It is safe to run on every startup.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.Schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlstore.Migrate(%s): %w", s.dialect.Name(), err)
		}
	}
	return nil
}

func (s *Store) Students() storage.Students       { return s.students }
func (s *Store) Courses() storage.Courses         { return s.courses }
func (s *Store) Enrollments() storage.Enrollments { return s.enrollments }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() error { return s.db.Close() }

// DB exposes the pool, mainly for tests.
func (s *Store) DB() *sql.DB { return s.db }

// rebind swaps every "?" for the dialect's placeholder.
// None of our queries contain a literal question mark.
func (s *Store) rebind(query string) string {
	if s.dialect.Placeholder(1) == "?" {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(s.dialect.Placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// exec runs a write statement. Every failure is tagged with
// storage.ErrDatabase; a statement that touched no row yields
// storage.ErrNotFound when mustAffect is set.
func (s *Store) exec(ctx context.Context, op string, mustAffect bool, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return fmt.Errorf("%s: exec: %w: %w", op, storage.ErrDatabase, err)
	}

	if !mustAffect {
		return nil
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w: %w", op, storage.ErrDatabase, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return nil
}

// exists runs a "SELECT 1 ... LIMIT 1" style query.
func (s *Store) exists(ctx context.Context, op string, query string, args ...any) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, s.rebind(query), args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: scan: %w", op, err)
	}
	return true, nil
}

// count runs a "SELECT COUNT(*) ..." query.
func (s *Store) count(ctx context.Context, op string, query string, args ...any) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, s.rebind(query), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: count: %w", op, err)
	}
	return n, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

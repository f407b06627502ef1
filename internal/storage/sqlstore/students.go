package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/registration-api/internal/storage"
	"github.com/aanand-mishra/registration-api/internal/types"
	"github.com/google/uuid"
)

// Explicitly list columns, never SELECT *: Scan depends on the order.
const studentColumns = "s.id, s.name, s.email, s.birth_date, s.created_at, s.updated_at"

// activeEnrollmentFilter keeps the students that hold at least one active
// enrollment. EXISTS (instead of a JOIN) gives distinct students for free.
const activeEnrollmentFilter = `EXISTS (
	SELECT 1 FROM enrollments e
	WHERE e.student_id = s.id AND e.active = ?`

type studentRepo struct {
	store *Store
}

func scanStudent(row scanner) (types.Student, error) {
	var (
		st      types.Student
		updated sql.NullTime
	)

	if err := row.Scan(
		&st.ID,
		&st.Name,
		&st.Email,
		&st.BirthDate,
		&st.CreatedAt,
		&updated,
	); err != nil {
		return types.Student{}, err
	}

	if updated.Valid {
		st.UpdatedAt = &updated.Time
	}
	return st, nil
}

func (r *studentRepo) GetByID(ctx context.Context, id uuid.UUID) (types.Student, error) {
	row := r.store.db.QueryRowContext(ctx,
		r.store.rebind("SELECT "+studentColumns+" FROM students s WHERE s.id = ?"),
		id,
	)

	st, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Student{}, fmt.Errorf("GetStudentByID %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: scan: %w", err)
	}
	return st, nil
}

func (r *studentRepo) List(ctx context.Context, page types.PageQuery) (types.Page[types.Student], error) {
	return r.store.pageStudents(ctx, "ListStudents", "", nil, page)
}

func (r *studentRepo) ListEnrolled(ctx context.Context, page types.PageQuery) (types.Page[types.Student], error) {
	return r.store.pageStudents(ctx, "ListEnrolledStudents",
		activeEnrollmentFilter+")",
		[]any{true},
		page,
	)
}

func (r *studentRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.store.exists(ctx, "StudentExists",
		"SELECT 1 FROM students WHERE id = ? LIMIT 1", id)
}

func (r *studentRepo) EmailExists(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	if excludeID == nil {
		return r.store.exists(ctx, "StudentEmailExists",
			"SELECT 1 FROM students WHERE email = ? LIMIT 1", email)
	}
	return r.store.exists(ctx, "StudentEmailExists",
		"SELECT 1 FROM students WHERE email = ? AND id <> ? LIMIT 1", email, *excludeID)
}

func (r *studentRepo) Add(ctx context.Context, st types.Student) error {
	return r.store.exec(ctx, "AddStudent", false,
		`INSERT INTO students (id, name, email, birth_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		st.ID, st.Name, st.Email, st.BirthDate, st.CreatedAt, st.UpdatedAt,
	)
}

func (r *studentRepo) Update(ctx context.Context, st types.Student) error {
	return r.store.exec(ctx, "UpdateStudent", true,
		"UPDATE students SET name = ?, email = ?, birth_date = ?, updated_at = ? WHERE id = ?",
		st.Name, st.Email, st.BirthDate, st.UpdatedAt, st.ID,
	)
}

// Delete removes the row. Students with enrollment rows (active or not)
// are protected by the foreign key and fail with storage.ErrDatabase.
func (r *studentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.store.exec(ctx, "DeleteStudent", true,
		"DELETE FROM students WHERE id = ?", id)
}

// pageStudents counts and fetches one page of students matching an optional
// WHERE clause. It backs the plain list, the enrolled list and the
// students-of-a-course list.
func (s *Store) pageStudents(
	ctx context.Context,
	op string,
	where string,
	args []any,
	page types.PageQuery,
) (types.Page[types.Student], error) {
	filter := ""
	if where != "" {
		filter = " WHERE " + where
	}

	total, err := s.count(ctx, op, "SELECT COUNT(*) FROM students s"+filter, args...)
	if err != nil {
		return types.Page[types.Student]{}, err
	}

	query := "SELECT " + studentColumns + " FROM students s" + filter +
		" ORDER BY s.name, s.id LIMIT ? OFFSET ?"
	pageArgs := append(append([]any{}, args...), page.PageSize, page.Offset())

	rows, err := s.db.QueryContext(ctx, s.rebind(query), pageArgs...)
	if err != nil {
		return types.Page[types.Student]{}, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close()

	students := make([]types.Student, 0)
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return types.Page[types.Student]{}, fmt.Errorf("%s: scan row: %w", op, err)
		}
		students = append(students, st)
	}
	if err := rows.Err(); err != nil {
		return types.Page[types.Student]{}, fmt.Errorf("%s: rows iteration: %w", op, err)
	}

	return types.NewPage(students, page, total), nil
}

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

// Enrollment reads always join the owning student and course so the
// response can show their names.
const enrollmentSelect = `SELECT e.id, e.student_id, e.course_id, e.enrolled_at, e.active,
	e.created_at, e.updated_at, s.name, c.name
FROM enrollments e
JOIN students s ON s.id = e.student_id
JOIN courses c ON c.id = e.course_id`

type enrollmentRepo struct {
	store *Store
}

func scanEnrollment(row scanner) (types.Enrollment, error) {
	var (
		e       types.Enrollment
		updated sql.NullTime
	)

	if err := row.Scan(
		&e.ID,
		&e.StudentID,
		&e.CourseID,
		&e.EnrolledAt,
		&e.Active,
		&e.CreatedAt,
		&updated,
		&e.StudentName,
		&e.CourseName,
	); err != nil {
		return types.Enrollment{}, err
	}

	if updated.Valid {
		e.UpdatedAt = &updated.Time
	}
	return e, nil
}

func (r *enrollmentRepo) getOne(ctx context.Context, op string, where string, args ...any) (types.Enrollment, error) {
	row := r.store.db.QueryRowContext(ctx, r.store.rebind(enrollmentSelect+" WHERE "+where), args...)

	e, err := scanEnrollment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Enrollment{}, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if err != nil {
		return types.Enrollment{}, fmt.Errorf("%s: scan: %w", op, err)
	}
	return e, nil
}

func (r *enrollmentRepo) GetByID(ctx context.Context, id uuid.UUID) (types.Enrollment, error) {
	return r.getOne(ctx, "GetEnrollmentByID", "e.id = ?", id)
}

func (r *enrollmentRepo) GetActive(ctx context.Context, studentID, courseID uuid.UUID) (types.Enrollment, error) {
	return r.getOne(ctx, "GetActiveEnrollment",
		"e.student_id = ? AND e.course_id = ? AND e.active = ?",
		studentID, courseID, true,
	)
}

func (r *enrollmentRepo) IsEnrolled(ctx context.Context, studentID, courseID uuid.UUID) (bool, error) {
	return r.store.exists(ctx, "IsEnrolled",
		"SELECT 1 FROM enrollments WHERE student_id = ? AND course_id = ? AND active = ? LIMIT 1",
		studentID, courseID, true,
	)
}

func (r *enrollmentRepo) Add(ctx context.Context, e types.Enrollment) error {
	return r.store.exec(ctx, "AddEnrollment", false,
		`INSERT INTO enrollments (id, student_id, course_id, enrolled_at, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.StudentID, e.CourseID, e.EnrolledAt, e.Active, e.CreatedAt, e.UpdatedAt,
	)
}

func (r *enrollmentRepo) Update(ctx context.Context, e types.Enrollment) error {
	return r.store.exec(ctx, "UpdateEnrollment", true,
		"UPDATE enrollments SET active = ?, updated_at = ? WHERE id = ?",
		e.Active, e.UpdatedAt, e.ID,
	)
}

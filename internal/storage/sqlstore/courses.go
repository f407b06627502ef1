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

const courseColumns = "id, name, description, created_at, updated_at"

type courseRepo struct {
	store *Store
}

func scanCourse(row scanner) (types.Course, error) {
	var (
		c       types.Course
		updated sql.NullTime
	)

	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &updated); err != nil {
		return types.Course{}, err
	}

	if updated.Valid {
		c.UpdatedAt = &updated.Time
	}
	return c, nil
}

func (r *courseRepo) GetByID(ctx context.Context, id uuid.UUID) (types.Course, error) {
	row := r.store.db.QueryRowContext(ctx,
		r.store.rebind("SELECT "+courseColumns+" FROM courses WHERE id = ?"),
		id,
	)

	c, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Course{}, fmt.Errorf("GetCourseByID %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return types.Course{}, fmt.Errorf("GetCourseByID: scan: %w", err)
	}
	return c, nil
}

func (r *courseRepo) List(ctx context.Context, page types.PageQuery) (types.Page[types.Course], error) {
	total, err := r.store.count(ctx, "ListCourses", "SELECT COUNT(*) FROM courses")
	if err != nil {
		return types.Page[types.Course]{}, err
	}

	rows, err := r.store.db.QueryContext(ctx,
		r.store.rebind("SELECT "+courseColumns+" FROM courses ORDER BY name, id LIMIT ? OFFSET ?"),
		page.PageSize, page.Offset(),
	)
	if err != nil {
		return types.Page[types.Course]{}, fmt.Errorf("ListCourses: query: %w", err)
	}
	defer rows.Close()

	courses := make([]types.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return types.Page[types.Course]{}, fmt.Errorf("ListCourses: scan row: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return types.Page[types.Course]{}, fmt.Errorf("ListCourses: rows iteration: %w", err)
	}

	return types.NewPage(courses, page, total), nil
}

func (r *courseRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.store.exists(ctx, "CourseExists",
		"SELECT 1 FROM courses WHERE id = ? LIMIT 1", id)
}

func (r *courseRepo) ListStudents(ctx context.Context, courseID uuid.UUID, page types.PageQuery) (types.Page[types.Student], error) {
	return r.store.pageStudents(ctx, "ListCourseStudents",
		activeEnrollmentFilter+" AND e.course_id = ?)",
		[]any{true, courseID},
		page,
	)
}

func (r *courseRepo) Add(ctx context.Context, c types.Course) error {
	return r.store.exec(ctx, "AddCourse", false,
		"INSERT INTO courses (id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		c.ID, c.Name, c.Description, c.CreatedAt, c.UpdatedAt,
	)
}

func (r *courseRepo) Update(ctx context.Context, c types.Course) error {
	return r.store.exec(ctx, "UpdateCourse", true,
		"UPDATE courses SET name = ?, description = ?, updated_at = ? WHERE id = ?",
		c.Name, c.Description, c.UpdatedAt, c.ID,
	)
}

func (r *courseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.store.exec(ctx, "DeleteCourse", true,
		"DELETE FROM courses WHERE id = ?", id)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/schoolhub/schoolhub/internal/school"
	"github.com/schoolhub/schoolhub/internal/school/policy"
	"github.com/schoolhub/schoolhub/internal/store"
	"github.com/schoolhub/schoolhub/pkg/errutil"
)

const courseColumns = `id, name, code, description, department_id, credits, is_deleted, created_at, updated_at`

var courseConflicts = map[string]*errutil.Error{
	store.ConstraintCoursesCode: policy.ErrCourseCodeTaken,
}

// CourseRepository implements school.CourseRepository.
type CourseRepository struct {
	db store.DB
}

// NewCourseRepository creates a CourseRepository.
func NewCourseRepository(db store.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Create(ctx context.Context, c *school.Course) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO courses (name, code, description, department_id, credits)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		c.Name, c.Code, c.Description, c.DepartmentID, c.Credits,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if conflict, ok := store.ConflictFor(err, courseConflicts); ok {
			return conflict
		}
		if store.IsForeignKeyViolation(err) {
			return policy.ErrDepartmentNotFound
		}
		return oops.Code("COURSE_CREATE_FAILED").With("code", c.Code).Wrap(err)
	}
	return nil
}

func (r *CourseRepository) Get(ctx context.Context, id int64) (*school.Course, error) {
	return getOne(ctx, r.db, scanCourse, "COURSE_NOT_FOUND", "COURSE_GET_FAILED", id,
		`SELECT `+courseColumns+` FROM courses WHERE id = $1 AND NOT is_deleted`, id)
}

func (r *CourseRepository) List(ctx context.Context) ([]*school.Course, error) {
	return queryAll(ctx, r.db, scanCourse, "COURSE_LIST_FAILED", "list courses",
		`SELECT `+courseColumns+` FROM courses WHERE NOT is_deleted ORDER BY name, id`)
}

func (r *CourseRepository) CodeTaken(ctx context.Context, departmentID int64, code string, excludeID int64) (bool, error) {
	return queryExists(ctx, r.db, "COURSE_LOOKUP_FAILED", "course code taken",
		`SELECT 1 FROM courses WHERE department_id = $1 AND LOWER(code) = LOWER($2) AND id <> $3 AND NOT is_deleted`,
		departmentID, code, excludeID)
}

func (r *CourseRepository) Update(ctx context.Context, c *school.Course) error {
	now := time.Now().UTC()
	result, err := r.db.Exec(ctx, `
		UPDATE courses SET name = $2, code = $3, description = $4, department_id = $5, credits = $6, updated_at = $7
		WHERE id = $1 AND NOT is_deleted`,
		c.ID, c.Name, c.Code, c.Description, c.DepartmentID, c.Credits, now,
	)
	if err != nil {
		if conflict, ok := store.ConflictFor(err, courseConflicts); ok {
			return conflict
		}
		return oops.Code("COURSE_UPDATE_FAILED").With("id", c.ID).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("COURSE_NOT_FOUND").With("id", c.ID).Wrap(school.ErrNotFound)
	}
	c.UpdatedAt = &now
	return nil
}

func (r *CourseRepository) SoftDelete(ctx context.Context, id int64) error {
	return execOne(ctx, r.db, "COURSE_NOT_FOUND", "COURSE_DELETE_FAILED", "soft delete course", id,
		`UPDATE courses SET is_deleted = true, updated_at = $2 WHERE id = $1 AND NOT is_deleted`,
		id, time.Now().UTC())
}

func scanCourse(row pgx.Row) (*school.Course, error) {
	var c school.Course
	if err := row.Scan(&c.ID, &c.Name, &c.Code, &c.Description, &c.DepartmentID, &c.Credits, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err //nolint:wrapcheck // callers add lookup context
	}
	return &c, nil
}

var _ school.CourseRepository = (*CourseRepository)(nil)

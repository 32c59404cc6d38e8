// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/schoolhub/schoolhub/internal/school"
	"github.com/schoolhub/schoolhub/internal/store"
)

const classColumns = `id, name, course_id, teacher_id, semester, start_date, end_date, is_active, is_deleted, created_at, updated_at`

// ClassRepository implements school.ClassRepository.
type ClassRepository struct {
	db store.DB
}

// NewClassRepository creates a ClassRepository.
func NewClassRepository(db store.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// Create stores c and fills in ID and CreatedAt. IsActive is written as given.
func (r *ClassRepository) Create(ctx context.Context, c *school.Class) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO classes (name, course_id, teacher_id, semester, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		c.Name, c.CourseID, c.TeacherID, c.Semester, c.StartDate, c.EndDate, c.IsActive,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return oops.Code("CLASS_CREATE_FAILED").
			With("course_id", c.CourseID).
			With("teacher_id", c.TeacherID).
			Wrap(err)
	}
	return nil
}

func (r *ClassRepository) Get(ctx context.Context, id int64) (*school.Class, error) {
	return getOne(ctx, r.db, scanClass, "CLASS_NOT_FOUND", "CLASS_GET_FAILED", id,
		`SELECT `+classColumns+` FROM classes WHERE id = $1 AND NOT is_deleted`, id)
}

func (r *ClassRepository) List(ctx context.Context) ([]*school.Class, error) {
	return queryAll(ctx, r.db, scanClass, "CLASS_LIST_FAILED", "list classes",
		`SELECT `+classColumns+` FROM classes WHERE NOT is_deleted ORDER BY start_date DESC, id`)
}

func (r *ClassRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]*school.Class, error) {
	return queryAll(ctx, r.db, scanClass, "CLASS_LIST_FAILED", "list classes by teacher",
		`SELECT `+classColumns+` FROM classes WHERE teacher_id = $1 AND NOT is_deleted ORDER BY start_date DESC, id`, teacherID)
}

// Update writes every mutable column, including IsActive.
func (r *ClassRepository) Update(ctx context.Context, c *school.Class) error {
	now := time.Now().UTC()
	err := execOne(ctx, r.db, "CLASS_NOT_FOUND", "CLASS_UPDATE_FAILED", "update class", c.ID, `
		UPDATE classes SET name = $2, course_id = $3, semester = $4, start_date = $5, end_date = $6,
			is_active = $7, updated_at = $8
		WHERE id = $1 AND NOT is_deleted`,
		c.ID, c.Name, c.CourseID, c.Semester, c.StartDate, c.EndDate, c.IsActive, now,
	)
	if err != nil {
		return err
	}
	c.UpdatedAt = &now
	return nil
}

func scanClass(row pgx.Row) (*school.Class, error) {
	var c school.Class
	err := row.Scan(&c.ID, &c.Name, &c.CourseID, &c.TeacherID, &c.Semester, &c.StartDate, &c.EndDate,
		&c.IsActive, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers add lookup context
	}
	return &c, nil
}

var _ school.ClassRepository = (*ClassRepository)(nil)

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/schoolhub/schoolhub/internal/school"
	"github.com/schoolhub/schoolhub/internal/store"
)

const assignmentColumns = `id, class_id, title, description, due_date, created_by_teacher_id, created_at`

// AssignmentRepository implements school.AssignmentRepository.
type AssignmentRepository struct {
	db store.DB
}

// NewAssignmentRepository creates an AssignmentRepository.
func NewAssignmentRepository(db store.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) Create(ctx context.Context, a *school.Assignment) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO assignments (class_id, title, description, due_date, created_by_teacher_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		a.ClassID, a.Title, a.Description, a.DueDate, a.CreatedByTeacherID,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return oops.Code("ASSIGNMENT_CREATE_FAILED").With("class_id", a.ClassID).Wrap(err)
	}
	return nil
}

func (r *AssignmentRepository) Get(ctx context.Context, id int64) (*school.Assignment, error) {
	return getOne(ctx, r.db, scanAssignment, "ASSIGNMENT_NOT_FOUND", "ASSIGNMENT_GET_FAILED", id,
		`SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`, id)
}

func (r *AssignmentRepository) ListByClass(ctx context.Context, classID int64) ([]*school.Assignment, error) {
	return queryAll(ctx, r.db, scanAssignment, "ASSIGNMENT_LIST_FAILED", "list assignments by class",
		`SELECT `+assignmentColumns+` FROM assignments WHERE class_id = $1 ORDER BY due_date, id`, classID)
}

func scanAssignment(row pgx.Row) (*school.Assignment, error) {
	var a school.Assignment
	if err := row.Scan(&a.ID, &a.ClassID, &a.Title, &a.Description, &a.DueDate, &a.CreatedByTeacherID, &a.CreatedAt); err != nil {
		return nil, err //nolint:wrapcheck // callers add lookup context
	}
	return &a, nil
}

var _ school.AssignmentRepository = (*AssignmentRepository)(nil)

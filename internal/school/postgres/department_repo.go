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

const departmentColumns = `id, name, description, head_of_department_id, is_deleted, created_at, updated_at`

var departmentConflicts = map[string]*errutil.Error{
	store.ConstraintDepartmentsName: policy.ErrDepartmentNameTaken,
}

// DepartmentRepository implements school.DepartmentRepository.
type DepartmentRepository struct {
	db store.DB
}

// NewDepartmentRepository creates a DepartmentRepository.
func NewDepartmentRepository(db store.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// Create stores d and fills in ID and CreatedAt.
func (r *DepartmentRepository) Create(ctx context.Context, d *school.Department) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO departments (name, description, head_of_department_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		d.Name, d.Description, d.HeadOfDepartmentID,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		if conflict, ok := store.ConflictFor(err, departmentConflicts); ok {
			return conflict
		}
		return oops.Code("DEPARTMENT_CREATE_FAILED").With("name", d.Name).Wrap(err)
	}
	return nil
}

func (r *DepartmentRepository) Get(ctx context.Context, id int64) (*school.Department, error) {
	return getOne(ctx, r.db, scanDepartment, "DEPARTMENT_NOT_FOUND", "DEPARTMENT_GET_FAILED", id,
		`SELECT `+departmentColumns+` FROM departments WHERE id = $1 AND NOT is_deleted`, id)
}

func (r *DepartmentRepository) List(ctx context.Context) ([]*school.Department, error) {
	return queryAll(ctx, r.db, scanDepartment, "DEPARTMENT_LIST_FAILED", "list departments",
		`SELECT `+departmentColumns+` FROM departments WHERE NOT is_deleted ORDER BY name`)
}

func (r *DepartmentRepository) NameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	return queryExists(ctx, r.db, "DEPARTMENT_LOOKUP_FAILED", "department name taken",
		`SELECT 1 FROM departments WHERE LOWER(name) = LOWER($1) AND id <> $2 AND NOT is_deleted`, name, excludeID)
}

// Update writes name, description and head.
func (r *DepartmentRepository) Update(ctx context.Context, d *school.Department) error {
	now := time.Now().UTC()
	result, err := r.db.Exec(ctx, `
		UPDATE departments SET name = $2, description = $3, head_of_department_id = $4, updated_at = $5
		WHERE id = $1 AND NOT is_deleted`,
		d.ID, d.Name, d.Description, d.HeadOfDepartmentID, now,
	)
	if err != nil {
		if conflict, ok := store.ConflictFor(err, departmentConflicts); ok {
			return conflict
		}
		return oops.Code("DEPARTMENT_UPDATE_FAILED").With("id", d.ID).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("DEPARTMENT_NOT_FOUND").With("id", d.ID).Wrap(school.ErrNotFound)
	}
	d.UpdatedAt = &now
	return nil
}

func (r *DepartmentRepository) SoftDelete(ctx context.Context, id int64) error {
	return execOne(ctx, r.db, "DEPARTMENT_NOT_FOUND", "DEPARTMENT_DELETE_FAILED", "soft delete department", id,
		`UPDATE departments SET is_deleted = true, updated_at = $2 WHERE id = $1 AND NOT is_deleted`,
		id, time.Now().UTC())
}

func scanDepartment(row pgx.Row) (*school.Department, error) {
	var d school.Department
	if err := row.Scan(&d.ID, &d.Name, &d.Description, &d.HeadOfDepartmentID, &d.IsDeleted, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err //nolint:wrapcheck // callers add lookup context
	}
	return &d, nil
}

var _ school.DepartmentRepository = (*DepartmentRepository)(nil)

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/schoolhub/schoolhub/internal/school"
	"github.com/schoolhub/schoolhub/internal/school/policy"
	"github.com/schoolhub/schoolhub/internal/store"
	"github.com/schoolhub/schoolhub/pkg/errutil"
)

const enrollmentColumns = `id, student_id, class_id, enrollment_date`

var enrollmentConflicts = map[string]*errutil.Error{
	store.ConstraintEnrollmentUnique: policy.ErrAlreadyEnrolled,
}

// EnrollmentRepository implements school.EnrollmentRepository.
type EnrollmentRepository struct {
	db store.DB
}

// NewEnrollmentRepository creates an EnrollmentRepository.
func NewEnrollmentRepository(db store.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Create stores e and fills in ID and EnrollmentDate.
func (r *EnrollmentRepository) Create(ctx context.Context, e *school.Enrollment) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO class_enrollments (student_id, class_id)
		VALUES ($1, $2)
		RETURNING id, enrollment_date`,
		e.StudentID, e.ClassID,
	).Scan(&e.ID, &e.EnrollmentDate)
	if err != nil {
		if conflict, ok := store.ConflictFor(err, enrollmentConflicts); ok {
			return conflict
		}
		return oops.Code("ENROLLMENT_CREATE_FAILED").
			With("student_id", e.StudentID).
			With("class_id", e.ClassID).
			Wrap(err)
	}
	return nil
}

func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, classID int64) (bool, error) {
	return queryExists(ctx, r.db, "ENROLLMENT_LOOKUP_FAILED", "enrollment exists",
		`SELECT 1 FROM class_enrollments WHERE student_id = $1 AND class_id = $2`, studentID, classID)
}

func (r *EnrollmentRepository) ListByClass(ctx context.Context, classID int64) ([]*school.Enrollment, error) {
	return queryAll(ctx, r.db, scanEnrollment, "ENROLLMENT_LIST_FAILED", "list enrollments by class",
		`SELECT `+enrollmentColumns+` FROM class_enrollments WHERE class_id = $1 ORDER BY enrollment_date, id`, classID)
}

func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID int64) ([]*school.Enrollment, error) {
	return queryAll(ctx, r.db, scanEnrollment, "ENROLLMENT_LIST_FAILED", "list enrollments by student",
		`SELECT `+enrollmentColumns+` FROM class_enrollments WHERE student_id = $1 ORDER BY enrollment_date, id`, studentID)
}

func scanEnrollment(row pgx.Row) (*school.Enrollment, error) {
	var e school.Enrollment
	if err := row.Scan(&e.ID, &e.StudentID, &e.ClassID, &e.EnrollmentDate); err != nil {
		return nil, err //nolint:wrapcheck // callers add lookup context
	}
	return &e, nil
}

var _ school.EnrollmentRepository = (*EnrollmentRepository)(nil)

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

const submissionColumns = `id, assignment_id, student_id, submitted_date, file_url, original_file_name,
	stored_file_name, grade, remarks, graded_by_teacher_id, graded_date`

var submissionConflicts = map[string]*errutil.Error{
	store.ConstraintSubmissionUnique: policy.ErrAlreadySubmitted,
}

// SubmissionRepository implements school.SubmissionRepository.
type SubmissionRepository struct {
	db store.DB
}

// NewSubmissionRepository creates a SubmissionRepository.
func NewSubmissionRepository(db store.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create stores s and fills in ID and SubmittedDate.
func (r *SubmissionRepository) Create(ctx context.Context, s *school.Submission) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO submissions (assignment_id, student_id, file_url, original_file_name, stored_file_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, submitted_date`,
		s.AssignmentID, s.StudentID, s.FileURL, s.OriginalFileName, s.StoredFileName,
	).Scan(&s.ID, &s.SubmittedDate)
	if err != nil {
		if conflict, ok := store.ConflictFor(err, submissionConflicts); ok {
			return conflict
		}
		return oops.Code("SUBMISSION_CREATE_FAILED").
			With("assignment_id", s.AssignmentID).
			With("student_id", s.StudentID).
			Wrap(err)
	}
	return nil
}

func (r *SubmissionRepository) Get(ctx context.Context, id int64) (*school.Submission, error) {
	return getOne(ctx, r.db, scanSubmission, "SUBMISSION_NOT_FOUND", "SUBMISSION_GET_FAILED", id,
		`SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id)
}

func (r *SubmissionRepository) Find(ctx context.Context, assignmentID, studentID int64) (*school.Submission, error) {
	return getOne(ctx, r.db, scanSubmission, "SUBMISSION_NOT_FOUND", "SUBMISSION_GET_FAILED", assignmentID,
		`SELECT `+submissionColumns+` FROM submissions WHERE assignment_id = $1 AND student_id = $2`,
		assignmentID, studentID)
}

func (r *SubmissionRepository) ListByAssignment(ctx context.Context, assignmentID int64) ([]*school.Submission, error) {
	return queryAll(ctx, r.db, scanSubmission, "SUBMISSION_LIST_FAILED", "list submissions by assignment",
		`SELECT `+submissionColumns+` FROM submissions WHERE assignment_id = $1 ORDER BY submitted_date, id`, assignmentID)
}

func (r *SubmissionRepository) ListByStudent(ctx context.Context, studentID int64) ([]*school.Submission, error) {
	return queryAll(ctx, r.db, scanSubmission, "SUBMISSION_LIST_FAILED", "list submissions by student",
		`SELECT `+submissionColumns+` FROM submissions WHERE student_id = $1 ORDER BY submitted_date DESC, id`, studentID)
}

// Grade writes the grade fields only while the row is still ungraded.
func (r *SubmissionRepository) Grade(ctx context.Context, s *school.Submission) error {
	result, err := r.db.Exec(ctx, `
		UPDATE submissions SET grade = $2, remarks = $3, graded_by_teacher_id = $4, graded_date = $5
		WHERE id = $1 AND grade IS NULL AND graded_by_teacher_id IS NULL`,
		s.ID, s.Grade, s.Remarks, s.GradedByTeacherID, s.GradedDate,
	)
	if err != nil {
		return oops.Code("SUBMISSION_GRADE_FAILED").With("id", s.ID).Wrap(err)
	}
	if result.RowsAffected() == 1 {
		return nil
	}

	exists, err := queryExists(ctx, r.db, "SUBMISSION_LOOKUP_FAILED", "submission exists",
		`SELECT 1 FROM submissions WHERE id = $1`, s.ID)
	if err != nil {
		return err
	}
	if !exists {
		return oops.Code("SUBMISSION_NOT_FOUND").With("id", s.ID).Wrap(school.ErrNotFound)
	}
	return policy.ErrAlreadyGraded
}

func scanSubmission(row pgx.Row) (*school.Submission, error) {
	var s school.Submission
	err := row.Scan(&s.ID, &s.AssignmentID, &s.StudentID, &s.SubmittedDate, &s.FileURL, &s.OriginalFileName,
		&s.StoredFileName, &s.Grade, &s.Remarks, &s.GradedByTeacherID, &s.GradedDate)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers add lookup context
	}
	return &s, nil
}

var _ school.SubmissionRepository = (*SubmissionRepository)(nil)

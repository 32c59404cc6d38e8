// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/schoolhub/schoolhub/internal/clock"
	"github.com/schoolhub/schoolhub/internal/school"
	"github.com/schoolhub/schoolhub/internal/school/policy"
	"github.com/schoolhub/schoolhub/internal/store"
	"github.com/schoolhub/schoolhub/pkg/errutil"
)

const attendanceColumns = `id, class_id, student_id, date, status, marked_by_teacher_id, created_at`

var attendanceConflicts = map[string]*errutil.Error{
	store.ConstraintAttendanceUnique: policy.ErrAttendanceExists,
}

// AttendanceRepository implements school.AttendanceRepository. Dates are
// stored in a DATE column and truncated to the UTC day before writes and
// lookups.
type AttendanceRepository struct {
	db store.DB
}

// NewAttendanceRepository creates an AttendanceRepository.
func NewAttendanceRepository(db store.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) Create(ctx context.Context, m *school.AttendanceMark) error {
	m.Date = clock.StartOfDay(m.Date)
	err := r.db.QueryRow(ctx, `
		INSERT INTO attendance (class_id, student_id, date, status, marked_by_teacher_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		m.ClassID, m.StudentID, m.Date, string(m.Status), m.MarkedByTeacherID,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		if conflict, ok := store.ConflictFor(err, attendanceConflicts); ok {
			return conflict
		}
		return oops.Code("ATTENDANCE_CREATE_FAILED").
			With("class_id", m.ClassID).
			With("student_id", m.StudentID).
			Wrap(err)
	}
	return nil
}

func (r *AttendanceRepository) Exists(ctx context.Context, classID, studentID int64, date time.Time) (bool, error) {
	return queryExists(ctx, r.db, "ATTENDANCE_LOOKUP_FAILED", "attendance exists",
		`SELECT 1 FROM attendance WHERE class_id = $1 AND student_id = $2 AND date = $3`,
		classID, studentID, clock.StartOfDay(date))
}

func (r *AttendanceRepository) ListByClass(ctx context.Context, classID int64) ([]*school.AttendanceMark, error) {
	return queryAll(ctx, r.db, scanAttendance, "ATTENDANCE_LIST_FAILED", "list attendance by class",
		`SELECT `+attendanceColumns+` FROM attendance WHERE class_id = $1 ORDER BY date DESC, student_id`, classID)
}

func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentID int64) ([]*school.AttendanceMark, error) {
	return queryAll(ctx, r.db, scanAttendance, "ATTENDANCE_LIST_FAILED", "list attendance by student",
		`SELECT `+attendanceColumns+` FROM attendance WHERE student_id = $1 ORDER BY date DESC, class_id`, studentID)
}

func scanAttendance(row pgx.Row) (*school.AttendanceMark, error) {
	var (
		m      school.AttendanceMark
		status string
	)
	if err := row.Scan(&m.ID, &m.ClassID, &m.StudentID, &m.Date, &status, &m.MarkedByTeacherID, &m.CreatedAt); err != nil {
		return nil, err //nolint:wrapcheck // callers add lookup context
	}
	m.Status = school.AttendanceStatus(status)
	return &m, nil
}

var _ school.AttendanceRepository = (*AttendanceRepository)(nil)

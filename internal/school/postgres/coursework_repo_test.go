// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/internal/school"
	"github.com/schoolhub/schoolhub/pkg/errutil"
)

func TestEnrollmentRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns id", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`INSERT INTO class_enrollments`).
			WithArgs(int64(20), int64(5)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "enrollment_date"}).AddRow(int64(1), created))

		e := &school.Enrollment{StudentID: 20, ClassID: 5}
		require.NoError(t, NewEnrollmentRepository(mock).Create(ctx, e))
		assert.Equal(t, int64(1), e.ID)
		assert.Equal(t, created, e.EnrollmentDate)
	})

	t.Run("unique violation is the authoritative conflict", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`INSERT INTO class_enrollments`).
			WithArgs(int64(20), int64(5)).
			WillReturnError(uniqueViolation("uq_class_enrollments_student_class"))

		err := NewEnrollmentRepository(mock).Create(ctx, &school.Enrollment{StudentID: 20, ClassID: 5})
		errutil.AssertErrorKind(t, err, errutil.KindConflict)
		errutil.AssertErrorCode(t, err, "ENROLLMENT_EXISTS")
	})

	t.Run("other constraint is not a conflict", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`INSERT INTO class_enrollments`).
			WithArgs(int64(20), int64(5)).
			WillReturnError(uniqueViolation("some_other_index"))

		err := NewEnrollmentRepository(mock).Create(ctx, &school.Enrollment{StudentID: 20, ClassID: 5})
		errutil.AssertErrorCode(t, err, "ENROLLMENT_CREATE_FAILED")
	})
}

func TestAttendanceRepository_TruncatesDates(t *testing.T) {
	ctx := context.Background()
	afternoon := time.Date(2026, 3, 10, 15, 45, 0, 0, time.UTC)
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("create", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`INSERT INTO attendance`).
			WithArgs(int64(5), int64(20), day, "Late", int64(10)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(9), created))

		m := &school.AttendanceMark{ClassID: 5, StudentID: 20, Date: afternoon, Status: school.StatusLate, MarkedByTeacherID: 10}
		require.NoError(t, NewAttendanceRepository(mock).Create(ctx, m))
		assert.Equal(t, day, m.Date)
	})

	t.Run("exists", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(int64(5), int64(20), day).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		ok, err := NewAttendanceRepository(mock).Exists(ctx, 5, 20, afternoon)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("duplicate day", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`INSERT INTO attendance`).
			WithArgs(int64(5), int64(20), day, "Present", int64(10)).
			WillReturnError(uniqueViolation("uq_attendance_class_student_date"))

		m := &school.AttendanceMark{ClassID: 5, StudentID: 20, Date: afternoon, Status: school.StatusPresent, MarkedByTeacherID: 10}
		err := NewAttendanceRepository(mock).Create(ctx, m)
		errutil.AssertErrorCode(t, err, "ATTENDANCE_EXISTS")
	})
}

func TestSubmissionRepository_Grade(t *testing.T) {
	ctx := context.Background()
	grade := 91.5
	teacherID := int64(10)
	graded := created.Add(time.Hour)
	s := &school.Submission{ID: 70, Grade: &grade, GradedByTeacherID: &teacherID, GradedDate: &graded}

	t.Run("ungraded row is written", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`UPDATE submissions SET grade`).
			WithArgs(int64(70), &grade, pgxmock.AnyArg(), &teacherID, &graded).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, NewSubmissionRepository(mock).Grade(ctx, s))
	})

	t.Run("graded row is a conflict", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`UPDATE submissions SET grade`).
			WithArgs(int64(70), &grade, pgxmock.AnyArg(), &teacherID, &graded).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(int64(70)).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		err := NewSubmissionRepository(mock).Grade(ctx, s)
		errutil.AssertErrorKind(t, err, errutil.KindConflict)
		errutil.AssertErrorCode(t, err, "SUBMISSION_ALREADY_GRADED")
	})

	t.Run("missing row", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`UPDATE submissions SET grade`).
			WithArgs(int64(70), &grade, pgxmock.AnyArg(), &teacherID, &graded).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(int64(70)).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		err := NewSubmissionRepository(mock).Grade(ctx, s)
		assert.ErrorIs(t, err, school.ErrNotFound)
	})
}

func TestSubmissionRepository_Create(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO submissions`).
		WithArgs(int64(40), int64(20), pgxmock.AnyArg(), "essay.pdf", "stored.pdf").
		WillReturnError(uniqueViolation("uq_submissions_assignment_student"))

	s := &school.Submission{AssignmentID: 40, StudentID: 20, OriginalFileName: "essay.pdf", StoredFileName: "stored.pdf"}
	err := NewSubmissionRepository(mock).Create(context.Background(), s)
	errutil.AssertErrorCode(t, err, "SUBMISSION_EXISTS")
}

func TestNotificationRepository_CreateBatch(t *testing.T) {
	ctx := context.Background()
	sam := int64(20)

	t.Run("one statement for every row", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`(?s)INSERT INTO notifications.*FROM unnest`).
			WithArgs(
				[]string{"Quiz", "Quiz"},
				[]string{"Friday", "Friday"},
				[]string{"Student", "Student"},
				[]*int64{&sam, nil},
				[]int64{10, 10},
			).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).
				AddRow(int64(100), created).
				AddRow(int64(101), created))

		ns := []*school.Notification{
			{Title: "Quiz", Message: "Friday", RecipientRole: auth.RoleStudent, RecipientID: &sam, CreatedByTeacherID: 10},
			{Title: "Quiz", Message: "Friday", RecipientRole: auth.RoleStudent, CreatedByTeacherID: 10},
		}
		require.NoError(t, NewNotificationRepository(mock).CreateBatch(ctx, ns))
		assert.Equal(t, int64(100), ns[0].ID)
		assert.Equal(t, int64(101), ns[1].ID)
		assert.Equal(t, created, ns[1].CreatedAt)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		mock := newMock(t)
		require.NoError(t, NewNotificationRepository(mock).CreateBatch(ctx, nil))
	})
}

func TestNotificationRepository_ListForStudent(t *testing.T) {
	mock := newMock(t)
	sam := int64(20)
	cols := []string{"id", "title", "message", "recipient_role", "recipient_id", "created_by_teacher_id", "is_read", "created_at"}
	mock.ExpectQuery(`recipient_id = \$1 OR \(recipient_id IS NULL AND recipient_role = \$2\)`).
		WithArgs(int64(20), "Student").
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(int64(2), "Broadcast", "All", "Student", (*int64)(nil), int64(10), false, created).
			AddRow(int64(1), "Direct", "Sam", "Student", &sam, int64(10), true, created))

	ns, err := NewNotificationRepository(mock).ListForStudent(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, ns, 2)
	assert.Nil(t, ns[0].RecipientID)
	assert.Equal(t, auth.RoleStudent, ns[1].RecipientRole)
	assert.True(t, ns[1].IsRead)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package store

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/schoolhub/schoolhub/pkg/errutil"
)

// Unique constraint names declared by the migrations.
const (
	ConstraintUsersEmail         = "uq_users_email"
	ConstraintDepartmentsName    = "uq_departments_name"
	ConstraintCoursesCode        = "uq_courses_department_code"
	ConstraintEnrollmentUnique   = "uq_class_enrollments_student_class"
	ConstraintAttendanceUnique   = "uq_attendance_class_student_date"
	ConstraintSubmissionUnique   = "uq_submissions_assignment_student"
	ConstraintRefreshSessionsKey = "refresh_sessions_pkey"
)

// UniqueViolation reports whether err is a PostgreSQL unique violation and
// returns the violated constraint name.
func UniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// IsForeignKeyViolation reports whether err is a PostgreSQL foreign key violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}

// ConflictFor maps a unique violation on one of the named constraints to the
// given Conflict error. Other errors are returned unchanged with ok=false.
func ConflictFor(err error, conflicts map[string]*errutil.Error) (*errutil.Error, bool) {
	name, ok := UniqueViolation(err)
	if !ok {
		return nil, false
	}
	conflict, known := conflicts[name]
	return conflict, known
}

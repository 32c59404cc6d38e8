// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package school

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is wrapped by repositories when a row is absent or soft-deleted.
var ErrNotFound = errors.New("not found")

// DepartmentRepository persists departments. Reads skip soft-deleted rows.
type DepartmentRepository interface {
	Create(ctx context.Context, d *Department) error
	Get(ctx context.Context, id int64) (*Department, error)
	List(ctx context.Context) ([]*Department, error)
	// NameTaken reports whether another live department uses name
	// (case-insensitive). excludeID is ignored when zero.
	NameTaken(ctx context.Context, name string, excludeID int64) (bool, error)
	Update(ctx context.Context, d *Department) error
	SoftDelete(ctx context.Context, id int64) error
}

// CourseRepository persists courses. Reads skip soft-deleted rows.
type CourseRepository interface {
	Create(ctx context.Context, c *Course) error
	Get(ctx context.Context, id int64) (*Course, error)
	List(ctx context.Context) ([]*Course, error)
	// CodeTaken reports whether another live course in departmentID uses
	// code (case-insensitive). excludeID is ignored when zero.
	CodeTaken(ctx context.Context, departmentID int64, code string, excludeID int64) (bool, error)
	Update(ctx context.Context, c *Course) error
	SoftDelete(ctx context.Context, id int64) error
}

// ClassRepository persists classes. Reads skip soft-deleted rows.
type ClassRepository interface {
	Create(ctx context.Context, c *Class) error
	Get(ctx context.Context, id int64) (*Class, error)
	List(ctx context.Context) ([]*Class, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]*Class, error)
	Update(ctx context.Context, c *Class) error
}

// EnrollmentRepository persists enrollments. Create reports a duplicate
// (student, class) pair as a Conflict error.
type EnrollmentRepository interface {
	Create(ctx context.Context, e *Enrollment) error
	Exists(ctx context.Context, studentID, classID int64) (bool, error)
	ListByClass(ctx context.Context, classID int64) ([]*Enrollment, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*Enrollment, error)
}

// AttendanceRepository persists attendance marks. Create reports a duplicate
// (class, student, date) as a Conflict error.
type AttendanceRepository interface {
	Create(ctx context.Context, m *AttendanceMark) error
	Exists(ctx context.Context, classID, studentID int64, date time.Time) (bool, error)
	ListByClass(ctx context.Context, classID int64) ([]*AttendanceMark, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*AttendanceMark, error)
}

// AssignmentRepository persists assignments.
type AssignmentRepository interface {
	Create(ctx context.Context, a *Assignment) error
	Get(ctx context.Context, id int64) (*Assignment, error)
	ListByClass(ctx context.Context, classID int64) ([]*Assignment, error)
}

// SubmissionRepository persists submissions. Create reports a duplicate
// (assignment, student) as a Conflict error.
type SubmissionRepository interface {
	Create(ctx context.Context, s *Submission) error
	Get(ctx context.Context, id int64) (*Submission, error)
	// Find returns the student's submission for an assignment, or ErrNotFound.
	Find(ctx context.Context, assignmentID, studentID int64) (*Submission, error)
	ListByAssignment(ctx context.Context, assignmentID int64) ([]*Submission, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*Submission, error)
	// Grade records the grade fields of s. A submission that is already
	// graded is left unchanged and reported as a Conflict error.
	Grade(ctx context.Context, s *Submission) error
}

// NotificationRepository persists notifications.
type NotificationRepository interface {
	// CreateBatch inserts all notifications in one statement.
	CreateBatch(ctx context.Context, ns []*Notification) error
	Get(ctx context.Context, id int64) (*Notification, error)
	ListByCreator(ctx context.Context, teacherID int64) ([]*Notification, error)
	// ListForStudent returns notifications addressed to the student or
	// broadcast to the Student role, newest first.
	ListForStudent(ctx context.Context, studentID int64) ([]*Notification, error)
	MarkRead(ctx context.Context, id int64) error
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package school

import (
	"strings"
	"time"

	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/pkg/errutil"
)

// Department groups courses and has an optional teacher as head.
type Department struct {
	ID                 int64
	Name               string
	Description        *string
	HeadOfDepartmentID *int64
	IsDeleted          bool
	CreatedAt          time.Time
	UpdatedAt          *time.Time
}

// Course belongs to a department. Code is unique within the department.
type Course struct {
	ID           int64
	Name         string
	Code         string
	Description  *string
	DepartmentID int64
	Credits      int
	IsDeleted    bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// Class is a teacher's offering of a course for a semester.
type Class struct {
	ID        int64
	Name      string
	CourseID  int64
	TeacherID int64
	Semester  string
	StartDate time.Time
	EndDate   time.Time
	IsActive  bool
	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Enrollment links a student to a class.
type Enrollment struct {
	ID             int64
	StudentID      int64
	ClassID        int64
	EnrollmentDate time.Time
}

// AttendanceStatus is the closed set of attendance outcomes.
type AttendanceStatus string

// Attendance statuses.
const (
	StatusPresent AttendanceStatus = "Present"
	StatusAbsent  AttendanceStatus = "Absent"
	StatusLate    AttendanceStatus = "Late"
)

// ParseAttendanceStatus parses a status case-insensitively.
func ParseAttendanceStatus(s string) (AttendanceStatus, error) {
	for _, st := range []AttendanceStatus{StatusPresent, StatusAbsent, StatusLate} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", errutil.Invalid("ATTENDANCE_INVALID_STATUS", "Status must be one of Present, Absent, Late")
}

// AttendanceMark records one student's attendance for one class on one day.
// Marks are immutable.
type AttendanceMark struct {
	ID                int64
	ClassID           int64
	StudentID         int64
	Date              time.Time
	Status            AttendanceStatus
	MarkedByTeacherID int64
	CreatedAt         time.Time
}

// Assignment is coursework set for a class.
type Assignment struct {
	ID                 int64
	ClassID            int64
	Title              string
	Description        *string
	DueDate            time.Time
	CreatedByTeacherID int64
	CreatedAt          time.Time
}

// Submission is a student's answer to an assignment. It is graded at most once.
type Submission struct {
	ID                int64
	AssignmentID      int64
	StudentID         int64
	SubmittedDate     time.Time
	FileURL           *string
	OriginalFileName  string
	StoredFileName    string
	Grade             *float64
	Remarks           *string
	GradedByTeacherID *int64
	GradedDate        *time.Time
}

// IsGraded reports whether a grade has been recorded.
func (s *Submission) IsGraded() bool {
	return s.Grade != nil || s.GradedByTeacherID != nil
}

// SubmissionStatus is what a student sees for an assignment.
type SubmissionStatus string

// Submission statuses.
const (
	SubmissionPending   SubmissionStatus = "Pending"
	SubmissionSubmitted SubmissionStatus = "Submitted"
	SubmissionGraded    SubmissionStatus = "Graded"
)

// StatusOf derives the status shown for a possibly nil submission.
func StatusOf(s *Submission) SubmissionStatus {
	switch {
	case s == nil:
		return SubmissionPending
	case s.IsGraded():
		return SubmissionGraded
	default:
		return SubmissionSubmitted
	}
}

// Notification is addressed to a role and optionally to one identity.
type Notification struct {
	ID                 int64
	Title              string
	Message            string
	RecipientRole      auth.Role
	RecipientID        *int64
	CreatedByTeacherID int64
	IsRead             bool
	CreatedAt          time.Time
}

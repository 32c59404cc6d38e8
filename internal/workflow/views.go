// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package workflow

import (
	"time"

	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/internal/school"
)

// UserView is a user without credentials.
type UserView struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      auth.Role  `json:"role"`
	CreatedAt time.Time  `json:"createdDate"`
	UpdatedAt *time.Time `json:"updatedDate,omitempty"`
}

// Page is one page of a listing.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalCount int `json:"totalCount"`
	TotalPages int `json:"totalPages"`
}

// DepartmentView is a department with its head's name.
type DepartmentView struct {
	ID                   int64      `json:"id"`
	Name                 string     `json:"name"`
	Description          *string    `json:"description,omitempty"`
	HeadOfDepartmentID   *int64     `json:"headOfDepartmentId,omitempty"`
	HeadOfDepartmentName string     `json:"headOfDepartmentName,omitempty"`
	CreatedAt            time.Time  `json:"createdDate"`
	UpdatedAt            *time.Time `json:"updatedDate,omitempty"`
}

// CourseView is a course with its department's name. It is also the cached
// lookup representation.
type CourseView struct {
	ID             int64      `json:"id" cbor:"1,keyasint"`
	Name           string     `json:"name" cbor:"2,keyasint"`
	Code           string     `json:"code" cbor:"3,keyasint"`
	Description    *string    `json:"description,omitempty" cbor:"4,keyasint,omitempty"`
	DepartmentID   int64      `json:"departmentId" cbor:"5,keyasint"`
	DepartmentName string     `json:"departmentName,omitempty" cbor:"6,keyasint,omitempty"`
	Credits        int        `json:"credits" cbor:"7,keyasint"`
	CreatedAt      time.Time  `json:"createdDate" cbor:"8,keyasint"`
	UpdatedAt      *time.Time `json:"updatedDate,omitempty" cbor:"9,keyasint,omitempty"`
}

// ClassView is a class with its course and teacher.
type ClassView struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	CourseID     int64      `json:"courseId"`
	CourseName   string     `json:"courseName,omitempty"`
	CourseCode   string     `json:"courseCode,omitempty"`
	TeacherID    int64      `json:"teacherId"`
	TeacherName  string     `json:"teacherName,omitempty"`
	TeacherEmail string     `json:"teacherEmail,omitempty"`
	Semester     string     `json:"semester"`
	StartDate    time.Time  `json:"startDate"`
	EndDate      time.Time  `json:"endDate"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdDate"`
	UpdatedAt    *time.Time `json:"updatedDate,omitempty"`
}

// EnrollmentView is one roster entry.
type EnrollmentView struct {
	ID             int64     `json:"id"`
	StudentID      int64     `json:"studentId"`
	StudentName    string    `json:"studentName,omitempty"`
	StudentEmail   string    `json:"studentEmail,omitempty"`
	ClassID        int64     `json:"classId"`
	ClassName      string    `json:"className,omitempty"`
	EnrollmentDate time.Time `json:"enrollmentDate"`
}

// EnrolledClassView is a class as listed for an enrolled student.
type EnrolledClassView struct {
	EnrollmentID   int64     `json:"enrollmentId"`
	EnrollmentDate time.Time `json:"enrollmentDate"`
	ClassID        int64     `json:"classId"`
	ClassName      string    `json:"className"`
	Semester       string    `json:"semester"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	IsActive       bool      `json:"isActive"`
	CourseID       int64     `json:"courseId"`
	CourseName     string    `json:"courseName,omitempty"`
	CourseCode     string    `json:"courseCode,omitempty"`
	TeacherID      int64     `json:"teacherId"`
	TeacherName    string    `json:"teacherName,omitempty"`
	TeacherEmail   string    `json:"teacherEmail,omitempty"`
}

// AttendanceView is one attendance mark.
type AttendanceView struct {
	ID                  int64                   `json:"id"`
	ClassID             int64                   `json:"classId"`
	ClassName           string                  `json:"className,omitempty"`
	StudentID           int64                   `json:"studentId"`
	StudentName         string                  `json:"studentName,omitempty"`
	StudentEmail        string                  `json:"studentEmail,omitempty"`
	Date                time.Time               `json:"date"`
	Status              school.AttendanceStatus `json:"status"`
	MarkedByTeacherID   int64                   `json:"markedByTeacherId"`
	MarkedByTeacherName string                  `json:"markedByTeacherName,omitempty"`
	CreatedAt           time.Time               `json:"createdDate"`
}

// AssignmentView is an assignment with its class and author.
type AssignmentView struct {
	ID                   int64     `json:"id"`
	ClassID              int64     `json:"classId"`
	ClassName            string    `json:"className,omitempty"`
	Title                string    `json:"title"`
	Description          *string   `json:"description,omitempty"`
	DueDate              time.Time `json:"dueDate"`
	CreatedByTeacherID   int64     `json:"createdByTeacherId"`
	CreatedByTeacherName string    `json:"createdByTeacherName,omitempty"`
	CreatedAt            time.Time `json:"createdDate"`
}

// StudentAssignmentView adds the student's submission status.
type StudentAssignmentView struct {
	AssignmentView
	Status school.SubmissionStatus `json:"status"`
}

// SubmissionView is a submission with the names around it.
type SubmissionView struct {
	ID                  int64      `json:"id"`
	AssignmentID        int64      `json:"assignmentId"`
	AssignmentTitle     string     `json:"assignmentTitle,omitempty"`
	StudentID           int64      `json:"studentId"`
	StudentName         string     `json:"studentName,omitempty"`
	SubmittedDate       time.Time  `json:"submittedDate"`
	FileURL             *string    `json:"fileUrl,omitempty"`
	OriginalFileName    string     `json:"originalFileName"`
	StoredFileName      string     `json:"storedFileName"`
	Grade               *float64   `json:"grade,omitempty"`
	Remarks             *string    `json:"remarks,omitempty"`
	GradedByTeacherID   *int64     `json:"gradedByTeacherId,omitempty"`
	GradedByTeacherName string     `json:"gradedByTeacherName,omitempty"`
	GradedDate          *time.Time `json:"gradedDate,omitempty"`
}

// NotificationView is one notification.
type NotificationView struct {
	ID                   int64     `json:"id"`
	Title                string    `json:"title"`
	Message              string    `json:"message"`
	RecipientRole        auth.Role `json:"recipientRole"`
	RecipientID          *int64    `json:"recipientId,omitempty"`
	RecipientName        string    `json:"recipientName,omitempty"`
	IsRead               bool      `json:"isRead"`
	CreatedByTeacherID   int64     `json:"createdByTeacherId"`
	CreatedByTeacherName string    `json:"createdByTeacherName,omitempty"`
	CreatedAt            time.Time `json:"createdDate"`
}

func userView(u *auth.User) UserView {
	return UserView{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}

func nameOf(users map[int64]*auth.User, id int64) string {
	if u, ok := users[id]; ok {
		return u.Name
	}
	return ""
}

func emailOf(users map[int64]*auth.User, id int64) string {
	if u, ok := users[id]; ok {
		return u.Email
	}
	return ""
}

func classView(c *school.Class, courses map[int64]*school.Course, users map[int64]*auth.User) ClassView {
	v := ClassView{
		ID:           c.ID,
		Name:         c.Name,
		CourseID:     c.CourseID,
		TeacherID:    c.TeacherID,
		TeacherName:  nameOf(users, c.TeacherID),
		TeacherEmail: emailOf(users, c.TeacherID),
		Semester:     c.Semester,
		StartDate:    c.StartDate,
		EndDate:      c.EndDate,
		IsActive:     c.IsActive,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	if course, ok := courses[c.CourseID]; ok {
		v.CourseName = course.Name
		v.CourseCode = course.Code
	}
	return v
}

func assignmentView(a *school.Assignment, className string, users map[int64]*auth.User) AssignmentView {
	return AssignmentView{
		ID:                   a.ID,
		ClassID:              a.ClassID,
		ClassName:            className,
		Title:                a.Title,
		Description:          a.Description,
		DueDate:              a.DueDate,
		CreatedByTeacherID:   a.CreatedByTeacherID,
		CreatedByTeacherName: nameOf(users, a.CreatedByTeacherID),
		CreatedAt:            a.CreatedAt,
	}
}

func submissionView(s *school.Submission, title string, users map[int64]*auth.User) SubmissionView {
	v := SubmissionView{
		ID:                s.ID,
		AssignmentID:      s.AssignmentID,
		AssignmentTitle:   title,
		StudentID:         s.StudentID,
		StudentName:       nameOf(users, s.StudentID),
		SubmittedDate:     s.SubmittedDate,
		FileURL:           s.FileURL,
		OriginalFileName:  s.OriginalFileName,
		StoredFileName:    s.StoredFileName,
		Grade:             s.Grade,
		Remarks:           s.Remarks,
		GradedByTeacherID: s.GradedByTeacherID,
		GradedDate:        s.GradedDate,
	}
	if s.GradedByTeacherID != nil {
		v.GradedByTeacherName = nameOf(users, *s.GradedByTeacherID)
	}
	return v
}

func notificationView(n *school.Notification, users map[int64]*auth.User) NotificationView {
	v := NotificationView{
		ID:                   n.ID,
		Title:                n.Title,
		Message:              n.Message,
		RecipientRole:        n.RecipientRole,
		RecipientID:          n.RecipientID,
		IsRead:               n.IsRead,
		CreatedByTeacherID:   n.CreatedByTeacherID,
		CreatedByTeacherName: nameOf(users, n.CreatedByTeacherID),
		CreatedAt:            n.CreatedAt,
	}
	if n.RecipientID != nil {
		v.RecipientName = nameOf(users, *n.RecipientID)
	}
	return v
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package policy

import "github.com/schoolhub/schoolhub/pkg/errutil"

// Lookups.
var (
	ErrClassNotFound        = errutil.NotFound("CLASS_NOT_FOUND", "Class not found")
	ErrCourseNotFound       = errutil.NotFound("COURSE_NOT_FOUND", "Course not found")
	ErrDepartmentNotFound   = errutil.NotFound("DEPARTMENT_NOT_FOUND", "Department not found")
	ErrStudentNotFound      = errutil.NotFound("STUDENT_NOT_FOUND", "Student not found")
	ErrAssignmentNotFound   = errutil.NotFound("ASSIGNMENT_NOT_FOUND", "Assignment not found")
	ErrSubmissionNotFound   = errutil.NotFound("SUBMISSION_NOT_FOUND", "Submission not found")
	ErrNotificationNotFound = errutil.NotFound("NOTIFICATION_NOT_FOUND", "Notification not found")
	ErrRecipientNotFound    = errutil.NotFound("RECIPIENT_NOT_FOUND", "Recipient not found")
	ErrHeadNotFound         = errutil.NotFound("HEAD_NOT_FOUND", "Head of Department not found")

	ErrSubmissionAssignmentMissing = errutil.NotFound("SUBMISSION_ASSIGNMENT_NOT_FOUND", "Assignment not found for this submission")
	ErrAssignmentClassMissing      = errutil.NotFound("ASSIGNMENT_CLASS_NOT_FOUND", "Class not found for this assignment")
)

// Classes.
var (
	ErrOnlyTeachersCreateClasses = errutil.Forbidden("CLASS_TEACHER_ONLY", "Only teachers can be assigned to a class")
	ErrOnlyTeachersUpdateClasses = errutil.Forbidden("CLASS_UPDATE_TEACHER_ONLY", "Only teachers can update classes")
	ErrNotClassOwner             = errutil.Forbidden("CLASS_NOT_OWNER", "You can only update your own classes")
	ErrClassDates                = errutil.Invalid("CLASS_INVALID_DATES", "StartDate must be before EndDate")
)

// Enrollment.
var (
	ErrEnrollForbidden     = errutil.Forbidden("ENROLLMENT_FORBIDDEN", "You do not have permission to enroll students in this class")
	ErrEnrollInactive      = errutil.Invalid("ENROLLMENT_CLASS_INACTIVE", "Cannot enroll students in a deactivated class")
	ErrEnrollNotStudent    = errutil.Invalid("ENROLLMENT_NOT_STUDENT", "Only students can be enrolled in a class")
	ErrAlreadyEnrolled     = errutil.Conflict("ENROLLMENT_EXISTS", "Student is already enrolled in this class")
	ErrViewRosterForbidden = errutil.Forbidden("ENROLLMENT_VIEW_FORBIDDEN", "You do not have permission to view enrollments for this class")
)

// Attendance.
var (
	ErrAttendanceForbidden     = errutil.Forbidden("ATTENDANCE_FORBIDDEN", "You do not have permission to mark attendance for this class")
	ErrAttendanceNotStudent    = errutil.Invalid("ATTENDANCE_NOT_STUDENT", "User is not a student")
	ErrAttendanceNotEnrolled   = errutil.Invalid("ATTENDANCE_NOT_ENROLLED", "Student is not enrolled in this class")
	ErrAttendanceExists        = errutil.Conflict("ATTENDANCE_EXISTS", "Attendance for this student on this date already exists")
	ErrViewAttendanceForbidden = errutil.Forbidden("ATTENDANCE_VIEW_FORBIDDEN", "You do not have permission to view attendance for this class")
)

// Assignments and submissions.
var (
	ErrAssignmentForbidden         = errutil.Forbidden("ASSIGNMENT_FORBIDDEN", "You do not have permission to create assignments for this class")
	ErrAssignmentInactiveClass     = errutil.Invalid("ASSIGNMENT_CLASS_INACTIVE", "Cannot create assignment for an inactive class")
	ErrAssignmentDueInPast         = errutil.Invalid("ASSIGNMENT_DUE_IN_PAST", "Assignment due date cannot be in the past")
	ErrViewAssignmentsForbidden    = errutil.Forbidden("ASSIGNMENT_VIEW_FORBIDDEN", "You do not have permission to view assignments for this class")
	ErrDeadlinePassed              = errutil.Invalid("ASSIGNMENT_DEADLINE_PASSED", "Cannot submit assignment. The due date has passed")
	ErrOnlyStudentsSubmit          = errutil.Invalid("SUBMISSION_NOT_STUDENT", "Only students can submit assignments")
	ErrOnlyStudentsView            = errutil.Invalid("ASSIGNMENT_NOT_STUDENT", "Only students can view assignments")
	ErrNotEnrolledForAssignment    = errutil.Invalid("SUBMISSION_NOT_ENROLLED", "You are not enrolled in the class for this assignment")
	ErrAlreadySubmitted            = errutil.Conflict("SUBMISSION_EXISTS", "You have already submitted this assignment")
	ErrGradeForbidden              = errutil.Forbidden("SUBMISSION_NOT_OWNER", "You can only grade submissions for assignments in your classes")
	ErrAlreadyGraded               = errutil.Conflict("SUBMISSION_ALREADY_GRADED", "This submission has already been graded")
	ErrGradeRange                  = errutil.Invalid("SUBMISSION_INVALID_GRADE", "Grade must be between 0 and 100")
	ErrOnlyStudentsViewSubmissions = errutil.Invalid("SUBMISSION_VIEW_NOT_STUDENT", "Only students can view submissions")
	ErrSubmissionForbidden         = errutil.Forbidden("SUBMISSION_VIEW_FORBIDDEN", "You can only view your own submissions")
	ErrViewSubmissionsForbidden    = errutil.Forbidden("SUBMISSION_LIST_FORBIDDEN", "You do not have permission to view submissions for this assignment")
)

// Notifications.
var (
	ErrRecipientRole         = errutil.Invalid("NOTIFICATION_INVALID_ROLE", "RecipientRole must be 'Student'")
	ErrRecipientNotStudent   = errutil.Invalid("NOTIFICATION_RECIPIENT_NOT_STUDENT", "RecipientId must be a Student User Id")
	ErrOnlyTeachersNotify    = errutil.Forbidden("NOTIFICATION_TEACHER_ONLY", "Only teachers can send notifications")
	ErrNoRecipients          = errutil.Invalid("NOTIFICATION_NO_RECIPIENTS", "No students to notify")
	ErrNotificationForbidden = errutil.Forbidden("NOTIFICATION_CLASS_FORBIDDEN", "You do not have permission to notify this class")
	ErrNotForStudents        = errutil.Forbidden("NOTIFICATION_NOT_FOR_STUDENTS", "Notification is not for students")
	ErrNotificationNotYours  = errutil.Forbidden("NOTIFICATION_NOT_RECIPIENT", "You do not have permission to read this notification")
)

// Catalog.
var (
	ErrDepartmentNameTaken = errutil.Conflict("DEPARTMENT_NAME_TAKEN", "Department name must be unique")
	ErrHeadNotTeacher      = errutil.Invalid("DEPARTMENT_HEAD_NOT_TEACHER", "Only teachers can be assigned as Head of Department")
	ErrCourseCodeTaken     = errutil.Conflict("COURSE_CODE_TAKEN", "Course code must be unique per department")
)

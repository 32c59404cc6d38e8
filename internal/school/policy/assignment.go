// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package policy

import (
	"time"

	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/internal/school"
)

// Grade bounds, inclusive.
const (
	MinGrade = 0
	MaxGrade = 100
)

// CreateAssignment checks a new assignment for class due on dueDate.
func CreateAssignment(actor school.Actor, class *school.Class, dueDate, now time.Time) error {
	return All(
		classOwned(actor, class, ErrAssignmentForbidden),
		requireTrue(class != nil && class.IsActive, ErrAssignmentInactiveClass),
		requireTrue(notPastDue(dueDate, now), ErrAssignmentDueInPast),
	)
}

// ListAssignments checks a teacher listing the assignments of a class.
func ListAssignments(actor school.Actor, class *school.Class) error {
	return classOwned(actor, class, ErrViewAssignmentsForbidden)()
}

// ViewAssignment checks a student opening an assignment.
func ViewAssignment(actor school.Actor, assignment *school.Assignment, enrolled bool) error {
	return All(
		assignmentExists(assignment),
		requireRole(actor, auth.RoleStudent, ErrOnlyStudentsView),
		requireTrue(enrolled, ErrNotEnrolledForAssignment),
	)
}

// SubmitAssignment checks a student's submission. existing is the actor's
// prior submission for the assignment, if any.
func SubmitAssignment(actor school.Actor, assignment *school.Assignment, enrolled bool, existing *school.Submission, now time.Time) error {
	return All(
		assignmentExists(assignment),
		func() error {
			if !notPastDue(assignment.DueDate, now) {
				return ErrDeadlinePassed
			}
			return nil
		},
		requireRole(actor, auth.RoleStudent, ErrOnlyStudentsSubmit),
		requireTrue(enrolled, ErrNotEnrolledForAssignment),
		requireTrue(existing == nil, ErrAlreadySubmitted),
	)
}

// ListSubmissions checks a teacher listing the submissions of an assignment.
func ListSubmissions(actor school.Actor, assignment *school.Assignment, class *school.Class) error {
	return All(
		assignmentExists(assignment),
		classOwned(actor, class, ErrViewSubmissionsForbidden),
	)
}

// GradeSubmission checks grading submission. assignment and class are the
// records the submission resolves to.
func GradeSubmission(actor school.Actor, submission *school.Submission, assignment *school.Assignment, class *school.Class, grade float64) error {
	return All(
		func() error {
			switch {
			case submission == nil:
				return ErrSubmissionNotFound
			case assignment == nil:
				return ErrSubmissionAssignmentMissing
			case class == nil || class.IsDeleted:
				return ErrAssignmentClassMissing
			}
			return nil
		},
		requireTrue(class != nil && class.TeacherID == actor.ID, ErrGradeForbidden),
		requireTrue(submission != nil && !submission.IsGraded(), ErrAlreadyGraded),
		requireTrue(grade >= MinGrade && grade <= MaxGrade, ErrGradeRange),
	)
}

// ViewSubmission checks a student reading one submission.
func ViewSubmission(actor school.Actor, submission *school.Submission) error {
	return All(
		requireTrue(submission != nil, ErrSubmissionNotFound),
		requireRole(actor, auth.RoleStudent, ErrOnlyStudentsViewSubmissions),
		func() error {
			if submission.StudentID != actor.ID {
				return ErrSubmissionForbidden
			}
			return nil
		},
	)
}

func assignmentExists(a *school.Assignment) Check {
	return requireTrue(a != nil, ErrAssignmentNotFound)
}

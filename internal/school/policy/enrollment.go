// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package policy

import (
	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/internal/school"
)

// EnrollStudent checks adding student to class.
func EnrollStudent(actor school.Actor, class *school.Class, student *auth.User, alreadyEnrolled bool) error {
	return All(
		classOwned(actor, class, ErrEnrollForbidden),
		requireTrue(class != nil && class.IsActive, ErrEnrollInactive),
		studentTarget(student, ErrEnrollNotStudent),
		requireTrue(!alreadyEnrolled, ErrAlreadyEnrolled),
	)
}

// ViewRoster checks listing the enrollments of a class.
func ViewRoster(actor school.Actor, class *school.Class) error {
	return classOwned(actor, class, ErrViewRosterForbidden)()
}

// MarkAttendance checks recording one attendance mark.
func MarkAttendance(actor school.Actor, class *school.Class, student *auth.User, enrolled, alreadyMarked bool) error {
	return All(
		classOwned(actor, class, ErrAttendanceForbidden),
		studentTarget(student, ErrAttendanceNotStudent),
		requireTrue(enrolled, ErrAttendanceNotEnrolled),
		requireTrue(!alreadyMarked, ErrAttendanceExists),
	)
}

// ViewAttendance checks reading or exporting the attendance history of a class.
func ViewAttendance(actor school.Actor, class *school.Class) error {
	return classOwned(actor, class, ErrViewAttendanceForbidden)()
}

// ViewOwnAttendance checks a student reading their marks in one class.
func ViewOwnAttendance(class *school.Class) error {
	return requireTrue(class != nil && !class.IsDeleted, ErrClassNotFound)()
}

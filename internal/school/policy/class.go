// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package policy

import (
	"time"

	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/internal/school"
)

// CreateClass checks a new class taught by actor.
func CreateClass(actor school.Actor, course *school.Course, start, end time.Time) error {
	return All(
		courseExists(course),
		requireRole(actor, auth.RoleTeacher, ErrOnlyTeachersCreateClasses),
		datesOrdered(start, end),
	)
}

// UpdateClass checks an edit of an existing class.
func UpdateClass(actor school.Actor, class *school.Class, course *school.Course, start, end time.Time) error {
	return All(
		classOwned(actor, class, ErrNotClassOwner),
		courseExists(course),
		requireRole(actor, auth.RoleTeacher, ErrOnlyTeachersUpdateClasses),
		datesOrdered(start, end),
	)
}

// ManageClass checks activation, deactivation and owner reads of a class.
func ManageClass(actor school.Actor, class *school.Class) error {
	return classOwned(actor, class, ErrNotClassOwner)()
}

func courseExists(course *school.Course) Check {
	return func() error {
		if course == nil || course.IsDeleted {
			return ErrCourseNotFound
		}
		return nil
	}
}

func datesOrdered(start, end time.Time) Check {
	return requireTrue(start.Before(end), ErrClassDates)
}

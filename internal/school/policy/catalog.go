// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package policy

import (
	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/internal/school"
)

// SaveDepartment checks a department create or update. head is nil when no
// head was requested or when the requested id did not resolve; headRequested
// tells the two apart.
func SaveDepartment(nameTaken, headRequested bool, head *auth.User) error {
	return All(
		requireTrue(!nameTaken, ErrDepartmentNameTaken),
		func() error {
			if !headRequested {
				return nil
			}
			if head == nil || head.IsDeleted {
				return ErrHeadNotFound
			}
			if head.Role != auth.RoleTeacher {
				return ErrHeadNotTeacher
			}
			return nil
		},
	)
}

// SaveCourse checks a course create or update.
func SaveCourse(department *school.Department, codeTaken bool) error {
	return All(
		func() error {
			if department == nil || department.IsDeleted {
				return ErrDepartmentNotFound
			}
			return nil
		},
		requireTrue(!codeTaken, ErrCourseCodeTaken),
	)
}

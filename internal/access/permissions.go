// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package access

import "github.com/schoolhub/schoolhub/internal/auth"

// Permission groups define reusable sets of permissions.
// Roles compose these groups rather than inheriting.

var memberPowers = []string{
	"read:auth:me",
	"read:lookup:*",
}

var adminPowers = []string{
	"read:admin:**",
	"write:admin:**",
	"delete:admin:**",
}

var teacherPowers = []string{
	"read:teacher:*",
	"write:teacher:{classes,enrollments,attendance,assignments,submissions,notifications}",
	"export:teacher:attendance",
}

var studentPowers = []string{
	"read:student:*",
	"write:student:submissions",
}

// DefaultRoles returns the permission patterns of every role.
func DefaultRoles() map[auth.Role][]string {
	return map[auth.Role][]string{
		auth.RoleAdmin:   compose(memberPowers, adminPowers),
		auth.RoleTeacher: compose(memberPowers, teacherPowers),
		auth.RoleStudent: compose(memberPowers, studentPowers),
	}
}

// compose merges multiple permission slices into one.
func compose(groups ...[]string) []string {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	result := make([]string, 0, total)
	for _, g := range groups {
		result = append(result, g...)
	}
	return result
}

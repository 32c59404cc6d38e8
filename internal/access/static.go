// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package access

import (
	"context"
	"log/slog"
	"sort"

	"github.com/gobwas/glob"
	"github.com/samber/oops"

	"github.com/schoolhub/schoolhub/internal/auth"
)

// StaticAccessControl implements AccessControl with static role definitions.
// It is immutable after construction and safe for concurrent use.
type StaticAccessControl struct {
	roles map[auth.Role][]compiledPermission
}

// compiledPermission holds a permission pattern and its compiled glob.
type compiledPermission struct {
	pattern string
	glob    glob.Glob
}

// NewStaticAccessControl creates an access controller with DefaultRoles.
//
// Panics if the default roles contain an invalid pattern.
func NewStaticAccessControl() *StaticAccessControl {
	ac, err := NewStaticAccessControlWithRoles(DefaultRoles())
	if err != nil {
		panic("invalid permission pattern in DefaultRoles: " + err.Error())
	}
	return ac
}

// NewStaticAccessControlWithRoles creates an access controller with custom
// roles. It fails if any pattern is not a valid glob.
func NewStaticAccessControlWithRoles(roles map[auth.Role][]string) (*StaticAccessControl, error) {
	compiledRoles := make(map[auth.Role][]compiledPermission, len(roles))
	for role, perms := range roles {
		compiled := make([]compiledPermission, 0, len(perms))
		for _, p := range perms {
			g, err := glob.Compile(p, ':')
			if err != nil {
				return nil, oops.In("access").
					Code("INVALID_PERMISSION_PATTERN").
					With("role", role).
					With("pattern", p).
					Wrap(err)
			}
			compiled = append(compiled, compiledPermission{pattern: p, glob: g})
		}
		compiledRoles[role] = compiled
	}
	return &StaticAccessControl{roles: compiledRoles}, nil
}

// Check implements AccessControl.
func (s *StaticAccessControl) Check(ctx context.Context, role auth.Role, action, resource string) bool {
	permissions, ok := s.roles[role]
	if !ok {
		slog.DebugContext(ctx, "permission check for unknown role", "role", role)
		return false
	}
	requested := Permission(action, resource)
	for _, perm := range permissions {
		if perm.glob.Match(requested) {
			return true
		}
	}
	return false
}

// Patterns returns the patterns granted to role, sorted.
func (s *StaticAccessControl) Patterns(role auth.Role) []string {
	perms := s.roles[role]
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		out = append(out, p.pattern)
	}
	sort.Strings(out)
	return out
}

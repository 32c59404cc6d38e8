// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

// Package access provides route-level authorization for SchoolHub.
//
// Permissions are "action:resource" strings matched against per-role glob
// patterns, with ':' as the segment separator:
//   - action: "read", "write", "delete", "export"
//   - resource: "<area>:<entity>", e.g. "admin:users", "teacher:attendance"
//
// Ownership and state rules are not decided here; they belong to the
// school policy checks that run after a request is admitted.
package access

import (
	"context"

	"github.com/schoolhub/schoolhub/internal/auth"
)

// AccessControl decides whether a role may perform action on resource.
//
//nolint:revive // AccessControl reads better at call sites than access.Control.
type AccessControl interface {
	// Check returns true if role is allowed to perform action on resource.
	// Unknown roles and unmatched permissions are denied.
	Check(ctx context.Context, role auth.Role, action, resource string) bool
}

// Permission joins an action and a resource into the matched form.
func Permission(action, resource string) string {
	return action + ":" + resource
}

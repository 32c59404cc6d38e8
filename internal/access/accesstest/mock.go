// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

// Package accesstest provides test helpers for access control.
package accesstest

import (
	"context"

	"github.com/schoolhub/schoolhub/internal/access"
	"github.com/schoolhub/schoolhub/internal/auth"
)

// AllowAll is an AccessControl that allows everything.
type AllowAll struct{}

// Check always returns true.
func (AllowAll) Check(context.Context, auth.Role, string, string) bool {
	return true
}

// DenyAll is an AccessControl that denies everything.
type DenyAll struct{}

// Check always returns false.
func (DenyAll) Check(context.Context, auth.Role, string, string) bool {
	return false
}

var (
	_ access.AccessControl = AllowAll{}
	_ access.AccessControl = DenyAll{}
)

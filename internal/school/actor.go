// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package school

import "github.com/schoolhub/schoolhub/internal/auth"

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   int64
	Role auth.Role
}

// ActorFrom builds an Actor from token claims.
func ActorFrom(id auth.Identity) Actor {
	return Actor{ID: id.ID, Role: id.Role}
}

// Is reports whether the actor has role r.
func (a Actor) Is(r auth.Role) bool { return a.Role == r }

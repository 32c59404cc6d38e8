// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

// Package auth provides authentication primitives for SchoolHub.
//
// # Domain Types
//
// Users are created with NewUser, which validates name, email and role.
// Refresh sessions are created with NewRefreshSession. Direct struct
// initialization bypasses validation.
//
// # Tokens
//
// TokenIssuer signs short-lived HS256 access tokens carrying an Identity and
// mints opaque refresh tokens. Refresh tokens are single use: every refresh
// consumes the stored session and issues a new token.
//
// # Stores
//
// RefreshTokenStore has three implementations: MemoryRefreshStore in this
// package, a Redis store in auth/redis and a PostgreSQL store in auth/postgres.
//
// # Services
//
// Service coordinates login, registration, refresh and logout.
package auth

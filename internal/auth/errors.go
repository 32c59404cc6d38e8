// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package auth

import (
	"errors"

	"github.com/schoolhub/schoolhub/pkg/errutil"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrRefreshNotFound and ErrRefreshExpired are the two failure outcomes of
// RefreshTokenStore.Consume.
var (
	ErrRefreshNotFound = errors.New("refresh token not found")
	ErrRefreshExpired  = errors.New("refresh token expired")
)

// ErrEmailTaken is the Conflict for a registration or user creation whose
// email already belongs to a live user.
var ErrEmailTaken = errutil.Conflict("AUTH_EMAIL_TAKEN", "User with this email already exists")

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = errutil.Invalid("AUTH_EMPTY_PASSWORD", "Password cannot be empty")

func errInvalidCredentials() error {
	return errutil.Unauthorized("AUTH_INVALID_CREDENTIALS", "Invalid email or password")
}

func errInvalidRefresh() error {
	return errutil.Unauthorized("AUTH_INVALID_REFRESH_TOKEN", "Invalid refresh token")
}

func errExpiredRefresh() error {
	return errutil.Unauthorized("AUTH_REFRESH_TOKEN_EXPIRED", "Refresh token has expired")
}

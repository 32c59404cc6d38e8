// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package auth

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/schoolhub/schoolhub/pkg/errutil"
)

// Role is the closed set of identity roles.
type Role string

// Roles.
const (
	RoleAdmin   Role = "Admin"
	RoleTeacher Role = "Teacher"
	RoleStudent Role = "Student"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleTeacher, RoleStudent}

// ParseRole parses a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if strings.EqualFold(strings.TrimSpace(s), string(r)) {
			return r, nil
		}
	}
	return "", errutil.Invalid("AUTH_INVALID_ROLE", "Role must be one of Admin, Teacher, Student")
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	default:
		return false
	}
}

// User field constraints.
const (
	MaxNameLength     = 100
	MaxEmailLength    = 150
	MinPasswordLength = 6
)

// User is an identity that can authenticate.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	IsDeleted    bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// Identity returns the claims snapshot carried by tokens and sessions.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// Identity is the immutable identity snapshot embedded in tokens and refresh sessions.
type Identity struct {
	ID    int64  `json:"id" cbor:"1,keyasint"`
	Email string `json:"email" cbor:"2,keyasint"`
	Name  string `json:"name" cbor:"3,keyasint"`
	Role  Role   `json:"role" cbor:"4,keyasint"`
}

// NormalizeEmail lower-cases and trims an email for case-insensitive comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUser creates a validated User. The password must already be hashed.
func NewUser(name, email, passwordHash string, role Role) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errutil.Invalid("AUTH_INVALID_NAME", "Name is required")
	}
	if len(name) > MaxNameLength {
		return nil, errutil.Invalid("AUTH_INVALID_NAME", "Name cannot exceed 100 characters")
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, errutil.Invalid("AUTH_INVALID_HASH", "Password is required")
	}
	if !role.Valid() {
		return nil, errutil.Invalid("AUTH_INVALID_ROLE", "Role must be one of Admin, Teacher, Student")
	}
	return &User{
		Name:         name,
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		Role:         role,
	}, nil
}

// ValidateEmail checks the email's length and format.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errutil.Invalid("AUTH_INVALID_EMAIL", "Email is required")
	}
	if len(email) > MaxEmailLength {
		return errutil.Invalid("AUTH_INVALID_EMAIL", "Email cannot exceed 150 characters")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errutil.Invalid("AUTH_INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

// ValidatePassword checks a plaintext password before hashing.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errutil.Invalid("AUTH_WEAK_PASSWORD", "Password must be at least 6 characters")
	}
	return nil
}

// UserRepository manages user persistence. Read methods never return
// soft-deleted users; they report ErrNotFound instead.
type UserRepository interface {
	// Create stores a new user and assigns its ID. A duplicate email is
	// reported as a Conflict error.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByEmail retrieves a user by email (case-insensitive).
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByIDs retrieves the existing users among ids, keyed by ID.
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*User, error)

	// List returns all users ordered by ID.
	List(ctx context.Context) ([]*User, error)

	// ListByRole returns users with the given role ordered by name.
	ListByRole(ctx context.Context, role Role) ([]*User, error)

	// ListPage returns one page of users with the given role and the total count.
	ListPage(ctx context.Context, role Role, page, pageSize int) ([]*User, int, error)

	// Update updates name, role and password hash.
	Update(ctx context.Context, user *User) error

	// SoftDelete marks a user deleted.
	SoftDelete(ctx context.Context, id int64) error
}

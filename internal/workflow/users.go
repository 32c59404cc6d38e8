// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package workflow

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/oops"

	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/pkg/errutil"
)

// Paging bounds for the students listing.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var errUserNotFound = errutil.NotFound("USER_NOT_FOUND", "User not found")

// UserInput creates a user.
type UserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// UserUpdate edits a user's name and role.
type UserUpdate struct {
	Name string
	Role string
}

// UserService is the administrators' user directory.
type UserService struct {
	base
	hasher auth.PasswordHasher
}

// NewUserService creates a UserService.
func NewUserService(d Deps, hasher auth.PasswordHasher) *UserService {
	return &UserService{base: newBase(d), hasher: hasher}
}

// Create adds a user with a hashed password.
func (s *UserService) Create(ctx context.Context, in UserInput) (*UserView, error) {
	v, err := s.create(ctx, in)
	return v, s.finish(ctx, "user.create", err)
}

func (s *UserService) create(ctx context.Context, in UserInput) (*UserView, error) {
	role, err := auth.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	if err := auth.ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	email := auth.NormalizeEmail(in.Email)
	switch _, err := s.Users.GetByEmail(ctx, email); {
	case err == nil:
		return nil, auth.ErrEmailTaken
	case !errors.Is(err, auth.ErrNotFound):
		return nil, oops.Code("USER_CREATE_FAILED").With("operation", "get user by email").Wrap(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, oops.Code("USER_CREATE_FAILED").With("operation", "hash password").Wrap(err)
	}
	u, err := auth.NewUser(in.Name, email, hash, role)
	if err != nil {
		return nil, err
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errutil.KindOf(err) == errutil.KindConflict {
			return nil, auth.ErrEmailTaken
		}
		return nil, err
	}
	v := userView(u)
	return &v, nil
}

// Get returns one user.
func (s *UserService) Get(ctx context.Context, id int64) (*UserView, error) {
	u, err := s.live(ctx, id)
	if err != nil {
		return nil, s.finish(ctx, "user.get", err)
	}
	v := userView(u)
	return &v, nil
}

// List returns every live user.
func (s *UserService) List(ctx context.Context) ([]UserView, error) {
	us, err := s.Users.List(ctx)
	if err != nil {
		return nil, s.finish(ctx, "user.list", err)
	}
	return userViews(us), nil
}

// ListByRole returns the live users holding role.
func (s *UserService) ListByRole(ctx context.Context, role string) ([]UserView, error) {
	r, err := auth.ParseRole(role)
	if err != nil {
		return nil, s.finish(ctx, "user.list_by_role", err)
	}
	us, err := s.Users.ListByRole(ctx, r)
	if err != nil {
		return nil, s.finish(ctx, "user.list_by_role", err)
	}
	return userViews(us), nil
}

// Students returns one page of students. Zero page and pageSize take the
// defaults.
func (s *UserService) Students(ctx context.Context, page, pageSize int) (*Page[UserView], error) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		return nil, s.finish(ctx, "user.students", errutil.Invalid("PAGE_INVALID", "Page must be at least 1"))
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return nil, s.finish(ctx, "user.students",
			errutil.Invalid("PAGE_SIZE_INVALID", "PageSize must be between 1 and 100"))
	}
	us, total, err := s.Users.ListPage(ctx, auth.RoleStudent, page, pageSize)
	if err != nil {
		return nil, s.finish(ctx, "user.students", err)
	}
	return &Page[UserView]{
		Items:      userViews(us),
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// Update changes a user's name and role.
func (s *UserService) Update(ctx context.Context, id int64, in UserUpdate) (*UserView, error) {
	v, err := s.update(ctx, id, in)
	return v, s.finish(ctx, "user.update", err)
}

func (s *UserService) update(ctx context.Context, id int64, in UserUpdate) (*UserView, error) {
	role, err := auth.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return nil, errutil.Invalid("AUTH_INVALID_NAME", "Name is required")
	case len(name) > auth.MaxNameLength:
		return nil, errutil.Invalid("AUTH_INVALID_NAME", "Name cannot exceed 100 characters")
	}
	u, err := s.live(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Name, u.Role = name, role
	if err := persisted(s.Users.Update(ctx, u), errUserNotFound); err != nil {
		return nil, err
	}
	v := userView(u)
	return &v, nil
}

// Delete soft-deletes a user. Their tokens stop refreshing.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	err := persisted(s.Users.SoftDelete(ctx, id), errUserNotFound)
	return s.finish(ctx, "user.delete", err)
}

func (s *UserService) live(ctx context.Context, id int64) (*auth.User, error) {
	u, err := s.user(ctx, id)
	if err == nil && (u == nil || u.IsDeleted) {
		return nil, errUserNotFound
	}
	return u, err
}

func userViews(us []*auth.User) []UserView {
	out := make([]UserView, 0, len(us))
	for _, u := range us {
		out = append(out, userView(u))
	}
	return out
}

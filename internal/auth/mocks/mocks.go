// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

// Package mocks provides testify mocks for the auth interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/schoolhub/schoolhub/internal/auth"
)

type cleanupT interface {
	mock.TestingT
	Cleanup(func())
}

// MockUserRepository is a mock auth.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

// NewMockUserRepository creates a MockUserRepository whose expectations are
// asserted when the test finishes.
func NewMockUserRepository(t cleanupT) *MockUserRepository {
	m := &MockUserRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func userResult(args mock.Arguments) (*auth.User, error) {
	var u *auth.User
	if v := args.Get(0); v != nil {
		u = v.(*auth.User)
	}
	return u, args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *auth.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*auth.User, error) {
	return userResult(m.Called(ctx, id))
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return userResult(m.Called(ctx, email))
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*auth.User, error) {
	args := m.Called(ctx, ids)
	var out map[int64]*auth.User
	if v := args.Get(0); v != nil {
		out = v.(map[int64]*auth.User)
	}
	return out, args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]*auth.User, error) {
	args := m.Called(ctx)
	var out []*auth.User
	if v := args.Get(0); v != nil {
		out = v.([]*auth.User)
	}
	return out, args.Error(1)
}

func (m *MockUserRepository) ListByRole(ctx context.Context, role auth.Role) ([]*auth.User, error) {
	args := m.Called(ctx, role)
	var out []*auth.User
	if v := args.Get(0); v != nil {
		out = v.([]*auth.User)
	}
	return out, args.Error(1)
}

func (m *MockUserRepository) ListPage(ctx context.Context, role auth.Role, page, pageSize int) ([]*auth.User, int, error) {
	args := m.Called(ctx, role, page, pageSize)
	var out []*auth.User
	if v := args.Get(0); v != nil {
		out = v.([]*auth.User)
	}
	return out, args.Int(1), args.Error(2)
}

func (m *MockUserRepository) Update(ctx context.Context, user *auth.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) SoftDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// MockRefreshTokenStore is a mock auth.RefreshTokenStore.
type MockRefreshTokenStore struct {
	mock.Mock
}

// NewMockRefreshTokenStore creates a MockRefreshTokenStore.
func NewMockRefreshTokenStore(t cleanupT) *MockRefreshTokenStore {
	m := &MockRefreshTokenStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRefreshTokenStore) Put(ctx context.Context, token string, session *auth.RefreshSession) error {
	return m.Called(ctx, token, session).Error(0)
}

func (m *MockRefreshTokenStore) Consume(ctx context.Context, token string, now time.Time) (*auth.RefreshSession, error) {
	args := m.Called(ctx, token, now)
	var s *auth.RefreshSession
	if v := args.Get(0); v != nil {
		s = v.(*auth.RefreshSession)
	}
	return s, args.Error(1)
}

func (m *MockRefreshTokenStore) Revoke(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

// MockPasswordHasher is a mock auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a MockPasswordHasher.
func NewMockPasswordHasher(t cleanupT) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(password, hash string) bool {
	return m.Called(password, hash).Bool(0)
}

func (m *MockPasswordHasher) NeedsUpgrade(hash string) bool {
	return m.Called(hash).Bool(0)
}

var (
	_ auth.UserRepository    = (*MockUserRepository)(nil)
	_ auth.RefreshTokenStore = (*MockRefreshTokenStore)(nil)
	_ auth.PasswordHasher    = (*MockPasswordHasher)(nil)
)

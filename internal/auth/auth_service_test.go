// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/internal/auth/mocks"
	"github.com/schoolhub/schoolhub/internal/clock"
	"github.com/schoolhub/schoolhub/pkg/errutil"
)

type recordedEvent struct{ event, outcome string }

type fakeRecorder struct{ events []recordedEvent }

func (r *fakeRecorder) RecordAuthEvent(event, outcome string) {
	r.events = append(r.events, recordedEvent{event, outcome})
}

type serviceFixture struct {
	users    *mocks.MockUserRepository
	hasher   *mocks.MockPasswordHasher
	sessions *auth.MemoryRefreshStore
	clock    *clock.FakeClock
	recorder *fakeRecorder
	svc      *auth.Service
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		users:    mocks.NewMockUserRepository(t),
		hasher:   mocks.NewMockPasswordHasher(t),
		sessions: auth.NewMemoryRefreshStore(),
		clock:    clock.Fake(testNow),
		recorder: &fakeRecorder{},
	}
	svc, err := auth.NewService(auth.ServiceConfig{
		Users:      f.users,
		Sessions:   f.sessions,
		Hasher:     f.hasher,
		Tokens:     newTestIssuer(t),
		Clock:      f.clock,
		RefreshTTL: 24 * time.Hour,
		Recorder:   f.recorder,
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func testUser() *auth.User {
	return &auth.User{
		ID:           7,
		Name:         "Ana",
		Email:        "ana@school.test",
		PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$salt$hash",
		Role:         auth.RoleStudent,
	}
}

func TestNewService_MissingDependencies(t *testing.T) {
	issuer := newTestIssuer(t)
	tests := []struct {
		name        string
		cfg         auth.ServiceConfig
		expectError string
	}{
		{
			name:        "nil users repository",
			cfg:         auth.ServiceConfig{Sessions: auth.NewMemoryRefreshStore(), Hasher: auth.NewArgon2idHasher(), Tokens: issuer},
			expectError: "users repository is required",
		},
		{
			name:        "nil refresh store",
			cfg:         auth.ServiceConfig{Users: mocks.NewMockUserRepository(t), Hasher: auth.NewArgon2idHasher(), Tokens: issuer},
			expectError: "refresh token store is required",
		},
		{
			name:        "nil password hasher",
			cfg:         auth.ServiceConfig{Users: mocks.NewMockUserRepository(t), Sessions: auth.NewMemoryRefreshStore(), Tokens: issuer},
			expectError: "password hasher is required",
		},
		{
			name:        "nil token issuer",
			cfg:         auth.ServiceConfig{Users: mocks.NewMockUserRepository(t), Sessions: auth.NewMemoryRefreshStore(), Hasher: auth.NewArgon2idHasher()},
			expectError: "token issuer is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := auth.NewService(tt.cfg)
			require.Error(t, err)
			assert.Nil(t, svc)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("successful login issues a token pair", func(t *testing.T) {
		f := newServiceFixture(t)
		user := testUser()

		f.users.On("GetByEmail", ctx, "ana@school.test").Return(user, nil)
		f.hasher.On("Verify", "password123", user.PasswordHash).Return(true)
		f.hasher.On("NeedsUpgrade", user.PasswordHash).Return(false)

		pair, err := f.svc.Login(ctx, " Ana@School.test ", "password123")
		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.Equal(t, testNow.Add(30*time.Minute), pair.ExpiresAt)
		assert.Equal(t, user.Identity(), pair.User)
		assert.Equal(t, 1, f.sessions.Len())

		id, err := f.svc.Authenticate(ctx, pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.Identity(), id)
		assert.Equal(t, []recordedEvent{{"login", "success"}}, f.recorder.events)
	})

	t.Run("unknown email still verifies against a dummy hash", func(t *testing.T) {
		f := newServiceFixture(t)

		f.users.On("GetByEmail", ctx, "ghost@school.test").Return(nil, auth.ErrNotFound)
		f.hasher.On("Verify", "password123", mock.AnythingOfType("string")).Return(false)

		pair, err := f.svc.Login(ctx, "ghost@school.test", "password123")
		require.Error(t, err)
		assert.Nil(t, pair)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_CREDENTIALS")
		errutil.AssertErrorKind(t, err, errutil.KindUnauthorized)
		assert.Equal(t, 0, f.sessions.Len())
	})

	t.Run("wrong password and unknown email look identical", func(t *testing.T) {
		f := newServiceFixture(t)
		user := testUser()

		f.users.On("GetByEmail", ctx, "ana@school.test").Return(user, nil)
		f.hasher.On("Verify", "wrong", user.PasswordHash).Return(false)
		f.users.On("GetByEmail", ctx, "ghost@school.test").Return(nil, auth.ErrNotFound)
		f.hasher.On("Verify", "wrong", mock.AnythingOfType("string")).Return(false)

		_, errWrong := f.svc.Login(ctx, "ana@school.test", "wrong")
		_, errGhost := f.svc.Login(ctx, "ghost@school.test", "wrong")
		require.Error(t, errWrong)
		require.Error(t, errGhost)
		assert.Equal(t, errWrong.Error(), errGhost.Error())
		assert.Equal(t, errutil.PublicMessage(errWrong), errutil.PublicMessage(errGhost))
	})

	t.Run("repository failure is internal", func(t *testing.T) {
		f := newServiceFixture(t)
		f.users.On("GetByEmail", ctx, "ana@school.test").Return(nil, errors.New("connection reset"))

		_, err := f.svc.Login(ctx, "ana@school.test", "password123")
		errutil.AssertErrorCode(t, err, "AUTH_LOGIN_FAILED")
		assert.Equal(t, errutil.KindInternal, errutil.KindOf(err))
	})

	t.Run("legacy hash is upgraded on success", func(t *testing.T) {
		f := newServiceFixture(t)
		user := testUser()
		user.PasswordHash = "$2a$10$legacy"

		f.users.On("GetByEmail", ctx, "ana@school.test").Return(user, nil)
		f.hasher.On("Verify", "password123", "$2a$10$legacy").Return(true)
		f.hasher.On("NeedsUpgrade", "$2a$10$legacy").Return(true)
		f.hasher.On("Hash", "password123").Return("$argon2id$new", nil)
		f.users.On("Update", ctx, mock.MatchedBy(func(u *auth.User) bool {
			return u.PasswordHash == "$argon2id$new"
		})).Return(nil)

		_, err := f.svc.Login(ctx, "ana@school.test", "password123")
		require.NoError(t, err)
	})
}

func TestService_Login_UpgradeFailureIsLogged(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	users := mocks.NewMockUserRepository(t)
	hasher := mocks.NewMockPasswordHasher(t)
	svc, err := auth.NewService(auth.ServiceConfig{
		Users:    users,
		Sessions: auth.NewMemoryRefreshStore(),
		Hasher:   hasher,
		Tokens:   newTestIssuer(t),
		Clock:    clock.Fake(testNow),
		Logger:   logger,
	})
	require.NoError(t, err)

	user := testUser()
	users.On("GetByEmail", ctx, "ana@school.test").Return(user, nil)
	hasher.On("Verify", "password123", user.PasswordHash).Return(true)
	hasher.On("NeedsUpgrade", user.PasswordHash).Return(true)
	hasher.On("Hash", "password123").Return("$argon2id$new", nil)
	users.On("Update", ctx, mock.AnythingOfType("*auth.User")).Return(errors.New("disk full"))

	pair, err := svc.Login(ctx, "ana@school.test", "password123")
	require.NoError(t, err, "login must succeed even if the upgrade is not persisted")
	assert.NotNil(t, pair)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "password hash upgrade not persisted", entry["msg"])
	assert.EqualValues(t, 7, entry["user_id"])
	assert.Equal(t, "disk full", entry["error"])
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user and issues tokens", func(t *testing.T) {
		f := newServiceFixture(t)

		f.users.On("GetByEmail", ctx, "new@school.test").Return(nil, auth.ErrNotFound)
		f.hasher.On("Hash", "secret1").Return("$argon2id$hash", nil)
		f.users.On("Create", ctx, mock.MatchedBy(func(u *auth.User) bool {
			return u.Email == "new@school.test" && u.Role == auth.RoleTeacher && u.PasswordHash == "$argon2id$hash"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*auth.User).ID = 42
		}).Return(nil)

		pair, err := f.svc.Register(ctx, auth.RegisterRequest{
			Name: "Neo", Email: "New@School.test", Password: "secret1", Role: "teacher",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(42), pair.User.ID)
		assert.Equal(t, auth.RoleTeacher, pair.User.Role)
		assert.Equal(t, 1, f.sessions.Len())
	})

	t.Run("existing email is a conflict", func(t *testing.T) {
		f := newServiceFixture(t)
		f.users.On("GetByEmail", ctx, "ana@school.test").Return(testUser(), nil)

		_, err := f.svc.Register(ctx, auth.RegisterRequest{
			Name: "Ana", Email: "ANA@school.test", Password: "secret1", Role: "Student",
		})
		errutil.AssertErrorCode(t, err, "AUTH_EMAIL_TAKEN")
		errutil.AssertErrorKind(t, err, errutil.KindConflict)
	})

	t.Run("persistence conflict wins a race", func(t *testing.T) {
		f := newServiceFixture(t)
		f.users.On("GetByEmail", ctx, "ana@school.test").Return(nil, auth.ErrNotFound)
		f.hasher.On("Hash", "secret1").Return("$argon2id$hash", nil)
		f.users.On("Create", ctx, mock.AnythingOfType("*auth.User")).
			Return(errutil.Conflict("USER_EMAIL_TAKEN", "duplicate"))

		_, err := f.svc.Register(ctx, auth.RegisterRequest{
			Name: "Ana", Email: "ana@school.test", Password: "secret1", Role: "Student",
		})
		errutil.AssertErrorCode(t, err, "AUTH_EMAIL_TAKEN")
		assert.Equal(t, 0, f.sessions.Len())
	})

	t.Run("validation errors", func(t *testing.T) {
		f := newServiceFixture(t)
		tests := []struct {
			name string
			req  auth.RegisterRequest
			code string
		}{
			{"bad role", auth.RegisterRequest{Name: "A", Email: "a@b.test", Password: "secret1", Role: "Dean"}, "AUTH_INVALID_ROLE"},
			{"bad email", auth.RegisterRequest{Name: "A", Email: "nope", Password: "secret1", Role: "Admin"}, "AUTH_INVALID_EMAIL"},
			{"short password", auth.RegisterRequest{Name: "A", Email: "a@b.test", Password: "123", Role: "Admin"}, "AUTH_WEAK_PASSWORD"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := f.svc.Register(ctx, tt.req)
				errutil.AssertErrorCode(t, err, tt.code)
			})
		}
	})
}

func loginFixture(t *testing.T, f *serviceFixture) *auth.TokenPair {
	t.Helper()
	ctx := context.Background()
	user := testUser()
	f.users.On("GetByEmail", ctx, "ana@school.test").Return(user, nil)
	f.hasher.On("Verify", "password123", user.PasswordHash).Return(true)
	f.hasher.On("NeedsUpgrade", user.PasswordHash).Return(false)
	pair, err := f.svc.Login(ctx, "ana@school.test", "password123")
	require.NoError(t, err)
	return pair
}

func TestService_RefreshToken(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates the refresh token", func(t *testing.T) {
		f := newServiceFixture(t)
		first := loginFixture(t, f)
		f.users.On("GetByID", ctx, int64(7)).Return(testUser(), nil)

		f.clock.Advance(time.Hour)
		second, err := f.svc.RefreshToken(ctx, first.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
		assert.Equal(t, first.User, second.User)
		assert.Equal(t, testNow.Add(time.Hour+30*time.Minute), second.ExpiresAt)

		_, err = f.svc.RefreshToken(ctx, first.RefreshToken)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_REFRESH_TOKEN")

		identity, err := f.svc.Authenticate(ctx, second.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, first.User, identity)

		third, err := f.svc.RefreshToken(ctx, second.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, second.RefreshToken, third.RefreshToken)
	})

	t.Run("expired token", func(t *testing.T) {
		f := newServiceFixture(t)
		pair := loginFixture(t, f)

		f.clock.Advance(25 * time.Hour)
		_, err := f.svc.RefreshToken(ctx, pair.RefreshToken)
		errutil.AssertErrorCode(t, err, "AUTH_REFRESH_TOKEN_EXPIRED")
		errutil.AssertErrorKind(t, err, errutil.KindUnauthorized)
	})

	t.Run("unknown and empty tokens", func(t *testing.T) {
		f := newServiceFixture(t)
		_, err := f.svc.RefreshToken(ctx, "never-issued")
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_REFRESH_TOKEN")
		_, err = f.svc.RefreshToken(ctx, "")
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_REFRESH_TOKEN")
	})

	t.Run("deleted user cannot refresh", func(t *testing.T) {
		f := newServiceFixture(t)
		pair := loginFixture(t, f)
		f.users.On("GetByID", ctx, int64(7)).Return(nil, auth.ErrNotFound)

		_, err := f.svc.RefreshToken(ctx, pair.RefreshToken)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_REFRESH_TOKEN")
		assert.Equal(t, 0, f.sessions.Len())
	})
}

func TestService_Logout(t *testing.T) {
	ctx := context.Background()

	f := newServiceFixture(t)
	pair := loginFixture(t, f)

	require.NoError(t, f.svc.Logout(ctx, pair.RefreshToken))
	require.NoError(t, f.svc.Logout(ctx, pair.RefreshToken))
	require.NoError(t, f.svc.Logout(ctx, ""))

	_, err := f.svc.RefreshToken(ctx, pair.RefreshToken)
	errutil.AssertErrorCode(t, err, "AUTH_INVALID_REFRESH_TOKEN")
}

func TestService_Logout_StoreFailure(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewMockRefreshTokenStore(t)
	svc, err := auth.NewService(auth.ServiceConfig{
		Users:    mocks.NewMockUserRepository(t),
		Sessions: store,
		Hasher:   mocks.NewMockPasswordHasher(t),
		Tokens:   newTestIssuer(t),
	})
	require.NoError(t, err)

	store.On("Revoke", ctx, "tok").Return(errors.New("redis down"))
	err = svc.Logout(ctx, "tok")
	errutil.AssertErrorCode(t, err, "AUTH_LOGOUT_FAILED")
}

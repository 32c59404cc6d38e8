// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"

	"github.com/schoolhub/schoolhub/internal/clock"
	"github.com/schoolhub/schoolhub/pkg/errutil"
)

// EventRecorder receives authentication outcomes for metrics.
type EventRecorder interface {
	RecordAuthEvent(event, outcome string)
}

type noopRecorder struct{}

func (noopRecorder) RecordAuthEvent(string, string) {}

// ServiceConfig holds the dependencies of Service.
type ServiceConfig struct {
	Users      UserRepository
	Sessions   RefreshTokenStore
	Hasher     PasswordHasher
	Tokens     *TokenIssuer
	Clock      clock.Clock
	RefreshTTL time.Duration
	Logger     *slog.Logger
	Recorder   EventRecorder
}

// Service provides authentication operations.
type Service struct {
	users      UserRepository
	sessions   RefreshTokenStore
	hasher     PasswordHasher
	tokens     *TokenIssuer
	clock      clock.Clock
	refreshTTL time.Duration
	logger     *slog.Logger
	recorder   EventRecorder
}

// NewService creates a new Service. Clock, RefreshTTL, Logger and Recorder
// have defaults; the rest are required.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Users == nil {
		return nil, oops.Code("AUTH_SERVICE_CONFIG").Errorf("users repository is required")
	}
	if cfg.Sessions == nil {
		return nil, oops.Code("AUTH_SERVICE_CONFIG").Errorf("refresh token store is required")
	}
	if cfg.Hasher == nil {
		return nil, oops.Code("AUTH_SERVICE_CONFIG").Errorf("password hasher is required")
	}
	if cfg.Tokens == nil {
		return nil, oops.Code("AUTH_SERVICE_CONFIG").Errorf("token issuer is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Recorder == nil {
		cfg.Recorder = noopRecorder{}
	}
	return &Service{
		users:      cfg.Users,
		sessions:   cfg.Sessions,
		hasher:     cfg.Hasher,
		tokens:     cfg.Tokens,
		clock:      cfg.Clock,
		refreshTTL: cfg.RefreshTTL,
		logger:     cfg.Logger,
		recorder:   cfg.Recorder,
	}, nil
}

// TokenPair is returned by Login, Register and RefreshToken.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         Identity
}

// RegisterRequest carries the self-registration fields.
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// dummyPasswordHash is used when a user doesn't exist to prevent timing attacks.
// This is NOT a real credential - it will never match any password.
//
//nolint:gosec // G101: intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Login authenticates by email and password and opens a refresh session.
// An unknown email and a wrong password produce the same error.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, lookupErr := s.users.GetByEmail(ctx, NormalizeEmail(email))

	var targetHash string
	userExists := false
	switch {
	case lookupErr == nil:
		targetHash = user.PasswordHash
		userExists = true
	case errors.Is(lookupErr, ErrNotFound):
		targetHash = dummyPasswordHash
	default:
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "get user by email").
			Wrap(lookupErr)
	}

	// Always verify so response time does not reveal whether the account exists.
	valid := s.hasher.Verify(password, targetHash)
	if !userExists || !valid {
		s.recorder.RecordAuthEvent("login", "rejected")
		return nil, errInvalidCredentials()
	}

	if s.hasher.NeedsUpgrade(user.PasswordHash) {
		s.upgradeHash(ctx, user, password)
	}

	pair, err := s.issue(ctx, user.Identity())
	if err != nil {
		return nil, oops.With("operation", "login").Wrap(err)
	}
	s.recorder.RecordAuthEvent("login", "success")
	return pair, nil
}

func (s *Service) upgradeHash(ctx context.Context, user *User, password string) {
	newHash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.WarnContext(ctx, "password hash upgrade failed", "user_id", user.ID, "error", err)
		return
	}
	user.PasswordHash = newHash
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.WarnContext(ctx, "password hash upgrade not persisted", "user_id", user.ID, "error", err)
	}
}

// Register creates a new identity and opens a refresh session for it.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*TokenPair, error) {
	role, err := ParseRole(req.Role)
	if err != nil {
		return nil, err
	}
	if err := ValidateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	email := NormalizeEmail(req.Email)
	_, lookupErr := s.users.GetByEmail(ctx, email)
	switch {
	case lookupErr == nil:
		s.recorder.RecordAuthEvent("register", "rejected")
		return nil, ErrEmailTaken
	case !errors.Is(lookupErr, ErrNotFound):
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "get user by email").
			Wrap(lookupErr)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").With("operation", "hash password").Wrap(err)
	}

	user, err := NewUser(req.Name, email, hash, role)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errutil.KindOf(err) == errutil.KindConflict {
			s.recorder.RecordAuthEvent("register", "rejected")
			return nil, ErrEmailTaken
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "create user").
			Wrap(err)
	}

	pair, err := s.issue(ctx, user.Identity())
	if err != nil {
		return nil, oops.With("operation", "register").Wrap(err)
	}
	s.recorder.RecordAuthEvent("register", "success")
	return pair, nil
}

// RefreshToken rotates a refresh token: the presented token is consumed and a
// new access/refresh pair is issued from the stored identity snapshot.
func (s *Service) RefreshToken(ctx context.Context, token string) (*TokenPair, error) {
	if token == "" {
		return nil, errInvalidRefresh()
	}
	now := s.clock.Now()

	session, err := s.sessions.Consume(ctx, token, now)
	switch {
	case errors.Is(err, ErrRefreshNotFound):
		s.recorder.RecordAuthEvent("refresh", "rejected")
		return nil, errInvalidRefresh()
	case errors.Is(err, ErrRefreshExpired):
		s.recorder.RecordAuthEvent("refresh", "expired")
		return nil, errExpiredRefresh()
	case err != nil:
		return nil, oops.Code("AUTH_REFRESH_FAILED").
			With("operation", "consume refresh token").
			Wrap(err)
	}

	// A soft-deleted account loses its sessions.
	if _, err := s.users.GetByID(ctx, session.Identity.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			s.recorder.RecordAuthEvent("refresh", "rejected")
			return nil, errInvalidRefresh()
		}
		return nil, oops.Code("AUTH_REFRESH_FAILED").
			With("operation", "get user by id").
			With("user_id", session.Identity.ID).
			Wrap(err)
	}

	pair, err := s.issue(ctx, session.Identity)
	if err != nil {
		return nil, oops.With("operation", "refresh").Wrap(err)
	}
	s.recorder.RecordAuthEvent("refresh", "success")
	return pair, nil
}

// Logout revokes a refresh token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return oops.Code("AUTH_LOGOUT_FAILED").
			With("operation", "revoke refresh token").
			Wrap(err)
	}
	s.recorder.RecordAuthEvent("logout", "success")
	return nil
}

// Authenticate validates an access token and returns its identity.
func (s *Service) Authenticate(_ context.Context, accessToken string) (Identity, error) {
	return s.tokens.ValidateAccessToken(accessToken, s.clock.Now())
}

// issue creates an access token, a refresh token and the stored session.
func (s *Service) issue(ctx context.Context, identity Identity) (*TokenPair, error) {
	now := s.clock.Now()

	access, expiresAt, err := s.tokens.IssueAccessToken(identity, now)
	if err != nil {
		return nil, err
	}

	refresh, err := s.tokens.IssueRefreshToken()
	if err != nil {
		return nil, err
	}

	session, err := NewRefreshSession(identity, now, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Put(ctx, refresh, session); err != nil {
		return nil, oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "store refresh session").
			With("user_id", identity.ID).
			Wrap(err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
		User:         identity,
	}, nil
}

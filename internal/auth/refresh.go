// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// ErrRefreshCollision is returned by Put when the token is already stored.
var ErrRefreshCollision = errors.New("refresh token already exists")

// RefreshSession is the record stored behind a refresh token.
type RefreshSession struct {
	ID        ulid.ULID
	Identity  Identity
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewRefreshSession creates a validated RefreshSession expiring at now + ttl.
func NewRefreshSession(identity Identity, now time.Time, ttl time.Duration) (*RefreshSession, error) {
	if identity.ID <= 0 {
		return nil, oops.Code("SESSION_INVALID_USER").Errorf("user ID must be positive")
	}
	if !identity.Role.Valid() {
		return nil, oops.Code("SESSION_INVALID_ROLE").With("role", identity.Role).Errorf("invalid role")
	}
	if ttl <= 0 {
		return nil, oops.Code("SESSION_INVALID_EXPIRY").Errorf("ttl must be positive")
	}
	return &RefreshSession{
		ID:        ulid.Make(),
		Identity:  identity,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}

// IsExpiredAt returns true if the session is expired at the given time.
func (s *RefreshSession) IsExpiredAt(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}

// HashRefreshToken computes the SHA256 hash of a refresh token. Stores key
// records by this hash so plaintext tokens are never persisted.
func HashRefreshToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// RefreshTokenStore maps opaque refresh tokens to sessions.
//
// Consume must be linearizable per token: when several callers consume the
// same token concurrently, at most one receives the session.
type RefreshTokenStore interface {
	// Put stores a session. Returns ErrRefreshCollision if the token exists.
	Put(ctx context.Context, token string, session *RefreshSession) error

	// Consume atomically removes and returns the session. Returns
	// ErrRefreshNotFound if absent and ErrRefreshExpired if expired at now;
	// an expired record is removed as well.
	Consume(ctx context.Context, token string, now time.Time) (*RefreshSession, error)

	// Revoke removes the session. Absent tokens are not an error.
	Revoke(ctx context.Context, token string) error
}

// MemoryRefreshStore is a process-local RefreshTokenStore.
type MemoryRefreshStore struct {
	mu       sync.Mutex
	sessions map[string]RefreshSession
}

// NewMemoryRefreshStore creates an empty MemoryRefreshStore.
func NewMemoryRefreshStore() *MemoryRefreshStore {
	return &MemoryRefreshStore{sessions: make(map[string]RefreshSession)}
}

// Put implements RefreshTokenStore.
func (s *MemoryRefreshStore) Put(_ context.Context, token string, session *RefreshSession) error {
	key := HashRefreshToken(token)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[key]; exists {
		return oops.Code("REFRESH_TOKEN_COLLISION").With("session_id", session.ID.String()).Wrap(ErrRefreshCollision)
	}
	s.sessions[key] = *session
	return nil
}

// Consume implements RefreshTokenStore.
func (s *MemoryRefreshStore) Consume(_ context.Context, token string, now time.Time) (*RefreshSession, error) {
	key := HashRefreshToken(token)

	s.mu.Lock()
	session, ok := s.sessions[key]
	if ok {
		delete(s.sessions, key)
	}
	s.mu.Unlock()

	if !ok {
		return nil, ErrRefreshNotFound
	}
	if session.IsExpiredAt(now) {
		return nil, ErrRefreshExpired
	}
	return &session, nil
}

// Revoke implements RefreshTokenStore.
func (s *MemoryRefreshStore) Revoke(_ context.Context, token string) error {
	key := HashRefreshToken(token)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
	return nil
}

// Len returns the number of stored sessions, including expired ones not yet consumed.
func (s *MemoryRefreshStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

var _ RefreshTokenStore = (*MemoryRefreshStore)(nil)

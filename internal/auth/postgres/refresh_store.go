// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/internal/store"
)

// RefreshSessionStore implements auth.RefreshTokenStore on the
// refresh_sessions table. Rows are keyed by the token hash.
type RefreshSessionStore struct {
	db store.DB
}

// NewRefreshSessionStore creates a new RefreshSessionStore.
func NewRefreshSessionStore(db store.DB) *RefreshSessionStore {
	return &RefreshSessionStore{db: db}
}

// Put implements auth.RefreshTokenStore.
func (s *RefreshSessionStore) Put(ctx context.Context, token string, session *auth.RefreshSession) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO refresh_sessions (token_hash, id, user_id, email, name, role, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		auth.HashRefreshToken(token),
		session.ID.String(),
		session.Identity.ID,
		session.Identity.Email,
		session.Identity.Name,
		string(session.Identity.Role),
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		if _, ok := store.UniqueViolation(err); ok {
			return oops.Code("REFRESH_TOKEN_COLLISION").
				With("session_id", session.ID.String()).
				Wrap(auth.ErrRefreshCollision)
		}
		return oops.Code("REFRESH_SESSION_CREATE_FAILED").
			With("operation", "insert refresh session").
			With("user_id", session.Identity.ID).
			Wrap(err)
	}
	return nil
}

// Consume implements auth.RefreshTokenStore. The row lock taken by DELETE
// serializes concurrent consumers of the same token.
func (s *RefreshSessionStore) Consume(ctx context.Context, token string, now time.Time) (*auth.RefreshSession, error) {
	row := s.db.QueryRow(ctx, `
		DELETE FROM refresh_sessions WHERE token_hash = $1
		RETURNING id, user_id, email, name, role, expires_at, created_at`,
		auth.HashRefreshToken(token),
	)

	var (
		idStr   string
		role    string
		session auth.RefreshSession
	)
	err := row.Scan(&idStr, &session.Identity.ID, &session.Identity.Email, &session.Identity.Name,
		&role, &session.ExpiresAt, &session.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, auth.ErrRefreshNotFound
	}
	if err != nil {
		return nil, oops.Code("REFRESH_SESSION_CONSUME_FAILED").
			With("operation", "delete refresh session").
			Wrap(err)
	}

	session.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("REFRESH_SESSION_INVALID_ID").With("id", idStr).Wrap(err)
	}
	session.Identity.Role = auth.Role(role)

	if session.IsExpiredAt(now) {
		return nil, auth.ErrRefreshExpired
	}
	return &session, nil
}

// Revoke implements auth.RefreshTokenStore.
func (s *RefreshSessionStore) Revoke(ctx context.Context, token string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM refresh_sessions WHERE token_hash = $1`, auth.HashRefreshToken(token)); err != nil {
		return oops.Code("REFRESH_SESSION_REVOKE_FAILED").
			With("operation", "delete refresh session").
			Wrap(err)
	}
	return nil
}

var _ auth.RefreshTokenStore = (*RefreshSessionStore)(nil)

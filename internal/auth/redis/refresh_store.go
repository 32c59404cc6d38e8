// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

// Package redis implements auth.RefreshTokenStore on Redis.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/internal/codec"
)

// ExpiredGrace keeps a key alive past its session expiry so Consume can tell
// an expired token from an unknown one.
const ExpiredGrace = time.Hour

const keyPrefix = "schoolhub:refresh:"

// Client is the subset of *goredis.Client the store uses.
type Client interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *goredis.BoolCmd
	GetDel(ctx context.Context, key string) *goredis.StringCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
}

var _ Client = (*goredis.Client)(nil)

// record is the stored value.
type record struct {
	ID        string        `cbor:"1,keyasint"`
	Identity  auth.Identity `cbor:"2,keyasint"`
	ExpiresAt time.Time     `cbor:"3,keyasint"`
	CreatedAt time.Time     `cbor:"4,keyasint"`
}

// RefreshStore implements auth.RefreshTokenStore. Consume uses GETDEL, so at
// most one caller receives a given session.
type RefreshStore struct {
	client Client
}

// NewRefreshStore creates a RefreshStore.
func NewRefreshStore(client Client) *RefreshStore {
	return &RefreshStore{client: client}
}

func refreshKey(token string) string {
	return keyPrefix + auth.HashRefreshToken(token)
}

// Put implements auth.RefreshTokenStore.
func (s *RefreshStore) Put(ctx context.Context, token string, session *auth.RefreshSession) error {
	data, err := codec.Marshal(record{
		ID:        session.ID.String(),
		Identity:  session.Identity,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
	})
	if err != nil {
		return oops.Code("REFRESH_SESSION_ENCODE_FAILED").Wrap(err)
	}

	ttl := session.ExpiresAt.Sub(session.CreatedAt) + ExpiredGrace
	ok, err := s.client.SetNX(ctx, refreshKey(token), data, ttl).Result()
	if err != nil {
		return oops.Code("REFRESH_SESSION_CREATE_FAILED").
			With("operation", "setnx refresh session").
			With("user_id", session.Identity.ID).
			Wrap(err)
	}
	if !ok {
		return oops.Code("REFRESH_TOKEN_COLLISION").
			With("session_id", session.ID.String()).
			Wrap(auth.ErrRefreshCollision)
	}
	return nil
}

// Consume implements auth.RefreshTokenStore.
func (s *RefreshStore) Consume(ctx context.Context, token string, now time.Time) (*auth.RefreshSession, error) {
	value, err := s.client.GetDel(ctx, refreshKey(token)).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, auth.ErrRefreshNotFound
	}
	if err != nil {
		return nil, oops.Code("REFRESH_SESSION_CONSUME_FAILED").
			With("operation", "getdel refresh session").
			Wrap(err)
	}

	var rec record
	if err := codec.Unmarshal([]byte(value), &rec); err != nil {
		return nil, oops.Code("REFRESH_SESSION_DECODE_FAILED").Wrap(err)
	}
	id, err := ulid.Parse(rec.ID)
	if err != nil {
		return nil, oops.Code("REFRESH_SESSION_INVALID_ID").With("id", rec.ID).Wrap(err)
	}

	session := &auth.RefreshSession{
		ID:        id,
		Identity:  rec.Identity,
		ExpiresAt: rec.ExpiresAt,
		CreatedAt: rec.CreatedAt,
	}
	if session.IsExpiredAt(now) {
		return nil, auth.ErrRefreshExpired
	}
	return session, nil
}

// Revoke implements auth.RefreshTokenStore.
func (s *RefreshStore) Revoke(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, refreshKey(token)).Err(); err != nil {
		return oops.Code("REFRESH_SESSION_REVOKE_FAILED").
			With("operation", "del refresh session").
			Wrap(err)
	}
	return nil
}

var _ auth.RefreshTokenStore = (*RefreshStore)(nil)

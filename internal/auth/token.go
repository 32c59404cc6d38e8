// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"

	"github.com/schoolhub/schoolhub/pkg/errutil"
)

// Token configuration defaults.
const (
	RefreshTokenBytes = 32
	MinSecretLength   = 32

	DefaultAccessTTL  = 60 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Access token validation failures.
var (
	ErrAccessTokenExpired = errutil.Unauthorized("AUTH_TOKEN_EXPIRED", "Access token has expired")
	ErrAccessTokenInvalid = errutil.Unauthorized("AUTH_TOKEN_INVALID", "Invalid access token")
)

// TokenConfig configures a TokenIssuer.
type TokenConfig struct {
	Secret    []byte
	Issuer    string
	AccessTTL time.Duration
	// Random is the source for refresh tokens. Defaults to crypto/rand.
	Random io.Reader
}

// AccessClaims are the JWT claims of an access token.
type AccessClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and validates access tokens and mints refresh tokens.
type TokenIssuer struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
	random    io.Reader
}

// NewTokenIssuer creates a TokenIssuer.
func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, oops.Code("AUTH_SECRET_TOO_SHORT").
			With("min", MinSecretLength).
			Errorf("signing secret must be at least %d bytes", MinSecretLength)
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.Random == nil {
		cfg.Random = rand.Reader
	}
	return &TokenIssuer{
		secret:    cfg.Secret,
		issuer:    cfg.Issuer,
		accessTTL: cfg.AccessTTL,
		random:    cfg.Random,
	}, nil
}

// AccessTTL returns the configured access token lifetime.
func (t *TokenIssuer) AccessTTL() time.Duration {
	return t.accessTTL
}

// IssueAccessToken signs an HS256 token for the identity, expiring at now + AccessTTL.
func (t *TokenIssuer) IssueAccessToken(id Identity, now time.Time) (string, time.Time, error) {
	claims := AccessClaims{
		UserID: id.ID,
		Email:  id.Email,
		Name:   id.Name,
		Role:   id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id.ID, 10),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.accessTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, oops.Code("AUTH_TOKEN_SIGN_FAILED").
			With("user_id", id.ID).
			Wrap(err)
	}
	return signed, claims.ExpiresAt.Time, nil
}

// IssueRefreshToken returns an opaque, unguessable token.
func (t *TokenIssuer) IssueRefreshToken() (string, error) {
	buf := make([]byte, RefreshTokenBytes)
	if _, err := io.ReadFull(t.random, buf); err != nil {
		return "", oops.Code("AUTH_REFRESH_GENERATE_FAILED").
			With("requested_bytes", RefreshTokenBytes).
			Wrap(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ValidateAccessToken verifies the signature, issuer and expiry of token
// against now and returns the embedded identity.
func (t *TokenIssuer) ValidateAccessToken(token string, now time.Time) (Identity, error) {
	if token == "" {
		return Identity{}, ErrAccessTokenInvalid
	}
	claims := &AccessClaims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrAccessTokenExpired
		}
		return Identity{}, ErrAccessTokenInvalid
	}
	if !parsed.Valid || !claims.Role.Valid() || claims.UserID <= 0 {
		return Identity{}, ErrAccessTokenInvalid
	}
	return Identity{ID: claims.UserID, Email: claims.Email, Name: claims.Name, Role: claims.Role}, nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	// Hash produces a salted one-way hash of the password.
	Hash(password string) (string, error)

	// Verify reports whether password matches hash. A malformed hash never
	// matches.
	Verify(password, hash string) bool

	// NeedsUpgrade reports whether hash was produced by an older algorithm
	// and should be recomputed on the next successful login.
	NeedsUpgrade(hash string) bool
}

const argon2idPrefix = "$argon2id$"

// argon2Params are the cost parameters of one argon2id hash together with
// its salt and derived key.
type argon2Params struct {
	memory  uint32 // KiB
	passes  uint32
	lanes   uint8
	salt    []byte
	derived []byte
}

// defaultArgon2 follows the OWASP minimum for argon2id.
var defaultArgon2 = argon2Params{memory: 64 * 1024, passes: 1, lanes: 4}

const (
	saltBytes = 16
	keyBytes  = 32
)

func (p argon2Params) derive(password string, keyLen uint32) []byte {
	return argon2.IDKey([]byte(password), p.salt, p.passes, p.memory, p.lanes, keyLen)
}

// String renders the PHC string form:
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>.
func (p argon2Params) String() string {
	enc := base64.RawStdEncoding
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2idPrefix, argon2.Version, p.memory, p.passes, p.lanes,
		enc.EncodeToString(p.salt), enc.EncodeToString(p.derived))
}

// Upper bounds on parameters read from a stored hash. Memory is in KiB.
const (
	maxArgon2Memory = 1 << 20
	maxArgon2Passes = 10
)

func malformedHash(reason string, args ...any) error {
	return oops.Code("AUTH_INVALID_HASH").Errorf(reason, args...)
}

// parseArgon2id reads a PHC string produced by String.
func parseArgon2id(encoded string) (argon2Params, error) {
	var p argon2Params
	rest, ok := strings.CutPrefix(encoded, argon2idPrefix)
	if !ok {
		return p, malformedHash("not an argon2id hash")
	}
	fields := strings.Split(rest, "$")
	if len(fields) != 4 {
		return p, malformedHash("expected 4 fields after the algorithm, got %d", len(fields))
	}

	var version int
	if _, err := fmt.Sscanf(fields[0], "v=%d", &version); err != nil {
		return p, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}
	var lanes uint32
	if _, err := fmt.Sscanf(fields[1], "m=%d,t=%d,p=%d", &p.memory, &p.passes, &lanes); err != nil {
		return p, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}
	switch {
	case lanes < 1 || lanes > 255:
		return p, malformedHash("parallelism %d out of range", lanes)
	case p.passes < 1 || p.passes > maxArgon2Passes:
		return p, malformedHash("passes %d out of range", p.passes)
	case p.memory < 8*uint32(lanes) || p.memory > maxArgon2Memory:
		return p, malformedHash("memory %d KiB out of range", p.memory)
	}
	p.lanes = uint8(lanes)

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(fields[2]); err != nil {
		return p, oops.Code("AUTH_INVALID_HASH").With("field", "salt").Wrap(err)
	}
	if p.derived, err = base64.RawStdEncoding.DecodeString(fields[3]); err != nil {
		return p, oops.Code("AUTH_INVALID_HASH").With("field", "key").Wrap(err)
	}
	if n := len(p.derived); n == 0 || n > 1024 {
		return p, malformedHash("key length %d out of range", n)
	}
	return p, nil
}

// Argon2idHasher hashes with argon2id. Hashes carried over from the bcrypt
// era still verify and are reported by NeedsUpgrade.
type Argon2idHasher struct{}

// NewArgon2idHasher creates an Argon2idHasher.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{}
}

// Hash produces an argon2id PHC string for password.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	p := defaultArgon2
	p.salt = make([]byte, saltBytes)
	if _, err := rand.Read(p.salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}
	p.derived = p.derive(password, keyBytes)
	return p.String(), nil
}

// Verify compares in constant time.
func (h *Argon2idHasher) Verify(password, hash string) bool {
	if isBcrypt(hash) {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	}
	p, err := parseArgon2id(hash)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(p.derive(password, uint32(len(p.derived))), p.derived) == 1
}

// NeedsUpgrade is true for anything that is not argon2id.
func (h *Argon2idHasher) NeedsUpgrade(hash string) bool {
	return !strings.HasPrefix(hash, argon2idPrefix)
}

func isBcrypt(hash string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(hash, prefix) {
			return true
		}
	}
	return false
}

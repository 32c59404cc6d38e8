// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package errutil

import (
	"errors"
	"net/http"
)

// Kind classifies an error for callers. Business rule failures carry one of the
// named kinds; anything else is KindInternal.
type Kind int

// Error kinds.
const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindInvalid
	KindConflict
	KindUnauthorized
)

var kindNames = map[Kind]string{
	KindInternal:     "internal",
	KindNotFound:     "not_found",
	KindForbidden:    "forbidden",
	KindInvalid:      "invalid",
	KindConflict:     "conflict",
	KindUnauthorized: "unauthorized",
}

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// HTTPStatus maps a kind to its transport status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindInvalid, KindConflict:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// GenericMessage is shown to callers for unclassified failures.
const GenericMessage = "An unexpected error occurred."

// Error is a tagged business error. The message is safe to show to callers.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches another *Error with the same kind and code. A target with an empty
// code matches any error of its kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

// NotFound reports a referenced entity that is absent or soft-deleted.
func NotFound(code, msg string) *Error { return newError(KindNotFound, code, msg) }

// Forbidden reports an actor lacking the required role or ownership.
func Forbidden(code, msg string) *Error { return newError(KindForbidden, code, msg) }

// Invalid reports a state or parameter that violates a business rule.
func Invalid(code, msg string) *Error { return newError(KindInvalid, code, msg) }

// Conflict reports a uniqueness violation.
func Conflict(code, msg string) *Error { return newError(KindConflict, code, msg) }

// Unauthorized reports bad credentials or an unusable token.
func Unauthorized(code, msg string) *Error { return newError(KindUnauthorized, code, msg) }

// Sentinels for errors.Is checks by kind.
var (
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrInvalid      = &Error{Kind: KindInvalid}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
)

// AsError returns the first tagged business error in err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindInternal for untagged errors.
func KindOf(err error) Kind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return KindInternal
}

// PublicMessage returns the message a caller may see. Internal errors never
// expose their detail.
func PublicMessage(err error) string {
	if e, ok := AsError(err); ok && e.Kind != KindInternal {
		return e.Message
	}
	return GenericMessage
}

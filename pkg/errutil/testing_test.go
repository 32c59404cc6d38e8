// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package errutil_test

import (
	"testing"

	"github.com/samber/oops"

	"github.com/schoolhub/schoolhub/pkg/errutil"
)

func TestAssertErrorCode_MatchingCode(t *testing.T) {
	err := oops.Code("MY_CODE").Errorf("test error")
	errutil.AssertErrorCode(t, err, "MY_CODE")
}

func TestAssertErrorCode_BusinessError(t *testing.T) {
	err := errutil.NotFound("CLASS_NOT_FOUND", "Class not found")
	errutil.AssertErrorCode(t, err, "CLASS_NOT_FOUND")
	errutil.AssertErrorKind(t, err, errutil.KindNotFound)
}

func TestAssertErrorContext_MatchingKeyValue(t *testing.T) {
	err := oops.With("user_id", "123").Errorf("test error")
	errutil.AssertErrorContext(t, err, "user_id", "123")
}

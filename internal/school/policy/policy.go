// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

// Package policy holds the authorization and business rules of the school
// domain as pure functions over entity snapshots.
//
// A nil entity argument means the lookup found nothing (absent or
// soft-deleted). Every operation evaluates its checks left to right and
// returns the first failure, so when several rules are violated the result
// is deterministic. Failures are *errutil.Error values; callers surface them
// unchanged.
package policy

import (
	"time"

	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/internal/clock"
	"github.com/schoolhub/schoolhub/internal/school"
)

// Check is a deferred rule.
type Check func() error

// All runs checks in order and returns the first failure.
func All(checks ...Check) error {
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func requireRole(actor school.Actor, role auth.Role, failure error) Check {
	return func() error {
		if !actor.Is(role) {
			return failure
		}
		return nil
	}
}

func requireTrue(ok bool, failure error) Check {
	return func() error {
		if !ok {
			return failure
		}
		return nil
	}
}

// classOwned checks that the class exists and is taught by the actor.
func classOwned(actor school.Actor, class *school.Class, forbidden error) Check {
	return func() error {
		if class == nil || class.IsDeleted {
			return ErrClassNotFound
		}
		if class.TeacherID != actor.ID {
			return forbidden
		}
		return nil
	}
}

// studentTarget checks that a looked-up user exists and is a student.
func studentTarget(user *auth.User, notStudent error) Check {
	return func() error {
		if user == nil || user.IsDeleted {
			return ErrStudentNotFound
		}
		if user.Role != auth.RoleStudent {
			return notStudent
		}
		return nil
	}
}

// notPastDue reports false when due falls on a day before now's day.
func notPastDue(due, now time.Time) bool {
	return !due.Before(clock.StartOfDay(now))
}

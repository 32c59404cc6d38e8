// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package policy

import (
	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/internal/school"
)

// SendNotification checks the requested recipient role.
func SendNotification(actor school.Actor, recipientRole auth.Role) error {
	return All(
		requireRole(actor, auth.RoleTeacher, ErrOnlyTeachersNotify),
		requireTrue(recipientRole == auth.RoleStudent, ErrRecipientRole),
	)
}

// NotifyClass checks fanning a notification out to a class roster.
func NotifyClass(actor school.Actor, class *school.Class) error {
	return classOwned(actor, class, ErrNotificationForbidden)()
}

// Recipients checks every explicitly addressed user in request order. A nil
// entry is an id that did not resolve.
func Recipients(users []*auth.User) error {
	for _, u := range users {
		if err := recipient(u)(); err != nil {
			return err
		}
	}
	return nil
}

func recipient(u *auth.User) Check {
	return func() error {
		if u == nil || u.IsDeleted {
			return ErrRecipientNotFound
		}
		if u.Role != auth.RoleStudent {
			return ErrRecipientNotStudent
		}
		return nil
	}
}

// ReadNotification checks a student opening n and reports whether the read
// should be recorded. Broadcasts are readable by every student but are never
// marked read.
func ReadNotification(actor school.Actor, n *school.Notification) (markRead bool, err error) {
	err = All(
		requireTrue(n != nil, ErrNotificationNotFound),
		func() error {
			if n.RecipientRole != auth.RoleStudent || !actor.Is(auth.RoleStudent) {
				return ErrNotForStudents
			}
			if n.RecipientID != nil && *n.RecipientID != actor.ID {
				return ErrNotificationNotYours
			}
			return nil
		},
	)
	if err != nil {
		return false, err
	}
	return n.RecipientID != nil && !n.IsRead, nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package workflow

import (
	"context"
	"strings"

	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/internal/school"
	"github.com/schoolhub/schoolhub/internal/school/policy"
)

// SendInput is a notification request. The target is the first of ClassID,
// StudentIDs or RecipientID that is set; with none set the notification is
// broadcast to every student.
type SendInput struct {
	Title         string
	Message       string
	RecipientRole string
	RecipientID   *int64
	StudentIDs    []int64
	ClassID       *int64
}

// NotificationFanout sends and reads notifications.
type NotificationFanout struct {
	base
}

// NewNotificationFanout creates a NotificationFanout.
func NewNotificationFanout(d Deps) *NotificationFanout {
	return &NotificationFanout{base: newBase(d)}
}

// Send resolves the target students and stores one notification per
// recipient in a single batch.
func (w *NotificationFanout) Send(ctx context.Context, actor school.Actor, in SendInput) ([]NotificationView, error) {
	vs, err := w.send(ctx, actor, in)
	return vs, w.finish(ctx, "notification.send", err)
}

func (w *NotificationFanout) send(ctx context.Context, actor school.Actor, in SendInput) ([]NotificationView, error) {
	role, err := auth.ParseRole(in.RecipientRole)
	if err != nil {
		return nil, policy.ErrRecipientRole
	}
	if err := policy.SendNotification(actor, role); err != nil {
		return nil, err
	}

	recipients, broadcast, err := w.targets(ctx, actor, in)
	if err != nil {
		return nil, err
	}

	title, message := strings.TrimSpace(in.Title), strings.TrimSpace(in.Message)
	var batch []*school.Notification
	if broadcast {
		batch = append(batch, &school.Notification{
			Title: title, Message: message, RecipientRole: role, CreatedByTeacherID: actor.ID,
		})
	}
	for _, u := range recipients {
		id := u.ID
		batch = append(batch, &school.Notification{
			Title: title, Message: message, RecipientRole: role, RecipientID: &id, CreatedByTeacherID: actor.ID,
		})
	}
	if err := w.Notifications.CreateBatch(ctx, batch); err != nil {
		return nil, err
	}

	return w.views(ctx, batch)
}

// targets resolves the recipients of in, deduplicated in request order.
func (w *NotificationFanout) targets(ctx context.Context, actor school.Actor, in SendInput) ([]*auth.User, bool, error) {
	var ids []int64
	switch {
	case in.ClassID != nil:
		class, err := w.class(ctx, *in.ClassID)
		if err != nil {
			return nil, false, err
		}
		if err := policy.NotifyClass(actor, class); err != nil {
			return nil, false, err
		}
		roster, err := w.Enrollments.ListByClass(ctx, class.ID)
		if err != nil {
			return nil, false, err
		}
		for _, e := range roster {
			ids = append(ids, e.StudentID)
		}
		users, err := w.users(ctx, ids...)
		if err != nil {
			return nil, false, err
		}
		// Students deleted since enrolling are skipped.
		var out []*auth.User
		for _, id := range dedupe(ids) {
			if u, ok := users[id]; ok && u.Role == auth.RoleStudent {
				out = append(out, u)
			}
		}
		if len(out) == 0 {
			return nil, false, policy.ErrNoRecipients
		}
		return out, false, nil
	case len(in.StudentIDs) > 0:
		ids = dedupe(in.StudentIDs)
	case in.RecipientID != nil:
		ids = []int64{*in.RecipientID}
	default:
		return nil, true, nil
	}

	users, err := w.users(ctx, ids...)
	if err != nil {
		return nil, false, err
	}
	resolved := make([]*auth.User, len(ids))
	for i, id := range ids {
		resolved[i] = users[id]
	}
	if err := policy.Recipients(resolved); err != nil {
		return nil, false, err
	}
	return resolved, false, nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ListSent lists the notifications the acting teacher created.
func (w *NotificationFanout) ListSent(ctx context.Context, actor school.Actor) ([]NotificationView, error) {
	ns, err := w.Notifications.ListByCreator(ctx, actor.ID)
	if err != nil {
		return nil, w.finish(ctx, "notification.sent", err)
	}
	vs, err := w.views(ctx, ns)
	return vs, w.finish(ctx, "notification.sent", err)
}

// ListMine lists the notifications addressed to the acting student or
// broadcast to students.
func (w *NotificationFanout) ListMine(ctx context.Context, actor school.Actor) ([]NotificationView, error) {
	ns, err := w.Notifications.ListForStudent(ctx, actor.ID)
	if err != nil {
		return nil, w.finish(ctx, "notification.mine", err)
	}
	vs, err := w.views(ctx, ns)
	return vs, w.finish(ctx, "notification.mine", err)
}

// Read returns one notification, marking it read when it is addressed to
// the actor.
func (w *NotificationFanout) Read(ctx context.Context, actor school.Actor, id int64) (*NotificationView, error) {
	v, err := w.read(ctx, actor, id)
	return v, w.finish(ctx, "notification.read", err)
}

func (w *NotificationFanout) read(ctx context.Context, actor school.Actor, id int64) (*NotificationView, error) {
	n, err := w.Notifications.Get(ctx, id)
	if n, err = optional(n, err, school.ErrNotFound); err != nil {
		return nil, err
	}
	markRead, err := policy.ReadNotification(actor, n)
	if err != nil {
		return nil, err
	}
	if markRead {
		if err := w.Notifications.MarkRead(ctx, n.ID); err != nil {
			return nil, persisted(err, policy.ErrNotificationNotFound)
		}
		n.IsRead = true
	}
	vs, err := w.views(ctx, []*school.Notification{n})
	if err != nil {
		return nil, err
	}
	return &vs[0], nil
}

func (w *NotificationFanout) views(ctx context.Context, ns []*school.Notification) ([]NotificationView, error) {
	ids := make([]int64, 0, 2*len(ns))
	for _, n := range ns {
		ids = append(ids, n.CreatedByTeacherID)
		if n.RecipientID != nil {
			ids = append(ids, *n.RecipientID)
		}
	}
	users, err := w.users(ctx, ids...)
	if err != nil {
		return nil, err
	}
	out := make([]NotificationView, 0, len(ns))
	for _, n := range ns {
		out = append(out, notificationView(n, users))
	}
	return out, nil
}

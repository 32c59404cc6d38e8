// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/internal/school"
	"github.com/schoolhub/schoolhub/internal/store"
)

const notificationColumns = `id, title, message, recipient_role, recipient_id, created_by_teacher_id, is_read, created_at`

// NotificationRepository implements school.NotificationRepository.
type NotificationRepository struct {
	db store.DB
}

// NewNotificationRepository creates a NotificationRepository.
func NewNotificationRepository(db store.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateBatch inserts ns with a single INSERT over unnested arrays and fills
// in each ID and CreatedAt in input order.
func (r *NotificationRepository) CreateBatch(ctx context.Context, ns []*school.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	var (
		titles     = make([]string, len(ns))
		messages   = make([]string, len(ns))
		roles      = make([]string, len(ns))
		recipients = make([]*int64, len(ns))
		creators   = make([]int64, len(ns))
	)
	for i, n := range ns {
		titles[i] = n.Title
		messages[i] = n.Message
		roles[i] = string(n.RecipientRole)
		recipients[i] = n.RecipientID
		creators[i] = n.CreatedByTeacherID
	}

	rows, err := r.db.Query(ctx, `
		INSERT INTO notifications (title, message, recipient_role, recipient_id, created_by_teacher_id)
		SELECT t, m, rr, rid, c
		FROM unnest($1::text[], $2::text[], $3::text[], $4::bigint[], $5::bigint[]) WITH ORDINALITY AS u(t, m, rr, rid, c, ord)
		ORDER BY ord
		RETURNING id, created_at`,
		titles, messages, roles, recipients, creators,
	)
	if err != nil {
		return oops.Code("NOTIFICATION_CREATE_FAILED").With("count", len(ns)).Wrap(err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		if i >= len(ns) {
			return oops.Code("NOTIFICATION_CREATE_FAILED").With("count", len(ns)).Errorf("insert returned more rows than requested")
		}
		if err := rows.Scan(&ns[i].ID, &ns[i].CreatedAt); err != nil {
			return oops.Code("NOTIFICATION_CREATE_FAILED").With("count", len(ns)).Wrap(err)
		}
		i++
	}
	if err := rows.Err(); err != nil {
		return oops.Code("NOTIFICATION_CREATE_FAILED").With("count", len(ns)).Wrap(err)
	}
	return nil
}

func (r *NotificationRepository) Get(ctx context.Context, id int64) (*school.Notification, error) {
	return getOne(ctx, r.db, scanNotification, "NOTIFICATION_NOT_FOUND", "NOTIFICATION_GET_FAILED", id,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
}

func (r *NotificationRepository) ListByCreator(ctx context.Context, teacherID int64) ([]*school.Notification, error) {
	return queryAll(ctx, r.db, scanNotification, "NOTIFICATION_LIST_FAILED", "list notifications by creator",
		`SELECT `+notificationColumns+` FROM notifications WHERE created_by_teacher_id = $1 ORDER BY created_at DESC, id DESC`, teacherID)
}

func (r *NotificationRepository) ListForStudent(ctx context.Context, studentID int64) ([]*school.Notification, error) {
	return queryAll(ctx, r.db, scanNotification, "NOTIFICATION_LIST_FAILED", "list notifications for student",
		`SELECT `+notificationColumns+` FROM notifications
		WHERE recipient_id = $1 OR (recipient_id IS NULL AND recipient_role = $2)
		ORDER BY created_at DESC, id DESC`, studentID, string(auth.RoleStudent))
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id int64) error {
	return execOne(ctx, r.db, "NOTIFICATION_NOT_FOUND", "NOTIFICATION_UPDATE_FAILED", "mark notification read", id,
		`UPDATE notifications SET is_read = true WHERE id = $1`, id)
}

func scanNotification(row pgx.Row) (*school.Notification, error) {
	var (
		n    school.Notification
		role string
	)
	if err := row.Scan(&n.ID, &n.Title, &n.Message, &role, &n.RecipientID, &n.CreatedByTeacherID, &n.IsRead, &n.CreatedAt); err != nil {
		return nil, err //nolint:wrapcheck // callers add lookup context
	}
	n.RecipientRole = auth.Role(role)
	return &n, nil
}

var _ school.NotificationRepository = (*NotificationRepository)(nil)

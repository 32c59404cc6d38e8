// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/internal/school/policy"
)

func TestNotificationFanout_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("class roster fans out in one batch", func(t *testing.T) {
		f := newFixture(t)
		teacher := f.user(t, "Teacher", auth.RoleTeacher)
		alice := f.user(t, "Alice", auth.RoleStudent)
		bruno := f.user(t, "Bruno", auth.RoleStudent)
		gone := f.user(t, "Gone", auth.RoleStudent)
		class := f.class(t, teacher, "Algebra", true)
		f.enroll(t, alice, class)
		f.enroll(t, bruno, class)
		f.enroll(t, gone, class)
		f.db.users[gone.ID].IsDeleted = true

		vs, err := NewNotificationFanout(f.deps).Send(ctx, f.actor(teacher), SendInput{
			Title: "Quiz", Message: "Friday", RecipientRole: "student", ClassID: &class.ID,
		})
		require.NoError(t, err)
		require.Len(t, vs, 2)
		assert.Equal(t, "Alice", vs[0].RecipientName)
		assert.Equal(t, "Bruno", vs[1].RecipientName)
		assert.Equal(t, auth.RoleStudent, vs[0].RecipientRole)
		assert.Equal(t, "Teacher", vs[0].CreatedByTeacherName)
		assert.Equal(t, 1, f.db.batches)
	})

	t.Run("explicit students are deduplicated", func(t *testing.T) {
		f := newFixture(t)
		teacher := f.user(t, "Teacher", auth.RoleTeacher)
		alice := f.user(t, "Alice", auth.RoleStudent)
		bruno := f.user(t, "Bruno", auth.RoleStudent)

		vs, err := NewNotificationFanout(f.deps).Send(ctx, f.actor(teacher), SendInput{
			Title: "Hi", Message: "There", RecipientRole: "Student", StudentIDs: []int64{bruno.ID, alice.ID, bruno.ID},
		})
		require.NoError(t, err)
		require.Len(t, vs, 2)
		assert.Equal(t, bruno.ID, *vs[0].RecipientID)
		assert.Equal(t, alice.ID, *vs[1].RecipientID)
	})

	t.Run("no target broadcasts to every student", func(t *testing.T) {
		f := newFixture(t)
		teacher := f.user(t, "Teacher", auth.RoleTeacher)

		vs, err := NewNotificationFanout(f.deps).Send(ctx, f.actor(teacher), SendInput{
			Title: "Holiday", Message: "No school Monday", RecipientRole: "Student",
		})
		require.NoError(t, err)
		require.Len(t, vs, 1)
		assert.Nil(t, vs[0].RecipientID)
	})

	tests := []struct {
		name  string
		input func(t *testing.T, f *fixture, class int64, teacher *auth.User) SendInput
		actor func(teacher, student *auth.User) *auth.User
		want  error
	}{
		{
			name: "recipient role must be Student",
			input: func(*testing.T, *fixture, int64, *auth.User) SendInput {
				return SendInput{Title: "x", Message: "y", RecipientRole: "Teacher"}
			},
			want: policy.ErrRecipientRole,
		},
		{
			name: "unknown role is the same rejection",
			input: func(*testing.T, *fixture, int64, *auth.User) SendInput {
				return SendInput{Title: "x", Message: "y", RecipientRole: "Parent"}
			},
			want: policy.ErrRecipientRole,
		},
		{
			name: "only teachers send",
			input: func(*testing.T, *fixture, int64, *auth.User) SendInput {
				return SendInput{Title: "x", Message: "y", RecipientRole: "Student"}
			},
			actor: func(_, student *auth.User) *auth.User { return student },
			want:  policy.ErrOnlyTeachersNotify,
		},
		{
			name: "recipient must be a student",
			input: func(_ *testing.T, _ *fixture, _ int64, teacher *auth.User) SendInput {
				return SendInput{Title: "x", Message: "y", RecipientRole: "Student", RecipientID: &teacher.ID}
			},
			want: policy.ErrRecipientNotStudent,
		},
		{
			name: "recipient must exist",
			input: func(*testing.T, *fixture, int64, *auth.User) SendInput {
				return SendInput{Title: "x", Message: "y", RecipientRole: "Student", StudentIDs: []int64{404}}
			},
			want: policy.ErrRecipientNotFound,
		},
		{
			name: "empty roster",
			input: func(_ *testing.T, _ *fixture, class int64, _ *auth.User) SendInput {
				return SendInput{Title: "x", Message: "y", RecipientRole: "Student", ClassID: &class}
			},
			want: policy.ErrNoRecipients,
		},
		{
			name: "class must be the sender's",
			input: func(t *testing.T, f *fixture, _ int64, _ *auth.User) SendInput {
				other := f.class(t, f.user(t, "Other", auth.RoleTeacher), "Other Class", true)
				return SendInput{Title: "x", Message: "y", RecipientRole: "Student", ClassID: &other.ID}
			},
			want: policy.ErrNotificationForbidden,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			teacher := f.user(t, "Teacher", auth.RoleTeacher)
			student := f.user(t, "Student", auth.RoleStudent)
			class := f.class(t, teacher, "Empty", true)
			sender := teacher
			if tt.actor != nil {
				sender = tt.actor(teacher, student)
			}

			_, err := NewNotificationFanout(f.deps).Send(ctx, f.actor(sender), tt.input(t, f, class.ID, teacher))
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, f.db.batches)
		})
	}
}

func TestNotificationFanout_Read(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	teacher := f.user(t, "Teacher", auth.RoleTeacher)
	alice := f.user(t, "Alice", auth.RoleStudent)
	bruno := f.user(t, "Bruno", auth.RoleStudent)
	w := NewNotificationFanout(f.deps)

	direct, err := w.Send(ctx, f.actor(teacher), SendInput{Title: "Direct", Message: "m", RecipientRole: "Student", RecipientID: &alice.ID})
	require.NoError(t, err)
	broadcast, err := w.Send(ctx, f.actor(teacher), SendInput{Title: "All", Message: "m", RecipientRole: "Student"})
	require.NoError(t, err)

	t.Run("addressed recipient marks it read", func(t *testing.T) {
		v, err := w.Read(ctx, f.actor(alice), direct[0].ID)
		require.NoError(t, err)
		assert.True(t, v.IsRead)
		assert.True(t, f.db.notifications[direct[0].ID].IsRead)
	})

	t.Run("someone else's notification is forbidden", func(t *testing.T) {
		_, err := w.Read(ctx, f.actor(bruno), direct[0].ID)
		assert.ErrorIs(t, err, policy.ErrNotificationNotYours)
	})

	t.Run("broadcast is readable but stays unread", func(t *testing.T) {
		v, err := w.Read(ctx, f.actor(bruno), broadcast[0].ID)
		require.NoError(t, err)
		assert.False(t, v.IsRead)
		assert.False(t, f.db.notifications[broadcast[0].ID].IsRead)
	})

	t.Run("teachers are not recipients", func(t *testing.T) {
		_, err := w.Read(ctx, f.actor(teacher), broadcast[0].ID)
		assert.ErrorIs(t, err, policy.ErrNotForStudents)
	})

	t.Run("missing notification", func(t *testing.T) {
		_, err := w.Read(ctx, f.actor(alice), 999)
		assert.ErrorIs(t, err, policy.ErrNotificationNotFound)
	})

	t.Run("listings", func(t *testing.T) {
		aliceSees, err := w.ListMine(ctx, f.actor(alice))
		require.NoError(t, err)
		assert.Len(t, aliceSees, 2)

		brunoSees, err := w.ListMine(ctx, f.actor(bruno))
		require.NoError(t, err)
		require.Len(t, brunoSees, 1)
		assert.Equal(t, "All", brunoSees[0].Title)

		sent, err := w.ListSent(ctx, f.actor(teacher))
		require.NoError(t, err)
		assert.Len(t, sent, 2)
	})
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

// Package workflow orchestrates the school operations: each call loads what
// the rules need, runs the policy checks in order, persists one aggregate
// write and returns a view.
package workflow

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"

	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/internal/clock"
	"github.com/schoolhub/schoolhub/internal/school"
	"github.com/schoolhub/schoolhub/pkg/errutil"
)

// RejectionRecorder counts business rejections by operation and kind.
type RejectionRecorder interface {
	RecordRejection(operation, kind string)
}

type noopRecorder struct{}

func (noopRecorder) RecordRejection(string, string) {}

// Deps are the collaborators shared by every workflow.
type Deps struct {
	Users         auth.UserRepository
	Departments   school.DepartmentRepository
	Courses       school.CourseRepository
	Classes       school.ClassRepository
	Enrollments   school.EnrollmentRepository
	Attendance    school.AttendanceRepository
	Assignments   school.AssignmentRepository
	Submissions   school.SubmissionRepository
	Notifications school.NotificationRepository

	Clock    clock.Clock
	Logger   *slog.Logger
	Recorder RejectionRecorder
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = clock.Real()
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Recorder == nil {
		d.Recorder = noopRecorder{}
	}
	return d
}

// base carries Deps and the helpers every workflow shares.
type base struct {
	Deps
}

func newBase(d Deps) base {
	return base{Deps: d.withDefaults()}
}

// finish logs and counts the outcome of operation and returns err unchanged.
func (b base) finish(ctx context.Context, operation string, err error) error {
	if err == nil {
		return nil
	}
	if e, ok := errutil.AsError(err); ok {
		b.Logger.DebugContext(ctx, "request rejected",
			"operation", operation, "kind", e.Kind.String(), "code", e.Code)
		b.Recorder.RecordRejection(operation, e.Kind.String())
		return err
	}
	errutil.LogError(b.Logger, operation+" failed", err)
	return err
}

// optional turns a repository not-found into a nil snapshot.
func optional[T any](v *T, err error, notFound error) (*T, error) {
	if errors.Is(err, notFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (b base) class(ctx context.Context, id int64) (*school.Class, error) {
	c, err := b.Classes.Get(ctx, id)
	return optional(c, err, school.ErrNotFound)
}

func (b base) course(ctx context.Context, id int64) (*school.Course, error) {
	c, err := b.Courses.Get(ctx, id)
	return optional(c, err, school.ErrNotFound)
}

func (b base) user(ctx context.Context, id int64) (*auth.User, error) {
	u, err := b.Users.GetByID(ctx, id)
	return optional(u, err, auth.ErrNotFound)
}

func (b base) assignment(ctx context.Context, id int64) (*school.Assignment, error) {
	a, err := b.Assignments.Get(ctx, id)
	return optional(a, err, school.ErrNotFound)
}

func (b base) submission(ctx context.Context, id int64) (*school.Submission, error) {
	s, err := b.Submissions.Get(ctx, id)
	return optional(s, err, school.ErrNotFound)
}

// users resolves ids to live users. Missing ids are absent from the map.
func (b base) users(ctx context.Context, ids ...int64) (map[int64]*auth.User, error) {
	seen := make(map[int64]struct{}, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == 0 {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	users, err := b.Users.GetByIDs(ctx, unique)
	if err != nil {
		return nil, oops.With("operation", "resolve users").Wrap(err)
	}
	return users, nil
}

// courses resolves ids to live courses. Missing ids are absent from the map.
func (b base) courses(ctx context.Context, ids ...int64) (map[int64]*school.Course, error) {
	out := make(map[int64]*school.Course, len(ids))
	for _, id := range ids {
		if _, ok := out[id]; ok {
			continue
		}
		c, err := b.course(ctx, id)
		if err != nil {
			return nil, err
		}
		if c != nil {
			out[id] = c
		}
	}
	return out, nil
}

// classes resolves ids to live classes. Missing ids are absent from the map.
func (b base) classes(ctx context.Context, ids ...int64) (map[int64]*school.Class, error) {
	out := make(map[int64]*school.Class, len(ids))
	for _, id := range ids {
		if _, ok := out[id]; ok {
			continue
		}
		c, err := b.class(ctx, id)
		if err != nil {
			return nil, err
		}
		if c != nil {
			out[id] = c
		}
	}
	return out, nil
}

// persisted maps a not-found from a write to the business error for the
// record that vanished between load and write.
func persisted(err error, gone *errutil.Error) error {
	if errors.Is(err, school.ErrNotFound) || errors.Is(err, auth.ErrNotFound) {
		return gone
	}
	return err
}

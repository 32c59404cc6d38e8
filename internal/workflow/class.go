// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/schoolhub/schoolhub/internal/clock"
	"github.com/schoolhub/schoolhub/internal/school"
	"github.com/schoolhub/schoolhub/internal/school/policy"
)

// ClassInput is the editable part of a class.
type ClassInput struct {
	Name      string
	CourseID  int64
	Semester  string
	StartDate time.Time
	EndDate   time.Time
}

// ClassWorkflow manages a teacher's classes.
type ClassWorkflow struct {
	base
}

// NewClassWorkflow creates a ClassWorkflow.
func NewClassWorkflow(d Deps) *ClassWorkflow {
	return &ClassWorkflow{base: newBase(d)}
}

// Create opens a new active class taught by actor.
func (w *ClassWorkflow) Create(ctx context.Context, actor school.Actor, in ClassInput) (*ClassView, error) {
	v, err := w.create(ctx, actor, in)
	return v, w.finish(ctx, "class.create", err)
}

func (w *ClassWorkflow) create(ctx context.Context, actor school.Actor, in ClassInput) (*ClassView, error) {
	course, err := w.course(ctx, in.CourseID)
	if err != nil {
		return nil, err
	}
	start, end := clock.StartOfDay(in.StartDate), clock.StartOfDay(in.EndDate)
	if err := policy.CreateClass(actor, course, start, end); err != nil {
		return nil, err
	}

	c := &school.Class{
		Name:      strings.TrimSpace(in.Name),
		CourseID:  course.ID,
		TeacherID: actor.ID,
		Semester:  strings.TrimSpace(in.Semester),
		StartDate: start,
		EndDate:   end,
		IsActive:  true,
	}
	if err := w.Classes.Create(ctx, c); err != nil {
		return nil, err
	}
	return w.view(ctx, c)
}

// Update edits a class the actor teaches.
func (w *ClassWorkflow) Update(ctx context.Context, actor school.Actor, id int64, in ClassInput) (*ClassView, error) {
	v, err := w.update(ctx, actor, id, in)
	return v, w.finish(ctx, "class.update", err)
}

func (w *ClassWorkflow) update(ctx context.Context, actor school.Actor, id int64, in ClassInput) (*ClassView, error) {
	c, err := w.class(ctx, id)
	if err != nil {
		return nil, err
	}
	course, err := w.course(ctx, in.CourseID)
	if err != nil {
		return nil, err
	}
	start, end := clock.StartOfDay(in.StartDate), clock.StartOfDay(in.EndDate)
	if err := policy.UpdateClass(actor, c, course, start, end); err != nil {
		return nil, err
	}

	c.Name = strings.TrimSpace(in.Name)
	c.CourseID = course.ID
	c.Semester = strings.TrimSpace(in.Semester)
	c.StartDate, c.EndDate = start, end
	if err := w.Classes.Update(ctx, c); err != nil {
		return nil, persisted(err, policy.ErrClassNotFound)
	}
	return w.view(ctx, c)
}

// SetActive activates or deactivates a class the actor teaches.
func (w *ClassWorkflow) SetActive(ctx context.Context, actor school.Actor, id int64, active bool) (*ClassView, error) {
	op := "class.deactivate"
	if active {
		op = "class.activate"
	}
	v, err := w.setActive(ctx, actor, id, active)
	return v, w.finish(ctx, op, err)
}

func (w *ClassWorkflow) setActive(ctx context.Context, actor school.Actor, id int64, active bool) (*ClassView, error) {
	c, err := w.class(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.ManageClass(actor, c); err != nil {
		return nil, err
	}
	if c.IsActive != active {
		c.IsActive = active
		if err := w.Classes.Update(ctx, c); err != nil {
			return nil, persisted(err, policy.ErrClassNotFound)
		}
	}
	return w.view(ctx, c)
}

// GetOwn returns a class the actor teaches.
func (w *ClassWorkflow) GetOwn(ctx context.Context, actor school.Actor, id int64) (*ClassView, error) {
	v, err := w.getOwn(ctx, actor, id)
	return v, w.finish(ctx, "class.get", err)
}

func (w *ClassWorkflow) getOwn(ctx context.Context, actor school.Actor, id int64) (*ClassView, error) {
	c, err := w.class(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.ManageClass(actor, c); err != nil {
		return nil, err
	}
	return w.view(ctx, c)
}

// ListOwn returns the classes the actor teaches.
func (w *ClassWorkflow) ListOwn(ctx context.Context, actor school.Actor) ([]ClassView, error) {
	classes, err := w.Classes.ListByTeacher(ctx, actor.ID)
	if err != nil {
		return nil, w.finish(ctx, "class.list", err)
	}
	vs, err := w.views(ctx, classes)
	return vs, w.finish(ctx, "class.list", err)
}

// Get returns any class. Used by administrators.
func (w *ClassWorkflow) Get(ctx context.Context, id int64) (*ClassView, error) {
	c, err := w.class(ctx, id)
	if err == nil && c == nil {
		err = policy.ErrClassNotFound
	}
	if err != nil {
		return nil, w.finish(ctx, "class.get", err)
	}
	v, err := w.view(ctx, c)
	return v, w.finish(ctx, "class.get", err)
}

// List returns every class. Used by administrators.
func (w *ClassWorkflow) List(ctx context.Context) ([]ClassView, error) {
	classes, err := w.Classes.List(ctx)
	if err != nil {
		return nil, w.finish(ctx, "class.list", err)
	}
	vs, err := w.views(ctx, classes)
	return vs, w.finish(ctx, "class.list", err)
}

func (w *ClassWorkflow) view(ctx context.Context, c *school.Class) (*ClassView, error) {
	vs, err := w.views(ctx, []*school.Class{c})
	if err != nil {
		return nil, err
	}
	return &vs[0], nil
}

func (w *ClassWorkflow) views(ctx context.Context, classes []*school.Class) ([]ClassView, error) {
	courseIDs := make([]int64, 0, len(classes))
	teacherIDs := make([]int64, 0, len(classes))
	for _, c := range classes {
		courseIDs = append(courseIDs, c.CourseID)
		teacherIDs = append(teacherIDs, c.TeacherID)
	}
	courses, err := w.courses(ctx, courseIDs...)
	if err != nil {
		return nil, err
	}
	users, err := w.users(ctx, teacherIDs...)
	if err != nil {
		return nil, err
	}
	out := make([]ClassView, 0, len(classes))
	for _, c := range classes {
		out = append(out, classView(c, courses, users))
	}
	return out, nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package workflow

import (
	"context"

	"github.com/schoolhub/schoolhub/internal/school"
	"github.com/schoolhub/schoolhub/internal/school/policy"
)

// EnrollmentWorkflow manages class rosters.
type EnrollmentWorkflow struct {
	base
}

// NewEnrollmentWorkflow creates an EnrollmentWorkflow.
func NewEnrollmentWorkflow(d Deps) *EnrollmentWorkflow {
	return &EnrollmentWorkflow{base: newBase(d)}
}

// Enroll adds a student to a class the actor teaches.
func (w *EnrollmentWorkflow) Enroll(ctx context.Context, actor school.Actor, studentID, classID int64) (*EnrollmentView, error) {
	v, err := w.enroll(ctx, actor, studentID, classID)
	return v, w.finish(ctx, "enrollment.create", err)
}

func (w *EnrollmentWorkflow) enroll(ctx context.Context, actor school.Actor, studentID, classID int64) (*EnrollmentView, error) {
	class, err := w.class(ctx, classID)
	if err != nil {
		return nil, err
	}
	student, err := w.user(ctx, studentID)
	if err != nil {
		return nil, err
	}
	enrolled, err := w.Enrollments.Exists(ctx, studentID, classID)
	if err != nil {
		return nil, err
	}
	if err := policy.EnrollStudent(actor, class, student, enrolled); err != nil {
		return nil, err
	}

	e := &school.Enrollment{StudentID: student.ID, ClassID: class.ID}
	if err := w.Enrollments.Create(ctx, e); err != nil {
		return nil, err
	}
	return &EnrollmentView{
		ID:             e.ID,
		StudentID:      student.ID,
		StudentName:    student.Name,
		StudentEmail:   student.Email,
		ClassID:        class.ID,
		ClassName:      class.Name,
		EnrollmentDate: e.EnrollmentDate,
	}, nil
}

// Roster lists the students enrolled in a class the actor teaches.
func (w *EnrollmentWorkflow) Roster(ctx context.Context, actor school.Actor, classID int64) ([]EnrollmentView, error) {
	vs, err := w.roster(ctx, actor, classID)
	return vs, w.finish(ctx, "enrollment.roster", err)
}

func (w *EnrollmentWorkflow) roster(ctx context.Context, actor school.Actor, classID int64) ([]EnrollmentView, error) {
	class, err := w.class(ctx, classID)
	if err != nil {
		return nil, err
	}
	if err := policy.ViewRoster(actor, class); err != nil {
		return nil, err
	}
	enrollments, err := w.Enrollments.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(enrollments))
	for _, e := range enrollments {
		ids = append(ids, e.StudentID)
	}
	users, err := w.users(ctx, ids...)
	if err != nil {
		return nil, err
	}

	out := make([]EnrollmentView, 0, len(enrollments))
	for _, e := range enrollments {
		out = append(out, EnrollmentView{
			ID:             e.ID,
			StudentID:      e.StudentID,
			StudentName:    nameOf(users, e.StudentID),
			StudentEmail:   emailOf(users, e.StudentID),
			ClassID:        class.ID,
			ClassName:      class.Name,
			EnrollmentDate: e.EnrollmentDate,
		})
	}
	return out, nil
}

// MyClasses lists the live classes the acting student is enrolled in.
func (w *EnrollmentWorkflow) MyClasses(ctx context.Context, actor school.Actor) ([]EnrolledClassView, error) {
	vs, err := w.myClasses(ctx, actor)
	return vs, w.finish(ctx, "enrollment.mine", err)
}

func (w *EnrollmentWorkflow) myClasses(ctx context.Context, actor school.Actor) ([]EnrolledClassView, error) {
	enrollments, err := w.Enrollments.ListByStudent(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	classIDs := make([]int64, 0, len(enrollments))
	for _, e := range enrollments {
		classIDs = append(classIDs, e.ClassID)
	}
	classes, err := w.classes(ctx, classIDs...)
	if err != nil {
		return nil, err
	}
	var courseIDs, teacherIDs []int64
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

	out := make([]EnrolledClassView, 0, len(enrollments))
	for _, e := range enrollments {
		c, ok := classes[e.ClassID]
		if !ok {
			continue
		}
		v := EnrolledClassView{
			EnrollmentID:   e.ID,
			EnrollmentDate: e.EnrollmentDate,
			ClassID:        c.ID,
			ClassName:      c.Name,
			Semester:       c.Semester,
			StartDate:      c.StartDate,
			EndDate:        c.EndDate,
			IsActive:       c.IsActive,
			CourseID:       c.CourseID,
			TeacherID:      c.TeacherID,
			TeacherName:    nameOf(users, c.TeacherID),
			TeacherEmail:   emailOf(users, c.TeacherID),
		}
		if course, ok := courses[c.CourseID]; ok {
			v.CourseName, v.CourseCode = course.Name, course.Code
		}
		out = append(out, v)
	}
	return out, nil
}

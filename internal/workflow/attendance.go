// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package workflow

import (
	"context"
	"time"

	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/internal/clock"
	"github.com/schoolhub/schoolhub/internal/export"
	"github.com/schoolhub/schoolhub/internal/school"
	"github.com/schoolhub/schoolhub/internal/school/policy"
)

// MarkInput records one student's attendance on one day.
type MarkInput struct {
	ClassID   int64
	StudentID int64
	Date      time.Time
	Status    string
}

// Export is a rendered report.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AttendanceWorkflow records and reports attendance.
type AttendanceWorkflow struct {
	base
}

// NewAttendanceWorkflow creates an AttendanceWorkflow.
func NewAttendanceWorkflow(d Deps) *AttendanceWorkflow {
	return &AttendanceWorkflow{base: newBase(d)}
}

// Mark records an attendance mark. A zero Date means today.
func (w *AttendanceWorkflow) Mark(ctx context.Context, actor school.Actor, in MarkInput) (*AttendanceView, error) {
	v, err := w.mark(ctx, actor, in)
	return v, w.finish(ctx, "attendance.mark", err)
}

func (w *AttendanceWorkflow) mark(ctx context.Context, actor school.Actor, in MarkInput) (*AttendanceView, error) {
	status, err := school.ParseAttendanceStatus(in.Status)
	if err != nil {
		return nil, err
	}
	day := in.Date
	if day.IsZero() {
		day = w.Clock.Now()
	}
	day = clock.StartOfDay(day)

	class, err := w.class(ctx, in.ClassID)
	if err != nil {
		return nil, err
	}
	student, err := w.user(ctx, in.StudentID)
	if err != nil {
		return nil, err
	}
	enrolled, err := w.Enrollments.Exists(ctx, in.StudentID, in.ClassID)
	if err != nil {
		return nil, err
	}
	marked, err := w.Attendance.Exists(ctx, in.ClassID, in.StudentID, day)
	if err != nil {
		return nil, err
	}
	if err := policy.MarkAttendance(actor, class, student, enrolled, marked); err != nil {
		return nil, err
	}

	m := &school.AttendanceMark{
		ClassID:           class.ID,
		StudentID:         student.ID,
		Date:              day,
		Status:            status,
		MarkedByTeacherID: actor.ID,
	}
	if err := w.Attendance.Create(ctx, m); err != nil {
		return nil, err
	}
	users, err := w.users(ctx, student.ID, actor.ID)
	if err != nil {
		return nil, err
	}
	v := attendanceView(m, class.Name, users)
	return &v, nil
}

// ClassHistory lists the marks of a class the actor teaches, newest first.
func (w *AttendanceWorkflow) ClassHistory(ctx context.Context, actor school.Actor, classID int64) ([]AttendanceView, error) {
	vs, _, err := w.classHistory(ctx, actor, classID)
	return vs, w.finish(ctx, "attendance.history", err)
}

// ExportClass renders the class history as an xlsx workbook.
func (w *AttendanceWorkflow) ExportClass(ctx context.Context, actor school.Actor, classID int64) (*Export, error) {
	out, err := w.exportClass(ctx, actor, classID)
	return out, w.finish(ctx, "attendance.export", err)
}

func (w *AttendanceWorkflow) exportClass(ctx context.Context, actor school.Actor, classID int64) (*Export, error) {
	vs, class, err := w.classHistory(ctx, actor, classID)
	if err != nil {
		return nil, err
	}
	rows := make([]export.AttendanceRow, 0, len(vs))
	for _, v := range vs {
		rows = append(rows, export.AttendanceRow{
			Date:         v.Date,
			StudentName:  v.StudentName,
			StudentEmail: v.StudentEmail,
			Status:       string(v.Status),
			MarkedBy:     v.MarkedByTeacherName,
		})
	}
	data, err := export.AttendanceWorkbook(rows)
	if err != nil {
		return nil, err
	}
	return &Export{
		Filename:    export.AttendanceFilename(class.Name, w.Clock.Now()),
		ContentType: export.ContentType,
		Data:        data,
	}, nil
}

func (w *AttendanceWorkflow) classHistory(ctx context.Context, actor school.Actor, classID int64) ([]AttendanceView, *school.Class, error) {
	class, err := w.class(ctx, classID)
	if err != nil {
		return nil, nil, err
	}
	if err := policy.ViewAttendance(actor, class); err != nil {
		return nil, nil, err
	}
	marks, err := w.Attendance.ListByClass(ctx, classID)
	if err != nil {
		return nil, nil, err
	}
	vs, err := w.views(ctx, marks, map[int64]*school.Class{class.ID: class})
	return vs, class, err
}

// Mine lists the acting student's marks across classes, newest first.
func (w *AttendanceWorkflow) Mine(ctx context.Context, actor school.Actor) ([]AttendanceView, error) {
	vs, err := w.mine(ctx, actor)
	return vs, w.finish(ctx, "attendance.mine", err)
}

// MineForClass lists the acting student's marks in one class, newest first.
func (w *AttendanceWorkflow) MineForClass(ctx context.Context, actor school.Actor, classID int64) ([]AttendanceView, error) {
	vs, err := w.mineForClass(ctx, actor, classID)
	return vs, w.finish(ctx, "attendance.mine_class", err)
}

func (w *AttendanceWorkflow) mineForClass(ctx context.Context, actor school.Actor, classID int64) ([]AttendanceView, error) {
	class, err := w.class(ctx, classID)
	if err != nil {
		return nil, err
	}
	if err := policy.ViewOwnAttendance(class); err != nil {
		return nil, err
	}
	marks, err := w.Attendance.ListByStudent(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	kept := make([]*school.AttendanceMark, 0, len(marks))
	for _, m := range marks {
		if m.ClassID == classID {
			kept = append(kept, m)
		}
	}
	return w.views(ctx, kept, map[int64]*school.Class{class.ID: class})
}

func (w *AttendanceWorkflow) mine(ctx context.Context, actor school.Actor) ([]AttendanceView, error) {
	marks, err := w.Attendance.ListByStudent(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	classIDs := make([]int64, 0, len(marks))
	for _, m := range marks {
		classIDs = append(classIDs, m.ClassID)
	}
	classes, err := w.classes(ctx, classIDs...)
	if err != nil {
		return nil, err
	}
	return w.views(ctx, marks, classes)
}

func (w *AttendanceWorkflow) views(ctx context.Context, marks []*school.AttendanceMark, classes map[int64]*school.Class) ([]AttendanceView, error) {
	ids := make([]int64, 0, 2*len(marks))
	for _, m := range marks {
		ids = append(ids, m.StudentID, m.MarkedByTeacherID)
	}
	users, err := w.users(ctx, ids...)
	if err != nil {
		return nil, err
	}
	out := make([]AttendanceView, 0, len(marks))
	for _, m := range marks {
		var className string
		if c, ok := classes[m.ClassID]; ok {
			className = c.Name
		}
		out = append(out, attendanceView(m, className, users))
	}
	return out, nil
}

func attendanceView(m *school.AttendanceMark, className string, users map[int64]*auth.User) AttendanceView {
	return AttendanceView{
		ID:                  m.ID,
		ClassID:             m.ClassID,
		ClassName:           className,
		StudentID:           m.StudentID,
		StudentName:         nameOf(users, m.StudentID),
		StudentEmail:        emailOf(users, m.StudentID),
		Date:                m.Date,
		Status:              m.Status,
		MarkedByTeacherID:   m.MarkedByTeacherID,
		MarkedByTeacherName: nameOf(users, m.MarkedByTeacherID),
		CreatedAt:           m.CreatedAt,
	}
}

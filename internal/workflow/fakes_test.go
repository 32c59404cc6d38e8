// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package workflow

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/internal/clock"
	"github.com/schoolhub/schoolhub/internal/school"
	"github.com/schoolhub/schoolhub/internal/school/policy"
	"github.com/schoolhub/schoolhub/pkg/errutil"
)

// memDB is an in-memory backing for every repository the workflows use.
// Reads return copies so workflows cannot mutate stored rows by accident.
type memDB struct {
	clock  clock.Clock
	nextID int64

	users         map[int64]*auth.User
	departments   map[int64]*school.Department
	courses       map[int64]*school.Course
	classes       map[int64]*school.Class
	enrollments   []*school.Enrollment
	marks         []*school.AttendanceMark
	assignments   map[int64]*school.Assignment
	submissions   map[int64]*school.Submission
	notifications map[int64]*school.Notification

	batches int
}

func newMemDB(c clock.Clock) *memDB {
	return &memDB{
		clock:         c,
		users:         map[int64]*auth.User{},
		departments:   map[int64]*school.Department{},
		courses:       map[int64]*school.Course{},
		classes:       map[int64]*school.Class{},
		assignments:   map[int64]*school.Assignment{},
		submissions:   map[int64]*school.Submission{},
		notifications: map[int64]*school.Notification{},
	}
}

func (db *memDB) id() int64 {
	db.nextID++
	return db.nextID
}

func clone[T any](v *T) *T {
	cp := *v
	return &cp
}

type memUsers struct{ db *memDB }

func (r memUsers) Create(_ context.Context, u *auth.User) error {
	for _, existing := range r.db.users {
		if !existing.IsDeleted && strings.EqualFold(existing.Email, u.Email) {
			return errutil.Conflict("USER_EMAIL_TAKEN", "User with this email already exists")
		}
	}
	u.ID = r.db.id()
	u.CreatedAt = r.db.clock.Now()
	r.db.users[u.ID] = clone(u)
	return nil
}

func (r memUsers) GetByID(_ context.Context, id int64) (*auth.User, error) {
	u, ok := r.db.users[id]
	if !ok || u.IsDeleted {
		return nil, auth.ErrNotFound
	}
	return clone(u), nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, u := range r.db.users {
		if !u.IsDeleted && strings.EqualFold(u.Email, email) {
			return clone(u), nil
		}
	}
	return nil, auth.ErrNotFound
}

func (r memUsers) GetByIDs(_ context.Context, ids []int64) (map[int64]*auth.User, error) {
	out := make(map[int64]*auth.User, len(ids))
	for _, id := range ids {
		if u, ok := r.db.users[id]; ok && !u.IsDeleted {
			out[id] = clone(u)
		}
	}
	return out, nil
}

func (r memUsers) live() []*auth.User {
	var out []*auth.User
	for _, u := range r.db.users {
		if !u.IsDeleted {
			out = append(out, clone(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memUsers) List(context.Context) ([]*auth.User, error) {
	return r.live(), nil
}

func (r memUsers) ListByRole(_ context.Context, role auth.Role) ([]*auth.User, error) {
	var out []*auth.User
	for _, u := range r.live() {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memUsers) ListPage(ctx context.Context, role auth.Role, page, pageSize int) ([]*auth.User, int, error) {
	all, _ := r.ListByRole(ctx, role)
	start := min((page-1)*pageSize, len(all))
	end := min(start+pageSize, len(all))
	return all[start:end], len(all), nil
}

func (r memUsers) Update(_ context.Context, u *auth.User) error {
	stored, ok := r.db.users[u.ID]
	if !ok || stored.IsDeleted {
		return auth.ErrNotFound
	}
	now := r.db.clock.Now()
	stored.Name, stored.Role, stored.PasswordHash, stored.UpdatedAt = u.Name, u.Role, u.PasswordHash, &now
	return nil
}

func (r memUsers) SoftDelete(_ context.Context, id int64) error {
	u, ok := r.db.users[id]
	if !ok || u.IsDeleted {
		return auth.ErrNotFound
	}
	u.IsDeleted = true
	return nil
}

type memDepartments struct{ db *memDB }

func (r memDepartments) Create(_ context.Context, d *school.Department) error {
	d.ID = r.db.id()
	d.CreatedAt = r.db.clock.Now()
	r.db.departments[d.ID] = clone(d)
	return nil
}

func (r memDepartments) Get(_ context.Context, id int64) (*school.Department, error) {
	d, ok := r.db.departments[id]
	if !ok || d.IsDeleted {
		return nil, school.ErrNotFound
	}
	return clone(d), nil
}

func (r memDepartments) List(context.Context) ([]*school.Department, error) {
	var out []*school.Department
	for _, d := range r.db.departments {
		if !d.IsDeleted {
			out = append(out, clone(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memDepartments) NameTaken(_ context.Context, name string, excludeID int64) (bool, error) {
	for _, d := range r.db.departments {
		if !d.IsDeleted && d.ID != excludeID && strings.EqualFold(d.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (r memDepartments) Update(_ context.Context, d *school.Department) error {
	if stored, ok := r.db.departments[d.ID]; !ok || stored.IsDeleted {
		return school.ErrNotFound
	}
	r.db.departments[d.ID] = clone(d)
	return nil
}

func (r memDepartments) SoftDelete(_ context.Context, id int64) error {
	d, ok := r.db.departments[id]
	if !ok || d.IsDeleted {
		return school.ErrNotFound
	}
	d.IsDeleted = true
	return nil
}

type memCourses struct {
	db    *memDB
	lists int
}

func (r *memCourses) Create(_ context.Context, c *school.Course) error {
	c.ID = r.db.id()
	c.CreatedAt = r.db.clock.Now()
	r.db.courses[c.ID] = clone(c)
	return nil
}

func (r *memCourses) Get(_ context.Context, id int64) (*school.Course, error) {
	c, ok := r.db.courses[id]
	if !ok || c.IsDeleted {
		return nil, school.ErrNotFound
	}
	return clone(c), nil
}

func (r *memCourses) List(context.Context) ([]*school.Course, error) {
	r.lists++
	var out []*school.Course
	for _, c := range r.db.courses {
		if !c.IsDeleted {
			out = append(out, clone(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memCourses) CodeTaken(_ context.Context, departmentID int64, code string, excludeID int64) (bool, error) {
	for _, c := range r.db.courses {
		if !c.IsDeleted && c.ID != excludeID && c.DepartmentID == departmentID && strings.EqualFold(c.Code, code) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memCourses) Update(_ context.Context, c *school.Course) error {
	if stored, ok := r.db.courses[c.ID]; !ok || stored.IsDeleted {
		return school.ErrNotFound
	}
	r.db.courses[c.ID] = clone(c)
	return nil
}

func (r *memCourses) SoftDelete(_ context.Context, id int64) error {
	c, ok := r.db.courses[id]
	if !ok || c.IsDeleted {
		return school.ErrNotFound
	}
	c.IsDeleted = true
	return nil
}

type memClasses struct{ db *memDB }

func (r memClasses) Create(_ context.Context, c *school.Class) error {
	c.ID = r.db.id()
	c.CreatedAt = r.db.clock.Now()
	r.db.classes[c.ID] = clone(c)
	return nil
}

func (r memClasses) Get(_ context.Context, id int64) (*school.Class, error) {
	c, ok := r.db.classes[id]
	if !ok || c.IsDeleted {
		return nil, school.ErrNotFound
	}
	return clone(c), nil
}

func (r memClasses) List(context.Context) ([]*school.Class, error) {
	var out []*school.Class
	for _, c := range r.db.classes {
		if !c.IsDeleted {
			out = append(out, clone(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memClasses) ListByTeacher(ctx context.Context, teacherID int64) ([]*school.Class, error) {
	all, _ := r.List(ctx)
	return slices.DeleteFunc(all, func(c *school.Class) bool { return c.TeacherID != teacherID }), nil
}

func (r memClasses) Update(_ context.Context, c *school.Class) error {
	if stored, ok := r.db.classes[c.ID]; !ok || stored.IsDeleted {
		return school.ErrNotFound
	}
	now := r.db.clock.Now()
	c.UpdatedAt = &now
	r.db.classes[c.ID] = clone(c)
	return nil
}

type memEnrollments struct{ db *memDB }

func (r memEnrollments) Create(_ context.Context, e *school.Enrollment) error {
	if ok, _ := r.Exists(context.Background(), e.StudentID, e.ClassID); ok {
		return policy.ErrAlreadyEnrolled
	}
	e.ID = r.db.id()
	e.EnrollmentDate = r.db.clock.Now()
	r.db.enrollments = append(r.db.enrollments, clone(e))
	return nil
}

func (r memEnrollments) Exists(_ context.Context, studentID, classID int64) (bool, error) {
	for _, e := range r.db.enrollments {
		if e.StudentID == studentID && e.ClassID == classID {
			return true, nil
		}
	}
	return false, nil
}

func (r memEnrollments) ListByClass(_ context.Context, classID int64) ([]*school.Enrollment, error) {
	var out []*school.Enrollment
	for _, e := range r.db.enrollments {
		if e.ClassID == classID {
			out = append(out, clone(e))
		}
	}
	return out, nil
}

func (r memEnrollments) ListByStudent(_ context.Context, studentID int64) ([]*school.Enrollment, error) {
	var out []*school.Enrollment
	for _, e := range r.db.enrollments {
		if e.StudentID == studentID {
			out = append(out, clone(e))
		}
	}
	return out, nil
}

type memAttendance struct{ db *memDB }

func (r memAttendance) Create(ctx context.Context, m *school.AttendanceMark) error {
	if ok, _ := r.Exists(ctx, m.ClassID, m.StudentID, m.Date); ok {
		return policy.ErrAttendanceExists
	}
	m.ID = r.db.id()
	m.CreatedAt = r.db.clock.Now()
	r.db.marks = append(r.db.marks, clone(m))
	return nil
}

func (r memAttendance) Exists(_ context.Context, classID, studentID int64, date time.Time) (bool, error) {
	day := clock.StartOfDay(date)
	for _, m := range r.db.marks {
		if m.ClassID == classID && m.StudentID == studentID && m.Date.Equal(day) {
			return true, nil
		}
	}
	return false, nil
}

func (r memAttendance) list(keep func(*school.AttendanceMark) bool) []*school.AttendanceMark {
	var out []*school.AttendanceMark
	for _, m := range r.db.marks {
		if keep(m) {
			out = append(out, clone(m))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func (r memAttendance) ListByClass(_ context.Context, classID int64) ([]*school.AttendanceMark, error) {
	return r.list(func(m *school.AttendanceMark) bool { return m.ClassID == classID }), nil
}

func (r memAttendance) ListByStudent(_ context.Context, studentID int64) ([]*school.AttendanceMark, error) {
	return r.list(func(m *school.AttendanceMark) bool { return m.StudentID == studentID }), nil
}

type memAssignments struct{ db *memDB }

func (r memAssignments) Create(_ context.Context, a *school.Assignment) error {
	a.ID = r.db.id()
	a.CreatedAt = r.db.clock.Now()
	r.db.assignments[a.ID] = clone(a)
	return nil
}

func (r memAssignments) Get(_ context.Context, id int64) (*school.Assignment, error) {
	a, ok := r.db.assignments[id]
	if !ok {
		return nil, school.ErrNotFound
	}
	return clone(a), nil
}

func (r memAssignments) ListByClass(_ context.Context, classID int64) ([]*school.Assignment, error) {
	var out []*school.Assignment
	for _, a := range r.db.assignments {
		if a.ClassID == classID {
			out = append(out, clone(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

type memSubmissions struct{ db *memDB }

func (r memSubmissions) Create(ctx context.Context, s *school.Submission) error {
	if _, err := r.Find(ctx, s.AssignmentID, s.StudentID); err == nil {
		return policy.ErrAlreadySubmitted
	}
	s.ID = r.db.id()
	s.SubmittedDate = r.db.clock.Now()
	r.db.submissions[s.ID] = clone(s)
	return nil
}

func (r memSubmissions) Get(_ context.Context, id int64) (*school.Submission, error) {
	s, ok := r.db.submissions[id]
	if !ok {
		return nil, school.ErrNotFound
	}
	return clone(s), nil
}

func (r memSubmissions) Find(_ context.Context, assignmentID, studentID int64) (*school.Submission, error) {
	for _, s := range r.db.submissions {
		if s.AssignmentID == assignmentID && s.StudentID == studentID {
			return clone(s), nil
		}
	}
	return nil, school.ErrNotFound
}

func (r memSubmissions) list(keep func(*school.Submission) bool) []*school.Submission {
	var out []*school.Submission
	for _, s := range r.db.submissions {
		if keep(s) {
			out = append(out, clone(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r memSubmissions) ListByAssignment(_ context.Context, assignmentID int64) ([]*school.Submission, error) {
	return r.list(func(s *school.Submission) bool { return s.AssignmentID == assignmentID }), nil
}

func (r memSubmissions) ListByStudent(_ context.Context, studentID int64) ([]*school.Submission, error) {
	return r.list(func(s *school.Submission) bool { return s.StudentID == studentID }), nil
}

func (r memSubmissions) Grade(_ context.Context, s *school.Submission) error {
	stored, ok := r.db.submissions[s.ID]
	if !ok {
		return school.ErrNotFound
	}
	if stored.IsGraded() {
		return policy.ErrAlreadyGraded
	}
	stored.Grade, stored.Remarks = s.Grade, s.Remarks
	stored.GradedByTeacherID, stored.GradedDate = s.GradedByTeacherID, s.GradedDate
	return nil
}

type memNotifications struct{ db *memDB }

func (r memNotifications) CreateBatch(_ context.Context, ns []*school.Notification) error {
	r.db.batches++
	for _, n := range ns {
		n.ID = r.db.id()
		n.CreatedAt = r.db.clock.Now()
		r.db.notifications[n.ID] = clone(n)
	}
	return nil
}

func (r memNotifications) Get(_ context.Context, id int64) (*school.Notification, error) {
	n, ok := r.db.notifications[id]
	if !ok {
		return nil, school.ErrNotFound
	}
	return clone(n), nil
}

func (r memNotifications) list(keep func(*school.Notification) bool) []*school.Notification {
	var out []*school.Notification
	for _, n := range r.db.notifications {
		if keep(n) {
			out = append(out, clone(n))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r memNotifications) ListByCreator(_ context.Context, teacherID int64) ([]*school.Notification, error) {
	return r.list(func(n *school.Notification) bool { return n.CreatedByTeacherID == teacherID }), nil
}

func (r memNotifications) ListForStudent(_ context.Context, studentID int64) ([]*school.Notification, error) {
	return r.list(func(n *school.Notification) bool {
		if n.RecipientID != nil {
			return *n.RecipientID == studentID
		}
		return n.RecipientRole == auth.RoleStudent
	}), nil
}

func (r memNotifications) MarkRead(_ context.Context, id int64) error {
	n, ok := r.db.notifications[id]
	if !ok {
		return school.ErrNotFound
	}
	n.IsRead = true
	return nil
}

// recorder captures RecordRejection calls as "operation/kind".
type recorder struct{ calls []string }

func (r *recorder) RecordRejection(operation, kind string) {
	r.calls = append(r.calls, operation+"/"+kind)
}

// fixture wires the workflows to one memDB.
type fixture struct {
	db       *memDB
	clock    *clock.FakeClock
	courses  *memCourses
	recorder *recorder
	logs     *bytes.Buffer
	deps     Deps
}

var fixtureNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c := clock.Fake(fixtureNow)
	db := newMemDB(c)
	courses := &memCourses{db: db}
	rec := &recorder{}
	logs := &bytes.Buffer{}
	return &fixture{
		db:       db,
		clock:    c,
		courses:  courses,
		recorder: rec,
		logs:     logs,
		deps: Deps{
			Users:         memUsers{db},
			Departments:   memDepartments{db},
			Courses:       courses,
			Classes:       memClasses{db},
			Enrollments:   memEnrollments{db},
			Attendance:    memAttendance{db},
			Assignments:   memAssignments{db},
			Submissions:   memSubmissions{db},
			Notifications: memNotifications{db},
			Clock:         c,
			Logger:        slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
			Recorder:      rec,
		},
	}
}

func (f *fixture) user(t *testing.T, name string, role auth.Role) *auth.User {
	t.Helper()
	u := &auth.User{Name: name, Email: strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@school.test", PasswordHash: "hash", Role: role}
	require.NoError(t, memUsers{f.db}.Create(context.Background(), u))
	return u
}

func (f *fixture) actor(u *auth.User) school.Actor {
	return school.Actor{ID: u.ID, Role: u.Role}
}

func (f *fixture) department(t *testing.T, name string) *school.Department {
	t.Helper()
	d := &school.Department{Name: name}
	require.NoError(t, memDepartments{f.db}.Create(context.Background(), d))
	return d
}

func (f *fixture) course(t *testing.T, dept *school.Department, code string) *school.Course {
	t.Helper()
	c := &school.Course{Name: "Course " + code, Code: code, DepartmentID: dept.ID, Credits: 3}
	require.NoError(t, f.courses.Create(context.Background(), c))
	return c
}

func (f *fixture) class(t *testing.T, teacher *auth.User, name string, active bool) *school.Class {
	t.Helper()
	dept := f.department(t, fmt.Sprintf("Dept for %s", name))
	course := f.course(t, dept, strings.ToUpper(name[:3])+"101")
	c := &school.Class{
		Name:      name,
		CourseID:  course.ID,
		TeacherID: teacher.ID,
		Semester:  "Spring 2026",
		StartDate: clock.StartOfDay(fixtureNow),
		EndDate:   clock.StartOfDay(fixtureNow.AddDate(0, 3, 0)),
		IsActive:  active,
	}
	require.NoError(t, memClasses{f.db}.Create(context.Background(), c))
	return c
}

func (f *fixture) enroll(t *testing.T, student *auth.User, class *school.Class) {
	t.Helper()
	require.NoError(t, memEnrollments{f.db}.Create(context.Background(), &school.Enrollment{StudentID: student.ID, ClassID: class.ID}))
}

func (f *fixture) assignment(t *testing.T, class *school.Class, due time.Time) *school.Assignment {
	t.Helper()
	a := &school.Assignment{ClassID: class.ID, Title: "Essay", DueDate: due, CreatedByTeacherID: class.TeacherID}
	require.NoError(t, memAssignments{f.db}.Create(context.Background(), a))
	return a
}

func ptr[T any](v T) *T { return &v }

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package web

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/internal/school"
	"github.com/schoolhub/schoolhub/internal/workflow"
)

// result extracts a typed first return value that may be nil.
func result[T any](args mock.Arguments) (T, error) {
	var v T
	if got := args.Get(0); got != nil {
		v = got.(T)
	}
	return v, args.Error(1)
}

type mockAuth struct{ mock.Mock }

func (m *mockAuth) Login(ctx context.Context, email, password string) (*auth.TokenPair, error) {
	return result[*auth.TokenPair](m.Called(ctx, email, password))
}

func (m *mockAuth) Register(ctx context.Context, req auth.RegisterRequest) (*auth.TokenPair, error) {
	return result[*auth.TokenPair](m.Called(ctx, req))
}

func (m *mockAuth) RefreshToken(ctx context.Context, token string) (*auth.TokenPair, error) {
	return result[*auth.TokenPair](m.Called(ctx, token))
}

func (m *mockAuth) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockAuth) Authenticate(ctx context.Context, token string) (auth.Identity, error) {
	return result[auth.Identity](m.Called(ctx, token))
}

type mockCourses struct{ mock.Mock }

func (m *mockCourses) Create(ctx context.Context, in workflow.CourseInput) (*workflow.CourseView, error) {
	return result[*workflow.CourseView](m.Called(ctx, in))
}

func (m *mockCourses) Update(ctx context.Context, id int64, in workflow.CourseInput) (*workflow.CourseView, error) {
	return result[*workflow.CourseView](m.Called(ctx, id, in))
}

func (m *mockCourses) Get(ctx context.Context, id int64) (*workflow.CourseView, error) {
	return result[*workflow.CourseView](m.Called(ctx, id))
}

func (m *mockCourses) List(ctx context.Context) ([]workflow.CourseView, error) {
	return result[[]workflow.CourseView](m.Called(ctx))
}

func (m *mockCourses) Lookup(ctx context.Context) ([]workflow.CourseView, error) {
	return result[[]workflow.CourseView](m.Called(ctx))
}

func (m *mockCourses) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockDepartments struct{ mock.Mock }

func (m *mockDepartments) Create(ctx context.Context, in workflow.DepartmentInput) (*workflow.DepartmentView, error) {
	return result[*workflow.DepartmentView](m.Called(ctx, in))
}

func (m *mockDepartments) Update(ctx context.Context, id int64, in workflow.DepartmentInput) (*workflow.DepartmentView, error) {
	return result[*workflow.DepartmentView](m.Called(ctx, id, in))
}

func (m *mockDepartments) Get(ctx context.Context, id int64) (*workflow.DepartmentView, error) {
	return result[*workflow.DepartmentView](m.Called(ctx, id))
}

func (m *mockDepartments) List(ctx context.Context) ([]workflow.DepartmentView, error) {
	return result[[]workflow.DepartmentView](m.Called(ctx))
}

func (m *mockDepartments) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockClasses struct{ mock.Mock }

func (m *mockClasses) Create(ctx context.Context, a school.Actor, in workflow.ClassInput) (*workflow.ClassView, error) {
	return result[*workflow.ClassView](m.Called(ctx, a, in))
}

func (m *mockClasses) Update(ctx context.Context, a school.Actor, id int64, in workflow.ClassInput) (*workflow.ClassView, error) {
	return result[*workflow.ClassView](m.Called(ctx, a, id, in))
}

func (m *mockClasses) SetActive(ctx context.Context, a school.Actor, id int64, active bool) (*workflow.ClassView, error) {
	return result[*workflow.ClassView](m.Called(ctx, a, id, active))
}

func (m *mockClasses) GetOwn(ctx context.Context, a school.Actor, id int64) (*workflow.ClassView, error) {
	return result[*workflow.ClassView](m.Called(ctx, a, id))
}

func (m *mockClasses) ListOwn(ctx context.Context, a school.Actor) ([]workflow.ClassView, error) {
	return result[[]workflow.ClassView](m.Called(ctx, a))
}

func (m *mockClasses) Get(ctx context.Context, id int64) (*workflow.ClassView, error) {
	return result[*workflow.ClassView](m.Called(ctx, id))
}

func (m *mockClasses) List(ctx context.Context) ([]workflow.ClassView, error) {
	return result[[]workflow.ClassView](m.Called(ctx))
}

type mockAttendance struct{ mock.Mock }

func (m *mockAttendance) Mark(ctx context.Context, a school.Actor, in workflow.MarkInput) (*workflow.AttendanceView, error) {
	return result[*workflow.AttendanceView](m.Called(ctx, a, in))
}

func (m *mockAttendance) ClassHistory(ctx context.Context, a school.Actor, classID int64) ([]workflow.AttendanceView, error) {
	return result[[]workflow.AttendanceView](m.Called(ctx, a, classID))
}

func (m *mockAttendance) ExportClass(ctx context.Context, a school.Actor, classID int64) (*workflow.Export, error) {
	return result[*workflow.Export](m.Called(ctx, a, classID))
}

func (m *mockAttendance) Mine(ctx context.Context, a school.Actor) ([]workflow.AttendanceView, error) {
	return result[[]workflow.AttendanceView](m.Called(ctx, a))
}

func (m *mockAttendance) MineForClass(ctx context.Context, a school.Actor, classID int64) ([]workflow.AttendanceView, error) {
	return result[[]workflow.AttendanceView](m.Called(ctx, a, classID))
}

type mockAssignments struct{ mock.Mock }

func (m *mockAssignments) Create(ctx context.Context, a school.Actor, in workflow.AssignmentInput) (*workflow.AssignmentView, error) {
	return result[*workflow.AssignmentView](m.Called(ctx, a, in))
}

func (m *mockAssignments) ListForClass(ctx context.Context, a school.Actor, classID int64) ([]workflow.AssignmentView, error) {
	return result[[]workflow.AssignmentView](m.Called(ctx, a, classID))
}

func (m *mockAssignments) View(ctx context.Context, a school.Actor, id int64) (*workflow.StudentAssignmentView, error) {
	return result[*workflow.StudentAssignmentView](m.Called(ctx, a, id))
}

func (m *mockAssignments) Submit(ctx context.Context, a school.Actor, id int64, in workflow.SubmitInput) (*workflow.SubmissionView, error) {
	return result[*workflow.SubmissionView](m.Called(ctx, a, id, in))
}

func (m *mockAssignments) Grade(ctx context.Context, a school.Actor, id int64, in workflow.GradeInput) (*workflow.SubmissionView, error) {
	return result[*workflow.SubmissionView](m.Called(ctx, a, id, in))
}

func (m *mockAssignments) ListSubmissions(ctx context.Context, a school.Actor, id int64) ([]workflow.SubmissionView, error) {
	return result[[]workflow.SubmissionView](m.Called(ctx, a, id))
}

func (m *mockAssignments) MySubmission(ctx context.Context, a school.Actor, id int64) (*workflow.SubmissionView, error) {
	return result[*workflow.SubmissionView](m.Called(ctx, a, id))
}

func (m *mockAssignments) MySubmissions(ctx context.Context, a school.Actor) ([]workflow.SubmissionView, error) {
	return result[[]workflow.SubmissionView](m.Called(ctx, a))
}

type observation struct {
	route  string
	status int
}

type recordingObserver struct {
	mu   sync.Mutex
	seen []observation
}

func (o *recordingObserver) ObserveRequest(route string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, observation{route, status})
}

func (o *recordingObserver) last() observation {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.seen[len(o.seen)-1]
}

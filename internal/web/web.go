// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

// Package web exposes the SchoolHub operations over HTTP/JSON.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/oops"

	"github.com/schoolhub/schoolhub/internal/access"
	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/internal/clock"
	"github.com/schoolhub/schoolhub/internal/schema"
	"github.com/schoolhub/schoolhub/internal/school"
	"github.com/schoolhub/schoolhub/internal/workflow"
)

// AuthService is the token lifecycle used by the auth routes and middleware.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*auth.TokenPair, error)
	Register(ctx context.Context, req auth.RegisterRequest) (*auth.TokenPair, error)
	RefreshToken(ctx context.Context, token string) (*auth.TokenPair, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, accessToken string) (auth.Identity, error)
}

// UserService administers user accounts.
type UserService interface {
	Create(ctx context.Context, in workflow.UserInput) (*workflow.UserView, error)
	Get(ctx context.Context, id int64) (*workflow.UserView, error)
	List(ctx context.Context) ([]workflow.UserView, error)
	ListByRole(ctx context.Context, role string) ([]workflow.UserView, error)
	Students(ctx context.Context, page, pageSize int) (*workflow.Page[workflow.UserView], error)
	Update(ctx context.Context, id int64, in workflow.UserUpdate) (*workflow.UserView, error)
	Delete(ctx context.Context, id int64) error
}

// DepartmentService administers departments.
type DepartmentService interface {
	Create(ctx context.Context, in workflow.DepartmentInput) (*workflow.DepartmentView, error)
	Update(ctx context.Context, id int64, in workflow.DepartmentInput) (*workflow.DepartmentView, error)
	Get(ctx context.Context, id int64) (*workflow.DepartmentView, error)
	List(ctx context.Context) ([]workflow.DepartmentView, error)
	Delete(ctx context.Context, id int64) error
}

// CourseService administers courses and serves the cached lookup.
type CourseService interface {
	Create(ctx context.Context, in workflow.CourseInput) (*workflow.CourseView, error)
	Update(ctx context.Context, id int64, in workflow.CourseInput) (*workflow.CourseView, error)
	Get(ctx context.Context, id int64) (*workflow.CourseView, error)
	List(ctx context.Context) ([]workflow.CourseView, error)
	Lookup(ctx context.Context) ([]workflow.CourseView, error)
	Delete(ctx context.Context, id int64) error
}

// ClassService manages classes.
type ClassService interface {
	Create(ctx context.Context, actor school.Actor, in workflow.ClassInput) (*workflow.ClassView, error)
	Update(ctx context.Context, actor school.Actor, id int64, in workflow.ClassInput) (*workflow.ClassView, error)
	SetActive(ctx context.Context, actor school.Actor, id int64, active bool) (*workflow.ClassView, error)
	GetOwn(ctx context.Context, actor school.Actor, id int64) (*workflow.ClassView, error)
	ListOwn(ctx context.Context, actor school.Actor) ([]workflow.ClassView, error)
	Get(ctx context.Context, id int64) (*workflow.ClassView, error)
	List(ctx context.Context) ([]workflow.ClassView, error)
}

// EnrollmentService manages class rosters.
type EnrollmentService interface {
	Enroll(ctx context.Context, actor school.Actor, studentID, classID int64) (*workflow.EnrollmentView, error)
	Roster(ctx context.Context, actor school.Actor, classID int64) ([]workflow.EnrollmentView, error)
	MyClasses(ctx context.Context, actor school.Actor) ([]workflow.EnrolledClassView, error)
}

// AttendanceService records and reports attendance.
type AttendanceService interface {
	Mark(ctx context.Context, actor school.Actor, in workflow.MarkInput) (*workflow.AttendanceView, error)
	ClassHistory(ctx context.Context, actor school.Actor, classID int64) ([]workflow.AttendanceView, error)
	ExportClass(ctx context.Context, actor school.Actor, classID int64) (*workflow.Export, error)
	Mine(ctx context.Context, actor school.Actor) ([]workflow.AttendanceView, error)
	MineForClass(ctx context.Context, actor school.Actor, classID int64) ([]workflow.AttendanceView, error)
}

// AssignmentService manages assignments, submissions and grading.
type AssignmentService interface {
	Create(ctx context.Context, actor school.Actor, in workflow.AssignmentInput) (*workflow.AssignmentView, error)
	ListForClass(ctx context.Context, actor school.Actor, classID int64) ([]workflow.AssignmentView, error)
	View(ctx context.Context, actor school.Actor, assignmentID int64) (*workflow.StudentAssignmentView, error)
	Submit(ctx context.Context, actor school.Actor, assignmentID int64, in workflow.SubmitInput) (*workflow.SubmissionView, error)
	Grade(ctx context.Context, actor school.Actor, submissionID int64, in workflow.GradeInput) (*workflow.SubmissionView, error)
	ListSubmissions(ctx context.Context, actor school.Actor, assignmentID int64) ([]workflow.SubmissionView, error)
	MySubmission(ctx context.Context, actor school.Actor, submissionID int64) (*workflow.SubmissionView, error)
	MySubmissions(ctx context.Context, actor school.Actor) ([]workflow.SubmissionView, error)
}

// NotificationService sends and reads notifications.
type NotificationService interface {
	Send(ctx context.Context, actor school.Actor, in workflow.SendInput) ([]workflow.NotificationView, error)
	ListSent(ctx context.Context, actor school.Actor) ([]workflow.NotificationView, error)
	ListMine(ctx context.Context, actor school.Actor) ([]workflow.NotificationView, error)
	Read(ctx context.Context, actor school.Actor, id int64) (*workflow.NotificationView, error)
}

// RequestObserver records one served request.
type RequestObserver interface {
	ObserveRequest(route string, status int, elapsed time.Duration)
}

type noopObserver struct{}

func (noopObserver) ObserveRequest(string, int, time.Duration) {}

// Config wires the handler. Auth and Access are required; routes of a nil
// service are not registered.
type Config struct {
	Auth          AuthService
	Access        access.AccessControl
	Users         UserService
	Departments   DepartmentService
	Courses       CourseService
	Classes       ClassService
	Enrollments   EnrollmentService
	Attendance    AttendanceService
	Assignments   AssignmentService
	Notifications NotificationService

	Observer RequestObserver
	// Report receives unclassified errors, e.g. for Sentry.
	Report func(ctx context.Context, err error)
	Logger *slog.Logger
	Clock  clock.Clock
	// MaxBodyBytes caps JSON request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64
}

// handler holds the wired dependencies of every route.
type handler struct {
	Config
	validator *schema.Validator
}

// NewHandler builds the API router.
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.Auth == nil {
		return nil, oops.Code("WEB_CONFIG").Errorf("auth service is required")
	}
	if cfg.Access == nil {
		return nil, oops.Code("WEB_CONFIG").Errorf("access control is required")
	}
	if cfg.Observer == nil {
		cfg.Observer = noopObserver{}
	}
	if cfg.Report == nil {
		cfg.Report = func(context.Context, error) {}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	h := &handler{Config: cfg, validator: schema.NewValidator()}
	return h.routes(), nil
}

// route is one authenticated endpoint and the permission it requires.
type route struct {
	method   string
	pattern  string
	action   string
	resource string
	enabled  bool
	serve    http.HandlerFunc
}

func (h *handler) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(h.requestID, h.observe, h.recoverPanics)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.fail(w, r, errRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{
			Code:      "METHOD_NOT_ALLOWED",
			Message:   "Method not allowed",
			RequestID: w.Header().Get(RequestIDHeader),
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.login)
		r.Post("/auth/register", h.register)
		r.Post("/auth/refresh", h.refresh)
		r.Post("/auth/logout", h.logout)

		r.Group(func(r chi.Router) {
			r.Use(h.authenticate)
			for _, rt := range h.protected() {
				if rt.enabled {
					r.With(h.require(rt.action, rt.resource)).MethodFunc(rt.method, rt.pattern, rt.serve)
				}
			}
		})
	})
	return r
}

func (h *handler) protected() []route {
	users, depts, courses := h.Users != nil, h.Departments != nil, h.Courses != nil
	classes, enroll, att := h.Classes != nil, h.Enrollments != nil, h.Attendance != nil
	asg, notes := h.Assignments != nil, h.Notifications != nil
	const get, post, put, del = http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete

	return []route{
		{get, "/auth/me", "read", "auth:me", true, h.me},
		{get, "/lookup/courses", "read", "lookup:courses", courses, h.lookupCourses},
		{get, "/lookup/departments", "read", "lookup:departments", depts, h.listDepartments},
		{get, "/lookup/departments/{id}", "read", "lookup:departments", depts, h.getDepartment},

		{get, "/admin/users", "read", "admin:users", users, h.listUsers},
		{post, "/admin/users", "write", "admin:users", users, h.createUser},
		{get, "/admin/users/students", "read", "admin:users", users, h.listStudents},
		{get, "/admin/users/role/{role}", "read", "admin:users", users, h.listUsersByRole},
		{get, "/admin/users/{id}", "read", "admin:users", users, h.getUser},
		{put, "/admin/users/{id}", "write", "admin:users", users, h.updateUser},
		{del, "/admin/users/{id}", "delete", "admin:users", users, h.deleteUser},

		{get, "/admin/departments", "read", "admin:departments", depts, h.listDepartments},
		{post, "/admin/departments", "write", "admin:departments", depts, h.createDepartment},
		{get, "/admin/departments/{id}", "read", "admin:departments", depts, h.getDepartment},
		{put, "/admin/departments/{id}", "write", "admin:departments", depts, h.updateDepartment},
		{del, "/admin/departments/{id}", "delete", "admin:departments", depts, h.deleteDepartment},

		{get, "/admin/courses", "read", "admin:courses", courses, h.listCourses},
		{post, "/admin/courses", "write", "admin:courses", courses, h.createCourse},
		{get, "/admin/courses/{id}", "read", "admin:courses", courses, h.getCourse},
		{put, "/admin/courses/{id}", "write", "admin:courses", courses, h.updateCourse},
		{del, "/admin/courses/{id}", "delete", "admin:courses", courses, h.deleteCourse},

		{get, "/admin/classes", "read", "admin:classes", classes, h.listAllClasses},
		{get, "/admin/classes/{id}", "read", "admin:classes", classes, h.getAnyClass},

		{get, "/teacher/classes", "read", "teacher:classes", classes, h.listOwnClasses},
		{post, "/teacher/classes", "write", "teacher:classes", classes, h.createClass},
		{get, "/teacher/classes/{id}", "read", "teacher:classes", classes, h.getOwnClass},
		{put, "/teacher/classes/{id}", "write", "teacher:classes", classes, h.updateClass},
		{post, "/teacher/classes/{id}/activate", "write", "teacher:classes", classes, h.activateClass},
		{post, "/teacher/classes/{id}/deactivate", "write", "teacher:classes", classes, h.deactivateClass},

		{post, "/teacher/enrollments", "write", "teacher:enrollments", enroll, h.enroll},
		{get, "/teacher/classes/{id}/enrollments", "read", "teacher:enrollments", enroll, h.roster},

		{post, "/teacher/attendance", "write", "teacher:attendance", att, h.markAttendance},
		{get, "/teacher/classes/{id}/attendance", "read", "teacher:attendance", att, h.classAttendance},
		{get, "/teacher/classes/{id}/attendance/export", "export", "teacher:attendance", att, h.exportAttendance},

		{post, "/teacher/assignments", "write", "teacher:assignments", asg, h.createAssignment},
		{get, "/teacher/classes/{id}/assignments", "read", "teacher:assignments", asg, h.classAssignments},
		{get, "/teacher/assignments/{id}/submissions", "read", "teacher:submissions", asg, h.assignmentSubmissions},
		{post, "/teacher/submissions/{id}/grade", "write", "teacher:submissions", asg, h.grade},

		{post, "/teacher/notifications", "write", "teacher:notifications", notes, h.sendNotification},
		{get, "/teacher/notifications", "read", "teacher:notifications", notes, h.sentNotifications},

		{get, "/student/classes", "read", "student:classes", enroll, h.myClasses},
		{get, "/student/attendance", "read", "student:attendance", att, h.myAttendance},
		{get, "/student/attendance/{id}", "read", "student:attendance", att, h.myClassAttendance},
		{get, "/student/assignments/{id}", "read", "student:assignments", asg, h.viewAssignment},
		{post, "/student/assignments/{id}/submit", "write", "student:submissions", asg, h.submit},
		{get, "/student/submissions", "read", "student:submissions", asg, h.mySubmissions},
		{get, "/student/submissions/{id}", "read", "student:submissions", asg, h.mySubmission},
		{get, "/student/notifications", "read", "student:notifications", notes, h.myNotifications},
		{get, "/student/notifications/{id}", "read", "student:notifications", notes, h.readNotification},
	}
}

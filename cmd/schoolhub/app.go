// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package main

import (
	"log/slog"
	"net/http"

	"github.com/samber/oops"

	"github.com/schoolhub/schoolhub/internal/access"
	"github.com/schoolhub/schoolhub/internal/auth"
	authpg "github.com/schoolhub/schoolhub/internal/auth/postgres"
	authredis "github.com/schoolhub/schoolhub/internal/auth/redis"
	"github.com/schoolhub/schoolhub/internal/cache"
	"github.com/schoolhub/schoolhub/internal/clock"
	"github.com/schoolhub/schoolhub/internal/config"
	"github.com/schoolhub/schoolhub/internal/observability"
	schoolpg "github.com/schoolhub/schoolhub/internal/school/postgres"
	"github.com/schoolhub/schoolhub/internal/store"
	"github.com/schoolhub/schoolhub/internal/web"
	"github.com/schoolhub/schoolhub/internal/workflow"
)

// app holds the wired services behind the API.
type app struct {
	Auth          *auth.Service
	Users         *workflow.UserService
	Departments   *workflow.DepartmentService
	Courses       *workflow.CourseService
	Classes       *workflow.ClassWorkflow
	Enrollments   *workflow.EnrollmentWorkflow
	Attendance    *workflow.AttendanceWorkflow
	Assignments   *workflow.AssignmentWorkflow
	Notifications *workflow.NotificationFanout
}

// appDeps are the backends an app is built on. Redis is nil unless a
// component uses it; Metrics is nil when the metrics server is disabled.
type appDeps struct {
	DB      store.DB
	Redis   RedisClient
	Metrics *observability.Metrics
	Clock   clock.Clock
	Logger  *slog.Logger
}

// buildApp wires repositories, stores and workflows from cfg.
func buildApp(cfg *config.Config, d appDeps) (*app, error) {
	sessions, err := refreshStore(cfg, d)
	if err != nil {
		return nil, err
	}
	courseCache, err := courseCache(cfg, d)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokenIssuer(auth.TokenConfig{
		Secret:    []byte(cfg.Auth.Secret),
		Issuer:    cfg.Auth.Issuer,
		AccessTTL: cfg.Auth.AccessTTL,
	})
	if err != nil {
		return nil, oops.With("operation", "create token issuer").Wrap(err)
	}

	users := authpg.NewUserRepository(d.DB)
	hasher := auth.NewArgon2idHasher()

	var authEvents auth.EventRecorder
	var rejections workflow.RejectionRecorder
	if d.Metrics != nil {
		authEvents = d.Metrics
		rejections = d.Metrics
	}

	authService, err := auth.NewService(auth.ServiceConfig{
		Users:      users,
		Sessions:   sessions,
		Hasher:     hasher,
		Tokens:     tokens,
		Clock:      d.Clock,
		RefreshTTL: cfg.Auth.RefreshTTL,
		Logger:     d.Logger,
		Recorder:   authEvents,
	})
	if err != nil {
		return nil, oops.With("operation", "create auth service").Wrap(err)
	}

	wd := workflow.Deps{
		Users:         users,
		Departments:   schoolpg.NewDepartmentRepository(d.DB),
		Courses:       schoolpg.NewCourseRepository(d.DB),
		Classes:       schoolpg.NewClassRepository(d.DB),
		Enrollments:   schoolpg.NewEnrollmentRepository(d.DB),
		Attendance:    schoolpg.NewAttendanceRepository(d.DB),
		Assignments:   schoolpg.NewAssignmentRepository(d.DB),
		Submissions:   schoolpg.NewSubmissionRepository(d.DB),
		Notifications: schoolpg.NewNotificationRepository(d.DB),
		Clock:         d.Clock,
		Logger:        d.Logger,
		Recorder:      rejections,
	}

	return &app{
		Auth:          authService,
		Users:         workflow.NewUserService(wd, hasher),
		Departments:   workflow.NewDepartmentService(wd),
		Courses:       workflow.NewCourseService(wd, courseCache, cfg.Cache.CourseTTL),
		Classes:       workflow.NewClassWorkflow(wd),
		Enrollments:   workflow.NewEnrollmentWorkflow(wd),
		Attendance:    workflow.NewAttendanceWorkflow(wd),
		Assignments:   workflow.NewAssignmentWorkflow(wd, workflow.Uploads{AllowedExtensions: cfg.Uploads.AllowedExtensions}),
		Notifications: workflow.NewNotificationFanout(wd),
	}, nil
}

// handler builds the HTTP API over a.
func (a *app) handler(d appDeps) (http.Handler, error) {
	var observer web.RequestObserver
	if d.Metrics != nil {
		observer = d.Metrics
	}
	return web.NewHandler(web.Config{
		Auth:          a.Auth,
		Access:        access.NewStaticAccessControl(),
		Users:         a.Users,
		Departments:   a.Departments,
		Courses:       a.Courses,
		Classes:       a.Classes,
		Enrollments:   a.Enrollments,
		Attendance:    a.Attendance,
		Assignments:   a.Assignments,
		Notifications: a.Notifications,
		Observer:      observer,
		Report:        observability.CaptureError,
		Logger:        d.Logger,
		Clock:         d.Clock,
	})
}

func refreshStore(cfg *config.Config, d appDeps) (auth.RefreshTokenStore, error) {
	switch cfg.Auth.RefreshStore {
	case config.BackendMemory:
		return auth.NewMemoryRefreshStore(), nil
	case config.BackendPostgres:
		return authpg.NewRefreshSessionStore(d.DB), nil
	case config.BackendRedis:
		if d.Redis == nil {
			return nil, oops.Code("CONFIG_INVALID").With("key", "auth.refresh_store").Errorf("redis client is required")
		}
		return authredis.NewRefreshStore(d.Redis), nil
	}
	return nil, oops.Code("CONFIG_INVALID").With("key", "auth.refresh_store").Errorf("unknown refresh store %q", cfg.Auth.RefreshStore)
}

func courseCache(cfg *config.Config, d appDeps) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case config.BackendMemory:
		return cache.NewMemory(d.Clock), nil
	case config.BackendRedis:
		if d.Redis == nil {
			return nil, oops.Code("CONFIG_INVALID").With("key", "cache.backend").Errorf("redis client is required")
		}
		return cache.NewRedis(d.Redis), nil
	}
	return nil, oops.Code("CONFIG_INVALID").With("key", "cache.backend").Errorf("unknown cache backend %q", cfg.Cache.Backend)
}

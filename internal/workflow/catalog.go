// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/internal/cache"
	"github.com/schoolhub/schoolhub/internal/school"
	"github.com/schoolhub/schoolhub/internal/school/policy"
	"github.com/schoolhub/schoolhub/pkg/errutil"
)

// Course credit bounds, inclusive.
const (
	MinCredits = 1
	MaxCredits = 10
)

// DefaultCourseTTL is how long the course lookup stays cached.
const DefaultCourseTTL = 300 * time.Second

const courseLookupKey = "courses:lookup"

// DepartmentInput is the editable part of a department.
type DepartmentInput struct {
	Name               string
	Description        *string
	HeadOfDepartmentID *int64
}

// DepartmentService is the administrators' department catalog.
type DepartmentService struct {
	base
}

// NewDepartmentService creates a DepartmentService.
func NewDepartmentService(d Deps) *DepartmentService {
	return &DepartmentService{base: newBase(d)}
}

// Create adds a department.
func (s *DepartmentService) Create(ctx context.Context, in DepartmentInput) (*DepartmentView, error) {
	v, err := s.save(ctx, nil, in)
	return v, s.finish(ctx, "department.create", err)
}

// Update edits a department.
func (s *DepartmentService) Update(ctx context.Context, id int64, in DepartmentInput) (*DepartmentView, error) {
	d, err := s.department(ctx, id)
	if err != nil {
		return nil, s.finish(ctx, "department.update", err)
	}
	v, err := s.save(ctx, d, in)
	return v, s.finish(ctx, "department.update", err)
}

// save creates a department when existing is nil and updates it otherwise.
func (s *DepartmentService) save(ctx context.Context, existing *school.Department, in DepartmentInput) (*DepartmentView, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errutil.Invalid("DEPARTMENT_INVALID_NAME", "Name is required")
	}
	var excludeID int64
	if existing != nil {
		excludeID = existing.ID
	}
	taken, err := s.Departments.NameTaken(ctx, name, excludeID)
	if err != nil {
		return nil, err
	}
	var head *auth.User
	if in.HeadOfDepartmentID != nil {
		if head, err = s.user(ctx, *in.HeadOfDepartmentID); err != nil {
			return nil, err
		}
	}
	if err := policy.SaveDepartment(taken, in.HeadOfDepartmentID != nil, head); err != nil {
		return nil, err
	}

	d := existing
	if d == nil {
		d = &school.Department{}
	}
	d.Name = name
	d.Description = in.Description
	d.HeadOfDepartmentID = in.HeadOfDepartmentID
	if existing == nil {
		err = s.Departments.Create(ctx, d)
	} else {
		err = persisted(s.Departments.Update(ctx, d), policy.ErrDepartmentNotFound)
	}
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, []*school.Department{d})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Get returns one department.
func (s *DepartmentService) Get(ctx context.Context, id int64) (*DepartmentView, error) {
	d, err := s.department(ctx, id)
	if err != nil {
		return nil, s.finish(ctx, "department.get", err)
	}
	views, err := s.views(ctx, []*school.Department{d})
	if err != nil {
		return nil, s.finish(ctx, "department.get", err)
	}
	return &views[0], nil
}

// List returns every live department by name.
func (s *DepartmentService) List(ctx context.Context) ([]DepartmentView, error) {
	ds, err := s.Departments.List(ctx)
	if err != nil {
		return nil, s.finish(ctx, "department.list", err)
	}
	vs, err := s.views(ctx, ds)
	return vs, s.finish(ctx, "department.list", err)
}

// Delete soft-deletes a department.
func (s *DepartmentService) Delete(ctx context.Context, id int64) error {
	err := persisted(s.Departments.SoftDelete(ctx, id), policy.ErrDepartmentNotFound)
	return s.finish(ctx, "department.delete", err)
}

func (s *DepartmentService) department(ctx context.Context, id int64) (*school.Department, error) {
	d, err := s.Departments.Get(ctx, id)
	d, err = optional(d, err, school.ErrNotFound)
	if err == nil && d == nil {
		err = policy.ErrDepartmentNotFound
	}
	return d, err
}

func (s *DepartmentService) views(ctx context.Context, ds []*school.Department) ([]DepartmentView, error) {
	ids := make([]int64, 0, len(ds))
	for _, d := range ds {
		if d.HeadOfDepartmentID != nil {
			ids = append(ids, *d.HeadOfDepartmentID)
		}
	}
	users, err := s.users(ctx, ids...)
	if err != nil {
		return nil, err
	}
	out := make([]DepartmentView, 0, len(ds))
	for _, d := range ds {
		v := DepartmentView{
			ID:                 d.ID,
			Name:               d.Name,
			Description:        d.Description,
			HeadOfDepartmentID: d.HeadOfDepartmentID,
			CreatedAt:          d.CreatedAt,
			UpdatedAt:          d.UpdatedAt,
		}
		if d.HeadOfDepartmentID != nil {
			v.HeadOfDepartmentName = nameOf(users, *d.HeadOfDepartmentID)
		}
		out = append(out, v)
	}
	return out, nil
}

// CourseInput is the editable part of a course.
type CourseInput struct {
	Name         string
	Code         string
	Description  *string
	DepartmentID int64
	Credits      int
}

// CourseService is the administrators' course catalog plus the cached
// lookup list every user can read.
type CourseService struct {
	base
	cache cache.Cache
	ttl   time.Duration
}

// NewCourseService creates a CourseService. A nil cache disables caching.
func NewCourseService(d Deps, c cache.Cache, ttl time.Duration) *CourseService {
	if ttl <= 0 {
		ttl = DefaultCourseTTL
	}
	return &CourseService{base: newBase(d), cache: c, ttl: ttl}
}

// Create adds a course.
func (s *CourseService) Create(ctx context.Context, in CourseInput) (*CourseView, error) {
	v, err := s.save(ctx, nil, in)
	return v, s.finish(ctx, "course.create", err)
}

// Update edits a course.
func (s *CourseService) Update(ctx context.Context, id int64, in CourseInput) (*CourseView, error) {
	c, err := s.courseOrFail(ctx, id)
	if err != nil {
		return nil, s.finish(ctx, "course.update", err)
	}
	v, err := s.save(ctx, c, in)
	return v, s.finish(ctx, "course.update", err)
}

func (s *CourseService) save(ctx context.Context, existing *school.Course, in CourseInput) (*CourseView, error) {
	name, code := strings.TrimSpace(in.Name), strings.TrimSpace(in.Code)
	switch {
	case name == "":
		return nil, errutil.Invalid("COURSE_INVALID_NAME", "Name is required")
	case code == "":
		return nil, errutil.Invalid("COURSE_INVALID_CODE", "Code is required")
	case in.Credits < MinCredits || in.Credits > MaxCredits:
		return nil, errutil.Invalid("COURSE_INVALID_CREDITS", "Credits must be between 1 and 10")
	}

	dept, err := s.Departments.Get(ctx, in.DepartmentID)
	if dept, err = optional(dept, err, school.ErrNotFound); err != nil {
		return nil, err
	}
	var excludeID int64
	if existing != nil {
		excludeID = existing.ID
	}
	taken, err := s.Courses.CodeTaken(ctx, in.DepartmentID, code, excludeID)
	if err != nil {
		return nil, err
	}
	if err := policy.SaveCourse(dept, taken); err != nil {
		return nil, err
	}

	c := existing
	if c == nil {
		c = &school.Course{}
	}
	c.Name, c.Code, c.Description = name, code, in.Description
	c.DepartmentID, c.Credits = dept.ID, in.Credits
	if existing == nil {
		err = s.Courses.Create(ctx, c)
	} else {
		err = persisted(s.Courses.Update(ctx, c), policy.ErrCourseNotFound)
	}
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	v := courseView(c, map[int64]*school.Department{dept.ID: dept})
	return &v, nil
}

// Get returns one course.
func (s *CourseService) Get(ctx context.Context, id int64) (*CourseView, error) {
	c, err := s.courseOrFail(ctx, id)
	if err != nil {
		return nil, s.finish(ctx, "course.get", err)
	}
	vs, err := s.views(ctx, []*school.Course{c})
	if err != nil {
		return nil, s.finish(ctx, "course.get", err)
	}
	return &vs[0], nil
}

// List returns every live course from the database.
func (s *CourseService) List(ctx context.Context) ([]CourseView, error) {
	cs, err := s.Courses.List(ctx)
	if err != nil {
		return nil, s.finish(ctx, "course.list", err)
	}
	vs, err := s.views(ctx, cs)
	return vs, s.finish(ctx, "course.list", err)
}

// Lookup returns the course list through the cache. Cache failures fall
// back to the database.
func (s *CourseService) Lookup(ctx context.Context) ([]CourseView, error) {
	if s.cache != nil {
		var cached []CourseView
		hit, err := s.cache.Get(ctx, courseLookupKey, &cached)
		if err != nil {
			s.Logger.WarnContext(ctx, "course cache read failed", "error", err)
		}
		if hit {
			return cached, nil
		}
	}
	vs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, courseLookupKey, vs, s.ttl); err != nil {
			s.Logger.WarnContext(ctx, "course cache write failed", "error", err)
		}
	}
	return vs, nil
}

// Delete soft-deletes a course.
func (s *CourseService) Delete(ctx context.Context, id int64) error {
	err := persisted(s.Courses.SoftDelete(ctx, id), policy.ErrCourseNotFound)
	if err == nil {
		s.invalidate(ctx)
	}
	return s.finish(ctx, "course.delete", err)
}

func (s *CourseService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, courseLookupKey); err != nil {
		s.Logger.WarnContext(ctx, "course cache invalidation failed", "error", err)
	}
}

func (s *CourseService) courseOrFail(ctx context.Context, id int64) (*school.Course, error) {
	c, err := s.course(ctx, id)
	if err == nil && c == nil {
		err = policy.ErrCourseNotFound
	}
	return c, err
}

func (s *CourseService) views(ctx context.Context, cs []*school.Course) ([]CourseView, error) {
	depts := make(map[int64]*school.Department)
	for _, c := range cs {
		if _, ok := depts[c.DepartmentID]; ok {
			continue
		}
		d, err := s.Departments.Get(ctx, c.DepartmentID)
		if d, err = optional(d, err, school.ErrNotFound); err != nil {
			return nil, err
		}
		if d != nil {
			depts[d.ID] = d
		}
	}
	out := make([]CourseView, 0, len(cs))
	for _, c := range cs {
		out = append(out, courseView(c, depts))
	}
	return out, nil
}

func courseView(c *school.Course, depts map[int64]*school.Department) CourseView {
	v := CourseView{
		ID:           c.ID,
		Name:         c.Name,
		Code:         c.Code,
		Description:  c.Description,
		DepartmentID: c.DepartmentID,
		Credits:      c.Credits,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	if d, ok := depts[c.DepartmentID]; ok {
		v.DepartmentName = d.Name
	}
	return v
}

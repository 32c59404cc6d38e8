// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

// Package seed bootstraps a fresh installation from a YAML file: the first
// users, the departments and their courses. Applying the same file twice
// creates nothing the second time.
package seed

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/samber/oops"

	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/internal/schema"
	"github.com/schoolhub/schoolhub/internal/workflow"
)

// SchemaName is the file name of the generated seed schema.
const SchemaName = "seed.schema.json"

// File is the seed document.
type File struct {
	Users       []User       `yaml:"users" json:"users,omitempty" jsonschema:"title=Users created when their email is unknown"`
	Departments []Department `yaml:"departments" json:"departments,omitempty"`
}

// User is an account to create.
type User struct {
	Name     string `yaml:"name" json:"name" jsonschema:"minLength=1"`
	Email    string `yaml:"email" json:"email" jsonschema:"format=email"`
	Password string `yaml:"password" json:"password" jsonschema:"minLength=6"`
	Role     string `yaml:"role" json:"role" jsonschema:"enum=Admin,enum=Teacher,enum=Student"`
}

// Department is matched by name, case-insensitively.
type Department struct {
	Name        string `yaml:"name" json:"name" jsonschema:"minLength=1"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Head is the email of a teacher.
	Head    string   `yaml:"head,omitempty" json:"head,omitempty" jsonschema:"format=email"`
	Courses []Course `yaml:"courses,omitempty" json:"courses,omitempty"`
}

// Course is matched by code within its department.
type Course struct {
	Name        string `yaml:"name" json:"name" jsonschema:"minLength=1"`
	Code        string `yaml:"code" json:"code" jsonschema:"minLength=1"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Credits     int    `yaml:"credits" json:"credits" jsonschema:"minimum=1,maximum=10"`
}

// Load reads and validates a seed file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, oops.Code("SEED_READ_FAILED").With("path", path).Wrap(err)
	}
	return Parse(data)
}

// Parse validates data against the seed schema and decodes it.
func Parse(data []byte) (*File, error) {
	var f File
	if err := schema.NewValidator().DecodeYAML(data, &f); err != nil {
		return nil, oops.Code("SEED_INVALID").Wrap(err)
	}
	return &f, nil
}

// UserCreator creates accounts.
type UserCreator interface {
	Create(ctx context.Context, in workflow.UserInput) (*workflow.UserView, error)
}

// DepartmentCatalog lists and creates departments.
type DepartmentCatalog interface {
	List(ctx context.Context) ([]workflow.DepartmentView, error)
	Create(ctx context.Context, in workflow.DepartmentInput) (*workflow.DepartmentView, error)
}

// CourseCatalog lists and creates courses.
type CourseCatalog interface {
	List(ctx context.Context) ([]workflow.CourseView, error)
	Create(ctx context.Context, in workflow.CourseInput) (*workflow.CourseView, error)
}

// Seeder applies seed files through the same services the API uses, so
// every business rule still holds.
type Seeder struct {
	Lookup      auth.UserRepository
	Users       UserCreator
	Departments DepartmentCatalog
	Courses     CourseCatalog
	Logger      *slog.Logger
}

// Summary counts what Apply did.
type Summary struct {
	UsersCreated       int
	UsersSkipped       int
	DepartmentsCreated int
	DepartmentsSkipped int
	CoursesCreated     int
	CoursesSkipped     int
}

// Apply creates every user, department and course of f that does not exist
// yet. It stops at the first failure; records created before it are kept.
func (s *Seeder) Apply(ctx context.Context, f *File) (Summary, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var sum Summary
	for _, u := range f.Users {
		created, err := s.user(ctx, u)
		if err != nil {
			return sum, oops.Code("SEED_FAILED").With("email", u.Email).Wrap(err)
		}
		if created {
			sum.UsersCreated++
			logger.InfoContext(ctx, "seeded user", "email", u.Email, "role", u.Role)
		} else {
			sum.UsersSkipped++
		}
	}

	departments, err := s.Departments.List(ctx)
	if err != nil {
		return sum, oops.Code("SEED_FAILED").With("operation", "list departments").Wrap(err)
	}
	courses, err := s.Courses.List(ctx)
	if err != nil {
		return sum, oops.Code("SEED_FAILED").With("operation", "list courses").Wrap(err)
	}

	for _, d := range f.Departments {
		deptID, ok := findDepartment(departments, d.Name)
		if ok {
			sum.DepartmentsSkipped++
		} else {
			view, err := s.department(ctx, d)
			if err != nil {
				return sum, oops.Code("SEED_FAILED").With("department", d.Name).Wrap(err)
			}
			deptID = view.ID
			departments = append(departments, *view)
			sum.DepartmentsCreated++
			logger.InfoContext(ctx, "seeded department", "name", d.Name, "id", deptID)
		}

		for _, c := range d.Courses {
			if hasCourse(courses, deptID, c.Code) {
				sum.CoursesSkipped++
				continue
			}
			view, err := s.Courses.Create(ctx, workflow.CourseInput{
				Name:         c.Name,
				Code:         c.Code,
				Description:  optionalText(c.Description),
				DepartmentID: deptID,
				Credits:      c.Credits,
			})
			if err != nil {
				return sum, oops.Code("SEED_FAILED").With("department", d.Name).With("course", c.Code).Wrap(err)
			}
			courses = append(courses, *view)
			sum.CoursesCreated++
			logger.InfoContext(ctx, "seeded course", "code", c.Code, "department", d.Name)
		}
	}
	return sum, nil
}

func (s *Seeder) user(ctx context.Context, u User) (bool, error) {
	_, err := s.Lookup.GetByEmail(ctx, u.Email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, auth.ErrNotFound) {
		return false, err
	}
	if _, err := s.Users.Create(ctx, workflow.UserInput{
		Name:     u.Name,
		Email:    u.Email,
		Password: u.Password,
		Role:     u.Role,
	}); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Seeder) department(ctx context.Context, d Department) (*workflow.DepartmentView, error) {
	in := workflow.DepartmentInput{Name: d.Name, Description: optionalText(d.Description)}
	if d.Head != "" {
		head, err := s.Lookup.GetByEmail(ctx, d.Head)
		if err != nil {
			return nil, oops.With("head", d.Head).Wrap(err)
		}
		in.HeadOfDepartmentID = &head.ID
	}
	return s.Departments.Create(ctx, in)
}

func findDepartment(views []workflow.DepartmentView, name string) (int64, bool) {
	for _, v := range views {
		if strings.EqualFold(strings.TrimSpace(v.Name), strings.TrimSpace(name)) {
			return v.ID, true
		}
	}
	return 0, false
}

func hasCourse(views []workflow.CourseView, departmentID int64, code string) bool {
	for _, v := range views {
		if v.DepartmentID == departmentID && strings.EqualFold(strings.TrimSpace(v.Code), strings.TrimSpace(code)) {
			return true
		}
	}
	return false
}

func optionalText(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/schoolhub/schoolhub/internal/workflow"
)

// Users

func (h *handler) listUsers(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h, func() (any, error) { return h.Users.List(r.Context()) })
}

func (h *handler) listUsersByRole(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h, func() (any, error) { return h.Users.ListByRole(r.Context(), chi.URLParam(r, "role")) })
}

func (h *handler) listStudents(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	size, err := queryInt(r, "pageSize")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, h, func() (any, error) { return h.Users.Students(r.Context(), page, size) })
}

func (h *handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	v, err := h.Users.Create(r.Context(), workflow.UserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	created(w, v)
}

func (h *handler) getUser(w http.ResponseWriter, r *http.Request) {
	withID(w, r, h, func(id int64) (any, error) { return h.Users.Get(r.Context(), id) })
}

func (h *handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var req userUpdateRequest
	withBody(w, r, h, &req, func(id int64) (any, error) {
		return h.Users.Update(r.Context(), id, workflow.UserUpdate{Name: req.Name, Role: req.Role})
	})
}

func (h *handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	remove(w, r, h, h.Users.Delete)
}

// Departments

func (h *handler) listDepartments(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h, func() (any, error) { return h.Departments.List(r.Context()) })
}

func (h *handler) createDepartment(w http.ResponseWriter, r *http.Request) {
	var req departmentRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	v, err := h.Departments.Create(r.Context(), req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	created(w, v)
}

func (h *handler) getDepartment(w http.ResponseWriter, r *http.Request) {
	withID(w, r, h, func(id int64) (any, error) { return h.Departments.Get(r.Context(), id) })
}

func (h *handler) updateDepartment(w http.ResponseWriter, r *http.Request) {
	var req departmentRequest
	withBody(w, r, h, &req, func(id int64) (any, error) {
		return h.Departments.Update(r.Context(), id, req.input())
	})
}

func (h *handler) deleteDepartment(w http.ResponseWriter, r *http.Request) {
	remove(w, r, h, h.Departments.Delete)
}

func (req departmentRequest) input() workflow.DepartmentInput {
	return workflow.DepartmentInput{
		Name:               req.Name,
		Description:        req.Description,
		HeadOfDepartmentID: req.HeadOfDepartmentID,
	}
}

// Courses

func (h *handler) listCourses(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h, func() (any, error) { return h.Courses.List(r.Context()) })
}

func (h *handler) lookupCourses(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h, func() (any, error) { return h.Courses.Lookup(r.Context()) })
}

func (h *handler) createCourse(w http.ResponseWriter, r *http.Request) {
	var req courseRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	v, err := h.Courses.Create(r.Context(), req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	created(w, v)
}

func (h *handler) getCourse(w http.ResponseWriter, r *http.Request) {
	withID(w, r, h, func(id int64) (any, error) { return h.Courses.Get(r.Context(), id) })
}

func (h *handler) updateCourse(w http.ResponseWriter, r *http.Request) {
	var req courseRequest
	withBody(w, r, h, &req, func(id int64) (any, error) {
		return h.Courses.Update(r.Context(), id, req.input())
	})
}

func (h *handler) deleteCourse(w http.ResponseWriter, r *http.Request) {
	remove(w, r, h, h.Courses.Delete)
}

func (req courseRequest) input() workflow.CourseInput {
	return workflow.CourseInput{
		Name:         req.Name,
		Code:         req.Code,
		Description:  req.Description,
		DepartmentID: req.DepartmentID,
		Credits:      req.Credits,
	}
}

// Classes

func (h *handler) listAllClasses(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h, func() (any, error) { return h.Classes.List(r.Context()) })
}

func (h *handler) getAnyClass(w http.ResponseWriter, r *http.Request) {
	withID(w, r, h, func(id int64) (any, error) { return h.Classes.Get(r.Context(), id) })
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package web

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/internal/workflow"
)

func (h *handler) listOwnClasses(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h, func() (any, error) { return h.Classes.ListOwn(r.Context(), actor(r)) })
}

func (h *handler) getOwnClass(w http.ResponseWriter, r *http.Request) {
	withID(w, r, h, func(id int64) (any, error) { return h.Classes.GetOwn(r.Context(), actor(r), id) })
}

func (h *handler) createClass(w http.ResponseWriter, r *http.Request) {
	var req classRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	v, err := h.Classes.Create(r.Context(), actor(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	created(w, v)
}

func (h *handler) updateClass(w http.ResponseWriter, r *http.Request) {
	var req classRequest
	withBody(w, r, h, &req, func(id int64) (any, error) {
		in, err := req.input()
		if err != nil {
			return nil, err
		}
		return h.Classes.Update(r.Context(), actor(r), id, in)
	})
}

func (h *handler) activateClass(w http.ResponseWriter, r *http.Request) {
	withID(w, r, h, func(id int64) (any, error) { return h.Classes.SetActive(r.Context(), actor(r), id, true) })
}

func (h *handler) deactivateClass(w http.ResponseWriter, r *http.Request) {
	withID(w, r, h, func(id int64) (any, error) { return h.Classes.SetActive(r.Context(), actor(r), id, false) })
}

func (req classRequest) input() (workflow.ClassInput, error) {
	start, err := parseDate(req.StartDate)
	if err != nil {
		return workflow.ClassInput{}, err
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return workflow.ClassInput{}, err
	}
	return workflow.ClassInput{
		Name:      req.Name,
		CourseID:  req.CourseID,
		Semester:  req.Semester,
		StartDate: start,
		EndDate:   end,
	}, nil
}

func (h *handler) enroll(w http.ResponseWriter, r *http.Request) {
	var req enrollRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	v, err := h.Enrollments.Enroll(r.Context(), actor(r), req.StudentID, req.ClassID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	created(w, v)
}

func (h *handler) roster(w http.ResponseWriter, r *http.Request) {
	withID(w, r, h, func(id int64) (any, error) { return h.Enrollments.Roster(r.Context(), actor(r), id) })
}

func (h *handler) markAttendance(w http.ResponseWriter, r *http.Request) {
	var req markAttendanceRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	day, err := parseDate(req.Date)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	v, err := h.Attendance.Mark(r.Context(), actor(r), workflow.MarkInput{
		ClassID:   req.ClassID,
		StudentID: req.StudentID,
		Date:      day,
		Status:    req.Status,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	created(w, v)
}

func (h *handler) classAttendance(w http.ResponseWriter, r *http.Request) {
	withID(w, r, h, func(id int64) (any, error) { return h.Attendance.ClassHistory(r.Context(), actor(r), id) })
}

func (h *handler) exportAttendance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	export, err := h.Attendance.ExportClass(r.Context(), actor(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": export.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Data)
}

func (h *handler) createAssignment(w http.ResponseWriter, r *http.Request) {
	var req assignmentRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	due, err := parseDate(req.DueDate)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	v, err := h.Assignments.Create(r.Context(), actor(r), workflow.AssignmentInput{
		ClassID:     req.ClassID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     due,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	created(w, v)
}

func (h *handler) classAssignments(w http.ResponseWriter, r *http.Request) {
	withID(w, r, h, func(id int64) (any, error) { return h.Assignments.ListForClass(r.Context(), actor(r), id) })
}

func (h *handler) assignmentSubmissions(w http.ResponseWriter, r *http.Request) {
	withID(w, r, h, func(id int64) (any, error) { return h.Assignments.ListSubmissions(r.Context(), actor(r), id) })
}

func (h *handler) grade(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	withBody(w, r, h, &req, func(id int64) (any, error) {
		return h.Assignments.Grade(r.Context(), actor(r), id, workflow.GradeInput{Grade: req.Grade, Remarks: req.Remarks})
	})
}

func (h *handler) sendNotification(w http.ResponseWriter, r *http.Request) {
	var req notificationRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	role := req.RecipientRole
	if role == "" {
		role = string(auth.RoleStudent)
	}
	vs, err := h.Notifications.Send(r.Context(), actor(r), workflow.SendInput{
		Title:         req.Title,
		Message:       req.Message,
		RecipientRole: role,
		RecipientID:   req.RecipientID,
		StudentIDs:    req.StudentIDs,
		ClassID:       req.ClassID,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	created(w, vs)
}

func (h *handler) sentNotifications(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h, func() (any, error) { return h.Notifications.ListSent(r.Context(), actor(r)) })
}

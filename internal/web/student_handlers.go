// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package web

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/schoolhub/schoolhub/internal/workflow"
)

func (h *handler) myClasses(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h, func() (any, error) { return h.Enrollments.MyClasses(r.Context(), actor(r)) })
}

func (h *handler) myAttendance(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h, func() (any, error) { return h.Attendance.Mine(r.Context(), actor(r)) })
}

func (h *handler) myClassAttendance(w http.ResponseWriter, r *http.Request) {
	withID(w, r, h, func(id int64) (any, error) { return h.Attendance.MineForClass(r.Context(), actor(r), id) })
}

func (h *handler) viewAssignment(w http.ResponseWriter, r *http.Request) {
	withID(w, r, h, func(id int64) (any, error) { return h.Assignments.View(r.Context(), actor(r), id) })
}

// submit accepts either a JSON body naming the file or a multipart upload
// whose "file" part supplies the name. File contents are not stored.
func (h *handler) submit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	name, err := h.submittedFileName(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	v, err := h.Assignments.Submit(r.Context(), actor(r), id, workflow.SubmitInput{FileName: name})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	created(w, v)
}

func (h *handler) submittedFileName(w http.ResponseWriter, r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.EqualFold(mediaType, "multipart/form-data") {
		var req submitRequest
		if err := h.decode(w, r, &req); err != nil {
			return "", err
		}
		return req.FileName, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBodyBytes)
	reader, err := r.MultipartReader()
	if err != nil {
		return "", errBadUpload
	}
	for {
		part, err := reader.NextPart()
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return "", errBodyTooLarge
			}
			// No file part: let the workflow report the missing file.
			return "", nil
		}
		if part.FormName() == "file" {
			name := part.FileName()
			_ = part.Close()
			return name, nil
		}
		_ = part.Close()
	}
}

func (h *handler) mySubmissions(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h, func() (any, error) { return h.Assignments.MySubmissions(r.Context(), actor(r)) })
}

func (h *handler) mySubmission(w http.ResponseWriter, r *http.Request) {
	withID(w, r, h, func(id int64) (any, error) { return h.Assignments.MySubmission(r.Context(), actor(r), id) })
}

func (h *handler) myNotifications(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h, func() (any, error) { return h.Notifications.ListMine(r.Context(), actor(r)) })
}

func (h *handler) readNotification(w http.ResponseWriter, r *http.Request) {
	withID(w, r, h, func(id int64) (any, error) { return h.Notifications.Read(r.Context(), actor(r), id) })
}

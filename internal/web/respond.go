// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/schoolhub/schoolhub/internal/schema"
	"github.com/schoolhub/schoolhub/pkg/errutil"
)

// Transport-level failures.
var (
	errMissingToken     = errutil.Unauthorized("AUTH_TOKEN_MISSING", "Authorization bearer token is required")
	errPermissionDenied = errutil.Forbidden("PERMISSION_DENIED", "You do not have permission to perform this action")
	errRouteNotFound    = errutil.NotFound("ROUTE_NOT_FOUND", "Resource not found")
	errInvalidID        = errutil.Invalid("INVALID_ID", "Identifier must be a positive integer")
	errInvalidDate      = errutil.Invalid("INVALID_DATE", "Dates must be RFC 3339 timestamps or YYYY-MM-DD")
	errInvalidQuery     = errutil.Invalid("INVALID_QUERY", "Query parameter must be an integer")
	errBodyTooLarge     = errutil.Invalid("BODY_TOO_LARGE", "Request body is too large")
	errBadUpload        = errutil.Invalid("UPLOAD_INVALID", "Multipart upload could not be read")
)

// errorBody is the JSON shape of every failed request.
type errorBody struct {
	Success   bool                `json:"success"`
	Code      string              `json:"code"`
	Message   string              `json:"message"`
	Errors    []schema.FieldError `json:"errors,omitempty"`
	RequestID string              `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func ok(w http.ResponseWriter, payload any) {
	writeJSON(w, http.StatusOK, payload)
}

func created(w http.ResponseWriter, payload any) {
	writeJSON(w, http.StatusCreated, payload)
}

func noContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// fail maps err onto a status and body. Unclassified errors are logged,
// reported and replaced by the generic message.
func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	body := errorBody{RequestID: w.Header().Get(RequestIDHeader)}
	status := http.StatusInternalServerError

	if v, isViolation := schema.AsViolations(err); isViolation {
		status = http.StatusBadRequest
		body.Code = "VALIDATION_FAILED"
		body.Message = "One or more validation errors occurred."
		body.Errors = v.Fields
		writeJSON(w, status, body)
		return
	}

	if e, tagged := errutil.AsError(err); tagged {
		status = e.Kind.HTTPStatus()
		body.Code = e.Code
		body.Message = e.Message
		writeJSON(w, status, body)
		return
	}

	errutil.LogError(h.Logger.With("method", r.Method, "path", r.URL.Path), "request failed", err)
	h.Report(r.Context(), err)
	body.Code = "INTERNAL"
	body.Message = errutil.GenericMessage
	writeJSON(w, status, body)
}

// decode validates and decodes the JSON body into dst.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBodyTooLarge
		}
		return &schema.Violations{Fields: []schema.FieldError{{Field: "body", Message: "body could not be read"}}}
	}
	return h.validator.DecodeJSON(data, dst)
}

// respond writes the result of call as 200, or the mapped error.
func respond(w http.ResponseWriter, r *http.Request, h *handler, call func() (any, error)) {
	v, err := call()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ok(w, v)
}

// withID parses the {id} path parameter before responding.
func withID(w http.ResponseWriter, r *http.Request, h *handler, call func(id int64) (any, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, h, func() (any, error) { return call(id) })
}

// withBody parses {id} and decodes the body into dst before responding.
func withBody(w http.ResponseWriter, r *http.Request, h *handler, dst any, call func(id int64) (any, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.decode(w, r, dst); err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, r, h, func() (any, error) { return call(id) })
}

func remove(w http.ResponseWriter, r *http.Request, h *handler, del func(ctx context.Context, id int64) error) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := del(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	noContent(w)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// queryInt returns the integer query parameter, or 0 when absent.
func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errInvalidQuery
	}
	return n, nil
}

// parseDate accepts RFC 3339 timestamps and bare dates, always in UTC.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errInvalidDate
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package workflow

import (
	"context"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/schoolhub/schoolhub/internal/school"
	"github.com/schoolhub/schoolhub/internal/school/policy"
	"github.com/schoolhub/schoolhub/pkg/errutil"
)

// DefaultAllowedExtensions are the submission file types accepted when none
// are configured.
var DefaultAllowedExtensions = []string{".pdf", ".doc", ".docx", ".txt", ".zip"}

// Uploads controls submission file metadata.
type Uploads struct {
	// AllowedExtensions are lower-case, dot-prefixed extensions.
	AllowedExtensions []string
	// URLPrefix is joined with the stored file name to form FileURL.
	URLPrefix string
}

// AssignmentInput describes a new assignment.
type AssignmentInput struct {
	ClassID     int64
	Title       string
	Description *string
	DueDate     time.Time
}

// SubmitInput describes an uploaded file. Only metadata is recorded.
type SubmitInput struct {
	FileName string
}

// GradeInput is a teacher's grade for a submission.
type GradeInput struct {
	Grade   float64
	Remarks *string
}

// AssignmentWorkflow manages assignments, submissions and grading.
type AssignmentWorkflow struct {
	base
	uploads Uploads
}

// NewAssignmentWorkflow creates an AssignmentWorkflow.
func NewAssignmentWorkflow(d Deps, uploads Uploads) *AssignmentWorkflow {
	if len(uploads.AllowedExtensions) == 0 {
		uploads.AllowedExtensions = DefaultAllowedExtensions
	}
	if uploads.URLPrefix == "" {
		uploads.URLPrefix = "/submissions"
	}
	return &AssignmentWorkflow{base: newBase(d), uploads: uploads}
}

// Create sets a new assignment for a class the actor teaches.
func (w *AssignmentWorkflow) Create(ctx context.Context, actor school.Actor, in AssignmentInput) (*AssignmentView, error) {
	v, err := w.create(ctx, actor, in)
	return v, w.finish(ctx, "assignment.create", err)
}

func (w *AssignmentWorkflow) create(ctx context.Context, actor school.Actor, in AssignmentInput) (*AssignmentView, error) {
	class, err := w.class(ctx, in.ClassID)
	if err != nil {
		return nil, err
	}
	due := in.DueDate.UTC()
	if err := policy.CreateAssignment(actor, class, due, w.Clock.Now()); err != nil {
		return nil, err
	}

	a := &school.Assignment{
		ClassID:            class.ID,
		Title:              strings.TrimSpace(in.Title),
		Description:        in.Description,
		DueDate:            due,
		CreatedByTeacherID: actor.ID,
	}
	if err := w.Assignments.Create(ctx, a); err != nil {
		return nil, err
	}
	users, err := w.users(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	v := assignmentView(a, class.Name, users)
	return &v, nil
}

// ListForClass lists the assignments of a class the actor teaches.
func (w *AssignmentWorkflow) ListForClass(ctx context.Context, actor school.Actor, classID int64) ([]AssignmentView, error) {
	vs, err := w.listForClass(ctx, actor, classID)
	return vs, w.finish(ctx, "assignment.list", err)
}

func (w *AssignmentWorkflow) listForClass(ctx context.Context, actor school.Actor, classID int64) ([]AssignmentView, error) {
	class, err := w.class(ctx, classID)
	if err != nil {
		return nil, err
	}
	if err := policy.ListAssignments(actor, class); err != nil {
		return nil, err
	}
	assignments, err := w.Assignments.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.CreatedByTeacherID)
	}
	users, err := w.users(ctx, ids...)
	if err != nil {
		return nil, err
	}
	out := make([]AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, assignmentView(a, class.Name, users))
	}
	return out, nil
}

// View returns an assignment with the acting student's submission status.
func (w *AssignmentWorkflow) View(ctx context.Context, actor school.Actor, assignmentID int64) (*StudentAssignmentView, error) {
	v, err := w.view(ctx, actor, assignmentID)
	return v, w.finish(ctx, "assignment.view", err)
}

func (w *AssignmentWorkflow) view(ctx context.Context, actor school.Actor, assignmentID int64) (*StudentAssignmentView, error) {
	a, err := w.assignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	enrolled, err := w.enrolledIn(ctx, actor, a)
	if err != nil {
		return nil, err
	}
	if err := policy.ViewAssignment(actor, a, enrolled); err != nil {
		return nil, err
	}

	sub, err := w.Submissions.Find(ctx, a.ID, actor.ID)
	if sub, err = optional(sub, err, school.ErrNotFound); err != nil {
		return nil, err
	}
	class, err := w.class(ctx, a.ClassID)
	if err != nil {
		return nil, err
	}
	users, err := w.users(ctx, a.CreatedByTeacherID)
	if err != nil {
		return nil, err
	}
	var className string
	if class != nil {
		className = class.Name
	}
	return &StudentAssignmentView{
		AssignmentView: assignmentView(a, className, users),
		Status:         school.StatusOf(sub),
	}, nil
}

// Submit records the acting student's submission. The stored file name is a
// fresh UUID with the original extension.
func (w *AssignmentWorkflow) Submit(ctx context.Context, actor school.Actor, assignmentID int64, in SubmitInput) (*SubmissionView, error) {
	v, err := w.submit(ctx, actor, assignmentID, in)
	return v, w.finish(ctx, "submission.create", err)
}

func (w *AssignmentWorkflow) submit(ctx context.Context, actor school.Actor, assignmentID int64, in SubmitInput) (*SubmissionView, error) {
	a, err := w.assignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	enrolled, err := w.enrolledIn(ctx, actor, a)
	if err != nil {
		return nil, err
	}
	var existing *school.Submission
	if a != nil {
		existing, err = w.Submissions.Find(ctx, a.ID, actor.ID)
		if existing, err = optional(existing, err, school.ErrNotFound); err != nil {
			return nil, err
		}
	}
	if err := policy.SubmitAssignment(actor, a, enrolled, existing, w.Clock.Now()); err != nil {
		return nil, err
	}

	original, stored, err := w.storedName(in.FileName)
	if err != nil {
		return nil, err
	}
	url := path.Join(w.uploads.URLPrefix, stored)
	s := &school.Submission{
		AssignmentID:     a.ID,
		StudentID:        actor.ID,
		FileURL:          &url,
		OriginalFileName: original,
		StoredFileName:   stored,
	}
	if err := w.Submissions.Create(ctx, s); err != nil {
		return nil, err
	}
	users, err := w.users(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	v := submissionView(s, a.Title, users)
	return &v, nil
}

func (w *AssignmentWorkflow) storedName(fileName string) (original, stored string, err error) {
	original = filepath.Base(strings.TrimSpace(fileName))
	if original == "" || original == "." || original == string(filepath.Separator) {
		return "", "", errutil.Invalid("SUBMISSION_FILE_REQUIRED", "A file is required")
	}
	ext := strings.ToLower(filepath.Ext(original))
	if !slices.Contains(w.uploads.AllowedExtensions, ext) {
		return "", "", errutil.Invalid("SUBMISSION_FILE_TYPE",
			"File type not allowed. Allowed types: "+strings.Join(w.uploads.AllowedExtensions, ", "))
	}
	return original, uuid.NewString() + ext, nil
}

// Grade records a grade on a submission to one of the actor's classes.
func (w *AssignmentWorkflow) Grade(ctx context.Context, actor school.Actor, submissionID int64, in GradeInput) (*SubmissionView, error) {
	v, err := w.grade(ctx, actor, submissionID, in)
	return v, w.finish(ctx, "submission.grade", err)
}

func (w *AssignmentWorkflow) grade(ctx context.Context, actor school.Actor, submissionID int64, in GradeInput) (*SubmissionView, error) {
	s, err := w.submission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	var (
		a     *school.Assignment
		class *school.Class
	)
	if s != nil {
		if a, err = w.assignment(ctx, s.AssignmentID); err != nil {
			return nil, err
		}
	}
	if a != nil {
		if class, err = w.class(ctx, a.ClassID); err != nil {
			return nil, err
		}
	}
	if err := policy.GradeSubmission(actor, s, a, class, in.Grade); err != nil {
		return nil, err
	}

	now := w.Clock.Now()
	grade, teacherID := in.Grade, actor.ID
	s.Grade = &grade
	s.Remarks = in.Remarks
	s.GradedByTeacherID = &teacherID
	s.GradedDate = &now
	if err := w.Submissions.Grade(ctx, s); err != nil {
		return nil, persisted(err, policy.ErrSubmissionNotFound)
	}
	users, err := w.users(ctx, s.StudentID, actor.ID)
	if err != nil {
		return nil, err
	}
	v := submissionView(s, a.Title, users)
	return &v, nil
}

// ListSubmissions lists the submissions to an assignment in one of the
// actor's classes.
func (w *AssignmentWorkflow) ListSubmissions(ctx context.Context, actor school.Actor, assignmentID int64) ([]SubmissionView, error) {
	vs, err := w.listSubmissions(ctx, actor, assignmentID)
	return vs, w.finish(ctx, "submission.list", err)
}

func (w *AssignmentWorkflow) listSubmissions(ctx context.Context, actor school.Actor, assignmentID int64) ([]SubmissionView, error) {
	a, err := w.assignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	var class *school.Class
	if a != nil {
		if class, err = w.class(ctx, a.ClassID); err != nil {
			return nil, err
		}
	}
	if err := policy.ListSubmissions(actor, a, class); err != nil {
		return nil, err
	}
	subs, err := w.Submissions.ListByAssignment(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	return w.submissionViews(ctx, subs, map[int64]*school.Assignment{a.ID: a})
}

// MySubmission returns one of the acting student's submissions.
func (w *AssignmentWorkflow) MySubmission(ctx context.Context, actor school.Actor, submissionID int64) (*SubmissionView, error) {
	v, err := w.mySubmission(ctx, actor, submissionID)
	return v, w.finish(ctx, "submission.view", err)
}

func (w *AssignmentWorkflow) mySubmission(ctx context.Context, actor school.Actor, submissionID int64) (*SubmissionView, error) {
	s, err := w.submission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if err := policy.ViewSubmission(actor, s); err != nil {
		return nil, err
	}
	a, err := w.assignment(ctx, s.AssignmentID)
	if err != nil {
		return nil, err
	}
	assignments := map[int64]*school.Assignment{}
	if a != nil {
		assignments[a.ID] = a
	}
	vs, err := w.submissionViews(ctx, []*school.Submission{s}, assignments)
	if err != nil {
		return nil, err
	}
	return &vs[0], nil
}

// MySubmissions lists the acting student's submissions, newest first.
func (w *AssignmentWorkflow) MySubmissions(ctx context.Context, actor school.Actor) ([]SubmissionView, error) {
	vs, err := w.mySubmissions(ctx, actor)
	return vs, w.finish(ctx, "submission.mine", err)
}

func (w *AssignmentWorkflow) mySubmissions(ctx context.Context, actor school.Actor) ([]SubmissionView, error) {
	subs, err := w.Submissions.ListByStudent(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	assignments := make(map[int64]*school.Assignment, len(subs))
	for _, s := range subs {
		if _, ok := assignments[s.AssignmentID]; ok {
			continue
		}
		a, err := w.assignment(ctx, s.AssignmentID)
		if err != nil {
			return nil, err
		}
		if a != nil {
			assignments[a.ID] = a
		}
	}
	return w.submissionViews(ctx, subs, assignments)
}

func (w *AssignmentWorkflow) submissionViews(ctx context.Context, subs []*school.Submission, assignments map[int64]*school.Assignment) ([]SubmissionView, error) {
	ids := make([]int64, 0, 2*len(subs))
	for _, s := range subs {
		ids = append(ids, s.StudentID)
		if s.GradedByTeacherID != nil {
			ids = append(ids, *s.GradedByTeacherID)
		}
	}
	users, err := w.users(ctx, ids...)
	if err != nil {
		return nil, err
	}
	out := make([]SubmissionView, 0, len(subs))
	for _, s := range subs {
		var title string
		if a, ok := assignments[s.AssignmentID]; ok {
			title = a.Title
		}
		out = append(out, submissionView(s, title, users))
	}
	return out, nil
}

// enrolledIn reports whether actor is enrolled in a's class. A nil a is
// never enrolled.
func (w *AssignmentWorkflow) enrolledIn(ctx context.Context, actor school.Actor, a *school.Assignment) (bool, error) {
	if a == nil {
		return false, nil
	}
	return w.Enrollments.Exists(ctx, actor.ID, a.ClassID)
}

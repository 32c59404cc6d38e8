// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package web

import (
	"time"

	"github.com/schoolhub/schoolhub/internal/auth"
)

// Request bodies. Their JSON Schemas are reflected from these declarations;
// business constraints stay in the workflows so their messages and ordering
// are preserved.

type loginRequest struct {
	Email    string `json:"email" jsonschema:"minLength=1,maxLength=150"`
	Password string `json:"password" jsonschema:"minLength=1"`
}

type registerRequest struct {
	Name     string `json:"name" jsonschema:"minLength=1,maxLength=100"`
	Email    string `json:"email" jsonschema:"minLength=1,maxLength=150"`
	Password string `json:"password" jsonschema:"minLength=1,maxLength=255"`
	Role     string `json:"role" jsonschema:"minLength=1,maxLength=50"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" jsonschema:"minLength=1"`
}

type userUpdateRequest struct {
	Name string `json:"name" jsonschema:"minLength=1,maxLength=100"`
	Role string `json:"role" jsonschema:"minLength=1,maxLength=50"`
}

type departmentRequest struct {
	Name               string  `json:"name" jsonschema:"minLength=1,maxLength=100"`
	Description        *string `json:"description,omitempty" jsonschema:"maxLength=500"`
	HeadOfDepartmentID *int64  `json:"headOfDepartmentId,omitempty" jsonschema:"minimum=1"`
}

type courseRequest struct {
	Name         string  `json:"name" jsonschema:"minLength=1,maxLength=100"`
	Code         string  `json:"code" jsonschema:"minLength=1,maxLength=20"`
	Description  *string `json:"description,omitempty" jsonschema:"maxLength=500"`
	DepartmentID int64   `json:"departmentId" jsonschema:"minimum=1"`
	Credits      int     `json:"credits"`
}

type classRequest struct {
	Name      string `json:"name" jsonschema:"minLength=1,maxLength=100"`
	CourseID  int64  `json:"courseId" jsonschema:"minimum=1"`
	Semester  string `json:"semester" jsonschema:"minLength=1,maxLength=50"`
	StartDate string `json:"startDate" jsonschema:"minLength=1"`
	EndDate   string `json:"endDate" jsonschema:"minLength=1"`
}

type enrollRequest struct {
	ClassID   int64 `json:"classId" jsonschema:"minimum=1"`
	StudentID int64 `json:"studentId" jsonschema:"minimum=1"`
}

type markAttendanceRequest struct {
	ClassID   int64  `json:"classId" jsonschema:"minimum=1"`
	StudentID int64  `json:"studentId" jsonschema:"minimum=1"`
	Date      string `json:"date" jsonschema:"minLength=1"`
	Status    string `json:"status" jsonschema:"minLength=1"`
}

type assignmentRequest struct {
	ClassID     int64   `json:"classId" jsonschema:"minimum=1"`
	Title       string  `json:"title" jsonschema:"minLength=1,maxLength=200"`
	Description *string `json:"description,omitempty" jsonschema:"maxLength=2000"`
	DueDate     string  `json:"dueDate" jsonschema:"minLength=1"`
}

type submitRequest struct {
	FileName string `json:"fileName"`
}

type gradeRequest struct {
	Grade   float64 `json:"grade"`
	Remarks *string `json:"remarks,omitempty" jsonschema:"maxLength=500"`
}

type notificationRequest struct {
	Title         string  `json:"title" jsonschema:"minLength=1,maxLength=200"`
	Message       string  `json:"message" jsonschema:"minLength=1,maxLength=1000"`
	RecipientRole string  `json:"recipientRole,omitempty"`
	RecipientID   *int64  `json:"recipientId,omitempty" jsonschema:"minimum=1"`
	StudentIDs    []int64 `json:"studentIds,omitempty"`
	ClassID       *int64  `json:"classId,omitempty" jsonschema:"minimum=1"`
}

type tokenResponse struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	ExpiresAt    time.Time     `json:"expiresAt"`
	User         auth.Identity `json:"user"`
}

func tokens(p *auth.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		ExpiresAt:    p.ExpiresAt,
		User:         p.User,
	}
}

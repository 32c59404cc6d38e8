// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/schoolhub/schoolhub/internal/access"
	"github.com/schoolhub/schoolhub/internal/auth"
	authpg "github.com/schoolhub/schoolhub/internal/auth/postgres"
	authredis "github.com/schoolhub/schoolhub/internal/auth/redis"
	"github.com/schoolhub/schoolhub/internal/cache"
	"github.com/schoolhub/schoolhub/internal/clock"
	schoolpg "github.com/schoolhub/schoolhub/internal/school/postgres"
	"github.com/schoolhub/schoolhub/internal/web"
	"github.com/schoolhub/schoolhub/internal/workflow"
)

// newAPIServer wires the full API over the suite's Postgres and Redis.
func newAPIServer() *httptest.Server {
	logger := slog.New(slog.NewTextHandler(GinkgoWriter, nil))
	clk := clock.Real()

	tokens, err := auth.NewTokenIssuer(auth.TokenConfig{
		Secret:    []byte("integration-secret-that-is-long-enough"),
		Issuer:    "schoolhub-test",
		AccessTTL: 15 * time.Minute,
	})
	Expect(err).NotTo(HaveOccurred())

	users := authpg.NewUserRepository(pool)
	hasher := auth.NewArgon2idHasher()
	authService, err := auth.NewService(auth.ServiceConfig{
		Users:      users,
		Sessions:   authredis.NewRefreshStore(redisClient),
		Hasher:     hasher,
		Tokens:     tokens,
		Clock:      clk,
		RefreshTTL: time.Hour,
		Logger:     logger,
	})
	Expect(err).NotTo(HaveOccurred())

	d := workflow.Deps{
		Users:         users,
		Departments:   schoolpg.NewDepartmentRepository(pool),
		Courses:       schoolpg.NewCourseRepository(pool),
		Classes:       schoolpg.NewClassRepository(pool),
		Enrollments:   schoolpg.NewEnrollmentRepository(pool),
		Attendance:    schoolpg.NewAttendanceRepository(pool),
		Assignments:   schoolpg.NewAssignmentRepository(pool),
		Submissions:   schoolpg.NewSubmissionRepository(pool),
		Notifications: schoolpg.NewNotificationRepository(pool),
		Clock:         clk,
		Logger:        logger,
	}

	h, err := web.NewHandler(web.Config{
		Auth:          authService,
		Access:        access.NewStaticAccessControl(),
		Users:         workflow.NewUserService(d, hasher),
		Departments:   workflow.NewDepartmentService(d),
		Courses:       workflow.NewCourseService(d, cache.NewRedis(redisClient), time.Minute),
		Classes:       workflow.NewClassWorkflow(d),
		Enrollments:   workflow.NewEnrollmentWorkflow(d),
		Attendance:    workflow.NewAttendanceWorkflow(d),
		Assignments:   workflow.NewAssignmentWorkflow(d, workflow.Uploads{}),
		Notifications: workflow.NewNotificationFanout(d),
		Logger:        logger,
		Clock:         clk,
	})
	Expect(err).NotTo(HaveOccurred())
	return httptest.NewServer(h)
}

type apiClient struct {
	base string
}

type apiResponse struct {
	status int
	header http.Header
	body   []byte
}

func (r apiResponse) decode(dst any) {
	ExpectWithOffset(1, json.Unmarshal(r.body, dst)).To(Succeed(), string(r.body))
}

func (r apiResponse) code() string {
	var body struct {
		Code string `json:"code"`
	}
	ExpectWithOffset(1, json.Unmarshal(r.body, &body)).To(Succeed(), string(r.body))
	return body.Code
}

func (c apiClient) do(method, path, token string, payload any) apiResponse {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		ExpectWithOffset(1, err).NotTo(HaveOccurred())
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, c.base+path, body)
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	return apiResponse{status: resp.StatusCode, header: resp.Header, body: data}
}

type session struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	User         auth.Identity `json:"user"`
}

func (c apiClient) register(name, email, role string) session {
	resp := c.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "Secret1!", "role": role,
	})
	ExpectWithOffset(1, resp.status).To(Equal(http.StatusOK), string(resp.body))
	var s session
	resp.decode(&s)
	return s
}

var _ = Describe("School workflow over HTTP", Ordered, func() {
	var (
		ctx     context.Context
		server  *httptest.Server
		api     apiClient
		admin   session
		teacher session
		student session
	)

	BeforeAll(func() {
		ctx = context.Background()
		truncateAll(ctx)
		server = newAPIServer()
		api = apiClient{base: server.URL}

		admin = api.register("Ada Admin", "ada@school.test", "Admin")
		teacher = api.register("Tom Teacher", "tom@school.test", "Teacher")
		student = api.register("Sue Student", "sue@school.test", "Student")
	})

	AfterAll(func() {
		if server != nil {
			server.Close()
		}
	})

	var (
		courseID     int64
		classID      int64
		assignmentID int64
		submissionID int64
	)

	It("rejects anonymous requests", func() {
		resp := api.do(http.MethodGet, "/api/auth/me", "", nil)
		Expect(resp.status).To(Equal(http.StatusUnauthorized))
	})

	It("lets an admin build the catalog", func() {
		resp := api.do(http.MethodPost, "/api/admin/departments", admin.AccessToken, map[string]any{
			"name": "Mathematics", "headOfDepartmentId": teacher.User.ID,
		})
		Expect(resp.status).To(Equal(http.StatusCreated), string(resp.body))
		var dept workflow.DepartmentView
		resp.decode(&dept)
		Expect(dept.HeadOfDepartmentName).To(Equal("Tom Teacher"))

		resp = api.do(http.MethodPost, "/api/admin/courses", admin.AccessToken, map[string]any{
			"name": "Algebra I", "code": "MATH101", "departmentId": dept.ID, "credits": 3,
		})
		Expect(resp.status).To(Equal(http.StatusCreated), string(resp.body))
		var course workflow.CourseView
		resp.decode(&course)
		courseID = course.ID

		resp = api.do(http.MethodGet, "/api/admin/courses", teacher.AccessToken, nil)
		Expect(resp.status).To(Equal(http.StatusForbidden))
	})

	It("serves the course lookup to every role", func() {
		for _, token := range []string{student.AccessToken, student.AccessToken, teacher.AccessToken} {
			resp := api.do(http.MethodGet, "/api/lookup/courses", token, nil)
			Expect(resp.status).To(Equal(http.StatusOK), string(resp.body))
			var courses []workflow.CourseView
			resp.decode(&courses)
			Expect(courses).To(HaveLen(1))
			Expect(courses[0].Code).To(Equal("MATH101"))
		}
	})

	It("lets the teacher open a class and enroll the student once", func() {
		resp := api.do(http.MethodPost, "/api/teacher/classes", teacher.AccessToken, map[string]any{
			"name": "Algebra A", "courseId": courseID, "semester": "Fall",
			"startDate": "2026-09-01", "endDate": "2099-06-30",
		})
		Expect(resp.status).To(Equal(http.StatusCreated), string(resp.body))
		var class workflow.ClassView
		resp.decode(&class)
		Expect(class.IsActive).To(BeTrue())
		Expect(class.TeacherID).To(Equal(teacher.User.ID))
		classID = class.ID

		enroll := map[string]any{"classId": classID, "studentId": student.User.ID}
		resp = api.do(http.MethodPost, "/api/teacher/enrollments", teacher.AccessToken, enroll)
		Expect(resp.status).To(Equal(http.StatusCreated), string(resp.body))

		resp = api.do(http.MethodPost, "/api/teacher/enrollments", teacher.AccessToken, enroll)
		Expect(resp.status).To(Equal(http.StatusBadRequest))
		Expect(resp.code()).To(Equal("ENROLLMENT_EXISTS"))

		resp = api.do(http.MethodGet, "/api/student/classes", student.AccessToken, nil)
		Expect(resp.status).To(Equal(http.StatusOK))
		var mine []workflow.EnrolledClassView
		resp.decode(&mine)
		Expect(mine).To(HaveLen(1))
		Expect(mine[0].CourseCode).To(Equal("MATH101"))
	})

	It("records attendance once per day and exports it", func() {
		mark := map[string]any{"classId": classID, "studentId": student.User.ID, "date": "2026-09-02", "status": "Present"}
		resp := api.do(http.MethodPost, "/api/teacher/attendance", teacher.AccessToken, mark)
		Expect(resp.status).To(Equal(http.StatusCreated), string(resp.body))

		resp = api.do(http.MethodPost, "/api/teacher/attendance", teacher.AccessToken, mark)
		Expect(resp.status).To(Equal(http.StatusBadRequest))
		Expect(resp.code()).To(Equal("ATTENDANCE_EXISTS"))

		resp = api.do(http.MethodGet, "/api/student/attendance", student.AccessToken, nil)
		Expect(resp.status).To(Equal(http.StatusOK))
		var history []workflow.AttendanceView
		resp.decode(&history)
		Expect(history).To(HaveLen(1))

		resp = api.do(http.MethodGet, fmt.Sprintf("/api/teacher/classes/%d/attendance/export", classID), teacher.AccessToken, nil)
		Expect(resp.status).To(Equal(http.StatusOK))
		Expect(resp.header.Get("Content-Type")).To(ContainSubstring("spreadsheetml"))
		Expect(resp.body[:2]).To(Equal([]byte("PK")))
	})

	It("runs an assignment from creation to grade", func() {
		resp := api.do(http.MethodPost, "/api/teacher/assignments", teacher.AccessToken, map[string]any{
			"classId": classID, "title": "Homework 1", "dueDate": "2099-01-01T00:00:00Z",
		})
		Expect(resp.status).To(Equal(http.StatusCreated), string(resp.body))
		var assignment workflow.AssignmentView
		resp.decode(&assignment)
		assignmentID = assignment.ID

		resp = api.do(http.MethodPost, fmt.Sprintf("/api/student/assignments/%d/submit", assignmentID), student.AccessToken,
			map[string]string{"fileName": "answers.pdf"})
		Expect(resp.status).To(Equal(http.StatusCreated), string(resp.body))
		var submission workflow.SubmissionView
		resp.decode(&submission)
		Expect(submission.OriginalFileName).To(Equal("answers.pdf"))
		submissionID = submission.ID

		resp = api.do(http.MethodPost, fmt.Sprintf("/api/student/assignments/%d/submit", assignmentID), student.AccessToken,
			map[string]string{"fileName": "again.pdf"})
		Expect(resp.status).To(Equal(http.StatusBadRequest))
		Expect(resp.code()).To(Equal("SUBMISSION_EXISTS"))

		resp = api.do(http.MethodPost, fmt.Sprintf("/api/teacher/submissions/%d/grade", submissionID), teacher.AccessToken,
			map[string]any{"grade": 92.5, "remarks": "Well done"})
		Expect(resp.status).To(Equal(http.StatusOK), string(resp.body))

		resp = api.do(http.MethodGet, fmt.Sprintf("/api/student/assignments/%d", assignmentID), student.AccessToken, nil)
		Expect(resp.status).To(Equal(http.StatusOK))
		var view workflow.StudentAssignmentView
		resp.decode(&view)
		Expect(string(view.Status)).To(Equal("Graded"))

		resp = api.do(http.MethodGet, fmt.Sprintf("/api/student/submissions/%d", submissionID), student.AccessToken, nil)
		Expect(resp.status).To(Equal(http.StatusOK))
		resp.decode(&submission)
		Expect(submission.Grade).NotTo(BeNil())
		Expect(*submission.Grade).To(BeNumerically("==", 92.5))
	})

	It("delivers class notifications and marks them read", func() {
		resp := api.do(http.MethodPost, "/api/teacher/notifications", teacher.AccessToken, map[string]any{
			"title": "Quiz", "message": "Quiz on Friday", "recipientRole": "Student", "classId": classID,
		})
		Expect(resp.status).To(Equal(http.StatusCreated), string(resp.body))
		var sent []workflow.NotificationView
		resp.decode(&sent)
		Expect(sent).To(HaveLen(1))

		resp = api.do(http.MethodGet, fmt.Sprintf("/api/student/notifications/%d", sent[0].ID), student.AccessToken, nil)
		Expect(resp.status).To(Equal(http.StatusOK), string(resp.body))

		resp = api.do(http.MethodGet, "/api/student/notifications", student.AccessToken, nil)
		Expect(resp.status).To(Equal(http.StatusOK))
		var inbox []workflow.NotificationView
		resp.decode(&inbox)
		Expect(inbox).To(HaveLen(1))
		Expect(inbox[0].IsRead).To(BeTrue())
	})

	It("rotates refresh tokens and rejects reuse", func() {
		resp := api.do(http.MethodPost, "/api/auth/refresh", "", map[string]string{"refreshToken": student.RefreshToken})
		Expect(resp.status).To(Equal(http.StatusOK), string(resp.body))
		var rotated session
		resp.decode(&rotated)
		Expect(rotated.RefreshToken).NotTo(Equal(student.RefreshToken))

		resp = api.do(http.MethodPost, "/api/auth/refresh", "", map[string]string{"refreshToken": student.RefreshToken})
		Expect(resp.status).To(Equal(http.StatusUnauthorized))

		resp = api.do(http.MethodPost, "/api/auth/logout", "", map[string]string{"refreshToken": rotated.RefreshToken})
		Expect(resp.status).To(Equal(http.StatusNoContent))

		resp = api.do(http.MethodPost, "/api/auth/refresh", "", map[string]string{"refreshToken": rotated.RefreshToken})
		Expect(resp.status).To(Equal(http.StatusUnauthorized))
	})
})

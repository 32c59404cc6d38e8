// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

//go:build integration

package store_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/schoolhub/schoolhub/internal/store"
)

var _ = Describe("Migrator", Ordered, func() {
	var migrator *store.Migrator

	BeforeAll(func() {
		var err error
		migrator, err = store.NewMigrator(connStr)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { _ = migrator.Close() })
	})

	It("starts at version zero", func() {
		version, dirty, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(BeZero())
		Expect(dirty).To(BeFalse())
	})

	It("applies, steps and rolls back every migration", func() {
		Expect(migrator.Up()).To(Succeed())
		st, err := migrator.Status()
		Expect(err).NotTo(HaveOccurred())
		Expect(st.Pending).To(BeEmpty())
		latest := st.Current.Version

		Expect(migrator.Steps(-1)).To(Succeed())
		version, _, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(Equal(latest - 1))

		Expect(migrator.Steps(1)).To(Succeed())
		Expect(migrator.Down()).To(Succeed())
		version, _, err = migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(version).To(BeZero())

		Expect(migrator.Up()).To(Succeed())
	})

	It("enforces the enrollment unique constraint by name", func() {
		ctx := context.Background()
		pool, err := store.Connect(ctx, connStr, store.ConnectOptions{Timeout: 10 * time.Second})
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(pool.Close)

		teacher := insertUser(ctx, pool, "t@school.test", "Teacher")
		student := insertUser(ctx, pool, "s@school.test", "Student")

		var deptID, courseID, classID int64
		Expect(pool.QueryRow(ctx, `INSERT INTO departments (name) VALUES ('Science') RETURNING id`).Scan(&deptID)).To(Succeed())
		Expect(pool.QueryRow(ctx, `INSERT INTO courses (name, code, department_id, credits) VALUES ('Physics', 'PHY1', $1, 3) RETURNING id`, deptID).Scan(&courseID)).To(Succeed())
		Expect(pool.QueryRow(ctx, `
			INSERT INTO classes (name, course_id, teacher_id, semester, start_date, end_date)
			VALUES ('PHY1-A', $1, $2, 'Fall', '2026-09-01', '2026-12-20') RETURNING id`,
			courseID, teacher).Scan(&classID)).To(Succeed())

		_, err = pool.Exec(ctx, `INSERT INTO class_enrollments (student_id, class_id) VALUES ($1, $2)`, student, classID)
		Expect(err).NotTo(HaveOccurred())
		_, err = pool.Exec(ctx, `INSERT INTO class_enrollments (student_id, class_id) VALUES ($1, $2)`, student, classID)
		name, ok := store.UniqueViolation(err)
		Expect(ok).To(BeTrue())
		Expect(name).To(Equal(store.ConstraintEnrollmentUnique))
	})
})

func insertUser(ctx context.Context, pool *pgxpool.Pool, email, role string) int64 {
	var id int64
	Expect(pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, role) VALUES ($1, $2, 'x', $3) RETURNING id`,
		email, email, role).Scan(&id)).To(Succeed())
	return id
}

var _ = Describe("Connect", func() {
	It("fails fast on an unreachable host", func() {
		_, err := store.Connect(context.Background(),
			"postgres://nobody@127.0.0.1:1/none?sslmode=disable",
			store.ConnectOptions{Timeout: 2 * time.Second, BaseDelay: 50 * time.Millisecond, MaxAttempts: 2})
		Expect(err).To(HaveOccurred())
	})
})

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

//go:build integration

package cli_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
)

const seedFile = `
users:
  - name: Ada Admin
    email: admin@school.test
    password: changeme
    role: Admin
  - name: Tom Teacher
    email: tom@school.test
    password: changeme
    role: Teacher
departments:
  - name: Mathematics
    head: tom@school.test
    courses:
      - name: Algebra I
        code: MATH101
        credits: 3
`

var _ = Describe("Migrate and seed commands", func() {
	var (
		ctx      context.Context
		seedPath string
	)

	BeforeEach(func() {
		ctx = context.Background()
		resetDatabase(ctx, env.pool)

		seedPath = filepath.Join(GinkgoT().TempDir(), "seed.yaml")
		Expect(os.WriteFile(seedPath, []byte(seedFile), 0o600)).To(Succeed())

		output, err := schoolhub(ctx, env.connStr, "migrate", "up").CombinedOutput()
		Expect(err).NotTo(HaveOccurred(), "migrate failed: %s", string(output))
		Expect(string(output)).To(ContainSubstring("Migrations completed successfully"))
	})

	It("reports no pending migrations after up", func() {
		output, err := schoolhub(ctx, env.connStr, "migrate", "status").CombinedOutput()
		Expect(err).NotTo(HaveOccurred(), "status failed: %s", string(output))
		Expect(string(output)).To(ContainSubstring("Current version:"))
		Expect(string(output)).NotTo(ContainSubstring("pending"))
	})

	It("seeds users, departments and courses", func() {
		output, err := schoolhub(ctx, env.connStr, "seed", "--file", seedPath).CombinedOutput()
		Expect(err).NotTo(HaveOccurred(), "seed failed: %s", string(output))
		Expect(string(output)).To(ContainSubstring("Users: 2 created, 0 already present"))
		Expect(string(output)).To(ContainSubstring("Seeding complete!"))

		var head string
		err = env.pool.QueryRow(ctx, `
			SELECT u.email FROM departments d JOIN users u ON u.id = d.head_of_department_id
			WHERE d.name = 'Mathematics'`).Scan(&head)
		Expect(err).NotTo(HaveOccurred())
		Expect(head).To(Equal("tom@school.test"))

		var role string
		Expect(env.pool.QueryRow(ctx, `SELECT role FROM users WHERE email = 'admin@school.test'`).Scan(&role)).To(Succeed())
		Expect(role).To(Equal("Admin"))
	})

	It("is idempotent", func() {
		output, err := schoolhub(ctx, env.connStr, "seed", "--file", seedPath).CombinedOutput()
		Expect(err).NotTo(HaveOccurred(), "first seed failed: %s", string(output))

		output, err = schoolhub(ctx, env.connStr, "seed", "--file", seedPath).CombinedOutput()
		Expect(err).NotTo(HaveOccurred(), "second seed failed: %s", string(output))
		Expect(string(output)).To(ContainSubstring("Users: 0 created, 2 already present"))
		Expect(string(output)).To(ContainSubstring("Courses: 0 created, 1 already present"))

		var count int
		Expect(env.pool.QueryRow(ctx, `SELECT COUNT(*) FROM courses WHERE code = 'MATH101'`).Scan(&count)).To(Succeed())
		Expect(count).To(Equal(1))
	})

	It("fails with CONFIG_INVALID when no database URL is configured", func() {
		output, err := schoolhub(ctx, "", "seed", "--file", seedPath).CombinedOutput()
		Expect(err).To(HaveOccurred())
		Expect(string(output)).To(ContainSubstring("DATABASE_URL"))
	})
})

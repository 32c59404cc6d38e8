// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/schoolhub/schoolhub/internal/auth"
	authpg "github.com/schoolhub/schoolhub/internal/auth/postgres"
	"github.com/schoolhub/schoolhub/internal/clock"
	"github.com/schoolhub/schoolhub/internal/config"
	schoolpg "github.com/schoolhub/schoolhub/internal/school/postgres"
	"github.com/schoolhub/schoolhub/internal/seed"
	"github.com/schoolhub/schoolhub/internal/store"
	"github.com/schoolhub/schoolhub/internal/workflow"
	"github.com/schoolhub/schoolhub/internal/xdg"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	file    string
	timeout time.Duration
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	return newSeedCmd(nil)
}

func newSeedCmd(deps *SeedDeps) *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the initial users, departments and courses",
		Long: `Reads a seed file and creates every user, department and course it
lists that does not exist yet. Running it again creates nothing new.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, cfg, deps)
		},
	}

	cmd.Flags().StringVar(&cfg.file, "file", "", "seed file (default: XDG_CONFIG_HOME/schoolhub/seed.yaml)")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")

	return cmd
}

func runSeed(cmd *cobra.Command, sc *seedConfig, deps *SeedDeps) error {
	deps = deps.withDefaults()

	path := sc.file
	if path == "" {
		path = xdg.SeedFile()
	}
	file, err := seed.Load(path)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return oops.With("operation", "load configuration").Wrap(err)
	}
	databaseURL, err := getDatabaseURL(cfg)
	if err != nil {
		return err
	}

	// cmd.Context() carries SIGINT/SIGTERM cancellation.
	ctx, cancel := context.WithTimeout(cmd.Context(), sc.timeout)
	defer cancel()

	cmd.Println("Connecting to database...")
	pool, err := deps.PoolFactory(ctx, databaseURL, store.ConnectOptions{Timeout: cfg.Database.ConnectTimeout})
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer pool.Close()

	sum, err := newSeeder(cfg, pool).Apply(ctx, file)
	if err != nil {
		return err
	}

	cmd.Printf("Users: %d created, %d already present\n", sum.UsersCreated, sum.UsersSkipped)
	cmd.Printf("Departments: %d created, %d already present\n", sum.DepartmentsCreated, sum.DepartmentsSkipped)
	cmd.Printf("Courses: %d created, %d already present\n", sum.CoursesCreated, sum.CoursesSkipped)
	cmd.Println("Seeding complete!")
	return nil
}

// newSeeder wires the seed services straight onto the database. It runs
// without a course cache; a running API sees new courses once its cached
// lookup expires.
func newSeeder(cfg *config.Config, db store.DB) *seed.Seeder {
	users := authpg.NewUserRepository(db)
	wd := workflow.Deps{
		Users:       users,
		Departments: schoolpg.NewDepartmentRepository(db),
		Courses:     schoolpg.NewCourseRepository(db),
		Clock:       clock.Real(),
		Logger:      slog.Default(),
	}
	return &seed.Seeder{
		Lookup:      users,
		Users:       workflow.NewUserService(wd, auth.NewArgon2idHasher()),
		Departments: workflow.NewDepartmentService(wd),
		Courses:     workflow.NewCourseService(wd, nil, cfg.Cache.CourseTTL),
	}
}

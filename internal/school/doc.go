// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

// Package school defines the school domain: departments, courses, classes,
// enrollments, attendance, assignments, submissions and notifications, and the
// repository contracts that persist them.
//
// Entities are plain snapshots. Business rules live in package policy and the
// operations that sequence them live in package workflow.
package school

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

// Package postgres implements the school repositories on PostgreSQL.
//
// Reads never return soft-deleted rows. Absent rows are reported by wrapping
// school.ErrNotFound, and unique-constraint violations become the Conflict
// errors the workflows surface to callers.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/schoolhub/schoolhub/internal/school"
	"github.com/schoolhub/schoolhub/internal/store"
)

type scanFunc[T any] func(pgx.Row) (*T, error)

// getOne runs a single-row lookup. pgx.ErrNoRows becomes school.ErrNotFound
// under notFoundCode.
func getOne[T any](ctx context.Context, db store.DB, scan scanFunc[T], notFoundCode, failCode string, id int64, query string, args ...any) (*T, error) {
	v, err := scan(db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code(notFoundCode).With("id", id).Wrap(school.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code(failCode).With("id", id).Wrap(err)
	}
	return v, nil
}

func queryAll[T any](ctx context.Context, db store.DB, scan scanFunc[T], code, operation, query string, args ...any) ([]*T, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, oops.Code(code).With("operation", operation).Wrap(err)
	}
	defer rows.Close()

	var out []*T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, oops.Code(code).With("operation", operation).Wrap(err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code(code).With("operation", operation).Wrap(err)
	}
	return out, nil
}

func queryExists(ctx context.Context, db store.DB, code, operation, query string, args ...any) (bool, error) {
	var ok bool
	if err := db.QueryRow(ctx, `SELECT EXISTS (`+query+`)`, args...).Scan(&ok); err != nil {
		return false, oops.Code(code).With("operation", operation).Wrap(err)
	}
	return ok, nil
}

// execOne runs a write that must touch exactly one live row.
func execOne(ctx context.Context, db store.DB, notFoundCode, failCode, operation string, id int64, query string, args ...any) error {
	result, err := db.Exec(ctx, query, args...)
	if err != nil {
		return oops.Code(failCode).With("operation", operation).With("id", id).Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code(notFoundCode).With("id", id).Wrap(school.ErrNotFound)
	}
	return nil
}

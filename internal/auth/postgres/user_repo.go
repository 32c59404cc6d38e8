// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

// Package postgres implements the auth repositories on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/internal/store"
	"github.com/schoolhub/schoolhub/pkg/errutil"
)

const userColumns = `id, name, email, password_hash, role, is_deleted, created_at, updated_at`

var userConflicts = map[string]*errutil.Error{
	store.ConstraintUsersEmail: errutil.Conflict("USER_EMAIL_TAKEN", "User with this email already exists"),
}

// UserRepository implements auth.UserRepository using PostgreSQL.
type UserRepository struct {
	db store.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db store.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create stores a new user and fills in ID and CreatedAt.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		user.Name, user.Email, user.PasswordHash, string(user.Role),
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if conflict, ok := store.ConflictFor(err, userConflicts); ok {
			return conflict
		}
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("email", user.Email).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*auth.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 AND NOT is_deleted`, id)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With("id", id).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_ID_FAILED").
			With("operation", "get user by id").
			With("id", id).
			Wrap(err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email (case-insensitive).
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1) AND NOT is_deleted`, email)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With("email", email).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_EMAIL_FAILED").
			With("operation", "get user by email").
			With("email", email).
			Wrap(err)
	}
	return user, nil
}

// GetByIDs retrieves the live users among ids.
func (r *UserRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*auth.User, error) {
	out := make(map[int64]*auth.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	users, err := r.list(ctx, "get users by ids",
		`SELECT `+userColumns+` FROM users WHERE id = ANY($1) AND NOT is_deleted`, ids)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// List returns all live users ordered by ID.
func (r *UserRepository) List(ctx context.Context) ([]*auth.User, error) {
	return r.list(ctx, "list users", `SELECT `+userColumns+` FROM users WHERE NOT is_deleted ORDER BY id`)
}

// ListByRole returns live users with role, ordered by name.
func (r *UserRepository) ListByRole(ctx context.Context, role auth.Role) ([]*auth.User, error) {
	return r.list(ctx, "list users by role",
		`SELECT `+userColumns+` FROM users WHERE role = $1 AND NOT is_deleted ORDER BY name, id`, string(role))
}

// ListPage returns one page of live users with role and their total count.
// page is 1-based.
func (r *UserRepository) ListPage(ctx context.Context, role auth.Role, page, pageSize int) ([]*auth.User, int, error) {
	var total int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = $1 AND NOT is_deleted`, string(role)).Scan(&total)
	if err != nil {
		return nil, 0, oops.Code("USER_COUNT_FAILED").
			With("operation", "count users").
			With("role", role).
			Wrap(err)
	}

	offset := (page - 1) * pageSize
	users, err := r.list(ctx, "list user page",
		`SELECT `+userColumns+` FROM users WHERE role = $1 AND NOT is_deleted ORDER BY name, id LIMIT $2 OFFSET $3`,
		string(role), pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Update writes name, role and password hash.
func (r *UserRepository) Update(ctx context.Context, user *auth.User) error {
	now := time.Now().UTC()
	result, err := r.db.Exec(ctx, `
		UPDATE users SET name = $2, role = $3, password_hash = $4, updated_at = $5
		WHERE id = $1 AND NOT is_deleted`,
		user.ID, user.Name, string(user.Role), user.PasswordHash, now,
	)
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").
			With("operation", "update user").
			With("id", user.ID).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("id", user.ID).Wrap(auth.ErrNotFound)
	}
	user.UpdatedAt = &now
	return nil
}

// SoftDelete marks a user deleted.
func (r *UserRepository) SoftDelete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx,
		`UPDATE users SET is_deleted = true, updated_at = $2 WHERE id = $1 AND NOT is_deleted`,
		id, time.Now().UTC())
	if err != nil {
		return oops.Code("USER_DELETE_FAILED").
			With("operation", "soft delete user").
			With("id", id).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("id", id).Wrap(auth.ErrNotFound)
	}
	return nil
}

func (r *UserRepository) list(ctx context.Context, operation, query string, args ...any) ([]*auth.User, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, oops.Code("USER_LIST_FAILED").With("operation", operation).Wrap(err)
	}
	defer rows.Close()

	var users []*auth.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, oops.Code("USER_LIST_FAILED").With("operation", operation).Wrap(err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("USER_LIST_FAILED").With("operation", operation).Wrap(err)
	}
	return users, nil
}

// scanUser scans one row. Errors are returned unwrapped so the caller's
// code describes the failed lookup.
func scanUser(row pgx.Row) (*auth.User, error) {
	var (
		u    auth.User
		role string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.IsDeleted, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers add lookup context
	}
	u.Role = auth.Role(role)
	return &u, nil
}

var _ auth.UserRepository = (*UserRepository)(nil)

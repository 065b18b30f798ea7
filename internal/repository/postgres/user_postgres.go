package postgres

import (
	"context"
	"database/sql"

	"archivesys/internal/model"
	"archivesys/internal/repository"
)

// UserPostgres stores accounts and their one-to-one profile rows.
type UserPostgres struct {
	db *sql.DB
}

func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userSelect = `
		SELECT u.id, u.username, u.email, u.first_name, u.last_name, u.password_hash,
		       u.is_staff, u.is_active, u.created_at,
		       COALESCE(p.position, ''), COALESCE(p.department, '')
		FROM users u
		LEFT JOIN profiles p ON p.user_id = u.id`

const upsertProfile = `
		INSERT INTO profiles (user_id, position, department)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET position = EXCLUDED.position, department = EXCLUDED.department
	`

func scanUser(s scanner) (*model.User, error) {
	var u model.User
	if err := s.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.PasswordHash,
		&u.IsStaff,
		&u.IsActive,
		&u.CreatedAt,
		&u.Profile.Position,
		&u.Profile.Department,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts the account and its profile in one transaction.
// A duplicate username yields ErrConflict.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (username, email, first_name, last_name, password_hash, is_staff, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	var id string
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, q,
			u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.IsStaff, u.IsActive,
		).Scan(&id); err != nil {
			return mapErr(err)
		}
		if _, err := tx.ExecContext(ctx, upsertProfile, id, u.Profile.Position, u.Profile.Department); err != nil {
			return mapErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, userSelect+` WHERE u.id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (r *UserPostgres) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, userSelect+` WHERE u.username = $1`, username))
	if err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

// Update rewrites the account and upserts its profile in one transaction.
// An empty PasswordHash keeps the stored hash.
func (r *UserPostgres) Update(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		UPDATE users
		SET username = $2, email = $3, first_name = $4, last_name = $5,
		    is_staff = $6, is_active = $7,
		    password_hash = COALESCE(NULLIF($8, ''), password_hash)
		WHERE id = $1
	`
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := execAffecting(ctx, tx, q,
			u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.IsStaff, u.IsActive, u.PasswordHash,
		); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, upsertProfile, u.ID, u.Profile.Position, u.Profile.Department); err != nil {
			return mapErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, u.ID)
}

// List returns a page of users ordered by username.
func (r *UserPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.User], error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, err
	}

	w := &whereBuilder{}
	limit := w.page(pq)
	rows, err := r.db.QueryContext(ctx, userSelect+` ORDER BY u.username`+limit, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.User]{Items: items, Total: total}, nil
}

// Delete removes the account; the profile cascades and authored rows keep a NULL author.
func (r *UserPostgres) Delete(ctx context.Context, id string) error {
	return execAffecting(ctx, r.db, `DELETE FROM users WHERE id = $1`, id)
}

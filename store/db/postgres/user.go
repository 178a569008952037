package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/campusmind/campusmind/store"
)

func (d *DB) CreateUser(ctx context.Context, create *store.User) (*store.User, error) {
	stmt := `INSERT INTO "user" (name, email, password_hash, role, department, is_active) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_ts`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.Name,
		create.Email,
		create.PasswordHash,
		create.Role,
		create.Department,
		create.IsActive,
	).Scan(&create.ID, &create.CreatedTs); err != nil {
		return nil, translateError(err)
	}
	return create, nil
}

func (d *DB) GetUser(ctx context.Context, find *store.FindUser) (*store.User, error) {
	where, args := []string{"TRUE"}, []any{}
	if v := find.ID; v != nil {
		args = append(args, *v)
		where = append(where, "id = "+placeholder(len(args)))
	}
	if v := find.Email; v != nil {
		args = append(args, *v)
		where = append(where, "email = "+placeholder(len(args)))
	}

	query := `SELECT id, name, email, password_hash, role, department, is_active, created_ts, last_login_ts FROM "user" WHERE ` + strings.Join(where, " AND ")
	var user store.User
	var lastLoginTs sql.NullInt64
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Department,
		&user.IsActive,
		&user.CreatedTs,
		&lastLoginTs,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if lastLoginTs.Valid {
		user.LastLoginTs = &lastLoginTs.Int64
	}
	return &user, nil
}

func (d *DB) UpdateUser(ctx context.Context, update *store.UpdateUser) (*store.User, error) {
	set, args := []string{}, []any{}
	if v := update.Name; v != nil {
		args = append(args, *v)
		set = append(set, "name = "+placeholder(len(args)))
	}
	if v := update.Email; v != nil {
		args = append(args, *v)
		set = append(set, "email = "+placeholder(len(args)))
	}
	if v := update.PasswordHash; v != nil {
		args = append(args, *v)
		set = append(set, "password_hash = "+placeholder(len(args)))
	}
	if v := update.Department; v != nil {
		args = append(args, *v)
		set = append(set, "department = "+placeholder(len(args)))
	}
	if v := update.Role; v != nil {
		args = append(args, *v)
		set = append(set, "role = "+placeholder(len(args)))
	}
	if v := update.IsActive; v != nil {
		args = append(args, *v)
		set = append(set, "is_active = "+placeholder(len(args)))
	}
	if v := update.LastLoginTs; v != nil {
		args = append(args, *v)
		set = append(set, "last_login_ts = "+placeholder(len(args)))
	}
	if len(set) == 0 {
		return d.GetUser(ctx, &store.FindUser{ID: &update.ID})
	}
	args = append(args, update.ID)

	stmt := `UPDATE "user" SET ` + strings.Join(set, ", ") + " WHERE id = " + placeholder(len(args))
	result, err := d.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, translateError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}
	return d.GetUser(ctx, &store.FindUser{ID: &update.ID})
}

package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/campusmind/campusmind/store"
)

func (d *DB) CreateUser(ctx context.Context, create *store.User) (*store.User, error) {
	stmt := "INSERT INTO `user` (`name`, `email`, `password_hash`, `role`, `department`, `is_active`) VALUES (?, ?, ?, ?, ?, ?) RETURNING `id`, `created_ts`"
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
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, "`id` = ?"), append(args, *v)
	}
	if v := find.Email; v != nil {
		where, args = append(where, "`email` = ?"), append(args, *v)
	}

	query := "SELECT `id`, `name`, `email`, `password_hash`, `role`, `department`, `is_active`, `created_ts`, `last_login_ts` FROM `user` WHERE " + strings.Join(where, " AND ")
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
		set, args = append(set, "`name` = ?"), append(args, *v)
	}
	if v := update.Email; v != nil {
		set, args = append(set, "`email` = ?"), append(args, *v)
	}
	if v := update.PasswordHash; v != nil {
		set, args = append(set, "`password_hash` = ?"), append(args, *v)
	}
	if v := update.Department; v != nil {
		set, args = append(set, "`department` = ?"), append(args, *v)
	}
	if v := update.Role; v != nil {
		set, args = append(set, "`role` = ?"), append(args, *v)
	}
	if v := update.IsActive; v != nil {
		set, args = append(set, "`is_active` = ?"), append(args, *v)
	}
	if v := update.LastLoginTs; v != nil {
		set, args = append(set, "`last_login_ts` = ?"), append(args, *v)
	}
	if len(set) == 0 {
		return d.GetUser(ctx, &store.FindUser{ID: &update.ID})
	}
	args = append(args, update.ID)

	stmt := "UPDATE `user` SET " + strings.Join(set, ", ") + " WHERE `id` = ?"
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

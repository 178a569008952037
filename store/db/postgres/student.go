package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/campusmind/campusmind/store"
)

func (d *DB) CreateStudent(ctx context.Context, create *store.Student) (*store.Student, error) {
	fields := []string{"uid", "student_id", "name", "email", "department", "year", "status"}
	args := []any{create.UID, create.StudentID, create.Name, create.Email, create.Department, create.Year, create.Status}
	if create.JoinedTs != 0 {
		fields = append(fields, "joined_ts")
		args = append(args, create.JoinedTs)
	}

	stmt := "INSERT INTO student (" + strings.Join(fields, ", ") + ") VALUES (" + placeholders(1, len(args)) + ") RETURNING id, joined_ts"
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID, &create.JoinedTs); err != nil {
		return nil, translateError(err)
	}
	return create, nil
}

func (d *DB) GetStudent(ctx context.Context, find *store.FindStudent) (*store.Student, error) {
	list, err := d.ListStudents(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, store.ErrNotFound
	}
	return list[0], nil
}

func (d *DB) ListStudents(ctx context.Context, find *store.FindStudent) ([]*store.Student, error) {
	where, args := []string{"TRUE"}, []any{}

	if v := find.ID; v != nil {
		args = append(args, *v)
		where = append(where, "id = "+placeholder(len(args)))
	}
	if v := find.UID; v != nil {
		args = append(args, *v)
		where = append(where, "uid = "+placeholder(len(args)))
	}
	if v := find.StudentID; v != nil {
		args = append(args, *v)
		where = append(where, "student_id = "+placeholder(len(args)))
	}
	if v := find.Email; v != nil {
		args = append(args, *v)
		where = append(where, "email = "+placeholder(len(args)))
	}
	if v := find.Department; v != nil {
		args = append(args, *v)
		where = append(where, "department = "+placeholder(len(args)))
	}
	if v := find.Status; v != nil {
		args = append(args, *v)
		where = append(where, "status = "+placeholder(len(args)))
	}
	if v := find.Search; v != nil {
		args = append(args, "%"+*v+"%")
		p := placeholder(len(args))
		where = append(where, fmt.Sprintf("(name ILIKE %s OR email ILIKE %s OR student_id ILIKE %s)", p, p, p))
	}

	query := "SELECT id, uid, student_id, name, email, department, year, status, joined_ts, last_active_ts FROM student WHERE " + strings.Join(where, " AND ") + " ORDER BY joined_ts DESC, id DESC"
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*store.Student, 0)
	for rows.Next() {
		var student store.Student
		var lastActiveTs sql.NullInt64
		if err := rows.Scan(
			&student.ID,
			&student.UID,
			&student.StudentID,
			&student.Name,
			&student.Email,
			&student.Department,
			&student.Year,
			&student.Status,
			&student.JoinedTs,
			&lastActiveTs,
		); err != nil {
			return nil, err
		}
		if lastActiveTs.Valid {
			student.LastActiveTs = &lastActiveTs.Int64
		}
		list = append(list, &student)
	}
	return list, rows.Err()
}

func (d *DB) UpdateStudent(ctx context.Context, update *store.UpdateStudent) (*store.Student, error) {
	set, args := []string{}, []any{}
	if v := update.Name; v != nil {
		args = append(args, *v)
		set = append(set, "name = "+placeholder(len(args)))
	}
	if v := update.Email; v != nil {
		args = append(args, *v)
		set = append(set, "email = "+placeholder(len(args)))
	}
	if v := update.Department; v != nil {
		args = append(args, *v)
		set = append(set, "department = "+placeholder(len(args)))
	}
	if v := update.Year; v != nil {
		args = append(args, *v)
		set = append(set, "year = "+placeholder(len(args)))
	}
	if v := update.Status; v != nil {
		args = append(args, *v)
		set = append(set, "status = "+placeholder(len(args)))
	}
	if v := update.LastActiveTs; v != nil {
		args = append(args, *v)
		set = append(set, "last_active_ts = "+placeholder(len(args)))
	}
	if len(set) == 0 {
		return d.GetStudent(ctx, &store.FindStudent{StudentID: &update.StudentID})
	}
	args = append(args, update.StudentID)

	stmt := "UPDATE student SET " + strings.Join(set, ", ") + " WHERE student_id = " + placeholder(len(args))
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
	return d.GetStudent(ctx, &store.FindStudent{StudentID: &update.StudentID})
}

func (d *DB) DeleteStudent(ctx context.Context, delete *store.DeleteStudent) error {
	result, err := d.db.ExecContext(ctx, "DELETE FROM student WHERE student_id = $1", delete.StudentID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (d *DB) CountStudents(ctx context.Context) (int64, error) {
	var count int64
	err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM student").Scan(&count)
	return count, err
}

func (d *DB) CountStudentsByDepartment(ctx context.Context) (map[string]int64, error) {
	rows, err := d.db.QueryContext(ctx, "SELECT department, COUNT(*) FROM student GROUP BY department")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var department string
		var count int64
		if err := rows.Scan(&department, &count); err != nil {
			return nil, err
		}
		counts[department] = count
	}
	return counts, rows.Err()
}

func (d *DB) CountStudentsActiveSince(ctx context.Context, sinceTs int64) (int64, error) {
	var count int64
	err := d.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM student WHERE last_active_ts IS NOT NULL AND last_active_ts >= $1",
		sinceTs,
	).Scan(&count)
	return count, err
}

func (d *DB) CountStudentsJoinedByDay(ctx context.Context, sinceTs int64) ([]*store.DayCount, error) {
	return d.countByDay(ctx,
		"SELECT TO_CHAR(TO_TIMESTAMP(joined_ts), 'YYYY-MM-DD'), COUNT(*) FROM student WHERE joined_ts >= $1 GROUP BY 1 ORDER BY 1",
		sinceTs,
	)
}

func (d *DB) CountStudentsActiveByDay(ctx context.Context, sinceTs int64) ([]*store.DayCount, error) {
	return d.countByDay(ctx,
		"SELECT TO_CHAR(TO_TIMESTAMP(last_active_ts), 'YYYY-MM-DD'), COUNT(*) FROM student WHERE last_active_ts IS NOT NULL AND last_active_ts >= $1 GROUP BY 1 ORDER BY 1",
		sinceTs,
	)
}

func (d *DB) countByDay(ctx context.Context, query string, sinceTs int64) ([]*store.DayCount, error) {
	rows, err := d.db.QueryContext(ctx, query, sinceTs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*store.DayCount, 0)
	for rows.Next() {
		var dc store.DayCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, err
		}
		list = append(list, &dc)
	}
	return list, rows.Err()
}

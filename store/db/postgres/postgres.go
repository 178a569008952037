// Package postgres implements the store driver on top of lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/campusmind/campusmind/internal/profile"
	"github.com/campusmind/campusmind/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a postgres connection with the profile's DSN.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}
	pgDB, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	return &DB{db: pgDB, profile: profile}, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) IsInitialized(ctx context.Context) (bool, error) {
	var exists bool
	if err := d.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = 'student')`,
	).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// placeholder returns the n-th positional parameter, e.g. $3.
func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

// placeholders returns $from..$to joined with commas.
func placeholders(from, to int) string {
	ss := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		ss = append(ss, placeholder(i))
	}
	return strings.Join(ss, ", ")
}

// translateError maps unique-constraint violations onto store.DuplicateError.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return &store.DuplicateError{Field: duplicateField(pqErr.Constraint)}
	}
	return err
}

// duplicateField recovers the column name from constraint names like
// "student_email_key" or "idx_student_student_id".
func duplicateField(constraint string) string {
	name := strings.TrimSuffix(constraint, "_key")
	name = strings.TrimPrefix(name, "idx_")
	for _, table := range []string{"student_", "user_", "conversation_message_", "conversation_"} {
		if strings.HasPrefix(name, table) {
			return strings.TrimPrefix(name, table)
		}
	}
	return name
}

package store

import "context"

// StudentStatus is the enrollment status of a student.
type StudentStatus string

const (
	StudentStatusActive   StudentStatus = "active"
	StudentStatusInactive StudentStatus = "inactive"
)

// Student is a student record. StudentID is the caller-facing natural key;
// ID is the internal row identifier.
type Student struct {
	ID           int32
	UID          string
	StudentID    string
	Name         string
	Email        string
	Department   string
	Year         int32
	Status       StudentStatus
	JoinedTs     int64
	LastActiveTs *int64
}

type FindStudent struct {
	ID         *int32
	UID        *string
	StudentID  *string
	Email      *string
	Department *string
	Status     *StudentStatus
	// Search matches name, email, or student_id (case-insensitive substring).
	Search *string

	Limit  *int
	Offset *int
}

// UpdateStudent carries a partial update addressed by StudentID.
// Nil fields are left untouched.
type UpdateStudent struct {
	StudentID string

	Name         *string
	Email        *string
	Department   *string
	Year         *int32
	Status       *StudentStatus
	LastActiveTs *int64
}

type DeleteStudent struct {
	StudentID string
}

// DayCount is one bucket of a per-day aggregate, Date formatted YYYY-MM-DD.
type DayCount struct {
	Date  string
	Count int64
}

func (s *Store) CreateStudent(ctx context.Context, create *Student) (*Student, error) {
	return s.driver.CreateStudent(ctx, create)
}

func (s *Store) GetStudent(ctx context.Context, find *FindStudent) (*Student, error) {
	return s.driver.GetStudent(ctx, find)
}

func (s *Store) ListStudents(ctx context.Context, find *FindStudent) ([]*Student, error) {
	return s.driver.ListStudents(ctx, find)
}

func (s *Store) UpdateStudent(ctx context.Context, update *UpdateStudent) (*Student, error) {
	return s.driver.UpdateStudent(ctx, update)
}

func (s *Store) DeleteStudent(ctx context.Context, delete *DeleteStudent) error {
	return s.driver.DeleteStudent(ctx, delete)
}

func (s *Store) CountStudents(ctx context.Context) (int64, error) {
	return s.driver.CountStudents(ctx)
}

func (s *Store) CountStudentsByDepartment(ctx context.Context) (map[string]int64, error) {
	return s.driver.CountStudentsByDepartment(ctx)
}

func (s *Store) CountStudentsActiveSince(ctx context.Context, sinceTs int64) (int64, error) {
	return s.driver.CountStudentsActiveSince(ctx, sinceTs)
}

func (s *Store) CountStudentsJoinedByDay(ctx context.Context, sinceTs int64) ([]*DayCount, error) {
	return s.driver.CountStudentsJoinedByDay(ctx, sinceTs)
}

func (s *Store) CountStudentsActiveByDay(ctx context.Context, sinceTs int64) ([]*DayCount, error) {
	return s.driver.CountStudentsActiveByDay(ctx, sinceTs)
}

package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// Student model related methods.
	CreateStudent(ctx context.Context, create *Student) (*Student, error)
	GetStudent(ctx context.Context, find *FindStudent) (*Student, error)
	ListStudents(ctx context.Context, find *FindStudent) ([]*Student, error)
	UpdateStudent(ctx context.Context, update *UpdateStudent) (*Student, error)
	DeleteStudent(ctx context.Context, delete *DeleteStudent) error

	// Student aggregate methods.
	CountStudents(ctx context.Context) (int64, error)
	CountStudentsByDepartment(ctx context.Context) (map[string]int64, error)
	CountStudentsActiveSince(ctx context.Context, sinceTs int64) (int64, error)
	CountStudentsJoinedByDay(ctx context.Context, sinceTs int64) ([]*DayCount, error)
	CountStudentsActiveByDay(ctx context.Context, sinceTs int64) ([]*DayCount, error)

	// User model related methods.
	CreateUser(ctx context.Context, create *User) (*User, error)
	GetUser(ctx context.Context, find *FindUser) (*User, error)
	UpdateUser(ctx context.Context, update *UpdateUser) (*User, error)

	// Conversation model related methods.
	EnsureConversation(ctx context.Context, sessionID string) (*Conversation, error)
	AppendConversationMessage(ctx context.Context, create *ConversationMessage) (*ConversationMessage, error)
	ListRecentConversationMessages(ctx context.Context, sessionID string, limit int) ([]*ConversationMessage, error)
}

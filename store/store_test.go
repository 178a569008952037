package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campusmind/campusmind/internal/profile"
	"github.com/campusmind/campusmind/store"
	"github.com/campusmind/campusmind/store/db"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	p := &profile.Profile{Mode: "dev", Data: t.TempDir(), Driver: "sqlite"}
	require.NoError(t, p.Validate())

	driver, err := db.NewDBDriver(p)
	require.NoError(t, err)

	s := store.New(driver, p)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newStudent(i int) *store.Student {
	return &store.Student{
		UID:        fmt.Sprintf("uid-%d", i),
		StudentID:  fmt.Sprintf("CS-%04d", i),
		Name:       fmt.Sprintf("Student %d", i),
		Email:      fmt.Sprintf("student%d@example.edu", i),
		Department: "Computer Science",
		Year:       1,
		Status:     store.StudentStatusActive,
	}
}

func TestMigrateIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestStudentCRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.CreateStudent(ctx, newStudent(1))
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.NotZero(t, created.JoinedTs)

	studentID := "CS-0001"
	got, err := s.GetStudent(ctx, &store.FindStudent{StudentID: &studentID})
	require.NoError(t, err)
	require.Equal(t, "Student 1", got.Name)
	require.Nil(t, got.LastActiveTs)

	newName := "Renamed"
	year := int32(3)
	updated, err := s.UpdateStudent(ctx, &store.UpdateStudent{
		StudentID: studentID,
		Name:      &newName,
		Year:      &year,
	})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)
	require.Equal(t, int32(3), updated.Year)
	require.Equal(t, "student1@example.edu", updated.Email)

	require.NoError(t, s.DeleteStudent(ctx, &store.DeleteStudent{StudentID: studentID}))
	_, err = s.GetStudent(ctx, &store.FindStudent{StudentID: &studentID})
	require.ErrorIs(t, err, store.ErrNotFound)

	err = s.DeleteStudent(ctx, &store.DeleteStudent{StudentID: studentID})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestStudentDuplicates(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.CreateStudent(ctx, newStudent(1))
	require.NoError(t, err)

	dup := newStudent(2)
	dup.StudentID = "CS-0001"
	_, err = s.CreateStudent(ctx, dup)
	require.Error(t, err)
	field, ok := store.IsDuplicate(err)
	require.True(t, ok)
	require.Equal(t, "student_id", field)

	dup = newStudent(3)
	dup.Email = "student1@example.edu"
	_, err = s.CreateStudent(ctx, dup)
	field, ok = store.IsDuplicate(err)
	require.True(t, ok)
	require.Equal(t, "email", field)
}

func TestStudentFilters(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i := 1; i <= 5; i++ {
		student := newStudent(i)
		if i > 3 {
			student.Department = "Physics"
		}
		if i == 5 {
			student.Status = store.StudentStatusInactive
		}
		_, err := s.CreateStudent(ctx, student)
		require.NoError(t, err)
	}

	department := "Physics"
	list, err := s.ListStudents(ctx, &store.FindStudent{Department: &department})
	require.NoError(t, err)
	require.Len(t, list, 2)

	status := store.StudentStatusInactive
	list, err = s.ListStudents(ctx, &store.FindStudent{Status: &status})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "CS-0005", list[0].StudentID)

	search := "student2"
	list, err = s.ListStudents(ctx, &store.FindStudent{Search: &search})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "CS-0002", list[0].StudentID)

	limit, offset := 2, 2
	list, err = s.ListStudents(ctx, &store.FindStudent{Limit: &limit, Offset: &offset})
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestStudentAggregates(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Now().Unix()
	old := now - 30*24*3600
	for i := 1; i <= 4; i++ {
		student := newStudent(i)
		if i > 2 {
			student.Department = "Physics"
		}
		_, err := s.CreateStudent(ctx, student)
		require.NoError(t, err)
		if i <= 2 {
			_, err = s.UpdateStudent(ctx, &store.UpdateStudent{
				StudentID:    student.StudentID,
				LastActiveTs: &now,
			})
			require.NoError(t, err)
		}
		if i == 3 {
			_, err = s.UpdateStudent(ctx, &store.UpdateStudent{
				StudentID:    student.StudentID,
				LastActiveTs: &old,
			})
			require.NoError(t, err)
		}
	}

	total, err := s.CountStudents(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 4, total)

	byDepartment, err := s.CountStudentsByDepartment(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, byDepartment["Computer Science"])
	require.EqualValues(t, 2, byDepartment["Physics"])

	active, err := s.CountStudentsActiveSince(ctx, now-7*24*3600)
	require.NoError(t, err)
	require.EqualValues(t, 2, active)

	joined, err := s.CountStudentsJoinedByDay(ctx, now-24*3600)
	require.NoError(t, err)
	require.Len(t, joined, 1)
	require.EqualValues(t, 4, joined[0].Count)

	activeByDay, err := s.CountStudentsActiveByDay(ctx, now-7*24*3600)
	require.NoError(t, err)
	require.Len(t, activeByDay, 1)
	require.EqualValues(t, 2, activeByDay[0].Count)
}

func TestConversationTrailingWindow(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, err := s.EnsureConversation(ctx, "sess-1")
	require.NoError(t, err)
	again, err := s.EnsureConversation(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)

	for i := 0; i < 12; i++ {
		role := store.MessageRoleUser
		if i%2 == 1 {
			role = store.MessageRoleAssistant
		}
		_, err := s.AppendConversationMessage(ctx, &store.ConversationMessage{
			UID:       fmt.Sprintf("msg-%d", i),
			SessionID: "sess-1",
			Role:      role,
			Content:   fmt.Sprintf("message %d", i),
		})
		require.NoError(t, err)
	}

	messages, err := s.ListRecentConversationMessages(ctx, "sess-1", 10)
	require.NoError(t, err)
	require.Len(t, messages, 10)
	// Chronological order, trailing window.
	require.Equal(t, "message 2", messages[0].Content)
	require.Equal(t, "message 11", messages[9].Content)

	messages, err = s.ListRecentConversationMessages(ctx, "sess-2", 10)
	require.NoError(t, err)
	require.Empty(t, messages)
}

func TestAppendMessageCreatesConversation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// Appending to a session nobody ensured must still create the
	// conversation row.
	_, err := s.AppendConversationMessage(ctx, &store.ConversationMessage{
		UID:       "fresh-msg-1",
		SessionID: "fresh-session",
		Role:      store.MessageRoleUser,
		Content:   "hello",
	})
	require.NoError(t, err)

	var count int
	row := s.GetDriver().GetDB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM `conversation` WHERE `session_id` = ?", "fresh-session")
	require.NoError(t, row.Scan(&count))
	require.Equal(t, 1, count)

	messages, err := s.ListRecentConversationMessages(ctx, "fresh-session", 10)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, "hello", messages[0].Content)
}

func TestUserRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	user, err := s.CreateUser(ctx, &store.User{
		Name:         "Dean",
		Email:        "dean@example.edu",
		PasswordHash: "$2a$10$hash",
		Role:         store.UserRoleAdmin,
		IsActive:     true,
	})
	require.NoError(t, err)
	require.NotZero(t, user.ID)

	// Served from cache on the second lookup.
	got, err := s.GetUser(ctx, &store.FindUser{ID: &user.ID})
	require.NoError(t, err)
	require.Equal(t, "dean@example.edu", got.Email)
	got, err = s.GetUser(ctx, &store.FindUser{ID: &user.ID})
	require.NoError(t, err)
	require.Equal(t, store.UserRoleAdmin, got.Role)

	email := "dean@example.edu"
	byEmail, err := s.GetUser(ctx, &store.FindUser{Email: &email})
	require.NoError(t, err)
	require.Equal(t, user.ID, byEmail.ID)

	_, err = s.CreateUser(ctx, &store.User{
		Name:         "Other",
		Email:        "dean@example.edu",
		PasswordHash: "x",
		Role:         store.UserRoleStaff,
		IsActive:     true,
	})
	_, ok := store.IsDuplicate(err)
	require.True(t, ok)

	now := time.Now().Unix()
	updated, err := s.UpdateUser(ctx, &store.UpdateUser{ID: user.ID, LastLoginTs: &now})
	require.NoError(t, err)
	require.NotNil(t, updated.LastLoginTs)
}

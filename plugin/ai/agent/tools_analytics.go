package agent

import (
	"context"
	"time"

	"github.com/campusmind/campusmind/store"
)

const (
	recentOnboardedDefaultLimit = 5
	recentOnboardedMaxLimit     = 20
)

type getTotalStudentsTool struct {
	store *store.Store
}

func (getTotalStudentsTool) Name() string { return "get_total_students" }

func (getTotalStudentsTool) Description() string {
	return "Return the total number of student records."
}

func (getTotalStudentsTool) Parameters() map[string]any {
	return objectSchema(map[string]any{})
}

func (t getTotalStudentsTool) Call(ctx context.Context, _ map[string]any) (map[string]any, error) {
	total, err := t.store.CountStudents(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"total_students": total}, nil
}

type getStudentsByDepartmentTool struct {
	store *store.Store
}

func (getStudentsByDepartmentTool) Name() string { return "get_students_by_department" }

func (getStudentsByDepartmentTool) Description() string {
	return "Return student counts grouped by department."
}

func (getStudentsByDepartmentTool) Parameters() map[string]any {
	return objectSchema(map[string]any{})
}

func (t getStudentsByDepartmentTool) Call(ctx context.Context, _ map[string]any) (map[string]any, error) {
	counts, err := t.store.CountStudentsByDepartment(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"departments": counts}, nil
}

type getRecentOnboardedStudentsTool struct {
	store *store.Store
}

func (getRecentOnboardedStudentsTool) Name() string { return "get_recent_onboarded_students" }

func (getRecentOnboardedStudentsTool) Description() string {
	return "Return the most recently joined students, newest first."
}

func (getRecentOnboardedStudentsTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"limit": map[string]any{"type": "integer", "description": "Max records to return, 1-20. Default 5."},
	})
}

func (t getRecentOnboardedStudentsTool) Call(ctx context.Context, args map[string]any) (map[string]any, error) {
	requested, present, err := intArg(args, "limit")
	if err != nil {
		return nil, err
	}
	limit := clampLimit(requested, present, recentOnboardedDefaultLimit, recentOnboardedMaxLimit)

	students, err := t.store.ListStudents(ctx, &store.FindStudent{Limit: &limit})
	if err != nil {
		return nil, err
	}
	payload := make([]map[string]any, 0, len(students))
	for _, s := range students {
		payload = append(payload, studentPayload(s))
	}
	return map[string]any{"students": payload}, nil
}

type getActiveStudentsLast7DaysTool struct {
	store *store.Store
}

func (getActiveStudentsLast7DaysTool) Name() string { return "get_active_students_last_7_days" }

func (getActiveStudentsLast7DaysTool) Description() string {
	return "Return the number of students active within the last 7 days."
}

func (getActiveStudentsLast7DaysTool) Parameters() map[string]any {
	return objectSchema(map[string]any{})
}

func (t getActiveStudentsLast7DaysTool) Call(ctx context.Context, _ map[string]any) (map[string]any, error) {
	since := time.Now().AddDate(0, 0, -7).Unix()
	count, err := t.store.CountStudentsActiveSince(ctx, since)
	if err != nil {
		return nil, err
	}
	return map[string]any{"active_students": count}, nil
}

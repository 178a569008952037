package agent

import (
	"context"
	"log/slog"

	"github.com/campusmind/campusmind/store"
)

type getCafeteriaTimingsTool struct{}

func (getCafeteriaTimingsTool) Name() string { return "get_cafeteria_timings" }

func (getCafeteriaTimingsTool) Description() string {
	return "Return the cafeteria opening hours."
}

func (getCafeteriaTimingsTool) Parameters() map[string]any {
	return objectSchema(map[string]any{})
}

func (getCafeteriaTimingsTool) Call(_ context.Context, _ map[string]any) (map[string]any, error) {
	return map[string]any{
		"timings": map[string]any{
			"weekdays": "8:00 AM - 8:00 PM",
			"weekends": "9:00 AM - 6:00 PM",
		},
	}, nil
}

type getLibraryHoursTool struct{}

func (getLibraryHoursTool) Name() string { return "get_library_hours" }

func (getLibraryHoursTool) Description() string {
	return "Return the library opening hours."
}

func (getLibraryHoursTool) Parameters() map[string]any {
	return objectSchema(map[string]any{})
}

func (getLibraryHoursTool) Call(_ context.Context, _ map[string]any) (map[string]any, error) {
	return map[string]any{
		"hours": map[string]any{
			"weekdays": "8:00 AM - 10:00 PM",
			"weekends": "10:00 AM - 6:00 PM",
		},
	}, nil
}

type getEventScheduleTool struct{}

func (getEventScheduleTool) Name() string { return "get_event_schedule" }

func (getEventScheduleTool) Description() string {
	return "Return the upcoming campus event schedule."
}

func (getEventScheduleTool) Parameters() map[string]any {
	return objectSchema(map[string]any{})
}

func (getEventScheduleTool) Call(_ context.Context, _ map[string]any) (map[string]any, error) {
	return map[string]any{
		"events": []map[string]any{
			{"name": "Tech Talk", "date": "2025-10-01"},
			{"name": "Sports Day", "date": "2025-10-15"},
		},
	}, nil
}

type sendEmailTool struct{}

func (sendEmailTool) Name() string { return "send_email" }

func (sendEmailTool) Description() string {
	return "Send a notification email to a student (mock)."
}

func (sendEmailTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"student_id": map[string]any{"type": "string"},
		"message":    map[string]any{"type": "string"},
	}, "student_id", "message")
}

// Call logs instead of delivering; there is no outbound mail integration.
func (sendEmailTool) Call(_ context.Context, args map[string]any) (map[string]any, error) {
	studentID := stringArg(args, "student_id")
	slog.Info("mock notification email",
		slog.String("student_id", studentID),
		slog.String("message", stringArg(args, "message")))
	return map[string]any{"sent": true}, nil
}

// DefaultRegistry builds the full tool set backed by the given store.
func DefaultRegistry(s *store.Store) *Registry {
	registry := NewRegistry()
	registry.Register(addStudentTool{store: s})
	registry.Register(getStudentTool{store: s})
	registry.Register(updateStudentTool{store: s})
	registry.Register(deleteStudentTool{store: s})
	registry.Register(listStudentsTool{store: s})
	registry.Register(getTotalStudentsTool{store: s})
	registry.Register(getStudentsByDepartmentTool{store: s})
	registry.Register(getRecentOnboardedStudentsTool{store: s})
	registry.Register(getActiveStudentsLast7DaysTool{store: s})
	registry.Register(getCafeteriaTimingsTool{})
	registry.Register(getLibraryHoursTool{})
	registry.Register(getEventScheduleTool{})
	registry.Register(sendEmailTool{})
	return registry
}

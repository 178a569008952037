package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/campusmind/campusmind/store"
)

const (
	listStudentsDefaultLimit = 20
	listStudentsMaxLimit     = 100
)

func studentPayload(s *store.Student) map[string]any {
	payload := map[string]any{
		"student_id": s.StudentID,
		"name":       s.Name,
		"email":      s.Email,
		"department": s.Department,
		"year":       s.Year,
		"status":     string(s.Status),
		"joined_at":  time.Unix(s.JoinedTs, 0).UTC().Format(time.RFC3339),
	}
	if s.LastActiveTs != nil {
		payload["last_active_at"] = time.Unix(*s.LastActiveTs, 0).UTC().Format(time.RFC3339)
	}
	return payload
}

type addStudentTool struct {
	store *store.Store
}

func (addStudentTool) Name() string { return "add_student" }

func (addStudentTool) Description() string {
	return "Register a new student record. Requires student_id, name, email, department, and year."
}

func (addStudentTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"student_id": map[string]any{"type": "string", "description": "Unique student identifier."},
		"name":       map[string]any{"type": "string"},
		"email":      map[string]any{"type": "string"},
		"department": map[string]any{"type": "string"},
		"year":       map[string]any{"type": "integer", "description": "Year of study, 1-8."},
	}, "student_id", "name", "email", "department", "year")
}

func (t addStudentTool) Call(ctx context.Context, args map[string]any) (map[string]any, error) {
	studentID := stringArg(args, "student_id")
	name := stringArg(args, "name")
	email := stringArg(args, "email")
	department := stringArg(args, "department")
	year, _, err := intArg(args, "year")
	if err != nil {
		return nil, err
	}

	if err := store.ValidateStudentID(studentID); err != nil {
		return nil, err
	}
	if err := store.ValidateStudentName(name); err != nil {
		return nil, err
	}
	if err := store.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := store.ValidateDepartment(department); err != nil {
		return nil, err
	}
	if err := store.ValidateYear(int32(year)); err != nil {
		return nil, err
	}

	student, err := t.store.CreateStudent(ctx, &store.Student{
		UID:        shortuuid.New(),
		StudentID:  studentID,
		Name:       name,
		Email:      email,
		Department: department,
		Year:       int32(year),
		Status:     store.StudentStatusActive,
	})
	if err != nil {
		if field, ok := store.IsDuplicate(err); ok {
			return nil, fmt.Errorf("%s already exists", field)
		}
		return nil, err
	}
	return map[string]any{"student": studentPayload(student)}, nil
}

type getStudentTool struct {
	store *store.Store
}

func (getStudentTool) Name() string { return "get_student" }

func (getStudentTool) Description() string {
	return "Fetch a single student record by student_id."
}

func (getStudentTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"student_id": map[string]any{"type": "string"},
	}, "student_id")
}

func (t getStudentTool) Call(ctx context.Context, args map[string]any) (map[string]any, error) {
	studentID := stringArg(args, "student_id")
	student, err := t.store.GetStudent(ctx, &store.FindStudent{StudentID: &studentID})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("Student %s not found", studentID)
		}
		return nil, err
	}
	return map[string]any{"student": studentPayload(student)}, nil
}

type updateStudentTool struct {
	store *store.Store
}

func (updateStudentTool) Name() string { return "update_student" }

func (updateStudentTool) Description() string {
	return "Update fields of an existing student. Only provided fields change."
}

func (updateStudentTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"student_id": map[string]any{"type": "string"},
		"name":       map[string]any{"type": "string"},
		"email":      map[string]any{"type": "string"},
		"department": map[string]any{"type": "string"},
		"year":       map[string]any{"type": "integer"},
		"status":     map[string]any{"type": "string", "enum": []string{"active", "inactive"}},
	}, "student_id")
}

func (t updateStudentTool) Call(ctx context.Context, args map[string]any) (map[string]any, error) {
	studentID := stringArg(args, "student_id")
	update := &store.UpdateStudent{StudentID: studentID}

	if v := stringArg(args, "name"); v != "" {
		if err := store.ValidateStudentName(v); err != nil {
			return nil, err
		}
		update.Name = &v
	}
	if v := stringArg(args, "email"); v != "" {
		if err := store.ValidateEmail(v); err != nil {
			return nil, err
		}
		update.Email = &v
	}
	if v := stringArg(args, "department"); v != "" {
		if err := store.ValidateDepartment(v); err != nil {
			return nil, err
		}
		update.Department = &v
	}
	if year, present, err := intArg(args, "year"); err != nil {
		return nil, err
	} else if present {
		y := int32(year)
		if err := store.ValidateYear(y); err != nil {
			return nil, err
		}
		update.Year = &y
	}
	if v := stringArg(args, "status"); v != "" {
		status := store.StudentStatus(v)
		if err := store.ValidateStudentStatus(status); err != nil {
			return nil, err
		}
		update.Status = &status
	}

	student, err := t.store.UpdateStudent(ctx, update)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("Student %s not found", studentID)
		}
		if field, ok := store.IsDuplicate(err); ok {
			return nil, fmt.Errorf("%s already exists", field)
		}
		return nil, err
	}
	return map[string]any{"student": studentPayload(student)}, nil
}

type deleteStudentTool struct {
	store *store.Store
}

func (deleteStudentTool) Name() string { return "delete_student" }

func (deleteStudentTool) Description() string {
	return "Permanently delete a student record by student_id."
}

func (deleteStudentTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"student_id": map[string]any{"type": "string"},
	}, "student_id")
}

func (t deleteStudentTool) Call(ctx context.Context, args map[string]any) (map[string]any, error) {
	studentID := stringArg(args, "student_id")
	if err := t.store.DeleteStudent(ctx, &store.DeleteStudent{StudentID: studentID}); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("Student %s not found", studentID)
		}
		return nil, err
	}
	return map[string]any{"deleted": true, "student_id": studentID}, nil
}

type listStudentsTool struct {
	store *store.Store
}

func (listStudentsTool) Name() string { return "list_students" }

func (listStudentsTool) Description() string {
	return "List students, optionally filtered by department, status, or a search term over name, email, and student_id."
}

func (listStudentsTool) Parameters() map[string]any {
	return objectSchema(map[string]any{
		"department": map[string]any{"type": "string"},
		"status":     map[string]any{"type": "string", "enum": []string{"active", "inactive"}},
		"search":     map[string]any{"type": "string"},
		"limit":      map[string]any{"type": "integer", "description": "Max records to return, 1-100. Default 20."},
	})
}

func (t listStudentsTool) Call(ctx context.Context, args map[string]any) (map[string]any, error) {
	requested, present, err := intArg(args, "limit")
	if err != nil {
		return nil, err
	}
	limit := clampLimit(requested, present, listStudentsDefaultLimit, listStudentsMaxLimit)

	find := &store.FindStudent{Limit: &limit}
	if v := stringArg(args, "department"); v != "" {
		find.Department = &v
	}
	if v := stringArg(args, "status"); v != "" {
		status := store.StudentStatus(v)
		if err := store.ValidateStudentStatus(status); err != nil {
			return nil, err
		}
		find.Status = &status
	}
	if v := stringArg(args, "search"); v != "" {
		find.Search = &v
	}

	students, err := t.store.ListStudents(ctx, find)
	if err != nil {
		return nil, err
	}
	payload := make([]map[string]any, 0, len(students))
	for _, s := range students {
		payload = append(payload, studentPayload(s))
	}
	return map[string]any{"students": payload, "count": len(payload)}, nil
}

package agent

import (
	"fmt"
	"math"
)

// stringArg reads a string argument, returning "" when absent.
func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// intArg reads an integer argument. JSON numbers arrive as float64; strings
// are rejected to keep coercion predictable.
func intArg(args map[string]any, key string) (int, bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	f, ok := v.(float64)
	if !ok {
		return 0, false, fmt.Errorf("%s must be a number", key)
	}
	if f != math.Trunc(f) {
		return 0, false, fmt.Errorf("%s must be an integer", key)
	}
	return int(f), true, nil
}

// clampLimit normalizes a requested page size into [1, max], falling back
// to def when unset.
func clampLimit(requested int, present bool, def, max int) int {
	if !present {
		return def
	}
	if requested < 1 {
		return 1
	}
	if requested > max {
		return max
	}
	return requested
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

package sqlite

import "strings"

// duplicateField extracts the column name from a sqlite unique-constraint
// message such as "UNIQUE constraint failed: student.email".
func duplicateField(msg string) string {
	const marker = "UNIQUE constraint failed: "
	idx := strings.Index(msg, marker)
	if idx < 0 {
		return ""
	}
	qualified := msg[idx+len(marker):]
	if end := strings.IndexAny(qualified, " ("); end >= 0 {
		qualified = qualified[:end]
	}
	if dot := strings.LastIndex(qualified, "."); dot >= 0 {
		return qualified[dot+1:]
	}
	return qualified
}

// Package ai wraps the chat-completions provider behind a small gateway
// the agent loop talks to.
package ai

import "fmt"

// Role constants mirror the chat-completions wire roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one entry of the model context window.
type Message struct {
	Role    string
	Content string
	// ToolCalls is set on assistant messages that request tool execution.
	ToolCalls []ToolCall
	// ToolCallID links a tool-role message back to the call it answers.
	ToolCallID string
}

// ToolCall is the model's request to invoke one tool.
type ToolCall struct {
	ID   string
	Name string
	// Arguments is the raw JSON argument object as produced by the model.
	Arguments string
}

// ChatResponse is the assistant turn returned by Complete.
type ChatResponse struct {
	Content   string
	ToolCalls []ToolCall
}

// ToolDescriptor declares one callable tool to the model.
type ToolDescriptor struct {
	Name        string
	Description string
	// Parameters is a JSON-schema object describing the arguments.
	Parameters map[string]any
}

// GatewayError wraps provider failures so callers can distinguish them
// from local errors.
type GatewayError struct {
	Message string
	Cause   error
}

func (e *GatewayError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("ai gateway: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("ai gateway: %s", e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Cause
}

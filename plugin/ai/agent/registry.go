// Package agent implements the campus-administration conversational agent:
// a bounded tool-calling loop over the chat gateway with transcript
// persistence.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/campusmind/campusmind/plugin/ai"
)

// Tool is one capability the model may invoke. Call receives the decoded
// argument object and returns the payload fields of the result envelope.
type Tool interface {
	Name() string
	Description() string
	// Parameters is the JSON-schema object advertised to the model.
	Parameters() map[string]any
	Call(ctx context.Context, args map[string]any) (map[string]any, error)
}

// Registry holds the tool set offered to the model and dispatches calls
// into a uniform JSON envelope.
type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. Later registrations replace earlier ones with the
// same name.
func (r *Registry) Register(tool Tool) {
	name := tool.Name()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
}

// Descriptors returns the tool declarations in registration order.
func (r *Registry) Descriptors() []ai.ToolDescriptor {
	out := make([]ai.ToolDescriptor, 0, len(r.order))
	for _, name := range r.order {
		tool := r.tools[name]
		out = append(out, ai.ToolDescriptor{
			Name:        tool.Name(),
			Description: tool.Description(),
			Parameters:  tool.Parameters(),
		})
	}
	return out
}

// Dispatch executes one tool call and always returns a JSON envelope:
// {"ok":true,...} on success, {"ok":false,"error":...} otherwise. It never
// returns an error to the loop; failures are reported to the model so it
// can recover.
func (r *Registry) Dispatch(ctx context.Context, call ai.ToolCall) string {
	tool, ok := r.tools[call.Name]
	if !ok {
		return errorEnvelope(fmt.Sprintf("Unknown tool: %s", call.Name))
	}

	result, err := r.invoke(ctx, tool, call.Arguments)
	if err != nil {
		slog.Warn("tool call failed",
			slog.String("tool", call.Name),
			slog.String("error", err.Error()))
		return errorEnvelope(fmt.Sprintf("Tool %s failed: %s", call.Name, err.Error()))
	}

	envelope := map[string]any{"ok": true}
	for k, v := range result {
		envelope[k] = v
	}
	buf, err := json.Marshal(envelope)
	if err != nil {
		return errorEnvelope(fmt.Sprintf("Tool %s failed: %s", call.Name, err.Error()))
	}
	return string(buf)
}

func (r *Registry) invoke(ctx context.Context, tool Tool, rawArgs string) (result map[string]any, err error) {
	// A panicking tool must not take the whole turn down.
	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	// Lenient decode: models occasionally emit empty or malformed argument
	// blobs; the tool still runs with whatever decoded.
	args := map[string]any{}
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			args = map[string]any{}
		}
	}
	return tool.Call(ctx, args)
}

func errorEnvelope(message string) string {
	buf, _ := json.Marshal(map[string]any{"ok": false, "error": message})
	return string(buf)
}

package agent

// EventType identifies one frame of the streaming chat protocol.
type EventType string

const (
	EventMessageStart EventType = "message_start"
	EventToken        EventType = "token"
	EventMessageEnd   EventType = "message_end"
	EventError        EventType = "error"
)

// Event is one streaming frame. Value carries the content fragment for
// token events; Message carries the user-facing text for error events.
type Event struct {
	Type    EventType `json:"type"`
	Value   string    `json:"value,omitempty"`
	Message string    `json:"message,omitempty"`
}

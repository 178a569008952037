package store

import "context"

// MessageRole is the author role of a transcript entry.
type MessageRole string

const (
	MessageRoleSystem    MessageRole = "system"
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleTool      MessageRole = "tool"
)

// Conversation is one chat session's envelope. SessionID is an opaque,
// caller-supplied identifier; the conversation is created lazily the first
// time the session is referenced.
type Conversation struct {
	ID        int32
	SessionID string
	CreatedTs int64
	UpdatedTs int64
}

// ConversationMessage is one append-only transcript entry. Order of
// insertion is the chronological order of the conversation.
type ConversationMessage struct {
	ID        int32
	UID       string
	SessionID string
	Role      MessageRole
	Content   string
	CreatedTs int64
}

// EnsureConversation returns the conversation for sessionID, creating it
// if this is the first time the session is seen.
func (s *Store) EnsureConversation(ctx context.Context, sessionID string) (*Conversation, error) {
	return s.driver.EnsureConversation(ctx, sessionID)
}

func (s *Store) AppendConversationMessage(ctx context.Context, create *ConversationMessage) (*ConversationMessage, error) {
	return s.driver.AppendConversationMessage(ctx, create)
}

// ListRecentConversationMessages returns the trailing limit messages of a
// session in chronological order. A limit <= 0 falls back to
// DefaultRecentMessageLimit.
func (s *Store) ListRecentConversationMessages(ctx context.Context, sessionID string, limit int) ([]*ConversationMessage, error) {
	if limit <= 0 {
		limit = DefaultRecentMessageLimit
	}
	return s.driver.ListRecentConversationMessages(ctx, sessionID, limit)
}

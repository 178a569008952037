package agent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/lithammer/shortuuid/v4"

	"github.com/campusmind/campusmind/plugin/ai"
	"github.com/campusmind/campusmind/store"
)

// DefaultSystemPrompt frames the assistant before every turn.
const DefaultSystemPrompt = "You are Campus Admin Agent, an AI assistant for campus administration. " +
	"You can manage student records, provide analytics, answer FAQs, and send notifications. " +
	"Use the available tools to fetch or update data rather than guessing. " +
	"Be concise and include relevant details in your final answer."

const (
	// fallbackReply is returned when the round budget runs out without a
	// final answer.
	fallbackReply = "I'm sorry, I couldn't complete the request right now. Please try again."
	// apologyReply is returned when the model provider fails.
	apologyReply = "I apologize, but I'm currently experiencing technical difficulties. Please try again later."
)

// Config bounds one agent turn.
type Config struct {
	SystemPrompt string
	// MaxRounds caps model round trips per turn.
	MaxRounds int
	// HistoryLimit is how many trailing transcript entries seed the context.
	HistoryLimit int
}

func DefaultConfig() Config {
	return Config{
		SystemPrompt: DefaultSystemPrompt,
		MaxRounds:    4,
		HistoryLimit: store.DefaultRecentMessageLimit,
	}
}

// Agent runs conversational turns: it persists the transcript, feeds recent
// history to the model, and executes requested tools for up to
// Config.MaxRounds rounds.
type Agent struct {
	holder   *ai.Holder
	store    *store.Store
	registry *Registry
	config   Config
}

func New(holder *ai.Holder, s *store.Store, registry *Registry, config Config) *Agent {
	if config.MaxRounds <= 0 {
		config.MaxRounds = 4
	}
	if config.HistoryLimit <= 0 {
		config.HistoryLimit = store.DefaultRecentMessageLimit
	}
	if config.SystemPrompt == "" {
		config.SystemPrompt = DefaultSystemPrompt
	}
	return &Agent{holder: holder, store: s, registry: registry, config: config}
}

// Run executes one synchronous turn and returns the assistant's reply. The
// user message is persisted before any model call; the reply is persisted
// before returning. Provider failures surface as an apology reply, not an
// error.
func (a *Agent) Run(ctx context.Context, sessionID, userText string) (string, error) {
	messages, err := a.prepare(ctx, sessionID, userText)
	if err != nil {
		return "", err
	}

	gateway, err := a.holder.Get()
	if err != nil {
		slog.Error("agent gateway unavailable", slog.String("error", err.Error()))
		return a.persistReply(ctx, sessionID, apologyReply)
	}

	tools := a.registry.Descriptors()
	for round := 0; round < a.config.MaxRounds; round++ {
		response, err := gateway.Complete(ctx, messages, tools)
		if err != nil {
			slog.Error("agent completion failed",
				slog.String("session_id", sessionID),
				slog.Int("round", round),
				slog.String("error", err.Error()))
			return a.persistReply(ctx, sessionID, apologyReply)
		}

		if len(response.ToolCalls) == 0 {
			return a.persistReply(ctx, sessionID, response.Content)
		}
		messages = a.executeRound(ctx, messages, response)
	}

	slog.Warn("agent round budget exhausted", slog.String("session_id", sessionID))
	return a.persistReply(ctx, sessionID, fallbackReply)
}

// Stream executes one turn and emits protocol events on the returned
// channel. Tool resolution happens before the first frame; the final answer
// is produced by a dedicated streaming completion. The channel is closed
// after the terminal frame (message_end or error).
func (a *Agent) Stream(ctx context.Context, sessionID, userText string) (<-chan Event, error) {
	messages, err := a.prepare(ctx, sessionID, userText)
	if err != nil {
		return nil, err
	}

	events := make(chan Event, 16)
	go func() {
		defer close(events)

		gateway, err := a.holder.Get()
		if err != nil {
			slog.Error("agent gateway unavailable", slog.String("error", err.Error()))
			a.persistApology(ctx, sessionID)
			events <- Event{Type: EventError, Message: apologyReply}
			return
		}

		// Resolution phase: run tool rounds until the model stops asking.
		// Exhausting the budget still proceeds to the final stream; the
		// model just answers without further tool results.
		tools := a.registry.Descriptors()
		for round := 0; round < a.config.MaxRounds; round++ {
			response, err := gateway.Complete(ctx, messages, tools)
			if err != nil {
				slog.Error("agent completion failed",
					slog.String("session_id", sessionID),
					slog.Int("round", round),
					slog.String("error", err.Error()))
				a.persistApology(ctx, sessionID)
				events <- Event{Type: EventError, Message: apologyReply}
				return
			}
			if len(response.ToolCalls) == 0 {
				break
			}
			messages = a.executeRound(ctx, messages, response)
		}

		tokenCh, errCh := gateway.CompleteStream(ctx, messages)
		events <- Event{Type: EventMessageStart}

		var reply strings.Builder
		for token := range tokenCh {
			reply.WriteString(token)
			select {
			case events <- Event{Type: EventToken, Value: token}:
			case <-ctx.Done():
				return
			}
		}
		if err := <-errCh; err != nil {
			slog.Error("agent stream failed",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()))
			a.persistApology(ctx, sessionID)
			events <- Event{Type: EventError, Message: apologyReply}
			return
		}

		events <- Event{Type: EventMessageEnd}
		if _, err := a.persistReply(ctx, sessionID, reply.String()); err != nil {
			slog.Error("persist streamed reply failed",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()))
		}
	}()
	return events, nil
}

// prepare persists the incoming user message and assembles the model
// context from the trailing transcript.
func (a *Agent) prepare(ctx context.Context, sessionID, userText string) ([]ai.Message, error) {
	if _, err := a.store.EnsureConversation(ctx, sessionID); err != nil {
		return nil, err
	}
	if _, err := a.store.AppendConversationMessage(ctx, &store.ConversationMessage{
		UID:       shortuuid.New(),
		SessionID: sessionID,
		Role:      store.MessageRoleUser,
		Content:   userText,
	}); err != nil {
		return nil, err
	}

	history, err := a.store.ListRecentConversationMessages(ctx, sessionID, a.config.HistoryLimit)
	if err != nil {
		return nil, err
	}

	messages := make([]ai.Message, 0, len(history)+1)
	messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: a.config.SystemPrompt})
	for _, m := range history {
		messages = append(messages, ai.Message{Role: string(m.Role), Content: m.Content})
	}
	return messages, nil
}

// executeRound appends the assistant's tool-call turn and one tool-role
// result per call, in call order. Tool round trips stay in the working
// context only; they are never persisted.
func (a *Agent) executeRound(ctx context.Context, messages []ai.Message, response *ai.ChatResponse) []ai.Message {
	messages = append(messages, ai.Message{
		Role:      ai.RoleAssistant,
		Content:   response.Content,
		ToolCalls: response.ToolCalls,
	})
	for _, call := range response.ToolCalls {
		result := a.registry.Dispatch(ctx, call)
		messages = append(messages, ai.Message{
			Role:       ai.RoleTool,
			Content:    result,
			ToolCallID: call.ID,
		})
	}
	return messages
}

func (a *Agent) persistApology(ctx context.Context, sessionID string) {
	if _, err := a.persistReply(ctx, sessionID, apologyReply); err != nil {
		slog.Error("persist apology failed",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
	}
}

func (a *Agent) persistReply(ctx context.Context, sessionID, content string) (string, error) {
	if _, err := a.store.AppendConversationMessage(ctx, &store.ConversationMessage{
		UID:       shortuuid.New(),
		SessionID: sessionID,
		Role:      store.MessageRoleAssistant,
		Content:   content,
	}); err != nil {
		return "", err
	}
	return content, nil
}

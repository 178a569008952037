package agent

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/campusmind/campusmind/internal/profile"
	"github.com/campusmind/campusmind/plugin/ai"
	"github.com/campusmind/campusmind/store"
)

// memDriver is an in-memory store.Driver for loop tests.
type memDriver struct {
	mu            sync.Mutex
	students      []*store.Student
	conversations map[string]*store.Conversation
	messages      []*store.ConversationMessage
	nextID        int32
}

func newMemDriver() *memDriver {
	return &memDriver{conversations: make(map[string]*store.Conversation)}
}

func (d *memDriver) GetDB() *sql.DB { return nil }
func (d *memDriver) Close() error   { return nil }
func (d *memDriver) IsInitialized(context.Context) (bool, error) {
	return true, nil
}

func (d *memDriver) CreateStudent(_ context.Context, create *store.Student) (*store.Student, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range d.students {
		if s.StudentID == create.StudentID {
			return nil, &store.DuplicateError{Field: "student_id"}
		}
		if s.Email == create.Email {
			return nil, &store.DuplicateError{Field: "email"}
		}
	}
	d.nextID++
	create.ID = d.nextID
	if create.JoinedTs == 0 {
		create.JoinedTs = time.Now().Unix()
	}
	d.students = append(d.students, create)
	return create, nil
}

func (d *memDriver) GetStudent(ctx context.Context, find *store.FindStudent) (*store.Student, error) {
	list, err := d.ListStudents(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, store.ErrNotFound
	}
	return list[0], nil
}

func (d *memDriver) ListStudents(_ context.Context, find *store.FindStudent) ([]*store.Student, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	list := make([]*store.Student, 0)
	for _, s := range d.students {
		if find.StudentID != nil && s.StudentID != *find.StudentID {
			continue
		}
		if find.Department != nil && s.Department != *find.Department {
			continue
		}
		if find.Status != nil && s.Status != *find.Status {
			continue
		}
		list = append(list, s)
	}
	if find.Limit != nil && len(list) > *find.Limit {
		list = list[:*find.Limit]
	}
	return list, nil
}

func (d *memDriver) UpdateStudent(ctx context.Context, update *store.UpdateStudent) (*store.Student, error) {
	student, err := d.GetStudent(ctx, &store.FindStudent{StudentID: &update.StudentID})
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if update.Name != nil {
		student.Name = *update.Name
	}
	if update.Status != nil {
		student.Status = *update.Status
	}
	if update.LastActiveTs != nil {
		student.LastActiveTs = update.LastActiveTs
	}
	return student, nil
}

func (d *memDriver) DeleteStudent(_ context.Context, del *store.DeleteStudent) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, s := range d.students {
		if s.StudentID == del.StudentID {
			d.students = append(d.students[:i], d.students[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (d *memDriver) CountStudents(context.Context) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.students)), nil
}

func (d *memDriver) CountStudentsByDepartment(context.Context) (map[string]int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	counts := make(map[string]int64)
	for _, s := range d.students {
		counts[s.Department]++
	}
	return counts, nil
}

func (d *memDriver) CountStudentsActiveSince(_ context.Context, sinceTs int64) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var count int64
	for _, s := range d.students {
		if s.LastActiveTs != nil && *s.LastActiveTs >= sinceTs {
			count++
		}
	}
	return count, nil
}

func (d *memDriver) CountStudentsJoinedByDay(context.Context, int64) ([]*store.DayCount, error) {
	return nil, nil
}

func (d *memDriver) CountStudentsActiveByDay(context.Context, int64) ([]*store.DayCount, error) {
	return nil, nil
}

func (d *memDriver) CreateUser(_ context.Context, create *store.User) (*store.User, error) {
	return create, nil
}

func (d *memDriver) GetUser(context.Context, *store.FindUser) (*store.User, error) {
	return nil, store.ErrNotFound
}

func (d *memDriver) UpdateUser(context.Context, *store.UpdateUser) (*store.User, error) {
	return nil, store.ErrNotFound
}

func (d *memDriver) EnsureConversation(_ context.Context, sessionID string) (*store.Conversation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if c, ok := d.conversations[sessionID]; ok {
		return c, nil
	}
	d.nextID++
	c := &store.Conversation{ID: d.nextID, SessionID: sessionID, CreatedTs: time.Now().Unix()}
	d.conversations[sessionID] = c
	return c, nil
}

func (d *memDriver) AppendConversationMessage(_ context.Context, create *store.ConversationMessage) (*store.ConversationMessage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	create.ID = d.nextID
	create.CreatedTs = time.Now().Unix()
	d.messages = append(d.messages, create)
	return create, nil
}

func (d *memDriver) ListRecentConversationMessages(_ context.Context, sessionID string, limit int) ([]*store.ConversationMessage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	list := make([]*store.ConversationMessage, 0)
	for _, m := range d.messages {
		if m.SessionID == sessionID {
			list = append(list, m)
		}
	}
	if len(list) > limit {
		list = list[len(list)-limit:]
	}
	return list, nil
}

func (d *memDriver) sessionMessages(sessionID string) []*store.ConversationMessage {
	d.mu.Lock()
	defer d.mu.Unlock()
	list := make([]*store.ConversationMessage, 0)
	for _, m := range d.messages {
		if m.SessionID == sessionID {
			list = append(list, m)
		}
	}
	return list
}

// scriptedGateway replays canned completions and records what it was asked.
type scriptedGateway struct {
	mu        sync.Mutex
	responses []*ai.ChatResponse
	errs      []error
	calls     [][]ai.Message

	streamTokens []string
	streamErr    error
}

func (g *scriptedGateway) Complete(_ context.Context, messages []ai.Message, _ []ai.ToolDescriptor) (*ai.ChatResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, messages)
	idx := len(g.calls) - 1
	if idx < len(g.errs) && g.errs[idx] != nil {
		return nil, g.errs[idx]
	}
	if idx < len(g.responses) {
		return g.responses[idx], nil
	}
	return g.responses[len(g.responses)-1], nil
}

func (g *scriptedGateway) CompleteStream(_ context.Context, messages []ai.Message) (<-chan string, <-chan error) {
	g.mu.Lock()
	g.calls = append(g.calls, messages)
	g.mu.Unlock()

	tokenCh := make(chan string, len(g.streamTokens))
	errCh := make(chan error, 1)
	for _, t := range g.streamTokens {
		tokenCh <- t
	}
	close(tokenCh)
	errCh <- g.streamErr
	close(errCh)
	return tokenCh, errCh
}

func newTestAgent(t *testing.T, gateway ai.Gateway) (*Agent, *memDriver) {
	t.Helper()
	driver := newMemDriver()
	s := store.New(driver, &profile.Profile{Mode: "dev", Driver: "sqlite"})
	t.Cleanup(func() { _ = s.Close() })
	holder := ai.NewHolderFunc(func() (ai.Gateway, error) { return gateway, nil })
	return New(holder, s, DefaultRegistry(s), DefaultConfig()), driver
}

func collectEvents(ch <-chan Event) []Event {
	events := make([]Event, 0)
	for e := range ch {
		events = append(events, e)
	}
	return events
}

func TestRunDirectAnswer(t *testing.T) {
	gateway := &scriptedGateway{responses: []*ai.ChatResponse{{Content: "All clear."}}}
	agent, driver := newTestAgent(t, gateway)

	reply, err := agent.Run(context.Background(), "s1", "anything new?")
	require.NoError(t, err)
	require.Equal(t, "All clear.", reply)

	messages := driver.sessionMessages("s1")
	require.Len(t, messages, 2)
	require.Equal(t, store.MessageRoleUser, messages[0].Role)
	require.Equal(t, "anything new?", messages[0].Content)
	require.Equal(t, store.MessageRoleAssistant, messages[1].Role)
	require.Equal(t, "All clear.", messages[1].Content)
}

func TestRunToolRound(t *testing.T) {
	gateway := &scriptedGateway{responses: []*ai.ChatResponse{
		{ToolCalls: []ai.ToolCall{{ID: "call_1", Name: "get_total_students", Arguments: "{}"}}},
		{Content: "There are 0 students."},
	}}
	agent, driver := newTestAgent(t, gateway)

	reply, err := agent.Run(context.Background(), "s1", "how many students?")
	require.NoError(t, err)
	require.Equal(t, "There are 0 students.", reply)
	require.Len(t, gateway.calls, 2)

	// Second round sees the assistant tool request plus the tool result.
	second := gateway.calls[1]
	require.Equal(t, ai.RoleAssistant, second[len(second)-2].Role)
	require.Equal(t, ai.RoleTool, second[len(second)-1].Role)
	require.Equal(t, "call_1", second[len(second)-1].ToolCallID)
	require.Contains(t, second[len(second)-1].Content, `"total_students":0`)

	// Tool round trips are never persisted.
	messages := driver.sessionMessages("s1")
	require.Len(t, messages, 2)
	require.Equal(t, store.MessageRoleUser, messages[0].Role)
	require.Equal(t, store.MessageRoleAssistant, messages[1].Role)
}

func TestRunSiblingToolCallsAnsweredInOrder(t *testing.T) {
	gateway := &scriptedGateway{responses: []*ai.ChatResponse{
		{ToolCalls: []ai.ToolCall{
			{ID: "call_a", Name: "get_cafeteria_timings", Arguments: "{}"},
			{ID: "call_b", Name: "get_library_hours", Arguments: "{}"},
		}},
		{Content: "done"},
	}}
	agent, _ := newTestAgent(t, gateway)

	_, err := agent.Run(context.Background(), "s1", "hours?")
	require.NoError(t, err)

	second := gateway.calls[1]
	toolMessages := second[len(second)-2:]
	require.Equal(t, "call_a", toolMessages[0].ToolCallID)
	require.Contains(t, toolMessages[0].Content, "8:00 AM - 8:00 PM")
	require.Equal(t, "call_b", toolMessages[1].ToolCallID)
	require.Contains(t, toolMessages[1].Content, "8:00 AM - 10:00 PM")
}

func TestRunRoundBudgetExhausted(t *testing.T) {
	gateway := &scriptedGateway{responses: []*ai.ChatResponse{
		{ToolCalls: []ai.ToolCall{{ID: "call_1", Name: "get_total_students", Arguments: "{}"}}},
	}}
	agent, driver := newTestAgent(t, gateway)

	reply, err := agent.Run(context.Background(), "s1", "loop forever")
	require.NoError(t, err)
	require.Equal(t, fallbackReply, reply)
	require.Len(t, gateway.calls, 4)

	messages := driver.sessionMessages("s1")
	require.Equal(t, fallbackReply, messages[len(messages)-1].Content)
}

func TestRunGatewayErrorPersistsApology(t *testing.T) {
	gateway := &scriptedGateway{
		responses: []*ai.ChatResponse{nil},
		errs:      []error{&ai.GatewayError{Message: "chat completion failed", Cause: errors.New("429")}},
	}
	agent, driver := newTestAgent(t, gateway)

	reply, err := agent.Run(context.Background(), "s1", "hello")
	require.NoError(t, err)
	require.Equal(t, apologyReply, reply)

	messages := driver.sessionMessages("s1")
	require.Len(t, messages, 2)
	require.Equal(t, apologyReply, messages[1].Content)
}

func TestRunHistoryWindow(t *testing.T) {
	gateway := &scriptedGateway{responses: []*ai.ChatResponse{{Content: "ok"}}}
	agent, driver := newTestAgent(t, gateway)

	for i := 0; i < 14; i++ {
		_, err := driver.AppendConversationMessage(context.Background(), &store.ConversationMessage{
			UID:       "m",
			SessionID: "s1",
			Role:      store.MessageRoleUser,
			Content:   "old",
		})
		require.NoError(t, err)
	}

	_, err := agent.Run(context.Background(), "s1", "latest")
	require.NoError(t, err)

	// System prompt plus the trailing ten transcript entries.
	first := gateway.calls[0]
	require.Len(t, first, 11)
	require.Equal(t, ai.RoleSystem, first[0].Role)
	require.Equal(t, "latest", first[len(first)-1].Content)
}

func TestStreamHappyPath(t *testing.T) {
	gateway := &scriptedGateway{
		responses:    []*ai.ChatResponse{{Content: "ignored"}},
		streamTokens: []string{"Hel", "lo"},
	}
	agent, driver := newTestAgent(t, gateway)

	ch, err := agent.Stream(context.Background(), "s1", "hi")
	require.NoError(t, err)
	events := collectEvents(ch)

	require.Equal(t, []Event{
		{Type: EventMessageStart},
		{Type: EventToken, Value: "Hel"},
		{Type: EventToken, Value: "lo"},
		{Type: EventMessageEnd},
	}, events)

	messages := driver.sessionMessages("s1")
	require.Len(t, messages, 2)
	require.Equal(t, "Hello", messages[1].Content)
}

func TestStreamToolResolutionBeforeFirstFrame(t *testing.T) {
	gateway := &scriptedGateway{
		responses: []*ai.ChatResponse{
			{ToolCalls: []ai.ToolCall{{ID: "call_1", Name: "get_event_schedule", Arguments: "{}"}}},
			{Content: "resolved"},
		},
		streamTokens: []string{"Tech Talk is Oct 1."},
	}
	agent, _ := newTestAgent(t, gateway)

	ch, err := agent.Stream(context.Background(), "s1", "events?")
	require.NoError(t, err)
	events := collectEvents(ch)

	require.Equal(t, EventMessageStart, events[0].Type)
	require.Equal(t, EventMessageEnd, events[len(events)-1].Type)
	// Two resolution calls, then the streaming call.
	require.Len(t, gateway.calls, 3)
}

func TestStreamRoundCapStillStreams(t *testing.T) {
	gateway := &scriptedGateway{
		responses: []*ai.ChatResponse{
			{ToolCalls: []ai.ToolCall{{ID: "call_1", Name: "get_total_students", Arguments: "{}"}}},
		},
		streamTokens: []string{"best effort"},
	}
	agent, driver := newTestAgent(t, gateway)

	ch, err := agent.Stream(context.Background(), "s1", "loop")
	require.NoError(t, err)
	events := collectEvents(ch)

	// Budget exhaustion does not abort the streaming path.
	require.Equal(t, EventMessageEnd, events[len(events)-1].Type)
	require.Len(t, gateway.calls, 5)

	messages := driver.sessionMessages("s1")
	require.Equal(t, "best effort", messages[len(messages)-1].Content)
}

func TestStreamFailurePersistsApology(t *testing.T) {
	gateway := &scriptedGateway{
		responses:    []*ai.ChatResponse{{Content: "ignored"}},
		streamTokens: nil,
		streamErr:    &ai.GatewayError{Message: "read completion stream failed"},
	}
	agent, driver := newTestAgent(t, gateway)

	ch, err := agent.Stream(context.Background(), "s1", "hi")
	require.NoError(t, err)
	events := collectEvents(ch)

	require.Equal(t, EventError, events[len(events)-1].Type)
	require.Equal(t, apologyReply, events[len(events)-1].Message)

	// Error frames put the text under "message", unlike token frames.
	frame, err := json.Marshal(events[len(events)-1])
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"error","message":"`+apologyReply+`"}`, string(frame))

	// Partial tokens are discarded; the apology is what the transcript keeps.
	messages := driver.sessionMessages("s1")
	require.Len(t, messages, 2)
	require.Equal(t, store.MessageRoleUser, messages[0].Role)
	require.Equal(t, apologyReply, messages[1].Content)
}

func TestStreamResolutionFailurePersistsApology(t *testing.T) {
	gateway := &scriptedGateway{
		responses: []*ai.ChatResponse{nil},
		errs:      []error{&ai.GatewayError{Message: "chat completion failed"}},
	}
	agent, driver := newTestAgent(t, gateway)

	ch, err := agent.Stream(context.Background(), "s1", "hi")
	require.NoError(t, err)
	events := collectEvents(ch)

	// No message frames at all, just the error.
	require.Len(t, events, 1)
	require.Equal(t, EventError, events[0].Type)

	messages := driver.sessionMessages("s1")
	require.Len(t, messages, 2)
	require.Equal(t, apologyReply, messages[1].Content)
}

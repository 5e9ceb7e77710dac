package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"roboto-sai-be/internal/constant"
	"roboto-sai-be/internal/dto"
	"roboto-sai-be/internal/entity"
	"roboto-sai-be/internal/pkg/logger"
	"roboto-sai-be/internal/repository/memory"
	"roboto-sai-be/pkg/conversation"
	"roboto-sai-be/pkg/emotion"
	"roboto-sai-be/pkg/events"
	"roboto-sai-be/pkg/llm"
	"roboto-sai-be/pkg/toolrequest"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedInvoker struct {
	result       llm.Result
	lastHistory  []entity.Turn
	lastPrevious string
}

func (s *scriptedInvoker) Invoke(_ context.Context, history []entity.Turn, _, _ string, previousResponseID string, _ ...llm.Option) llm.Result {
	s.lastHistory = history
	s.lastPrevious = previousResponseID
	return s.result
}

type recordingSink struct {
	mu       sync.Mutex
	sessions []string
}

func (r *recordingSink) Publish(_ context.Context, sessionKey string, _ []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = append(r.sessions, sessionKey)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType())
	}
	return out
}

type mapCache struct {
	mu      sync.Mutex
	entries map[string]dto.ChatHistoryResponse
	deletes int

	// Runs once, outside the lock, before the next Set stores its value.
	beforeSet func()
}

func (m *mapCache) Get(_ context.Context, key string, dest any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	if ok {
		*(dest.(*dto.ChatHistoryResponse)) = v
	}
	return ok
}

func (m *mapCache) Set(_ context.Context, key string, value any, _ time.Duration) bool {
	m.mu.Lock()
	hook := m.beforeSet
	m.beforeSet = nil
	m.mu.Unlock()
	if hook != nil {
		hook()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = *(value.(*dto.ChatHistoryResponse))
	return true
}

func (m *mapCache) Delete(_ context.Context, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	m.deletes++
	return true
}

type fixture struct {
	svc       IChatService
	invoker   *scriptedInvoker
	sink      *recordingSink
	publisher *recordingPublisher
	cache     *mapCache
	consumer  IConsumerService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewNopLogger()
	store := memory.NewMessageStore()
	id := "resp_1"
	inv := &scriptedInvoker{result: llm.Result{Success: true, Response: "Hello, friend.", ResponseID: &id}}
	orch := conversation.NewOrchestrator(store, emotion.Lexicon{}, inv, memory.NewSessionRepository(0, 0), log)

	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	publisher := &recordingPublisher{}
	consumer := NewConsumerService(pubSub, ToolCallTopic, publisher, log)
	require.NoError(t, consumer.Consume(context.Background()))

	f := &fixture{
		invoker:   inv,
		sink:      &recordingSink{},
		publisher: publisher,
		cache:     &mapCache{entries: map[string]dto.ChatHistoryResponse{}},
		consumer:  consumer,
	}
	f.svc = NewChatService(
		orch,
		toolrequest.NewResolver(toolrequest.DefaultDefaults()),
		store,
		NewToolDispatchService(pubSub, ToolCallTopic, log),
		f.sink,
		publisher,
		f.cache,
		log,
	)
	return f
}

func TestSendChat_HelloHasNoToolCall(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.SendChat(ctx, "", &dto.ChatRequest{Message: "hello", SessionId: "s1"})
	require.NoError(t, err)

	assert.Equal(t, "Hello, friend.", res.Reply)
	assert.Equal(t, constant.ModeEntangled, res.Mode)
	require.Len(t, res.Events, 1)
	assert.Equal(t, constant.EventTypeAssistantMessage, res.Events[0].Type)
	assert.Equal(t, "Hello, friend.", res.Events[0].Data["content"])
	assert.NotEmpty(t, res.Events[0].Id)
	assert.Positive(t, res.Events[0].Timestamp)

	res, err = f.svc.SendChat(ctx, "", &dto.ChatRequest{Message: "hello", SessionId: "s1"})
	require.NoError(t, err)
	meta := res.Events[0].Data["metadata"].(map[string]any)
	assert.Equal(t, 2, meta["history_length"])

	assert.Equal(t, []string{"demo-user::s1", "demo-user::s1"}, f.sink.sessions)
	assert.Contains(t, f.publisher.types(), events.TypeTurnCompleted)
}

func TestSendChat_ToolCallEventAndDispatch(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.SendChat(context.Background(), "", &dto.ChatRequest{Message: `please write file C:\notes.txt, now`})
	require.NoError(t, err)

	require.Len(t, res.Events, 2)
	tool := res.Events[1]
	assert.Equal(t, constant.EventTypeToolCall, tool.Type)
	assert.Equal(t, "backend", tool.Data["source"])
	assert.Equal(t, "filesystem", tool.Data["serverId"])
	assert.Equal(t, toolrequest.ToolWriteFile, tool.Data["toolName"])
	assert.NotEmpty(t, tool.Data["id"])
	args := tool.Data["args"].(map[string]any)
	assert.Equal(t, `C:\notes.txt`, args["path"])

	require.Eventually(t, func() bool { return f.consumer.Processed() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, f.publisher.types(), events.TypeToolCallRequested)
}

func TestSendChat_ExplicitToolRequestDefaults(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.SendChat(context.Background(), "", &dto.ChatRequest{
		Message:     "hello",
		ToolRequest: &toolrequest.ToolRequest{ToolName: "custom_run"},
	})
	require.NoError(t, err)

	require.Len(t, res.Events, 2)
	data := res.Events[1].Data
	assert.Equal(t, "custom_run", data["toolName"])
	assert.Equal(t, constant.ToolEventDefaultServer, data["serverId"])
	assert.Equal(t, constant.ToolEventDefaultDescription, data["description"])
	assert.Equal(t, map[string]any{}, data["args"])
}

func TestSendChat_DegradedMode(t *testing.T) {
	f := newFixture(t)
	f.invoker.result = llm.Result{Success: false, Error: "401 unauthorized"}

	res, err := f.svc.SendChat(context.Background(), "", &dto.ChatRequest{Message: "hello"})
	require.NoError(t, err)

	assert.Equal(t, constant.OfflineNotice, res.Reply)
	assert.Equal(t, constant.ModeDemo, res.Mode)
	assert.Nil(t, res.ReasoningTraceId)
	assert.Nil(t, res.TokensUsed)
}

func TestSendChat_AuthenticatedUserOverridesBody(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SendChat(ctx, "auth-user", &dto.ChatRequest{Message: "hi", UserId: "spoofed", SessionId: "s"})
	require.NoError(t, err)

	spoofed, err := f.svc.GetHistory(ctx, entity.NewSessionKey("spoofed", "s"))
	require.NoError(t, err)
	assert.Zero(t, spoofed.Count)

	owned, err := f.svc.GetHistory(ctx, entity.NewSessionKey("auth-user", "s"))
	require.NoError(t, err)
	assert.Equal(t, 2, owned.Count)
}

func TestHistory_CacheAndClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := entity.NewSessionKey("u", "s")

	_, err := f.svc.SendChat(ctx, "", &dto.ChatRequest{Message: "hi", UserId: "u", SessionId: "s"})
	require.NoError(t, err)

	h, err := f.svc.GetHistory(ctx, key)
	require.NoError(t, err)
	require.Equal(t, 2, h.Count)
	assert.Equal(t, constant.TurnRoleUser, h.Messages[0].Role)
	assert.Equal(t, constant.MessageStoreMemory, h.Store)
	assert.Contains(t, f.cache.entries, "history:u::s")

	require.NoError(t, f.svc.ClearHistory(ctx, key))
	require.NoError(t, f.svc.ClearHistory(ctx, key), "clearing twice is fine")

	h, err = f.svc.GetHistory(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, h.Count)
	assert.Contains(t, f.publisher.types(), events.TypeHistoryCleared)
}

func TestClearHistory_ResetsChainingToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := entity.NewSessionKey("u", "s1")
	req := func() *dto.ChatRequest { return &dto.ChatRequest{Message: "hello", UserId: "u", SessionId: "s1"} }

	_, err := f.svc.SendChat(ctx, "", req())
	require.NoError(t, err)
	_, err = f.svc.SendChat(ctx, "", req())
	require.NoError(t, err)
	require.Equal(t, "resp_1", f.invoker.lastPrevious, "chained before the clear")

	require.NoError(t, f.svc.ClearHistory(ctx, key))

	res, err := f.svc.SendChat(ctx, "", req())
	require.NoError(t, err)
	assert.Empty(t, f.invoker.lastPrevious, "no chaining token after a clear")
	assert.Len(t, f.invoker.lastHistory, 1, "only the new user turn is sent")
	meta := res.Events[0].Data["metadata"].(map[string]any)
	assert.Equal(t, 0, meta["history_length"])
}

func TestGetHistory_RacingTurnDoesNotLeaveStaleCache(t *testing.T) {
	tests := []struct {
		name  string
		write func(t *testing.T, svc IChatService, key entity.SessionKey)
		want  int
	}{
		{
			name: "turn lands between load and cache",
			write: func(t *testing.T, svc IChatService, key entity.SessionKey) {
				_, err := svc.SendChat(context.Background(), "", &dto.ChatRequest{Message: "again", UserId: key.UserID, SessionId: key.SessionID})
				require.NoError(t, err)
			},
			want: 4,
		},
		{
			name: "clear lands between load and cache",
			write: func(t *testing.T, svc IChatService, key entity.SessionKey) {
				require.NoError(t, svc.ClearHistory(context.Background(), key))
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			key := entity.NewSessionKey("u", "s")

			_, err := f.svc.SendChat(ctx, "", &dto.ChatRequest{Message: "hi", UserId: "u", SessionId: "s"})
			require.NoError(t, err)

			f.cache.beforeSet = func() { tt.write(t, f.svc, key) }
			stale, err := f.svc.GetHistory(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, 2, stale.Count, "the racing read returns what it loaded")
			assert.NotContains(t, f.cache.entries, "history:u::s")

			fresh, err := f.svc.GetHistory(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, fresh.Count)
		})
	}
}

func TestGetHistory_CachesWhenUndisturbed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := entity.NewSessionKey("u", "s")

	_, err := f.svc.SendChat(ctx, "", &dto.ChatRequest{Message: "hi", UserId: "u", SessionId: "s"})
	require.NoError(t, err)
	deletes := f.cache.deletes

	_, err = f.svc.GetHistory(ctx, key)
	require.NoError(t, err)

	assert.Contains(t, f.cache.entries, "history:u::s")
	assert.Equal(t, deletes, f.cache.deletes)
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"roboto-sai-be/internal/constant"
	"roboto-sai-be/internal/dto"
	"roboto-sai-be/internal/entity"
	"roboto-sai-be/internal/pkg/logger"
	"roboto-sai-be/internal/repository/contract"
	"roboto-sai-be/pkg/conversation"
	"roboto-sai-be/pkg/emotion"
	"roboto-sai-be/pkg/events"
	"roboto-sai-be/pkg/toolrequest"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
)

const (
	chatModule      = "ChatService"
	historyCacheTTL = 5 * time.Minute
	publishTimeout  = 2 * time.Second
)

type IChatService interface {
	SendChat(ctx context.Context, authUserId string, request *dto.ChatRequest) (*dto.ChatResponse, error)
	GetHistory(ctx context.Context, key entity.SessionKey) (*dto.ChatHistoryResponse, error)
	ClearHistory(ctx context.Context, key entity.SessionKey) error
	StoreKind() string
}

// TurnRunner runs the conversational pipeline for one message. Reset drops
// the per-session model state kept between turns.
type TurnRunner interface {
	RunTurn(ctx context.Context, in conversation.TurnInput) (string, conversation.Metadata)
	Reset(key entity.SessionKey)
}

// EventSink pushes serialized events to live listeners of a session.
type EventSink interface {
	Publish(ctx context.Context, sessionKey string, payload []byte)
}

// HistoryCache is an optional read-through cache for history reads.
type HistoryCache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration) bool
	Delete(ctx context.Context, key string) bool
}

type chatService struct {
	orchestrator TurnRunner
	resolver     *toolrequest.Resolver
	store        contract.MessageStore
	dispatcher   IToolDispatchService
	sink         EventSink
	publisher    events.Publisher
	cache        HistoryCache
	logger       logger.ILogger

	// Bumped on every history write. A read that raced a write drops the
	// entry it just cached.
	historyWrites atomic.Uint64
}

func NewChatService(
	orchestrator TurnRunner,
	resolver *toolrequest.Resolver,
	store contract.MessageStore,
	dispatcher IToolDispatchService,
	sink EventSink,
	publisher events.Publisher,
	cache HistoryCache,
	log logger.ILogger,
) IChatService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &chatService{
		orchestrator: orchestrator,
		resolver:     resolver,
		store:        store,
		dispatcher:   dispatcher,
		sink:         sink,
		publisher:    publisher,
		cache:        cache,
		logger:       log,
	}
}

func (s *chatService) StoreKind() string {
	return s.store.Kind()
}

// SendChat runs one turn. Tool resolution happens alongside the model call
// and can never fail the reply.
func (s *chatService) SendChat(ctx context.Context, authUserId string, request *dto.ChatRequest) (*dto.ChatResponse, error) {
	userId := request.UserId
	if authUserId != "" {
		userId = authUserId
	}
	key := entity.NewSessionKey(userId, request.SessionId)

	var tool *toolrequest.ToolRequest
	var wg conc.WaitGroup
	wg.Go(func() {
		tool = s.resolver.Resolve(request.Message, request.ToolRequest, request.Context)
	})

	reply, meta := s.orchestrator.RunTurn(ctx, conversation.TurnInput{
		Key:                key,
		Message:            request.Message,
		ReasoningEffort:    request.ReasoningEffort,
		DisplayName:        displayName(request.Context),
		PreviousResponseID: request.PreviousResponseId,
	})

	if recovered := wg.WaitAndRecover(); recovered != nil {
		s.logger.Warn(chatModule, "Tool resolution failed", map[string]interface{}{
			"session": key.String(),
			"error":   recovered.String(),
		})
		tool = nil
	}

	chatEvents := []dto.ChatEvent{newEvent(constant.EventTypeAssistantMessage, map[string]any{
		"content":  reply,
		"metadata": eventMetadata(meta),
	})}
	if tool != nil {
		toolEvent := newEvent(constant.EventTypeToolCall, toolCallData(tool))
		chatEvents = append(chatEvents, toolEvent)
		if s.dispatcher != nil {
			s.dispatcher.Dispatch(ctx, key, toolEvent)
		}
	}

	s.invalidateHistory(ctx, key)
	s.fanOut(ctx, key, chatEvents)
	s.publish(ctx, events.TurnCompleted{
		UserID:        key.UserID,
		SessionID:     key.SessionID,
		Mode:          meta.Mode,
		ResponseID:    meta.ResponseID,
		TokensUsed:    meta.TokensUsed,
		HistoryLength: meta.HistoryLength,
		Elapsed:       meta.Elapsed,
		OccurredAt:    time.Now(),
	})

	return &dto.ChatResponse{
		Reply:            reply,
		ReasoningTraceId: meta.TraceID,
		TokensUsed:       meta.TokensUsed,
		Mode:             meta.Mode,
		Events:           chatEvents,
	}, nil
}

func (s *chatService) GetHistory(ctx context.Context, key entity.SessionKey) (*dto.ChatHistoryResponse, error) {
	key = entity.NewSessionKey(key.UserID, key.SessionID)

	var cached dto.ChatHistoryResponse
	if s.cache != nil && s.cache.Get(ctx, historyCacheKey(key), &cached) {
		return &cached, nil
	}

	seen := s.historyWrites.Load()
	turns := s.store.Load(ctx, key)
	res := &dto.ChatHistoryResponse{
		UserId:    key.UserID,
		SessionId: key.SessionID,
		Store:     s.store.Kind(),
		Count:     len(turns),
		Messages:  make([]dto.TurnResponse, 0, len(turns)),
	}
	for _, t := range turns {
		res.Messages = append(res.Messages, dto.TurnResponse{
			Id:                   t.Id,
			Role:                 t.Role,
			Content:              t.Content,
			Emotion:              t.Emotion,
			EmotionText:          t.EmotionText,
			EmotionProbabilities: t.EmotionProbabilities,
			CreatedAt:            t.CreatedAt,
		})
	}

	if s.cache != nil {
		s.cache.Set(ctx, historyCacheKey(key), res, historyCacheTTL)
		if s.historyWrites.Load() != seen {
			s.cache.Delete(ctx, historyCacheKey(key))
		}
	}
	return res, nil
}

func (s *chatService) ClearHistory(ctx context.Context, key entity.SessionKey) error {
	key = entity.NewSessionKey(key.UserID, key.SessionID)
	s.store.Clear(ctx, key)
	s.orchestrator.Reset(key)
	s.invalidateHistory(ctx, key)
	s.publish(ctx, events.NewHistoryCleared(key.UserID, key.SessionID))
	return nil
}

// invalidateHistory must run after the store write it covers.
func (s *chatService) invalidateHistory(ctx context.Context, key entity.SessionKey) {
	s.historyWrites.Add(1)
	if s.cache != nil {
		s.cache.Delete(ctx, historyCacheKey(key))
	}
}

func (s *chatService) fanOut(ctx context.Context, key entity.SessionKey, chatEvents []dto.ChatEvent) {
	if s.sink == nil {
		return
	}
	for _, e := range chatEvents {
		payload, err := json.Marshal(e)
		if err != nil {
			continue
		}
		s.sink.Publish(ctx, key.String(), payload)
	}
}

func (s *chatService) publish(ctx context.Context, event events.Event) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, event); err != nil {
		s.logger.Warn(chatModule, "Event publish failed", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}

func historyCacheKey(key entity.SessionKey) string {
	return "history:" + key.String()
}

func newEvent(eventType string, data map[string]any) dto.ChatEvent {
	return dto.ChatEvent{
		Id:        uuid.NewString(),
		Timestamp: time.Now().UnixMilli(),
		Type:      eventType,
		Data:      data,
	}
}

func toolCallData(tool *toolrequest.ToolRequest) map[string]any {
	serverId := tool.ServerId
	if serverId == "" {
		serverId = constant.ToolEventDefaultServer
	}
	description := tool.Description
	if description == "" {
		description = constant.ToolEventDefaultDescription
	}
	args := tool.Args
	if args == nil {
		args = map[string]any{}
	}
	return map[string]any{
		"id":          uuid.NewString(),
		"source":      constant.ToolEventSource,
		"serverId":    serverId,
		"toolName":    tool.ToolName,
		"description": description,
		"args":        args,
	}
}

func eventMetadata(meta conversation.Metadata) map[string]any {
	return map[string]any{
		"reasoning_trace_id": meta.TraceID,
		"mode":               meta.Mode,
		"elapsed":            meta.Elapsed,
		"tokens_used":        meta.TokensUsed,
		"encrypted_thinking": meta.EncryptedThinking,
		"user_message_id":    meta.UserMessageID,
		"roboto_message_id":  meta.AssistantMessageID,
		"history_length":     meta.HistoryLength,
		"memory_integrated":  meta.MemoryIntegrated,
		"emotion": map[string]any{
			"user":   emotionDTO(meta.Emotion.User),
			"roboto": emotionDTO(meta.Emotion.Assistant),
		},
	}
}

func emotionDTO(d *emotion.Descriptor) *dto.EmotionDTO {
	if d == nil {
		return nil
	}
	return &dto.EmotionDTO{
		Emotion:       string(d.Emotion),
		EmotionText:   d.Text,
		Probabilities: d.Probabilities,
	}
}

func displayName(ctx map[string]any) string {
	if ctx == nil {
		return ""
	}
	switch v := ctx["user_name"].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

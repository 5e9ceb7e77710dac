package service

import (
	"context"
	"encoding/json"

	"roboto-sai-be/internal/dto"
	"roboto-sai-be/internal/entity"
	"roboto-sai-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const ToolCallTopic = "chat.tool_call"

// ToolCallMessage is what goes on the tool-call topic. The call itself is
// advisory; nothing in this service executes it.
type ToolCallMessage struct {
	UserId    string        `json:"user_id"`
	SessionId string        `json:"session_id"`
	Event     dto.ChatEvent `json:"event"`
}

type IToolDispatchService interface {
	Dispatch(ctx context.Context, key entity.SessionKey, event dto.ChatEvent)
}

type toolDispatchService struct {
	publisher message.Publisher
	topic     string
	logger    logger.ILogger
}

func NewToolDispatchService(publisher message.Publisher, topic string, log logger.ILogger) IToolDispatchService {
	if topic == "" {
		topic = ToolCallTopic
	}
	return &toolDispatchService{
		publisher: publisher,
		topic:     topic,
		logger:    log,
	}
}

func (s *toolDispatchService) Dispatch(ctx context.Context, key entity.SessionKey, event dto.ChatEvent) {
	payload, err := json.Marshal(ToolCallMessage{
		UserId:    key.UserID,
		SessionId: key.SessionID,
		Event:     event,
	})
	if err != nil {
		s.logger.Warn("ToolDispatch", "Failed to marshal tool call", map[string]interface{}{"error": err.Error()})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(context.WithoutCancel(ctx))
	if err := s.publisher.Publish(s.topic, msg); err != nil {
		s.logger.Warn("ToolDispatch", "Failed to publish tool call", map[string]interface{}{
			"session": key.String(),
			"error":   err.Error(),
		})
	}
}

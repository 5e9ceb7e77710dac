package service

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"roboto-sai-be/internal/pkg/logger"
	"roboto-sai-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
	Processed() int64
}

// consumerService audits advisory tool calls and forwards them to the event
// bus for whichever executor is listening.
type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	publisher  events.Publisher
	logger     logger.ILogger
	processed  atomic.Int64
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	publisher events.Publisher,
	log logger.ILogger,
) IConsumerService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		publisher:  publisher,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) Processed() int64 {
	return cs.processed.Load()
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload ToolCallMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ToolCallConsumer", "Failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // invalid payloads would never succeed
		return
	}

	data := payload.Event.Data
	toolName, _ := data["toolName"].(string)
	serverId, _ := data["serverId"].(string)
	callId, _ := data["id"].(string)
	args, _ := data["args"].(map[string]any)

	cs.logger.Info("ToolCallConsumer", "Tool call requested", map[string]interface{}{
		"user_id":    payload.UserId,
		"session_id": payload.SessionId,
		"tool":       toolName,
		"server":     serverId,
		"call_id":    callId,
	})

	pubCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	err := cs.publisher.Publish(pubCtx, events.ToolCallRequested{
		CallID:     callId,
		UserID:     payload.UserId,
		SessionID:  payload.SessionId,
		ServerID:   serverId,
		ToolName:   toolName,
		Args:       args,
		OccurredAt: time.UnixMilli(payload.Event.Timestamp),
	})
	if err != nil {
		// the bus is optional; auditing already happened
		cs.logger.Warn("ToolCallConsumer", "Forwarding tool call failed", map[string]interface{}{"error": err.Error()})
	}

	cs.processed.Add(1)
	msg.Ack()
}

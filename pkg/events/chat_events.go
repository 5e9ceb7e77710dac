package events

import (
	"context"
	"time"
)

const (
	TypeTurnCompleted     = "turn_completed"
	TypeToolCallRequested = "tool_call_requested"
	TypeHistoryCleared    = "history_cleared"
)

// Publisher delivers events to an external bus. Implementations are called
// best-effort; a failed publish never fails a chat turn.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

type TurnCompleted struct {
	UserID        string
	SessionID     string
	Mode          string
	ResponseID    *string
	TokensUsed    *int
	HistoryLength int
	Elapsed       float64
	OccurredAt    time.Time
}

func (e TurnCompleted) EventType() string { return TypeTurnCompleted }

func (e TurnCompleted) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":        e.UserID,
		"session_id":     e.SessionID,
		"mode":           e.Mode,
		"response_id":    e.ResponseID,
		"tokens_used":    e.TokensUsed,
		"history_length": e.HistoryLength,
		"elapsed":        e.Elapsed,
		"occurred_at":    e.OccurredAt.UnixMilli(),
	}
}

func (e TurnCompleted) Timestamp() time.Time { return e.OccurredAt }

type ToolCallRequested struct {
	CallID     string
	UserID     string
	SessionID  string
	ServerID   string
	ToolName   string
	Args       map[string]any
	OccurredAt time.Time
}

func (e ToolCallRequested) EventType() string { return TypeToolCallRequested }

func (e ToolCallRequested) Payload() map[string]interface{} {
	return map[string]interface{}{
		"id":          e.CallID,
		"user_id":     e.UserID,
		"session_id":  e.SessionID,
		"serverId":    e.ServerID,
		"toolName":    e.ToolName,
		"args":        e.Args,
		"occurred_at": e.OccurredAt.UnixMilli(),
	}
}

func (e ToolCallRequested) Timestamp() time.Time { return e.OccurredAt }

func NewHistoryCleared(userID, sessionID string) BaseEvent {
	return BaseEvent{
		Type: TypeHistoryCleared,
		Data: map[string]interface{}{
			"user_id":    userID,
			"session_id": sessionID,
		},
		OccurredAt: time.Now(),
	}
}

package dto

import (
	"time"

	"roboto-sai-be/pkg/toolrequest"
)

type ChatRequest struct {
	Message            string                   `json:"message" validate:"required"`
	ReasoningEffort    string                   `json:"reasoning_effort,omitempty" validate:"omitempty,oneof=low medium high"`
	Context            map[string]any           `json:"context,omitempty"`
	UserId             string                   `json:"user_id,omitempty" validate:"max=128"`
	SessionId          string                   `json:"session_id,omitempty" validate:"max=128"`
	ToolRequest        *toolrequest.ToolRequest `json:"tool_request,omitempty"`
	PreviousResponseId string                   `json:"previous_response_id,omitempty"`
}

type ChatResponse struct {
	Reply            string      `json:"reply"`
	ReasoningTraceId *string     `json:"reasoning_trace_id"`
	TokensUsed       *int        `json:"tokens_used"`
	Mode             string      `json:"mode"`
	Events           []ChatEvent `json:"events"`
}

// ChatEvent is a typed envelope streamed back to the caller. Timestamp is
// milliseconds since the epoch.
type ChatEvent struct {
	Id        string         `json:"id"`
	Timestamp int64          `json:"timestamp"`
	Type      string         `json:"type"`
	Data      map[string]any `json:"data"`
}

type EmotionDTO struct {
	Emotion       string             `json:"emotion"`
	EmotionText   string             `json:"emotion_text"`
	Probabilities map[string]float64 `json:"probabilities"`
}

type ChatHistoryQuery struct {
	UserId    string `query:"user_id" validate:"max=128"`
	SessionId string `query:"session_id" validate:"max=128"`
}

type TurnResponse struct {
	Id                   *string            `json:"id"`
	Role                 string             `json:"role"`
	Content              string             `json:"content"`
	Emotion              *string            `json:"emotion,omitempty"`
	EmotionText          *string            `json:"emotion_text,omitempty"`
	EmotionProbabilities map[string]float64 `json:"emotion_probabilities,omitempty"`
	CreatedAt            time.Time          `json:"created_at"`
}

type ChatHistoryResponse struct {
	UserId    string         `json:"user_id"`
	SessionId string         `json:"session_id"`
	Store     string         `json:"store"`
	Count     int            `json:"count"`
	Messages  []TurnResponse `json:"messages"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
	Store   string `json:"store"`

	ActiveSessions  int `json:"active_sessions"`
	StreamListeners int `json:"stream_listeners"`
}

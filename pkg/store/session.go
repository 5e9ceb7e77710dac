package store

import "time"

// Session is the per-conversation state kept between turns in memory.
// It is keyed by the session key's string form.
type Session struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	// Chaining token returned by the last successful model call
	LastResponseID string `json:"last_response_id"`

	// Emotion cursor carried from one annotation to the next
	Emotion string `json:"emotion"`

	// Mode of the last turn ("entangled" | "demo")
	Mode string `json:"mode"`

	LastInteraction time.Time `json:"last_interaction"`
}

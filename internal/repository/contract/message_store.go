package contract

import (
	"context"

	"roboto-sai-be/internal/entity"
)

// MessageStore is the best-effort conversation log used by the turn pipeline.
// Implementations never surface errors: a failing backend degrades to an
// empty history and unsaved turns.
type MessageStore interface {
	// Load returns the session's turns oldest first, or an empty slice.
	Load(ctx context.Context, key entity.SessionKey) []entity.Turn
	// Append records a turn and returns the generated id when the backend assigns one.
	Append(ctx context.Context, key entity.SessionKey, turn entity.Turn) *string
	// Clear removes every turn of the session. Unknown sessions are a no-op.
	Clear(ctx context.Context, key entity.SessionKey)
	// Kind names the backend variant ("postgres" or "memory").
	Kind() string
}

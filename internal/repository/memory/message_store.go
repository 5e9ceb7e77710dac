package memory

import (
	"context"
	"sync"

	"roboto-sai-be/internal/constant"
	"roboto-sai-be/internal/entity"
	"roboto-sai-be/internal/repository/contract"
)

// MessageStore keeps conversations in process memory, keyed by the structured
// session key. It never assigns ids.
type MessageStore struct {
	mu    sync.RWMutex
	turns map[entity.SessionKey][]entity.Turn
}

var _ contract.MessageStore = (*MessageStore)(nil)

func NewMessageStore() *MessageStore {
	return &MessageStore{
		turns: make(map[entity.SessionKey][]entity.Turn),
	}
}

func (s *MessageStore) Load(_ context.Context, key entity.SessionKey) []entity.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.turns[key]
	out := make([]entity.Turn, len(stored))
	copy(out, stored)
	return out
}

func (s *MessageStore) Append(_ context.Context, key entity.SessionKey, turn entity.Turn) *string {
	turn.Id = nil

	s.mu.Lock()
	s.turns[key] = append(s.turns[key], turn)
	s.mu.Unlock()

	return nil
}

func (s *MessageStore) Clear(_ context.Context, key entity.SessionKey) {
	s.mu.Lock()
	delete(s.turns, key)
	s.mu.Unlock()
}

func (s *MessageStore) Kind() string {
	return constant.MessageStoreMemory
}

package implementation

import (
	"context"

	"roboto-sai-be/internal/constant"
	"roboto-sai-be/internal/entity"
	"roboto-sai-be/internal/pkg/logger"
	"roboto-sai-be/internal/repository/contract"
	"roboto-sai-be/internal/repository/specification"
)

// DurableMessageStore adapts the messages table to the best-effort MessageStore contract.
type DurableMessageStore struct {
	repo   contract.MessageRepository
	logger logger.ILogger
}

var _ contract.MessageStore = (*DurableMessageStore)(nil)

func NewDurableMessageStore(repo contract.MessageRepository, log logger.ILogger) *DurableMessageStore {
	return &DurableMessageStore{
		repo:   repo,
		logger: log,
	}
}

func (s *DurableMessageStore) Load(ctx context.Context, key entity.SessionKey) []entity.Turn {
	turns, err := s.repo.FindAll(ctx,
		specification.BySessionKey{Key: key},
		specification.ChronologicalOrder{},
	)
	if err != nil {
		s.logger.Warn("MessageStore", "Failed to load history", map[string]interface{}{
			"session": key.String(),
			"error":   err.Error(),
		})
		return []entity.Turn{}
	}
	return turns
}

func (s *DurableMessageStore) Append(ctx context.Context, key entity.SessionKey, turn entity.Turn) *string {
	if err := s.repo.Create(ctx, key, &turn); err != nil {
		s.logger.Warn("MessageStore", "Failed to save turn", map[string]interface{}{
			"session": key.String(),
			"role":    turn.Role,
			"error":   err.Error(),
		})
		return nil
	}
	return turn.Id
}

func (s *DurableMessageStore) Clear(ctx context.Context, key entity.SessionKey) {
	if err := s.repo.DeleteBySessionKey(ctx, key); err != nil {
		s.logger.Warn("MessageStore", "Failed to clear history", map[string]interface{}{
			"session": key.String(),
			"error":   err.Error(),
		})
	}
}

func (s *DurableMessageStore) Kind() string {
	return constant.MessageStorePostgres
}

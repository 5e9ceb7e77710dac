package specification

import (
	"roboto-sai-be/internal/entity"

	"gorm.io/gorm"
)

// BySessionKey restricts a query to one (user_id, session_id) conversation.
type BySessionKey struct {
	Key entity.SessionKey
}

func (s BySessionKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ? AND session_id = ?", s.Key.UserID, s.Key.SessionID)
}

// ChronologicalOrder sorts oldest first, breaking created_at ties by insertion sequence.
type ChronologicalOrder struct{}

func (s ChronologicalOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("seq ASC")
}

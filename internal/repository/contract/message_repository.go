package contract

import (
	"context"

	"roboto-sai-be/internal/entity"
	"roboto-sai-be/internal/repository/specification"
)

// MessageRepository is the error-returning table access behind the durable store.
type MessageRepository interface {
	Create(ctx context.Context, key entity.SessionKey, turn *entity.Turn) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]entity.Turn, error)
	DeleteBySessionKey(ctx context.Context, key entity.SessionKey) error
}

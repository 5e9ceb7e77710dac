package implementation

import (
	"context"

	"roboto-sai-be/internal/entity"
	"roboto-sai-be/internal/mapper"
	"roboto-sai-be/internal/model"
	"roboto-sai-be/internal/repository/contract"
	"roboto-sai-be/internal/repository/specification"

	"gorm.io/gorm"
)

type MessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TurnMapper
}

func NewMessageRepository(db *gorm.DB) contract.MessageRepository {
	return &MessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewTurnMapper(),
	}
}

func (r *MessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *MessageRepositoryImpl) Create(ctx context.Context, key entity.SessionKey, turn *entity.Turn) error {
	m := r.mapper.TurnToModel(key, turn)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*turn = r.mapper.MessageToTurn(m)
	return nil
}

func (r *MessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]entity.Turn, error) {
	var models []*model.Message
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	turns := make([]entity.Turn, len(models))
	for i, m := range models {
		turns[i] = r.mapper.MessageToTurn(m)
	}
	return turns, nil
}

func (r *MessageRepositoryImpl) DeleteBySessionKey(ctx context.Context, key entity.SessionKey) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND session_id = ?", key.UserID, key.SessionID).
		Delete(&model.Message{}).Error
}

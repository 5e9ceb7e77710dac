package mapper

import (
	"roboto-sai-be/internal/entity"
	"roboto-sai-be/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TurnMapper struct{}

func NewTurnMapper() *TurnMapper {
	return &TurnMapper{}
}

// TurnToModel assigns a fresh id when the turn has none (or an unparsable one).
func (m *TurnMapper) TurnToModel(key entity.SessionKey, turn *entity.Turn) *model.Message {
	if turn == nil {
		return nil
	}

	id := uuid.New()
	if turn.Id != nil {
		if parsed, err := uuid.Parse(*turn.Id); err == nil {
			id = parsed
		}
	}

	var probabilities datatypes.JSONMap
	if len(turn.EmotionProbabilities) > 0 {
		probabilities = make(datatypes.JSONMap, len(turn.EmotionProbabilities))
		for label, p := range turn.EmotionProbabilities {
			probabilities[label] = p
		}
	}

	return &model.Message{
		Id:                   id,
		UserId:               key.UserID,
		SessionId:            key.SessionID,
		Role:                 turn.Role,
		Content:              turn.Content,
		Emotion:              turn.Emotion,
		EmotionText:          turn.EmotionText,
		EmotionProbabilities: probabilities,
		CreatedAt:            turn.CreatedAt,
	}
}

func (m *TurnMapper) MessageToTurn(msg *model.Message) entity.Turn {
	id := msg.Id.String()

	var probabilities map[string]float64
	if len(msg.EmotionProbabilities) > 0 {
		probabilities = make(map[string]float64, len(msg.EmotionProbabilities))
		for label, raw := range msg.EmotionProbabilities {
			switch v := raw.(type) {
			case float64:
				probabilities[label] = v
			case float32:
				probabilities[label] = float64(v)
			case int:
				probabilities[label] = float64(v)
			case int64:
				probabilities[label] = float64(v)
			}
		}
	}

	return entity.Turn{
		Id:                   &id,
		Role:                 msg.Role,
		Content:              msg.Content,
		Emotion:              msg.Emotion,
		EmotionText:          msg.EmotionText,
		EmotionProbabilities: probabilities,
		CreatedAt:            msg.CreatedAt,
	}
}

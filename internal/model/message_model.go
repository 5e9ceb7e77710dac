package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Message struct {
	Id                   uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Seq                  int64             `gorm:"autoIncrement;not null"` // tie-breaker for equal created_at
	UserId               string            `gorm:"type:varchar(255);not null;index:idx_messages_session_key,priority:1"`
	SessionId            string            `gorm:"type:varchar(255);not null;index:idx_messages_session_key,priority:2"`
	Role                 string            `gorm:"type:varchar(20);not null"`
	Content              string            `gorm:"type:text;not null"`
	Emotion              *string           `gorm:"type:varchar(50)"`
	EmotionText          *string           `gorm:"type:text"`
	EmotionProbabilities datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt            time.Time         `gorm:"autoCreateTime"`
}

func (Message) TableName() string {
	return "messages"
}

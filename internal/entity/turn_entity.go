package entity

import (
	"strings"
	"time"

	"roboto-sai-be/internal/constant"
)

// SessionKey scopes a conversation's turn history.
type SessionKey struct {
	UserID    string
	SessionID string
}

// NewSessionKey applies the anonymous defaults to blank identifiers.
func NewSessionKey(userID, sessionID string) SessionKey {
	userID = strings.TrimSpace(userID)
	sessionID = strings.TrimSpace(sessionID)
	if userID == "" {
		userID = constant.DefaultUserID
	}
	if sessionID == "" {
		sessionID = constant.DefaultSessionID
	}
	return SessionKey{UserID: userID, SessionID: sessionID}
}

func (k SessionKey) String() string {
	return k.UserID + "::" + k.SessionID
}

// Turn is one message in a conversation. Turns are never mutated once stored.
type Turn struct {
	Id                   *string
	Role                 string
	Content              string
	Emotion              *string
	EmotionText          *string
	EmotionProbabilities map[string]float64
	CreatedAt            time.Time
}

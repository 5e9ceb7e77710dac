package memory

import (
	"time"

	"roboto-sai-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache *cache.Cache
}

// NewSessionRepository keeps session state for ttl after the last write and
// purges expired entries every cleanup interval.
func NewSessionRepository(ttl, cleanup time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if cleanup <= 0 {
		cleanup = 10 * time.Minute
	}
	return &SessionRepository{
		cache: cache.New(ttl, cleanup),
	}
}

func (r *SessionRepository) Save(session *store.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*store.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}

package memory

import (
	"time"

	"regassist-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

const (
	// sessionTTL is refreshed on every Save, so only idle sessions expire.
	sessionTTL    = 1 * time.Hour
	sweepInterval = 10 * time.Minute
)

// SessionRepository keeps hot session snapshots in process memory so the ask
// path skips a database read on every turn. Losing an entry is harmless; the
// next ask rebuilds it from the sessions table.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		cache: cache.New(sessionTTL, sweepInterval),
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

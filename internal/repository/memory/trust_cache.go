package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// TrustCache keeps expert trust scores close to the feedback gate so a
// burst of submissions does not hammer expert_profiles. Invalidate on any
// profile update; the short TTL bounds staleness either way.
type TrustCache struct {
	cache *cache.Cache
}

func NewTrustCache() *TrustCache {
	return &TrustCache{
		cache: cache.New(5*time.Minute, 10*time.Minute),
	}
}

func (c *TrustCache) Get(expertId uuid.UUID) (float64, bool) {
	if x, found := c.cache.Get(expertId.String()); found {
		return x.(float64), true
	}
	return 0, false
}

func (c *TrustCache) Save(expertId uuid.UUID, score float64) {
	c.cache.Set(expertId.String(), score, cache.DefaultExpiration)
}

func (c *TrustCache) Invalidate(expertId uuid.UUID) {
	c.cache.Delete(expertId.String())
}

package stream

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Guard is the single-pass protection: one emission per request id, even
// when the write step is driven repeatedly. Entries age out so request ids
// can be reused across runs.
type Guard struct {
	seen *gocache.Cache
}

func NewGuard(ttl time.Duration) *Guard {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Guard{seen: gocache.New(ttl, 2*ttl)}
}

// Acquire reports whether this is the first emission for the request id.
// Add is atomic, so concurrent drivers cannot both win.
func (g *Guard) Acquire(requestID string) bool {
	return g.seen.Add(requestID, struct{}{}, gocache.DefaultExpiration) == nil
}

// Forget releases the id, allowing a deliberate re-stream.
func (g *Guard) Forget(requestID string) {
	g.seen.Delete(requestID)
}

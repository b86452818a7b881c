package routes

import (
	"sync"
	"time"

	"github.com/velomet/ridecast/pkg/track"
)

// TTL cache based on "9.7 Example: Concurrent Non-Blocking Cache" from
// "The Go Programming Language", Alan A. A. Donovan and Brian W. Kernighan

type result struct {
	value *track.RouteTrack
	err   error
}

type entry struct {
	res     result
	expires time.Time
	ready   chan struct{} // closed when res is ready
}

type cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*entry
}

func newCache(ttl time.Duration) *cache {
	return &cache{ttl: ttl, entries: make(map[string]*entry)}
}

func (c *cache) get(k string, fetch func() (*track.RouteTrack, error)) (*track.RouteTrack, error) {
	c.mu.Lock()
	e := c.entries[k]
	if e == nil || e.expires.Before(time.Now()) {
		e = &entry{ready: make(chan struct{}), expires: time.Now().Add(c.ttl)}
		c.entries[k] = e
		c.mu.Unlock()
		e.res.value, e.res.err = fetch()
		close(e.ready)
		if e.res.err != nil {
			// Failures are not worth remembering for a full TTL; the next
			// lookup retries the fetch.
			c.mu.Lock()
			if c.entries[k] == e {
				delete(c.entries, k)
			}
			c.mu.Unlock()
		}
	} else {
		c.mu.Unlock()
		<-e.ready
	}
	return e.res.value, e.res.err
}

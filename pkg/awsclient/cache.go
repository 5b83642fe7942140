// Package awsclient builds AWS SDK clients and shares them between callers
// that ask for the same credentials and configuration.
package awsclient

import (
	"runtime"
	"sync"
	"weak"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Cache memoizes clients by the Key of the parameters they were built from.
//
// The table holds clients weakly: a client stays cached only while some
// caller still references it, and its entry is dropped after the garbage
// collector reclaims it. A single mutex covers the whole table, including
// construction, so at most one client is ever built per key at a time and
// every caller racing on a key sees the same client.
type Cache[C any] struct {
	mu      sync.Mutex
	clients map[Key]weak.Pointer[C]
	build   Factory[C]
	log     logrus.FieldLogger
}

type cacheEntry[C any] struct {
	key Key
	ref weak.Pointer[C]
}

func NewCache[C any](build Factory[C], log logrus.FieldLogger) *Cache[C] {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Cache[C]{
		clients: make(map[Key]weak.Pointer[C]),
		build:   build,
		log:     log,
	}
}

// Acquire returns the client for p. Without opts, a live cached client is
// returned if there is one, and a newly built client is cached. With opts,
// a new client is always built and never cached, since the options are not
// part of the key. Factory errors are returned as is and leave the table
// untouched.
func (c *Cache[C]) Acquire(p Params, opts ...Option) (*C, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := p.Key()
	log := c.log.WithFields(logrus.Fields{
		"resource": p.Resource,
		"region":   p.Region,
		"profile":  p.Profile,
	})

	if len(opts) == 0 {
		if client := c.clients[key].Value(); client != nil {
			log.Debug("reusing cached client")
			return client, nil
		}
	}

	client, err := c.build(p, opts...)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, errors.New("client factory returned nil")
	}

	if len(opts) > 0 {
		log.Debug("built uncached client with extra options")
		return client, nil
	}

	ref := weak.Make(client)
	c.clients[key] = ref
	runtime.AddCleanup(client, c.scheduleEvict, cacheEntry[C]{key: key, ref: ref})
	log.Debug("built and cached client")
	return client, nil
}

// Len reports the number of entries in the table, including entries whose
// client has been collected but not yet evicted.
func (c *Cache[C]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.clients)
}

// scheduleEvict is the cleanup registered for every cached client. It runs
// on the runtime's shared cleanup goroutine, so it must not wait for the
// table lock, which Acquire holds for as long as a construction takes.
func (c *Cache[C]) scheduleEvict(e cacheEntry[C]) {
	if !c.mu.TryLock() {
		go c.evict(e)
		return
	}
	defer c.mu.Unlock()
	c.evictLocked(e)
}

// evict runs after a cached client is collected. The entry may already have
// been replaced by a newer client for the same key, which must survive.
func (c *Cache[C]) evict(e cacheEntry[C]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictLocked(e)
}

func (c *Cache[C]) evictLocked(e cacheEntry[C]) {
	if c.clients[e.key] == e.ref {
		delete(c.clients, e.key)
		c.log.WithField("resource", e.key.Resource).Debug("evicted collected client")
	}
}

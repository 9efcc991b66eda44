package content

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/eringen/contentsite/events"
	"github.com/eringen/contentsite/metrics"
)

// GlobalKey identifies a cached global: its key and the reference depth it was
// resolved with.
type GlobalKey struct {
	Key   string
	Depth int
}

// GlobalCache memoizes global singletons process-wide, with request-scoped
// de-duplication on top.
//
// Entries live until a publish event tagged global_<key> purges them, so
// staleness is bounded by the next publish, not by a TTL. Two requests
// missing together may both query the store. A load that overlaps a purge of
// its key is returned to its caller but never stored.
type GlobalCache struct {
	store GlobalFinder
	opts  Options

	mu      sync.RWMutex
	entries map[GlobalKey]Global
	gens    map[string]uint64

	cancel func()
}

// NewGlobalCache returns an empty cache over store.
func NewGlobalCache(store GlobalFinder, opts Options) *GlobalCache {
	return &GlobalCache{
		store:   store,
		opts:    opts.withDefaults(),
		entries: make(map[GlobalKey]Global),
		gens:    make(map[string]uint64),
	}
}

type globalMemoKey GlobalKey

// Get returns the global key resolved to depth.
func (c *GlobalCache) Get(ctx context.Context, key string, depth int) (Global, error) {
	k := GlobalKey{Key: key, Depth: depth}
	g, shared, err := memoize(ctx, globalMemoKey(k), func() (Global, error) {
		return c.load(ctx, k)
	})
	if shared && err == nil {
		c.opts.Recorder.IncGlobalCache(key, metrics.CacheDedup)
	}
	return g, err
}

func (c *GlobalCache) load(ctx context.Context, k GlobalKey) (Global, error) {
	c.mu.RLock()
	g, ok := c.entries[k]
	gen := c.gens[k.Key]
	c.mu.RUnlock()
	if ok {
		c.opts.Recorder.IncGlobalCache(k.Key, metrics.CacheHit)
		return g, nil
	}
	c.opts.Recorder.IncGlobalCache(k.Key, metrics.CacheMiss)

	if c.opts.Building {
		return Global{}, ErrStoreSkipped
	}
	start := time.Now()
	g, err := c.store.FindGlobal(ctx, k.Key, k.Depth)
	c.opts.Recorder.ObserveStoreQuery("global:"+k.Key, time.Since(start), err)
	if err != nil {
		return Global{}, fmt.Errorf("content: find global %q: %w", k.Key, err)
	}

	c.mu.Lock()
	if c.gens[k.Key] == gen {
		c.entries[k] = g
	}
	c.mu.Unlock()
	return g, nil
}

// Invalidate drops every depth of the global tagged tag. Tags that do not name
// a global are ignored.
func (c *GlobalCache) Invalidate(tag string) {
	key, ok := strings.CutPrefix(tag, GlobalTag(""))
	if !ok || key == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[key]++
	for k := range c.entries {
		if k.Key == key {
			delete(c.entries, k)
			c.opts.Recorder.IncGlobalCache(key, metrics.CachePurge)
		}
	}
}

// handle applies a publish event. An event that names the version already
// cached for every depth changes nothing.
func (c *GlobalCache) handle(ev events.Event) {
	key, ok := strings.CutPrefix(ev.Tag, GlobalTag(""))
	if !ok || key == "" {
		return
	}
	if ev.Version > 0 && c.current(key, ev.Version) {
		return
	}
	c.Invalidate(ev.Tag)
}

func (c *GlobalCache) current(key string, version int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	found := false
	for k, g := range c.entries {
		if k.Key != key {
			continue
		}
		if g.Version != version {
			return false
		}
		found = true
	}
	return found
}

// Start subscribes the cache to publish events.
func (c *GlobalCache) Start(sub events.Subscriber) error {
	cancel, err := sub.Subscribe(c.handle)
	if err != nil {
		return fmt.Errorf("content: subscribe global cache: %w", err)
	}
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()
	return nil
}

// Stop unsubscribes and empties the cache.
func (c *GlobalCache) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.entries = make(map[GlobalKey]Global)
}

// Len returns the number of cached entries.
func (c *GlobalCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

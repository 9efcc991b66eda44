package contentsite

import (
	"context"
	"sync"
	"time"

	"github.com/eringen/contentsite/content"
	"github.com/eringen/contentsite/events"
	"github.com/eringen/contentsite/metrics"
)

// ArchiveCache is an in-memory cache of published archive pages with TTL.
// Entries are dropped when a posts publish event arrives or when they expire.
// A page loaded across a purge is served once but not stored.
type ArchiveCache struct {
	mu       sync.RWMutex
	pages    map[archiveKey]archiveEntry
	gen      uint64
	ttl      time.Duration
	pager    *content.Paginator
	recorder metrics.Recorder
	cancel   func()
}

type archiveKey struct {
	page  int
	limit int
}

type archiveEntry struct {
	result  content.Result
	fetched time.Time
}

// NewArchiveCache creates an ArchiveCache backed by the given Paginator.
func NewArchiveCache(p *content.Paginator, ttl time.Duration, rec metrics.Recorder) *ArchiveCache {
	return &ArchiveCache{
		pages:    make(map[archiveKey]archiveEntry),
		ttl:      ttl,
		pager:    p,
		recorder: metrics.OrNoop(rec),
	}
}

func (c *ArchiveCache) valid(e archiveEntry, now time.Time) bool {
	return now.Sub(e.fetched) < c.ttl
}

// Page returns archive page of the posts collection. It tries a read lock
// first and only queries the store on a miss.
func (c *ArchiveCache) Page(ctx context.Context, page, limit int) (content.Result, error) {
	if page < 1 {
		page = 1
	}
	key := archiveKey{page: page, limit: limit}

	c.mu.RLock()
	e, ok := c.pages[key]
	gen := c.gen
	c.mu.RUnlock()
	if ok && c.valid(e, time.Now()) {
		c.recorder.IncArchiveCache(metrics.CacheHit)
		return e.result, nil
	}
	c.recorder.IncArchiveCache(metrics.CacheMiss)

	res, err := c.pager.Paginate(ctx, content.Posts, page, limit)
	if err != nil {
		return content.Result{}, err
	}
	c.mu.Lock()
	if c.gen == gen {
		c.pages[key] = archiveEntry{result: res, fetched: time.Now()}
	}
	c.mu.Unlock()
	return res, nil
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *ArchiveCache) Invalidate() {
	c.mu.Lock()
	n := len(c.pages)
	c.pages = make(map[archiveKey]archiveEntry)
	c.gen++
	c.mu.Unlock()
	if n > 0 {
		c.recorder.IncArchiveCache(metrics.CachePurge)
	}
}

// Sweep drops expired pages and returns how many were removed.
func (c *ArchiveCache) Sweep() int {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k, e := range c.pages {
		if !c.valid(e, now) {
			delete(c.pages, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of cached pages.
func (c *ArchiveCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pages)
}

// Subscribe purges the cache whenever posts are published.
func (c *ArchiveCache) Subscribe(sub events.Subscriber) error {
	cancel, err := sub.Subscribe(func(ev events.Event) {
		if ev.Tag == content.CollectionTag(content.Posts) {
			c.Invalidate()
		}
	})
	if err != nil {
		return err
	}
	c.cancel = cancel
	return nil
}

// Close stops listening for publish events.
func (c *ArchiveCache) Close() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

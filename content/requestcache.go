package content

import (
	"context"
	"sync"
)

// RequestCache memoizes lookups for the lifetime of one request or render pass.
// Render and metadata generation share it, so a slug is fetched once per
// request and header/footer chrome that share a global cost one query.
// It carries no state across requests; create one per request.
type RequestCache struct {
	mu      sync.Mutex
	entries map[any]*memoEntry
}

type memoEntry struct {
	once sync.Once
	val  any
	err  error
}

// NewRequestCache returns an empty cache.
func NewRequestCache() *RequestCache {
	return &RequestCache{entries: make(map[any]*memoEntry)}
}

type requestCacheKey struct{}

// WithRequestCache attaches rc to ctx.
func WithRequestCache(ctx context.Context, rc *RequestCache) context.Context {
	return context.WithValue(ctx, requestCacheKey{}, rc)
}

// RequestCacheFrom returns the cache attached to ctx, or nil.
func RequestCacheFrom(ctx context.Context) *RequestCache {
	rc, _ := ctx.Value(requestCacheKey{}).(*RequestCache)
	return rc
}

// Len returns the number of memoized keys.
func (rc *RequestCache) Len() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.entries)
}

func (rc *RequestCache) entry(key any) *memoEntry {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	e, ok := rc.entries[key]
	if !ok {
		e = &memoEntry{}
		rc.entries[key] = e
	}
	return e
}

// memoize runs fn at most once per key for the request in ctx. shared is true
// when another call computed the value. Without a request cache fn simply runs.
func memoize[T any](ctx context.Context, key any, fn func() (T, error)) (val T, shared bool, err error) {
	rc := RequestCacheFrom(ctx)
	if rc == nil {
		val, err = fn()
		return val, false, err
	}
	e := rc.entry(key)
	ran := false
	e.once.Do(func() {
		ran = true
		e.val, e.err = fn()
	})
	if e.val != nil {
		val = e.val.(T)
	}
	return val, !ran, e.err
}

package content

import (
	"context"
	"fmt"
	"time"
)

// Enumerator lists the slugs to pre-render for static output.
type Enumerator struct {
	store Finder
	opts  Options
}

// NewEnumerator returns an Enumerator over store.
func NewEnumerator(store Finder, opts Options) *Enumerator {
	return &Enumerator{store: store, opts: opts.withDefaults()}
}

// EnumerateSlugs returns the slugs of every published document in collection.
// The home page is left out of pages because the site root renders it. The
// result is a set; order carries no meaning. In the build short-circuit phase
// it returns nothing without touching the store.
func (e *Enumerator) EnumerateSlugs(ctx context.Context, collection Collection) ([]string, error) {
	if e.opts.Building {
		return nil, nil
	}
	start := time.Now()
	res, err := e.store.Find(ctx, Query{
		Collection:     collection,
		Draft:          false,
		OverrideAccess: false,
		Pagination:     false,
		Select:         []string{"slug"},
	})
	e.opts.Recorder.ObserveStoreQuery(string(collection), time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("content: enumerate %s: %w", collection, err)
	}

	slugs := make([]string, 0, len(res.Docs))
	for _, doc := range res.Docs {
		if collection == Pages && doc.Slug == HomeSlug {
			continue
		}
		slugs = append(slugs, doc.Slug)
	}
	return slugs, nil
}

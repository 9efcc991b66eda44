package content

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// SearchFields are the fields of the search index a query is matched against.
var SearchFields = []string{"title", "meta.description", "meta.title", "slug"}

// SearchSelect is the projection of a search result card.
var SearchSelect = []string{"title", "slug", "categories", "meta", "heroImage"}

// BuildFilter turns a free-text query into a filter over the search index.
// An empty query matches everything; otherwise a document matches when any
// tracked field contains the query, ignoring case. There is no ranking.
func BuildFilter(query string) *Where {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	conds := make([]*Where, 0, len(SearchFields))
	for _, f := range SearchFields {
		conds = append(conds, Like(f, query))
	}
	return Or(conds...)
}

// Searcher runs search queries against the denormalized search collection.
type Searcher struct {
	store Finder
	opts  Options
}

// NewSearcher returns a Searcher over store.
func NewSearcher(store Finder, opts Options) *Searcher {
	return &Searcher{store: store, opts: opts.withDefaults()}
}

// Search returns up to SearchLimit entries in store order.
func (s *Searcher) Search(ctx context.Context, query string) (Result, error) {
	if s.opts.Building {
		return Result{Page: 1, TotalPages: 1}, ErrStoreSkipped
	}
	start := time.Now()
	res, err := s.store.Find(ctx, Query{
		Collection: Search,
		Where:      BuildFilter(query),
		Limit:      SearchLimit,
		Depth:      1,
		Select:     SearchSelect,
		Pagination: false,
	})
	s.opts.Recorder.ObserveStoreQuery(string(Search), time.Since(start), err)
	if err != nil {
		return Result{}, fmt.Errorf("content: search %q: %w", query, err)
	}
	res.TotalDocs = max(res.TotalDocs, len(res.Docs))
	return res, nil
}

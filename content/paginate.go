package content

import (
	"context"
	"fmt"
	"time"
)

// Page sizes per listing context.
const (
	PostsPerPage     = 12
	RecentPostsLimit = 3
	SearchLimit      = 12
)

// ArchiveSelect is the projection of an archive card.
var ArchiveSelect = []string{"title", "slug", "categories", "meta", "publishedAt", "heroImage"}

// Paginator pages through published documents, newest first.
type Paginator struct {
	store Finder
	opts  Options
}

// NewPaginator returns a Paginator over store.
func NewPaginator(store Finder, opts Options) *Paginator {
	return &Paginator{store: store, opts: opts.withDefaults()}
}

// Paginate returns page (1-based) of collection in pages of limit. Pages past
// the end come back with no docs and accurate totals; page numbers below 1
// are treated as 1.
func (p *Paginator) Paginate(ctx context.Context, collection Collection, page, limit int) (Result, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = PostsPerPage
	}
	if p.opts.Building {
		return Result{Page: page, TotalPages: 1}, ErrStoreSkipped
	}
	start := time.Now()
	res, err := p.store.Find(ctx, Query{
		Collection: collection,
		Limit:      limit,
		Page:       page,
		Depth:      1,
		Select:     ArchiveSelect,
		Sort:       "-publishedAt",
		Pagination: true,
	})
	p.opts.Recorder.ObserveStoreQuery(string(collection), time.Since(start), err)
	if err != nil {
		return Result{}, fmt.Errorf("content: paginate %s page %d: %w", collection, page, err)
	}
	res.Page = page
	res.TotalPages = TotalPages(res.TotalDocs, limit)
	if page > res.TotalPages {
		res.Docs = nil
	}
	return res, nil
}

// Range is the "Showing From - To of Total" window of a listing page.
type Range struct {
	From  int
	To    int
	Total int
}

// PageRange computes the window shown on page for limit-sized pages. An empty
// or out-of-range page has From and To of zero.
func PageRange(page, limit, totalDocs int) Range {
	if page < 1 {
		page = 1
	}
	r := Range{Total: totalDocs}
	if limit < 1 || totalDocs == 0 {
		return r
	}
	from := (page-1)*limit + 1
	if from > totalDocs {
		return r
	}
	r.From = from
	r.To = min(page*limit, totalDocs)
	return r
}

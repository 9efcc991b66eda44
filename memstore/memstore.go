// Package memstore is an in-memory implementation of the content store
// contract. It backs tests and `serve --memory`, and mirrors the sqlite
// adapter's semantics: revision visibility, case-insensitive "like", the
// denormalized search collection and reference depth.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/text/cases"

	"github.com/eringen/contentsite/content"
)

// Store holds documents, globals and redirects in memory.
type Store struct {
	mu        sync.RWMutex
	docs      []content.Document
	globals   map[string]content.Global
	redirects map[string]content.Redirect

	fail error

	finds         atomic.Int64
	globalFinds   atomic.Int64
	redirectFinds atomic.Int64
}

// New returns an empty store.
func New() *Store {
	return &Store{
		globals:   make(map[string]content.Global),
		redirects: make(map[string]content.Redirect),
	}
}

// Put inserts or replaces the revision of doc identified by (ID, Status) and
// keeps the search collection in sync for posts.
func (s *Store) Put(docs ...content.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range docs {
		if doc.Status == "" {
			doc.Status = content.StatusPublished
		}
		if doc.UpdatedAt.IsZero() {
			doc.UpdatedAt = time.Now().UTC()
		}
		s.replace(doc)
		if doc.Collection == content.Posts && doc.Published() {
			s.replace(searchEntry(doc))
		}
	}
}

func (s *Store) replace(doc content.Document) {
	for i, d := range s.docs {
		if d.ID == doc.ID && d.Status == doc.Status && d.Collection == doc.Collection {
			s.docs[i] = doc
			return
		}
	}
	s.docs = append(s.docs, doc)
}

func searchEntry(post content.Document) content.Document {
	return content.Document{
		ID:         "search-" + post.ID,
		Collection: content.Search,
		Slug:       post.Slug,
		Title:      post.Title,
		Status:     content.StatusPublished,
		UpdatedAt:  post.UpdatedAt,
		Meta:       post.Meta,
		HeroImage:  post.HeroImage,
		Categories: post.Categories,
		Doc:        &content.DocRef{Collection: content.Posts, ID: post.ID, Slug: post.Slug, Title: post.Title},
	}
}

// Delete removes every revision of the document id and its search entry.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.docs[:0]
	for _, d := range s.docs {
		if d.ID == id || d.ID == "search-"+id {
			continue
		}
		kept = append(kept, d)
	}
	s.docs = kept
}

// PutGlobal stores g, bumping its version past the stored one.
func (s *Store) PutGlobal(g content.Global) content.Global {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.globals[g.Key]; ok && g.Version <= prev.Version {
		g.Version = prev.Version + 1
	}
	if g.Version == 0 {
		g.Version = 1
	}
	s.globals[g.Key] = g
	return g
}

// PutRedirect stores r under its normalized source path.
func (s *Store) PutRedirect(r content.Redirect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.From = content.NormalizePath(r.From)
	s.redirects[r.From] = r
}

// FailWith makes every subsequent call return err (nil restores service).
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	s.fail = err
	s.mu.Unlock()
}

// Finds returns the number of Find calls served.
func (s *Store) Finds() int { return int(s.finds.Load()) }

// GlobalFinds returns the number of FindGlobal calls served.
func (s *Store) GlobalFinds() int { return int(s.globalFinds.Load()) }

// RedirectFinds returns the number of FindRedirect calls served.
func (s *Store) RedirectFinds() int { return int(s.redirectFinds.Load()) }

// Find implements content.Finder.
func (s *Store) Find(ctx context.Context, q content.Query) (content.Result, error) {
	s.finds.Add(1)
	if err := ctx.Err(); err != nil {
		return content.Result{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail != nil {
		return content.Result{}, s.fail
	}
	if err := validate(q); err != nil {
		return content.Result{}, err
	}

	drafts := make(map[string]bool)
	for _, d := range s.docs {
		if d.Collection == q.Collection && d.Status == content.StatusDraft {
			drafts[d.ID] = true
		}
	}

	var matched []content.Document
	for _, d := range s.docs {
		if d.Collection != q.Collection || !content.Visible(d, q, drafts[d.ID]) {
			continue
		}
		if !match(d, q.Where) {
			continue
		}
		matched = append(matched, d)
	}
	sortDocs(matched, q.Sort)

	page := 1
	if q.Pagination && q.Page > 1 {
		page = q.Page
	}
	window := matched
	if q.Limit > 0 {
		from := (page - 1) * q.Limit
		switch {
		case from >= len(matched):
			window = nil
		default:
			window = matched[from:min(from+q.Limit, len(matched))]
		}
	}

	out := make([]content.Document, 0, len(window))
	for _, d := range window {
		if q.Depth > 0 {
			d = s.populate(d)
		}
		out = append(out, d.Project(q.Select))
	}

	res := content.Result{Docs: out, Page: page, TotalDocs: len(out), TotalPages: 1}
	if q.Pagination {
		res.TotalDocs = len(matched)
		res.TotalPages = content.TotalPages(len(matched), q.Limit)
	}
	return res, nil
}

func validate(q content.Query) error {
	var err error
	q.Where.Walk(func(leaf *content.Where) {
		if _, ok := field(content.Document{}, leaf.Field); !ok && err == nil {
			err = fmt.Errorf("%w: %q", content.ErrUnknownField, leaf.Field)
		}
	})
	if err != nil {
		return err
	}
	if f := strings.TrimPrefix(q.Sort, "-"); f != "" && !sortable[f] {
		return fmt.Errorf("%w: sort %q", content.ErrUnknownField, q.Sort)
	}
	return nil
}

func field(d content.Document, name string) (string, bool) {
	switch name {
	case "id":
		return d.ID, true
	case "slug":
		return d.Slug, true
	case "title":
		return d.Title, true
	case "status":
		return string(d.Status), true
	case "meta.title":
		return d.Meta.Title, true
	case "meta.description":
		return d.Meta.Description, true
	}
	return "", false
}

func match(d content.Document, w *content.Where) bool {
	if w == nil {
		return true
	}
	if w.IsLeaf() {
		v, _ := field(d, w.Field)
		switch w.Op {
		case content.OpEquals:
			return v == w.Value
		case content.OpLike:
			fold := cases.Fold()
			return strings.Contains(fold.String(v), fold.String(w.Value))
		}
		return false
	}
	if len(w.Or) > 0 {
		for _, c := range w.Or {
			if match(d, c) {
				return true
			}
		}
		return false
	}
	for _, c := range w.And {
		if !match(d, c) {
			return false
		}
	}
	return true
}

var sortable = map[string]bool{"publishedAt": true, "updatedAt": true, "title": true, "slug": true}

func sortDocs(docs []content.Document, by string) {
	if by == "" {
		return
	}
	desc := strings.HasPrefix(by, "-")
	key := strings.TrimPrefix(by, "-")
	less := func(a, b content.Document) bool {
		switch key {
		case "publishedAt":
			return timeOf(a.PublishedAt).Before(timeOf(b.PublishedAt))
		case "updatedAt":
			return a.UpdatedAt.Before(b.UpdatedAt)
		case "title":
			return a.Title < b.Title
		default:
			return a.Slug < b.Slug
		}
	}
	sort.SliceStable(docs, func(i, j int) bool {
		if desc {
			return less(docs[j], docs[i])
		}
		return less(docs[i], docs[j])
	})
}

func timeOf(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// populate fills slug and title of references from published documents.
// Callers hold the read lock.
func (s *Store) populate(d content.Document) content.Document {
	if len(d.Related) == 0 {
		return d
	}
	related := make([]content.DocRef, 0, len(d.Related))
	for _, ref := range d.Related {
		if p, ok := s.published(ref.Collection, ref.ID); ok {
			ref.Slug, ref.Title = p.Slug, p.Title
			related = append(related, ref)
		}
	}
	d.Related = related
	return d
}

func (s *Store) published(c content.Collection, id string) (content.Document, bool) {
	for _, d := range s.docs {
		if d.Collection == c && d.ID == id && d.Published() {
			return d, true
		}
	}
	return content.Document{}, false
}

// FindGlobal implements content.GlobalFinder.
func (s *Store) FindGlobal(ctx context.Context, key string, depth int) (content.Global, error) {
	s.globalFinds.Add(1)
	if err := ctx.Err(); err != nil {
		return content.Global{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail != nil {
		return content.Global{}, s.fail
	}
	g, ok := s.globals[key]
	if !ok {
		return content.Global{}, content.ErrNotFound
	}
	items := make([]content.NavItem, len(g.NavItems))
	for i, item := range g.NavItems {
		if ref := item.Link.Reference; ref != nil {
			r := content.DocRef{Collection: ref.Collection, ID: ref.ID}
			if depth > 0 {
				if p, ok := s.published(ref.Collection, ref.ID); ok {
					r.Slug, r.Title = p.Slug, p.Title
				}
			}
			item.Link.Reference = &r
		}
		items[i] = item
	}
	g.NavItems = items
	return g, nil
}

// FindRedirect implements content.RedirectFinder.
func (s *Store) FindRedirect(ctx context.Context, from string) (content.Redirect, error) {
	s.redirectFinds.Add(1)
	if err := ctx.Err(); err != nil {
		return content.Redirect{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail != nil {
		return content.Redirect{}, s.fail
	}
	r, ok := s.redirects[content.NormalizePath(from)]
	if !ok {
		return content.Redirect{}, content.ErrNotFound
	}
	if ref := r.To.Reference; ref != nil && ref.Slug == "" {
		if p, ok := s.published(ref.Collection, ref.ID); ok {
			resolved := *ref
			resolved.Slug = p.Slug
			r.To.Reference = &resolved
		}
	}
	return r, nil
}

var _ content.Store = (*Store)(nil)

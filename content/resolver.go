package content

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/eringen/contentsite/metrics"
)

// Resolver maps URL slugs to exactly one document per collection.
type Resolver struct {
	store    Finder
	opts     Options
	sentinel Document
}

// NewResolver returns a Resolver over store. The sentinel for pages/home is
// HomeStatic.
func NewResolver(store Finder, opts Options) *Resolver {
	return &Resolver{store: store, opts: opts.withDefaults(), sentinel: HomeStatic}
}

type slugKey struct {
	collection Collection
	slug       string
	draft      bool
}

// Resolve returns the document of collection served at rawSlug.
//
// rawSlug is percent-decoded first; undecodable slugs are ErrNotFound. With
// draft set, draft revisions are eligible and access checks are overridden.
// Zero matches is ErrNotFound, except for pages/home which falls back to the
// sentinel page. Several published matches is a *ContractViolation. Lookups
// are memoized in the request cache carried by ctx.
func (r *Resolver) Resolve(ctx context.Context, collection Collection, rawSlug string, draft bool) (Document, error) {
	doc, err := r.resolve(ctx, collection, rawSlug, draft)
	r.opts.Recorder.IncResolve(string(collection), outcome(doc, err, r.sentinel.ID))
	return doc, err
}

func (r *Resolver) resolve(ctx context.Context, collection Collection, rawSlug string, draft bool) (Document, error) {
	if r.opts.Building {
		return Document{}, ErrStoreSkipped
	}
	slug, err := url.PathUnescape(rawSlug)
	if err != nil {
		return Document{}, ErrNotFound
	}
	doc, _, err := memoize(ctx, slugKey{collection, slug, draft}, func() (Document, error) {
		return r.lookup(ctx, collection, slug, draft)
	})
	return doc, err
}

func (r *Resolver) lookup(ctx context.Context, collection Collection, slug string, draft bool) (Document, error) {
	start := time.Now()
	res, err := r.store.Find(ctx, Query{
		Collection:     collection,
		Where:          Equals("slug", slug),
		Limit:          1,
		Page:           1,
		Draft:          draft,
		OverrideAccess: draft,
		Depth:          1,
		Pagination:     true,
	})
	r.opts.Recorder.ObserveStoreQuery(string(collection), time.Since(start), err)
	if err != nil {
		return Document{}, fmt.Errorf("content: find %s %q: %w", collection, slug, err)
	}

	matches := max(res.TotalDocs, len(res.Docs))
	if matches > 1 {
		if !draft {
			violation := &ContractViolation{Collection: collection, Slug: slug, Matches: matches}
			r.opts.Logger.Error("Slug uniqueness broken in store", "collection", collection, "slug", slug, "matches", matches)
			return Document{}, violation
		}
		r.opts.Logger.Warn("Several documents share a slug in draft mode, using the first",
			"collection", collection, "slug", slug, "matches", matches)
	}

	if len(res.Docs) == 0 {
		if collection == Pages && slug == HomeSlug {
			return r.sentinel, nil
		}
		return Document{}, ErrNotFound
	}
	return res.Docs[0], nil
}

func outcome(doc Document, err error, sentinelID string) string {
	switch {
	case err == nil && doc.ID == sentinelID:
		return metrics.OutcomeSentinel
	case err == nil:
		return metrics.OutcomeFound
	case errors.Is(err, ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, ErrStoreSkipped):
		return metrics.OutcomeSkipped
	case errors.Is(err, ErrContractViolation):
		return metrics.OutcomeViolation
	default:
		return metrics.OutcomeError
	}
}

// PageMeta is the title/description/image generated for a page head.
type PageMeta struct {
	Title       string
	Description string
	Path        string
	Image       *Image
	// Type is "article" for posts and "website" otherwise.
	Type string
}

// MetaFor derives head metadata from a resolved document.
func MetaFor(doc Document) PageMeta {
	title := doc.Meta.Title
	if title == "" {
		title = doc.Title
	}
	typ := "website"
	if doc.Collection == Posts {
		typ = "article"
	}
	return PageMeta{
		Title:       title,
		Description: doc.Meta.Description,
		Path:        doc.Path(),
		Image:       doc.Image(MetaImage, HeroImage),
		Type:        typ,
	}
}

// Metadata generates head metadata through the same resolution path as the
// render, so it observes the build short-circuit and draft visibility and
// shares the request memo. Missing or skipped documents yield empty metadata.
func (r *Resolver) Metadata(ctx context.Context, collection Collection, rawSlug string, draft bool) (PageMeta, error) {
	doc, err := r.resolve(ctx, collection, rawSlug, draft)
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrStoreSkipped):
		return PageMeta{}, nil
	case err != nil:
		return PageMeta{}, err
	}
	return MetaFor(doc), nil
}

package content_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/contentsite/content"
	"github.com/eringen/contentsite/memstore"
)

func published(c content.Collection, id, slug, title string) content.Document {
	return content.Document{ID: id, Collection: c, Slug: slug, Title: title, Status: content.StatusPublished}
}

func draft(c content.Collection, id, slug, title string) content.Document {
	d := published(c, id, slug, title)
	d.Status = content.StatusDraft
	return d
}

func requestCtx() context.Context {
	return content.WithRequestCache(context.Background(), content.NewRequestCache())
}

func TestResolvePublishedIgnoresDraft(t *testing.T) {
	store := memstore.New()
	store.Put(
		published(content.Posts, "p1", "intro", "Intro v1"),
		draft(content.Posts, "p1", "intro", "Intro v2"),
	)
	r := content.NewResolver(store, content.Options{})

	doc, err := r.Resolve(context.Background(), content.Posts, "intro", false)
	require.NoError(t, err)
	assert.Equal(t, "Intro v1", doc.Title)

	doc, err = r.Resolve(context.Background(), content.Posts, "intro", true)
	require.NoError(t, err)
	assert.Equal(t, "Intro v2", doc.Title)
}

func TestResolveDraftOnlyDocument(t *testing.T) {
	store := memstore.New()
	store.Put(draft(content.Pages, "a1", "about", "About draft"))
	r := content.NewResolver(store, content.Options{})

	_, err := r.Resolve(context.Background(), content.Pages, "about", false)
	assert.ErrorIs(t, err, content.ErrNotFound)

	doc, err := r.Resolve(context.Background(), content.Pages, "about", true)
	require.NoError(t, err)
	assert.Equal(t, "About draft", doc.Title)
}

func TestResolveMissing(t *testing.T) {
	r := content.NewResolver(memstore.New(), content.Options{})
	_, err := r.Resolve(context.Background(), content.Posts, "missing", false)
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestResolveHomeSentinel(t *testing.T) {
	store := memstore.New()
	r := content.NewResolver(store, content.Options{})

	doc, err := r.Resolve(context.Background(), content.Pages, content.HomeSlug, false)
	require.NoError(t, err)
	assert.Equal(t, content.HomeStatic.ID, doc.ID)

	store.Put(published(content.Pages, "h1", content.HomeSlug, "Stored home"))
	doc, err = r.Resolve(context.Background(), content.Pages, content.HomeSlug, false)
	require.NoError(t, err)
	assert.Equal(t, "Stored home", doc.Title)
}

func TestResolveHomeSentinelOnlyForPages(t *testing.T) {
	r := content.NewResolver(memstore.New(), content.Options{})
	_, err := r.Resolve(context.Background(), content.Posts, content.HomeSlug, false)
	assert.ErrorIs(t, err, content.ErrNotFound)
}

func TestResolveDecodesSlug(t *testing.T) {
	store := memstore.New()
	store.Put(published(content.Pages, "c1", "café menu", "Menu"))
	r := content.NewResolver(store, content.Options{})

	doc, err := r.Resolve(context.Background(), content.Pages, "caf%C3%A9%20menu", false)
	require.NoError(t, err)
	assert.Equal(t, "Menu", doc.Title)
}

func TestResolveUndecodableSlugIsNotFound(t *testing.T) {
	store := memstore.New()
	r := content.NewResolver(store, content.Options{})

	_, err := r.Resolve(context.Background(), content.Pages, "bad%zzslug", false)
	assert.ErrorIs(t, err, content.ErrNotFound)
	assert.Zero(t, store.Finds())
}

func TestResolveDuplicatePublishedSlugIsContractViolation(t *testing.T) {
	store := memstore.New()
	store.Put(
		published(content.Posts, "p1", "dup", "One"),
		published(content.Posts, "p2", "dup", "Two"),
	)
	r := content.NewResolver(store, content.Options{})

	_, err := r.Resolve(context.Background(), content.Posts, "dup", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, content.ErrContractViolation)
	var cv *content.ContractViolation
	require.True(t, errors.As(err, &cv))
	assert.Equal(t, 2, cv.Matches)
	assert.Equal(t, "dup", cv.Slug)
}

func TestResolveDuplicateDraftSlugUsesFirst(t *testing.T) {
	store := memstore.New()
	store.Put(
		draft(content.Posts, "p1", "dup", "One"),
		draft(content.Posts, "p2", "dup", "Two"),
	)
	r := content.NewResolver(store, content.Options{})

	doc, err := r.Resolve(context.Background(), content.Posts, "dup", true)
	require.NoError(t, err)
	assert.Equal(t, "One", doc.Title)
}

func TestResolveBuildingSkipsStore(t *testing.T) {
	store := memstore.New()
	store.Put(published(content.Pages, "a1", "about", "About"))
	r := content.NewResolver(store, content.Options{Building: true})

	_, err := r.Resolve(context.Background(), content.Pages, "about", false)
	assert.ErrorIs(t, err, content.ErrStoreSkipped)
	_, err = r.Resolve(context.Background(), content.Pages, content.HomeSlug, false)
	assert.ErrorIs(t, err, content.ErrStoreSkipped)
	assert.Zero(t, store.Finds())
}

func TestResolveStoreFailureIsWrapped(t *testing.T) {
	store := memstore.New()
	boom := errors.New("connection refused")
	store.FailWith(boom)
	r := content.NewResolver(store, content.Options{})

	_, err := r.Resolve(context.Background(), content.Pages, "about", false)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, content.ErrNotFound)
}

func TestResolveMemoizedPerRequest(t *testing.T) {
	store := memstore.New()
	store.Put(published(content.Posts, "p1", "intro", "Intro"))
	r := content.NewResolver(store, content.Options{})

	ctx := requestCtx()
	for range 3 {
		_, err := r.Resolve(ctx, content.Posts, "intro", false)
		require.NoError(t, err)
	}
	meta, err := r.Metadata(ctx, content.Posts, "intro", false)
	require.NoError(t, err)
	assert.Equal(t, "Intro", meta.Title)
	assert.Equal(t, 1, store.Finds())

	// draft is part of the key
	_, err = r.Resolve(ctx, content.Posts, "intro", true)
	require.NoError(t, err)
	assert.Equal(t, 2, store.Finds())

	// a new request queries again
	_, err = r.Resolve(requestCtx(), content.Posts, "intro", false)
	require.NoError(t, err)
	assert.Equal(t, 3, store.Finds())
}

func TestResolveWithoutRequestCacheQueriesEachTime(t *testing.T) {
	store := memstore.New()
	store.Put(published(content.Posts, "p1", "intro", "Intro"))
	r := content.NewResolver(store, content.Options{})

	for range 2 {
		_, err := r.Resolve(context.Background(), content.Posts, "intro", false)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, store.Finds())
}

func TestMetadata(t *testing.T) {
	store := memstore.New()
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	post := published(content.Posts, "p1", "intro", "Intro")
	post.PublishedAt = &at
	post.Meta = content.Meta{Description: "First post", Image: &content.Image{URL: "/media/intro.jpg"}}
	store.Put(post)
	r := content.NewResolver(store, content.Options{})

	meta, err := r.Metadata(context.Background(), content.Posts, "intro", false)
	require.NoError(t, err)
	assert.Equal(t, content.PageMeta{
		Title:       "Intro",
		Description: "First post",
		Path:        "/posts/intro",
		Image:       &content.Image{URL: "/media/intro.jpg"},
		Type:        "article",
	}, meta)

	meta, err = r.Metadata(context.Background(), content.Posts, "missing", false)
	require.NoError(t, err)
	assert.Equal(t, content.PageMeta{}, meta)
}

func TestMetadataPrefersMetaTitle(t *testing.T) {
	doc := published(content.Pages, "a1", "about", "About")
	doc.Meta.Title = "About us"
	assert.Equal(t, "About us", content.MetaFor(doc).Title)
	assert.Equal(t, "website", content.MetaFor(doc).Type)
	assert.Equal(t, "/about", content.MetaFor(doc).Path)
}

package content_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/contentsite/content"
	"github.com/eringen/contentsite/memstore"
)

func TestEnumerateSlugsExcludesHomeAndDrafts(t *testing.T) {
	store := memstore.New()
	store.Put(
		published(content.Pages, "h", content.HomeSlug, "Home"),
		published(content.Pages, "a", "about", "About"),
		published(content.Pages, "c", "contact", "Contact"),
		draft(content.Pages, "d", "secret", "Secret"),
	)
	e := content.NewEnumerator(store, content.Options{})

	slugs, err := e.EnumerateSlugs(context.Background(), content.Pages)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"about", "contact"}, slugs)
}

func TestEnumerateSlugsKeepsHomeOutsidePages(t *testing.T) {
	store := memstore.New()
	store.Put(published(content.Posts, "p", content.HomeSlug, "A post called home"))
	e := content.NewEnumerator(store, content.Options{})

	slugs, err := e.EnumerateSlugs(context.Background(), content.Posts)
	require.NoError(t, err)
	assert.Equal(t, []string{content.HomeSlug}, slugs)
}

func TestEnumerateSlugsIsUnbounded(t *testing.T) {
	store := memstore.New()
	for i := range 40 {
		store.Put(published(content.Posts, fmt.Sprintf("p%d", i), fmt.Sprintf("post-%d", i), "T"))
	}
	e := content.NewEnumerator(store, content.Options{})

	slugs, err := e.EnumerateSlugs(context.Background(), content.Posts)
	require.NoError(t, err)
	assert.Len(t, slugs, 40)
}

func TestEnumerateSlugsBuilding(t *testing.T) {
	store := memstore.New()
	store.Put(published(content.Pages, "a", "about", "About"))
	e := content.NewEnumerator(store, content.Options{Building: true})

	slugs, err := e.EnumerateSlugs(context.Background(), content.Pages)
	require.NoError(t, err)
	assert.Empty(t, slugs)
	assert.Zero(t, store.Finds())
}

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

func TestBuildFilterEmpty(t *testing.T) {
	assert.Nil(t, content.BuildFilter(""))
	assert.Nil(t, content.BuildFilter("   \t"))
}

func TestBuildFilterShape(t *testing.T) {
	w := content.BuildFilter(" foo ")
	require.NotNil(t, w)
	require.Len(t, w.Or, len(content.SearchFields))
	var fields []string
	w.Walk(func(leaf *content.Where) {
		assert.Equal(t, content.OpLike, leaf.Op)
		assert.Equal(t, "foo", leaf.Value)
		fields = append(fields, leaf.Field)
	})
	assert.Equal(t, content.SearchFields, fields)
}

func searchStore(t *testing.T) *memstore.Store {
	t.Helper()
	store := memstore.New()
	intro := published(content.Posts, "p1", "intro", "Hello World")
	notes := published(content.Posts, "p2", "release-notes", "Release notes")
	notes.Meta.Description = "What is new in FOOBAR"
	other := published(content.Posts, "p3", "other", "Other")
	hidden := draft(content.Posts, "p4", "foo-draft", "Foo draft")
	store.Put(intro, notes, other, hidden)
	return store
}

func TestSearchCaseInsensitiveSubstring(t *testing.T) {
	s := content.NewSearcher(searchStore(t), content.Options{})

	res, err := s.Search(context.Background(), "foo")
	require.NoError(t, err)
	require.Len(t, res.Docs, 1)
	assert.Equal(t, "release-notes", res.Docs[0].Slug)
	assert.Equal(t, "/posts/release-notes", res.Docs[0].Path())

	res, err = s.Search(context.Background(), "WORLD")
	require.NoError(t, err)
	require.Len(t, res.Docs, 1)
	assert.Equal(t, "intro", res.Docs[0].Slug)
}

func TestSearchEmptyMatchesAll(t *testing.T) {
	s := content.NewSearcher(searchStore(t), content.Options{})

	res, err := s.Search(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, res.Docs, 3)
	assert.Equal(t, 3, res.TotalDocs)
}

func TestSearchLimit(t *testing.T) {
	store := memstore.New()
	for i := range 20 {
		store.Put(published(content.Posts, fmt.Sprintf("p%d", i), fmt.Sprintf("match-%d", i), "Match"))
	}
	s := content.NewSearcher(store, content.Options{})

	res, err := s.Search(context.Background(), "match")
	require.NoError(t, err)
	assert.Len(t, res.Docs, content.SearchLimit)
}

func TestSearchBuilding(t *testing.T) {
	store := searchStore(t)
	s := content.NewSearcher(store, content.Options{Building: true})
	_, err := s.Search(context.Background(), "foo")
	assert.ErrorIs(t, err, content.ErrStoreSkipped)
	assert.Zero(t, store.Finds())
}

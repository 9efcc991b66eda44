package content_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/contentsite/content"
	"github.com/eringen/contentsite/memstore"
)

func TestFindRedirectPreservesType(t *testing.T) {
	store := memstore.New()
	store.Put(published(content.Pages, "a", "about", "About"))
	store.PutRedirect(content.Redirect{
		From: "/old",
		To:   content.RedirectTarget{Reference: &content.DocRef{Collection: content.Pages, ID: "a"}},
		Type: content.RedirectTemporary,
	})
	r := content.NewRedirects(content.Options{}, store)

	red, ok, err := r.FindRedirect(context.Background(), "/old/")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/about", red.Location())
	assert.Equal(t, http.StatusFound, red.StatusCode())
}

func TestFindRedirectMissing(t *testing.T) {
	r := content.NewRedirects(content.Options{}, memstore.New())
	_, ok, err := r.FindRedirect(context.Background(), "/missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindRedirectSourceOrder(t *testing.T) {
	store := memstore.New()
	store.PutRedirect(content.Redirect{From: "/a", To: content.RedirectTarget{URL: "/from-store"}})
	table := loadTable(t, `
redirects:
  - from: /a
    to: {url: /from-file}
  - from: /b/
    to: {url: https://example.com/b}
    type: "308"
`)
	r := content.NewRedirects(content.Options{}, store, table)

	red, ok, err := r.FindRedirect(context.Background(), "/a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "/from-store", red.Location())

	red, ok, err = r.FindRedirect(context.Background(), "/b")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/b", red.Location())
	assert.Equal(t, http.StatusPermanentRedirect, red.StatusCode())
}

func TestFindRedirectSkipsEmptyDestination(t *testing.T) {
	store := memstore.New()
	store.PutRedirect(content.Redirect{From: "/dangling", To: content.RedirectTarget{
		Reference: &content.DocRef{Collection: content.Posts, ID: "gone"},
	}})
	r := content.NewRedirects(content.Options{}, store)

	_, ok, err := r.FindRedirect(context.Background(), "/dangling")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindRedirectStoreFailure(t *testing.T) {
	store := memstore.New()
	store.FailWith(errors.New("down"))
	r := content.NewRedirects(content.Options{}, store)

	_, ok, err := r.FindRedirect(context.Background(), "/x")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestFindRedirectBuilding(t *testing.T) {
	store := memstore.New()
	store.PutRedirect(content.Redirect{From: "/a", To: content.RedirectTarget{URL: "/b"}})
	r := content.NewRedirects(content.Options{Building: true}, store)

	_, ok, err := r.FindRedirect(context.Background(), "/a")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, store.RedirectFinds())
}

func TestRedirectStatusCodes(t *testing.T) {
	cases := map[content.RedirectType]int{
		"":                        http.StatusMovedPermanently,
		content.RedirectPermanent: http.StatusMovedPermanently,
		content.RedirectTemporary: http.StatusFound,
		"301":                     http.StatusMovedPermanently,
		"302":                     http.StatusFound,
		"307":                     http.StatusTemporaryRedirect,
		"308":                     http.StatusPermanentRedirect,
	}
	for typ, want := range cases {
		assert.Equal(t, want, content.Redirect{Type: typ}.StatusCode(), "type %q", typ)
	}
}

func TestRedirectLocation(t *testing.T) {
	home := content.Redirect{To: content.RedirectTarget{Reference: &content.DocRef{Collection: content.Pages, Slug: content.HomeSlug}}}
	assert.Equal(t, "/", home.Location())

	post := content.Redirect{To: content.RedirectTarget{Reference: &content.DocRef{Collection: content.Posts, Slug: "intro"}}}
	assert.Equal(t, "/posts/intro", post.Location())

	fallback := content.Redirect{To: content.RedirectTarget{
		Reference: &content.DocRef{Collection: content.Posts, ID: "x"},
		URL:       "/posts/",
	}}
	assert.Equal(t, "/posts/", fallback.Location())
}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"":         "/",
		"/":        "/",
		"//":       "/",
		"old":      "/old",
		"/old/":    "/old",
		"/a/b///":  "/a/b",
		"/posts/x": "/posts/x",
	}
	for in, want := range cases {
		assert.Equal(t, want, content.NormalizePath(in), "input %q", in)
	}
}

func loadTable(t *testing.T, body string) *content.RedirectTable {
	t.Helper()
	path := filepath.Join(t.TempDir(), "redirects.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	table, err := content.LoadRedirectTable(path)
	require.NoError(t, err)
	return table
}

func TestLoadRedirectTableMissingFile(t *testing.T) {
	table, err := content.LoadRedirectTable(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Zero(t, table.Len())
}

func TestParseRedirects(t *testing.T) {
	entries, err := content.ParseRedirects([]byte(`
redirects:
  - from: old-about/
    to:
      reference: {relationTo: pages, id: a1, slug: about}
`))
	require.NoError(t, err)
	red, ok := entries["/old-about"]
	require.True(t, ok)
	assert.Equal(t, content.RedirectPermanent, red.Type)
	assert.Equal(t, "/about", red.Location())

	_, err = content.ParseRedirects([]byte("redirects:\n  - to: {url: /x}\n"))
	assert.Error(t, err)

	_, err = content.ParseRedirects([]byte("redirects: [: bad"))
	assert.Error(t, err)
}

func TestRedirectTableWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "redirects.yaml")
	require.NoError(t, os.WriteFile(path, []byte("redirects: []\n"), 0o644))
	table, err := content.LoadRedirectTable(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, table.Watch(ctx, slog.New(slog.DiscardHandler)))

	require.NoError(t, os.WriteFile(path, []byte("redirects:\n  - from: /a\n    to: {url: /b}\n"), 0o644))
	require.Eventually(t, func() bool { return table.Len() == 1 }, 2*time.Second, 20*time.Millisecond)

	// a broken edit keeps the previous table
	require.NoError(t, os.WriteFile(path, []byte("redirects: [: bad"), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, table.Len())
}

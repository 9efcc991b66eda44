package content_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/contentsite/content"
)

const sampleBundle = `
documents:
  - id: home
    collection: pages
    slug: home
    title: Welcome
    hero: {type: highImpact, richText: "# Hello"}
  - collection: posts
    slug: intro
    title: Intro
    publishedAt: 2024-05-01T10:00:00Z
    meta: {description: First post, image: {url: /media/intro.jpg, alt: Intro}}
    categories: [news]
  - collection: posts
    slug: intro
    title: Intro (draft)
    status: draft
globals:
  - key: header
    navItems:
      - link: {type: custom, url: /posts/, label: Posts}
redirects:
  - from: /old-intro
    to: {url: /posts/intro}
`

func TestParseBundle(t *testing.T) {
	b, err := content.ParseBundle([]byte(sampleBundle))
	require.NoError(t, err)
	require.Len(t, b.Documents, 3)
	assert.Equal(t, content.Pages, b.Documents[0].Collection)
	require.NotNil(t, b.Documents[1].PublishedAt)
	assert.True(t, b.Documents[1].PublishedAt.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Intro", b.Documents[1].Image(content.CardImageOrder...).AltOr(""))
	assert.Equal(t, content.StatusDraft, b.Documents[2].Status)
	assert.Equal(t, "home", b.Documents[0].ID)
	assert.Equal(t, content.DocumentID(content.Posts, "intro"), b.Documents[1].ID)
	assert.Equal(t, b.Documents[1].ID, b.Documents[2].ID, "draft and published revisions share an ID")
	assert.Equal(t, "/posts/", b.Globals[0].NavItems[0].Link.Href())
	assert.Equal(t, []string{"pages", "posts", "global_header", "redirects"}, b.Tags())
}

func TestParseBundleRejects(t *testing.T) {
	for name, body := range map[string]string{
		"collection": "documents:\n  - {collection: search, slug: x}\n",
		"slug":       "documents:\n  - {collection: pages}\n",
		"global":     "globals:\n  - {version: 2}\n",
		"redirect":   "redirects:\n  - {to: {url: /x}}\n",
		"syntax":     "documents: [",
	} {
		_, err := content.ParseBundle([]byte(body))
		assert.Error(t, err, name)
	}
}

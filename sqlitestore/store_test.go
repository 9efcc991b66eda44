package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/eringen/contentsite/content"
)

func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "test_site.db")

	s, err := New(path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	cleanup := func() {
		s.Close()
	}

	return s, cleanup
}

func mustSave(t *testing.T, s *Store, doc content.Document) content.Document {
	t.Helper()
	saved, err := s.SaveDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("SaveDocument(%s) failed: %v", doc.Slug, err)
	}
	return saved
}

func TestNewStore(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	if s == nil {
		t.Fatal("store should not be nil")
	}
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
	// migrations are idempotent
	if err := s.ensureSchema(); err != nil {
		t.Fatalf("ensureSchema twice failed: %v", err)
	}
}

func TestSaveAndFindDocument(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	at := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	saved := mustSave(t, s, content.Document{
		Collection:  content.Posts,
		Slug:        "test-post",
		Title:       "Test Post",
		PublishedAt: &at,
		Meta:        content.Meta{Description: "A test post summary"},
		Content:     "# Test Content\n\nThis is test content.",
		Categories:  []string{"go", "testing"},
	})
	if saved.ID == "" {
		t.Fatal("SaveDocument should assign an id")
	}
	if saved.Status != content.StatusPublished {
		t.Errorf("Status = %q, want published", saved.Status)
	}

	res, err := s.Find(context.Background(), content.Query{
		Collection: content.Posts,
		Where:      content.Equals("slug", "test-post"),
		Limit:      1,
		Pagination: true,
	})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if res.TotalDocs != 1 || len(res.Docs) != 1 {
		t.Fatalf("TotalDocs = %d, docs = %d, want 1 and 1", res.TotalDocs, len(res.Docs))
	}
	got := res.Docs[0]
	if got.ID != saved.ID {
		t.Errorf("ID = %q, want %q", got.ID, saved.ID)
	}
	if got.Title != "Test Post" {
		t.Errorf("Title = %q, want %q", got.Title, "Test Post")
	}
	if got.Content != saved.Content {
		t.Errorf("Content = %q, want %q", got.Content, saved.Content)
	}
	if got.PublishedAt == nil || !got.PublishedAt.Equal(at) {
		t.Errorf("PublishedAt = %v, want %v", got.PublishedAt, at)
	}
	if len(got.Categories) != 2 || got.Categories[0] != "go" {
		t.Errorf("Categories = %v, want [go testing]", got.Categories)
	}
}

func TestSaveDocumentUpdate(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	doc := mustSave(t, s, content.Document{Collection: content.Pages, Slug: "about", Title: "Original Title"})
	doc.Title = "Updated Title"
	mustSave(t, s, doc)

	res, err := s.Find(context.Background(), content.Query{Collection: content.Pages, Pagination: true})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if res.TotalDocs != 1 {
		t.Fatalf("TotalDocs = %d, want 1", res.TotalDocs)
	}
	if res.Docs[0].Title != "Updated Title" {
		t.Errorf("Title = %q, want %q", res.Docs[0].Title, "Updated Title")
	}
}

func TestDraftVisibility(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	pub := mustSave(t, s, content.Document{Collection: content.Posts, Slug: "intro", Title: "Intro v1"})
	drf := pub
	drf.Status = content.StatusDraft
	drf.Title = "Intro v2"
	mustSave(t, s, drf)
	mustSave(t, s, content.Document{Collection: content.Posts, Slug: "wip", Title: "WIP", Status: content.StatusDraft})

	live, err := s.Find(context.Background(), content.Query{Collection: content.Posts, Pagination: true})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if live.TotalDocs != 1 || live.Docs[0].Title != "Intro v1" {
		t.Errorf("published view = %+v, want only Intro v1", live.Docs)
	}

	// draft without override access is still the published view
	noOverride, err := s.Find(context.Background(), content.Query{Collection: content.Posts, Draft: true, Pagination: true})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if noOverride.TotalDocs != 1 {
		t.Errorf("TotalDocs without override = %d, want 1", noOverride.TotalDocs)
	}

	preview, err := s.Find(context.Background(), content.Query{
		Collection: content.Posts, Draft: true, OverrideAccess: true, Pagination: true, Sort: "title",
	})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if preview.TotalDocs != 2 {
		t.Fatalf("TotalDocs in preview = %d, want 2", preview.TotalDocs)
	}
	if preview.Docs[0].Title != "Intro v2" || preview.Docs[1].Title != "WIP" {
		t.Errorf("preview titles = %q, %q", preview.Docs[0].Title, preview.Docs[1].Title)
	}
}

func TestSearchEntryMaintained(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	post := mustSave(t, s, content.Document{Collection: content.Posts, Slug: "release", Title: "Release 100% done",
		Meta: content.Meta{Description: "Big_news"}})
	mustSave(t, s, content.Document{Collection: content.Posts, Slug: "draft-only", Title: "Release draft", Status: content.StatusDraft})
	mustSave(t, s, content.Document{Collection: content.Pages, Slug: "release-page", Title: "Release page"})

	res, err := s.Find(context.Background(), content.Query{Collection: content.Search, Where: content.BuildFilter("RELEASE")})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(res.Docs) != 1 {
		t.Fatalf("search docs = %d, want 1", len(res.Docs))
	}
	if res.Docs[0].Doc == nil || res.Docs[0].Doc.ID != post.ID {
		t.Errorf("search entry doc = %+v, want ref to %s", res.Docs[0].Doc, post.ID)
	}
	if res.Docs[0].Path() != "/posts/release" {
		t.Errorf("Path = %q, want /posts/release", res.Docs[0].Path())
	}

	// wildcards in the query match literally
	for query, want := range map[string]int{"100%": 1, "0% d": 1, "%": 1, "big_": 1, "big%": 0, "g_n": 1, "x_": 0} {
		res, err := s.Find(context.Background(), content.Query{Collection: content.Search, Where: content.BuildFilter(query)})
		if err != nil {
			t.Fatalf("Find(%q) failed: %v", query, err)
		}
		if len(res.Docs) != want {
			t.Errorf("search %q = %d docs, want %d", query, len(res.Docs), want)
		}
	}

	if err := s.DeleteDocument(context.Background(), post.ID); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
	res, err = s.Find(context.Background(), content.Query{Collection: content.Search})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(res.Docs) != 0 {
		t.Errorf("search docs after delete = %d, want 0", len(res.Docs))
	}
}

func TestSearchFoldsUnicodeCase(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	mustSave(t, s, content.Document{Collection: content.Posts, Slug: "go-intro", Title: "Über Go"})
	mustSave(t, s, content.Document{Collection: content.Posts, Slug: "strasse", Title: "Notes",
		Meta: content.Meta{Description: "Die STRASSE"}})
	mustSave(t, s, content.Document{Collection: content.Posts, Slug: "plain", Title: "Plain"})

	for query, want := range map[string]int{"über": 1, "ÜBER GO": 1, "straße": 1, "Straße": 1, "uber": 0} {
		res, err := s.Find(context.Background(), content.Query{Collection: content.Search, Where: content.BuildFilter(query)})
		if err != nil {
			t.Fatalf("Find(%q) failed: %v", query, err)
		}
		if len(res.Docs) != want {
			t.Errorf("search %q = %d docs, want %d", query, len(res.Docs), want)
		}
	}
}

func TestMigrateFoldsBackfillsExistingRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_, err = db.Exec(`
CREATE TABLE documents (
    id TEXT NOT NULL,
    status TEXT NOT NULL,
    collection TEXT NOT NULL,
    slug TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    meta_title TEXT NOT NULL DEFAULT '',
    meta_description TEXT NOT NULL DEFAULT '',
    published_at TEXT,
    updated_at TEXT NOT NULL,
    data TEXT NOT NULL,
    PRIMARY KEY (id, status)
);
INSERT INTO documents (id, status, collection, slug, title, updated_at, data)
VALUES ('p1', 'published', 'posts', 'uber-go', 'Über Go', '2024-01-01T00:00:00.000000000Z',
    '{"id":"p1","collection":"posts","slug":"uber-go","title":"Über Go","status":"published"}');`)
	if err != nil {
		t.Fatalf("create old schema: %v", err)
	}
	db.Close()

	s, err := New(path)
	if err != nil {
		t.Fatalf("New on old schema failed: %v", err)
	}
	defer s.Close()

	res, err := s.Find(context.Background(), content.Query{Collection: content.Posts, Where: content.BuildFilter("über")})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(res.Docs) != 1 || res.Docs[0].ID != "p1" {
		t.Fatalf("expected backfilled row to match, got %+v", res.Docs)
	}
}

func TestPaginationAndSort(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 20 {
		at := base.Add(time.Duration(i) * time.Minute)
		mustSave(t, s, content.Document{Collection: content.Posts, Slug: fmt.Sprintf("post-%02d", i), Title: "Post", PublishedAt: &at})
	}

	q := content.Query{Collection: content.Posts, Limit: 12, Page: 2, Sort: "-publishedAt", Pagination: true, Select: []string{"slug"}}
	res, err := s.Find(context.Background(), q)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if res.TotalDocs != 20 || res.TotalPages != 2 || res.Page != 2 {
		t.Errorf("totals = %d docs, %d pages, page %d", res.TotalDocs, res.TotalPages, res.Page)
	}
	if len(res.Docs) != 8 {
		t.Fatalf("docs = %d, want 8", len(res.Docs))
	}
	if res.Docs[0].Slug != "post-07" || res.Docs[7].Slug != "post-00" {
		t.Errorf("page 2 = %s .. %s, want post-07 .. post-00", res.Docs[0].Slug, res.Docs[7].Slug)
	}
	if res.Docs[0].Title != "" {
		t.Errorf("Title = %q, want projected away", res.Docs[0].Title)
	}

	q.Page = 3
	res, err = s.Find(context.Background(), q)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(res.Docs) != 0 || res.TotalDocs != 20 {
		t.Errorf("page 3 = %d docs of %d, want 0 of 20", len(res.Docs), res.TotalDocs)
	}

	all, err := s.Find(context.Background(), content.Query{Collection: content.Posts, Select: []string{"slug"}})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(all.Docs) != 20 {
		t.Errorf("unbounded find = %d docs, want 20", len(all.Docs))
	}
}

func TestUnknownField(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.Find(context.Background(), content.Query{Collection: content.Posts, Where: content.Equals("body; DROP TABLE documents", "x")})
	if !errors.Is(err, content.ErrUnknownField) {
		t.Errorf("err = %v, want ErrUnknownField", err)
	}
	_, err = s.Find(context.Background(), content.Query{Collection: content.Posts, Sort: "-rowid"})
	if !errors.Is(err, content.ErrUnknownField) {
		t.Errorf("err = %v, want ErrUnknownField", err)
	}
}

func TestDepthResolvesRelated(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	two := mustSave(t, s, content.Document{Collection: content.Posts, Slug: "two", Title: "Two"})
	mustSave(t, s, content.Document{Collection: content.Posts, Slug: "one", Title: "One",
		Related: []content.DocRef{{Collection: content.Posts, ID: two.ID}, {Collection: content.Posts, ID: "missing"}}})

	res, err := s.Find(context.Background(), content.Query{Collection: content.Posts, Where: content.Equals("slug", "one"), Depth: 1})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	related := res.Docs[0].Related
	if len(related) != 1 || related[0].Slug != "two" || related[0].Title != "Two" {
		t.Errorf("Related = %+v, want resolved ref to two", related)
	}
}

func TestGlobals(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := s.FindGlobal(ctx, "header", 1); !errors.Is(err, content.ErrNotFound) {
		t.Fatalf("FindGlobal on empty store = %v, want ErrNotFound", err)
	}

	about := mustSave(t, s, content.Document{Collection: content.Pages, Slug: "about", Title: "About"})
	g, err := s.SaveGlobal(ctx, content.Global{Key: "header", NavItems: []content.NavItem{
		{Link: content.Link{Type: content.LinkReference, Label: "About", Reference: &content.DocRef{Collection: content.Pages, ID: about.ID}}},
	}})
	if err != nil {
		t.Fatalf("SaveGlobal failed: %v", err)
	}
	if g.Version != 1 {
		t.Errorf("Version = %d, want 1", g.Version)
	}
	g, err = s.SaveGlobal(ctx, g)
	if err != nil {
		t.Fatalf("SaveGlobal failed: %v", err)
	}
	if g.Version != 2 {
		t.Errorf("Version = %d, want 2", g.Version)
	}

	got, err := s.FindGlobal(ctx, "header", 1)
	if err != nil {
		t.Fatalf("FindGlobal failed: %v", err)
	}
	if got.Version != 2 {
		t.Errorf("Version = %d, want 2", got.Version)
	}
	if href := got.NavItems[0].Link.Href(); href != "/about" {
		t.Errorf("Href = %q, want /about", href)
	}

	shallow, err := s.FindGlobal(ctx, "header", 0)
	if err != nil {
		t.Fatalf("FindGlobal failed: %v", err)
	}
	if shallow.NavItems[0].Link.Reference.Slug != "" {
		t.Errorf("depth 0 reference slug = %q, want empty", shallow.NavItems[0].Link.Reference.Slug)
	}
}

func TestRedirects(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	post := mustSave(t, s, content.Document{Collection: content.Posts, Slug: "new-home", Title: "New"})
	if err := s.SaveRedirect(ctx, content.Redirect{
		From: "old-post/",
		To:   content.RedirectTarget{Reference: &content.DocRef{Collection: content.Posts, ID: post.ID}},
		Type: content.RedirectTemporary,
	}); err != nil {
		t.Fatalf("SaveRedirect failed: %v", err)
	}

	r, err := s.FindRedirect(ctx, "/old-post")
	if err != nil {
		t.Fatalf("FindRedirect failed: %v", err)
	}
	if r.Location() != "/posts/new-home" {
		t.Errorf("Location = %q, want /posts/new-home", r.Location())
	}
	if r.Type != content.RedirectTemporary {
		t.Errorf("Type = %q, want temporary", r.Type)
	}

	if _, err := s.FindRedirect(ctx, "/nowhere"); !errors.Is(err, content.ErrNotFound) {
		t.Errorf("FindRedirect missing = %v, want ErrNotFound", err)
	}
}

func TestCounts(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	mustSave(t, s, content.Document{Collection: content.Posts, Slug: "a", Title: "A"})
	mustSave(t, s, content.Document{Collection: content.Pages, Slug: "b", Title: "B"})

	counts, err := s.Counts(context.Background())
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if counts[content.Posts] != 1 || counts[content.Pages] != 1 || counts[content.Search] != 1 {
		t.Errorf("Counts = %v", counts)
	}
}

func TestEscapeLike(t *testing.T) {
	cases := map[string]string{
		"plain": "plain",
		"50%":   `50\%`,
		"a_b":   `a\_b`,
		`back\`: `back\\`,
		`%_\`:   `\%\_\\`,
	}
	for in, want := range cases {
		if got := escapeLike(in); got != want {
			t.Errorf("escapeLike(%q) = %q, want %q", in, got, want)
		}
	}
}

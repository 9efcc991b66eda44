package contentsite

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eringen/contentsite/content"
)

func TestExportWritesPublishedSite(t *testing.T) {
	app, store, cleanup := setupTestApp(t, testConfig(t))
	defer cleanup()
	seedSite(store)
	out := t.TempDir()

	report, err := app.Export(context.Background(), out)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if len(report.Failed) != 0 {
		t.Fatalf("unexpected failures: %v", report.Failed)
	}

	for _, rel := range []string{
		"index.html",
		"about/index.html",
		"posts/index.html",
		"posts/first-post/index.html",
		"posts/second-post/index.html",
		"search/index.html",
		"sitemap.xml",
		"feed.xml",
		"robots.txt",
	} {
		if _, err := os.Stat(filepath.Join(out, rel)); err != nil {
			t.Errorf("expected %s to be written: %v", rel, err)
		}
	}
	for _, rel := range []string{"home/index.html", "secret/index.html"} {
		if _, err := os.Stat(filepath.Join(out, rel)); err == nil {
			t.Errorf("%s must not be exported", rel)
		}
	}

	data, err := os.ReadFile(filepath.Join(out, "about", "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "About Us") || strings.Contains(string(data), "About Us Draft") {
		t.Fatalf("expected published about page, got %s", data)
	}
}

func TestExportIsolatesFailures(t *testing.T) {
	app, store, cleanup := setupTestApp(t, testConfig(t))
	defer cleanup()
	seedSite(store)
	store.Put(
		content.Document{ID: "dup-a", Collection: content.Posts, Slug: "dup", Title: "Dup A", Status: content.StatusPublished},
		content.Document{ID: "dup-b", Collection: content.Posts, Slug: "dup", Title: "Dup B", Status: content.StatusPublished},
	)
	out := t.TempDir()

	report, err := app.Export(context.Background(), out)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if _, ok := report.Failed["/posts/dup/"]; !ok {
		t.Fatalf("expected /posts/dup/ to fail, got %v", report.Failed)
	}
	if _, err := os.Stat(filepath.Join(out, "posts", "first-post", "index.html")); err != nil {
		t.Fatalf("other pages must still be written: %v", err)
	}
}

func TestExportWhileBuildingSkipsContent(t *testing.T) {
	cfg := testConfig(t)
	cfg.Building = true
	app, store, cleanup := setupTestApp(t, cfg)
	defer cleanup()
	seedSite(store)

	report, err := app.Export(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if len(report.Failed) != 0 {
		t.Fatalf("unexpected failures: %v", report.Failed)
	}
	for _, p := range []string{"/", "/posts/", "/search/"} {
		found := false
		for _, s := range report.Skipped {
			if s == p {
				found = true
			}
		}
		if !found {
			t.Errorf("expected %s to be skipped, got %v", p, report.Skipped)
		}
	}
}

func TestExportFile(t *testing.T) {
	cases := map[string]string{
		"/":             filepath.Join("out", "index.html"),
		"/posts/":       filepath.Join("out", "posts", "index.html"),
		"/caf%C3%A9/":   filepath.Join("out", "café", "index.html"),
		"/sitemap.xml":  filepath.Join("out", "sitemap.xml"),
		"/posts/a-b-c/": filepath.Join("out", "posts", "a-b-c", "index.html"),
	}
	for in, want := range cases {
		got, err := exportFile("out", in)
		if err != nil {
			t.Errorf("exportFile(%q) failed: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("exportFile(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := exportFile("out", "/%2E%2E/etc/"); err == nil {
		t.Errorf("expected traversal to be rejected")
	}
}

package contentsite

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/eringen/contentsite/content"
)

const exportConcurrency = 8

// ExportReport summarizes a static export. A failing path never aborts the
// others; it is listed in Failed.
type ExportReport struct {
	Written []string
	Skipped []string
	Failed  map[string]error
}

// Export renders every statically known route through the HTTP stack and
// writes it under outDir. Slugs come from the Enumerator, so drafts and the
// home page's slug are never exported as separate files.
func (a *App) Export(ctx context.Context, outDir string) (ExportReport, error) {
	if err := a.Init(); err != nil {
		return ExportReport{}, err
	}
	paths, err := a.exportPaths(ctx)
	if err != nil {
		return ExportReport{}, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return ExportReport{}, fmt.Errorf("contentsite: create export dir: %w", err)
	}

	var (
		mu     sync.Mutex
		report = ExportReport{Failed: make(map[string]error)}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(exportConcurrency)
	for _, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			written, err := a.exportPath(gctx, outDir, p)
			a.Metrics.IncExportPage(err == nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				report.Failed[p] = err
				a.Logger.Warn("Export failed", "path", p, "error", err)
			case written:
				report.Written = append(report.Written, p)
			default:
				report.Skipped = append(report.Skipped, p)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	sort.Strings(report.Written)
	sort.Strings(report.Skipped)
	a.Logger.Info("Export finished",
		"dir", outDir,
		"written", len(report.Written),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed),
	)
	return report, nil
}

// exportPaths lists the escaped request paths to render.
func (a *App) exportPaths(ctx context.Context) ([]string, error) {
	paths := []string{"/", "/posts/", "/search/", "/sitemap.xml", "/feed.xml", "/robots.txt"}
	for _, c := range []content.Collection{content.Pages, content.Posts} {
		slugs, err := a.Enumerator.EnumerateSlugs(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("contentsite: enumerate %s: %w", c, err)
		}
		for _, slug := range slugs {
			if slug == "" || strings.Contains(slug, "/") || strings.Contains(slug, "..") {
				a.Logger.Warn("Skipping unexportable slug", "collection", c, "slug", slug)
				continue
			}
			p := "/" + url.PathEscape(slug) + "/"
			if c == content.Posts {
				p = "/posts" + p
			}
			if !slices.Contains(paths, p) {
				paths = append(paths, p)
			}
		}
	}
	return paths, nil
}

// exportPath renders p and writes it. written is false when the route had
// nothing to serve.
func (a *App) exportPath(ctx context.Context, outDir, p string) (written bool, err error) {
	req := httptest.NewRequest(http.MethodGet, p, nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)

	switch {
	case rec.Code == http.StatusNoContent:
		return false, nil
	case rec.Code != http.StatusOK:
		return false, fmt.Errorf("status %d", rec.Code)
	}
	target, err := exportFile(outDir, p)
	if err != nil {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return false, err
	}
	if err := os.WriteFile(target, rec.Body.Bytes(), 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// exportFile maps a request path onto the file that serves it: directories get
// index.html, files with an extension keep their name.
func exportFile(outDir, p string) (string, error) {
	decoded, err := url.PathUnescape(p)
	if err != nil {
		return "", err
	}
	rel := filepath.FromSlash(strings.TrimPrefix(decoded, "/"))
	if strings.Contains(decoded, "..") {
		return "", errors.New("path escapes export dir")
	}
	if filepath.Ext(decoded) != "" && !strings.HasSuffix(decoded, "/") {
		return filepath.Join(outDir, rel), nil
	}
	return filepath.Join(outDir, rel, "index.html"), nil
}

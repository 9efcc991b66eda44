package contentsite

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/contentsite/content"
	"github.com/eringen/contentsite/views"
)

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	mode := CurrentMode(c)
	doc, err := a.Resolver.Resolve(ctx, content.Pages, content.HomeSlug, mode.Draft)
	if err != nil {
		return a.contentError(c, err)
	}
	return Render(c, a.Views.Page(views.PageData{
		Chrome: a.chrome(c, content.MetaFor(doc)),
		Page:   doc,
		Recent: a.recentPosts(ctx),
	}))
}

func (a *App) handlePage(c echo.Context) error {
	mode := CurrentMode(c)
	doc, err := a.Resolver.Resolve(c.Request().Context(), content.Pages, rawSlug(c, "/"), mode.Draft)
	if err != nil {
		return a.contentError(c, err)
	}
	return Render(c, a.Views.Page(views.PageData{
		Chrome: a.chrome(c, content.MetaFor(doc)),
		Page:   doc,
	}))
}

func (a *App) handlePost(c echo.Context) error {
	mode := CurrentMode(c)
	doc, err := a.Resolver.Resolve(c.Request().Context(), content.Posts, rawSlug(c, "/posts/"), mode.Draft)
	if err != nil {
		return a.contentError(c, err)
	}
	return Render(c, a.Views.Post(views.PostData{
		Chrome: a.chrome(c, content.MetaFor(doc)),
		Post:   doc,
	}))
}

func (a *App) handleArchive(c echo.Context) error {
	page, ok := parsePage(c.QueryParam("page"))
	if !ok {
		return echo.ErrNotFound
	}
	ctx := c.Request().Context()
	var (
		res content.Result
		err error
	)
	if IsDraft(c) {
		res, err = a.Paginator.Paginate(ctx, content.Posts, page, content.PostsPerPage)
	} else {
		res, err = a.Archive.Page(ctx, page, content.PostsPerPage)
	}
	if err != nil {
		return a.contentError(c, err)
	}
	meta := content.PageMeta{Title: "Posts", Path: "/posts/"}
	if res.Page > 1 {
		meta.Title = "Posts - Page " + strconv.Itoa(res.Page)
	}
	return Render(c, a.Views.Archive(views.ArchiveData{
		Chrome:     a.chrome(c, meta),
		Posts:      res.Docs,
		Page:       res.Page,
		TotalPages: res.TotalPages,
		Range:      content.PageRange(res.Page, content.PostsPerPage, res.TotalDocs),
	}))
}

func (a *App) handleSearch(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	res, err := a.Searcher.Search(c.Request().Context(), query)
	if err != nil {
		return a.contentError(c, err)
	}
	return Render(c, a.Views.Search(views.SearchData{
		Chrome:  a.chrome(c, content.PageMeta{Title: "Search", Path: "/search/"}),
		Query:   query,
		Results: res.Docs,
	}))
}

func (a *App) handleRobots(c echo.Context) error {
	if path := filepath.Join(a.staticDir, "robots.txt"); fileExists(path) {
		return c.File(path)
	}
	body := "User-agent: *\nAllow: /\nDisallow: /api/\n\nSitemap: " + BuildURL(a.Config.URL) + "sitemap.xml\n"
	return c.String(http.StatusOK, body)
}

func (a *App) handleSitemap(c echo.Context) error {
	ctx := c.Request().Context()
	pages, err := a.Enumerator.EnumerateSlugs(ctx, content.Pages)
	if err != nil {
		return err
	}
	posts, err := a.Enumerator.EnumerateSlugs(ctx, content.Posts)
	if err != nil {
		return err
	}
	return a.renderSitemap(c, pages, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	res, err := a.Paginator.Paginate(c.Request().Context(), content.Posts, 1, feedLimit)
	if err != nil && !errors.Is(err, content.ErrStoreSkipped) {
		return err
	}
	return a.renderRSS(c, res.Docs)
}

// recentPosts returns the newest posts for the home page. Failures degrade to
// an empty list.
func (a *App) recentPosts(ctx context.Context) []content.Document {
	res, err := a.Paginator.Paginate(ctx, content.Posts, 1, content.RecentPostsLimit)
	if err != nil {
		if !errors.Is(err, content.ErrStoreSkipped) {
			a.Logger.Warn("Recent posts unavailable", "error", err)
		}
		return nil
	}
	return res.Docs
}

// chrome assembles the frame shared by every HTML response.
func (a *App) chrome(c echo.Context, meta content.PageMeta) views.Chrome {
	ctx := c.Request().Context()
	ch := views.Chrome{
		Site:   a.siteConfig(),
		Meta:   meta,
		Header: a.navigation(ctx, "header"),
		Footer: a.navigation(ctx, "footer"),
	}
	if IsDraft(c) {
		ch.Draft = true
		ch.CSRF = CsrfToken(c)
		ch.LiveURL = "/api/live-preview"
	}
	return ch
}

// navigation loads a nav global. A missing global renders as an empty nav.
func (a *App) navigation(ctx context.Context, key string) []views.NavLink {
	if a.Globals == nil {
		return nil
	}
	g, err := a.Globals.Get(ctx, key, 1)
	if err != nil {
		if !errors.Is(err, content.ErrNotFound) && !errors.Is(err, content.ErrStoreSkipped) {
			a.Logger.Warn("Navigation unavailable", "global", key, "error", err)
		}
		return nil
	}
	return views.NavLinks(g)
}

func (a *App) siteConfig() views.SiteConfig {
	return views.SiteConfig{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
	}
}

// contentError maps resolution outcomes onto HTTP. Not found goes through the
// error handler, which consults redirects before rendering the 404 page.
func (a *App) contentError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, content.ErrNotFound):
		return echo.ErrNotFound
	case errors.Is(err, content.ErrStoreSkipped):
		return c.NoContent(http.StatusNoContent)
	default:
		return err
	}
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}
	if !IsDraft(c) {
		c.Response().Header().Set("Cache-Control", "no-cache")
	}

	if code == http.StatusNotFound {
		if a.redirectNotFound(c) {
			return
		}
		ch := a.chrome(c, content.PageMeta{Title: "Page not found", Path: c.Request().URL.Path})
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(ch))
		return
	}
	if code >= 500 {
		a.Logger.Error("Server error",
			"method", c.Request().Method,
			"uri", c.Request().RequestURI,
			"error", err,
		)
		ch := a.chrome(c, content.PageMeta{Title: "Something went wrong", Path: c.Request().URL.Path})
		_ = RenderStatus(c, code, a.Views.ServerError(ch))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

// redirectNotFound answers a GET that matched nothing with a stored redirect.
func (a *App) redirectNotFound(c echo.Context) bool {
	req := c.Request()
	if a.Redirects == nil || (req.Method != http.MethodGet && req.Method != http.MethodHead) {
		return false
	}
	red, ok, err := a.Redirects.FindRedirect(req.Context(), req.URL.Path)
	if err != nil {
		a.Logger.Warn("Redirect lookup failed", "path", req.URL.Path, "error", err)
		return false
	}
	if !ok {
		return false
	}
	_ = c.Redirect(red.StatusCode(), red.Location())
	return true
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Package contentsite is a content-managed publishing site built with Go, Echo
// and templ. It resolves URL slugs to stored pages and posts, renders them
// with user-replaceable views, and supports draft preview, redirects, search,
// a paginated archive and static export.
//
// Content resolution policy lives in package content; this package wires it
// to HTTP, sessions, caches, events and metrics.
package contentsite

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/eringen/contentsite/content"
	"github.com/eringen/contentsite/events"
	"github.com/eringen/contentsite/memstore"
	"github.com/eringen/contentsite/metrics"
	"github.com/eringen/contentsite/sqlitestore"
)

// App is the central contentsite application. It wires together the store,
// resolution components, caches, handlers, middleware, and views.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  content.Store
	Bus    events.Bus
	Views  ViewFuncs
	Logger *slog.Logger

	Resolver   *content.Resolver
	Enumerator *content.Enumerator
	Redirects  *content.Redirects
	Globals    *content.GlobalCache
	Searcher   *content.Searcher
	Paginator  *content.Paginator
	Archive    *ArchiveCache
	Metrics    *metrics.PrometheusRecorder

	previewLimiter *AttemptLimiter
	live           *liveHub
	renditions     *renditionCache
	scheduler      gocron.Scheduler
	registry       *prometheus.Registry
	cancel         context.CancelFunc
	closers        []func() error
	customRoutes   []func(*App)
	staticDir      string
	initialized    bool
}

// New creates a new App with the given configuration and views. Nil view
// functions fall back to the built-in views.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()
	views.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}
	if a.Logger == nil {
		a.Logger = slog.Default()
	}
	return a
}

// Init opens the store and event bus unless they were injected, builds the
// resolution components, subscribes the caches to publish events, starts the
// scheduler, and registers middleware and routes. It is idempotent.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("contentsite: SessionSecret is required")
	}
	if a.Config.PreviewSecret == "" {
		return fmt.Errorf("contentsite: PreviewSecret is required")
	}

	if a.registry == nil {
		a.registry = prometheus.NewRegistry()
	}
	a.Metrics = metrics.NewPrometheusRecorder(a.registry)

	if err := a.openStore(); err != nil {
		return err
	}
	if err := a.openBus(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	opts := content.Options{
		Building: a.Config.Building,
		Recorder: a.Metrics,
		Logger:   a.Logger,
	}
	sources := []content.RedirectFinder{a.Store}
	if a.Config.RedirectsFile != "" {
		table, err := content.LoadRedirectTable(a.Config.RedirectsFile)
		if err != nil {
			return fmt.Errorf("contentsite: load redirects: %w", err)
		}
		if err := table.Watch(ctx, a.Logger); err != nil {
			a.Logger.Warn("Redirect file will not be reloaded", "path", a.Config.RedirectsFile, "error", err)
		}
		sources = append(sources, table)
	}

	a.Resolver = content.NewResolver(a.Store, opts)
	a.Enumerator = content.NewEnumerator(a.Store, opts)
	a.Redirects = content.NewRedirects(opts, sources...)
	a.Globals = content.NewGlobalCache(a.Store, opts)
	a.Searcher = content.NewSearcher(a.Store, opts)
	a.Paginator = content.NewPaginator(a.Store, opts)
	a.Archive = NewArchiveCache(a.Paginator, a.Config.ArchiveTTL, a.Metrics)
	a.live = newLiveHub(a.Logger)
	a.renditions = newRenditionCache()
	a.previewLimiter = NewAttemptLimiter(5, time.Minute)

	if err := a.Globals.Start(a.Bus); err != nil {
		return err
	}
	if err := a.Archive.Subscribe(a.Bus); err != nil {
		return fmt.Errorf("contentsite: subscribe archive cache: %w", err)
	}
	if err := a.live.Subscribe(a.Bus); err != nil {
		return fmt.Errorf("contentsite: subscribe live preview: %w", err)
	}
	if err := a.startScheduler(); err != nil {
		return err
	}

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.initialized = true
	return nil
}

func (a *App) openStore() error {
	if a.Store != nil {
		return nil
	}
	if a.Config.Building {
		// Nothing is queried while building; an empty store stands in.
		a.Store = memstore.New()
		return nil
	}
	store, err := sqlitestore.New(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("contentsite: init store: %w", err)
	}
	a.Store = store
	a.closers = append(a.closers, store.Close)
	return nil
}

func (a *App) openBus() error {
	if a.Bus != nil {
		return nil
	}
	if a.Config.NATSURL == "" {
		a.Bus = events.NewLocal()
	} else {
		bus, err := events.NewNATS(a.Config.NATSURL, events.DefaultSubject, a.Logger)
		if err != nil {
			return fmt.Errorf("contentsite: connect events: %w", err)
		}
		a.Bus = bus
	}
	a.closers = append(a.closers, a.Bus.Close)
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Framework assets are served under /public/ and fall through to the
	// user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/livepreview.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.GET("/public/site.css", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.Static("/public", a.staticDir)

	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/metrics", echo.WrapHandler(metrics.HTTPHandler(a.registry)))
	e.GET("/media/:filename", a.handleMedia)

	// Preview and publish hooks
	e.GET("/api/preview", a.handlePreview)
	e.GET("/api/exit-preview", a.handleExitPreview)
	e.POST("/api/exit-preview", a.handleExitPreview)
	e.POST("/api/revalidate", a.handleRevalidate)
	e.GET("/api/live-preview", a.handleLivePreview)

	// Content routes
	e.GET("/", a.handleHome)
	e.GET("/posts/", a.handleArchive)
	e.GET("/posts/:slug/", a.handlePost)
	e.GET("/search/", a.handleSearch)
	e.GET("/:slug/", a.handlePage)
}

// Start initializes the app and serves HTTP until the server is shut down.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Logger.Info("Serving", "addr", a.Config.Addr, "building", a.Config.Building)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.scheduler != nil {
		if err := a.scheduler.Shutdown(); err != nil {
			a.Logger.Warn("Scheduler shutdown", "error", err)
		}
	}
	if a.Globals != nil {
		a.Globals.Stop()
	}
	if a.Archive != nil {
		a.Archive.Close()
	}
	if a.live != nil {
		a.live.Close()
	}
	if a.cancel != nil {
		a.cancel()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("contentsite: required environment variable %s is not set", key)
	}
	return v
}

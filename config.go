package contentsite

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/eringen/contentsite/content"
	"github.com/eringen/contentsite/events"
)

// SiteConfig holds all configuration for a contentsite deployment.
type SiteConfig struct {
	Name        string // Site name (default "Content Site")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Author name for JSON-LD

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/site.db")
	MediaDir     string // Uploaded media served under /media/ (default "media")

	SessionSecret    string // Required: preview session signing secret
	PreviewSecret    string // Required: secret of /api/preview/
	RevalidateSecret string // Secret of /api/revalidate/; empty disables the hook
	CookieSecure     bool   // Set true for HTTPS

	// Building short-circuits store access while the site is being built
	// without a reachable store.
	Building bool

	NATSURL       string        // Publish events over NATS instead of in process
	RedirectsFile string        // Optional YAML redirect table, reloaded on change
	ArchiveTTL    time.Duration // Archive page cache TTL (default 10min)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Content Site"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/site.db"
	}
	if c.MediaDir == "" {
		c.MediaDir = "media"
	}
	if c.ArchiveTTL == 0 {
		c.ArchiveTTL = 10 * time.Minute
	}
}

// ConfigFromEnv reads the site configuration from environment variables.
func ConfigFromEnv() SiteConfig {
	return SiteConfig{
		Name:             EnvOr("SITE_NAME", ""),
		URL:              EnvOr("SITE_URL", ""),
		Description:      EnvOr("SITE_DESCRIPTION", ""),
		Author:           EnvOr("SITE_AUTHOR", ""),
		Addr:             EnvOr("ADDR", ""),
		DatabasePath:     EnvOr("DATABASE_PATH", ""),
		MediaDir:         EnvOr("MEDIA_DIR", ""),
		SessionSecret:    os.Getenv("SESSION_SECRET"),
		PreviewSecret:    os.Getenv("PREVIEW_SECRET"),
		RevalidateSecret: os.Getenv("REVALIDATE_SECRET"),
		CookieSecure:     envBool("COOKIE_SECURE"),
		Building:         envBool("IS_BUILDING"),
		NATSURL:          os.Getenv("NATS_URL"),
		RedirectsFile:    os.Getenv("REDIRECTS_FILE"),
		ArchiveTTL:       envSeconds("ARCHIVE_REVALIDATE"),
	}
}

func envBool(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}

func envSeconds(key string) time.Duration {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

// Option configures additional App behavior.
type Option func(*App)

// WithStore serves content from store instead of the SQLite database at
// DatabasePath.
func WithStore(store content.Store) Option {
	return func(a *App) {
		a.Store = store
	}
}

// WithBus sets the publish event bus (default: NATS when NATSURL is set,
// otherwise in process).
func WithBus(bus events.Bus) Option {
	return func(a *App) {
		a.Bus = bus
	}
}

// WithRegistry registers metrics on reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(a *App) {
		a.registry = reg
	}
}

// WithLogger sets the application logger (default slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.Logger = logger
	}
}

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

package content

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// RedirectTable is a RedirectFinder backed by a YAML file:
//
//	redirects:
//	  - from: /old-about
//	    to: {reference: {relationTo: pages, id: "...", slug: about}}
//	    type: permanent
//	  - from: /feed
//	    to: {url: /feed.xml}
type RedirectTable struct {
	path string

	mu      sync.RWMutex
	entries map[string]Redirect
}

type redirectFile struct {
	Redirects []Redirect `yaml:"redirects"`
}

// LoadRedirectTable reads path. A missing file yields an empty table.
func LoadRedirectTable(path string) (*RedirectTable, error) {
	t := &RedirectTable{path: path, entries: map[string]Redirect{}}
	if err := t.Reload(); err != nil {
		return nil, err
	}
	return t, nil
}

// Reload re-reads the file, replacing the table only when it parses.
func (t *RedirectTable) Reload() error {
	data, err := os.ReadFile(t.path)
	if os.IsNotExist(err) {
		t.swap(map[string]Redirect{})
		return nil
	}
	if err != nil {
		return fmt.Errorf("content: read redirects %s: %w", t.path, err)
	}
	entries, err := ParseRedirects(data)
	if err != nil {
		return fmt.Errorf("content: parse redirects %s: %w", t.path, err)
	}
	t.swap(entries)
	return nil
}

// ParseRedirects decodes a redirect file body keyed by normalized source path.
func ParseRedirects(data []byte) (map[string]Redirect, error) {
	var f redirectFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	entries := make(map[string]Redirect, len(f.Redirects))
	for _, r := range f.Redirects {
		if r.From == "" {
			return nil, fmt.Errorf("redirect without from")
		}
		r.From = NormalizePath(r.From)
		if r.Type == "" {
			r.Type = RedirectPermanent
		}
		entries[r.From] = r
	}
	return entries, nil
}

func (t *RedirectTable) swap(entries map[string]Redirect) {
	t.mu.Lock()
	t.entries = entries
	t.mu.Unlock()
}

// Len returns the number of entries.
func (t *RedirectTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// FindRedirect implements RedirectFinder.
func (t *RedirectTable) FindRedirect(_ context.Context, from string) (Redirect, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.entries[NormalizePath(from)]
	if !ok {
		return Redirect{}, ErrNotFound
	}
	return r, nil
}

// Watch reloads the table whenever the file changes until ctx is done. The
// directory is watched so editors that replace the file are picked up.
func (t *RedirectTable) Watch(ctx context.Context, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("content: watch redirects: %w", err)
	}
	if err := w.Add(filepath.Dir(t.path)); err != nil {
		w.Close()
		return fmt.Errorf("content: watch redirects: %w", err)
	}
	target := filepath.Clean(t.path)
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) {
					continue
				}
				if err := t.Reload(); err != nil {
					logger.Warn("Keeping previous redirects", "path", t.path, "error", err)
					continue
				}
				logger.Info("Redirects reloaded", "path", t.path, "entries", t.Len())
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("Redirect watcher error", "error", err)
			}
		}
	}()
	return nil
}

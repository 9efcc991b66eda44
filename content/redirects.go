package content

import (
	"context"
	"errors"
	"fmt"
)

// Redirects is the negative-path handler consulted after a slug resolved to
// ErrNotFound. Sources are asked in order; the first match wins.
type Redirects struct {
	sources []RedirectFinder
	opts    Options
}

// NewRedirects returns a Redirects over sources (typically the store, then a
// redirect file).
func NewRedirects(opts Options, sources ...RedirectFinder) *Redirects {
	return &Redirects{sources: sources, opts: opts.withDefaults()}
}

// FindRedirect looks up path by exact match. ok is false when no source has
// an entry; the caller then renders the terminal not-found page.
func (r *Redirects) FindRedirect(ctx context.Context, path string) (Redirect, bool, error) {
	if r.opts.Building {
		return Redirect{}, false, nil
	}
	path = NormalizePath(path)
	for _, src := range r.sources {
		if src == nil {
			continue
		}
		red, err := src.FindRedirect(ctx, path)
		switch {
		case errors.Is(err, ErrNotFound):
			continue
		case err != nil:
			return Redirect{}, false, fmt.Errorf("content: find redirect %q: %w", path, err)
		}
		if red.Location() == "" {
			r.opts.Logger.Warn("Ignoring redirect without destination", "from", path)
			continue
		}
		r.opts.Recorder.IncRedirect(true)
		return red, true, nil
	}
	r.opts.Recorder.IncRedirect(false)
	return Redirect{}, false, nil
}

package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/eringen/contentsite"
	"github.com/eringen/contentsite/content"
	"github.com/eringen/contentsite/memstore"
)

// ServeCmd runs the HTTP server until interrupted.
type ServeCmd struct {
	Memory bool   `help:"Serve from an in-memory store instead of the SQLite database"`
	Seed   string `help:"YAML bundle loaded into the in-memory store" type:"existingfile"`
	Addr   string `help:"Listen address (overrides ADDR)"`
}

func (s *ServeCmd) Run(g *Global) error {
	if s.Seed != "" && !s.Memory {
		return errors.New("--seed requires --memory; use import for the database")
	}
	cfg := contentsite.ConfigFromEnv()
	if s.Addr != "" {
		cfg.Addr = s.Addr
	}
	opts := []contentsite.Option{contentsite.WithLogger(g.Logger)}
	if s.Memory {
		store := memstore.New()
		if s.Seed != "" {
			bundle, err := content.LoadBundle(s.Seed)
			if err != nil {
				return err
			}
			seedMemory(store, bundle)
			g.Logger.Info("Seeded memory store", "file", s.Seed, "documents", len(bundle.Documents))
		}
		opts = append(opts, contentsite.WithStore(store))
	}

	app := contentsite.New(cfg, contentsite.ViewFuncs{}, opts...)
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	g.Logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Shutdown(shutdownCtx)
}

func seedMemory(store *memstore.Store, b content.Bundle) {
	store.Put(b.Documents...)
	for _, g := range b.Globals {
		store.PutGlobal(g)
	}
	for _, r := range b.Redirects {
		store.PutRedirect(r)
	}
}

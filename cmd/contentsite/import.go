package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/eringen/contentsite"
	"github.com/eringen/contentsite/content"
	"github.com/eringen/contentsite/events"
	"github.com/eringen/contentsite/sqlitestore"
)

// ImportCmd writes a bundle into the SQLite database. When NATS_URL is set,
// running servers are told which tags changed so their caches refresh.
type ImportCmd struct {
	File string `arg:"" help:"YAML content bundle" type:"existingfile"`
}

func (i *ImportCmd) Run(g *Global) error {
	cfg := contentsite.ConfigFromEnv()
	bundle, err := content.LoadBundle(i.File)
	if err != nil {
		return err
	}
	store, err := sqlitestore.New(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var evs []events.Event
	for _, doc := range bundle.Documents {
		saved, err := store.SaveDocument(ctx, doc)
		if err != nil {
			return fmt.Errorf("save %s/%s: %w", doc.Collection, doc.Slug, err)
		}
		g.Logger.Debug("Saved document", "collection", saved.Collection, "slug", saved.Slug, "id", saved.ID)
	}
	for _, gl := range bundle.Globals {
		saved, err := store.SaveGlobal(ctx, gl)
		if err != nil {
			return fmt.Errorf("save global %s: %w", gl.Key, err)
		}
		evs = append(evs, events.Event{Tag: content.GlobalTag(saved.Key), Version: saved.Version})
	}
	for _, r := range bundle.Redirects {
		if err := store.SaveRedirect(ctx, r); err != nil {
			return fmt.Errorf("save redirect %s: %w", r.From, err)
		}
	}
	for _, tag := range bundle.Tags() {
		if !isGlobalTag(tag) {
			evs = append(evs, events.Event{Tag: tag})
		}
	}
	g.Logger.Info("Imported bundle",
		"file", i.File,
		"documents", len(bundle.Documents),
		"globals", len(bundle.Globals),
		"redirects", len(bundle.Redirects),
	)

	if cfg.NATSURL == "" {
		g.Logger.Info("NATS_URL not set; running servers refresh on their own schedule")
		return nil
	}
	bus, err := events.NewNATS(cfg.NATSURL, events.DefaultSubject, g.Logger)
	if err != nil {
		return err
	}
	defer bus.Close()
	for _, ev := range evs {
		if err := bus.Publish(ctx, ev); err != nil {
			return fmt.Errorf("publish %s: %w", ev.Tag, err)
		}
	}
	g.Logger.Info("Announced changes", "events", len(evs))
	return nil
}

func isGlobalTag(tag string) bool {
	return strings.HasPrefix(tag, content.GlobalTag(""))
}

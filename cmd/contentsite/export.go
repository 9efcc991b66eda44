package main

import (
	"context"
	"fmt"
	"os/signal"
	"sort"
	"syscall"

	"github.com/google/uuid"

	"github.com/eringen/contentsite"
)

// ExportCmd writes the published site to a directory.
type ExportCmd struct {
	Out string `short:"o" help:"Output directory" default:"./dist" type:"path"`
}

func (e *ExportCmd) Run(g *Global) error {
	cfg := contentsite.ConfigFromEnv()
	// Export never serves previews; throwaway secrets satisfy startup checks.
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = uuid.NewString()
	}
	if cfg.PreviewSecret == "" {
		cfg.PreviewSecret = uuid.NewString()
	}

	app := contentsite.New(cfg, contentsite.ViewFuncs{}, contentsite.WithLogger(g.Logger))
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := app.Export(ctx, e.Out)
	if err != nil {
		return err
	}
	if len(report.Failed) > 0 {
		paths := make([]string, 0, len(report.Failed))
		for p := range report.Failed {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			g.Logger.Error("Page failed", "path", p, "error", report.Failed[p])
		}
		return fmt.Errorf("%d of %d pages failed", len(report.Failed),
			len(report.Failed)+len(report.Written)+len(report.Skipped))
	}
	return nil
}

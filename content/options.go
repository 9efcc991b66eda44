package content

import (
	"log/slog"

	"github.com/eringen/contentsite/metrics"
)

// Options configures the resolution components. It is injected at construction;
// nothing reads the build flag from the environment at call time.
type Options struct {
	// Building short-circuits all store access: resolvers return
	// ErrStoreSkipped and enumerators return nothing.
	Building bool
	Recorder metrics.Recorder
	Logger   *slog.Logger
}

func (o Options) withDefaults() Options {
	o.Recorder = metrics.OrNoop(o.Recorder)
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

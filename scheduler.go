package contentsite

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// startScheduler runs the periodic housekeeping jobs: expiring archive pages
// and forgetting preview attempts outside the limiter window.
func (a *App) startScheduler() error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("contentsite: create scheduler: %w", err)
	}
	jobs := []struct {
		name     string
		interval time.Duration
		fn       func()
	}{
		{"archive-sweep", a.Config.ArchiveTTL, a.sweepArchive},
		{"preview-limiter-sweep", time.Minute, a.sweepLimiter},
	}
	for _, j := range jobs {
		if _, err := s.NewJob(
			gocron.DurationJob(j.interval),
			gocron.NewTask(j.fn),
			gocron.WithName(j.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		); err != nil {
			_ = s.Shutdown()
			return fmt.Errorf("contentsite: schedule %s: %w", j.name, err)
		}
	}
	s.Start()
	a.scheduler = s
	return nil
}

func (a *App) sweepArchive() {
	if n := a.Archive.Sweep(); n > 0 {
		a.Logger.Debug("Swept archive cache", "removed", n)
	}
}

func (a *App) sweepLimiter() {
	a.previewLimiter.Sweep()
}

package reaper

import (
	"context"
	"time"

	"github.com/weiawesome/camlink/internal/config"
	pkglog "github.com/weiawesome/camlink/pkg/log"
)

// Sweeper evicts idle rooms and reports how many were closed.
type Sweeper interface {
	SweepIdle(ctx context.Context) int
}

// Reaper periodically closes rooms nobody has used for a while.
type Reaper struct {
	sweeper  Sweeper
	interval time.Duration
}

// New creates a Reaper.
func New(sweeper Sweeper, cfg config.ReaperConfig) *Reaper {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Reaper{sweeper: sweeper, interval: interval}
}

// Run sweeps on every tick until ctx is done.
func (r *Reaper) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	l := pkglog.L()
	l.Info().Dur("interval", r.interval).Msg("reaper: started")

	for {
		select {
		case <-ctx.Done():
			l.Info().Msg("reaper: stopped")
			return nil
		case <-ticker.C:
			if n := r.sweeper.SweepIdle(ctx); n > 0 {
				l.Info().Int("count", n).Msg("reaper: closed idle rooms")
			}
		}
	}
}

// Package scheduler drives the periodic reconciliation sweeps of the
// auction engine.
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/fantasy-auction/internal/auction"
	"github.com/iliyamo/fantasy-auction/internal/config"
)

// Sweeps is the part of the engine the scheduler drives.
type Sweeps interface {
	ProcessExpiredContracts(ctx context.Context, now time.Time) (auction.SweepReport, error)
	AutoAwardExpiredAuctions(ctx context.Context, now time.Time) (auction.SweepReport, error)
}

// Sweeper runs each sweep on its own ticker.  Runs of the same sweep never
// overlap; a tick that arrives while a run is in progress is dropped.
type Sweeper struct {
	sweeps Sweeps
	cfg    config.SweepConfig
	clock  auction.Clock
	log    zerolog.Logger
}

func NewSweeper(s Sweeps, cfg config.SweepConfig, clock auction.Clock, log zerolog.Logger) *Sweeper {
	if clock == nil {
		clock = auction.SystemClock{}
	}
	return &Sweeper{
		sweeps: s,
		cfg:    cfg,
		clock:  clock,
		log:    log.With().Str("component", "scheduler").Logger(),
	}
}

// Run blocks until ctx is cancelled.  It always returns nil; sweep
// failures are logged and the next tick tries again.
func (s *Sweeper) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	if s.cfg.ContractInterval > 0 {
		g.Go(func() error {
			s.loop(ctx, "expired_contracts", s.cfg.ContractInterval, s.sweeps.ProcessExpiredContracts)
			return nil
		})
	}
	if s.cfg.AwardInterval > 0 {
		g.Go(func() error {
			s.loop(ctx, "auto_award", s.cfg.AwardInterval, s.sweeps.AutoAwardExpiredAuctions)
			return nil
		})
	}
	return g.Wait()
}

type sweepFunc func(ctx context.Context, now time.Time) (auction.SweepReport, error)

func (s *Sweeper) loop(ctx context.Context, name string, every time.Duration, fn sweepFunc) {
	log := s.log.With().Str("sweep", name).Dur("interval", every).Logger()
	log.Info().Msg("sweep scheduled")
	if s.cfg.RunOnStart {
		s.RunOnce(ctx, name, fn)
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("sweep stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx, name, fn)
		}
	}
}

// RunOnce executes one sweep bounded by the configured timeout and logs
// its report.
func (s *Sweeper) RunOnce(ctx context.Context, name string, fn sweepFunc) (auction.SweepReport, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	began := time.Now()
	rep, err := fn(ctx, s.clock.Now())
	ev := s.log.Info()
	if err != nil {
		ev = s.log.Error().Err(err)
	} else if rep.Failed > 0 {
		ev = s.log.Warn()
	}
	ev.Str("sweep", name).
		Int("candidates", rep.Candidates).
		Int("processed", rep.Processed).
		Int("skipped", rep.Skipped).
		Int("failed", rep.Failed).
		Dur("took", time.Since(began)).
		Msg("sweep finished")
	return rep, err
}

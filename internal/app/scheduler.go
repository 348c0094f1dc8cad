package app

import (
	"context"
	"fmt"

	"github.com/riskibarqy/fantasy-insights/internal/platform/logging"
	"github.com/robfig/cron/v3"
)

// Scheduler runs one job on a cron spec. Ticks that arrive while the
// previous run is still going are skipped.
type Scheduler struct {
	cron   *cron.Cron
	logger *logging.Logger
}

func NewScheduler(ctx context.Context, spec string, job func(ctx context.Context) error, logger *logging.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = logging.Default()
	}

	cronLog := cronLogger{logger: logger}
	c := cron.New(cron.WithLogger(cronLog), cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)))
	if _, err := c.AddFunc(spec, func() {
		if ctx.Err() != nil {
			return
		}
		if err := job(ctx); err != nil {
			logger.ErrorContext(ctx, "scheduled run failed", "error", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", spec, err)
	}
	return &Scheduler{cron: c, logger: logger}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	for _, entry := range s.cron.Entries() {
		s.logger.Info("scheduler started", "next_run", entry.Next)
	}
}

// Stop stops new runs and blocks until an in-flight run returns or ctx ends.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out with a run in flight")
	}
}

type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/riskibarqy/fantasy-insights/internal/app"
	"github.com/riskibarqy/fantasy-insights/internal/platform/logging"
	"github.com/riskibarqy/fantasy-insights/internal/usecase"
	"github.com/spf13/cobra"
)

type rangeOutcome struct {
	GameWeek int                  `json:"game_week"`
	Run      *usecase.GameweekRun `json:"run,omitempty"`
	Error    string               `json:"error,omitempty"`
}

type rangeReport struct {
	Requested int            `json:"requested"`
	Succeeded int            `json:"succeeded"`
	Outcomes  []rangeOutcome `json:"outcomes"`
}

func newRangeReport(result usecase.RangeResult) rangeReport {
	report := rangeReport{
		Requested: len(result.Outcomes),
		Succeeded: result.SucceededCount(),
		Outcomes:  make([]rangeOutcome, 0, len(result.Outcomes)),
	}
	for _, outcome := range result.Outcomes {
		item := rangeOutcome{GameWeek: outcome.GameWeek, Run: outcome.Run}
		if outcome.Err != nil {
			item.Error = outcome.Err.Error()
		}
		report.Outcomes = append(report.Outcomes, item)
	}
	return report
}

func syncGameweekCmd(flags *passFlags) *cobra.Command {
	var gameWeek int
	cmd := &cobra.Command{
		Use:   "sync-gameweek",
		Short: "Fetch the top-manager cohort for one gameweek and store its summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, c *app.Container, _ *logging.Logger) error {
				pipeline := c.Pipeline(pipelineConfig(c.PipelineConfig(), flags, flagChanged(cmd)))

				gw := gameWeek
				if !cmd.Flags().Changed("gameweek") {
					current, err := c.ReferenceSync().CurrentGameWeek(ctx)
					if err != nil {
						return err
					}
					gw = current
				}

				result, err := pipeline.RunGameweek(ctx, pipeline.GameweekInput(gw))
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
	cmd.Flags().IntVar(&gameWeek, "gameweek", 0, "gameweek to sync (default: the current gameweek)")
	return cmd
}

func syncRangeCmd(flags *passFlags) *cobra.Command {
	var from, to int
	cmd := &cobra.Command{
		Use:   "sync-range",
		Short: "Run the cohort pass for every gameweek in an inclusive range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, c *app.Container, _ *logging.Logger) error {
				cfg := pipelineConfig(c.PipelineConfig(), flags, flagChanged(cmd))
				pipeline := c.Pipeline(cfg)

				result, err := pipeline.RunRange(ctx, usecase.RangeInput{
					FromGameWeek: from,
					ToGameWeek:   to,
					LeagueID:     cfg.LeagueID,
					CohortSize:   cfg.CohortSize,
					Workers:      cfg.Workers,
				})
				if err != nil {
					return err
				}
				if err := printJSON(cmd.OutOrStdout(), newRangeReport(result)); err != nil {
					return err
				}
				return result.Err()
			})
		},
	}
	cmd.Flags().IntVar(&from, "from", 1, "first gameweek")
	cmd.Flags().IntVar(&to, "to", 1, "last gameweek, inclusive")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func scheduleCmd(flags *passFlags) *cobra.Command {
	var runNow bool
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Refresh reference data and sync the current gameweek on SCHEDULE_CRON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, c *app.Container, logger *logging.Logger) error {
				pipeline := c.Pipeline(pipelineConfig(c.PipelineConfig(), flags, flagChanged(cmd)))
				job := currentGameweekJob(c.ReferenceSync(), pipeline, logger)

				if runNow {
					if err := job(ctx); err != nil {
						logger.ErrorContext(ctx, "initial run failed", "error", err)
					}
				}

				scheduler, err := app.NewScheduler(ctx, c.Config().ScheduleCron, job, logger)
				if err != nil {
					return err
				}
				scheduler.Start()
				<-ctx.Done()

				stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				scheduler.Stop(stopCtx)
				logger.Info("scheduler stopped")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&runNow, "run-now", false, "run one pass immediately before waiting for the schedule")
	return cmd
}

func serveCmd(flags *passFlags) *cobra.Command {
	var withScheduler bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored gameweek summaries over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, c *app.Container, logger *logging.Logger) error {
				summaries := c.Summaries()
				srv, err := app.NewHTTPServer(c.Config(), summaries, logger)
				if err != nil {
					return err
				}

				var scheduler *app.Scheduler
				if withScheduler {
					pipeline := c.Pipeline(pipelineConfig(c.PipelineConfig(), flags, flagChanged(cmd)))
					pipeline.OnCommit(summaries.Invalidate)
					scheduler, err = app.NewScheduler(ctx, c.Config().ScheduleCron, currentGameweekJob(c.ReferenceSync(), pipeline, logger), logger)
					if err != nil {
						return err
					}
					scheduler.Start()
				}

				serveErr := make(chan error, 1)
				go func() {
					logger.Info("http server starting", "addr", srv.Addr)
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						serveErr <- err
					}
					close(serveErr)
				}()

				var runErr error
				select {
				case <-ctx.Done():
				case runErr = <-serveErr:
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if scheduler != nil {
					scheduler.Stop(shutdownCtx)
				}
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return err
				}
				logger.Info("http server stopped")
				return runErr
			})
		},
	}
	cmd.Flags().BoolVar(&withScheduler, "with-scheduler", false, "also run the scheduled cohort pass in this process")
	return cmd
}

type referenceSyncer interface {
	Sync(ctx context.Context) (usecase.ReferenceSyncResult, error)
}

type gameweekRunner interface {
	ReferenceChanged()
	GameweekInput(gameWeek int) usecase.GameweekInput
	RunGameweek(ctx context.Context, input usecase.GameweekInput) (usecase.GameweekRun, error)
}

// currentGameweekJob refreshes reference data, which also reports the
// current gameweek, then runs the cohort pass for it against the refreshed
// player table.
func currentGameweekJob(reference referenceSyncer, pipeline gameweekRunner, logger *logging.Logger) func(context.Context) error {
	return func(ctx context.Context) error {
		ref, err := reference.Sync(ctx)
		if err != nil {
			return err
		}
		pipeline.ReferenceChanged()
		if ref.CurrentGameWeek < 1 {
			logger.InfoContext(ctx, "no current gameweek, skipping cohort pass")
			return nil
		}
		_, err = pipeline.RunGameweek(ctx, pipeline.GameweekInput(ref.CurrentGameWeek))
		return err
	}
}

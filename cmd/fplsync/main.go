package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/fantasy-insights/internal/app"
	"github.com/riskibarqy/fantasy-insights/internal/config"
	"github.com/riskibarqy/fantasy-insights/internal/observability"
	"github.com/riskibarqy/fantasy-insights/internal/platform/logging"
	"github.com/riskibarqy/fantasy-insights/internal/usecase"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

// passFlags are the persistent overrides for the configured pipeline pass.
type passFlags struct {
	cohortSize int
	leagueID   string
	workers    int
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	flags := &passFlags{}
	root := &cobra.Command{
		Use:          "fplsync",
		Short:        "Resolve analytics and league identities and aggregate top-manager cohorts",
		SilenceUsage: true,
	}
	root.PersistentFlags().IntVar(&flags.cohortSize, "cohort-size", 0, "managers per cohort (default from COHORT_SIZE)")
	root.PersistentFlags().StringVar(&flags.leagueID, "league-id", "", "standings league id (default from STANDINGS_LEAGUE_ID)")
	root.PersistentFlags().IntVar(&flags.workers, "workers", 0, "concurrent manager fetches (default from FETCH_WORKERS)")

	root.AddCommand(
		syncReferenceCmd(),
		buildTeamMappingCmd(),
		buildPlayerMappingCmd(),
		unmappedReportCmd(),
		syncGameweekCmd(flags),
		syncRangeCmd(flags),
		scheduleCmd(flags),
		serveCmd(flags),
	)
	return root
}

// run loads configuration, starts telemetry and hands fn a wired container.
// Everything it opens is closed before it returns.
func run(cmd *cobra.Command, fn func(ctx context.Context, c *app.Container, logger *logging.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}).With("command", cmd.Name())
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return fmt.Errorf("init uptrace: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("uptrace shutdown failed", "error", err)
		}
	}()

	stopProfiling, err := observability.InitPyroscope(cfg, cmd.Name(), logger)
	if err != nil {
		return fmt.Errorf("init pyroscope: %w", err)
	}
	defer func() {
		if err := stopProfiling(); err != nil {
			logger.Warn("pyroscope stop failed", "error", err)
		}
	}()

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := container.Close(); err != nil {
			logger.Warn("close container failed", "error", err)
		}
	}()

	if err := fn(ctx, container, logger); err != nil {
		logger.ErrorContext(ctx, "command failed", "error", err)
		return err
	}
	return nil
}

// pipelineConfig applies the persistent flags the user actually set on top
// of the configured pass.
func pipelineConfig(base usecase.PipelineConfig, flags *passFlags, changed func(name string) bool) usecase.PipelineConfig {
	if changed("cohort-size") {
		base.CohortSize = flags.cohortSize
	}
	if changed("league-id") {
		base.LeagueID = flags.leagueID
	}
	if changed("workers") {
		base.Workers = flags.workers
	}
	return base
}

func flagChanged(cmd *cobra.Command) func(string) bool {
	return func(name string) bool {
		return cmd.Flags().Changed(name)
	}
}

func printJSON(w io.Writer, v any) error {
	raw, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}

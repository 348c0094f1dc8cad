package main

import (
	"context"
	"fmt"

	"github.com/riskibarqy/fantasy-insights/internal/app"
	"github.com/riskibarqy/fantasy-insights/internal/platform/logging"
	"github.com/spf13/cobra"
)

func syncReferenceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync-reference",
		Short: "Refresh league teams and players from the bootstrap endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, c *app.Container, _ *logging.Logger) error {
				result, err := c.ReferenceSync().Sync(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
}

func buildTeamMappingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build-team-mapping",
		Short: "Fuzzy-match analytics teams to league teams and store the mapping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, c *app.Container, _ *logging.Logger) error {
				svc, err := c.TeamMapping()
				if err != nil {
					return err
				}
				result, err := svc.Build(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
}

func buildPlayerMappingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build-player-mapping",
		Short: "Fuzzy-match players within every mapped team pair and store the mapping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, c *app.Container, _ *logging.Logger) error {
				svc, err := c.PlayerMapping()
				if err != nil {
					return err
				}
				result, err := svc.Build(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
}

func unmappedReportCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "unmapped-report",
		Short: "List league players with points that have no analytics mapping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, c *app.Container, _ *logging.Logger) error {
				svc, err := c.MappingReport()
				if err != nil {
					return err
				}
				report, err := svc.Build(ctx)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), report)
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), report.Render())
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

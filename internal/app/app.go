package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/fantasy-insights/external/fpl"
	"github.com/riskibarqy/fantasy-insights/external/sofascore"
	"github.com/riskibarqy/fantasy-insights/internal/config"
	"github.com/riskibarqy/fantasy-insights/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/fantasy-insights/internal/interfaces/httpapi"
	"github.com/riskibarqy/fantasy-insights/internal/platform/logging"
	"github.com/riskibarqy/fantasy-insights/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

// Container owns the database handle, repositories and provider clients
// shared by every command.
type Container struct {
	cfg    config.Config
	logger *logging.Logger
	db     *sqlx.DB

	referenceRepo *postgres.ReferenceRepository
	identityRepo  *postgres.IdentityRepository
	cohortRepo    *postgres.CohortRepository
	league        *fpl.Client
}

func NewContainer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Container, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if err := cfg.RequireDB(); err != nil {
		return nil, err
	}

	db, err := OpenDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &Container{
		cfg:           cfg,
		logger:        logger,
		db:            db,
		referenceRepo: postgres.NewReferenceRepository(db),
		identityRepo:  postgres.NewIdentityRepository(db),
		cohortRepo:    postgres.NewCohortRepository(db),
		league: fpl.NewClient(fpl.ClientConfig{
			BaseURL:        cfg.FPL.BaseURL,
			Timeout:        cfg.FPL.Timeout,
			MaxRetries:     cfg.FPL.MaxRetries,
			RequestDelay:   cfg.FPL.RequestDelay,
			CircuitBreaker: cfg.FPL.Circuit,
			Logger:         logger.Named("fpl"),
		}),
	}, nil
}

// OpenDB opens a traced postgres pool and verifies it with a ping.
func OpenDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := DatabaseURL(cfg)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func (c *Container) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *Container) Config() config.Config {
	return c.cfg
}

func (c *Container) ReferenceSync() *usecase.ReferenceSyncService {
	return usecase.NewReferenceSyncService(c.league, c.referenceRepo, c.logger.Named("reference"))
}

func (c *Container) TeamMapping() (*usecase.TeamMappingService, error) {
	analytics, mappingCfg, err := c.mappingDeps()
	if err != nil {
		return nil, err
	}
	return usecase.NewTeamMappingService(analytics, c.referenceRepo, c.identityRepo, mappingCfg, c.logger.Named("team_mapping")), nil
}

func (c *Container) PlayerMapping() (*usecase.PlayerMappingService, error) {
	analytics, mappingCfg, err := c.mappingDeps()
	if err != nil {
		return nil, err
	}
	return usecase.NewPlayerMappingService(analytics, c.referenceRepo, c.identityRepo, mappingCfg, c.logger.Named("player_mapping")), nil
}

func (c *Container) MappingReport() (*usecase.MappingReportService, error) {
	analytics, err := c.analyticsClient()
	if err != nil {
		return nil, err
	}
	return usecase.NewMappingReportService(analytics, c.referenceRepo, c.identityRepo, c.logger.Named("mapping_report")), nil
}

func (c *Container) Pipeline(cfg usecase.PipelineConfig) *usecase.PipelineService {
	fetcher := usecase.NewSnapshotFetcher(c.league, c.referenceRepo, c.logger.Named("fetcher"))
	return usecase.NewPipelineService(fetcher, c.cohortRepo, cfg, c.logger.Named("pipeline"))
}

func (c *Container) Summaries() *usecase.SummaryService {
	return usecase.NewSummaryService(c.cohortRepo, c.cfg.SummaryCacheTTL)
}

// PipelineConfig is the configured pass shape before CLI flag overrides.
func (c *Container) PipelineConfig() usecase.PipelineConfig {
	return usecase.PipelineConfig{
		LeagueID:   c.cfg.StandingsLeagueID,
		CohortSize: c.cfg.CohortSize,
		Workers:    c.cfg.FetchWorkers,
	}
}

func (c *Container) analyticsClient() (*sofascore.Client, error) {
	if err := c.cfg.RequireAnalytics(); err != nil {
		return nil, err
	}
	return sofascore.NewClient(sofascore.ClientConfig{
		BaseURL:        c.cfg.SofaScore.BaseURL,
		APIKey:         c.cfg.SofaScoreAPIKey,
		APIHost:        c.cfg.SofaScoreAPIHost,
		SeasonID:       c.cfg.SofaScoreSeasonID,
		TournamentID:   c.cfg.SofaScoreTournamentID,
		Timeout:        c.cfg.SofaScore.Timeout,
		MaxRetries:     c.cfg.SofaScore.MaxRetries,
		RequestDelay:   c.cfg.SofaScore.RequestDelay,
		CircuitBreaker: c.cfg.SofaScore.Circuit,
		Logger:         c.logger.Named("sofascore"),
	}), nil
}

func (c *Container) mappingDeps() (*sofascore.Client, usecase.MappingConfig, error) {
	analytics, err := c.analyticsClient()
	if err != nil {
		return nil, usecase.MappingConfig{}, err
	}
	overrides, err := usecase.LoadMappingOverrides(c.cfg.MappingOverridesFile)
	if err != nil {
		return nil, usecase.MappingConfig{}, err
	}
	return analytics, usecase.MappingConfig{
		TeamThreshold:   c.cfg.TeamMatchThreshold,
		PlayerThreshold: c.cfg.PlayerMatchThreshold,
		SquadWorkers:    c.cfg.FetchWorkers,
		Overrides:       overrides,
		ExportDir:       c.cfg.MappingExportDir,
	}, nil
}

// NewHTTPServer serves the read-only summary API.
func NewHTTPServer(cfg config.Config, summaries httpapi.SummaryReader, logger *logging.Logger) (*http.Server, error) {
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	handler := httpapi.NewHandler(summaries, logger)
	return &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/fantasy-insights/internal/platform/logging"
	"github.com/riskibarqy/fantasy-insights/internal/platform/resilience"
	"github.com/robfig/cron/v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// ProviderConfig holds the HTTP settings shared by remote API clients.
type ProviderConfig struct {
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
	RequestDelay time.Duration
	Circuit      resilience.BreakerConfig
}

// Config stores runtime configuration for the pipeline and its read API.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	LogLevel       logging.Level
	LogFormat      string

	DBURL                   string
	DBDisablePreparedBinary bool

	FPL                   ProviderConfig
	SofaScore             ProviderConfig
	SofaScoreAPIKey       string
	SofaScoreAPIHost      string
	SofaScoreSeasonID     int64
	SofaScoreTournamentID int64

	CohortSize           int
	StandingsLeagueID    string
	TeamMatchThreshold   int
	PlayerMatchThreshold int
	FetchWorkers         int
	MappingOverridesFile string
	MappingExportDir     string
	ScheduleCron         string

	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	SummaryCacheTTL    time.Duration
	CORSAllowedOrigins []string

	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

// Load reads the environment, after merging an optional .env file from the
// working directory. Variables already set in the environment win.
func Load() (Config, error) {
	_ = godotenv.Load()

	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:               appEnv,
		ServiceName:          strings.TrimSpace(getEnv("SERVICE_NAME", "fantasy-insights")),
		ServiceVersion:       strings.TrimSpace(getEnv("SERVICE_VERSION", "dev")),
		LogLevel:             parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		LogFormat:            strings.ToLower(strings.TrimSpace(getEnv("LOG_FORMAT", logging.FormatJSON))),
		DBURL:                strings.TrimSpace(getEnv("DB_URL", "")),
		SofaScoreAPIKey:      strings.TrimSpace(getEnv("SOFASCORE_API_KEY", "")),
		SofaScoreAPIHost:     strings.TrimSpace(getEnv("SOFASCORE_API_HOST", "")),
		StandingsLeagueID:    strings.TrimSpace(getEnv("STANDINGS_LEAGUE_ID", "314")),
		MappingOverridesFile: strings.TrimSpace(getEnv("MAPPING_OVERRIDES_FILE", "")),
		MappingExportDir:     strings.TrimSpace(getEnv("MAPPING_EXPORT_DIR", "")),
		ScheduleCron:         strings.TrimSpace(getEnv("SCHEDULE_CRON", "0 * * * *")),
		HTTPAddr:             strings.TrimSpace(getEnv("HTTP_ADDR", ":8080")),
		UptraceDSN:           strings.TrimSpace(getEnv("UPTRACE_DSN", "")),
		PyroscopeAuthToken:   getEnv("PYROSCOPE_AUTH_TOKEN", ""),
	}
	if cfg.LogFormat != logging.FormatJSON && cfg.LogFormat != logging.FormatConsole {
		return Config{}, fmt.Errorf("invalid LOG_FORMAT %q: valid values are %s, %s", cfg.LogFormat, logging.FormatJSON, logging.FormatConsole)
	}
	if cfg.StandingsLeagueID == "" {
		return Config{}, fmt.Errorf("STANDINGS_LEAGUE_ID cannot be empty")
	}

	if cfg.DBDisablePreparedBinary, err = envBool("DB_DISABLE_PREPARED_BINARY_RESULT", true); err != nil {
		return Config{}, err
	}

	if cfg.FPL, err = loadProvider("FPL", "https://fantasy.premierleague.com/api", 200*time.Millisecond); err != nil {
		return Config{}, err
	}
	sofaDefaultURL := ""
	if cfg.SofaScoreAPIHost != "" {
		sofaDefaultURL = "https://" + cfg.SofaScoreAPIHost + "/v1"
	}
	if cfg.SofaScore, err = loadProvider("SOFASCORE", sofaDefaultURL, 500*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.SofaScoreSeasonID, err = envPositiveInt64("SOFASCORE_SEASON_ID", 76986); err != nil {
		return Config{}, err
	}
	if cfg.SofaScoreTournamentID, err = envPositiveInt64("SOFASCORE_TOURNAMENT_ID", 17); err != nil {
		return Config{}, err
	}

	if cfg.CohortSize, err = envInt("COHORT_SIZE", 100, 1); err != nil {
		return Config{}, err
	}
	if cfg.TeamMatchThreshold, err = envThreshold("TEAM_MATCH_THRESHOLD", 80); err != nil {
		return Config{}, err
	}
	if cfg.PlayerMatchThreshold, err = envThreshold("PLAYER_MATCH_THRESHOLD", 75); err != nil {
		return Config{}, err
	}
	if cfg.FetchWorkers, err = envInt("FETCH_WORKERS", 1, 1); err != nil {
		return Config{}, err
	}
	if _, err := cron.ParseStandard(cfg.ScheduleCron); err != nil {
		return Config{}, fmt.Errorf("parse SCHEDULE_CRON: %w", err)
	}

	if cfg.ReadTimeout, err = envDuration("APP_READ_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout, err = envDuration("APP_WRITE_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.SummaryCacheTTL, err = envDuration("SUMMARY_CACHE_TTL", time.Minute); err != nil {
		return Config{}, err
	}

	cfg.CORSAllowedOrigins = splitCSV(getEnv("CORS_ALLOWED_ORIGINS", ""))

	if cfg.UptraceEnabled, err = envBool("UPTRACE_ENABLED", false); err != nil {
		return Config{}, err
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	if cfg.PyroscopeEnabled, err = envBool("PYROSCOPE_ENABLED", false); err != nil {
		return Config{}, err
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	cfg.PyroscopeBasicAuthUser = getEnv("PYROSCOPE_BASIC_AUTH_USER", "")
	cfg.PyroscopeBasicAuthPassword = getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")
	if cfg.PyroscopeUploadRate, err = envDuration("PYROSCOPE_UPLOAD_RATE", 15*time.Second); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// RequireDB reports whether database-backed commands can run.
func (c Config) RequireDB() error {
	if c.DBURL == "" {
		return fmt.Errorf("DB_URL is required")
	}
	return nil
}

// RequireAnalytics reports whether the analytics provider is configured.
func (c Config) RequireAnalytics() error {
	if c.SofaScoreAPIKey == "" || c.SofaScoreAPIHost == "" {
		return fmt.Errorf("SOFASCORE_API_KEY and SOFASCORE_API_HOST are required")
	}
	if c.SofaScore.BaseURL == "" {
		return fmt.Errorf("SOFASCORE_BASE_URL cannot be empty")
	}
	return nil
}

func loadProvider(prefix, defaultURL string, defaultDelay time.Duration) (ProviderConfig, error) {
	var (
		out ProviderConfig
		err error
	)
	out.BaseURL = strings.TrimRight(strings.TrimSpace(getEnv(prefix+"_BASE_URL", defaultURL)), "/")
	if out.Timeout, err = envDuration(prefix+"_TIMEOUT", 15*time.Second); err != nil {
		return ProviderConfig{}, err
	}
	if out.MaxRetries, err = envInt(prefix+"_MAX_RETRIES", 2, 0); err != nil {
		return ProviderConfig{}, err
	}
	delay, err := time.ParseDuration(getEnv(prefix+"_REQUEST_DELAY", defaultDelay.String()))
	if err != nil {
		return ProviderConfig{}, fmt.Errorf("parse %s_REQUEST_DELAY: %w", prefix, err)
	}
	if delay < 0 {
		return ProviderConfig{}, fmt.Errorf("%s_REQUEST_DELAY must be >= 0", prefix)
	}
	out.RequestDelay = delay

	if out.Circuit.Enabled, err = envBool(prefix+"_CIRCUIT_ENABLED", true); err != nil {
		return ProviderConfig{}, err
	}
	if out.Circuit.FailureThreshold, err = envInt(prefix+"_CIRCUIT_FAILURE_COUNT", 5, 1); err != nil {
		return ProviderConfig{}, err
	}
	if out.Circuit.OpenTimeout, err = envDuration(prefix+"_CIRCUIT_OPEN_TIMEOUT", 15*time.Second); err != nil {
		return ProviderConfig{}, err
	}
	if out.Circuit.HalfOpenMaxReq, err = envInt(prefix+"_CIRCUIT_HALF_OPEN_MAX_REQ", 2, 1); err != nil {
		return ProviderConfig{}, err
	}
	return out, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func envBool(key string, fallback bool) (bool, error) {
	out, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func envInt(key string, fallback, minimum int) (int, error) {
	out, err := strconv.Atoi(strings.TrimSpace(getEnv(key, strconv.Itoa(fallback))))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out < minimum {
		return 0, fmt.Errorf("%s must be >= %d", key, minimum)
	}
	return out, nil
}

func envPositiveInt64(key string, fallback int64) (int64, error) {
	out, err := strconv.ParseInt(strings.TrimSpace(getEnv(key, strconv.FormatInt(fallback, 10))), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func envThreshold(key string, fallback int) (int, error) {
	out, err := envInt(key, fallback, 0)
	if err != nil {
		return 0, err
	}
	if out > 100 {
		return 0, fmt.Errorf("%s must be <= 100", key)
	}
	return out, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback.String()))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if value := strings.TrimSpace(part); value != "" {
			out = append(out, value)
		}
	}
	return out
}

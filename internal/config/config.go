// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes settings for the
// HTTP server, logging, storage, the third-party place/weather providers,
// itinerary planning, feedback scoring, rate limiting and observability.
//
// Values are decoded with github.com/caarlos0/env struct tags; Load then
// normalizes and validates the result. The returned Config is passed
// explicitly to every constructor that needs it.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool          `env:"ENABLE_HSTS" envDefault:"false"`
	HSTSMaxAge time.Duration `env:"HSTS_MAX_AGE" envDefault:"4320h"`
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	Endpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	Insecure    bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	ServiceName string  `env:"OTEL_SERVICE_NAME" envDefault:"go-travel-backend"`
	SampleRatio float64 `env:"OTEL_TRACES_SAMPLER_ARG" envDefault:"1.0"`
}

// ProviderConfig configures the outbound places and weather clients.
type ProviderConfig struct {
	PlacesAPIKey   string `env:"GOOGLE_PLACES_API_KEY"`
	PlacesBaseURL  string `env:"GOOGLE_PLACES_BASE_URL" envDefault:"https://maps.googleapis.com/maps/api/place"`
	PlacesLanguage string `env:"GOOGLE_PLACES_LANGUAGE" envDefault:"en"`
	WeatherAPIKey  string `env:"WEATHER_API_KEY"`
	WeatherBaseURL string `env:"WEATHER_BASE_URL" envDefault:"https://api.openweathermap.org/data/2.5"`

	PlacesPerMinute  int `env:"GOOGLE_API_REQUESTS_PER_MINUTE" envDefault:"60"`
	WeatherPerMinute int `env:"WEATHER_API_REQUESTS_PER_MINUTE" envDefault:"60"`

	CacheTTL     time.Duration `env:"PROVIDER_CACHE_TTL" envDefault:"30m"`
	FetchTimeout time.Duration `env:"PROVIDER_FETCH_TIMEOUT" envDefault:"10s"`
}

// PlannerConfig bounds itinerary assembly.
type PlannerConfig struct {
	MinScore          float64       `env:"PLANNER_MIN_SCORE" envDefault:"30"`
	MaxCandidates     int           `env:"MAX_RECOMMENDATIONS_PER_CATEGORY" envDefault:"5"`
	KeepPerCategory   int           `env:"PLANNER_KEEP_PER_CATEGORY" envDefault:"2"`
	CategoriesPerSlot int           `env:"PLANNER_CATEGORIES_PER_SLOT" envDefault:"2"`
	DefaultTripDays   int           `env:"DEFAULT_TRIP_DURATION" envDefault:"5"`
	MaxTripDays       int           `env:"MAX_TRIP_DURATION" envDefault:"14"`
	ForecastDays      int           `env:"WEATHER_FORECAST_DAYS" envDefault:"5"`
	StartOffset       time.Duration `env:"PLANNER_START_OFFSET" envDefault:"168h"`
	FetchConcurrency  int           `env:"PLANNER_FETCH_CONCURRENCY" envDefault:"8"`
}

// FeedbackConfig configures scoring of user feedback.
type FeedbackConfig struct {
	PointsPerStar      int           `env:"DEFAULT_FEEDBACK_POINTS" envDefault:"2"`
	BonusThreshold     int           `env:"PROMPT_RIGHTS_THRESHOLD" envDefault:"50"`
	MaxHistory         int           `env:"MAX_CONVERSATION_HISTORY" envDefault:"50"`
	PreferenceTimeout  time.Duration `env:"PREFERENCE_UPDATE_TIMEOUT" envDefault:"5s"`
	ScoreUpdateRetries int           `env:"SCORE_UPDATE_RETRIES" envDefault:"5"`
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        `env:"PORT" envDefault:"8080"`
	ReadTimeout       time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"10s"`
	WriteTimeout      time.Duration `env:"WRITE_TIMEOUT" envDefault:"60s"` // plan generation fans out to providers
	IdleTimeout       time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	MaxHeaderBytes    int           `env:"MAX_HEADER_BYTES" envDefault:"1048576"`
	GinMode           string        `env:"GIN_MODE" envDefault:"release"`

	// Logging / Docs
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty      bool   `env:"LOG_PRETTY" envDefault:"false"`
	SwaggerEnabled bool   `env:"SWAGGER_ENABLED" envDefault:"false"`
	APIBasePath    string `env:"API_BASE_PATH" envDefault:"/api/v1"`

	// Storage
	DBDriver      string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBPath        string `env:"DB_PATH" envDefault:"travel.db"`
	DatabaseURL   string `env:"DATABASE_URL"`
	KnowledgePath string `env:"KNOWLEDGE_PATH" envDefault:"data/travel_tips.md"`

	Providers ProviderConfig
	Planner   PlannerConfig
	Feedback  FeedbackConfig

	// Rate limiting
	RateRPS   float64 `env:"RATE_RPS" envDefault:"5"`
	RateBurst int     `env:"RATE_BURST" envDefault:"10"`

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	normalize(&cfg)
	return cfg, Validate(cfg)
}

func normalize(cfg *Config) {
	cfg.GinMode = strings.ToLower(strings.TrimSpace(cfg.GinMode))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	cfg.APIBasePath = normalizeBasePath(cfg.APIBasePath)
	cfg.CORS.AllowedOrigins = trimAll(cfg.CORS.AllowedOrigins)
	cfg.Providers.PlacesBaseURL = strings.TrimRight(cfg.Providers.PlacesBaseURL, "/")
	cfg.Providers.WeatherBaseURL = strings.TrimRight(cfg.Providers.WeatherBaseURL, "/")

	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if cfg.DBDriver == "postgresql" {
		cfg.DBDriver = "postgres"
	}
}

// Validate reports the first invalid setting in cfg.
func Validate(cfg Config) error {
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return errors.New("MAX_HEADER_BYTES must be > 0")
	}

	switch cfg.DBDriver {
	case "sqlite":
		if strings.TrimSpace(cfg.DBPath) == "" {
			return errors.New("DB_PATH must not be empty")
		}
	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return errors.New("DB_DRIVER must be one of: sqlite, postgres")
	}

	p := cfg.Providers
	if p.PlacesPerMinute < 1 || p.WeatherPerMinute < 1 {
		return errors.New("provider requests per minute must be >= 1")
	}
	if p.CacheTTL < 0 {
		return errors.New("PROVIDER_CACHE_TTL must be >= 0")
	}
	if p.FetchTimeout <= 0 || p.FetchTimeout > 10*time.Second {
		return errors.New("PROVIDER_FETCH_TIMEOUT must be in (0s,10s]")
	}

	pl := cfg.Planner
	if pl.MinScore < 0 {
		return errors.New("PLANNER_MIN_SCORE must be >= 0")
	}
	if pl.MaxCandidates < 1 || pl.KeepPerCategory < 1 || pl.CategoriesPerSlot < 1 {
		return errors.New("planner limits must be >= 1")
	}
	// At most four recommendations per slot.
	if pl.KeepPerCategory > 2 || pl.CategoriesPerSlot > 2 {
		return errors.New("PLANNER_KEEP_PER_CATEGORY and PLANNER_CATEGORIES_PER_SLOT must be <= 2")
	}
	if pl.MaxTripDays < 1 || pl.DefaultTripDays < 1 || pl.DefaultTripDays > pl.MaxTripDays {
		return errors.New("DEFAULT_TRIP_DURATION must be in [1, MAX_TRIP_DURATION]")
	}
	if pl.ForecastDays < 0 {
		return errors.New("WEATHER_FORECAST_DAYS must be >= 0")
	}
	if pl.FetchConcurrency < 1 {
		return errors.New("PLANNER_FETCH_CONCURRENCY must be >= 1")
	}

	fb := cfg.Feedback
	if fb.PointsPerStar < 1 {
		return errors.New("DEFAULT_FEEDBACK_POINTS must be >= 1")
	}
	// A single feedback (max 5 stars) may cross at most one boundary.
	if fb.BonusThreshold <= 5*fb.PointsPerStar {
		return errors.New("PROMPT_RIGHTS_THRESHOLD must exceed 5*DEFAULT_FEEDBACK_POINTS")
	}
	if fb.MaxHistory < 1 {
		return errors.New("MAX_CONVERSATION_HISTORY must be >= 1")
	}
	if fb.PreferenceTimeout <= 0 {
		return errors.New("PREFERENCE_UPDATE_TIMEOUT must be > 0")
	}
	if fb.ScoreUpdateRetries < 1 {
		return errors.New("SCORE_UPDATE_RETRIES must be >= 1")
	}

	if cfg.RateRPS < 0 {
		return errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	return nil
}

func trimAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}

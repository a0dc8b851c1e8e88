package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/autopilot-backend/internal/modules/optimization"
	"github.com/yungbote/autopilot-backend/internal/platform/envutil"
)

type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

type HTTPConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type AuthConfig struct {
	// JWTSecret empty disables authentication on /api.
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
}

type WorkerConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Concurrency  int           `yaml:"concurrency"`
	PollInterval time.Duration `yaml:"poll_interval"`
	MaxAttempts  int           `yaml:"max_attempts"`
	RetryDelay   time.Duration `yaml:"retry_delay"`
}

type ScheduleConfig struct {
	OptimizationCycle time.Duration `yaml:"optimization_cycle"`
	ABTestsAnalyze    time.Duration `yaml:"ab_tests_analyze"`
	PromptsOptimize   time.Duration `yaml:"prompts_optimize"`
}

type TelemetryConfig struct {
	MetricsEnabled   bool          `yaml:"metrics_enabled"`
	ScrapeInterval   time.Duration `yaml:"scrape_interval"`
	TracingEnabled   bool          `yaml:"tracing_enabled"`
	OTLPEndpoint     string        `yaml:"otlp_endpoint"`
	OTLPHeaders      string        `yaml:"otlp_headers"`
	OTLPInsecure     bool          `yaml:"otlp_insecure"`
	TraceSampleRatio float64       `yaml:"trace_sample_ratio"`
	HealthCacheTTL   time.Duration `yaml:"health_cache_ttl"`
}

type Config struct {
	Environment  string              `yaml:"environment"`
	Version      string              `yaml:"version"`
	Database     DatabaseConfig      `yaml:"database"`
	Redis        RedisConfig         `yaml:"redis"`
	HTTP         HTTPConfig          `yaml:"http"`
	Auth         AuthConfig          `yaml:"auth"`
	Worker       WorkerConfig        `yaml:"worker"`
	Schedule     ScheduleConfig      `yaml:"schedule"`
	Telemetry    TelemetryConfig     `yaml:"telemetry"`
	Optimization optimization.Config `yaml:"optimization"`
}

func DefaultConfig() Config {
	return Config{
		Environment: "development",
		Database: DatabaseConfig{
			Driver:          "postgres",
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			AutoMigrate:     true,
		},
		Redis:  RedisConfig{Channel: "autopilot.decisions"},
		HTTP:   HTTPConfig{Addr: ":8080"},
		Auth:   AuthConfig{Issuer: "autopilot"},
		Worker: WorkerConfig{Enabled: true, Concurrency: 2, PollInterval: time.Second, MaxAttempts: 5, RetryDelay: 30 * time.Second},
		Schedule: ScheduleConfig{
			OptimizationCycle: 24 * time.Hour,
			ABTestsAnalyze:    6 * time.Hour,
			PromptsOptimize:   7 * 24 * time.Hour,
		},
		Telemetry: TelemetryConfig{
			MetricsEnabled:   true,
			ScrapeInterval:   15 * time.Second,
			TraceSampleRatio: 0.1,
			HealthCacheTTL:   5 * time.Second,
		},
		Optimization: optimization.DefaultConfig(),
	}
}

// LoadConfig layers defaults, then the YAML file named by CONFIG_FILE, then
// environment variables.
func LoadConfig() (Config, error) {
	return LoadConfigFile(envutil.String("CONFIG_FILE", ""))
}

// LoadConfigFile is LoadConfig with an explicit file; an empty path skips the
// YAML layer.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()
	if path = strings.TrimSpace(path); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) {
	cfg.Environment = envutil.String("APP_ENV", cfg.Environment)
	cfg.Version = envutil.String("APP_VERSION", cfg.Version)

	cfg.Database.Driver = envutil.String("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.DSN = envutil.String("DATABASE_URL", cfg.Database.DSN)
	cfg.Database.MaxOpenConns = envutil.Int("DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = envutil.Int("DB_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)
	cfg.Database.ConnMaxLifetime = envutil.Duration("DB_CONN_MAX_LIFETIME", cfg.Database.ConnMaxLifetime)
	cfg.Database.AutoMigrate = envutil.Bool("DB_AUTO_MIGRATE", cfg.Database.AutoMigrate)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = envutil.String("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = envutil.Int("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.Channel = envutil.String("REDIS_DECISION_CHANNEL", cfg.Redis.Channel)

	if port := envutil.String("PORT", ""); port != "" {
		cfg.HTTP.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	cfg.HTTP.CORSOrigins = envutil.List("CORS_ORIGINS", cfg.HTTP.CORSOrigins)

	cfg.Auth.JWTSecret = envutil.String("JWT_SECRET_KEY", cfg.Auth.JWTSecret)
	cfg.Auth.Issuer = envutil.String("JWT_ISSUER", cfg.Auth.Issuer)

	cfg.Worker.Enabled = envutil.Bool("WORKER_ENABLED", cfg.Worker.Enabled)
	cfg.Worker.Concurrency = envutil.Int("WORKER_CONCURRENCY", cfg.Worker.Concurrency)
	cfg.Worker.PollInterval = envutil.Duration("WORKER_POLL_INTERVAL", cfg.Worker.PollInterval)
	cfg.Worker.MaxAttempts = envutil.Int("WORKER_MAX_ATTEMPTS", cfg.Worker.MaxAttempts)
	cfg.Worker.RetryDelay = envutil.Duration("WORKER_RETRY_DELAY", cfg.Worker.RetryDelay)

	cfg.Schedule.OptimizationCycle = envutil.Duration("SCHEDULE_OPTIMIZATION_CYCLE", cfg.Schedule.OptimizationCycle)
	cfg.Schedule.ABTestsAnalyze = envutil.Duration("SCHEDULE_AB_TESTS_ANALYZE", cfg.Schedule.ABTestsAnalyze)
	cfg.Schedule.PromptsOptimize = envutil.Duration("SCHEDULE_PROMPTS_OPTIMIZE", cfg.Schedule.PromptsOptimize)

	cfg.Telemetry.MetricsEnabled = envutil.Bool("METRICS_ENABLED", cfg.Telemetry.MetricsEnabled)
	cfg.Telemetry.ScrapeInterval = envutil.Duration("METRICS_SCRAPE_INTERVAL", cfg.Telemetry.ScrapeInterval)
	cfg.Telemetry.TracingEnabled = envutil.Bool("OTEL_ENABLED", cfg.Telemetry.TracingEnabled)
	cfg.Telemetry.OTLPEndpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
	cfg.Telemetry.OTLPHeaders = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", cfg.Telemetry.OTLPHeaders)
	cfg.Telemetry.OTLPInsecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Telemetry.OTLPInsecure)
	cfg.Telemetry.TraceSampleRatio = envutil.Float("OTEL_SAMPLER_RATIO", cfg.Telemetry.TraceSampleRatio)
	cfg.Telemetry.HealthCacheTTL = envutil.Duration("HEALTH_CACHE_TTL", cfg.Telemetry.HealthCacheTTL)

	o := &cfg.Optimization
	o.KillThreshold = envutil.Float("KILL_THRESHOLD", o.KillThreshold)
	o.ScaleThreshold = envutil.Float("SCALE_THRESHOLD", o.ScaleThreshold)
	o.DeployConfidence = envutil.Float("AB_DEPLOY_CONFIDENCE", o.DeployConfidence)
	o.Costs.VoicePerAsset = envutil.Float("COST_VOICE_PER_ASSET", o.Costs.VoicePerAsset)
	o.Costs.VideoPerAsset = envutil.Float("COST_VIDEO_PER_ASSET", o.Costs.VideoPerAsset)
	o.Costs.PublishPerAsset = envutil.Float("COST_PUBLISH_PER_ASSET", o.Costs.PublishPerAsset)
	o.Concurrency = envutil.Int("OPTIMIZATION_CONCURRENCY", o.Concurrency)
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Optimization.DeployConfidence < 50 || c.Optimization.DeployConfidence > 100 {
		return fmt.Errorf("deploy confidence must be within [50,100], got %v", c.Optimization.DeployConfidence)
	}
	if c.Optimization.Costs.UnitCost() < 0 {
		return fmt.Errorf("asset costs must not be negative")
	}
	return nil
}

// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Ingest source kinds.
const (
	SourceFile = "file"
	SourceHTTP = "http"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	Matching  MatchingConfig  `mapstructure:"matching"`
	Arbitrage ArbitrageConfig `mapstructure:"arbitrage"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Health    HealthConfig    `mapstructure:"health"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// IngestConfig selects where normalized market records come from.
type IngestConfig struct {
	Source            string        `mapstructure:"source"` // file or http
	Path              string        `mapstructure:"path"`
	URL               string        `mapstructure:"url"`
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// MatchingConfig holds identity matcher settings.
type MatchingConfig struct {
	MinMatchScore float64 `mapstructure:"min_match_score"`
	CompareAll    bool    `mapstructure:"compare_all"`
	HistorySize   int     `mapstructure:"history_size"`
}

// SlippageConfig holds the per liquidity tier slippage table.
type SlippageConfig struct {
	DeepThreshold     float64 `mapstructure:"deep_threshold"`
	ModerateThreshold float64 `mapstructure:"moderate_threshold"`
	DeepRate          float64 `mapstructure:"deep_rate"`
	ModerateRate      float64 `mapstructure:"moderate_rate"`
	ShallowRate       float64 `mapstructure:"shallow_rate"`
}

// ArbitrageConfig holds profitability and ranking configuration.
type ArbitrageConfig struct {
	MinROIPercent          float64            `mapstructure:"min_roi_percent"`
	MinSafetyMarginPercent float64            `mapstructure:"min_safety_margin_percent"`
	ResultLimit            int                `mapstructure:"result_limit"`
	PositionSize           float64            `mapstructure:"position_size"`
	Workers                int                `mapstructure:"workers"`
	DefaultTakerFee        float64            `mapstructure:"default_taker_fee"`
	DefaultWithdrawalFee   float64            `mapstructure:"default_withdrawal_fee"`
	TakerFees              map[string]float64 `mapstructure:"taker_fees"`
	WithdrawalFees         map[string]float64 `mapstructure:"withdrawal_fees"`
	PartialFillRate        float64            `mapstructure:"partial_fill_rate"`
	Slippage               SlippageConfig     `mapstructure:"slippage"`
	TUIMode                bool               `mapstructure:"-"` // Set at runtime, not from config file
}

// MinROIDecimal returns the global minimum ROI percent as decimal.Decimal.
func (c *ArbitrageConfig) MinROIDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinROIPercent)
}

// MinSafetyMarginDecimal returns the profitability gate as decimal.Decimal.
func (c *ArbitrageConfig) MinSafetyMarginDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinSafetyMarginPercent)
}

// PositionSizeDecimal returns the notional position size as decimal.Decimal.
func (c *ArbitrageConfig) PositionSizeDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.PositionSize)
}

// TakerFeesDecimal returns the configured taker fee overrides keyed by
// lower-case platform id.
func (c *ArbitrageConfig) TakerFeesDecimal() map[string]decimal.Decimal {
	return toDecimalMap(c.TakerFees)
}

// WithdrawalFeesDecimal returns the configured withdrawal fee overrides keyed
// by lower-case platform id.
func (c *ArbitrageConfig) WithdrawalFeesDecimal() map[string]decimal.Decimal {
	return toDecimalMap(c.WithdrawalFees)
}

func toDecimalMap(in map[string]float64) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(in))
	for k, v := range in {
		out[strings.ToLower(k)] = decimal.NewFromFloat(v)
	}
	return out
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	ServiceName    string  `mapstructure:"service_name"`
	TraceExporter  string  `mapstructure:"trace_exporter"` // zipkin, otlp-grpc, otlp-http, console
	OTLPEndpoint   string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string  `mapstructure:"otlp_headers"`
	PrometheusPort int     `mapstructure:"prometheus_port"`
	SampleRate     float64 `mapstructure:"sample_rate"`

	// Metrics are always served for Prometheus. A non-empty endpoint also
	// pushes them to an OTLP gRPC collector.
	OTLPMetricsEndpoint string `mapstructure:"otlp_metrics_endpoint"`
	OTLPInsecure        bool   `mapstructure:"otlp_insecure"`
}

// HealthConfig holds the health server settings.
type HealthConfig struct {
	Port int `mapstructure:"port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("ARB")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "ARB_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "ARB_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "ARB_LOG_LEVEL", "LOG_LEVEL")

	// Ingest
	v.BindEnv("ingest.source", "ARB_INGEST_SOURCE")
	v.BindEnv("ingest.path", "ARB_INGEST_PATH")
	v.BindEnv("ingest.url", "ARB_INGEST_URL")
	v.BindEnv("ingest.poll_interval", "ARB_POLL_INTERVAL")

	// Matching
	v.BindEnv("matching.min_match_score", "ARB_MIN_MATCH_SCORE")
	v.BindEnv("matching.compare_all", "ARB_COMPARE_ALL")

	// Arbitrage
	v.BindEnv("arbitrage.min_roi_percent", "ARB_MIN_ROI_PERCENT")
	v.BindEnv("arbitrage.result_limit", "ARB_RESULT_LIMIT")
	v.BindEnv("arbitrage.position_size", "ARB_POSITION_SIZE")

	// Telemetry
	v.BindEnv("telemetry.enabled", "ARB_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "ARB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "ARB_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv("telemetry.trace_exporter", "ARB_OTEL_TRACE_EXPORTER")
	v.BindEnv("telemetry.otlp_metrics_endpoint", "ARB_OTEL_METRICS_ENDPOINT", "OTEL_EXPORTER_OTLP_METRICS_ENDPOINT")
	v.BindEnv("telemetry.otlp_insecure", "ARB_OTEL_INSECURE")

	// Health
	v.BindEnv("health.port", "ARB_HEALTH_PORT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "predarb")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Ingest defaults
	v.SetDefault("ingest.source", SourceFile)
	v.SetDefault("ingest.path", "markets.json")
	v.SetDefault("ingest.poll_interval", "30s")
	v.SetDefault("ingest.timeout", "10s")
	v.SetDefault("ingest.requests_per_minute", 30)

	// Matching defaults
	v.SetDefault("matching.min_match_score", 0.95)
	v.SetDefault("matching.compare_all", false)
	v.SetDefault("matching.history_size", 1000)

	// Arbitrage defaults
	v.SetDefault("arbitrage.min_roi_percent", 0.25)
	v.SetDefault("arbitrage.min_safety_margin_percent", 0.25)
	v.SetDefault("arbitrage.result_limit", 50)
	v.SetDefault("arbitrage.position_size", 100)
	v.SetDefault("arbitrage.workers", 4)
	v.SetDefault("arbitrage.default_taker_fee", 0.02)
	v.SetDefault("arbitrage.default_withdrawal_fee", 0.001)
	v.SetDefault("arbitrage.partial_fill_rate", 0.005)
	v.SetDefault("arbitrage.slippage.deep_threshold", 100000)
	v.SetDefault("arbitrage.slippage.moderate_threshold", 20000)
	v.SetDefault("arbitrage.slippage.deep_rate", 0.005)
	v.SetDefault("arbitrage.slippage.moderate_rate", 0.01)
	v.SetDefault("arbitrage.slippage.shallow_rate", 0.025)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "predarb")
	v.SetDefault("telemetry.trace_exporter", "zipkin")
	v.SetDefault("telemetry.prometheus_port", 9090)
	v.SetDefault("telemetry.sample_rate", 1.0)
	v.SetDefault("telemetry.otlp_metrics_endpoint", "")
	v.SetDefault("telemetry.otlp_insecure", true)

	// Health defaults
	v.SetDefault("health.port", 8081)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Ingest.Source {
	case SourceFile:
		if c.Ingest.Path == "" {
			return fmt.Errorf("ingest.path is required for file source")
		}
	case SourceHTTP:
		if c.Ingest.URL == "" {
			return fmt.Errorf("ingest.url is required for http source")
		}
	default:
		return fmt.Errorf("invalid ingest.source: %q", c.Ingest.Source)
	}
	if c.Ingest.PollInterval <= 0 {
		return fmt.Errorf("ingest.poll_interval must be positive")
	}
	if c.Matching.MinMatchScore < 0 || c.Matching.MinMatchScore > 1 {
		return fmt.Errorf("matching.min_match_score must be within [0,1]: %v", c.Matching.MinMatchScore)
	}
	if c.Arbitrage.ResultLimit < 0 {
		return fmt.Errorf("arbitrage.result_limit cannot be negative")
	}
	if c.Arbitrage.Workers < 1 {
		return fmt.Errorf("arbitrage.workers must be at least 1")
	}
	for platform, fee := range c.Arbitrage.TakerFees {
		if fee < 0 || fee >= 1 {
			return fmt.Errorf("arbitrage.taker_fees.%s out of range: %v", platform, fee)
		}
	}
	for platform, fee := range c.Arbitrage.WithdrawalFees {
		if fee < 0 || fee >= 1 {
			return fmt.Errorf("arbitrage.withdrawal_fees.%s out of range: %v", platform, fee)
		}
	}
	s := c.Arbitrage.Slippage
	if s.ModerateThreshold > s.DeepThreshold {
		return fmt.Errorf("arbitrage.slippage.moderate_threshold exceeds deep_threshold")
	}
	return nil
}

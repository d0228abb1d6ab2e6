package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Models    ModelsConfig    `yaml:"models"`
	Store     StoreConfig     `yaml:"store"`
	Queue     QueueConfig     `yaml:"queue"`
	Actuator  ActuatorConfig  `yaml:"actuator"`
	Forecast  ForecastConfig  `yaml:"forecast"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string          `yaml:"address"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
	CORSOrigins  []string        `yaml:"corsOrigins"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// TelemetryConfig bounds the per-device sequence window and raw log.
type TelemetryConfig struct {
	WindowSize int `yaml:"windowSize"`
	MinWindow  int `yaml:"minWindow"`
	MaxRawLog  int `yaml:"maxRawLog"`
}

// ModelsConfig locates the trained model artifacts.
type ModelsConfig struct {
	Dir         string            `yaml:"dir"`
	Tag         string            `yaml:"tag"`
	ObjectStore ObjectStoreConfig `yaml:"objectStore"`
}

// ObjectStoreConfig points at an S3-compatible bucket holding artifacts.
type ObjectStoreConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
}

// StoreConfig selects the remote telemetry store backend.
type StoreConfig struct {
	Valkey   ValkeyConfig   `yaml:"valkey"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// ValkeyConfig contains connection information for the valkey store.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// QueueConfig controls pipeline job scheduling.
type QueueConfig struct {
	Backlog int               `yaml:"backlog"`
	Valkey  ValkeyQueueConfig `yaml:"valkey"`
}

// ValkeyQueueConfig enables the cross-process job queue.
type ValkeyQueueConfig struct {
	Enabled bool   `yaml:"enabled"`
	Key     string `yaml:"key"`
}

// ActuatorConfig points at the panel controller's command endpoint.
type ActuatorConfig struct {
	CommandURL string        `yaml:"commandUrl"`
	Timeout    time.Duration `yaml:"timeout"`
	Confidence float64       `yaml:"confidence"`
}

// ForecastConfig controls the daily forecaster.
type ForecastConfig struct {
	Horizon int `yaml:"horizon"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("TELEMETRY_WINDOW_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Telemetry.WindowSize = parsed
		}
	}
	if v := os.Getenv("TELEMETRY_MIN_WINDOW"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Telemetry.MinWindow = parsed
		}
	}
	if v := os.Getenv("MODELS_DIR"); v != "" {
		cfg.Models.Dir = v
	}
	if v := os.Getenv("MODELS_TAG"); v != "" {
		cfg.Models.Tag = v
	}
	if v := os.Getenv("STORE_VALKEY_ENABLED"); v != "" {
		cfg.Store.Valkey.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("STORE_VALKEY_ADDR"); v != "" {
		cfg.Store.Valkey.Addr = v
	}
	if v := os.Getenv("STORE_POSTGRES_DSN"); v != "" {
		cfg.Store.Postgres.DSN = v
	}
	if v := os.Getenv("STORE_POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Store.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("ACTUATOR_COMMAND_URL"); v != "" {
		cfg.Actuator.CommandURL = v
	}
	if v := os.Getenv("ACTUATOR_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Actuator.Timeout = parsed
		}
	}
	if v := os.Getenv("ACTUATOR_CONFIDENCE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Actuator.Confidence = parsed
		}
	}
	if v := os.Getenv("FORECAST_HORIZON"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Forecast.Horizon = parsed
		}
	}
	if v := os.Getenv("QUEUE_BACKLOG"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Queue.Backlog = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 240,
				Burst:             60,
			},
		},
		Telemetry: TelemetryConfig{
			WindowSize: 24,
			MinWindow:  5,
			MaxRawLog:  3000,
		},
		Models: ModelsConfig{
			Dir: "models",
			Tag: "seq_daily_v1",
		},
		Store: StoreConfig{
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
		Queue: QueueConfig{
			Backlog: 8,
		},
		Actuator: ActuatorConfig{
			CommandURL: "http://192.168.4.1/command",
			Timeout:    3 * time.Second,
			Confidence: 0.85,
		},
		Forecast: ForecastConfig{
			Horizon: 7,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.Telemetry.WindowSize <= 0 {
		return errors.New("telemetry.windowSize must be positive")
	}
	if c.Telemetry.MinWindow <= 0 {
		return errors.New("telemetry.minWindow must be positive")
	}
	if c.Telemetry.MinWindow > c.Telemetry.WindowSize {
		return errors.New("telemetry.minWindow cannot exceed telemetry.windowSize")
	}
	if c.Models.Dir == "" && !c.Models.ObjectStore.Enabled {
		return errors.New("models.dir cannot be empty without an object store")
	}
	if c.Models.ObjectStore.Enabled {
		if strings.TrimSpace(c.Models.ObjectStore.Endpoint) == "" {
			return errors.New("models.objectStore.endpoint cannot be empty when enabled")
		}
		if strings.TrimSpace(c.Models.ObjectStore.Bucket) == "" {
			return errors.New("models.objectStore.bucket cannot be empty when enabled")
		}
	}
	if c.Store.Valkey.Enabled && strings.TrimSpace(c.Store.Valkey.Addr) == "" {
		return errors.New("store.valkey.addr cannot be empty when the valkey store is enabled")
	}
	if c.Queue.Valkey.Enabled && !c.Store.Valkey.Enabled {
		return errors.New("queue.valkey requires store.valkey to be enabled")
	}
	if c.Forecast.Horizon <= 0 {
		return errors.New("forecast.horizon must be positive")
	}
	if c.Actuator.Confidence < 0 || c.Actuator.Confidence > 1 {
		return errors.New("actuator.confidence must be within [0, 1]")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	return nil
}

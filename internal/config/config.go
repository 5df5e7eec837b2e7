// Package config loads runtime configuration for the fitness binaries.
//
// Values are layered: struct defaults, then an optional YAML file (CONFIG_PATH
// or ./config.yaml), then environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"example.com/fitness/internal/validation"
)

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are tried in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{"config.yaml", "config.yml", "/etc/fitness/config.yaml"}

// Config captures runtime configuration for every binary.
type Config struct {
	HTTP     HTTPConfig     `koanf:"http"`
	Postgres PostgresConfig `koanf:"postgres"`
	Kafka    KafkaConfig    `koanf:"kafka"`
	Outbox   OutboxConfig   `koanf:"outbox"`
	DLQ      DLQConfig      `koanf:"dlq"`
	Auth     AuthConfig     `koanf:"auth"`
	Security SecurityConfig `koanf:"security"`
	Breaker  BreakerConfig  `koanf:"breaker"`
	Logging  LoggingConfig  `koanf:"logging"`
	Stats    StatsConfig    `koanf:"stats"`
}

type HTTPConfig struct {
	Address         string        `koanf:"address" validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	// MetricsAddress serves /metrics for the dispatcher and consumer, which
	// have no API router.
	MetricsAddress  string        `koanf:"metrics_address" validate:"required"`
}

// PostgresConfig selects the store. An empty URL runs the API on the
// seeded in-memory store.
type PostgresConfig struct {
	URL      string `koanf:"url"`
	MaxConns int32  `koanf:"max_conns" validate:"gte=0"`
}

type KafkaConfig struct {
	Brokers           []string `koanf:"brokers"`
	SchemaRegistryURL string   `koanf:"schema_registry_url"`
	ConsumerGroup     string   `koanf:"consumer_group" validate:"required"`
	Topics            []string `koanf:"topics"`
}

type OutboxConfig struct {
	PollInterval time.Duration `koanf:"poll_interval" validate:"gt=0"`
	BatchSize    int           `koanf:"batch_size" validate:"gte=1,lte=1000"`
}

type DLQConfig struct {
	PollInterval time.Duration `koanf:"poll_interval" validate:"gt=0"`
	BatchSize    int           `koanf:"batch_size" validate:"gte=1,lte=1000"`
	MaxRetries   int           `koanf:"max_retries" validate:"gte=1"`
	BaseDelay    time.Duration `koanf:"base_delay" validate:"gt=0"`
}

type AuthConfig struct {
	JWTSecret string `koanf:"jwt_secret" validate:"required"`
	JWTIssuer string `koanf:"jwt_issuer"`
}

type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
}

// BreakerConfig tunes the circuit breaker around the store.
type BreakerConfig struct {
	FailureThreshold uint32        `koanf:"failure_threshold" validate:"gte=1"`
	OpenTimeout      time.Duration `koanf:"open_timeout" validate:"gt=0"`
	HalfOpenRequests uint32        `koanf:"half_open_requests" validate:"gte=1"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// StatsConfig sets the time zone that decides which calendar day "today" is
// for streaks and recent activity.
type StatsConfig struct {
	Timezone string `koanf:"timezone" validate:"required"`
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:         ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MetricsAddress:  ":9102",
		},
		Postgres: PostgresConfig{MaxConns: 10},
		Kafka: KafkaConfig{
			Brokers:           []string{"kafka:9092"},
			SchemaRegistryURL: "http://schema-registry:8081",
			ConsumerGroup:     "fitness-event-log",
			Topics:            []string{"fitness.activity_events", "fitness.bookmark_events"},
		},
		Outbox: OutboxConfig{PollInterval: 2 * time.Second, BatchSize: 25},
		DLQ: DLQConfig{
			PollInterval: 30 * time.Second,
			BatchSize:    50,
			MaxRetries:   5,
			BaseDelay:    time.Minute,
		},
		Auth: AuthConfig{JWTSecret: "dev-secret-change-me", JWTIssuer: "fitness.identity"},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Breaker: BreakerConfig{
			FailureThreshold: 5,
			OpenTimeout:      30 * time.Second,
			HalfOpenRequests: 1,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Stats:   StatsConfig{Timezone: "UTC"},
	}
}

// Load builds a Config from defaults, the optional config file and the
// environment, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := splitListFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate applies field rules and cross-field checks.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.Stats.Timezone); err != nil {
		return fmt.Errorf("stats.timezone: %w", err)
	}
	if c.Postgres.URL != "" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when postgres.url is set")
	}
	return nil
}

// Location returns the configured stats time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Stats.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

var listFields = []string{"kafka.brokers", "kafka.topics", "security.cors_origins"}

// splitListFields turns comma separated env values into lists.
func splitListFields(k *koanf.Koanf) error {
	for _, path := range listFields {
		raw, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(raw, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}

var envKeys = map[string]string{
	"http_address":          "http.address",
	"http_read_timeout":     "http.read_timeout",
	"http_write_timeout":    "http.write_timeout",
	"http_idle_timeout":     "http.idle_timeout",
	"http_shutdown_timeout": "http.shutdown_timeout",
	"metrics_address":       "http.metrics_address",

	"postgres_url":       "postgres.url",
	"postgres_max_conns": "postgres.max_conns",

	"kafka_brokers":         "kafka.brokers",
	"schema_registry_url":   "kafka.schema_registry_url",
	"kafka_consumer_group":  "kafka.consumer_group",
	"kafka_consumer_topics": "kafka.topics",

	"outbox_poll_interval": "outbox.poll_interval",
	"outbox_batch_size":    "outbox.batch_size",

	"dlq_poll_interval": "dlq.poll_interval",
	"dlq_batch_size":    "dlq.batch_size",
	"dlq_max_retries":   "dlq.max_retries",
	"dlq_base_delay":    "dlq.base_delay",

	"jwt_secret": "auth.jwt_secret",
	"jwt_issuer": "auth.jwt_issuer",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",

	"breaker_failure_threshold":  "breaker.failure_threshold",
	"breaker_open_timeout":       "breaker.open_timeout",
	"breaker_half_open_requests": "breaker.half_open_requests",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"stats_timezone": "stats.timezone",
}

// envKey maps a known environment variable to its config path; unknown
// variables are ignored.
func envKey(key string) string {
	return envKeys[strings.ToLower(key)]
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.HTTP.Address)
	require.Empty(t, cfg.Postgres.URL)
	require.Equal(t, []string{"kafka:9092"}, cfg.Kafka.Brokers)
	require.Equal(t, 2*time.Second, cfg.Outbox.PollInterval)
	require.Equal(t, 25, cfg.Outbox.BatchSize)
	require.Equal(t, 5, cfg.DLQ.MaxRetries)
	require.Equal(t, uint32(5), cfg.Breaker.FailureThreshold)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, time.UTC, cfg.Location())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("HTTP_ADDRESS", ":9090")
	t.Setenv("POSTGRES_URL", "postgres://fitness@localhost/fitness")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("OUTBOX_POLL_INTERVAL", "250ms")
	t.Setenv("OUTBOX_BATCH_SIZE", "50")
	t.Setenv("BREAKER_FAILURE_THRESHOLD", "3")
	t.Setenv("STATS_TIMEZONE", "Europe/Berlin")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.HTTP.Address)
	require.Equal(t, "postgres://fitness@localhost/fitness", cfg.Postgres.URL)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	require.Equal(t, 250*time.Millisecond, cfg.Outbox.PollInterval)
	require.Equal(t, 50, cfg.Outbox.BatchSize)
	require.Equal(t, uint32(3), cfg.Breaker.FailureThreshold)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.CORSOrigins)
	require.Equal(t, "Europe/Berlin", cfg.Location().String())
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fitness.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  address: ":7000"
logging:
  level: debug
  format: console
`), 0o600))
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":7000", cfg.HTTP.Address)
	require.Equal(t, "console", cfg.Logging.Format)
	require.Equal(t, "warn", cfg.Logging.Level, "environment wins over the file")
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"batch size":  func(c *Config) { c.Outbox.BatchSize = 0 },
		"log level":   func(c *Config) { c.Logging.Level = "loud" },
		"timezone":    func(c *Config) { c.Stats.Timezone = "Mars/Olympus" },
		"jwt secret":  func(c *Config) { c.Auth.JWTSecret = "" },
		"no brokers":  func(c *Config) { c.Postgres.URL = "postgres://x"; c.Kafka.Brokers = nil },
		"dlq retries": func(c *Config) { c.DLQ.MaxRetries = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := defaultConfig()
			mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestEnvKeyIgnoresUnknownVariables(t *testing.T) {
	require.Equal(t, "http.address", envKey("HTTP_ADDRESS"))
	require.Empty(t, envKey("PATH"))
}

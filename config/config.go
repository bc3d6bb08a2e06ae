package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres   PostgresConfig   `yaml:"postgres"`
	HTTP       HTTPConfig       `yaml:"http"`
	Settlement SettlementConfig `yaml:"settlement"`
	Snapshot   SnapshotConfig   `yaml:"snapshot"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// HTTPConfig holds the API server configuration.
type HTTPConfig struct {
	Addr            string  `yaml:"addr"`
	IngestRateLimit float64 `yaml:"ingest_rate_limit"` // requests per second
	IngestBurst     int     `yaml:"ingest_burst"`
}

// SettlementConfig holds settlement pipeline configuration.
type SettlementConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// SnapshotConfig holds snapshot exporter configuration.
type SnapshotConfig struct {
	Dir         string `yaml:"dir"`
	ChartTopN   int    `yaml:"chart_top_n"`
	WriteCharts bool   `yaml:"write_charts"`
}

// MetricsConfig holds the metrics endpoint configuration.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(filename)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No file: fall through to env-only configuration.
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// --- OVERRIDE WITH ENV VARS IF PRESENT ---
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("SNAPSHOT_DIR"); v != "" {
		cfg.Snapshot.Dir = v
	}
	if v := os.Getenv("SETTLEMENT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Settlement.Timeout = d
		}
	}
	if v := os.Getenv("INGEST_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.HTTP.IngestRateLimit = f
		}
	}

	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required (config file or DATABASE_URL)")
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:            ":8080",
			IngestRateLimit: 5,
			IngestBurst:     10,
		},
		Settlement: SettlementConfig{
			Timeout: 60 * time.Second,
		},
		Snapshot: SnapshotConfig{
			Dir:         "./snapshots",
			ChartTopN:   5,
			WriteCharts: true,
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
	}
}

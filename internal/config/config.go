package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DatasetPath  string
	Port         string
	ReadTimeout  time.Duration
	LogLevel     slog.Level
	SearchLimit  int
	DeliveryBins int
}

// fileConfig is the optional YAML overlay. Zero values leave the
// env-derived setting untouched.
type fileConfig struct {
	DatasetPath  string `yaml:"dataset_path"`
	Port         string `yaml:"port"`
	LogLevel     string `yaml:"log_level"`
	SearchLimit  int    `yaml:"search_limit"`
	DeliveryBins int    `yaml:"delivery_bins"`
}

// FromEnv builds the config from environment variables, then overlays the
// YAML file named by CONFIG_FILE when set.
func FromEnv() (Config, error) {
	to := 10 * time.Second
	if v := os.Getenv("READ_TIMEOUT_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			to = d
		}
	}
	cfg := Config{
		DatasetPath:  envOr("DATASET_PATH", "all_orders.csv"),
		Port:         envOr("PORT", "8080"),
		ReadTimeout:  to,
		LogLevel:     parseLevel(os.Getenv("LOG_LEVEL")),
		SearchLimit:  envInt("SEARCH_LIMIT", 10),
		DeliveryBins: envInt("DELIVERY_BINS", 20),
	}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if fc.DatasetPath != "" {
		c.DatasetPath = fc.DatasetPath
	}
	if fc.Port != "" {
		c.Port = fc.Port
	}
	if fc.LogLevel != "" {
		c.LogLevel = parseLevel(fc.LogLevel)
	}
	if fc.SearchLimit > 0 {
		c.SearchLimit = fc.SearchLimit
	}
	if fc.DeliveryBins > 0 {
		c.DeliveryBins = fc.DeliveryBins
	}
	return nil
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

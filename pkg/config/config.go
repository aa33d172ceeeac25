// Package config loads storefront settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all storefront configuration.
type Config struct {
	Service  string         `yaml:"service"`
	HTTP     HTTPConfig     `yaml:"http"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Cart     CartConfig     `yaml:"cart"`
	Session  SessionConfig  `yaml:"session"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// HTTPConfig configures the listener. TLS is used when both files are set.
type HTTPConfig struct {
	Addr     string `yaml:"addr"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// PostgresConfig enables the Postgres catalog and order repositories.
// An empty URL keeps everything in memory.
type PostgresConfig struct {
	URL         string `yaml:"url"`
	SeedCatalog bool   `yaml:"seed_catalog"`
}

// RedisConfig enables the Redis key-value store. An empty Addr uses memory.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// TracingConfig configures OTLP export.
type TracingConfig struct {
	Host        string  `yaml:"host"`
	Probability float64 `yaml:"probability"`
}

// CartConfig tunes the cart's removal transition.
type CartConfig struct {
	RemovalDelay time.Duration `yaml:"removal_delay"`
}

// SessionConfig controls session keys and in-memory lifetime.
type SessionConfig struct {
	KeyPrefix     string        `yaml:"key_prefix"`
	IdleTTL       time.Duration `yaml:"idle_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	CookieName    string        `yaml:"cookie_name"`
}

// LoggingConfig sets the minimum log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Service: "storefront",
		HTTP:    HTTPConfig{Addr: ":8443"},
		Tracing: TracingConfig{Probability: 1.0},
		Cart:    CartConfig{RemovalDelay: time.Second},
		Session: SessionConfig{
			KeyPrefix:     "storefront",
			IdleTTL:       30 * time.Minute,
			SweepInterval: time.Minute,
			CookieName:    "session_id",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads path over the defaults and applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Save writes the configuration as YAML.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Postgres.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("OTEL_HOST"); v != "" {
		c.Tracing.Host = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("TLS_CERT"); v != "" {
		c.HTTP.CertFile = v
	}
	if v := os.Getenv("TLS_KEY"); v != "" {
		c.HTTP.KeyFile = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CART_REMOVAL_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CART_REMOVAL_DELAY: %w", err)
		}
		c.Cart.RemovalDelay = d
	}
	if v := os.Getenv("OTEL_SAMPLE_PROBABILITY"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("OTEL_SAMPLE_PROBABILITY: %w", err)
		}
		c.Tracing.Probability = p
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.HTTP.Addr == "":
		return errors.New("http.addr is required")
	case (c.HTTP.CertFile == "") != (c.HTTP.KeyFile == ""):
		return errors.New("http.cert_file and http.key_file must be set together")
	case c.Cart.RemovalDelay <= 0:
		return errors.New("cart.removal_delay must be positive")
	case c.Tracing.Probability < 0 || c.Tracing.Probability > 1:
		return fmt.Errorf("tracing.probability %v out of [0,1]", c.Tracing.Probability)
	case c.Session.KeyPrefix == "":
		return errors.New("session.key_prefix is required")
	case c.Session.CookieName == "":
		return errors.New("session.cookie_name is required")
	}
	return nil
}

// TLS reports whether the listener should serve HTTPS.
func (c Config) TLS() bool {
	return c.HTTP.CertFile != "" && c.HTTP.KeyFile != ""
}

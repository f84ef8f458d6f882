// Package config loads and validates the strata configuration file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/strata-db/strata/pkg/errors"
)

// FileName is the default configuration file name.
const FileName = "strata.yaml"

// Config is the full configuration surface of the server.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Pool     PoolConfig     `yaml:"pool"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Dialect   string `yaml:"dialect"`              // sqlite, mysql, postgres
	DSN       string `yaml:"dsn"`                  // Connection string
	AuthToken string `yaml:"auth_token,omitempty"` // Optional credential appended by the driver DSN
}

// PoolConfig holds connection pool sizing and timing settings.
type PoolConfig struct {
	MinConnections    int      `yaml:"min_connections"`
	MaxConnections    int      `yaml:"max_connections"`
	ConnectionTimeout Duration `yaml:"connection_timeout"`
	RetryInterval     Duration `yaml:"retry_interval"`
	MaxRetries        int      `yaml:"max_retries"`
}

// Duration decodes YAML scalars like "30s" or "500ms". Bare integers are
// taken as seconds.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err == nil {
		*d = Duration(time.Duration(n) * time.Second)
		return nil
	}
	return fmt.Errorf("invalid duration value %q", value.Value)
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// ResolveDSN expands the ${auth_token} placeholder in the DSN so the
// credential can live in the environment instead of the config file.
func (d DatabaseConfig) ResolveDSN() string {
	return strings.ReplaceAll(d.DSN, "${auth_token}", d.AuthToken)
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Dialect: "sqlite",
			DSN:     "file:./strata.db",
		},
		Pool: PoolConfig{
			MinConnections:    1,
			MaxConnections:    10,
			ConnectionTimeout: Duration(30 * time.Second),
			RetryInterval:     Duration(5 * time.Second),
			MaxRetries:        3,
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: 4000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the configuration file at path, applies environment overrides,
// and validates the result. Fields absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewConfigError(errors.ErrConfigNotFound,
				fmt.Sprintf("configuration file not found: %s", path))
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError(errors.ErrConfigInvalid,
			"configuration file is not valid YAML").WithCause(err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values from the environment; useful for keeping
// credentials out of the config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("STRATA_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("STRATA_AUTH_TOKEN"); v != "" {
		c.Database.AuthToken = v
	}
	if v := os.Getenv("STRATA_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks structural invariants. Pool sizing must satisfy
// 0 <= min <= max with max > 0; a min of 0 starts the pool empty.
func (c *Config) Validate() error {
	if c.Database.Dialect == "" {
		return errors.NewConfigError(errors.ErrConfigInvalid, "database.dialect is required")
	}
	if c.Database.DSN == "" {
		return errors.NewConfigError(errors.ErrConfigInvalid, "database.dsn is required")
	}
	if c.Pool.MinConnections < 0 {
		return errors.NewConfigError(errors.ErrConfigInvalid,
			fmt.Sprintf("pool.min_connections must not be negative, got %d", c.Pool.MinConnections))
	}
	if c.Pool.MaxConnections < 1 {
		return errors.NewConfigError(errors.ErrConfigInvalid,
			fmt.Sprintf("pool.max_connections must be at least 1, got %d", c.Pool.MaxConnections))
	}
	if c.Pool.MinConnections > c.Pool.MaxConnections {
		return errors.NewConfigError(errors.ErrConfigInvalid,
			fmt.Sprintf("pool.min_connections (%d) exceeds pool.max_connections (%d)",
				c.Pool.MinConnections, c.Pool.MaxConnections))
	}
	if c.Pool.ConnectionTimeout <= 0 {
		return errors.NewConfigError(errors.ErrConfigInvalid, "pool.connection_timeout must be positive")
	}
	if c.Pool.RetryInterval <= 0 {
		return errors.NewConfigError(errors.ErrConfigInvalid, "pool.retry_interval must be positive")
	}
	if c.Pool.MaxRetries < 1 {
		return errors.NewConfigError(errors.ErrConfigInvalid, "pool.max_retries must be at least 1")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.NewConfigError(errors.ErrConfigInvalid,
			fmt.Sprintf("server.port must be in 1-65535, got %d", c.Server.Port))
	}
	return nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/strata-db/strata/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func requireConfigCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	var se *errors.StrataError
	require.ErrorAs(t, err, &se)
	require.Equal(t, code, se.Code)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
database:
  dialect: mysql
  dsn: "user:${auth_token}@tcp(localhost:3306)/app"
  auth_token: s3cret
pool:
  min_connections: 2
  max_connections: 8
  connection_timeout: 45s
  retry_interval: 250ms
  max_retries: 5
server:
  host: 0.0.0.0
  port: 8080
log:
  level: debug
  development: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "mysql", cfg.Database.Dialect)
	require.Equal(t, "user:s3cret@tcp(localhost:3306)/app", cfg.Database.ResolveDSN())
	require.Equal(t, 2, cfg.Pool.MinConnections)
	require.Equal(t, 8, cfg.Pool.MaxConnections)
	require.Equal(t, 45*time.Second, cfg.Pool.ConnectionTimeout.Std())
	require.Equal(t, 250*time.Millisecond, cfg.Pool.RetryInterval.Std())
	require.Equal(t, 5, cfg.Pool.MaxRetries)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Log.Level)
	require.True(t, cfg.Log.Development)
}

func TestLoadKeepsDefaultsForAbsentFields(t *testing.T) {
	path := writeConfig(t, `
database:
  dialect: sqlite
  dsn: file:./app.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, Default().Pool, cfg.Pool)
	require.Equal(t, Default().Server, cfg.Server)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), FileName))
	requireConfigCode(t, err, errors.ErrConfigNotFound)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "database: [not: a: mapping")
	_, err := Load(path)
	requireConfigCode(t, err, errors.ErrConfigInvalid)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, `
pool:
  connection_timeout: soon
`)
	_, err := Load(path)
	requireConfigCode(t, err, errors.ErrConfigInvalid)
}

func TestDurationAcceptsBareSeconds(t *testing.T) {
	path := writeConfig(t, `
pool:
  connection_timeout: 10
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 10*time.Second, cfg.Pool.ConnectionTimeout.Std())
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("STRATA_DSN", "file:/tmp/env.db")
	t.Setenv("STRATA_AUTH_TOKEN", "from-env")
	t.Setenv("STRATA_LOG_LEVEL", "warn")

	path := writeConfig(t, `
database:
  dialect: sqlite
  dsn: file:./ignored.db
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "file:/tmp/env.db", cfg.Database.DSN)
	require.Equal(t, "from-env", cfg.Database.AuthToken)
	require.Equal(t, "warn", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing dialect", func(c *Config) { c.Database.Dialect = "" }},
		{"missing dsn", func(c *Config) { c.Database.DSN = "" }},
		{"negative min", func(c *Config) { c.Pool.MinConnections = -1 }},
		{"zero max", func(c *Config) { c.Pool.MaxConnections = 0 }},
		{"min above max", func(c *Config) { c.Pool.MinConnections = 5; c.Pool.MaxConnections = 2 }},
		{"zero timeout", func(c *Config) { c.Pool.ConnectionTimeout = 0 }},
		{"zero retry interval", func(c *Config) { c.Pool.RetryInterval = 0 }},
		{"zero retries", func(c *Config) { c.Pool.MaxRetries = 0 }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			requireConfigCode(t, cfg.Validate(), errors.ErrConfigInvalid)
		})
	}

	require.NoError(t, Default().Validate())

	// Minimum of zero starts the pool empty; that is a valid setup.
	cfg := Default()
	cfg.Pool.MinConnections = 0
	require.NoError(t, cfg.Validate())
}

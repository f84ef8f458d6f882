// Package cli implements the CLI command handlers.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/strata-db/strata/internal/server"
	"github.com/strata-db/strata/pkg/config"
	"github.com/strata-db/strata/pkg/core/connection"
	"github.com/strata-db/strata/pkg/dialects"
	"github.com/strata-db/strata/pkg/logging"
	"github.com/strata-db/strata/pkg/tools"

	// Register the built-in dialects.
	_ "github.com/strata-db/strata/pkg/dialects/mysql"
	_ "github.com/strata-db/strata/pkg/dialects/postgres"
	_ "github.com/strata-db/strata/pkg/dialects/sqlite"
)

// ServeOptions configures the serve command.
type ServeOptions struct {
	ConfigPath string
	Host       string // Overrides config when non-empty
	Port       int    // Overrides config when non-zero
	Watch      bool   // Reload config on change
}

// DefaultServeOptions returns the default serve options.
func DefaultServeOptions() ServeOptions {
	return ServeOptions{
		ConfigPath: config.FileName,
	}
}

// Serve runs the tool server until interrupted.
func Serve(opts ServeOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.Host != "" {
		cfg.Server.Host = opts.Host
	}
	if opts.Port != 0 {
		cfg.Server.Port = opts.Port
	}

	logger, level, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer logger.Sync()

	dialect, err := dialects.ForName(cfg.Database.Dialect)
	if err != nil {
		return err
	}

	pool := connection.NewPool(poolConfig(cfg, dialect), logger)

	// Handle signals for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		cancel()
	}()

	if err := pool.Initialize(ctx); err != nil {
		return err
	}
	defer pool.Close()

	if opts.Watch {
		go func() {
			err := config.Watch(ctx, opts.ConfigPath, 500*time.Millisecond, logger, func(next *config.Config) {
				if err := logging.SetLevel(level, next.Log.Level); err != nil {
					logger.Warn("ignoring invalid log level from reload", zap.Error(err))
					return
				}
				logger.Info("log level updated", zap.String("level", next.Log.Level))
			})
			if err != nil {
				logger.Warn("config watcher stopped", zap.Error(err))
			}
		}()
	}

	srv := server.NewServer(server.Config{
		Host:    cfg.Server.Host,
		Port:    cfg.Server.Port,
		Toolbox: tools.New(pool, dialect, logger),
		Pool:    pool,
		Logger:  logger,
	})

	fmt.Printf("strata serving %s on http://%s\n", cfg.Database.Dialect, srv.Addr())
	return srv.StartWithContext(ctx)
}

// poolConfig maps file configuration onto the pool's config, picking up the
// dialect's driver name and probe query.
func poolConfig(cfg *config.Config, dialect dialects.Dialect) connection.Config {
	return connection.Config{
		Driver:            dialect.DriverName(),
		DSN:               cfg.Database.ResolveDSN(),
		ProbeSQL:          dialect.ProbeSQL(),
		MinConnections:    cfg.Pool.MinConnections,
		MaxConnections:    cfg.Pool.MaxConnections,
		ConnectionTimeout: cfg.Pool.ConnectionTimeout.Std(),
		RetryInterval:     cfg.Pool.RetryInterval.Std(),
		MaxRetries:        cfg.Pool.MaxRetries,
	}
}

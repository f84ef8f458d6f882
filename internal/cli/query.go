package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/strata-db/strata/pkg/config"
	"github.com/strata-db/strata/pkg/core/connection"
	"github.com/strata-db/strata/pkg/dialects"
	"github.com/strata-db/strata/pkg/errors"
	"github.com/strata-db/strata/pkg/logging"
	"github.com/strata-db/strata/pkg/tools"
)

// openToolbox builds a one-shot toolbox from the config file. The returned
// cleanup closes the pool and must always be called.
func openToolbox(configPath string) (*tools.Toolbox, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	// One-shot commands keep quiet unless something goes wrong.
	logger := zap.NewNop()
	if cfg.Log.Development {
		if logger, _, err = logging.New(cfg.Log.Level, true); err != nil {
			return nil, nil, err
		}
	}

	dialect, err := dialects.ForName(cfg.Database.Dialect)
	if err != nil {
		return nil, nil, err
	}

	pool := connection.NewPool(poolConfig(cfg, dialect), logger)
	if err := pool.Initialize(context.Background()); err != nil {
		return nil, nil, err
	}

	return tools.New(pool, dialect, logger), pool.Close, nil
}

// Query runs a one-shot read query and prints the result set as JSON.
func Query(configPath, sqlText string) error {
	tb, cleanup, err := openToolbox(configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	rs, err := tb.ReadQuery(context.Background(), sqlText)
	if err != nil {
		return printable(err)
	}
	return printJSON(rs)
}

// Exec runs a one-shot write statement and prints the outcome.
func Exec(configPath, sqlText string) error {
	tb, cleanup, err := openToolbox(configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	rs, err := tb.WriteQuery(context.Background(), sqlText)
	if err != nil {
		return printable(err)
	}
	fmt.Printf("✓ %d row(s) affected\n", rs.RowsAffected)
	return nil
}

// DDL runs a one-shot DDL statement.
func DDL(configPath, sqlText string) error {
	tb, cleanup, err := openToolbox(configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := tb.ExecuteDDL(context.Background(), sqlText); err != nil {
		return printable(err)
	}
	fmt.Println("✓ Statement applied")
	return nil
}

// Tables lists the database's tables.
func Tables(configPath string) error {
	tb, cleanup, err := openToolbox(configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	tables, err := tb.ListTables(context.Background())
	if err != nil {
		return printable(err)
	}
	if len(tables) == 0 {
		fmt.Println("No tables found")
		return nil
	}
	for _, name := range tables {
		fmt.Println(name)
	}
	return nil
}

// Describe prints column and index metadata for one table.
func Describe(configPath, tableName string) error {
	tb, cleanup, err := openToolbox(configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	info, err := tb.DescribeTable(context.Background(), tableName)
	if err != nil {
		return printable(err)
	}
	return printJSON(info)
}

// Status prints the pool status of a freshly initialized pool against the
// configured database; useful as a connectivity smoke test.
func Status(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	dialect, err := dialects.ForName(cfg.Database.Dialect)
	if err != nil {
		return err
	}

	pool := connection.NewPool(poolConfig(cfg, dialect), zap.NewNop())
	if err := pool.Initialize(context.Background()); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	defer pool.Close()

	status := pool.Status()
	fmt.Printf("✓ Connected to %s (%s)\n", cfg.Database.Dialect, cfg.Database.DSN)
	fmt.Printf("  connections: %d total, %d available (min %d, max %d)\n",
		status.TotalConnections, status.AvailableConnections,
		status.MinConnections, status.MaxConnections)
	return nil
}

// printable unwraps structured errors into their user-facing colored form.
func printable(err error) error {
	var se *errors.StrataError
	if stderrors.As(err, &se) {
		fmt.Fprint(os.Stderr, se.Print())
		return fmt.Errorf("command failed")
	}
	return err
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

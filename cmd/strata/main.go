package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/strata-db/strata/internal/cli"
	"github.com/strata-db/strata/pkg/config"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "strata",
		Short: "Strata - Pooled SQL tool server",
		Long: `Strata exposes a SQL database through a small set of safe tools:
  • Read, write, and DDL execution with statement classification
  • Schema introspection (tables, columns, indexes)
  • A managed connection pool with health checks and retries
  • Multi-dialect support (SQLite, MySQL, PostgreSQL)`,
		Version: version,
	}

	rootCmd.PersistentFlags().StringP("config", "c", config.FileName, "Path to the configuration file")

	// Add subcommands
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(queryCmd())
	rootCmd.AddCommand(execCmd())
	rootCmd.AddCommand(ddlCmd())
	rootCmd.AddCommand(tablesCmd())
	rootCmd.AddCommand(describeCmd())
	rootCmd.AddCommand(statusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}

// initCmd creates a new Strata project
func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new Strata project",
		Long:  "Creates a new Strata project with a default configuration file.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return cli.Init(dir)
		},
	}
}

// serveCmd runs the HTTP tool server
func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP tool server",
		Long: `Starts the tool server against the configured database.

The server initializes the connection pool, exposes the query,
execute, ddl, and introspection endpoints, and shuts down
gracefully on Ctrl+C.

Examples:
  strata serve                 # Serve with config defaults
  strata serve --port 3000     # Use custom port
  strata serve --watch         # Reload log level on config change`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.DefaultServeOptions()
			opts.ConfigPath = configPath(cmd)

			host, _ := cmd.Flags().GetString("host")
			port, _ := cmd.Flags().GetInt("port")
			watch, _ := cmd.Flags().GetBool("watch")

			opts.Host = host
			opts.Port = port
			opts.Watch = watch

			return cli.Serve(opts)
		},
	}

	cmd.Flags().String("host", "", "Host to bind the server to (overrides config)")
	cmd.Flags().Int("port", 0, "Port to run the server on (overrides config)")
	cmd.Flags().Bool("watch", false, "Reload configuration on change")

	return cmd
}

// queryCmd runs a one-shot read query
func queryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <sql>",
		Short: "Run a read query and print the result set as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Query(configPath(cmd), strings.Join(args, " "))
		},
	}
}

// execCmd runs a one-shot write statement
func execCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <sql>",
		Short: "Run a write statement inside a transaction",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Exec(configPath(cmd), strings.Join(args, " "))
		},
	}
}

// ddlCmd runs a one-shot DDL statement
func ddlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ddl <sql>",
		Short: "Run a schema-changing statement",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.DDL(configPath(cmd), strings.Join(args, " "))
		},
	}
}

// tablesCmd lists the database's tables
func tablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List all tables in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Tables(configPath(cmd))
		},
	}
}

// describeCmd shows table metadata
func describeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <table>",
		Short: "Show column and index metadata for a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Describe(configPath(cmd), args[0])
		},
	}
}

// statusCmd checks connectivity and pool sizing
func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check database connectivity and show pool status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Status(configPath(cmd))
		},
	}
}

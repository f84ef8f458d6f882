// Package dialects provides database dialect interfaces and implementations.
package dialects

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
)

// Dialect defines the engine-specific behavior the tool server needs:
// identifier quoting, placeholders, the connectivity probe, and schema
// introspection.
type Dialect interface {
	// Name returns the dialect name (e.g. "postgres", "sqlite", "mysql").
	Name() string

	// DriverName returns the Go sql driver name.
	DriverName() string

	// Quote quotes an identifier (table/column name).
	Quote(identifier string) string

	// Placeholder returns the parameter placeholder for the given index (1-based).
	// PostgreSQL uses $1, $2; MySQL/SQLite use ?.
	Placeholder(index int) string

	// ProbeSQL returns the cheap validation query used for connect
	// validation and health checks.
	ProbeSQL() string

	// IntrospectTables returns all user table names in the database.
	IntrospectTables(ctx context.Context, db *sql.DB) ([]string, error)

	// IntrospectColumns returns column metadata for a table.
	IntrospectColumns(ctx context.Context, db *sql.DB, tableName string) ([]*ColumnInfo, error)

	// IntrospectIndexes returns index metadata for a table.
	IntrospectIndexes(ctx context.Context, db *sql.DB, tableName string) ([]*IndexInfo, error)
}

// ColumnInfo describes one column of an introspected table.
type ColumnInfo struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Nullable     bool   `json:"nullable"`
	IsPrimaryKey bool   `json:"is_primary_key"`
	IsUnique     bool   `json:"is_unique"`
	AutoInc      bool   `json:"auto_increment"`
	Default      string `json:"default,omitempty"`
}

// IndexInfo describes one index of an introspected table.
type IndexInfo struct {
	Name    string   `json:"name"`
	Unique  bool     `json:"unique"`
	Columns []string `json:"columns"`
}

// registry maps dialect names to constructors. Implementations register
// themselves from init, which keeps this package free of driver imports.
var registry = map[string]func() Dialect{}

// Register makes a dialect available to ForName.
func Register(name string, factory func() Dialect) {
	registry[name] = factory
}

// ForName returns the dialect registered under name.
func ForName(name string) (Dialect, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown dialect %q (registered: %v)", name, Names())
	}
	return factory(), nil
}

// Names lists the registered dialect names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Package sqlite provides SQLite dialect implementation.
package sqlite

import (
	"github.com/strata-db/strata/pkg/dialects"

	// The sqlite driver is linked here so selecting the dialect is enough
	// to make sql.Open("sqlite3", ...) work.
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	dialects.Register("sqlite", func() dialects.Dialect { return New() })
}

// Dialect implements the SQLite dialect.
type Dialect struct{}

// New creates a new SQLite dialect.
func New() *Dialect {
	return &Dialect{}
}

// Name returns the dialect name.
func (d *Dialect) Name() string {
	return "sqlite"
}

// DriverName returns the Go sql driver name.
func (d *Dialect) DriverName() string {
	return "sqlite3"
}

// Quote quotes an identifier.
func (d *Dialect) Quote(identifier string) string {
	return `"` + identifier + `"`
}

// Placeholder returns the parameter placeholder.
func (d *Dialect) Placeholder(index int) string {
	return "?"
}

// ProbeSQL returns the validation query.
func (d *Dialect) ProbeSQL() string {
	return "SELECT 1"
}

// Package postgres provides PostgreSQL dialect implementation.
//
// No driver is linked for this dialect; callers supply a handle opened with
// a postgres-compatible driver registered under "postgres".
package postgres

import (
	"fmt"

	"github.com/strata-db/strata/pkg/dialects"
)

func init() {
	dialects.Register("postgres", func() dialects.Dialect { return New() })
}

// Dialect implements the PostgreSQL dialect.
type Dialect struct{}

// New creates a new PostgreSQL dialect.
func New() *Dialect {
	return &Dialect{}
}

// Name returns the dialect name.
func (d *Dialect) Name() string {
	return "postgres"
}

// DriverName returns the Go sql driver name.
func (d *Dialect) DriverName() string {
	return "postgres"
}

// Quote quotes an identifier.
func (d *Dialect) Quote(identifier string) string {
	return `"` + identifier + `"`
}

// Placeholder returns the parameter placeholder.
func (d *Dialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

// ProbeSQL returns the validation query.
func (d *Dialect) ProbeSQL() string {
	return "SELECT 1"
}

// Package mysql provides MySQL dialect implementation.
package mysql

import (
	"github.com/strata-db/strata/pkg/dialects"

	// The mysql driver is linked here so selecting the dialect is enough
	// to make sql.Open("mysql", ...) work.
	_ "github.com/go-sql-driver/mysql"
)

func init() {
	dialects.Register("mysql", func() dialects.Dialect { return New() })
}

// Dialect implements the MySQL dialect.
type Dialect struct{}

// New creates a new MySQL dialect.
func New() *Dialect {
	return &Dialect{}
}

// Name returns the dialect name.
func (d *Dialect) Name() string {
	return "mysql"
}

// DriverName returns the Go sql driver name.
func (d *Dialect) DriverName() string {
	return "mysql"
}

// Quote quotes an identifier.
func (d *Dialect) Quote(identifier string) string {
	return "`" + identifier + "`"
}

// Placeholder returns the parameter placeholder.
func (d *Dialect) Placeholder(index int) string {
	return "?"
}

// ProbeSQL returns the validation query.
func (d *Dialect) ProbeSQL() string {
	return "SELECT 1"
}

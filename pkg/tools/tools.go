// Package tools implements the structured SQL tools the server exposes:
// read query, write query, DDL, and schema introspection. Tools borrow
// connections from the pool for the duration of one operation and never
// manage connection lifecycle themselves.
package tools

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/strata-db/strata/pkg/core/connection"
	"github.com/strata-db/strata/pkg/dialects"
	"github.com/strata-db/strata/pkg/errors"
)

// Toolbox bundles the tool set over one pool and one dialect.
type Toolbox struct {
	pool    *connection.Pool
	dialect dialects.Dialect
	logger  *zap.Logger
}

// New creates a Toolbox. The pool stays owned by the caller; Close it there.
func New(pool *connection.Pool, dialect dialects.Dialect, logger *zap.Logger) *Toolbox {
	return &Toolbox{
		pool:    pool,
		dialect: dialect,
		logger:  logger.With(zap.String("component", "tools")),
	}
}

// TableInfo is the result of DescribeTable.
type TableInfo struct {
	Name    string                 `json:"name"`
	Columns []*dialects.ColumnInfo `json:"columns"`
	Indexes []*dialects.IndexInfo  `json:"indexes,omitempty"`
}

// ReadQuery runs a single row-returning query and returns its result set.
func (t *Toolbox) ReadQuery(ctx context.Context, statement string, params ...interface{}) (*connection.ResultSet, error) {
	if err := validateRead(statement); err != nil {
		return nil, err
	}

	conn, err := t.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer t.pool.Release(conn)

	rs, err := conn.Execute(ctx, statement, params...)
	if err != nil {
		return nil, errors.NewQueryError(errors.ErrQueryFailed, "read query failed").WithCause(err)
	}
	return rs, nil
}

// WriteQuery runs a single DML statement inside a transaction and returns
// the affected-row count.
func (t *Toolbox) WriteQuery(ctx context.Context, statement string, params ...interface{}) (*connection.ResultSet, error) {
	if err := validateWrite(statement); err != nil {
		return nil, err
	}

	conn, err := t.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer t.pool.Release(conn)

	rs := &connection.ResultSet{}
	err = conn.Transaction(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, statement, params...)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil {
			rs.RowsAffected = n
		}
		if id, err := res.LastInsertId(); err == nil {
			rs.LastInsertID = id
		}
		return nil
	})
	if err != nil {
		return nil, errors.NewQueryError(errors.ErrTxFailed, "write query failed").WithCause(err)
	}
	return rs, nil
}

// ExecuteDDL runs a single DDL statement. DDL autocommits on every
// supported engine, so it goes through plain Execute rather than a
// transaction.
func (t *Toolbox) ExecuteDDL(ctx context.Context, statement string) (*connection.ResultSet, error) {
	if err := validateDDL(statement); err != nil {
		return nil, err
	}

	conn, err := t.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer t.pool.Release(conn)

	rs, err := conn.Execute(ctx, statement)
	if err != nil {
		return nil, errors.NewQueryError(errors.ErrQueryFailed, "DDL statement failed").WithCause(err)
	}
	return rs, nil
}

// ListTables returns the user table names visible to the connection.
func (t *Toolbox) ListTables(ctx context.Context) ([]string, error) {
	conn, err := t.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer t.pool.Release(conn)

	tables, err := t.dialect.IntrospectTables(ctx, conn.DB())
	if err != nil {
		return nil, errors.NewQueryError(errors.ErrQueryFailed, "listing tables failed").WithCause(err)
	}
	return tables, nil
}

// DescribeTable returns column and index metadata for one table. An unknown
// table name yields an error that suggests the closest existing table.
func (t *Toolbox) DescribeTable(ctx context.Context, tableName string) (*TableInfo, error) {
	conn, err := t.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer t.pool.Release(conn)

	tables, err := t.dialect.IntrospectTables(ctx, conn.DB())
	if err != nil {
		return nil, errors.NewQueryError(errors.ErrQueryFailed, "listing tables failed").WithCause(err)
	}
	if !containsTable(tables, tableName) {
		e := errors.NewQueryError(errors.ErrTableUnknown,
			fmt.Sprintf("table %q does not exist", tableName))
		if s := errors.SuggestSimilar(tableName, tables); s != "" {
			e = e.WithSuggestion(s)
		}
		return nil, e
	}

	columns, err := t.dialect.IntrospectColumns(ctx, conn.DB(), tableName)
	if err != nil {
		return nil, errors.NewQueryError(errors.ErrQueryFailed,
			fmt.Sprintf("describing table %q failed", tableName)).WithCause(err)
	}
	indexes, err := t.dialect.IntrospectIndexes(ctx, conn.DB(), tableName)
	if err != nil {
		return nil, errors.NewQueryError(errors.ErrQueryFailed,
			fmt.Sprintf("describing table %q failed", tableName)).WithCause(err)
	}

	return &TableInfo{Name: tableName, Columns: columns, Indexes: indexes}, nil
}

func containsTable(tables []string, name string) bool {
	for _, t := range tables {
		if t == name {
			return true
		}
	}
	return false
}

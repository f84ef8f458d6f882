package tools

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/strata-db/strata/pkg/core/connection"
	"github.com/strata-db/strata/pkg/dialects"
	"github.com/strata-db/strata/pkg/errors"

	_ "github.com/strata-db/strata/pkg/dialects/sqlite"
)

// newTestToolbox builds a toolbox over a shared-cache in-memory database.
// The pool's minimum of one connection keeps the shared database alive
// across acquire/release cycles.
func newTestToolbox(t *testing.T) *Toolbox {
	t.Helper()

	dialect, err := dialects.ForName("sqlite")
	require.NoError(t, err)

	cfg := connection.Config{
		Driver:            dialect.DriverName(),
		DSN:               fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		ProbeSQL:          dialect.ProbeSQL(),
		MinConnections:    1,
		MaxConnections:    4,
		ConnectionTimeout: 2 * time.Second,
		RetryInterval:     time.Millisecond,
		MaxRetries:        2,
	}
	pool := connection.NewPool(cfg, zap.NewNop())
	require.NoError(t, pool.Initialize(context.Background()))
	t.Cleanup(pool.Close)

	return New(pool, dialect, zap.NewNop())
}

func requireCode(t *testing.T, err error, code errors.ErrorCode) *errors.StrataError {
	t.Helper()
	var se *errors.StrataError
	require.ErrorAs(t, err, &se)
	require.Equal(t, code, se.Code)
	return se
}

func TestToolboxRoundTrip(t *testing.T) {
	tb := newTestToolbox(t)
	ctx := context.Background()

	_, err := tb.ExecuteDDL(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL)")
	require.NoError(t, err)

	rs, err := tb.WriteQuery(ctx, "INSERT INTO users (name) VALUES (?)", "ada")
	require.NoError(t, err)
	require.Equal(t, int64(1), rs.RowsAffected)
	require.Equal(t, int64(1), rs.LastInsertID)

	rs, err = tb.ReadQuery(ctx, "SELECT id, name FROM users")
	require.NoError(t, err)
	require.Equal(t, []string{"id", "name"}, rs.Columns)
	require.Equal(t, 1, rs.RowCount)
	require.Equal(t, "ada", rs.Rows[0][1])
}

func TestToolboxRejectsWrongStatementKind(t *testing.T) {
	tb := newTestToolbox(t)
	ctx := context.Background()

	_, err := tb.ReadQuery(ctx, "DELETE FROM users")
	requireCode(t, err, errors.ErrQueryRejected)

	_, err = tb.WriteQuery(ctx, "SELECT 1")
	requireCode(t, err, errors.ErrQueryRejected)

	_, err = tb.ExecuteDDL(ctx, "INSERT INTO users (name) VALUES ('x')")
	requireCode(t, err, errors.ErrQueryRejected)

	_, err = tb.ReadQuery(ctx, "SELECT 1; DROP TABLE users")
	requireCode(t, err, errors.ErrQueryRejected)
}

func TestToolboxReadFailureIsStructured(t *testing.T) {
	tb := newTestToolbox(t)

	_, err := tb.ReadQuery(context.Background(), "SELECT * FROM missing")
	se := requireCode(t, err, errors.ErrQueryFailed)
	require.Error(t, se.Cause)
}

func TestToolboxWriteRollsBackOnFailure(t *testing.T) {
	tb := newTestToolbox(t)
	ctx := context.Background()

	_, err := tb.ExecuteDDL(ctx, "CREATE TABLE t (id INTEGER PRIMARY KEY, v TEXT UNIQUE)")
	require.NoError(t, err)

	_, err = tb.WriteQuery(ctx, "INSERT INTO t (v) VALUES ('x')")
	require.NoError(t, err)

	// Unique violation fails the transaction.
	_, err = tb.WriteQuery(ctx, "INSERT INTO t (v) VALUES ('x')")
	requireCode(t, err, errors.ErrTxFailed)

	rs, err := tb.ReadQuery(ctx, "SELECT v FROM t")
	require.NoError(t, err)
	require.Equal(t, 1, rs.RowCount)
}

func TestToolboxListTables(t *testing.T) {
	tb := newTestToolbox(t)
	ctx := context.Background()

	tables, err := tb.ListTables(ctx)
	require.NoError(t, err)
	require.Empty(t, tables)

	_, err = tb.ExecuteDDL(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY)")
	require.NoError(t, err)
	_, err = tb.ExecuteDDL(ctx, "CREATE TABLE posts (id INTEGER PRIMARY KEY)")
	require.NoError(t, err)

	tables, err = tb.ListTables(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"posts", "users"}, tables)
}

func TestToolboxDescribeTable(t *testing.T) {
	tb := newTestToolbox(t)
	ctx := context.Background()

	_, err := tb.ExecuteDDL(ctx, `CREATE TABLE users (
		id INTEGER PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		bio TEXT
	)`)
	require.NoError(t, err)
	_, err = tb.ExecuteDDL(ctx, "CREATE INDEX idx_users_bio ON users (bio)")
	require.NoError(t, err)

	info, err := tb.DescribeTable(ctx, "users")
	require.NoError(t, err)
	require.Equal(t, "users", info.Name)
	require.Len(t, info.Columns, 3)

	byName := map[string]bool{}
	for _, col := range info.Columns {
		byName[col.Name] = true
		if col.Name == "id" {
			require.True(t, col.IsPrimaryKey)
			require.True(t, col.AutoInc)
		}
		if col.Name == "email" {
			require.False(t, col.Nullable)
			require.True(t, col.IsUnique)
		}
	}
	require.True(t, byName["bio"])

	require.Len(t, info.Indexes, 1)
	require.Equal(t, "idx_users_bio", info.Indexes[0].Name)
	require.Equal(t, []string{"bio"}, info.Indexes[0].Columns)
	require.False(t, info.Indexes[0].Unique)
}

func TestToolboxDescribeUnknownTableSuggests(t *testing.T) {
	tb := newTestToolbox(t)
	ctx := context.Background()

	_, err := tb.ExecuteDDL(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY)")
	require.NoError(t, err)

	_, err = tb.DescribeTable(ctx, "user")
	se := requireCode(t, err, errors.ErrTableUnknown)
	require.Contains(t, se.Suggestion, "users")
}

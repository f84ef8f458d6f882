package tools

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strata-db/strata/pkg/errors"
)

func requireRejected(t *testing.T, err error) {
	t.Helper()
	var se *errors.StrataError
	require.ErrorAs(t, err, &se)
	require.Equal(t, errors.ErrQueryRejected, se.Code)
}

func TestValidateRead(t *testing.T) {
	accepted := []string{
		"SELECT * FROM users",
		"select 1",
		"WITH x AS (SELECT 1) SELECT * FROM x",
		"EXPLAIN SELECT 1",
		"SELECT 1;",
		"-- comment first\nSELECT 1",
		"/* block */ SELECT 1",
	}
	for _, stmt := range accepted {
		require.NoError(t, validateRead(stmt), "statement: %q", stmt)
	}

	rejected := []string{
		"",
		"   ",
		"-- only a comment",
		"INSERT INTO t VALUES (1)",
		"UPDATE t SET v = 1",
		"DROP TABLE t",
		"SELECT 1; DROP TABLE users",
		"SELECT 1; SELECT 2",
	}
	for _, stmt := range rejected {
		err := validateRead(stmt)
		require.Error(t, err, "statement: %q", stmt)
		requireRejected(t, err)
	}
}

func TestValidateWrite(t *testing.T) {
	accepted := []string{
		"INSERT INTO t (v) VALUES (1)",
		"update t set v = 2 where id = 1",
		"DELETE FROM t WHERE id = 1",
		"REPLACE INTO t (id, v) VALUES (1, 2)",
		"DELETE FROM t;",
	}
	for _, stmt := range accepted {
		require.NoError(t, validateWrite(stmt), "statement: %q", stmt)
	}

	rejected := []string{
		"SELECT * FROM t",
		"CREATE TABLE t (v TEXT)",
		"INSERT INTO t VALUES (1); DELETE FROM t",
		"",
	}
	for _, stmt := range rejected {
		requireRejected(t, validateWrite(stmt))
	}
}

func TestValidateDDL(t *testing.T) {
	accepted := []string{
		"CREATE TABLE t (v TEXT)",
		"alter table t add column w TEXT",
		"DROP TABLE t",
		"TRUNCATE TABLE t",
	}
	for _, stmt := range accepted {
		require.NoError(t, validateDDL(stmt), "statement: %q", stmt)
	}

	rejected := []string{
		"SELECT 1",
		"INSERT INTO t VALUES (1)",
		"DROP TABLE a; DROP TABLE b",
	}
	for _, stmt := range rejected {
		requireRejected(t, validateDDL(stmt))
	}
}

func TestSemicolonInsideCommentIgnored(t *testing.T) {
	require.NoError(t, validateRead("SELECT 1 -- trailing; note"))
	require.NoError(t, validateRead("SELECT 1 /* a; b */"))
}

func TestRejectionIsStructured(t *testing.T) {
	err := validateRead("DROP TABLE users")
	var se *errors.StrataError
	require.True(t, stderrors.As(err, &se))
	require.NotEmpty(t, se.Suggestion)
}

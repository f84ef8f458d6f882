package dialects_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strata-db/strata/pkg/dialects"

	_ "github.com/strata-db/strata/pkg/dialects/mysql"
	_ "github.com/strata-db/strata/pkg/dialects/postgres"
	_ "github.com/strata-db/strata/pkg/dialects/sqlite"
)

func TestRegistry(t *testing.T) {
	require.Equal(t, []string{"mysql", "postgres", "sqlite"}, dialects.Names())

	_, err := dialects.ForName("oracle")
	require.Error(t, err)
	require.Contains(t, err.Error(), "oracle")
}

func TestDialectSurface(t *testing.T) {
	cases := []struct {
		name        string
		driver      string
		quoted      string
		placeholder string
	}{
		{"sqlite", "sqlite3", `"users"`, "?"},
		{"mysql", "mysql", "`users`", "?"},
		{"postgres", "postgres", `"users"`, "$2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := dialects.ForName(tc.name)
			require.NoError(t, err)
			require.Equal(t, tc.name, d.Name())
			require.Equal(t, tc.driver, d.DriverName())
			require.Equal(t, tc.quoted, d.Quote("users"))
			require.Equal(t, tc.placeholder, d.Placeholder(2))
			require.Equal(t, "SELECT 1", d.ProbeSQL())
		})
	}
}

package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strata-db/strata/pkg/config"
)

func TestInitScaffoldsLoadableConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "project")
	require.NoError(t, Init(dir))

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	require.Equal(t, "sqlite", cfg.Database.Dialect)
	require.NoError(t, cfg.Validate())
}

func TestInitRefusesExistingProject(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(dir))

	err := Init(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "already initialized")
}

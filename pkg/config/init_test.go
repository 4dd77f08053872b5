package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfigToPath(t *testing.T) {
	t.Run("WritesLoadableConfig", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")

		require.NoError(t, InitConfigToPath(path, false))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, EnvDevelopment, cfg.Environment)
	})

	t.Run("RefusesToOverwrite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, InitConfigToPath(path, false))

		err := InitConfigToPath(path, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("ForceOverwrites", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, InitConfigToPath(path, false))
		assert.NoError(t, InitConfigToPath(path, true))
	})
}

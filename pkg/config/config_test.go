package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

const minimalConfig = `
environment: development
database:
  host: localhost
  port: 5432
  database: userd
  user: userd
  password: secret
`

func TestLoad(t *testing.T) {
	t.Run("MinimalFileGetsDefaults", func(t *testing.T) {
		path := writeConfigFile(t, minimalConfig)

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, EnvDevelopment, cfg.Environment)
		assert.Equal(t, "INFO", cfg.Logging.Level)
		assert.Equal(t, "text", cfg.Logging.Format)
		assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
		assert.Equal(t, 50051, cfg.Server.Port)
		assert.Equal(t, 8080, cfg.Ops.Port)
		assert.Equal(t, int32(10), cfg.Database.MaxConns)
		assert.Equal(t, int32(3), cfg.Database.MinConns)
	})

	t.Run("OpsEnabledWhenOmitted", func(t *testing.T) {
		path := writeConfigFile(t, minimalConfig)

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.True(t, cfg.Ops.Enabled)
	})

	t.Run("OpsCanBeDisabledExplicitly", func(t *testing.T) {
		path := writeConfigFile(t, `
environment: development
ops:
  enabled: false
database:
  host: localhost
  port: 5432
  database: userd
  user: userd
  password: secret
`)

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.False(t, cfg.Ops.Enabled)
	})

	t.Run("MissingFileUsesDefaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, EnvDevelopment, cfg.Environment)
	})

	t.Run("DurationStringsAreParsed", func(t *testing.T) {
		path := writeConfigFile(t, `
environment: development
shutdown_timeout: 12s
database:
  host: localhost
  port: 5432
  database: userd
  user: userd
  password: secret
  query_timeout: 45s
`)

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 12*time.Second, cfg.ShutdownTimeout)
		assert.Equal(t, 45*time.Second, cfg.Database.QueryTimeout)
	})

	t.Run("InvalidPoolSizingIsRejected", func(t *testing.T) {
		path := writeConfigFile(t, `
environment: development
database:
  host: localhost
  port: 5432
  database: userd
  user: userd
  password: secret
  min_conns: 5
  max_conns: 2
`)

		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "min_conns")
	})

	t.Run("InvalidEnvironmentIsRejected", func(t *testing.T) {
		path := writeConfigFile(t, `
environment: sandbox
database:
  host: localhost
  port: 5432
  database: userd
  user: userd
  password: secret
`)

		_, err := Load(path)
		require.Error(t, err)
	})

	t.Run("ProductionWithoutTLSIsRejected", func(t *testing.T) {
		path := writeConfigFile(t, `
environment: production
database:
  host: localhost
  port: 5432
  database: userd
  user: userd
  password: secret
`)

		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tls")
	})

	t.Run("ProductionWithTLSPasses", func(t *testing.T) {
		path := writeConfigFile(t, `
environment: production
server:
  tls:
    cert_file: /etc/userd/tls/server.crt
    key_file: /etc/userd/tls/server.key
database:
  host: localhost
  port: 5432
  database: userd
  user: userd
  password: secret
`)

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.True(t, cfg.Server.TLS.Enabled())
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("ExplicitMissingFileFails", func(t *testing.T) {
		_, err := MustLoad(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "userd init")
	})

	t.Run("ExistingFileLoads", func(t *testing.T) {
		path := writeConfigFile(t, minimalConfig)
		cfg, err := MustLoad(path)
		require.NoError(t, err)
		assert.NotNil(t, cfg)
	})
}

func TestSaveConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := GetDefaultConfig()
	require.NoError(t, SaveConfig(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Environment, loaded.Environment)
	assert.Equal(t, cfg.Server.Port, loaded.Server.Port)
}

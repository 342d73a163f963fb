package dbal

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bratiask/dbal/types"
)

func TestConfigValidateMissingPrimary(t *testing.T) {
	cfg := Config{
		Replicas: []types.BackendConfig{{Host: "replica-1"}},
	}

	err := cfg.validate()
	require.Error(t, err)

	var confErr *types.ConfigurationError
	require.ErrorAs(t, err, &confErr)
	require.ErrorIs(t, err, types.ErrMissingPrimary)
}

func TestConfigValidateMissingReplicas(t *testing.T) {
	cfg := Config{
		Primary: &types.BackendConfig{Host: "primary"},
	}

	require.ErrorIs(t, cfg.validate(), types.ErrMissingReplicas)

	// An empty list is as bad as a missing one.
	cfg.Replicas = []types.BackendConfig{}
	require.ErrorIs(t, cfg.validate(), types.ErrMissingReplicas)
}

func TestConfigValidateOK(t *testing.T) {
	cfg := Config{
		Primary:  &types.BackendConfig{Host: "primary"},
		Replicas: []types.BackendConfig{{Host: "replica-1"}},
	}

	require.NoError(t, cfg.validate())
}

func TestConfigNormalizedMergesDriver(t *testing.T) {
	cfg := Config{
		Driver:  "mysql",
		Primary: &types.BackendConfig{Host: "primary"},
		Replicas: []types.BackendConfig{
			{Host: "replica-1"},
			{Host: "replica-2", Driver: "sqlite3"},
		},
	}

	norm := cfg.normalized()

	require.Equal(t, "mysql", norm.Primary.Driver)
	require.Equal(t, "mysql", norm.Replicas[0].Driver)
	// An explicit per-backend driver wins over the shared identity.
	require.Equal(t, "sqlite3", norm.Replicas[1].Driver)

	// The source config must stay untouched.
	require.Empty(t, cfg.Primary.Driver)
	require.Empty(t, cfg.Replicas[0].Driver)
}

func TestParseConfig(t *testing.T) {
	data := []byte(`
driver: mysql
primary:
  host: db-primary.local
  port: 3306
  username: app
  password: secret
  database: orders
  charset: utf8mb4
replica:
  - host: db-replica-1.local
    username: app_ro
    password: secret
    database: orders
  - host: db-replica-2.local
    username: app_ro
    password: secret
    database: orders
    charset: latin1
keep_replica: true
`)

	cfg, err := ParseConfig(data)
	require.NoError(t, err)

	require.Equal(t, "mysql", cfg.Driver)
	require.NotNil(t, cfg.Primary)
	require.Equal(t, "db-primary.local", cfg.Primary.Host)
	require.Equal(t, 3306, cfg.Primary.Port)
	require.Equal(t, "utf8mb4", cfg.Primary.Charset)
	require.Len(t, cfg.Replicas, 2)
	require.Equal(t, "db-replica-2.local", cfg.Replicas[1].Host)
	require.Equal(t, "latin1", cfg.Replicas[1].Charset)
	require.True(t, cfg.KeepReplica)

	require.NoError(t, cfg.validate())
}

func TestParseConfigInvalidYAML(t *testing.T) {
	_, err := ParseConfig([]byte("driver: [unterminated"))
	require.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dbal.yaml")
	data := []byte("driver: mysql\nprimary:\n  host: p\nreplica:\n  - host: r\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "p", cfg.Primary.Host)
	require.Len(t, cfg.Replicas, 1)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.ErrorIs(t, err, fs.ErrNotExist)
}

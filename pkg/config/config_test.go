package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func yamlSafePath(p string) string {
	return filepath.ToSlash(p)
}

func TestLoad_AppliesDefaultsToUnsetFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := `
session:
  jwt_signing_key: "this-is-a-test-signing-key-that-is-long"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "localhost", cfg.Connection.Host)
	require.Equal(t, "INFO", cfg.Logging.Level)
	require.Equal(t, "sqlite", cfg.PlanCache.DatabaseType)
}

func TestLoad_DefaultsFailValidationWithoutSigningKey(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestLoad_ReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := `
connection:
  host: "db.example.com"
  port: 1523

logging:
  level: "DEBUG"

plan_cache:
  database_type: sqlite
  sqlite_path: "` + yamlSafePath(dir) + `/plancache.db"

session:
  jwt_signing_key: "this-is-a-test-signing-key-that-is-long"

param_cache:
  path: "` + yamlSafePath(dir) + `/paramcache"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "db.example.com", cfg.Connection.Host)
	require.Equal(t, "DEBUG", cfg.Logging.Level)
	require.Equal(t, "lzo1x", cfg.Backup.CompressionType)
}

func TestLoad_RejectsBadLogLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := `
logging:
  level: "VERBOSE"
session:
  jwt_signing_key: "this-is-a-test-signing-key-that-is-long"
param_cache:
  path: "` + yamlSafePath(dir) + `"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_RejectsS3EnabledWithoutBucket(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := `
logging:
  level: "INFO"
session:
  jwt_signing_key: "this-is-a-test-signing-key-that-is-long"
param_cache:
  path: "` + yamlSafePath(dir) + `"
backup:
  s3:
    enabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestGetDefaultConfigPath_UsesXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdgtest")
	require.Equal(t, "/tmp/xdgtest/dbrt/config.yaml", GetDefaultConfigPath())
}

func TestDefaultConfigExists_FalseWhenAbsent(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	require.False(t, DefaultConfigExists())
}

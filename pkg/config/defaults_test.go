package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestApplyDefaults_LeavesExplicitValuesAlone(t *testing.T) {
	cfg := &Config{
		Connection: ConnectionConfig{Host: "custom-host", Port: 9999},
		Logging:    LoggingConfig{Level: "error", Format: "json", Output: "/var/log/dbrt.log"},
	}
	ApplyDefaults(cfg)

	require.Equal(t, "custom-host", cfg.Connection.Host)
	require.Equal(t, 9999, cfg.Connection.Port)
	require.Equal(t, "ERROR", cfg.Logging.Level)
	require.Equal(t, "json", cfg.Logging.Format)
}

func TestApplyDefaults_FillsZeroValues(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	require.Equal(t, "localhost", cfg.Connection.Host)
	require.Equal(t, 1523, cfg.Connection.Port)
	require.Equal(t, 10*time.Second, cfg.Connection.DialTimeout)
	require.Equal(t, "INFO", cfg.Logging.Level)
	require.Equal(t, "text", cfg.Logging.Format)
	require.Equal(t, "stdout", cfg.Logging.Output)
	require.Equal(t, 1.0, cfg.Telemetry.SampleRate)
	require.Equal(t, "sqlite", cfg.PlanCache.DatabaseType)
	require.Equal(t, "plancache.db", cfg.PlanCache.SQLitePath)
	require.Equal(t, 1, cfg.Backup.Threads)
	require.Equal(t, "lzo1x", cfg.Backup.CompressionType)
	require.Equal(t, 8*time.Hour, cfg.Session.TokenTTL)
	require.Equal(t, 24*time.Hour, cfg.ParamCache.TTL)
}

func TestApplyDefaults_PostgresGetsDisableSSLModeNotSQLitePath(t *testing.T) {
	cfg := &Config{PlanCache: PlanCacheConfig{DatabaseType: "postgres"}}
	ApplyDefaults(cfg)

	require.Equal(t, "disable", cfg.PlanCache.SSLMode)
	require.Empty(t, cfg.PlanCache.SQLitePath)
}

func TestApplyDefaults_ReconnectAttemptsOnlySetWhenEnabled(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	require.Zero(t, cfg.Connection.ReconnectMaxAttempts)

	cfg2 := &Config{Connection: ConnectionConfig{ReconnectEnabled: true}}
	ApplyDefaults(cfg2)
	require.Equal(t, 5, cfg2.Connection.ReconnectMaxAttempts)
	require.Equal(t, 2*time.Second, cfg2.Connection.ReconnectBackoff)
}

package config

import (
	"strings"
	"time"
)

// ApplyDefaults fills in any unspecified configuration fields with
// sensible defaults. Called after decoding from file/env, before Validate.
func ApplyDefaults(cfg *Config) {
	applyConnectionDefaults(&cfg.Connection)
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyPlanCacheDefaults(&cfg.PlanCache)
	applyBackupDefaults(&cfg.Backup)
	applySessionDefaults(&cfg.Session)
	applyParamCacheDefaults(&cfg.ParamCache)
}

func applyConnectionDefaults(cfg *ConnectionConfig) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 1523
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.ReconnectEnabled && cfg.ReconnectMaxAttempts == 0 {
		cfg.ReconnectMaxAttempts = 5
	}
	if cfg.ReconnectEnabled && cfg.ReconnectBackoff == 0 {
		cfg.ReconnectBackoff = 2 * time.Second
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
	if cfg.Profiling.Endpoint == "" {
		cfg.Profiling.Endpoint = "http://localhost:4040"
	}
}

func applyPlanCacheDefaults(cfg *PlanCacheConfig) {
	if cfg.DatabaseType == "" {
		cfg.DatabaseType = "sqlite"
	}
	if cfg.DatabaseType == "sqlite" && cfg.SQLitePath == "" {
		cfg.SQLitePath = "plancache.db"
	}
	if cfg.DatabaseType == "postgres" && cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	if cfg.MaxEntries == 0 {
		cfg.MaxEntries = 1000
	}
}

func applyBackupDefaults(cfg *BackupConfig) {
	if cfg.Threads == 0 {
		cfg.Threads = 1
	}
	if cfg.SleepMsecs == 0 {
		cfg.SleepMsecs = 0
	}
	if cfg.CompressionType == "" {
		cfg.CompressionType = "lzo1x"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Hour
	}
}

func applySessionDefaults(cfg *SessionConfig) {
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 8 * time.Hour
	}
}

func applyParamCacheDefaults(cfg *ParamCacheConfig) {
	if cfg.Path == "" {
		cfg.Path = "paramcache"
	}
	if cfg.TTL == 0 {
		cfg.TTL = 24 * time.Hour
	}
}

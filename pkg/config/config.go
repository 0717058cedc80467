// Package config loads and validates the client runtime's configuration:
// connection parameters, logging, telemetry, plan cache backend, backup
// defaults, session signing, and the forced-parameter cache.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config is the top-level configuration for a dbrt client runtime.
//
// Configuration sources, in order of precedence:
//  1. CLI flags (highest priority, applied by cmd/dbctl)
//  2. Environment variables (DBRT_*), for keys the configuration file sets
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
type Config struct {
	Connection ConnectionConfig `mapstructure:"connection" yaml:"connection"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry" yaml:"telemetry"`
	PlanCache  PlanCacheConfig  `mapstructure:"plan_cache" yaml:"plan_cache"`
	Backup     BackupConfig     `mapstructure:"backup" yaml:"backup"`
	Session    SessionConfig    `mapstructure:"session" yaml:"session"`
	ParamCache ParamCacheConfig `mapstructure:"param_cache" yaml:"param_cache"`
}

// ConnectionConfig controls how the dispatcher dials and frames requests
// to the server (C3).
type ConnectionConfig struct {
	Host string `mapstructure:"host" validate:"required" yaml:"host"`
	Port int    `mapstructure:"port" validate:"required,min=1,max=65535" yaml:"port"`

	DialTimeout time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`

	// ReconnectEnabled controls whether a dropped connection is
	// automatically retried (bounded by ReconnectMaxAttempts).
	ReconnectEnabled     bool          `mapstructure:"reconnect_enabled" yaml:"reconnect_enabled"`
	ReconnectMaxAttempts int           `mapstructure:"reconnect_max_attempts" validate:"omitempty,min=1" yaml:"reconnect_max_attempts"`
	ReconnectBackoff     time.Duration `mapstructure:"reconnect_backoff" yaml:"reconnect_backoff"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive).
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format selects the slog handler: text or json.
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output is stdout, stderr, or a file path.
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing, exported via
// OTLP/gRPC to a collector.
type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure bool   `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate is the trace sampling ratio, 0.0 to 1.0.
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling of cmd/dbctl.
type ProfilingConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
}

// PlanCacheConfig selects and configures the XASL plan cache backend.
type PlanCacheConfig struct {
	// DatabaseType is "sqlite" or "postgres".
	DatabaseType string `mapstructure:"database_type" validate:"required,oneof=sqlite postgres" yaml:"database_type"`

	// SQLitePath is the database file used when DatabaseType is sqlite.
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`

	// Postgres connection parameters, used when DatabaseType is postgres.
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
	Database string `mapstructure:"database" yaml:"database"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	SSLMode  string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-ca verify-full" yaml:"ssl_mode"`

	MaxEntries int `mapstructure:"max_entries" yaml:"max_entries"`
}

// BackupConfig holds the default parameters a backup session starts with
// absent explicit overrides on the cmd/dbctl invocation (C8).
type BackupConfig struct {
	Threads         int           `mapstructure:"threads" yaml:"threads"`
	SleepMsecs      int           `mapstructure:"sleep_msecs" yaml:"sleep_msecs"`
	CompressionType string        `mapstructure:"compression_type" validate:"omitempty,oneof=none lzo1x s2 zstd" yaml:"compression_type"`
	Destination     string        `mapstructure:"destination" yaml:"destination"`
	RequiredSpaceOK bool          `mapstructure:"required_space_ok" yaml:"required_space_ok"`
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout"`

	S3 BackupS3Config `mapstructure:"s3" yaml:"s3"`
}

// BackupS3Config configures the optional secondary S3 upload destination.
type BackupS3Config struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Bucket    string `mapstructure:"bucket" validate:"required_if=Enabled true" yaml:"bucket"`
	Region    string `mapstructure:"region" yaml:"region"`
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	KeyPrefix string `mapstructure:"key_prefix" yaml:"key_prefix"`
}

// SessionConfig controls the client's session key (§4.4 csession_find_or_create_session).
type SessionConfig struct {
	// JWTSigningKey signs the session key returned alongside a new session id.
	JWTSigningKey string        `mapstructure:"jwt_signing_key" validate:"required,min=32" yaml:"jwt_signing_key"`
	TokenTTL      time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
}

// ParamCacheConfig configures the badger-backed local cache of forced
// server parameters (obtain_server_parameters / get_force_server_parameters).
type ParamCacheConfig struct {
	Path string        `mapstructure:"path" validate:"required" yaml:"path"`
	TTL  time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// Load loads configuration from file, environment, and defaults. When no
// config file is found, only the defaults are validated and returned; the
// environment is not consulted.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if !found {
		ApplyDefaults(cfg)
		if err := Validate(cfg); err != nil {
			return nil, fmt.Errorf("config: validate defaults: %w", err)
		}
		return cfg, nil
	}

	if err := v.Unmarshal(cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return cfg, nil
}

// Validate runs struct-tag validation over a decoded Config.
func Validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}

// DecodeAssignments decodes a loose map of parameter names to values (as
// read from a config file's sysprm block, or a dbctl paramdump payload)
// into typed SysprmAssignment values, the way the server-side force
// parameter list is represented on the wire.
func DecodeAssignments(raw map[string]any, out *[]SysprmAssignment) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: configDecodeHooks(),
		Result:     out,
	})
	if err != nil {
		return fmt.Errorf("config: build decoder: %w", err)
	}
	assignments := make([]SysprmAssignment, 0, len(raw))
	for name, value := range raw {
		assignments = append(assignments, SysprmAssignment{Name: name, Value: value})
	}
	return dec.Decode(assignments)
}

// SysprmAssignment is one forced-parameter name/value pair, mirroring the
// server's sysprm assignment list.
type SysprmAssignment struct {
	Name  string `mapstructure:"name"`
	Value any    `mapstructure:"value"`
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("DBRT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}

	v.AddConfigPath(getConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("config: read config file: %w", err)
	}
	return true, nil
}

func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
	)
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "dbrt")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "dbrt")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

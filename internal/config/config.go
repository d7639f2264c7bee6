// Package config provides configuration management for eventexport using Viper.
// It supports configuration from files, environment variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultServerPort      = 8080
	defaultServerTimeout   = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 10
	defaultConnMaxIdleTime = 30 * time.Minute
	defaultSignedURLTTL    = 60 * time.Second
	defaultHTTPTimeout     = 60 * time.Second
	defaultRetryAttempts   = 2
	defaultMaxFileSize     = 100 * 1024 * 1024 // 100MB
	defaultMaxParallel     = 2
)

// Placeholder policies accepted by export.placeholder_policy.
const (
	PlaceholderOff       = "off"
	PlaceholderOnFailure = "on_failure"
	PlaceholderOnEmpty   = "on_empty"
)

// Queue policies accepted by export.queue_policy.
const (
	QueueSequential = "sequential"
	QueueBounded    = "bounded"
)

// Config holds all configuration for the application.
type Config struct {
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
	Database    DatabaseConfig    `mapstructure:"database" yaml:"database"`
	Storage     StorageConfig     `mapstructure:"storage" yaml:"storage"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
	ObjectStore ObjectStoreConfig `mapstructure:"objectstore" yaml:"objectstore"`
	Export      ExportConfig      `mapstructure:"export" yaml:"export"`
	Schedule    []ScheduleEntry   `mapstructure:"schedule" yaml:"schedule"`
	Metrics     MetricsConfig     `mapstructure:"metrics" yaml:"metrics"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// DatabaseConfig holds the backing event store connection configuration.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver" yaml:"driver"` // sqlite, postgres, mysql
	DSN             string        `mapstructure:"dsn" yaml:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" yaml:"conn_max_idle_time"`
	LogLevel        string        `mapstructure:"log_level" yaml:"log_level"` // silent, error, warn, info
}

// StorageConfig holds local file storage configuration.
type StorageConfig struct {
	BaseDir    string `mapstructure:"base_dir" yaml:"base_dir"`
	ExportsDir string `mapstructure:"exports_dir" yaml:"exports_dir"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source" yaml:"add_source"`
	TimeFormat string `mapstructure:"time_format" yaml:"time_format"`
}

// ObjectStoreConfig holds the S3-compatible store used to sign media references.
// An empty Endpoint disables signing; references are then fetched as-is.
type ObjectStoreConfig struct {
	Endpoint     string        `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKey    string        `mapstructure:"access_key" yaml:"access_key"`
	SecretKey    string        `mapstructure:"secret_key" yaml:"secret_key"`
	UseSSL       bool          `mapstructure:"use_ssl" yaml:"use_ssl"`
	Region       string        `mapstructure:"region" yaml:"region"`
	SignedURLTTL time.Duration `mapstructure:"signed_url_ttl" yaml:"signed_url_ttl"`
}

// ExportConfig holds export pipeline configuration.
type ExportConfig struct {
	PlaceholderPolicy string        `mapstructure:"placeholder_policy" yaml:"placeholder_policy"`
	QueuePolicy       string        `mapstructure:"queue_policy" yaml:"queue_policy"`
	MaxParallel       int           `mapstructure:"max_parallel" yaml:"max_parallel"` // only used by the bounded queue
	HTTPTimeout       time.Duration `mapstructure:"http_timeout" yaml:"http_timeout"`
	RetryAttempts     int           `mapstructure:"retry_attempts" yaml:"retry_attempts"`
	MaxFileSize       ByteSize      `mapstructure:"max_file_size" yaml:"max_file_size"` // per archived file, e.g. "100MB"
}

// ScheduleEntry describes a recurring export written to storage.exports_dir.
type ScheduleEntry struct {
	Name      string   `mapstructure:"name" yaml:"name"`
	Cron      string   `mapstructure:"cron" yaml:"cron"` // 6-field cron expression
	EventID   string   `mapstructure:"event_id" yaml:"event_id"`
	CompanyID string   `mapstructure:"company_id" yaml:"company_id"`
	Bundles   []string `mapstructure:"bundles" yaml:"bundles"` // empty = whole catalog
	Keep      int      `mapstructure:"keep" yaml:"keep"`       // aggregates retained, 0 = all
}

// MetricsConfig holds prometheus exposition configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// Load reads configuration from file and environment variables.
// Environment variables take precedence over file configuration.
// Environment variables are prefixed with EVENTEXPORT_ and use underscores for nesting.
// Example: EVENTEXPORT_SERVER_PORT=8080.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/eventexport")
		v.AddConfigPath("$HOME/.eventexport")
	}

	v.SetEnvPrefix("EVENTEXPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper unmarshals and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHook())); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults configures default values for all configuration options.
// This should be called before reading the config file to ensure defaults are in place.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.read_timeout", defaultServerTimeout)
	v.SetDefault("server.write_timeout", 5*time.Minute) // large aggregate downloads
	v.SetDefault("server.shutdown_timeout", defaultShutdownTimeout)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "eventexport.db")
	v.SetDefault("database.max_open_conns", defaultMaxOpenConns)
	v.SetDefault("database.max_idle_conns", defaultMaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", defaultConnMaxIdleTime)
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("storage.base_dir", "./data")
	v.SetDefault("storage.exports_dir", "exports")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	v.SetDefault("objectstore.endpoint", "")
	v.SetDefault("objectstore.access_key", "")
	v.SetDefault("objectstore.secret_key", "")
	v.SetDefault("objectstore.use_ssl", true)
	v.SetDefault("objectstore.region", "")
	v.SetDefault("objectstore.signed_url_ttl", defaultSignedURLTTL)

	v.SetDefault("export.placeholder_policy", PlaceholderOnFailure)
	v.SetDefault("export.queue_policy", QueueSequential)
	v.SetDefault("export.max_parallel", defaultMaxParallel)
	v.SetDefault("export.http_timeout", defaultHTTPTimeout)
	v.SetDefault("export.retry_attempts", defaultRetryAttempts)
	v.SetDefault("export.max_file_size", defaultMaxFileSize)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	const maxPort = 65535
	if c.Server.Port < 1 || c.Server.Port > maxPort {
		return fmt.Errorf("server.port must be between 1 and %d", maxPort)
	}

	validDrivers := map[string]bool{"sqlite": true, "postgres": true, "mysql": true}
	if !validDrivers[c.Database.Driver] {
		return fmt.Errorf("database.driver must be one of: sqlite, postgres, mysql")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}

	if c.Storage.BaseDir == "" {
		return fmt.Errorf("storage.base_dir is required")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	if c.ObjectStore.SignedURLTTL <= 0 {
		return fmt.Errorf("objectstore.signed_url_ttl must be positive")
	}

	switch c.Export.PlaceholderPolicy {
	case PlaceholderOff, PlaceholderOnFailure, PlaceholderOnEmpty:
	default:
		return fmt.Errorf("export.placeholder_policy must be one of: off, on_failure, on_empty")
	}
	switch c.Export.QueuePolicy {
	case QueueSequential:
	case QueueBounded:
		if c.Export.MaxParallel < 1 {
			return fmt.Errorf("export.max_parallel must be at least 1")
		}
	default:
		return fmt.Errorf("export.queue_policy must be one of: sequential, bounded")
	}

	for i, entry := range c.Schedule {
		if entry.Cron == "" || entry.EventID == "" || entry.CompanyID == "" {
			return fmt.Errorf("schedule[%d]: cron, event_id and company_id are required", i)
		}
		if entry.Keep < 0 {
			return fmt.Errorf("schedule[%d]: keep must not be negative", i)
		}
	}

	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ExportsPath returns the full path to the scheduled exports directory.
func (c *StorageConfig) ExportsPath() string {
	return filepath.Join(c.BaseDir, c.ExportsDir)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Database: DatabaseConfig{
			Driver:   "sqlite",
			DSN:      "test.db",
			LogLevel: "warn",
		},
		Storage:     StorageConfig{BaseDir: "./data", ExportsDir: "exports"},
		Logging:     LoggingConfig{Level: "info", Format: "json"},
		ObjectStore: ObjectStoreConfig{SignedURLTTL: time.Minute},
		Export: ExportConfig{
			PlaceholderPolicy: PlaceholderOnFailure,
			QueuePolicy:       QueueSequential,
		},
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "eventexport.db", cfg.Database.DSN)
	assert.Equal(t, "./data", cfg.Storage.BaseDir)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 60*time.Second, cfg.ObjectStore.SignedURLTTL)
	assert.Equal(t, PlaceholderOnFailure, cfg.Export.PlaceholderPolicy)
	assert.Equal(t, QueueSequential, cfg.Export.QueuePolicy)
	assert.Equal(t, int64(100*1024*1024), cfg.Export.MaxFileSize.Bytes())
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
export:
  placeholder_policy: "off"
  queue_policy: bounded
  max_parallel: 4
objectstore:
  endpoint: minio.local:9000
  signed_url_ttl: 2m
schedule:
  - name: nightly
    cron: "0 0 3 * * *"
    event_id: 01HZX3M6S6R8K3V2Q9C4D5E6F7
    company_id: 01HZX3M6S6R8K3V2Q9C4D5E6F8
    bundles: [guest-list, analytics-report]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, PlaceholderOff, cfg.Export.PlaceholderPolicy)
	assert.Equal(t, QueueBounded, cfg.Export.QueuePolicy)
	assert.Equal(t, 4, cfg.Export.MaxParallel)
	assert.Equal(t, "minio.local:9000", cfg.ObjectStore.Endpoint)
	assert.Equal(t, 2*time.Minute, cfg.ObjectStore.SignedURLTTL)
	require.Len(t, cfg.Schedule, 1)
	assert.Equal(t, "nightly", cfg.Schedule[0].Name)
	assert.Equal(t, []string{"guest-list", "analytics-report"}, cfg.Schedule[0].Bundles)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("EVENTEXPORT_SERVER_PORT", "7070")
	t.Setenv("EVENTEXPORT_EXPORT_PLACEHOLDER_POLICY", "on_empty")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, PlaceholderOnEmpty, cfg.Export.PlaceholderPolicy)
}

func TestLoad_HumanReadableUnits(t *testing.T) {
	t.Setenv("EVENTEXPORT_EXPORT_MAX_FILE_SIZE", "25MB")
	t.Setenv("EVENTEXPORT_EXPORT_HTTP_TIMEOUT", "2m30s")
	t.Setenv("EVENTEXPORT_DATABASE_CONN_MAX_LIFETIME", "1d")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, int64(25*1024*1024), cfg.Export.MaxFileSize.Bytes())
	assert.Equal(t, "25MB", cfg.Export.MaxFileSize.String())
	assert.Equal(t, 150*time.Second, cfg.Export.HTTPTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Database.ConnMaxLifetime)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"bad driver", func(c *Config) { c.Database.Driver = "oracle" }, "database.driver"},
		{"empty dsn", func(c *Config) { c.Database.DSN = "" }, "database.dsn"},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"zero ttl", func(c *Config) { c.ObjectStore.SignedURLTTL = 0 }, "signed_url_ttl"},
		{"bad placeholder", func(c *Config) { c.Export.PlaceholderPolicy = "always" }, "placeholder_policy"},
		{"bad queue", func(c *Config) { c.Export.QueuePolicy = "parallel" }, "queue_policy"},
		{"bounded without parallelism", func(c *Config) {
			c.Export.QueuePolicy = QueueBounded
			c.Export.MaxParallel = 0
		}, "max_parallel"},
		{"incomplete schedule", func(c *Config) {
			c.Schedule = []ScheduleEntry{{Name: "x", Cron: "0 * * * * *"}}
		}, "schedule[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStorageConfig_ExportsPath(t *testing.T) {
	c := StorageConfig{BaseDir: "/var/lib/eventexport", ExportsDir: "exports"}
	assert.Equal(t, filepath.Join("/var/lib/eventexport", "exports"), c.ExportsPath())
}

package database

import (
	"context"
	"testing"
	"time"

	"github.com/jmylchreest/eventexport/internal/config"
	"github.com/jmylchreest/eventexport/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

// setupTestDB creates a migrated in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(config.DatabaseConfig{
		Driver:          "sqlite",
		DSN:             ":memory:",
		ConnMaxLifetime: time.Hour,
		LogLevel:        "silent",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func TestNew_SQLite(t *testing.T) {
	db := setupTestDB(t)

	assert.NoError(t, db.Ping(context.Background()))
	assert.Equal(t, "sqlite", db.Driver())
}

func TestNew_InvalidDriver(t *testing.T) {
	db, err := New(config.DatabaseConfig{Driver: "invalid", DSN: ":memory:"}, nil)
	require.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestDB_Close(t *testing.T) {
	db, err := New(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"}, nil)
	require.NoError(t, err)

	require.NoError(t, db.Close())
	assert.Error(t, db.Ping(context.Background()))
}

func TestDB_Migrate_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Migrate(context.Background()))
	assert.True(t, db.Migrator().HasTable("module_responses"))
}

func TestSeed(t *testing.T) {
	db := setupTestDB(t)
	start := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	res, err := Seed(context.Background(), db.DB, SeedOptions{
		CompanyName:  "Acme",
		EventName:    "Launch",
		MediaBaseURL: "https://files.example.com",
		StartsAt:     start,
	})
	require.NoError(t, err)
	assert.False(t, res.EventID.IsZero())
	assert.False(t, res.CompanyID.IsZero())
	assert.Equal(t, 4, res.Guests)

	var event models.Event
	require.NoError(t, db.First(&event, "id = ?", res.EventID).Error)
	assert.Equal(t, "Launch", event.Name)
	assert.Equal(t, res.CompanyID, event.CompanyID)

	counts := map[string]int64{}
	for _, table := range models.EventTables {
		var n int64
		require.NoError(t, db.Table(table).Where("event_id = ?", res.EventID).Count(&n).Error)
		counts[table] = n
	}
	assert.Equal(t, int64(4), counts["guests"])
	assert.Equal(t, int64(6), counts["module_responses"])
	assert.Equal(t, int64(3), counts["activity_logs"])
}

func TestGormLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected logger.LogLevel
	}{
		{"silent", logger.Silent},
		{"error", logger.Error},
		{"warn", logger.Warn},
		{"info", logger.Info},
		{"", logger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, gormLogLevel(tt.level))
		})
	}
}

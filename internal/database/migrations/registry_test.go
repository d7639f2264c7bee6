package migrations

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/jmylchreest/eventexport/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db
}

func TestAllMigrations_VersionsAreOrderedAndUnique(t *testing.T) {
	migrations := AllMigrations()
	require.NotEmpty(t, migrations)

	for i := 1; i < len(migrations); i++ {
		assert.Less(t, migrations[i-1].Version, migrations[i].Version)
	}
}

func TestMigrator_Up_CreatesEventTables(t *testing.T) {
	db := setupTestDB(t)

	migrator := NewMigrator(db, nil)
	migrator.RegisterAll(AllMigrations())
	require.NoError(t, migrator.Up(context.Background()))

	assert.True(t, db.Migrator().HasTable("companies"))
	assert.True(t, db.Migrator().HasTable("events"))
	for _, table := range models.EventTables {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex("guests", "idx_guests_scope"))
}

func TestMigrator_Up_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	migrator := NewMigrator(db, nil)
	migrator.RegisterAll(AllMigrations())

	require.NoError(t, migrator.Up(ctx))
	require.NoError(t, migrator.Up(ctx))

	var count int64
	require.NoError(t, db.Model(&MigrationRecord{}).Count(&count).Error)
	assert.Equal(t, int64(len(AllMigrations())), count)
}

func TestMigrator_Status(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	migrator := NewMigrator(db, nil)
	migrator.RegisterAll(AllMigrations())

	statuses, err := migrator.Status(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, len(AllMigrations()))
	for _, s := range statuses {
		assert.False(t, s.Applied)
	}

	require.NoError(t, migrator.Up(ctx))

	statuses, err = migrator.Status(ctx)
	require.NoError(t, err)
	for _, s := range statuses {
		assert.True(t, s.Applied)
		assert.NotNil(t, s.AppliedAt)
	}
}

func TestMigrator_Down(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	migrator := NewMigrator(db, nil)
	migrator.RegisterAll(AllMigrations())
	require.NoError(t, migrator.Up(ctx))

	require.NoError(t, migrator.Down(ctx))
	assert.False(t, db.Migrator().HasIndex("guests", "idx_guests_scope"))
	assert.True(t, db.Migrator().HasTable("guests"))

	require.NoError(t, migrator.Down(ctx))
	assert.False(t, db.Migrator().HasTable("guests"))
	assert.False(t, db.Migrator().HasTable("companies"))

	// Nothing left to roll back.
	require.NoError(t, migrator.Down(ctx))
}

func TestMigrator_Down_Irreversible(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	migrator := NewMigrator(db, nil)
	migrator.RegisterAll([]Migration{{
		Version:     "001",
		Description: "one way",
		Up:          func(tx *gorm.DB) error { return nil },
	}})
	require.NoError(t, migrator.Up(ctx))
	assert.ErrorIs(t, migrator.Down(ctx), ErrIrreversible)
}

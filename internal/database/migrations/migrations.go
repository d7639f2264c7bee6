// Package migrations versions the event store schema. Applied versions are
// recorded in schema_migrations so Up is idempotent.
package migrations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ErrIrreversible is returned by Down when the last applied migration is
// unknown to this binary or has no Down step.
var ErrIrreversible = errors.New("migration cannot be rolled back")

// Migration is one schema step. Versions sort lexically.
type Migration struct {
	Version     string
	Description string
	Up          func(tx *gorm.DB) error
	Down        func(tx *gorm.DB) error
}

// MigrationRecord is a row of schema_migrations.
type MigrationRecord struct {
	ID          uint      `gorm:"primarykey"`
	Version     string    `gorm:"uniqueIndex;not null"`
	Description string    `gorm:"not null"`
	AppliedAt   time.Time `gorm:"not null"`
}

func (MigrationRecord) TableName() string {
	return "schema_migrations"
}

// MigrationStatus pairs a registered migration with when it was applied.
type MigrationStatus struct {
	Version     string
	Description string
	Applied     bool
	AppliedAt   *time.Time
}

// Migrator applies registered migrations in version order, one
// transaction per migration.
type Migrator struct {
	db         *gorm.DB
	logger     *slog.Logger
	migrations []Migration
}

// NewMigrator creates a Migrator with nothing registered.
func NewMigrator(db *gorm.DB, logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Migrator{db: db, logger: logger}
}

// RegisterAll adds migrations and keeps the set sorted by version.
func (m *Migrator) RegisterAll(migrations []Migration) {
	m.migrations = append(m.migrations, migrations...)
	slices.SortStableFunc(m.migrations, func(a, b Migration) int {
		return strings.Compare(a.Version, b.Version)
	})
}

// Up applies every registered migration not yet recorded.
func (m *Migrator) Up(ctx context.Context) error {
	applied, err := m.records(ctx)
	if err != nil {
		return err
	}

	for _, mig := range m.migrations {
		if _, done := applied[mig.Version]; done {
			continue
		}
		m.logger.InfoContext(ctx, "applying migration",
			slog.String("version", mig.Version),
			slog.String("description", mig.Description),
		)
		if err := m.apply(ctx, mig); err != nil {
			return fmt.Errorf("applying migration %s: %w", mig.Version, err)
		}
	}
	return nil
}

func (m *Migrator) apply(ctx context.Context, mig Migration) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mig.Up(tx); err != nil {
			return err
		}
		return tx.Create(&MigrationRecord{
			Version:     mig.Version,
			Description: mig.Description,
			AppliedAt:   time.Now().UTC(),
		}).Error
	})
}

// Down rolls back the most recently applied migration. With nothing
// applied it is a no-op.
func (m *Migrator) Down(ctx context.Context) error {
	applied, err := m.records(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		return nil
	}

	last := ""
	for version := range applied {
		last = max(last, version)
	}
	idx := slices.IndexFunc(m.migrations, func(mig Migration) bool { return mig.Version == last })
	if idx < 0 || m.migrations[idx].Down == nil {
		return fmt.Errorf("%w: %s", ErrIrreversible, last)
	}
	mig := m.migrations[idx]

	m.logger.InfoContext(ctx, "rolling back migration",
		slog.String("version", mig.Version),
		slog.String("description", mig.Description),
	)
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mig.Down(tx); err != nil {
			return err
		}
		return tx.Where("version = ?", mig.Version).Delete(&MigrationRecord{}).Error
	})
}

// Status reports every registered migration in version order.
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	applied, err := m.records(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]MigrationStatus, len(m.migrations))
	for i, mig := range m.migrations {
		out[i] = MigrationStatus{Version: mig.Version, Description: mig.Description}
		if rec, ok := applied[mig.Version]; ok {
			out[i].Applied = true
			out[i].AppliedAt = &rec.AppliedAt
		}
	}
	return out, nil
}

// records returns applied migrations keyed by version, creating the
// tracking table on first use.
func (m *Migrator) records(ctx context.Context) (map[string]MigrationRecord, error) {
	db := m.db.WithContext(ctx)
	if err := db.AutoMigrate(&MigrationRecord{}); err != nil {
		return nil, fmt.Errorf("initializing schema_migrations: %w", err)
	}

	var rows []MigrationRecord
	if err := db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("reading schema_migrations: %w", err)
	}
	out := make(map[string]MigrationRecord, len(rows))
	for _, r := range rows {
		out[r.Version] = r
	}
	return out, nil
}

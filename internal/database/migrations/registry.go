package migrations

import (
	"github.com/jmylchreest/eventexport/internal/models"
	"gorm.io/gorm"
)

// AllMigrations returns all registered migrations in order.
//   - 001: event store schema
//   - 002: composite scope indexes on high-volume tables
func AllMigrations() []Migration {
	return []Migration{
		migration001Schema(),
		migration002ScopeIndexes(),
	}
}

func migration001Schema() Migration {
	return Migration{
		Version:     "001",
		Description: "Create event store tables",
		Up: func(tx *gorm.DB) error {
			return tx.AutoMigrate(
				&models.Company{},
				&models.Event{},
				&models.Guest{},
				&models.AddOn{},
				&models.GuestAddOn{},
				&models.Itinerary{},
				&models.Module{},
				&models.ModuleResponse{},
				&models.Announcement{},
				&models.Message{},
				&models.ActivityLog{},
			)
		},
		Down: func(tx *gorm.DB) error {
			tables := make([]string, 0, len(models.EventTables)+2)
			for i := len(models.EventTables) - 1; i >= 0; i-- {
				tables = append(tables, models.EventTables[i])
			}
			tables = append(tables, "events", "companies")
			for _, table := range tables {
				if tx.Migrator().HasTable(table) {
					if err := tx.Migrator().DropTable(table); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
}

// scopeIndexed are the tables whose exports scan the most rows.
var scopeIndexed = []string{"guests", "module_responses", "messages", "activity_logs"}

func migration002ScopeIndexes() Migration {
	return Migration{
		Version:     "002",
		Description: "Add (event_id, company_id) indexes",
		Up: func(tx *gorm.DB) error {
			for _, table := range scopeIndexed {
				name := "idx_" + table + "_scope"
				if tx.Migrator().HasIndex(table, name) {
					continue
				}
				if err := tx.Exec("CREATE INDEX " + name + " ON " + table + " (event_id, company_id)").Error; err != nil {
					return err
				}
			}
			return nil
		},
		Down: func(tx *gorm.DB) error {
			for _, table := range scopeIndexed {
				name := "idx_" + table + "_scope"
				if !tx.Migrator().HasIndex(table, name) {
					continue
				}
				if err := tx.Migrator().DropIndex(table, name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

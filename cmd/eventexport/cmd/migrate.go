package cmd

import (
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/eventexport/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending event store migrations",
	Long: `Apply every pending schema migration. serve, export and seed do this
on startup; run it on its own to prepare a database ahead of a deploy.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd, func(db *database.DB) error {
			if err := db.Migrate(cmd.Context()); err != nil {
				return err
			}
			return printMigrationStatus(cmd, db)
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd, func(db *database.DB) error {
			return printMigrationStatus(cmd, db)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd, func(db *database.DB) error {
			if err := db.Rollback(cmd.Context()); err != nil {
				return err
			}
			return printMigrationStatus(cmd, db)
		})
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
	migrateCmd.AddCommand(migrateDownCmd)
}

func withDatabase(cmd *cobra.Command, fn func(db *database.DB) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := database.New(cfg.Database, slog.Default())
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer db.Close()
	return fn(db)
}

func printMigrationStatus(cmd *cobra.Command, db *database.DB) error {
	statuses, err := db.MigrationStatus(cmd.Context())
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tSTATUS\tAPPLIED\tDESCRIPTION")
	for _, s := range statuses {
		status, applied := "pending", "-"
		if s.Applied {
			status = "applied"
			applied = s.AppliedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Version, status, applied, s.Description)
	}
	return tw.Flush()
}

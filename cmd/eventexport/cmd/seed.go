package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/eventexport/internal/database"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the database with a demo event",
	Long: `Create a demo company and event with guests, add-ons, messages,
modules and responses so every bundle has something to export.

The printed IDs are the ones to pass to "eventexport export".`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().String("company-name", "", "Company name (default \"Demo Company\")")
	seedCmd.Flags().String("event-name", "", "Event name (default \"Demo Summit\")")
	seedCmd.Flags().String("media-base-url", "", "Base URL prefixed to seeded media references")
	seedCmd.Flags().String("starts-at", "", "Event start time in RFC3339 (default now)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	opts := database.SeedOptions{}
	opts.CompanyName, _ = cmd.Flags().GetString("company-name")
	opts.EventName, _ = cmd.Flags().GetString("event-name")
	opts.MediaBaseURL, _ = cmd.Flags().GetString("media-base-url")
	if s, _ := cmd.Flags().GetString("starts-at"); s != "" {
		startsAt, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("parsing --starts-at: %w", err)
		}
		opts.StartsAt = startsAt
	}

	return withDatabase(cmd, func(db *database.DB) error {
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		res, err := database.Seed(ctx, db.DB, opts)
		if err != nil {
			return fmt.Errorf("seeding: %w", err)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "company: %s\n", res.CompanyID)
		fmt.Fprintf(w, "event:   %s\n", res.EventID)
		fmt.Fprintf(w, "guests:  %d\n", res.Guests)
		return nil
	})
}

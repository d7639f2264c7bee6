package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/eventexport/internal/export/source"
	"github.com/jmylchreest/eventexport/internal/pipeline/core"
	"github.com/jmylchreest/eventexport/internal/pipeline/shared"
	"github.com/jmylchreest/eventexport/internal/storage"
	"github.com/jmylchreest/eventexport/pkg/format"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export an event's bundles to disk",
	Long: `Run an export session for one event and write every completed
artifact into the output directory.

With no --bundles the whole catalog is exported. Failed bundles are
reported but do not stop the others; the command fails only when
nothing could be exported.

  eventexport export --event 01J... --company 01J... --bundles guest-list,messages --aggregate`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("event", "", "Event ID to export (required)")
	exportCmd.Flags().String("company", "", "Company ID that owns the event (required)")
	exportCmd.Flags().String("user", "cli", "User ID recorded on the export scope")
	exportCmd.Flags().StringSlice("bundles", nil, "Bundle IDs to export (default: all)")
	exportCmd.Flags().StringP("out", "o", ".", "Output directory")
	exportCmd.Flags().Bool("aggregate", false, "Also write a zip of every completed artifact")

	_ = exportCmd.MarkFlagRequired("event")
	_ = exportCmd.MarkFlagRequired("company")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := slog.Default()

	eventID, _ := cmd.Flags().GetString("event")
	companyID, _ := cmd.Flags().GetString("company")
	userID, _ := cmd.Flags().GetString("user")
	bundles, _ := cmd.Flags().GetStringSlice("bundles")
	outDir, _ := cmd.Flags().GetString("out")
	aggregate, _ := cmd.Flags().GetBool("aggregate")

	out, err := storage.NewSandbox(outDir)
	if err != nil {
		return fmt.Errorf("preparing output directory: %w", err)
	}
	store := storage.NewArtifactStore(out)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	w := cmd.OutOrStdout()
	a.exports.WithProgressReporter(shared.NewProgressManager(func(p shared.JobProgress) {
		fmt.Fprintf(w, "  [%3d%%] %-24s %s\n", p.Job.Progress, p.Job.BundleID, p.Message)
	}))

	scope := source.Scope{EventID: eventID, CompanyID: companyID, UserID: userID}
	res, err := a.exports.Export(ctx, scope, bundles)
	if err != nil {
		return err
	}

	jobs, err := a.exports.Jobs(eventID)
	if err != nil {
		return err
	}
	fmt.Fprintln(w)
	for _, job := range jobs {
		if job.Status != core.JobStatusCompleted || job.Artifact == nil {
			fmt.Fprintf(w, "%-8s %-24s %s\n", job.Status, job.BundleID, job.Error)
			continue
		}
		path, err := store.Save("", job.Artifact)
		if err != nil {
			return err
		}
		note := ""
		if job.Placeholder {
			note = " (placeholder)"
		}
		fmt.Fprintf(w, "%-8s %-24s %s %s%s\n", job.Status, job.BundleID, path, format.Bytes(job.Artifact.Size()), note)
	}

	if aggregate && res.Completed > 0 {
		art, err := a.exports.Aggregate(ctx, eventID)
		if err != nil {
			return err
		}
		path, err := store.Save("", art)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\naggregate %s %s\n", path, format.Bytes(art.Size()))
	}

	fmt.Fprintf(w, "\n%d completed, %d failed in %s\n", res.Completed, res.Failed, res.Duration.Round(1e6))
	if res.Completed == 0 && res.Failed > 0 {
		return errors.Join(append([]error{errors.New("every bundle failed")}, res.Errors...)...)
	}
	return nil
}

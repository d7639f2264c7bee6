package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	internalhttp "github.com/jmylchreest/eventexport/internal/http"
	"github.com/jmylchreest/eventexport/internal/http/handlers"
	"github.com/jmylchreest/eventexport/internal/metrics"
	"github.com/jmylchreest/eventexport/internal/observability"
	"github.com/jmylchreest/eventexport/internal/pipeline/shared"
	"github.com/jmylchreest/eventexport/internal/scheduler"
	"github.com/jmylchreest/eventexport/internal/startup"
	"github.com/jmylchreest/eventexport/internal/storage"
	"github.com/jmylchreest/eventexport/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the eventexport server",
	Long: `Start the eventexport HTTP API and the export scheduler.

The server provides:
- REST API to start, inspect and clear per-event export sessions
- Artifact and aggregate zip downloads
- Health check endpoint and prometheus metrics
- OpenAPI documentation at /docs`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("data-dir", "./data", "Directory for scheduled export output")

	mustBindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	mustBindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	mustBindPFlag("storage.base_dir", serveCmd.Flags().Lookup("data-dir"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	progress := shared.NewProgressManager(func(p shared.JobProgress) {
		logger.Debug("export progress",
			slog.String("job_id", p.Job.ID.String()),
			slog.String("bundle_id", p.Job.BundleID),
			slog.String("stage", p.StageID),
			slog.Int("progress", p.Job.Progress),
		)
	})
	a.exports.WithProgressReporter(progress)

	if _, err := startup.CleanupOrphanedTempFiles(logger, a.artifacts.Sandbox().BaseDir(), startup.DefaultCleanupAge); err != nil {
		logger.Warn("cleaning up temp files", slog.String("error", err.Error()))
	}

	exportsDir, err := a.artifacts.Sandbox().SubSandbox(cfg.Storage.ExportsDir)
	if err != nil {
		return fmt.Errorf("initializing exports directory: %w", err)
	}
	sched := scheduler.New(a.exports, storage.NewArtifactStore(exportsDir)).
		WithLogger(observability.WithComponent(logger, "scheduler")).
		WithMetrics(a.collector)
	for _, entry := range cfg.Schedule {
		if err := sched.Add(entry); err != nil {
			return fmt.Errorf("registering schedule: %w", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	server := internalhttp.NewServer(internalhttp.ServerConfigFrom(cfg.Server), logger, version.Version)

	handlers.NewHealthHandler(version.Version).
		WithDB(a.db).
		WithHTTPClient(a.client).
		Register(server.API())
	handlers.NewBundleHandler(a.catalog).Register(server.API())
	handlers.NewExportHandler(a.exports).Register(server.API())
	handlers.NewDownloadHandler(a.exports).RegisterRoutes(server.Router())

	if cfg.Metrics.Enabled {
		server.Handle(cfg.Metrics.Path, metrics.Handler(a.registry))
	}

	logger.Info("eventexport started",
		slog.String("address", server.Address()),
		slog.Int("schedules", len(cfg.Schedule)),
		slog.Bool("metrics", cfg.Metrics.Enabled),
	)

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}

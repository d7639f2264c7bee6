package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jmylchreest/eventexport/internal/config"
	"github.com/jmylchreest/eventexport/internal/database"
	"github.com/jmylchreest/eventexport/internal/export/catalog"
	"github.com/jmylchreest/eventexport/internal/export/encode"
	"github.com/jmylchreest/eventexport/internal/export/resolver"
	"github.com/jmylchreest/eventexport/internal/export/source"
	"github.com/jmylchreest/eventexport/internal/metrics"
	"github.com/jmylchreest/eventexport/internal/observability"
	"github.com/jmylchreest/eventexport/internal/pipeline"
	"github.com/jmylchreest/eventexport/internal/pipeline/core"
	"github.com/jmylchreest/eventexport/internal/repository"
	"github.com/jmylchreest/eventexport/internal/service"
	"github.com/jmylchreest/eventexport/internal/storage"
	"github.com/jmylchreest/eventexport/internal/version"
	"github.com/jmylchreest/eventexport/pkg/httpclient"
)

// app holds the components shared by serve, export and the scheduler.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	db        *database.DB
	catalog   *catalog.Catalog
	client    *httpclient.Client
	registry  *prometheus.Registry
	collector *metrics.Collector
	exports   *service.ExportService
	artifacts *storage.ArtifactStore
}

// newApp opens the database and wires the export pipeline. The caller must
// call close.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	db, err := database.New(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	sandbox, err := storage.NewSandbox(cfg.Storage.BaseDir)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	registry := metrics.NewRegistry()
	collector := metrics.New(registry)
	collector.SetBuildInfo(version.Version, version.Commit)

	a := &app{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		catalog:   catalog.Default(),
		registry:  registry,
		collector: collector,
		artifacts: storage.NewArtifactStore(sandbox),
	}

	encoders, err := a.encoders()
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	mode, err := source.ParsePlaceholderMode(cfg.Export.PlaceholderPolicy)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	queue := core.QueuePolicy(core.Sequential{})
	if cfg.Export.QueuePolicy == config.QueueBounded {
		queue = core.NewQueuePolicy(cfg.Export.MaxParallel)
	}

	sources := source.NewStoreRegistry(repository.NewRecordRepository(db.DB)).
		WithLogger(observability.WithComponent(logger, "source"))

	factory, err := pipeline.NewDefaultFactory(
		sources,
		encoders,
		source.PlaceholderPolicy{Mode: mode},
		queue,
		collector,
		observability.WithComponent(logger, "pipeline"),
	)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("building pipeline: %w", err)
	}

	a.exports = service.NewExportService(factory, a.catalog).
		WithLogger(observability.WithComponent(logger, "export")).
		WithEventRepository(repository.NewEventRepository(db.DB))

	return a, nil
}

// encoders builds the tabular, archive and report encoders. Media
// references are signed through the object store when one is configured.
func (a *app) encoders() (*encode.Set, error) {
	var signer resolver.Signer
	if a.cfg.ObjectStore.Endpoint != "" {
		s, err := resolver.NewMinioSigner(a.cfg.ObjectStore)
		if err != nil {
			return nil, fmt.Errorf("initializing object store signer: %w", err)
		}
		signer = s
	}
	res := resolver.New(signer, a.cfg.ObjectStore.SignedURLTTL).
		WithLogger(observability.WithComponent(a.logger, "resolver"))

	clientCfg := httpclient.DefaultConfig()
	clientCfg.Timeout = a.cfg.Export.HTTPTimeout
	clientCfg.RetryAttempts = a.cfg.Export.RetryAttempts
	clientCfg.MaxResponseSize = a.cfg.Export.MaxFileSize.Bytes()
	clientCfg.UserAgent = version.UserAgent()
	clientCfg.Logger = observability.WithComponent(a.logger, "httpclient")
	a.client = httpclient.New(clientCfg)

	archive := encode.NewArchive(res, a.client).
		WithLogger(observability.WithComponent(a.logger, "archive")).
		WithFileHook(a.collector.ArchiveFile)

	return encode.NewSet(encode.Tabular{}, archive, encode.NewReport()), nil
}

func (a *app) close() {
	a.exports.Close()
	if err := a.db.Close(); err != nil {
		a.logger.Warn("closing database", slog.String("error", err.Error()))
	}
}

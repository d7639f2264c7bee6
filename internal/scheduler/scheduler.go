// Package scheduler runs configured exports on cron schedules and writes
// their aggregate archives to disk.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jmylchreest/eventexport/internal/config"
	"github.com/jmylchreest/eventexport/internal/export/source"
	"github.com/jmylchreest/eventexport/internal/metrics"
	"github.com/jmylchreest/eventexport/internal/observability"
	"github.com/jmylchreest/eventexport/internal/pipeline/core"
	"github.com/jmylchreest/eventexport/internal/storage"
)

// UserID identifies scheduled runs in export scopes.
const UserID = "scheduler"

// ErrUnknownSchedule is returned for a schedule name that was never added.
var ErrUnknownSchedule = errors.New("unknown schedule")

// Exporter runs export sessions. service.ExportService satisfies it.
type Exporter interface {
	Export(ctx context.Context, scope source.Scope, bundleIDs []string) (*core.Result, error)
	Aggregate(ctx context.Context, eventID string) (*core.Artifact, error)
}

type entry struct {
	schedule config.ScheduleEntry
	id       cron.EntryID
}

// Scheduler fires configured exports. Seconds are the first cron field.
type Scheduler struct {
	mu sync.RWMutex

	exporter Exporter
	store    *storage.ArtifactStore
	metrics  *metrics.Collector
	logger   *slog.Logger

	parser  cron.Parser
	cron    *cron.Cron
	entries map[string]*entry

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a scheduler writing aggregates into store.
func New(exporter Exporter, store *storage.ArtifactStore) *Scheduler {
	s := &Scheduler{
		exporter: exporter,
		store:    store,
		logger:   slog.Default(),
		parser:   cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		entries:  make(map[string]*entry),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.cron = cron.New(
		cron.WithParser(s.parser),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{s}), cron.Recover(cronLogger{s})),
		cron.WithLogger(cronLogger{s}),
	)
	return s
}

// WithLogger sets a custom logger.
func (s *Scheduler) WithLogger(logger *slog.Logger) *Scheduler {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithMetrics sets the collector counting scheduled runs.
func (s *Scheduler) WithMetrics(m *metrics.Collector) *Scheduler {
	s.metrics = m
	return s
}

// ValidateCron validates a cron expression.
func (s *Scheduler) ValidateCron(expr string) error {
	_, err := s.parser.Parse(expr)
	return err
}

// Add registers a schedule. The name defaults to the event id and must be
// unique.
func (s *Scheduler) Add(sc config.ScheduleEntry) error {
	if sc.Name == "" {
		sc.Name = sc.EventID
	}
	if sc.EventID == "" || sc.CompanyID == "" {
		return fmt.Errorf("schedule %q: event_id and company_id are required", sc.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[sc.Name]; ok {
		return fmt.Errorf("schedule %q already registered", sc.Name)
	}
	id, err := s.cron.AddFunc(sc.Cron, func() {
		_ = s.run(s.ctx, sc)
	})
	if err != nil {
		return fmt.Errorf("schedule %q: invalid cron expression: %w", sc.Name, err)
	}
	s.entries[sc.Name] = &entry{schedule: sc, id: id}
	return nil
}

// Start begins firing schedules.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", slog.Int("schedules", len(s.entries)))
}

// Stop stops firing schedules, cancels running exports and waits for them.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// NextRun returns when the named schedule fires next. Zero before Start.
func (s *Scheduler) NextRun(name string) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[name]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", ErrUnknownSchedule, name)
	}
	return s.cron.Entry(e.id).Next, nil
}

// RunNow runs the named schedule immediately and synchronously.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.RLock()
	e, ok := s.entries[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSchedule, name)
	}
	return s.run(ctx, e.schedule)
}

// run exports the schedule's bundles and saves the aggregate. A run that
// finds the session busy is skipped and returns nil.
func (s *Scheduler) run(ctx context.Context, sc config.ScheduleEntry) (err error) {
	logger := observability.WithOperation(s.logger, "scheduled_export").
		With(slog.String("schedule", sc.Name), slog.String("event_id", sc.EventID))
	start := time.Now()

	scope := source.Scope{EventID: sc.EventID, CompanyID: sc.CompanyID, UserID: UserID}
	res, err := s.exporter.Export(ctx, scope, sc.Bundles)
	if errors.Is(err, core.ErrSessionBusy) {
		logger.WarnContext(ctx, "skipping scheduled export, session busy")
		s.metrics.ScheduledRunSkipped()
		return nil
	}
	defer func() { s.metrics.ScheduledRun(sc.Name, err) }()
	if err != nil {
		observability.WithError(logger, err).ErrorContext(ctx, "scheduled export failed")
		return err
	}

	art, err := s.exporter.Aggregate(ctx, sc.EventID)
	if err != nil {
		observability.WithError(logger, err).ErrorContext(ctx, "scheduled export produced nothing",
			slog.Int("failed", res.Failed),
		)
		return err
	}

	path, err := s.store.Save(sc.Name, art)
	if err != nil {
		observability.WithError(logger, err).ErrorContext(ctx, "saving scheduled export")
		return err
	}
	removed, err := s.store.Prune(sc.Name, sc.Keep)
	if err != nil {
		observability.WithError(logger, err).WarnContext(ctx, "pruning old exports")
	}

	logger.InfoContext(ctx, "scheduled export written",
		slog.String("path", path),
		slog.Int("completed", res.Completed),
		slog.Int("failed", res.Failed),
		slog.Int("pruned", len(removed)),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	s *Scheduler
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.s.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.s.logger.Error("cron: "+msg, append([]any{slog.String("error", err.Error())}, keysAndValues...)...)
}

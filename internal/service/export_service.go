// Package service coordinates export sessions: one set of jobs per event,
// run through the pipeline and held in memory until cleared.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/eventexport/internal/export/aggregate"
	"github.com/jmylchreest/eventexport/internal/export/catalog"
	"github.com/jmylchreest/eventexport/internal/export/source"
	"github.com/jmylchreest/eventexport/internal/models"
	"github.com/jmylchreest/eventexport/internal/observability"
	"github.com/jmylchreest/eventexport/internal/pipeline/core"
	"github.com/jmylchreest/eventexport/internal/repository"
)

// Service errors.
var (
	ErrSessionNotFound = errors.New("no export session for event")
	ErrJobNotFound     = errors.New("export job not found")
	ErrJobNotReady     = errors.New("export job has not completed")
	ErrEventNotFound   = errors.New("event not found")
)

// SessionInfo is a snapshot of an event's export session.
type SessionInfo struct {
	EventID        string         `json:"event_id"`
	EventName      string         `json:"event_name"`
	Running        bool           `json:"running"`
	Jobs           []core.JobInfo `json:"jobs"`
	AggregateReady bool           `json:"aggregate_ready"`
}

type session struct {
	scope   source.Scope
	tasks   []core.Task
	pending []core.Task
	running bool
}

func (s *session) jobs() []core.JobInfo {
	out := make([]core.JobInfo, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Job.Info()
	}
	return out
}

// ExportService manages export sessions keyed by event id.
type ExportService struct {
	mu       sync.RWMutex
	sessions map[string]*session

	factory  core.OrchestratorFactory
	catalog  *catalog.Catalog
	events   repository.EventRepository
	reporter core.ProgressReporter
	logger   *slog.Logger
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewExportService creates a new ExportService.
func NewExportService(factory core.OrchestratorFactory, cat *catalog.Catalog) *ExportService {
	ctx, cancel := context.WithCancel(context.Background())
	return &ExportService{
		sessions: make(map[string]*session),
		factory:  factory,
		catalog:  cat,
		logger:   slog.Default(),
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// WithLogger sets a custom logger.
func (s *ExportService) WithLogger(logger *slog.Logger) *ExportService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithEventRepository makes Submit verify events and fill in their names.
func (s *ExportService) WithEventRepository(repo repository.EventRepository) *ExportService {
	s.events = repo
	return s
}

// WithProgressReporter sets a reporter attached to every run.
func (s *ExportService) WithProgressReporter(r core.ProgressReporter) *ExportService {
	s.reporter = r
	return s
}

// Catalog returns the bundle catalog.
func (s *ExportService) Catalog() *catalog.Catalog {
	return s.catalog
}

// Submit creates pending jobs for bundleIDs in the event's session. An
// empty bundleIDs selects the whole catalog. Resubmitting a bundle replaces
// its previous job.
func (s *ExportService) Submit(ctx context.Context, scope source.Scope, bundleIDs []string) ([]core.JobInfo, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	bundles := s.selectBundles(ctx, bundleIDs)
	if len(bundles) == 0 {
		return nil, core.ErrEmptySelection
	}
	scope, err := s.resolveEvent(ctx, scope)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[scope.EventID]
	if !ok {
		sess = &session{}
		s.sessions[scope.EventID] = sess
	}
	if sess.running {
		return nil, core.ErrSessionBusy
	}
	sess.scope = scope

	submitted := make([]core.JobInfo, 0, len(bundles))
	for _, desc := range bundles {
		task := core.NewTask(desc)
		sess.tasks = replaceTask(sess.tasks, task)
		sess.pending = replaceTask(sess.pending, task)
		submitted = append(submitted, task.Job.Info())
	}

	s.logger.InfoContext(ctx, "export jobs submitted",
		slog.String("event_id", scope.EventID),
		slog.String("company_id", scope.CompanyID),
		slog.Int("job_count", len(submitted)),
	)
	return submitted, nil
}

// replaceTask swaps the task for the same bundle in place, or appends.
func replaceTask(tasks []core.Task, task core.Task) []core.Task {
	for i, t := range tasks {
		if t.Bundle.ID == task.Bundle.ID {
			tasks[i] = task
			return tasks
		}
	}
	return append(tasks, task)
}

// selectBundles resolves ids against the catalog. Unknown ids get no job.
func (s *ExportService) selectBundles(ctx context.Context, ids []string) []catalog.BundleDescriptor {
	if len(ids) == 0 {
		return s.catalog.All()
	}
	for _, id := range ids {
		if _, ok := s.catalog.Lookup(id); !ok {
			s.logger.DebugContext(ctx, "ignoring unknown bundle", slog.String("bundle_id", id))
		}
	}
	return s.catalog.Select(ids)
}

func (s *ExportService) resolveEvent(ctx context.Context, scope source.Scope) (source.Scope, error) {
	if s.events != nil {
		eventID, err := models.ParseULID(scope.EventID)
		if err != nil {
			return scope, fmt.Errorf("%w: %s", ErrEventNotFound, scope.EventID)
		}
		companyID, err := models.ParseULID(scope.CompanyID)
		if err != nil {
			return scope, fmt.Errorf("%w: %s", ErrEventNotFound, scope.EventID)
		}
		event, err := s.events.GetByID(ctx, eventID, companyID)
		if err != nil {
			return scope, fmt.Errorf("getting event: %w", err)
		}
		if event == nil {
			return scope, fmt.Errorf("%w: %s", ErrEventNotFound, scope.EventID)
		}
		if scope.EventName == "" {
			scope.EventName = event.Name
		}
	}
	if scope.EventName == "" {
		scope.EventName = scope.EventID
	}
	return scope, nil
}

// begin claims the session's pending jobs for a run.
func (s *ExportService) begin(eventID string) (*session, []core.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[eventID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrSessionNotFound, eventID)
	}
	if sess.running {
		return nil, nil, core.ErrSessionBusy
	}
	tasks := sess.pending
	sess.pending = nil
	sess.running = true
	return sess, tasks, nil
}

func (s *ExportService) end(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.running = false
}

func (s *ExportService) run(ctx context.Context, sess *session, tasks []core.Task) *core.Result {
	defer s.end(sess)

	o := s.factory.Create()
	if s.reporter != nil {
		o.SetProgressReporter(s.reporter)
	}
	return o.Run(ctx, sess.scope, tasks)
}

// Run executes the session's pending jobs and blocks until they finish.
func (s *ExportService) Run(ctx context.Context, eventID string) (*core.Result, error) {
	sess, tasks, err := s.begin(eventID)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, sess, tasks), nil
}

// Start executes the session's pending jobs in the background. The run
// outlives the caller's context and stops only on Close.
func (s *ExportService) Start(ctx context.Context, eventID string) error {
	sess, tasks, err := s.begin(eventID)
	if err != nil {
		return err
	}

	logger := observability.LoggerFromContext(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		res := s.run(s.ctx, sess, tasks)
		logger.Debug("background export finished",
			slog.String("event_id", eventID),
			slog.Int("completed", res.Completed),
			slog.Int("failed", res.Failed),
		)
	}()
	return nil
}

// Export submits bundleIDs and runs them synchronously.
func (s *ExportService) Export(ctx context.Context, scope source.Scope, bundleIDs []string) (*core.Result, error) {
	if _, err := s.Submit(ctx, scope, bundleIDs); err != nil {
		return nil, err
	}
	return s.Run(ctx, scope.EventID)
}

// Session returns a snapshot of the event's session.
func (s *ExportService) Session(eventID string) (SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[eventID]
	if !ok {
		return SessionInfo{}, fmt.Errorf("%w: %s", ErrSessionNotFound, eventID)
	}
	jobs := sess.jobs()
	return SessionInfo{
		EventID:        eventID,
		EventName:      sess.scope.EventName,
		Running:        sess.running,
		Jobs:           jobs,
		AggregateReady: aggregate.Ready(jobs),
	}, nil
}

// Jobs returns the session's jobs in submission order.
func (s *ExportService) Jobs(eventID string) ([]core.JobInfo, error) {
	info, err := s.Session(eventID)
	if err != nil {
		return nil, err
	}
	return info.Jobs, nil
}

// Artifact returns the artifact of a completed job.
func (s *ExportService) Artifact(eventID string, jobID models.ULID) (*core.Artifact, error) {
	jobs, err := s.Jobs(eventID)
	if err != nil {
		return nil, err
	}
	for _, j := range jobs {
		if j.ID != jobID {
			continue
		}
		if j.Status != core.JobStatusCompleted || j.Artifact == nil {
			return nil, fmt.Errorf("%w: %s is %s", ErrJobNotReady, jobID, j.Status)
		}
		return j.Artifact, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
}

// Aggregate zips every completed artifact of the session.
func (s *ExportService) Aggregate(ctx context.Context, eventID string) (art *core.Artifact, err error) {
	done := observability.TimedOperationWithError(ctx, observability.WithComponent(s.logger, "export"), "aggregate", &err)
	defer done()

	info, err := s.Session(eventID)
	if err != nil {
		return nil, err
	}
	return aggregate.Build(info.EventName, info.Jobs, s.now())
}

// Clear discards the event's session.
func (s *ExportService) Clear(eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[eventID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, eventID)
	}
	if sess.running {
		return core.ErrSessionBusy
	}
	delete(s.sessions, eventID)
	return nil
}

// Close cancels background runs and waits for them to finish.
func (s *ExportService) Close() {
	s.cancel()
	s.wg.Wait()
}

// Wait blocks until background runs finish.
func (s *ExportService) Wait() {
	s.wg.Wait()
}

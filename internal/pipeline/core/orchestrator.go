package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/jmylchreest/eventexport/internal/export/catalog"
	"github.com/jmylchreest/eventexport/internal/export/source"
	"github.com/jmylchreest/eventexport/internal/observability"
)

// Task pairs a job with the descriptor of the bundle it exports.
type Task struct {
	Job    *Job
	Bundle catalog.BundleDescriptor
}

// NewTask creates a pending job for desc.
func NewTask(desc catalog.BundleDescriptor) Task {
	return Task{Job: NewJob(desc), Bundle: desc}
}

// Orchestrator runs every stage for each job of a run. A failing job is
// marked failed and the run moves on to the next one.
type Orchestrator struct {
	stages   []Stage
	logger   *slog.Logger
	queue    QueuePolicy
	reporter ProgressReporter
	observer Observer
}

// NewOrchestrator creates a new Orchestrator with the given stages.
func NewOrchestrator(stages []Stage, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		stages: stages,
		logger: logger,
		queue:  Sequential{},
	}
}

// SetQueuePolicy sets how jobs are scheduled. Nil restores Sequential.
func (o *Orchestrator) SetQueuePolicy(q QueuePolicy) {
	if q == nil {
		q = Sequential{}
	}
	o.queue = q
}

// SetProgressReporter sets an optional progress reporter.
func (o *Orchestrator) SetProgressReporter(reporter ProgressReporter) {
	o.reporter = reporter
}

// SetObserver sets an optional outcome observer.
func (o *Orchestrator) SetObserver(observer Observer) {
	o.observer = observer
}

// Run executes tasks under the queue policy and blocks until every job is
// terminal. Jobs not yet started when ctx is cancelled are failed with the
// context error.
func (o *Orchestrator) Run(ctx context.Context, scope source.Scope, tasks []Task) *Result {
	start := time.Now()
	result := &Result{}
	var mu sync.Mutex

	o.logger.InfoContext(ctx, "starting export run",
		slog.String("event_id", scope.EventID),
		slog.Int("job_count", len(tasks)),
		slog.String("queue_policy", o.queue.Name()),
	)

	o.queue.Run(ctx, len(tasks), func(ctx context.Context, i int) {
		err := o.runJob(ctx, scope, tasks[i])
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, err)
			return
		}
		result.Completed++
	})

	o.cleanupStages(context.WithoutCancel(ctx))
	result.Duration = time.Since(start)

	o.logger.InfoContext(ctx, "export run completed",
		slog.String("event_id", scope.EventID),
		slog.Int("completed", result.Completed),
		slog.Int("failed", result.Failed),
		slog.Duration("duration", result.Duration),
	)
	return result
}

func (o *Orchestrator) runJob(ctx context.Context, scope source.Scope, task Task) error {
	job := task.Job
	logger := observability.WithJob(o.logger, job.ID().String(), job.BundleID())
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return o.finish(ctx, logger, job, err, start)
	}
	if err := job.Start(); err != nil {
		logger.WarnContext(ctx, "job not started", slog.String("error", err.Error()))
		return err
	}

	state := NewState(job, task.Bundle, scope)
	state.reporter = o.reporter
	state.Progress(ctx, ProgressStarted, "Starting")

	var err error
	for i, stage := range o.stages {
		if err = ctx.Err(); err != nil {
			break
		}
		state.stageID = stage.ID()
		if _, err = o.executeStage(ctx, logger, i, stage, state); err != nil {
			err = NewStageError(stage.ID(), stage.Name(), err)
			break
		}
	}

	if err == nil {
		if state.Artifact == nil {
			err = ErrNoArtifact
		} else {
			state.Artifact.Placeholder = state.Placeholder
			err = job.Complete(state.Artifact)
		}
	}
	return o.finish(ctx, logger, job, err, start)
}

// finish records the job outcome. err is the job's failure, or nil.
func (o *Orchestrator) finish(ctx context.Context, logger *slog.Logger, job *Job, err error, start time.Time) error {
	duration := time.Since(start)
	if err != nil {
		cause := err
		var se *StageError
		if errors.As(err, &se) {
			cause = se.Err
		}
		if ferr := job.Fail(cause); ferr != nil {
			logger.WarnContext(ctx, "marking job failed", slog.String("error", ferr.Error()))
		}
		logger.ErrorContext(ctx, "export job failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", duration),
		)
	} else {
		info := job.Info()
		logger.InfoContext(ctx, "export job completed",
			slog.Int("records", info.Artifact.RecordCount),
			slog.Int64("bytes", info.Artifact.Size()),
			slog.Bool("placeholder", info.Placeholder),
			slog.Duration("duration", duration),
		)
	}

	info := job.Info()
	if o.reporter != nil {
		o.reporter.ReportProgress(ctx, info, "", string(info.Status))
	}
	if o.observer != nil {
		o.observer.JobFinished(info.BundleID, info.Kind, info.Status, duration)
	}
	return err
}

// executeStage runs a single stage, converting a panic into an error.
func (o *Orchestrator) executeStage(ctx context.Context, logger *slog.Logger, index int, stage Stage, state *State) (result *StageResult, err error) {
	stageStart := time.Now()

	logger.DebugContext(ctx, "executing stage",
		slog.Int("stage_num", index+1),
		slog.Int("total_stages", len(o.stages)),
		slog.String("stage_id", stage.ID()),
		slog.String("stage_name", stage.Name()),
	)

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "stage panicked",
				slog.String("stage_id", stage.ID()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			result = &StageResult{Duration: time.Since(stageStart)}
			err = fmt.Errorf("%w: %v", ErrStagePanic, r)
		}
	}()

	result, err = stage.Execute(ctx, state)
	if result == nil {
		result = &StageResult{}
	}
	result.Duration = time.Since(stageStart)

	if err != nil {
		return result, err
	}

	logger.DebugContext(ctx, "stage completed",
		slog.String("stage_id", stage.ID()),
		slog.Duration("duration", result.Duration),
		slog.Int("records_processed", result.RecordsProcessed),
	)
	return result, nil
}

// cleanupStages calls Cleanup on all stages.
func (o *Orchestrator) cleanupStages(ctx context.Context) {
	for _, stage := range o.stages {
		if err := stage.Cleanup(ctx); err != nil {
			o.logger.Warn("stage cleanup failed",
				slog.String("stage_id", stage.ID()),
				slog.String("error", err.Error()),
			)
		}
	}
}

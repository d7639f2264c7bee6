// Package core defines the export pipeline: jobs, artifacts, stages and the
// orchestrator that drives one job per selected bundle.
package core

import (
	"context"
	"time"

	"github.com/jmylchreest/eventexport/internal/export/catalog"
	"github.com/jmylchreest/eventexport/internal/export/record"
	"github.com/jmylchreest/eventexport/internal/export/source"
)

// Stage is one step of a job. Stages are shared by every job of a run and
// must keep per-job data in State.
type Stage interface {
	// ID returns a unique identifier for this stage.
	ID() string

	// Name returns a human-readable name.
	Name() string

	// Execute runs the stage against one job's state.
	Execute(ctx context.Context, state *State) (*StageResult, error)

	// Cleanup is called once after the run finishes.
	Cleanup(ctx context.Context) error
}

// ProgressReporter observes job progress.
type ProgressReporter interface {
	ReportProgress(ctx context.Context, job JobInfo, stageID string, message string)
}

// Observer receives job outcomes, typically for metrics.
type Observer interface {
	JobFinished(bundleID string, kind catalog.OutputKind, status JobStatus, d time.Duration)
	PlaceholderSubstituted(bundleID string)
}

// State carries one job through the stages.
type State struct {
	Job    *Job
	Bundle catalog.BundleDescriptor
	Scope  source.Scope

	// Records is set by the fetch stage.
	Records []record.Record
	// Placeholder is set when Records were substituted with synthetic data.
	Placeholder bool
	// Degraded is set when a recoverable fetch error emptied the result.
	Degraded bool

	// Artifact is set by the encode stage.
	Artifact *Artifact

	StartTime time.Time
	Metadata  map[string]any

	stageID  string
	reporter ProgressReporter
}

// NewState creates a State for one job.
func NewState(job *Job, bundle catalog.BundleDescriptor, scope source.Scope) *State {
	return &State{
		Job:       job,
		Bundle:    bundle,
		Scope:     scope,
		StartTime: time.Now(),
		Metadata:  make(map[string]any),
	}
}

// Progress advances the job and notifies the reporter, if any.
func (s *State) Progress(ctx context.Context, percent int, message string) {
	s.Job.Advance(percent)
	if s.reporter != nil {
		s.reporter.ReportProgress(ctx, s.Job.Info(), s.stageID, message)
	}
}

// StageResult contains the outcome of one stage for one job.
type StageResult struct {
	RecordsProcessed int
	Duration         time.Duration
	Message          string
}

// Result summarises a run.
type Result struct {
	Completed int
	Failed    int
	Duration  time.Duration
	Errors    []error
}

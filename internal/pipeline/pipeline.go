// Package pipeline assembles the export pipeline. Each selected bundle runs
// as one job through the registered stages:
//   - core: jobs, artifacts, the orchestrator and queue policies
//   - shared: helpers shared between stages
//   - stages/*: individual stage implementations
package pipeline

import (
	"log/slog"

	"github.com/jmylchreest/eventexport/internal/export/encode"
	"github.com/jmylchreest/eventexport/internal/export/source"
	"github.com/jmylchreest/eventexport/internal/pipeline/core"
	"github.com/jmylchreest/eventexport/internal/pipeline/stages/encodeartifact"
	"github.com/jmylchreest/eventexport/internal/pipeline/stages/fetchrecords"
)

// Re-export core types for convenience.
type (
	// Stage is a single step of a job.
	Stage = core.Stage

	// State carries one job through the stages.
	State = core.State

	// Job is one bundle export.
	Job = core.Job

	// JobInfo is a snapshot of a job.
	JobInfo = core.JobInfo

	// JobStatus is a job lifecycle state.
	JobStatus = core.JobStatus

	// Task pairs a job with its bundle.
	Task = core.Task

	// Artifact is a completed job's output.
	Artifact = core.Artifact

	// Result summarises a run.
	Result = core.Result

	// Orchestrator runs jobs through the stages.
	Orchestrator = core.Orchestrator

	// Factory creates orchestrators.
	Factory = core.Factory

	// Dependencies bundles stage dependencies.
	Dependencies = core.Dependencies

	// Observer receives job outcomes.
	Observer = core.Observer

	// ProgressReporter allows progress tracking.
	ProgressReporter = core.ProgressReporter

	// QueuePolicy schedules the jobs of a run.
	QueuePolicy = core.QueuePolicy
)

// Re-export errors.
var (
	ErrSessionBusy          = core.ErrSessionBusy
	ErrEmptySelection       = core.ErrEmptySelection
	ErrInvalidTransition    = core.ErrInvalidTransition
	ErrInvalidConfiguration = core.ErrInvalidConfiguration
)

// NewDefaultFactory creates a factory running fetch then encode for every job.
func NewDefaultFactory(
	sources *source.Registry,
	encoders *encode.Set,
	placeholder source.PlaceholderPolicy,
	queue QueuePolicy,
	observer Observer,
	logger *slog.Logger,
) (*Factory, error) {
	factory, err := core.NewBuilder().
		WithSources(sources).
		WithEncoders(encoders).
		WithPlaceholderPolicy(placeholder).
		WithQueuePolicy(queue).
		WithObserver(observer).
		WithLogger(logger).
		Build()
	if err != nil {
		return nil, err
	}

	factory.RegisterStage(fetchrecords.NewConstructor())
	factory.RegisterStage(encodeartifact.NewConstructor())
	return factory, nil
}

// Stage IDs for reference.
const (
	StageIDFetchRecords   = fetchrecords.StageID
	StageIDEncodeArtifact = encodeartifact.StageID
)

package core

import (
	"log/slog"
	"time"

	"github.com/jmylchreest/eventexport/internal/export/encode"
	"github.com/jmylchreest/eventexport/internal/export/source"
)

// Dependencies bundles everything the stages need.
type Dependencies struct {
	Sources     *source.Registry
	Placeholder source.PlaceholderPolicy
	Encoders    *encode.Set
	Logger      *slog.Logger
	// Observer is optional.
	Observer Observer
	// Now stamps artifacts. Defaults to time.Now.
	Now func() time.Time
}

// StageConstructor is a function that creates a stage given dependencies.
type StageConstructor func(deps *Dependencies) Stage

// Factory creates configured Orchestrator instances with all required stages.
type Factory struct {
	deps              *Dependencies
	stageConstructors []StageConstructor
	queue             QueuePolicy
}

// NewFactory creates a new pipeline Factory.
func NewFactory(deps *Dependencies) *Factory {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Factory{
		deps:  deps,
		queue: Sequential{},
	}
}

// RegisterStage adds a stage constructor to the factory.
// Stages are executed in the order they are registered.
func (f *Factory) RegisterStage(constructor StageConstructor) {
	f.stageConstructors = append(f.stageConstructors, constructor)
}

// SetQueuePolicy sets the policy given to every created orchestrator.
func (f *Factory) SetQueuePolicy(q QueuePolicy) {
	if q != nil {
		f.queue = q
	}
}

// Dependencies returns the dependencies passed to stage constructors.
func (f *Factory) Dependencies() *Dependencies {
	return f.deps
}

// Create creates a new Orchestrator with all registered stages.
func (f *Factory) Create() *Orchestrator {
	stages := make([]Stage, 0, len(f.stageConstructors))
	for _, constructor := range f.stageConstructors {
		stages = append(stages, constructor(f.deps))
	}
	o := NewOrchestrator(stages, f.deps.Logger)
	o.SetQueuePolicy(f.queue)
	o.SetObserver(f.deps.Observer)
	return o
}

// OrchestratorFactory defines the interface for creating orchestrators.
type OrchestratorFactory interface {
	Create() *Orchestrator
}

var _ OrchestratorFactory = (*Factory)(nil)

// Package fetchrecords implements the stage that loads a bundle's records.
package fetchrecords

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmylchreest/eventexport/internal/export/source"
	"github.com/jmylchreest/eventexport/internal/pipeline/core"
	"github.com/jmylchreest/eventexport/internal/pipeline/shared"
)

const (
	// StageID is the unique identifier for this stage.
	StageID = "fetch_records"
	// StageName is the human-readable name for this stage.
	StageName = "Fetch Records"
)

// Stage fetches the records of the job's bundle and applies the placeholder
// policy to the result.
type Stage struct {
	shared.BaseStage
	sources  *source.Registry
	policy   source.PlaceholderPolicy
	observer core.Observer
	logger   *slog.Logger
}

// New creates a new fetch stage.
func New(sources *source.Registry, policy source.PlaceholderPolicy) *Stage {
	return &Stage{
		BaseStage: shared.NewBaseStage(StageID, StageName),
		sources:   sources,
		policy:    policy,
	}
}

// NewConstructor returns a stage constructor for use with the factory.
func NewConstructor() core.StageConstructor {
	return func(deps *core.Dependencies) core.Stage {
		s := New(deps.Sources, deps.Placeholder)
		s.observer = deps.Observer
		if deps.Logger != nil {
			s.logger = deps.Logger.With("stage", StageID)
		}
		return s
	}
}

// Execute fetches the bundle's records into state.
func (s *Stage) Execute(ctx context.Context, state *core.State) (*core.StageResult, error) {
	result := shared.NewResult()

	if s.sources == nil {
		return result, fmt.Errorf("%w: no fetcher registry", core.ErrInvalidConfiguration)
	}

	res, err := s.sources.Fetch(ctx, state.Bundle.ID, state.Scope)
	if err != nil {
		return result, err
	}

	records, substituted := s.policy.Apply(state.Bundle.ID, res)
	state.Records = records
	state.Degraded = res.Degraded
	state.Placeholder = substituted

	if substituted {
		state.Job.MarkPlaceholder()
		if s.observer != nil {
			s.observer.PlaceholderSubstituted(state.Bundle.ID)
		}
		s.log(ctx, slog.LevelWarn, "using placeholder records",
			slog.String("bundle_id", state.Bundle.ID),
			slog.Bool("degraded", res.Degraded),
			slog.Int("records", len(records)),
		)
	}

	state.Progress(ctx, core.ProgressFetched, "Fetched records")

	result.RecordsProcessed = len(records)
	result.Message = fmt.Sprintf("Fetched %d records", len(records))
	return result, nil
}

func (s *Stage) log(ctx context.Context, level slog.Level, msg string, attrs ...any) {
	if s.logger != nil {
		s.logger.Log(ctx, level, msg, attrs...)
	}
}

var _ core.Stage = (*Stage)(nil)

// Package encodeartifact implements the stage that encodes fetched records
// into the job's artifact.
package encodeartifact

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmylchreest/eventexport/internal/export/encode"
	"github.com/jmylchreest/eventexport/internal/pipeline/core"
	"github.com/jmylchreest/eventexport/internal/pipeline/shared"
)

const (
	// StageID is the unique identifier for this stage.
	StageID = "encode_artifact"
	// StageName is the human-readable name for this stage.
	StageName = "Encode Artifact"
)

// Stage encodes state.Records with the encoder for the bundle's kind.
type Stage struct {
	shared.BaseStage
	encoders *encode.Set
	now      func() time.Time
	logger   *slog.Logger
}

// New creates a new encode stage.
func New(encoders *encode.Set) *Stage {
	return &Stage{
		BaseStage: shared.NewBaseStage(StageID, StageName),
		encoders:  encoders,
		now:       time.Now,
	}
}

// NewConstructor returns a stage constructor for use with the factory.
func NewConstructor() core.StageConstructor {
	return func(deps *core.Dependencies) core.Stage {
		s := New(deps.Encoders)
		if deps.Now != nil {
			s.now = deps.Now
		}
		if deps.Logger != nil {
			s.logger = deps.Logger.With("stage", StageID)
		}
		return s
	}
}

// Execute encodes the records and stores the artifact in state.
func (s *Stage) Execute(ctx context.Context, state *core.State) (*core.StageResult, error) {
	result := shared.NewResult()

	if s.encoders == nil {
		return result, fmt.Errorf("%w: no encoder set", core.ErrInvalidConfiguration)
	}

	out, err := s.encoders.Encode(ctx, encode.Request{
		Bundle:      state.Bundle,
		Records:     state.Records,
		EventName:   state.Scope.EventName,
		Placeholder: state.Placeholder,
		Progress:    shared.EncodeProgress(ctx, state),
	})
	if err != nil {
		s.log(ctx, slog.LevelError, "encoding failed",
			slog.String("bundle_id", state.Bundle.ID),
			slog.String("kind", string(state.Bundle.Kind)),
			slog.String("error", err.Error()),
		)
		return result, err
	}

	state.Artifact = core.NewArtifact(state.Bundle, out.Payload, out.ContentType, out.Items, s.now())

	result.RecordsProcessed = out.Items
	result.Message = fmt.Sprintf("Encoded %d items into %s", out.Items, state.Artifact.Filename)
	return result, nil
}

func (s *Stage) log(ctx context.Context, level slog.Level, msg string, attrs ...any) {
	if s.logger != nil {
		s.logger.Log(ctx, level, msg, attrs...)
	}
}

var _ core.Stage = (*Stage)(nil)

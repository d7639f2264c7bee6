package core

import (
	"errors"
	"fmt"
)

// Pipeline errors.
var (
	// ErrInvalidTransition indicates a job state change the state machine forbids.
	ErrInvalidTransition = errors.New("invalid job state transition")

	// ErrSessionBusy indicates an export run is already in progress.
	ErrSessionBusy = errors.New("export already running for this event")

	// ErrEmptySelection indicates a selection naming no catalog bundle.
	ErrEmptySelection = errors.New("no known bundles selected")

	// ErrNoArtifact indicates the stages finished without producing an artifact.
	ErrNoArtifact = errors.New("no artifact produced")

	// ErrStagePanic indicates a stage panicked.
	ErrStagePanic = errors.New("stage panicked")

	// ErrInvalidConfiguration indicates invalid pipeline configuration.
	ErrInvalidConfiguration = errors.New("invalid pipeline configuration")
)

// StageError wraps an error with stage context.
type StageError struct {
	StageID   string
	StageName string
	Err       error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s (%s): %v", e.StageName, e.StageID, e.Err)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError creates a new StageError.
func NewStageError(stageID, stageName string, err error) *StageError {
	return &StageError{
		StageID:   stageID,
		StageName: stageName,
		Err:       err,
	}
}

// ConfigurationError represents a configuration problem.
type ConfigurationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for %s: %s", e.Field, e.Message)
}

// Is matches ErrInvalidConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(field, message string) *ConfigurationError {
	return &ConfigurationError{
		Field:   field,
		Message: message,
	}
}

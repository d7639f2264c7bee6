package handlers

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/eventexport/internal/export/aggregate"
	"github.com/jmylchreest/eventexport/internal/export/source"
	"github.com/jmylchreest/eventexport/internal/pipeline/core"
	"github.com/jmylchreest/eventexport/internal/service"
)

// exportError maps service errors onto API status codes.
func exportError(err error) error {
	switch {
	case errors.Is(err, core.ErrSessionBusy):
		return huma.Error409Conflict("an export is already running for this event", err)
	case errors.Is(err, service.ErrJobNotReady):
		return huma.Error409Conflict("export job has not completed", err)
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrJobNotFound),
		errors.Is(err, service.ErrEventNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, core.ErrEmptySelection),
		errors.Is(err, source.ErrInvalidScope),
		errors.Is(err, aggregate.ErrNothingToAggregate):
		return huma.Error422UnprocessableEntity(err.Error())
	}
	return huma.Error500InternalServerError("export request failed", err)
}

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/eventexport/internal/export/source"
	"github.com/jmylchreest/eventexport/internal/observability"
	"github.com/jmylchreest/eventexport/internal/pipeline/core"
	"github.com/jmylchreest/eventexport/internal/service"
)

// ExportHandler handles export session endpoints.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler creates a new export handler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Register registers the export routes with the API.
func (h *ExportHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "createExports",
		Method:        "POST",
		Path:          "/api/v1/events/{eventId}/exports",
		Summary:       "Start exports",
		Description:   "Creates one job per requested bundle and runs them in the background. An empty bundle list exports the whole catalog.",
		Tags:          []string{"Exports"},
		DefaultStatus: http.StatusAccepted,
	}, h.Create)

	huma.Register(api, huma.Operation{
		OperationID: "getExports",
		Method:      "GET",
		Path:        "/api/v1/events/{eventId}/exports",
		Summary:     "Get export session",
		Description: "Returns the event's export jobs with status, progress and errors",
		Tags:        []string{"Exports"},
	}, h.Get)

	huma.Register(api, huma.Operation{
		OperationID:   "clearExports",
		Method:        "DELETE",
		Path:          "/api/v1/events/{eventId}/exports",
		Summary:       "Clear export session",
		Description:   "Discards the event's jobs and artifacts. Rejected while a run is in progress.",
		Tags:          []string{"Exports"},
		DefaultStatus: http.StatusNoContent,
	}, h.Clear)
}

// CreateExportsBody selects the bundles to export.
type CreateExportsBody struct {
	Bundles []string `json:"bundles,omitempty" doc:"Bundle IDs to export, in order"`
}

// CreateExportsInput is the input for starting exports.
type CreateExportsInput struct {
	EventID   string             `path:"eventId" doc:"Event ID"`
	CompanyID string             `header:"X-Company-ID" required:"true" doc:"Company owning the event"`
	UserID    string             `header:"X-User-ID" doc:"User requesting the export"`
	Body      *CreateExportsBody `required:"false"`
}

// SessionOutput returns an export session snapshot.
type SessionOutput struct {
	Body service.SessionInfo
}

// Create submits jobs for the requested bundles and starts the run.
func (h *ExportHandler) Create(ctx context.Context, input *CreateExportsInput) (*SessionOutput, error) {
	scope := source.Scope{
		EventID:   input.EventID,
		CompanyID: input.CompanyID,
		UserID:    input.UserID,
	}
	var bundles []string
	if input.Body != nil {
		bundles = input.Body.Bundles
	}

	if _, err := h.exports.Submit(ctx, scope, bundles); err != nil {
		return nil, exportError(err)
	}
	if err := h.exports.Start(ctx, input.EventID); err != nil {
		return nil, exportError(err)
	}

	observability.LoggerFromContext(ctx).InfoContext(ctx, "export run started",
		slog.String("event_id", input.EventID),
		slog.String("user_id", input.UserID),
		slog.Int("bundle_count", len(bundles)),
	)

	info, err := h.exports.Session(input.EventID)
	if err != nil {
		return nil, exportError(err)
	}
	return &SessionOutput{Body: info}, nil
}

// EventPathInput identifies an event's session.
type EventPathInput struct {
	EventID string `path:"eventId" doc:"Event ID"`
}

// Get returns the event's session.
func (h *ExportHandler) Get(ctx context.Context, input *EventPathInput) (*SessionOutput, error) {
	info, err := h.exports.Session(input.EventID)
	if err != nil {
		return nil, exportError(err)
	}
	if info.Jobs == nil {
		info.Jobs = []core.JobInfo{}
	}
	return &SessionOutput{Body: info}, nil
}

// ClearExportsOutput is the empty output for clearing a session.
type ClearExportsOutput struct{}

// Clear discards the event's session.
func (h *ExportHandler) Clear(ctx context.Context, input *EventPathInput) (*ClearExportsOutput, error) {
	if err := h.exports.Clear(input.EventID); err != nil {
		return nil, exportError(err)
	}
	return &ClearExportsOutput{}, nil
}

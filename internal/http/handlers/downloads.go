package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jmylchreest/eventexport/internal/export/aggregate"
	"github.com/jmylchreest/eventexport/internal/models"
	"github.com/jmylchreest/eventexport/internal/observability"
	"github.com/jmylchreest/eventexport/internal/pipeline/core"
	"github.com/jmylchreest/eventexport/internal/service"
)

// DownloadHandler serves artifact bytes. The routes bypass huma so the
// payload is written as-is with its own content type.
type DownloadHandler struct {
	exports *service.ExportService
}

// NewDownloadHandler creates a new download handler.
func NewDownloadHandler(exports *service.ExportService) *DownloadHandler {
	return &DownloadHandler{exports: exports}
}

// RegisterRoutes mounts the download routes on the router.
func (h *DownloadHandler) RegisterRoutes(router chi.Router) {
	router.Get("/api/v1/events/{eventId}/exports/download", h.serveAggregate)
	router.Get("/api/v1/events/{eventId}/exports/{jobId}/download", h.serveArtifact)
}

func (h *DownloadHandler) serveArtifact(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	jobID, err := models.ParseULID(chi.URLParam(r, "jobId"))
	if err != nil {
		http.Error(w, "export job not found", http.StatusNotFound)
		return
	}

	art, err := h.exports.Artifact(eventID, jobID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeArtifact(w, art)
}

func (h *DownloadHandler) serveAggregate(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	art, err := h.exports.Aggregate(r.Context(), eventID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeArtifact(w, art)
}

func (h *DownloadHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := downloadStatus(err)
	if status >= http.StatusInternalServerError {
		observability.LoggerFromContext(r.Context()).ErrorContext(r.Context(), "download failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	http.Error(w, err.Error(), status)
}

func downloadStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrJobNotReady), errors.Is(err, core.ErrSessionBusy):
		return http.StatusConflict
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, aggregate.ErrNothingToAggregate):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeArtifact(w http.ResponseWriter, art *core.Artifact) {
	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Filename))
	w.Header().Set("Content-Length", strconv.FormatInt(art.Size(), 10))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(art.Payload)
}

package handlers_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/eventexport/internal/export/catalog"
	"github.com/jmylchreest/eventexport/internal/export/encode"
	"github.com/jmylchreest/eventexport/internal/export/record"
	"github.com/jmylchreest/eventexport/internal/export/source"
	"github.com/jmylchreest/eventexport/internal/http/handlers"
	"github.com/jmylchreest/eventexport/internal/pipeline"
	"github.com/jmylchreest/eventexport/internal/pipeline/core"
	"github.com/jmylchreest/eventexport/internal/service"
)

const eventPath = "/api/v1/events/evt-1/exports"

func itineraries(context.Context, source.Scope) ([]record.Record, error) {
	return []record.Record{{"title": "Keynote", "location": "Hall A"}}, nil
}

func newTestService(t *testing.T, reg *source.Registry) *service.ExportService {
	t.Helper()
	factory, err := pipeline.NewDefaultFactory(
		reg,
		encode.NewSet(encode.Tabular{}, nil, nil),
		source.PlaceholderPolicy{Mode: source.PlaceholderOff},
		core.Sequential{},
		nil,
		nil,
	)
	require.NoError(t, err)
	svc := service.NewExportService(factory, catalog.Default())
	t.Cleanup(svc.Close)
	return svc
}

func setupRouter(svc *service.ExportService) *chi.Mux {
	router := chi.NewRouter()
	api := humachi.New(router, huma.DefaultConfig("Test API", "1.0.0"))
	handlers.NewBundleHandler(svc.Catalog()).Register(api)
	handlers.NewExportHandler(svc).Register(api)
	handlers.NewDownloadHandler(svc).RegisterRoutes(router)
	return router
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("X-Company-ID", "co-1")
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) service.SessionInfo {
	t.Helper()
	var info service.SessionInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	return info
}

func TestBundleHandler(t *testing.T) {
	router := setupRouter(newTestService(t, source.NewRegistry()))

	t.Run("lists the catalog in order", func(t *testing.T) {
		rec := do(router, "GET", "/api/v1/bundles", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Bundles []catalog.BundleDescriptor `json:"bundles"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Bundles, len(catalog.Default().All()))
		assert.Equal(t, catalog.GuestList, body.Bundles[0].ID)
	})

	t.Run("filters by category", func(t *testing.T) {
		rec := do(router, "GET", "/api/v1/bundles?category=Media", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Bundles []catalog.BundleDescriptor `json:"bundles"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Bundles, 2)
		for _, b := range body.Bundles {
			assert.Equal(t, catalog.KindArchive, b.Kind)
		}
	})

	t.Run("unknown bundle is 404", func(t *testing.T) {
		rec := do(router, "GET", "/api/v1/bundles/nope", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestExportHandler_CreateRunAndDownload(t *testing.T) {
	reg := source.NewRegistry()
	reg.Register(catalog.Itineraries, itineraries)
	svc := newTestService(t, reg)
	router := setupRouter(svc)

	rec := do(router, "POST", eventPath, `{"bundles":["itineraries","messages"]}`)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Len(t, decodeSession(t, rec).Jobs, 2)

	svc.Wait()

	rec = do(router, "GET", eventPath, "")
	require.Equal(t, http.StatusOK, rec.Code)
	info := decodeSession(t, rec)
	require.Len(t, info.Jobs, 2)
	assert.True(t, info.AggregateReady)
	assert.Equal(t, core.JobStatusCompleted, info.Jobs[0].Status)
	assert.Equal(t, 100, info.Jobs[0].Progress)
	assert.Equal(t, core.JobStatusFailed, info.Jobs[1].Status)
	assert.NotEmpty(t, info.Jobs[1].Error)

	rec = do(router, "GET", eventPath+"/"+info.Jobs[0].ID.String()+"/download", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "itineraries-")
	assert.True(t, strings.HasPrefix(rec.Body.String(), `"Title"`), rec.Body.String())

	rec = do(router, "GET", eventPath+"/"+info.Jobs[1].ID.String()+"/download", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(router, "GET", eventPath+"/download", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "evt-1_export_")
	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "Itineraries.csv", zr.File[0].Name)

	rec = do(router, "DELETE", eventPath, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(router, "GET", eventPath, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportHandler_Validation(t *testing.T) {
	router := setupRouter(newTestService(t, source.NewRegistry()))

	t.Run("only unknown bundles", func(t *testing.T) {
		rec := do(router, "POST", eventPath, `{"bundles":["nope"]}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("missing company header", func(t *testing.T) {
		req := httptest.NewRequest("POST", eventPath, strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("unknown session", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, do(router, "GET", "/api/v1/events/other/exports", "").Code)
		assert.Equal(t, http.StatusNotFound, do(router, "DELETE", "/api/v1/events/other/exports", "").Code)
		assert.Equal(t, http.StatusNotFound, do(router, "GET", "/api/v1/events/other/exports/download", "").Code)
	})

	t.Run("malformed job id", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, do(router, "GET", eventPath+"/not-a-ulid/download", "").Code)
	})
}

func TestExportHandler_BusySession(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	reg := source.NewRegistry()
	reg.Register(catalog.Itineraries, func(ctx context.Context, _ source.Scope) ([]record.Record, error) {
		close(started)
		<-release
		return nil, nil
	})
	svc := newTestService(t, reg)
	router := setupRouter(svc)

	rec := do(router, "POST", eventPath, `{"bundles":["itineraries"]}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	<-started

	assert.Equal(t, http.StatusConflict, do(router, "POST", eventPath, `{"bundles":["itineraries"]}`).Code)
	assert.Equal(t, http.StatusConflict, do(router, "DELETE", eventPath, "").Code)

	rec = do(router, "GET", eventPath, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeSession(t, rec).Running)

	close(release)
	svc.Wait()
}

func TestDownloadHandler_NothingToAggregate(t *testing.T) {
	svc := newTestService(t, source.NewRegistry())
	router := setupRouter(svc)

	scope := source.Scope{EventID: "evt-1", CompanyID: "co-1"}
	jobs, err := svc.Submit(context.Background(), scope, []string{catalog.Itineraries})
	require.NoError(t, err)

	rec := do(router, "GET", eventPath+"/download", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(router, "GET", eventPath+"/"+jobs[0].ID.String()+"/download", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error { return p.err }
func (p fakePinger) Driver() string             { return "sqlite" }

func TestHealthHandler_GetHealth(t *testing.T) {
	t.Run("healthy without database", func(t *testing.T) {
		out, err := handlers.NewHealthHandler("1.0.0").GetHealth(context.Background(), &handlers.HealthInput{})
		require.NoError(t, err)
		assert.Equal(t, "healthy", out.Body.Status)
		assert.Equal(t, "1.0.0", out.Body.Version)
		assert.Equal(t, "not_configured", out.Body.Database.Status)
		assert.NotEmpty(t, out.Body.Uptime)
		assert.NotZero(t, out.Body.CPUInfo.Cores)
	})

	t.Run("database reachable", func(t *testing.T) {
		h := handlers.NewHealthHandler("1.0.0").WithDB(fakePinger{})
		out, err := h.GetHealth(context.Background(), &handlers.HealthInput{})
		require.NoError(t, err)
		assert.Equal(t, "healthy", out.Body.Status)
		assert.Equal(t, "ok", out.Body.Checks["database"])
		assert.Equal(t, "sqlite", out.Body.Database.Driver)
	})

	t.Run("database down degrades", func(t *testing.T) {
		h := handlers.NewHealthHandler("1.0.0").WithDB(fakePinger{err: errors.New("connection refused")})
		out, err := h.GetHealth(context.Background(), &handlers.HealthInput{})
		require.NoError(t, err)
		assert.Equal(t, "degraded", out.Body.Status)
		assert.Equal(t, "connection refused", out.Body.Database.Error)
	})
}

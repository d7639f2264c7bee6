package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/eventexport/internal/export/catalog"
	"github.com/jmylchreest/eventexport/internal/pipeline/core"
)

func TestCollector_JobFinished(t *testing.T) {
	c := New(prometheus.NewRegistry())

	c.JobFinished("guest-list", catalog.KindTabular, core.JobStatusCompleted, time.Second)
	c.JobFinished("guest-list", catalog.KindTabular, core.JobStatusCompleted, time.Second)
	c.JobFinished("event-media", catalog.KindArchive, core.JobStatusFailed, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.jobsTotal.WithLabelValues("guest-list", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.jobsTotal.WithLabelValues("event-media", "failed")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.jobDuration))
}

func TestCollector_Counters(t *testing.T) {
	c := New(prometheus.NewRegistry())

	c.ArchiveFile(true)
	c.ArchiveFile(true)
	c.ArchiveFile(false)
	c.PlaceholderSubstituted("messages")
	c.ScheduledRun("nightly", nil)
	c.ScheduledRun("nightly", errors.New("boom"))
	c.ScheduledRunSkipped()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.archiveFiles.WithLabelValues("added")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.archiveFiles.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.placeholders.WithLabelValues("messages")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.exportRuns.WithLabelValues("nightly", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.runsSkipped))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.SetBuildInfo("dev", "none")
		c.JobFinished("x", catalog.KindReport, core.JobStatusFailed, 0)
		c.PlaceholderSubstituted("x")
		c.ArchiveFile(false)
		c.ScheduledRun("x", nil)
		c.ScheduledRunSkipped()
	})
}

func TestHandler_ServesRegisteredMetrics(t *testing.T) {
	reg := NewRegistry()
	c := New(reg)
	c.SetBuildInfo("1.2.3", "abc")
	c.PlaceholderSubstituted("guest-list")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `eventexport_build_info{commit="abc",version="1.2.3"} 1`))
	assert.Contains(t, body, `eventexport_placeholder_substitutions_total{bundle="guest-list"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

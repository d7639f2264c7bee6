// Package metrics exposes export pipeline metrics to prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jmylchreest/eventexport/internal/export/catalog"
	"github.com/jmylchreest/eventexport/internal/pipeline/core"
)

const namespace = "eventexport"

// Collector records export outcomes. A nil *Collector is a no-op.
type Collector struct {
	buildInfo    *prometheus.GaugeVec
	jobsTotal    *prometheus.CounterVec
	jobDuration  *prometheus.HistogramVec
	archiveFiles *prometheus.CounterVec
	placeholders *prometheus.CounterVec
	exportRuns   *prometheus.CounterVec
	runsSkipped  prometheus.Counter
}

// New registers the export metrics on reg.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		buildInfo: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build information",
		}, []string{"version", "commit"}),
		jobsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      "Export jobs finished, by bundle and terminal status",
		}, []string{"bundle", "status"}),
		jobDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Export job duration by output kind",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
		}, []string{"kind"}),
		archiveFiles: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_files_total",
			Help:      "Media files considered for archives, by result",
		}, []string{"result"}),
		placeholders: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "placeholder_substitutions_total",
			Help:      "Jobs whose records were replaced with placeholder data",
		}, []string{"bundle"}),
		exportRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduled_runs_total",
			Help:      "Scheduled export runs, by schedule and result",
		}, []string{"schedule", "result"}),
		runsSkipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduled_runs_skipped_total",
			Help:      "Scheduled runs skipped because an export was already running",
		}),
	}
}

// NewRegistry returns a registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// SetBuildInfo publishes the running version.
func (c *Collector) SetBuildInfo(version, commit string) {
	if c == nil {
		return
	}
	c.buildInfo.WithLabelValues(version, commit).Set(1)
}

// JobFinished implements core.Observer.
func (c *Collector) JobFinished(bundleID string, kind catalog.OutputKind, status core.JobStatus, d time.Duration) {
	if c == nil {
		return
	}
	c.jobsTotal.WithLabelValues(bundleID, string(status)).Inc()
	c.jobDuration.WithLabelValues(string(kind)).Observe(d.Seconds())
}

// PlaceholderSubstituted implements core.Observer.
func (c *Collector) PlaceholderSubstituted(bundleID string) {
	if c == nil {
		return
	}
	c.placeholders.WithLabelValues(bundleID).Inc()
}

// ArchiveFile counts one archive entry attempt. It matches encode.FileHook.
func (c *Collector) ArchiveFile(ok bool) {
	if c == nil {
		return
	}
	result := "added"
	if !ok {
		result = "skipped"
	}
	c.archiveFiles.WithLabelValues(result).Inc()
}

// ScheduledRun counts a finished scheduled run.
func (c *Collector) ScheduledRun(schedule string, err error) {
	if c == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	c.exportRuns.WithLabelValues(schedule, result).Inc()
}

// ScheduledRunSkipped counts a scheduled run skipped while busy.
func (c *Collector) ScheduledRunSkipped() {
	if c == nil {
		return
	}
	c.runsSkipped.Inc()
}

var _ core.Observer = (*Collector)(nil)

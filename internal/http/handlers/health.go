package handlers

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/jmylchreest/eventexport/pkg/httpclient"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
	Driver() string
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	version   string
	startTime time.Time
	db        Pinger
	client    *httpclient.Client
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		version:   version,
		startTime: time.Now(),
	}
}

// WithDB sets the database checked by the health endpoint.
func (h *HealthHandler) WithDB(db Pinger) *HealthHandler {
	h.db = db
	return h
}

// WithHTTPClient reports the media download client's circuit state.
func (h *HealthHandler) WithHTTPClient(c *httpclient.Client) *HealthHandler {
	h.client = c
	return h
}

// HealthInput is the input for the health check endpoint.
type HealthInput struct{}

// HealthOutput is the output for the health check endpoint.
type HealthOutput struct {
	Body HealthResponse
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status        string            `json:"status"`
	Timestamp     string            `json:"timestamp"`
	Version       string            `json:"version"`
	Uptime        string            `json:"uptime"`
	UptimeSeconds float64           `json:"uptime_seconds"`
	CPUInfo       CPUInfo           `json:"cpu_info"`
	Memory        MemoryInfo        `json:"memory"`
	Database      DatabaseHealth    `json:"database"`
	Checks        map[string]string `json:"checks"`
}

// CPUInfo holds core count and load averages.
type CPUInfo struct {
	Cores              int     `json:"cores"`
	Load1Min           float64 `json:"load_1min"`
	Load5Min           float64 `json:"load_5min"`
	Load15Min          float64 `json:"load_15min"`
	LoadPercentage1Min float64 `json:"load_percentage_1min"`
}

// MemoryInfo holds system and process memory in megabytes.
type MemoryInfo struct {
	TotalMemoryMB     float64 `json:"total_memory_mb"`
	UsedMemoryMB      float64 `json:"used_memory_mb"`
	AvailableMemoryMB float64 `json:"available_memory_mb"`
	ProcessMemoryMB   float64 `json:"process_memory_mb"`
	GoHeapMB          float64 `json:"go_heap_mb"`
}

// DatabaseHealth holds the result of pinging the backing store.
type DatabaseHealth struct {
	Status         string  `json:"status"`
	Driver         string  `json:"driver,omitempty"`
	ResponseTimeMS float64 `json:"response_time_ms"`
	Error          string  `json:"error,omitempty"`
}

// Register registers the health routes with the API.
func (h *HealthHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getHealth",
		Method:      "GET",
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns the health status of the service including system metrics",
		Tags:        []string{"System"},
	}, h.GetHealth)
}

// GetHealth returns the health status of the service. The service is
// degraded, not down, when the database cannot be reached: sessions already
// held in memory remain downloadable.
func (h *HealthHandler) GetHealth(ctx context.Context, input *HealthInput) (*HealthOutput, error) {
	now := time.Now()
	uptime := now.Sub(h.startTime)
	db := h.databaseHealth(ctx)

	checks := map[string]string{"database": db.Status}
	if h.client != nil {
		checks["media_downloads"] = h.client.CircuitState().String()
	}

	status := "healthy"
	if db.Status == "error" {
		status = "degraded"
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:        status,
			Timestamp:     now.UTC().Format(time.RFC3339),
			Version:       h.version,
			Uptime:        uptime.Round(time.Second).String(),
			UptimeSeconds: uptime.Seconds(),
			CPUInfo:       cpuInfo(),
			Memory:        memoryInfo(),
			Database:      db,
			Checks:        checks,
		},
	}, nil
}

func cpuInfo() CPUInfo {
	info := CPUInfo{Cores: runtime.NumCPU()}

	avg, err := load.Avg()
	if err == nil && avg != nil {
		info.Load1Min = avg.Load1
		info.Load5Min = avg.Load5
		info.Load15Min = avg.Load15
		if info.Cores > 0 {
			info.LoadPercentage1Min = avg.Load1 / float64(info.Cores) * 100
		}
	}
	return info
}

const mb = 1024 * 1024

func memoryInfo() MemoryInfo {
	var info MemoryInfo

	if vm, err := mem.VirtualMemory(); err == nil && vm != nil {
		info.TotalMemoryMB = float64(vm.Total) / mb
		info.UsedMemoryMB = float64(vm.Used) / mb
		info.AvailableMemoryMB = float64(vm.Available) / mb
	}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if pm, err := proc.MemoryInfo(); err == nil && pm != nil {
			info.ProcessMemoryMB = float64(pm.RSS) / mb
		}
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	info.GoHeapMB = float64(ms.HeapAlloc) / mb
	return info
}

func (h *HealthHandler) databaseHealth(ctx context.Context) DatabaseHealth {
	if h.db == nil {
		return DatabaseHealth{Status: "not_configured"}
	}

	health := DatabaseHealth{Status: "ok", Driver: h.db.Driver()}
	start := time.Now()
	err := h.db.Ping(ctx)
	health.ResponseTimeMS = float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		health.Status = "error"
		health.Error = err.Error()
	}
	return health
}

package shared

import (
	"context"
	"maps"
	"sync"

	"github.com/jmylchreest/eventexport/internal/models"
	"github.com/jmylchreest/eventexport/internal/pipeline/core"
)

// ProgressManager keeps the latest progress of every job in a run.
type ProgressManager struct {
	mu       sync.RWMutex
	jobs     map[models.ULID]*JobProgress
	callback ProgressCallback
}

// JobProgress tracks progress for a single job.
type JobProgress struct {
	Job     core.JobInfo
	StageID string
	Message string
}

// ProgressCallback is called when progress is updated. Calls are
// serialised.
type ProgressCallback func(progress JobProgress)

// NewProgressManager creates a new ProgressManager.
func NewProgressManager(callback ProgressCallback) *ProgressManager {
	return &ProgressManager{
		jobs:     make(map[models.ULID]*JobProgress),
		callback: callback,
	}
}

// ReportProgress implements core.ProgressReporter.
func (pm *ProgressManager) ReportProgress(ctx context.Context, job core.JobInfo, stageID string, message string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	jp, ok := pm.jobs[job.ID]
	if !ok {
		jp = &JobProgress{}
		pm.jobs[job.ID] = jp
	}
	jp.Job = job
	jp.StageID = stageID
	jp.Message = message

	if pm.callback != nil {
		pm.callback(*jp)
	}
}

// GetProgress returns the latest progress of a job.
func (pm *ProgressManager) GetProgress(id models.ULID) (JobProgress, bool) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	jp, ok := pm.jobs[id]
	if !ok {
		return JobProgress{}, false
	}
	return *jp, true
}

// GetAllProgress returns progress for all jobs.
func (pm *ProgressManager) GetAllProgress() map[models.ULID]JobProgress {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	result := make(map[models.ULID]JobProgress, len(pm.jobs))
	for id, jp := range maps.All(pm.jobs) {
		result[id] = *jp
	}
	return result
}

// Reset clears all progress.
func (pm *ProgressManager) Reset() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.jobs = make(map[models.ULID]*JobProgress)
}

var _ core.ProgressReporter = (*ProgressManager)(nil)

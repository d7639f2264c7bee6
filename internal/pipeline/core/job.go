package core

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmylchreest/eventexport/internal/export/catalog"
	"github.com/jmylchreest/eventexport/internal/models"
)

// JobStatus is the lifecycle state of an export job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IsTerminal reports whether no further transitions are possible.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Progress milestones.
const (
	ProgressStarted = 10
	ProgressFetched = 30
	ProgressDone    = 100
)

// JobInfo is a point-in-time copy of a job.
type JobInfo struct {
	ID          models.ULID        `json:"id"`
	BundleID    string             `json:"bundle_id"`
	BundleName  string             `json:"bundle_name"`
	Kind        catalog.OutputKind `json:"kind"`
	Status      JobStatus          `json:"status"`
	Progress    int                `json:"progress"`
	Error       string             `json:"error,omitempty"`
	Placeholder bool               `json:"placeholder"`
	Artifact    *Artifact          `json:"-"`
	CreatedAt   time.Time          `json:"created_at"`
	StartedAt   *time.Time         `json:"started_at,omitempty"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
}

// Job is the unit of work for exporting one bundle. Transitions:
//
//	Pending -> Processing -> Completed | Failed
//
// A pending job may also fail directly, e.g. when its run is cancelled
// before it starts. Progress never decreases while processing and is reset
// to 0 on failure.
type Job struct {
	mu   sync.RWMutex
	info JobInfo
	now  func() time.Time
}

// NewJob creates a pending job for a bundle.
func NewJob(desc catalog.BundleDescriptor) *Job {
	return newJobAt(desc, time.Now)
}

func newJobAt(desc catalog.BundleDescriptor, now func() time.Time) *Job {
	return &Job{
		info: JobInfo{
			ID:         models.NewULID(),
			BundleID:   desc.ID,
			BundleName: desc.Name,
			Kind:       desc.Kind,
			Status:     JobStatusPending,
			CreatedAt:  now(),
		},
		now: now,
	}
}

// Info returns a copy of the job's current state.
func (j *Job) Info() JobInfo {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.info
}

// ID returns the job id.
func (j *Job) ID() models.ULID {
	return j.info.ID
}

// BundleID returns the id of the exported bundle.
func (j *Job) BundleID() string {
	return j.info.BundleID
}

// Status returns the current status.
func (j *Job) Status() JobStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.info.Status
}

// Artifact returns the artifact of a completed job, or nil.
func (j *Job) Artifact() *Artifact {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.info.Artifact
}

func (j *Job) transition(from JobStatus, to JobStatus) error {
	if j.info.Status != from {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.info.Status, to)
	}
	j.info.Status = to
	return nil
}

// Start moves a pending job to processing.
func (j *Job) Start() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.transition(JobStatusPending, JobStatusProcessing); err != nil {
		return err
	}
	now := j.now()
	j.info.StartedAt = &now
	j.info.Progress = ProgressStarted
	return nil
}

// Advance raises progress to p, clamped to [0, 100]. Lower values and calls
// outside processing are ignored.
func (j *Job) Advance(p int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.info.Status != JobStatusProcessing {
		return
	}
	p = min(max(p, 0), ProgressDone)
	if p > j.info.Progress {
		j.info.Progress = p
	}
}

// MarkPlaceholder flags the job as built from placeholder records.
func (j *Job) MarkPlaceholder() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.info.Placeholder = true
}

// Complete attaches the artifact and finishes the job.
func (j *Job) Complete(a *Artifact) error {
	if a == nil {
		return ErrNoArtifact
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.transition(JobStatusProcessing, JobStatusCompleted); err != nil {
		return err
	}
	now := j.now()
	j.info.CompletedAt = &now
	j.info.Progress = ProgressDone
	j.info.Artifact = a
	return nil
}

// Fail records err and finishes the job. A nil err is recorded as "unknown
// error".
func (j *Job) Fail(err error) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.info.Status.IsTerminal() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.info.Status, JobStatusFailed)
	}
	if err == nil {
		err = errors.New("unknown error")
	}
	now := j.now()
	j.info.Status = JobStatusFailed
	j.info.CompletedAt = &now
	j.info.Progress = 0
	j.info.Error = err.Error()
	return nil
}

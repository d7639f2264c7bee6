package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/eventexport/internal/config"
	"github.com/jmylchreest/eventexport/internal/export/aggregate"
	"github.com/jmylchreest/eventexport/internal/export/catalog"
	"github.com/jmylchreest/eventexport/internal/export/source"
	"github.com/jmylchreest/eventexport/internal/pipeline/core"
	"github.com/jmylchreest/eventexport/internal/storage"
)

type fakeExporter struct {
	mu        sync.Mutex
	exportErr error
	aggErr    error
	scopes    []source.Scope
	day       int
}

func (f *fakeExporter) Export(_ context.Context, scope source.Scope, _ []string) (*core.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scopes = append(f.scopes, scope)
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	return &core.Result{Completed: 1}, nil
}

func (f *fakeExporter) Aggregate(context.Context, string) (*core.Artifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.aggErr != nil {
		return nil, f.aggErr
	}
	f.day++
	now := time.Date(2024, 1, f.day, 0, 0, 0, 0, time.UTC)
	return &core.Artifact{
		Filename: aggregate.Filename("Summit", now),
		Payload:  []byte("zip"),
		Kind:     catalog.KindArchive,
	}, nil
}

func (f *fakeExporter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.scopes)
}

func newTestScheduler(t *testing.T, exp Exporter) (*Scheduler, *storage.ArtifactStore) {
	t.Helper()
	sb, err := storage.NewSandbox(t.TempDir())
	require.NoError(t, err)
	store := storage.NewArtifactStore(sb)
	return New(exp, store), store
}

var nightly = config.ScheduleEntry{Name: "nightly", Cron: "0 0 2 * * *", EventID: "evt-1", CompanyID: "co-1", Keep: 2}

func TestScheduler_RunNowWritesAggregate(t *testing.T) {
	exp := &fakeExporter{}
	s, store := newTestScheduler(t, exp)
	require.NoError(t, s.Add(nightly))

	require.NoError(t, s.RunNow(context.Background(), "nightly"))

	data, err := store.Sandbox().ReadFile("nightly/Summit_export_2024-01-01.zip")
	require.NoError(t, err)
	assert.Equal(t, "zip", string(data))
	assert.Equal(t, UserID, exp.scopes[0].UserID)
	assert.Equal(t, "co-1", exp.scopes[0].CompanyID)
}

func TestScheduler_RunNowPrunes(t *testing.T) {
	s, store := newTestScheduler(t, &fakeExporter{})
	require.NoError(t, s.Add(nightly))

	for range 3 {
		require.NoError(t, s.RunNow(context.Background(), "nightly"))
	}
	entries, err := store.Sandbox().List("nightly")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Summit_export_2024-01-02.zip", entries[0].Name())
}

func TestScheduler_BusySessionIsSkipped(t *testing.T) {
	s, store := newTestScheduler(t, &fakeExporter{exportErr: core.ErrSessionBusy})
	require.NoError(t, s.Add(nightly))

	require.NoError(t, s.RunNow(context.Background(), "nightly"))
	ok, err := store.Sandbox().Exists("nightly")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScheduler_RunErrors(t *testing.T) {
	s, _ := newTestScheduler(t, &fakeExporter{aggErr: aggregate.ErrNothingToAggregate})
	require.NoError(t, s.Add(nightly))

	assert.ErrorIs(t, s.RunNow(context.Background(), "nightly"), aggregate.ErrNothingToAggregate)
	assert.ErrorIs(t, s.RunNow(context.Background(), "missing"), ErrUnknownSchedule)

	boom := errors.New("boom")
	s2, _ := newTestScheduler(t, &fakeExporter{exportErr: boom})
	require.NoError(t, s2.Add(nightly))
	assert.ErrorIs(t, s2.RunNow(context.Background(), "nightly"), boom)
}

func TestScheduler_AddValidation(t *testing.T) {
	s, _ := newTestScheduler(t, &fakeExporter{})

	assert.Error(t, s.Add(config.ScheduleEntry{Name: "bad", Cron: "not a cron", EventID: "e", CompanyID: "c"}))
	assert.Error(t, s.Add(config.ScheduleEntry{Name: "five", Cron: "0 2 * * *", EventID: "e", CompanyID: "c"}), "seconds field required")
	assert.Error(t, s.Add(config.ScheduleEntry{Cron: "0 0 2 * * *", EventID: "e"}))

	require.NoError(t, s.Add(config.ScheduleEntry{Cron: "@daily", EventID: "evt-9", CompanyID: "c"}))
	_, err := s.NextRun("evt-9")
	assert.NoError(t, err, "name defaults to event id")

	require.NoError(t, s.Add(nightly))
	assert.Error(t, s.Add(nightly), "duplicate name")

	assert.NoError(t, s.ValidateCron("*/5 * * * * *"))
}

func TestScheduler_FiresOnSchedule(t *testing.T) {
	exp := &fakeExporter{}
	s, _ := newTestScheduler(t, exp)
	require.NoError(t, s.Add(config.ScheduleEntry{Name: "often", Cron: "* * * * * *", EventID: "evt-1", CompanyID: "co-1"}))

	s.Start()
	defer s.Stop()

	next, err := s.NextRun("often")
	require.NoError(t, err)
	assert.False(t, next.IsZero())
	assert.Eventually(t, func() bool { return exp.calls() > 0 }, 3*time.Second, 50*time.Millisecond)
}

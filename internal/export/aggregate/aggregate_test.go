package aggregate

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/eventexport/internal/export/catalog"
	"github.com/jmylchreest/eventexport/internal/pipeline/core"
)

var now = time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC)

func completed(id, name string, kind catalog.OutputKind, payload string) core.JobInfo {
	desc := catalog.BundleDescriptor{ID: id, Name: name, Kind: kind}
	return core.JobInfo{
		BundleID: id,
		Status:   core.JobStatusCompleted,
		Artifact: core.NewArtifact(desc, []byte(payload), "", 1, now),
	}
}

func readZip(t *testing.T, b []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	require.NoError(t, err)
	out := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		out[f.Name] = string(data)
	}
	return out
}

func TestBuild_OnlyCompletedJobs(t *testing.T) {
	jobs := []core.JobInfo{
		completed("guest-list", "Guest List", catalog.KindTabular, "a,b\n"),
		{BundleID: "messages", Status: core.JobStatusFailed, Error: "boom"},
		completed("analytics-report", "Analytics Report", catalog.KindReport, "%PDF-"),
		{BundleID: "event-media", Status: core.JobStatusProcessing},
	}

	art, err := Build("Summer Gala", jobs, now)
	require.NoError(t, err)

	assert.Equal(t, "Summer Gala_export_2024-06-02.zip", art.Filename)
	assert.Equal(t, "application/zip", art.ContentType)
	assert.Equal(t, 2, art.RecordCount)
	assert.Equal(t, map[string]string{
		"Guest List.csv":       "a,b\n",
		"Analytics Report.pdf": "%PDF-",
	}, readZip(t, art.Payload))
}

func TestBuild_NothingCompleted(t *testing.T) {
	_, err := Build("Gala", nil, now)
	assert.ErrorIs(t, err, ErrNothingToAggregate)

	_, err = Build("Gala", []core.JobInfo{{Status: core.JobStatusFailed}}, now)
	assert.ErrorIs(t, err, ErrNothingToAggregate)
}

func TestBuild_SanitisesNames(t *testing.T) {
	jobs := []core.JobInfo{completed("x", "Photos/Video", catalog.KindArchive, "zip")}

	art, err := Build("A/B Summit", jobs, now)
	require.NoError(t, err)
	assert.Equal(t, "A-B Summit_export_2024-06-02.zip", art.Filename)
	assert.Contains(t, readZip(t, art.Payload), "Photos-Video.zip")
}

func TestFilename_EmptyEventName(t *testing.T) {
	assert.Equal(t, "event_export_2024-06-02.zip", Filename("  ", now))
}

func TestReady(t *testing.T) {
	assert.False(t, Ready(nil))
	assert.False(t, Ready([]core.JobInfo{{Status: core.JobStatusFailed}}))
	assert.True(t, Ready([]core.JobInfo{completed("a", "A", catalog.KindTabular, "")}))
}

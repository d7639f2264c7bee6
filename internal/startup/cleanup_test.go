package startup

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeAged(t *testing.T, path string, age time.Duration) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	ts := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, ts, ts))
}

func TestIsTempFile(t *testing.T) {
	assert.True(t, IsTempFile(".Guest List.csv.a1b2c3d4.tmp"))
	assert.False(t, IsTempFile("Guest List.csv"))
	assert.False(t, IsTempFile("notes.tmp"))
	assert.False(t, IsTempFile(".hidden"))
}

func TestCleanupOrphanedTempFiles(t *testing.T) {
	t.Run("removes old temp files in nested directories", func(t *testing.T) {
		baseDir := t.TempDir()
		old := filepath.Join(baseDir, "exports", "nightly", ".export.zip.deadbeef.tmp")
		writeAged(t, old, 2*time.Hour)

		count, err := CleanupOrphanedTempFiles(newTestLogger(), baseDir, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		_, err = os.Stat(old)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("preserves recent temp files and artifacts", func(t *testing.T) {
		baseDir := t.TempDir()
		recent := filepath.Join(baseDir, ".guests.csv.0badf00d.tmp")
		artifact := filepath.Join(baseDir, "evt_export_2024-01-15.zip")
		writeAged(t, recent, 10*time.Minute)
		writeAged(t, artifact, 48*time.Hour)

		count, err := CleanupOrphanedTempFiles(newTestLogger(), baseDir, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
		assert.FileExists(t, recent)
		assert.FileExists(t, artifact)
	})

	t.Run("missing base directory is not an error", func(t *testing.T) {
		count, err := CleanupOrphanedTempFiles(newTestLogger(), filepath.Join(t.TempDir(), "missing"), time.Hour)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})
}

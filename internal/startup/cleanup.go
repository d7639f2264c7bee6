// Package startup provides utilities for application startup tasks.
package startup

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TempFileSuffix marks the in-flight files written by storage.Sandbox.AtomicWrite.
const TempFileSuffix = ".tmp"

// DefaultCleanupAge is the default maximum age for orphaned temp files.
const DefaultCleanupAge = 1 * time.Hour

// IsTempFile reports whether name looks like an atomic-write temp file:
// a hidden file ending in TempFileSuffix.
func IsTempFile(name string) bool {
	return strings.HasPrefix(name, ".") && strings.HasSuffix(name, TempFileSuffix)
}

// CleanupOrphanedTempFiles removes atomic-write temp files under baseDir
// that are older than maxAge. They are left behind when the process dies
// between writing and renaming an artifact.
//
// Returns the number of files removed and any error encountered walking baseDir.
func CleanupOrphanedTempFiles(logger *slog.Logger, baseDir string, maxAge time.Duration) (int, error) {
	if _, err := os.Stat(baseDir); os.IsNotExist(err) {
		logger.Debug("base directory does not exist, skipping cleanup",
			slog.String("path", baseDir),
		)
		return 0, nil
	}

	cutoff := time.Now().Add(-maxAge)
	var removed int

	err := filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("skipping unreadable path during cleanup",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !IsTempFile(d.Name()) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().After(cutoff) {
			logger.Debug("preserving recent temp file",
				slog.String("path", path),
				slog.Duration("age", time.Since(info.ModTime()).Round(time.Second)),
			)
			return nil
		}

		if err := os.Remove(path); err != nil {
			logger.Warn("failed to remove orphaned temp file",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			return nil
		}
		logger.Info("removed orphaned temp file",
			slog.String("path", path),
			slog.Duration("age", time.Since(info.ModTime()).Round(time.Second)),
		)
		removed++
		return nil
	})

	return removed, err
}

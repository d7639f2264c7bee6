// Package aggregate bundles the artifacts of completed jobs into one zip.
package aggregate

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmylchreest/eventexport/internal/export/catalog"
	"github.com/jmylchreest/eventexport/internal/pipeline/core"
)

// ErrNothingToAggregate is returned when no job has completed.
var ErrNothingToAggregate = errors.New("no completed exports to download")

// BundleID tags aggregate artifacts.
const BundleID = "aggregate"

// Filename returns "<eventName>_export_<YYYY-MM-DD>.zip".
func Filename(eventName string, now time.Time) string {
	name := sanitize(eventName)
	if name == "" {
		name = "event"
	}
	return fmt.Sprintf("%s_export_%s.zip", name, now.Format("2006-01-02"))
}

// Ready reports whether at least one job can be aggregated.
func Ready(jobs []core.JobInfo) bool {
	for _, j := range jobs {
		if j.Status == core.JobStatusCompleted && j.Artifact != nil {
			return true
		}
	}
	return false
}

// Build zips the artifacts of the completed jobs, one entry per job named
// "<bundleName>.<ext>". Failed and unfinished jobs are skipped.
func Build(eventName string, jobs []core.JobInfo, now time.Time) (*core.Artifact, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	entries := 0
	for _, j := range jobs {
		if j.Status != core.JobStatusCompleted || j.Artifact == nil {
			continue
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     sanitize(j.Artifact.EntryName()),
			Method:   zip.Deflate,
			Modified: j.Artifact.CreatedAt,
		})
		if err != nil {
			return nil, fmt.Errorf("adding %s: %w", j.BundleID, err)
		}
		if _, err := w.Write(j.Artifact.Payload); err != nil {
			return nil, fmt.Errorf("writing %s: %w", j.BundleID, err)
		}
		entries++
	}
	if entries == 0 {
		return nil, ErrNothingToAggregate
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}

	return &core.Artifact{
		Payload:     buf.Bytes(),
		Filename:    Filename(eventName, now),
		ContentType: catalog.KindArchive.ContentType(),
		Kind:        catalog.KindArchive,
		BundleID:    BundleID,
		BundleName:  eventName,
		RecordCount: entries,
		CreatedAt:   now,
	}, nil
}

func sanitize(s string) string {
	return strings.TrimSpace(strings.NewReplacer("/", "-", "\\", "-").Replace(s))
}

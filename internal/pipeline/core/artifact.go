package core

import (
	"fmt"
	"time"

	"github.com/jmylchreest/eventexport/internal/export/catalog"
)

// Artifact is the immutable output of a completed job.
type Artifact struct {
	Payload     []byte
	Filename    string
	ContentType string
	Kind        catalog.OutputKind
	BundleID    string
	BundleName  string
	// RecordCount is the number of rows, files or report records encoded.
	RecordCount int
	Placeholder bool
	CreatedAt   time.Time
}

// NewArtifact creates an artifact for desc named after createdAt's date.
func NewArtifact(desc catalog.BundleDescriptor, payload []byte, contentType string, records int, createdAt time.Time) *Artifact {
	if contentType == "" {
		contentType = desc.Kind.ContentType()
	}
	return &Artifact{
		Payload:     payload,
		Filename:    ArtifactFilename(desc.ID, desc.Kind, createdAt),
		ContentType: contentType,
		Kind:        desc.Kind,
		BundleID:    desc.ID,
		BundleName:  desc.Name,
		RecordCount: records,
		CreatedAt:   createdAt,
	}
}

// ArtifactFilename returns "<bundleId>-<YYYY-MM-DD>.<ext>".
func ArtifactFilename(bundleID string, kind catalog.OutputKind, t time.Time) string {
	return fmt.Sprintf("%s-%s.%s", bundleID, t.Format("2006-01-02"), kind.Extension())
}

// EntryName returns "<bundleName>.<ext>", the name used inside aggregates.
func (a *Artifact) EntryName() string {
	return a.BundleName + "." + a.Kind.Extension()
}

// Size returns the payload size in bytes.
func (a *Artifact) Size() int64 {
	return int64(len(a.Payload))
}

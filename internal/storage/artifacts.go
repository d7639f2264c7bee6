package storage

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/jmylchreest/eventexport/internal/pipeline/core"
)

// ArtifactStore saves artifacts under per-target directories of a sandbox.
type ArtifactStore struct {
	sandbox *Sandbox
}

// NewArtifactStore creates an ArtifactStore over sandbox.
func NewArtifactStore(sandbox *Sandbox) *ArtifactStore {
	return &ArtifactStore{sandbox: sandbox}
}

// Sandbox returns the underlying sandbox.
func (a *ArtifactStore) Sandbox() *Sandbox {
	return a.sandbox
}

// Save writes art to "<dir>/<art.Filename>" and returns the relative path.
// An existing file of the same name is replaced.
func (a *ArtifactStore) Save(dir string, art *core.Artifact) (string, error) {
	if art == nil {
		return "", core.ErrNoArtifact
	}
	rel := path.Join(dir, art.Filename)
	if err := a.sandbox.AtomicWrite(rel, art.Payload); err != nil {
		return "", fmt.Errorf("saving %s: %w", art.Filename, err)
	}
	return rel, nil
}

// Prune keeps the newest keep files in dir and removes the rest. Files are
// ordered by name, which for dated artifact names is chronological. keep <= 0
// keeps everything.
func (a *ArtifactStore) Prune(dir string, keep int) ([]string, error) {
	if keep <= 0 {
		return nil, nil
	}
	entries, err := a.sandbox.List(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) <= keep {
		return nil, nil
	}
	slices.Sort(names)

	var removed []string
	for _, name := range names[:len(names)-keep] {
		rel := path.Join(dir, name)
		if err := a.sandbox.Remove(rel); err != nil {
			return removed, err
		}
		removed = append(removed, rel)
	}
	return removed, nil
}

package encode

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/jmylchreest/eventexport/internal/export/record"
	"github.com/jmylchreest/eventexport/internal/export/resolver"
	"github.com/jmylchreest/eventexport/internal/urlutil"
)

// ErrNoFiles is returned when an archive would contain no entries.
var ErrNoFiles = errors.New("no files found")

// Progress bounds reported while files are archived.
const (
	archiveProgressStart = 30
	archiveProgressEnd   = 95
)

// Downloader fetches the bytes behind a URL.
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, string, error)
}

// MediaRef is one remote file to archive.
type MediaRef struct {
	Category  string
	Name      string
	Reference string
}

// MediaRefs extracts file references from media records. Records without a
// reference are skipped.
func MediaRefs(records []record.Record) []MediaRef {
	refs := make([]MediaRef, 0, len(records))
	for _, r := range records {
		ref := r.String(record.MediaURL)
		if ref == "" {
			continue
		}
		refs = append(refs, MediaRef{
			Category:  r.String(record.MediaCategory),
			Name:      r.String(record.MediaName),
			Reference: ref,
		})
	}
	return refs
}

// FileHook observes the outcome of every archived file.
type FileHook func(ok bool)

// Archive downloads referenced media into a zip. Individual download
// failures are skipped.
type Archive struct {
	resolver   *resolver.Resolver
	downloader Downloader
	logger     *slog.Logger
	hook       FileHook
	now        func() time.Time
}

// NewArchive creates an archive encoder.
func NewArchive(res *resolver.Resolver, d Downloader) *Archive {
	return &Archive{resolver: res, downloader: d, logger: slog.Default(), now: time.Now}
}

// WithLogger sets the logger.
func (a *Archive) WithLogger(logger *slog.Logger) *Archive {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// WithFileHook sets a hook called once per attempted file.
func (a *Archive) WithFileHook(h FileHook) *Archive {
	a.hook = h
	return a
}

// Encode implements Encoder.
func (a *Archive) Encode(ctx context.Context, req Request) (Output, error) {
	refs := MediaRefs(req.Records)
	if len(refs) == 0 {
		return Output{}, ErrNoFiles
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	names := newNameSet()
	added := 0

	for i, ref := range refs {
		if err := ctx.Err(); err != nil {
			return Output{}, err
		}

		ok := a.add(ctx, zw, names, ref, i)
		if ok {
			added++
		}
		if a.hook != nil {
			a.hook(ok)
		}
		req.progress(archiveProgressStart + (i+1)*(archiveProgressEnd-archiveProgressStart)/len(refs))
	}

	if added == 0 {
		return Output{}, ErrNoFiles
	}
	if err := zw.Close(); err != nil {
		return Output{}, fmt.Errorf("closing archive: %w", err)
	}
	return Output{
		Payload:     buf.Bytes(),
		ContentType: req.Bundle.Kind.ContentType(),
		Items:       added,
	}, nil
}

func (a *Archive) add(ctx context.Context, zw *zip.Writer, names *nameSet, ref MediaRef, index int) bool {
	url := a.resolver.Resolve(ctx, ref.Reference)
	if !urlutil.IsRemoteURL(url) {
		a.logger.WarnContext(ctx, "skipping file with no remote location", slog.String("reference", ref.Reference))
		return false
	}
	if strings.HasPrefix(url, "//") {
		url = "https:" + url
	}
	data, _, err := a.downloader.Download(ctx, url)
	if err != nil {
		a.logger.WarnContext(ctx, "skipping file",
			slog.String("reference", ref.Reference),
			slog.String("error", err.Error()),
		)
		return false
	}

	name := entryName(ref, index)
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     names.claim(name),
		Method:   zip.Deflate,
		Modified: a.now(),
	})
	if err != nil {
		a.logger.WarnContext(ctx, "skipping file", slog.String("entry", name), slog.String("error", err.Error()))
		return false
	}
	if _, err := w.Write(data); err != nil {
		a.logger.WarnContext(ctx, "skipping file", slog.String("entry", name), slog.String("error", err.Error()))
		return false
	}
	return true
}

// entryName builds "<category>/<name>", deriving the name from the
// reference when the record carries none.
func entryName(ref MediaRef, index int) string {
	category := sanitize(ref.Category)
	if category == "" {
		category = "uncategorised"
	}
	name := sanitize(ref.Name)
	if name == "" {
		name = sanitize(urlutil.FileName(ref.Reference))
	}
	if name == "" {
		name = fmt.Sprintf("file-%d", index+1)
	}
	return category + "/" + name
}

func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '-'
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if s == "." || s == ".." {
		return ""
	}
	return s
}

// nameSet hands out unique entry names, suffixing " (2)", " (3)", ...
// before the extension on collision.
type nameSet struct {
	used map[string]bool
}

func newNameSet() *nameSet {
	return &nameSet{used: make(map[string]bool)}
}

func (n *nameSet) claim(name string) string {
	if !n.used[name] {
		n.used[name] = true
		return name
	}
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, i, ext)
		if !n.used[candidate] {
			n.used[candidate] = true
			return candidate
		}
	}
}

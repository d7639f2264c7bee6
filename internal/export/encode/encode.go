// Package encode turns fetched records into artifact payloads: delimited
// text, media archives and paginated reports.
package encode

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmylchreest/eventexport/internal/export/catalog"
	"github.com/jmylchreest/eventexport/internal/export/record"
)

// ErrNoEncoder is returned for an output kind without an encoder.
var ErrNoEncoder = errors.New("no encoder for output kind")

// ProgressFunc receives intermediate job progress while encoding.
type ProgressFunc func(percent int)

// Request is the input to one encode call.
type Request struct {
	Bundle  catalog.BundleDescriptor
	Records []record.Record
	// EventName titles reports.
	EventName string
	// Placeholder marks records as synthetic.
	Placeholder bool
	Progress    ProgressFunc
}

func (r Request) progress(p int) {
	if r.Progress != nil {
		r.Progress(p)
	}
}

// Output is an encoded payload.
type Output struct {
	Payload     []byte
	ContentType string
	// Items is the number of rows, files or report records encoded.
	Items int
}

// Encoder encodes the records of one bundle.
type Encoder interface {
	Encode(ctx context.Context, req Request) (Output, error)
}

// Set dispatches requests to the encoder for the bundle's output kind.
type Set struct {
	encoders map[catalog.OutputKind]Encoder
}

// NewSet creates a Set from the three encoders. Nil encoders are skipped.
func NewSet(tabular, archive, report Encoder) *Set {
	s := &Set{encoders: make(map[catalog.OutputKind]Encoder, 3)}
	for kind, e := range map[catalog.OutputKind]Encoder{
		catalog.KindTabular: tabular,
		catalog.KindArchive: archive,
		catalog.KindReport:  report,
	} {
		if e != nil {
			s.encoders[kind] = e
		}
	}
	return s
}

// Encode runs the encoder registered for req.Bundle.Kind.
func (s *Set) Encode(ctx context.Context, req Request) (Output, error) {
	e, ok := s.encoders[req.Bundle.Kind]
	if !ok {
		return Output{}, fmt.Errorf("%w: %s", ErrNoEncoder, req.Bundle.Kind)
	}
	return e.Encode(ctx, req)
}

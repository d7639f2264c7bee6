package encode

import (
	"context"

	"github.com/jmylchreest/eventexport/internal/export/normalize"
	"github.com/jmylchreest/eventexport/pkg/tabular"
)

// Tabular encodes records as quoted comma-separated rows under the bundle's
// declared headers. No records yields the header line alone.
type Tabular struct{}

// Encode implements Encoder.
func (Tabular) Encode(_ context.Context, req Request) (Output, error) {
	rows := normalize.Rows(req.Bundle, req.Records)
	return Output{
		Payload:     tabular.Encode(req.Bundle.Headers(), rows),
		ContentType: req.Bundle.Kind.ContentType(),
		Items:       len(rows),
	}, nil
}

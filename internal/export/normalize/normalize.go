// Package normalize maps heterogeneous source records onto a tabular
// bundle's declared columns. Every row has exactly one cell per column.
package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/jmylchreest/eventexport/internal/export/catalog"
	"github.com/jmylchreest/eventexport/internal/export/record"
	"github.com/jmylchreest/eventexport/internal/export/response"
)

// TimeLayout is the layout used for time values in tabular output.
const TimeLayout = "2006-01-02 15:04:05"

// Preparer reshapes a record before column extraction.
type Preparer func(record.Record) record.Record

// preparers holds per-bundle record reshaping. Bundles not listed are
// extracted as fetched.
var preparers = map[string]Preparer{
	catalog.ModuleResponses: response.Flatten,
}

// Rows normalizes records for the given bundle.
func Rows(desc catalog.BundleDescriptor, records []record.Record) [][]string {
	prepare := preparers[desc.ID]
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		if prepare != nil {
			r = prepare(r)
		}
		rows = append(rows, Row(desc.Columns, r))
	}
	return rows
}

// Row extracts one value per column. For each column the first candidate key
// present in r wins; a column with no match yields "".
func Row(columns []catalog.Column, r record.Record) []string {
	row := make([]string, len(columns))
	for i, c := range columns {
		if v, ok := r.First(c.Keys...); ok {
			row[i] = FormatValue(v)
		}
	}
	return row
}

// FormatValue renders a record value as a single cell.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case json.Number:
		return val.String()
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.UTC().Format(TimeLayout)
	case *time.Time:
		if val == nil {
			return ""
		}
		return FormatValue(*val)
	case fmt.Stringer:
		return val.String()
	case map[string]any, []any, record.Record, json.RawMessage:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return fmt.Sprint(val)
	}
}

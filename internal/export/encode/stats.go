package encode

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jmylchreest/eventexport/internal/export/record"
	"github.com/jmylchreest/eventexport/internal/export/response"
)

// unknownLabel groups records missing the counted field.
const unknownLabel = "Unknown"

// maxBars caps chart bars; smaller groups are folded into "Other".
const maxBars = 8

// maxDayBars caps bars of a chronological chart; runs of days are merged.
const maxDayBars = 14

// Count is one labelled tally.
type Count struct {
	Label string
	Value int
}

// timeLayouts are tried in order when a timestamp arrives as text.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, !t.IsZero()
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

// CountByDay tallies records per UTC calendar day of the first present
// timestamp key, in chronological order. Undated records come last.
func CountByDay(records []record.Record, keys ...string) []Count {
	days := map[string]int{}
	unknown := 0
	for _, r := range records {
		v, _ := r.First(keys...)
		t, ok := parseTime(v)
		if !ok {
			unknown++
			continue
		}
		days[t.UTC().Format("2006-01-02")]++
	}

	out := make([]Count, 0, len(days)+1)
	for day, n := range days {
		out = append(out, Count{Label: day, Value: n})
	}
	slices.SortFunc(out, func(a, b Count) int { return strings.Compare(a.Label, b.Label) })
	if unknown > 0 {
		out = append(out, Count{Label: unknownLabel, Value: unknown})
	}
	return out
}

// CountBy tallies records by the first present key, largest group first.
func CountBy(records []record.Record, keys ...string) []Count {
	return CountFunc(records, func(r record.Record) string {
		v, ok := r.First(keys...)
		if !ok {
			return ""
		}
		return strings.TrimSpace(fmt.Sprint(v))
	})
}

// CountFunc tallies records by label, largest group first, ties by label.
func CountFunc(records []record.Record, label func(record.Record) string) []Count {
	groups := map[string]int{}
	for _, r := range records {
		l := label(r)
		if l == "" {
			l = unknownLabel
		}
		groups[l]++
	}
	out := make([]Count, 0, len(groups))
	for l, n := range groups {
		out = append(out, Count{Label: l, Value: n})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return strings.Compare(a.Label, b.Label)
	})
	return out
}

// Fold keeps the first limit-1 counts and sums the rest into "Other" when
// there are more than limit.
func Fold(counts []Count, limit int) []Count {
	if len(counts) <= limit || limit < 2 {
		return counts
	}
	out := slices.Clone(counts[:limit-1])
	other := 0
	for _, c := range counts[limit-1:] {
		other += c.Value
	}
	return append(out, Count{Label: "Other", Value: other})
}

// Bucket merges a chronological series into at most limit counts by summing
// runs of consecutive entries. Each bucket keeps the label of its first
// entry. A trailing "Unknown" count stays on its own.
func Bucket(counts []Count, limit int) []Count {
	if len(counts) <= limit || limit < 2 {
		return counts
	}
	var unknown *Count
	if last := counts[len(counts)-1]; last.Label == unknownLabel {
		unknown = &last
		counts = counts[:len(counts)-1]
		limit--
	}

	size := (len(counts) + limit - 1) / limit
	out := make([]Count, 0, limit+1)
	for i := 0; i < len(counts); i += size {
		b := Count{Label: counts[i].Label}
		for _, c := range counts[i:min(i+size, len(counts))] {
			b.Value += c.Value
		}
		out = append(out, b)
	}
	if unknown != nil {
		out = append(out, *unknown)
	}
	return out
}

// AverageRating averages the rating of every response that decodes to a
// rating. It returns the average and the number of ratings.
func AverageRating(records []record.Record) (float64, int) {
	sum, n := 0.0, 0
	for _, r := range records {
		rating, ok := decodeResponse(r).(response.Rating)
		if !ok {
			continue
		}
		sum += rating.Value
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

func decodeResponse(r record.Record) response.Response {
	return response.Decode(r.String("module_type"), r["payload"])
}

func split(counts []Count) ([]string, []float64) {
	labels := make([]string, len(counts))
	values := make([]float64, len(counts))
	for i, c := range counts {
		labels[i] = c.Label
		values[i] = float64(c.Value)
	}
	return labels, values
}

package response

import (
	"encoding/json"
	"strings"

	"github.com/jmylchreest/eventexport/internal/export/record"
)

// Flattened field names written by Flatten.
const (
	FieldRating  = "rating"
	FieldComment = "comment"
	FieldAnswer  = "answer"
	FieldFileURL = "file_url"
)

// Flatten decodes r's payload (using its module_type) and returns a copy of
// r with the typed fields spread into flat columns.
func Flatten(r record.Record) record.Record {
	out := make(record.Record, len(r)+4)
	for k, v := range r {
		out[k] = v
	}
	payload, _ := r.First("payload", "response", "data")
	moduleType := r.String("module_type")
	if moduleType == "" {
		moduleType = r.String("moduleType")
	}

	switch resp := Decode(moduleType, payload).(type) {
	case Rating:
		out[FieldRating] = resp.Value
		out[FieldComment] = resp.Comment
	case Text:
		out[FieldAnswer] = resp.Text
	case Choice:
		answer := strings.Join(resp.Selected, "; ")
		if resp.Other != "" {
			if answer != "" {
				answer += "; "
			}
			answer += "Other: " + resp.Other
		}
		out[FieldAnswer] = answer
	case Media:
		out[FieldFileURL] = resp.URL
		out[FieldAnswer] = resp.FileName
	case Raw:
		if resp.Data != nil {
			out[FieldAnswer] = compact(resp.Data)
		}
	}
	return out
}

func compact(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

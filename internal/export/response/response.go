// Package response decodes free-form module response payloads into typed
// variants. Decoding is total: anything that does not fit its expected shape
// comes back as Raw.
package response

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jmylchreest/eventexport/internal/export/record"
)

// Response is one of Rating, Text, Choice, Media or Raw.
type Response interface {
	// Type returns the module type the variant represents, "raw" for Raw.
	Type() string
	isResponse()
}

// Rating is a numeric score with an optional comment.
type Rating struct {
	Value   float64
	Comment string
}

// Text is a free-text answer.
type Text struct {
	Text string
}

// Choice is a multiple-choice answer.
type Choice struct {
	Selected []string
	Other    string
}

// Media references an uploaded file.
type Media struct {
	URL      string
	FileName string
	MimeType string
}

// Raw carries a payload that matched no known shape.
type Raw struct {
	Data any
}

func (Rating) Type() string { return "rating" }
func (Text) Type() string   { return "text" }
func (Choice) Type() string { return "choice" }
func (Media) Type() string  { return "media" }
func (Raw) Type() string    { return "raw" }

func (Rating) isResponse() {}
func (Text) isResponse()   {}
func (Choice) isResponse() {}
func (Media) isResponse()  {}
func (Raw) isResponse()    {}

// Candidate keys per field, current convention first.
var (
	ratingKeys   = []string{"rating", "score", "value"}
	commentKeys  = []string{"comment", "feedback", "note"}
	textKeys     = []string{"text", "answer", "response"}
	selectedKeys = []string{"selected", "choices", "options"}
	otherKeys    = []string{"other", "other_text", "otherText"}
	urlKeys      = []string{"file_url", "fileUrl", "url"}
	fileNameKeys = []string{"file_name", "fileName", "name"}
	mimeKeys     = []string{"mime_type", "mimeType", "content_type"}
)

// Decode converts payload into a typed response. moduleType selects the
// variant; when it is empty or unknown the variant is inferred from the keys
// present. payload may be a JSON string, JSON bytes or a decoded object.
func Decode(moduleType string, payload any) Response {
	data := unwrap(payload)
	m, isMap := asRecord(data)

	switch strings.ToLower(moduleType) {
	case "rating":
		if isMap {
			return decodeRating(m, data)
		}
		if v, ok := toFloat(data); ok {
			return Rating{Value: v}
		}
	case "text":
		if isMap {
			return decodeText(m, data)
		}
		if s, ok := data.(string); ok {
			return Text{Text: s}
		}
	case "choice":
		if isMap {
			return decodeChoice(m, data)
		}
		if sel, ok := toStrings(data); ok {
			return Choice{Selected: sel}
		}
	case "media":
		if isMap {
			return decodeMedia(m, data)
		}
	default:
		if isMap {
			return infer(m, data)
		}
	}
	return Raw{Data: data}
}

func infer(m record.Record, data any) Response {
	switch {
	case has(m, ratingKeys[:2]...):
		return decodeRating(m, data)
	case has(m, urlKeys[:2]...):
		return decodeMedia(m, data)
	case has(m, selectedKeys[:2]...):
		return decodeChoice(m, data)
	case has(m, textKeys[:2]...):
		return decodeText(m, data)
	}
	return Raw{Data: data}
}

func decodeRating(m record.Record, data any) Response {
	v, ok := m.First(ratingKeys...)
	if !ok {
		return Raw{Data: data}
	}
	f, ok := toFloat(v)
	if !ok {
		return Raw{Data: data}
	}
	return Rating{Value: f, Comment: firstString(m, commentKeys)}
}

func decodeText(m record.Record, data any) Response {
	v, ok := m.First(textKeys...)
	if !ok {
		return Raw{Data: data}
	}
	s, ok := v.(string)
	if !ok {
		return Raw{Data: data}
	}
	return Text{Text: s}
}

func decodeChoice(m record.Record, data any) Response {
	v, ok := m.First(selectedKeys...)
	if !ok {
		return Raw{Data: data}
	}
	sel, ok := toStrings(v)
	if !ok {
		return Raw{Data: data}
	}
	return Choice{Selected: sel, Other: firstString(m, otherKeys)}
}

func decodeMedia(m record.Record, data any) Response {
	url := firstString(m, urlKeys)
	if url == "" {
		return Raw{Data: data}
	}
	return Media{
		URL:      url,
		FileName: firstString(m, fileNameKeys),
		MimeType: firstString(m, mimeKeys),
	}
}

// unwrap decodes JSON text; non-JSON strings are returned as-is.
func unwrap(payload any) any {
	var raw []byte
	switch p := payload.(type) {
	case string:
		raw = []byte(p)
	case []byte:
		raw = p
	case json.RawMessage:
		raw = p
	default:
		return payload
	}

	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil
	}
	var out any
	if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
		return string(raw)
	}
	return out
}

func asRecord(v any) (record.Record, bool) {
	switch m := v.(type) {
	case map[string]any:
		return record.Record(m), true
	case record.Record:
		return m, true
	}
	return nil, false
}

func has(m record.Record, keys ...string) bool {
	_, ok := m.First(keys...)
	return ok
}

func firstString(m record.Record, keys []string) string {
	for _, k := range keys {
		if s := m.String(k); s != "" {
			return s
		}
	}
	return ""
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func toStrings(v any) ([]string, bool) {
	switch s := v.(type) {
	case string:
		return []string{s}, true
	case []string:
		return s, true
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	}
	return nil, false
}

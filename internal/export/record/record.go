// Package record defines the loosely-typed rows handed from the backing store
// to the encoders.
package record

import (
	"encoding/json"
	"strings"
)

// SectionKey tags records of a multi-source fetch with the section they feed.
const SectionKey = "_section"

// Fields of media records consumed by the archive encoder.
const (
	MediaCategory = "category"
	MediaName     = "file_name"
	MediaURL      = "file_url"
)

// Record maps field names to values. Shape varies per bundle and within a
// bundle; nested objects are map[string]any.
type Record map[string]any

// Lookup resolves key against the record. A dotted key descends into nested
// maps ("profile.dietaryRequirements"); a literal key containing dots is tried
// first. Nil values are reported as absent.
func (r Record) Lookup(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	if v, ok := r[key]; ok {
		return v, v != nil
	}
	if !strings.Contains(key, ".") {
		return nil, false
	}

	var cur any = map[string]any(r)
	for _, part := range strings.Split(key, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// First returns the value of the first candidate key present in the record.
func (r Record) First(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r.Lookup(k); ok {
			return v, true
		}
	}
	return nil, false
}

// String returns the value of key when it is a string, "" otherwise.
func (r Record) String(key string) string {
	v, ok := r.Lookup(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Section returns the record's section tag.
func (r Record) Section() string {
	return r.String(SectionKey)
}

// WithSection returns a shallow copy of r tagged with section.
func (r Record) WithSection(section string) Record {
	out := make(Record, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	out[SectionKey] = section
	return out
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Record:
		return m, true
	case json.RawMessage:
		var out map[string]any
		if err := json.Unmarshal(m, &out); err != nil {
			return nil, false
		}
		return out, true
	default:
		return nil, false
	}
}

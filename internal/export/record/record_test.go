package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecord_Lookup(t *testing.T) {
	r := Record{
		"first_name": "Ada",
		"nickname":   nil,
		"a.b":        "literal",
		"profile": map[string]any{
			"dietaryRequirements": "Vegetarian",
			"address":             map[string]any{"city": "London"},
		},
	}

	tests := []struct {
		key    string
		want   any
		wantOK bool
	}{
		{"first_name", "Ada", true},
		{"nickname", nil, false},
		{"missing", nil, false},
		{"a.b", "literal", true},
		{"profile.dietaryRequirements", "Vegetarian", true},
		{"profile.address.city", "London", true},
		{"profile.address.zip", nil, false},
		{"first_name.length", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := r.Lookup(tt.key)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecord_First(t *testing.T) {
	r := Record{"firstName": "Grace"}

	v, ok := r.First("first_name", "firstName")
	assert.True(t, ok)
	assert.Equal(t, "Grace", v)

	_, ok = r.First("a", "b")
	assert.False(t, ok)

	var empty Record
	_, ok = empty.Lookup("x")
	assert.False(t, ok)
}

func TestRecord_WithSection(t *testing.T) {
	r := Record{"id": "1"}
	tagged := r.WithSection("guests")

	assert.Equal(t, "guests", tagged.Section())
	assert.Empty(t, r.Section(), "original must not be mutated")
	assert.Equal(t, "1", tagged.String("id"))
}

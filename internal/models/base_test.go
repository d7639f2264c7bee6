package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestULID_ParseRoundtrip(t *testing.T) {
	id := NewULID()
	require.False(t, id.IsZero())
	assert.NotEqual(t, id, NewULID())

	parsed, err := ParseULID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseULID("not-a-valid-ulid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ULID")
}

func TestULID_ValueAndScan(t *testing.T) {
	var zero ULID
	val, err := zero.Value()
	require.NoError(t, err)
	assert.Nil(t, val)

	id := NewULID()
	val, err = id.Value()
	require.NoError(t, err)
	assert.Equal(t, id.String(), val)

	tests := []struct {
		name    string
		input   any
		want    ULID
		wantErr bool
	}{
		{"nil", nil, ULID{}, false},
		{"string", id.String(), id, false},
		{"bytes", []byte(id.String()), id, false},
		{"empty string", "", ULID{}, false},
		{"garbage", "bad-ulid", ULID{}, true},
		{"int", 42, ULID{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u ULID
			err := u.Scan(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, u)
		})
	}
}

func TestULID_JSON(t *testing.T) {
	type wrapper struct {
		ID ULID `json:"id"`
	}

	original := wrapper{ID: NewULID()}
	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded wrapper
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original.ID, decoded.ID)

	data, err = json.Marshal(wrapper{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":null}`, string(data))

	var bad ULID
	assert.Error(t, json.Unmarshal([]byte("12345"), &bad))
}

func TestBaseModel_BeforeCreate(t *testing.T) {
	m := &BaseModel{}
	require.NoError(t, m.BeforeCreate(nil))
	assert.False(t, m.ID.IsZero())

	existing := NewULID()
	m = &BaseModel{ID: existing}
	require.NoError(t, m.BeforeCreate(nil))
	assert.Equal(t, existing, m.ID)
}

func TestULID_MonotonicWithinMillisecond(t *testing.T) {
	prev := NewULID()
	for range 100 {
		next := NewULID()
		assert.Less(t, prev.String(), next.String())
		prev = next
	}
}

func TestULID_Text(t *testing.T) {
	id := NewULID()
	text, err := id.MarshalText()
	require.NoError(t, err)

	var decoded ULID
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, id, decoded)
	assert.WithinDuration(t, time.Now(), id.Time(), time.Minute)

	text, err = ULID{}.MarshalText()
	require.NoError(t, err)
	assert.Empty(t, text)
}

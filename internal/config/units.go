package config

import (
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/jmylchreest/eventexport/pkg/bytesize"
	"github.com/jmylchreest/eventexport/pkg/duration"
)

// ByteSize is a byte count that accepts human-readable values such as
// "100MB" in files and environment variables. Plain numbers are bytes.
type ByteSize int64

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *ByteSize) UnmarshalText(text []byte) error {
	size, err := bytesize.Parse(string(text))
	if err != nil {
		return err
	}
	*b = ByteSize(size)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (b ByteSize) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// Bytes returns the size in bytes.
func (b ByteSize) Bytes() int64 {
	return int64(b)
}

func (b ByteSize) String() string {
	return bytesize.Format(bytesize.Size(b))
}

var durationType = reflect.TypeOf(time.Duration(0))

// stringToDurationHook decodes strings into time.Duration with day and week
// units, so "7d" works wherever "168h" does.
func stringToDurationHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != durationType {
		return data, nil
	}
	return duration.Parse(data.(string))
}

// decodeHook is used for every viper unmarshal.
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		stringToDurationHook,
		mapstructure.StringToSliceHookFunc(","),
	)
}

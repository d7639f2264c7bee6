// Package bytesize parses and formats byte sizes such as "100MB" or
// "1.5 GiB". Units are binary: 1KB = 1024 bytes. A bare number is bytes.
package bytesize

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Size is a byte count.
type Size int64

const (
	B  Size = 1
	KB      = 1024 * B
	MB      = 1024 * KB
	GB      = 1024 * MB
	TB      = 1024 * GB
)

var units = map[string]Size{
	"": B, "b": B, "byte": B, "bytes": B,
	"k": KB, "kb": KB, "kib": KB,
	"m": MB, "mb": MB, "mib": MB,
	"g": GB, "gb": GB, "gib": GB,
	"t": TB, "tb": TB, "tib": TB,
}

// Parse reads a size with an optional unit suffix.
func Parse(s string) (Size, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("bytesize: empty string")
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})
	num, unit := s, ""
	if split >= 0 {
		num, unit = s[:split], strings.ToLower(strings.TrimSpace(s[split:]))
	}

	value, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("bytesize: invalid number in %q", s)
	}
	mult, ok := units[unit]
	if !ok {
		return 0, fmt.Errorf("bytesize: unknown unit %q", unit)
	}
	return Size(value * float64(mult)), nil
}

// Format renders s with the largest unit that keeps the value >= 1,
// dropping trailing zeros: 1536 => "1.5KB", 1048576 => "1MB".
func Format(s Size) string {
	if s < 0 {
		return "-" + Format(-s)
	}
	for _, u := range []struct {
		size Size
		name string
	}{{TB, "TB"}, {GB, "GB"}, {MB, "MB"}, {KB, "KB"}} {
		if s >= u.size {
			v := strconv.FormatFloat(float64(s)/float64(u.size), 'f', 2, 64)
			v = strings.TrimRight(strings.TrimRight(v, "0"), ".")
			return v + u.name
		}
	}
	return strconv.FormatInt(int64(s), 10) + "B"
}

// String implements fmt.Stringer.
func (s Size) String() string {
	return Format(s)
}

// Package duration parses durations with day and week units on top of
// time.ParseDuration, e.g. "7d", "2w3d12h", "1 day".
package duration

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// Day is 24 hours.
	Day = 24 * time.Hour
	// Week is 7 days.
	Week = 7 * Day
)

var longUnits = map[string]time.Duration{
	"d": Day, "day": Day, "days": Day,
	"w": Week, "week": Week, "weeks": Week,
}

var shortUnits = map[string]string{
	"hour": "h", "hours": "h", "hr": "h",
	"minute": "m", "minutes": "m", "min": "m",
	"second": "s", "seconds": "s", "sec": "s",
}

// Parse reads a duration. Standard Go units are accepted alongside d/day
// and w/week; whitespace between components is ignored.
func Parse(s string) (time.Duration, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("duration: empty string")
	}
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimSpace(strings.TrimPrefix(s, "-"))

	var total time.Duration
	var rest strings.Builder
	for s != "" {
		i := 0
		for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
			i++
		}
		if i == 0 {
			return 0, fmt.Errorf("duration: invalid %q", s)
		}
		num := s[:i]
		s = strings.TrimLeft(s[i:], " ")

		j := 0
		for j < len(s) && (s[j] >= 'a' && s[j] <= 'z' || s[j] == 0xc2 || s[j] == 0xb5) {
			j++
		}
		unit := s[:j]
		s = strings.TrimLeft(s[j:], " ")

		if mult, ok := longUnits[unit]; ok {
			n, err := strconv.ParseFloat(num, 64)
			if err != nil {
				return 0, fmt.Errorf("duration: invalid number %q", num)
			}
			total += time.Duration(n * float64(mult))
			continue
		}
		if short, ok := shortUnits[unit]; ok {
			unit = short
		}
		rest.WriteString(num + unit)
	}

	if rest.Len() > 0 {
		d, err := time.ParseDuration(rest.String())
		if err != nil {
			return 0, fmt.Errorf("duration: %w", err)
		}
		total += d
	}
	if negative {
		total = -total
	}
	return total, nil
}

// Format renders d with week and day components split out, omitting zero
// parts: 36h => "1d12h", 90m => "1h30m".
func Format(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	if d < 0 {
		return "-" + Format(-d)
	}

	var b strings.Builder
	for _, u := range []struct {
		size time.Duration
		name string
	}{{Week, "w"}, {Day, "d"}, {time.Hour, "h"}, {time.Minute, "m"}, {time.Second, "s"}} {
		if n := d / u.size; n > 0 {
			fmt.Fprintf(&b, "%d%s", n, u.name)
			d -= n * u.size
		}
	}
	if d > 0 {
		b.WriteString(d.String())
	}
	return b.String()
}

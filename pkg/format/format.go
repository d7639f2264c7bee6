// Package format provides human-readable formatting for report statistics
// and CLI output.
package format

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// Bytes formats a byte count using binary units.
// Example: Bytes(1536) => "1.5 KB"
func Bytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 4; m /= unit {
		div *= unit
		exp++
	}
	sizes := []string{"KB", "MB", "GB", "TB", "PB"}
	return fmt.Sprintf("%.1f %s", float64(n)/float64(div), sizes[exp])
}

// Number formats an integer with thousand separators.
// Example: Number(1234567) => "1,234,567"
func Number(n int64) string {
	return printer.Sprintf("%d", n)
}

// Decimal formats f with thousand separators and exactly places fraction
// digits. Example: Decimal(1234.5, 2) => "1,234.50"
func Decimal(f float64, places int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "-"
	}
	return printer.Sprintf("%v", number.Decimal(f, number.Scale(places)))
}

// Percentage formats part/total as a percentage with one decimal place.
// A zero total yields "0.0%".
func Percentage(part, total int64) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)/float64(total)*100)
}

// Rating formats an average rating out of max, or "n/a" when there were no
// ratings. Example: Rating(4.5, 5, 2) => "4.50 / 5 (2 ratings)"
func Rating(avg float64, max int, count int) string {
	if count == 0 {
		return "n/a"
	}
	noun := "ratings"
	if count == 1 {
		noun = "rating"
	}
	return fmt.Sprintf("%s / %d (%s %s)", Decimal(avg, 2), max, Number(int64(count)), noun)
}

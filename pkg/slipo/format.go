package slipo

import (
	"fmt"
	"math"
	"time"
)

// Timestamp converts a raw millisecond epoch value to a local calendar
// time. A nil or NaN value is absent and yields nil; zero is the epoch
// instant, not absent.
func Timestamp(ms *float64) *time.Time {
	if ms == nil || math.IsNaN(*ms) {
		return nil
	}
	t := time.UnixMilli(int64(*ms))
	return &t
}

// sizeUnits is the ladder FormatSize walks while dividing by 1024.
var sizeUnits = []string{"", "k", "M", "G", "T", "P", "E"}

// FormatSize renders a byte count as a human-readable size string.
//
// The unit ladder, the one-decimal precision and the width of the two
// format branches are a golden-output contract with prior tooling and
// must not change: values below 1024 ZB print as "%3.1f <unit>B", the
// zetta fallback prints as "%.1fZB".
func FormatSize(num float64) string {
	for _, unit := range sizeUnits {
		if math.Abs(num) < 1024.0 {
			return fmt.Sprintf("%3.1f %s%s", num, unit, "B")
		}
		num /= 1024.0
	}
	return fmt.Sprintf("%.1f%s%s", num, "Z", "B")
}

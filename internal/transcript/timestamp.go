package transcript

import (
	"fmt"
	"math"
)

// Millisecond separators for the two subtitle dialects.
const (
	SRTSeparator = ","
	VTTSeparator = "."
)

// FormatTimestamp renders seconds as HH:MM:SS<sep>mmm. Hours are not capped
// at 24. The value is rounded to the nearest millisecond before splitting so
// 59.9996 becomes 00:01:00.000 rather than 00:00:60.000. Negative input
// clamps to zero.
func FormatTimestamp(seconds float64, sep string) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	total := int64(math.Round(seconds * 1000))
	hours := total / 3_600_000
	minutes := (total % 3_600_000) / 60_000
	secs := (total % 60_000) / 1000
	millis := total % 1000
	return fmt.Sprintf("%02d:%02d:%02d%s%03d", hours, minutes, secs, sep, millis)
}

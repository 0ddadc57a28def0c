// Package display formats sizes, rates and durations for humans.
package display

import (
	"fmt"
	"strconv"
	"time"
)

// FormatBytes returns a human-readable size (B, KiB, MiB, GiB, TiB, PiB).
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	suffixes := []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	if exp >= len(suffixes) {
		exp = len(suffixes) - 1
		div = 1
		for i := 0; i <= exp; i++ {
			div *= unit
		}
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), suffixes[exp])
}

// FormatElapsed returns d as "<seconds> seconds" with millisecond
// precision, e.g. "1.234 seconds". Negative durations print as zero.
func FormatElapsed(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	return fmt.Sprintf("%.3f seconds", float64(ms)/1000)
}

// FormatFPS returns a frame rate with up to three decimals, e.g. "29.97 fps".
func FormatFPS(fps float64) string {
	return strconv.FormatFloat(float64(int64(fps*1000+0.5))/1000, 'f', -1, 64) + " fps"
}

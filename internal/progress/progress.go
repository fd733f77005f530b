// Package progress converts raw byte counters into the speed, size, and
// ETA figures the launcher displays. All functions are pure except the
// moving-average helpers, which mutate the caller-owned history window
// in place.
package progress

import (
	"fmt"
	"math"
)

// MaxTimeRemaining caps the reported ETA at 30 days. A near-zero smoothed
// speed would otherwise produce absurd figures.
const MaxTimeRemaining = 30 * 24 * 60 * 60

// CalculatingLabel is rendered while no usable time estimate exists.
const CalculatingLabel = "Calculating..."

var (
	sizeUnits  = []string{"B", "KB", "MB", "GB", "TB"}
	speedUnits = []string{"B/s", "KB/s", "MB/s", "GB/s"}
)

// FormatSize renders a byte count in the largest base-1024 unit that fits,
// with two decimal places. Negative or non-finite input renders as "0 B".
func FormatSize(bytes float64) string {
	if !isFinite(bytes) || bytes < 0 {
		return "0 B"
	}
	size := bytes
	unit := 0
	for size >= 1024 && unit < len(sizeUnits)-1 {
		size /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f %s", size, sizeUnits[unit])
}

// FormatSpeed renders a transfer rate the same way FormatSize renders sizes.
// Negative or non-finite input renders as "0 B/s".
func FormatSpeed(bytesPerSecond float64) string {
	if !isFinite(bytesPerSecond) || bytesPerSecond < 0 {
		return "0 B/s"
	}
	speed := bytesPerSecond
	unit := 0
	for speed >= 1024 && unit < len(speedUnits)-1 {
		speed /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f %s", speed, speedUnits[unit])
}

// FormatTime renders a duration in seconds as "Hh Mm Ss", dropping leading
// zero units. Fractional seconds are truncated. Negative or non-finite input
// renders as the calculating placeholder.
func FormatTime(seconds float64) string {
	if !isFinite(seconds) || seconds < 0 {
		return CalculatingLabel
	}
	total := int64(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

// AverageSpeed appends the current sample to the history window, evicts the
// oldest entries once the window exceeds maxLen, and returns the arithmetic
// mean of what remains. The history slice is mutated through the pointer; the
// caller owns its lifetime.
func AverageSpeed(currentSpeed float64, history *[]float64, maxLen int) float64 {
	window := append(*history, currentSpeed)
	if maxLen > 0 && len(window) > maxLen {
		copy(window, window[len(window)-maxLen:])
		window = window[:maxLen]
	}
	*history = window

	var sum float64
	for _, v := range window {
		sum += v
	}
	return sum / float64(len(window))
}

// GlobalTimeRemaining estimates the seconds left for the whole cycle from the
// smoothed speed. It returns 0 when the speed is non-finite or non-positive,
// when either byte counter is non-finite, or when the download is already
// complete, and never exceeds MaxTimeRemaining.
func GlobalTimeRemaining(downloaded, total, speed float64, history *[]float64, maxLen int) float64 {
	if !isFinite(speed) || speed <= 0 {
		return 0
	}
	if !isFinite(downloaded) || !isFinite(total) {
		return 0
	}
	if downloaded >= total {
		return 0
	}
	avg := AverageSpeed(speed, history, maxLen)
	if avg <= 0 {
		return 0
	}
	remaining := (total - downloaded) / avg
	return math.Min(remaining, MaxTimeRemaining)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Package stats contains accuracy calculations and reporting.
package stats

import (
	"fmt"
	"math"
)

// SentinelAccuracy marks a word with no recorded attempts. It is greater than
// any real accuracy so unattempted words sort after fully known words under
// ascending weak ordering and fall outside every "accuracy < 100" filter.
const SentinelAccuracy = 101.0

// NoAttemptsText is the display string for an unattempted word.
const NoAttemptsText = "N/A"

// Accuracy maps counters to an accuracy percentage and its display text.
// The returned value is unrounded; rounding happens only in the text.
func Accuracy(correct, incorrect int) (float64, string) {
	total := correct + incorrect
	if total == 0 {
		return SentinelAccuracy, NoAttemptsText
	}
	accuracy := 100 * float64(correct) / float64(total)
	return accuracy, fmt.Sprintf("%d%% (%d/%d)", int(math.Round(accuracy)), correct, total)
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

package indicator

import (
	"math"

	"github.com/nepselab/floorwatch/internal/core"
)

// RollingMean computes the trailing mean over a window of up to
// `window` values ending at each position, ignoring nulls. A position
// with no valid value in its window yields null.
func RollingMean(values []float64, window int) []float64 {
	n := len(values)
	if window < 1 {
		window = 1
	}
	result := make([]float64, n)

	var sum float64
	var count int
	for i := 0; i < n; i++ {
		if !core.IsNull(values[i]) {
			sum += values[i]
			count++
		}
		if j := i - window; j >= 0 && !core.IsNull(values[j]) {
			sum -= values[j]
			count--
		}
		if count > 0 {
			result[i] = sum / float64(count)
		} else {
			result[i] = core.Null()
		}
	}
	return result
}

// RollingStd computes the trailing sample standard deviation over a
// window of up to `window` values ending at each position, ignoring
// nulls. Positions with fewer than two valid values yield null.
//
// Recomputed per window rather than via running sums of squares; the
// window is small and this avoids catastrophic cancellation.
func RollingStd(values []float64, window int) []float64 {
	n := len(values)
	if window < 1 {
		window = 1
	}
	result := make([]float64, n)

	for i := 0; i < n; i++ {
		start := i - window + 1
		if start < 0 {
			start = 0
		}

		var sum float64
		var count int
		for j := start; j <= i; j++ {
			if !core.IsNull(values[j]) {
				sum += values[j]
				count++
			}
		}
		if count < 2 {
			result[i] = core.Null()
			continue
		}

		mean := sum / float64(count)
		var ss float64
		for j := start; j <= i; j++ {
			if !core.IsNull(values[j]) {
				d := values[j] - mean
				ss += d * d
			}
		}
		result[i] = math.Sqrt(ss / float64(count-1))
	}
	return result
}

// Diff returns the first difference of values: result[0] is null and
// result[i] = values[i] - values[i-1]. A null on either side of a step
// makes that step null.
func Diff(values []float64) []float64 {
	result := make([]float64, len(values))
	for i := range values {
		if i == 0 || core.IsNull(values[i]) || core.IsNull(values[i-1]) {
			result[i] = core.Null()
			continue
		}
		result[i] = values[i] - values[i-1]
	}
	return result
}

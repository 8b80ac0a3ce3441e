// Package analysis implements the aggregation stages of the
// surveillance pipeline: broker day flows, daily symbol statistics with
// market-phase classification, weighted price series, and the risk
// scoring that merges detector flags into signals.
package analysis

import "github.com/nepselab/floorwatch/internal/core"

// nanSum sums values, skipping nulls. An all-null input sums to zero.
func nanSum(values []float64) float64 {
	var sum float64
	for _, v := range values {
		if !core.IsNull(v) {
			sum += v
		}
	}
	return sum
}

// nanMean averages values, skipping nulls; null when nothing is valid.
func nanMean(values []float64) float64 {
	var sum float64
	var count int
	for _, v := range values {
		if !core.IsNull(v) {
			sum += v
			count++
		}
	}
	if count == 0 {
		return core.Null()
	}
	return sum / float64(count)
}

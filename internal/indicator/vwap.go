package indicator

import "github.com/nepselab/floorwatch/internal/core"

// RollingWeighted computes the trailing volume-weighted average rate at
// every position. The window holds up to `window` trades ending at i
// and shrinks at the start of the series instead of padding.
// Maintains sliding sums, O(n) total.
//
// Null rates or quantities contribute nothing; a window with zero total
// weight yields null.
func RollingWeighted(rates, qtys []float64, window int) []float64 {
	n := len(rates)
	if window < 1 {
		window = 1
	}
	result := make([]float64, n)

	var sumRQ, sumQ float64
	for i := 0; i < n; i++ {
		rq, q := contribution(rates[i], qtys[i])
		sumRQ += rq
		sumQ += q

		if j := i - window; j >= 0 {
			rq, q := contribution(rates[j], qtys[j])
			sumRQ -= rq
			sumQ -= q
		}

		if sumQ > 0 {
			result[i] = sumRQ / sumQ
		} else {
			result[i] = core.Null()
		}
	}
	return result
}

// ExpandingWeighted computes the volume-weighted average rate over all
// trades from the start of the series through each position. Running
// sums keep it O(n); recomputing the mean per step would be O(n²).
func ExpandingWeighted(rates, qtys []float64) []float64 {
	n := len(rates)
	result := make([]float64, n)

	var sumRQ, sumQ float64
	for i := 0; i < n; i++ {
		rq, q := contribution(rates[i], qtys[i])
		sumRQ += rq
		sumQ += q

		if sumQ > 0 {
			result[i] = sumRQ / sumQ
		} else {
			result[i] = core.Null()
		}
	}
	return result
}

// contribution returns the weighted-sum and weight contributions of one
// trade, zero when either field is null.
func contribution(rate, qty float64) (float64, float64) {
	if core.IsNull(rate) || core.IsNull(qty) {
		return 0, 0
	}
	return rate * qty, qty
}

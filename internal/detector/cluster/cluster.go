// Package cluster flags buyers whose trades fall into dense regions of
// the (quantity, rate) plane; repeated same-shaped trades are a
// coordination tell. Clustering runs per symbol over its whole date
// range; the resulting flag is symbol-wide, deliberately broader than
// the day-scoped circular flag.
package cluster

import (
	"math"

	"github.com/nepselab/floorwatch/internal/core"
)

// Config tunes the density clustering.
type Config struct {
	// Eps is the neighborhood radius in standardized feature space.
	Eps float64
	// MinSamples is the minimum neighborhood size (the point itself
	// included) for a point to be a core point.
	MinSamples int
}

// Noise is the label of points that belong to no cluster.
const Noise = -1

// point is one trade's feature vector.
type point [2]float64

// FlagBuyers clusters one symbol's trades and returns the buyers owning
// at least one clustered (non-noise) trade. Trades with a null quantity
// or rate carry no position in feature space and are left out. Fewer
// than two usable trades cannot form a cluster, so the symbol is
// skipped.
func FlagBuyers(records []core.TradeRecord, cfg Config) map[int]bool {
	var points []point
	var buyers []int
	for _, r := range records {
		if core.IsNull(r.Quantity) || core.IsNull(r.Rate) {
			continue
		}
		points = append(points, point{r.Quantity, r.Rate})
		buyers = append(buyers, r.Buyer)
	}
	if len(points) < 2 {
		return nil
	}

	labels := dbscan(standardize(points), cfg.Eps, cfg.MinSamples)

	flagged := make(map[int]bool)
	for i, label := range labels {
		if label != Noise {
			flagged[buyers[i]] = true
		}
	}
	if len(flagged) == 0 {
		return nil
	}
	return flagged
}

// standardize z-scores each feature against the symbol's own trade
// population. A zero-variance feature is already as standardized as it
// gets and maps to 0 instead of dividing by zero.
func standardize(points []point) []point {
	n := float64(len(points))
	var mean point
	for _, p := range points {
		mean[0] += p[0]
		mean[1] += p[1]
	}
	mean[0] /= n
	mean[1] /= n

	var varsum point
	for _, p := range points {
		d0 := p[0] - mean[0]
		d1 := p[1] - mean[1]
		varsum[0] += d0 * d0
		varsum[1] += d1 * d1
	}
	// Population variance, matching the usual scaler convention.
	std := point{math.Sqrt(varsum[0] / n), math.Sqrt(varsum[1] / n)}

	scaled := make([]point, len(points))
	for i, p := range points {
		for f := 0; f < 2; f++ {
			if std[f] > 0 {
				scaled[i][f] = (p[f] - mean[f]) / std[f]
			} else {
				scaled[i][f] = 0
			}
		}
	}
	return scaled
}

// dbscan assigns a cluster label to every point; Noise marks points in
// no dense neighborhood. Neighbor queries are linear scans, O(n²)
// total, which is fine at per-symbol trade counts.
func dbscan(points []point, eps float64, minSamples int) []int {
	n := len(points)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = Noise
	}
	visited := make([]bool, n)

	cluster := 0
	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		visited[i] = true

		neighbors := regionQuery(points, i, eps)
		if len(neighbors) < minSamples {
			continue // stays noise unless adopted by a later cluster
		}

		labels[i] = cluster
		// Expand: the queue grows as new core points are absorbed.
		for qi := 0; qi < len(neighbors); qi++ {
			j := neighbors[qi]
			if !visited[j] {
				visited[j] = true
				jn := regionQuery(points, j, eps)
				if len(jn) >= minSamples {
					neighbors = append(neighbors, jn...)
				}
			}
			if labels[j] == Noise {
				labels[j] = cluster
			}
		}
		cluster++
	}
	return labels
}

func regionQuery(points []point, i int, eps float64) []int {
	var neighbors []int
	for j := range points {
		d0 := points[i][0] - points[j][0]
		d1 := points[i][1] - points[j][1]
		if math.Sqrt(d0*d0+d1*d1) <= eps {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}

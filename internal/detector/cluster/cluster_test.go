package cluster

import (
	"testing"
	"time"

	"github.com/nepselab/floorwatch/internal/core"
)

func trade(buyer int, qty, rate float64) core.TradeRecord {
	return core.TradeRecord{
		Symbol:   "ABC",
		Date:     core.Day(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
		Buyer:    buyer,
		Seller:   99,
		Quantity: qty,
		Rate:     rate,
		Amount:   qty * rate,
	}
}

func defaultConfig() Config {
	return Config{Eps: 0.5, MinSamples: 2}
}

func TestFlagBuyers_DensePairFlags(t *testing.T) {
	// Two near-identical trades plus one far outlier. The pair
	// clusters; the outlier is noise.
	records := []core.TradeRecord{
		trade(1, 100, 10),
		trade(2, 101, 10),
		trade(3, 100000, 500),
	}
	flagged := FlagBuyers(records, defaultConfig())

	if !flagged[1] || !flagged[2] {
		t.Errorf("coordinated buyers should be flagged, got %v", flagged)
	}
	if flagged[3] {
		t.Error("outlier buyer must stay noise")
	}
}

func TestFlagBuyers_FewerThanTwoTradesSkipped(t *testing.T) {
	records := []core.TradeRecord{trade(1, 100, 10)}
	if flagged := FlagBuyers(records, defaultConfig()); flagged != nil {
		t.Errorf("single-trade symbol should be skipped, got %v", flagged)
	}
}

func TestFlagBuyers_ZeroVarianceFeatureIsSafe(t *testing.T) {
	// All rates identical: one feature has zero variance. Must not
	// produce NaN distances; the identical trades cluster together.
	records := []core.TradeRecord{
		trade(1, 100, 10),
		trade(2, 100, 10),
		trade(3, 100, 10),
	}
	flagged := FlagBuyers(records, defaultConfig())
	for _, b := range []int{1, 2, 3} {
		if !flagged[b] {
			t.Errorf("buyer %d should be flagged, got %v", b, flagged)
		}
	}
}

func TestFlagBuyers_NullFeaturesExcluded(t *testing.T) {
	records := []core.TradeRecord{
		trade(1, 100, 10),
		trade(2, 100, 10),
		{Symbol: "ABC", Buyer: 3, Seller: 99, Quantity: core.Null(), Rate: 10},
	}
	flagged := FlagBuyers(records, defaultConfig())
	if flagged[3] {
		t.Error("trade with null feature cannot be clustered")
	}
	if !flagged[1] || !flagged[2] {
		t.Errorf("valid trades should still cluster, got %v", flagged)
	}
}

func TestDBSCAN_Labels(t *testing.T) {
	// Two tight groups and a lone point in standardized-like space.
	points := []point{
		{0, 0}, {0.1, 0}, {0, 0.1}, // cluster 0
		{5, 5}, {5.1, 5}, // cluster 1
		{-9, 9}, // noise
	}
	labels := dbscan(points, 0.5, 2)

	if labels[0] != labels[1] || labels[1] != labels[2] {
		t.Errorf("first group should share a label: %v", labels)
	}
	if labels[3] != labels[4] {
		t.Errorf("second group should share a label: %v", labels)
	}
	if labels[0] == labels[3] {
		t.Errorf("groups should differ: %v", labels)
	}
	if labels[5] != Noise {
		t.Errorf("lone point should be noise: %v", labels)
	}
}

func TestStandardize(t *testing.T) {
	points := []point{{0, 5}, {10, 5}}
	scaled := standardize(points)

	// Quantity becomes ±1 (population std); constant rate becomes 0.
	if scaled[0][0] != -1 || scaled[1][0] != 1 {
		t.Errorf("unexpected standardized quantities: %v", scaled)
	}
	if scaled[0][1] != 0 || scaled[1][1] != 0 {
		t.Errorf("zero-variance feature should map to 0: %v", scaled)
	}
}

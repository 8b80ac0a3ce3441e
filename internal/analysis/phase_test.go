package analysis

import (
	"testing"

	"github.com/nepselab/floorwatch/internal/core"
	"github.com/nepselab/floorwatch/internal/floorsheet"
)

func defaultPhaseConfig() PhaseConfig {
	return PhaseConfig{Window: 5, VolumeSpikeRatio: 1.3, VolatilityFloor: 0.0001}
}

func TestClassify_FixedPriorityRules(t *testing.T) {
	cfg := defaultPhaseConfig()

	tests := []struct {
		name string
		row  core.SymbolDayStats
		want core.Phase
	}{
		{
			name: "markup on high volume rising price",
			row: core.SymbolDayStats{
				TotalQty: 150, AvgVolume: 100,
				PriceChange: 2, PriceVolatility: 1,
			},
			want: core.PhaseMarkup,
		},
		{
			name: "accumulation on flat price inside volatility",
			row: core.SymbolDayStats{
				TotalQty: 150, AvgVolume: 100,
				PriceChange: 0.00005, PriceVolatility: 0.0001,
			},
			want: core.PhaseAccumulation,
		},
		{
			name: "distribution on high volume falling price",
			row: core.SymbolDayStats{
				TotalQty: 150, AvgVolume: 100,
				PriceChange: -2, PriceVolatility: 1,
			},
			want: core.PhaseDistribution,
		},
		{
			name: "markdown on falling price without volume",
			row: core.SymbolDayStats{
				TotalQty: 90, AvgVolume: 100,
				PriceChange: -2, PriceVolatility: 1,
			},
			want: core.PhaseMarkdown,
		},
		{
			name: "neutral otherwise",
			row: core.SymbolDayStats{
				TotalQty: 90, AvgVolume: 100,
				PriceChange: 2, PriceVolatility: 1,
			},
			want: core.PhaseNeutral,
		},
		{
			name: "zero volatility falls back to floor",
			row: core.SymbolDayStats{
				TotalQty: 150, AvgVolume: 100,
				PriceChange: 0.00005, PriceVolatility: 0,
			},
			want: core.PhaseAccumulation,
		},
		{
			name: "null price change with high volume accumulates",
			row: core.SymbolDayStats{
				TotalQty: 150, AvgVolume: 100,
				PriceChange: core.Null(), PriceVolatility: core.Null(),
			},
			want: core.PhaseAccumulation,
		},
		{
			name: "null price change without volume is neutral",
			row: core.SymbolDayStats{
				TotalQty: 90, AvgVolume: 100,
				PriceChange: core.Null(), PriceVolatility: core.Null(),
			},
			want: core.PhaseNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.row, cfg); got != tt.want {
				t.Errorf("classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestComputeStats_FirstDayPriceChangeNull(t *testing.T) {
	records := []core.TradeRecord{
		trade("ABC", "2024-01-02", 1, 2, 100, 10),
		trade("ABC", "2024-01-03", 1, 2, 100, 12),
		trade("XYZ", "2024-01-03", 3, 4, 10, 50),
	}
	stats := ComputeStats(floorsheet.GroupByDay(records), defaultPhaseConfig())

	first := make(map[string]bool)
	for _, s := range stats {
		if !first[s.Symbol] {
			first[s.Symbol] = true
			if !core.IsNull(s.PriceChange) {
				t.Errorf("%s first day: price change should be null, got %f", s.Symbol, s.PriceChange)
			}
		}
	}
}

func TestComputeStats_PriceChangeIsDailyDiff(t *testing.T) {
	records := []core.TradeRecord{
		trade("ABC", "2024-01-02", 1, 2, 100, 10),
		trade("ABC", "2024-01-02", 2, 1, 100, 14), // avg 12
		trade("ABC", "2024-01-03", 1, 2, 100, 15), // avg 15
	}
	stats := ComputeStats(floorsheet.GroupByDay(records), defaultPhaseConfig())

	if len(stats) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(stats))
	}
	if stats[0].AvgPrice != 12 {
		t.Errorf("day 1 avg price: got %f, want 12", stats[0].AvgPrice)
	}
	if stats[1].PriceChange != 3 {
		t.Errorf("day 2 price change: got %f, want 3", stats[1].PriceChange)
	}
}

func TestComputeStats_CausalVolumeWindow(t *testing.T) {
	// Five quiet days then one loud day; the loud day must be high
	// volume relative to the trailing window that includes itself.
	records := []core.TradeRecord{
		trade("ABC", "2024-01-01", 1, 2, 100, 10),
		trade("ABC", "2024-01-02", 1, 2, 100, 10),
		trade("ABC", "2024-01-03", 1, 2, 100, 10),
		trade("ABC", "2024-01-04", 1, 2, 100, 10),
		trade("ABC", "2024-01-05", 1, 2, 100, 10),
		trade("ABC", "2024-01-06", 1, 2, 1000, 10),
	}
	stats := ComputeStats(floorsheet.GroupByDay(records), defaultPhaseConfig())

	last := stats[len(stats)-1]
	if last.TotalQty != 1000 {
		t.Fatalf("unexpected last-day quantity %f", last.TotalQty)
	}
	// avg over {100,100,100,100,1000} = 280; 1000 > 1.3*280
	if last.AvgVolume != 280 {
		t.Errorf("trailing avg volume: got %f, want 280", last.AvgVolume)
	}
	if last.Phase != core.PhaseAccumulation {
		// Price is flat at 10 throughout, so the spike classifies as
		// accumulation.
		t.Errorf("expected Accumulation, got %s", last.Phase)
	}
}

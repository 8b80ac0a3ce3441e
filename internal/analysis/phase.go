package analysis

import (
	"math"

	"github.com/nepselab/floorwatch/internal/core"
	"github.com/nepselab/floorwatch/internal/floorsheet"
	"github.com/nepselab/floorwatch/internal/indicator"
)

// PhaseConfig tunes the market phase classifier.
type PhaseConfig struct {
	// Window is the trailing day window (inclusive of the current day)
	// for average volume and price volatility.
	Window int
	// VolumeSpikeRatio marks a day as high-volume when its quantity
	// exceeds the trailing average by this factor.
	VolumeSpikeRatio float64
	// VolatilityFloor replaces a missing or zero volatility so a flat
	// price can still be recognized.
	VolatilityFloor float64
}

// ComputeStats derives per-symbol daily statistics and classifies every
// symbol-day into a market phase. All statistics are causal: a row
// depends only on the same symbol's rows on or before its date.
func ComputeStats(groups []floorsheet.DayGroup, cfg PhaseConfig) []core.SymbolDayStats {
	// Collect per-symbol day rows; GroupByDay already orders by symbol
	// then ascending date.
	var stats []core.SymbolDayStats

	i := 0
	for i < len(groups) {
		j := i
		for j < len(groups) && groups[j].Key.Symbol == groups[i].Key.Symbol {
			j++
		}
		stats = append(stats, symbolStats(groups[i:j], cfg)...)
		i = j
	}
	return stats
}

func symbolStats(days []floorsheet.DayGroup, cfg PhaseConfig) []core.SymbolDayStats {
	n := len(days)
	avgPrice := make([]float64, n)
	totalQty := make([]float64, n)

	for i, d := range days {
		rates := make([]float64, len(d.Records))
		qtys := make([]float64, len(d.Records))
		for k, r := range d.Records {
			rates[k] = r.Rate
			qtys[k] = r.Quantity
		}
		avgPrice[i] = nanMean(rates)
		totalQty[i] = nanSum(qtys)
	}

	priceChange := indicator.Diff(avgPrice)
	avgVolume := indicator.RollingMean(totalQty, cfg.Window)
	volatility := indicator.RollingStd(priceChange, cfg.Window)

	rows := make([]core.SymbolDayStats, n)
	for i := range days {
		row := core.SymbolDayStats{
			Symbol:          days[i].Key.Symbol,
			Date:            days[i].Key.Date,
			AvgPrice:        avgPrice[i],
			TotalQty:        totalQty[i],
			PriceChange:     priceChange[i],
			AvgVolume:       avgVolume[i],
			PriceVolatility: volatility[i],
		}
		row.Phase = classify(row, cfg)
		rows[i] = row
	}
	return rows
}

// classify applies the phase decision rules in fixed priority order;
// the first matching rule wins.
//
// A null price change (a symbol's first observed day) is neither rising
// nor falling and counts as flat, so such a day can only classify as
// Accumulation (when volume spikes) or Neutral.
func classify(row core.SymbolDayStats, cfg PhaseConfig) core.Phase {
	highVolume := !core.IsNull(row.AvgVolume) && row.TotalQty > row.AvgVolume*cfg.VolumeSpikeRatio

	effVolatility := cfg.VolatilityFloor
	if !core.IsNull(row.PriceVolatility) && row.PriceVolatility > 0 {
		effVolatility = row.PriceVolatility
	}

	flat := core.IsNull(row.PriceChange) || math.Abs(row.PriceChange) < effVolatility
	rising := !core.IsNull(row.PriceChange) && row.PriceChange > 0
	falling := !core.IsNull(row.PriceChange) && row.PriceChange < 0

	switch {
	case highVolume && flat:
		return core.PhaseAccumulation
	case highVolume && rising:
		return core.PhaseMarkup
	case highVolume && falling:
		return core.PhaseDistribution
	case falling:
		return core.PhaseMarkdown
	default:
		return core.PhaseNeutral
	}
}

package analysis

import (
	"github.com/nepselab/floorwatch/internal/core"
	"github.com/nepselab/floorwatch/internal/floorsheet"
	"github.com/nepselab/floorwatch/internal/indicator"
)

// DayVWAP is the intraday mean of the per-trade weighted price series
// for one symbol-day.
type DayVWAP struct {
	Rolling   float64
	Expanding float64
}

// ComputeDayVWAP runs the rolling and expanding weighted average over
// each symbol's trades in execution order, then averages the per-trade
// values within each trading day. Execution order deliberately spans
// day boundaries: the expanding series accumulates across the symbol's
// whole history.
func ComputeDayVWAP(groups []floorsheet.SymbolGroup, window int) map[core.DayKey]DayVWAP {
	result := make(map[core.DayKey]DayVWAP)

	for _, g := range groups {
		rates := make([]float64, len(g.Records))
		qtys := make([]float64, len(g.Records))
		for i, r := range g.Records {
			rates[i] = r.Rate
			qtys[i] = r.Quantity
		}

		rolling := indicator.RollingWeighted(rates, qtys, window)
		expanding := indicator.ExpandingWeighted(rates, qtys)

		byDay := make(map[core.DayKey]*struct {
			roll, exp []float64
		})
		for i, r := range g.Records {
			k := core.DayKey{Symbol: g.Symbol, Date: r.Date}
			d, ok := byDay[k]
			if !ok {
				d = &struct{ roll, exp []float64 }{}
				byDay[k] = d
			}
			d.roll = append(d.roll, rolling[i])
			d.exp = append(d.exp, expanding[i])
		}

		for k, d := range byDay {
			result[k] = DayVWAP{
				Rolling:   nanMean(d.roll),
				Expanding: nanMean(d.exp),
			}
		}
	}
	return result
}

package floorsheet

import (
	"sort"

	"github.com/nepselab/floorwatch/internal/core"
)

// SymbolGroup is one symbol's trades in execution order.
type SymbolGroup struct {
	Symbol  string
	Records []core.TradeRecord
}

// DayGroup is one symbol-day's trades in execution order.
type DayGroup struct {
	Key     core.DayKey
	Records []core.TradeRecord
}

// GroupBySymbol partitions records by symbol. Groups are returned in
// ascending symbol order; each group keeps the original execution
// order, which the expanding-window calculations depend on.
func GroupBySymbol(records []core.TradeRecord) []SymbolGroup {
	bysym := make(map[string][]core.TradeRecord)
	for _, r := range records {
		bysym[r.Symbol] = append(bysym[r.Symbol], r)
	}

	symbols := make([]string, 0, len(bysym))
	for s := range bysym {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	groups := make([]SymbolGroup, 0, len(symbols))
	for _, s := range symbols {
		groups = append(groups, SymbolGroup{Symbol: s, Records: bysym[s]})
	}
	return groups
}

// GroupByDay partitions records by (symbol, date). Groups are returned
// sorted by symbol then date; each group keeps execution order.
func GroupByDay(records []core.TradeRecord) []DayGroup {
	bykey := make(map[core.DayKey][]core.TradeRecord)
	for _, r := range records {
		k := core.DayKey{Symbol: r.Symbol, Date: r.Date}
		bykey[k] = append(bykey[k], r)
	}

	keys := make([]core.DayKey, 0, len(bykey))
	for k := range bykey {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Symbol != keys[j].Symbol {
			return keys[i].Symbol < keys[j].Symbol
		}
		return keys[i].Date.Before(keys[j].Date)
	})

	groups := make([]DayGroup, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, DayGroup{Key: k, Records: bykey[k]})
	}
	return groups
}

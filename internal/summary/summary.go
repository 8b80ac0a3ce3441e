// Package summary computes descriptive roll-ups of the ledger: the most
// active traders per side, market-wide daily turnover, and each
// symbol's largest single trade.
package summary

import (
	"sort"
	"time"

	"github.com/nepselab/floorwatch/internal/core"
)

// Side marks which side of the book a trader total covers.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// TraderTotals is one broker's aggregate activity on one side.
type TraderTotals struct {
	Broker   int
	Side     Side
	Amount   float64
	Quantity float64
	Trades   int
}

// TopTraders returns the topN most active brokers per side, ranked by
// total traded amount. Buy-side rows come first.
func TopTraders(records []core.TradeRecord, topN int) []TraderTotals {
	buy := make(map[int]*TraderTotals)
	sell := make(map[int]*TraderTotals)

	accumulate := func(m map[int]*TraderTotals, broker int, side Side, r core.TradeRecord) {
		t, ok := m[broker]
		if !ok {
			t = &TraderTotals{Broker: broker, Side: side}
			m[broker] = t
		}
		if !core.IsNull(r.Amount) {
			t.Amount += r.Amount
		}
		if !core.IsNull(r.Quantity) {
			t.Quantity += r.Quantity
		}
		t.Trades++
	}

	for _, r := range records {
		accumulate(buy, r.Buyer, SideBuy, r)
		accumulate(sell, r.Seller, SideSell, r)
	}

	rank := func(m map[int]*TraderTotals) []TraderTotals {
		rows := make([]TraderTotals, 0, len(m))
		for _, t := range m {
			rows = append(rows, *t)
		}
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].Amount != rows[j].Amount {
				return rows[i].Amount > rows[j].Amount
			}
			return rows[i].Broker < rows[j].Broker
		})
		if len(rows) > topN {
			rows = rows[:topN]
		}
		return rows
	}

	return append(rank(buy), rank(sell)...)
}

// DayTurnover is the market-wide traded amount of one date.
type DayTurnover struct {
	Date     time.Time
	Turnover float64
	Trades   int
}

// Turnover sums traded amounts across all symbols per date, ascending.
func Turnover(records []core.TradeRecord) []DayTurnover {
	bydate := make(map[time.Time]*DayTurnover)
	for _, r := range records {
		d, ok := bydate[r.Date]
		if !ok {
			d = &DayTurnover{Date: r.Date}
			bydate[r.Date] = d
		}
		if !core.IsNull(r.Amount) {
			d.Turnover += r.Amount
		}
		d.Trades++
	}

	rows := make([]DayTurnover, 0, len(bydate))
	for _, d := range bydate {
		rows = append(rows, *d)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return rows
}

// LargestTrades picks each symbol's single largest trade by amount,
// returned in symbol order. Trades with a null amount cannot win.
func LargestTrades(records []core.TradeRecord) []core.TradeRecord {
	best := make(map[string]core.TradeRecord)
	for _, r := range records {
		if core.IsNull(r.Amount) {
			continue
		}
		cur, ok := best[r.Symbol]
		if !ok || r.Amount > cur.Amount {
			best[r.Symbol] = r
		}
	}

	symbols := make([]string, 0, len(best))
	for s := range best {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	rows := make([]core.TradeRecord, 0, len(symbols))
	for _, s := range symbols {
		rows = append(rows, best[s])
	}
	return rows
}

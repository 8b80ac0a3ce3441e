// Package export writes the pipeline's tables as CSV with stable column
// orders, and reads them back. Floats are emitted at full precision so
// a written table reloads bit-identical; nulls map to empty fields.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/nepselab/floorwatch/internal/core"
	"github.com/nepselab/floorwatch/internal/detector/pumpdump"
	"github.com/nepselab/floorwatch/internal/summary"
)

// Default output file names.
const (
	FlowsFile       = "broker_day_flows.csv"
	StatsFile       = "symbol_day_stats.csv"
	AssessmentsFile = "broker_assessments.csv"
	SignalsFile     = "daily_signals.csv"
	PumpDumpFile    = "pump_dump.csv"
	TopTradersFile  = "top_traders.csv"
	TurnoverFile    = "daily_turnover.csv"
	LargestFile     = "largest_trades.csv"
)

func formatFloat(v float64) string {
	if core.IsNull(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatBool(v bool) string {
	return strconv.FormatBool(v)
}

func writeTable(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return core.WrapError(core.ErrExportFailed, err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return core.WrapError(core.ErrExportFailed, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return core.WrapError(core.ErrExportFailed, err)
	}
	return nil
}

// WriteFlows writes the BrokerDayFlow table.
func WriteFlows(w io.Writer, flows []core.BrokerDayFlow) error {
	header := []string{
		"symbol", "date", "broker",
		"buy_qty", "buy_amount", "sell_qty", "sell_amount",
		"net_amount", "total_turnover", "dominance_ratio", "dominant_flag",
	}
	rows := make([][]string, 0, len(flows))
	for _, f := range flows {
		rows = append(rows, []string{
			f.Symbol,
			f.Date.Format(core.DateFormat),
			strconv.Itoa(f.Broker),
			formatFloat(f.BuyQty),
			formatFloat(f.BuyAmount),
			formatFloat(f.SellQty),
			formatFloat(f.SellAmount),
			formatFloat(f.NetAmount),
			formatFloat(f.TotalTurnover),
			formatFloat(f.DominanceRatio),
			formatBool(f.Dominant),
		})
	}
	return writeTable(w, header, rows)
}

// WriteStats writes the SymbolDayStats table.
func WriteStats(w io.Writer, stats []core.SymbolDayStats) error {
	header := []string{
		"symbol", "date", "avg_price", "total_qty",
		"price_change", "avg_volume", "price_volatility", "market_phase",
	}
	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []string{
			s.Symbol,
			s.Date.Format(core.DateFormat),
			formatFloat(s.AvgPrice),
			formatFloat(s.TotalQty),
			formatFloat(s.PriceChange),
			formatFloat(s.AvgVolume),
			formatFloat(s.PriceVolatility),
			string(s.Phase),
		})
	}
	return writeTable(w, header, rows)
}

// WriteAssessments writes the per-broker master table with all flags.
func WriteAssessments(w io.Writer, assessments []core.BrokerAssessment) error {
	header := []string{
		"symbol", "date", "broker",
		"buy_qty", "buy_amount", "sell_qty", "sell_amount",
		"net_amount", "total_turnover", "dominance_ratio", "dominant_flag",
		"market_phase", "strong_accumulation", "circular_flag", "cluster_flag", "broker_score",
	}
	rows := make([][]string, 0, len(assessments))
	for _, a := range assessments {
		rows = append(rows, []string{
			a.Symbol,
			a.Date.Format(core.DateFormat),
			strconv.Itoa(a.Broker),
			formatFloat(a.BuyQty),
			formatFloat(a.BuyAmount),
			formatFloat(a.SellQty),
			formatFloat(a.SellAmount),
			formatFloat(a.NetAmount),
			formatFloat(a.TotalTurnover),
			formatFloat(a.DominanceRatio),
			formatBool(a.Dominant),
			string(a.Phase),
			formatBool(a.StrongAccumulation),
			formatBool(a.CircularFlag),
			formatBool(a.ClusterFlag),
			strconv.Itoa(a.Score),
		})
	}
	return writeTable(w, header, rows)
}

// WriteSignals writes the DailySignal table.
func WriteSignals(w io.Writer, signals []core.DailySignal) error {
	header := []string{
		"symbol", "date", "total_score", "avg_dominance", "avg_price",
		"weighted_rolling_price", "weighted_expanding_price", "next_day_return",
	}
	rows := make([][]string, 0, len(signals))
	for _, s := range signals {
		rows = append(rows, []string{
			s.Symbol,
			s.Date.Format(core.DateFormat),
			strconv.Itoa(s.TotalScore),
			formatFloat(s.AvgDominance),
			formatFloat(s.AvgPrice),
			formatFloat(s.WeightedRollingPrice),
			formatFloat(s.WeightedExpandingPrice),
			formatFloat(s.NextDayReturn),
		})
	}
	return writeTable(w, header, rows)
}

// WritePumpDump writes the flagged pump-and-dump days.
func WritePumpDump(w io.Writer, stats []pumpdump.DayStats) error {
	header := []string{
		"symbol", "date", "total_quantity", "total_amount",
		"avg_rate", "max_rate", "min_rate", "unique_buyers", "unique_sellers",
		"volume_spike", "price_jump",
	}
	var rows [][]string
	for _, s := range stats {
		if !s.Flagged {
			continue
		}
		rows = append(rows, []string{
			s.Symbol,
			s.Date.Format(core.DateFormat),
			formatFloat(s.TotalQty),
			formatFloat(s.TotalAmount),
			formatFloat(s.AvgRate),
			formatFloat(s.MaxRate),
			formatFloat(s.MinRate),
			strconv.Itoa(s.UniqueBuyers),
			strconv.Itoa(s.UniqueSellers),
			formatBool(s.VolumeSpike),
			formatBool(s.PriceJump),
		})
	}
	return writeTable(w, header, rows)
}

// WriteTopTraders writes the per-side trader ranking.
func WriteTopTraders(w io.Writer, traders []summary.TraderTotals) error {
	header := []string{"broker", "side", "amount", "quantity", "trades"}
	rows := make([][]string, 0, len(traders))
	for _, t := range traders {
		rows = append(rows, []string{
			strconv.Itoa(t.Broker),
			string(t.Side),
			formatFloat(t.Amount),
			formatFloat(t.Quantity),
			strconv.Itoa(t.Trades),
		})
	}
	return writeTable(w, header, rows)
}

// WriteTurnover writes the market-wide daily turnover.
func WriteTurnover(w io.Writer, days []summary.DayTurnover) error {
	header := []string{"date", "daily_turnover", "trades"}
	rows := make([][]string, 0, len(days))
	for _, d := range days {
		rows = append(rows, []string{
			d.Date.Format(core.DateFormat),
			formatFloat(d.Turnover),
			strconv.Itoa(d.Trades),
		})
	}
	return writeTable(w, header, rows)
}

// WriteLargestTrades writes each symbol's largest trade.
func WriteLargestTrades(w io.Writer, trades []core.TradeRecord) error {
	header := []string{"symbol", "date", "buyer", "seller", "quantity", "rate", "amount"}
	rows := make([][]string, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, []string{
			t.Symbol,
			t.Date.Format(core.DateFormat),
			strconv.Itoa(t.Buyer),
			strconv.Itoa(t.Seller),
			formatFloat(t.Quantity),
			formatFloat(t.Rate),
			formatFloat(t.Amount),
		})
	}
	return writeTable(w, header, rows)
}

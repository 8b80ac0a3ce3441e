package core

import (
	"math"
	"time"
)

// DateFormat is the canonical date layout for all tabular output.
const DateFormat = "2006-01-02"

// Null returns the null numeric value. Missing or unparseable numeric
// fields are represented as NaN and skipped by downstream aggregates.
func Null() float64 {
	return math.NaN()
}

// IsNull reports whether v is the null numeric value.
func IsNull(v float64) bool {
	return math.IsNaN(v)
}

// Day truncates t to midnight UTC so dates compare as map keys.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// TradeRecord is one row of the floorsheet ledger: a single executed
// trade between two brokers. Records are immutable once loaded and keep
// their original execution order.
type TradeRecord struct {
	SN            int64
	TransactionNo int64
	Symbol        string
	Buyer         int
	Seller        int
	Quantity      float64
	Rate          float64
	Amount        float64
	Date          time.Time
}

// DayKey identifies one (symbol, trading day) group.
type DayKey struct {
	Symbol string
	Date   time.Time
}

// BrokerDayFlow aggregates one broker's buy and sell activity in one
// symbol on one day. A broker appears even if it was active on only one
// side; the missing side is zero.
type BrokerDayFlow struct {
	Symbol        string
	Date          time.Time
	Broker        int
	BuyQty        float64
	BuyAmount     float64
	SellQty       float64
	SellAmount    float64
	NetAmount     float64
	TotalTurnover float64
	// DominanceRatio is NetAmount over the day's total turnover,
	// signed. Null when the turnover is zero.
	DominanceRatio float64
	Dominant       bool
}

// Key returns the flow's (symbol, date) group key.
func (f BrokerDayFlow) Key() DayKey {
	return DayKey{Symbol: f.Symbol, Date: f.Date}
}

// Phase is the heuristic trading regime of a symbol-day.
type Phase string

const (
	PhaseAccumulation Phase = "Accumulation"
	PhaseMarkup       Phase = "Markup"
	PhaseDistribution Phase = "Distribution"
	PhaseMarkdown     Phase = "Markdown"
	PhaseNeutral      Phase = "Neutral"
)

// SymbolDayStats holds the causal daily statistics a phase
// classification is derived from. PriceChange is null on a symbol's
// first observed day; PriceVolatility is null until two price changes
// have been seen.
type SymbolDayStats struct {
	Symbol          string
	Date            time.Time
	AvgPrice        float64
	TotalQty        float64
	PriceChange     float64
	AvgVolume       float64
	PriceVolatility float64
	Phase           Phase
}

// Key returns the stats row's (symbol, date) group key.
func (s SymbolDayStats) Key() DayKey {
	return DayKey{Symbol: s.Symbol, Date: s.Date}
}

// BrokerAssessment is a BrokerDayFlow joined with every detector flag
// and the resulting risk score.
type BrokerAssessment struct {
	BrokerDayFlow
	Phase              Phase
	StrongAccumulation bool
	CircularFlag       bool
	ClusterFlag        bool
	Score              int
}

// DailySignal is the per-(symbol, day) roll-up of broker assessments,
// with the next trading day's return attached for backtesting. The
// return is null on each symbol's final day.
type DailySignal struct {
	Symbol                 string
	Date                   time.Time
	TotalScore             int
	AvgDominance           float64
	AvgPrice               float64
	WeightedRollingPrice   float64
	WeightedExpandingPrice float64
	NextDayReturn          float64
}

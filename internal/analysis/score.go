package analysis

import (
	"github.com/nepselab/floorwatch/internal/core"
)

// ScoreConfig tunes the broker risk scorer.
type ScoreConfig struct {
	// StrongDominance is the signed dominance ratio above which one
	// extra score point is awarded.
	StrongDominance float64
}

// Score weights. A broker's score is the weighted sum of its flags,
// giving a value in 0..8.
const (
	weightStrongAccumulation = 3
	weightCircular           = 2
	weightCluster            = 2
	weightStrongDominance    = 1
)

// Assess joins detector flags onto broker day flows and computes the
// per-broker risk score. Detectors hand in their flag sets; nothing
// here mutates shared state, so each input stays independently
// testable.
func Assess(
	flows []core.BrokerDayFlow,
	phases map[core.DayKey]core.Phase,
	circular map[core.DayKey]map[int]bool,
	clustered map[string]map[int]bool,
	cfg ScoreConfig,
) []core.BrokerAssessment {
	assessments := make([]core.BrokerAssessment, 0, len(flows))

	for _, f := range flows {
		a := core.BrokerAssessment{
			BrokerDayFlow: f,
			Phase:         phases[f.Key()],
		}
		a.StrongAccumulation = f.Dominant && a.Phase == core.PhaseAccumulation
		a.CircularFlag = circular[f.Key()][f.Broker]
		a.ClusterFlag = clustered[f.Symbol][f.Broker]

		if a.StrongAccumulation {
			a.Score += weightStrongAccumulation
		}
		if a.CircularFlag {
			a.Score += weightCircular
		}
		if a.ClusterFlag {
			a.Score += weightCluster
		}
		if !core.IsNull(f.DominanceRatio) && f.DominanceRatio > cfg.StrongDominance {
			a.Score += weightStrongDominance
		}
		assessments = append(assessments, a)
	}
	return assessments
}

// Signals rolls broker assessments up to one row per symbol-day and
// attaches the next trading day's price return. The final day of each
// symbol has a null return; no value is fabricated past the end of the
// series.
//
// Assessments must arrive ordered by symbol then ascending date, which
// is how Assess emits them.
func Signals(
	assessments []core.BrokerAssessment,
	stats []core.SymbolDayStats,
	vwap map[core.DayKey]DayVWAP,
) []core.DailySignal {
	avgPrice := make(map[core.DayKey]float64, len(stats))
	for _, s := range stats {
		avgPrice[s.Key()] = s.AvgPrice
	}

	var signals []core.DailySignal
	i := 0
	for i < len(assessments) {
		key := assessments[i].Key()
		j := i
		total := 0
		var dominances []float64
		for j < len(assessments) && assessments[j].Key() == key {
			total += assessments[j].Score
			dominances = append(dominances, assessments[j].DominanceRatio)
			j++
		}

		w, ok := vwap[key]
		if !ok {
			w = DayVWAP{Rolling: core.Null(), Expanding: core.Null()}
		}
		price, ok := avgPrice[key]
		if !ok {
			price = core.Null()
		}
		signals = append(signals, core.DailySignal{
			Symbol:                 key.Symbol,
			Date:                   key.Date,
			TotalScore:             total,
			AvgDominance:           nanMean(dominances),
			AvgPrice:               price,
			WeightedRollingPrice:   w.Rolling,
			WeightedExpandingPrice: w.Expanding,
			NextDayReturn:          core.Null(),
		})
		i = j
	}

	// Next-day return: shift each symbol's avg price series back one day.
	for i := range signals {
		if i+1 >= len(signals) || signals[i+1].Symbol != signals[i].Symbol {
			continue
		}
		cur, next := signals[i].AvgPrice, signals[i+1].AvgPrice
		if core.IsNull(cur) || core.IsNull(next) || cur == 0 {
			continue
		}
		signals[i].NextDayReturn = (next - cur) / cur
	}
	return signals
}

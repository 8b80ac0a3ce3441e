// Package pipeline wires the loader, analysis stages and detectors into
// one batch run over a floorsheet.
package pipeline

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/nepselab/floorwatch/internal/analysis"
	"github.com/nepselab/floorwatch/internal/config"
	"github.com/nepselab/floorwatch/internal/core"
	"github.com/nepselab/floorwatch/internal/detector/circular"
	"github.com/nepselab/floorwatch/internal/detector/cluster"
	"github.com/nepselab/floorwatch/internal/detector/pumpdump"
	"github.com/nepselab/floorwatch/internal/floorsheet"
	"github.com/nepselab/floorwatch/internal/metrics"
	"github.com/nepselab/floorwatch/internal/summary"
)

// Pipeline runs the full surveillance analysis over one floorsheet.
type Pipeline struct {
	cfg *config.Config
	log *zap.Logger
	reg *metrics.Registry
}

// New creates a pipeline. logger and registry may be nil.
func New(cfg *config.Config, log *zap.Logger, reg *metrics.Registry) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{cfg: cfg, log: log, reg: reg}
}

// Result carries every table a run produces.
type Result struct {
	Flows       []core.BrokerDayFlow
	Stats       []core.SymbolDayStats
	Assessments []core.BrokerAssessment
	Signals     []core.DailySignal
	PumpDump    []pumpdump.DayStats
	TopTraders  []summary.TraderTotals
	Turnover    []summary.DayTurnover
	Largest     []core.TradeRecord

	Records  int
	Rejected int
}

// Run executes the pipeline over the floorsheet read from r.
func (p *Pipeline) Run(ctx context.Context, r io.Reader) (*Result, error) {
	table, err := floorsheet.NewLoader(p.log).Load(r)
	if err != nil {
		return nil, err
	}
	p.log.Info("floorsheet loaded",
		zap.Int("records", len(table.Records)),
		zap.Int("rejected", table.Rejected))
	if p.reg != nil {
		p.reg.RecordLoad(len(table.Records), table.Rejected)
	}

	dayGroups := floorsheet.GroupByDay(table.Records)
	symbolGroups := floorsheet.GroupBySymbol(table.Records)

	flows := analysis.AggregateFlows(dayGroups, p.cfg.Analysis.DominanceThreshold)

	stats := analysis.ComputeStats(dayGroups, analysis.PhaseConfig{
		Window:           p.cfg.Analysis.Window,
		VolumeSpikeRatio: p.cfg.Analysis.VolumeSpikeRatio,
		VolatilityFloor:  p.cfg.Analysis.VolatilityFloor,
	})
	phases := make(map[core.DayKey]core.Phase, len(stats))
	for _, s := range stats {
		phases[s.Key()] = s.Phase
	}

	vwap := analysis.ComputeDayVWAP(symbolGroups, p.cfg.Analysis.Window)

	circularFlags, err := p.detectCircular(ctx, dayGroups)
	if err != nil {
		return nil, err
	}
	clusterFlags, err := p.detectClusters(ctx, symbolGroups)
	if err != nil {
		return nil, err
	}

	assessments := analysis.Assess(flows, phases, circularFlags, clusterFlags, analysis.ScoreConfig{
		StrongDominance: p.cfg.Analysis.StrongDominance,
	})
	signals := analysis.Signals(assessments, stats, vwap)
	if p.reg != nil {
		p.reg.SetSignalCount(len(signals))
	}

	pd := pumpdump.Detect(dayGroups, pumpdump.Config{
		VolumeRatio: p.cfg.PumpDump.VolumeRatio,
		PriceRatio:  p.cfg.PumpDump.PriceRatio,
	})
	if p.reg != nil {
		flagged := 0
		for _, d := range pd {
			if d.Flagged {
				flagged++
			}
		}
		p.reg.RecordFlags("pumpdump", flagged)
	}

	p.log.Info("analysis complete",
		zap.Int("flows", len(flows)),
		zap.Int("signals", len(signals)))

	return &Result{
		Flows:       flows,
		Stats:       stats,
		Assessments: assessments,
		Signals:     signals,
		PumpDump:    pd,
		TopTraders:  summary.TopTraders(table.Records, p.cfg.Summary.TopN),
		Turnover:    summary.Turnover(table.Records),
		Largest:     summary.LargestTrades(table.Records),
		Records:     len(table.Records),
		Rejected:    table.Rejected,
	}, nil
}

// detectCircular enumerates trade cycles once per symbol-day and
// returns the flagged brokers keyed by day.
func (p *Pipeline) detectCircular(ctx context.Context, groups []floorsheet.DayGroup) (map[core.DayKey]map[int]bool, error) {
	cfg := circular.Config{
		MaxCycles:       p.cfg.Analysis.MaxCyclesPerDay,
		CountSelfTrades: p.cfg.Analysis.CountSelfTrades,
	}
	flags := make(map[core.DayKey]map[int]bool, len(groups))
	total := 0
	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := circular.Detect(g.Records, cfg)
		if res.Truncated {
			p.log.Warn("cycle enumeration truncated",
				zap.String("symbol", g.Key.Symbol),
				zap.Time("date", g.Key.Date),
				zap.Int("cycles", res.Cycles))
		}
		if p.reg != nil {
			p.reg.RecordCycles(res.Cycles, res.Truncated)
		}
		if len(res.Flagged) > 0 {
			flags[g.Key] = res.Flagged
			total += len(res.Flagged)
		}
	}
	if p.reg != nil {
		p.reg.RecordFlags("circular", total)
	}
	return flags, nil
}

// detectClusters runs density clustering once per symbol and returns
// the flagged buyers keyed by symbol.
func (p *Pipeline) detectClusters(ctx context.Context, groups []floorsheet.SymbolGroup) (map[string]map[int]bool, error) {
	cfg := cluster.Config{
		Eps:        p.cfg.Analysis.ClusterEps,
		MinSamples: p.cfg.Analysis.ClusterMinSamples,
	}
	flags := make(map[string]map[int]bool, len(groups))
	total := 0
	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		buyers := cluster.FlagBuyers(g.Records, cfg)
		if len(buyers) > 0 {
			flags[g.Symbol] = buyers
			total += len(buyers)
		}
	}
	if p.reg != nil {
		p.reg.RecordFlags("cluster", total)
	}
	return flags, nil
}

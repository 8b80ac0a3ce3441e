// Package metrics collects run counters for the analysis pipeline and
// dumps them in Prometheus text format at the end of a run.
package metrics

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/nepselab/floorwatch/internal/core"
)

// Registry holds all Prometheus metrics for a single run.
type Registry struct {
	*prometheus.Registry

	recordsParsed   prometheus.Counter
	recordsRejected prometheus.Counter
	flagsRaised     *prometheus.CounterVec
	cyclesFound     prometheus.Counter
	cyclesTruncated prometheus.Counter
	signalsEmitted  prometheus.Gauge
	runDuration     prometheus.Histogram
}

// NewRegistry creates a registry with all pipeline metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		Registry: reg,

		recordsParsed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "floorwatch_records_parsed_total",
				Help: "Total number of trade records parsed",
			},
		),
		recordsRejected: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "floorwatch_records_rejected_total",
				Help: "Total number of rows rejected during load",
			},
		),
		flagsRaised: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "floorwatch_flags_raised_total",
				Help: "Total number of surveillance flags raised",
			},
			[]string{"detector"},
		),
		cyclesFound: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "floorwatch_trade_cycles_total",
				Help: "Total number of trade cycles enumerated",
			},
		),
		cyclesTruncated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "floorwatch_cycle_truncations_total",
				Help: "Number of days where cycle enumeration hit the cap",
			},
		),
		signalsEmitted: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "floorwatch_daily_signals",
				Help: "Number of daily signals emitted by the run",
			},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "floorwatch_run_duration_seconds",
				Help:    "Analysis run duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
			},
		),
	}

	reg.MustRegister(r.recordsParsed)
	reg.MustRegister(r.recordsRejected)
	reg.MustRegister(r.flagsRaised)
	reg.MustRegister(r.cyclesFound)
	reg.MustRegister(r.cyclesTruncated)
	reg.MustRegister(r.signalsEmitted)
	reg.MustRegister(r.runDuration)

	return r
}

// RecordLoad records parsed and rejected row counts.
func (r *Registry) RecordLoad(parsed, rejected int) {
	r.recordsParsed.Add(float64(parsed))
	r.recordsRejected.Add(float64(rejected))
}

// RecordFlags records flags raised by one detector.
func (r *Registry) RecordFlags(detector string, count int) {
	r.flagsRaised.WithLabelValues(detector).Add(float64(count))
}

// RecordCycles records the outcome of one day's cycle enumeration.
func (r *Registry) RecordCycles(found int, truncated bool) {
	r.cyclesFound.Add(float64(found))
	if truncated {
		r.cyclesTruncated.Inc()
	}
}

// SetSignalCount sets the number of emitted daily signals.
func (r *Registry) SetSignalCount(n int) {
	r.signalsEmitted.Set(float64(n))
}

// RecordRunDuration records the wall time of a full run.
func (r *Registry) RecordRunDuration(seconds float64) {
	r.runDuration.Observe(seconds)
}

// WriteFile dumps all gathered metrics to path in Prometheus text format.
func (r *Registry) WriteFile(path string) error {
	families, err := r.Gather()
	if err != nil {
		return core.WrapError(core.ErrExportFailed, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return core.WrapError(core.ErrExportFailed, err)
	}
	defer f.Close()
	enc := expfmt.NewEncoder(f, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, fam := range families {
		if err := enc.Encode(fam); err != nil {
			return core.WrapError(core.ErrExportFailed, err)
		}
	}
	return nil
}

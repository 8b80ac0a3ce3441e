package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRegistryCounters(t *testing.T) {
	r := NewRegistry()
	r.RecordLoad(100, 3)
	r.RecordFlags("circular", 2)
	r.RecordFlags("cluster", 5)
	r.RecordCycles(7, true)
	r.RecordCycles(1, false)
	r.SetSignalCount(42)
	r.RecordRunDuration(0.25)

	families, err := r.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	got := map[string]float64{}
	for _, fam := range families {
		for _, m := range fam.Metric {
			key := fam.GetName()
			for _, lp := range m.Label {
				key += "/" + lp.GetValue()
			}
			switch {
			case m.Counter != nil:
				got[key] = m.Counter.GetValue()
			case m.Gauge != nil:
				got[key] = m.Gauge.GetValue()
			}
		}
	}

	want := map[string]float64{
		"floorwatch_records_parsed_total":        100,
		"floorwatch_records_rejected_total":      3,
		"floorwatch_flags_raised_total/circular": 2,
		"floorwatch_flags_raised_total/cluster":  5,
		"floorwatch_trade_cycles_total":          8,
		"floorwatch_cycle_truncations_total":     1,
		"floorwatch_daily_signals":               42,
	}
	for name, v := range want {
		if got[name] != v {
			t.Errorf("%s = %v, want %v", name, got[name], v)
		}
	}
}

func TestWriteFile(t *testing.T) {
	r := NewRegistry()
	r.RecordLoad(10, 0)

	path := filepath.Join(t.TempDir(), "metrics.prom")
	if err := r.WriteFile(path); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "floorwatch_records_parsed_total 10") {
		t.Errorf("missing parsed counter in:\n%s", text)
	}
	if !strings.Contains(text, "# HELP floorwatch_records_parsed_total") {
		t.Errorf("missing HELP line in:\n%s", text)
	}
}

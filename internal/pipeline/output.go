package pipeline

import (
	"os"
	"path/filepath"

	"github.com/nepselab/floorwatch/internal/core"
	"github.com/nepselab/floorwatch/internal/export"
)

// WriteOutputs writes every result table as CSV into dir, creating it
// if needed. File names are the export package defaults.
func WriteOutputs(dir string, res *Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return core.WrapError(core.ErrExportFailed, err)
	}

	writers := []struct {
		name  string
		write func(f *os.File) error
	}{
		{export.FlowsFile, func(f *os.File) error { return export.WriteFlows(f, res.Flows) }},
		{export.StatsFile, func(f *os.File) error { return export.WriteStats(f, res.Stats) }},
		{export.AssessmentsFile, func(f *os.File) error { return export.WriteAssessments(f, res.Assessments) }},
		{export.SignalsFile, func(f *os.File) error { return export.WriteSignals(f, res.Signals) }},
		{export.PumpDumpFile, func(f *os.File) error { return export.WritePumpDump(f, res.PumpDump) }},
		{export.TopTradersFile, func(f *os.File) error { return export.WriteTopTraders(f, res.TopTraders) }},
		{export.TurnoverFile, func(f *os.File) error { return export.WriteTurnover(f, res.Turnover) }},
		{export.LargestFile, func(f *os.File) error { return export.WriteLargestTrades(f, res.Largest) }},
	}

	for _, w := range writers {
		f, err := os.Create(filepath.Join(dir, w.name))
		if err != nil {
			return core.WrapError(core.ErrExportFailed, err)
		}
		if err := w.write(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return core.WrapError(core.ErrExportFailed, err)
		}
	}
	return nil
}

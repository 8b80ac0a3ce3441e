package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/nepselab/floorwatch/internal/core"
)

func parseFloat(s string) float64 {
	if s == "" {
		return core.Null()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return core.Null()
	}
	return v
}

// ReadSignals loads a DailySignal table previously written by WriteSignals.
func ReadSignals(r io.Reader) ([]core.DailySignal, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 8
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, core.WrapError(core.ErrLoadFailed, err)
	}
	if len(rows) < 2 {
		return nil, core.ErrNoData
	}
	signals := make([]core.DailySignal, 0, len(rows)-1)
	for _, row := range rows[1:] {
		date, err := time.Parse(core.DateFormat, row[1])
		if err != nil {
			return nil, core.WrapError(core.ErrLoadFailed, err)
		}
		score, err := strconv.Atoi(row[2])
		if err != nil {
			return nil, core.WrapError(core.ErrLoadFailed, err)
		}
		signals = append(signals, core.DailySignal{
			Symbol:                 row[0],
			Date:                   date,
			TotalScore:             score,
			AvgDominance:           parseFloat(row[3]),
			AvgPrice:               parseFloat(row[4]),
			WeightedRollingPrice:   parseFloat(row[5]),
			WeightedExpandingPrice: parseFloat(row[6]),
			NextDayReturn:          parseFloat(row[7]),
		})
	}
	return signals, nil
}

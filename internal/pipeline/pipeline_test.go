package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nepselab/floorwatch/internal/config"
	"github.com/nepselab/floorwatch/internal/core"
	"github.com/nepselab/floorwatch/internal/export"
)

const fixture = `sn,transaction_no,symbol,buyer,seller,quantity,rate,amount,date
1,1001,ABC,1,2,100,100,10000,2024-01-15
2,1002,ABC,2,1,100,100,10000,2024-01-15
3,1003,ABC,3,4,50,101,5050,2024-01-15
4,1004,ABC,3,2,200,110,22000,2024-01-16
5,1005,XYZ,5,6,10,50,500,2024-01-15
`

func runFixture(t *testing.T) *Result {
	t.Helper()
	p := New(config.Defaults(), nil, nil)
	res, err := p.Run(context.Background(), strings.NewReader(fixture))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return res
}

func TestRunTableSizes(t *testing.T) {
	res := runFixture(t)
	if res.Records != 5 || res.Rejected != 0 {
		t.Errorf("records = %d rejected = %d", res.Records, res.Rejected)
	}
	// ABC day 1: brokers 1,2,3,4; ABC day 2: brokers 2,3; XYZ: 5,6.
	if len(res.Flows) != 8 {
		t.Errorf("flows = %d, want 8", len(res.Flows))
	}
	// Three symbol-days.
	if len(res.Stats) != 3 {
		t.Errorf("stats = %d, want 3", len(res.Stats))
	}
	if len(res.Signals) != 3 {
		t.Errorf("signals = %d, want 3", len(res.Signals))
	}
	if len(res.Assessments) != len(res.Flows) {
		t.Errorf("assessments = %d, want %d", len(res.Assessments), len(res.Flows))
	}
}

func TestRunCircularFlags(t *testing.T) {
	res := runFixture(t)
	flagged := map[int]bool{}
	for _, a := range res.Assessments {
		if a.Symbol == "ABC" && a.Date.Format(core.DateFormat) == "2024-01-15" && a.CircularFlag {
			flagged[a.Broker] = true
		}
	}
	// Brokers 1 and 2 trade back and forth; 3 and 4 do not.
	if !flagged[1] || !flagged[2] {
		t.Errorf("flagged = %v, want brokers 1 and 2", flagged)
	}
	if flagged[3] || flagged[4] {
		t.Errorf("flagged = %v, brokers 3 and 4 should be clean", flagged)
	}
}

func TestRunNextDayReturn(t *testing.T) {
	res := runFixture(t)
	byKey := map[string]core.DailySignal{}
	for _, s := range res.Signals {
		byKey[s.Symbol+"/"+s.Date.Format(core.DateFormat)] = s
	}

	// ABC day 1 avg price is (100+100+101)/3; day 2 is 110.
	first := byKey["ABC/2024-01-15"]
	if core.IsNull(first.NextDayReturn) {
		t.Fatal("ABC day 1 next-day return should be set")
	}
	if first.NextDayReturn < 0.09 || first.NextDayReturn > 0.10 {
		t.Errorf("next-day return = %v", first.NextDayReturn)
	}

	// Final day of each symbol carries no return.
	if !core.IsNull(byKey["ABC/2024-01-16"].NextDayReturn) {
		t.Error("ABC final day return should be null")
	}
	if !core.IsNull(byKey["XYZ/2024-01-15"].NextDayReturn) {
		t.Error("XYZ single day return should be null")
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := New(config.Defaults(), nil, nil)
	if _, err := p.Run(ctx, strings.NewReader(fixture)); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestRunEmptyInput(t *testing.T) {
	p := New(config.Defaults(), nil, nil)
	_, err := p.Run(context.Background(), strings.NewReader("symbol,buyer,seller,quantity,rate,amount,date\n"))
	if err == nil {
		t.Error("expected error for empty floorsheet")
	}
}

func TestWriteOutputs(t *testing.T) {
	res := runFixture(t)
	dir := filepath.Join(t.TempDir(), "out")
	if err := WriteOutputs(dir, res); err != nil {
		t.Fatalf("write outputs: %v", err)
	}
	for _, name := range []string{
		export.FlowsFile, export.StatsFile, export.AssessmentsFile, export.SignalsFile,
		export.PumpDumpFile, export.TopTradersFile, export.TurnoverFile, export.LargestFile,
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}

	// Signals written to disk reload identically.
	f, err := os.Open(filepath.Join(dir, export.SignalsFile))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	signals, err := export.ReadSignals(f)
	if err != nil {
		t.Fatalf("read signals: %v", err)
	}
	if len(signals) != len(res.Signals) {
		t.Errorf("reloaded %d signals, want %d", len(signals), len(res.Signals))
	}
}

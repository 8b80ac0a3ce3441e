package pumpdump

import (
	"testing"
	"time"

	"github.com/nepselab/floorwatch/internal/core"
	"github.com/nepselab/floorwatch/internal/floorsheet"
)

func day(s string) time.Time {
	t, err := time.Parse(core.DateFormat, s)
	if err != nil {
		panic(err)
	}
	return core.Day(t)
}

func trade(symbol, date string, qty, rate float64) core.TradeRecord {
	return core.TradeRecord{
		Symbol:   symbol,
		Date:     day(date),
		Buyer:    1,
		Seller:   2,
		Quantity: qty,
		Rate:     rate,
		Amount:   qty * rate,
	}
}

func defaultConfig() Config {
	return Config{VolumeRatio: 2.0, PriceRatio: 1.1}
}

func TestDetect_FlagsCombinedSpike(t *testing.T) {
	records := []core.TradeRecord{
		trade("ABC", "2024-01-02", 100, 10),
		trade("ABC", "2024-01-03", 300, 12), // 3x volume, 1.2x price
	}
	stats := Detect(floorsheet.GroupByDay(records), defaultConfig())

	if len(stats) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(stats))
	}
	if stats[0].Flagged {
		t.Error("first day has no baseline and must not flag")
	}
	d2 := stats[1]
	if !d2.VolumeSpike || !d2.PriceJump || !d2.Flagged {
		t.Errorf("spike day should flag: %+v", d2)
	}
}

func TestDetect_VolumeAloneIsNotEnough(t *testing.T) {
	records := []core.TradeRecord{
		trade("ABC", "2024-01-02", 100, 10),
		trade("ABC", "2024-01-03", 300, 10), // volume spike, flat price
	}
	stats := Detect(floorsheet.GroupByDay(records), defaultConfig())

	d2 := stats[1]
	if !d2.VolumeSpike {
		t.Error("expected volume spike")
	}
	if d2.PriceJump || d2.Flagged {
		t.Errorf("flat price must not flag: %+v", d2)
	}
}

func TestDetect_BaselineDoesNotCrossSymbols(t *testing.T) {
	records := []core.TradeRecord{
		trade("ABC", "2024-01-02", 10, 1),
		trade("XYZ", "2024-01-03", 1000, 100),
	}
	stats := Detect(floorsheet.GroupByDay(records), defaultConfig())

	for _, s := range stats {
		if s.Flagged || s.VolumeSpike || s.PriceJump {
			t.Errorf("%s: first day of a symbol must not flag: %+v", s.Symbol, s)
		}
	}
}

func TestDetect_Profile(t *testing.T) {
	records := []core.TradeRecord{
		trade("ABC", "2024-01-02", 100, 10),
		{
			Symbol: "ABC", Date: day("2024-01-02"),
			Buyer: 3, Seller: 4, Quantity: 50, Rate: 20, Amount: 1000,
		},
	}
	stats := Detect(floorsheet.GroupByDay(records), defaultConfig())

	s := stats[0]
	if s.TotalQty != 150 || s.AvgRate != 15 {
		t.Errorf("profile wrong: %+v", s)
	}
	if s.MaxRate != 20 || s.MinRate != 10 {
		t.Errorf("rate extremes wrong: %+v", s)
	}
	if s.UniqueBuyers != 2 || s.UniqueSellers != 2 {
		t.Errorf("unique counterparty counts wrong: %+v", s)
	}
}

// Package pumpdump flags symbol-days whose volume and price both jump
// relative to the previous trading day, the leading edge of a
// pump-and-dump pattern.
package pumpdump

import (
	"math"
	"time"

	"github.com/nepselab/floorwatch/internal/core"
	"github.com/nepselab/floorwatch/internal/floorsheet"
)

// Config tunes the spike thresholds.
type Config struct {
	// VolumeRatio flags a day whose total quantity exceeds the previous
	// day's by this factor.
	VolumeRatio float64
	// PriceRatio flags a day whose average rate exceeds the previous
	// day's by this factor.
	PriceRatio float64
}

// DayStats is one symbol-day's activity profile with the spike flags.
type DayStats struct {
	Symbol        string
	Date          time.Time
	TotalQty      float64
	TotalAmount   float64
	AvgRate       float64
	MaxRate       float64
	MinRate       float64
	UniqueBuyers  int
	UniqueSellers int
	VolumeSpike   bool
	PriceJump     bool
	Flagged       bool
}

// Detect profiles every symbol-day and flags those where both volume
// and price spiked against the previous day. A symbol's first observed
// day has no baseline and never flags.
func Detect(groups []floorsheet.DayGroup, cfg Config) []DayStats {
	stats := make([]DayStats, 0, len(groups))

	for i, g := range groups {
		s := profile(g)

		if i > 0 && groups[i-1].Key.Symbol == g.Key.Symbol {
			prev := stats[i-1]
			if !core.IsNull(prev.TotalQty) && prev.TotalQty > 0 {
				s.VolumeSpike = s.TotalQty > cfg.VolumeRatio*prev.TotalQty
			}
			if !core.IsNull(prev.AvgRate) && !core.IsNull(s.AvgRate) && prev.AvgRate > 0 {
				s.PriceJump = s.AvgRate > cfg.PriceRatio*prev.AvgRate
			}
			s.Flagged = s.VolumeSpike && s.PriceJump
		}
		stats = append(stats, s)
	}
	return stats
}

func profile(g floorsheet.DayGroup) DayStats {
	s := DayStats{
		Symbol:  g.Key.Symbol,
		Date:    g.Key.Date,
		AvgRate: core.Null(),
		MaxRate: core.Null(),
		MinRate: core.Null(),
	}

	buyers := make(map[int]bool)
	sellers := make(map[int]bool)
	var rateSum float64
	var rateCount int
	for _, r := range g.Records {
		buyers[r.Buyer] = true
		sellers[r.Seller] = true
		if !core.IsNull(r.Quantity) {
			s.TotalQty += r.Quantity
		}
		if !core.IsNull(r.Amount) {
			s.TotalAmount += r.Amount
		}
		if !core.IsNull(r.Rate) {
			rateSum += r.Rate
			rateCount++
			if core.IsNull(s.MaxRate) {
				s.MaxRate = r.Rate
				s.MinRate = r.Rate
			} else {
				s.MaxRate = math.Max(s.MaxRate, r.Rate)
				s.MinRate = math.Min(s.MinRate, r.Rate)
			}
		}
	}
	if rateCount > 0 {
		s.AvgRate = rateSum / float64(rateCount)
	}
	s.UniqueBuyers = len(buyers)
	s.UniqueSellers = len(sellers)
	return s
}

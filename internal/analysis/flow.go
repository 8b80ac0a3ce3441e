package analysis

import (
	"sort"

	"github.com/nepselab/floorwatch/internal/core"
	"github.com/nepselab/floorwatch/internal/floorsheet"
)

// AggregateFlows computes one BrokerDayFlow per distinct broker active
// on each symbol-day. Buy-side and sell-side totals are outer-joined:
// a broker active on only one side appears with zeros on the other.
//
// DominanceRatio is signed net amount over the day's turnover; a
// zero-turnover day yields a null ratio instead of dividing by zero.
func AggregateFlows(groups []floorsheet.DayGroup, dominanceThreshold float64) []core.BrokerDayFlow {
	var flows []core.BrokerDayFlow

	for _, g := range groups {
		type sides struct {
			buyQty, buyAmt, sellQty, sellAmt float64
		}
		byBroker := make(map[int]*sides)
		side := func(broker int) *sides {
			s, ok := byBroker[broker]
			if !ok {
				s = &sides{}
				byBroker[broker] = s
			}
			return s
		}

		var turnover float64
		for _, r := range g.Records {
			b := side(r.Buyer)
			s := side(r.Seller)
			if !core.IsNull(r.Quantity) {
				b.buyQty += r.Quantity
				s.sellQty += r.Quantity
			}
			if !core.IsNull(r.Amount) {
				b.buyAmt += r.Amount
				s.sellAmt += r.Amount
				turnover += r.Amount
			}
		}

		brokers := make([]int, 0, len(byBroker))
		for b := range byBroker {
			brokers = append(brokers, b)
		}
		sort.Ints(brokers)

		for _, b := range brokers {
			s := byBroker[b]
			flow := core.BrokerDayFlow{
				Symbol:        g.Key.Symbol,
				Date:          g.Key.Date,
				Broker:        b,
				BuyQty:        s.buyQty,
				BuyAmount:     s.buyAmt,
				SellQty:       s.sellQty,
				SellAmount:    s.sellAmt,
				NetAmount:     s.buyAmt - s.sellAmt,
				TotalTurnover: turnover,
			}
			if turnover > 0 {
				flow.DominanceRatio = flow.NetAmount / turnover
				if flow.DominanceRatio > dominanceThreshold || flow.DominanceRatio < -dominanceThreshold {
					flow.Dominant = true
				}
			} else {
				flow.DominanceRatio = core.Null()
			}
			flows = append(flows, flow)
		}
	}
	return flows
}

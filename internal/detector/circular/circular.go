// Package circular flags brokers that sit on a directed trading cycle
// within one symbol-day, the classic wash-trading shape: A sells to B,
// B sells to C, C sells back to A.
package circular

import (
	"sort"

	"github.com/nepselab/floorwatch/internal/core"
)

// Config tunes cycle detection.
type Config struct {
	// MaxCycles caps enumeration. Elementary-cycle counting is
	// exponential in the worst case; floorsheet day graphs are sparse,
	// but a pathological day must degrade instead of hanging.
	MaxCycles int
	// CountSelfTrades treats a broker buying from itself as a
	// length-one cycle.
	CountSelfTrades bool
}

// Result is the outcome for one symbol-day.
type Result struct {
	// Flagged holds every broker that lies on at least one cycle.
	Flagged map[int]bool
	// Cycles is the number of elementary cycles found.
	Cycles int
	// Truncated reports that MaxCycles was reached and Flagged is a
	// partial (still sound, possibly incomplete) answer.
	Truncated bool
}

// Detect builds the buyer-to-seller graph of one symbol-day's trades and
// enumerates its elementary cycles. Multi-edges collapse; edge
// direction follows the money's counterparty flow (buyer to seller).
func Detect(records []core.TradeRecord, cfg Config) Result {
	res := Result{Flagged: make(map[int]bool)}
	if cfg.MaxCycles < 1 {
		cfg.MaxCycles = 1
	}

	adj := make(map[int]map[int]bool)
	selfLoops := make(map[int]bool)
	for _, r := range records {
		if r.Buyer == r.Seller {
			selfLoops[r.Buyer] = true
			continue
		}
		if adj[r.Buyer] == nil {
			adj[r.Buyer] = make(map[int]bool)
		}
		adj[r.Buyer][r.Seller] = true
	}

	if cfg.CountSelfTrades {
		for b := range selfLoops {
			if res.Cycles >= cfg.MaxCycles {
				res.Truncated = true
				break
			}
			res.Cycles++
			res.Flagged[b] = true
		}
	}

	// Sorted successor lists make enumeration deterministic.
	nodes := make([]int, 0, len(adj))
	succ := make(map[int][]int, len(adj))
	for v, ws := range adj {
		nodes = append(nodes, v)
		list := make([]int, 0, len(ws))
		for w := range ws {
			list = append(list, w)
		}
		sort.Ints(list)
		succ[v] = list
	}
	sort.Ints(nodes)

	e := &enumerator{
		succ:   succ,
		max:    cfg.MaxCycles,
		result: &res,
		onPath: make(map[int]bool),
	}
	for _, s := range nodes {
		if res.Truncated {
			break
		}
		e.root = s
		e.onPath[s] = true
		e.path = e.path[:0]
		e.path = append(e.path, s)
		e.search(s)
		delete(e.onPath, s)
	}
	return res
}

// enumerator finds every elementary cycle exactly once by rooting each
// cycle at its smallest node and only walking nodes not below the root.
type enumerator struct {
	succ   map[int][]int
	max    int
	result *Result
	root   int
	onPath map[int]bool
	path   []int
}

func (e *enumerator) search(v int) {
	for _, w := range e.succ[v] {
		if e.result.Truncated {
			return
		}
		if w < e.root {
			continue
		}
		if w == e.root {
			// Closed a cycle: everything on the path is implicated.
			if e.result.Cycles >= e.max {
				e.result.Truncated = true
				return
			}
			e.result.Cycles++
			for _, n := range e.path {
				e.result.Flagged[n] = true
			}
			continue
		}
		if e.onPath[w] {
			continue
		}
		e.onPath[w] = true
		e.path = append(e.path, w)
		e.search(w)
		e.path = e.path[:len(e.path)-1]
		delete(e.onPath, w)
	}
}

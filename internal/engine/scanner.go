package engine

import (
	"fmt"
	"sort"

	"refine-arb/internal/market"
	"refine-arb/internal/refdata"
)

// Scanner walks a day of order-book snapshots across all source types and
// collects profitable refine-arbitrage opportunities. The scan is fully
// sequential and deterministic: every attempt works on its own copy of the
// relevant order lists, so two scans over the same input yield the same
// result.
type Scanner struct {
	Sources []refdata.SourceType
	Checker RangeChecker
	Params  Params
}

// NewScanner creates a Scanner over the given source types.
func NewScanner(sources []refdata.SourceType, checker RangeChecker, params Params) *Scanner {
	return &Scanner{
		Sources: sources,
		Checker: checker,
		Params:  params,
	}
}

// Scan iterates snapshots in chronological order and all source types within
// each, invoking the attempter for every pair. progress may be nil.
func (s *Scanner) Scan(snaps []market.Snapshot, progress func(string)) []Opportunity {
	if progress == nil {
		progress = func(string) {}
	}

	sorted := make([]market.Snapshot, len(snaps))
	copy(sorted, snaps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	var results []Opportunity
	for i := range sorted {
		snap := &sorted[i]
		for _, src := range s.Sources {
			if opp := Attempt(snap, src, s.Params, s.Checker); opp != nil {
				results = append(results, *opp)
			}
		}
		progress(fmt.Sprintf("%s: %d snapshots done, %d opportunities",
			snap.Time.Format("15:04"), i+1, len(results)))
	}
	return results
}

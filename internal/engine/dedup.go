package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Deduplicate collapses time-adjacent opportunities per source type: an
// opportunity within window of the previously retained one for the same type
// is assumed to be the same underlying opportunity seen again and is
// dropped. The first of each new run is retained.
func Deduplicate(opps []Opportunity, window time.Duration) []Opportunity {
	sorted := make([]Opportunity, len(opps))
	copy(sorted, opps)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Time.Equal(sorted[j].Time) {
			return sorted[i].Time.Before(sorted[j].Time)
		}
		return sorted[i].TypeID < sorted[j].TypeID
	})

	lastKept := make(map[int32]time.Time)
	var out []Opportunity
	for _, o := range sorted {
		if last, ok := lastKept[o.TypeID]; ok && o.Time.Sub(last) <= window {
			continue
		}
		lastKept[o.TypeID] = o.Time
		out = append(out, o)
	}
	return out
}

// Totals aggregates a set of opportunities.
type Totals struct {
	Count  int
	Gross  decimal.Decimal
	Cost   decimal.Decimal
	Profit decimal.Decimal
	Return float64 // Profit / Cost; zero when Cost is zero
}

// Aggregate sums gross, cost and profit over opportunities. The aggregate
// return is left at zero when total cost is zero.
func Aggregate(opps []Opportunity) Totals {
	t := Totals{Gross: decimal.Zero, Cost: decimal.Zero, Profit: decimal.Zero}
	for _, o := range opps {
		t.Count++
		t.Gross = t.Gross.Add(o.Gross)
		t.Cost = t.Cost.Add(o.Cost)
		t.Profit = t.Profit.Add(o.Profit)
	}
	if t.Cost.IsPositive() {
		t.Return, _ = t.Profit.Div(t.Cost).Float64()
	}
	return t
}

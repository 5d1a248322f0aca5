package engine

import (
	"refine-arb/internal/graph"
	"refine-arb/internal/market"
)

// fillVolume greedily consumes the required volume from orders, which must
// already be filtered to one side/type and sorted best-price-first. Orders
// whose minimum volume exceeds the remaining requirement are skipped.
//
// The fill is all-or-nothing: if the book cannot cover the full volume, nil
// is returned and no order is touched. On success each consumed order's
// volume is decremented in place, so repeated calls within one attempt see a
// progressively thinner book.
func fillVolume(orders []market.Order, required int64) []Fill {
	return fillMatching(orders, required, nil)
}

// fillVolumeReachable is the sell-side variant: each candidate buy order must
// pass the range check relative to the seller's station. Orders that are
// unreachable or whose location cannot be resolved are skipped, not fatal.
func fillVolumeReachable(orders []market.Order, required int64, sellerLocationID int64, rc RangeChecker) []Fill {
	return fillMatching(orders, required, func(o *market.Order) bool {
		return rc.Reach(sellerLocationID, o.LocationID, o.Range) == graph.Reachable
	})
}

func fillMatching(orders []market.Order, required int64, usable func(*market.Order) bool) []Fill {
	type slice struct {
		idx    int
		amount int64
	}

	remaining := required
	var plan []slice
	for i := range orders {
		if remaining == 0 {
			break
		}
		o := &orders[i]
		if o.Volume <= 0 || remaining < o.MinVolume {
			continue
		}
		if usable != nil && !usable(o) {
			continue
		}
		amount := remaining
		if o.Volume < amount {
			amount = o.Volume
		}
		plan = append(plan, slice{i, amount})
		remaining -= amount
	}
	if remaining > 0 {
		return nil // partial fills are never recorded
	}

	fills := make([]Fill, 0, len(plan))
	for _, s := range plan {
		orders[s.idx].Volume -= s.amount
		fills = append(fills, Fill{Price: orders[s.idx].Price, Volume: s.amount, IsMarket: true})
	}
	return fills
}

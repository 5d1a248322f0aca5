package engine

import (
	"github.com/shopspring/decimal"

	"refine-arb/internal/graph"
	"refine-arb/internal/market"
)

// Quote holds the best bid/ask for a material at a station within one
// snapshot. The zero Quote is the neutral record: no usable spread.
type Quote struct {
	BestAsk      decimal.Decimal
	BestBid      decimal.Decimal
	SpreadReturn decimal.Decimal // (ask - bid) / bid
}

// EvaluateSpread computes the best ask (lowest sell at the exact station) and
// best bid (highest-priced buy order whose range covers the station) for a
// material. Buy orders failing the range check are skipped silently. If
// either side is missing the neutral Quote is returned.
func EvaluateSpread(snap *market.Snapshot, typeID int32, locationID int64, rc RangeChecker) Quote {
	sells := SellOrdersAt(snap, typeID, locationID)
	if len(sells) == 0 {
		return Quote{}
	}
	bestAsk := sells[0].Price

	var bestBid decimal.Decimal
	found := false
	for _, o := range BuyOrdersFor(snap, typeID) {
		if rc.Reach(locationID, o.LocationID, o.Range) == graph.Reachable {
			bestBid = o.Price
			found = true
			break
		}
	}
	if !found || !bestBid.IsPositive() {
		return Quote{}
	}

	return Quote{
		BestAsk:      bestAsk,
		BestBid:      bestBid,
		SpreadReturn: bestAsk.Sub(bestBid).Div(bestBid),
	}
}

package engine

import (
	"sort"

	"refine-arb/internal/market"
)

// SellOrdersAt returns the snapshot's sell orders for a type at one station,
// cheapest first. The result is an owned copy: fills decrement its volumes
// without ever touching the snapshot.
func SellOrdersAt(snap *market.Snapshot, typeID int32, locationID int64) []market.Order {
	var out []market.Order
	for _, o := range snap.Orders {
		if o.IsBuy || o.TypeID != typeID || o.LocationID != locationID {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Price.Cmp(out[j].Price); c != 0 {
			return c < 0
		}
		return out[i].OrderID < out[j].OrderID
	})
	return out
}

// BuyOrdersFor returns the snapshot's buy orders for a type across the whole
// region, highest price first. The result is an owned copy.
func BuyOrdersFor(snap *market.Snapshot, typeID int32) []market.Order {
	var out []market.Order
	for _, o := range snap.Orders {
		if !o.IsBuy || o.TypeID != typeID {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Price.Cmp(out[j].Price); c != 0 {
			return c > 0
		}
		return out[i].OrderID < out[j].OrderID
	})
	return out
}

package engine

import (
	"github.com/shopspring/decimal"

	"refine-arb/internal/market"
	"refine-arb/internal/refdata"
)

// Attempt simulates repeated buy-refine-sell rounds for one source type
// against one snapshot. Each round buys one portion of the source at the
// configured station, refines it at the configured efficiency, and fully
// liquidates every refined material, choosing limit or market execution per
// material from its precomputed spread return. Only rounds that keep the
// cumulative gross above the cumulative cost are committed.
//
// Returns nil when no round is profitable. All book state is private to the
// call: the snapshot is never mutated.
func Attempt(snap *market.Snapshot, src refdata.SourceType, p Params, rc RangeChecker) *Opportunity {
	sellBook := SellOrdersAt(snap, src.TypeID, p.StationID)
	if len(sellBook) == 0 {
		return nil
	}

	buyBooks := make(map[int32][]market.Order, len(src.Materials))
	quotes := make(map[int32]Quote, len(src.Materials))
	limitBudget := make(map[int32]int64, len(src.Materials))
	for _, y := range src.Materials {
		buyBooks[y.TypeID] = BuyOrdersFor(snap, y.TypeID)
		quotes[y.TypeID] = EvaluateSpread(snap, y.TypeID, p.StationID, rc)
		limitBudget[y.TypeID] = int64(float64(p.DayVolumes[y.TypeID]) * p.VolumeLimit)
	}

	threshold := p.LimitThreshold()
	marketMult := decimal.NewFromInt(1).Sub(p.TaxRate)
	limitMult := marketMult.Sub(p.BrokerFee)

	gross := decimal.Zero
	cost := decimal.Zero
	var buys []Fill
	sells := make(map[int32][]Fill)
	committed := false

	for {
		roundBuys := fillVolume(sellBook, src.PortionSize)
		if roundBuys == nil {
			break // source liquidity exhausted
		}
		roundCost := fillValue(roundBuys)
		roundGross := decimal.Zero
		roundSells := make(map[int32][]Fill, len(src.Materials))
		liquidated := true

		for _, y := range src.Materials {
			sellVolume := int64(float64(y.Quantity) * p.Efficiency)
			if sellVolume <= 0 {
				continue
			}

			q := quotes[y.TypeID]
			var fills []Fill
			var mult decimal.Decimal
			if q.SpreadReturn.GreaterThan(threshold) {
				// Limit liquidation at the ask, capped by the remaining
				// share of the material's daily traded volume.
				vol := sellVolume
				if budget := limitBudget[y.TypeID]; vol > budget {
					vol = budget
				}
				if vol <= 0 {
					liquidated = false
					break
				}
				limitBudget[y.TypeID] -= vol
				fills = []Fill{{Price: q.BestAsk, Volume: vol}}
				mult = limitMult
			} else {
				fills = fillVolumeReachable(buyBooks[y.TypeID], sellVolume, p.StationID, rc)
				if fills == nil {
					liquidated = false
					break
				}
				mult = marketMult
			}

			sold := fillValue(fills)
			roundGross = roundGross.Add(sold.Mul(mult))
			// Refinement cost approximated from the realized sale value.
			roundCost = roundCost.Add(sold.Mul(p.StationTax))
			roundSells[y.TypeID] = append(roundSells[y.TypeID], fills...)
		}

		if !liquidated {
			break // a material could not be fully sold: round abandoned
		}
		if !gross.Add(roundGross).GreaterThan(cost.Add(roundCost)) {
			break // this round would erase the profit: do not commit
		}

		gross = gross.Add(roundGross)
		cost = cost.Add(roundCost)
		buys = append(buys, roundBuys...)
		for tid, f := range roundSells {
			sells[tid] = append(sells[tid], f...)
		}
		committed = true
	}

	if !committed {
		return nil
	}

	profit := gross.Sub(cost)
	margin := 0.0
	if cost.IsPositive() {
		margin, _ = profit.Div(cost).Float64()
	}

	compressed := make(map[int32][]CompressedOrder, len(sells))
	for tid, f := range sells {
		compressed[tid] = Compress(f)
	}
	return &Opportunity{
		Time:     snap.Time,
		TypeID:   src.TypeID,
		TypeName: src.Name,
		Gross:    gross,
		Cost:     cost,
		Profit:   profit,
		Margin:   margin,
		Buys:     Compress(buys),
		Sells:    compressed,
	}
}

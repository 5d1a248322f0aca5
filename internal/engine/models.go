package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"refine-arb/internal/graph"
)

// RangeChecker reports whether a buy order's declared range covers the
// seller's station. Implemented by refdata.RangeChecker.
type RangeChecker interface {
	Reach(sellerLocationID, buyerLocationID int64, orderRange string) graph.Reachability
}

// Params holds the strategy parameters threaded through every attempt.
// Immutable for the whole scan.
type Params struct {
	StationID   int64
	Efficiency  float64         // realized refine yield fraction
	TaxRate     decimal.Decimal // sales tax fraction
	BrokerFee   decimal.Decimal // broker fee fraction on limit orders
	StationTax  decimal.Decimal // refinery station tax fraction
	VolumeLimit float64         // fraction of daily volume usable for limit orders
	DayVolumes  map[int32]int64 // materialTypeID -> traded volume on the backtest day
}

// LimitThreshold is the minimum spread return at which a limit-order sale
// beats an immediate market sale: brokerFee / (1 - taxRate - brokerFee).
func (p Params) LimitThreshold() decimal.Decimal {
	den := decimal.NewFromInt(1).Sub(p.TaxRate).Sub(p.BrokerFee)
	if !den.IsPositive() {
		// Fees consume the whole sale; never prefer limit orders.
		return decimal.New(1, 9)
	}
	return p.BrokerFee.Div(den)
}

// Fill is one price level consumed while simulating an order execution.
// IsMarket is false for limit-order placements at the ask.
type Fill struct {
	Price    decimal.Decimal
	Volume   int64
	IsMarket bool
}

// CompressedOrder is a fill list entry grouped by price for reporting.
type CompressedOrder struct {
	Price    decimal.Decimal
	Volume   int64
	IsMarket bool
}

// Opportunity is the committed result of one attempt: all profitable rounds
// of buying a source type and liquidating its refined materials. Never
// mutated after creation. Profit = Gross - Cost and is strictly positive.
type Opportunity struct {
	Time     time.Time
	TypeID   int32
	TypeName string
	Gross    decimal.Decimal
	Cost     decimal.Decimal
	Profit   decimal.Decimal
	Margin   float64 // Profit / Cost
	Buys     []CompressedOrder
	Sells    map[int32][]CompressedOrder // materialTypeID -> fills
}

// Compress groups fills by price and execution mode, preserving the order in
// which prices were first consumed.
func Compress(fills []Fill) []CompressedOrder {
	type key struct {
		price    string
		isMarket bool
	}
	idx := make(map[key]int)
	var out []CompressedOrder
	for _, f := range fills {
		k := key{f.Price.String(), f.IsMarket}
		if i, ok := idx[k]; ok {
			out[i].Volume += f.Volume
			continue
		}
		idx[k] = len(out)
		out = append(out, CompressedOrder{Price: f.Price, Volume: f.Volume, IsMarket: f.IsMarket})
	}
	return out
}

func fillValue(fills []Fill) decimal.Decimal {
	v := decimal.Zero
	for _, f := range fills {
		v = v.Add(f.Price.Mul(decimal.NewFromInt(f.Volume)))
	}
	return v
}

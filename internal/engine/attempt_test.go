package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"refine-arb/internal/market"
	"refine-arb/internal/refdata"
)

func scrapSource() refdata.SourceType {
	return refdata.SourceType{
		TypeID:      1000,
		Name:        "Scrap Metal",
		PortionSize: 100,
		Materials:   []refdata.MaterialYield{{TypeID: 34, Quantity: 100}},
	}
}

func testParams(dayVolumes map[int32]int64) Params {
	return Params{
		StationID:   testStation,
		Efficiency:  0.7,
		TaxRate:     decimal.NewFromFloat(0.01),
		BrokerFee:   decimal.NewFromFloat(0.025),
		StationTax:  decimal.NewFromFloat(0.05),
		VolumeLimit: 0.1,
		DayVolumes:  dayVolumes,
	}
}

func sourceAsk(id int64, price float64, volume int64) market.Order {
	o := sellOrder(id, price, volume, 1)
	o.TypeID = 1000
	o.LocationID = testStation
	return o
}

func TestAttempt_MarketLiquidation(t *testing.T) {
	now := time.Now()
	// No material asks at the station, so the spread is neutral and every
	// round liquidates against the regional buy book at market.
	snap := snapshotAt(now,
		sourceAsk(1, 1, 200),
		buyOrder(2, 34, 10, 1000),
	)

	opp := Attempt(&snap, scrapSource(), testParams(nil), allReachable{})
	if opp == nil {
		t.Fatalf("expected an opportunity")
	}

	// Two rounds: each buys 100 units at 1, sells 70 units at 10.
	// gross = 2 * 700 * 0.99 = 1386; cost = 2 * (100 + 700*0.05) = 270.
	if !opp.Gross.Equal(decimal.NewFromFloat(1386)) {
		t.Fatalf("gross = %s, want 1386", opp.Gross)
	}
	if !opp.Cost.Equal(decimal.NewFromInt(270)) {
		t.Fatalf("cost = %s, want 270", opp.Cost)
	}
	if !opp.Profit.Equal(opp.Gross.Sub(opp.Cost)) {
		t.Fatalf("profit %s != gross-cost %s", opp.Profit, opp.Gross.Sub(opp.Cost))
	}

	if len(opp.Buys) != 1 || opp.Buys[0].Volume != 200 {
		t.Fatalf("unexpected buys %+v", opp.Buys)
	}
	sells := opp.Sells[34]
	if len(sells) != 1 || sells[0].Volume != 140 || !sells[0].IsMarket {
		t.Fatalf("unexpected sells %+v", sells)
	}

	// The snapshot itself must be untouched.
	for _, o := range snap.Orders {
		switch o.OrderID {
		case 1:
			if o.Volume != 200 {
				t.Fatalf("snapshot sell volume mutated to %d", o.Volume)
			}
		case 2:
			if o.Volume != 1000 {
				t.Fatalf("snapshot buy volume mutated to %d", o.Volume)
			}
		}
	}
}

func TestAttempt_Unprofitable(t *testing.T) {
	now := time.Now()
	// Materials fetch less than the source costs; no round may commit.
	snap := snapshotAt(now,
		sourceAsk(1, 1, 200),
		buyOrder(2, 34, 0.5, 1000),
	)

	if opp := Attempt(&snap, scrapSource(), testParams(nil), allReachable{}); opp != nil {
		t.Fatalf("expected nil for unprofitable setup, got %+v", opp)
	}
}

func TestAttempt_StopsWhenSourceRunsOut(t *testing.T) {
	now := time.Now()
	// 250 source units cover only two full 100-unit portions.
	snap := snapshotAt(now,
		sourceAsk(1, 1, 250),
		buyOrder(2, 34, 10, 100000),
	)

	opp := Attempt(&snap, scrapSource(), testParams(nil), allReachable{})
	if opp == nil {
		t.Fatalf("expected an opportunity")
	}
	if opp.Buys[0].Volume != 200 {
		t.Fatalf("bought %d units, want 200", opp.Buys[0].Volume)
	}
}

func TestAttempt_LimitLiquidation(t *testing.T) {
	now := time.Now()
	// Material spread: ask 105, bid 100 -> 5% return, above the ~2.59%
	// threshold, so liquidation places limit orders at the ask.
	snap := snapshotAt(now,
		sourceAsk(1, 1, 1000),
		askOrder(2, 34, 105, 500),
		buyOrder(3, 34, 100, 100000),
	)

	// Daily volume 1000 at a 0.1 cap yields a 100-unit limit budget:
	// round one sells 70, round two is capped at 30, round three fails.
	opp := Attempt(&snap, scrapSource(), testParams(map[int32]int64{34: 1000}), allReachable{})
	if opp == nil {
		t.Fatalf("expected an opportunity")
	}

	sells := opp.Sells[34]
	if len(sells) != 1 {
		t.Fatalf("expected one compressed sell level, got %+v", sells)
	}
	if sells[0].Volume != 100 {
		t.Fatalf("limit volume = %d, want budget-capped 100", sells[0].Volume)
	}
	if sells[0].IsMarket {
		t.Fatalf("limit fill flagged as market")
	}
	if !sells[0].Price.Equal(decimal.NewFromInt(105)) {
		t.Fatalf("limit price = %s, want ask 105", sells[0].Price)
	}
	if opp.Buys[0].Volume != 200 {
		t.Fatalf("bought %d units, want 200 across two committed rounds", opp.Buys[0].Volume)
	}

	// gross = (7350 + 3150) * 0.965 = 10132.5; cost = 200 + 10500*0.05 = 725.
	if !opp.Gross.Equal(decimal.NewFromFloat(10132.5)) {
		t.Fatalf("gross = %s, want 10132.5", opp.Gross)
	}
	if !opp.Cost.Equal(decimal.NewFromInt(725)) {
		t.Fatalf("cost = %s, want 725", opp.Cost)
	}
}

func TestAttempt_NoSourceOrders(t *testing.T) {
	now := time.Now()
	snap := snapshotAt(now, buyOrder(1, 34, 10, 1000))

	if opp := Attempt(&snap, scrapSource(), testParams(nil), allReachable{}); opp != nil {
		t.Fatalf("expected nil with no source orders, got %+v", opp)
	}
}

func TestAttempt_UnreachableBuyersAbort(t *testing.T) {
	now := time.Now()
	snap := snapshotAt(now,
		sourceAsk(1, 1, 200),
		buyOrder(2, 34, 10, 1000),
	)

	// Source orders sit at the station and fill without a range check, but
	// every material buyer is out of range, so no round liquidates.
	if opp := Attempt(&snap, scrapSource(), testParams(nil), noneReachable{}); opp != nil {
		t.Fatalf("expected nil when buyers are unreachable, got %+v", opp)
	}
}

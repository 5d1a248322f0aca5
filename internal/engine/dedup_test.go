package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func opp(typeID int32, at time.Time, profit float64) Opportunity {
	p := decimal.NewFromFloat(profit)
	return Opportunity{
		Time:   at,
		TypeID: typeID,
		Gross:  p.Mul(decimal.NewFromInt(2)),
		Cost:   p,
		Profit: p,
	}
}

func TestDeduplicate(t *testing.T) {
	t0 := time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC)
	window := 5 * time.Minute

	opps := []Opportunity{
		opp(1000, t0, 100),
		opp(1000, t0.Add(3*time.Minute), 100),  // within window of t0: dropped
		opp(1000, t0.Add(6*time.Minute), 100),  // 6m after last retained: kept
		opp(1000, t0.Add(11*time.Minute), 100), // exactly at window edge: dropped
		opp(2000, t0.Add(time.Minute), 50),     // other type: independent run
	}

	out := Deduplicate(opps, window)
	if len(out) != 3 {
		t.Fatalf("expected 3 retained, got %d", len(out))
	}

	var kept1000 []time.Time
	for _, o := range out {
		if o.TypeID == 1000 {
			kept1000 = append(kept1000, o.Time)
		}
	}
	want := []time.Time{t0, t0.Add(6 * time.Minute)}
	if len(kept1000) != len(want) {
		t.Fatalf("type 1000 retained %d times, want %d", len(kept1000), len(want))
	}
	for i := range want {
		if !kept1000[i].Equal(want[i]) {
			t.Fatalf("retained[%d] = %v, want %v", i, kept1000[i], want[i])
		}
	}
}

func TestDeduplicate_UnsortedInput(t *testing.T) {
	t0 := time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC)
	opps := []Opportunity{
		opp(1000, t0.Add(3*time.Minute), 100),
		opp(1000, t0, 100),
	}

	out := Deduplicate(opps, 5*time.Minute)
	if len(out) != 1 {
		t.Fatalf("expected 1 retained, got %d", len(out))
	}
	if !out[0].Time.Equal(t0) {
		t.Fatalf("retained %v, want earliest %v", out[0].Time, t0)
	}
}

func TestDeduplicate_ZeroWindow(t *testing.T) {
	t0 := time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC)
	opps := []Opportunity{
		opp(1000, t0, 100),
		opp(1000, t0.Add(time.Second), 100),
	}
	if out := Deduplicate(opps, 0); len(out) != 2 {
		t.Fatalf("zero window must retain everything, got %d", len(out))
	}
}

func TestAggregate(t *testing.T) {
	t0 := time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC)
	opps := []Opportunity{
		opp(1000, t0, 100),
		opp(2000, t0, 50),
	}

	totals := Aggregate(opps)
	if totals.Count != 2 {
		t.Fatalf("count = %d, want 2", totals.Count)
	}
	if !totals.Profit.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("profit = %s, want 150", totals.Profit)
	}
	if !totals.Gross.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("gross = %s, want 300", totals.Gross)
	}
	if totals.Return != 1.0 {
		t.Fatalf("return = %v, want 1.0", totals.Return)
	}
}

func TestAggregate_Empty(t *testing.T) {
	totals := Aggregate(nil)
	if totals.Count != 0 || !totals.Profit.IsZero() || totals.Return != 0 {
		t.Fatalf("unexpected totals for empty input: %+v", totals)
	}
}

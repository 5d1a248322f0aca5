package refdata

import (
	"strconv"

	"refine-arb/internal/graph"
)

// playerStructureThreshold: location IDs at or above this are player-owned
// structures, which the SDE cannot resolve.
const playerStructureThreshold = 1_000_000_000

// Buy orders never reach further than 40 jumps.
const maxOrderJumps = 40

// RangeChecker answers whether a buy order's declared range covers a seller's
// station. Jump distances from each seller system are computed once via BFS
// and cached; the core scan is sequential, so no locking is needed.
type RangeChecker struct {
	data      *Data
	distances map[int32]map[int32]int // sellerSystemID -> (systemID -> jumps)
}

// NewRangeChecker creates a RangeChecker over the loaded reference data.
func NewRangeChecker(d *Data) *RangeChecker {
	return &RangeChecker{
		data:      d,
		distances: make(map[int32]map[int32]int),
	}
}

// Reach reports whether a buy order at buyerLocationID with the given declared
// range can be filled from sellerLocationID.
func (rc *RangeChecker) Reach(sellerLocationID, buyerLocationID int64, orderRange string) graph.Reachability {
	seller, ok := rc.station(sellerLocationID)
	if !ok {
		return graph.Unresolvable
	}
	buyer, ok := rc.station(buyerLocationID)
	if !ok {
		return graph.Unresolvable
	}

	switch orderRange {
	case "station":
		if buyerLocationID == sellerLocationID {
			return graph.Reachable
		}
		return graph.Unreachable
	case "solarsystem":
		if buyer.SystemID == seller.SystemID {
			return graph.Reachable
		}
		return graph.Unreachable
	case "region":
		if rc.data.Universe.Region(buyer.SystemID) == rc.data.Universe.Region(seller.SystemID) {
			return graph.Reachable
		}
		return graph.Unreachable
	}

	jumps, err := strconv.Atoi(orderRange)
	if err != nil || jumps < 0 {
		return graph.Unresolvable
	}
	d, ok := rc.jumpsFrom(seller.SystemID)[buyer.SystemID]
	if !ok || d > jumps {
		return graph.Unreachable
	}
	return graph.Reachable
}

func (rc *RangeChecker) station(locationID int64) (*Station, bool) {
	if locationID >= playerStructureThreshold {
		return nil, false
	}
	st, ok := rc.data.Stations[locationID]
	return st, ok
}

func (rc *RangeChecker) jumpsFrom(systemID int32) map[int32]int {
	if d, ok := rc.distances[systemID]; ok {
		return d
	}
	d := rc.data.Universe.SystemsWithinRadius(systemID, maxOrderJumps)
	rc.distances[systemID] = d
	return d
}

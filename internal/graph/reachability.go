package graph

// Reachability is the outcome of checking whether a buy order's declared
// range covers a seller's location.
type Reachability int

const (
	// Reachable means the order can be filled from the seller's location.
	Reachable Reachability = iota
	// Unreachable means the order's range does not cover the seller.
	Unreachable
	// Unresolvable means one of the locations could not be resolved
	// (player-owned structures, unknown stations). Treated as not reachable
	// by callers, but kept distinct so it is never mistaken for a hard "no".
	Unresolvable
)

func (r Reachability) String() string {
	switch r {
	case Reachable:
		return "reachable"
	case Unreachable:
		return "unreachable"
	case Unresolvable:
		return "unresolvable"
	default:
		return "unknown"
	}
}

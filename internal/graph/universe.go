package graph

// Universe holds the adjacency list of solar systems connected by stargates,
// plus the mapping from system to region.
type Universe struct {
	// Adj maps systemID -> list of neighboring systemIDs
	Adj map[int32][]int32
	// SystemRegion maps systemID -> regionID
	SystemRegion map[int32]int32
}

// NewUniverse creates an empty Universe with initialized maps.
func NewUniverse() *Universe {
	return &Universe{
		Adj:          make(map[int32][]int32),
		SystemRegion: make(map[int32]int32),
	}
}

// AddGate adds a one-way stargate edge. SDE stargate records exist for both
// directions, so loading them all yields a bidirectional graph.
func (u *Universe) AddGate(fromSystem, toSystem int32) {
	u.Adj[fromSystem] = append(u.Adj[fromSystem], toSystem)
}

// SetRegion associates a system with a region.
func (u *Universe) SetRegion(systemID, regionID int32) {
	u.SystemRegion[systemID] = regionID
}

// Region returns the region a system belongs to, or 0 if unknown.
func (u *Universe) Region(systemID int32) int32 {
	return u.SystemRegion[systemID]
}

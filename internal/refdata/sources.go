package refdata

import "sort"

// SourceType is a refinable raw material (ore or ice) together with its
// refine yields per portion.
type SourceType struct {
	TypeID      int32
	Name        string
	PortionSize int64
	Materials   []MaterialYield
}

// SourceTypes returns all refinable types belonging to the given SDE groups,
// sorted by type ID so scan order is deterministic.
func (d *Data) SourceTypes(groupIDs []int32) []SourceType {
	allowed := make(map[int32]bool, len(groupIDs))
	for _, id := range groupIDs {
		allowed[id] = true
	}

	var out []SourceType
	for typeID, t := range d.Types {
		if !allowed[t.GroupID] {
			continue
		}
		yields := d.Materials[typeID]
		if len(yields) == 0 {
			continue
		}
		out = append(out, SourceType{
			TypeID:      typeID,
			Name:        t.Name,
			PortionSize: t.PortionSize,
			Materials:   yields,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].TypeID < out[j].TypeID })
	return out
}

// MaterialTypeIDs returns the union of refined material type IDs over all
// source types, sorted ascending.
func MaterialTypeIDs(sources []SourceType) []int32 {
	seen := make(map[int32]bool)
	for _, s := range sources {
		for _, y := range s.Materials {
			seen[y.TypeID] = true
		}
	}
	out := make([]int32, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

package refdata

import (
	"os"
	"path/filepath"
	"testing"
)

func writeJSONL(t *testing.T, dir, name string, lines ...string) {
	t.Helper()
	var body []byte
	for _, l := range lines {
		body = append(body, l...)
		body = append(body, '\n')
	}
	if err := os.WriteFile(filepath.Join(dir, name+".jsonl"), body, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadTypes_PortionSizeAndFilters(t *testing.T) {
	dir := t.TempDir()
	writeJSONL(t, dir, "types",
		`{"_key":1230,"name":{"en":"Veldspar"},"published":true,"marketGroupID":512,"groupID":450,"portionSize":100}`,
		`{"_key":34,"name":{"en":"Tritanium"},"published":true,"marketGroupID":1857,"groupID":18}`,
		`{"_key":999,"name":{"en":"Unpublished"},"published":false,"marketGroupID":1,"groupID":450,"portionSize":100}`,
		`{"_key":998,"name":{"en":"No Market"},"published":true,"groupID":450,"portionSize":100}`,
		`this line is not json`,
	)

	d := newData()
	if err := d.loadTypes(dir); err != nil {
		t.Fatalf("loadTypes: %v", err)
	}

	if len(d.Types) != 2 {
		t.Fatalf("len(Types) = %d, want 2", len(d.Types))
	}
	veld := d.Types[1230]
	if veld == nil || veld.Name != "Veldspar" || veld.PortionSize != 100 || veld.GroupID != 450 {
		t.Errorf("Veldspar = %+v", veld)
	}
	// Missing portionSize defaults to 1.
	if trit := d.Types[34]; trit == nil || trit.PortionSize != 1 {
		t.Errorf("Tritanium = %+v, want PortionSize 1", d.Types[34])
	}
}

func TestLoadMaterials_Yields(t *testing.T) {
	dir := t.TempDir()
	writeJSONL(t, dir, "typeMaterials",
		`{"_key":1230,"materials":[{"typeID":34,"quantity":400},{"typeID":35,"quantity":100}]}`,
		`{"_key":1228,"materials":[]}`,
	)

	d := newData()
	if err := d.loadMaterials(dir); err != nil {
		t.Fatalf("loadMaterials: %v", err)
	}

	yields := d.Materials[1230]
	if len(yields) != 2 {
		t.Fatalf("yields = %v, want 2 entries", yields)
	}
	if yields[0].TypeID != 34 || yields[0].Quantity != 400 {
		t.Errorf("yields[0] = %+v", yields[0])
	}
	if _, ok := d.Materials[1228]; ok {
		t.Error("empty materials entry should be skipped")
	}
}

func TestLoadRegionsAndResolve(t *testing.T) {
	dir := t.TempDir()
	writeJSONL(t, dir, "mapRegions",
		`{"_key":10000002,"name":{"en":"The Forge"}}`,
		`{"_key":10000043,"name":{"en":"Domain"}}`,
	)

	d := newData()
	if err := d.loadRegions(dir); err != nil {
		t.Fatalf("loadRegions: %v", err)
	}

	id, err := d.ResolveRegion("the forge")
	if err != nil || id != 10000002 {
		t.Errorf("ResolveRegion(the forge) = %d, %v", id, err)
	}
	if _, err := d.ResolveRegion("Nowhere"); err == nil {
		t.Error("ResolveRegion(Nowhere) should fail")
	}
}

func TestLoadStargates_BuildsGraph(t *testing.T) {
	dir := t.TempDir()
	writeJSONL(t, dir, "mapStargates",
		`{"solarSystemID":30000142,"destination":{"solarSystemID":30000144}}`,
		`{"solarSystemID":30000144,"destination":{"solarSystemID":30000142}}`,
	)

	d := newData()
	if err := d.loadStargates(dir); err != nil {
		t.Fatalf("loadStargates: %v", err)
	}
	if got := d.Universe.ShortestPath(30000142, 30000144); got != 1 {
		t.Errorf("ShortestPath = %d, want 1", got)
	}
}

func TestSourceTypes_FilterAndSort(t *testing.T) {
	d := newData()
	d.Types[1230] = &ItemType{ID: 1230, Name: "Veldspar", GroupID: 450, PortionSize: 100}
	d.Types[1228] = &ItemType{ID: 1228, Name: "Scordite", GroupID: 451, PortionSize: 100}
	d.Types[587] = &ItemType{ID: 587, Name: "Rifter", GroupID: 25, PortionSize: 1}
	d.Types[1224] = &ItemType{ID: 1224, Name: "Pyroxeres", GroupID: 452, PortionSize: 100}
	d.Materials[1230] = []MaterialYield{{TypeID: 34, Quantity: 400}}
	d.Materials[1228] = []MaterialYield{{TypeID: 34, Quantity: 150}, {TypeID: 35, Quantity: 90}}
	d.Materials[587] = []MaterialYield{{TypeID: 34, Quantity: 20000}}
	// 1224 has no yields: excluded even though its group matches.

	srcs := d.SourceTypes([]int32{450, 451, 452})
	if len(srcs) != 2 {
		t.Fatalf("len(sources) = %d, want 2", len(srcs))
	}
	if srcs[0].TypeID != 1228 || srcs[1].TypeID != 1230 {
		t.Errorf("source order = %d, %d; want 1228, 1230", srcs[0].TypeID, srcs[1].TypeID)
	}

	mats := MaterialTypeIDs(srcs)
	if len(mats) != 2 || mats[0] != 34 || mats[1] != 35 {
		t.Errorf("MaterialTypeIDs = %v, want [34 35]", mats)
	}
}

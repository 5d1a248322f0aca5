package refdata

import (
	"archive/zip"
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"refine-arb/internal/graph"
	"refine-arb/internal/logger"
)

const sdeURL = "https://developers.eveonline.com/static-data/eve-online-static-data-latest-jsonl.zip"

// Data holds all parsed reference data.
type Data struct {
	Regions      map[int32]*Region      // regionID -> region
	RegionByName map[string]int32       // lowercase name -> regionID
	Systems      map[int32]*SolarSystem // systemID -> system
	Stations     map[int64]*Station     // stationID -> station
	Types        map[int32]*ItemType    // typeID -> type
	Materials    map[int32][]MaterialYield // sourceTypeID -> refine yields
	Universe     *graph.Universe
}

// Region represents an EVE region from the SDE.
type Region struct {
	ID   int32
	Name string
}

// SolarSystem represents an EVE solar system from the SDE.
type SolarSystem struct {
	ID       int32
	Name     string
	RegionID int32
}

// Station represents an NPC station from the SDE.
type Station struct {
	ID       int64
	SystemID int32
}

// ItemType represents a market-tradeable item type from the SDE.
type ItemType struct {
	ID          int32
	Name        string
	GroupID     int32
	PortionSize int64 // minimum refinable unit
}

// MaterialYield represents a single material output from refining one portion
// of a source type at 100% yield.
type MaterialYield struct {
	TypeID   int32
	Quantity int64
}

// Load downloads (if needed) and parses the SDE.
func Load(dataDir string) (*Data, error) {
	zipPath := filepath.Join(dataDir, "sde.zip")
	extractDir := filepath.Join(dataDir, "sde")

	if _, err := os.Stat(extractDir); os.IsNotExist(err) {
		logger.Info("SDE", "Downloading reference data...")
		if err := downloadFile(zipPath, sdeURL); err != nil {
			return nil, fmt.Errorf("download SDE: %w", err)
		}
		logger.Info("SDE", "Extracting reference data...")
		if err := extractZip(zipPath, extractDir); err != nil {
			return nil, fmt.Errorf("extract SDE: %w", err)
		}
	}

	data := newData()

	logger.Info("SDE", "Loading regions...")
	if err := data.loadRegions(extractDir); err != nil {
		return nil, err
	}
	logger.Info("SDE", "Loading solar systems...")
	if err := data.loadSystems(extractDir); err != nil {
		return nil, err
	}
	logger.Info("SDE", "Loading stations...")
	if err := data.loadStations(extractDir); err != nil {
		return nil, err
	}
	logger.Info("SDE", "Loading stargates...")
	if err := data.loadStargates(extractDir); err != nil {
		return nil, err
	}
	logger.Info("SDE", "Loading item types...")
	if err := data.loadTypes(extractDir); err != nil {
		return nil, err
	}
	logger.Info("SDE", "Loading refine yields...")
	if err := data.loadMaterials(extractDir); err != nil {
		return nil, err
	}

	logger.Section("Reference Data")
	logger.Stats("Regions", len(data.Regions))
	logger.Stats("Systems", len(data.Systems))
	logger.Stats("Stations", len(data.Stations))
	logger.Stats("Item types", len(data.Types))
	logger.Stats("Refinables", len(data.Materials))
	return data, nil
}

func newData() *Data {
	return &Data{
		Regions:      make(map[int32]*Region),
		RegionByName: make(map[string]int32),
		Systems:      make(map[int32]*SolarSystem),
		Stations:     make(map[int64]*Station),
		Types:        make(map[int32]*ItemType),
		Materials:    make(map[int32][]MaterialYield),
		Universe:     graph.NewUniverse(),
	}
}

// ResolveRegion resolves a region name (case-insensitive) to its ID.
func (d *Data) ResolveRegion(name string) (int32, error) {
	if id, ok := d.RegionByName[strings.ToLower(name)]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("unknown region %q", name)
}

// TypeName returns the display name for a type, or a numeric placeholder.
func (d *Data) TypeName(typeID int32) string {
	if t, ok := d.Types[typeID]; ok {
		return t.Name
	}
	return fmt.Sprintf("Type %d", typeID)
}

func (d *Data) loadRegions(dir string) error {
	return readJSONL(dir, "mapRegions", func(raw json.RawMessage) error {
		var r struct {
			Key  int32             `json:"_key"`
			Name map[string]string `json:"name"`
		}
		if err := json.Unmarshal(raw, &r); err != nil {
			return err
		}
		name := r.Name["en"]
		if name == "" {
			return nil
		}
		d.Regions[r.Key] = &Region{ID: r.Key, Name: name}
		d.RegionByName[strings.ToLower(name)] = r.Key
		return nil
	})
}

func (d *Data) loadSystems(dir string) error {
	return readJSONL(dir, "mapSolarSystems", func(raw json.RawMessage) error {
		var s struct {
			Key      int32             `json:"_key"`
			Name     map[string]string `json:"name"`
			RegionID int32             `json:"regionID"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		name := s.Name["en"]
		if name == "" {
			return nil
		}
		d.Systems[s.Key] = &SolarSystem{ID: s.Key, Name: name, RegionID: s.RegionID}
		d.Universe.SetRegion(s.Key, s.RegionID)
		return nil
	})
}

func (d *Data) loadStations(dir string) error {
	// npcStations.jsonl carries no display names; only the station -> system
	// mapping is needed for range checking.
	return readJSONL(dir, "npcStations", func(raw json.RawMessage) error {
		var s struct {
			Key           int64 `json:"_key"`
			SolarSystemID int32 `json:"solarSystemID"`
		}
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		d.Stations[s.Key] = &Station{ID: s.Key, SystemID: s.SolarSystemID}
		return nil
	})
}

func (d *Data) loadStargates(dir string) error {
	return readJSONL(dir, "mapStargates", func(raw json.RawMessage) error {
		var g struct {
			SolarSystemID int32 `json:"solarSystemID"`
			Destination   struct {
				SolarSystemID int32 `json:"solarSystemID"`
			} `json:"destination"`
		}
		if err := json.Unmarshal(raw, &g); err != nil {
			return err
		}
		if g.SolarSystemID != 0 && g.Destination.SolarSystemID != 0 {
			d.Universe.AddGate(g.SolarSystemID, g.Destination.SolarSystemID)
		}
		return nil
	})
}

func (d *Data) loadTypes(dir string) error {
	return readJSONL(dir, "types", func(raw json.RawMessage) error {
		var t struct {
			Key           int32             `json:"_key"`
			Name          map[string]string `json:"name"`
			Published     bool              `json:"published"`
			MarketGroupID *int32            `json:"marketGroupID"`
			GroupID       int32             `json:"groupID"`
			PortionSize   int64             `json:"portionSize"`
		}
		if err := json.Unmarshal(raw, &t); err != nil {
			return err
		}
		if !t.Published || t.MarketGroupID == nil {
			return nil
		}
		name := t.Name["en"]
		if name == "" {
			return nil
		}
		portion := t.PortionSize
		if portion <= 0 {
			portion = 1
		}
		d.Types[t.Key] = &ItemType{
			ID:          t.Key,
			Name:        name,
			GroupID:     t.GroupID,
			PortionSize: portion,
		}
		return nil
	})
}

func (d *Data) loadMaterials(dir string) error {
	return readJSONL(dir, "typeMaterials", func(raw json.RawMessage) error {
		var tm struct {
			Key       int32 `json:"_key"`
			Materials []struct {
				TypeID   int32 `json:"typeID"`
				Quantity int64 `json:"quantity"`
			} `json:"materials"`
		}
		if err := json.Unmarshal(raw, &tm); err != nil {
			return err
		}
		if len(tm.Materials) == 0 {
			return nil
		}
		yields := make([]MaterialYield, 0, len(tm.Materials))
		for _, m := range tm.Materials {
			yields = append(yields, MaterialYield{TypeID: m.TypeID, Quantity: m.Quantity})
		}
		d.Materials[tm.Key] = yields
		return nil
	})
}

// readJSONL finds and reads a .jsonl file by base name from the extracted SDE directory.
func readJSONL(dir, baseName string, fn func(json.RawMessage) error) error {
	var filePath string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		name := strings.TrimSuffix(info.Name(), ".jsonl")
		if strings.EqualFold(name, baseName) {
			filePath = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil && err != filepath.SkipAll {
		return err
	}
	if filePath == "" {
		logger.Warn("SDE", fmt.Sprintf("File %s.jsonl not found, skipping", baseName))
		return nil
	}

	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(json.RawMessage(line)); err != nil {
			continue // skip malformed lines
		}
	}
	return scanner.Err()
}

func downloadFile(dst, url string) error {
	os.MkdirAll(filepath.Dir(dst), 0755)
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, resp.Body)
	return err
}

func extractZip(src, dst string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer r.Close()

	dstAbs, err := filepath.Abs(dst)
	if err != nil {
		return fmt.Errorf("resolve extract dir: %w", err)
	}

	for _, f := range r.File {
		fpath := filepath.Join(dstAbs, f.Name)

		// Zip slip guard: ensure the resolved path stays within dst
		if rel, err := filepath.Rel(dstAbs, fpath); err != nil || strings.HasPrefix(rel, "..") {
			return fmt.Errorf("illegal zip entry path: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			os.MkdirAll(fpath, 0755)
			continue
		}
		os.MkdirAll(filepath.Dir(fpath), 0755)
		rc, err := f.Open()
		if err != nil {
			return err
		}
		out, err := os.Create(fpath)
		if err != nil {
			rc.Close()
			return err
		}
		_, err = io.Copy(out, rc)
		rc.Close()
		out.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

package market

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Order mirrors one order-book entry from the snapshot archive.
// Volume is mutable: the engine decrements it while simulating fills against
// its own per-attempt copy. Archive data itself is never written back.
type Order struct {
	OrderID    int64           `json:"order_id"`
	TypeID     int32           `json:"type_id"`
	LocationID int64           `json:"location_id"`
	SystemID   int32           `json:"system_id"`
	IsBuy      bool            `json:"buy"`
	Price      decimal.Decimal `json:"price"`
	Volume     int64           `json:"volume"`
	MinVolume  int64           `json:"min_volume"`
	Range      string          `json:"order_range"`
}

// Snapshot is one time-stamped order-book slice for a region.
type Snapshot struct {
	Time   time.Time `json:"time"`
	Orders []Order   `json:"orders"`
}

// FetchSnapshots returns all order-book snapshots for one day and region,
// sorted chronologically. Results are cached persistently per date+region;
// concurrent calls for the same key are coalesced through singleflight.
func (c *Client) FetchSnapshots(date string, regionID int32) ([]Snapshot, error) {
	key := fmt.Sprintf("snapshots:%s:%d", date, regionID)
	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		if c.store != nil {
			if snaps, ok := c.store.GetSnapshots(date, regionID); ok {
				return snaps, nil
			}
		}
		snaps, err := c.fetchSnapshots(date, regionID)
		if err != nil {
			return nil, err
		}
		if c.store != nil {
			c.store.SetSnapshots(date, regionID, snaps)
		}
		return snaps, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]Snapshot), nil
}

// fetchSnapshots downloads all pages for a date+region from the archive.
func (c *Client) fetchSnapshots(date string, regionID int32) ([]Snapshot, error) {
	url := fmt.Sprintf("%s/regions/%d/snapshots/?date=%s", c.archiveURL, regionID, date)

	page1, totalPages, err := c.fetchSnapshotPage(url + "&page=1")
	if err != nil {
		return nil, err
	}

	all := page1
	for p := 2; p <= totalPages; p++ {
		page, _, err := c.fetchSnapshotPage(fmt.Sprintf("%s&page=%d", url, p))
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", p, err)
		}
		all = append(all, page...)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Time.Before(all[j].Time) })
	return all, nil
}

func (c *Client) fetchSnapshotPage(url string) ([]Snapshot, int, error) {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	req, err := newRequest(url)
	if err != nil {
		return nil, 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, 0, fmt.Errorf("archive %d", resp.StatusCode)
	}

	totalPages := 1
	if p := resp.Header.Get("X-Pages"); p != "" {
		totalPages, _ = strconv.Atoi(p)
	}

	var page []Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, 0, err
	}
	return page, totalPages, nil
}

// FilterTypes returns snapshots holding only orders for the given type IDs.
// Order structs are copied, so the result is safe to hand to the engine.
func FilterTypes(snaps []Snapshot, typeIDs []int32) []Snapshot {
	wanted := make(map[int32]bool, len(typeIDs))
	for _, id := range typeIDs {
		wanted[id] = true
	}

	out := make([]Snapshot, 0, len(snaps))
	for _, s := range snaps {
		filtered := Snapshot{Time: s.Time}
		for _, o := range s.Orders {
			if wanted[o.TypeID] {
				filtered.Orders = append(filtered.Orders, o)
			}
		}
		out = append(out, filtered)
	}
	return out
}

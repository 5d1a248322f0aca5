package market

import (
	"fmt"
	"sync"
)

// HistoryEntry represents a single day of market history for an item in a region.
type HistoryEntry struct {
	Date       string  `json:"date"`
	Average    float64 `json:"average"`
	Highest    float64 `json:"highest"`
	Lowest     float64 `json:"lowest"`
	Volume     int64   `json:"volume"`
	OrderCount int64   `json:"order_count"`
}

// FetchDayVolumes returns the traded volume on the given date for each of the
// requested types in a region. Types with no history entry for that date are
// absent from the result. The full map is cached persistently per date+region.
func (c *Client) FetchDayVolumes(date string, regionID int32, typeIDs []int32) (map[int32]int64, error) {
	key := fmt.Sprintf("dayvol:%s:%d", date, regionID)
	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		if c.store != nil {
			if volumes, ok := c.store.GetDayVolumes(date, regionID); ok {
				return volumes, nil
			}
		}
		volumes, err := c.fetchDayVolumes(date, regionID, typeIDs)
		if err != nil {
			return nil, err
		}
		if c.store != nil {
			c.store.SetDayVolumes(date, regionID, volumes)
		}
		return volumes, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(map[int32]int64), nil
}

func (c *Client) fetchDayVolumes(date string, regionID int32, typeIDs []int32) (map[int32]int64, error) {
	volumes := make(map[int32]int64, len(typeIDs))
	var mu sync.Mutex
	var wg sync.WaitGroup

	// Per-type history fetches; the client semaphore bounds concurrency.
	for _, typeID := range typeIDs {
		wg.Add(1)
		go func(tid int32) {
			defer wg.Done()
			entries, err := c.fetchHistory(regionID, tid)
			if err != nil {
				return // missing history is not fatal; type gets no limit budget
			}
			for _, e := range entries {
				if e.Date == date {
					mu.Lock()
					volumes[tid] = e.Volume
					mu.Unlock()
					return
				}
			}
		}(typeID)
	}
	wg.Wait()

	return volumes, nil
}

func (c *Client) fetchHistory(regionID, typeID int32) ([]HistoryEntry, error) {
	url := fmt.Sprintf("%s/markets/%d/history/?datasource=tranquility&type_id=%d",
		c.esiURL, regionID, typeID)

	var entries []HistoryEntry
	if err := c.GetJSON(url, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

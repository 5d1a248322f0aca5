// Package market talks to the external data providers: the order-book
// snapshot archive and the ESI market-history endpoint.
package market

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"
)

const userAgent = "refine-arb/1.0 (github.com)"

// Store is a persistent L2 cache for provider payloads.
type Store interface {
	GetSnapshots(date string, regionID int32) ([]Snapshot, bool)
	SetSnapshots(date string, regionID int32, snaps []Snapshot)
	GetDayVolumes(date string, regionID int32) (map[int32]int64, bool)
	SetDayVolumes(date string, regionID int32, volumes map[int32]int64)
}

// Client is a rate-limited HTTP client for the market data providers.
type Client struct {
	http       *http.Client
	sem        chan struct{}
	archiveURL string
	esiURL     string
	store      Store // optional persistent cache
	group      singleflight.Group
}

// NewClient creates a provider client. store may be nil to disable the
// persistent cache. concurrency bounds in-flight provider requests.
func NewClient(archiveURL, esiURL string, concurrency int, store Store) *Client {
	if concurrency <= 0 {
		concurrency = 10
	}
	return &Client{
		http:       &http.Client{Timeout: 30 * time.Second},
		sem:        make(chan struct{}, concurrency),
		archiveURL: archiveURL,
		esiURL:     esiURL,
		store:      store,
	}
}

// GetJSON fetches a URL and decodes JSON into dst.
func (c *Client) GetJSON(url string, dst interface{}) error {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	req, err := newRequest(url)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("provider %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(dst)
}

func newRequest(url string) (*http.Request, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

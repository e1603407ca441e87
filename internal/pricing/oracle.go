package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"tradeup-scout/internal/logger"
)

const snapshotKey = "snapshot"

// Oracle serves external market quotes from a bulk price snapshot. The
// snapshot covers every marketable item in one request and is memoized for a
// TTL, so individual lookups during a sweep never hit the network.
type Oracle struct {
	http    *http.Client
	baseURL string
	apiKey  string
	memo    *gocache.Cache
	group   singleflight.Group
}

// NewOracle creates a snapshot-backed quote source. apiKey may be empty when
// the endpoint is unauthenticated.
func NewOracle(baseURL, apiKey string, timeout, ttl time.Duration) *Oracle {
	return &Oracle{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
		memo:    gocache.New(ttl, ttl),
	}
}

// Price returns the snapshot quote for an item. Implements
// validator.QuoteSource. A missing entry is (0, false, nil); only transport
// failures on a cold snapshot surface as errors.
func (o *Oracle) Price(ctx context.Context, itemID string) (float64, bool, error) {
	snap, err := o.snapshot(ctx)
	if err != nil {
		return 0, false, err
	}
	price, ok := snap[itemID]
	if !ok || price <= 0 {
		return 0, false, nil
	}
	return price, true, nil
}

// snapshot returns the cached price map, fetching it when the TTL has
// lapsed. Concurrent cold fetches are coalesced into a single request.
func (o *Oracle) snapshot(ctx context.Context) (map[string]float64, error) {
	if v, ok := o.memo.Get(snapshotKey); ok {
		return v.(map[string]float64), nil
	}
	v, err, _ := o.group.Do(snapshotKey, func() (interface{}, error) {
		if v, ok := o.memo.Get(snapshotKey); ok {
			return v, nil
		}
		snap, err := o.fetch(ctx)
		if err != nil {
			return nil, err
		}
		o.memo.SetDefault(snapshotKey, snap)
		logger.Info("ORACLE", fmt.Sprintf("Loaded price snapshot: %d items", len(snap)))
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]float64), nil
}

func (o *Oracle) fetch(ctx context.Context) (map[string]float64, error) {
	u := o.baseURL + "/v1/prices"
	if o.apiKey != "" {
		u += "?key=" + url.QueryEscape(o.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "tradeup-scout/1.0 (github.com)")
	req.Header.Set("Accept", "application/json")

	resp, err := o.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("oracle %d: %s", resp.StatusCode, string(body))
	}

	var snap map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"tradeup-scout/internal/logger"
)

// Authoritative fetches marketplace listing prices one item at a time. The
// endpoint throttles aggressively, so every request across all workers goes
// through one shared limiter.
type Authoritative struct {
	http       *http.Client
	baseURL    string
	limiter    *rate.Limiter
	maxRetries int
	retryBase  time.Duration
}

// NewAuthoritative creates a rate-limited authoritative price client.
// interval is the minimum spacing between requests.
func NewAuthoritative(baseURL string, timeout, interval time.Duration, maxRetries int) *Authoritative {
	return &Authoritative{
		http:       &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
		maxRetries: maxRetries,
		retryBase:  2 * time.Second,
	}
}

type priceOverview struct {
	Success     bool   `json:"success"`
	LowestPrice string `json:"lowest_price"`
	MedianPrice string `json:"median_price"`
}

// Quote returns the current lowest listing price for an item. Implements
// validator.AuthoritativeSource: exhausted retries and absent listings both
// return (0, false, nil); only context cancellation is an error.
func (a *Authoritative) Quote(ctx context.Context, itemID string) (float64, bool, error) {
	backoff := a.retryBase
	for attempt := 0; attempt <= a.maxRetries; attempt++ {
		if err := a.limiter.Wait(ctx); err != nil {
			return 0, false, err
		}

		price, ok, retryable := a.fetchOnce(ctx, itemID)
		if !retryable {
			return price, ok, nil
		}
		if err := ctx.Err(); err != nil {
			return 0, false, err
		}
		if attempt < a.maxRetries {
			logger.Debug("AUTH", fmt.Sprintf("Retrying %q in %s (attempt %d/%d)",
				itemID, backoff, attempt+1, a.maxRetries))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return 0, false, ctx.Err()
			}
			backoff *= 2
		}
	}
	logger.Warn("AUTH", fmt.Sprintf("Giving up on %q after %d retries", itemID, a.maxRetries))
	return 0, false, nil
}

// fetchOnce performs a single request. retryable reports whether the failure
// is worth another attempt (throttling, server error, transport error).
func (a *Authoritative) fetchOnce(ctx context.Context, itemID string) (price float64, ok, retryable bool) {
	q := url.Values{}
	q.Set("appid", "730")
	q.Set("currency", "1")
	q.Set("market_hash_name", itemID)
	req, err := http.NewRequestWithContext(ctx, "GET", a.baseURL+"/market/priceoverview/?"+q.Encode(), nil)
	if err != nil {
		return 0, false, false
	}
	req.Header.Set("User-Agent", "tradeup-scout/1.0 (github.com)")

	resp, err := a.http.Do(req)
	if err != nil {
		return 0, false, true
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == 429 || resp.StatusCode >= 500:
		return 0, false, true
	case resp.StatusCode != 200:
		return 0, false, false
	}

	var overview priceOverview
	if err := json.NewDecoder(resp.Body).Decode(&overview); err != nil {
		return 0, false, false
	}
	if !overview.Success {
		return 0, false, false
	}

	raw := overview.LowestPrice
	if raw == "" {
		raw = overview.MedianPrice
	}
	p, err := ParsePrice(raw)
	if err != nil || p <= 0 {
		return 0, false, false
	}
	return p, true, false
}

// ParsePrice converts a listing price string like "$4.52" or "1,234.56 USD"
// to a float.
func ParsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty price")
	}
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, fmt.Errorf("no digits in price %q", s)
	}
	return strconv.ParseFloat(cleaned, 64)
}

// Package krx provides a client for Korean-exchange (KOSPI/KOSDAQ) market data.
package krx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Candle is a single daily OHLCV observation, oldest-first when returned in a series.
type Candle struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Symbol describes a listed instrument.
type Symbol struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Market string `json:"market"` // KOSPI or KOSDAQ
}

type cacheEntry struct {
	data      interface{}
	expiresAt time.Time
}

// Client fetches daily price history and symbol lists from a KRX quote endpoint.
// Responses are cached in memory with a TTL; requests are rate limited and
// retried with exponential backoff so a flaky upstream doesn't break callers
// that can't afford to wait.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// NewClient creates a new KRX market data client
func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
		log:     log.With().Str("client", "krx").Logger(),
		cache:   make(map[string]cacheEntry),
	}
}

// GetPriceHistory fetches daily OHLCV candles for a symbol over a lookback window.
// The returned series is ordered oldest-first. An empty series is a valid result.
func (c *Client) GetPriceHistory(symbol string, days int) ([]Candle, error) {
	cacheKey := fmt.Sprintf("history:%s:%d", symbol, days)
	if cached, ok := c.getFromCache(cacheKey); ok {
		return cached.([]Candle), nil
	}

	endpoint := fmt.Sprintf("%s/history/%s?days=%d", c.baseURL, url.PathEscape(symbol), days)

	var payload struct {
		Candles []Candle `json:"candles"`
	}
	if err := c.getJSON(endpoint, &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch price history for %s: %w", symbol, err)
	}

	c.setCache(cacheKey, payload.Candles, 5*time.Minute)

	c.log.Debug().
		Str("symbol", symbol).
		Int("days", days).
		Int("candles", len(payload.Candles)).
		Msg("Fetched price history")

	return payload.Candles, nil
}

// GetSymbols fetches the list of listed symbols for all markets.
func (c *Client) GetSymbols() ([]Symbol, error) {
	if cached, ok := c.getFromCache("symbols"); ok {
		return cached.([]Symbol), nil
	}

	var payload struct {
		Symbols []Symbol `json:"symbols"`
	}
	if err := c.getJSON(c.baseURL+"/symbols", &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch symbols: %w", err)
	}

	c.setCache("symbols", payload.Symbols, time.Hour)

	return payload.Symbols, nil
}

// getJSON performs a rate-limited GET with retries and decodes the JSON body.
func (c *Client) getJSON(endpoint string, out interface{}) error {
	operation := func() error {
		if err := c.waitForSlot(); err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.client.Get(endpoint)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("upstream returned status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			// Client errors won't heal with retries
			return backoff.Permanent(fmt.Errorf("upstream returned status %d", resp.StatusCode))
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxElapsedTime = 15 * time.Second

	return backoff.Retry(operation, policy)
}

// waitForSlot blocks until the rate limiter admits a request.
func (c *Client) waitForSlot() error {
	reservation := c.limiter.Reserve()
	if !reservation.OK() {
		return fmt.Errorf("rate limiter rejected request")
	}
	time.Sleep(reservation.Delay())
	return nil
}

func (c *Client) getFromCache(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.cache[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.data, true
}

func (c *Client) setCache(key string, data interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[key] = cacheEntry{
		data:      data,
		expiresAt: time.Now().Add(ttl),
	}
}

// ClearCache drops all cached entries.
func (c *Client) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[string]cacheEntry)
}

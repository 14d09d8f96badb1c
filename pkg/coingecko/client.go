// Package coingecko implements a typed HTTP client for the CoinGecko v3 API.
// The API only knows lowercase coin ids, so every id is lowercased before
// use. Transport failures and non-success statuses surface as core.ErrNoData;
// callers are expected to answer "could not retrieve data" rather than leak
// transport detail.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jpillora/backoff"
	"github.com/raykavin/geckobot/pkg/core"
	"github.com/raykavin/geckobot/pkg/logger"
)

// DefaultBaseURL is the public CoinGecko API endpoint.
const DefaultBaseURL = "https://api.coingecko.com/api/v3"

const defaultRetries = 2

// Client issues requests against the CoinGecko API. It keeps no local state
// beyond its configuration and is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     logger.Logger
	retries int
}

// Option is a function that configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithAPIKey sets the demo API key sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.http = httpClient
	}
}

// WithRetries sets how many times a failed request is retried.
func WithRetries(retries int) Option {
	return func(c *Client) {
		c.retries = retries
	}
}

// New creates a CoinGecko client.
func New(log logger.Logger, options ...Option) *Client {
	client := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log,
		retries: defaultRetries,
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// Ping checks API connectivity.
func (c *Client) Ping(ctx context.Context) error {
	var out struct {
		GeckoSays string `json:"gecko_says"`
	}
	return c.get(ctx, "/ping", nil, &out)
}

// SimplePrices returns the price of each id in the given currency.
// Ids missing upstream are absent from the result.
func (c *Client) SimplePrices(ctx context.Context, ids []string, vsCurrency string) (map[string]float64, error) {
	if vsCurrency == "" {
		vsCurrency = "usd"
	}

	lowered := make([]string, len(ids))
	for i, id := range ids {
		lowered[i] = strings.ToLower(id)
	}

	params := url.Values{}
	params.Set("ids", strings.Join(lowered, ","))
	params.Set("vs_currencies", vsCurrency)

	var raw map[string]map[string]float64
	if err := c.get(ctx, "/simple/price", params, &raw); err != nil {
		return nil, err
	}

	prices := make(map[string]float64, len(raw))
	for id, values := range raw {
		prices[id] = values[vsCurrency]
	}
	return prices, nil
}

// CoinsList returns the full coin catalogue (id, symbol, name).
func (c *Client) CoinsList(ctx context.Context) ([]core.CoinRecord, error) {
	var list []core.CoinRecord
	if err := c.get(ctx, "/coins/list", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// CoinsMarkets returns market snapshots for the top coins in the currency.
func (c *Client) CoinsMarkets(ctx context.Context, vsCurrency string) ([]MarketTicker, error) {
	if vsCurrency == "" {
		vsCurrency = "usd"
	}

	params := url.Values{}
	params.Set("vs_currency", vsCurrency)

	var tickers []MarketTicker
	if err := c.get(ctx, "/coins/markets", params, &tickers); err != nil {
		return nil, err
	}
	return tickers, nil
}

// CoinByID returns the full detail document for one coin.
func (c *Client) CoinByID(ctx context.Context, id string) (*CoinDetail, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return nil, core.ErrNoData
	}

	var detail CoinDetail
	if err := c.get(ctx, "/coins/"+url.PathEscape(id), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// MarketChartRange returns price history between two instants. The API
// expects integer unix seconds.
func (c *Client) MarketChartRange(ctx context.Context, id, vsCurrency string, from, to time.Time) (*MarketChart, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return nil, core.ErrNoData
	}
	if vsCurrency == "" {
		vsCurrency = "usd"
	}

	params := url.Values{}
	params.Set("vs_currency", vsCurrency)
	params.Set("from", strconv.FormatInt(from.Unix(), 10))
	params.Set("to", strconv.FormatInt(to.Unix(), 10))

	var chart MarketChart
	if err := c.get(ctx, "/coins/"+url.PathEscape(id)+"/market_chart/range", params, &chart); err != nil {
		return nil, err
	}
	return &chart, nil
}

// get performs one GET with retries on transport errors and 5xx responses.
// Every failure mode collapses into core.ErrNoData for the caller.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	retry := &backoff.Backoff{
		Min: 250 * time.Millisecond,
		Max: 2 * time.Second,
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", core.ErrNoData, ctx.Err())
			case <-time.After(retry.Duration()):
			}
		}

		retryable, err := c.doOnce(ctx, endpoint, out)
		if err == nil {
			return nil
		}
		if !retryable {
			return err
		}

		lastErr = err
		c.log.WithError(err).WithField("url", endpoint).Debug("coingecko request failed, retrying")
	}

	return fmt.Errorf("%w: %v", core.ErrNoData, lastErr)
}

// doOnce performs a single request. The first return value reports whether
// the failure is worth retrying.
func (c *Client) doOnce(ctx context.Context, endpoint string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("%w: %v", core.ErrNoData, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return true, fmt.Errorf("%w: %v", core.ErrNoData, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return false, fmt.Errorf("%w: decode: %v", core.ErrNoData, err)
		}
		return false, nil
	case resp.StatusCode >= http.StatusInternalServerError:
		_, _ = io.Copy(io.Discard, resp.Body)
		return true, fmt.Errorf("%w: status %d", core.ErrNoData, resp.StatusCode)
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, fmt.Errorf("%w: status %d", core.ErrNoData, resp.StatusCode)
	}
}

// Package binance retrieves daily closing prices from the Binance spot market.
package binance

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/etnz/wager"
	"github.com/etnz/wager/fetch"
)

// BaseURL is the Binance spot REST API.
const BaseURL = "https://api.binance.com/api/v3"

// limit is the maximum number of klines per request.
const limit = 1000

// Client retrieves daily klines.
type Client struct {
	BaseURL string
	http    *fetch.Client
}

// New returns a Client using the production endpoint.
func New(c *fetch.Client) *Client { return &Client{BaseURL: BaseURL, http: c} }

// kline is [openTime, open, high, low, close, volume, closeTime, ...]; prices are strings.
type kline []json.RawMessage

func (k kline) parse() (wager.PricePoint, error) {
	if len(k) < 5 {
		return wager.PricePoint{}, fmt.Errorf("kline has %d fields, want at least 5", len(k))
	}
	var openTime int64
	if err := json.Unmarshal(k[0], &openTime); err != nil {
		return wager.PricePoint{}, fmt.Errorf("invalid kline open time: %w", err)
	}
	var closePrice decimal.Decimal
	if err := json.Unmarshal(k[4], &closePrice); err != nil {
		return wager.PricePoint{}, fmt.Errorf("invalid kline close price: %w", err)
	}
	on := wager.DateOf(time.UnixMilli(openTime).UTC())
	return wager.PricePoint{Date: on, Value: closePrice.InexactFloat64()}, nil
}

// Fetch returns the daily close of 'symbol' (e.g. BTCBRL) for every day of r.
// It pages through the API as needed.
func (c *Client) Fetch(ctx context.Context, symbol string, r wager.Range) ([]wager.PricePoint, error) {
	start := r.From.Time()
	end := r.To.Add(1).Time().Add(-time.Millisecond)

	var points []wager.PricePoint
	for !start.After(end) {
		q := url.Values{}
		q.Set("symbol", symbol)
		q.Set("interval", "1d")
		q.Set("startTime", strconv.FormatInt(start.UnixMilli(), 10))
		q.Set("endTime", strconv.FormatInt(end.UnixMilli(), 10))
		q.Set("limit", strconv.Itoa(limit))

		var klines []kline
		if err := c.http.GetJSON(ctx, "binance", c.BaseURL+"/klines?"+q.Encode(), &klines); err != nil {
			return nil, err
		}
		for _, k := range klines {
			p, err := k.parse()
			if err != nil {
				return nil, fmt.Errorf("binance %s: %w", symbol, err)
			}
			points = append(points, p)
		}
		if len(klines) < limit {
			break
		}
		start = points[len(points)-1].Date.Add(1).Time()
	}
	return points, nil
}

// Symbol returns a Fetcher for 'symbol'.
func (c *Client) Symbol(symbol string) wager.Fetcher {
	return wager.FetcherFunc(func(ctx context.Context, r wager.Range) ([]wager.PricePoint, error) {
		return c.Fetch(ctx, symbol, r)
	})
}

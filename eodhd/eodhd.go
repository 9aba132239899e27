// Package eodhd retrieves end of day prices from the EODHD API.
//
// It needs an API key, see https://eodhd.com. Tickers are "SYMBOL.EXCHANGE",
// e.g. BVSP.INDX for the Ibovespa or USDBRL.FOREX for the dollar.
package eodhd

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/etnz/wager"
	"github.com/etnz/wager/fetch"
)

// BaseURL is the EODHD API.
const BaseURL = "https://eodhd.com/api"

// Client retrieves end of day prices.
type Client struct {
	BaseURL string
	APIKey  string
	http    *fetch.Client
}

// New returns a Client authenticated with apiKey.
func New(c *fetch.Client, apiKey string) *Client {
	return &Client{BaseURL: BaseURL, APIKey: apiKey, http: c}
}

// eod is one day of prices.
//
//	{"date":"2024-02-13","open":675.066,"high":684.219,"low":648.659,"close":668.445,"adjusted_close":67.705,"volume":0}
type eod struct {
	Date  wager.Date      `json:"date"`
	Open  decimal.Decimal `json:"open"`
	Close decimal.Decimal `json:"close"`
}

func (c *Client) eod(ctx context.Context, ticker string, from, to wager.Date) ([]eod, error) {
	q := url.Values{}
	q.Set("fmt", "json")
	q.Set("api_token", c.APIKey)
	q.Set("from", from.String())
	q.Set("to", to.String())
	addr := fmt.Sprintf("%s/eod/%s?%s", c.BaseURL, url.PathEscape(ticker), q.Encode())

	content := make([]eod, 0)
	if err := c.http.GetJSON(ctx, "eodhd", addr, &content); err != nil {
		return nil, err
	}
	return content, nil
}

// Fetch returns the daily closes of ticker within r.
//
// Forex closes are unreliable, often equal to the open, so for FOREX
// tickers the open of the next day is used as the close of the day.
func (c *Client) Fetch(ctx context.Context, ticker string, r wager.Range) ([]wager.PricePoint, error) {
	forex := strings.HasSuffix(strings.ToUpper(ticker), ".FOREX")
	from, to := r.From, r.To
	if forex {
		from, to = from.Add(1), to.Add(1)
	}
	content, err := c.eod(ctx, ticker, from, to)
	if err != nil {
		return nil, err
	}
	points := make([]wager.PricePoint, 0, len(content))
	for _, e := range content {
		if forex {
			points = append(points, wager.PricePoint{Date: e.Date.Add(-1), Value: e.Open.InexactFloat64()})
			continue
		}
		points = append(points, wager.PricePoint{Date: e.Date, Value: e.Close.InexactFloat64()})
	}
	return points, nil
}

// Ticker returns a Fetcher for ticker.
func (c *Client) Ticker(ticker string) wager.Fetcher {
	return wager.FetcherFunc(func(ctx context.Context, r wager.Range) ([]wager.PricePoint, error) {
		return c.Fetch(ctx, ticker, r)
	})
}

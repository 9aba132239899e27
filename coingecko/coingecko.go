// Package coingecko retrieves historical crypto prices from the CoinGecko public API.
package coingecko

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/etnz/wager"
	"github.com/etnz/wager/fetch"
)

// BaseURL is the CoinGecko v3 API.
const BaseURL = "https://api.coingecko.com/api/v3"

// Client retrieves market charts.
type Client struct {
	BaseURL  string
	Currency string // vs currency, lower case
	http     *fetch.Client
}

// New returns a Client quoting prices in BRL.
func New(c *fetch.Client) *Client { return &Client{BaseURL: BaseURL, Currency: "brl", http: c} }

// marketChart is the payload of /market_chart/range.
//
//	{"prices":[[1719187200000,331234.56], ...], "market_caps": [...], "total_volumes": [...]}
type marketChart struct {
	Prices [][2]float64 `json:"prices"`
}

// Fetch returns the prices of coin 'id' (e.g. bitcoin) within r.
//
// Several prices on the same day are all returned, the latest one wins once
// they are turned into a series.
func (c *Client) Fetch(ctx context.Context, id string, r wager.Range) ([]wager.PricePoint, error) {
	q := url.Values{}
	q.Set("vs_currency", c.Currency)
	q.Set("from", strconv.FormatInt(r.From.Time().Unix(), 10))
	q.Set("to", strconv.FormatInt(r.To.Add(1).Time().Unix(), 10))
	addr := fmt.Sprintf("%s/coins/%s/market_chart/range?%s", c.BaseURL, url.PathEscape(id), q.Encode())

	var chart marketChart
	if err := c.http.GetJSON(ctx, "coingecko", addr, &chart); err != nil {
		return nil, err
	}
	if chart.Prices == nil {
		return nil, errors.New("coingecko: no prices in response")
	}
	points := make([]wager.PricePoint, 0, len(chart.Prices))
	for _, p := range chart.Prices {
		on := wager.DateOf(time.UnixMilli(int64(p[0])).UTC())
		points = append(points, wager.PricePoint{Date: on, Value: p[1]})
	}
	return points, nil
}

// Coin returns a Fetcher for coin 'id'.
func (c *Client) Coin(id string) wager.Fetcher {
	return wager.FetcherFunc(func(ctx context.Context, r wager.Range) ([]wager.PricePoint, error) {
		return c.Fetch(ctx, id, r)
	})
}

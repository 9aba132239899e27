// Package yahoo retrieves daily closing prices from the Yahoo Finance chart API.
package yahoo

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"github.com/etnz/wager"
	"github.com/etnz/wager/fetch"
)

// BaseURL is the chart endpoint, the symbol is appended to it.
const BaseURL = "https://query2.finance.yahoo.com/v8/finance/chart"

// DefaultCrossRate seeds the exchange rate of a cross series until the first rate is known.
const DefaultCrossRate = 5.50

// Client retrieves charts.
type Client struct {
	BaseURL string
	http    *fetch.Client
}

// New returns a Client using the production endpoint.
func New(c *fetch.Client) *Client { return &Client{BaseURL: BaseURL, http: c} }

// quote is one daily close, at its exchange local date.
type quote struct {
	ts    int64
	on    wager.Date
	close float64
}

// chart retrieves the daily closes of symbol within r. Days without a close are skipped.
func (c *Client) chart(ctx context.Context, symbol string, r wager.Range) ([]quote, error) {
	q := url.Values{}
	q.Set("period1", strconv.FormatInt(r.From.Time().Unix(), 10))
	q.Set("period2", strconv.FormatInt(r.To.Add(1).Time().Unix(), 10))
	q.Set("interval", "1d")
	addr := fmt.Sprintf("%s/%s?%s", c.BaseURL, url.PathEscape(symbol), q.Encode())

	var jobj any
	if err := c.http.GetJSON(ctx, "yahoo", addr, &jobj); err != nil {
		return nil, err
	}
	if desc, err := jsonpath.Get("$.chart.error.description", jobj); err == nil && desc != nil {
		return nil, fmt.Errorf("yahoo %s: %v", symbol, desc)
	}

	timestamps, err := list(jobj, "$.chart.result[0].timestamp")
	if err != nil {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, err)
	}
	closes, err := list(jobj, "$.chart.result[0].indicators.quote[0].close")
	if err != nil {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, err)
	}
	// dates are taken in the exchange time zone, so that a close is dated on its trading day.
	var offset int64
	if v, err := jsonpath.Get("$.chart.result[0].meta.gmtoffset", jobj); err == nil {
		if f, ok := v.(float64); ok {
			offset = int64(f)
		}
	}

	quotes := make([]quote, 0, len(timestamps))
	for i, jts := range timestamps {
		ts, ok := jts.(float64)
		if !ok || i >= len(closes) {
			continue
		}
		cl, ok := closes[i].(float64) // null closes are skipped
		if !ok {
			continue
		}
		on := wager.DateOf(time.Unix(int64(ts)+offset, 0).UTC())
		quotes = append(quotes, quote{ts: int64(ts), on: on, close: cl})
	}
	slices.SortStableFunc(quotes, func(a, b quote) int { return cmp.Compare(a.ts, b.ts) })
	return quotes, nil
}

// list evaluates path on jobj and expects an array.
func list(jobj any, path string) ([]any, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("error parsing %q: %w", path, err)
	}
	l, ok := jval.([]any)
	if !ok {
		return nil, fmt.Errorf("error parsing %q: not a list: %v", path, jval)
	}
	return l, nil
}

// Fetch returns the daily closes of symbol (e.g. ^BVSP) within r.
func (c *Client) Fetch(ctx context.Context, symbol string, r wager.Range) ([]wager.PricePoint, error) {
	quotes, err := c.chart(ctx, symbol, r)
	if err != nil {
		return nil, err
	}
	points := make([]wager.PricePoint, len(quotes))
	for i, q := range quotes {
		points[i] = wager.PricePoint{Date: q.on, Value: q.close}
	}
	return points, nil
}

// Cross returns the closes of 'base' converted with the exchange rate 'fx'
// (e.g. BTC-USD converted with BRL=X).
//
// On days without an exchange rate the last known one is used, starting
// from DefaultCrossRate.
func (c *Client) Cross(ctx context.Context, base, fx string, r wager.Range) ([]wager.PricePoint, error) {
	baseQuotes, err := c.chart(ctx, base, r)
	if err != nil {
		return nil, err
	}
	fxQuotes, err := c.chart(ctx, fx, r)
	if err != nil {
		return nil, err
	}
	if len(baseQuotes) == 0 {
		return nil, errors.New("yahoo: no quote for " + base)
	}
	rates := make(map[wager.Date]float64, len(fxQuotes))
	for _, q := range fxQuotes {
		rates[q.on] = q.close
	}
	rate := DefaultCrossRate
	points := make([]wager.PricePoint, 0, len(baseQuotes))
	for _, q := range baseQuotes {
		if v, ok := rates[q.on]; ok {
			rate = v
		}
		points = append(points, wager.PricePoint{Date: q.on, Value: q.close * rate})
	}
	return points, nil
}

// Symbol returns a Fetcher for symbol.
func (c *Client) Symbol(symbol string) wager.Fetcher {
	return wager.FetcherFunc(func(ctx context.Context, r wager.Range) ([]wager.PricePoint, error) {
		return c.Fetch(ctx, symbol, r)
	})
}

// CrossSymbol returns a Fetcher for base converted with fx.
func (c *Client) CrossSymbol(base, fx string) wager.Fetcher {
	return wager.FetcherFunc(func(ctx context.Context, r wager.Range) ([]wager.PricePoint, error) {
		return c.Cross(ctx, base, fx, r)
	})
}

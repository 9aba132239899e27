// Package bcb retrieves time series from the SGS service of the Banco Central do Brasil.
package bcb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/etnz/wager"
	"github.com/etnz/wager/fetch"
)

// BaseURL is the SGS series endpoint, the series code is appended to it.
const BaseURL = "https://api.bcb.gov.br/dados/serie/bcdata.sgs"

// Well known series codes.
const (
	Dolar    = 1   // PTAX USD/BRL selling rate, daily
	CDI      = 12  // CDI rate in % per day
	Poupanca = 25  // savings account yield in % per month
	IPCA     = 433 // IPCA inflation in % per month
)

const dateFormat = "02/01/2006"

// Client retrieves SGS series.
type Client struct {
	BaseURL string
	http    *fetch.Client
}

// New returns a Client using the production endpoint.
func New(c *fetch.Client) *Client {
	return &Client{BaseURL: BaseURL, http: c}
}

// item is one observation as returned by SGS.
//
//	[{"data":"24/06/2024","valor":"0.039270"}, ...]
type item struct {
	Data  string          `json:"data"`
	Valor decimal.Decimal `json:"valor"`
}

// Fetch returns the observations of series 'code' within r.
func (c *Client) Fetch(ctx context.Context, code int, r wager.Range) ([]wager.PricePoint, error) {
	addr := fmt.Sprintf("%s.%d/dados?formato=json&dataInicial=%s&dataFinal=%s",
		strings.TrimSuffix(c.BaseURL, "."), code, r.From.Format(dateFormat), r.To.Format(dateFormat))

	var items []item
	if err := c.http.GetJSON(ctx, "bcb", addr, &items); err != nil {
		return nil, err
	}
	points := make([]wager.PricePoint, 0, len(items))
	for _, it := range items {
		on, err := time.Parse(dateFormat, strings.TrimSpace(it.Data))
		if err != nil {
			return nil, fmt.Errorf("bcb series %d: invalid date %q: %w", code, it.Data, err)
		}
		points = append(points, wager.PricePoint{Date: wager.DateOf(on), Value: it.Valor.InexactFloat64()})
	}
	return points, nil
}

// Series returns a Fetcher for series 'code'.
func (c *Client) Series(code int) wager.Fetcher {
	return wager.FetcherFunc(func(ctx context.Context, r wager.Range) ([]wager.PricePoint, error) {
		return c.Fetch(ctx, code, r)
	})
}

// Package sources turns the source specs of an instrument, like "bcb:12" or
// "yahoo:^BVSP", into fetchers.
//
// Supported specs:
//
//	bcb:<series code>             Banco Central do Brasil SGS series
//	binance:<symbol>              Binance daily klines, e.g. BTCBRL
//	coingecko:<coin id>           CoinGecko market chart, e.g. bitcoin
//	yahoo:<symbol>                Yahoo Finance daily closes, e.g. ^BVSP
//	yahoo-cross:<base>*<fx>       Yahoo base closes times fx closes, e.g. BTC-USD*BRL=X
//	eodhd:<ticker>                EODHD end of day prices, needs an API key
//
// An instrument with several sources falls back from one to the next.
package sources

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/etnz/wager"
	"github.com/etnz/wager/bcb"
	"github.com/etnz/wager/binance"
	"github.com/etnz/wager/coingecko"
	"github.com/etnz/wager/eodhd"
	"github.com/etnz/wager/fetch"
	"github.com/etnz/wager/yahoo"
)

// ErrUnknownProvider is returned for a spec naming an unsupported provider.
var ErrUnknownProvider = errors.New("unknown provider")

// Clients holds one client per provider.
type Clients struct {
	BCB       *bcb.Client
	Binance   *binance.Client
	CoinGecko *coingecko.Client
	Yahoo     *yahoo.Client
	EODHD     *eodhd.Client // nil without an API key
}

// New returns the production clients sharing c. eodhdKey may be empty.
func New(c *fetch.Client, eodhdKey string) *Clients {
	cl := &Clients{
		BCB:       bcb.New(c),
		Binance:   binance.New(c),
		CoinGecko: coingecko.New(c),
		Yahoo:     yahoo.New(c),
	}
	if eodhdKey != "" {
		cl.EODHD = eodhd.New(c, eodhdKey)
	}
	return cl
}

// Resolve returns the fetcher described by spec.
func (c *Clients) Resolve(spec string) (fetch.Source, error) {
	provider, arg, ok := strings.Cut(strings.TrimSpace(spec), ":")
	if !ok || arg == "" {
		return fetch.Source{}, fmt.Errorf("invalid source %q, want <provider>:<argument>", spec)
	}
	src := fetch.Source{Name: spec}
	switch provider {
	case "bcb":
		code, err := strconv.Atoi(arg)
		if err != nil {
			return fetch.Source{}, fmt.Errorf("invalid bcb series code in %q: %w", spec, err)
		}
		src.Fetcher = c.BCB.Series(code)
	case "binance":
		src.Fetcher = c.Binance.Symbol(arg)
	case "coingecko":
		src.Fetcher = c.CoinGecko.Coin(arg)
	case "yahoo":
		src.Fetcher = c.Yahoo.Symbol(arg)
	case "yahoo-cross":
		base, fx, ok := strings.Cut(arg, "*")
		if !ok || base == "" || fx == "" {
			return fetch.Source{}, fmt.Errorf("invalid cross %q, want <base>*<fx>", spec)
		}
		src.Fetcher = c.Yahoo.CrossSymbol(base, fx)
	case "eodhd":
		if c.EODHD == nil {
			return fetch.Source{}, fmt.Errorf("source %q needs an EODHD API key", spec)
		}
		src.Fetcher = c.EODHD.Ticker(arg)
	default:
		return fetch.Source{}, fmt.Errorf("%w %q in source %q", ErrUnknownProvider, provider, spec)
	}
	return src, nil
}

// Fetcher returns the fetcher of one instrument, chaining its sources.
func (c *Clients) Fetcher(in wager.Instrument, log zerolog.Logger) (wager.Fetcher, error) {
	chain := make([]fetch.Source, 0, len(in.Sources))
	for _, spec := range in.Sources {
		src, err := c.Resolve(spec)
		if err != nil {
			return nil, fmt.Errorf("instrument %s: %w", in.ID, err)
		}
		chain = append(chain, src)
	}
	if len(chain) == 1 {
		return chain[0].Fetcher, nil
	}
	return fetch.Chain(log.With().Str("instrument", in.ID).Logger(), chain...), nil
}

// Fetchers returns the fetchers of every instrument of cfg, keyed by instrument id.
func (c *Clients) Fetchers(cfg wager.Config, log zerolog.Logger) (map[string]wager.Fetcher, error) {
	fetchers := make(map[string]wager.Fetcher, len(cfg.Instruments))
	var errs []error
	for _, in := range cfg.Instruments {
		f, err := c.Fetcher(in, log)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fetchers[in.ID] = f
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return fetchers, nil
}

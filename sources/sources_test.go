package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etnz/wager"
	"github.com/etnz/wager/fetch"
)

func TestClients_Resolve(t *testing.T) {
	c := New(fetch.New(), "")
	for _, spec := range []string{"bcb:433", "binance:BTCBRL", "coingecko:bitcoin", "yahoo:^BVSP", "yahoo-cross:BTC-USD*BRL=X"} {
		src, err := c.Resolve(spec)
		require.NoError(t, err, spec)
		assert.Equal(t, spec, src.Name)
		assert.NotNil(t, src.Fetcher, spec)
	}

	tests := []struct{ spec, err string }{
		{"bcb", "want <provider>:<argument>"},
		{"bcb:ipca", "invalid bcb series code"},
		{"yahoo-cross:BTC-USD", "want <base>*<fx>"},
		{"eodhd:BVSP.INDX", "needs an EODHD API key"},
		{"stooq:wig20", "unknown provider"},
	}
	for _, tt := range tests {
		_, err := c.Resolve(tt.spec)
		assert.ErrorContains(t, err, tt.err, tt.spec)
	}
	_, err := c.Resolve("stooq:wig20")
	assert.ErrorIs(t, err, ErrUnknownProvider)

	withKey := New(fetch.New(), "key")
	_, err = withKey.Resolve("eodhd:BVSP.INDX")
	assert.NoError(t, err)
}

func TestClients_Fetchers(t *testing.T) {
	fetchers, err := New(fetch.New(), "").Fetchers(wager.DefaultConfig(), zerolog.Nop())
	require.NoError(t, err)
	assert.Len(t, fetchers, 8)

	cfg := wager.DefaultConfig()
	cfg.Instruments[2].Sources = []string{"nowhere:1"}
	_, err = New(fetch.New(), "").Fetchers(cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "instrument cdi")
}

// TestClients_Fallback checks that bitcoin falls back from binance to coingecko.
func TestClients_Fallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/binance"):
			w.WriteHeader(http.StatusUnavailableForLegalReasons)
		case strings.HasPrefix(r.URL.Path, "/coingecko"):
			w.Write([]byte(`{"prices":[[1719187200000,331234.56]]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(fetch.New(fetch.WithRetry(1, 0)), "")
	c.Binance.BaseURL = srv.URL + "/binance"
	c.CoinGecko.BaseURL = srv.URL + "/coingecko"

	btc, err := wager.DefaultConfig().Instrument("bitcoin")
	require.NoError(t, err)
	f, err := c.Fetcher(btc, zerolog.Nop())
	require.NoError(t, err)

	points, err := f.Fetch(context.Background(), wager.NewRange(wager.MustParse("2024-06-24"), wager.MustParse("2024-06-24")))
	require.NoError(t, err)
	assert.Equal(t, []wager.PricePoint{wager.P("2024-06-24", 331234.56)}, points)
}

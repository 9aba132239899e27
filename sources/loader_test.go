package sources

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etnz/wager"
)

func constant(points ...wager.PricePoint) wager.Fetcher {
	return wager.FetcherFunc(func(context.Context, wager.Range) ([]wager.PricePoint, error) {
		return points, nil
	})
}

func testLoader(t *testing.T) *Loader {
	t.Helper()
	cfg := wager.DefaultConfig()
	fetchers := map[string]wager.Fetcher{
		"bitcoin":    constant(wager.P("2024-06-24", 330000), wager.P("2024-07-01", 346500)),
		"ibovespa":   constant(wager.P("2024-06-24", 120000), wager.P("2024-07-01", 123600)),
		"cdi":        constant(wager.P("2024-06-24", 0.04), wager.P("2024-06-25", 0.04)),
		"poupanca":   constant(wager.P("2024-07-01", 0.5)),
		"ifix":       constant(wager.P("2024-06-24", 3300), wager.P("2024-07-01", 3333)),
		"ipca":       constant(wager.P("2024-07-01", 0.38)),
		"ipcaPlus5":  constant(wager.P("2024-07-01", 0.38)),
		"dolarPlus4": constant(wager.P("2024-06-24", 5.0), wager.P("2024-07-01", 5.5)),
	}
	return &Loader{
		Aggregator: wager.NewAggregator(cfg),
		Fetchers:   fetchers,
		Log:        zerolog.Nop(),
		now:        func() time.Time { return time.Date(2024, 7, 2, 9, 0, 0, 0, time.UTC) },
	}
}

func TestLoader_Range(t *testing.T) {
	l := testLoader(t)
	assert.Equal(t, wager.NewRange(wager.MustParse("2024-06-24"), wager.MustParse("2024-07-02")), l.Range())
}

func TestLoader_Dashboard(t *testing.T) {
	l := testLoader(t)
	d, err := l.Dashboard(context.Background())
	require.NoError(t, err)

	require.Len(t, d.Instruments, 8)
	btc, ok := d.Instrument("bitcoin")
	require.True(t, ok)
	assert.InDelta(t, 105000, btc.CurrentValue, 1e-6)
	assert.Equal(t, time.Date(2024, 7, 2, 9, 0, 0, 0, time.UTC), d.LastUpdate)
	assert.Len(t, d.Timeline, 3) // 06-24, 06-25, 07-01
}

func TestLoader_DashboardFailure(t *testing.T) {
	l := testLoader(t)
	l.Fetchers["ifix"] = wager.FetcherFunc(func(context.Context, wager.Range) ([]wager.PricePoint, error) {
		return nil, errors.New("yahoo down")
	})
	_, err := l.Dashboard(context.Background())
	var rerr *wager.RetrievalError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "ifix", rerr.Instrument)
}

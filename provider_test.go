package wager

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constant(points ...PricePoint) Fetcher {
	return FetcherFunc(func(ctx context.Context, r Range) ([]PricePoint, error) { return points, nil })
}

func TestFetchAll(t *testing.T) {
	r := NewRange(MustParse("2024-06-24"), MustParse("2024-07-24"))
	fetchers := map[string]Fetcher{
		"bitcoin":  constant(P("2024-06-25", 2), P("2024-06-24", 1)),
		"ibovespa": constant(P("2024-06-24", 3)),
		"cdi":      constant(),
	}
	raw, err := FetchAll(context.Background(), fetchers, r)
	require.NoError(t, err)
	require.Len(t, raw, 3)
	assert.Equal(t, []PricePoint{P("2024-06-24", 1), P("2024-06-25", 2)}, raw["bitcoin"].Points())
	assert.Equal(t, 0, raw["cdi"].Len())
}

func TestFetchAll_Error(t *testing.T) {
	boom := errors.New("boom")
	fetchers := map[string]Fetcher{
		"bitcoin": constant(P("2024-06-24", 1)),
		"ibovespa": FetcherFunc(func(ctx context.Context, r Range) ([]PricePoint, error) {
			return nil, boom
		}),
	}
	_, err := FetchAll(context.Background(), fetchers, Range{})
	require.Error(t, err)

	var rerr *RetrievalError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "ibovespa", rerr.Instrument)
	assert.ErrorIs(t, err, boom)
}

func TestFetchAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fetchers := map[string]Fetcher{
		"bitcoin": FetcherFunc(func(ctx context.Context, r Range) ([]PricePoint, error) {
			return nil, ctx.Err()
		}),
	}
	_, err := FetchAll(ctx, fetchers, Range{})
	assert.ErrorIs(t, err, context.Canceled)
}

package fetch

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etnz/wager"
)

func src(name string, points []wager.PricePoint, err error) Source {
	return Source{Name: name, Fetcher: wager.FetcherFunc(func(ctx context.Context, r wager.Range) ([]wager.PricePoint, error) {
		return points, err
	})}
}

func TestChain(t *testing.T) {
	want := []wager.PricePoint{wager.P("2024-06-24", 350000)}
	f := Chain(zerolog.Nop(),
		src("binance", nil, errors.New("451 unavailable for legal reasons")),
		src("coingecko", nil, nil), // empty answers fall back too
		src("yahoo", want, nil),
	)
	got, err := f.Fetch(context.Background(), wager.Range{})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestChain_AllFail(t *testing.T) {
	boom := errors.New("boom")
	f := Chain(zerolog.Nop(), src("a", nil, boom), src("b", nil, nil))
	_, err := f.Fetch(context.Background(), wager.Range{})
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, ErrNoData)
	assert.ErrorContains(t, err, "a: boom")

	_, err = Chain(zerolog.Nop()).Fetch(context.Background(), wager.Range{})
	assert.ErrorIs(t, err, ErrNoData)
}

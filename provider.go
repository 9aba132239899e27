package wager

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Fetcher retrieves the raw series of one instrument over a range of days.
//
// Implementations return observations in any order and may return points
// slightly outside of the range.
type Fetcher interface {
	Fetch(ctx context.Context, r Range) ([]PricePoint, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, r Range) ([]PricePoint, error)

func (f FetcherFunc) Fetch(ctx context.Context, r Range) ([]PricePoint, error) { return f(ctx, r) }

// RetrievalError reports that the raw series of an instrument could not be
// retrieved, after every retry and fallback source was exhausted.
type RetrievalError struct {
	Instrument string
	Err        error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("failed to retrieve %s: %v", e.Instrument, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// FetchAll retrieves the raw series of every instrument concurrently.
//
// The first failure cancels the other retrievals and is returned as a
// *RetrievalError.
func FetchAll(ctx context.Context, fetchers map[string]Fetcher, r Range) (map[string]Series, error) {
	g, ctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	raw := make(map[string]Series, len(fetchers))
	for id, f := range fetchers {
		g.Go(func() error {
			points, err := f.Fetch(ctx, r)
			if err != nil {
				return &RetrievalError{Instrument: id, Err: err}
			}
			s := NewSeries(points...)
			mu.Lock()
			raw[id] = s
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return raw, nil
}

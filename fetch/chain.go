package fetch

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/etnz/wager"
)

// ErrNoData is returned by providers answering successfully without any observation.
var ErrNoData = errors.New("no data")

// Source is a named Fetcher.
type Source struct {
	Name string
	wager.Fetcher
}

// Chain returns a Fetcher trying each source in turn until one returns at
// least one point. When all of them fail, the errors of every source are
// returned joined.
func Chain(log zerolog.Logger, sources ...Source) wager.Fetcher {
	return wager.FetcherFunc(func(ctx context.Context, r wager.Range) ([]wager.PricePoint, error) {
		var errs []error
		for i, src := range sources {
			points, err := src.Fetch(ctx, r)
			if err == nil && len(points) == 0 {
				err = ErrNoData
			}
			if err == nil {
				return points, nil
			}
			errs = append(errs, fmt.Errorf("%s: %w", src.Name, err))
			if ctx.Err() != nil {
				break
			}
			if i+1 < len(sources) {
				log.Warn().Err(err).Str("source", src.Name).Str("fallback", sources[i+1].Name).Msg("source failed, trying fallback")
			}
		}
		if len(errs) == 0 {
			return nil, ErrNoData
		}
		return nil, errors.Join(errs...)
	})
}

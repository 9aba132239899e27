package sources

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/etnz/wager"
	"github.com/etnz/wager/metrics"
)

// Loader retrieves every raw series of a configuration and computes the dashboard.
type Loader struct {
	Aggregator *wager.Aggregator
	Fetchers   map[string]wager.Fetcher
	Metrics    *metrics.Registry
	Log        zerolog.Logger

	now func() time.Time
}

// NewLoader resolves the sources of every instrument of cfg with clients.
func NewLoader(cfg wager.Config, clients *Clients, m *metrics.Registry, log zerolog.Logger) (*Loader, error) {
	fetchers, err := clients.Fetchers(cfg, log)
	if err != nil {
		return nil, err
	}
	return &Loader{
		Aggregator: wager.NewAggregator(cfg),
		Fetchers:   fetchers,
		Metrics:    m,
		Log:        log,
		now:        time.Now,
	}, nil
}

// Range returns the range of dates retrieved: from the campaign start to today.
func (l *Loader) Range() wager.Range {
	return wager.NewRange(l.Aggregator.Config().StartDate, wager.DateOf(l.now()))
}

// Raw retrieves the raw series of every instrument.
func (l *Loader) Raw(ctx context.Context) (map[string]wager.Series, error) {
	r := l.Range()
	l.Log.Debug().Stringer("from", r.From).Stringer("to", r.To).Int("instruments", len(l.Fetchers)).Msg("retrieving series")
	return wager.FetchAll(ctx, l.Fetchers, r)
}

// Dashboard retrieves every raw series and computes the dashboard.
func (l *Loader) Dashboard(ctx context.Context) (wager.Dashboard, error) {
	raw, err := l.Raw(ctx)
	if err != nil {
		return wager.Dashboard{}, err
	}
	start := time.Now()
	d, err := l.Aggregator.Compute(raw, l.now())
	l.Metrics.ObserveCompute(time.Since(start))
	if err != nil {
		return wager.Dashboard{}, err
	}
	l.Log.Info().Int("points", len(d.Timeline)).Msg("dashboard computed")
	return d, nil
}

package fetch

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/etnz/wager/metrics"
)

// Breakers holds one circuit breaker per provider.
//
// A breaker opens after 3 consecutive failed requests, and lets a probe
// through after the open timeout.
type Breakers struct {
	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
	timeout  time.Duration
	metrics  *metrics.Registry
}

// NewBreakers creates breakers staying open for 'timeout' once tripped.
func NewBreakers(timeout time.Duration, m *metrics.Registry) *Breakers {
	return &Breakers{
		breakers: make(map[string]*gobreaker.CircuitBreaker),
		timeout:  timeout,
		metrics:  m,
	}
}

func (b *Breakers) get(provider string) *gobreaker.CircuitBreaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	if cb, ok := b.breakers[provider]; ok {
		return cb
	}
	st := gobreaker.Settings{
		Name:     provider,
		Interval: 60 * time.Second,
		Timeout:  b.timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("provider", name).Stringer("from", from).Stringer("to", to).Msg("circuit breaker state changed")
			b.metrics.SetBreakerState(name, int(to))
		},
	}
	cb := gobreaker.NewCircuitBreaker(st)
	b.breakers[provider] = cb
	return cb
}

// Execute runs fn through the breaker of provider. It fails fast with
// gobreaker.ErrOpenState while the breaker is open.
func (b *Breakers) Execute(provider string, fn func() ([]byte, error)) ([]byte, error) {
	if b == nil {
		return fn()
	}
	res, err := b.get(provider).Execute(func() (any, error) { return fn() })
	if err != nil {
		return nil, err
	}
	return res.([]byte), nil
}

// State returns the state of the breaker of provider.
func (b *Breakers) State(provider string) gobreaker.State {
	if b == nil {
		return gobreaker.StateClosed
	}
	return b.get(provider).State()
}

// Package fetch is the HTTP plumbing shared by market data providers:
// retries with backoff, browser like headers, per host rate limiting, per
// provider circuit breakers, an optional daily disk cache and fallback chains.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/etnz/wager/metrics"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// StatusError is returned when an upstream answers with a non 2xx status.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.Status, http.StatusText(e.Status))
}

// retryable reports whether a status is worth retrying.
func retryable(status int) bool {
	return status == http.StatusForbidden || status == http.StatusTooManyRequests || status >= 500
}

// Client performs GET requests against market data providers.
type Client struct {
	http     *http.Client
	limiter  *Limiter
	breakers *Breakers
	metrics  *metrics.Registry
	log      zerolog.Logger
	attempts int
	backoff  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option { return func(cl *Client) { cl.http = c } }

// WithLimiter rate limits requests per host.
func WithLimiter(l *Limiter) Option { return func(cl *Client) { cl.limiter = l } }

// WithBreakers guards every provider with a circuit breaker.
func WithBreakers(b *Breakers) Option { return func(cl *Client) { cl.breakers = b } }

// WithMetrics records request metrics.
func WithMetrics(m *metrics.Registry) Option { return func(cl *Client) { cl.metrics = m } }

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option { return func(cl *Client) { cl.log = l } }

// WithRetry sets the number of attempts, and the backoff unit: attempt i waits backoff*(i+1) before retrying.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(cl *Client) {
		cl.attempts = max(1, attempts)
		cl.backoff = backoff
	}
}

// WithDiskCache keeps successful responses in dir for the day.
func WithDiskCache(dir string) Option {
	return func(cl *Client) {
		base := cl.http.Transport
		cl.http = &http.Client{Timeout: cl.http.Timeout, Transport: NewDiskCache(dir, base)}
	}
}

// New returns a Client that retries 3 times with a 1s backoff unit by default.
func New(opts ...Option) *Client {
	c := &Client{
		http:     &http.Client{Timeout: 30 * time.Second},
		log:      zerolog.Nop(),
		attempts: 3,
		backoff:  time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the body of a successful GET on url. provider names the upstream
// for the circuit breaker, the metrics and the logs.
func (c *Client) Get(ctx context.Context, provider, url string) ([]byte, error) {
	start := time.Now()
	body, err := c.breakers.Execute(provider, func() ([]byte, error) {
		return c.retry(ctx, provider, url)
	})
	c.metrics.ObserveFetch(provider, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", provider, err)
	}
	return body, nil
}

// GetJSON performs Get and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, provider, url string, v any) error {
	body, err := c.Get(ctx, provider, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%s: invalid json response: %w", provider, err)
	}
	return nil
}

func (c *Client) retry(ctx context.Context, provider, url string) ([]byte, error) {
	var lastErr error
	for i := range c.attempts {
		if i > 0 {
			wait := c.backoff * time.Duration(i)
			c.log.Debug().Str("provider", provider).Int("attempt", i+1).Dur("wait", wait).Err(lastErr).Msg("retrying")
			select {
			case <-ctx.Done():
				return nil, errors.Join(lastErr, ctx.Err())
			case <-time.After(wait):
			}
		}
		body, err := c.do(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		var se *StatusError
		if errors.As(err, &se) && !retryable(se.Status) {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}
	c.log.Warn().Str("provider", provider).Err(lastErr).Msg("request failed")
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx, req.URL.Host); err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	c.log.Debug().Str("host", req.URL.Host).Str("path", req.URL.Path).Int("status", resp.StatusCode).Msg("GET")
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{URL: req.URL.Redacted(), Status: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

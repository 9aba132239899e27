package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/etnz/wager/cache"
	"github.com/etnz/wager/metrics"
	"github.com/etnz/wager/renderer"
	"github.com/etnz/wager/server"
)

type serveCmd struct {
	addr      string
	redisAddr string
	jsonLogs  bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the dashboard over HTTP" }
func (*serveCmd) Usage() string {
	return `bet serve [-addr <host:port>] [-redis <host:port>]

  Serves the dashboard as JSON on /api/data and as a web page on /, along with
  /health and /metrics. The dashboard is computed at most once per cache TTL,
  and cached in Redis when an address is given. See 'bet topic api'.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Address to listen on. Defaults to the configured http_addr.")
	f.StringVar(&c.redisAddr, "redis", "", "Redis address. Defaults to the configured redis_addr, in memory cache when empty.")
	f.BoolVar(&c.jsonLogs, "json-logs", true, "Log JSON lines instead of console messages.")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.jsonLogs {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(log.Logger.GetLevel())
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Error().Err(err).Msg("loading configuration")
		return subcommands.ExitFailure
	}
	addr := cmp(c.addr, cfg.HTTPAddr)
	redisAddr := cmp(c.redisAddr, cfg.RedisAddr)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	l, err := newLoader(cfg, m)
	if err != nil {
		log.Error().Err(err).Msg("resolving sources")
		return subcommands.ExitFailure
	}

	var store cache.Store = cache.WithMetrics(cache.NewMemory(), "memory", m)
	if redisAddr != "" {
		r, err := cache.NewRedis(ctx, redisAddr, os.Getenv("WAGER_REDIS_PASSWORD"), 0)
		if err != nil {
			log.Error().Err(err).Msg("connecting to redis")
			return subcommands.ExitFailure
		}
		defer r.Close()
		store = cache.WithMetrics(r, "redis", m)
		log.Info().Str("addr", redisAddr).Msg("caching in redis")
	}

	srv := server.New(l,
		server.WithStore(store, cfg.CacheTTL),
		server.WithMetrics(m),
		server.WithLogger(log.Logger),
		server.WithRenderOptions(renderer.Options{Currency: cfg.Currency}),
	)
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// cmp returns the first non empty value.
func cmp(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

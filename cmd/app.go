// Package cmd implements the bet command line application.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/etnz/wager"
	"github.com/etnz/wager/fetch"
	"github.com/etnz/wager/metrics"
	"github.com/etnz/wager/sources"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&dashboardCmd{}, "wager")
	c.Register(&seriesCmd{}, "wager")
	c.Register(&serveCmd{}, "wager")
	c.Register(&assistCmd{}, "wager")
	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile  = flag.String("config", "", "Path to a YAML configuration file. See 'bet topic config'.")
	cacheDir    = flag.String("cache-dir", "", "Folder where provider responses are kept for the day. Disabled when empty.")
	eodhdAPIKey = flag.String("eodhd-api-key", os.Getenv("EODHD_API_KEY"), "EODHD API key, enables eodhd: sources.")
	Verbose     = flag.Bool("v", false, "Log debug messages.")
)

// stdout is where commands write their output.
var stdout io.Writer = os.Stdout

// SetupLogging sets the global logger for interactive use.
func SetupLogging() {
	level := zerolog.InfoLevel
	if *Verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).Level(level)
}

// loader is what commands need to compute dashboards.
type loader interface {
	Dashboard(ctx context.Context) (wager.Dashboard, error)
	Raw(ctx context.Context) (map[string]wager.Series, error)
}

// newLoader builds the loader of the configuration. Tests replace it.
var newLoader = func(cfg wager.Config, m *metrics.Registry) (loader, error) {
	return productionLoader(cfg, m)
}

func productionLoader(cfg wager.Config, m *metrics.Registry) (*sources.Loader, error) {
	opts := []fetch.Option{
		fetch.WithLogger(log.Logger),
		fetch.WithLimiter(fetch.NewLimiter(2, 4)),
		fetch.WithBreakers(fetch.NewBreakers(5*time.Minute, m)),
		fetch.WithMetrics(m),
	}
	if *cacheDir != "" {
		opts = append(opts, fetch.WithDiskCache(*cacheDir))
	}
	clients := sources.New(fetch.New(opts...), *eodhdAPIKey)
	return sources.NewLoader(cfg, clients, m, log.Logger)
}

// loadConfig loads the configuration file given by -config, or the defaults.
func loadConfig() (wager.Config, error) {
	return wager.LoadConfig(*configFile)
}

// memo computes the dashboard once and serves it for the rest of the session.
type memo struct {
	loader
	once sync.Once
	d    wager.Dashboard
	err  error
}

func (m *memo) Dashboard(ctx context.Context) (wager.Dashboard, error) {
	m.once.Do(func() { m.d, m.err = m.loader.Dashboard(ctx) })
	return m.d, m.err
}

// renderMarkdown formats markdown for the terminal, falling back to the raw text.
func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

// printMarkdown prints markdown for the terminal, or as is when not writing to a terminal.
func printMarkdown(md string) {
	if f, ok := stdout.(*os.File); ok {
		if fi, err := f.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
			md = renderMarkdown(md)
		}
	}
	fmt.Fprint(stdout, md)
}

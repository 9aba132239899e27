package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/google/subcommands"

	"github.com/etnz/wager/renderer"
)

type dashboardCmd struct {
	format  string
	section string
}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "display the scoreboard and statistics of the wager" }
func (*dashboardCmd) Usage() string {
	return `bet dashboard [-format markdown|json] [-section <section>]

  Retrieves the market data of every instrument since the start of the wager
  and displays the dashboard.

  Sections: all, scoreboard, returns, consistency, timeline.
  The json format prints the payload served by 'bet serve' on /api/data.
`
}

func (c *dashboardCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "format", "markdown", "Output format: markdown or json.")
	f.StringVar(&c.section, "section", "all", "Dashboard section to display in markdown.")
}

func (c *dashboardCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.format != "markdown" && c.format != "json" {
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", c.format)
		return subcommands.ExitUsageError
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	l, err := newLoader(cfg, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	d, err := l.Dashboard(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing the dashboard: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.format == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(d); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding the dashboard: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	opts := renderer.Options{Currency: cfg.Currency}
	var md string
	switch c.section {
	case "all":
		md = renderer.Dashboard(d, opts)
	case "scoreboard":
		md = renderer.Scoreboard(d, opts)
	case "returns":
		md = renderer.Returns(d)
	case "consistency":
		md = renderer.Consistency(d)
	case "timeline":
		md = renderer.Timeline(d, opts)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown section %q\n", c.section)
		return subcommands.ExitUsageError
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}

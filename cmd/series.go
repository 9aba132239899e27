package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/subcommands"
	md "github.com/nao1215/markdown"

	"github.com/etnz/wager"
)

type seriesCmd struct {
	raw    bool
	from   string
	format string
}

func (*seriesCmd) Name() string     { return "series" }
func (*seriesCmd) Synopsis() string { return "display the series of one instrument" }
func (*seriesCmd) Usage() string {
	return `bet series [-raw] [-from <date>] [-format markdown|json] <instrument>

  Displays the value of the investment in one instrument over time, or with
  -raw the prices or rates as returned by its source.
`
}

func (c *seriesCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.raw, "raw", false, "Display the raw series instead of the value of the investment.")
	f.StringVar(&c.from, "from", "", "Only display points from this date. See 'bet topic dates'.")
	f.StringVar(&c.format, "format", "markdown", "Output format: markdown or json.")
}

func (c *seriesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one instrument is required")
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)

	var from wager.Date
	if c.from != "" {
		var err error
		if from, err = wager.ParseDate(c.from); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -from: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	in, err := cfg.Instrument(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	l, err := newLoader(cfg, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	var s wager.Series
	if c.raw {
		raw, err := l.Raw(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error retrieving %s: %v\n", id, err)
			return subcommands.ExitFailure
		}
		s = raw[id]
	} else {
		d, err := l.Dashboard(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error computing the dashboard: %v\n", err)
			return subcommands.ExitFailure
		}
		res, _ := d.Instrument(id)
		s = res.Data
	}

	var points []wager.PricePoint
	for on, v := range s.All() {
		if !on.Before(from) {
			points = append(points, wager.PricePoint{Date: on, Value: v})
		}
	}

	if c.format == "json" {
		if err := json.NewEncoder(stdout).Encode(wager.NewSeries(points...)); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding the series: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(seriesMarkdown(in, points, c.raw, cfg.Currency))
	return subcommands.ExitSuccess
}

func seriesMarkdown(in wager.Instrument, points []wager.PricePoint, raw bool, currency string) string {
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Date", in.Name},
		Rows:      [][]string{},
	}
	for _, p := range points {
		value := wager.M(p.Value, currency).Exact()
		if raw {
			value = fmt.Sprintf("%g", p.Value)
		}
		table.Rows = append(table.Rows, []string{p.Date.String(), value})
	}

	var b strings.Builder
	doc := md.NewMarkdown(&b)
	if raw {
		doc.H1f("%s (%s, %s)", in.Name, in.Kind, strings.Join(in.Sources, " | "))
	} else {
		doc.H1(in.Name)
	}
	doc.Table(table)
	return doc.String()
}

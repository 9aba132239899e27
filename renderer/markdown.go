// Package renderer renders dashboards as markdown.
package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"github.com/etnz/wager"
)

// Options controls how a dashboard is rendered.
type Options struct {
	Currency string // currency of the invested amounts, BRL when empty
	Title    string // document title, derived from the primaries when empty
}

func (o Options) currency() string {
	if o.Currency == "" {
		return "BRL"
	}
	return o.Currency
}

// Dashboard renders the full dashboard: scoreboard, returns, consistency and monthly values.
func Dashboard(d wager.Dashboard, opts Options) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	scoreboard(doc, d, opts)
	doc.H2("Returns")
	returns(doc, d)
	doc.H2("Consistency")
	consistency(doc, d)
	doc.H2("Monthly values")
	timeline(doc, d, opts)
	if !d.LastUpdate.IsZero() {
		doc.PlainText(md.Italic("Last update: " + d.LastUpdate.UTC().Format("2006-01-02 15:04 MST")))
	}
	return doc.String()
}

// Scoreboard renders the head to head of the primary instruments.
func Scoreboard(d wager.Dashboard, opts Options) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	scoreboard(doc, d, opts)
	return doc.String()
}

// Returns renders the period returns of every instrument.
func Returns(d wager.Dashboard) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	returns(doc, d)
	return doc.String()
}

// Consistency renders the monthly consistency of every instrument.
func Consistency(d wager.Dashboard) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	consistency(doc, d)
	return doc.String()
}

// Timeline renders the value of every instrument at the end of each month.
func Timeline(d wager.Dashboard, opts Options) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	timeline(doc, d, opts)
	return doc.String()
}

func title(d wager.Dashboard, opts Options) string {
	if opts.Title != "" {
		return opts.Title
	}
	primaries := d.Primaries()
	if len(primaries) != 2 {
		return "Dashboard"
	}
	return fmt.Sprintf("%s vs %s", primaries[0].Name, primaries[1].Name)
}

func scoreboard(doc *md.Markdown, d wager.Dashboard, opts Options) {
	doc.H1(title(d, opts))

	primaries := d.Primaries()
	leader, ok := d.Leader()
	switch {
	case !ok:
		doc.PlainText("No contender yet.")
	case len(primaries) == 2 && primaries[0].CurrentValue == primaries[1].CurrentValue:
		doc.PlainText("It's a tie.")
	default:
		runnerUp := primaries[0]
		if runnerUp.ID == leader.ID && len(primaries) > 1 {
			runnerUp = primaries[1]
		}
		gap := leader.ReturnPercent - runnerUp.ReturnPercent
		doc.PlainTextf("%s leads by %.2f points.", md.Bold(leader.Name), float64(gap))
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Contender", "Invested", "Current", "Gain", "Return"},
		Rows:      [][]string{},
	}
	for _, r := range primaries {
		perf := r.Performance(opts.currency())
		table.Rows = append(table.Rows, []string{
			r.Name,
			perf.Start.String(),
			perf.End.String(),
			perf.Change().SignedString(),
			perf.Percent().SignedString(),
		})
	}
	doc.Table(table)
}

func returns(doc *md.Markdown, d wager.Dashboard) {
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Asset", "Month", "YTD", "3M", "6M", "12M", "24M", "Inception"},
		Rows:      [][]string{},
	}
	for _, row := range d.Table {
		r := row.Returns
		table.Rows = append(table.Rows, []string{
			row.Name,
			r.CurrentMonth.SignedString(),
			r.YearToDate.SignedString(),
			r.Last3Months.SignedString(),
			r.Last6Months.SignedString(),
			r.Last12Months.SignedString(),
			r.Last24Months.SignedString(),
			r.SinceInception.SignedString(),
		})
	}
	doc.Table(table)
}

func consistency(doc *md.Markdown, d wager.Dashboard) {
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Asset", "Positive months", "Negative months", "Best month", "Worst month"},
		Rows:      [][]string{},
	}
	for _, row := range d.Table {
		c := row.Consistency
		table.Rows = append(table.Rows, []string{
			row.Name,
			fmt.Sprint(c.PositiveMonths),
			fmt.Sprint(c.NegativeMonths),
			c.BestMonth.SignedString(),
			c.WorstMonth.SignedString(),
		})
	}
	doc.Table(table)
}

func timeline(doc *md.Markdown, d wager.Dashboard, opts Options) {
	if len(d.Timeline) == 0 {
		doc.PlainText("No data.")
		return
	}
	header := []string{"Month"}
	align := []md.TableAlignment{md.AlignLeft}
	for _, r := range d.Instruments {
		header = append(header, r.Name)
		align = append(align, md.AlignRight)
	}
	table := md.TableSet{Alignment: align, Header: header, Rows: [][]string{}}

	first, last := d.Timeline[0].Date, d.Timeline[len(d.Timeline)-1].Date
	i := 0
	for month := range wager.NewRange(first, last).Periods(wager.Monthly) {
		// the last merged point of the month holds the forward filled values.
		for i+1 < len(d.Timeline) && !d.Timeline[i+1].Date.After(month.To) {
			i++
		}
		point := d.Timeline[i]
		row := []string{month.From.MonthKey()}
		for _, r := range d.Instruments {
			v, ok := point.Value(r.ID)
			if !ok {
				row = append(row, "-")
				continue
			}
			row = append(row, wager.M(v, opts.currency()).String())
		}
		table.Rows = append(table.Rows, row)
	}
	doc.Table(table)
}

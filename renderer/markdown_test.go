package renderer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etnz/wager"
)

func testDashboard(t *testing.T) wager.Dashboard {
	t.Helper()
	cfg := wager.Config{
		InitialInvestment: 100000,
		StartDate:         wager.MustParse("2024-06-24"),
		Currency:          "BRL",
		Instruments: []wager.Instrument{
			{ID: "bitcoin", Name: "Bitcoin", Color: "#F7931A", Kind: wager.PriceRatio, Primary: true, Sources: []string{"x"}},
			{ID: "ibovespa", Name: "Ibovespa", Color: "#3B82F6", Kind: wager.PriceRatio, Primary: true, Sources: []string{"x"}},
			{ID: "cdi", Name: "CDI", Color: "#D97706", Kind: wager.DailyRate, Sources: []string{"x"}},
		},
	}
	raw := map[string]wager.Series{
		"bitcoin":  wager.NewSeries(wager.P("2024-06-24", 330000), wager.P("2024-06-30", 363000), wager.P("2024-07-01", 346500)),
		"ibovespa": wager.NewSeries(wager.P("2024-06-24", 120000), wager.P("2024-06-28", 121200), wager.P("2024-07-02", 123600)),
		"cdi":      wager.NewSeries(wager.P("2024-06-24", 0.04), wager.P("2024-06-25", 0.04)),
	}
	d, err := wager.NewAggregator(cfg).Compute(raw, time.Date(2024, 7, 3, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return d
}

func TestScoreboard(t *testing.T) {
	got := Scoreboard(testDashboard(t), Options{})
	assert.Contains(t, got, "# Bitcoin vs Ibovespa")
	assert.Contains(t, got, "**Bitcoin** leads by 2.00 points.")
	assert.Contains(t, got, "| Contender | Invested | Current | Gain | Return |")
	assert.Contains(t, got, "| Bitcoin | R$100.000 | R$105.000 | +R$5.000 | +5.00% |")
	assert.Contains(t, got, "| Ibovespa | R$100.000 | R$103.000 | +R$3.000 | +3.00% |")

	assert.Contains(t, Scoreboard(testDashboard(t), Options{Title: "A Aposta"}), "# A Aposta")
}

func TestScoreboard_Tie(t *testing.T) {
	d := testDashboard(t)
	d.Instruments[1].CurrentValue = d.Instruments[0].CurrentValue
	assert.Contains(t, Scoreboard(d, Options{}), "It's a tie.")

	assert.Contains(t, Scoreboard(wager.Dashboard{}, Options{}), "No contender yet.")
}

func TestReturns(t *testing.T) {
	got := Returns(testDashboard(t))
	assert.Contains(t, got, "| Asset | Month | YTD | 3M | 6M | 12M | 24M | Inception |")
	// bitcoin: 105000 against 110000 at the end of June.
	assert.Contains(t, got, "| Bitcoin | -4.55% |")
	assert.Contains(t, got, "+5.00% |\n")
}

func TestConsistency(t *testing.T) {
	got := Consistency(testDashboard(t))
	assert.Contains(t, got, "| Asset | Positive months | Negative months | Best month | Worst month |")
	// June +10%, July -4.55%
	assert.Contains(t, got, "| Bitcoin | 1 | 1 | +10.00% | -4.55% |")
}

func TestTimeline(t *testing.T) {
	got := Timeline(testDashboard(t), Options{})
	assert.Contains(t, got, "| Month | Bitcoin | Ibovespa | CDI |")
	assert.Contains(t, got, "| 2024-06 | R$110.000 | R$101.000 | R$100.080 |")
	assert.Contains(t, got, "| 2024-07 | R$105.000 | R$103.000 | R$100.080 |")

	assert.Contains(t, Timeline(wager.Dashboard{}, Options{}), "No data.")
}

func TestDashboard(t *testing.T) {
	got := Dashboard(testDashboard(t), Options{})
	for _, want := range []string{"# Bitcoin vs Ibovespa", "## Returns", "## Consistency", "## Monthly values", "*Last update: 2024-07-03 12:00 UTC*"} {
		assert.Contains(t, got, want)
	}
}

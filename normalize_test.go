package wager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func values(s Series) []float64 {
	out := make([]float64, 0, s.Len())
	for _, v := range s.All() {
		out = append(out, v)
	}
	return out
}

func TestPricesToPortfolioValues(t *testing.T) {
	prices := NewSeries(P("2024-01-01", 100), P("2024-02-01", 110), P("2024-03-01", 99))
	got := PricesToPortfolioValues(prices, 100000)

	require.Equal(t, 3, got.Len())
	assert.InDeltaSlice(t, []float64{100000, 110000, 99000}, values(got), 1e-6)
	assert.Equal(t, prices.Dates(), got.Dates())
}

func TestPricesToPortfolioValues_ScaleInvariance(t *testing.T) {
	for _, first := range []float64{0.0001, 1, 63.5, 350000, 1e12} {
		prices := NewSeries(P("2024-06-24", first), P("2024-06-25", first*2))
		got := PricesToPortfolioValues(prices, 100000)
		p, ok := got.First()
		require.True(t, ok)
		assert.Equal(t, 100000.0, p.Value, "first price %v", first)
	}
}

func TestPricesToPortfolioValues_Degenerate(t *testing.T) {
	assert.Equal(t, 0, PricesToPortfolioValues(Series{}, 100000).Len())
	assert.Equal(t, 0, PricesToPortfolioValues(NewSeries(P("2024-01-01", 0), P("2024-01-02", 1)), 100000).Len())
}

func TestAccumulateDailyRate(t *testing.T) {
	rates := NewSeries(P("2024-01-01", 0.1), P("2024-01-02", 0.1), P("2024-01-03", 0.1))
	got := AccumulateDailyRate(rates, 1000)

	require.Equal(t, 3, got.Len())
	assert.InDeltaSlice(t, []float64{1001, 1002.001, 1003.003001}, values(got), 1e-9)
	assert.Equal(t, 0, AccumulateDailyRate(Series{}, 1000).Len())
}

func TestAccumulateDailyRate_Monotonic(t *testing.T) {
	nonNegative := NewSeries(P("2024-01-01", 0.04), P("2024-01-02", 0), P("2024-01-03", 0.05))
	got := values(AccumulateDailyRate(nonNegative, 100000))
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i], got[i-1])
	}

	withNegative := NewSeries(P("2024-01-01", 0.04), P("2024-01-02", -0.01))
	got = values(AccumulateDailyRate(withNegative, 100000))
	assert.Less(t, got[1], got[0])
}

func TestMonthlySpread(t *testing.T) {
	assert.Equal(t, 0.0, MonthlySpread(0))
	assert.InDelta(t, 0.0040741237836483535, MonthlySpread(0.05), 1e-9)
	// twelve monthly spreads compound back to the annual one.
	acc := 1.0
	for range 12 {
		acc *= 1 + MonthlySpread(0.05)
	}
	assert.InDelta(t, 1.05, acc, 1e-12)
}

func TestAccumulateMonthlyRate(t *testing.T) {
	rates := NewSeries(P("2024-06-01", 0.5), P("2024-08-01", 1.0)) // no rate for July
	axis := []Date{
		MustParse("2024-06-24"), MustParse("2024-06-25"),
		MustParse("2024-07-01"), MustParse("2024-07-15"),
		MustParse("2024-08-01"), MustParse("2024-08-02"),
	}
	got := AccumulateMonthlyRate(rates, axis, 100000, 0)

	assert.Equal(t, axis, got.Dates())
	assert.InDeltaSlice(t, []float64{100500, 100500, 100500, 100500, 101505, 101505}, values(got), 1e-6)
}

func TestAccumulateMonthlyRate_Spread(t *testing.T) {
	rates := NewSeries(P("2024-06-01", 0.2), P("2024-07-01", 0.3))
	axis := []Date{MustParse("2024-07-02"), MustParse("2024-06-30"), MustParse("2024-07-02")} // unsorted, duplicated
	got := AccumulateMonthlyRate(rates, axis, 100000, 0.05)

	spread := MonthlySpread(0.05)
	june := 100000 * (1 + 0.002 + spread)
	july := june * (1 + 0.003 + spread)
	assert.Equal(t, []Date{MustParse("2024-06-30"), MustParse("2024-07-02")}, got.Dates())
	assert.InDeltaSlice(t, []float64{june, july}, values(got), 1e-6)
}

func TestAccumulateMonthlyRate_NoRates(t *testing.T) {
	axis := []Date{MustParse("2024-06-24"), MustParse("2024-07-24")}
	got := AccumulateMonthlyRate(Series{}, axis, 100000, 0.05)
	assert.Equal(t, []float64{100000, 100000}, values(got))
	assert.Equal(t, 0, AccumulateMonthlyRate(NewSeries(P("2024-06-01", 0.5)), nil, 100000, 0).Len())
}

func TestFXPlusLinearSpread(t *testing.T) {
	start := MustParse("2024-06-24")
	fx := NewSeries(P("2024-06-24", 5.0), P("2025-06-24", 5.5))
	got := FXPlusLinearSpread(fx, start, 100000, 0.04)

	// 365 days later: +10% on the rate, +4% of linear spread.
	assert.InDeltaSlice(t, []float64{100000, 100000 * 1.1 * 1.04}, values(got), 1e-6)
	assert.Equal(t, 0, FXPlusLinearSpread(Series{}, start, 100000, 0.04).Len())
}

func TestFXPlusLinearSpread_StartIsCampaignStart(t *testing.T) {
	start := MustParse("2024-06-24")
	// first observation 73 days after the campaign start.
	fx := NewSeries(P("2024-09-05", 5.0))
	got := FXPlusLinearSpread(fx, start, 100000, 0.04)
	assert.InDeltaSlice(t, []float64{100000 * (1 + 0.04*73/365.0)}, values(got), 1e-6)
}

func TestNormalization_Normalize(t *testing.T) {
	raw := NewSeries(P("2024-06-24", 2), P("2024-06-25", 4))
	axis := raw.Dates()
	tests := []struct {
		kind Kind
		want []float64
	}{
		{PriceRatio, []float64{100, 200}},
		{DailyRate, []float64{102, 106.08}},
		{MonthlyRate, []float64{104, 104}}, // one compounding per month, the latest rate of the month
		{FXLinearSpread, []float64{100, 200}},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			n := Normalization{Kind: tt.kind, InitialInvestment: 100, Start: MustParse("2024-06-24")}
			assert.InDeltaSlice(t, tt.want, values(n.Normalize(raw, axis)), 1e-9)
		})
	}
}

func TestParseKind(t *testing.T) {
	for _, name := range []string{"price-ratio", "daily-rate", "monthly-rate", "fx-linear-spread"} {
		k, err := ParseKind(name)
		require.NoError(t, err)
		assert.Equal(t, name, k.String())
	}
	_, err := ParseKind("weekly-rate")
	assert.Error(t, err)

	var k Kind
	require.NoError(t, k.UnmarshalText([]byte(" Monthly-Rate ")))
	assert.Equal(t, MonthlyRate, k)
}

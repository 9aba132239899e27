package wager

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Kind tells how a raw series converts into the value of an investment.
type Kind int

const (
	// PriceRatio applies to direct price series (a crypto price, an index level).
	PriceRatio Kind = iota
	// DailyRate applies to a series of per-day percentage rates compounded every observation.
	DailyRate
	// MonthlyRate applies to a series of monthly percentage rates compounded once a month, plus an optional annual spread.
	MonthlyRate
	// FXLinearSpread applies to a foreign exchange rate plus an annual spread accrued linearly over calendar days.
	FXLinearSpread
)

var kindNames = []string{"price-ratio", "daily-rate", "monthly-rate", "fx-linear-spread"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind parses a kind name as returned by Kind.String.
func ParseKind(s string) (Kind, error) {
	i := slices.Index(kindNames, strings.ToLower(strings.TrimSpace(s)))
	if i < 0 {
		return 0, fmt.Errorf("unknown series kind %q, want one of %s", s, strings.Join(kindNames, ", "))
	}
	return Kind(i), nil
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(text []byte) error {
	v, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Normalization holds the parameters shared by all normalization kinds.
type Normalization struct {
	Kind              Kind
	InitialInvestment float64
	AnnualSpread      float64 // e.g. 0.05 for +5% a year
	Start             Date    // reference date of the linear spread
}

// Normalize converts a raw series into the value series of an initial investment.
//
// axis is only used by MonthlyRate, the returned series then has exactly one
// point per date of axis.
func (n Normalization) Normalize(raw Series, axis []Date) Series {
	switch n.Kind {
	case DailyRate:
		return AccumulateDailyRate(raw, n.InitialInvestment)
	case MonthlyRate:
		return AccumulateMonthlyRate(raw, axis, n.InitialInvestment, n.AnnualSpread)
	case FXLinearSpread:
		return FXPlusLinearSpread(raw, n.Start, n.InitialInvestment, n.AnnualSpread)
	default:
		return PricesToPortfolioValues(raw, n.InitialInvestment)
	}
}

// PricesToPortfolioValues returns the value over time of 'initial' invested at the first price of the series.
//
// A series whose first price is zero has no meaningful ratio and yields an empty series.
func PricesToPortfolioValues(prices Series, initial float64) Series {
	first, ok := prices.First()
	if !ok || first.Value == 0 {
		return Series{}
	}
	return prices.Map(func(_ int, p PricePoint) float64 {
		return initial * (p.Value / first.Value)
	})
}

// AccumulateDailyRate compounds every observation of a series of daily
// percentage rates (0.04 means 0.04% that day) starting from 'initial'.
func AccumulateDailyRate(rates Series, initial float64) Series {
	acc := initial
	return rates.Map(func(_ int, p PricePoint) float64 {
		acc *= 1 + p.Value/100
		return acc
	})
}

// MonthlySpread converts an annual rate into the equivalent monthly compounding rate.
func MonthlySpread(annual float64) float64 {
	if annual == 0 {
		return 0
	}
	return math.Pow(1+annual, 1.0/12) - 1
}

// AccumulateMonthlyRate resamples a series of monthly percentage rates onto axis.
//
// Walking the axis, the first date of each month that has a rate compounds
// the accumulator by that rate plus the monthly equivalent of annualSpread.
// Every other date carries the accumulator unchanged. Months without a rate
// do not compound at all.
func AccumulateMonthlyRate(rates Series, axis []Date, initial, annualSpread float64) Series {
	byMonth := make(map[string]float64, rates.Len())
	for on, rate := range rates.All() {
		byMonth[on.MonthKey()] = rate // the latest observation in a month wins
	}
	spread := MonthlySpread(annualSpread)

	days := slices.Clone(axis)
	slices.SortFunc(days, Date.Compare)
	days = slices.Compact(days)

	out := Series{days: days, values: make([]float64, len(days))}
	acc := initial
	lastMonth := ""
	for i, on := range days {
		key := on.MonthKey()
		if rate, ok := byMonth[key]; ok && key != lastMonth {
			acc *= 1 + rate/100 + spread
			lastMonth = key
		}
		out.values[i] = acc
	}
	return out
}

// FXPlusLinearSpread returns the value of 'initial' converted at the first
// exchange rate of the series and accruing annualSpread linearly per calendar
// day since start.
func FXPlusLinearSpread(fx Series, start Date, initial, annualSpread float64) Series {
	first, ok := fx.First()
	if !ok || first.Value == 0 {
		return Series{}
	}
	return fx.Map(func(_ int, p PricePoint) float64 {
		days := float64(p.Date.DaysSince(start))
		return initial * (p.Value / first.Value) * (1 + annualSpread*days/365)
	})
}

package wager

import "slices"

// PeriodReturns holds the returns of a value series over calendar relative periods, as of its latest observation.
type PeriodReturns struct {
	CurrentMonth   Percent `json:"currentMonth"`
	YearToDate     Percent `json:"yearToDate"`
	Last3Months    Percent `json:"last3Months"`
	Last6Months    Percent `json:"last6Months"`
	Last12Months   Percent `json:"last12Months"`
	Last24Months   Percent `json:"last24Months"`
	SinceInception Percent `json:"sinceInception"`
}

// ConsistencyStats summarizes the discrete monthly returns of a series.
//
// Months with exactly 0% count neither as positive nor as negative.
type ConsistencyStats struct {
	PositiveMonths int     `json:"positiveMonths"`
	NegativeMonths int     `json:"negativeMonths"`
	BestMonth      Percent `json:"bestMonth"`
	WorstMonth     Percent `json:"worstMonth"`
}

// asOf returns the value of s on 'day' or the latest before it, falling back to
// the first value of the series when 'day' is before any observation.
func asOf(s Series, day Date) float64 {
	if v, ok := s.ValueAsOf(day); ok {
		return v
	}
	first, _ := s.First()
	return first.Value
}

// ComputeReturns computes the period returns of a value series.
//
// An empty series yields all zero returns.
func ComputeReturns(s Series) PeriodReturns {
	latest, ok := s.Latest()
	if !ok {
		return PeriodReturns{}
	}
	first, _ := s.First()
	on := latest.Date
	since := func(ref Date) Percent { return Change(asOf(s, ref), latest.Value) }

	return PeriodReturns{
		CurrentMonth:   since(on.StartOf(Monthly).Add(-1)),
		YearToDate:     since(on.StartOf(Yearly).Add(-1)),
		Last3Months:    since(on.AddMonth(-3)),
		Last6Months:    since(on.AddMonth(-6)),
		Last12Months:   since(on.AddMonth(-12)),
		Last24Months:   since(on.AddMonth(-24)),
		SinceInception: Change(first.Value, latest.Value),
	}
}

// MonthlyReturn is the discrete return of one calendar month.
type MonthlyReturn struct {
	Month  string  `json:"month"` // YYYY-MM
	Return Percent `json:"return"`
}

// MonthlyReturns returns the discrete return of every calendar month covered by s.
//
// A month's return is measured from the last value of the previous month to
// its own last value. The first month is measured from the first value of the
// series. Months whose reference value is not positive are skipped.
func MonthlyReturns(s Series) []MonthlyReturn {
	months := s.Months()
	returns := make([]MonthlyReturn, 0, len(months))
	for i, m := range months {
		ref := m.First.Value
		if i > 0 {
			ref = months[i-1].Last.Value
		}
		if ref <= 0 {
			continue
		}
		returns = append(returns, MonthlyReturn{Month: m.Key, Return: Change(ref, m.Last.Value)})
	}
	return returns
}

// RateMonthlyReturns returns one monthly return per month of a series of
// monthly percentage rates, adding the monthly equivalent of annualSpread.
//
// When a month has several observations the latest one is used.
func RateMonthlyReturns(rates Series, annualSpread float64) []MonthlyReturn {
	spread := MonthlySpread(annualSpread) * 100
	months := rates.Months()
	returns := make([]MonthlyReturn, len(months))
	for i, m := range months {
		returns[i] = MonthlyReturn{Month: m.Key, Return: Percent(m.Last.Value + spread)}
	}
	return returns
}

// Consistency counts positive and negative months and finds the extremes.
func Consistency(returns []MonthlyReturn) ConsistencyStats {
	if len(returns) == 0 {
		return ConsistencyStats{}
	}
	var stats ConsistencyStats
	values := make([]Percent, len(returns))
	for i, r := range returns {
		values[i] = r.Return
		switch {
		case r.Return > 0:
			stats.PositiveMonths++
		case r.Return < 0:
			stats.NegativeMonths++
		}
	}
	stats.BestMonth = slices.Max(values)
	stats.WorstMonth = slices.Min(values)
	return stats
}

// ComputeConsistency computes the monthly consistency of a value series.
func ComputeConsistency(s Series) ConsistencyStats { return Consistency(MonthlyReturns(s)) }

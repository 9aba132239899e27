package wager

import (
	"encoding/json"
	"iter"
	"slices"
)

// PricePoint is one observation of a price, a rate or an investment value on a given day.
type PricePoint struct {
	Date  Date    `json:"date"`
	Value float64 `json:"value"`
}

// P is a shorthand to build a PricePoint from a YYYY-MM-DD string. It panics on invalid dates.
func P(on string, value float64) PricePoint { return PricePoint{Date: MustParse(on), Value: value} }

// Series stores a chronological series of values, each associated with a specific date.
// Dates are unique and always sorted. A Series is never modified once built.
type Series struct {
	days   []Date
	values []float64
}

// NewSeries returns a Series built from points in any order.
//
// When several points share the same date, the last occurrence in 'points' wins.
func NewSeries(points ...PricePoint) Series {
	sorted := slices.Clone(points)
	slices.SortStableFunc(sorted, func(a, b PricePoint) int { return a.Date.Compare(b.Date) })

	s := Series{
		days:   make([]Date, 0, len(sorted)),
		values: make([]float64, 0, len(sorted)),
	}
	for _, p := range sorted {
		if last := len(s.days) - 1; last >= 0 && s.days[last] == p.Date {
			// stable sort keeps input order among equal dates, so this one came later.
			s.values[last] = p.Value
			continue
		}
		s.days = append(s.days, p.Date)
		s.values = append(s.values, p.Value)
	}
	return s
}

// Len returns the number of items in the series.
func (s Series) Len() int { return len(s.days) }

// At returns the i-th point in chronological order.
func (s Series) At(i int) PricePoint { return PricePoint{s.days[i], s.values[i]} }

// First returns the earliest point, or false if the series is empty.
func (s Series) First() (PricePoint, bool) {
	if len(s.days) == 0 {
		return PricePoint{}, false
	}
	return s.At(0), true
}

// Latest returns the latest point, or false if the series is empty.
func (s Series) Latest() (PricePoint, bool) {
	last := len(s.days) - 1
	if last < 0 {
		return PricePoint{}, false
	}
	return s.At(last), true
}

// Dates returns a copy of the series dates.
func (s Series) Dates() []Date { return slices.Clone(s.days) }

// Points returns a copy of the series as a slice of points.
func (s Series) Points() []PricePoint {
	points := make([]PricePoint, len(s.days))
	for i := range s.days {
		points[i] = s.At(i)
	}
	return points
}

// All returns an iterator over all date/value pairs in the series, in chronological order.
func (s Series) All() iter.Seq2[Date, float64] {
	return func(yield func(Date, float64) bool) {
		for i, on := range s.days {
			if !yield(on, s.values[i]) {
				return
			}
		}
	}
}

// search returns the index where day is or would be inserted.
func (s Series) search(day Date) (int, bool) {
	return slices.BinarySearchFunc(s.days, day, Date.Compare)
}

// Get returns the value at 'day' and true or zero value and false.
func (s Series) Get(day Date) (float64, bool) {
	if i, found := s.search(day); found {
		return s.values[i], true
	}
	return 0, false
}

// ValueAsOf returns the value on a given day, or the most recent value before it.
// It returns the value and true if found, otherwise it returns the zero value and false.
func (s Series) ValueAsOf(day Date) (float64, bool) {
	i, found := s.search(day)
	if found {
		return s.values[i], true
	}
	// i is where day would be inserted, so the last entry before it is at i-1.
	if i == 0 {
		return 0, false
	}
	return s.values[i-1], true
}

// Month groups the observations of a series that fall in the same calendar month.
type Month struct {
	Key         string // YYYY-MM
	First, Last PricePoint
}

// Months returns the calendar months covered by the series, in chronological order.
func (s Series) Months() []Month {
	var months []Month
	for i, on := range s.days {
		p := PricePoint{on, s.values[i]}
		if n := len(months); n > 0 && months[n-1].Key == on.MonthKey() {
			months[n-1].Last = p
			continue
		}
		months = append(months, Month{Key: on.MonthKey(), First: p, Last: p})
	}
	return months
}

// Map returns a new series with f applied to every point.
func (s Series) Map(f func(i int, p PricePoint) float64) Series {
	out := Series{days: slices.Clone(s.days), values: make([]float64, len(s.values))}
	for i := range s.days {
		out.values[i] = f(i, s.At(i))
	}
	return out
}

// UnionDates returns the sorted set union of the dates of all series.
func UnionDates(series ...Series) []Date {
	var dates []Date
	for _, s := range series {
		dates = append(dates, s.days...)
	}
	slices.SortFunc(dates, Date.Compare)
	return slices.Compact(dates)
}

func (s Series) MarshalJSON() ([]byte, error) { return json.Marshal(s.Points()) }

func (s *Series) UnmarshalJSON(data []byte) error {
	var points []PricePoint
	if err := json.Unmarshal(data, &points); err != nil {
		return err
	}
	*s = NewSeries(points...)
	return nil
}

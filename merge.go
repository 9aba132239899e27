package wager

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
)

// Column is one named value series of the merged timeline.
type Column struct {
	Key    string
	Values Series
}

// ChartDataPoint is one row of the merged timeline: a date and the carried
// value of every column that has started by that date.
//
// Columns keep the order in which they were given to MergeTimeline, and so
// does its JSON encoding.
type ChartDataPoint struct {
	Date   Date
	keys   []string
	values []float64
}

// Value returns the value of column 'key' in this row, or false if the column
// had no observation yet on that date.
func (c ChartDataPoint) Value(key string) (float64, bool) {
	if i := slices.Index(c.keys, key); i >= 0 {
		return c.values[i], true
	}
	return 0, false
}

// Keys returns the names of the columns present in this row.
func (c ChartDataPoint) Keys() []string { return slices.Clone(c.keys) }

func (c *ChartDataPoint) set(key string, v float64) {
	if i := slices.Index(c.keys, key); i >= 0 {
		c.values[i] = v
		return
	}
	c.keys = append(c.keys, key)
	c.values = append(c.values, v)
}

func (c ChartDataPoint) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", c.Date)
	for i, key := range c.keys {
		w.Append(key, c.values[i])
	}
	return w.MarshalJSON()
}

func (c *ChartDataPoint) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if t, err := dec.Token(); err != nil || t != json.Delim('{') {
		return fmt.Errorf("chart data point must be a json object")
	}
	*c = ChartDataPoint{}
	for dec.More() {
		t, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := t.(string)
		if key == "date" {
			if err := dec.Decode(&c.Date); err != nil {
				return fmt.Errorf("invalid chart data point date: %w", err)
			}
			continue
		}
		var v float64
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("invalid value for column %q: %w", key, err)
		}
		c.set(key, v)
	}
	_, err := dec.Token()
	return err
}

// MergeTimeline aligns several value series onto the union of their dates.
//
// Each column carries its last known value forward across dates where it has
// no observation, and is absent from every row strictly before its own first
// observation. Values are rounded to the nearest whole currency unit.
func MergeTimeline(columns ...Column) []ChartDataPoint {
	series := make([]Series, len(columns))
	for i, c := range columns {
		series[i] = c.Values
	}
	dates := UnionDates(series...)

	rows := make([]ChartDataPoint, len(dates))
	carried := make([]float64, len(columns))
	started := make([]bool, len(columns))
	for r, on := range dates {
		row := ChartDataPoint{
			Date:   on,
			keys:   make([]string, 0, len(columns)),
			values: make([]float64, 0, len(columns)),
		}
		for i, c := range columns {
			if v, ok := c.Values.Get(on); ok {
				carried[i] = v
				started[i] = true
			}
			if started[i] {
				row.set(c.Key, math.Round(carried[i]))
			}
		}
		rows[r] = row
	}
	return rows
}

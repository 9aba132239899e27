package wager

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeTimeline(t *testing.T) {
	btc := NewSeries(P("2024-06-24", 100000), P("2024-06-25", 101000.4), P("2024-06-26", 99000.6))
	ibov := NewSeries(P("2024-06-24", 100000), P("2024-06-26", 100500))
	cdi := NewSeries(P("2024-06-25", 100040.2))

	rows := MergeTimeline(
		Column{Key: "bitcoin", Values: btc},
		Column{Key: "ibovespa", Values: ibov},
		Column{Key: "cdi", Values: cdi},
	)

	require.Len(t, rows, 3)
	assert.Equal(t, MustParse("2024-06-24"), rows[0].Date)
	assert.Equal(t, []string{"bitcoin", "ibovespa"}, rows[0].Keys(), "cdi is absent before its first observation")

	v, ok := rows[1].Value("ibovespa")
	assert.True(t, ok)
	assert.Equal(t, 100000.0, v, "ibovespa is carried forward")
	v, _ = rows[1].Value("bitcoin")
	assert.Equal(t, 101000.0, v, "values are rounded")

	v, ok = rows[2].Value("cdi")
	assert.True(t, ok)
	assert.Equal(t, 100040.0, v)
	v, _ = rows[2].Value("bitcoin")
	assert.Equal(t, 99001.0, v)
}

func TestMergeTimeline_Invariants(t *testing.T) {
	a := NewSeries(P("2024-01-05", 1), P("2024-01-01", 2), P("2024-01-09", 3))
	b := NewSeries(P("2024-01-02", 4), P("2024-01-05", 5), P("2024-01-07", 6))
	rows := MergeTimeline(Column{"a", a}, Column{"b", b})

	assert.Len(t, rows, len(UnionDates(a, b)))
	for i := 1; i < len(rows); i++ {
		assert.True(t, rows[i-1].Date.Before(rows[i].Date), "dates strictly increasing")
		for _, c := range []Column{{"a", a}, {"b", b}} {
			if _, observed := c.Values.Get(rows[i].Date); observed {
				continue
			}
			prev, _ := rows[i-1].Value(c.Key)
			cur, _ := rows[i].Value(c.Key)
			assert.Equal(t, prev, cur, "%s forward filled on %v", c.Key, rows[i].Date)
		}
	}
}

func TestMergeTimeline_Empty(t *testing.T) {
	assert.Empty(t, MergeTimeline())
	assert.Empty(t, MergeTimeline(Column{Key: "a"}))
}

func TestChartDataPoint_JSON(t *testing.T) {
	rows := MergeTimeline(
		Column{Key: "bitcoin", Values: NewSeries(P("2024-06-25", 1))},
		Column{Key: "ibovespa", Values: NewSeries(P("2024-06-24", 2))},
	)
	got, err := json.Marshal(rows)
	require.NoError(t, err)
	assert.Equal(t, `[{"date":"2024-06-24","ibovespa":2},{"date":"2024-06-25","bitcoin":1,"ibovespa":2}]`, string(got))

	var back []ChartDataPoint
	require.NoError(t, json.Unmarshal(got, &back))
	assert.Equal(t, rows, back)
}

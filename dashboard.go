package wager

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"
)

// ErrMissingSeries is returned when a configured instrument has no raw series to compute from.
var ErrMissingSeries = errors.New("missing raw series")

// InstrumentResult is the outcome of the computation for one instrument.
type InstrumentResult struct {
	ID            string
	Name          string
	Color         string
	Primary       bool
	Data          Series // value series
	InitialValue  float64
	CurrentValue  float64
	ReturnPercent Percent
}

// Performance returns the initial and current value of the instrument.
func (r InstrumentResult) Performance(currency string) Performance {
	return NewPerformance(M(r.InitialValue, currency), M(r.CurrentValue, currency))
}

// AssetTableData is one row of the statistics table.
type AssetTableData struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Color       string           `json:"color"`
	Returns     PeriodReturns    `json:"returns"`
	Consistency ConsistencyStats `json:"consistency"`
}

// Dashboard is the complete result of one computation.
type Dashboard struct {
	Instruments []InstrumentResult // in configuration order
	Timeline    []ChartDataPoint
	Table       []AssetTableData
	LastUpdate  time.Time
}

// Instrument returns the result for the instrument 'id'.
func (d Dashboard) Instrument(id string) (InstrumentResult, bool) {
	i := slices.IndexFunc(d.Instruments, func(r InstrumentResult) bool { return r.ID == id })
	if i < 0 {
		return InstrumentResult{}, false
	}
	return d.Instruments[i], true
}

// Primaries returns the results of the two contest entrants.
func (d Dashboard) Primaries() []InstrumentResult {
	var primaries []InstrumentResult
	for _, r := range d.Instruments {
		if r.Primary {
			primaries = append(primaries, r)
		}
	}
	return primaries
}

// Leader returns the primary instrument currently worth the most.
// Ties go to the first one in configuration order.
func (d Dashboard) Leader() (InstrumentResult, bool) {
	primaries := d.Primaries()
	if len(primaries) == 0 {
		return InstrumentResult{}, false
	}
	leader := primaries[0]
	for _, r := range primaries[1:] {
		if r.CurrentValue > leader.CurrentValue {
			leader = r
		}
	}
	return leader, true
}

// Aggregator computes dashboards for a given configuration.
type Aggregator struct {
	cfg Config
}

// NewAggregator returns an Aggregator for cfg.
func NewAggregator(cfg Config) *Aggregator { return &Aggregator{cfg: cfg} }

// Config returns the aggregator configuration.
func (a *Aggregator) Config() Config { return a.cfg }

// Normalize returns the value series of every configured instrument.
//
// Monthly rate instruments are resampled onto the union of the dates of the
// primary instruments, so those are normalized first.
func (a *Aggregator) Normalize(raw map[string]Series) (map[string]Series, error) {
	var errs []error
	for _, in := range a.cfg.Instruments {
		if _, ok := raw[in.ID]; !ok {
			errs = append(errs, fmt.Errorf("%w for instrument %q", ErrMissingSeries, in.ID))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	values := make(map[string]Series, len(a.cfg.Instruments))
	for _, in := range a.cfg.Instruments {
		if in.Kind != MonthlyRate {
			values[in.ID] = in.Normalization(a.cfg).Normalize(raw[in.ID], nil)
		}
	}
	var primaries []Series
	for _, in := range a.cfg.Primaries() {
		primaries = append(primaries, values[in.ID])
	}
	axis := UnionDates(primaries...)
	for _, in := range a.cfg.Instruments {
		if in.Kind == MonthlyRate {
			values[in.ID] = in.Normalization(a.cfg).Normalize(raw[in.ID], axis)
		}
	}
	return values, nil
}

// Compute normalizes every raw series, merges them into a timeline and
// computes the statistics of every instrument.
//
// raw must hold one series per configured instrument, keyed by instrument id.
func (a *Aggregator) Compute(raw map[string]Series, now time.Time) (Dashboard, error) {
	values, err := a.Normalize(raw)
	if err != nil {
		return Dashboard{}, err
	}

	initial := a.cfg.InitialInvestment
	d := Dashboard{LastUpdate: now.UTC()}
	columns := make([]Column, 0, len(a.cfg.Instruments))
	for _, in := range a.cfg.Instruments {
		data := values[in.ID]
		current := initial
		if latest, ok := data.Latest(); ok {
			current = latest.Value
		}
		res := InstrumentResult{
			ID:           in.ID,
			Name:         in.Name,
			Color:        in.Color,
			Primary:      in.Primary,
			Data:         data,
			InitialValue: initial,
			CurrentValue: current,
		}
		res.ReturnPercent = res.Performance(a.cfg.Currency).Percent()
		d.Instruments = append(d.Instruments, res)
		columns = append(columns, Column{Key: in.ID, Values: data})

		consistency := ComputeConsistency(data)
		if in.Kind == MonthlyRate {
			// the resampled series would smear month boundaries, rates are monthly returns already.
			consistency = Consistency(RateMonthlyReturns(raw[in.ID], in.AnnualSpread))
		}
		d.Table = append(d.Table, AssetTableData{
			ID:          in.ID,
			Name:        in.Name,
			Color:       in.Color,
			Returns:     ComputeReturns(data),
			Consistency: consistency,
		})
	}
	d.Timeline = MergeTimeline(columns...)
	return d, nil
}

type instrumentJSON struct {
	Name          string  `json:"name"`
	Color         string  `json:"color"`
	Data          Series  `json:"data"`
	InitialValue  float64 `json:"initialValue"`
	CurrentValue  float64 `json:"currentValue"`
	ReturnPercent Percent `json:"returnPercent"`
}

// MarshalJSON encodes the dashboard as the payload served to the web client:
// primary instruments at the top level keyed by id, other instruments value
// series under "benchmarks", then "chartData", "tableData" and "lastUpdate".
func (d Dashboard) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	var benchmarks jsonObjectWriter
	for _, r := range d.Instruments {
		if !r.Primary {
			benchmarks.Append(r.ID, r.Data)
			continue
		}
		w.Append(r.ID, instrumentJSON{
			Name:          r.Name,
			Color:         r.Color,
			Data:          r.Data,
			InitialValue:  r.InitialValue,
			CurrentValue:  r.CurrentValue,
			ReturnPercent: r.ReturnPercent,
		})
	}
	w.Append("benchmarks", &benchmarks)
	w.Append("chartData", nonNil(d.Timeline))
	w.Append("tableData", nonNil(d.Table))
	w.Append("lastUpdate", d.LastUpdate)
	return w.MarshalJSON()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// UnmarshalJSON decodes a payload produced by MarshalJSON.
//
// Names and colors of benchmarks come from the table rows, and their current
// value is the last point of their series.
func (d *Dashboard) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = Dashboard{}
	if err := decodeField(raw, "chartData", &d.Timeline); err != nil {
		return err
	}
	if err := decodeField(raw, "tableData", &d.Table); err != nil {
		return err
	}
	if err := decodeField(raw, "lastUpdate", &d.LastUpdate); err != nil {
		return err
	}
	var benchmarks map[string]Series
	if err := decodeField(raw, "benchmarks", &benchmarks); err != nil {
		return err
	}
	primaries := make(map[string]instrumentJSON)
	for key, msg := range raw {
		switch key {
		case "chartData", "tableData", "lastUpdate", "benchmarks":
			continue
		}
		var p instrumentJSON
		if err := json.Unmarshal(msg, &p); err != nil {
			return fmt.Errorf("invalid instrument %q: %w", key, err)
		}
		primaries[key] = p
	}

	initial := 0.0
	for _, p := range primaries {
		initial = p.InitialValue
	}
	// the table lists every instrument in configuration order.
	for _, row := range d.Table {
		if p, ok := primaries[row.ID]; ok {
			d.Instruments = append(d.Instruments, InstrumentResult{
				ID: row.ID, Name: p.Name, Color: p.Color, Primary: true, Data: p.Data,
				InitialValue: p.InitialValue, CurrentValue: p.CurrentValue, ReturnPercent: p.ReturnPercent,
			})
			continue
		}
		series := benchmarks[row.ID]
		res := InstrumentResult{ID: row.ID, Name: row.Name, Color: row.Color, Data: series, InitialValue: initial, CurrentValue: initial}
		if latest, ok := series.Latest(); ok {
			res.CurrentValue = latest.Value
		}
		res.ReturnPercent = Change(res.InitialValue, res.CurrentValue)
		d.Instruments = append(d.Instruments, res)
	}
	return nil
}

func decodeField(raw map[string]json.RawMessage, key string, v any) error {
	msg, ok := raw[key]
	if !ok || bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(msg, v); err != nil {
		return fmt.Errorf("invalid %q: %w", key, err)
	}
	return nil
}

package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/etnz/wager"
	"github.com/etnz/wager/renderer"
)

type source struct {
	d   wager.Dashboard
	err error
}

func (s source) Dashboard(context.Context) (wager.Dashboard, error) { return s.d, s.err }

func testSource(t *testing.T) source {
	t.Helper()
	cfg := wager.Config{
		InitialInvestment: 100000,
		StartDate:         wager.MustParse("2024-06-24"),
		Currency:          "BRL",
		Instruments: []wager.Instrument{
			{ID: "bitcoin", Name: "Bitcoin", Kind: wager.PriceRatio, Primary: true, Sources: []string{"x"}},
			{ID: "ibovespa", Name: "Ibovespa", Kind: wager.PriceRatio, Primary: true, Sources: []string{"x"}},
		},
	}
	raw := map[string]wager.Series{
		"bitcoin":  wager.NewSeries(wager.P("2024-06-24", 330000), wager.P("2024-06-28", 363000), wager.P("2024-07-01", 346500)),
		"ibovespa": wager.NewSeries(wager.P("2024-06-24", 120000), wager.P("2024-07-01", 123600)),
	}
	d, err := wager.NewAggregator(cfg).Compute(raw, time.Date(2024, 7, 1, 18, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return source{d: d}
}

func call(lib Library, name string, args map[string]any) *genai.FunctionResponse {
	return lib(context.Background(), &genai.FunctionCall{ID: "1", Name: name, Args: args})
}

func TestReferee_Dashboard(t *testing.T) {
	lib := NewReferee(testSource(t), renderer.Options{}).Library

	resp := call(lib, "Dashboard", nil)
	require.Contains(t, resp.Response, "output")
	assert.Contains(t, resp.Response["output"], "# Bitcoin vs Ibovespa")

	resp = call(NewReferee(source{err: errors.New("bcb is down")}, renderer.Options{}).Library, "Dashboard", nil)
	assert.Equal(t, "bcb is down", resp.Response["error"])
}

func TestReferee_Series(t *testing.T) {
	lib := NewReferee(testSource(t), renderer.Options{}).Library

	resp := call(lib, "Series", map[string]any{"instrument": "bitcoin"})
	out, ok := resp.Response["output"].(string)
	require.True(t, ok, resp.Response)
	assert.Contains(t, out, "| 2024-06-28 | R$110.000 |")
	assert.Contains(t, out, "| 2024-07-01 | R$105.000 |")
	assert.Contains(t, out, "Return since the start: +5.00%")

	resp = call(lib, "Series", map[string]any{"instrument": "bitcoin", "from": "2024-07-01"})
	out = resp.Response["output"].(string)
	assert.NotContains(t, out, "2024-06-28")

	resp = call(lib, "Series", map[string]any{"instrument": "dogecoin"})
	assert.Contains(t, resp.Response["error"], "unknown instrument")

	resp = call(lib, "Series", map[string]any{"instrument": "bitcoin", "from": "yesterday"})
	assert.Contains(t, resp.Response["error"], "must be a valid date")

	resp = call(lib, "Series", map[string]any{"instrument": 42})
	assert.Contains(t, resp.Response["error"], "not a string")
}

func TestReferee_Documentation(t *testing.T) {
	lib := NewReferee(testSource(t), renderer.Options{}).Library

	resp := call(lib, "Documentation", map[string]any{"topic": "normalization"})
	assert.Contains(t, resp.Response["output"], "# Normalization")

	resp = call(lib, "Documentation", map[string]any{"topic": "ledger"})
	assert.Contains(t, resp.Response["error"], "not found")
}

func TestLibrary_Unknown(t *testing.T) {
	lib := NewLibrary([]Function{DocumentationFunc()})
	resp := call(lib, "Trade", nil)
	assert.Equal(t, "Trade", resp.Name)
	assert.Equal(t, "unknown function Trade", resp.Response["error"])
}

func TestNewDeclaration(t *testing.T) {
	experts := []*Expert{NewAnalyst(), NewReferee(testSource(t), renderer.Options{})}
	decls := NewDeclaration(experts)
	require.Len(t, decls, 2)
	assert.Equal(t, "Analyst", decls[0].Name)
	assert.Equal(t, []string{"question"}, decls[1].Parameters.Required)

	f := newFacilitator(experts...)
	assert.Len(t, f.Config.Tools[0].FunctionDeclarations, 2)
}

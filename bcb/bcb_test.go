package bcb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etnz/wager"
	"github.com/etnz/wager/fetch"
)

func TestClient_Fetch(t *testing.T) {
	var path, query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, query = r.URL.Path, r.URL.RawQuery
		w.Write([]byte(`[{"data":"24/06/2024","valor":"0.039270"},{"data":"25/06/2024","valor":"0.039270"},{"data":"01/07/2024","valor":"0.040168"}]`))
	}))
	defer srv.Close()

	c := New(fetch.New())
	c.BaseURL = srv.URL + "/dados/serie/bcdata.sgs"
	r := wager.NewRange(wager.MustParse("2024-06-24"), wager.MustParse("2024-07-01"))

	points, err := c.Series(CDI).Fetch(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, "/dados/serie/bcdata.sgs.12/dados", path)
	assert.Equal(t, "formato=json&dataInicial=24/06/2024&dataFinal=01/07/2024", query)
	assert.Equal(t, []wager.PricePoint{
		wager.P("2024-06-24", 0.03927),
		wager.P("2024-06-25", 0.03927),
		wager.P("2024-07-01", 0.040168),
	}, points)
}

func TestClient_FetchErrors(t *testing.T) {
	tests := []struct {
		name, body string
		status     int
	}{
		{"server error", ``, http.StatusInternalServerError},
		{"bad date", `[{"data":"2024-06-24","valor":"1"}]`, http.StatusOK},
		{"bad value", `[{"data":"24/06/2024","valor":"n/a"}]`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := New(fetch.New(fetch.WithRetry(1, 0)))
			c.BaseURL = srv.URL
			_, err := c.Fetch(context.Background(), IPCA, wager.Range{From: wager.MustParse("2024-06-01"), To: wager.MustParse("2024-07-01")})
			assert.Error(t, err)
		})
	}
}

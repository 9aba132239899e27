package fetch

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	now := time.Date(2024, 6, 24, 10, 0, 0, 0, time.UTC)
	cache := NewDiskCache(t.TempDir(), nil)
	cache.now = func() time.Time { return now }
	client := &http.Client{Transport: cache}

	get := func(path string) string {
		resp, err := client.Get(srv.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return string(body)
	}

	assert.Equal(t, "payload", get("/series"))
	assert.Equal(t, "payload", get("/series"))
	assert.Equal(t, int32(1), calls.Load(), "second call served from disk")

	get("/missing")
	get("/missing")
	assert.Equal(t, int32(3), calls.Load(), "errors are not cached")

	now = now.Add(24 * time.Hour)
	assert.Equal(t, "payload", get("/series"))
	assert.Equal(t, int32(4), calls.Load(), "the cache expires every day")
}

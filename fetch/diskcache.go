package fetch

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"fmt"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/etnz/wager"
)

// DiskCache is an http.RoundTripper keeping successful GET responses on disk
// for the current period.
//
// Keys include the identifier of the current period, so the cache expires at
// the end of every period.
type DiskCache struct {
	Dir    string // defaults to os.TempDir()
	Base   http.RoundTripper
	Period wager.Period
	now    func() time.Time
}

// NewDiskCache returns a daily DiskCache storing responses in dir.
func NewDiskCache(dir string, base http.RoundTripper) *DiskCache {
	if base == nil {
		base = http.DefaultTransport
	}
	return &DiskCache{Dir: dir, Base: base, Period: wager.Daily, now: time.Now}
}

func (c *DiskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return c.Base.RoundTrip(req)
	}
	key := c.key(req)
	if cached, err := c.get(key, req); err == nil {
		log.Debug().Str("url", req.URL.Redacted()).Msg("disk cache hit")
		return cached, nil
	}

	resp, err := c.Base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	if err := c.put(key, resp); err != nil {
		log.Warn().Err(err).Msg("disk cache write failed (ignored)")
	}
	return resp, nil
}

func (c *DiskCache) key(req *http.Request) string {
	rangeID := c.Period.Range(wager.DateOf(c.now().UTC())).Identifier()
	key := fmt.Sprintf("%s %s %s", rangeID, req.Method, req.URL.String())
	return fmt.Sprintf("%s-%x", c.Period, sha1.Sum([]byte(key)))
}

func (c *DiskCache) file(key string) string {
	dir := c.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, key)
}

// get retrieves a cached response from disk
func (c *DiskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(c.file(key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

// put stores a response to disk. The response body remains readable.
func (c *DiskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	return os.WriteFile(c.file(key), content, 0o600)
}

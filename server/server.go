// Package server exposes the dashboard over HTTP.
//
// Routes:
//
//	GET /api/data   dashboard JSON payload
//	GET /           dashboard rendered as HTML
//	GET /health     liveness probe
//	GET /metrics    Prometheus metrics
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/sync/singleflight"

	"github.com/etnz/wager"
	"github.com/etnz/wager/cache"
	"github.com/etnz/wager/metrics"
	"github.com/etnz/wager/renderer"
)

// CacheControl is sent with every dashboard payload.
const CacheControl = "public, s-maxage=3600, stale-while-revalidate"

const payloadKey = "dashboard"

// loadTimeout bounds a dashboard computation.
const loadTimeout = 90 * time.Second

// Loader computes a fresh dashboard.
type Loader interface {
	Dashboard(ctx context.Context) (wager.Dashboard, error)
}

// Server serves the dashboard of a Loader.
type Server struct {
	router  *mux.Router
	loader  Loader
	store   cache.Store
	ttl     time.Duration
	metrics *metrics.Registry
	log     zerolog.Logger
	render  renderer.Options
	md      goldmark.Markdown
	group   singleflight.Group
}

// Option configures a Server.
type Option func(*Server)

// WithStore caches payloads in s for ttl.
func WithStore(s cache.Store, ttl time.Duration) Option {
	return func(srv *Server) { srv.store, srv.ttl = s, ttl }
}

// WithMetrics instruments the server and exposes m on /metrics.
func WithMetrics(m *metrics.Registry) Option { return func(s *Server) { s.metrics = m } }

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option { return func(s *Server) { s.log = l } }

// WithRenderOptions sets how the HTML page is rendered.
func WithRenderOptions(o renderer.Options) Option { return func(s *Server) { s.render = o } }

// New returns a Server for loader. Payloads are cached in memory for an hour by default.
func New(loader Loader, opts ...Option) *Server {
	s := &Server{
		loader: loader,
		store:  cache.NewMemory(),
		ttl:    time.Hour,
		log:    zerolog.Nop(),
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router = mux.NewRouter()
	s.router.Use(s.requestID, s.observe)

	s.router.HandleFunc("/api/data", s.handleData).Methods(http.MethodGet)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info().Str("addr", addr).Msg("serving")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// payload returns the JSON payload, from the store when fresh.
func (s *Server) payload(ctx context.Context) ([]byte, error) {
	log := zerolog.Ctx(ctx)
	data, ok, err := s.store.Get(ctx, payloadKey)
	if err != nil {
		log.Warn().Err(err).Msg("cache read failed")
	}
	if ok {
		return data, nil
	}

	ch := s.group.DoChan(payloadKey, func() (any, error) {
		// shared by every waiting request, so no single caller may cancel it.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		d, err := s.loader.Dashboard(ctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(d)
		if err != nil {
			return nil, fmt.Errorf("encoding dashboard: %w", err)
		}
		if err := s.store.Set(ctx, payloadKey, data, s.ttl); err != nil {
			log.Warn().Err(err).Msg("cache write failed")
		}
		return data, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	data, err := s.payload(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("dashboard unavailable")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Failed to fetch market data", Details: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", CacheControl)
	w.Write(data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data, err := s.payload(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("dashboard unavailable")
		http.Error(w, "Failed to fetch market data: "+err.Error(), http.StatusInternalServerError)
		return
	}
	var d wager.Dashboard
	if err := json.Unmarshal(data, &d); err != nil {
		http.Error(w, "invalid cached dashboard: "+err.Error(), http.StatusInternalServerError)
		return
	}

	var body bytes.Buffer
	if err := s.md.Convert([]byte(renderer.Dashboard(d, s.render)), &body); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", CacheControl)
	fmt.Fprintf(w, page, body.String())
}

const page = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Bitcoin vs Ibovespa</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 60rem; margin: 2rem auto; padding: 0 1rem; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { padding: .3rem .8rem; border-bottom: 1px solid #ddd; }
</style>
</head>
<body>
%s
</body>
</html>
`

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

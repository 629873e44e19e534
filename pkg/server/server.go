// Package server exposes the cache over HTTP for sidecar deployments.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/recall-ai/recall/pkg/cache"
)

// Server is the HTTP facade over a single Cache instance.
type Server struct {
	cache  *cache.Cache
	listen string
	log    *zap.Logger
	mux    *http.ServeMux
}

// New creates a Server with all routes mounted. The metrics gatherer may
// be nil, in which case /metrics is not served.
func New(listen string, c *cache.Cache, metrics prometheus.Gatherer, log *zap.Logger) *Server {
	s := &Server{
		cache:  c,
		listen: listen,
		log:    log,
		mux:    http.NewServeMux(),
	}
	s.mux.HandleFunc("/v1/lookup", s.handleLookup)
	s.mux.HandleFunc("/v1/insert", s.handleInsert)
	s.mux.HandleFunc("/v1/stats", s.handleStats)
	s.mux.HandleFunc("/v1/stats/hitrate", s.handleHitRate)
	s.mux.HandleFunc("/v1/stats/reset", s.handleStatsReset)
	s.mux.HandleFunc("/v1/maintain", s.handleMaintain)
	s.mux.HandleFunc("/v1/flush", s.handleFlush)
	s.mux.HandleFunc("/v1/entries", s.handleEntries)
	s.mux.HandleFunc("/healthz", s.handleHealthz)
	if metrics != nil {
		s.mux.Handle("/metrics", promhttp.HandlerFor(metrics, promhttp.HandlerOpts{
			ErrorLog: zap.NewStdLog(log),
		}))
	}
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.log.Debug("http request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", rec.status),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// ListenAndServe starts the HTTP facade with graceful shutdown support.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.listen,
		Handler: s,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", s.listen))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Package server exposes the enrichment pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/lepinkainen/partly/internal/batch"
)

const (
	defaultMaxBatch        = 500
	defaultShutdownTimeout = 10 * time.Second
)

// Enricher runs one enrichment batch.
type Enricher interface {
	Run(ctx context.Context, req batch.Request) (*batch.Result, error)
}

// ManufacturerLister lists the canonical manufacturer names.
type ManufacturerLister interface {
	Canonical() []string
}

// Pinger checks that an upstream dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures a Server.
type Options struct {
	Addr            string
	MaxBatch        int
	CORSOrigins     []string
	ShutdownTimeout time.Duration
	// Upstream is checked by GET /health?deep=true when set.
	Upstream Pinger
}

// Server is the HTTP front end of the enrichment pipeline.
type Server struct {
	enricher      Enricher
	manufacturers ManufacturerLister
	opts          Options
	engine        *gin.Engine
}

// New builds a Server with its routes and middleware.
func New(enricher Enricher, manufacturers ManufacturerLister, opts Options) *Server {
	if opts.MaxBatch < 1 {
		opts.MaxBatch = defaultMaxBatch
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}

	s := &Server{
		enricher:      enricher,
		manufacturers: manufacturers,
		opts:          opts,
	}

	engine := gin.New()
	// Keep %2F inside a part number instead of splitting the path on it
	engine.UseRawPath = true
	engine.Use(
		requestIDMiddleware(),
		loggerMiddleware(),
		corsMiddleware(opts.CORSOrigins),
		gzip.Gzip(gzip.BestSpeed),
		// Inside gzip so the 500 body goes through the compressed writer
		recoveryMiddleware(),
	)

	engine.GET("/health", s.handleHealth)
	engine.POST("/enrich", s.handleEnrich)
	engine.GET("/enrich/:mpn", s.handleEnrichOne)
	engine.GET("/manufacturers", s.handleManufacturers)

	s.engine = engine
	return s
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on the configured address and serves until ctx ends.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx ends, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	slog.Info("Server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server", "timeout", s.opts.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

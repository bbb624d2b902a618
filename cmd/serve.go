package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"

	"github.com/lepinkainen/partly/internal/config"
	"github.com/lepinkainen/partly/internal/server"
)

var runServer = func(ctx context.Context, srv *server.Server) error {
	return srv.Run(ctx)
}

// ServeCmd represents the serve command
type ServeCmd struct {
	Addr string `help:"Listen address (overrides server.addr)"`
}

func (s *ServeCmd) Run() error {
	if s.Addr != "" {
		viper.Set("server.addr", s.Addr)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	p, err := buildPipeline(cfg, true)
	if err != nil {
		return err
	}

	opts := server.Options{
		Addr:            cfg.Server.Addr,
		MaxBatch:        cfg.Enrich.MaxBatch,
		CORSOrigins:     cfg.Server.CORSOrigins,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}
	if p.client != nil {
		opts.Upstream = p.client
	}

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(p.orchestrator, p.resolver, opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = runServer(ctx, srv)
	if p.recorder != nil {
		p.recorder.Wait()
	}
	return err
}

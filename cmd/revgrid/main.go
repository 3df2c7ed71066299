package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"revgrid/internal/backend"
	"revgrid/internal/cli"
	apphttp "revgrid/internal/http"
	rlog "revgrid/internal/log"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger("info")
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}

	// Store connectivity failures are fatal at startup.
	result, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize backend", err)
	}

	srv := apphttp.NewServer(cfg.Addr(), cfg.APIPrefix, result.Backend, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", rlog.FieldError, err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting revgrid server",
			"port", cfg.Port,
			"prefix", cfg.APIPrefix,
			"backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", rlog.FieldError, err, "port", cfg.Port)
		if result.Cleanup != nil {
			_ = result.Cleanup()
		}
		cli.Fatal(logger, "Server stopped", err)
	}

	cli.WaitForShutdown(ctx, done)
	if result.Cleanup != nil {
		if err := result.Cleanup(); err != nil {
			logger.Error("Cleanup failed", rlog.FieldError, err)
		}
	}
	logger.Info("Server stopped gracefully")
}

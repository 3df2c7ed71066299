package main

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"revgrid/internal/amqp"
	"revgrid/internal/cli"
	rlog "revgrid/internal/log"
	"revgrid/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger("info")
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.LogLevel).WithComponent(rlog.ComponentWorker)

	if cfg.AMQPURL == "" {
		cli.Fatal(logger, "AMQP_URL is required for the audit worker", errors.New("events disabled"))
	}

	logger.Info("Starting revgrid-audit")

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer amqpClient.Close()

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, nil)

	audit := worker.NewAuditWorker(repo)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := amqpClient.ConsumeRecordEvents(gctx, audit.HandleRecordEvent)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil {
		amqpClient.Close()
		repo.Close()
		cli.Fatal(logger, "Message consumption failed", err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Audit worker stopped gracefully")
}

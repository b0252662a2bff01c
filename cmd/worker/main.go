package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"clinrec/internal/eventlog"
	"clinrec/internal/platform/config"
	"clinrec/internal/platform/httpserver"
	"clinrec/internal/platform/kafka/consumer"
	"clinrec/internal/platform/logger"
)

// main runs the event log worker: consume recommendation events, append each
// to the log, acknowledge only after the row is durable.
func main() {
	_ = godotenv.Load()

	cfg := config.WorkerFromEnv()
	log := logger.New("clinrec-worker")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting background worker", "topic", cfg.KafkaTopic, "log_path", cfg.EventLogPath)

	handler := eventlog.NewHandler(eventlog.NewWriter(cfg.EventLogPath), log)
	queue, err := consumer.Connect(ctx, cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroup, handler, log)
	if err != nil {
		log.Error("could not connect to queue", "error", err)
		os.Exit(1)
	}
	defer queue.Close()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := httpserver.New(cfg.MetricsAddr, metricsMux)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return queue.Run(groupCtx)
	})
	group.Go(func() error {
		eventlog.Heartbeat(groupCtx, log)
		return nil
	})
	group.Go(func() error {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		return metricsSrv.Close()
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("worker error", "error", err)
		os.Exit(1)
	}
	log.Info("worker stopped")
}

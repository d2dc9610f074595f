package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"

	"gator/api/grpcserver"
	"gator/infra/config"
	"gator/infra/events"
	"gator/infra/kafka"
	"gator/infra/logging"
	"gator/infra/metrics"
	entrywal "gator/infra/wal/entry"
	exitwal "gator/infra/wal/exit"
	"gator/jobs/broadcaster"
	"gator/service"
	"gator/snapshot"
)

func main() {
	cfg, err := config.Load("server", os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer logging.Sync(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error(err, "server exited")
		logging.Sync(logger)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger logr.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error

	// ---------------- Metrics ----------------

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(err, "metrics server failed")
		}
	}()
	defer metricsSrv.Close()

	// ---------------- Journal / Outbox ----------------

	opts := service.Options{Metrics: m, Logger: logger.WithName("service")}

	if opts.Encoder, err = events.NewEncoder(cfg.EventFormat); err != nil {
		return err
	}

	if cfg.JournalDir != "" {
		opts.Journal, err = entrywal.Open(entrywal.Config{
			Dir:         cfg.JournalDir,
			SegmentSize: cfg.JournalSegmentSize,
			Overwrite:   cfg.JournalOverwrite,
		})
		if err != nil {
			return err
		}
	}

	if cfg.OutboxDir != "" {
		opts.Outbox, err = exitwal.Open(cfg.OutboxDir)
		if err != nil {
			return err
		}
		defer opts.Outbox.Close()
	}

	if cfg.SnapshotDir != "" {
		opts.Snapshots = &snapshot.Writer{Dir: cfg.SnapshotDir}
	}

	// ---------------- Kafka ----------------

	if len(cfg.KafkaBrokers) > 0 {
		notifier := kafka.NewProducer(cfg.KafkaBrokers, cfg.ETATopic)
		defer notifier.Close()
		opts.Notifier = notifier
	}

	// ---------------- Service ----------------

	svc, err := service.NewOrderService(opts)
	if err != nil {
		return err
	}
	defer svc.Close()

	// ---------------- Background Jobs ----------------

	if opts.Outbox != nil && len(cfg.KafkaBrokers) > 0 {
		producer, err := broadcaster.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			return err
		}
		bc := broadcaster.New(opts.Outbox, producer, broadcaster.Config{
			Topic:   cfg.DeliveredTopic,
			Metrics: m,
			Logger:  logger.WithName("broadcaster"),
		})
		defer bc.Close()

		done := make(chan struct{})
		go func() {
			defer close(done)
			bc.Run(ctx, cfg.BroadcastInterval)
		}()
		defer func() {
			stop()
			<-done
		}()

		svc.StartOutboxCompaction(ctx, 10*cfg.BroadcastInterval)
	}

	// ---------------- gRPC ----------------

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return err
	}

	grpcSrv := grpc.NewServer()
	grpcserver.Register(grpcSrv, grpcserver.NewServer(svc, health.NewServer(), logger.WithName("grpc")))

	go func() {
		<-ctx.Done()
		grpcSrv.GracefulStop()
	}()

	logger.Info("gator scheduler running", "grpc", cfg.GRPCAddr, "metrics", cfg.MetricsAddr)
	return grpcSrv.Serve(lis)
}

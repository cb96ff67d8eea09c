package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	promgrpc "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	healthcheck "github.com/vladislavdragonenkov/fulfillment/internal/health"
	"github.com/vladislavdragonenkov/fulfillment/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/fulfillment/internal/metrics"
	"github.com/vladislavdragonenkov/fulfillment/internal/service/fulfillment"
	grpcsvc "github.com/vladislavdragonenkov/fulfillment/internal/service/grpc"
	"github.com/vladislavdragonenkov/fulfillment/internal/service/idempotency"
	"github.com/vladislavdragonenkov/fulfillment/internal/service/notification"
	"github.com/vladislavdragonenkov/fulfillment/internal/service/outbox"
	"github.com/vladislavdragonenkov/fulfillment/internal/tracing"
	"github.com/vladislavdragonenkov/fulfillment/internal/version"
	fulfillmentv1 "github.com/vladislavdragonenkov/fulfillment/proto/fulfillment/v1"
)

const (
	serviceName             = "fulfillment-service"
	grpcStopTimeout         = 5 * time.Second
	notificationStopTimeout = 10 * time.Second
)

// SetupLogger настраивает глобальный logrus по конфигурации.
func SetupLogger(cfg Config) *log.Entry {
	if strings.EqualFold(cfg.LogFormat, LogFormatJSON) {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(strings.TrimSpace(cfg.LogLevel))
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	return log.WithField("component", "app")
}

// Run поднимает сервис отгрузок и блокируется до отмены ctx.
func Run(ctx context.Context, cfg Config) error {
	logger := SetupLogger(cfg)

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: version.Version(),
		Endpoint:       cfg.OTLPEndpoint,
		Insecure:       cfg.OTLPInsecure,
		SampleRatio:    cfg.TraceSampleRatio,
	})
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grpcStopTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.WithError(err).Warn("failed to flush traces")
		}
	}()

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.closeFn(); err != nil {
			logger.WithError(err).Warn("failed to close storage")
		}
	}()

	// Ошибка уже залогирована: сервис продолжает работу без Kafka.
	producer, _ := initKafkaProducer(cfg.KafkaBrokers, cfg.KafkaClientID, logger)
	defer closeKafkaProducer(producer, logger)

	mailer, err := newMailer(cfg, producer, logger)
	if err != nil {
		return err
	}

	dispatcher := notification.NewDispatcher(
		deps.salesOrders,
		deps.customers,
		mailer,
		cfg.MailFrom,
		notification.WithWorkers(cfg.NotificationWorkers),
		notification.WithQueueSize(cfg.NotificationQueueSize),
		notification.WithLogger(logger.WithField("component", "notification-dispatcher")),
	)
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), notificationStopTimeout)
		defer cancel()
		if err := dispatcher.Stop(stopCtx); err != nil {
			logger.WithError(err).Warn("notifications were not drained before shutdown")
		}
	}()

	retry := fulfillment.DefaultRetryConfig()
	retry.MaxAttempts = cfg.TxMaxAttempts
	svc := fulfillment.NewService(
		fulfillment.NewSalesOrderValidator(deps.salesOrders),
		deps.uow,
		deps.deliveries,
		deps.stock,
		fulfillment.WithNotifier(dispatcher),
		fulfillment.WithRetryConfig(retry),
		fulfillment.WithLogger(logger.WithField("component", "fulfillment")),
	)

	workersCtx, stopWorkers := context.WithCancel(context.Background())
	var workersDone []<-chan struct{}
	defer func() {
		shutdownWorkers(stopWorkers, workersDone, logger)
	}()

	build := version.Get()
	metrics.RegisterBuildInfo(prometheus.DefaultRegisterer, build.Version, build.Commit, build.GoVersion)

	healthHandler := healthcheck.NewHandler(build.Version)
	healthHandler.RegisterChecker("storage", deps.storageChecker)
	if deps.idempotencyChecker != nil {
		healthHandler.RegisterChecker("idempotency", deps.idempotencyChecker)
	}

	if producer != nil {
		worker := outbox.NewWorker(
			deps.outboxRepo,
			kafka.NewOutboxPublisher(producer, cfg.KafkaEventsTopic),
			outbox.WithLogger(logger.WithField("component", "outbox-worker")),
			outbox.WithDLQPublisher(kafka.NewOutboxPublisher(producer, cfg.KafkaDLQTopic)),
			outbox.WithPollInterval(cfg.OutboxPollInterval),
			outbox.WithBatchSize(cfg.OutboxBatchSize),
			outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
			outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
		)
		workersDone = append(workersDone, runInBackground(workersCtx, worker.Run))

		if cfg.OutboxMaxPending > 0 {
			healthHandler.RegisterChecker("outbox", healthcheck.NewBacklogChecker("outbox", cfg.OutboxMaxPending,
				func(ctx context.Context) (int, time.Time, error) {
					stats, err := deps.outboxRepo.Stats(ctx)
					return stats.PendingCount, stats.OldestPendingAt, err
				}))
		}
	} else {
		logger.Warn("kafka is not configured, outbox events stay pending")
	}

	cleanup := idempotency.NewCleanupWorker(
		deps.idempotencyRepo,
		idempotency.WithLogger(logger.WithField("component", "idempotency-cleanup")),
		idempotency.WithInterval(cfg.IdempotencyCleanupInterval),
		idempotency.WithBatchSize(cfg.IdempotencyCleanupBatchSize),
	)
	workersDone = append(workersDone, runInBackground(workersCtx, cleanup.Run))

	consumer, err := startDeliveryConsumer(workersCtx, cfg, producer, svc, deps, logger)
	if err != nil {
		return err
	}
	if consumer != nil {
		defer func() {
			if err := consumer.Stop(); err != nil {
				logger.WithError(err).Warn("failed to stop kafka consumer")
			}
		}()
	}

	grpcMetrics := promgrpc.NewServerMetrics()
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(grpcMetrics.UnaryServerInterceptor()))
	if err := prometheus.Register(grpcMetrics); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok2 := are.ExistingCollector.(*promgrpc.ServerMetrics); ok2 {
				grpcMetrics = existing
			}
		} else {
			logger.WithError(err).Warn("failed to register grpc metrics")
		}
	}

	deliveryService := grpcsvc.NewDeliveryService(svc, deps.idempotencyRepo, logger.WithField("layer", "grpc"))
	fulfillmentv1.RegisterDeliveryServiceServer(grpcServer, deliveryService)
	grpcMetrics.InitializeMetrics(grpcServer)

	// Reflection нужен grpcurl и нагрузочным инструментам.
	reflection.Register(grpcServer)

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		shutdownHTTP(metricsSrv, logger)
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("grpc server listening on %s", lis.Addr())
		errCh <- grpcServer.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping grpc server")
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
		stopGRPC(grpcServer, logger)
		shutdownHTTP(metricsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return err
	}
}

// startDeliveryConsumer подписывается на топик запросов отгрузки, если это включено.
func startDeliveryConsumer(
	ctx context.Context,
	cfg Config,
	producer *kafka.Producer,
	svc *fulfillment.Service,
	deps *runtimeDeps,
	logger *log.Entry,
) (*kafka.Consumer, error) {
	if !cfg.KafkaConsumerEnabled {
		return nil, nil
	}
	brokers := brokerList(cfg.KafkaBrokers)
	if len(brokers) == 0 {
		return nil, fmt.Errorf("%s is required when %s is enabled", EnvKafkaBrokers, EnvKafkaConsumerEnabled)
	}

	handler := kafka.NewDeliveryRequestHandler(svc, deps.idempotencyRepo, logger.WithField("component", "delivery-requests"))
	opts := []kafka.ConsumerOption{kafka.WithConsumerLogger(logger.WithField("component", "kafka-consumer"))}
	if producer != nil {
		opts = append(opts, kafka.WithDLQ(producer, cfg.KafkaDLQTopic))
	}

	consumer, err := kafka.NewConsumer(brokers, cfg.KafkaConsumerGroup, []string{cfg.KafkaRequestsTopic}, handler.Handle, opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}

	if err := consumer.Start(ctx); err != nil {
		_ = consumer.Stop()
		return nil, fmt.Errorf("start kafka consumer: %w", err)
	}
	logger.WithField("topic", cfg.KafkaRequestsTopic).Info("kafka consumer started")
	return consumer, nil
}

// runInBackground запускает run в отдельной горутине; канал закрывается по её завершении.
func runInBackground(ctx context.Context, run func(context.Context)) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		run(ctx)
	}()
	return done
}

// shutdownWorkers отменяет фоновые воркеры и ждёт их остановки.
func shutdownWorkers(cancel context.CancelFunc, done []<-chan struct{}, logger *log.Entry) {
	cancel()
	timeout := time.After(grpcStopTimeout)
	for _, ch := range done {
		select {
		case <-ch:
		case <-timeout:
			logger.Warn("background workers did not stop in time")
			return
		}
	}
}

func stopGRPC(srv *grpc.Server, logger *log.Entry) {
	stopped := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(grpcStopTimeout):
		logger.Warn("graceful stop timed out, forcing grpc server stop")
		srv.Stop()
	}
}

// startMetricsServer запускает HTTP-сервер с /metrics и health-эндпоинтами.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Infof("metrics available at %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}

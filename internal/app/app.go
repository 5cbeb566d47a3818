package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/beerorders/internal/health"
	"github.com/vladislavdragonenkov/beerorders/internal/metrics"
	"github.com/vladislavdragonenkov/beerorders/internal/service/callback"
	"github.com/vladislavdragonenkov/beerorders/internal/service/idempotency"
	orderservice "github.com/vladislavdragonenkov/beerorders/internal/service/order"
	"github.com/vladislavdragonenkov/beerorders/internal/service/rest"
	"github.com/vladislavdragonenkov/beerorders/internal/version"
)

// Run собирает все компоненты сервиса и блокируется до отмены контекста
// или фатальной ошибки HTTP-сервера.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.close(logger)

	// Kafka опционален: без brokers события просто не публикуются
	kafkaProducer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)
	defer closeKafka(kafkaProducer, logger)

	dispatcherOptions := []callback.Option{
		callback.WithLogger(logger.WithField("component", "callback-dispatcher")),
		callback.WithWorkers(cfg.CallbackWorkers),
		callback.WithQueueSize(cfg.CallbackQueueSize),
		callback.WithMaxAttempts(cfg.CallbackMaxAttempts),
		callback.WithRetryBaseDelay(cfg.CallbackRetryBaseDelay),
		callback.WithMaxDelay(cfg.CallbackMaxDelay),
	}
	if kafkaProducer != nil {
		dispatcherOptions = append(dispatcherOptions, callback.WithDLQPublisher(kafkaProducer))
	}
	dispatcher := callback.NewDispatcher(dispatcherOptions...)

	dispatcherDone := make(chan struct{})
	go func() {
		defer close(dispatcherDone)
		dispatcher.Run(ctx)
	}()

	serviceOptions := []orderservice.Option{
		orderservice.WithLogger(logger.WithField("component", "order-service")),
		orderservice.WithMetrics(metrics.NewOrderMetrics()),
		orderservice.WithDefaultPageSize(cfg.DefaultPageSize),
		orderservice.WithMaxPageSize(cfg.MaxPageSize),
	}
	if kafkaProducer != nil {
		serviceOptions = append(serviceOptions, orderservice.WithEventPublisher(kafkaProducer))
	}
	orders := orderservice.NewService(deps.repo, deps.historyRepo, dispatcher, serviceOptions...)

	cleanupWorker := idempotency.NewCleanupWorker(
		deps.idempotencyRepo,
		idempotency.WithLogger(logger.WithField("component", "idempotency-cleanup")),
		idempotency.WithInterval(cfg.IdempotencyCleanupInterval),
		idempotency.WithBatchSize(cfg.IdempotencyCleanupBatchSize),
	)
	go cleanupWorker.Run(ctx)

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	if deps.store != nil {
		healthHandler.RegisterChecker("postgres", healthcheck.NewSimpleChecker("postgres", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return deps.store.Ping(pingCtx)
		}))
	}
	healthHandler.RegisterChecker("callback-queue", healthcheck.NewSaturationChecker(
		"callback-queue", dispatcher.QueueDepth, dispatcher.QueueCapacity(), 0.9))

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	restHandler := rest.NewHandler(
		orders,
		rest.WithLogger(logger.WithField("component", "rest-handler")),
		rest.WithIdempotency(deps.idempotencyRepo),
		rest.WithIdempotencyTTL(cfg.IdempotencyTTL),
		rest.WithRequestTimeout(cfg.RequestTimeout),
	)

	apiSrv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: restHandler.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API слушает %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)

		// Дожидаемся завершения начатых доставок; очередь не дорабатывается,
		// оставшиеся уведомления теряются
		select {
		case <-dispatcherDone:
		case <-time.After(10 * time.Second):
			logger.Warn("callback dispatcher не остановился за таймаут")
		}

		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
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
		logger.WithError(err).Warn("http shutdown with error")
	}
}

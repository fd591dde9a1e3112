package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/bakery/internal/health"
	"github.com/vladislavdragonenkov/bakery/internal/httpapi"
	"github.com/vladislavdragonenkov/bakery/internal/service/outbox"
	"github.com/vladislavdragonenkov/bakery/internal/version"
)

// Run поднимает API заказов и сервер метрик и блокируется до отмены ctx.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	if err := cfg.Validate(); err != nil {
		return err
	}

	deps, err := NewDependencies(cfg, prometheus.DefaultRegisterer, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	stopEvents := startEventWorker(deps.EventWorker)
	defer stopEvents(cfg.ShutdownTimeout)

	go func() {
		if err := deps.Catalog.Watch(ctx); err != nil {
			logger.WithError(err).Warn("слежение за каталогом недоступно, изменения файла не подхватываются")
		}
	}()

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("store", healthcheck.NewStoreChecker(deps.Store))
	healthHandler.RegisterChecker("mail", healthcheck.NewFeatureChecker("mail", cfg.MailEnabled()))
	healthHandler.RegisterChecker("events", healthcheck.NewFeatureChecker("events", deps.Events != nil))

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	options := []httpapi.Option{
		httpapi.WithLogger(logger.WithField("layer", "http")),
		httpapi.WithMetrics(deps.Metrics),
		httpapi.WithAllowedOrigins(cfg.CORSOrigins...),
	}
	if deps.Events != nil {
		options = append(options, httpapi.WithEvents(deps.Events))
	}
	api := httpapi.NewHandler(deps.Store, deps.Catalog, deps.Dispatcher, options...)

	apiSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		// Ответ на создание заказа ждёт уведомление не дольше NotifyTimeout.
		WriteTimeout: cfg.NotifyTimeout + 10*time.Second,
	}

	lis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		shutdownHTTP(metricsSrv, logger, cfg.ShutdownTimeout)
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(log.Fields{
			"addr":           lis.Addr().String(),
			"storage_driver": cfg.StorageDriver,
			"orders_path":    cfg.OrdersPath,
		}).Info("HTTP API слушает")
		errCh <- apiSrv.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP API")
		shutdownHTTP(apiSrv, logger, cfg.ShutdownTimeout)
		shutdownHTTP(metricsSrv, logger, cfg.ShutdownTimeout)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger, cfg.ShutdownTimeout)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startEventWorker запускает отправку событий в фоне. Возвращённая функция
// останавливает воркер и ждёт выгрузки очереди не дольше timeout.
// Вызывать до закрытия продюсера Kafka.
func startEventWorker(worker *outbox.Worker) func(timeout time.Duration) {
	if worker == nil {
		return func(time.Duration) {}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.Run(ctx)
	}()

	return func(timeout time.Duration) {
		cancel()
		select {
		case <-done:
		case <-time.After(timeout):
			log.WithField("component", "app").
				WithField("pending", worker.Pending()).
				Warn("очередь событий не выгружена до остановки")
		}
	}
}

// startMetricsServer запускает /metrics и пробы здоровья на отдельном адресе.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger, 5*time.Second)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry, timeout time.Duration) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).WithField("addr", srv.Addr).Warn("http shutdown with error")
	}
}

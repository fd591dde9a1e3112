package app

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bakery/internal/catalog"
	"github.com/vladislavdragonenkov/bakery/internal/domain"
	"github.com/vladislavdragonenkov/bakery/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/bakery/internal/metrics"
	"github.com/vladislavdragonenkov/bakery/internal/notify"
	"github.com/vladislavdragonenkov/bakery/internal/service/outbox"
	filestore "github.com/vladislavdragonenkov/bakery/internal/storage/file"
	"github.com/vladislavdragonenkov/bakery/internal/storage/memory"
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Store      domain.OrderStore
	Catalog    *catalog.Catalog
	Dispatcher *notify.Dispatcher
	Metrics    *metrics.OrderMetrics
	Producer   *kafka.Producer
	// EventWorker и Events равны nil, если Kafka не настроена.
	EventWorker *outbox.Worker
	Events      domain.EventPublisher
	Logger      *log.Entry
}

// NewDependencies открывает хранилище и каталог и собирает уведомления.
// Недоступная Kafka не мешает запуску: события просто не публикуются.
func NewDependencies(cfg Config, registerer prometheus.Registerer, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	orderMetrics := metrics.NewOrderMetricsWithRegisterer(registerer)

	store, err := openStore(cfg, orderMetrics, logger)
	if err != nil {
		return nil, err
	}

	cakes, err := catalog.Load(cfg.CatalogPath, logger.WithField("component", "catalog"), orderMetrics)
	if err != nil {
		return nil, err
	}

	var mailer domain.Mailer
	if cfg.MailEnabled() {
		mailer = notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
			ShopName: cfg.ShopName,
		})
	} else {
		logger.Warn("SMTP_HOST не задан, письма-подтверждения отправляться не будут")
	}

	dispatcher := notify.NewDispatcher(notify.NewPNGGenerator(cfg.QRSize), mailer,
		notify.WithLogger(logger.WithField("component", "notify")),
		notify.WithMetrics(orderMetrics),
		notify.WithTimeout(cfg.NotifyTimeout),
	)

	deps := &Dependencies{
		Store:      store,
		Catalog:    cakes,
		Dispatcher: dispatcher,
		Metrics:    orderMetrics,
		Logger:     logger,
	}

	producer, err := initKafkaProducer(cfg.KafkaBrokers, logger)
	if err == nil && producer != nil {
		deps.Producer = producer
		deps.EventWorker = outbox.NewWorker(kafka.NewOrderEventPublisher(producer, cfg.KafkaTopic),
			outbox.WithLogger(logger.WithField("component", "event-worker")),
			outbox.WithMetrics(orderMetrics),
			outbox.WithQueueSize(cfg.EventQueueSize),
		)
		deps.Events = deps.EventWorker
	}

	return deps, nil
}

// openStore выбирает реализацию хранилища по StorageDriver.
func openStore(cfg Config, m *metrics.OrderMetrics, logger *log.Entry) (domain.OrderStore, error) {
	switch cfg.StorageDriver {
	case StorageDriverFile, "":
		return filestore.Open(cfg.OrdersPath,
			filestore.WithLogger(logger.WithField("component", "order-store")),
			filestore.WithMetrics(m),
		)
	case StorageDriverMemory:
		logger.Warn("используется хранилище в памяти, заказы пропадут после перезапуска")
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

// Close освобождает внешние соединения.
func (d *Dependencies) Close() {
	if d == nil {
		return
	}
	closeKafka(d.Producer, d.Logger)
}

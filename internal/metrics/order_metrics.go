package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Значения меток channel/result для уведомлений.
const (
	ChannelQR     = "qr"
	ChannelEmail  = "email"
	ChannelEvents = "events"

	ResultSent    = "sent"
	ResultFailed  = "failed"
	ResultSkipped = "skipped"
)

// Значения метки op для операций хранилища.
const (
	OpList         = "list"
	OpAppend       = "append"
	OpUpdateStatus = "update_status"
)

// OrderMetrics содержит метрики приёма и обработки заказов.
// Nil-получатель допустим: все методы становятся no-op.
type OrderMetrics struct {
	ordersCreated  prometheus.Counter
	statusChanges  *prometheus.CounterVec
	notifications  *prometheus.CounterVec
	storeDuration  *prometheus.HistogramVec
	storeFailures  *prometheus.CounterVec
	searchResults  prometheus.Histogram
	catalogReloads *prometheus.CounterVec
}

// NewOrderMetrics регистрирует метрики в DefaultRegisterer.
func NewOrderMetrics() *OrderMetrics {
	return NewOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewOrderMetricsWithRegisterer регистрирует метрики в переданном реестре.
// Повторная регистрация переиспользует уже существующие коллекторы.
func NewOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "bakery_orders_created_total",
			Help: "Total number of orders persisted",
		}),
		statusChanges: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "bakery_order_status_changes_total",
			Help: "Total number of applied status changes by target status",
		}, []string{"status"}),
		notifications: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "bakery_notifications_total",
			Help: "Notification attempts grouped by channel and result",
		}, []string{"channel", "result"}),
		storeDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "bakery_store_operation_duration_seconds",
			Help:    "Duration of order file operations in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"op"}),
		storeFailures: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "bakery_store_failures_total",
			Help: "Failed order file operations",
		}, []string{"op"}),
		searchResults: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "bakery_search_results",
			Help:    "Number of orders returned by a search query",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		}),
		catalogReloads: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "bakery_catalog_reloads_total",
			Help: "Cake catalog reloads grouped by result",
		}, []string{"result"}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderCreated увеличивает счётчик сохранённых заказов.
func (m *OrderMetrics) RecordOrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

// RecordStatusChange учитывает применённую смену статуса.
func (m *OrderMetrics) RecordStatusChange(status string) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(status).Inc()
}

// RecordNotification учитывает попытку уведомления по каналу.
func (m *OrderMetrics) RecordNotification(channel, result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(channel, result).Inc()
}

// RecordStoreOperation записывает длительность операции с файлом и её исход.
func (m *OrderMetrics) RecordStoreOperation(op string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.storeDuration.WithLabelValues(op).Observe(duration.Seconds())
	if err != nil {
		m.storeFailures.WithLabelValues(op).Inc()
	}
}

// RecordSearchResults записывает размер выдачи поиска.
func (m *OrderMetrics) RecordSearchResults(n int) {
	if m == nil {
		return
	}
	m.searchResults.Observe(float64(n))
}

// RecordCatalogReload учитывает перечитывание каталога тортов.
func (m *OrderMetrics) RecordCatalogReload(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.catalogReloads.WithLabelValues(result).Inc()
}

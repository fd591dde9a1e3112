package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bakery/internal/domain"
	"github.com/vladislavdragonenkov/bakery/internal/metrics"
)

const (
	defaultQueueSize      = 256
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = 200 * time.Millisecond
)

// ErrQueueFull возвращается, когда очередь событий переполнена и событие отброшено.
var ErrQueueFull = errors.New("event queue is full")

type eventKind int

const (
	kindOrderCreated eventKind = iota
	kindStatusChanged
)

func (k eventKind) String() string {
	if k == kindStatusChanged {
		return "order.status_changed"
	}
	return "order.created"
}

type pendingEvent struct {
	kind  eventKind
	order domain.Order
}

// WorkerOptions задаёт параметры воркера событий.
type WorkerOptions struct {
	Logger         *log.Entry
	Metrics        *metrics.OrderMetrics
	QueueSize      int
	MaxAttempts    int
	RetryBaseDelay time.Duration
}

// Option настраивает Worker.
type Option func(*WorkerOptions)

// WithLogger задаёт logger для воркера.
func WithLogger(logger *log.Entry) Option {
	return func(opts *WorkerOptions) {
		opts.Logger = logger
	}
}

func WithMetrics(m *metrics.OrderMetrics) Option {
	return func(opts *WorkerOptions) {
		opts.Metrics = m
	}
}

// WithQueueSize задаёт ёмкость очереди в памяти.
func WithQueueSize(size int) Option {
	return func(opts *WorkerOptions) {
		opts.QueueSize = size
	}
}

// WithMaxAttempts задаёт число попыток публикации одного события.
func WithMaxAttempts(maxAttempts int) Option {
	return func(opts *WorkerOptions) {
		opts.MaxAttempts = maxAttempts
	}
}

// WithRetryBaseDelay задаёт базовый delay для exponential backoff.
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(opts *WorkerOptions) {
		opts.RetryBaseDelay = delay
	}
}

// Worker принимает события заказов без ожидания брокера и публикует их
// в фоне с повторами. Очередь живёт в памяти: события, не отправленные до
// остановки процесса, теряются, заказ при этом уже сохранён.
type Worker struct {
	publisher      domain.EventPublisher
	queue          chan pendingEvent
	logger         *log.Entry
	metrics        *metrics.OrderMetrics
	maxAttempts    int
	retryBaseDelay time.Duration
}

// NewWorker создаёт воркер поверх publisher.
func NewWorker(publisher domain.EventPublisher, options ...Option) *Worker {
	opts := WorkerOptions{
		QueueSize:      defaultQueueSize,
		MaxAttempts:    defaultMaxAttempts,
		RetryBaseDelay: defaultRetryBaseDelay,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "event-worker")
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.RetryBaseDelay < 0 {
		opts.RetryBaseDelay = 0
	}

	return &Worker{
		publisher:      publisher,
		queue:          make(chan pendingEvent, opts.QueueSize),
		logger:         logger,
		metrics:        opts.Metrics,
		maxAttempts:    opts.MaxAttempts,
		retryBaseDelay: opts.RetryBaseDelay,
	}
}

// PublishOrderCreated ставит событие в очередь и не блокируется.
func (w *Worker) PublishOrderCreated(order domain.Order) error {
	return w.enqueue(kindOrderCreated, order)
}

// PublishStatusChanged ставит событие в очередь и не блокируется.
func (w *Worker) PublishStatusChanged(order domain.Order) error {
	return w.enqueue(kindStatusChanged, order)
}

// Pending возвращает число событий в очереди.
func (w *Worker) Pending() int {
	return len(w.queue)
}

func (w *Worker) enqueue(kind eventKind, order domain.Order) error {
	select {
	case w.queue <- pendingEvent{kind: kind, order: order.Clone()}:
		return nil
	default:
		w.metrics.RecordNotification(metrics.ChannelEvents, metrics.ResultFailed)
		return fmt.Errorf("%w: %s for order %d", ErrQueueFull, kind, order.ID)
	}
}

// Run публикует события до отмены ctx, затем делает по одной попытке для
// оставшихся в очереди.
func (w *Worker) Run(ctx context.Context) {
	if w.publisher == nil {
		w.logger.Warn("event worker is disabled: publisher is nil")
		return
	}

	for {
		select {
		case <-ctx.Done():
			w.flush()
			return
		case event := <-w.queue:
			w.process(ctx, event)
		}
	}
}

func (w *Worker) process(ctx context.Context, event pendingEvent) {
	if err := w.publishWithRetry(ctx, event); err != nil {
		w.logger.WithError(err).WithFields(log.Fields{
			"order_id":   event.order.ID,
			"event_type": event.kind.String(),
		}).Error("order event publish failed after retries")
		w.metrics.RecordNotification(metrics.ChannelEvents, metrics.ResultFailed)
		return
	}
	w.metrics.RecordNotification(metrics.ChannelEvents, metrics.ResultSent)
}

func (w *Worker) flush() {
	for {
		select {
		case event := <-w.queue:
			if err := w.publish(event); err != nil {
				w.logger.WithError(err).WithField("order_id", event.order.ID).Warn("order event dropped on shutdown")
				w.metrics.RecordNotification(metrics.ChannelEvents, metrics.ResultFailed)
				continue
			}
			w.metrics.RecordNotification(metrics.ChannelEvents, metrics.ResultSent)
		default:
			return
		}
	}
}

func (w *Worker) publish(event pendingEvent) error {
	if event.kind == kindStatusChanged {
		return w.publisher.PublishStatusChanged(event.order)
	}
	return w.publisher.PublishOrderCreated(event.order)
}

func (w *Worker) publishWithRetry(ctx context.Context, event pendingEvent) error {
	var lastErr error

	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		err := w.publish(event)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt >= w.maxAttempts {
			break
		}

		delay := w.retryBackoff(attempt)
		if delay <= 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("publish interrupted after %d attempts: %w", attempt, lastErr)
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("publish failed after %d attempts: %w", w.maxAttempts, lastErr)
}

func (w *Worker) retryBackoff(attempt int) time.Duration {
	if w.retryBaseDelay <= 0 {
		return 0
	}
	if attempt <= 1 {
		return w.retryBaseDelay
	}

	const maxDuration = time.Duration(1<<63 - 1)
	delay := w.retryBaseDelay
	for i := 1; i < attempt; i++ {
		if delay > maxDuration/2 {
			return maxDuration
		}
		delay *= 2
	}
	return delay
}

var _ domain.EventPublisher = (*Worker)(nil)

package notify

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bakery/internal/domain"
	"github.com/vladislavdragonenkov/bakery/internal/metrics"
)

const defaultTimeout = 10 * time.Second

// Result — итог уведомления, попадает в ответ на создание заказа.
type Result struct {
	OrderID   int64
	EmailSent bool
}

// DispatcherOptions задаёт параметры Dispatcher.
type DispatcherOptions struct {
	Logger  *log.Entry
	Metrics *metrics.OrderMetrics
	Timeout time.Duration
}

// Option настраивает Dispatcher.
type Option func(*DispatcherOptions)

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(opts *DispatcherOptions) {
		opts.Logger = logger
	}
}

// WithMetrics включает учёт уведомлений в метриках.
func WithMetrics(m *metrics.OrderMetrics) Option {
	return func(opts *DispatcherOptions) {
		opts.Metrics = m
	}
}

// WithTimeout ограничивает общее время генерации QR и отправки письма.
func WithTimeout(timeout time.Duration) Option {
	return func(opts *DispatcherOptions) {
		opts.Timeout = timeout
	}
}

// Dispatcher после сохранения заказа рисует QR-код и отправляет письмо.
// Любая ошибка здесь логируется и превращается в EmailSent=false: заказ
// к этому моменту уже сохранён и не откатывается.
type Dispatcher struct {
	qr      domain.QRGenerator
	mailer  domain.Mailer
	logger  *log.Entry
	metrics *metrics.OrderMetrics
	timeout time.Duration
}

// NewDispatcher создаёт диспетчер. mailer == nil означает, что почта отключена.
func NewDispatcher(qr domain.QRGenerator, mailer domain.Mailer, options ...Option) *Dispatcher {
	opts := DispatcherOptions{Timeout: defaultTimeout}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "notify")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	return &Dispatcher{
		qr:      qr,
		mailer:  mailer,
		logger:  logger,
		metrics: opts.Metrics,
		timeout: opts.Timeout,
	}
}

// Dispatch выполняет уведомление синхронно в пределах таймаута.
func (d *Dispatcher) Dispatch(ctx context.Context, order domain.Order) Result {
	res := Result{OrderID: order.ID}
	logger := d.logger.WithField("order_id", order.ID)

	if d.mailer == nil {
		d.metrics.RecordNotification(metrics.ChannelEmail, metrics.ResultSkipped)
		logger.Debug("почта отключена, письмо не отправляется")
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	qrPNG, err := d.generateQR(ctx, order)
	if err != nil {
		// Письмо всё равно уходит, просто без вложения.
		logger.WithError(err).WithField("step", "qr").Warn("не удалось сгенерировать QR-код")
		d.metrics.RecordNotification(metrics.ChannelQR, metrics.ResultFailed)
	} else if qrPNG != nil {
		d.metrics.RecordNotification(metrics.ChannelQR, metrics.ResultSent)
	}

	err = runWithContext(ctx, func() error {
		return d.mailer.SendConfirmation(ctx, order, qrPNG)
	})
	if err != nil {
		logger.WithError(fmt.Errorf("%w: %w", domain.ErrNotification, err)).
			WithField("step", "email").
			Warn("не удалось отправить письмо-подтверждение")
		d.metrics.RecordNotification(metrics.ChannelEmail, metrics.ResultFailed)
		return res
	}

	d.metrics.RecordNotification(metrics.ChannelEmail, metrics.ResultSent)
	logger.Info("письмо-подтверждение отправлено")
	res.EmailSent = true
	return res
}

func (d *Dispatcher) generateQR(ctx context.Context, order domain.Order) ([]byte, error) {
	if d.qr == nil {
		return nil, nil
	}
	var png []byte
	err := runWithContext(ctx, func() error {
		var genErr error
		png, genErr = d.qr.Generate(ctx, QRContent(order.ID))
		return genErr
	})
	if err != nil {
		return nil, err
	}
	return png, nil
}

// runWithContext ждёт fn не дольше, чем живёт ctx. Транспорты без поддержки
// контекста продолжают работу в фоне, но запрос их не ждёт.
func runWithContext(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

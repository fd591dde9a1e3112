package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/bakery/internal/domain"
	"github.com/vladislavdragonenkov/bakery/internal/metrics"
	"github.com/vladislavdragonenkov/bakery/internal/notify"
)

func loggerForTests() *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(logrus.DebugLevel)
	return logger.WithField("component", "test")
}

type stubQR struct {
	err     error
	content []string
}

func (s *stubQR) Generate(_ context.Context, content string) ([]byte, error) {
	s.content = append(s.content, content)
	if s.err != nil {
		return nil, s.err
	}
	return []byte("png"), nil
}

type stubMailer struct {
	mu    sync.Mutex
	err   error
	delay time.Duration
	sent  []domain.Order
	qr    [][]byte
}

func (m *stubMailer) SendConfirmation(ctx context.Context, order domain.Order, qrPNG []byte) error {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, order)
	m.qr = append(m.qr, qrPNG)
	return nil
}

func testOrder() domain.Order {
	return domain.Order{
		ID:        5,
		FirstName: "さくら",
		LastName:  "山田",
		Email:     "sakura@example.com",
		Status:    domain.OrderStatusReceived,
		Cakes:     []domain.CakeLine{{Name: "チーズケーキ", Amount: 1}},
	}
}

func TestDispatch_Success(t *testing.T) {
	qr := &stubQR{}
	mailer := &stubMailer{}
	d := notify.NewDispatcher(qr, mailer, notify.WithLogger(loggerForTests()))

	res := d.Dispatch(context.Background(), testOrder())

	assert.Equal(t, int64(5), res.OrderID)
	assert.True(t, res.EmailSent)
	assert.Equal(t, []string{"ORDER:5"}, qr.content)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []byte("png"), mailer.qr[0])
}

func TestDispatch_QRFailureStillSendsEmail(t *testing.T) {
	qr := &stubQR{err: errors.New("encoder broken")}
	mailer := &stubMailer{}
	d := notify.NewDispatcher(qr, mailer, notify.WithLogger(loggerForTests()))

	res := d.Dispatch(context.Background(), testOrder())

	assert.True(t, res.EmailSent)
	require.Len(t, mailer.qr, 1)
	assert.Nil(t, mailer.qr[0])
}

func TestDispatch_EmailFailureIsSwallowed(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewOrderMetricsWithRegisterer(reg)
	d := notify.NewDispatcher(&stubQR{}, &stubMailer{err: errors.New("smtp 550")},
		notify.WithLogger(loggerForTests()),
		notify.WithMetrics(m),
	)

	res := d.Dispatch(context.Background(), testOrder())

	assert.Equal(t, int64(5), res.OrderID)
	assert.False(t, res.EmailSent)
}

func TestDispatch_Timeout(t *testing.T) {
	mailer := &stubMailer{delay: 5 * time.Second}
	d := notify.NewDispatcher(&stubQR{}, mailer,
		notify.WithLogger(loggerForTests()),
		notify.WithTimeout(50*time.Millisecond),
	)

	start := time.Now()
	res := d.Dispatch(context.Background(), testOrder())

	assert.False(t, res.EmailSent)
	assert.Less(t, time.Since(start), 2*time.Second, "dispatch must respect timeout")
}

func TestDispatch_MailerDisabled(t *testing.T) {
	qr := &stubQR{}
	d := notify.NewDispatcher(qr, nil, notify.WithLogger(loggerForTests()))

	res := d.Dispatch(context.Background(), testOrder())

	assert.False(t, res.EmailSent)
	assert.Empty(t, qr.content, "no qr when mail is disabled")
}

func TestDispatch_NilQRGenerator(t *testing.T) {
	mailer := &stubMailer{}
	d := notify.NewDispatcher(nil, mailer, notify.WithLogger(loggerForTests()))

	res := d.Dispatch(context.Background(), testOrder())

	assert.True(t, res.EmailSent)
	assert.Nil(t, mailer.qr[0])
}

func TestDispatch_CanceledParent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := notify.NewDispatcher(&stubQR{}, &stubMailer{delay: time.Second}, notify.WithLogger(loggerForTests()))
	res := d.Dispatch(ctx, testOrder())

	assert.False(t, res.EmailSent)
}

func TestPNGGenerator(t *testing.T) {
	g := notify.NewPNGGenerator(0)

	png, err := g.Generate(context.Background(), notify.QRContent(12))
	require.NoError(t, err)
	require.Greater(t, len(png), 8)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), png[:8])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Generate(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

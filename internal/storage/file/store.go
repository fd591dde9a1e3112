package file

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bakery/internal/domain"
	"github.com/vladislavdragonenkov/bakery/internal/metrics"
)

// Store хранит заказы в одном JSON-файле вида {"orders": [...]}.
//
// Все циклы чтение-изменение-запись (Append, UpdateStatus) проходят через
// один мьютекс. List не берёт блокировку: файл всегда заменяется целиком
// через rename, поэтому читатель видит либо старую, либо новую версию.
type Store struct {
	path    string
	mu      sync.Mutex
	logger  *log.Entry
	metrics *metrics.OrderMetrics
	now     func() time.Time
}

// Option настраивает Store.
type Option func(*Store)

// WithLogger задаёт logger хранилища.
func WithLogger(logger *log.Entry) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithMetrics включает метрики операций с файлом.
func WithMetrics(m *metrics.OrderMetrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithClock подменяет источник времени для created_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open открывает хранилище и создаёт пустой файл заказов, если его ещё нет.
func Open(path string, options ...Option) (*Store, error) {
	s := &Store{path: path}
	for _, option := range options {
		option(s)
	}
	if s.logger == nil {
		s.logger = log.WithField("component", "order-store")
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create data dir: %w", domain.ErrStorageWrite, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := s.write(nil); err != nil {
			return nil, err
		}
		s.logger.WithField("path", path).Info("создан пустой файл заказов")
	} else if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", domain.ErrStorageRead, path, err)
	}

	return s, nil
}

// Path возвращает путь к файлу заказов.
func (s *Store) Path() string {
	return s.path
}

// List читает файл целиком и возвращает заказы в порядке поступления.
func (s *Store) List() ([]domain.Order, error) {
	start := time.Now()
	orders, err := s.load()
	s.metrics.RecordStoreOperation(metrics.OpList, time.Since(start), err)
	return orders, err
}

// Append назначает следующий ID (max+1), ставит статус RECEIVED и
// атомарно перезаписывает файл. При ошибке записи заказ не сохранён.
func (s *Store) Append(draft domain.OrderDraft) (order domain.Order, err error) {
	if err := draft.Validate(); err != nil {
		return domain.Order{}, err
	}

	start := time.Now()
	defer func() {
		s.metrics.RecordStoreOperation(metrics.OpAppend, time.Since(start), err)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.load()
	if err != nil {
		return domain.Order{}, err
	}

	order = domain.NewOrder(nextID(orders), draft, s.now())
	orders = append(orders, order)

	if err := s.write(orders); err != nil {
		return domain.Order{}, err
	}

	s.logger.WithFields(log.Fields{
		"order_id": order.ID,
		"cakes":    len(order.Cakes),
	}).Info("заказ сохранён")

	return order.Clone(), nil
}

// UpdateStatus меняет статус заказа, если переход разрешён графом статусов.
func (s *Store) UpdateStatus(id int64, status domain.OrderStatus) (order domain.Order, err error) {
	if !status.Valid() {
		return domain.Order{}, fmt.Errorf("%w: %q", domain.ErrUnknownStatus, status)
	}

	start := time.Now()
	defer func() {
		s.metrics.RecordStoreOperation(metrics.OpUpdateStatus, time.Since(start), err)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.load()
	if err != nil {
		return domain.Order{}, err
	}

	idx := indexOf(orders, id)
	if idx < 0 {
		return domain.Order{}, fmt.Errorf("order %d: %w", id, domain.ErrOrderNotFound)
	}

	previous := orders[idx].Status
	if err := domain.ValidateTransition(previous, status); err != nil {
		return domain.Order{}, err
	}

	orders[idx].Status = status
	if err := s.write(orders); err != nil {
		return domain.Order{}, err
	}

	s.logger.WithFields(log.Fields{
		"order_id": id,
		"from":     previous,
		"to":       status,
	}).Info("статус заказа изменён")

	return orders[idx].Clone(), nil
}

// load читает и разбирает файл, приводя статусы старых ревизий к каноническим кодам.
func (s *Store) load() ([]domain.Order, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageRead, err)
	}

	orders, err := decodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrStorageFormat, s.path, err)
	}
	return orders, nil
}

// write сериализует коллекцию во временный файл рядом с основным и
// переименовывает его поверх основного.
func (s *Store) write(orders []domain.Order) error {
	data, err := encodeDocument(orders)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", domain.ErrStorageWrite, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp: %w", domain.ErrStorageWrite, err)
	}
	tmpName := tmp.Name()

	cleanup := func(cause error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %w", domain.ErrStorageWrite, cause)
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %w", domain.ErrStorageWrite, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: rename: %w", domain.ErrStorageWrite, err)
	}
	return nil
}

func nextID(orders []domain.Order) int64 {
	var maxID int64
	for _, o := range orders {
		if o.ID > maxID {
			maxID = o.ID
		}
	}
	return maxID + 1
}

func indexOf(orders []domain.Order, id int64) int {
	for i := range orders {
		if orders[i].ID == id {
			return i
		}
	}
	return -1
}

func encodeDocument(orders []domain.Order) ([]byte, error) {
	doc := document{Orders: make([]orderRecord, 0, len(orders))}
	for _, o := range orders {
		doc.Orders = append(doc.Orders, toRecord(o))
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var _ domain.OrderStore = (*Store)(nil)

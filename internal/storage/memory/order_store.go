package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/bakery/internal/domain"
)

// Store — хранилище заказов в памяти процесса для локальной разработки и демо.
// Данные теряются при перезапуске.
type Store struct {
	mu     sync.RWMutex
	orders []domain.Order
	now    func() time.Time
}

// NewStore возвращает пустое хранилище.
func NewStore() *Store {
	return &Store{now: func() time.Time { return time.Now().UTC() }}
}

// List возвращает копии заказов в порядке поступления.
func (s *Store) List() ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Order, len(s.orders))
	for i, order := range s.orders {
		out[i] = order.Clone()
	}
	return out, nil
}

// Append назначает ID = max+1 и сохраняет копию заказа.
func (s *Store) Append(draft domain.OrderDraft) (domain.Order, error) {
	if err := draft.Validate(); err != nil {
		return domain.Order{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var maxID int64
	for _, order := range s.orders {
		if order.ID > maxID {
			maxID = order.ID
		}
	}

	order := domain.NewOrder(maxID+1, draft, s.now())
	s.orders = append(s.orders, order)
	return order.Clone(), nil
}

// UpdateStatus меняет статус с проверкой перехода.
func (s *Store) UpdateStatus(id int64, status domain.OrderStatus) (domain.Order, error) {
	if !status.Valid() {
		return domain.Order{}, fmt.Errorf("%w: %q", domain.ErrUnknownStatus, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		if s.orders[i].ID != id {
			continue
		}
		if err := domain.ValidateTransition(s.orders[i].Status, status); err != nil {
			return domain.Order{}, err
		}
		s.orders[i].Status = status
		return s.orders[i].Clone(), nil
	}
	return domain.Order{}, fmt.Errorf("order %d: %w", id, domain.ErrOrderNotFound)
}

var _ domain.OrderStore = (*Store)(nil)

package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/bakery/internal/domain"
)

// document — корневая структура файла заказов.
type document struct {
	Orders []orderRecord `json:"orders"`
}

// orderRecord — формат заказа на диске. Статус хранится строкой, чтобы
// читать значения старых ревизий ("未", "1", "a", ...).
type orderRecord struct {
	ID         int64        `json:"id"`
	FirstName  string       `json:"first_name"`
	LastName   string       `json:"last_name"`
	Tel        string       `json:"tel"`
	Email      string       `json:"email"`
	Date       string       `json:"date"`
	PickupHour string       `json:"pickup_hour"`
	Message    string       `json:"message"`
	Cakes      []cakeRecord `json:"cakes"`
	Status     string       `json:"status"`
	CreatedAt  *time.Time   `json:"created_at,omitempty"`

	// Старые записи хранили время выдачи под ключом из тела запроса.
	LegacyPickupHour string `json:"pickupHour,omitempty"`
}

type cakeRecord struct {
	Name        string `json:"name"`
	Size        string `json:"size"`
	Amount      int    `json:"amount"`
	MessageCake string `json:"message_cake"`
}

var errMissingOrders = errors.New(`missing "orders" array`)

func decodeDocument(data []byte) ([]domain.Order, error) {
	var raw struct {
		Orders *[]orderRecord `json:"orders"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw.Orders == nil {
		return nil, errMissingOrders
	}

	orders := make([]domain.Order, 0, len(*raw.Orders))
	for i, rec := range *raw.Orders {
		order, err := rec.toDomain()
		if err != nil {
			return nil, fmt.Errorf("orders[%d]: %w", i, err)
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (r orderRecord) toDomain() (domain.Order, error) {
	if r.ID <= 0 {
		return domain.Order{}, fmt.Errorf("invalid id %d", r.ID)
	}
	status, err := domain.ParseStoredStatus(r.Status)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %d: %w", r.ID, err)
	}

	pickup := r.PickupHour
	if pickup == "" {
		pickup = r.LegacyPickupHour
	}

	cakes := make([]domain.CakeLine, 0, len(r.Cakes))
	for _, c := range r.Cakes {
		cakes = append(cakes, domain.CakeLine{
			Name:        c.Name,
			Size:        c.Size,
			Amount:      c.Amount,
			MessageCake: c.MessageCake,
		})
	}

	order := domain.Order{
		ID:         r.ID,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Tel:        r.Tel,
		Email:      r.Email,
		Date:       r.Date,
		PickupHour: pickup,
		Message:    r.Message,
		Cakes:      cakes,
		Status:     status,
	}
	if r.CreatedAt != nil {
		order.CreatedAt = *r.CreatedAt
	}
	return order, nil
}

func toRecord(o domain.Order) orderRecord {
	cakes := make([]cakeRecord, 0, len(o.Cakes))
	for _, c := range o.Cakes {
		cakes = append(cakes, cakeRecord{
			Name:        c.Name,
			Size:        c.Size,
			Amount:      c.Amount,
			MessageCake: c.MessageCake,
		})
	}

	rec := orderRecord{
		ID:         o.ID,
		FirstName:  o.FirstName,
		LastName:   o.LastName,
		Tel:        o.Tel,
		Email:      o.Email,
		Date:       o.Date,
		PickupHour: o.PickupHour,
		Message:    o.Message,
		Cakes:      cakes,
		Status:     string(o.Status),
	}
	if !o.CreatedAt.IsZero() {
		createdAt := o.CreatedAt
		rec.CreatedAt = &createdAt
	}
	return rec
}

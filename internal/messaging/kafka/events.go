package kafka

import (
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/bakery/internal/domain"
)

// EventType определяет тип события заказа.
type EventType string

const (
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
)

// TopicOrderEvents — топик по умолчанию.
const TopicOrderEvents = "bakery.order.events"

// OrderEvent — сообщение о заказе для внешних потребителей (касса, склад).
type OrderEvent struct {
	EventID     string    `json:"event_id"`
	EventType   EventType `json:"event_type"`
	OrderID     int64     `json:"order_id"`
	Status      string    `json:"status"`
	StatusLabel string    `json:"status_label"`
	Date        string    `json:"date,omitempty"`
	PickupHour  string    `json:"pickup_hour,omitempty"`
	CakeCount   int       `json:"cake_count"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewOrderEvent строит событие из снимка заказа.
func NewOrderEvent(eventType EventType, order domain.Order, at time.Time) *OrderEvent {
	count := 0
	for _, cake := range order.Cakes {
		count += cake.Amount
	}
	return &OrderEvent{
		EventID:     uuid.NewString(),
		EventType:   eventType,
		OrderID:     order.ID,
		Status:      string(order.Status),
		StatusLabel: order.Status.Label(),
		Date:        order.Date,
		PickupHour:  order.PickupHour,
		CakeCount:   count,
		Timestamp:   at.UTC(),
	}
}

package kafka

import (
	"fmt"
	"strconv"

	"github.com/vladislavdragonenkov/bakery/internal/domain"
)

// OrderEventPublisher отправляет события заказов в один топик.
// Ключ сообщения равен ID заказа: события одного заказа идут по порядку.
type OrderEventPublisher struct {
	producer *Producer
	topic    string
}

// NewOrderEventPublisher создаёт паблишер. Пустой topic заменяется TopicOrderEvents.
func NewOrderEventPublisher(producer *Producer, topic string) *OrderEventPublisher {
	if topic == "" {
		topic = TopicOrderEvents
	}
	return &OrderEventPublisher{producer: producer, topic: topic}
}

// Topic возвращает топик публикации.
func (p *OrderEventPublisher) Topic() string {
	return p.topic
}

func (p *OrderEventPublisher) PublishOrderCreated(order domain.Order) error {
	return p.publish(EventTypeOrderCreated, order)
}

func (p *OrderEventPublisher) PublishStatusChanged(order domain.Order) error {
	return p.publish(EventTypeOrderStatusChanged, order)
}

func (p *OrderEventPublisher) publish(eventType EventType, order domain.Order) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka order publisher is not initialized")
	}
	event := NewOrderEvent(eventType, order, p.producer.now())
	return p.producer.PublishEvent(p.topic, strconv.FormatInt(order.ID, 10), event)
}

var _ domain.EventPublisher = (*OrderEventPublisher)(nil)

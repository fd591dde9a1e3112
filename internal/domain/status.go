package domain

import (
	"fmt"
	"strings"
)

// OrderStatus описывает состояние оплаты и выдачи заказа.
// В JSON сериализуется стабильным кодом.
type OrderStatus string

const (
	// OrderStatusReceived — заказ принят, не оплачен.
	OrderStatusReceived OrderStatus = "RECEIVED"
	// OrderStatusPaidOnline — оплачен онлайн.
	OrderStatusPaidOnline OrderStatus = "PAID_ONLINE"
	// OrderStatusPaidInStore — оплачен в магазине.
	OrderStatusPaidInStore OrderStatus = "PAID_IN_STORE"
	// OrderStatusHandedOver — торт выдан клиенту. Конечный статус.
	OrderStatusHandedOver OrderStatus = "HANDED_OVER"
	// OrderStatusCancelled — заказ отменён. Конечный статус.
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// AllStatuses перечисляет статусы в порядке жизненного цикла.
var AllStatuses = []OrderStatus{
	OrderStatusReceived,
	OrderStatusPaidOnline,
	OrderStatusPaidInStore,
	OrderStatusHandedOver,
	OrderStatusCancelled,
}

var statusLabels = map[OrderStatus]string{
	OrderStatusReceived:    "未",
	OrderStatusPaidOnline:  "ネット決済済",
	OrderStatusPaidInStore: "店頭支払い済",
	OrderStatusHandedOver:  "お渡し済",
	OrderStatusCancelled:   "キャンセル",
}

// Разрешённые переходы. Отмена допустима из любого неконечного статуса.
var statusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusReceived: {
		OrderStatusPaidOnline,
		OrderStatusPaidInStore,
		OrderStatusHandedOver,
		OrderStatusCancelled,
	},
	OrderStatusPaidOnline:  {OrderStatusHandedOver, OrderStatusCancelled},
	OrderStatusPaidInStore: {OrderStatusHandedOver, OrderStatusCancelled},
}

// Коды разных ревизий старого формата файла.
var legacyStatuses = map[string]OrderStatus{
	"":  OrderStatusReceived,
	"0": OrderStatusReceived,
	"1": OrderStatusReceived,
	"a": OrderStatusReceived,
	"2": OrderStatusPaidOnline,
	"b": OrderStatusPaidOnline,
	"3": OrderStatusPaidInStore,
	"c": OrderStatusPaidInStore,
	"4": OrderStatusHandedOver,
	"d": OrderStatusHandedOver,
	"5": OrderStatusCancelled,
	"e": OrderStatusCancelled,
}

// Label возвращает отображаемое название статуса.
func (s OrderStatus) Label() string {
	return statusLabels[s]
}

// Valid сообщает, входит ли статус в перечисление.
func (s OrderStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Terminal сообщает, что из статуса нет переходов.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusHandedOver || s == OrderStatusCancelled
}

// CanTransitionTo проверяет переход по графу статусов.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidateTransition возвращает *TransitionError, если переход запрещён.
func ValidateTransition(from, to OrderStatus) error {
	if !from.CanTransitionTo(to) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}

// ParseStatus принимает канонический код (без учёта регистра) или отображаемое название.
func ParseStatus(raw string) (OrderStatus, error) {
	value := strings.TrimSpace(raw)
	if status := OrderStatus(strings.ToUpper(value)); status.Valid() {
		return status, nil
	}
	for status, label := range statusLabels {
		if label == value {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}

// ParseStoredStatus дополнительно понимает коды старых ревизий файла заказов.
func ParseStoredStatus(raw string) (OrderStatus, error) {
	if status, ok := legacyStatuses[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return status, nil
	}
	return ParseStatus(raw)
}

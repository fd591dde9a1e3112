package domain

import "context"

// OrderStore описывает хранилище заказов. Все записи сериализуются одной
// критической секцией, чтение не блокирует и не видит незавершённую запись.
type OrderStore interface {
	// List возвращает все заказы в порядке поступления.
	List() ([]Order, error)
	// Append назначает ID = max(ID)+1, статус RECEIVED и сохраняет заказ.
	Append(draft OrderDraft) (Order, error)
	// UpdateStatus меняет только статус заказа с проверкой перехода.
	UpdateStatus(id int64, status OrderStatus) (Order, error)
}

// QRGenerator рисует QR-код заказа в PNG.
type QRGenerator interface {
	Generate(ctx context.Context, content string) ([]byte, error)
}

// Mailer отправляет клиенту письмо-подтверждение. qrPNG может быть пустым.
type Mailer interface {
	SendConfirmation(ctx context.Context, order Order, qrPNG []byte) error
}

// EventPublisher публикует события заказа наружу. Ошибки публикации не
// откатывают уже сохранённый заказ.
type EventPublisher interface {
	PublishOrderCreated(order Order) error
	PublishStatusChanged(order Order) error
}

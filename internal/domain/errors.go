package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Ошибки валидации черновика заказа.
	ErrFirstNameRequired  = errors.New("first_name is required")
	ErrLastNameRequired   = errors.New("last_name is required")
	ErrTelRequired        = errors.New("tel is required")
	ErrEmailRequired      = errors.New("email is required")
	ErrEmailInvalid       = errors.New("email is invalid")
	ErrDateRequired       = errors.New("date is required")
	ErrPickupHourRequired = errors.New("pickupHour is required")
	ErrCakesRequired      = errors.New("order must contain at least one cake")
	ErrCakeNameRequired   = errors.New("cake name is required")
	ErrCakeAmountInvalid  = errors.New("cake amount must be greater than zero")

	// ErrValidation — общий признак ошибки валидации входных данных.
	ErrValidation = errors.New("validation failed")
	// ErrUnknownStatus — значение статуса вне перечисления.
	ErrUnknownStatus = errors.New("unknown order status")
	// ErrInvalidTransition — переход статуса запрещён графом.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrOrderNotFound возвращается, если заказа с таким ID нет.
	ErrOrderNotFound = errors.New("order not found")

	// ErrStorageRead — файл заказов недоступен для чтения.
	ErrStorageRead = errors.New("storage read failed")
	// ErrStorageFormat — содержимое файла не соответствует формату {"orders": [...]}.
	ErrStorageFormat = errors.New("storage format invalid")
	// ErrStorageWrite — не удалось записать файл; заказ не сохранён.
	ErrStorageWrite = errors.New("storage write failed")

	// ErrNotification — сбой генерации QR или отправки письма. Никогда не фатален.
	ErrNotification = errors.New("notification failed")
)

// ValidationError собирает все замечания по черновику заказа.
type ValidationError struct {
	Problems []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		msgs = append(msgs, p.Error())
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(msgs, "; "))
}

// Is позволяет errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Unwrap открывает отдельные замечания для errors.Is.
func (e *ValidationError) Unwrap() []error {
	return e.Problems
}

// TransitionError описывает запрещённый переход статуса.
type TransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// IsNotFound проверяет, является ли ошибка отсутствием заказа.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound)
}

// IsStorageError проверяет, относится ли ошибка к хранилищу.
func IsStorageError(err error) bool {
	return errors.Is(err, ErrStorageRead) ||
		errors.Is(err, ErrStorageFormat) ||
		errors.Is(err, ErrStorageWrite)
}

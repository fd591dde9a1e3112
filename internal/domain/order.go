package domain

import (
	"strings"
	"time"
)

// CakeLine представляет одну позицию заказа: торт, размер и количество.
type CakeLine struct {
	Name string `json:"name"`
	Size string `json:"size"`
	// Amount — количество тортов, строго больше нуля.
	Amount int `json:"amount"`
	// MessageCake — надпись на торте (опционально).
	MessageCake string `json:"message_cake"`
}

// OrderDraft — данные заказа от клиента до присвоения ID хранилищем.
type OrderDraft struct {
	FirstName  string
	LastName   string
	Tel        string
	Email      string
	Date       string
	PickupHour string
	Message    string
	Cakes      []CakeLine
}

// Order — сохранённый заказ. ID назначает только хранилище, после создания
// меняется только Status.
type Order struct {
	ID         int64       `json:"id"`
	FirstName  string      `json:"first_name"`
	LastName   string      `json:"last_name"`
	Tel        string      `json:"tel"`
	Email      string      `json:"email"`
	Date       string      `json:"date"`
	PickupHour string      `json:"pickup_hour"`
	Message    string      `json:"message"`
	Cakes      []CakeLine  `json:"cakes"`
	Status     OrderStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
}

// FullName возвращает имя в японском порядке: фамилия, затем имя.
func (o Order) FullName() string {
	return strings.TrimSpace(o.LastName + " " + o.FirstName)
}

// Clone возвращает копию заказа с независимым срезом позиций.
func (o Order) Clone() Order {
	out := o
	if o.Cakes != nil {
		out.Cakes = make([]CakeLine, len(o.Cakes))
		copy(out.Cakes, o.Cakes)
	}
	return out
}

// NewOrder собирает заказ из черновика в начальном статусе.
func NewOrder(id int64, draft OrderDraft, createdAt time.Time) Order {
	cakes := make([]CakeLine, len(draft.Cakes))
	copy(cakes, draft.Cakes)
	return Order{
		ID:         id,
		FirstName:  draft.FirstName,
		LastName:   draft.LastName,
		Tel:        draft.Tel,
		Email:      draft.Email,
		Date:       draft.Date,
		PickupHour: draft.PickupHour,
		Message:    draft.Message,
		Cakes:      cakes,
		Status:     OrderStatusReceived,
		CreatedAt:  createdAt,
	}
}

// ValidateInvariants проверяет обязательные поля черновика и возвращает список замечаний.
func (d *OrderDraft) ValidateInvariants() []error {
	var errs []error

	if isBlank(d.FirstName) {
		errs = append(errs, ErrFirstNameRequired)
	}
	if isBlank(d.LastName) {
		errs = append(errs, ErrLastNameRequired)
	}
	if isBlank(d.Tel) {
		errs = append(errs, ErrTelRequired)
	}
	if isBlank(d.Email) {
		errs = append(errs, ErrEmailRequired)
	} else if !strings.Contains(d.Email, "@") {
		errs = append(errs, ErrEmailInvalid)
	}
	if isBlank(d.Date) {
		errs = append(errs, ErrDateRequired)
	}
	if isBlank(d.PickupHour) {
		errs = append(errs, ErrPickupHourRequired)
	}
	if len(d.Cakes) == 0 {
		errs = append(errs, ErrCakesRequired)
	}

	for _, cake := range d.Cakes {
		if isBlank(cake.Name) {
			errs = append(errs, ErrCakeNameRequired)
		}
		if cake.Amount <= 0 {
			errs = append(errs, ErrCakeAmountInvalid)
		}
	}

	return errs
}

// Validate возвращает *ValidationError, если черновик нарушает инварианты.
func (d *OrderDraft) Validate() error {
	if errs := d.ValidateInvariants(); len(errs) > 0 {
		return &ValidationError{Problems: errs}
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

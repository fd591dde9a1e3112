package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bakery/internal/catalog"
	"github.com/vladislavdragonenkov/bakery/internal/domain"
	"github.com/vladislavdragonenkov/bakery/internal/search"
)

// orderView — заказ в ответе API, с подписью статуса для экрана магазина.
type orderView struct {
	domain.Order
	StatusLabel string `json:"status_label"`
}

func newOrderView(order domain.Order) orderView {
	return orderView{Order: order, StatusLabel: order.Status.Label()}
}

// reservationRequest — тело POST /api/reservar в формате фронтенда.
type reservationRequest struct {
	FirstName  string            `json:"first_name"`
	LastName   string            `json:"last_name"`
	Tel        string            `json:"tel"`
	Email      string            `json:"email"`
	Date       string            `json:"date"`
	PickupHour string            `json:"pickupHour"`
	Message    string            `json:"message"`
	Cakes      []domain.CakeLine `json:"cakes"`
}

func (r reservationRequest) draft() domain.OrderDraft {
	return domain.OrderDraft{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Tel:        r.Tel,
		Email:      r.Email,
		Date:       r.Date,
		PickupHour: r.PickupHour,
		Message:    r.Message,
		Cakes:      r.Cakes,
	}
}

type reservationResponse struct {
	Success   bool  `json:"success"`
	ID        int64 `json:"id"`
	EmailSent bool  `json:"emailSent"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type statusResponse struct {
	Success bool      `json:"success"`
	Order   orderView `json:"order"`
}

type cakesResponse struct {
	Cakes []catalog.Cake `json:"cakes"`
}

// listOrders отдаёт все заказы или результат поиска по ?search=.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.List()
	if err != nil {
		h.fail(w, r, err, false)
		return
	}

	if query := r.URL.Query().Get("search"); query != "" {
		orders = search.Filter(orders, query)
		h.metrics.RecordSearchResults(len(orders))
	}

	views := make([]orderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, newOrderView(order))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) listCakes(w http.ResponseWriter, _ *http.Request) {
	cakes := []catalog.Cake{}
	if h.catalog != nil {
		cakes = h.catalog.Cakes()
	}
	writeJSON(w, http.StatusOK, cakesResponse{Cakes: cakes})
}

// createOrder сохраняет заказ, затем уведомляет клиента. Сбой уведомления
// отражается только флагом emailSent: заказ уже записан.
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req reservationRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error(), true)
		return
	}

	order, err := h.store.Append(req.draft())
	if err != nil {
		h.fail(w, r, err, true)
		return
	}
	h.metrics.RecordOrderCreated()

	if h.events != nil {
		h.reportPublish(order, h.events.PublishOrderCreated(order))
	}

	emailSent := false
	if h.notifier != nil {
		// Уведомление не прерывается, если клиент закрыл соединение.
		emailSent = h.notifier.Dispatch(context.WithoutCancel(r.Context()), order).EmailSent
	}

	writeJSON(w, http.StatusOK, reservationResponse{
		Success:   true,
		ID:        order.ID,
		EmailSent: emailSent,
	})
}

// updateStatus меняет статус. Принимает код (PAID_ONLINE) или подпись (ネット決済済).
func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "invalid order id", true)
		return
	}

	var req statusRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error(), true)
		return
	}

	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		h.fail(w, r, err, true)
		return
	}

	order, err := h.store.UpdateStatus(id, status)
	if err != nil {
		h.fail(w, r, err, true)
		return
	}
	h.metrics.RecordStatusChange(string(order.Status))

	if h.events != nil {
		h.reportPublish(order, h.events.PublishStatusChanged(order))
	}

	writeJSON(w, http.StatusOK, statusResponse{Success: true, Order: newOrderView(order)})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, withSuccess bool) {
	status, code, message := classify(err)

	entry := h.logger.WithError(err).WithFields(log.Fields{
		"request_id": RequestIDFromContext(r.Context()),
		"code":       code,
	})
	if id := chi.URLParam(r, "id"); id != "" {
		entry = entry.WithField("order_id", id)
	}
	if status >= http.StatusInternalServerError {
		entry.Error("ошибка обработки заказа")
	} else {
		entry.Info("запрос отклонён")
	}

	writeError(w, status, code, message, withSuccess)
}

// reportPublish логирует неудачную публикацию события. Ошибка не влияет на ответ,
// счётчики ведёт сам публикатор.
func (h *Handler) reportPublish(order domain.Order, err error) {
	if err != nil {
		h.logger.WithError(err).WithField("order_id", order.ID).Warn("не удалось опубликовать событие заказа")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

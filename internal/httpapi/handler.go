// Package httpapi реализует JSON API приёма заказов поверх chi.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bakery/internal/catalog"
	"github.com/vladislavdragonenkov/bakery/internal/domain"
	"github.com/vladislavdragonenkov/bakery/internal/metrics"
	"github.com/vladislavdragonenkov/bakery/internal/notify"
)

const maxBodyBytes = 1 << 20

// Notifier уведомляет клиента о созданном заказе. Ошибки внутри не всплывают.
type Notifier interface {
	Dispatch(ctx context.Context, order domain.Order) notify.Result
}

// CakeCatalog отдаёт текущий каталог тортов.
type CakeCatalog interface {
	Cakes() []catalog.Cake
}

// HandlerOptions задаёт необязательные зависимости Handler.
type HandlerOptions struct {
	Logger         *log.Entry
	Metrics        *metrics.OrderMetrics
	Events         domain.EventPublisher
	AllowedOrigins []string
}

// Option настраивает Handler.
type Option func(*HandlerOptions)

func WithLogger(logger *log.Entry) Option {
	return func(o *HandlerOptions) { o.Logger = logger }
}

func WithMetrics(m *metrics.OrderMetrics) Option {
	return func(o *HandlerOptions) { o.Metrics = m }
}

// WithEvents включает публикацию событий заказа.
func WithEvents(events domain.EventPublisher) Option {
	return func(o *HandlerOptions) { o.Events = events }
}

// WithAllowedOrigins задаёт CORS-источники фронтенда. По умолчанию "*".
func WithAllowedOrigins(origins ...string) Option {
	return func(o *HandlerOptions) { o.AllowedOrigins = origins }
}

// Handler обслуживает /api/*.
type Handler struct {
	store    domain.OrderStore
	catalog  CakeCatalog
	notifier Notifier
	events   domain.EventPublisher
	logger   *log.Entry
	metrics  *metrics.OrderMetrics
	origins  []string
}

// NewHandler собирает handler. notifier и catalog могут быть nil.
func NewHandler(store domain.OrderStore, cakes CakeCatalog, notifier Notifier, options ...Option) *Handler {
	opts := HandlerOptions{AllowedOrigins: []string{"*"}}
	for _, apply := range options {
		apply(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = log.WithField("component", "http-api")
	}

	return &Handler{
		store:    store,
		catalog:  cakes,
		notifier: notifier,
		events:   opts.Events,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		origins:  opts.AllowedOrigins,
	}
}

// Routes возвращает роутер API. /api/reserva оставлен как синоним /api/reservar
// для старого фронтенда.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/list", h.listOrders)
		r.Get("/cake", h.listCakes)
		for _, base := range []string{"/reservar", "/reserva"} {
			r.Post(base, h.createOrder)
			r.Put(base+"/{id}", h.updateStatus)
		}
	})
	return r
}

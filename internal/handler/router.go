package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nikolayk812/canteen-order/internal/observability"
	"go.uber.org/zap"
)

const requestTimeout = 30 * time.Second

type RouterDeps struct {
	Orders    OrderLifecycle
	Merchants MerchantOrders
	Stats     Statistics
	DB        Pinger
	Logger    *zap.Logger
}

func NewRouter(deps RouterDeps) (http.Handler, error) {
	if deps.Orders == nil || deps.Merchants == nil || deps.Stats == nil {
		return nil, errors.New("router: order, merchant and statistics services are required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.RequestLogger(logger))
	r.Use(observability.Recoverer(logger, func(w http.ResponseWriter, _ *http.Request) {
		writeFailure(w, http.StatusInternalServerError, "internal server error")
	}))
	r.Use(middleware.Timeout(requestTimeout))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeFailure(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeFailure(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", health(deps.DB, logger))

	r.Route("/orders", func(r chi.Router) {
		r.Route("/merchant", NewMerchantHandlers(deps.Merchants, deps.Stats, logger).Routes)
		r.Route("/admin", NewAdminHandlers(deps.Stats, logger).Routes)
		NewOrderHandlers(deps.Orders, deps.Stats, logger).Routes(r)
	})

	return r, nil
}

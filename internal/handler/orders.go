package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nikolayk812/canteen-order/internal/domain"
	"github.com/nikolayk812/canteen-order/internal/service"
	"go.uber.org/zap"
)

// OrderHandlers serves the customer side of /orders.
type OrderHandlers struct {
	orders OrderLifecycle
	stats  Statistics
	logger *zap.Logger
}

func NewOrderHandlers(orders OrderLifecycle, stats Statistics, logger *zap.Logger) *OrderHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderHandlers{orders: orders, stats: stats, logger: logger}
}

func (h *OrderHandlers) Routes(r chi.Router) {
	r.Post("/", h.createOrder)
	r.Get("/", h.listUserOrders)
	r.Get("/stats/user/{userId}", h.userStats)
	r.Get("/user/{userId}", h.listUserOrders)
	r.Get("/user/{userId}/stats", h.userStats)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.getOrder)
		r.Get("/detail", h.getOrder)
		r.Put("/status", h.updateStatus)
		r.Post("/pay", h.transition(h.orders.PayOrder))
		r.Post("/cancel", h.transition(h.orders.CancelOrder))
		r.Post("/prepare", h.transition(h.orders.PrepareOrder))
		r.Post("/ready", h.transition(h.orders.ReadyOrder))
		r.Post("/complete", h.transition(h.orders.CompleteOrder))
	})
}

func (h *OrderHandlers) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), service.CreateOrderCommand{
		UserID: req.UserID,
		Items:  req.items(),
		Remark: req.Remark,
	})
	if err != nil {
		writeOrderError(w, r, h.logger, err)
		return
	}

	writeOK(w, toOrderPayload(order))
}

func (h *OrderHandlers) listUserOrders(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(chi.URLParam(r, "userId"))
	if userID == "" {
		userID = strings.TrimSpace(r.URL.Query().Get("userId"))
	}
	if userID == "" {
		writeBadRequest(w, "userId is required")
		return
	}

	status, err := queryStatus(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	page, err := queryPage(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	result, err := h.orders.ListUserOrders(r.Context(), userID, status, page)
	if err != nil {
		writeOrderError(w, r, h.logger, err)
		return
	}

	writeOK(w, toPagePayload(result))
}

func (h *OrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathOrderID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	order, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		writeOrderError(w, r, h.logger, err)
		return
	}

	writeOK(w, toOrderPayload(order))
}

func (h *OrderHandlers) updateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathOrderID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	status, err := parseStatus(req.Status)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	order, err := h.orders.UpdateOrderStatus(r.Context(), orderID, status)
	if err != nil {
		writeOrderError(w, r, h.logger, err)
		return
	}

	writeOK(w, toOrderPayload(order))
}

func (h *OrderHandlers) transition(apply func(context.Context, uuid.UUID) (domain.Order, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := pathOrderID(r)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}

		order, err := apply(r.Context(), orderID)
		if err != nil {
			writeOrderError(w, r, h.logger, err)
			return
		}

		writeOK(w, toOrderPayload(order))
	}
}

func (h *OrderHandlers) userStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.UserStats(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeOrderError(w, r, h.logger, err)
		return
	}

	writeOK(w, stats)
}

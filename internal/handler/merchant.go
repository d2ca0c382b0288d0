package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/nikolayk812/canteen-order/internal/service"
	"go.uber.org/zap"
)

const defaultTrendDays = 7

// MerchantHandlers serves /orders/merchant. The {id} segment is an order id for
// order actions and a merchant id for dashboard reads.
type MerchantHandlers struct {
	merchants MerchantOrders
	stats     Statistics
	logger    *zap.Logger
}

func NewMerchantHandlers(merchants MerchantOrders, stats Statistics, logger *zap.Logger) *MerchantHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MerchantHandlers{merchants: merchants, stats: stats, logger: logger}
}

func (h *MerchantHandlers) Routes(r chi.Router) {
	r.Route("/{id}", func(r chi.Router) {
		// {id} is the order
		r.Put("/accept", h.acceptOrder)
		r.Put("/reject", h.rejectOrder)
		r.Put("/status", h.updateStatus)
		r.Get("/detail", h.orderDetail)

		// {id} is the merchant
		r.Get("/pending", h.pendingOrders)
		r.Get("/pending/count", h.pendingCount)
		r.Get("/revenue/today", h.todayRevenue)
		r.Get("/count", h.totalCount)
		r.Get("/trends", h.trends)
		r.Get("/stats", h.orderStats)
		r.Get("/finance", h.finance)
		r.Get("/list", h.listOrders)
	})
}

// actionRequest merges the optional JSON body with the query string.
func actionRequest(r *http.Request) (merchantActionRequest, error) {
	var req merchantActionRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		return req, err
	}

	query := r.URL.Query()
	if raw := query.Get("merchantId"); raw != "" {
		id, err := parseMerchantID(raw)
		if err != nil {
			return req, err
		}
		req.MerchantID = id
	}
	if reason := strings.TrimSpace(query.Get("reason")); reason != "" {
		req.Reason = reason
	}

	return req, nil
}

func (h *MerchantHandlers) acceptOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathOrderID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	req, err := actionRequest(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	order, err := h.merchants.AcceptOrder(r.Context(), orderID, req.MerchantID)
	if err != nil {
		writeOrderError(w, r, h.logger, err)
		return
	}

	writeOK(w, toOrderPayload(order))
}

func (h *MerchantHandlers) rejectOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathOrderID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	req, err := actionRequest(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	order, err := h.merchants.RejectOrder(r.Context(), orderID, req.MerchantID, req.Reason)
	if err != nil {
		writeOrderError(w, r, h.logger, err)
		return
	}

	writeOK(w, toOrderPayload(order))
}

func (h *MerchantHandlers) updateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathOrderID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var req merchantStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	status, err := parseStatus(req.Status)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	order, err := h.merchants.UpdateOrderStatus(r.Context(), orderID, req.MerchantID, status)
	if err != nil {
		writeOrderError(w, r, h.logger, err)
		return
	}

	writeOK(w, toOrderPayload(order))
}

func (h *MerchantHandlers) orderDetail(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathOrderID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	merchantID, err := parseMerchantID(r.URL.Query().Get("merchantId"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	order, err := h.merchants.GetOrderDetail(r.Context(), orderID, merchantID)
	if err != nil {
		writeOrderError(w, r, h.logger, err)
		return
	}

	writeOK(w, toOrderPayload(order))
}

func (h *MerchantHandlers) pendingOrders(w http.ResponseWriter, r *http.Request) {
	merchantID, err := pathMerchantID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	page, err := queryPage(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	result, err := h.merchants.GetPendingOrders(r.Context(), merchantID, page)
	if err != nil {
		writeOrderError(w, r, h.logger, err)
		return
	}

	writeOK(w, toPagePayload(result))
}

func (h *MerchantHandlers) pendingCount(w http.ResponseWriter, r *http.Request) {
	merchantID, err := pathMerchantID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	count, err := h.merchants.GetPendingOrderCount(r.Context(), merchantID)
	if err != nil {
		writeOrderError(w, r, h.logger, err)
		return
	}

	writeOK(w, countPayload{Count: count})
}

func (h *MerchantHandlers) todayRevenue(w http.ResponseWriter, r *http.Request) {
	merchantID, err := pathMerchantID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	revenue, err := h.merchants.GetTodayRevenue(r.Context(), merchantID)
	if err != nil {
		writeOrderError(w, r, h.logger, err)
		return
	}

	writeOK(w, toAmountPayload(revenue))
}

func (h *MerchantHandlers) totalCount(w http.ResponseWriter, r *http.Request) {
	merchantID, err := pathMerchantID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	count, err := h.merchants.GetTotalOrderCount(r.Context(), merchantID)
	if err != nil {
		writeOrderError(w, r, h.logger, err)
		return
	}

	writeOK(w, countPayload{Count: count})
}

func (h *MerchantHandlers) trends(w http.ResponseWriter, r *http.Request) {
	merchantID, err := pathMerchantID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	days, err := queryInt(r, "days", defaultTrendDays)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	trend, err := h.stats.SalesTrend(r.Context(), service.MerchantScope(merchantID), days)
	if err != nil {
		writeOrderError(w, r, h.logger, err)
		return
	}

	writeOK(w, trend)
}

func (h *MerchantHandlers) orderStats(w http.ResponseWriter, r *http.Request) {
	merchantID, err := pathMerchantID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	from, to, err := queryDates(r, h.stats)
	if err != nil {
		writeOrderError(w, r, h.logger, err)
		return
	}

	stats, err := h.stats.MerchantOrderStats(r.Context(), merchantID, from, to)
	if err != nil {
		writeOrderError(w, r, h.logger, err)
		return
	}

	writeOK(w, stats)
}

func (h *MerchantHandlers) finance(w http.ResponseWriter, r *http.Request) {
	merchantID, err := pathMerchantID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	from, to, err := queryDates(r, h.stats)
	if err != nil {
		writeOrderError(w, r, h.logger, err)
		return
	}

	stats, err := h.stats.MerchantFinance(r.Context(), merchantID, from, to)
	if err != nil {
		writeOrderError(w, r, h.logger, err)
		return
	}

	writeOK(w, stats)
}

func (h *MerchantHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	merchantID, err := pathMerchantID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	query, err := listQuery(r, h.stats, service.MerchantScope(merchantID))
	if err != nil {
		writeOrderError(w, r, h.logger, err)
		return
	}

	result, err := h.stats.ListOrders(r.Context(), query)
	if err != nil {
		writeOrderError(w, r, h.logger, err)
		return
	}

	writeOK(w, toPagePayload(result))
}

package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nikolayk812/canteen-order/internal/service"
	"go.uber.org/zap"
)

// AdminHandlers serves the platform-wide dashboard under /orders/admin.
type AdminHandlers struct {
	stats  Statistics
	logger *zap.Logger
}

func NewAdminHandlers(stats Statistics, logger *zap.Logger) *AdminHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandlers{stats: stats, logger: logger}
}

func (h *AdminHandlers) Routes(r chi.Router) {
	r.Get("/list", h.listOrders)
	r.Get("/count", h.totalCount)
	r.Get("/sales/today", h.todaySales)
	r.Get("/sales/total", h.totalSales)
	r.Get("/stats/status", h.statusBreakdown)
	r.Get("/stats/sales", h.salesTrend)
	r.Get("/stats/overview", h.overview)
	r.Get("/stats/summary", h.salesSummary)
}

func (h *AdminHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	query, err := listQuery(r, h.stats, service.PlatformScope())
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

func (h *AdminHandlers) totalCount(w http.ResponseWriter, r *http.Request) {
	writeOK(w, countPayload{Count: h.stats.TotalOrderCount(r.Context(), service.PlatformScope())})
}

func (h *AdminHandlers) todaySales(w http.ResponseWriter, r *http.Request) {
	writeOK(w, toAmountPayload(h.stats.TodaySales(r.Context(), service.PlatformScope())))
}

func (h *AdminHandlers) totalSales(w http.ResponseWriter, r *http.Request) {
	writeOK(w, toAmountPayload(h.stats.TotalSales(r.Context(), service.PlatformScope())))
}

func (h *AdminHandlers) statusBreakdown(w http.ResponseWriter, r *http.Request) {
	writeOK(w, h.stats.StatusBreakdown(r.Context(), service.PlatformScope()))
}

func (h *AdminHandlers) salesTrend(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", defaultTrendDays)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	trend, err := h.stats.SalesTrend(r.Context(), service.PlatformScope(), days)
	if err != nil {
		writeOrderError(w, r, h.logger, err)
		return
	}

	writeOK(w, trend)
}

func (h *AdminHandlers) overview(w http.ResponseWriter, r *http.Request) {
	writeOK(w, h.stats.Overview(r.Context()))
}

func (h *AdminHandlers) salesSummary(w http.ResponseWriter, r *http.Request) {
	from, to, err := queryDates(r, h.stats)
	if err != nil {
		writeOrderError(w, r, h.logger, err)
		return
	}

	summary, err := h.stats.SalesSummary(r.Context(), service.PlatformScope(), from, to)
	if err != nil {
		writeOrderError(w, r, h.logger, err)
		return
	}

	writeOK(w, summary)
}

// listQuery reads page, size, status, startDate and endDate.
func listQuery(r *http.Request, stats Statistics, scope service.StatsScope) (service.ListQuery, error) {
	page, err := queryPage(r)
	if err != nil {
		return service.ListQuery{}, fmt.Errorf("%w: %w", service.ErrOrderInvalidInput, err)
	}

	status, err := queryStatus(r)
	if err != nil {
		return service.ListQuery{}, fmt.Errorf("%w: %w", service.ErrOrderInvalidInput, err)
	}

	from, to, err := queryDates(r, stats)
	if err != nil {
		return service.ListQuery{}, err
	}

	return service.ListQuery{
		Scope:  scope,
		Status: status,
		From:   from,
		To:     to,
		Page:   page,
	}, nil
}

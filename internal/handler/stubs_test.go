package handler_test

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/canteen-order/internal/domain"
	"github.com/nikolayk812/canteen-order/internal/service"
	"github.com/shopspring/decimal"
)

type stubOrders struct {
	order domain.Order
	page  domain.Page[domain.Order]
	err   error

	calls      []string
	lastCmd    service.CreateOrderCommand
	lastID     uuid.UUID
	lastStatus domain.OrderStatus
	lastUserID string
	lastPage   domain.PageRequest
}

func (s *stubOrders) record(name string, id uuid.UUID) (domain.Order, error) {
	s.calls = append(s.calls, name)
	s.lastID = id
	return s.order, s.err
}

func (s *stubOrders) CreateOrder(_ context.Context, cmd service.CreateOrderCommand) (domain.Order, error) {
	s.lastCmd = cmd
	return s.record("CreateOrder", uuid.Nil)
}

func (s *stubOrders) GetOrder(_ context.Context, id uuid.UUID) (domain.Order, error) {
	return s.record("GetOrder", id)
}

func (s *stubOrders) ListUserOrders(_ context.Context, userID string, status domain.OrderStatus, page domain.PageRequest) (domain.Page[domain.Order], error) {
	s.calls = append(s.calls, "ListUserOrders")
	s.lastUserID, s.lastStatus, s.lastPage = userID, status, page
	return s.page, s.err
}

func (s *stubOrders) UpdateOrderStatus(_ context.Context, id uuid.UUID, status domain.OrderStatus) (domain.Order, error) {
	s.lastStatus = status
	return s.record("UpdateOrderStatus", id)
}

func (s *stubOrders) PayOrder(_ context.Context, id uuid.UUID) (domain.Order, error) {
	return s.record("PayOrder", id)
}

func (s *stubOrders) CancelOrder(_ context.Context, id uuid.UUID) (domain.Order, error) {
	return s.record("CancelOrder", id)
}

func (s *stubOrders) PrepareOrder(_ context.Context, id uuid.UUID) (domain.Order, error) {
	return s.record("PrepareOrder", id)
}

func (s *stubOrders) ReadyOrder(_ context.Context, id uuid.UUID) (domain.Order, error) {
	return s.record("ReadyOrder", id)
}

func (s *stubOrders) CompleteOrder(_ context.Context, id uuid.UUID) (domain.Order, error) {
	return s.record("CompleteOrder", id)
}

type stubMerchants struct {
	order   domain.Order
	page    domain.Page[domain.Order]
	count   int64
	revenue decimal.Decimal
	err     error

	calls          []string
	lastOrderID    uuid.UUID
	lastMerchantID int64
	lastReason     string
	lastStatus     domain.OrderStatus
}

func (s *stubMerchants) record(name string, orderID uuid.UUID, merchantID int64) {
	s.calls = append(s.calls, name)
	s.lastOrderID, s.lastMerchantID = orderID, merchantID
}

func (s *stubMerchants) AcceptOrder(_ context.Context, orderID uuid.UUID, merchantID int64) (domain.Order, error) {
	s.record("AcceptOrder", orderID, merchantID)
	return s.order, s.err
}

func (s *stubMerchants) RejectOrder(_ context.Context, orderID uuid.UUID, merchantID int64, reason string) (domain.Order, error) {
	s.record("RejectOrder", orderID, merchantID)
	s.lastReason = reason
	return s.order, s.err
}

func (s *stubMerchants) UpdateOrderStatus(_ context.Context, orderID uuid.UUID, merchantID int64, status domain.OrderStatus) (domain.Order, error) {
	s.record("UpdateOrderStatus", orderID, merchantID)
	s.lastStatus = status
	return s.order, s.err
}

func (s *stubMerchants) GetOrderDetail(_ context.Context, orderID uuid.UUID, merchantID int64) (domain.Order, error) {
	s.record("GetOrderDetail", orderID, merchantID)
	return s.order, s.err
}

func (s *stubMerchants) GetPendingOrders(_ context.Context, merchantID int64, _ domain.PageRequest) (domain.Page[domain.Order], error) {
	s.record("GetPendingOrders", uuid.Nil, merchantID)
	return s.page, s.err
}

func (s *stubMerchants) GetPendingOrderCount(_ context.Context, merchantID int64) (int64, error) {
	s.record("GetPendingOrderCount", uuid.Nil, merchantID)
	return s.count, s.err
}

func (s *stubMerchants) GetTodayRevenue(_ context.Context, merchantID int64) (decimal.Decimal, error) {
	s.record("GetTodayRevenue", uuid.Nil, merchantID)
	return s.revenue, s.err
}

func (s *stubMerchants) GetTotalOrderCount(_ context.Context, merchantID int64) (int64, error) {
	s.record("GetTotalOrderCount", uuid.Nil, merchantID)
	return s.count, s.err
}

type stubStats struct {
	err error

	lastScope service.StatsScope
	lastDays  int
	lastFrom  *time.Time
	lastTo    *time.Time
	lastQuery service.ListQuery
}

func (s *stubStats) ParseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", service.ErrOrderInvalidInput, v)
	}
	return t, nil
}

func (s *stubStats) StatusBreakdown(_ context.Context, scope service.StatsScope) []domain.StatusCount {
	s.lastScope = scope
	return []domain.StatusCount{{Status: domain.OrderStatusPending, Label: "awaiting payment", Count: 2}}
}

func (s *stubStats) SalesTrend(_ context.Context, scope service.StatsScope, days int) ([]domain.DailySales, error) {
	s.lastScope, s.lastDays = scope, days
	if s.err != nil {
		return nil, s.err
	}
	return []domain.DailySales{{Date: "2026-10-15", OrderCount: 1, Revenue: decimal.RequireFromString("9.90")}}, nil
}

func (s *stubStats) UserStats(_ context.Context, userID string) (domain.UserOrderStats, error) {
	return domain.UserOrderStats{UserID: userID, TotalOrders: 3, PaidOrders: 2, TotalSpent: decimal.RequireFromString("20.5")}, s.err
}

func (s *stubStats) TotalOrderCount(_ context.Context, scope service.StatsScope) int64 {
	s.lastScope = scope
	return 12
}

func (s *stubStats) TodaySales(_ context.Context, scope service.StatsScope) decimal.Decimal {
	s.lastScope = scope
	return decimal.RequireFromString("42")
}

func (s *stubStats) TotalSales(_ context.Context, scope service.StatsScope) decimal.Decimal {
	s.lastScope = scope
	return decimal.RequireFromString("1234.5")
}

func (s *stubStats) Overview(context.Context) domain.AdminOverview {
	return domain.AdminOverview{TotalOrders: 5, TodayOrders: 1}
}

func (s *stubStats) SalesSummary(_ context.Context, scope service.StatsScope, from, to *time.Time) (domain.SalesSummary, error) {
	s.lastScope, s.lastFrom, s.lastTo = scope, from, to
	return domain.SalesSummary{StartDate: "2026-10-01", EndDate: "2026-10-15", TotalAmount: decimal.Zero}, s.err
}

func (s *stubStats) MerchantOrderStats(_ context.Context, merchantID int64, from, to *time.Time) (domain.MerchantOrderStats, error) {
	s.lastScope, s.lastFrom, s.lastTo = service.MerchantScope(merchantID), from, to
	return domain.MerchantOrderStats{TotalOrders: 4}, s.err
}

func (s *stubStats) MerchantFinance(_ context.Context, merchantID int64, from, to *time.Time) (domain.MerchantFinanceStats, error) {
	s.lastScope, s.lastFrom, s.lastTo = service.MerchantScope(merchantID), from, to
	return domain.MerchantFinanceStats{TotalRevenue: decimal.RequireFromString("100")}, s.err
}

func (s *stubStats) ListOrders(_ context.Context, query service.ListQuery) (domain.Page[domain.Order], error) {
	s.lastQuery = query
	return domain.NewPage[domain.Order](nil, 0, domain.PageRequest{Page: query.Page.Page, Size: query.Page.Size}), s.err
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

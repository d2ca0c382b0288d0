package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/canteen-order/internal/domain"
	"github.com/nikolayk812/canteen-order/internal/service"
	"github.com/shopspring/decimal"
)

// OrderLifecycle is implemented by *service.OrderService.
type OrderLifecycle interface {
	CreateOrder(ctx context.Context, cmd service.CreateOrderCommand) (domain.Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
	ListUserOrders(ctx context.Context, userID string, status domain.OrderStatus, page domain.PageRequest) (domain.Page[domain.Order], error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (domain.Order, error)
	PayOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
	CancelOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
	PrepareOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
	ReadyOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
	CompleteOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
}

// MerchantOrders is implemented by *service.MerchantService.
type MerchantOrders interface {
	AcceptOrder(ctx context.Context, orderID uuid.UUID, merchantID int64) (domain.Order, error)
	RejectOrder(ctx context.Context, orderID uuid.UUID, merchantID int64, reason string) (domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, merchantID int64, status domain.OrderStatus) (domain.Order, error)
	GetOrderDetail(ctx context.Context, orderID uuid.UUID, merchantID int64) (domain.Order, error)
	GetPendingOrders(ctx context.Context, merchantID int64, page domain.PageRequest) (domain.Page[domain.Order], error)
	GetPendingOrderCount(ctx context.Context, merchantID int64) (int64, error)
	GetTodayRevenue(ctx context.Context, merchantID int64) (decimal.Decimal, error)
	GetTotalOrderCount(ctx context.Context, merchantID int64) (int64, error)
}

// Statistics is implemented by *service.StatisticsEngine.
type Statistics interface {
	ParseDate(s string) (time.Time, error)
	StatusBreakdown(ctx context.Context, scope service.StatsScope) []domain.StatusCount
	SalesTrend(ctx context.Context, scope service.StatsScope, days int) ([]domain.DailySales, error)
	UserStats(ctx context.Context, userID string) (domain.UserOrderStats, error)
	TotalOrderCount(ctx context.Context, scope service.StatsScope) int64
	TodaySales(ctx context.Context, scope service.StatsScope) decimal.Decimal
	TotalSales(ctx context.Context, scope service.StatsScope) decimal.Decimal
	Overview(ctx context.Context) domain.AdminOverview
	SalesSummary(ctx context.Context, scope service.StatsScope, from, to *time.Time) (domain.SalesSummary, error)
	MerchantOrderStats(ctx context.Context, merchantID int64, from, to *time.Time) (domain.MerchantOrderStats, error)
	MerchantFinance(ctx context.Context, merchantID int64, from, to *time.Time) (domain.MerchantFinanceStats, error)
	ListOrders(ctx context.Context, query service.ListQuery) (domain.Page[domain.Order], error)
}

var (
	_ OrderLifecycle = (*service.OrderService)(nil)
	_ MerchantOrders = (*service.MerchantService)(nil)
	_ Statistics     = (*service.StatisticsEngine)(nil)
)

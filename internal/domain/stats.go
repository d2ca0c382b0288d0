package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderFact is the slice of an order that aggregation needs.
type OrderFact struct {
	ID        uuid.UUID
	Status    OrderStatus
	Total     decimal.Decimal
	CreatedAt time.Time
}

type StatusCount struct {
	Status OrderStatus `json:"status"`
	Label  string      `json:"label"`
	Count  int64       `json:"count"`
}

type DailySales struct {
	Date       string          `json:"date"`
	OrderCount int64           `json:"orderCount"`
	Revenue    decimal.Decimal `json:"revenue"`
}

type MonthlySales struct {
	Month      string          `json:"month"`
	OrderCount int64           `json:"orderCount"`
	Revenue    decimal.Decimal `json:"revenue"`
}

type UserOrderStats struct {
	UserID      string          `json:"userId"`
	TotalOrders int64           `json:"totalOrders"`
	PaidOrders  int64           `json:"paidOrders"`
	TotalSpent  decimal.Decimal `json:"totalSpent"`
}

type SalesSummary struct {
	StartDate       string          `json:"startDate"`
	EndDate         string          `json:"endDate"`
	TotalOrderCount int64           `json:"totalOrderCount"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Daily           []DailySales    `json:"dailyStats"`
}

type AdminOverview struct {
	TotalOrders int64         `json:"totalOrders"`
	TodayOrders int64         `json:"todayOrders"`
	ByStatus    []StatusCount `json:"byStatus"`
}

type MerchantOrderStats struct {
	TotalOrders     int64        `json:"totalOrders"`
	PendingOrders   int64        `json:"pendingOrders"`
	CompletedOrders int64        `json:"completedOrders"`
	CancelledOrders int64        `json:"cancelledOrders"`
	Daily           []DailySales `json:"dailyStats"`
}

type MerchantFinanceStats struct {
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	TodayRevenue   decimal.Decimal `json:"todayRevenue"`
	AvgOrderAmount decimal.Decimal `json:"avgOrderAmount"`
	Monthly        []MonthlySales  `json:"monthlyRevenues"`
}

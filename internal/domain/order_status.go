package domain

import (
	"errors"
	"slices"
	"strings"
)

type OrderStatus string

// remember to add new statuses to orderStatuses and orderTransitions
const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusPreparing OrderStatus = "PREPARING"
	OrderStatusReady     OrderStatus = "READY"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

var ErrInvalidOrderStatus = errors.New("invalid order status")

// orderStatuses is ordered by lifecycle so breakdowns render in a stable order.
var orderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// orderTransitions is the only place the lifecycle graph is defined.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:      {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing: {OrderStatusReady, OrderStatusCancelled},
	OrderStatusReady:     {OrderStatusCompleted},
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
}

var revenueStatuses = []OrderStatus{
	OrderStatusPaid,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusCompleted,
}

var orderStatusLabels = map[OrderStatus]string{
	OrderStatusPending:   "awaiting payment",
	OrderStatusPaid:      "paid",
	OrderStatusPreparing: "preparing",
	OrderStatusReady:     "ready for pickup",
	OrderStatusCompleted: "completed",
	OrderStatusCancelled: "cancelled",
}

func ToOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	if status.Valid() {
		return status, nil
	}

	return "", ErrInvalidOrderStatus
}

// OrderStatuses returns every known status in lifecycle order.
func OrderStatuses() []OrderStatus {
	return slices.Clone(orderStatuses)
}

// RevenueStatuses returns the statuses whose orders count toward sales totals.
func RevenueStatuses() []OrderStatus {
	return slices.Clone(revenueStatuses)
}

func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo reports whether next is an allowed edge from s.
// A status never transitions to itself.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return slices.Contains(orderTransitions[s], next)
}

func (s OrderStatus) IsTerminal() bool {
	return s.Valid() && len(orderTransitions[s]) == 0
}

func (s OrderStatus) CountsTowardRevenue() bool {
	return slices.Contains(revenueStatuses, s)
}

func (s OrderStatus) Label() string {
	if label, ok := orderStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

func (s OrderStatus) String() string {
	return string(s)
}

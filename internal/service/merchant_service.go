package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/nikolayk812/canteen-order/internal/domain"
	"github.com/nikolayk812/canteen-order/internal/port"
	"github.com/shopspring/decimal"
)

// MerchantService is the merchant view of orders. A merchant sees an order
// only when at least one of its items belongs to that merchant.
type MerchantService struct {
	lifecycle *OrderService
	stats     *StatisticsEngine
	orders    port.OrderRepository
}

type MerchantServiceDeps struct {
	Lifecycle *OrderService
	Stats     *StatisticsEngine
	Orders    port.OrderRepository
}

func NewMerchantService(deps MerchantServiceDeps) (*MerchantService, error) {
	if deps.Lifecycle == nil {
		return nil, errors.New("merchant service: order service is required")
	}
	if deps.Stats == nil {
		return nil, errors.New("merchant service: statistics engine is required")
	}
	if deps.Orders == nil {
		return nil, errors.New("merchant service: order repository is required")
	}

	return &MerchantService{
		lifecycle: deps.Lifecycle,
		stats:     deps.Stats,
		orders:    deps.Orders,
	}, nil
}

// AcceptOrder starts preparing a PAID order.
func (s *MerchantService) AcceptOrder(ctx context.Context, orderID uuid.UUID, merchantID int64) (domain.Order, error) {
	if err := validateMerchantID(merchantID); err != nil {
		return domain.Order{}, err
	}

	return s.lifecycle.transition(ctx, transitionRequest{
		orderID:       orderID,
		target:        domain.OrderStatusPreparing,
		merchantID:    &merchantID,
		requireStatus: domain.OrderStatusPaid,
		actorID:       merchantActor(merchantID),
	})
}

// RejectOrder cancels a PAID order and appends the reason to the remark.
func (s *MerchantService) RejectOrder(ctx context.Context, orderID uuid.UUID, merchantID int64, reason string) (domain.Order, error) {
	if err := validateMerchantID(merchantID); err != nil {
		return domain.Order{}, err
	}

	reason = strings.TrimSpace(reason)
	note := "[rejected by merchant]"
	if reason != "" {
		note = fmt.Sprintf("[rejected by merchant: %s]", reason)
	}

	return s.lifecycle.transition(ctx, transitionRequest{
		orderID:       orderID,
		target:        domain.OrderStatusCancelled,
		merchantID:    &merchantID,
		requireStatus: domain.OrderStatusPaid,
		note:          note,
		actorID:       merchantActor(merchantID),
		reason:        reason,
	})
}

// UpdateOrderStatus applies the same transition table as every other path.
func (s *MerchantService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, merchantID int64, status domain.OrderStatus) (domain.Order, error) {
	if err := validateMerchantID(merchantID); err != nil {
		return domain.Order{}, err
	}

	return s.lifecycle.transition(ctx, transitionRequest{
		orderID:    orderID,
		target:     status,
		merchantID: &merchantID,
		actorID:    merchantActor(merchantID),
	})
}

func (s *MerchantService) GetOrderDetail(ctx context.Context, orderID uuid.UUID, merchantID int64) (domain.Order, error) {
	if err := validateMerchantID(merchantID); err != nil {
		return domain.Order{}, err
	}

	order, err := s.lifecycle.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if !order.OwnedBy(merchantID) {
		return domain.Order{}, fmt.Errorf("%w: order %s has no items of merchant %d", ErrOrderNotFound, orderID, merchantID)
	}

	return order, nil
}

// GetPendingOrders lists distinct PENDING or PAID orders of the merchant, newest first.
func (s *MerchantService) GetPendingOrders(ctx context.Context, merchantID int64, page domain.PageRequest) (domain.Page[domain.Order], error) {
	if err := validateMerchantID(merchantID); err != nil {
		return domain.Page[domain.Order]{}, err
	}

	page = page.Normalize(s.lifecycle.maxPageSize)

	filter := domain.OrderFilter{
		MerchantID: &merchantID,
		Statuses:   []domain.OrderStatus{domain.OrderStatusPending, domain.OrderStatusPaid},
	}

	result, err := s.orders.SearchOrders(ctx, filter, page)
	if err != nil {
		return domain.Page[domain.Order]{}, mapRepositoryError(err)
	}

	return result, nil
}

func (s *MerchantService) GetPendingOrderCount(ctx context.Context, merchantID int64) (int64, error) {
	if err := validateMerchantID(merchantID); err != nil {
		return 0, err
	}
	return s.stats.PendingOrderCount(ctx, MerchantScope(merchantID)), nil
}

func (s *MerchantService) GetTodayRevenue(ctx context.Context, merchantID int64) (decimal.Decimal, error) {
	if err := validateMerchantID(merchantID); err != nil {
		return decimal.Zero, err
	}
	return s.stats.TodaySales(ctx, MerchantScope(merchantID)), nil
}

func (s *MerchantService) GetTotalOrderCount(ctx context.Context, merchantID int64) (int64, error) {
	if err := validateMerchantID(merchantID); err != nil {
		return 0, err
	}
	return s.stats.TotalOrderCount(ctx, MerchantScope(merchantID)), nil
}

func validateMerchantID(merchantID int64) error {
	if merchantID <= 0 {
		return fmt.Errorf("%w: merchant id must be positive", ErrOrderInvalidInput)
	}
	return nil
}

func merchantActor(merchantID int64) string {
	return fmt.Sprintf("merchant:%d", merchantID)
}

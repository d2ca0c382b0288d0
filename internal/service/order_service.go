package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/canteen-order/internal/domain"
	"github.com/nikolayk812/canteen-order/internal/port"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
)

// OrderServiceDeps bundles collaborators required to construct the order service.
type OrderServiceDeps struct {
	Orders port.OrderRepository
	// Catalog resolves merchant ownership of products. When nil the merchant id
	// supplied with each item is stored as is.
	Catalog     port.ProductCatalog
	Events      port.OrderEventPublisher
	Clock       func() time.Time
	OrderNumber func(time.Time) string
	Currency    currency.Unit
	MaxPageSize int
	Logger      *zap.Logger
}

type OrderService struct {
	orders      port.OrderRepository
	catalog     port.ProductCatalog
	events      port.OrderEventPublisher
	clock       func() time.Time
	orderNumber func(time.Time) string
	currency    currency.Unit
	maxPageSize int
	logger      *zap.Logger
}

type CreateOrderCommand struct {
	UserID string
	Items  []domain.NewOrderItem
	Remark string
}

// NewOrderService wires dependencies into an OrderService.
func NewOrderService(deps OrderServiceDeps) (*OrderService, error) {
	if deps.Orders == nil {
		return nil, errors.New("order service: order repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	orderNumber := deps.OrderNumber
	if orderNumber == nil {
		orderNumber = NewOrderNumberGenerator(defaultOrderNumberPrefix)
	}

	unit := deps.Currency
	if unit == (currency.Unit{}) {
		unit = domain.DefaultCurrency
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OrderService{
		orders:      deps.Orders,
		catalog:     deps.Catalog,
		events:      deps.Events,
		clock:       clock,
		orderNumber: orderNumber,
		currency:    unit,
		maxPageSize: lo.Ternary(deps.MaxPageSize > 0, deps.MaxPageSize, domain.MaxPageSize),
		logger:      logger,
	}, nil
}

// CreateOrder validates the items, prices them exactly and stores the order
// with all its items atomically. The new order is always PENDING.
func (s *OrderService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (domain.Order, error) {
	if len(cmd.Items) == 0 {
		return domain.Order{}, fmt.Errorf("%w: %w", ErrOrderInvalidInput, domain.ErrNoItems)
	}

	items, err := s.resolveMerchants(ctx, cmd.Items)
	if err != nil {
		return domain.Order{}, err
	}

	now := s.now()

	order, err := domain.NewOrder(cmd.UserID, items, cmd.Remark, s.currency, now)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: %w", ErrOrderInvalidInput, err)
	}

	// a duplicate number is practically impossible with ULIDs, one retry covers it
	var orderID uuid.UUID
	for attempt := 0; attempt < 2; attempt++ {
		order.Number = s.orderNumber(now)

		orderID, err = s.orders.InsertOrder(ctx, order)
		if !errors.Is(err, port.ErrDuplicateOrderNumber) {
			break
		}
		s.logger.Warn("order number collision", zap.String("order_number", order.Number))
	}
	if err != nil {
		return domain.Order{}, mapRepositoryError(err)
	}

	order.ID = orderID
	order.Version = 1

	s.publishEvent(ctx, domain.OrderEvent{
		Type:          domain.OrderEventCreated,
		OrderID:       order.ID,
		OrderNumber:   order.Number,
		CurrentStatus: order.Status,
		ActorID:       order.UserID,
		OccurredAt:    now,
		Metadata: map[string]string{
			"totalAmount": order.Total.StringFixed(),
			"currency":    order.Total.Currency.String(),
		},
	})

	s.logger.Info("order created",
		zap.Stringer("order_id", order.ID),
		zap.String("order_number", order.Number),
		zap.String("user_id", order.UserID),
		zap.Stringer("total", order.Total),
	)

	return order, nil
}

func (s *OrderService) resolveMerchants(ctx context.Context, items []domain.NewOrderItem) ([]domain.NewOrderItem, error) {
	if s.catalog == nil {
		return items, nil
	}

	productIDs := lo.Map(items, func(item domain.NewOrderItem, _ int) int64 { return item.ProductID })

	merchants, err := s.catalog.MerchantsOf(ctx, productIDs)
	if err != nil {
		if errors.Is(err, port.ErrProductNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrOrderInvalidInput, err)
		}
		return nil, fmt.Errorf("order: catalog unavailable: %w", err)
	}

	return lo.Map(items, func(item domain.NewOrderItem, _ int) domain.NewOrderItem {
		item.MerchantID = merchants[item.ProductID]
		return item
	}), nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	if orderID == uuid.Nil {
		return domain.Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, mapRepositoryError(err)
	}

	return order, nil
}

// ListUserOrders pages through one user's orders, newest first. An empty
// status lists every status.
func (s *OrderService) ListUserOrders(ctx context.Context, userID string, status domain.OrderStatus, page domain.PageRequest) (domain.Page[domain.Order], error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.Page[domain.Order]{}, fmt.Errorf("%w: %w", ErrOrderInvalidInput, domain.ErrEmptyUserID)
	}

	filter := domain.OrderFilter{UserIDs: []string{userID}}
	if status != "" {
		if !status.Valid() {
			return domain.Page[domain.Order]{}, fmt.Errorf("%w: %w: %q", ErrOrderInvalidInput, domain.ErrInvalidOrderStatus, status)
		}
		filter.Statuses = []domain.OrderStatus{status}
	}

	result, err := s.orders.SearchOrders(ctx, filter, page.Normalize(s.maxPageSize))
	if err != nil {
		return domain.Page[domain.Order]{}, mapRepositoryError(err)
	}

	return result, nil
}

// UpdateOrderStatus moves the order along any edge of the transition table.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (domain.Order, error) {
	return s.transition(ctx, transitionRequest{orderID: orderID, target: status})
}

func (s *OrderService) PayOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	return s.transition(ctx, transitionRequest{orderID: orderID, target: domain.OrderStatusPaid})
}

func (s *OrderService) CancelOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	return s.transition(ctx, transitionRequest{orderID: orderID, target: domain.OrderStatusCancelled})
}

func (s *OrderService) PrepareOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	return s.transition(ctx, transitionRequest{orderID: orderID, target: domain.OrderStatusPreparing})
}

func (s *OrderService) ReadyOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	return s.transition(ctx, transitionRequest{orderID: orderID, target: domain.OrderStatusReady})
}

// CompleteOrder confirms pickup of a READY order.
func (s *OrderService) CompleteOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	return s.transition(ctx, transitionRequest{orderID: orderID, target: domain.OrderStatusCompleted})
}

type transitionRequest struct {
	orderID uuid.UUID
	target  domain.OrderStatus

	// merchantID scopes the order to one merchant; others see it as not found.
	merchantID *int64
	// requireStatus narrows the table to a single source status.
	requireStatus domain.OrderStatus
	note          string
	actorID       string
	reason        string
}

// transition is the only write path for status changes. It reads the order,
// applies the transition table and writes back only if nobody else has
// written since the read.
func (s *OrderService) transition(ctx context.Context, req transitionRequest) (domain.Order, error) {
	if req.orderID == uuid.Nil {
		return domain.Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	if !req.target.Valid() {
		return domain.Order{}, fmt.Errorf("%w: %w: %q", ErrOrderInvalidInput, domain.ErrInvalidOrderStatus, req.target)
	}

	order, err := s.orders.GetOrder(ctx, req.orderID)
	if err != nil {
		return domain.Order{}, mapRepositoryError(err)
	}

	if req.merchantID != nil && !order.OwnedBy(*req.merchantID) {
		return domain.Order{}, fmt.Errorf("%w: order %s has no items of merchant %d", ErrOrderNotFound, order.ID, *req.merchantID)
	}

	if req.requireStatus != "" && order.Status != req.requireStatus {
		return domain.Order{}, fmt.Errorf("%w: order is %s, want %s", ErrOrderInvalidState, order.Status, req.requireStatus)
	}

	prevStatus := order.Status
	now := s.now()

	if err := order.TransitionTo(req.target, now); err != nil {
		return domain.Order{}, fmt.Errorf("%w: %w", ErrOrderInvalidState, err)
	}
	order.AppendRemark(req.note)

	version, err := s.orders.UpdateOrderState(ctx, port.OrderStateUpdate{
		ID:              order.ID,
		ExpectedVersion: order.Version,
		Status:          order.Status,
		Remark:          order.Remark,
		UpdatedAt:       order.UpdatedAt,
	})
	if err != nil {
		return domain.Order{}, mapRepositoryError(err)
	}
	order.Version = version

	metadata := map[string]string{}
	if req.merchantID != nil {
		metadata["merchantId"] = fmt.Sprint(*req.merchantID)
	}
	if reason := strings.TrimSpace(req.reason); reason != "" {
		metadata["reason"] = reason
	}

	s.publishEvent(ctx, domain.OrderEvent{
		Type:           domain.OrderEventStatusChanged,
		OrderID:        order.ID,
		OrderNumber:    order.Number,
		PreviousStatus: prevStatus,
		CurrentStatus:  order.Status,
		ActorID:        req.actorID,
		OccurredAt:     now,
		Metadata:       metadata,
	})

	s.logger.Info("order status changed",
		zap.Stringer("order_id", order.ID),
		zap.Stringer("from", prevStatus),
		zap.Stringer("to", order.Status),
		zap.Int64("version", order.Version),
	)

	return order, nil
}

func (s *OrderService) now() time.Time {
	return s.clock().UTC()
}

func (s *OrderService) publishEvent(ctx context.Context, event domain.OrderEvent) {
	if s.events == nil {
		return
	}
	if event.Metadata != nil {
		event.Metadata = maps.Clone(event.Metadata)
	}
	if err := s.events.PublishOrderEvent(ctx, event); err != nil {
		s.logger.Error("order event publish failed",
			zap.String("type", event.Type),
			zap.Stringer("order_id", event.OrderID),
			zap.Stringer("status", event.CurrentStatus),
			zap.Error(err),
		)
	}
}

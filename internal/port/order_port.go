package port

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/canteen-order/internal/domain"
)

//go:generate mockgen -destination=mocks/order_port_mock.go -package=mocks github.com/nikolayk812/canteen-order/internal/port OrderEventPublisher,ProductCatalog

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrVersionConflict      = errors.New("order version conflict")
	ErrDuplicateOrderNumber = errors.New("duplicate order number")
	ErrProductNotFound      = errors.New("product not found")
	ErrStatsCacheMiss       = errors.New("stats cache miss")
	ErrEventPublisherClosed = errors.New("event publisher closed")
)

// OrderStateUpdate is a compare-and-set on the order version.
type OrderStateUpdate struct {
	ID              uuid.UUID
	ExpectedVersion int64
	Status          domain.OrderStatus
	Remark          string
	UpdatedAt       time.Time
}

type OrderRepository interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
	GetOrderByNumber(ctx context.Context, number string) (domain.Order, error)

	InsertOrder(ctx context.Context, order domain.Order) (uuid.UUID, error)

	// UpdateOrderState returns the new version, ErrVersionConflict if the stored
	// version moved on, or ErrOrderNotFound if the order does not exist.
	UpdateOrderState(ctx context.Context, update OrderStateUpdate) (int64, error)

	SearchOrders(ctx context.Context, filter domain.OrderFilter, page domain.PageRequest) (domain.Page[domain.Order], error)
	CountOrders(ctx context.Context, filter domain.OrderFilter) (int64, error)
	ScanOrderFacts(ctx context.Context, filter domain.OrderFilter) ([]domain.OrderFact, error)
}

// ProductCatalog resolves product ownership; the catalog itself is owned elsewhere.
type ProductCatalog interface {
	MerchantsOf(ctx context.Context, productIDs []int64) (map[int64]int64, error)
}

type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error
}

// StatsCache stores JSON-encodable aggregates for a short time.
type StatsCache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

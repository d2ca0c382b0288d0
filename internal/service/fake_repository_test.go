package service_test

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/canteen-order/internal/domain"
	"github.com/nikolayk812/canteen-order/internal/port"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var errStoreDown = errors.New("connection refused")

// fakeOrderRepository keeps orders in memory with the same version
// compare-and-set semantics as the Postgres repository.
type fakeOrderRepository struct {
	mu     sync.Mutex
	orders map[uuid.UUID]domain.Order

	// failWith is returned by every call when set.
	failWith error
	// duplicates makes the next n inserts fail with a duplicate order number.
	duplicates int
	// beforeUpdate runs after the caller has read the order and before the write.
	beforeUpdate func()

	inserted []string
	scans    int
}

func newFakeOrderRepository() *fakeOrderRepository {
	return &fakeOrderRepository{orders: make(map[uuid.UUID]domain.Order)}
}

func (r *fakeOrderRepository) GetOrder(_ context.Context, orderID uuid.UUID) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failWith != nil {
		return domain.Order{}, r.failWith
	}

	order, ok := r.orders[orderID]
	if !ok {
		return domain.Order{}, port.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

func (r *fakeOrderRepository) GetOrderByNumber(_ context.Context, number string) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failWith != nil {
		return domain.Order{}, r.failWith
	}

	for _, order := range r.orders {
		if order.Number == number {
			return cloneOrder(order), nil
		}
	}
	return domain.Order{}, port.ErrOrderNotFound
}

func (r *fakeOrderRepository) InsertOrder(_ context.Context, order domain.Order) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failWith != nil {
		return uuid.Nil, r.failWith
	}
	if len(order.Items) == 0 {
		return uuid.Nil, domain.ErrNoItems
	}

	r.inserted = append(r.inserted, order.Number)

	if r.duplicates > 0 {
		r.duplicates--
		return uuid.Nil, port.ErrDuplicateOrderNumber
	}

	order = cloneOrder(order)
	order.ID = uuid.New()
	order.Version = 1
	r.orders[order.ID] = order

	return order.ID, nil
}

func (r *fakeOrderRepository) UpdateOrderState(_ context.Context, update port.OrderStateUpdate) (int64, error) {
	if r.beforeUpdate != nil {
		r.beforeUpdate()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failWith != nil {
		return 0, r.failWith
	}

	order, ok := r.orders[update.ID]
	if !ok {
		return 0, port.ErrOrderNotFound
	}
	if order.Version != update.ExpectedVersion {
		return 0, port.ErrVersionConflict
	}

	order.Status = update.Status
	order.Remark = update.Remark
	order.UpdatedAt = update.UpdatedAt
	order.Version++
	r.orders[update.ID] = order

	return order.Version, nil
}

func (r *fakeOrderRepository) SearchOrders(_ context.Context, filter domain.OrderFilter, page domain.PageRequest) (domain.Page[domain.Order], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failWith != nil {
		return domain.Page[domain.Order]{}, r.failWith
	}

	matched := r.match(filter)
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := min(page.Offset(), len(matched))
	end := min(start+page.Size, len(matched))

	return domain.NewPage(matched[start:end], total, page), nil
}

func (r *fakeOrderRepository) CountOrders(_ context.Context, filter domain.OrderFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failWith != nil {
		return 0, r.failWith
	}

	return int64(len(r.match(filter))), nil
}

func (r *fakeOrderRepository) ScanOrderFacts(_ context.Context, filter domain.OrderFilter) ([]domain.OrderFact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.scans++

	if r.failWith != nil {
		return nil, r.failWith
	}

	matched := r.match(filter)
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	return lo.Map(matched, func(o domain.Order, _ int) domain.OrderFact {
		return domain.OrderFact{ID: o.ID, Status: o.Status, Total: o.Total.Amount, CreatedAt: o.CreatedAt}
	}), nil
}

func (r *fakeOrderRepository) match(filter domain.OrderFilter) []domain.Order {
	var result []domain.Order

	for _, order := range r.orders {
		if len(filter.IDs) > 0 && !slices.Contains(filter.IDs, order.ID) {
			continue
		}
		if len(filter.UserIDs) > 0 && !slices.Contains(filter.UserIDs, order.UserID) {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, order.Status) {
			continue
		}
		if filter.MerchantID != nil && !order.OwnedBy(*filter.MerchantID) {
			continue
		}
		if filter.CreatedAt != nil && !filter.CreatedAt.Contains(order.CreatedAt) {
			continue
		}
		result = append(result, cloneOrder(order))
	}

	return result
}

// seed stores an order as is, bypassing the lifecycle. Each merchant id adds
// one item; the items share the total evenly.
func (r *fakeOrderRepository) seed(userID string, status domain.OrderStatus, total string, createdAt time.Time, merchantIDs ...int64) domain.Order {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(merchantIDs) == 0 {
		merchantIDs = []int64{1}
	}

	amount := decimal.RequireFromString(total)
	share := amount.Div(decimal.NewFromInt(int64(len(merchantIDs))))

	order := domain.Order{
		ID:        uuid.New(),
		Number:    "CT" + uuid.NewString(),
		UserID:    userID,
		Total:     domain.NewMoney(amount, domain.DefaultCurrency),
		Status:    status,
		Version:   1,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	for i, merchantID := range merchantIDs {
		order.Items = append(order.Items, domain.OrderItem{
			ID:          int64(i + 1),
			ProductID:   int64(100 + i),
			MerchantID:  merchantID,
			ProductName: "dish",
			UnitPrice:   domain.NewMoney(share, domain.DefaultCurrency),
			Quantity:    1,
			Subtotal:    domain.NewMoney(share, domain.DefaultCurrency),
			CreatedAt:   createdAt,
		})
	}

	r.orders[order.ID] = order
	return cloneOrder(order)
}

func (r *fakeOrderRepository) stored(orderID uuid.UUID) domain.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneOrder(r.orders[orderID])
}

func (r *fakeOrderRepository) update(orderID uuid.UUID, fn func(*domain.Order)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order := r.orders[orderID]
	fn(&order)
	r.orders[orderID] = order
}

func (r *fakeOrderRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

func (r *fakeOrderRepository) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failWith = err
}

func cloneOrder(order domain.Order) domain.Order {
	order.Items = slices.Clone(order.Items)
	return order
}

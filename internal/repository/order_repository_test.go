package repository_test

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/canteen-order/internal/domain"
	"github.com/nikolayk812/canteen-order/internal/port"
	"github.com/nikolayk812/canteen-order/internal/repository"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"golang.org/x/text/currency"
)

type orderRepositorySuite struct {
	suite.Suite

	repo      *repository.OrderRepository
	pool      *pgxpool.Pool
	container testcontainers.Container
}

// entry point to run the tests in the suite
func TestOrderRepositorySuite(t *testing.T) {
	suite.Run(t, new(orderRepositorySuite))
}

// before all tests in the suite
func (suite *orderRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	var (
		connStr string
		err     error
	)

	suite.container, connStr, err = startPostgres(ctx)
	suite.Require().NoError(err)

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.Require().NoError(err)

	suite.repo = repository.NewOrder(suite.pool)
}

// after all tests in the suite
func (suite *orderRepositorySuite) TearDownSuite() {
	ctx := context.Background()

	if suite.pool != nil {
		suite.pool.Close()
	}
	if suite.container != nil {
		suite.NoError(suite.container.Terminate(ctx))
	}
}

func (suite *orderRepositorySuite) TestInsertOrder() {
	defer suite.deleteAll()

	duplicate := randomOrder()
	_, err := suite.repo.InsertOrder(suite.T().Context(), duplicate)
	suite.Require().NoError(err)

	tests := []struct {
		name      string
		orderFunc func() domain.Order
		wantError string
		wantIs    error
	}{
		{
			name:      "valid order with several items: ok",
			orderFunc: func() domain.Order { return randomOrder() },
		},
		{
			name: "valid order, empty remark: ok",
			orderFunc: func() domain.Order {
				o := randomOrder()
				o.Remark = ""
				return o
			},
		},
		{
			name: "invalid order, no items: fail",
			orderFunc: func() domain.Order {
				o := randomOrder()
				o.Items = nil
				return o
			},
			wantError: "no items in order",
		},
		{
			name: "invalid order, empty number: fail",
			orderFunc: func() domain.Order {
				o := randomOrder()
				o.Number = ""
				return o
			},
			wantError: "order number is empty",
		},
		{
			name: "duplicate order number: fail",
			orderFunc: func() domain.Order {
				o := randomOrder()
				o.Number = duplicate.Number
				return o
			},
			wantError: "withTx: q.InsertOrder: duplicate order number",
			wantIs:    port.ErrDuplicateOrderNumber,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			ttOrder := tt.orderFunc()

			orderID, err := suite.repo.InsertOrder(ctx, ttOrder)
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				if tt.wantIs != nil {
					require.ErrorIs(t, err, tt.wantIs)
				}
				return
			}
			require.NoError(t, err)

			actualOrder, err := suite.repo.GetOrder(ctx, orderID)
			require.NoError(t, err)

			expected := ttOrder
			expected.ID = orderID
			expected.Version = 1

			assertOrder(t, expected, actualOrder)
		})
	}
}

func (suite *orderRepositorySuite) TestInsertOrderIsAtomic() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	order := randomOrder()
	// violates the quantity CHECK on the last item only
	order.Items = append(order.Items, domain.OrderItem{
		ProductID:   1,
		MerchantID:  1,
		ProductName: "broken",
		UnitPrice:   domain.NewMoney(decimal.NewFromInt(1), domain.DefaultCurrency),
		Quantity:    0,
		Subtotal:    domain.ZeroMoney(domain.DefaultCurrency),
	})

	_, err := suite.repo.InsertOrder(ctx, order)
	require.Error(t, err)

	count, err := suite.repo.CountOrders(ctx, domain.OrderFilter{UserIDs: []string{order.UserID}})
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = suite.repo.GetOrderByNumber(ctx, order.Number)
	require.ErrorIs(t, err, port.ErrOrderNotFound)
}

func (suite *orderRepositorySuite) TestGetOrder() {
	defer suite.deleteAll()

	order := randomOrder()
	orderID := suite.insertOrders(order)[0]
	order.ID = orderID
	order.Version = 1

	tests := []struct {
		name      string
		getFunc   func() (domain.Order, error)
		wantError string
	}{
		{
			name: "by id: ok",
			getFunc: func() (domain.Order, error) {
				return suite.repo.GetOrder(suite.T().Context(), orderID)
			},
		},
		{
			name: "by number: ok",
			getFunc: func() (domain.Order, error) {
				return suite.repo.GetOrderByNumber(suite.T().Context(), order.Number)
			},
		},
		{
			name: "by unknown id: not found",
			getFunc: func() (domain.Order, error) {
				return suite.repo.GetOrder(suite.T().Context(), uuid.MustParse(gofakeit.UUID()))
			},
			wantError: "withTx: q.GetOrder: order not found",
		},
		{
			name: "by unknown number: not found",
			getFunc: func() (domain.Order, error) {
				return suite.repo.GetOrderByNumber(suite.T().Context(), "CT-unknown")
			},
			wantError: "withTx: q.GetOrderByNumber: order not found",
		},
		{
			name: "by empty number: error",
			getFunc: func() (domain.Order, error) {
				return suite.repo.GetOrderByNumber(suite.T().Context(), " ")
			},
			wantError: "order number is empty",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()

			actual, err := tt.getFunc()
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			assertOrder(t, order, actual)
		})
	}
}

func (suite *orderRepositorySuite) TestUpdateOrderState() {
	defer suite.deleteAll()

	tests := []struct {
		name         string
		status       domain.OrderStatus
		remark       string
		versionFunc  func(current int64) int64 // expected version sent with the update
		targetIDFunc func() uuid.UUID          // which order ID to update, if nil use the inserted one
		wantError    string
		wantIs       error
	}{
		{
			name:   "matching version: ok",
			status: domain.OrderStatusPaid,
			remark: "paid at the counter",
		},
		{
			name:        "stale version: conflict",
			status:      domain.OrderStatusPaid,
			versionFunc: func(current int64) int64 { return current - 1 },
			wantError:   "withTx: q.UpdateOrderState: order version conflict",
			wantIs:      port.ErrVersionConflict,
		},
		{
			name:   "non-existing order: not found",
			status: domain.OrderStatusPaid,
			targetIDFunc: func() uuid.UUID {
				return uuid.MustParse(gofakeit.UUID())
			},
			wantError: "withTx: q.UpdateOrderState: order not found",
			wantIs:    port.ErrOrderNotFound,
		},
		{
			name:   "empty order ID: error",
			status: domain.OrderStatusPaid,
			targetIDFunc: func() uuid.UUID {
				return uuid.Nil
			},
			wantError: "orderID is empty",
		},
		{
			name:      "unknown status: error",
			status:    "SHIPPED",
			wantError: "status[SHIPPED]: invalid order status",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			defer suite.deleteAll()

			t := suite.T()
			ctx := t.Context()

			order := randomOrder()
			orderID := suite.insertOrders(order)[0]

			targetOrderID := orderID
			if tt.targetIDFunc != nil {
				targetOrderID = tt.targetIDFunc()
			}

			expectedVersion := int64(1)
			if tt.versionFunc != nil {
				expectedVersion = tt.versionFunc(expectedVersion)
			}

			updatedAt := time.Now().UTC().Truncate(time.Microsecond)

			version, err := suite.repo.UpdateOrderState(ctx, port.OrderStateUpdate{
				ID:              targetOrderID,
				ExpectedVersion: expectedVersion,
				Status:          tt.status,
				Remark:          tt.remark,
				UpdatedAt:       updatedAt,
			})
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				if tt.wantIs != nil {
					require.ErrorIs(t, err, tt.wantIs)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(2), version)

			updatedOrder, err := suite.repo.GetOrder(ctx, orderID)
			require.NoError(t, err)

			expected := order
			expected.ID = orderID
			expected.Status = tt.status
			expected.Remark = tt.remark
			expected.Version = 2
			expected.UpdatedAt = updatedAt

			assertOrder(t, expected, updatedOrder)
		})
	}
}

func (suite *orderRepositorySuite) TestUpdateOrderStateSameVersionOnce() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	orderID := suite.insertOrders(randomOrder())[0]

	update := port.OrderStateUpdate{
		ID:              orderID,
		ExpectedVersion: 1,
		Status:          domain.OrderStatusPaid,
		UpdatedAt:       time.Now().UTC(),
	}

	_, err := suite.repo.UpdateOrderState(ctx, update)
	require.NoError(t, err)

	_, err = suite.repo.UpdateOrderState(ctx, update)
	require.ErrorIs(t, err, port.ErrVersionConflict)
}

func (suite *orderRepositorySuite) TestSearchOrders() {
	defer suite.deleteAll()

	const merchantA, merchantB = int64(7001), int64(7002)

	// two items of merchant A in one order must still yield one order
	order1 := randomOrder(merchantA, merchantA)
	order2 := randomOrder(merchantA, merchantB)
	order3 := randomOrder(merchantB)
	order1 = createdAgo(order1, 30*time.Second)
	order2 = createdAgo(order2, 20*time.Second)
	order3 = createdAgo(order3, 10*time.Second)
	orderIDs := suite.insertOrders(order1, order2, order3)

	suite.setStatus(orderIDs[2], domain.OrderStatusPaid)
	order3.Status = domain.OrderStatusPaid
	order3.Version = 2

	tests := []struct {
		name       string
		filter     domain.OrderFilter
		page       domain.PageRequest
		wantOrders []domain.Order
		wantTotal  int64
		wantError  string
	}{
		{
			name:       "empty filter: all",
			wantOrders: []domain.Order{order1, order2, order3},
			wantTotal:  3,
		},
		{
			name: "by ids: 2 found",
			filter: domain.OrderFilter{
				IDs: []uuid.UUID{orderIDs[0], orderIDs[1]},
			},
			wantOrders: []domain.Order{order1, order2},
			wantTotal:  2,
		},
		{
			name: "by ids: not found",
			filter: domain.OrderFilter{
				IDs: []uuid.UUID{uuid.MustParse(gofakeit.UUID())},
			},
		},
		{
			name: "by user ids: 1 found",
			filter: domain.OrderFilter{
				UserIDs: []string{order1.UserID},
			},
			wantOrders: []domain.Order{order1},
			wantTotal:  1,
		},
		{
			name: "by merchant A: distinct orders",
			filter: domain.OrderFilter{
				MerchantID: lo.ToPtr(merchantA),
			},
			wantOrders: []domain.Order{order1, order2},
			wantTotal:  2,
		},
		{
			name: "by merchant B and status paid: 1 found",
			filter: domain.OrderFilter{
				MerchantID: lo.ToPtr(merchantB),
				Statuses:   []domain.OrderStatus{domain.OrderStatusPaid},
			},
			wantOrders: []domain.Order{order3},
			wantTotal:  1,
		},
		{
			name: "by status pending or paid: all",
			filter: domain.OrderFilter{
				Statuses: []domain.OrderStatus{domain.OrderStatusPending, domain.OrderStatusPaid},
			},
			wantOrders: []domain.Order{order1, order2, order3},
			wantTotal:  3,
		},
		{
			name: "by status cancelled: not found",
			filter: domain.OrderFilter{
				Statuses: []domain.OrderStatus{domain.OrderStatusCancelled},
			},
		},
		{
			name: "by createdAt after: all",
			filter: domain.OrderFilter{
				CreatedAt: lo.ToPtr(domain.TimeRange{
					After: lo.ToPtr(time.Now().UTC().Add(-1 * time.Minute)),
				}),
			},
			wantOrders: []domain.Order{order1, order2, order3},
			wantTotal:  3,
		},
		{
			name: "by createdAt before: not found",
			filter: domain.OrderFilter{
				CreatedAt: lo.ToPtr(domain.TimeRange{
					Before: lo.ToPtr(time.Now().UTC().Add(-1 * time.Minute)),
				}),
			},
		},
		{
			name:       "second page of size 2: 1 found",
			page:       domain.PageRequest{Page: 2, Size: 2},
			wantOrders: []domain.Order{order1},
			wantTotal:  3,
		},
		{
			name: "invalid status: error",
			filter: domain.OrderFilter{
				Statuses: []domain.OrderStatus{"SHIPPED"},
			},
			wantError: `filter.Validate: statuses: invalid order status: "SHIPPED"`,
		},
		{
			name: "empty time range: error",
			filter: domain.OrderFilter{
				CreatedAt: &domain.TimeRange{},
			},
			wantError: "filter.Validate: createdAt: both Before and After are nil",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			page, err := suite.repo.SearchOrders(ctx, tt.filter, tt.page)
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.wantTotal, page.Total)
			assertOrders(t, tt.wantOrders, page.Items)

			count, err := suite.repo.CountOrders(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, count)
		})
	}
}

func (suite *orderRepositorySuite) TestSearchOrdersNewestFirst() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	older := randomOrder()
	older.CreatedAt = older.CreatedAt.Add(-time.Hour)
	newer := randomOrder()
	suite.insertOrders(older, newer)

	page, err := suite.repo.SearchOrders(ctx, domain.OrderFilter{}, domain.PageRequest{Page: 1, Size: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	assert.Equal(t, newer.Number, page.Items[0].Number)
	assert.Equal(t, older.Number, page.Items[1].Number)
	assert.Equal(t, int64(1), page.Pages)
}

func (suite *orderRepositorySuite) TestScanOrderFacts() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	const merchantID = int64(9001)

	order1 := randomOrder(merchantID)
	order2 := randomOrder(merchantID, merchantID)
	order3 := randomOrder()
	orderIDs := suite.insertOrders(order1, order2, order3)

	suite.setStatus(orderIDs[1], domain.OrderStatusCancelled)

	facts, err := suite.repo.ScanOrderFacts(ctx, domain.OrderFilter{MerchantID: lo.ToPtr(merchantID)})
	require.NoError(t, err)

	expected := []domain.OrderFact{
		{ID: orderIDs[0], Status: domain.OrderStatusPending, Total: order1.Total.Amount, CreatedAt: order1.CreatedAt},
		{ID: orderIDs[1], Status: domain.OrderStatusCancelled, Total: order2.Total.Amount, CreatedAt: order2.CreatedAt},
	}

	sortFacts := func(facts []domain.OrderFact) {
		sort.Slice(facts, func(i, j int) bool {
			return facts[i].ID.String() < facts[j].ID.String()
		})
	}
	sortFacts(expected)
	sortFacts(facts)

	diff := cmp.Diff(expected, facts)
	assert.Empty(t, diff)
}

func (suite *orderRepositorySuite) insertOrders(orders ...domain.Order) []uuid.UUID {
	var orderIDs []uuid.UUID

	for _, order := range orders {
		orderID, err := suite.repo.InsertOrder(suite.T().Context(), order)
		suite.Require().NoError(err)
		orderIDs = append(orderIDs, orderID)
	}

	return orderIDs
}

func (suite *orderRepositorySuite) setStatus(orderID uuid.UUID, status domain.OrderStatus) {
	_, err := suite.pool.Exec(suite.T().Context(),
		"UPDATE orders SET status = $1, version = version + 1 WHERE id = $2", status.String(), orderID)
	suite.Require().NoError(err)
}

func (suite *orderRepositorySuite) deleteAll() {
	_, err := suite.pool.Exec(suite.T().Context(), "TRUNCATE TABLE orders, order_items CASCADE")
	suite.NoError(err)
}

// randomOrder builds a valid pending order. Each merchant id yields one item;
// with none given a single item of a random merchant is used.
func randomOrder(merchantIDs ...int64) domain.Order {
	if len(merchantIDs) == 0 {
		merchantIDs = []int64{int64(gofakeit.Number(1, 1000))}
	}

	items := lo.Map(merchantIDs, func(merchantID int64, _ int) domain.NewOrderItem {
		return randomNewOrderItem(merchantID)
	})

	now := time.Now().UTC().Truncate(time.Microsecond)

	order, err := domain.NewOrder(gofakeit.UUID(), items, gofakeit.Sentence(5), domain.DefaultCurrency, now)
	if err != nil {
		panic(err)
	}

	order.Number = "CT" + strings.ToUpper(gofakeit.LetterN(26))

	return order
}

func createdAgo(order domain.Order, d time.Duration) domain.Order {
	order.CreatedAt = order.CreatedAt.Add(-d)
	order.UpdatedAt = order.CreatedAt
	for i := range order.Items {
		order.Items[i].CreatedAt = order.CreatedAt
	}
	return order
}

func randomNewOrderItem(merchantID int64) domain.NewOrderItem {
	return domain.NewOrderItem{
		ProductID:   int64(gofakeit.Number(1, 100000)),
		MerchantID:  merchantID,
		ProductName: gofakeit.Dessert(),
		UnitPrice:   decimal.New(int64(gofakeit.Number(0, 9999)), -2),
		Quantity:    int32(gofakeit.Number(1, 5)),
	}
}

func assertOrder(t *testing.T, expected, actual domain.Order) {
	t.Helper()

	currencyComparer := cmp.Comparer(func(x, y currency.Unit) bool {
		return x.String() == y.String()
	})

	opts := cmp.Options{
		cmpopts.IgnoreFields(domain.OrderItem{}, "ID", "CreatedAt"),
		cmpopts.IgnoreFields(domain.Order{}, "ID"),
		currencyComparer,
	}

	diff := cmp.Diff(expected, actual, opts)
	assert.Empty(t, diff)

	assert.NotEqual(t, uuid.Nil, actual.ID)
	for _, item := range actual.Items {
		assert.NotZero(t, item.ID)
		assert.False(t, item.CreatedAt.IsZero())
	}
}

func assertOrders(t *testing.T, expected, actual []domain.Order) {
	t.Helper()

	sortOrders := func(orders []domain.Order) {
		sort.Slice(orders, func(i, j int) bool {
			return orders[i].Number < orders[j].Number
		})
	}

	sortOrders(expected)
	sortOrders(actual)

	require.Equal(t, len(expected), len(actual))

	for i := range expected {
		expected[i].Version = max(expected[i].Version, 1)
		assertOrder(t, expected[i], actual[i])
	}
}

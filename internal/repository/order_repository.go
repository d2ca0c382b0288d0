package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/canteen-order/internal/db"
	"github.com/nikolayk812/canteen-order/internal/domain"
	"github.com/nikolayk812/canteen-order/internal/port"
	"github.com/samber/lo"
	"golang.org/x/text/currency"
)

const (
	pgUniqueViolation     = "23505"
	orderNumberConstraint = "orders_order_number_key"
)

type OrderRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

var _ port.OrderRepository = (*OrderRepository)(nil)

func NewOrder(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{
		q:    db.New(pool),
		pool: pool,
	}
}

func NewOrderWithTx(tx pgx.Tx) *OrderRepository {
	return &OrderRepository{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

func (r *OrderRepository) GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	var o domain.Order

	order, err := withTx(ctx, r.pool, r.q, func(q *db.Queries) (domain.Order, error) {
		dbOrder, err := q.GetOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return o, fmt.Errorf("q.GetOrder: %w", port.ErrOrderNotFound)
			}
			return o, fmt.Errorf("q.GetOrder: %w", err)
		}

		return r.loadItems(ctx, q, dbOrder)
	})
	if err != nil {
		return o, fmt.Errorf("withTx: %w", err)
	}

	return order, nil
}

func (r *OrderRepository) GetOrderByNumber(ctx context.Context, number string) (domain.Order, error) {
	var o domain.Order

	if strings.TrimSpace(number) == "" {
		return o, errors.New("order number is empty")
	}

	order, err := withTx(ctx, r.pool, r.q, func(q *db.Queries) (domain.Order, error) {
		dbOrder, err := q.GetOrderByNumber(ctx, number)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return o, fmt.Errorf("q.GetOrderByNumber: %w", port.ErrOrderNotFound)
			}
			return o, fmt.Errorf("q.GetOrderByNumber: %w", err)
		}

		return r.loadItems(ctx, q, dbOrder)
	})
	if err != nil {
		return o, fmt.Errorf("withTx: %w", err)
	}

	return order, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, q *db.Queries, dbOrder db.Order) (domain.Order, error) {
	var o domain.Order

	dbOrderItems, err := q.GetOrderItems(ctx, dbOrder.ID)
	if err != nil {
		return o, fmt.Errorf("q.GetOrderItems: %w", err)
	}

	o, err = mapDBOrderToDomain(dbOrder, dbOrderItems)
	if err != nil {
		return o, fmt.Errorf("mapDBOrderToDomain: %w", err)
	}

	return o, nil
}

// InsertOrder writes the order row and all item rows in one transaction.
func (r *OrderRepository) InsertOrder(ctx context.Context, order domain.Order) (uuid.UUID, error) {
	if len(order.Items) == 0 {
		return uuid.Nil, domain.ErrNoItems
	}
	if strings.TrimSpace(order.Number) == "" {
		return uuid.Nil, errors.New("order number is empty")
	}
	if !order.Status.Valid() {
		return uuid.Nil, fmt.Errorf("status[%s]: %w", order.Status, domain.ErrInvalidOrderStatus)
	}

	orderID, err := withTx(ctx, r.pool, r.q, func(q *db.Queries) (uuid.UUID, error) {
		orderID, err := q.InsertOrder(ctx, db.InsertOrderParams{
			OrderNumber: order.Number,
			UserID:      order.UserID,
			TotalAmount: order.Total.Amount,
			Currency:    order.Total.Currency.String(),
			Status:      order.Status.String(),
			Remark:      order.Remark,
			CreatedAt:   order.CreatedAt,
			UpdatedAt:   order.UpdatedAt,
		})
		if err != nil {
			if isOrderNumberViolation(err) {
				return uuid.Nil, fmt.Errorf("q.InsertOrder: %w", port.ErrDuplicateOrderNumber)
			}
			return uuid.Nil, fmt.Errorf("q.InsertOrder: %w", err)
		}

		args := lo.Map(order.Items, func(item domain.OrderItem, _ int) db.InsertOrderItemsParams {
			return db.InsertOrderItemsParams{
				OrderID:     orderID,
				ProductID:   item.ProductID,
				MerchantID:  item.MerchantID,
				ProductName: item.ProductName,
				UnitPrice:   item.UnitPrice.Amount,
				Quantity:    item.Quantity,
				Subtotal:    item.Subtotal.Amount,
				CreatedAt:   lo.Ternary(item.CreatedAt.IsZero(), order.CreatedAt, item.CreatedAt),
			}
		})

		var batchErr error
		q.InsertOrderItems(ctx, args).Exec(func(i int, err error) {
			if err != nil && batchErr == nil {
				batchErr = fmt.Errorf("items[%d]: %w", i, err)
			}
		})
		if batchErr != nil {
			return uuid.Nil, fmt.Errorf("q.InsertOrderItems: %w", batchErr)
		}

		return orderID, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("withTx: %w", err)
	}

	return orderID, nil
}

// UpdateOrderState is a compare-and-set on version. Exactly one of several
// writers holding the same version wins.
func (r *OrderRepository) UpdateOrderState(ctx context.Context, update port.OrderStateUpdate) (int64, error) {
	if update.ID == uuid.Nil {
		return 0, errors.New("orderID is empty")
	}
	if !update.Status.Valid() {
		return 0, fmt.Errorf("status[%s]: %w", update.Status, domain.ErrInvalidOrderStatus)
	}

	version, err := withTx(ctx, r.pool, r.q, func(q *db.Queries) (int64, error) {
		version, err := q.UpdateOrderState(ctx, db.UpdateOrderStateParams{
			Status:          update.Status.String(),
			Remark:          update.Remark,
			UpdatedAt:       update.UpdatedAt,
			ID:              update.ID,
			ExpectedVersion: update.ExpectedVersion,
		})
		if err == nil {
			return version, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("q.UpdateOrderState: %w", err)
		}

		exists, err := q.OrderExists(ctx, update.ID)
		if err != nil {
			return 0, fmt.Errorf("q.OrderExists: %w", err)
		}
		if !exists {
			return 0, fmt.Errorf("q.UpdateOrderState: %w", port.ErrOrderNotFound)
		}

		return 0, fmt.Errorf("q.UpdateOrderState: %w", port.ErrVersionConflict)
	})
	if err != nil {
		return 0, fmt.Errorf("withTx: %w", err)
	}

	return version, nil
}

// SearchOrders returns one page, newest first, with items embedded.
func (r *OrderRepository) SearchOrders(ctx context.Context, filter domain.OrderFilter, page domain.PageRequest) (domain.Page[domain.Order], error) {
	var p domain.Page[domain.Order]

	if err := filter.Validate(); err != nil {
		return p, fmt.Errorf("filter.Validate: %w", err)
	}

	if page.Page < 1 || page.Size < 1 {
		page = page.Normalize(domain.MaxPageSize)
	}

	dbFilter := mapDomainOrderFilterToDBFilter(filter)

	result, err := withTx(ctx, r.pool, r.q, func(q *db.Queries) (domain.Page[domain.Order], error) {
		total, err := q.CountOrders(ctx, db.CountOrdersParams(dbFilter))
		if err != nil {
			return p, fmt.Errorf("q.CountOrders: %w", err)
		}

		if total == 0 {
			return domain.NewPage[domain.Order](nil, 0, page), nil
		}

		dbOrders, err := q.SearchOrders(ctx, db.SearchOrdersParams{
			Ids:           dbFilter.Ids,
			UserIds:       dbFilter.UserIds,
			Statuses:      dbFilter.Statuses,
			CreatedAfter:  dbFilter.CreatedAfter,
			CreatedBefore: dbFilter.CreatedBefore,
			MerchantID:    dbFilter.MerchantID,
			PageLimit:     int32(page.Size),
			PageOffset:    int32(page.Offset()),
		})
		if err != nil {
			return p, fmt.Errorf("q.SearchOrders: %w", err)
		}

		orderIDs := lo.Map(dbOrders, func(o db.Order, _ int) uuid.UUID { return o.ID })

		dbItems, err := q.GetOrderItemsByOrderIDs(ctx, orderIDs)
		if err != nil {
			return p, fmt.Errorf("q.GetOrderItemsByOrderIDs: %w", err)
		}

		itemsByOrder := lo.GroupBy(dbItems, func(item db.OrderItem) uuid.UUID { return item.OrderID })

		orders := make([]domain.Order, 0, len(dbOrders))
		for _, dbOrder := range dbOrders {
			order, err := mapDBOrderToDomain(dbOrder, itemsByOrder[dbOrder.ID])
			if err != nil {
				return p, fmt.Errorf("mapDBOrderToDomain: %w", err)
			}
			orders = append(orders, order)
		}

		return domain.NewPage(orders, total, page), nil
	})
	if err != nil {
		return p, fmt.Errorf("withTx: %w", err)
	}

	return result, nil
}

func (r *OrderRepository) CountOrders(ctx context.Context, filter domain.OrderFilter) (int64, error) {
	if err := filter.Validate(); err != nil {
		return 0, fmt.Errorf("filter.Validate: %w", err)
	}

	count, err := r.q.CountOrders(ctx, db.CountOrdersParams(mapDomainOrderFilterToDBFilter(filter)))
	if err != nil {
		return 0, fmt.Errorf("q.CountOrders: %w", err)
	}

	return count, nil
}

// ScanOrderFacts returns the matching rows oldest first without their items.
func (r *OrderRepository) ScanOrderFacts(ctx context.Context, filter domain.OrderFilter) ([]domain.OrderFact, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("filter.Validate: %w", err)
	}

	rows, err := r.q.ListOrderFacts(ctx, mapDomainOrderFilterToDBFilter(filter))
	if err != nil {
		return nil, fmt.Errorf("q.ListOrderFacts: %w", err)
	}

	facts := make([]domain.OrderFact, 0, len(rows))
	for _, row := range rows {
		status, err := domain.ToOrderStatus(row.Status)
		if err != nil {
			return nil, fmt.Errorf("domain.ToOrderStatus[%s]: %w", row.Status, err)
		}

		facts = append(facts, domain.OrderFact{
			ID:        row.ID,
			Status:    status,
			Total:     row.TotalAmount,
			CreatedAt: row.CreatedAt,
		})
	}

	return facts, nil
}

func mapDomainOrderFilterToDBFilter(filter domain.OrderFilter) db.ListOrderFactsParams {
	statuses := lo.Map(filter.Statuses, func(s domain.OrderStatus, _ int) string {
		return s.String()
	})

	var createdAfter, createdBefore *time.Time

	if filter.CreatedAt != nil {
		createdAfter = filter.CreatedAt.After
		createdBefore = filter.CreatedAt.Before
	}

	return db.ListOrderFactsParams{
		Ids:           nilSliceIfEmpty(filter.IDs),
		UserIds:       nilSliceIfEmpty(filter.UserIDs),
		Statuses:      nilSliceIfEmpty(statuses),
		CreatedAfter:  createdAfter,
		CreatedBefore: createdBefore,
		MerchantID:    filter.MerchantID,
	}
}

func mapDBOrderItemToDomain(row db.OrderItem, unit currency.Unit) domain.OrderItem {
	return domain.OrderItem{
		ID:          row.ID,
		ProductID:   row.ProductID,
		MerchantID:  row.MerchantID,
		ProductName: row.ProductName,
		UnitPrice:   domain.NewMoney(row.UnitPrice, unit),
		Quantity:    row.Quantity,
		Subtotal:    domain.NewMoney(row.Subtotal, unit),
		CreatedAt:   row.CreatedAt,
	}
}

func mapDBOrderToDomain(dbOrder db.Order, dbOrderItems []db.OrderItem) (domain.Order, error) {
	var o domain.Order

	code := strings.TrimSpace(dbOrder.Currency)
	parsedCurrency, err := currency.ParseISO(code)
	if err != nil {
		return o, fmt.Errorf("currency[%s] is not valid: %w", code, err)
	}

	status, err := domain.ToOrderStatus(dbOrder.Status)
	if err != nil {
		return o, fmt.Errorf("domain.ToOrderStatus[%s]: %w", dbOrder.Status, err)
	}

	items := lo.Map(dbOrderItems, func(row db.OrderItem, _ int) domain.OrderItem {
		return mapDBOrderItemToDomain(row, parsedCurrency)
	})

	return domain.Order{
		ID:        dbOrder.ID,
		Number:    dbOrder.OrderNumber,
		UserID:    dbOrder.UserID,
		Total:     domain.NewMoney(dbOrder.TotalAmount, parsedCurrency),
		Status:    status,
		Remark:    dbOrder.Remark,
		Items:     items,
		Version:   dbOrder.Version,
		CreatedAt: dbOrder.CreatedAt,
		UpdatedAt: dbOrder.UpdatedAt,
	}, nil
}

func isOrderNumberViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == orderNumberConstraint
}

func nilSliceIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}

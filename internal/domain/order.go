package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var (
	ErrNoItems           = errors.New("no items in order")
	ErrEmptyUserID       = errors.New("userID is empty")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrNegativePrice     = errors.New("unit price must not be negative")
	ErrEmptyProductName  = errors.New("product name is empty")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidProductID  = errors.New("product id must be positive")
	ErrCurrencyMismatch  = errors.New("item currency differs from order currency")
	ErrPricePrecision    = errors.New("unit price has more decimal places than the currency allows")
	ErrTotalTooLarge     = errors.New("order total exceeds the storable maximum")
)

// MaxOrderTotal is the largest amount a NUMERIC(12,2) column holds.
var MaxOrderTotal = decimal.RequireFromString("9999999999.99")

type Order struct {
	ID      uuid.UUID
	Number  string
	UserID  string
	Total   Money
	Status  OrderStatus
	Remark  string
	Items   []OrderItem
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem is a snapshot of the product at order time; it is never updated.
type OrderItem struct {
	ID          int64
	ProductID   int64
	MerchantID  int64
	ProductName string
	UnitPrice   Money
	Quantity    int32
	Subtotal    Money

	CreatedAt time.Time
}

// NewOrderItem is the caller-supplied part of a line item.
type NewOrderItem struct {
	ProductID   int64
	MerchantID  int64
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int32
}

func (i NewOrderItem) Validate() error {
	if i.ProductID <= 0 {
		return ErrInvalidProductID
	}
	if strings.TrimSpace(i.ProductName) == "" {
		return ErrEmptyProductName
	}
	if i.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if i.UnitPrice.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

// NewOrder builds a PENDING order whose total is the exact sum of item subtotals.
func NewOrder(userID string, items []NewOrderItem, remark string, unit currency.Unit, now time.Time) (Order, error) {
	var o Order

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return o, ErrEmptyUserID
	}

	if len(items) == 0 {
		return o, ErrNoItems
	}

	total := ZeroMoney(unit)
	orderItems := make([]OrderItem, 0, len(items))

	for idx, item := range items {
		if err := item.Validate(); err != nil {
			return o, fmt.Errorf("items[%d]: %w", idx, err)
		}

		price := NewMoney(item.UnitPrice, unit)
		// stored amounts are fixed to the currency scale; finer prices would round apart
		if !price.Amount.Equal(price.Amount.Truncate(price.Scale())) {
			return o, fmt.Errorf("items[%d]: %w", idx, ErrPricePrecision)
		}
		subtotal := price.Mul(item.Quantity)

		var err error
		total, err = total.Add(subtotal)
		if err != nil {
			return o, fmt.Errorf("items[%d]: %w", idx, ErrCurrencyMismatch)
		}

		orderItems = append(orderItems, OrderItem{
			ProductID:   item.ProductID,
			MerchantID:  item.MerchantID,
			ProductName: strings.TrimSpace(item.ProductName),
			UnitPrice:   price,
			Quantity:    item.Quantity,
			Subtotal:    subtotal,
			CreatedAt:   now,
		})
	}

	if total.Amount.GreaterThan(MaxOrderTotal) {
		return o, fmt.Errorf("%w: %s", ErrTotalTooLarge, total.StringFixed())
	}

	return Order{
		UserID:    userID,
		Total:     total,
		Status:    OrderStatusPending,
		Remark:    strings.TrimSpace(remark),
		Items:     orderItems,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// TransitionTo moves the order along an edge of the lifecycle graph.
func (o *Order) TransitionTo(next OrderStatus, now time.Time) error {
	if !next.Valid() {
		return ErrInvalidOrderStatus
	}

	if !o.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
	}

	o.Status = next
	o.UpdatedAt = now

	return nil
}

// AppendRemark adds a note after the existing remark, keeping prior text.
func (o *Order) AppendRemark(note string) {
	note = strings.TrimSpace(note)
	if note == "" {
		return
	}

	if strings.TrimSpace(o.Remark) == "" {
		o.Remark = note
		return
	}

	o.Remark = o.Remark + " " + note
}

// OwnedBy reports whether at least one line item belongs to the merchant.
func (o Order) OwnedBy(merchantID int64) bool {
	for _, item := range o.Items {
		if item.MerchantID == merchantID {
			return true
		}
	}
	return false
}

// ItemsTotal recomputes the sum of item subtotals.
func (o Order) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(item.Subtotal.Amount)
	}
	return sum
}

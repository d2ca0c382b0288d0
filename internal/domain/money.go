package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// DefaultCurrency is the canteen's settlement currency.
var DefaultCurrency = currency.CNY

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

func NewMoney(amount decimal.Decimal, unit currency.Unit) Money {
	return Money{Amount: amount, Currency: unit}
}

func ZeroMoney(unit currency.Unit) Money {
	return Money{Amount: decimal.Zero, Currency: unit}
}

// Add sums two amounts of the same currency. Mixing currencies is a programming error.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.Currency, other.Currency)
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

func (m Money) Mul(qty int32) Money {
	return Money{Amount: m.Amount.Mul(decimal.NewFromInt32(qty)), Currency: m.Currency}
}

func (m Money) IsNegative() bool {
	return m.Amount.IsNegative()
}

// Scale returns the number of minor-unit digits for the currency, e.g. 2 for CNY.
func (m Money) Scale() int32 {
	scale, _ := currency.Standard.Rounding(m.Currency)
	return int32(scale)
}

// StringFixed renders the amount with the currency's minor-unit precision.
func (m Money) StringFixed() string {
	return m.Amount.StringFixed(m.Scale())
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.StringFixed(), m.Currency)
}

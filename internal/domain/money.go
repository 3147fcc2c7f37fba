package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

func BRL(amount decimal.Decimal) Money {
	return Money{Amount: amount, Currency: currency.BRL}
}

// String renders the amount with exactly two decimal digits.
func (m Money) String() string {
	return m.Amount.StringFixed(2)
}

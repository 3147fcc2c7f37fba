package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64
	Name        string
	Description string
	Cause       string
	Price       decimal.Decimal
	ImageURL    string
	Active      bool
	Deleted     bool
	CreatedAt   time.Time
}

// Available reports whether the product can be sold.
func (p Product) Available() bool {
	return p.Active && !p.Deleted
}

type Variant struct {
	ID        int64
	ProductID int64
	Name      string
	Price     decimal.Decimal
	Active    bool
	Deleted   bool
}

func (v Variant) Available() bool {
	return v.Active && !v.Deleted
}

// Recipient is a standing WhatsApp number notified of every paid order.
type Recipient struct {
	ID     int64
	Name   string
	Phone  string
	Active bool
}

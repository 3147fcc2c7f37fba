package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidCartKey = errors.New("invalid cart key")

// CartKey identifies a cart line. VariantID 0 means the product is sold without a variant.
type CartKey struct {
	ProductID int64
	VariantID int64
}

func (k CartKey) HasVariant() bool {
	return k.VariantID != 0
}

func (k CartKey) String() string {
	return fmt.Sprintf("%d:%d", k.ProductID, k.VariantID)
}

// ParseCartKey accepts "<product>:<variant>" and the legacy bare "<product>" form.
func ParseCartKey(s string) (CartKey, error) {
	productPart, variantPart, hasVariant := strings.Cut(strings.TrimSpace(s), ":")

	productID, err := strconv.ParseInt(productPart, 10, 64)
	if err != nil || productID <= 0 {
		return CartKey{}, fmt.Errorf("%w[%s]", ErrInvalidCartKey, s)
	}

	var variantID int64
	if hasVariant && variantPart != "" {
		variantID, err = strconv.ParseInt(variantPart, 10, 64)
		if err != nil || variantID < 0 {
			return CartKey{}, fmt.Errorf("%w[%s]", ErrInvalidCartKey, s)
		}
	}

	return CartKey{ProductID: productID, VariantID: variantID}, nil
}

type CartLine struct {
	Key      CartKey
	Quantity int
}

// Cart is the session-owned cart state. Lines keep insertion order.
type Cart struct {
	Lines []CartLine
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c Cart) Quantity(key CartKey) int {
	for _, line := range c.Lines {
		if line.Key == key {
			return line.Quantity
		}
	}
	return 0
}

// Set replaces the quantity of key; quantity <= 0 removes the line.
func (c *Cart) Set(key CartKey, quantity int) {
	for i, line := range c.Lines {
		if line.Key != key {
			continue
		}

		if quantity <= 0 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}

		c.Lines[i].Quantity = quantity
		return
	}

	if quantity > 0 {
		c.Lines = append(c.Lines, CartLine{Key: key, Quantity: quantity})
	}
}

// CartItem is a priced cart line resolved against the catalog.
type CartItem struct {
	ProductID int64  `json:"id"`
	VariantID *int64 `json:"variant_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"price"`
	Quantity  int    `json:"quantity"`
	ImageURL  string `json:"image_url"`
	Subtotal  string `json:"subtotal"`
}

type CartSummary struct {
	Items []CartItem `json:"items"`
	Total string     `json:"total"`
	Count int        `json:"count"`
}

func (s CartSummary) IsEmpty() bool {
	return len(s.Items) == 0
}

func (s CartSummary) LineItems() []LineItem {
	items := make([]LineItem, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, LineItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal,
			ImageURL:  item.ImageURL,
		})
	}
	return items
}

package cart

import (
	"strconv"
	"strings"

	"github.com/nikolayk812/pixshop/internal/domain"
)

type Action string

const (
	ActionInc Action = "inc"
	ActionDec Action = "dec"
	ActionSet Action = "set"
)

// ParseQuantity returns the integer in raw, or 1 when raw is missing or malformed.
func ParseQuantity(raw string) int {
	quantity, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 1
	}
	return quantity
}

// Add increases the quantity of key by at least one.
func Add(c *domain.Cart, key domain.CartKey, quantity int) {
	c.Set(key, c.Quantity(key)+max(1, quantity))
}

// Update applies action to key. A resulting quantity of zero or less removes the line.
func Update(c *domain.Cart, key domain.CartKey, action Action, rawQuantity string) {
	current := c.Quantity(key)

	switch action {
	case ActionInc:
		current++
	case ActionDec:
		current--
	default:
		current = ParseQuantity(rawQuantity)
	}

	c.Set(key, current)
}

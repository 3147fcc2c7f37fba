package port

import (
	"context"

	"github.com/nikolayk812/pixshop/internal/domain"
)

// CartStore owns session cart state; an unknown session loads as an empty cart.
type CartStore interface {
	Load(ctx context.Context, sessionID string) (domain.Cart, error)
	Save(ctx context.Context, sessionID string, cart domain.Cart) error
	Clear(ctx context.Context, sessionID string) error
}

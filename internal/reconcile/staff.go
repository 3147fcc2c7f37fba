package reconcile

import (
	"context"
	"fmt"

	"github.com/nikolayk812/pixshop/internal/domain"
	"github.com/nikolayk812/pixshop/internal/port"
	"github.com/samber/lo"
)

// MarkPaid records a payment confirmed by staff outside the provider.
// An order that is already paid is left as is, apart from a pending notification.
func (e *Engine) MarkPaid(ctx context.Context, orderID int64) (domain.Order, error) {
	order, err := e.orders.GetOrder(ctx, orderID)
	if err != nil {
		return order, fmt.Errorf("orders.GetOrder: %w", err)
	}

	if !order.IsPaid {
		if err := e.orders.UpdateProviderFields(ctx, order.ID, port.ProviderFields{
			Status: lo.ToPtr(domain.PaymentStatusApprovedManual),
		}); err != nil {
			return order, fmt.Errorf("orders.UpdateProviderFields: %w", err)
		}

		paidAt := e.now().UTC()
		if err := e.orders.SetPaid(ctx, order.ID, &paidAt); err != nil {
			return order, fmt.Errorf("orders.SetPaid: %w", err)
		}

		order.Status = domain.PaymentStatusApprovedManual
		order.IsPaid = true
		order.PaidAt = &paidAt
	}

	return e.notify(ctx, order), nil
}

func (e *Engine) MarkDelivered(ctx context.Context, orderID int64) (domain.Order, error) {
	if _, err := e.orders.SetDelivered(ctx, orderID, e.now().UTC()); err != nil {
		return domain.Order{}, fmt.Errorf("orders.SetDelivered: %w", err)
	}

	order, err := e.orders.GetOrder(ctx, orderID)
	if err != nil {
		return order, fmt.Errorf("orders.GetOrder: %w", err)
	}

	return order, nil
}

func (e *Engine) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	orders, err := e.orders.SearchOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("orders.SearchOrders: %w", err)
	}

	return orders, nil
}

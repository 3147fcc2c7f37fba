// Package fakes holds in-memory implementations of the ports for unit tests.
package fakes

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/nikolayk812/pixshop/internal/domain"
	"github.com/nikolayk812/pixshop/internal/port"
	"github.com/nikolayk812/pixshop/internal/repository"
)

// OrderRepository mirrors the SQL semantics of the postgres repository,
// including the conditional notification claim.
type OrderRepository struct {
	mu     sync.Mutex
	orders map[int64]domain.Order
	nextID int64

	// Writes counts every mutating call that changed a row.
	Writes int
}

var _ port.OrderRepository = (*OrderRepository)(nil)

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[int64]domain.Order)}
}

// Put stores order as is, bypassing insert defaults.
func (r *OrderRepository) Put(order domain.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.orders[order.ID] = order
	r.nextID = max(r.nextID, order.ID)
}

func (r *OrderRepository) GetOrder(_ context.Context, orderID int64) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[orderID]
	if !ok {
		return domain.Order{}, fmt.Errorf("q.GetOrder: %w", repository.ErrNotFound)
	}
	return o, nil
}

func (r *OrderRepository) GetOrderByPaymentID(_ context.Context, paymentID string) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if paymentID == "" {
		return domain.Order{}, fmt.Errorf("paymentID is empty")
	}

	for _, o := range r.orders {
		if o.PaymentID == paymentID {
			return o, nil
		}
	}
	return domain.Order{}, fmt.Errorf("q.GetOrderByPaymentID: %w", repository.ErrNotFound)
}

func (r *OrderRepository) SearchOrders(_ context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("filter.Validate: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var result []domain.Order
	for _, o := range r.orders {
		if len(filter.IDs) > 0 && !slices.Contains(filter.IDs, o.ID) {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, o.Status) {
			continue
		}
		if len(filter.Methods) > 0 && !slices.Contains(filter.Methods, o.PaymentMethod) {
			continue
		}
		if filter.IsPaid != nil && *filter.IsPaid != o.IsPaid {
			continue
		}
		if tr := filter.CreatedAt; tr != nil {
			if tr.After != nil && o.CreatedAt.Before(*tr.After) {
				continue
			}
			if tr.Before != nil && !o.CreatedAt.Before(*tr.Before) {
				continue
			}
		}
		result = append(result, o)
	}

	slices.SortFunc(result, func(a, b domain.Order) int {
		return int(b.ID - a.ID)
	})
	return result, nil
}

func (r *OrderRepository) InsertOrder(_ context.Context, order domain.Order) (int64, error) {
	if len(order.Items) == 0 {
		return 0, fmt.Errorf("no items in order")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	order.ID = r.nextID
	order.ExternalReference = domain.ExternalReference(order.ID)
	if order.Status == "" {
		order.Status = domain.PaymentStatusPending
	}
	order.CreatedAt = time.Now().UTC()
	order.UpdatedAt = order.CreatedAt

	r.orders[order.ID] = order
	r.Writes++
	return order.ID, nil
}

func (r *OrderRepository) UpdateProviderFields(_ context.Context, orderID int64, fields port.ProviderFields) error {
	if fields.IsEmpty() {
		return nil
	}

	return r.update(orderID, func(o *domain.Order) bool {
		if fields.PaymentID != nil {
			o.PaymentID = *fields.PaymentID
		}
		if fields.ExternalReference != nil {
			o.ExternalReference = *fields.ExternalReference
		}
		if fields.Status != nil {
			o.Status = *fields.Status
		}
		if fields.StatusDetail != nil {
			o.StatusDetail = *fields.StatusDetail
		}
		if fields.PixCode != nil {
			o.PixCode = *fields.PixCode
		}
		return true
	})
}

func (r *OrderRepository) SetPaid(_ context.Context, orderID int64, paidAt *time.Time) error {
	return r.update(orderID, func(o *domain.Order) bool {
		o.IsPaid = paidAt != nil
		o.PaidAt = paidAt
		return true
	})
}

func (r *OrderRepository) SetDelivered(_ context.Context, orderID int64, deliveredAt time.Time) (bool, error) {
	var changed bool

	err := r.update(orderID, func(o *domain.Order) bool {
		if o.IsDelivered {
			return false
		}
		o.IsDelivered = true
		o.DeliveredAt = &deliveredAt
		changed = true
		return true
	})

	return changed, err
}

func (r *OrderRepository) ClaimNotification(_ context.Context, orderID int64, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[orderID]
	if !ok || o.WhatsAppNotified {
		return false, nil
	}

	o.WhatsAppNotified = true
	o.WhatsAppNotifiedAt = &at
	r.orders[orderID] = o
	r.Writes++
	return true, nil
}

func (r *OrderRepository) SetNotifyError(_ context.Context, orderID int64, notifyErr string) error {
	return r.update(orderID, func(o *domain.Order) bool {
		o.WhatsAppNotifyError = notifyErr
		return true
	})
}

func (r *OrderRepository) DeleteOrder(_ context.Context, orderID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[orderID]; !ok {
		return fmt.Errorf("q.DeleteOrder: %w", repository.ErrNotFound)
	}

	delete(r.orders, orderID)
	r.Writes++
	return nil
}

// Len returns the number of stored orders.
func (r *OrderRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.orders)
}

func (r *OrderRepository) update(orderID int64, fn func(o *domain.Order) bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[orderID]
	if !ok {
		return fmt.Errorf("fakes.OrderRepository: %w", repository.ErrNotFound)
	}

	if fn(&o) {
		o.UpdatedAt = time.Now().UTC()
		r.orders[orderID] = o
		r.Writes++
	}
	return nil
}

package port

import (
	"context"
	"time"

	"github.com/nikolayk812/pixshop/internal/domain"
)

// ProviderFields are the provider-driven columns of an order. Nil pointers are left untouched.
type ProviderFields struct {
	PaymentID         *string
	ExternalReference *string
	Status            *domain.PaymentStatus
	StatusDetail      *string
	PixCode           *string
}

func (f ProviderFields) IsEmpty() bool {
	return f.PaymentID == nil && f.ExternalReference == nil && f.Status == nil && f.StatusDetail == nil && f.PixCode == nil
}

type OrderRepository interface {
	GetOrder(ctx context.Context, orderID int64) (domain.Order, error)
	GetOrderByPaymentID(ctx context.Context, paymentID string) (domain.Order, error)
	SearchOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)

	// InsertOrder assigns the id and the ORDER_<id> external reference.
	InsertOrder(ctx context.Context, order domain.Order) (int64, error)

	UpdateProviderFields(ctx context.Context, orderID int64, fields ProviderFields) error
	SetPaid(ctx context.Context, orderID int64, paidAt *time.Time) error
	SetDelivered(ctx context.Context, orderID int64, deliveredAt time.Time) (bool, error)

	// ClaimNotification atomically flips whatsapp_notified from false to true.
	// It returns true only for the single caller that performed the flip.
	ClaimNotification(ctx context.Context, orderID int64, at time.Time) (bool, error)
	SetNotifyError(ctx context.Context, orderID int64, notifyErr string) error

	DeleteOrder(ctx context.Context, orderID int64) error
}

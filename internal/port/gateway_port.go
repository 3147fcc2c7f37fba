package port

import (
	"context"
	"net/http"

	"github.com/nikolayk812/pixshop/internal/domain"
)

type PaymentGateway interface {
	// Configured reports whether an access token is present.
	Configured() bool
	CreatePixPayment(ctx context.Context, order domain.Order) (domain.PixPayment, error)
	GetPayment(ctx context.Context, paymentID string) (domain.PaymentInfo, error)
	VerifyWebhookSignature(headers http.Header, paymentID string) bool
}

type MessageSender interface {
	SendText(ctx context.Context, phone, message string) error
}

// Notifier fires the paid-order notification at most once per order.
type Notifier interface {
	NotifyOrderPaid(ctx context.Context, order domain.Order) (bool, error)
}

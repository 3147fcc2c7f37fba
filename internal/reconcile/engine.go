// Package reconcile merges payment provider state into persisted orders.
//
// Webhooks and status polls may run concurrently for the same order. Provider
// field writes are last-write-wins; both converge because each one derives the
// transition from the status the provider reports. The only cross-request
// coordination is the notification claim performed by the Notifier.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nikolayk812/pixshop/internal/domain"
	"github.com/nikolayk812/pixshop/internal/port"
	"github.com/nikolayk812/pixshop/internal/repository"
	"github.com/samber/lo"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

type Engine struct {
	orders   port.OrderRepository
	gateway  port.PaymentGateway
	notifier port.Notifier

	now func() time.Time
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(orders port.OrderRepository, gateway port.PaymentGateway, notifier port.Notifier, opts ...Option) (*Engine, error) {
	if orders == nil {
		return nil, fmt.Errorf("orders is nil")
	}
	if gateway == nil {
		return nil, fmt.Errorf("gateway is nil")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is nil")
	}

	e := &Engine{
		orders:   orders,
		gateway:  gateway,
		notifier: notifier,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// SyncOrderFromPayment applies the provider's view of a payment to order and
// returns the updated order. Only fields that differ are written, so replaying
// the same payment is a no-op.
func (e *Engine) SyncOrderFromPayment(ctx context.Context, order domain.Order, info domain.PaymentInfo) (domain.Order, error) {
	status := domain.NormalizePaymentStatus(string(info.Status))

	// Staff confirmed this payment outside the provider, so only a provider
	// approval may replace the manual status.
	keepManual := order.IsPaid &&
		order.Status == domain.PaymentStatusApprovedManual &&
		status != domain.PaymentStatusApproved

	var fields port.ProviderFields
	if info.ID != "" && info.ID != order.PaymentID {
		fields.PaymentID = lo.ToPtr(info.ID)
	}
	if info.ExternalReference != "" && info.ExternalReference != order.ExternalReference {
		fields.ExternalReference = lo.ToPtr(info.ExternalReference)
	}
	if status != "" && status != order.Status && !keepManual {
		fields.Status = lo.ToPtr(status)
	}
	if info.StatusDetail != order.StatusDetail {
		fields.StatusDetail = lo.ToPtr(info.StatusDetail)
	}

	if !fields.IsEmpty() {
		if err := e.orders.UpdateProviderFields(ctx, order.ID, fields); err != nil {
			return order, fmt.Errorf("orders.UpdateProviderFields: %w", err)
		}
		order = applyProviderFields(order, fields)
	}

	switch {
	case status == domain.PaymentStatusApproved && !order.IsPaid:
		paidAt := e.now().UTC()
		if err := e.orders.SetPaid(ctx, order.ID, &paidAt); err != nil {
			return order, fmt.Errorf("orders.SetPaid: %w", err)
		}
		order.IsPaid = true
		order.PaidAt = &paidAt

		slog.Info("order paid",
			"method", "Engine.SyncOrderFromPayment",
			"order_id", order.ID,
			"payment_id", order.PaymentID)

	case keepManual && status != "":
		slog.Warn("ignoring provider status for manually paid order",
			"method", "Engine.SyncOrderFromPayment",
			"order_id", order.ID,
			"status", status)

	case order.IsPaid && status.Reverses():
		if err := e.orders.SetPaid(ctx, order.ID, nil); err != nil {
			return order, fmt.Errorf("orders.SetPaid: %w", err)
		}
		order.IsPaid = false
		order.PaidAt = nil

		slog.Warn("order payment reversed",
			"method", "Engine.SyncOrderFromPayment",
			"order_id", order.ID,
			"status", status)

	case order.IsPaid && status != "" && status != domain.PaymentStatusApproved:
		slog.Warn("ignoring non terminal status for paid order",
			"method", "Engine.SyncOrderFromPayment",
			"order_id", order.ID,
			"status", status)
	}

	return e.notify(ctx, order), nil
}

// HandleWebhook reconciles the order behind paymentID. Events without a
// payment id or without a matching order are ignored and reported as a nil
// order. Only a bad signature or a failed provider lookup is an error.
func (e *Engine) HandleWebhook(ctx context.Context, headers http.Header, paymentID string) (*domain.Order, error) {
	if paymentID == "" {
		slog.Debug("webhook without payment id",
			"method", "Engine.HandleWebhook")
		return nil, nil
	}

	if !e.gateway.VerifyWebhookSignature(headers, paymentID) {
		return nil, ErrInvalidSignature
	}

	info, err := e.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("gateway.GetPayment: %w", err)
	}
	if info.ID == "" {
		info.ID = paymentID
	}

	order, found, err := e.resolveOrder(ctx, info)
	if err != nil {
		return nil, fmt.Errorf("resolveOrder: %w", err)
	}
	if !found {
		slog.Info("webhook for unknown order ignored",
			"method", "Engine.HandleWebhook",
			"payment_id", info.ID,
			"external_reference", info.ExternalReference)
		return nil, nil
	}

	order, err = e.SyncOrderFromPayment(ctx, order, info)
	if err != nil {
		return nil, fmt.Errorf("SyncOrderFromPayment: %w", err)
	}

	return &order, nil
}

// resolveOrder finds the order by its ORDER_<id> reference, falling back to the stored payment id.
func (e *Engine) resolveOrder(ctx context.Context, info domain.PaymentInfo) (domain.Order, bool, error) {
	if orderID, ok := domain.ParseExternalReference(info.ExternalReference); ok {
		order, err := e.orders.GetOrder(ctx, orderID)
		switch {
		case err == nil:
			return order, true, nil
		case !errors.Is(err, repository.ErrNotFound):
			return order, false, fmt.Errorf("orders.GetOrder: %w", err)
		}
	}

	order, err := e.orders.GetOrderByPaymentID(ctx, info.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return order, false, nil
		}
		return order, false, fmt.Errorf("orders.GetOrderByPaymentID: %w", err)
	}

	return order, true, nil
}

// PollStatus answers the checkout status poll. While the payment is still in
// flight it asks the provider first; provider failures fall back to the last
// persisted state.
func (e *Engine) PollStatus(ctx context.Context, orderID int64) (domain.OrderStatusView, error) {
	order, err := e.orders.GetOrder(ctx, orderID)
	if err != nil {
		return domain.OrderStatusView{}, fmt.Errorf("orders.GetOrder: %w", err)
	}

	if order.IsPaid || !order.Status.InFlight() || order.PaymentID == "" || !e.gateway.Configured() {
		return domain.NewOrderStatusView(order), nil
	}

	info, err := e.gateway.GetPayment(ctx, order.PaymentID)
	if err != nil {
		slog.Warn("payment lookup failed, answering last known status",
			"method", "Engine.PollStatus",
			"order_id", order.ID,
			"payment_id", order.PaymentID,
			"error", err)
		return domain.NewOrderStatusView(order), nil
	}

	synced, err := e.SyncOrderFromPayment(ctx, order, info)
	if err != nil {
		slog.Warn("payment sync failed, answering last known status",
			"method", "Engine.PollStatus",
			"order_id", order.ID,
			"error", err)
		return domain.NewOrderStatusView(order), nil
	}

	return domain.NewOrderStatusView(synced), nil
}

func (e *Engine) notify(ctx context.Context, order domain.Order) domain.Order {
	if !order.IsPaid || order.WhatsAppNotified {
		return order
	}

	sent, err := e.notifier.NotifyOrderPaid(ctx, order)
	if err != nil {
		slog.Error("failed to notify paid order",
			"method", "Engine.notify",
			"order_id", order.ID,
			"error", err)
		return order
	}
	if sent {
		order.WhatsAppNotified = true
	}

	return order
}

func applyProviderFields(order domain.Order, fields port.ProviderFields) domain.Order {
	if fields.PaymentID != nil {
		order.PaymentID = *fields.PaymentID
	}
	if fields.ExternalReference != nil {
		order.ExternalReference = *fields.ExternalReference
	}
	if fields.Status != nil {
		order.Status = *fields.Status
	}
	if fields.StatusDetail != nil {
		order.StatusDetail = *fields.StatusDetail
	}
	if fields.PixCode != nil {
		order.PixCode = *fields.PixCode
	}
	return order
}

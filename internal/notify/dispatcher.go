// Package notify fans a paid-order message out to the buyer and the standing
// WhatsApp recipients, at most once per order.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/nikolayk812/pixshop/internal/domain"
	"github.com/nikolayk812/pixshop/internal/port"
	"github.com/samber/lo"
)

const (
	DefaultMinDelay = 2 * time.Second
	DefaultMaxDelay = 5 * time.Second

	maxNotifyErrorLen = 255
)

var ErrNoRecipients = errors.New("no valid recipients")

type Renderer interface {
	RenderOrderPaid(order domain.Order) (string, error)
}

type Config struct {
	MinDelay time.Duration
	MaxDelay time.Duration
}

type Dispatcher struct {
	orders     port.OrderRepository
	recipients port.RecipientRepository
	sender     port.MessageSender
	renderer   Renderer

	minDelay time.Duration
	maxDelay time.Duration

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

var _ port.Notifier = (*Dispatcher)(nil)

type Option func(*Dispatcher)

// WithSleeper replaces the pause taken between two sends.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(d *Dispatcher) {
		d.sleep = sleep
	}
}

func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

func NewDispatcher(
	orders port.OrderRepository,
	recipients port.RecipientRepository,
	sender port.MessageSender,
	renderer Renderer,
	cfg Config,
	opts ...Option,
) (*Dispatcher, error) {
	if orders == nil {
		return nil, fmt.Errorf("orders is nil")
	}
	if recipients == nil {
		return nil, fmt.Errorf("recipients is nil")
	}
	if sender == nil {
		return nil, fmt.Errorf("sender is nil")
	}
	if renderer == nil {
		return nil, fmt.Errorf("renderer is nil")
	}

	if cfg.MinDelay < 0 || cfg.MaxDelay < 0 {
		return nil, fmt.Errorf("delays must not be negative")
	}
	if cfg.MaxDelay < cfg.MinDelay {
		cfg.MaxDelay = cfg.MinDelay
	}

	d := &Dispatcher{
		orders:     orders,
		recipients: recipients,
		sender:     sender,
		renderer:   renderer,
		minDelay:   cfg.MinDelay,
		maxDelay:   cfg.MaxDelay,
		sleep:      sleepContext,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// NotifyOrderPaid sends the confirmation for a paid order. Only the caller that
// wins the notification claim sends; it returns true in that case. Delivery
// failures are stored on the order, not returned.
func (d *Dispatcher) NotifyOrderPaid(ctx context.Context, order domain.Order) (bool, error) {
	if !order.IsPaid || order.WhatsAppNotified {
		return false, nil
	}

	claimed, err := d.orders.ClaimNotification(ctx, order.ID, d.now().UTC())
	if err != nil {
		return false, fmt.Errorf("orders.ClaimNotification: %w", err)
	}
	if !claimed {
		slog.Debug("notification already claimed",
			"method", "Dispatcher.NotifyOrderPaid",
			"order_id", order.ID)
		return false, nil
	}

	// the claim is final, so bookkeeping must outlive a cancelled request
	recordCtx := context.WithoutCancel(ctx)

	message, err := d.renderer.RenderOrderPaid(order)
	if err != nil {
		d.recordError(recordCtx, order.ID, fmt.Sprintf("render: %v", err))
		return true, nil
	}

	phones, errs := d.recipientPhones(ctx, order)
	if len(phones) == 0 {
		errs = append(errs, ErrNoRecipients.Error())
		d.recordError(recordCtx, order.ID, strings.Join(errs, "; "))
		return true, nil
	}

	errs = append(errs, d.send(ctx, phones, message)...)

	if len(errs) > 0 {
		d.recordError(recordCtx, order.ID, strings.Join(errs, "; "))
	}

	slog.Info("order paid notification sent",
		"method", "Dispatcher.NotifyOrderPaid",
		"order_id", order.ID,
		"recipients", len(phones),
		"failures", len(errs))

	return true, nil
}

// recipientPhones returns the buyer plus every active recipient, normalized, deduplicated and sorted.
func (d *Dispatcher) recipientPhones(ctx context.Context, order domain.Order) ([]string, []string) {
	var errs []string

	raw := []string{order.Phone}

	recipients, err := d.recipients.ListActiveRecipients(ctx)
	if err != nil {
		slog.Warn("failed to list recipients",
			"method", "Dispatcher.recipientPhones",
			"order_id", order.ID,
			"error", err)
		errs = append(errs, fmt.Sprintf("recipients: %v", err))
	}

	raw = append(raw, lo.Map(recipients, func(r domain.Recipient, _ int) string {
		return r.Phone
	})...)

	phones := lo.Uniq(lo.Filter(lo.Map(raw, func(p string, _ int) string {
		return NormalizePhone(p)
	}), func(p string, _ int) bool {
		return p != ""
	}))
	slices.Sort(phones)

	return phones, errs
}

// send delivers sequentially, pausing a random delay between sends.
func (d *Dispatcher) send(ctx context.Context, phones []string, message string) []string {
	var errs []string

	for i, phone := range phones {
		if i > 0 {
			if err := d.sleep(ctx, d.delay()); err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", strings.Join(phones[i:], ","), err))
				break
			}
		}

		if err := d.sender.SendText(ctx, phone, message); err != nil {
			slog.Warn("failed to send notification",
				"method", "Dispatcher.send",
				"phone", phone,
				"error", err)
			errs = append(errs, fmt.Sprintf("%s: %v", phone, err))
		}
	}

	return errs
}

func (d *Dispatcher) delay() time.Duration {
	if d.maxDelay <= d.minDelay {
		return d.minDelay
	}
	return d.minDelay + rand.N(d.maxDelay-d.minDelay+1)
}

func (d *Dispatcher) recordError(ctx context.Context, orderID int64, msg string) {
	msg = domain.TruncateUTF8(msg, maxNotifyErrorLen)

	if err := d.orders.SetNotifyError(ctx, orderID, msg); err != nil {
		slog.Error("failed to record notification error",
			"method", "Dispatcher.recordError",
			"order_id", orderID,
			"error", err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

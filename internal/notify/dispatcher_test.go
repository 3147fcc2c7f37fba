package notify_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/nikolayk812/pixshop/internal/domain"
	"github.com/nikolayk812/pixshop/internal/fakes"
	"github.com/nikolayk812/pixshop/internal/notify"
	"github.com/nikolayk812/pixshop/internal/template"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.delays = append(s.delays, d)
	return ctx.Err()
}

func newDispatcher(t *testing.T, orders *fakes.OrderRepository, recipients *fakes.RecipientRepository, sender *fakes.MessageSender, sleeper *recordingSleeper) *notify.Dispatcher {
	t.Helper()

	engine, err := template.NewEngine()
	require.NoError(t, err)

	d, err := notify.NewDispatcher(orders, recipients, sender, engine,
		notify.Config{MinDelay: 2 * time.Second, MaxDelay: 5 * time.Second},
		notify.WithSleeper(sleeper.sleep))
	require.NoError(t, err)

	return d
}

func paidOrder(id int64, phone string) domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:            id,
		FirstName:     "Ana",
		LastName:      "Souza",
		Phone:         phone,
		PaymentMethod: domain.PaymentMethodPix,
		Total:         domain.BRL(decimal.RequireFromString("15.00")),
		Items: []domain.LineItem{
			{ProductID: 3, Name: "Combo Pastel QTO + Suco", UnitPrice: "15.00", Quantity: 1, Subtotal: "15.00"},
		},
		Status: domain.PaymentStatusApproved,
		IsPaid: true,
		PaidAt: &now,
	}
}

func standingRecipients() *fakes.RecipientRepository {
	return &fakes.RecipientRepository{Recipients: []domain.Recipient{
		{ID: 1, Name: "Caixa", Phone: "(21) 97777-6666", Active: true},
		{ID: 2, Name: "Buyer duplicate", Phone: "+55 11 98888-7777", Active: true},
		{ID: 3, Name: "Old", Phone: "11 90000-0000", Active: false},
		{ID: 4, Name: "Landline", Phone: "11 3333-4444", Active: true},
	}}
}

func TestDispatcher_NotifyOrderPaid(t *testing.T) {
	orders := fakes.NewOrderRepository()
	order := paidOrder(1, "(11) 98888-7777")
	orders.Put(order)

	sender := &fakes.MessageSender{}
	sleeper := &recordingSleeper{}
	d := newDispatcher(t, orders, standingRecipients(), sender, sleeper)

	sent, err := d.NotifyOrderPaid(t.Context(), order)
	require.NoError(t, err)
	assert.True(t, sent)

	messages := sender.Sent()
	require.Len(t, messages, 3)
	assert.Equal(t, []string{"551133334444", "5511988887777", "5521977776666"}, []string{
		messages[0].Phone, messages[1].Phone, messages[2].Phone,
	})
	assert.Contains(t, messages[0].Message, "Pedido #1")
	assert.Contains(t, messages[0].Message, "- 1x Combo Pastel QTO + Suco - R$ 15.00")

	require.Len(t, sleeper.delays, 2)
	for _, delay := range sleeper.delays {
		assert.GreaterOrEqual(t, delay, 2*time.Second)
		assert.LessOrEqual(t, delay, 5*time.Second)
	}

	stored, err := orders.GetOrder(t.Context(), 1)
	require.NoError(t, err)
	assert.True(t, stored.WhatsAppNotified)
	assert.NotNil(t, stored.WhatsAppNotifiedAt)
	assert.Empty(t, stored.WhatsAppNotifyError)

	// a second trigger finds the claim taken
	sent, err = d.NotifyOrderPaid(t.Context(), order)
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Len(t, sender.Sent(), 3)
}

func TestDispatcher_NotifyOrderPaid_ExactlyOnceUnderConcurrency(t *testing.T) {
	defer goleak.VerifyNone(t)

	orders := fakes.NewOrderRepository()
	order := paidOrder(7, "(11) 98888-7777")
	orders.Put(order)

	sender := &fakes.MessageSender{}
	d := newDispatcher(t, orders, standingRecipients(), sender, &recordingSleeper{})

	const callers = 8

	var (
		wg      sync.WaitGroup
		winners atomic.Int32
	)

	start := make(chan struct{})
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			sent, err := d.NotifyOrderPaid(context.Background(), order)
			assert.NoError(t, err)
			if sent {
				winners.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
	assert.Len(t, sender.Sent(), 3)
}

func TestDispatcher_NotifyOrderPaid_Failures(t *testing.T) {
	tests := []struct {
		name       string
		phone      string
		recipients *fakes.RecipientRepository
		fail       map[string]error
		wantSent   int
		wantError  string
	}{
		{
			name:       "no valid recipients",
			phone:      "sem telefone",
			recipients: &fakes.RecipientRepository{},
			wantError:  "no valid recipients",
		},
		{
			name:  "one recipient fails, others still receive",
			phone: "(11) 98888-7777",
			recipients: &fakes.RecipientRepository{Recipients: []domain.Recipient{
				{Phone: "21977776666", Active: true},
			}},
			fail:      map[string]error{"5521977776666": errors.New("number blocked")},
			wantSent:  1,
			wantError: "5521977776666: number blocked",
		},
		{
			name:       "recipient listing fails, buyer still receives",
			phone:      "(11) 98888-7777",
			recipients: &fakes.RecipientRepository{Err: errors.New("db down")},
			wantSent:   1,
			wantError:  "recipients: db down",
		},
		{
			name:       "listing fails and buyer phone is unusable",
			phone:      "",
			recipients: &fakes.RecipientRepository{Err: errors.New("db down")},
			wantError:  "recipients: db down; no valid recipients",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := fakes.NewOrderRepository()
			order := paidOrder(3, tt.phone)
			orders.Put(order)

			sender := &fakes.MessageSender{Fail: tt.fail}
			d := newDispatcher(t, orders, tt.recipients, sender, &recordingSleeper{})

			sent, err := d.NotifyOrderPaid(t.Context(), order)
			require.NoError(t, err)
			assert.True(t, sent)
			assert.Len(t, sender.Sent(), tt.wantSent)

			stored, err := orders.GetOrder(t.Context(), order.ID)
			require.NoError(t, err)
			assert.True(t, stored.WhatsAppNotified)
			assert.Equal(t, tt.wantError, stored.WhatsAppNotifyError)
		})
	}
}

func TestDispatcher_NotifyOrderPaid_ErrorIsTruncated(t *testing.T) {
	orders := fakes.NewOrderRepository()
	order := paidOrder(4, "(11) 98888-7777")
	orders.Put(order)

	recipients := &fakes.RecipientRepository{}
	fail := map[string]error{"5511988887777": errors.New(strings.Repeat("x", 400))}
	for i := range 5 {
		phone := "2197777000" + string(rune('0'+i))
		recipients.Recipients = append(recipients.Recipients, domain.Recipient{Phone: phone, Active: true})
		fail["55"+phone] = errors.New("blocked")
	}

	sender := &fakes.MessageSender{Fail: fail}
	d := newDispatcher(t, orders, recipients, sender, &recordingSleeper{})

	_, err := d.NotifyOrderPaid(t.Context(), order)
	require.NoError(t, err)

	stored, err := orders.GetOrder(t.Context(), order.ID)
	require.NoError(t, err)
	assert.Len(t, stored.WhatsAppNotifyError, 255)
	assert.True(t, strings.HasPrefix(stored.WhatsAppNotifyError, "5511988887777: xxx"))
}

func TestDispatcher_NotifyOrderPaid_TruncationKeepsRunes(t *testing.T) {
	orders := fakes.NewOrderRepository()
	order := paidOrder(6, "(11) 98888-7777")
	orders.Put(order)

	// "5511988887777: x" is 16 bytes, so the 255 byte limit falls inside an "ã"
	sender := &fakes.MessageSender{Fail: map[string]error{
		"5511988887777": errors.New("x" + strings.Repeat("ã", 200)),
	}}
	d := newDispatcher(t, orders, &fakes.RecipientRepository{}, sender, &recordingSleeper{})

	_, err := d.NotifyOrderPaid(t.Context(), order)
	require.NoError(t, err)

	stored, err := orders.GetOrder(t.Context(), order.ID)
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(stored.WhatsAppNotifyError))
	assert.Len(t, stored.WhatsAppNotifyError, 254)
	assert.True(t, strings.HasSuffix(stored.WhatsAppNotifyError, "ã"))
}

func TestDispatcher_NotifyOrderPaid_CancelledWhilePacing(t *testing.T) {
	orders := fakes.NewOrderRepository()
	order := paidOrder(5, "(11) 98888-7777")
	orders.Put(order)

	sender := &fakes.MessageSender{}
	d := newDispatcher(t, orders, standingRecipients(), sender, &recordingSleeper{})

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	sent, err := d.NotifyOrderPaid(ctx, order)
	require.NoError(t, err)
	assert.True(t, sent)

	// the first recipient goes out before the first pause
	assert.Len(t, sender.Sent(), 1)

	stored, err := orders.GetOrder(t.Context(), order.ID)
	require.NoError(t, err)
	assert.True(t, stored.WhatsAppNotified)
	assert.Equal(t, "5511988887777,5521977776666: context canceled", stored.WhatsAppNotifyError)
}

func TestDispatcher_NotifyOrderPaid_SkipsUnpaidAndNotified(t *testing.T) {
	orders := fakes.NewOrderRepository()
	sender := &fakes.MessageSender{}
	d := newDispatcher(t, orders, standingRecipients(), sender, &recordingSleeper{})

	unpaid := paidOrder(8, "(11) 98888-7777")
	unpaid.IsPaid = false
	unpaid.PaidAt = nil
	orders.Put(unpaid)

	sent, err := d.NotifyOrderPaid(t.Context(), unpaid)
	require.NoError(t, err)
	assert.False(t, sent)

	notified := paidOrder(9, "(11) 98888-7777")
	notified.WhatsAppNotified = true
	orders.Put(notified)

	sent, err = d.NotifyOrderPaid(t.Context(), notified)
	require.NoError(t, err)
	assert.False(t, sent)

	assert.Empty(t, sender.Sent())
}

type failingRenderer struct{}

func (failingRenderer) RenderOrderPaid(domain.Order) (string, error) {
	return "", errors.New("boom")
}

func TestDispatcher_NotifyOrderPaid_RenderFailure(t *testing.T) {
	orders := fakes.NewOrderRepository()
	order := paidOrder(10, "(11) 98888-7777")
	orders.Put(order)

	sender := &fakes.MessageSender{}
	d, err := notify.NewDispatcher(orders, standingRecipients(), sender, failingRenderer{}, notify.Config{})
	require.NoError(t, err)

	sent, err := d.NotifyOrderPaid(t.Context(), order)
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Empty(t, sender.Sent())

	stored, err := orders.GetOrder(t.Context(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "render: boom", stored.WhatsAppNotifyError)
}

func TestNewDispatcher_Validation(t *testing.T) {
	engine, err := template.NewEngine()
	require.NoError(t, err)

	_, err = notify.NewDispatcher(nil, &fakes.RecipientRepository{}, &fakes.MessageSender{}, engine, notify.Config{})
	require.EqualError(t, err, "orders is nil")

	_, err = notify.NewDispatcher(fakes.NewOrderRepository(), &fakes.RecipientRepository{}, &fakes.MessageSender{}, engine,
		notify.Config{MinDelay: -time.Second})
	require.EqualError(t, err, "delays must not be negative")
}

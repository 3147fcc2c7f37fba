package fakes

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/nikolayk812/pixshop/internal/domain"
	"github.com/nikolayk812/pixshop/internal/port"
)

type RecipientRepository struct {
	Recipients []domain.Recipient
	Err        error
}

var _ port.RecipientRepository = (*RecipientRepository)(nil)

func (r *RecipientRepository) ListActiveRecipients(context.Context) ([]domain.Recipient, error) {
	if r.Err != nil {
		return nil, r.Err
	}

	var active []domain.Recipient
	for _, rec := range r.Recipients {
		if rec.Active {
			active = append(active, rec)
		}
	}
	return active, nil
}

type SentMessage struct {
	Phone   string
	Message string
}

// MessageSender records every send. Phones listed in Fail are rejected.
type MessageSender struct {
	mu   sync.Mutex
	sent []SentMessage

	Fail map[string]error
}

var _ port.MessageSender = (*MessageSender)(nil)

func (s *MessageSender) SendText(_ context.Context, phone, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err, ok := s.Fail[phone]; ok {
		return err
	}

	s.sent = append(s.sent, SentMessage{Phone: phone, Message: message})
	return nil
}

func (s *MessageSender) Sent() []SentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]SentMessage, len(s.sent))
	copy(out, s.sent)
	return out
}

// PaymentGateway serves payments from an in-memory table keyed by payment id.
type PaymentGateway struct {
	mu       sync.Mutex
	payments map[string]domain.PaymentInfo

	Token        bool
	SignatureOK  bool
	CreateResult domain.PixPayment
	CreateErr    error
	GetErr       error

	Created []domain.Order
	Lookups int
}

var _ port.PaymentGateway = (*PaymentGateway)(nil)

func NewPaymentGateway() *PaymentGateway {
	return &PaymentGateway{
		payments:    make(map[string]domain.PaymentInfo),
		Token:       true,
		SignatureOK: true,
	}
}

func (g *PaymentGateway) SetPayment(info domain.PaymentInfo) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.payments[info.ID] = info
}

func (g *PaymentGateway) Configured() bool {
	return g.Token
}

func (g *PaymentGateway) CreatePixPayment(_ context.Context, order domain.Order) (domain.PixPayment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Created = append(g.Created, order)
	if g.CreateErr != nil {
		return domain.PixPayment{}, g.CreateErr
	}

	p := g.CreateResult
	if p.ExternalReference == "" {
		p.ExternalReference = order.ExternalReference
	}
	if p.PaymentID != "" {
		g.payments[p.PaymentID] = domain.PaymentInfo{
			ID:                p.PaymentID,
			ExternalReference: p.ExternalReference,
			Status:            p.Status,
			StatusDetail:      p.StatusDetail,
		}
	}
	return p, nil
}

func (g *PaymentGateway) GetPayment(_ context.Context, paymentID string) (domain.PaymentInfo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Lookups++
	if g.GetErr != nil {
		return domain.PaymentInfo{}, g.GetErr
	}

	info, ok := g.payments[paymentID]
	if !ok {
		return domain.PaymentInfo{}, &domain.ProviderError{Op: "get payment", StatusCode: http.StatusNotFound, Message: fmt.Sprintf("payment %s not found", paymentID)}
	}
	return info, nil
}

func (g *PaymentGateway) VerifyWebhookSignature(http.Header, string) bool {
	return g.SignatureOK
}

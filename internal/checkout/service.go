// Package checkout turns a session cart into a pending order with a Pix payment
// instrument, and records sales entered by staff.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nikolayk812/pixshop/internal/domain"
	"github.com/nikolayk812/pixshop/internal/pix"
	"github.com/nikolayk812/pixshop/internal/port"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type Summarizer interface {
	Summarize(ctx context.Context, c domain.Cart) (domain.CartSummary, error)
}

type PaymentMarker interface {
	MarkPaid(ctx context.Context, orderID int64) (domain.Order, error)
}

type Service struct {
	carts      port.CartStore
	summarizer Summarizer
	orders     port.OrderRepository
	gateway    port.PaymentGateway
	marker     PaymentMarker

	// builder is nil when no static Pix key is configured
	builder *pix.Builder
}

func NewService(
	carts port.CartStore,
	summarizer Summarizer,
	orders port.OrderRepository,
	gateway port.PaymentGateway,
	marker PaymentMarker,
	builder *pix.Builder,
) (*Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("carts is nil")
	}
	if summarizer == nil {
		return nil, fmt.Errorf("summarizer is nil")
	}
	if orders == nil {
		return nil, fmt.Errorf("orders is nil")
	}
	if gateway == nil {
		return nil, fmt.Errorf("gateway is nil")
	}
	if marker == nil {
		return nil, fmt.Errorf("marker is nil")
	}

	return &Service{
		carts:      carts,
		summarizer: summarizer,
		orders:     orders,
		gateway:    gateway,
		marker:     marker,
		builder:    builder,
	}, nil
}

type FinalizeRequest struct {
	FirstName     string `json:"first_name" form:"first_name"`
	LastName      string `json:"last_name" form:"last_name"`
	Phone         string `json:"whatsapp" form:"whatsapp"`
	PaymentMethod string `json:"payment_method" form:"payment_method"`
}

type FinalizeResult struct {
	OrderID     int64              `json:"order_id"`
	PaymentID   string             `json:"payment_id,omitempty"`
	PixCode     string             `json:"pix_code"`
	QRBase64    string             `json:"qr_code_base64"`
	Status      string             `json:"status"`
	StatusLabel string             `json:"status_label"`
	Message     string             `json:"message"`
	Cart        domain.CartSummary `json:"cart"`
}

// Finalize creates the order for the session cart and attaches a Pix payment.
// A failed payment creation deletes the order again. The cart is cleared on success.
func (s *Service) Finalize(ctx context.Context, sessionID string, req FinalizeRequest) (FinalizeResult, error) {
	var result FinalizeResult

	firstName, lastName, phone, err := validateCustomer(req.FirstName, req.LastName, req.Phone)
	if err != nil {
		return result, err
	}

	method, err := domain.ToPaymentMethod(req.PaymentMethod)
	if err != nil || method != domain.PaymentMethodPix {
		return result, domain.NewValidationError("payment_method", "Forma de pagamento indisponível.")
	}

	if err := s.paymentConfigured(); err != nil {
		return result, err
	}

	c, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return result, fmt.Errorf("carts.Load: %w", err)
	}

	summary, err := s.summarizer.Summarize(ctx, c)
	if err != nil {
		return result, fmt.Errorf("summarizer.Summarize: %w", err)
	}
	if summary.IsEmpty() {
		return result, domain.NewValidationError("cart", "Seu carrinho está vazio.")
	}

	order, err := s.createOrder(ctx, firstName, lastName, phone, method, summary)
	if err != nil {
		return result, err
	}

	payment, err := s.attachPix(ctx, order)
	if err != nil {
		return result, err
	}

	if err := s.carts.Clear(ctx, sessionID); err != nil {
		slog.Warn("failed to clear cart",
			"method", "Service.Finalize",
			"order_id", order.ID,
			"error", err)
	}

	return FinalizeResult{
		OrderID:     order.ID,
		PaymentID:   payment.PaymentID,
		PixCode:     payment.PixCode,
		QRBase64:    payment.QRBase64,
		Status:      string(payment.Status),
		StatusLabel: payment.Status.Label(),
		Message:     fmt.Sprintf("Pedido #%d criado. Pague com Pix para confirmar.", order.ID),
		Cart:        emptyCart(),
	}, nil
}

func (s *Service) createOrder(
	ctx context.Context,
	firstName, lastName, phone string,
	method domain.PaymentMethod,
	summary domain.CartSummary,
) (domain.Order, error) {
	total, err := decimal.NewFromString(summary.Total)
	if err != nil {
		return domain.Order{}, fmt.Errorf("decimal.NewFromString[%s]: %w", summary.Total, err)
	}

	order := domain.Order{
		FirstName:     firstName,
		LastName:      lastName,
		Phone:         phone,
		PaymentMethod: method,
		Total:         domain.BRL(total),
		Items:         summary.LineItems(),
		Status:        domain.PaymentStatusPending,
	}

	orderID, err := s.orders.InsertOrder(ctx, order)
	if err != nil {
		return order, fmt.Errorf("orders.InsertOrder: %w", err)
	}

	order.ID = orderID
	order.ExternalReference = domain.ExternalReference(orderID)
	return order, nil
}

// attachPix creates the payment at the provider, or builds a static Pix code
// when no provider credential is set, and stores it on the order.
func (s *Service) attachPix(ctx context.Context, order domain.Order) (domain.PixPayment, error) {
	payment, err := s.pixPayment(ctx, order)
	if err == nil {
		err = s.orders.UpdateProviderFields(ctx, order.ID, port.ProviderFields{
			PaymentID:         lo.EmptyableToPtr(payment.PaymentID),
			ExternalReference: lo.EmptyableToPtr(payment.ExternalReference),
			Status:            lo.EmptyableToPtr(payment.Status),
			StatusDetail:      lo.EmptyableToPtr(payment.StatusDetail),
			PixCode:           lo.ToPtr(payment.PixCode),
		})
		if err != nil {
			err = fmt.Errorf("orders.UpdateProviderFields: %w", err)
		}
	}

	if err != nil {
		// an order without a usable payment instrument must not survive
		if delErr := s.orders.DeleteOrder(context.WithoutCancel(ctx), order.ID); delErr != nil {
			slog.Error("failed to delete unpayable order",
				"method", "Service.attachPix",
				"order_id", order.ID,
				"error", delErr)
		}
		return payment, err
	}

	return payment, nil
}

func (s *Service) pixPayment(ctx context.Context, order domain.Order) (domain.PixPayment, error) {
	if s.gateway.Configured() {
		payment, err := s.gateway.CreatePixPayment(ctx, order)
		if err != nil {
			return payment, fmt.Errorf("gateway.CreatePixPayment: %w", err)
		}

		if payment.QRBase64 == "" {
			payment.QRBase64, err = pix.QRBase64(payment.PixCode)
			if err != nil {
				return payment, fmt.Errorf("pix.QRBase64: %w", err)
			}
		}

		return payment, nil
	}

	if s.builder == nil {
		return domain.PixPayment{}, &domain.ConfigurationError{Setting: "PAYMENT_ACCESS_TOKEN"}
	}

	code := s.builder.BuildCode(order.Total.Amount, fmt.Sprintf("PEDIDO%d", order.ID))

	qr, err := pix.QRBase64(code)
	if err != nil {
		return domain.PixPayment{}, fmt.Errorf("pix.QRBase64: %w", err)
	}

	return domain.PixPayment{
		ExternalReference: order.ExternalReference,
		Status:            domain.PaymentStatusPending,
		PixCode:           code,
		QRBase64:          qr,
	}, nil
}

func (s *Service) paymentConfigured() error {
	if s.gateway.Configured() || s.builder != nil {
		return nil
	}
	return &domain.ConfigurationError{Setting: "PAYMENT_ACCESS_TOKEN"}
}

func validateCustomer(firstName, lastName, phone string) (string, string, string, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	phone = strings.TrimSpace(phone)

	if firstName == "" {
		return "", "", "", domain.NewValidationError("first_name", "Informe seu nome.")
	}
	if phone == "" {
		return "", "", "", domain.NewValidationError("whatsapp", "Informe seu WhatsApp.")
	}

	return firstName, lastName, phone, nil
}

func emptyCart() domain.CartSummary {
	return domain.CartSummary{Items: []domain.CartItem{}, Total: "0.00"}
}

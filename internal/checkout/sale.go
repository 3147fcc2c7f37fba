package checkout

import (
	"context"
	"fmt"

	"github.com/nikolayk812/pixshop/internal/domain"
)

type SaleItem struct {
	ProductID int64 `json:"product_id"`
	VariantID int64 `json:"variant_id"`
	Quantity  int   `json:"quantity"`
}

type SaleRequest struct {
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Phone         string     `json:"whatsapp"`
	PaymentMethod string     `json:"payment_method"`
	Items         []SaleItem `json:"items"`
	MarkPaidNow   bool       `json:"mark_paid_now"`
}

type SaleResult struct {
	Order    domain.Order
	PixCode  string
	QRBase64 string
}

// CreateSale records a counter sale entered by staff. Prices come from the
// catalog, never from the request. Card and cash sales can be settled at once.
func (s *Service) CreateSale(ctx context.Context, req SaleRequest) (SaleResult, error) {
	var result SaleResult

	firstName, lastName, phone, err := validateCustomer(req.FirstName, req.LastName, req.Phone)
	if err != nil {
		return result, err
	}

	method, err := domain.ToPaymentMethod(req.PaymentMethod)
	if err != nil {
		return result, domain.NewValidationError("payment_method", "Forma de pagamento inválida.")
	}
	if method == domain.PaymentMethodPix {
		if err := s.paymentConfigured(); err != nil {
			return result, err
		}
	}

	var c domain.Cart
	for _, item := range req.Items {
		if item.ProductID <= 0 || item.Quantity <= 0 {
			continue
		}
		key := domain.CartKey{ProductID: item.ProductID, VariantID: item.VariantID}
		c.Set(key, c.Quantity(key)+item.Quantity)
	}

	summary, err := s.summarizer.Summarize(ctx, c)
	if err != nil {
		return result, fmt.Errorf("summarizer.Summarize: %w", err)
	}
	if summary.IsEmpty() {
		return result, domain.NewValidationError("items", "Adicione ao menos um item.")
	}

	order, err := s.createOrder(ctx, firstName, lastName, phone, method, summary)
	if err != nil {
		return result, err
	}

	switch {
	case method == domain.PaymentMethodPix:
		payment, err := s.attachPix(ctx, order)
		if err != nil {
			return result, err
		}
		result.PixCode = payment.PixCode
		result.QRBase64 = payment.QRBase64

	case req.MarkPaidNow:
		if _, err := s.marker.MarkPaid(ctx, order.ID); err != nil {
			return result, fmt.Errorf("marker.MarkPaid: %w", err)
		}
	}

	result.Order, err = s.orders.GetOrder(ctx, order.ID)
	if err != nil {
		return result, fmt.Errorf("orders.GetOrder: %w", err)
	}

	return result, nil
}
